// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	"strconv"

	cs "github.com/db47h/cedarsim"
)

// AddressPrefix is the prefix of the RAM state parameters holding the memory
// contents: ADDRESS_<n> is the word at address n.
//
const AddressPrefix = "ADDRESS_"

// RAM
//
//	Inputs: ADDR[ADDRESS_BITS], DATA_IN[DATA_BITS], WRITE_ENABLE, CLK
//	Outputs: DATA_OUT[DATA_BITS]
//	Function: on CLK rising edge, if WRITE_ENABLE = 1, mem[ADDR] = DATA_IN.
//	          DATA_OUT = mem[ADDR] at all times.
//
// Words never written read as 0.
//
var ramGate = cs.GateSpec{
	Name:    "RAM",
	Inputs:  "ADDR[ADDRESS_BITS], DATA_IN[DATA_BITS], WRITE_ENABLE, CLK",
	Outputs: "DATA_OUT[DATA_BITS]",
	Params: []cs.ParamSpec{
		cs.Bounded("ADDRESS_BITS", cs.Behavioral, 4, 1, 16),
		cs.Bounded("DATA_BITS", cs.Behavioral, 8, 1, 32),
		{Name: AddressPrefix, Kind: cs.IntParam, Class: cs.State, Prefix: true, Min: 0, Max: 1<<32 - 1},
	},
	Delay: 1,
	Mount: func(s *cs.Socket) cs.Behavior {
		addr, din, we, clk := s.Pin("ADDR"), s.Pin("DATA_IN"), s.Pin("WRITE_ENABLE"), s.Pin(pClk)
		dout := s.Pin("DATA_OUT")
		last := newEdge()
		return cs.EvalFn(func(e *cs.Eval) {
			up := last.rising(e.Bit(clk))
			a, ok := e.Int(addr)
			if !ok {
				e.SetBit(dout, cs.Unknown)
				return
			}
			key := AddressPrefix + strconv.FormatUint(a, 10)
			if up && e.Bit(we) == cs.One {
				if d, ok := e.Int(din); ok {
					e.SetState(key, strconv.FormatUint(d, 10))
				}
			}
			e.SetInt(dout, uint64(e.IntParam(key))&mask(e.Width(dout)))
		})
	}}
