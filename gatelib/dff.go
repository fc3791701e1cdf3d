// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	"math"
	"strconv"

	cs "github.com/db47h/cedarsim"
)

// edge tracks a clock input and reports rising edges.
//
type edge cs.Value

func (l *edge) rising(v cs.Value) bool {
	r := cs.Value(*l) == cs.Zero && v == cs.One
	*l = edge(v)
	return r
}

func newEdge() edge { return edge(cs.Unknown) }

// DFF is a rising edge D flip flop with asynchronous clear.
//
//	Inputs: D, CLK, CLR
//	Outputs: Q, NQ
//	Function: on CLK rising edge, Q = D. CLR = 1 forces Q to 0.
//
// Q starts Unknown.
//
var dffGate = cs.GateSpec{
	Name:    "DFF",
	Inputs:  "D, CLK, CLR",
	Outputs: "Q, NQ",
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		d, clk, clr := s.Pin("D"), s.Pin(pClk), s.Pin("CLR")
		q, nq := s.Pin("Q"), s.Pin("NQ")
		last, state := newEdge(), cs.Unknown
		return cs.EvalFn(func(e *cs.Eval) {
			up := last.rising(e.Bit(clk))
			switch {
			case e.Bit(clr) == cs.One:
				state = cs.Zero
			case up:
				state = e.Bit(d)
				if !state.Driven() {
					state = cs.Unknown
				}
			}
			e.SetBit(q, state)
			e.SetBit(nq, cs.Not(state))
		})
	}}

// JKFF is a rising edge JK flip flop with asynchronous clear.
//
//	Inputs: J, K, CLK, CLR
//	Outputs: Q, NQ
//	Function: on CLK rising edge, J=1 sets Q, K=1 resets Q, both toggle Q.
//
var jkffGate = cs.GateSpec{
	Name:    "JKFF",
	Inputs:  "J, K, CLK, CLR",
	Outputs: "Q, NQ",
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		j, k, clk, clr := s.Pin("J"), s.Pin("K"), s.Pin(pClk), s.Pin("CLR")
		q, nq := s.Pin("Q"), s.Pin("NQ")
		last, state := newEdge(), cs.Unknown
		return cs.EvalFn(func(e *cs.Eval) {
			up := last.rising(e.Bit(clk))
			switch {
			case e.Bit(clr) == cs.One:
				state = cs.Zero
			case up:
				jv, kv := e.Bit(j), e.Bit(k)
				switch {
				case !jv.Driven() || !kv.Driven():
					state = cs.Unknown
				case jv == cs.One && kv == cs.One:
					state = cs.Not(state)
				case jv == cs.One:
					state = cs.One
				case kv == cs.One:
					state = cs.Zero
				}
			}
			e.SetBit(q, state)
			e.SetBit(nq, cs.Not(state))
		})
	}}

// Register parameter names.
const (
	CurrentValue   = "CURRENT_VALUE"
	UnknownOutputs = "UNKNOWN_OUTPUTS"
)

// REGISTER is a loadable counter.
//
//	Inputs: IN[BITS], CLK, LOAD, CLEAR, INCR
//	Outputs: OUT[BITS]
//	Function: CLEAR = 1 resets the register. On CLK rising edge,
//	          LOAD = 1 loads IN, otherwise INCR = 1 increments the register.
//
// The register value is exposed as the CURRENT_VALUE state parameter, so
// BITS is at most 63. When
// UNKNOWN_OUTPUTS is set, OUT stays Unknown until the first clear, load or
// increment.
//
var registerGate = cs.GateSpec{
	Name:    "REGISTER",
	Inputs:  "IN[BITS], CLK, LOAD, CLEAR, INCR",
	Outputs: "OUT[BITS]",
	Params: []cs.ParamSpec{
		valueBitsParam(),
		cs.Bounded(CurrentValue, cs.State, 0, 0, math.MaxInt64),
		cs.Flag(UnknownOutputs, cs.Behavioral, false),
	},
	Delay: 1,
	Mount: func(s *cs.Socket) cs.Behavior {
		in, clk, load, clr, incr := s.Pin(pIn), s.Pin(pClk), s.Pin("LOAD"), s.Pin("CLEAR"), s.Pin("INCR")
		out := s.Pin(pOut)
		last, known := newEdge(), false
		return cs.EvalFn(func(e *cs.Eval) {
			w := e.Width(out)
			v := uint64(e.IntParam(CurrentValue))
			up := last.rising(e.Bit(clk))
			switch {
			case e.Bit(clr) == cs.One:
				v, known = 0, true
			case up && e.Bit(load) == cs.One:
				n, ok := e.Int(in)
				if !ok {
					known = false
					e.SetBit(out, cs.Unknown)
					return
				}
				v, known = n, true
			case up && e.Bit(incr) == cs.One:
				v, known = v+1, true
			}
			v &= mask(w)
			e.SetState(CurrentValue, strconv.FormatUint(v, 10))
			if !known && e.BoolParam(UnknownOutputs) {
				e.SetBit(out, cs.Unknown)
				return
			}
			e.SetInt(out, v)
		})
	}}
