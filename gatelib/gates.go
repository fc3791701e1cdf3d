// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package gatelib provides the standard library of gate types for cedarsim.
//
// Unless stated otherwise, combinational and sequential gates have a default
// propagation delay of 1 and sources have a zero delay. Bus aware gates take
// their width from the BITS parameter.
//
package gatelib

import (
	"math"
	"strconv"
	"strings"

	cs "github.com/db47h/cedarsim"
)

// common port and parameter names
const (
	pIn   = "IN"
	pOut  = "OUT"
	pEn   = "EN"
	pSel  = "SEL"
	pA    = "A"
	pB    = "B"
	pClk  = "CLK"
	pBits = "BITS"
)

func bitsParam() cs.ParamSpec { return cs.Bounded(pBits, cs.Behavioral, 1, 1, 64) }

// valueBitsParam is BITS for gates whose value is also held by an integer
// parameter, which has room for 63 bits only.
func valueBitsParam() cs.ParamSpec { return cs.Bounded(pBits, cs.Behavioral, 1, 1, 63) }

// inputList returns "IN_0[w], IN_1[w], ..." for n inputs.
//
func inputList(prefix string, n int, width string) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(prefix)
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(i))
		if width != "" {
			b.WriteByte('[')
			b.WriteString(width)
			b.WriteByte(']')
		}
	}
	return b.String()
}

type logicFn func(a, b cs.Value) cs.Value

// mount folds fn over all IN_x inputs, bit by bit.
//
func (fn logicFn) mount(invert bool) cs.MountFn {
	return func(s *cs.Socket) cs.Behavior {
		ins := s.Require(s.Inputs(pIn+"_"), 1, "input")
		out := s.Pin(pOut)
		return cs.EvalFn(func(e *cs.Eval) {
			r := e.Get(ins[0])
			for i := range r {
				if !r[i].Driven() {
					r[i] = cs.Unknown
				}
			}
			for _, in := range ins[1:] {
				v := e.Get(in)
				for i := range r {
					r[i] = fn(r[i], v[i])
				}
			}
			if invert {
				for i := range r {
					r[i] = cs.Not(r[i])
				}
			}
			e.Set(out, r)
		})
	}
}

func logicGate(name string, inputs int, fn logicFn, invert bool) *cs.GateSpec {
	if inputs > 2 {
		name += strconv.Itoa(inputs)
	}
	return &cs.GateSpec{
		Name:    name,
		Inputs:  inputList(pIn, inputs, pBits),
		Outputs: "OUT[BITS]",
		Params:  []cs.ParamSpec{bitsParam()},
		Delay:   1,
		Mount:   fn.mount(invert),
	}
}

func logicGates() []*cs.GateSpec {
	var r []*cs.GateSpec
	for n := 2; n <= 4; n++ {
		r = append(r,
			logicGate("AND", n, cs.And, false),
			logicGate("NAND", n, cs.And, true),
			logicGate("OR", n, cs.Or, false),
			logicGate("NOR", n, cs.Or, true),
			logicGate("XOR", n, cs.Xor, false),
			logicGate("XNOR", n, cs.Xor, true),
		)
	}
	return r
}

// NOT
//
//	Inputs: IN[BITS]
//	Outputs: OUT[BITS]
//	Function: OUT = !IN
//
var notGate = cs.GateSpec{
	Name:    "NOT",
	Inputs:  "IN[BITS]",
	Outputs: "OUT[BITS]",
	Params:  []cs.ParamSpec{bitsParam()},
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		in, out := s.Pin(pIn), s.Pin(pOut)
		return cs.EvalFn(func(e *cs.Eval) {
			v := e.Get(in)
			for i := range v {
				v[i] = cs.Not(v[i])
			}
			e.Set(out, v)
		})
	}}

// BUFFER
//
//	Inputs: IN[BITS]
//	Outputs: OUT[BITS]
//	Function: OUT = IN, undriven bits become Unknown
//
var bufferGate = cs.GateSpec{
	Name:    "BUFFER",
	Inputs:  "IN[BITS]",
	Outputs: "OUT[BITS]",
	Params:  []cs.ParamSpec{bitsParam()},
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		in, out := s.Pin(pIn), s.Pin(pOut)
		return cs.EvalFn(func(e *cs.Eval) { e.Set(out, buffer(e.Get(in))) })
	}}

func buffer(v cs.Vector) cs.Vector {
	for i := range v {
		if !v[i].Driven() {
			v[i] = cs.Unknown
		}
	}
	return v
}

// TRISTATE
//
//	Inputs: IN[BITS], EN
//	Outputs: OUT[BITS]
//	Function: if EN { OUT = IN } else { OUT = HiZ }
//
var tristateGate = cs.GateSpec{
	Name:    "TRISTATE",
	Inputs:  "IN[BITS], EN",
	Outputs: "OUT[BITS]",
	Params:  []cs.ParamSpec{bitsParam()},
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		in, en, out := s.Pin(pIn), s.Pin(pEn), s.Pin(pOut)
		return cs.EvalFn(func(e *cs.Eval) {
			switch e.Bit(en) {
			case cs.One:
				e.Set(out, buffer(e.Get(in)))
			case cs.Zero:
				e.SetBit(out, cs.HiZ)
			default:
				e.SetBit(out, cs.Unknown)
			}
		})
	}}

// mask returns a mask of the n least significant bits.
//
func mask(n int) uint64 {
	if n >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(n) - 1
}
