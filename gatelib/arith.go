// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	"math/bits"

	cs "github.com/db47h/cedarsim"
)

// ADDER
//
//	Inputs: A[BITS], B[BITS], CARRY_IN
//	Outputs: SUM[BITS], CARRY_OUT
//	Function: SUM = A + B + CARRY_IN, CARRY_OUT = overflow
//
// An unconnected CARRY_IN counts as 0.
//
var adderGate = cs.GateSpec{
	Name:    "ADDER",
	Inputs:  "A[BITS], B[BITS], CARRY_IN",
	Outputs: "SUM[BITS], CARRY_OUT",
	Params:  []cs.ParamSpec{bitsParam()},
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		a, b, ci := s.Pin(pA), s.Pin(pB), s.Pin("CARRY_IN")
		sum, co := s.Pin("SUM"), s.Pin("CARRY_OUT")
		return cs.EvalFn(func(e *cs.Eval) {
			va, oka := e.Int(a)
			vb, okb := e.Int(b)
			c := e.Bit(ci)
			if c == cs.HiZ {
				c = cs.Zero
			}
			if !oka || !okb || !c.Driven() {
				e.SetBit(sum, cs.Unknown)
				e.SetBit(co, cs.Unknown)
				return
			}
			w := e.Width(sum)
			var carry uint64
			if c == cs.One {
				carry = 1
			}
			r, out := bits.Add64(va, vb, carry)
			if w < 64 {
				out = r >> uint(w) & 1
			}
			e.SetInt(sum, r&mask(w))
			e.SetBit(co, cs.FromBool(out != 0))
		})
	}}

// COMPARE
//
//	Inputs: A[BITS], B[BITS]
//	Outputs: LT, EQ, GT
//	Function: unsigned comparison of A and B
//
var compareGate = cs.GateSpec{
	Name:    "COMPARE",
	Inputs:  "A[BITS], B[BITS]",
	Outputs: "LT, EQ, GT",
	Params:  []cs.ParamSpec{bitsParam()},
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		a, b := s.Pin(pA), s.Pin(pB)
		lt, eq, gt := s.Pin("LT"), s.Pin("EQ"), s.Pin("GT")
		return cs.EvalFn(func(e *cs.Eval) {
			va, oka := e.Int(a)
			vb, okb := e.Int(b)
			if !oka || !okb {
				e.SetBit(lt, cs.Unknown)
				e.SetBit(eq, cs.Unknown)
				e.SetBit(gt, cs.Unknown)
				return
			}
			e.SetBit(lt, cs.FromBool(va < vb))
			e.SetBit(eq, cs.FromBool(va == vb))
			e.SetBit(gt, cs.FromBool(va > vb))
		})
	}}
