// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	"strconv"

	cs "github.com/db47h/cedarsim"
)

// muxGate returns a multiplexer with 1<<selBits inputs.
//
//	Inputs: IN_0[BITS] ... IN_n[BITS], SEL[selBits]
//	Outputs: OUT[BITS]
//	Function: OUT = IN_SEL
//
func muxGate(name string, selBits int) *cs.GateSpec {
	return &cs.GateSpec{
		Name:    name,
		Inputs:  inputList(pIn, 1<<uint(selBits), pBits) + ", SEL[" + strconv.Itoa(selBits) + "]",
		Outputs: "OUT[BITS]",
		Params:  []cs.ParamSpec{bitsParam()},
		Delay:   1,
		Mount: func(s *cs.Socket) cs.Behavior {
			ins, sel, out := s.Inputs(pIn+"_"), s.Pin(pSel), s.Pin(pOut)
			return cs.EvalFn(func(e *cs.Eval) {
				n, ok := e.Int(sel)
				if !ok {
					e.SetBit(out, cs.Unknown)
					return
				}
				e.Set(out, buffer(e.Get(ins[n])))
			})
		}}
}

// DECODER
//
//	Inputs: IN[3], EN
//	Outputs: OUT_0 ... OUT_7
//	Function: OUT_IN = EN, all other outputs are 0
//
// An unconnected EN enables the decoder.
//
var decoderGate = cs.GateSpec{
	Name:    "DECODER",
	Inputs:  "IN[3], EN",
	Outputs: inputList(pOut, 8, ""),
	Delay:   1,
	Mount: func(s *cs.Socket) cs.Behavior {
		in, en, outs := s.Pin(pIn), s.Pin(pEn), s.Outputs(pOut+"_")
		return cs.EvalFn(func(e *cs.Eval) {
			enable := e.Bit(en)
			if enable == cs.HiZ {
				enable = cs.One
			}
			n, ok := e.Int(in)
			for i, o := range outs {
				switch {
				case enable == cs.Zero:
					e.SetBit(o, cs.Zero)
				case !ok || enable != cs.One:
					e.SetBit(o, cs.Unknown)
				default:
					e.SetBit(o, cs.FromBool(uint64(i) == n))
				}
			}
		})
	}}
