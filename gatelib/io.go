// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	"math"
	"strconv"

	cs "github.com/db47h/cedarsim"
)

// Parameter names of user inputs.
const (
	// OutputNum holds the value driven by TOGGLE and KEYPAD gates.
	OutputNum = "OUTPUT_NUM"
)

func constantGate(name string, v cs.Value) *cs.GateSpec {
	return &cs.GateSpec{
		Name:    name,
		Outputs: "OUT[BITS]",
		Params:  []cs.ParamSpec{bitsParam()},
		Mount: func(s *cs.Socket) cs.Behavior {
			out := s.Pin(pOut)
			return cs.EvalFn(func(e *cs.Eval) { e.SetBit(out, v) })
		}}
}

// TOGGLE is a user controlled switch.
//
//	Outputs: OUT
//	Function: OUT = OUTPUT_NUM
//
var toggleGate = cs.GateSpec{
	Name:    "TOGGLE",
	Outputs: "OUT",
	Params:  []cs.ParamSpec{cs.Bounded(OutputNum, cs.State, 0, 0, 1)},
	Mount: func(s *cs.Socket) cs.Behavior {
		out := s.Pin(pOut)
		return cs.EvalFn(func(e *cs.Eval) { e.SetInt(out, uint64(e.IntParam(OutputNum))) })
	}}

// KEYPAD is a user controlled bus input.
//
//	Outputs: OUT[BITS]
//	Function: OUT = OUTPUT_NUM, truncated to BITS (at most 63)
//
var keypadGate = cs.GateSpec{
	Name:    "KEYPAD",
	Outputs: "OUT[BITS]",
	Params:  []cs.ParamSpec{valueBitsParam(), cs.Bounded(OutputNum, cs.State, 0, 0, math.MaxInt64)},
	Mount: func(s *cs.Socket) cs.Behavior {
		out := s.Pin(pOut)
		return cs.EvalFn(func(e *cs.Eval) { e.SetInt(out, uint64(e.IntParam(OutputNum))) })
	}}

func sinkGate(name, inputs string, params ...cs.ParamSpec) *cs.GateSpec {
	return &cs.GateSpec{
		Name:   name,
		Inputs: inputs,
		Params: params,
		Mount: func(s *cs.Socket) cs.Behavior {
			return cs.EvalFn(func(*cs.Eval) {})
		}}
}

// Input returns the spec of a gate type whose output is driven by a Go
// function. f is called on every evaluation of the gate, so a change in its
// return value is only seen after the gate has been evaluated again, like
// with Circuit.StepOnlyGates.
//
//	Outputs: OUT[width]
//	Function: OUT = f()
//
func Input(name string, width int, f func() uint64) *cs.GateSpec {
	return &cs.GateSpec{
		Name:    name,
		Outputs: busDecl(pOut, width),
		Mount: func(s *cs.Socket) cs.Behavior {
			out := s.Pin(pOut)
			return cs.EvalFn(func(e *cs.Eval) { e.SetInt(out, f()) })
		}}
}

// Output returns the spec of a gate type that calls f with the value of its
// input every time it is evaluated.
//
//	Inputs: IN[width]
//	Function: f(IN)
//
func Output(name string, width int, f func(cs.Vector)) *cs.GateSpec {
	return &cs.GateSpec{
		Name:   name,
		Inputs: busDecl(pIn, width),
		Mount: func(s *cs.Socket) cs.Behavior {
			in := s.Pin(pIn)
			return cs.EvalFn(func(e *cs.Eval) { f(e.Get(in)) })
		}}
}

func busDecl(name string, width int) string {
	if width <= 1 {
		return name
	}
	return name + "[" + strconv.Itoa(width) + "]"
}
