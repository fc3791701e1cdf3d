// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	cs "github.com/db47h/cedarsim"
)

// CLOCK
//
//	Outputs: OUT
//	Function: OUT toggles every HALF_CYCLE time units, starting low.
//
// The clock schedules its own evaluations.
//
var clockGate = cs.GateSpec{
	Name:    "CLOCK",
	Outputs: "OUT",
	Params:  []cs.ParamSpec{cs.Bounded("HALF_CYCLE", cs.Behavioral, 1, 1, 1<<30)},
	Mount: func(s *cs.Socket) cs.Behavior {
		out := s.Pin(pOut)
		var (
			started bool
			level   bool
			next    cs.Time
		)
		return cs.EvalFn(func(e *cs.Eval) {
			now := e.Now()
			half := cs.Time(e.IntParam("HALF_CYCLE"))
			e.SetDelay(0)
			switch {
			case !started:
				started, next = true, now+half
			case now >= next:
				level = !level
				next = now + half
			}
			e.SetBit(out, cs.FromBool(level))
			e.Wake(next - now)
		})
	}}

// PULSE
//
//	Outputs: OUT
//	Function: setting PULSE to n > 0 drives OUT high for n time units.
//
// PULSE is reset to 0 as soon as the pulse starts.
//
var pulseGate = cs.GateSpec{
	Name:    "PULSE",
	Outputs: "OUT",
	Params:  []cs.ParamSpec{cs.Bounded("PULSE", cs.State, 0, 0, 1<<30)},
	Mount: func(s *cs.Socket) cs.Behavior {
		out := s.Pin(pOut)
		var until cs.Time
		return cs.EvalFn(func(e *cs.Eval) {
			now := e.Now()
			if n := e.IntParam("PULSE"); n > 0 {
				until = now + cs.Time(n)
				e.SetState("PULSE", "0")
			}
			if now < until {
				e.SetBit(out, cs.One)
				e.Wake(until - now)
				return
			}
			e.SetBit(out, cs.Zero)
		})
	}}
