// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"fmt"
	"runtime/debug"
)

// Eval is the evaluation context passed to a Behavior. It is only valid
// for the duration of the Evaluate call.
//
type Eval struct {
	c     *Circuit
	g     *gate
	delay Time
}

// Now returns the current simulation time.
//
func (e *Eval) Now() Time { return e.c.now }

// Width returns the current width of port p.
//
func (e *Eval) Width(p Port) int { return e.g.port(p).width }

// Get returns the value seen on port p. For inputs, this is the value of the
// connected wire with port inversion applied, or HiZ on every bit if the
// port is not connected. For outputs, this is the last value scheduled.
//
// The returned vector belongs to the caller.
//
func (e *Eval) Get(p Port) Vector {
	pt := e.g.port(p)
	var v Vector
	if p.out {
		v = pt.pending.Clone()
	} else if w := e.c.wires[pt.wire]; w != nil {
		v = w.value.Clone()
	} else {
		return NewVector(pt.width, HiZ)
	}
	if pt.inverted {
		v = v.Invert()
	}
	return v
}

// Bit returns bit 0 of port p.
//
func (e *Eval) Bit(p Port) Value {
	v := e.Get(p)
	if len(v) == 0 {
		return HiZ
	}
	return v[0]
}

// Int returns the value of port p as an unsigned integer. ok is false if any
// bit is neither Zero nor One.
//
func (e *Eval) Int(p Port) (n uint64, ok bool) {
	return e.Get(p).Int()
}

// Set schedules v on output port p at Now()+delay. The vector is resized to
// the port width, missing bits being Unknown. Nothing is scheduled if v equals
// the last value scheduled on that port.
//
func (e *Eval) Set(p Port, v Vector) {
	if !p.out {
		e.c.log.Warn("set on input port", "gate", e.g.id, "type", e.g.spec.Name, "port", e.g.port(p).decl.name)
		return
	}
	pt := e.g.outs[p.idx]
	if len(v) != pt.width {
		v = v.Resize(pt.width, Unknown)
	} else {
		v = v.Clone()
	}
	if pt.inverted {
		v = v.Invert()
	}
	if v.Equal(pt.pending) {
		return
	}
	pt.pending = v
	e.c.scheduleDrive(e.g, p.idx, v.Clone(), e.c.now+e.delay)
}

// SetBit sets all bits of output port p to v.
//
func (e *Eval) SetBit(p Port, v Value) {
	e.Set(p, NewVector(e.Width(p), v))
}

// SetInt sets output port p to the binary representation of n.
//
func (e *Eval) SetInt(p Port, n uint64) {
	e.Set(p, FromInt(n, e.Width(p)))
}

// Param returns the value of a gate parameter.
//
func (e *Eval) Param(key string) string { return e.g.param(key) }

// IntParam returns the value of an integer gate parameter.
//
func (e *Eval) IntParam(key string) int64 { return e.g.intParam(key) }

// BoolParam returns the value of a boolean gate parameter.
//
func (e *Eval) BoolParam(key string) bool { return parseBool(e.g.param(key)) }

// SetState updates a State parameter. It does not trigger a new evaluation.
// Invalid keys or values are logged and ignored.
//
func (e *Eval) SetState(key, value string) {
	ps := e.g.spec.params.lookup(key)
	if ps == nil || ps.Class != State {
		e.c.log.Warn("SetState: not a state parameter", "gate", e.g.id, "type", e.g.spec.Name, "key", key)
		return
	}
	cv, err := ps.Check(value)
	if err != nil {
		e.c.log.Warn("SetState: bad value", "gate", e.g.id, "type", e.g.spec.Name, "key", key, "err", err)
		return
	}
	e.g.params[key] = cv
}

// Wake schedules a new evaluation of the gate at Now()+d.
//
func (e *Eval) Wake(d Time) {
	if d < 0 {
		d = 0
	}
	e.c.scheduleEval(e.g, e.c.now+d)
}

// SetDelay overrides the propagation delay for the remaining Set calls of
// this evaluation.
//
func (e *Eval) SetDelay(d Time) {
	if d < 0 {
		d = 0
	}
	e.delay = d
}

// evaluate runs the behavior of g. A panicking behavior is logged and its
// outputs are left as they were.
//
func (c *Circuit) evaluate(g *gate) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("gate behavior panicked", "gate", g.id, "type", g.spec.Name, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	e := Eval{c: c, g: g, delay: g.delay()}
	g.behavior.Evaluate(&e)
}
