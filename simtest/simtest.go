// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package simtest provides utility functions for testing circuits.
//
package simtest

import (
	"strconv"
	"testing"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/gatelib"
	"github.com/db47h/cedarsim/internal/hdl"
)

// MaxSteps bounds the number of steps Settle will take.
//
const MaxSteps = 10000

// A Builder builds circuits from named wires. Wires are created on first
// use, with the width of the first port they are connected to.
//
type Builder struct {
	T testing.TB
	C *cs.Circuit

	wires  map[string]cs.ID
	inputs map[string]cs.ID
}

// New returns a builder for a new circuit. If cat is nil, the standard
// library is used.
//
func New(t testing.TB, cat *cs.Catalog, opts ...cs.Option) *Builder {
	if cat == nil {
		cat = gatelib.Catalog()
	}
	return &Builder{
		T:      t,
		C:      cs.NewCircuit(cat, opts...),
		wires:  make(map[string]cs.ID),
		inputs: make(map[string]cs.ID),
	}
}

// Wire returns the ID of the named wire, creating it with the given width if
// needed.
//
func (b *Builder) Wire(name string, width int) cs.ID {
	b.T.Helper()
	if id, ok := b.wires[name]; ok {
		return id
	}
	id, err := b.C.NewWire(cs.NoID, width)
	if err != nil {
		b.T.Fatalf("wire %s: %+v", name, err)
	}
	b.wires[name] = id
	return id
}

// Gate creates a gate, sets its parameters and connects it according to
// conns, a connection list like "IN_0=a, IN_1=b, OUT=c". Ranges may be used
// on both sides: "OUT[0..3]=d[0..3]" connects OUT_0 to d_0 and so on.
//
// params is a list of key/value pairs.
//
func (b *Builder) Gate(typ, conns string, params ...string) cs.ID {
	b.T.Helper()
	g, err := b.C.NewGate(typ, cs.NoID)
	if err != nil {
		b.T.Fatalf("%+v", err)
	}
	if len(params)%2 != 0 {
		b.T.Fatalf("%s: odd number of parameters", typ)
	}
	for i := 0; i < len(params); i += 2 {
		if err = b.C.SetGateParam(g, params[i], params[i+1]); err != nil {
			b.T.Fatalf("%+v", err)
		}
	}
	as, err := hdl.ParseAssignments(conns)
	if err != nil {
		b.T.Fatalf("%s: %v", typ, err)
	}
	info, err := b.C.Gate(g)
	if err != nil {
		b.T.Fatalf("%+v", err)
	}
	for _, a := range as {
		lhs, rhs := a.LHS.Expand(), a.RHS.Expand()
		if len(lhs) != len(rhs) {
			b.T.Fatalf("%s: %s=%s: range sizes differ", typ, a.LHS.Name, a.RHS.Name)
		}
		for i, pn := range lhs {
			b.connect(g, info, pn, rhs[i])
		}
	}
	return g
}

func (b *Builder) connect(g cs.ID, info cs.GateInfo, port, wire string) {
	b.T.Helper()
	for _, p := range info.Inputs {
		if p.Name == port {
			if err := b.C.ConnectInput(g, port, b.Wire(wire, p.Width)); err != nil {
				b.T.Fatalf("%+v", err)
			}
			return
		}
	}
	for _, p := range info.Outputs {
		if p.Name == port {
			if err := b.C.ConnectOutput(g, port, b.Wire(wire, p.Width)); err != nil {
				b.T.Fatalf("%+v", err)
			}
			return
		}
	}
	b.T.Fatalf("gate %d (%s): no port %s", g, info.Type, port)
}

// Input creates a KEYPAD gate driving the named wire.
//
func (b *Builder) Input(name string, width int) cs.ID {
	b.T.Helper()
	g := b.Gate("KEYPAD", "OUT="+name, "BITS", strconv.Itoa(width))
	b.inputs[name] = g
	return g
}

// Set sets the value of an input created with Input.
//
func (b *Builder) Set(name string, v uint64) {
	b.T.Helper()
	g, ok := b.inputs[name]
	if !ok {
		b.T.Fatalf("no input named %s", name)
	}
	if err := b.C.SetGateParam(g, gatelib.OutputNum, strconv.FormatUint(v, 10)); err != nil {
		b.T.Fatalf("%+v", err)
	}
}

// Settle steps the circuit until no event is pending and returns the number
// of times each wire changed.
//
func (b *Builder) Settle() map[string]int {
	b.T.Helper()
	r := make(map[string]int)
	names := make(map[cs.ID]string, len(b.wires))
	for n, id := range b.wires {
		names[id] = n
	}
	for i := 0; b.C.Pending() > 0; i++ {
		if i >= MaxSteps {
			b.T.Fatalf("circuit did not settle after %d steps", MaxSteps)
		}
		res, err := b.C.Step()
		if err != nil {
			b.T.Fatalf("%+v", err)
		}
		for _, id := range res.Changed {
			r[names[id]]++
		}
	}
	return r
}

// Run steps the circuit until all events due at or before time t have been
// processed.
//
func (b *Builder) Run(t cs.Time) {
	b.T.Helper()
	for i := 0; b.C.Pending() > 0 && b.C.Time() <= t; i++ {
		if i >= MaxSteps {
			b.T.Fatalf("clock did not reach %d after %d steps", t, MaxSteps)
		}
		if _, err := b.C.Step(); err != nil {
			b.T.Fatalf("%+v", err)
		}
	}
}

// Value returns the value of a wire.
//
func (b *Builder) Value(name string) cs.Vector {
	b.T.Helper()
	id, ok := b.wires[name]
	if !ok {
		b.T.Fatalf("no wire named %s", name)
	}
	v, err := b.C.WireState(id)
	if err != nil {
		b.T.Fatalf("%+v", err)
	}
	return v
}

// String returns the value of a wire as a string, msb first.
//
func (b *Builder) String(name string) string {
	b.T.Helper()
	return b.Value(name).String()
}

// Int returns the value of a wire as an integer. It fails the test if any
// bit is neither 0 nor 1.
//
func (b *Builder) Int(name string) uint64 {
	b.T.Helper()
	v := b.Value(name)
	n, ok := v.Int()
	if !ok {
		b.T.Fatalf("wire %s = %s", name, v)
	}
	return n
}
