// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"strconv"
)

// ID is a gate or wire identifier. Gates and wires live in separate
// namespaces. The zero ID means "none".
//
type ID uint32

// NoID is the zero ID.
//
const NoID ID = 0

// Time is the simulated time, in arbitrary time units.
//
type Time int64

type port struct {
	decl     *portDecl
	width    int
	wire     ID
	inverted bool
	params   map[string]string
	// outputs only: value currently applied to the wire and last value
	// scheduled.
	driven  Vector
	pending Vector
}

type gate struct {
	id       ID
	serial   uint64
	spec     *GateSpec
	params   map[string]string
	ins      []*port
	outs     []*port
	behavior Behavior

	evalQueued bool
	evalAt     Time
}

func (g *gate) port(p Port) *port {
	if p.out {
		return g.outs[p.idx]
	}
	return g.ins[p.idx]
}

func (g *gate) findPort(name string) *port {
	for _, p := range g.ins {
		if p.decl.name == name {
			return p
		}
	}
	for _, p := range g.outs {
		if p.decl.name == name {
			return p
		}
	}
	return nil
}

func (g *gate) param(key string) string {
	if v, ok := g.params[key]; ok {
		return v
	}
	if p := g.spec.params.lookup(key); p != nil {
		return p.Default
	}
	return ""
}

func (g *gate) intParam(key string) int64 {
	n, _ := parseInt(g.param(key))
	return n
}

func (g *gate) delay() Time {
	return Time(g.intParam(ParamDelay))
}

// widthOf returns the width a port declaration would have with the given
// parameter values.
//
func widthOf(d *portDecl, params func(string) string) int {
	if d.param == "" {
		return d.width
	}
	n, _ := parseInt(params(d.param))
	return int(n)
}

func newPort(d *portDecl, width int, output bool) *port {
	p := &port{decl: d, width: width}
	if output {
		p.driven = NewVector(width, HiZ)
		p.pending = NewVector(width, HiZ)
	}
	return p
}

func (p *port) resize(width int) {
	if p.width == width {
		return
	}
	p.width = width
	if p.driven != nil {
		p.driven = NewVector(width, HiZ)
		p.pending = NewVector(width, HiZ)
	}
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
