// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"strings"

	"github.com/pkg/errors"
)

// A Port is a handle on one of a gate's input or output ports. Handles are
// obtained from a Socket at mount time and passed to Eval methods.
//
type Port struct {
	out bool
	idx int
}

// IsOutput returns true if p is an output port.
//
func (p Port) IsOutput() bool { return p.out }

// A Socket maps a gate's port names to port handles while the gate is being
// mounted.
//
type Socket struct {
	spec   *GateSpec
	params map[string]string
	err    error
}

// Pin returns the handle of the named input or output port. If no such port
// exists, the socket records an error which will make the gate creation fail.
//
func (s *Socket) Pin(name string) Port {
	out, idx := s.spec.findPort(name)
	if idx < 0 {
		if s.err == nil {
			s.err = errors.Wrapf(ErrBadSpec, "%s: no port named %s", s.spec.Name, name)
		}
		return Port{idx: -1}
	}
	return Port{out: out, idx: idx}
}

// Inputs returns the handles of all input ports whose name starts with
// prefix, in declaration order.
//
func (s *Socket) Inputs(prefix string) []Port {
	var r []Port
	for i, d := range s.spec.ins {
		if strings.HasPrefix(d.name, prefix) {
			r = append(r, Port{idx: i})
		}
	}
	return r
}

// Outputs returns the handles of all output ports whose name starts with
// prefix, in declaration order.
//
func (s *Socket) Outputs(prefix string) []Port {
	var r []Port
	for i, d := range s.spec.outs {
		if strings.HasPrefix(d.name, prefix) {
			r = append(r, Port{out: true, idx: i})
		}
	}
	return r
}

// Param returns the value of a parameter at mount time.
//
func (s *Socket) Param(key string) string {
	return s.params[key]
}

// Require records an error if fewer than n ports were found. It returns ps.
//
func (s *Socket) Require(ps []Port, n int, what string) []Port {
	if len(ps) < n && s.err == nil {
		s.err = errors.Wrapf(ErrBadSpec, "%s: needs at least %d %s port(s)", s.spec.Name, n, what)
	}
	return ps
}
