// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"sort"
	"sync"

	"github.com/db47h/cedarsim/internal/hdl"
	"github.com/pkg/errors"
)

// A Behavior computes the outputs of a gate from its inputs and internal
// state.
//
type Behavior interface {
	Evaluate(e *Eval)
}

// EvalFn adapts a function to the Behavior interface.
//
type EvalFn func(e *Eval)

// Evaluate calls f(e).
//
func (f EvalFn) Evaluate(e *Eval) { f(e) }

// A MountFn creates the behavior of a new gate instance. MountFn's should
// query the socket for port handles and return closures around them. Any
// per-instance state (like the last seen clock level) lives in the closure.
//
// For example, a NOT gate can be defined like this:
//
//	not := &GateSpec{
//		Name:    "NOT",
//		Inputs:  "IN[BITS]",
//		Outputs: "OUT[BITS]",
//		Params:  []ParamSpec{Bounded("BITS", Behavioral, 1, 1, 64)},
//		Delay:   1,
//		Mount: func(s *Socket) Behavior {
//			in, out := s.Pin("IN"), s.Pin("OUT")
//			return EvalFn(func(e *Eval) {
//				v := e.Get(in)
//				for i := range v {
//					v[i] = Not(v[i])
//				}
//				e.Set(out, v)
//			})
//		}}
//
type MountFn func(s *Socket) Behavior

// A GateSpec is the blueprint of a gate type.
//
type GateSpec struct {
	// Type tag.
	Name string
	// Input and output port declarations, like "IN_0[BITS], IN_1[BITS], EN".
	// The bracketed part is either a fixed width or the name of an integer
	// parameter holding the port width. Ports default to 1 bit.
	Inputs  string
	Outputs string
	// Gate parameters. DELAY, LABEL and ANGLE are added implicitly unless
	// declared here.
	Params []ParamSpec
	// Per port parameters. INVERTED is added implicitly.
	PortParams []ParamSpec
	// Default propagation delay.
	Delay int64
	// Mount function (see MountFn).
	Mount MountFn

	ins, outs  []portDecl
	params     *paramSet
	portParams *paramSet
}

type portDecl struct {
	name  string
	width int
	param string
}

// PortInfo describes a declared port.
//
type PortInfo struct {
	Name string
	// Width is the fixed width of the port, or 0 if it depends on a
	// parameter.
	Width int
	// WidthParam is the name of the parameter holding the port width.
	WidthParam string
}

func parsePorts(decl string) ([]portDecl, error) {
	pins, err := hdl.ParsePins(decl)
	if err != nil {
		return nil, err
	}
	r := make([]portDecl, len(pins))
	for i, p := range pins {
		d := portDecl{name: p.Name, width: 1, param: p.Param}
		switch {
		case p.Param != "":
			d.width = 0
		case p.Size == 0:
			return nil, errors.Errorf("port %s: zero width", p.Name)
		case p.Size > 0:
			d.width = p.Size
		}
		r[i] = d
	}
	return r, nil
}

func (s *GateSpec) compile() (err error) {
	if s.Name == "" {
		return errors.Wrap(ErrBadSpec, "empty type name")
	}
	if s.Mount == nil {
		return errors.Wrapf(ErrBadSpec, "%s: nil mount function", s.Name)
	}
	if s.ins, err = parsePorts(s.Inputs); err != nil {
		return errors.Wrapf(ErrBadSpec, "%s inputs: %v", s.Name, err)
	}
	if s.outs, err = parsePorts(s.Outputs); err != nil {
		return errors.Wrapf(ErrBadSpec, "%s outputs: %v", s.Name, err)
	}

	ps := append([]ParamSpec(nil), s.Params...)
	has := func(name string) bool {
		for i := range ps {
			if ps[i].Name == name {
				return true
			}
		}
		return false
	}
	if !has(ParamDelay) {
		ps = append(ps, Bounded(ParamDelay, Behavioral, s.Delay, 0, 1<<30))
	}
	if !has(ParamLabel) {
		ps = append(ps, ParamSpec{Name: ParamLabel, Kind: StringParam, Class: Decoration})
	}
	if !has(ParamAngle) {
		ps = append(ps, Bounded(ParamAngle, Decoration, 0, 0, 359))
	}
	if s.params, err = newParamSet(ps); err != nil {
		return errors.Wrapf(ErrBadSpec, "%s: %v", s.Name, err)
	}
	pps := append([]ParamSpec(nil), s.PortParams...)
	pps = append(pps, Flag(ParamInverted, Behavioral, false))
	if s.portParams, err = newParamSet(pps); err != nil {
		return errors.Wrapf(ErrBadSpec, "%s: %v", s.Name, err)
	}

	seen := make(map[string]bool)
	for _, d := range append(append([]portDecl(nil), s.ins...), s.outs...) {
		if seen[d.name] {
			return errors.Wrapf(ErrBadSpec, "%s: duplicate port %s", s.Name, d.name)
		}
		seen[d.name] = true
		if d.param == "" {
			continue
		}
		p := s.params.byName[d.param]
		if p == nil || p.Kind != IntParam || p.Min < 1 || p.Max < p.Min {
			return errors.Wrapf(ErrBadSpec, "%s: port %s: width parameter %s must be a bounded integer >= 1", s.Name, d.name, d.param)
		}
	}
	return nil
}

func (s *GateSpec) findPort(name string) (out bool, idx int) {
	for i := range s.ins {
		if s.ins[i].name == name {
			return false, i
		}
	}
	for i := range s.outs {
		if s.outs[i].name == name {
			return true, i
		}
	}
	return false, -1
}

// Derive returns a copy of s with a new name, optionally new port
// declarations and new parameter defaults. Empty inputs or outputs keep the
// original declarations. The returned spec is not compiled until registered
// in a catalog.
//
func (s *GateSpec) Derive(name, inputs, outputs string, defaults map[string]string) (*GateSpec, error) {
	d := &GateSpec{
		Name:       name,
		Inputs:     s.Inputs,
		Outputs:    s.Outputs,
		Params:     append([]ParamSpec(nil), s.Params...),
		PortParams: append([]ParamSpec(nil), s.PortParams...),
		Delay:      s.Delay,
		Mount:      s.Mount,
	}
	if inputs != "" {
		d.Inputs = inputs
	}
	if outputs != "" {
		d.Outputs = outputs
	}
	for k, v := range defaults {
		if k == ParamDelay {
			p := Bounded(ParamDelay, Behavioral, 0, 0, 1<<30)
			cv, err := p.Check(v)
			if err != nil {
				return nil, errors.Wrapf(err, "deriving %s from %s", name, s.Name)
			}
			d.Delay, _ = parseInt(cv)
			continue
		}
		found := false
		for i := range d.Params {
			p := &d.Params[i]
			if p.Name == k && !p.Prefix {
				cv, err := p.Check(v)
				if err != nil {
					return nil, errors.Wrapf(err, "deriving %s from %s", name, s.Name)
				}
				p.Default = cv
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Wrapf(ErrUnknownParam, "deriving %s from %s: %s", name, s.Name, k)
		}
	}
	return d, nil
}

// InputPorts returns the declared input ports.
//
func (s *GateSpec) InputPorts() []PortInfo { return portInfos(s.ins) }

// OutputPorts returns the declared output ports.
//
func (s *GateSpec) OutputPorts() []PortInfo { return portInfos(s.outs) }

func portInfos(ds []portDecl) []PortInfo {
	r := make([]PortInfo, len(ds))
	for i, d := range ds {
		r[i] = PortInfo{Name: d.name, Width: d.width, WidthParam: d.param}
	}
	return r
}

// Schema returns all the parameters accepted by the gate type, including
// implicit ones, sorted by name.
//
func (s *GateSpec) Schema() []ParamSpec {
	var r []ParamSpec
	if s.params == nil {
		return r
	}
	for _, p := range s.params.byName {
		r = append(r, *p)
	}
	for _, p := range s.params.prefix {
		r = append(r, *p)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Name < r[j].Name })
	return r
}

// A Catalog maps type tags to gate specifications. It is safe for
// concurrent use.
//
type Catalog struct {
	mu    sync.RWMutex
	specs map[string]*GateSpec
}

// NewCatalog returns an empty catalog.
//
func NewCatalog() *Catalog {
	return &Catalog{specs: make(map[string]*GateSpec)}
}

// Register compiles and adds the given specs to the catalog. It fails on the
// first invalid spec or if a type tag is already registered; specs before
// the failing one remain registered.
//
func (c *Catalog) Register(specs ...*GateSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range specs {
		cp := *s
		if err := cp.compile(); err != nil {
			return err
		}
		if _, ok := c.specs[cp.Name]; ok {
			return errors.Wrapf(ErrBadSpec, "type %s already registered", cp.Name)
		}
		c.specs[cp.Name] = &cp
	}
	return nil
}

// Lookup returns the spec registered for the given type tag, or nil.
//
func (c *Catalog) Lookup(name string) *GateSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.specs[name]
}

// Types returns the sorted list of registered type tags.
//
func (c *Catalog) Types() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r := make([]string, 0, len(c.specs))
	for k := range c.specs {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}
