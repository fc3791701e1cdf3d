// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// DefaultMaxSlotEvents is the default bound on the number of events
// processed within a single time slot.
//
const DefaultMaxSlotEvents = 100000

// An Option configures a Circuit.
//
type Option func(*Circuit)

// WithLogger sets the circuit logger. The default is slog.Default().
//
func WithLogger(l *slog.Logger) Option {
	return func(c *Circuit) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxSlotEvents sets the maximum number of events processed in a single
// time slot before Step gives up with ErrStall. Values < 1 select
// DefaultMaxSlotEvents.
//
func WithMaxSlotEvents(n int) Option {
	return func(c *Circuit) {
		if n < 1 {
			n = DefaultMaxSlotEvents
		}
		c.maxSlot = n
	}
}

// A Circuit owns a graph of gates and wires, the event queue and the
// simulation clock.
//
// All methods are safe for concurrent use. Structural edits and steps are
// serialized, so a step never sees a half applied edit.
//
type Circuit struct {
	mu      sync.Mutex
	cat     *Catalog
	log     *slog.Logger
	maxSlot int

	gates   map[ID]*gate
	wires   map[ID]*wire
	maxGate ID
	maxWire ID
	serial  uint64

	queue   eventQueue
	seq     uint64
	now     Time
	changed map[ID]struct{}
	stats   Stats
}

// Stats holds cumulative counters of a circuit.
//
type Stats struct {
	Steps  uint64 // time slots drained
	Events uint64 // events processed
	Stalls uint64 // slots aborted by the iteration cap
}

// NewCircuit returns a new empty circuit whose gate types are looked up in
// cat.
//
func NewCircuit(cat *Catalog, opts ...Option) *Circuit {
	c := &Circuit{
		cat:     cat,
		log:     slog.Default(),
		maxSlot: DefaultMaxSlotEvents,
		gates:   make(map[ID]*gate),
		wires:   make(map[ID]*wire),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Catalog returns the circuit's gate type catalog.
//
func (c *Circuit) Catalog() *Catalog { return c.cat }

// Tx is a handle on a circuit locked by Edit. Its methods behave as their
// Circuit counterparts. A Tx must not be used once Edit has returned, and
// Circuit methods must not be called from within Edit.
//
type Tx struct {
	c *Circuit
}

func (c *Circuit) tx() *Tx { return &Tx{c} }

// Edit calls fn with the circuit locked: no step runs between the edits made
// by fn. Edit returns the error returned by fn.
//
func (c *Circuit) Edit(fn func(*Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.tx())
}

// NewGate creates a new gate of the given type. If id is NoID, a fresh
// identifier is assigned, otherwise id is used and must not be in use.
//
func (c *Circuit) NewGate(typ string, id ID) (ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().NewGate(typ, id)
}

func (t *Tx) NewGate(typ string, id ID) (ID, error) {
	c := t.c
	spec := c.cat.Lookup(typ)
	if spec == nil {
		return NoID, errors.Wrapf(ErrUnknownType, "NewGate %q", typ)
	}
	id, err := nextID(id, c.maxGate, func(id ID) bool { return c.gates[id] != nil })
	if err != nil {
		return NoID, errors.Wrapf(err, "NewGate %q", typ)
	}

	g := &gate{id: id, spec: spec, params: make(map[string]string)}
	if err = c.mount(g); err != nil {
		return NoID, err
	}
	c.serial++
	g.serial = c.serial
	c.gates[id] = g
	if id > c.maxGate {
		c.maxGate = id
	}
	c.scheduleEval(g, c.now)
	c.log.Debug("gate created", "id", id, "type", typ)
	return id, nil
}

func nextID(id, max ID, used func(ID) bool) (ID, error) {
	if id == NoID {
		if max == ^ID(0) {
			return NoID, errors.Wrap(ErrInvalidID, "identifier space exhausted")
		}
		return max + 1, nil
	}
	if used(id) {
		return NoID, errors.Wrapf(ErrDuplicateID, "id %d", id)
	}
	return id, nil
}

// mount builds the ports and the behavior of g from its spec and current
// parameters. Existing connections are kept.
//
func (c *Circuit) mount(g *gate) (err error) {
	spec := g.spec
	if g.ins == nil {
		g.ins = make([]*port, len(spec.ins))
		for i := range spec.ins {
			d := &spec.ins[i]
			g.ins[i] = newPort(d, widthOf(d, g.param), false)
		}
		g.outs = make([]*port, len(spec.outs))
		for i := range spec.outs {
			d := &spec.outs[i]
			g.outs[i] = newPort(d, widthOf(d, g.param), true)
		}
	}
	params := spec.params.defaults()
	for k, v := range g.params {
		params[k] = v
	}
	s := &Socket{spec: spec, params: params}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrBadSpec, "%s: mount panicked: %v", spec.Name, r)
		}
	}()
	b := spec.Mount(s)
	if s.err != nil {
		return s.err
	}
	if b == nil {
		return errors.Wrapf(ErrBadSpec, "%s: mount returned no behavior", spec.Name)
	}
	g.behavior = b
	return nil
}

// NewWire creates a new wire of the given width. If id is NoID, a fresh
// identifier is assigned, otherwise id is used and must not be in use.
//
func (c *Circuit) NewWire(id ID, width int) (ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().NewWire(id, width)
}

func (t *Tx) NewWire(id ID, width int) (ID, error) {
	c := t.c
	if width < 1 {
		return NoID, errors.Wrapf(ErrInvalidWidth, "NewWire: width %d", width)
	}
	id, err := nextID(id, c.maxWire, func(id ID) bool { return c.wires[id] != nil })
	if err != nil {
		return NoID, errors.Wrap(err, "NewWire")
	}
	c.serial++
	c.wires[id] = newWire(id, c.serial, width)
	if id > c.maxWire {
		c.maxWire = id
	}
	c.log.Debug("wire created", "id", id, "width", width)
	return id, nil
}

// DeleteGate detaches the gate from all its wires and removes it. Wires it
// used to drive are resolved again at the current time.
//
func (c *Circuit) DeleteGate(id ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().DeleteGate(id)
}

func (t *Tx) DeleteGate(id ID) error {
	c := t.c
	g := c.gates[id]
	if g == nil {
		return errors.Wrapf(ErrUnknownGate, "DeleteGate %d", id)
	}
	for i, p := range g.ins {
		if w := c.wires[p.wire]; w != nil {
			w.sinks = removeRef(w.sinks, portRef{id, i})
		}
	}
	for i, p := range g.outs {
		if w := c.wires[p.wire]; w != nil {
			w.drivers = removeRef(w.drivers, portRef{id, i})
			c.scheduleResolve(w)
		}
	}
	delete(c.gates, id)
	c.log.Debug("gate deleted", "id", id, "type", g.spec.Name)
	return nil
}

// DeleteWire disconnects the wire from all gates and removes it. The gates
// it used to feed are evaluated again at the current time.
//
func (c *Circuit) DeleteWire(id ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().DeleteWire(id)
}

func (t *Tx) DeleteWire(id ID) error {
	c := t.c
	w := c.wires[id]
	if w == nil {
		return errors.Wrapf(ErrUnknownWire, "DeleteWire %d", id)
	}
	for _, r := range w.drivers {
		c.gates[r.gate].outs[r.port].wire = NoID
	}
	for _, r := range w.sinks {
		g := c.gates[r.gate]
		g.ins[r.port].wire = NoID
		c.scheduleEval(g, c.now)
	}
	delete(c.wires, id)
	c.log.Debug("wire deleted", "id", id)
	return nil
}

// lookupPort returns the gate and port index of a named port.
//
func (c *Circuit) lookupPort(gid ID, name string, out bool) (*gate, int, error) {
	g := c.gates[gid]
	if g == nil {
		return nil, 0, errors.Wrapf(ErrUnknownGate, "gate %d", gid)
	}
	o, idx := g.spec.findPort(name)
	if idx < 0 || o != out {
		dir := "input"
		if out {
			dir = "output"
		}
		return nil, 0, errors.Wrapf(ErrUnknownPort, "gate %d (%s): no %s port %s", gid, g.spec.Name, dir, name)
	}
	return g, idx, nil
}

// ConnectInput connects an input port of a gate to a wire, replacing any
// previous connection of that port.
//
func (c *Circuit) ConnectInput(gid ID, port string, wid ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().ConnectInput(gid, port, wid)
}

func (t *Tx) ConnectInput(gid ID, port string, wid ID) error {
	c := t.c
	g, idx, err := c.lookupPort(gid, port, false)
	if err != nil {
		return errors.Wrap(err, "ConnectInput")
	}
	w := c.wires[wid]
	if w == nil {
		return errors.Wrapf(ErrUnknownWire, "ConnectInput: wire %d", wid)
	}
	p := g.ins[idx]
	if p.width != w.width {
		return errors.Wrapf(ErrWidthMismatch, "ConnectInput: gate %d port %s has width %d, wire %d has width %d", gid, port, p.width, wid, w.width)
	}
	if p.wire == wid {
		return nil
	}
	ref := portRef{gid, idx}
	if old := c.wires[p.wire]; old != nil {
		old.sinks = removeRef(old.sinks, ref)
	}
	p.wire = wid
	w.sinks = append(w.sinks, ref)
	c.scheduleEval(g, c.now)
	c.log.Debug("input connected", "gate", gid, "port", port, "wire", wid)
	return nil
}

// ConnectOutput connects an output port of a gate to a wire, replacing any
// previous connection of that port.
//
func (c *Circuit) ConnectOutput(gid ID, port string, wid ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().ConnectOutput(gid, port, wid)
}

func (t *Tx) ConnectOutput(gid ID, port string, wid ID) error {
	c := t.c
	g, idx, err := c.lookupPort(gid, port, true)
	if err != nil {
		return errors.Wrap(err, "ConnectOutput")
	}
	w := c.wires[wid]
	if w == nil {
		return errors.Wrapf(ErrUnknownWire, "ConnectOutput: wire %d", wid)
	}
	p := g.outs[idx]
	if p.width != w.width {
		return errors.Wrapf(ErrWidthMismatch, "ConnectOutput: gate %d port %s has width %d, wire %d has width %d", gid, port, p.width, wid, w.width)
	}
	if p.wire == wid {
		return nil
	}
	ref := portRef{gid, idx}
	if old := c.wires[p.wire]; old != nil {
		old.drivers = removeRef(old.drivers, ref)
		c.scheduleResolve(old)
	}
	p.wire = wid
	w.drivers = append(w.drivers, ref)
	c.scheduleResolve(w)
	c.log.Debug("output connected", "gate", gid, "port", port, "wire", wid)
	return nil
}

// DisconnectInput disconnects an input port. Disconnecting a port that is not
// connected is a no-op.
//
func (c *Circuit) DisconnectInput(gid ID, port string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().DisconnectInput(gid, port)
}

func (t *Tx) DisconnectInput(gid ID, port string) error {
	c := t.c
	g, idx, err := c.lookupPort(gid, port, false)
	if err != nil {
		return errors.Wrap(err, "DisconnectInput")
	}
	p := g.ins[idx]
	w := c.wires[p.wire]
	if w == nil {
		return nil
	}
	w.sinks = removeRef(w.sinks, portRef{gid, idx})
	p.wire = NoID
	c.scheduleEval(g, c.now)
	return nil
}

// DisconnectOutput disconnects an output port. Disconnecting a port that is
// not connected is a no-op.
//
func (c *Circuit) DisconnectOutput(gid ID, port string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().DisconnectOutput(gid, port)
}

func (t *Tx) DisconnectOutput(gid ID, port string) error {
	c := t.c
	g, idx, err := c.lookupPort(gid, port, true)
	if err != nil {
		return errors.Wrap(err, "DisconnectOutput")
	}
	p := g.outs[idx]
	w := c.wires[p.wire]
	if w == nil {
		return nil
	}
	w.drivers = removeRef(w.drivers, portRef{gid, idx})
	p.wire = NoID
	c.scheduleResolve(w)
	return nil
}

// SetGateParam validates and sets a gate parameter. Changing a parameter
// that sets the width of a connected port to a width different from the
// wire's fails with ErrWidthMismatch. On success, the gate is evaluated again
// at the current time unless the parameter is a decoration.
//
func (c *Circuit) SetGateParam(gid ID, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().SetGateParam(gid, key, value)
}

func (t *Tx) SetGateParam(gid ID, key, value string) error {
	c := t.c
	g := c.gates[gid]
	if g == nil {
		return errors.Wrapf(ErrUnknownGate, "SetGateParam: gate %d", gid)
	}
	ps := g.spec.params.lookup(key)
	if ps == nil {
		return errors.Wrapf(ErrUnknownParam, "SetGateParam: gate %d (%s): %s", gid, g.spec.Name, key)
	}
	cv, err := ps.Check(value)
	if err != nil {
		return errors.Wrapf(err, "SetGateParam: gate %d (%s)", gid, g.spec.Name)
	}
	get := func(k string) string {
		if k == key {
			return cv
		}
		return g.param(k)
	}
	var resize []*port
	for _, p := range append(append([]*port(nil), g.ins...), g.outs...) {
		if p.decl.param != key {
			continue
		}
		nw := widthOf(p.decl, get)
		if nw == p.width {
			continue
		}
		if w := c.wires[p.wire]; w != nil {
			return errors.Wrapf(ErrWidthMismatch, "SetGateParam: gate %d %s=%s: port %s would have width %d, wire %d has width %d", gid, key, cv, p.decl.name, nw, w.id, w.width)
		}
		resize = append(resize, p)
	}
	g.params[key] = cv
	for _, p := range resize {
		p.resize(widthOf(p.decl, g.param))
	}
	if ps.Class != Decoration {
		c.scheduleEval(g, c.now)
	}
	return nil
}

// GateParam returns the value of a gate parameter, or its default value if
// it has never been set.
//
func (c *Circuit) GateParam(gid ID, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().GateParam(gid, key)
}

func (t *Tx) GateParam(gid ID, key string) (string, error) {
	c := t.c
	g := c.gates[gid]
	if g == nil {
		return "", errors.Wrapf(ErrUnknownGate, "GateParam: gate %d", gid)
	}
	if g.spec.params.lookup(key) == nil {
		return "", errors.Wrapf(ErrUnknownParam, "GateParam: gate %d (%s): %s", gid, g.spec.Name, key)
	}
	return g.param(key), nil
}

// SetInputParam sets a parameter of an input port.
//
func (c *Circuit) SetInputParam(gid ID, port, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().SetInputParam(gid, port, key, value)
}

func (t *Tx) SetInputParam(gid ID, port, key, value string) error {
	return t.setPortParam(gid, port, false, key, value)
}

// SetOutputParam sets a parameter of an output port.
//
func (c *Circuit) SetOutputParam(gid ID, port, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().SetOutputParam(gid, port, key, value)
}

func (t *Tx) SetOutputParam(gid ID, port, key, value string) error {
	return t.setPortParam(gid, port, true, key, value)
}

func (t *Tx) setPortParam(gid ID, port string, out bool, key, value string) error {
	c := t.c
	g, idx, err := c.lookupPort(gid, port, out)
	if err != nil {
		return errors.Wrap(err, "SetPortParam")
	}
	ps := g.spec.portParams.lookup(key)
	if ps == nil {
		return errors.Wrapf(ErrUnknownParam, "SetPortParam: gate %d (%s) port %s: %s", gid, g.spec.Name, port, key)
	}
	cv, err := ps.Check(value)
	if err != nil {
		return errors.Wrapf(err, "SetPortParam: gate %d (%s) port %s", gid, g.spec.Name, port)
	}
	p := g.ins[idx]
	if out {
		p = g.outs[idx]
	}
	if p.params == nil {
		p.params = make(map[string]string)
	}
	p.params[key] = cv
	if key == ParamInverted {
		p.inverted = parseBool(cv)
	}
	if ps.Class != Decoration {
		c.scheduleEval(g, c.now)
	}
	return nil
}

// InputParam returns the value of an input port parameter.
//
func (c *Circuit) InputParam(gid ID, port, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().InputParam(gid, port, key)
}

func (t *Tx) InputParam(gid ID, port, key string) (string, error) {
	return t.portParam(gid, port, false, key)
}

// OutputParam returns the value of an output port parameter.
//
func (c *Circuit) OutputParam(gid ID, port, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().OutputParam(gid, port, key)
}

func (t *Tx) OutputParam(gid ID, port, key string) (string, error) {
	return t.portParam(gid, port, true, key)
}

func (t *Tx) portParam(gid ID, port string, out bool, key string) (string, error) {
	c := t.c
	g, idx, err := c.lookupPort(gid, port, out)
	if err != nil {
		return "", errors.Wrap(err, "PortParam")
	}
	ps := g.spec.portParams.lookup(key)
	if ps == nil {
		return "", errors.Wrapf(ErrUnknownParam, "PortParam: gate %d (%s) port %s: %s", gid, g.spec.Name, port, key)
	}
	p := g.ins[idx]
	if out {
		p = g.outs[idx]
	}
	if v, ok := p.params[key]; ok {
		return v, nil
	}
	return ps.Default, nil
}

// WireState returns the resolved value of a wire.
//
func (c *Circuit) WireState(wid ID) (Vector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().WireState(wid)
}

func (t *Tx) WireState(wid ID) (Vector, error) {
	c := t.c
	w := c.wires[wid]
	if w == nil {
		return nil, errors.Wrapf(ErrUnknownWire, "WireState: wire %d", wid)
	}
	return w.value.Clone(), nil
}

// Time returns the current simulation time.
//
func (c *Circuit) Time() Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// GateIDs returns the identifiers of all gates in ascending order.
//
func (c *Circuit) GateIDs() []ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().GateIDs()
}

func (t *Tx) GateIDs() []ID {
	c := t.c
	return sortedIDs(c.gates)
}

// WireIDs returns the identifiers of all wires in ascending order.
//
func (c *Circuit) WireIDs() []ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().WireIDs()
}

func (t *Tx) WireIDs() []ID {
	c := t.c
	return sortedIDs(c.wires)
}

func sortedIDs[T any](m map[ID]T) []ID {
	r := make([]ID, 0, len(m))
	for id := range m {
		r = append(r, id)
	}
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return r
}

// GateType returns the type tag of a gate.
//
func (c *Circuit) GateType(gid ID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().GateType(gid)
}

func (t *Tx) GateType(gid ID) (string, error) {
	c := t.c
	g := c.gates[gid]
	if g == nil {
		return "", errors.Wrapf(ErrUnknownGate, "GateType: gate %d", gid)
	}
	return g.spec.Name, nil
}

// GateParams returns a copy of the parameters explicitly set on a gate.
//
func (c *Circuit) GateParams(gid ID) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().GateParams(gid)
}

func (t *Tx) GateParams(gid ID) (map[string]string, error) {
	c := t.c
	g := c.gates[gid]
	if g == nil {
		return nil, errors.Wrapf(ErrUnknownGate, "GateParams: gate %d", gid)
	}
	return copyParams(g.params), nil
}

func copyParams(m map[string]string) map[string]string {
	r := make(map[string]string, len(m))
	for k, v := range m {
		r[k] = v
	}
	return r
}

// PortState describes a gate port and its connection.
//
type PortState struct {
	Name   string
	Width  int
	Wire   ID
	Params map[string]string
}

// GateInfo describes a gate.
//
type GateInfo struct {
	ID      ID
	Type    string
	Params  map[string]string
	Inputs  []PortState
	Outputs []PortState
}

// Gate returns a description of a gate.
//
func (c *Circuit) Gate(gid ID) (GateInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().Gate(gid)
}

func (t *Tx) Gate(gid ID) (GateInfo, error) {
	c := t.c
	g := c.gates[gid]
	if g == nil {
		return GateInfo{}, errors.Wrapf(ErrUnknownGate, "Gate %d", gid)
	}
	ports := func(ps []*port) []PortState {
		r := make([]PortState, len(ps))
		for i, p := range ps {
			r[i] = PortState{Name: p.decl.name, Width: p.width, Wire: p.wire, Params: copyParams(p.params)}
		}
		return r
	}
	return GateInfo{
		ID:      gid,
		Type:    g.spec.Name,
		Params:  copyParams(g.params),
		Inputs:  ports(g.ins),
		Outputs: ports(g.outs),
	}, nil
}

// WireInfo describes a wire.
//
type WireInfo struct {
	ID      ID
	Width   int
	Value   Vector
	Drivers []PortRef
	Sinks   []PortRef
}

// Wire returns a description of a wire.
//
func (c *Circuit) Wire(wid ID) (WireInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx().Wire(wid)
}

func (t *Tx) Wire(wid ID) (WireInfo, error) {
	c := t.c
	w := c.wires[wid]
	if w == nil {
		return WireInfo{}, errors.Wrapf(ErrUnknownWire, "Wire %d", wid)
	}
	refs := func(rs []portRef, out bool) []PortRef {
		r := make([]PortRef, len(rs))
		for i, pr := range rs {
			g := c.gates[pr.gate]
			d := g.ins[pr.port].decl
			if out {
				d = g.outs[pr.port].decl
			}
			r[i] = PortRef{Gate: pr.gate, Port: d.name}
		}
		return r
	}
	return WireInfo{
		ID:      wid,
		Width:   w.width,
		Value:   w.value.Clone(),
		Drivers: refs(w.drivers, true),
		Sinks:   refs(w.sinks, false),
	}, nil
}

// Pending returns the number of queued events.
//
func (c *Circuit) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Stats returns the circuit counters.
//
func (c *Circuit) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (r PortRef) String() string {
	return fmt.Sprintf("%d.%s", r.Gate, r.Port)
}
