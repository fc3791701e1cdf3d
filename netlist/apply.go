// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"github.com/pkg/errors"

	cs "github.com/db47h/cedarsim"
)

// Apply adds the gates and wires of d to c, keeping their identifiers.
// Parameters are set before any connection is made, in key order.
//
// The whole document is applied while holding the circuit lock: a
// concurrent stepper sees either none of it or all of it. If anything fails,
// every gate and wire created so far is deleted again before the lock is
// released and the error is returned.
//
func Apply(c *cs.Circuit, d *Document) error {
	return c.Edit(func(tx *cs.Tx) error { return apply(tx, d) })
}

func apply(c *cs.Tx, d *Document) (err error) {
	var gates, wires []cs.ID
	defer func() {
		if err == nil {
			return
		}
		for _, id := range gates {
			_ = c.DeleteGate(id)
		}
		for _, id := range wires {
			_ = c.DeleteWire(id)
		}
	}()

	for _, w := range d.Wires {
		id, err := c.NewWire(w.ID, w.Width)
		if err != nil {
			return errors.Wrapf(err, "wire %d", w.ID)
		}
		wires = append(wires, id)
	}
	for _, g := range d.Gates {
		id, err := c.NewGate(g.Type, g.ID)
		if err != nil {
			return errors.Wrapf(err, "gate %d", g.ID)
		}
		gates = append(gates, id)
		for _, k := range sortedKeys(g.Params) {
			if err = c.SetGateParam(id, k, g.Params[k]); err != nil {
				return errors.Wrapf(err, "gate %d", g.ID)
			}
		}
		for _, p := range sortedKeys(g.InputParams) {
			ps := g.InputParams[p]
			for _, k := range sortedKeys(ps) {
				if err = c.SetInputParam(id, p, k, ps[k]); err != nil {
					return errors.Wrapf(err, "gate %d", g.ID)
				}
			}
		}
		for _, p := range sortedKeys(g.OutputParams) {
			ps := g.OutputParams[p]
			for _, k := range sortedKeys(ps) {
				if err = c.SetOutputParam(id, p, k, ps[k]); err != nil {
					return errors.Wrapf(err, "gate %d", g.ID)
				}
			}
		}
	}
	for _, g := range d.Gates {
		for _, p := range sortedKeys(g.Inputs) {
			if err = c.ConnectInput(g.ID, p, g.Inputs[p]); err != nil {
				return errors.Wrapf(err, "gate %d", g.ID)
			}
		}
		for _, p := range sortedKeys(g.Outputs) {
			if err = c.ConnectOutput(g.ID, p, g.Outputs[p]); err != nil {
				return errors.Wrapf(err, "gate %d", g.ID)
			}
		}
	}
	return nil
}

// Capture returns a document describing c. Only explicitly set parameters
// are recorded. The circuit is locked for the duration of the capture.
//
func Capture(c *cs.Circuit) (d *Document, err error) {
	err = c.Edit(func(tx *cs.Tx) error {
		d, err = capture(tx)
		return err
	})
	return d, err
}

func capture(c *cs.Tx) (*Document, error) {
	d := new(Document)
	for _, id := range c.WireIDs() {
		wi, err := c.Wire(id)
		if err != nil {
			return nil, err
		}
		d.Wires = append(d.Wires, Wire{ID: id, Width: wi.Width})
	}
	for _, id := range c.GateIDs() {
		gi, err := c.Gate(id)
		if err != nil {
			return nil, err
		}
		g := Gate{ID: id, Type: gi.Type}
		if len(gi.Params) > 0 {
			g.Params = gi.Params
		}
		g.Inputs, g.InputParams = capturePorts(gi.Inputs)
		g.Outputs, g.OutputParams = capturePorts(gi.Outputs)
		d.Gates = append(d.Gates, g)
	}
	return d, nil
}

func capturePorts(ps []cs.PortState) (conns map[string]cs.ID, params map[string]map[string]string) {
	for _, p := range ps {
		if p.Wire != cs.NoID {
			if conns == nil {
				conns = make(map[string]cs.ID)
			}
			conns[p.Name] = p.Wire
		}
		if len(p.Params) > 0 {
			if params == nil {
				params = make(map[string]map[string]string)
			}
			params[p.Name] = p.Params
		}
	}
	return conns, params
}
