// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"sort"

	"github.com/pkg/errors"
)

// StepResult is the outcome of a simulation step.
//
type StepResult struct {
	// Changed lists the wires whose resolved value changed, in ascending
	// order.
	Changed []ID
	// Values holds the resolved value of each changed wire at the end of
	// the step.
	Values map[ID]Vector
	// Time is the simulation time after the step.
	Time Time
	// Events is the number of events processed.
	Events int
}

// Step drains one time slot: every event due at the earliest pending time is
// processed, including the ones scheduled for that same instant while
// draining. Then the clock advances to the time of the next pending event,
// or stays where it is if the queue is empty.
//
// If the slot does not settle within the iteration cap, Step returns the
// partial result and an error whose cause is ErrStall. The remaining events
// stay queued and the clock is not advanced.
//
func (c *Circuit) Step() (StepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step()
}

func (c *Circuit) step() (StepResult, error) {
	if len(c.queue) == 0 {
		return StepResult{Time: c.now}, nil
	}
	c.changed = make(map[ID]struct{})
	defer func() { c.changed = nil }()

	t := c.queue[0].time
	if t > c.now {
		c.now = t
	}
	n := 0
	for len(c.queue) > 0 && c.queue[0].time <= t {
		if n >= c.maxSlot {
			c.stats.Stalls++
			c.stats.Events += uint64(n)
			c.log.Warn("simulation stalled", "time", t, "events", n, "pending", len(c.queue))
			return c.result(n), errors.Wrapf(ErrStall, "time %d: %d events processed without settling", t, n)
		}
		c.dispatch(c.pop())
		n++
	}
	if len(c.queue) > 0 {
		c.now = c.queue[0].time
	}
	c.stats.Steps++
	c.stats.Events += uint64(n)
	return c.result(n), nil
}

func (c *Circuit) result(n int) StepResult {
	r := StepResult{Time: c.now, Events: n, Changed: make([]ID, 0, len(c.changed)), Values: make(map[ID]Vector, len(c.changed))}
	for id := range c.changed {
		r.Changed = append(r.Changed, id)
		if w := c.wires[id]; w != nil {
			r.Values[id] = w.value.Clone()
		}
	}
	sort.Slice(r.Changed, func(i, j int) bool { return r.Changed[i] < r.Changed[j] })
	return r
}

// StepN calls Step up to n times and returns the union of the changed wires.
// It stops early if the queue becomes empty or on error.
//
func (c *Circuit) StepN(n int) (StepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[ID]Vector)
	var (
		r   StepResult
		err error
	)
	total := 0
	for i := 0; i < n && len(c.queue) > 0; i++ {
		r, err = c.step()
		total += r.Events
		for _, id := range r.Changed {
			set[id] = r.Values[id]
		}
		if err != nil {
			break
		}
	}
	r = StepResult{Time: c.now, Events: total, Changed: make([]ID, 0, len(set)), Values: set}
	for id := range set {
		r.Changed = append(r.Changed, id)
	}
	sort.Slice(r.Changed, func(i, j int) bool { return r.Changed[i] < r.Changed[j] })
	return r, err
}

// StepOnlyGates evaluates every gate once, in ascending id order, at the
// current time. Output changes are queued as usual; nothing is drained, the
// clock does not move and no wire is reported as changed.
//
func (c *Circuit) StepOnlyGates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range sortedIDs(c.gates) {
		c.evaluate(c.gates[id])
	}
}

// DestroyAllEvents discards all pending events. The clock and the graph are
// left untouched.
//
func (c *Circuit) DestroyAllEvents() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearQueue()
}

func (c *Circuit) clearQueue() {
	c.queue = nil
	for _, g := range c.gates {
		g.evalQueued = false
		for _, p := range g.outs {
			// nothing in flight anymore
			p.pending = p.driven.Clone()
		}
	}
}

// Reset discards all pending events, rewinds the clock to 0 and powers the
// circuit up again: every output and wire goes back to HiZ, gate behaviors
// are mounted again and every gate is scheduled for evaluation. Parameters,
// including state parameters, are kept.
//
func (c *Circuit) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queue = nil
	c.now = 0
	for _, w := range c.wires {
		w.value = NewVector(w.width, HiZ)
	}
	for _, id := range sortedIDs(c.gates) {
		g := c.gates[id]
		g.evalQueued = false
		for _, p := range g.outs {
			p.driven = NewVector(p.width, HiZ)
			p.pending = NewVector(p.width, HiZ)
		}
		if err := c.mount(g); err != nil {
			return errors.Wrapf(err, "Reset: gate %d", id)
		}
		c.scheduleEval(g, 0)
	}
	c.log.Debug("circuit reset", "gates", len(c.gates), "wires", len(c.wires))
	return nil
}
