// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import "container/heap"

type evKind uint8

const (
	evEvaluate evKind = iota // re-evaluate a gate
	evDrive                  // apply a new value to a gate output
	evResolve                // recompute a wire from its drivers
)

func (k evKind) String() string {
	switch k {
	case evEvaluate:
		return "evaluate"
	case evDrive:
		return "drive"
	case evResolve:
		return "resolve"
	}
	return "invalid"
}

type event struct {
	time   Time
	seq    uint64
	kind   evKind
	target ID
	serial uint64
	port   int
	value  Vector
}

// eventQueue is a min-heap on (time, seq). seq is strictly increasing, so
// events at the same instant pop in insertion order.
//
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].time != q[j].time {
		return q[i].time < q[j].time
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x interface{}) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() interface{} {
	old := *q
	n := len(old) - 1
	e := old[n]
	old[n] = nil
	*q = old[:n]
	return e
}

func (c *Circuit) push(e *event) {
	c.seq++
	e.seq = c.seq
	heap.Push(&c.queue, e)
}

func (c *Circuit) pop() *event {
	return heap.Pop(&c.queue).(*event)
}

// scheduleEval queues an evaluation of g at time t unless one is already
// queued for that instant.
//
func (c *Circuit) scheduleEval(g *gate, t Time) {
	if g.evalQueued && g.evalAt == t {
		return
	}
	g.evalQueued = true
	g.evalAt = t
	c.push(&event{time: t, kind: evEvaluate, target: g.id, serial: g.serial})
}

func (c *Circuit) scheduleResolve(w *wire) {
	c.push(&event{time: c.now, kind: evResolve, target: w.id, serial: w.serial})
}

func (c *Circuit) scheduleDrive(g *gate, port int, v Vector, t Time) {
	c.push(&event{time: t, kind: evDrive, target: g.id, serial: g.serial, port: port, value: v})
}

// dispatch applies a single event.
//
func (c *Circuit) dispatch(e *event) {
	switch e.kind {
	case evEvaluate:
		g := c.gates[e.target]
		if g == nil || g.serial != e.serial {
			return
		}
		if g.evalAt == e.time {
			g.evalQueued = false
		}
		c.evaluate(g)
	case evDrive:
		g := c.gates[e.target]
		if g == nil || g.serial != e.serial || e.port >= len(g.outs) {
			return
		}
		p := g.outs[e.port]
		if len(e.value) != p.width {
			// the port was resized after the drive was scheduled.
			return
		}
		p.driven = e.value
		if w := c.wires[p.wire]; w != nil {
			c.propagate(w)
		}
	case evResolve:
		w := c.wires[e.target]
		if w == nil || w.serial != e.serial {
			return
		}
		c.propagate(w)
	}
}

// propagate resolves w and, if its value changed, records it and wakes up
// every gate it feeds.
//
func (c *Circuit) propagate(w *wire) {
	if !c.resolve(w) {
		return
	}
	if c.changed != nil {
		c.changed[w.id] = struct{}{}
	}
	for _, r := range w.sinks {
		c.scheduleEval(c.gates[r.gate], c.now)
	}
}
