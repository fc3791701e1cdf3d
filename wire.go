// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

// PortRef identifies a gate port.
//
type PortRef struct {
	Gate ID
	Port string
}

type portRef struct {
	gate ID
	port int
}

// wire is a net. Its value is only ever computed by resolve.
//
type wire struct {
	id      ID
	serial  uint64
	width   int
	drivers []portRef
	sinks   []portRef
	value   Vector
}

func newWire(id ID, serial uint64, width int) *wire {
	return &wire{id: id, serial: serial, width: width, value: NewVector(width, HiZ)}
}

func removeRef(refs []portRef, r portRef) []portRef {
	for i := range refs {
		if refs[i] == r {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

// resolve recomputes the wire value from its drivers and returns true if it
// changed.
//
func (c *Circuit) resolve(w *wire) bool {
	ds := make([]Vector, 0, len(w.drivers))
	for _, r := range w.drivers {
		ds = append(ds, c.gates[r.gate].outs[r.port].driven)
	}
	v := Resolve(w.width, ds...)
	if v.Equal(w.value) {
		return false
	}
	w.value = v
	return true
}
