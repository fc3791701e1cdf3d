// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/gatelib"
	"github.com/db47h/cedarsim/netlist"
)

const halfAdder = `
name: half adder
wires:
  - {id: 1, width: 1}
  - {id: 2, width: 1}
  - {id: 3, width: 1}
  - {id: 4, width: 1}
gates:
  - id: 10
    type: TOGGLE
    params: {OUTPUT_NUM: "1"}
    outputs: {OUT: 1}
  - id: 11
    type: TOGGLE
    outputs: {OUT: 2}
  - id: 20
    type: XOR
    inputs: {IN_0: 1, IN_1: 2}
    outputs: {OUT: 3}
  - id: 21
    type: AND
    inputs: {IN_0: 1, IN_1: 2}
    outputs: {OUT: 4}
    output_params:
      OUT: {INVERTED: "true"}
`

func settle(t *testing.T, c *cs.Circuit) {
	t.Helper()
	for i := 0; c.Pending() > 0; i++ {
		require.Less(t, i, 1000)
		_, err := c.Step()
		require.NoError(t, err)
	}
}

func Test_Apply(t *testing.T) {
	d, err := netlist.Decode(strings.NewReader(halfAdder))
	require.NoError(t, err)
	assert.Equal(t, "half adder", d.Name)
	c := cs.NewCircuit(gatelib.Catalog())
	require.NoError(t, netlist.Apply(c, d))
	settle(t, c)

	v, err := c.WireState(3)
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())
	v, err = c.WireState(4)
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	require.NoError(t, c.SetGateParam(11, gatelib.OutputNum, "1"))
	settle(t, c)
	v, err = c.WireState(3)
	require.NoError(t, err)
	assert.Equal(t, "0", v.String())
	v, err = c.WireState(4)
	require.NoError(t, err)
	assert.Equal(t, "0", v.String())
}

func Test_Apply_rollback(t *testing.T) {
	d, err := netlist.Decode(strings.NewReader(halfAdder))
	require.NoError(t, err)
	d.Gates[3].Inputs["IN_1"] = 42
	c := cs.NewCircuit(gatelib.Catalog())
	_, err = c.NewWire(100, 1)
	require.NoError(t, err)

	err = netlist.Apply(c, d)
	require.Error(t, err)
	assert.True(t, cs.Is(err, cs.ErrUnknownWire), "%v", err)
	assert.Empty(t, c.GateIDs())
	assert.Equal(t, []cs.ID{100}, c.WireIDs())

	// id collision
	d, err = netlist.Decode(strings.NewReader(halfAdder))
	require.NoError(t, err)
	d.Wires = append(d.Wires, netlist.Wire{ID: 100, Width: 1})
	err = netlist.Apply(c, d)
	assert.True(t, cs.Is(err, cs.ErrDuplicateID), "%v", err)
	assert.Equal(t, []cs.ID{100}, c.WireIDs())
}

// stepper steps c in a loop until stop is closed and returns the set of
// wires reported as changed.
func stepper(c *cs.Circuit, stop <-chan struct{}) <-chan map[cs.ID]bool {
	res := make(chan map[cs.ID]bool, 1)
	go func() {
		seen := make(map[cs.ID]bool)
		for {
			select {
			case <-stop:
				res <- seen
				return
			default:
			}
			r, _ := c.Step()
			for _, id := range r.Changed {
				seen[id] = true
			}
		}
	}()
	return res
}

func Test_Apply_concurrent_step(t *testing.T) {
	c := cs.NewCircuit(gatelib.Catalog())
	_, err := c.NewWire(100, 1)
	require.NoError(t, err)
	stop := make(chan struct{})
	done := stepper(c, stop)

	// a document failing on its very last connection is never visible
	for i := 0; i < 200; i++ {
		d, err := netlist.Decode(strings.NewReader(halfAdder))
		require.NoError(t, err)
		renumber(d, 50)
		d.Gates[3].Outputs["OUT"] = 42
		require.Error(t, netlist.Apply(c, d))
		require.Equal(t, []cs.ID{100}, c.WireIDs())
		require.Empty(t, c.GateIDs())
	}
	d, err := netlist.Decode(strings.NewReader(halfAdder))
	require.NoError(t, err)
	require.NoError(t, netlist.Apply(c, d))
	close(stop)
	seen := <-done

	for _, id := range []cs.ID{51, 52, 53, 54, 100} {
		assert.False(t, seen[id], "wire %d", id)
	}
	settle(t, c)
	v, err := c.WireState(3)
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())
	v, err = c.WireState(4)
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())
}

func renumber(d *netlist.Document, n cs.ID) {
	for i := range d.Wires {
		d.Wires[i].ID += n
	}
	for i := range d.Gates {
		g := &d.Gates[i]
		g.ID += n
		for k := range g.Inputs {
			g.Inputs[k] += n
		}
		for k := range g.Outputs {
			g.Outputs[k] += n
		}
	}
}

func Test_Capture(t *testing.T) {
	d, err := netlist.Decode(strings.NewReader(halfAdder))
	require.NoError(t, err)
	c := cs.NewCircuit(gatelib.Catalog())
	require.NoError(t, netlist.Apply(c, d))

	got, err := netlist.Capture(c)
	require.NoError(t, err)
	got.Name = d.Name
	assert.Equal(t, d, got)

	var buf bytes.Buffer
	require.NoError(t, netlist.Encode(&buf, got))
	d2, err := netlist.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, d, d2)

	c2 := cs.NewCircuit(gatelib.Catalog())
	require.NoError(t, netlist.Apply(c2, d2))
	settle(t, c2)
	v, err := c2.WireState(3)
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())
}

func Test_Decode_invalid(t *testing.T) {
	for _, in := range []string{
		"wires: [{id: 0, width: 1}]",
		"wires: [{id: 1, width: 0}]",
		"gates: [{id: 1}]",
		"gates: [{type: AND}]",
		"gates: {",
	} {
		_, err := netlist.Decode(strings.NewReader(in))
		assert.Error(t, err, in)
	}
}
