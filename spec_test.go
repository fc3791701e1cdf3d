// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim_test

import (
	"testing"

	cs "github.com/db47h/cedarsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nop(s *cs.Socket) cs.Behavior { return cs.EvalFn(func(*cs.Eval) {}) }

func Test_Catalog_Register(t *testing.T) {
	data := []struct {
		name string
		spec cs.GateSpec
		ok   bool
	}{
		{"ok", cs.GateSpec{Name: "A", Inputs: "IN[BITS]", Outputs: "OUT[BITS]",
			Params: []cs.ParamSpec{cs.Bounded("BITS", cs.Behavioral, 1, 1, 8)}, Mount: nop}, true},
		{"noname", cs.GateSpec{Mount: nop}, false},
		{"nomount", cs.GateSpec{Name: "B"}, false},
		{"syntax", cs.GateSpec{Name: "C", Inputs: "IN[", Mount: nop}, false},
		{"nowidthparam", cs.GateSpec{Name: "D", Inputs: "IN[BITS]", Mount: nop}, false},
		{"unbounded", cs.GateSpec{Name: "E", Inputs: "IN[BITS]",
			Params: []cs.ParamSpec{{Name: "BITS", Kind: cs.IntParam, Default: "1", Max: -1}}, Mount: nop}, false},
		{"dupport", cs.GateSpec{Name: "F", Inputs: "X", Outputs: "X", Mount: nop}, false},
		{"zerowidth", cs.GateSpec{Name: "G", Inputs: "X[0]", Mount: nop}, false},
		{"baddefault", cs.GateSpec{Name: "H", Params: []cs.ParamSpec{cs.Bounded("N", cs.State, 9, 0, 1)}, Mount: nop}, false},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			cat := cs.NewCatalog()
			s := d.spec
			err := cat.Register(&s)
			if d.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, cs.Is(err, cs.ErrBadSpec), "%v", err)
		})
	}
}

func Test_Catalog_duplicate(t *testing.T) {
	cat := cs.NewCatalog()
	s := &cs.GateSpec{Name: "A", Mount: nop}
	require.NoError(t, cat.Register(s))
	assert.True(t, cs.Is(cat.Register(s), cs.ErrBadSpec))
	assert.Equal(t, []string{"A"}, cat.Types())
	assert.Nil(t, cat.Lookup("B"))
}

func Test_GateSpec_Schema(t *testing.T) {
	cat := cs.NewCatalog()
	require.NoError(t, cat.Register(&cs.GateSpec{
		Name: "RAM", Inputs: "ADDR[ADDRESS_BITS]", Outputs: "OUT[8]",
		Params: []cs.ParamSpec{
			cs.Bounded("ADDRESS_BITS", cs.Behavioral, 4, 1, 16),
			{Name: "ADDRESS_", Kind: cs.IntParam, Class: cs.State, Prefix: true, Min: 0, Max: 255},
		},
		Delay: 2,
		Mount: nop}))
	s := cat.Lookup("RAM")
	require.NotNil(t, s)
	var names []string
	for _, p := range s.Schema() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"ADDRESS_", "ADDRESS_BITS", cs.ParamAngle, cs.ParamDelay, cs.ParamLabel}, names)
	assert.Equal(t, []cs.PortInfo{{Name: "ADDR", WidthParam: "ADDRESS_BITS"}}, s.InputPorts())
	assert.Equal(t, []cs.PortInfo{{Name: "OUT", Width: 8}}, s.OutputPorts())

	c := cs.NewCircuit(cat)
	g, err := c.NewGate("RAM", cs.NoID)
	require.NoError(t, err)
	require.NoError(t, c.SetGateParam(g, "ADDRESS_12", "0x2a"))
	v, err := c.GateParam(g, "ADDRESS_12")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
	assert.True(t, cs.Is(c.SetGateParam(g, "ADDRESS_", "1"), cs.ErrUnknownParam))
	assert.True(t, cs.Is(c.SetGateParam(g, "ADDRESS_x", "1"), cs.ErrUnknownParam))
	v, err = c.GateParam(g, cs.ParamDelay)
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func Test_GateSpec_Derive(t *testing.T) {
	base := &cs.GateSpec{
		Name: "AND", Inputs: "IN_0[BITS], IN_1[BITS]", Outputs: "OUT[BITS]",
		Params: []cs.ParamSpec{cs.Bounded("BITS", cs.Behavioral, 1, 1, 64)},
		Delay:  1,
		Mount:  nop}
	d, err := base.Derive("AND8_3", "IN_0[BITS], IN_1[BITS], IN_2[BITS]", "", map[string]string{"BITS": "8", cs.ParamDelay: "3"})
	require.NoError(t, err)
	cat := cs.NewCatalog()
	require.NoError(t, cat.Register(base, d))
	c := cs.NewCircuit(cat)
	g, err := c.NewGate("AND8_3", cs.NoID)
	require.NoError(t, err)
	gi, err := c.Gate(g)
	require.NoError(t, err)
	require.Len(t, gi.Inputs, 3)
	assert.Equal(t, 8, gi.Inputs[2].Width)
	assert.Equal(t, 8, gi.Outputs[0].Width)
	v, err := c.GateParam(g, cs.ParamDelay)
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	_, err = base.Derive("X", "", "", map[string]string{"NOPE": "1"})
	assert.True(t, cs.Is(err, cs.ErrUnknownParam))
	_, err = base.Derive("X", "", "", map[string]string{"BITS": "65"})
	assert.True(t, cs.Is(err, cs.ErrBadParamValue))
}

func Test_Socket_bad_pin(t *testing.T) {
	cat := cs.NewCatalog()
	require.NoError(t, cat.Register(&cs.GateSpec{
		Name: "BAD", Inputs: "IN",
		Mount: func(s *cs.Socket) cs.Behavior {
			s.Pin("NOPE")
			return cs.EvalFn(func(*cs.Eval) {})
		}}))
	c := cs.NewCircuit(cat)
	_, err := c.NewGate("BAD", cs.NoID)
	assert.True(t, cs.Is(err, cs.ErrBadSpec))
	assert.Empty(t, c.GateIDs())
}
