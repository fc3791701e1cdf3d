// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package host_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/gatelib"
	"github.com/db47h/cedarsim/host"
)

func newSession() *host.Session {
	return host.NewSession(cs.NewCircuit(gatelib.Catalog()), nil)
}

// toggle -> w1 -> NOT -> w2
func inverter(t *testing.T, s *host.Session) {
	t.Helper()
	ids := make([]cs.ID, 0, 4)
	for _, typ := range []string{"TOGGLE", "NOT"} {
		id, st := s.NewGateAuto(typ)
		require.Equal(t, host.OK, st)
		ids = append(ids, id)
	}
	for i := 0; i < 2; i++ {
		id, st := s.NewWireAuto(0)
		require.Equal(t, host.OK, st)
		ids = append(ids, id)
	}
	require.Equal(t, []cs.ID{1, 2, 1, 2}, ids)
	require.Equal(t, host.OK, s.ConnectGateOutput(1, "OUT", 1))
	require.Equal(t, host.OK, s.ConnectGateInput(2, "IN", 1))
	require.Equal(t, host.OK, s.ConnectGateOutput(2, "OUT", 2))
}

func Test_Session(t *testing.T) {
	s := newSession()
	inverter(t, s)

	r, st := s.Step()
	require.Equal(t, host.OK, st)
	assert.Equal(t, []host.WireChange{{ID: 1, State: []int{0}}}, r.ChangedWires)
	assert.EqualValues(t, 1, r.Time)

	r, st = s.Step()
	require.Equal(t, host.OK, st)
	assert.Equal(t, []host.WireChange{{ID: 2, State: []int{1}}}, r.ChangedWires)
	assert.EqualValues(t, 1, s.GetSystemTime())

	require.Equal(t, host.OK, s.SetGateParameter(1, gatelib.OutputNum, "1"))
	v, st := s.GetGateParameter(1, gatelib.OutputNum)
	require.Equal(t, host.OK, st)
	assert.Equal(t, "1", v)

	r, st = s.StepN(5)
	require.Equal(t, host.OK, st)
	assert.Equal(t, []host.WireChange{{ID: 1, State: []int{1}}, {ID: 2, State: []int{0}}}, r.ChangedWires)
	assert.EqualValues(t, 2, r.Time)

	state, st := s.GetWireState(2)
	require.Equal(t, host.OK, st)
	assert.Equal(t, []int{0}, state)

	assert.Equal(t, []cs.ID{1, 2}, s.GetGateIDs())
	assert.Equal(t, []cs.ID{1, 2}, s.GetWireIDs())
}

func Test_Session_status(t *testing.T) {
	s := newSession()
	inverter(t, s)

	_, st := s.NewGateAuto("NOPE")
	assert.Equal(t, host.UnknownType, st)
	_, st = s.NewGate("NOT", 2)
	assert.Equal(t, host.Duplicate, st)
	_, st = s.NewWire(1, 1)
	assert.Equal(t, host.Duplicate, st)
	_, st = s.NewWire(cs.NoID, -1)
	assert.Equal(t, host.Invalid, st)
	assert.Equal(t, host.BadPort, s.ConnectGateInput(2, "BAD", 1))
	assert.Equal(t, host.BadPort, s.ConnectGateInput(2, "OUT", 1))
	w, st := s.NewWireAuto(4)
	require.Equal(t, host.OK, st)
	assert.Equal(t, host.WidthMismatch, s.ConnectGateInput(2, "IN", w))
	assert.Equal(t, host.WidthMismatch, s.SetGateParameter(2, "BITS", "4"))
	assert.Equal(t, host.BadParam, s.SetGateParameter(2, "FOO", "1"))
	assert.Equal(t, host.BadParam, s.SetGateParameter(1, gatelib.OutputNum, "2"))
	assert.Equal(t, host.NotFound, s.DeleteGate(99))
	assert.Equal(t, host.NotFound, s.ConnectGateInput(2, "IN", 99))
	_, st = s.GetWireState(99)
	assert.Equal(t, host.NotFound, st)

	assert.Equal(t, host.OK, s.DisconnectGateInput(2, "IN"))
	assert.Equal(t, host.OK, s.DisconnectGateInput(2, "IN"))
	assert.Equal(t, host.OK, s.DeleteWire(w))
}

func Test_StatusOf(t *testing.T) {
	td := []struct {
		err error
		st  host.Status
	}{
		{nil, host.OK},
		{errors.Wrap(cs.ErrUnknownWire, "x"), host.NotFound},
		{errors.Wrap(cs.ErrStall, "x"), host.Stall},
		{errors.Wrap(cs.ErrInvalidID, "x"), host.Invalid},
		{errors.Wrap(cs.ErrInvalidWidth, "x"), host.Invalid},
		{errors.Wrap(cs.ErrWidthMismatch, "x"), host.WidthMismatch},
		{errors.New("other"), host.Invalid},
	}
	for _, d := range td {
		assert.Equal(t, d.st, host.StatusOf(d.err), "%v", d.err)
	}
	assert.Equal(t, "WIDTH_MISMATCH", host.WidthMismatch.String())
	assert.Equal(t, "INVALID", host.Status(42).String())
}

func Test_NewStepResult(t *testing.T) {
	c := cs.NewCircuit(gatelib.Catalog())
	w, err := c.NewWire(cs.NoID, 1)
	require.NoError(t, err)
	g, err := c.NewGate("TOGGLE", cs.NoID)
	require.NoError(t, err)
	require.NoError(t, c.SetGateParam(g, gatelib.OutputNum, "1"))
	require.NoError(t, c.ConnectOutput(g, "OUT", w))
	r, err := c.Step()
	require.NoError(t, err)
	require.Equal(t, []cs.ID{w}, r.Changed)

	// later edits do not leak into an already computed result
	require.NoError(t, c.SetGateParam(g, gatelib.OutputNum, "0"))
	_, err = c.Step()
	require.NoError(t, err)
	require.NoError(t, c.DeleteWire(w))

	got := host.NewStepResult(r)
	assert.Equal(t, []host.WireChange{{ID: w, State: []int{1}}}, got.ChangedWires)
}

func exec(t *testing.T, s *host.Session, js string) host.Response {
	t.Helper()
	var cmd host.Command
	require.NoError(t, json.Unmarshal([]byte(js), &cmd))
	return s.Exec(context.Background(), cmd)
}

func Test_Exec(t *testing.T) {
	s := newSession()

	r := exec(t, s, `{"op": "newGateAuto", "type": "KEYPAD"}`)
	require.Equal(t, host.OK, r.Status, r.Error)
	g := r.ID
	r = exec(t, s, `{"op": "setGateParameter", "gate": 1, "key": "BITS", "value": "4"}`)
	require.Equal(t, host.OK, r.Status, r.Error)
	r = exec(t, s, `{"op": "setGateParameter", "gate": 1, "key": "OUTPUT_NUM", "value": "0xa"}`)
	require.Equal(t, host.OK, r.Status, r.Error)
	r = exec(t, s, `{"op": "newWire", "wire": 7, "width": 4}`)
	require.Equal(t, host.OK, r.Status, r.Error)
	assert.EqualValues(t, 7, r.ID)
	r = s.Exec(context.Background(), host.Command{Op: host.OpConnectGateOutput, Gate: g, Port: "OUT", Wire: 7})
	require.Equal(t, host.OK, r.Status, r.Error)

	r = exec(t, s, `{"op": "stepN", "count": 3}`)
	require.Equal(t, host.OK, r.Status, r.Error)
	require.NotNil(t, r.Step)
	assert.Equal(t, []host.WireChange{{ID: 7, State: []int{0, 1, 0, 1}}}, r.Step.ChangedWires)

	r = exec(t, s, `{"op": "getWireState", "wire": 7}`)
	assert.Equal(t, []int{0, 1, 0, 1}, r.State)
	r = exec(t, s, `{"op": "getGateIDs"}`)
	assert.Equal(t, []cs.ID{1}, r.IDs)
	r = exec(t, s, `{"op": "getGateParameter", "gate": 1, "key": "OUTPUT_NUM"}`)
	assert.Equal(t, "10", r.Value)

	r = exec(t, s, `{"op": "frobnicate"}`)
	assert.Equal(t, host.Invalid, r.Status)
	assert.NotEmpty(t, r.Error)
	r = exec(t, s, `{"op": "stepN", "count": -1}`)
	assert.Equal(t, host.Invalid, r.Status)
	r = exec(t, s, `{"op": "deleteGate", "gate": 5}`)
	assert.Equal(t, host.NotFound, r.Status)
	assert.Equal(t, "NOT_FOUND", r.Error)

	r = exec(t, s, `{"op": "reset"}`)
	require.Equal(t, host.OK, r.Status, r.Error)
	assert.EqualValues(t, 0, r.Time)
	r = exec(t, s, `{"op": "destroyAllEvents"}`)
	require.Equal(t, host.OK, r.Status)
	assert.Equal(t, 0, s.Circuit().Pending())
}
