// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib_test

import (
	"testing"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/gatelib"
	"github.com/db47h/cedarsim/simtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Input_Output(t *testing.T) {
	var (
		in  uint64
		got cs.Vector
	)
	cat := gatelib.Catalog()
	require.NoError(t, cat.Register(
		gatelib.Input("FN_IN", 4, func() uint64 { return in }),
		gatelib.Output("FN_OUT", 4, func(v cs.Vector) { got = v })))
	b := simtest.New(t, cat)
	b.Gate("FN_IN", "OUT=a")
	b.Gate("FN_OUT", "IN=a")
	b.Settle()
	assert.Equal(t, "0000", got.String())

	in = 9
	b.Settle()
	assert.Equal(t, "0000", got.String())
	b.C.StepOnlyGates()
	b.Settle()
	assert.Equal(t, "1001", got.String())
}

func Test_sources(t *testing.T) {
	b := simtest.New(t, nil)
	b.Gate("ONE", "OUT=one", "BITS", "3")
	b.Gate("ZERO", "OUT=zero", "BITS", "3")
	b.Gate("HIZ", "OUT=z", "BITS", "3")
	b.Gate("UNKNOWN", "OUT=x", "BITS", "3")
	tg := b.Gate("TOGGLE", "OUT=t")
	b.Gate("LED", "IN=t")
	b.Gate("PROBE", "IN=one", "BITS", "3")
	b.Settle()
	assert.Equal(t, "111", b.String("one"))
	assert.Equal(t, "000", b.String("zero"))
	assert.Equal(t, "ZZZ", b.String("z"))
	assert.Equal(t, "XXX", b.String("x"))
	assert.Equal(t, "0", b.String("t"))
	require.NoError(t, b.C.SetGateParam(tg, gatelib.OutputNum, "1"))
	b.Settle()
	assert.Equal(t, "1", b.String("t"))
	assert.Error(t, b.C.SetGateParam(tg, gatelib.OutputNum, "2"))
}
