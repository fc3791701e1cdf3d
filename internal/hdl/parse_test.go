package hdl_test

import (
	"testing"

	"github.com/db47h/cedarsim/internal/hdl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePins(t *testing.T) {
	td := []struct {
		in   string
		pins []hdl.Pin
		err  bool
	}{
		{"", nil, false},
		{"a", []hdl.Pin{{Name: "a", Size: -1, End: -1}}, false},
		{"IN_0[BITS], EN, OUT[8]", []hdl.Pin{
			{Name: "IN_0", Size: -1, Param: "BITS", End: -1},
			{Name: "EN", Pos: 12, Size: -1, End: -1},
			{Name: "OUT", Pos: 16, Size: 8, End: -1},
		}, false},
		{"a,", nil, true},
		{"a[", nil, true},
		{"a[2..3]", nil, true},
		{"a b", nil, true},
		{"a;", nil, true},
	}
	for _, d := range td {
		t.Run(d.in, func(t *testing.T) {
			pins, err := hdl.ParsePins(d.in)
			if d.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, d.pins, pins)
		})
	}
}

func TestParseAssignments(t *testing.T) {
	as, err := hdl.ParseAssignments("IN_0=a, IN_1 = b[0..2], OUT=out")
	require.NoError(t, err)
	require.Len(t, as, 3)
	assert.Equal(t, "IN_0", as[0].LHS.Name)
	assert.Equal(t, "a", as[0].RHS.Name)
	assert.Equal(t, []string{"b_0", "b_1", "b_2"}, as[1].RHS.Expand())
	assert.Equal(t, []string{"out"}, as[2].RHS.Expand())

	for _, in := range []string{"a", "a=", "=b", "a=b c=d", "a=b[3..1]"} {
		_, err := hdl.ParseAssignments(in)
		assert.Error(t, err, in)
	}
}
