// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim_test

import (
	"testing"
	"testing/quick"

	cs "github.com/db47h/cedarsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Value_codes(t *testing.T) {
	// host applications rely on these
	assert.Equal(t, 0, int(cs.Zero))
	assert.Equal(t, 1, int(cs.One))
	assert.Equal(t, 2, int(cs.HiZ))
	assert.Equal(t, 3, int(cs.Conflict))
	assert.Equal(t, 4, int(cs.Unknown))
}

func Test_ParseValue(t *testing.T) {
	for _, v := range []cs.Value{cs.Zero, cs.One, cs.HiZ, cs.Conflict, cs.Unknown} {
		p, err := cs.ParseValue(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, p)
		p, err = cs.ParseValue(v.Name())
		require.NoError(t, err)
		assert.Equal(t, v, p)
	}
	_, err := cs.ParseValue("2")
	assert.Error(t, err)
}

func Test_Combine(t *testing.T) {
	data := []struct {
		a, b, r cs.Value
	}{
		{cs.HiZ, cs.HiZ, cs.HiZ},
		{cs.HiZ, cs.One, cs.One},
		{cs.Zero, cs.HiZ, cs.Zero},
		{cs.One, cs.One, cs.One},
		{cs.One, cs.Zero, cs.Conflict},
		{cs.Unknown, cs.HiZ, cs.Unknown},
		{cs.Unknown, cs.Unknown, cs.Unknown},
		{cs.Unknown, cs.One, cs.Conflict},
		{cs.Conflict, cs.HiZ, cs.Conflict},
		{cs.Conflict, cs.Zero, cs.Conflict},
	}
	for _, d := range data {
		assert.Equal(t, d.r, cs.Combine(d.a, d.b), "%v + %v", d.a, d.b)
		assert.Equal(t, d.r, cs.Combine(d.b, d.a), "%v + %v", d.b, d.a)
	}
}

func Test_Resolve_quick(t *testing.T) {
	toVec := func(bs []uint8) cs.Vector {
		v := make(cs.Vector, len(bs))
		for i, b := range bs {
			v[i] = cs.Value(b % 5)
		}
		return v
	}
	// order of drivers does not matter
	commute := func(a, b []uint8) bool {
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		va, vb := toVec(a[:n]), toVec(b[:n])
		return cs.Resolve(n, va, vb).Equal(cs.Resolve(n, vb, va))
	}
	if err := quick.Check(commute, nil); err != nil {
		t.Fatal(err)
	}
	// a single driver wins unless HiZ
	single := func(a []uint8) bool {
		v := toVec(a)
		return cs.Resolve(len(v), v).Equal(v) && cs.Resolve(len(v), v, cs.NewVector(len(v), cs.HiZ)).Equal(v)
	}
	if err := quick.Check(single, nil); err != nil {
		t.Fatal(err)
	}
	// no driver floats
	none := func(w uint8) bool {
		return cs.Resolve(int(w)).Equal(cs.NewVector(int(w), cs.HiZ))
	}
	if err := quick.Check(none, nil); err != nil {
		t.Fatal(err)
	}
}

func Test_Resolve_bus(t *testing.T) {
	a := cs.Vector{cs.One, cs.HiZ, cs.Zero, cs.One}
	b := cs.Vector{cs.HiZ, cs.HiZ, cs.Zero, cs.Zero}
	assert.Equal(t, "C0Z1", cs.Resolve(4, a, b).String())
}

func Test_Vector_Int(t *testing.T) {
	f := func(n uint16) bool {
		v := cs.FromInt(uint64(n), 16)
		r, ok := v.Int()
		return ok && r == uint64(n)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
	_, ok := cs.Vector{cs.One, cs.HiZ}.Int()
	assert.False(t, ok)
}

func Test_ParseVector(t *testing.T) {
	v, err := cs.ParseVector("10ZXC")
	require.NoError(t, err)
	assert.Equal(t, cs.Vector{cs.Conflict, cs.Unknown, cs.HiZ, cs.Zero, cs.One}, v)
	assert.Equal(t, "10ZXC", v.String())
	_, err = cs.ParseVector("10?")
	assert.Error(t, err)
}

func Test_logic(t *testing.T) {
	assert.Equal(t, cs.Zero, cs.And(cs.Zero, cs.Unknown))
	assert.Equal(t, cs.Unknown, cs.And(cs.One, cs.HiZ))
	assert.Equal(t, cs.One, cs.Or(cs.HiZ, cs.One))
	assert.Equal(t, cs.Unknown, cs.Or(cs.Zero, cs.Conflict))
	assert.Equal(t, cs.One, cs.Xor(cs.Zero, cs.One))
	assert.Equal(t, cs.Unknown, cs.Xor(cs.Zero, cs.HiZ))
	assert.Equal(t, cs.Unknown, cs.Not(cs.HiZ))
	assert.Equal(t, cs.HiZ, cs.HiZ.Invert())
}
