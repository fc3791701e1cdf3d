// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package store_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/netlist"
	"github.com/db47h/cedarsim/store"
)

func doc(name string) *netlist.Document {
	return &netlist.Document{
		Name:  name,
		Wires: []netlist.Wire{{ID: 1, Width: 4}},
		Gates: []netlist.Gate{{ID: 1, Type: "KEYPAD", Params: map[string]string{"BITS": "4"}, Outputs: map[string]cs.ID{"OUT": 1}}},
	}
}

func Test_Store(t *testing.T) {
	s, err := store.Open(store.Config{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save("b", doc("second")))
	require.NoError(t, s.Save("a", doc("first")))
	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	d, err := s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, doc("first"), d)

	// overwrite
	require.NoError(t, s.Save("a", doc("third")))
	d, err = s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, "third", d.Name)

	require.NoError(t, s.Delete("a"))
	_, err = s.Load("a")
	assert.Equal(t, store.ErrNotFound, errors.Cause(err))
	assert.Equal(t, store.ErrNotFound, errors.Cause(s.Delete("a")))
	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	assert.Error(t, s.Save("x/y", doc("")))
	assert.Error(t, s.Save("", doc("")))
}

func Test_Store_persistent(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(store.Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Save("keep", doc("kept")))
	require.NoError(t, s.Close())

	s, err = store.Open(store.Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	d, err := s.Load("keep")
	require.NoError(t, err)
	assert.Equal(t, "kept", d.Name)
}
