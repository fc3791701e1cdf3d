// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const halfAdder = `
wires:
  - {id: 1, width: 1}
  - {id: 2, width: 1}
  - {id: 3, width: 1}
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
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CEDARSIM_CONFIG", "")
	configFile, catalogFile = "", ""
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func Test_run(t *testing.T) {
	name := filepath.Join(t.TempDir(), "ha.yaml")
	require.NoError(t, os.WriteFile(name, []byte(halfAdder), 0600))
	out, err := execute(t, "run", name, "--steps", "10")
	require.NoError(t, err)
	assert.Equal(t, "0\t1\t1\n0\t2\t0\n1\t3\t1\n", out)

	_, err = execute(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func Test_types(t *testing.T) {
	out, err := execute(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "name: REGISTER")
}

func Test_snapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cedarsim.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("store: {path: "+filepath.Join(dir, "db")+"}\n"), 0600))
	name := filepath.Join(dir, "ha.yaml")
	require.NoError(t, os.WriteFile(name, []byte(halfAdder), 0600))

	_, err := execute(t, "snapshot", "save", "ha", name, "--config", cfg)
	require.NoError(t, err)
	out, err := execute(t, "snapshot", "list", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "ha\n", out)
	out, err = execute(t, "snapshot", "load", "ha", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "type: XOR")
	_, err = execute(t, "snapshot", "delete", "ha", "--config", cfg)
	require.NoError(t, err)
	_, err = execute(t, "snapshot", "load", "ha", "--config", cfg)
	assert.Error(t, err)
}
