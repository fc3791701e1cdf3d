// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package telemetry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/gatelib"
	"github.com/db47h/cedarsim/host"
	"github.com/db47h/cedarsim/internal/telemetry"
)

func Test_Setup(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := telemetry.Setup(telemetry.Stdout, &buf)
	require.NoError(t, err)

	s := host.NewSession(cs.NewCircuit(gatelib.Catalog()), nil)
	r := s.Exec(context.Background(), host.Command{Op: host.OpNewGateAuto, Type: "NOPE"})
	assert.Equal(t, host.UnknownType, r.Status)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"host.Exec"`)
	assert.Contains(t, buf.String(), "UNKNOWN_TYPE")
}

func Test_Setup_none(t *testing.T) {
	shutdown, err := telemetry.Setup(telemetry.None, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = telemetry.Setup("jaeger", nil)
	assert.Error(t, err)
}
