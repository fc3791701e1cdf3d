// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package catalog_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	cs "github.com/db47h/cedarsim"
	"github.com/db47h/cedarsim/catalog"
	"github.com/db47h/cedarsim/gatelib"
	"github.com/db47h/cedarsim/simtest"
)

const testCatalog = `
types:
  - name: AND8
    base: AND
    params:
      BITS: "8"
      DELAY: "2"
  - name: OR5
    base: OR4
    inputs: IN_0, IN_1, IN_2, IN_3, IN_4
  - name: SLOW_CLOCK
    base: CLOCK
    params:
      HALF_CYCLE: "50"
`

func Test_Load(t *testing.T) {
	cat := gatelib.Catalog()
	require.NoError(t, catalog.Load(strings.NewReader(testCatalog), cat))
	for _, n := range []string{"AND8", "OR5", "SLOW_CLOCK"} {
		assert.NotNil(t, cat.Lookup(n), n)
	}

	b := simtest.New(t, cat)
	b.Input("a", 8)
	b.Input("b", 8)
	b.Gate("AND8", "IN_0=a, IN_1=b, OUT=out")
	b.Set("a", 0xf0)
	b.Set("b", 0x3c)
	b.Settle()
	assert.Equal(t, uint64(0x30), b.Int("out"))

	g := b.Gate("OR5", "IN_4=x, OUT=or")
	b.Gate("ONE", "OUT=x")
	b.Settle()
	assert.Equal(t, uint64(1), b.Int("or"))
	d, err := b.C.GateParam(g, cs.ParamDelay)
	require.NoError(t, err)
	assert.Equal(t, "1", d)
}

func Test_Load_errors(t *testing.T) {
	data := []struct {
		name, in string
		cause    error
	}{
		{"syntax", "types: [", nil},
		{"noname", "types:\n  - base: AND\n", nil},
		{"nobase", "types:\n  - name: X\n", nil},
		{"unknownbase", "types:\n  - name: X\n    base: NOPE\n", cs.ErrUnknownType},
		{"badparam", "types:\n  - name: X\n    base: AND\n    params: {BITS: \"100\"}\n", cs.ErrBadParamValue},
		{"unknownparam", "types:\n  - name: X\n    base: AND\n    params: {FOO: \"1\"}\n", cs.ErrUnknownParam},
		{"duplicate", "types:\n  - name: AND\n    base: OR\n", cs.ErrBadSpec},
		{"badports", "types:\n  - name: X\n    base: AND\n    inputs: \"IN_0[\"\n", cs.ErrBadSpec},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			err := catalog.Load(strings.NewReader(d.in), gatelib.Catalog())
			require.Error(t, err)
			if d.cause != nil {
				assert.True(t, cs.Is(err, d.cause), "%v", err)
			}
		})
	}
}

func Test_Dump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, catalog.Dump(&buf, gatelib.Catalog()))
	var types []catalog.Type
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &types))
	var reg *catalog.Type
	for i := range types {
		if types[i].Name == "REGISTER" {
			reg = &types[i]
		}
	}
	require.NotNil(t, reg)
	assert.Equal(t, catalog.Port{Name: "IN", WidthParam: "BITS"}, reg.Inputs[0])
	var cv *catalog.Param
	for i := range reg.Params {
		if reg.Params[i].Name == gatelib.CurrentValue {
			cv = &reg.Params[i]
		}
	}
	require.NotNil(t, cv)
	assert.Equal(t, "state", cv.Class)
	assert.Equal(t, "int", cv.Kind)
}
