// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package simtest

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	cs "github.com/db47h/cedarsim"
)

// Exhaustive drives every combination of values on the given inputs
// (created with Input), lets the circuit settle and checks that the outputs
// match fn. Inputs are enumerated with the first one varying the slowest.
// At most 1<<16 combinations are tried.
//
func (b *Builder) Exhaustive(inputs []string, outputs []string, fn func(in []uint64) []uint64) {
	b.T.Helper()
	widths := make([]int, len(inputs))
	total := 0
	for i, n := range inputs {
		widths[i] = len(b.Value(n))
		total += widths[i]
	}
	if total > 16 {
		b.T.Fatalf("too many input bits: %d", total)
	}
	in := make([]uint64, len(inputs))
	for i := uint64(0); i < 1<<uint(total); i++ {
		shift := total
		for k, n := range inputs {
			shift -= widths[k]
			in[k] = i >> uint(shift) & (1<<uint(widths[k]) - 1)
			b.Set(n, in[k])
		}
		b.Settle()
		exp := fn(in)
		for k, n := range outputs {
			if got := b.Int(n); got != exp[k] {
				b.T.Errorf("%s: expected %s = %d, got %d", formatInputs(inputs, in), n, exp[k], got)
			}
		}
	}
}

func formatInputs(names []string, in []uint64) string {
	var sb strings.Builder
	for i, n := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(n)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatUint(in[i], 10))
	}
	return sb.String()
}

// A Part describes a gate to be compared with ComparePart.
//
type Part struct {
	Type   string
	Params []string
	// Inverted lists the ports with the INVERTED parameter set.
	Inverted []string
}

// ComparePart takes two parts and compares their outputs given the same
// random inputs. Both parts must have the same ports.
//
func ComparePart(t *testing.T, cat *cs.Catalog, p1, p2 Part, iter int) {
	t.Helper()
	b := New(t, cat)
	i1 := newPart(b, p1, "_1")
	i2 := newPart(b, p2, "_2")
	if len(i1.Inputs) != len(i2.Inputs) || len(i1.Outputs) != len(i2.Outputs) {
		t.Fatalf("%s and %s have different interfaces", p1.Type, p2.Type)
	}
	for i := range i1.Inputs {
		if i1.Inputs[i].Name != i2.Inputs[i].Name || i1.Inputs[i].Width != i2.Inputs[i].Width {
			t.Fatalf("input %d: %s[%d] != %s[%d]", i, i1.Inputs[i].Name, i1.Inputs[i].Width, i2.Inputs[i].Name, i2.Inputs[i].Width)
		}
	}
	for _, p := range i1.Inputs {
		b.Input(p.Name, p.Width)
	}

	check := func() {
		t.Helper()
		b.Settle()
		for _, o := range i1.Outputs {
			v1, v2 := b.String(o.Name+"_1"), b.String(o.Name+"_2")
			if v1 != v2 {
				var in []string
				for _, p := range i1.Inputs {
					in = append(in, p.Name+"="+b.String(p.Name))
				}
				t.Fatalf("%s: %s %s = %s, %s %s = %s", strings.Join(in, ", "), p1.Type, o.Name, v1, p2.Type, o.Name, v2)
			}
		}
	}
	for _, p := range i1.Inputs {
		b.Set(p.Name, 0)
	}
	check()
	for _, p := range i1.Inputs {
		b.Set(p.Name, 1<<uint(p.Width)-1)
	}
	check()
	for i := 0; i < iter; i++ {
		for _, p := range i1.Inputs {
			b.Set(p.Name, rand.Uint64()&(1<<uint(p.Width)-1))
		}
		check()
	}
}

// newPart creates a gate for p with every input connected to a wire named
// after the port and every output to a wire named after the port plus
// suffix.
//
func newPart(b *Builder, p Part, suffix string) cs.GateInfo {
	b.T.Helper()
	g := b.Gate(p.Type, "", p.Params...)
	info, err := b.C.Gate(g)
	if err != nil {
		b.T.Fatalf("%+v", err)
	}
	for _, pn := range p.Inverted {
		err = b.C.SetInputParam(g, pn, cs.ParamInverted, "true")
		if cs.Is(err, cs.ErrUnknownPort) {
			err = b.C.SetOutputParam(g, pn, cs.ParamInverted, "true")
		}
		if err != nil {
			b.T.Fatalf("%+v", err)
		}
	}
	for _, in := range info.Inputs {
		b.connect(g, info, in.Name, in.Name)
	}
	for _, out := range info.Outputs {
		b.connect(g, info, out.Name, out.Name+suffix)
	}
	return info
}
