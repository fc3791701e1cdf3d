// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package catalog

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	cs "github.com/db47h/cedarsim"
)

// Port describes a gate port.
//
type Port struct {
	Name  string `yaml:"name" json:"name"`
	Width int    `yaml:"width,omitempty" json:"width,omitempty"`
	// WidthParam is the parameter holding the port width.
	WidthParam string `yaml:"width_param,omitempty" json:"widthParam,omitempty"`
}

// Param describes a gate parameter.
//
type Param struct {
	Name    string   `yaml:"name" json:"name"`
	Kind    string   `yaml:"kind" json:"kind"`
	Class   string   `yaml:"class" json:"class"`
	Default string   `yaml:"default,omitempty" json:"default,omitempty"`
	Min     *int64   `yaml:"min,omitempty" json:"min,omitempty"`
	Max     *int64   `yaml:"max,omitempty" json:"max,omitempty"`
	Choices []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Prefix  bool     `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// Type describes a gate type, as seen by a host application.
//
type Type struct {
	Name    string  `yaml:"name" json:"name"`
	Inputs  []Port  `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs []Port  `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Params  []Param `yaml:"params" json:"params"`
}

var (
	kinds   = [...]string{cs.IntParam: "int", cs.BoolParam: "bool", cs.StringParam: "string", cs.EnumParam: "enum"}
	classes = [...]string{cs.Behavioral: "behavioral", cs.State: "state", cs.Decoration: "decoration"}
)

// Describe returns the description of every type in cat, sorted by name.
//
func Describe(cat *cs.Catalog) []Type {
	names := cat.Types()
	r := make([]Type, 0, len(names))
	for _, n := range names {
		s := cat.Lookup(n)
		t := Type{Name: n, Inputs: ports(s.InputPorts()), Outputs: ports(s.OutputPorts())}
		for _, p := range s.Schema() {
			pd := Param{Name: p.Name, Kind: kinds[p.Kind], Class: classes[p.Class], Default: p.Default, Choices: p.Choices, Prefix: p.Prefix}
			if p.Kind == cs.IntParam && p.Max >= p.Min {
				lo, hi := p.Min, p.Max
				pd.Min, pd.Max = &lo, &hi
			}
			t.Params = append(t.Params, pd)
		}
		r = append(r, t)
	}
	return r
}

func ports(ps []cs.PortInfo) []Port {
	r := make([]Port, len(ps))
	for i, p := range ps {
		r[i] = Port{Name: p.Name, Width: p.Width, WidthParam: p.WidthParam}
	}
	return r
}

// Dump writes the description of every type in cat to w, in YAML.
//
func Dump(w io.Writer, cat *cs.Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Describe(cat)); err != nil {
		return errors.Wrap(err, "encoding catalogue")
	}
	return errors.Wrap(enc.Close(), "encoding catalogue")
}
