// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package netlist reads and writes circuit graphs.
//
// A Document is a plain description of the gates and wires of a circuit,
// with their identifiers, parameters and connections. It can be encoded to
// YAML, applied to a Circuit or captured from one:
//
//	name: half adder
//	wires:
//	  - {id: 1, width: 1}
//	  - {id: 2, width: 1}
//	  - {id: 3, width: 1}
//	gates:
//	  - id: 1
//	    type: XOR
//	    inputs: {IN_0: 1, IN_1: 2}
//	    outputs: {OUT: 3}
//
package netlist

import (
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	cs "github.com/db47h/cedarsim"
)

// MaxDocumentSize is the maximum size of an encoded document.
//
const MaxDocumentSize = 16 << 20

// Document describes a circuit graph.
//
type Document struct {
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Wires []Wire `yaml:"wires,omitempty" json:"wires,omitempty" validate:"dive"`
	Gates []Gate `yaml:"gates,omitempty" json:"gates,omitempty" validate:"dive"`
}

// Wire describes a wire.
//
type Wire struct {
	ID    cs.ID `yaml:"id" json:"id" validate:"required"`
	Width int   `yaml:"width" json:"width" validate:"min=1"`
}

// Gate describes a gate and its connections.
//
type Gate struct {
	ID           cs.ID                        `yaml:"id" json:"id" validate:"required"`
	Type         string                       `yaml:"type" json:"type" validate:"required"`
	Params       map[string]string            `yaml:"params,omitempty" json:"params,omitempty"`
	Inputs       map[string]cs.ID             `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs      map[string]cs.ID             `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	InputParams  map[string]map[string]string `yaml:"input_params,omitempty" json:"inputParams,omitempty"`
	OutputParams map[string]map[string]string `yaml:"output_params,omitempty" json:"outputParams,omitempty"`
}

var validate = validator.New()

// Decode reads a YAML document from r.
//
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading netlist")
	}
	if len(data) > MaxDocumentSize {
		return nil, errors.Errorf("netlist larger than %d bytes", MaxDocumentSize)
	}
	return Unmarshal(data)
}

// Unmarshal decodes a YAML document.
//
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(err, "decoding netlist")
	}
	if err := validate.Struct(&d); err != nil {
		return nil, errors.Wrap(err, "invalid netlist")
	}
	return &d, nil
}

// Encode writes d to w in YAML.
//
func Encode(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(err, "encoding netlist")
	}
	return errors.Wrap(enc.Close(), "encoding netlist")
}

// Marshal returns the YAML encoding of d.
//
func Marshal(d *Document) ([]byte, error) {
	b, err := yaml.Marshal(d)
	return b, errors.Wrap(err, "encoding netlist")
}

func sortedKeys[T any](m map[string]T) []string {
	r := make([]string, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}
