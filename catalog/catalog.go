// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package catalog loads gate type catalogues from YAML files.
//
// A catalogue derives new gate types from the ones already registered, with
// their own port declarations and parameter defaults:
//
//	types:
//	  - name: AND8
//	    base: AND
//	    params:
//	      BITS: "8"
//	      DELAY: "2"
//	  - name: OR5
//	    base: OR4
//	    inputs: IN_0, IN_1, IN_2, IN_3, IN_4
//
// Entries are processed in order, so an entry may derive from a type defined
// earlier in the same file.
//
package catalog

import (
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	cs "github.com/db47h/cedarsim"
)

// MaxFileSize is the maximum size of a catalogue file.
//
const MaxFileSize = 1 << 20

// File is the root of a catalogue file.
//
type File struct {
	Types []Entry `yaml:"types" validate:"dive"`
}

// Entry describes a derived gate type.
//
type Entry struct {
	Name    string            `yaml:"name" validate:"required"`
	Base    string            `yaml:"base" validate:"required"`
	Inputs  string            `yaml:"inputs,omitempty"`
	Outputs string            `yaml:"outputs,omitempty"`
	Params  map[string]string `yaml:"params,omitempty"`
}

var validate = validator.New()

// Parse decodes a catalogue from r.
//
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading catalogue")
	}
	if len(data) > MaxFileSize {
		return nil, errors.Errorf("catalogue larger than %d bytes", MaxFileSize)
	}
	var f File
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding catalogue")
	}
	if err = validate.Struct(&f); err != nil {
		return nil, errors.Wrap(err, "invalid catalogue")
	}
	return &f, nil
}

// Apply registers the catalogue entries in cat. It stops at the first error.
//
func (f *File) Apply(cat *cs.Catalog) error {
	for _, e := range f.Types {
		base := cat.Lookup(e.Base)
		if base == nil {
			return errors.Wrapf(cs.ErrUnknownType, "%s: base type %s", e.Name, e.Base)
		}
		d, err := base.Derive(e.Name, e.Inputs, e.Outputs, e.Params)
		if err != nil {
			return err
		}
		if err = cat.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Load parses a catalogue from r and registers its entries in cat.
//
func Load(r io.Reader, cat *cs.Catalog) error {
	f, err := Parse(r)
	if err != nil {
		return err
	}
	return f.Apply(cat)
}

// LoadFile is like Load but reads from the named file.
//
func LoadFile(name string, cat *cs.Catalog) error {
	fh, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "opening catalogue")
	}
	defer fh.Close()
	return errors.Wrap(Load(fh, cat), name)
}
