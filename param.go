// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParamKind is the type of a parameter value.
//
type ParamKind int

// Parameter kinds.
const (
	IntParam ParamKind = iota
	BoolParam
	StringParam
	EnumParam
)

// ParamClass tells what a parameter represents.
//
type ParamClass int

// Parameter classes.
const (
	// Behavioral parameters configure a gate (bit width, delay...).
	Behavioral ParamClass = iota
	// State parameters expose observable internal state (register contents,
	// memory, toggle position). Behaviors may update them during evaluation.
	State
	// Decoration parameters belong to the presentation layer. They are
	// stored and returned but never trigger an evaluation.
	Decoration
)

// Common parameter names.
const (
	ParamDelay    = "DELAY"
	ParamLabel    = "LABEL"
	ParamAngle    = "ANGLE"
	ParamInverted = "INVERTED"
)

// A ParamSpec declares a parameter in a gate type schema.
//
type ParamSpec struct {
	Name  string
	Kind  ParamKind
	Class ParamClass
	// Default value, in its textual form.
	Default string
	// Min and Max bound IntParam values when Max >= Min.
	Min, Max int64
	// Choices lists the allowed values of an EnumParam.
	Choices []string
	// Prefix makes the spec match any key made of Name followed by a
	// decimal integer (like ADDRESS_12).
	Prefix bool
}

// Bounded returns an IntParam spec within [min, max].
//
func Bounded(name string, class ParamClass, def, min, max int64) ParamSpec {
	return ParamSpec{Name: name, Kind: IntParam, Class: class, Default: strconv.FormatInt(def, 10), Min: min, Max: max}
}

// Flag returns a BoolParam spec.
//
func Flag(name string, class ParamClass, def bool) ParamSpec {
	return ParamSpec{Name: name, Kind: BoolParam, Class: class, Default: strconv.FormatBool(def)}
}

// Check validates v and returns its canonical form.
//
func (p *ParamSpec) Check(v string) (string, error) {
	switch p.Kind {
	case IntParam:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return "", errors.Wrapf(ErrBadParamValue, "%s: %q is not an integer", p.Name, v)
		}
		if p.Max >= p.Min && (n < p.Min || n > p.Max) {
			return "", errors.Wrapf(ErrBadParamValue, "%s: %d out of range [%d, %d]", p.Name, n, p.Min, p.Max)
		}
		return strconv.FormatInt(n, 10), nil
	case BoolParam:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return "", errors.Wrapf(ErrBadParamValue, "%s: %q is not a boolean", p.Name, v)
		}
		return strconv.FormatBool(b), nil
	case EnumParam:
		for _, c := range p.Choices {
			if c == v {
				return v, nil
			}
		}
		return "", errors.Wrapf(ErrBadParamValue, "%s: %q not one of %v", p.Name, v, p.Choices)
	}
	return v, nil
}

func (p *ParamSpec) matches(key string) bool {
	if !p.Prefix {
		return key == p.Name
	}
	if !strings.HasPrefix(key, p.Name) || len(key) == len(p.Name) {
		return false
	}
	_, err := strconv.ParseUint(key[len(p.Name):], 10, 32)
	return err == nil
}

// paramSet is a compiled list of parameter specs.
//
type paramSet struct {
	byName map[string]*ParamSpec
	prefix []*ParamSpec
}

func newParamSet(specs []ParamSpec) (*paramSet, error) {
	s := &paramSet{byName: make(map[string]*ParamSpec, len(specs))}
	for i := range specs {
		p := &specs[i]
		if p.Name == "" {
			return nil, errors.New("empty parameter name")
		}
		if p.Prefix {
			s.prefix = append(s.prefix, p)
			continue
		}
		if _, ok := s.byName[p.Name]; ok {
			return nil, errors.Errorf("duplicate parameter %s", p.Name)
		}
		if p.Default != "" || p.Kind != StringParam {
			if _, err := p.Check(p.Default); err != nil {
				return nil, errors.Wrap(err, "bad default")
			}
		}
		s.byName[p.Name] = p
	}
	return s, nil
}

func (s *paramSet) lookup(key string) *ParamSpec {
	if p, ok := s.byName[key]; ok {
		return p
	}
	for _, p := range s.prefix {
		if p.matches(key) {
			return p
		}
	}
	return nil
}

// defaults returns the default values of all non-prefix parameters.
//
func (s *paramSet) defaults() map[string]string {
	m := make(map[string]string, len(s.byName))
	for k, p := range s.byName {
		m[k] = p.Default
	}
	return m
}
