// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"strings"

	"github.com/pkg/errors"
)

// A Value is the state of a single logic line.
//
// The numeric codes are stable and are the ones transmitted to host
// applications.
//
type Value uint8

// Logic values.
const (
	Zero     Value = iota // logic low
	One                   // logic high
	HiZ                   // floating, not driven
	Conflict              // two or more drivers disagree
	Unknown               // indeterminate
)

var valueRunes = [...]byte{'0', '1', 'Z', 'C', 'X'}

func (v Value) String() string {
	if int(v) < len(valueRunes) {
		return string(valueRunes[v])
	}
	return "?"
}

// Name returns the long name of v, as used in catalogue and netlist files.
//
func (v Value) Name() string {
	switch v {
	case Zero:
		return "ZERO"
	case One:
		return "ONE"
	case HiZ:
		return "HI_Z"
	case Conflict:
		return "CONFLICT"
	case Unknown:
		return "UNKNOWN"
	}
	return "INVALID"
}

// ParseValue parses either the short form ("0", "1", "Z", "C", "X") or the
// long form ("ZERO", "ONE", "HI_Z", "CONFLICT", "UNKNOWN") of a logic value.
//
func ParseValue(s string) (Value, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "0", "ZERO":
		return Zero, nil
	case "1", "ONE":
		return One, nil
	case "Z", "HI_Z", "HIZ":
		return HiZ, nil
	case "C", "CONFLICT":
		return Conflict, nil
	case "X", "UNKNOWN":
		return Unknown, nil
	}
	return Unknown, errors.Errorf("invalid logic value %q", s)
}

// Driven returns true if v is either Zero or One.
//
func (v Value) Driven() bool { return v == Zero || v == One }

// Combine merges two drivers of the same line. HiZ is transparent and any
// disagreement between active drivers yields Conflict, which is sticky.
//
func Combine(a, b Value) Value {
	switch {
	case a == HiZ:
		return b
	case b == HiZ:
		return a
	case a == b:
		return a
	}
	return Conflict
}

// Invert swaps Zero and One and leaves every other value untouched. It models
// an inversion bubble on a port.
//
func (v Value) Invert() Value {
	switch v {
	case Zero:
		return One
	case One:
		return Zero
	}
	return v
}

// Not is the logical negation. Undriven inputs produce Unknown.
//
func Not(v Value) Value {
	switch v {
	case Zero:
		return One
	case One:
		return Zero
	}
	return Unknown
}

// And returns the logical AND of a and b. Zero dominates.
//
func And(a, b Value) Value {
	switch {
	case a == Zero || b == Zero:
		return Zero
	case a == One && b == One:
		return One
	}
	return Unknown
}

// Or returns the logical OR of a and b. One dominates.
//
func Or(a, b Value) Value {
	switch {
	case a == One || b == One:
		return One
	case a == Zero && b == Zero:
		return Zero
	}
	return Unknown
}

// Xor returns the exclusive OR of a and b.
//
func Xor(a, b Value) Value {
	if !a.Driven() || !b.Driven() {
		return Unknown
	}
	if a == b {
		return Zero
	}
	return One
}

// FromBool converts a boolean to Zero or One.
//
func FromBool(b bool) Value {
	if b {
		return One
	}
	return Zero
}
