// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import (
	"strings"

	"github.com/pkg/errors"
)

// A Vector holds one Value per bit of a wire or port. Bit 0 is the least
// significant bit.
//
type Vector []Value

// NewVector returns a vector of the given width with all bits set to v.
//
func NewVector(width int, v Value) Vector {
	r := make(Vector, width)
	for i := range r {
		r[i] = v
	}
	return r
}

// FromInt returns the width least significant bits of n as a vector.
//
func FromInt(n uint64, width int) Vector {
	r := make(Vector, width)
	for i := range r {
		if i < 64 && n&(1<<uint(i)) != 0 {
			r[i] = One
		}
	}
	return r
}

// Int returns the vector as an unsigned integer. ok is false if any bit is
// neither Zero nor One, or if the vector is wider than 64 bits.
//
func (v Vector) Int() (n uint64, ok bool) {
	if len(v) > 64 {
		return 0, false
	}
	for i, b := range v {
		switch b {
		case One:
			n |= 1 << uint(i)
		case Zero:
		default:
			return 0, false
		}
	}
	return n, true
}

// Equal reports whether v and w have the same width and bits.
//
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of v.
//
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	r := make(Vector, len(v))
	copy(r, v)
	return r
}

// Resize returns a copy of v with the given width. Missing bits are filled
// with fill.
//
func (v Vector) Resize(width int, fill Value) Vector {
	r := make(Vector, width)
	for i := range r {
		if i < len(v) {
			r[i] = v[i]
		} else {
			r[i] = fill
		}
	}
	return r
}

// Fill sets all bits of v to x.
//
func (v Vector) Fill(x Value) Vector {
	for i := range v {
		v[i] = x
	}
	return v
}

// Invert returns a copy of v with every bit inverted with Value.Invert.
//
func (v Vector) Invert() Vector {
	r := make(Vector, len(v))
	for i, b := range v {
		r[i] = b.Invert()
	}
	return r
}

// Driven returns true if all bits are Zero or One.
//
func (v Vector) Driven() bool {
	for _, b := range v {
		if !b.Driven() {
			return false
		}
	}
	return true
}

// Codes returns the numeric codes of the vector bits.
//
func (v Vector) Codes() []int {
	r := make([]int, len(v))
	for i, b := range v {
		r[i] = int(b)
	}
	return r
}

// String returns the vector bits, most significant bit first.
//
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(len(v))
	for i := len(v) - 1; i >= 0; i-- {
		b.WriteString(v[i].String())
	}
	return b.String()
}

// ParseVector parses a string of short form values, most significant bit
// first, like the output of Vector.String.
//
func ParseVector(s string) (Vector, error) {
	r := make(Vector, len(s))
	for i := range s {
		v, err := ParseValue(s[i : i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "in %q", s)
		}
		r[len(s)-1-i] = v
	}
	return r, nil
}

// Resolve computes the value of a line of the given width from the values of
// its drivers. Each bit is resolved independently with Combine. A line with
// no driver floats (HiZ). Drivers narrower than width leave the missing bits
// undriven.
//
func Resolve(width int, drivers ...Vector) Vector {
	r := NewVector(width, HiZ)
	for _, d := range drivers {
		for i := 0; i < width && i < len(d); i++ {
			r[i] = Combine(r[i], d[i])
		}
	}
	return r
}
