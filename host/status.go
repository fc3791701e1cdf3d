// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package host

import (
	"github.com/pkg/errors"

	cs "github.com/db47h/cedarsim"
)

// Status is the integer outcome of a host operation.
//
type Status int

// Status codes.
//
const (
	OK Status = iota
	NotFound
	Duplicate
	BadPort
	WidthMismatch
	BadParam
	UnknownType
	Stall
	Invalid
)

var statusNames = [...]string{
	OK:            "OK",
	NotFound:      "NOT_FOUND",
	Duplicate:     "DUPLICATE",
	BadPort:       "BAD_PORT",
	WidthMismatch: "WIDTH_MISMATCH",
	BadParam:      "BAD_PARAM",
	UnknownType:   "UNKNOWN_TYPE",
	Stall:         "STALL",
	Invalid:       "INVALID",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "INVALID"
	}
	return statusNames[s]
}

// StatusOf maps an error returned by the simulation kernel to a status code.
// A nil error maps to OK.
//
func StatusOf(err error) Status {
	if err == nil {
		return OK
	}
	switch errors.Cause(err) {
	case cs.ErrUnknownGate, cs.ErrUnknownWire:
		return NotFound
	case cs.ErrDuplicateID:
		return Duplicate
	case cs.ErrUnknownPort:
		return BadPort
	case cs.ErrWidthMismatch:
		return WidthMismatch
	case cs.ErrUnknownParam, cs.ErrBadParamValue:
		return BadParam
	case cs.ErrUnknownType:
		return UnknownType
	case cs.ErrStall:
		return Stall
	case cs.ErrInvalidID, cs.ErrInvalidWidth:
		return Invalid
	}
	return Invalid
}
