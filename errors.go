// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cedarsim

import "github.com/pkg/errors"

// Errors returned by Circuit operations. They are always wrapped with some
// context; use errors.Cause to compare.
//
var (
	ErrUnknownGate   = errors.New("unknown gate")
	ErrUnknownWire   = errors.New("unknown wire")
	ErrUnknownType   = errors.New("unknown gate type")
	ErrUnknownPort   = errors.New("unknown port")
	ErrDuplicateID   = errors.New("identifier already in use")
	ErrInvalidID     = errors.New("invalid identifier")
	ErrWidthMismatch = errors.New("width mismatch")
	ErrInvalidWidth  = errors.New("invalid width")
	ErrUnknownParam  = errors.New("unknown parameter")
	ErrBadParamValue = errors.New("invalid parameter value")
	ErrBadSpec       = errors.New("invalid gate specification")
	ErrStall         = errors.New("simulation stalled")
)

// Is returns true if the cause of err is target.
//
func Is(err, target error) bool {
	return err != nil && errors.Cause(err) == target
}
