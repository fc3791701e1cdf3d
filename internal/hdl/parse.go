// Package hdl parses the small description language used for port
// declarations and connection lists.
//
// A port list is a comma separated list of pins, each optionally followed by
// a width in brackets, either an integer or the name of an integer parameter:
//
//	IN_0[BITS], IN_1[BITS], EN, OUT[8]
//
// A connection list is a comma separated list of assignments:
//
//	IN_0=a, IN_1=b, OUT=sum
//
// Pins in a connection list may also use a range, like bus[0..3], which
// expands to bus_0, bus_1, bus_2, bus_3 (see Expand).
//
package hdl

import (
	"strconv"

	"github.com/pkg/errors"
)

// Pin is a pin name with an optional width or index specification.
//
type Pin struct {
	Name string
	Pos  int
	// Size is the integer between brackets, or -1 if none.
	Size int
	// Param is the identifier between brackets, if any.
	Param string
	// End is the end of a range pin[Size..End], or -1 if not a range.
	End int
}

// Assignment is a part pin to wire assignment: LHS=RHS.
//
type Assignment struct {
	LHS Pin
	RHS Pin
}

type parser struct {
	input string
	items []Item
	i     Item
}

func (p *parser) lex() Item {
	p.i = p.items[0]
	if len(p.items) > 1 {
		p.items = p.items[1:]
	}
	return p.i
}

// ParsePins parses a port list.
//
func ParsePins(input string) ([]Pin, error) {
	p := &parser{input: input, items: Lex(input)}
	var out []Pin
	if p.lex().Type == EOF {
		return nil, nil
	}
	for {
		pin, err := p.pin(false)
		if err != nil {
			return nil, err
		}
		out = append(out, pin)
		switch p.i.Type {
		case EOF:
			return out, nil
		case Comma:
			p.lex()
		default:
			return nil, parseError(input, p.i.Pos, "unexpected "+p.i.String())
		}
	}
}

// ParseAssignments parses a connection list.
//
func ParseAssignments(input string) ([]Assignment, error) {
	p := &parser{input: input, items: Lex(input)}
	var out []Assignment
	if p.lex().Type == EOF {
		return nil, nil
	}
	for {
		lhs, err := p.pin(true)
		if err != nil {
			return nil, err
		}
		if p.i.Type != Equal {
			return nil, parseError(input, p.i.Pos, "expected '=', got "+p.i.String())
		}
		p.lex()
		rhs, err := p.pin(true)
		if err != nil {
			return nil, err
		}
		out = append(out, Assignment{lhs, rhs})
		switch p.i.Type {
		case EOF:
			return out, nil
		case Comma:
			p.lex()
		default:
			return nil, parseError(input, p.i.Pos, "unexpected "+p.i.String())
		}
	}
}

// pin parses a pin at the current item and leaves the parser on the item
// following it.
//
func (p *parser) pin(allowRange bool) (Pin, error) {
	if p.i.Type != Ident {
		return Pin{}, parseError(p.input, p.i.Pos, "expected pin name, got "+p.i.String())
	}
	pin := Pin{Name: p.i.Value.(string), Pos: p.i.Pos, Size: -1, End: -1}
	if p.lex().Type != BracketOpen {
		return pin, nil
	}
	switch p.lex().Type {
	case Int:
		pin.Size = p.i.Value.(int)
	case Ident:
		pin.Param = p.i.Value.(string)
	default:
		return Pin{}, parseError(p.input, p.i.Pos, "integer or parameter name expected after '['")
	}
	p.lex()
	if p.i.Type == Range {
		if !allowRange || pin.Size < 0 {
			return Pin{}, parseError(p.input, p.i.Pos, "unexpected range")
		}
		if p.lex().Type != Int {
			return Pin{}, parseError(p.input, p.i.Pos, "integer value expected after '..'")
		}
		pin.End = p.i.Value.(int)
		if pin.End < pin.Size {
			return Pin{}, parseError(p.input, p.i.Pos, "invalid range")
		}
		p.lex()
	}
	if p.i.Type != BracketClose {
		return Pin{}, parseError(p.input, p.i.Pos, "closing ']' expected")
	}
	p.lex()
	return pin, nil
}

// Expand returns the individual pin names of a range pin name[a..b]:
// name_a, ..., name_b. Other pins are returned as a single name, without
// their bracketed part.
//
func (p Pin) Expand() []string {
	if p.End < 0 {
		return []string{p.Name}
	}
	r := make([]string, 0, p.End-p.Size+1)
	for i := p.Size; i <= p.End; i++ {
		r = append(r, p.Name+"_"+strconv.Itoa(i))
	}
	return r
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
