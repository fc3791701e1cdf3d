package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Type is the type of a lexical item.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
	Equal
)

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	BracketOpen:  "'['",
	BracketClose: "']'",
	Comma:        "','",
	Int:          "integer",
	Range:        "'..'",
	Equal:        "'='",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Item is a lexical item. Value is a string for identifiers and raw
// characters, and an int for integers.
//
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident:
		return "identifier " + strconv.Quote(i.Value.(string))
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	case Raw:
		return "character " + strconv.Quote(i.Value.(string))
	}
	return i.Type.String()
}

type stateFn func(l *lexer) stateFn

type lexer struct {
	input string
	start int
	pos   int
	width int
	items []Item
}

const eof = -1

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

func (l *lexer) backup() { l.pos -= l.width }

func (l *lexer) emit(t Type, v interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: l.start, Value: v})
	l.start = l.pos
}

// Lex splits input into lexical items. The returned slice always ends with
// an EOF item. Lexing stops at the first invalid character, which is
// returned as a Raw item.
//
func Lex(input string) []Item {
	l := &lexer{input: input}
	for state := lexInit; state != nil; {
		state = state(l)
	}
	return l.items
}

func lexInit(l *lexer) stateFn {
	r := l.next()
	switch {
	case r == eof:
		l.emit(EOF, nil)
		return nil
	case unicode.IsSpace(r):
		for r = l.next(); unicode.IsSpace(r); r = l.next() {
		}
		l.backup()
		l.start = l.pos
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '[':
		l.emit(BracketOpen, "[")
	case r == ']':
		l.emit(BracketClose, "]")
	case r == ',':
		l.emit(Comma, ",")
	case r == '=':
		l.emit(Equal, "=")
	case r == '.':
		if l.next() == '.' {
			l.emit(Range, "..")
			break
		}
		l.backup()
		fallthrough
	default:
		l.emit(Raw, string(r))
		l.emit(EOF, nil)
		return nil
	}
	return lexInit
}

func lexNumber(l *lexer) stateFn {
	r := l.next()
	for '0' <= r && r <= '9' {
		r = l.next()
	}
	l.backup()
	n, err := strconv.Atoi(l.input[l.start:l.pos])
	if err != nil {
		l.emit(Raw, l.input[l.start:l.pos])
		l.emit(EOF, nil)
		return nil
	}
	l.emit(Int, n)
	return lexInit
}

func lexIdent(l *lexer) stateFn {
	r := l.next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		r = l.next()
	}
	l.backup()
	l.emit(Ident, l.input[l.start:l.pos])
	return lexInit
}
