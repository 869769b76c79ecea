// Package pydict parses the Python dictionary literal embedded in an npy
// header. The grammar is the small subset the format writer emits: a dict
// whose keys are string literals and whose values are strings, booleans,
// integers, or tuples of integers.
package pydict

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned when the input is not a well-formed dictionary
// literal in the supported subset.
var ErrSyntax = errors.New("invalid dictionary literal")

// ValueKind discriminates the closed set of value variants.
type ValueKind int

const (
	KindString ValueKind = iota
	KindBool
	KindInt
	KindTuple
)

// Value is a tagged value from the header dictionary.
type Value struct {
	Kind  ValueKind
	Str   string
	Bool  bool
	Int   int64
	Tuple []Value
}

// Entry is a single key/value pair. Entries preserve source order.
type Entry struct {
	Key   string
	Value Value
}

// Dict is an ordered dictionary parsed from a literal.
type Dict struct {
	Entries []Entry
}

// Get returns the value for key and whether it was present.
func (d *Dict) Get(key string) (Value, bool) {
	for _, e := range d.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Parse parses a dictionary literal. Trailing spaces and a trailing newline
// after the closing brace are accepted (the npy format pads the header text
// with spaces); anything else after the brace is an error.
func Parse(s string) (*Dict, error) {
	p := &parser{input: s}
	p.skipSpace()
	d, err := p.parseDict()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("%w: trailing garbage at offset %d", ErrSyntax, p.pos)
	}
	return d, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *parser) expect(c byte) error {
	got, ok := p.peek()
	if !ok {
		return fmt.Errorf("%w: unexpected end of input, want %q", ErrSyntax, c)
	}
	if got != c {
		return fmt.Errorf("%w: offset %d: got %q, want %q", ErrSyntax, p.pos, got, c)
	}
	p.pos++
	return nil
}

func (p *parser) parseDict() (*Dict, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	d := &Dict{}
	for {
		p.skipSpace()
		if c, ok := p.peek(); ok && c == '}' {
			p.pos++
			return d, nil
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		d.Entries = append(d.Entries, Entry{Key: key, Value: val})
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("%w: unterminated dict", ErrSyntax)
		}
		switch c {
		case ',':
			p.pos++
		case '}':
			// Closing brace handled at the top of the loop.
		default:
			return nil, fmt.Errorf("%w: offset %d: got %q, want ',' or '}'", ErrSyntax, p.pos, c)
		}
	}
}

func (p *parser) parseValue() (Value, error) {
	c, ok := p.peek()
	if !ok {
		return Value{}, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	switch {
	case c == '\'' || c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case c == '(':
		return p.parseTuple()
	case c == 'T' || c == 'F':
		return p.parseBool()
	case c == '-' || (c >= '0' && c <= '9'):
		n, err := p.parseInt()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt, Int: n}, nil
	default:
		return Value{}, fmt.Errorf("%w: offset %d: unexpected character %q", ErrSyntax, p.pos, c)
	}
}

func (p *parser) parseString() (string, error) {
	quote, ok := p.peek()
	if !ok || (quote != '\'' && quote != '"') {
		return "", fmt.Errorf("%w: offset %d: expected string literal", ErrSyntax, p.pos)
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == quote {
			s := p.input[start:p.pos]
			p.pos++
			return s, nil
		}
		if c == '\\' {
			// The format writer never emits escapes; reject rather than
			// guess at Python escape semantics.
			return "", fmt.Errorf("%w: offset %d: escape sequences are not supported", ErrSyntax, p.pos)
		}
		p.pos++
	}
	return "", fmt.Errorf("%w: unterminated string literal", ErrSyntax)
}

func (p *parser) parseBool() (Value, error) {
	if strings.HasPrefix(p.input[p.pos:], "True") {
		p.pos += len("True")
		return Value{Kind: KindBool, Bool: true}, nil
	}
	if strings.HasPrefix(p.input[p.pos:], "False") {
		p.pos += len("False")
		return Value{Kind: KindBool, Bool: false}, nil
	}
	return Value{}, fmt.Errorf("%w: offset %d: expected True or False", ErrSyntax, p.pos)
}

func (p *parser) parseInt() (int64, error) {
	start := p.pos
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start || (p.pos == start+1 && p.input[start] == '-') {
		return 0, fmt.Errorf("%w: offset %d: expected integer", ErrSyntax, start)
	}
	n, err := strconv.ParseInt(p.input[start:p.pos], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return n, nil
}

func (p *parser) parseTuple() (Value, error) {
	if err := p.expect('('); err != nil {
		return Value{}, err
	}
	v := Value{Kind: KindTuple}
	for {
		p.skipSpace()
		if c, ok := p.peek(); ok && c == ')' {
			p.pos++
			return v, nil
		}
		elem, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		v.Tuple = append(v.Tuple, elem)
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return Value{}, fmt.Errorf("%w: unterminated tuple", ErrSyntax)
		}
		switch c {
		case ',':
			p.pos++
		case ')':
			// Closing paren handled at the top of the loop.
		default:
			return Value{}, fmt.Errorf("%w: offset %d: got %q, want ',' or ')'", ErrSyntax, p.pos, c)
		}
	}
}
