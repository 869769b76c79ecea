package npy

import (
	"fmt"
	"unsafe"
)

// ByteOrder identifies the byte order declared by a type descriptor.
type ByteOrder int

const (
	// NoOrder marks single-byte types, for which byte order is meaningless.
	NoOrder ByteOrder = iota
	// LittleEndian marks least-significant-byte-first encoding.
	LittleEndian
	// BigEndian marks most-significant-byte-first encoding.
	BigEndian
)

func (o ByteOrder) String() string {
	switch o {
	case NoOrder:
		return "|"
	case LittleEndian:
		return "<"
	case BigEndian:
		return ">"
	default:
		return "?"
	}
}

// Kind identifies the element kind declared by a type descriptor.
type Kind int

const (
	Bool Kind = iota
	Int
	Uint
	Float
	Complex
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Complex:
		return "complex"
	default:
		return "unknown"
	}
}

// typeChar returns the dtype character for the kind.
func (k Kind) typeChar() byte {
	switch k {
	case Bool:
		return 'b'
	case Int:
		return 'i'
	case Uint:
		return 'u'
	case Float:
		return 'f'
	case Complex:
		return 'c'
	default:
		return '?'
	}
}

// Descriptor is a parsed dtype string such as "<i4" or ">f8". It carries the
// element kind, the element size in bytes, and the declared byte order.
// Descriptors are immutable values with structural equality.
type Descriptor struct {
	Order    ByteOrder
	Kind     Kind
	ItemSize int
}

// hostOrder is the byte order of the machine this code runs on, used to
// resolve the '=' (native) order character at parse time.
var hostOrder = func() ByteOrder {
	x := uint16(1)
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return LittleEndian
	}
	return BigEndian
}()

// ParseDescriptor parses a dtype string of the form [<>=|][?bBiufc][width].
//
// The order character is optional. '=' resolves to the host's byte order.
// '?' is bool, 'b' and 'B' are one-byte shorthands for int8 and uint8, and
// 'i', 'u', 'f', 'c' require a width suffix (1/2/4/8 for integers, 4/8 for
// floats, 8/16 for complex).
func ParseDescriptor(s string) (Descriptor, error) {
	rest := s
	order := ByteOrder(-1)
	if len(rest) > 0 {
		switch rest[0] {
		case '<':
			order = LittleEndian
			rest = rest[1:]
		case '>':
			order = BigEndian
			rest = rest[1:]
		case '=':
			order = hostOrder
			rest = rest[1:]
		case '|':
			order = NoOrder
			rest = rest[1:]
		}
	}
	if len(rest) == 0 {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrMalformedType, s)
	}

	var kind Kind
	size := 0
	typeChar := rest[0]
	rest = rest[1:]
	switch typeChar {
	case '?':
		// Bool char code, implicit width.
		if rest != "" {
			return Descriptor{}, fmt.Errorf("%w: %q: unexpected width after '?'", ErrMalformedType, s)
		}
		kind, size = Bool, 1
	case 'b':
		// Bare 'b' is numpy's int8 char code; "b1" is the array-interface
		// bool kind (numpy's canonical bool descr is "|b1").
		switch rest {
		case "":
			kind, size = Int, 1
		case "1":
			kind, size = Bool, 1
		default:
			return Descriptor{}, fmt.Errorf("%w: %q: bad width %q", ErrMalformedType, s, rest)
		}
	case 'B':
		switch rest {
		case "", "1":
			kind, size = Uint, 1
		default:
			return Descriptor{}, fmt.Errorf("%w: %q: bad width %q", ErrMalformedType, s, rest)
		}
	case 'i':
		kind = Int
	case 'u':
		kind = Uint
	case 'f':
		kind = Float
	case 'c':
		kind = Complex
	default:
		return Descriptor{}, fmt.Errorf("%w: %q: unknown type character %q", ErrMalformedType, s, typeChar)
	}

	if size == 0 {
		switch rest {
		case "1":
			size = 1
		case "2":
			size = 2
		case "4":
			size = 4
		case "8":
			size = 8
		case "16":
			size = 16
		default:
			return Descriptor{}, fmt.Errorf("%w: %q: bad width %q", ErrMalformedType, s, rest)
		}
	}

	if order == ByteOrder(-1) {
		// No order character. Single-byte types need none; multi-byte types
		// default to the host order, matching numpy.
		if size == 1 {
			order = NoOrder
		} else {
			order = hostOrder
		}
	}
	if size == 1 {
		// The declared order is irrelevant for one-byte types; normalize so
		// parse("<i1") and parse("|i1") compare equal.
		order = NoOrder
	}

	d := Descriptor{Order: order, Kind: kind, ItemSize: size}
	if err := d.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrMalformedType, s)
	}
	return d, nil
}

// Validate checks that the descriptor's kind, item size, and byte order form
// a supported combination.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case Bool:
		if d.ItemSize != 1 {
			return fmt.Errorf("%w: bool must be 1 byte, got %d", ErrMalformedType, d.ItemSize)
		}
	case Int, Uint:
		switch d.ItemSize {
		case 1, 2, 4, 8:
		default:
			return fmt.Errorf("%w: %s width %d", ErrMalformedType, d.Kind, d.ItemSize)
		}
	case Float:
		if d.ItemSize != 4 && d.ItemSize != 8 {
			return fmt.Errorf("%w: float width %d", ErrMalformedType, d.ItemSize)
		}
	case Complex:
		if d.ItemSize != 8 && d.ItemSize != 16 {
			return fmt.Errorf("%w: complex width %d", ErrMalformedType, d.ItemSize)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrMalformedType, int(d.Kind))
	}
	if d.ItemSize == 1 {
		if d.Order != NoOrder {
			return fmt.Errorf("%w: byte order declared for 1-byte type", ErrMalformedType)
		}
	} else if d.Order != LittleEndian && d.Order != BigEndian {
		return fmt.Errorf("%w: multi-byte type needs a byte order", ErrMalformedType)
	}
	return nil
}

// String returns the canonical dtype string for the descriptor. The order
// character and width are always explicit, so ParseDescriptor(d.String())
// reproduces d exactly even when the original input used '=' or a shorthand.
func (d Descriptor) String() string {
	if d.Kind == Bool {
		return "|b1"
	}
	return fmt.Sprintf("%s%c%d", d.Order, d.Kind.typeChar(), d.ItemSize)
}
