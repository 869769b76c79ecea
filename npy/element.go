package npy

import (
	stdbinary "encoding/binary"
	"fmt"
	"math"
)

// byteOrder joins the read and append halves of encoding/binary's byte
// order interfaces, both of which LittleEndian and BigEndian satisfy.
type byteOrder interface {
	stdbinary.ByteOrder
	stdbinary.AppendByteOrder
}

// endian returns the byte order used to decode and encode multi-byte
// elements. Single-byte descriptors never call this.
func (d Descriptor) endian() byteOrder {
	if d.Order == BigEndian {
		return stdbinary.BigEndian
	}
	return stdbinary.LittleEndian
}

// Read reinterprets ItemSize bytes from b as a single scalar value per the
// descriptor's kind and byte order. The returned value is one of bool,
// int64, uint64, float64, or complex128. Bool reads are lax: any nonzero
// byte is true, matching numpy's behavior for on-disk data.
func (d Descriptor) Read(b []byte) (any, error) {
	if len(b) < d.ItemSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedData, d.ItemSize, len(b))
	}
	b = b[:d.ItemSize]
	switch d.Kind {
	case Bool:
		return b[0] != 0, nil
	case Int:
		return d.readInt(b), nil
	case Uint:
		return d.readUint(b), nil
	case Float:
		return d.readFloat(b), nil
	case Complex:
		half := d.ItemSize / 2
		fd := Descriptor{Order: d.Order, Kind: Float, ItemSize: half}
		re := fd.readFloat(b[:half])
		im := fd.readFloat(b[half:])
		return complex(re, im), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformedType, int(d.Kind))
	}
}

func (d Descriptor) readUint(b []byte) uint64 {
	switch d.ItemSize {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(d.endian().Uint16(b))
	case 4:
		return uint64(d.endian().Uint32(b))
	default:
		return d.endian().Uint64(b)
	}
}

func (d Descriptor) readInt(b []byte) int64 {
	// Sign-extend from the declared width.
	switch d.ItemSize {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(d.endian().Uint16(b)))
	case 4:
		return int64(int32(d.endian().Uint32(b)))
	default:
		return int64(d.endian().Uint64(b))
	}
}

func (d Descriptor) readFloat(b []byte) float64 {
	if d.ItemSize == 4 {
		return float64(math.Float32frombits(d.endian().Uint32(b)))
	}
	return math.Float64frombits(d.endian().Uint64(b))
}

// Append encodes a single scalar value per the descriptor and appends it to
// dst. It fails with ErrTypeMismatch when the value's runtime kind does not
// agree with the descriptor's kind, and ErrOverflow when an integer value
// does not fit ItemSize. Bool always emits canonical 0 or 1 bytes.
func (d Descriptor) Append(dst []byte, v any) ([]byte, error) {
	switch d.Kind {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, d)
		}
		if b {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil

	case Int:
		n, ok := asInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, d)
		}
		if d.ItemSize < 8 {
			limit := int64(1) << (8*d.ItemSize - 1)
			if n < -limit || n >= limit {
				return nil, fmt.Errorf("%w: %d does not fit %s", ErrOverflow, n, d)
			}
		}
		return d.appendUint(dst, uint64(n)), nil

	case Uint:
		n, ok := asUint64(v)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, d)
		}
		if d.ItemSize < 8 && n >= uint64(1)<<(8*d.ItemSize) {
			return nil, fmt.Errorf("%w: %d does not fit %s", ErrOverflow, n, d)
		}
		return d.appendUint(dst, n), nil

	case Float:
		f, ok := asFloat64(v)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, d)
		}
		return d.appendFloat(dst, f), nil

	case Complex:
		c, ok := asComplex128(v)
		if !ok {
			return nil, fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, d)
		}
		fd := Descriptor{Order: d.Order, Kind: Float, ItemSize: d.ItemSize / 2}
		dst = fd.appendFloat(dst, real(c))
		return fd.appendFloat(dst, imag(c)), nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrMalformedType, int(d.Kind))
	}
}

func (d Descriptor) appendUint(dst []byte, v uint64) []byte {
	switch d.ItemSize {
	case 1:
		return append(dst, byte(v))
	case 2:
		return d.endian().AppendUint16(dst, uint16(v))
	case 4:
		return d.endian().AppendUint32(dst, uint32(v))
	default:
		return d.endian().AppendUint64(dst, v)
	}
}

func (d Descriptor) appendFloat(dst []byte, f float64) []byte {
	if d.ItemSize == 4 {
		return d.endian().AppendUint32(dst, math.Float32bits(float32(f)))
	}
	return d.endian().AppendUint64(dst, math.Float64bits(f))
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float32:
		return float64(f), true
	case float64:
		return f, true
	default:
		return 0, false
	}
}

func asComplex128(v any) (complex128, bool) {
	switch c := v.(type) {
	case complex64:
		return complex128(c), true
	case complex128:
		return c, true
	default:
		return 0, false
	}
}
