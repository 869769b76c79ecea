package npy

import "fmt"

// Array is a decoded npy stream: a header plus the raw element bytes exactly
// as stored. Data keeps the declared byte order and element ordering; the
// codec never transposes or byte-swaps it, which is what makes byte-exact
// round trips possible. Conversion to host representation is the caller's
// choice, via Value, Read, or the typed accessors.
//
// The codec holds no reference to an Array after returning it; the caller
// owns Data and may mutate it freely.
type Array struct {
	Header Header
	Data   []byte
}

// NumElements returns the total element count.
func (a *Array) NumElements() int {
	n, err := a.Header.NumElements()
	if err != nil {
		// Arrays produced by Decode or New always have consistent headers;
		// an inconsistent hand-built header surfaces here.
		panic(fmt.Sprintf("npy: inconsistent array header: %v", err))
	}
	return n
}

// Shape returns the axis lengths.
func (a *Array) Shape() []int {
	return a.Header.Shape
}

// DType returns the element type descriptor.
func (a *Array) DType() Descriptor {
	return a.Header.DType
}

// FortranOrder reports whether the element bytes are stored in column-major
// order.
func (a *Array) FortranOrder() bool {
	return a.Header.FortranOrder
}

// elemOffset maps a multi-dimensional index onto a linear element offset
// using the strides implied by the layout flag.
func (a *Array) elemOffset(idx ...int) (int, error) {
	if len(idx) != len(a.Header.Shape) {
		return 0, fmt.Errorf("npy: index has %d axes, array has %d", len(idx), len(a.Header.Shape))
	}
	strides := a.Header.Strides()
	off := 0
	for i, ix := range idx {
		if ix < 0 || ix >= a.Header.Shape[i] {
			return 0, fmt.Errorf("npy: index %d out of range for axis %d (length %d)", ix, i, a.Header.Shape[i])
		}
		off += ix * strides[i]
	}
	return off, nil
}

// At returns the raw bytes of the element at the given index, still in the
// declared byte order. The returned slice aliases Data.
func (a *Array) At(idx ...int) ([]byte, error) {
	off, err := a.elemOffset(idx...)
	if err != nil {
		return nil, err
	}
	start := off * a.Header.DType.ItemSize
	return a.Data[start : start+a.Header.DType.ItemSize], nil
}

// Value decodes the element at the given index to a Go scalar (bool, int64,
// uint64, float64, or complex128), honoring the declared byte order.
func (a *Array) Value(idx ...int) (any, error) {
	raw, err := a.At(idx...)
	if err != nil {
		return nil, err
	}
	return a.Header.DType.Read(raw)
}

// SetValue encodes v into the element at the given index.
func (a *Array) SetValue(v any, idx ...int) error {
	off, err := a.elemOffset(idx...)
	if err != nil {
		return err
	}
	start := off * a.Header.DType.ItemSize
	enc, err := a.Header.DType.Append(nil, v)
	if err != nil {
		return err
	}
	copy(a.Data[start:], enc)
	return nil
}
