package npy

import (
	"fmt"
	"io"
	"os"
)

// ArrayOption configures array construction.
type ArrayOption func(*arrayOptions)

type arrayOptions struct {
	fortranOrder bool
	order        ByteOrder
}

func defaultArrayOptions() *arrayOptions {
	return &arrayOptions{
		fortranOrder: false,
		order:        LittleEndian,
	}
}

// WithFortranOrder marks the source slice as being in column-major storage
// order. The slice is written as-is; only the header flag changes.
func WithFortranOrder() ArrayOption {
	return func(o *arrayOptions) {
		o.fortranOrder = true
	}
}

// WithByteOrder sets the byte order elements are encoded with. The default
// is little-endian, the common convention for npy files. Ignored for
// single-byte element types.
func WithByteOrder(order ByteOrder) ArrayOption {
	return func(o *arrayOptions) {
		if order == LittleEndian || order == BigEndian {
			o.order = order
		}
	}
}

// New builds an Array from a flat Go slice and a shape. data must be a
// slice of one of the supported element types (bool, signed and unsigned
// integers up to 64 bits, float32/64, complex64/128), in storage order, and
// its length must equal the product of shape. A nil or empty shape builds a
// scalar array from a one-element slice.
func New(data any, shape []int, opts ...ArrayOption) (*Array, error) {
	o := defaultArrayOptions()
	for _, opt := range opts {
		opt(o)
	}

	n := sliceLen(data)
	if n < 0 {
		return nil, fmt.Errorf("npy: unsupported element type %T", data)
	}
	d, ok := descriptorFor(data, o.order)
	if !ok {
		return nil, fmt.Errorf("npy: unsupported element type %T", data)
	}

	h := Header{
		DType:        d,
		FortranOrder: o.fortranOrder,
		Shape:        append([]int(nil), shape...),
	}
	want, err := h.NumElements()
	if err != nil {
		return nil, err
	}
	if want != n {
		return nil, fmt.Errorf("npy: shape %v has %d elements, slice has %d", shape, want, n)
	}

	return &Array{Header: h, Data: encodeSlice(d, data)}, nil
}

// Encode writes the array to w as a complete npy stream: the header
// preamble followed by Data unchanged. For any well-formed input stream b,
// Decode then Encode reproduces b byte for byte.
func (a *Array) Encode(w io.Writer) error {
	return a.EncodeAligned(w, preambleAlign)
}

// EncodeAligned is Encode with a caller-chosen preamble alignment. Archive
// writers use 64 so that a member whose zip data start is 64-byte aligned
// keeps its element data aligned as well.
func (a *Array) EncodeAligned(w io.Writer, align int) error {
	size, err := a.Header.DataSize()
	if err != nil {
		return err
	}
	if len(a.Data) != size {
		return fmt.Errorf("%w: header describes %d bytes, data holds %d", ErrTruncatedData, size, len(a.Data))
	}
	preamble, err := a.Header.encodeAligned(align)
	if err != nil {
		return err
	}
	if _, err := w.Write(preamble); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(a.Data); err != nil {
		return fmt.Errorf("writing array data: %w", err)
	}
	return nil
}

// WriteFile encodes the array to the file at path, creating or truncating
// it.
func (a *Array) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := a.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
