package npy

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/robert-malhotra/go-npy/internal/binary"
	"github.com/robert-malhotra/go-npy/internal/pydict"
)

// Magic is the 6-byte signature that starts every npy stream.
var Magic = []byte("\x93NUMPY")

// preambleAlign is the alignment the total preamble (magic, version, length
// field, header text) is padded to. Archive members written with forced
// alignment use 64 instead.
const preambleAlign = 16

// Header describes a stored array: its element type, its memory layout, and
// its shape. Headers are immutable values produced by ReadHeader or by
// explicit construction.
type Header struct {
	// DType is the element type descriptor.
	DType Descriptor
	// FortranOrder reports whether elements are stored in column-major
	// order. False means row-major (C) order.
	FortranOrder bool
	// Shape holds the axis lengths. An empty shape is a scalar with one
	// element.
	Shape []int
}

// NumElements returns the total element count, the product of the axis
// lengths. It fails with ErrOverflow when the product does not fit an int.
func (h Header) NumElements() (int, error) {
	n := 1
	for _, dim := range h.Shape {
		if dim < 0 {
			return 0, fmt.Errorf("%w: negative axis length %d", ErrMalformedHeader, dim)
		}
		if dim != 0 && n > math.MaxInt/dim {
			return 0, fmt.Errorf("%w: element count exceeds int range", ErrOverflow)
		}
		n *= dim
	}
	return n, nil
}

// DataSize returns the byte length of the array data described by the
// header.
func (h Header) DataSize() (int, error) {
	n, err := h.NumElements()
	if err != nil {
		return 0, err
	}
	if h.DType.ItemSize != 0 && n > math.MaxInt/h.DType.ItemSize {
		return 0, fmt.Errorf("%w: data size exceeds int range", ErrOverflow)
	}
	return n * h.DType.ItemSize, nil
}

// Strides returns the element stride for each axis: row-major strides when
// FortranOrder is false, column-major when true. Strides are in elements,
// not bytes. The codec stores data linearly and never transposes; these
// strides are how callers map shape-indexed access onto the linear buffer.
func (h Header) Strides() []int {
	strides := make([]int, len(h.Shape))
	stride := 1
	if h.FortranOrder {
		for i := 0; i < len(h.Shape); i++ {
			strides[i] = stride
			stride *= h.Shape[i]
		}
	} else {
		for i := len(h.Shape) - 1; i >= 0; i-- {
			strides[i] = stride
			stride *= h.Shape[i]
		}
	}
	return strides
}

// ReadHeader reads and validates the npy preamble from r, leaving r
// positioned at the first byte of array data.
func ReadHeader(r io.Reader) (Header, error) {
	br := binary.NewReader(r)

	magic, err := br.ReadBytes(len(Magic))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if string(magic) != string(Magic) {
		return Header{}, ErrBadMagic
	}

	major, err := br.ReadUint8()
	if err != nil {
		return Header{}, fmt.Errorf("reading version: %w", err)
	}
	minor, err := br.ReadUint8()
	if err != nil {
		return Header{}, fmt.Errorf("reading version: %w", err)
	}

	var headerLen int
	switch major {
	case 1:
		n, err := br.ReadUint16()
		if err != nil {
			return Header{}, fmt.Errorf("reading header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		n, err := br.ReadUint32()
		if err != nil {
			return Header{}, fmt.Errorf("reading header length: %w", err)
		}
		headerLen = int(n)
	default:
		return Header{}, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, major, minor)
	}

	text, err := br.ReadBytes(headerLen)
	if err != nil {
		return Header{}, fmt.Errorf("reading header text: %w", err)
	}
	for _, c := range text {
		if c > 0x7f {
			return Header{}, fmt.Errorf("%w: non-ASCII byte in header text", ErrMalformedHeader)
		}
	}

	dict, err := pydict.Parse(string(text))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	return headerFromDict(dict)
}

// headerFromDict validates the three required keys. Unknown keys are
// ignored so that streams written by other producers still parse.
func headerFromDict(dict *pydict.Dict) (Header, error) {
	var h Header

	descr, ok := dict.Get("descr")
	if !ok {
		return Header{}, fmt.Errorf("%w: missing key 'descr'", ErrMalformedHeader)
	}
	if descr.Kind != pydict.KindString {
		return Header{}, fmt.Errorf("%w: 'descr' is not a string", ErrMalformedHeader)
	}
	dt, err := ParseDescriptor(descr.Str)
	if err != nil {
		return Header{}, err
	}
	h.DType = dt

	fortran, ok := dict.Get("fortran_order")
	if !ok {
		return Header{}, fmt.Errorf("%w: missing key 'fortran_order'", ErrMalformedHeader)
	}
	if fortran.Kind != pydict.KindBool {
		return Header{}, fmt.Errorf("%w: 'fortran_order' is not a boolean", ErrMalformedHeader)
	}
	h.FortranOrder = fortran.Bool

	shape, ok := dict.Get("shape")
	if !ok {
		return Header{}, fmt.Errorf("%w: missing key 'shape'", ErrMalformedHeader)
	}
	if shape.Kind != pydict.KindTuple {
		return Header{}, fmt.Errorf("%w: 'shape' is not a tuple", ErrMalformedHeader)
	}
	h.Shape = make([]int, len(shape.Tuple))
	for i, elem := range shape.Tuple {
		if elem.Kind != pydict.KindInt || elem.Int < 0 {
			return Header{}, fmt.Errorf("%w: 'shape' element %d is not a non-negative integer", ErrMalformedHeader, i)
		}
		if elem.Int > math.MaxInt {
			return Header{}, fmt.Errorf("%w: axis length exceeds int range", ErrOverflow)
		}
		h.Shape[i] = int(elem.Int)
	}

	if _, err := h.NumElements(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// dictText renders the header dictionary in the canonical numpy writer
// style: single-quoted strings, True/False booleans, the shape as a tuple
// with a trailing comma when it has exactly one element, and a trailing
// ", " before the closing brace.
func (h Header) dictText() string {
	text := "{'descr': '" + h.DType.String() + "', 'fortran_order': "
	if h.FortranOrder {
		text += "True"
	} else {
		text += "False"
	}
	text += ", 'shape': ("
	for i, dim := range h.Shape {
		if i > 0 {
			text += " "
		}
		text += strconv.Itoa(dim) + ","
	}
	if len(h.Shape) > 1 {
		// Multi-element tuples drop the trailing comma: "(2, 3)".
		text = text[:len(text)-1]
	}
	text += "), }"
	return text
}

// Encode serializes the header as a complete npy preamble, padded with
// ASCII spaces and a trailing newline so the total length is a multiple of
// 16. The minimal format version is chosen: 1.0 unless the header text
// overflows the 2-byte length field, in which case 2.0.
func (h Header) Encode() ([]byte, error) {
	return h.encodeAligned(preambleAlign)
}

// encodeAligned is Encode with a caller-chosen preamble alignment. Archive
// members written with forced alignment use 64 so that element data stays
// aligned when the member's data start is aligned.
func (h Header) encodeAligned(align int) ([]byte, error) {
	if err := h.DType.Validate(); err != nil {
		return nil, err
	}
	if _, err := h.NumElements(); err != nil {
		return nil, err
	}

	text := h.dictText()

	// The space padding and newline terminator count toward the stored
	// header length, so the version choice must consider the padded length:
	// a text just under the 2-byte limit can pad past it.
	pad := func(lenFieldSize int) (padding, headerLen int) {
		prefixLen := len(Magic) + 2 + lenFieldSize
		padding = align - (prefixLen+len(text)+1)%align
		if padding == align {
			padding = 0
		}
		return padding, len(text) + padding + 1
	}

	major := uint8(1)
	lenFieldSize := 2
	padding, headerLen := pad(lenFieldSize)
	if headerLen > math.MaxUint16 {
		major = 2
		lenFieldSize = 4
		padding, headerLen = pad(lenFieldSize)
	}

	prefixLen := len(Magic) + 2 + lenFieldSize

	w := binary.NewWriter(prefixLen + headerLen)
	w.WriteBytes(Magic)
	w.WriteUint8(major)
	w.WriteUint8(0)
	if major == 1 {
		w.WriteUint16(uint16(headerLen))
	} else {
		w.WriteUint32(uint32(headerLen))
	}
	w.WriteString(text)
	w.Pad(padding, ' ')
	w.WriteUint8('\n')
	return w.Bytes(), nil
}
