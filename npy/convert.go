package npy

import (
	"fmt"
	"math"
)

// Read decodes the raw element bytes into dest, which must be a pointer to
// a slice whose element type matches the descriptor exactly (e.g. *[]int32
// for "<i4" or ">i4"). The slice is filled in storage order; mapping between
// shape-indexed access and the flat slice is the caller's job, using
// Header.Strides. Multi-byte elements are byte-swapped to host
// representation as needed.
func (a *Array) Read(dest any) error {
	d := a.Header.DType
	n := a.NumElements()
	if len(a.Data) < n*d.ItemSize {
		return fmt.Errorf("%w: header describes %d bytes, data holds %d", ErrTruncatedData, n*d.ItemSize, len(a.Data))
	}

	mismatch := func(want Descriptor) error {
		return fmt.Errorf("%w: array is %s, dest wants %s", ErrTypeMismatch, d, want)
	}

	switch out := dest.(type) {
	case *[]bool:
		if d.Kind != Bool {
			return mismatch(Descriptor{NoOrder, Bool, 1})
		}
		s := make([]bool, n)
		for i := range s {
			s[i] = a.Data[i] != 0
		}
		*out = s

	case *[]int8:
		if d.Kind != Int || d.ItemSize != 1 {
			return mismatch(Descriptor{NoOrder, Int, 1})
		}
		s := make([]int8, n)
		for i := range s {
			s[i] = int8(a.Data[i])
		}
		*out = s

	case *[]int16:
		if d.Kind != Int || d.ItemSize != 2 {
			return mismatch(Descriptor{LittleEndian, Int, 2})
		}
		e := d.endian()
		s := make([]int16, n)
		for i := range s {
			s[i] = int16(e.Uint16(a.Data[2*i:]))
		}
		*out = s

	case *[]int32:
		if d.Kind != Int || d.ItemSize != 4 {
			return mismatch(Descriptor{LittleEndian, Int, 4})
		}
		e := d.endian()
		s := make([]int32, n)
		for i := range s {
			s[i] = int32(e.Uint32(a.Data[4*i:]))
		}
		*out = s

	case *[]int64:
		if d.Kind != Int || d.ItemSize != 8 {
			return mismatch(Descriptor{LittleEndian, Int, 8})
		}
		e := d.endian()
		s := make([]int64, n)
		for i := range s {
			s[i] = int64(e.Uint64(a.Data[8*i:]))
		}
		*out = s

	case *[]uint8:
		if d.Kind != Uint || d.ItemSize != 1 {
			return mismatch(Descriptor{NoOrder, Uint, 1})
		}
		s := make([]uint8, n)
		copy(s, a.Data)
		*out = s

	case *[]uint16:
		if d.Kind != Uint || d.ItemSize != 2 {
			return mismatch(Descriptor{LittleEndian, Uint, 2})
		}
		e := d.endian()
		s := make([]uint16, n)
		for i := range s {
			s[i] = e.Uint16(a.Data[2*i:])
		}
		*out = s

	case *[]uint32:
		if d.Kind != Uint || d.ItemSize != 4 {
			return mismatch(Descriptor{LittleEndian, Uint, 4})
		}
		e := d.endian()
		s := make([]uint32, n)
		for i := range s {
			s[i] = e.Uint32(a.Data[4*i:])
		}
		*out = s

	case *[]uint64:
		if d.Kind != Uint || d.ItemSize != 8 {
			return mismatch(Descriptor{LittleEndian, Uint, 8})
		}
		e := d.endian()
		s := make([]uint64, n)
		for i := range s {
			s[i] = e.Uint64(a.Data[8*i:])
		}
		*out = s

	case *[]float32:
		if d.Kind != Float || d.ItemSize != 4 {
			return mismatch(Descriptor{LittleEndian, Float, 4})
		}
		e := d.endian()
		s := make([]float32, n)
		for i := range s {
			s[i] = math.Float32frombits(e.Uint32(a.Data[4*i:]))
		}
		*out = s

	case *[]float64:
		if d.Kind != Float || d.ItemSize != 8 {
			return mismatch(Descriptor{LittleEndian, Float, 8})
		}
		e := d.endian()
		s := make([]float64, n)
		for i := range s {
			s[i] = math.Float64frombits(e.Uint64(a.Data[8*i:]))
		}
		*out = s

	case *[]complex64:
		if d.Kind != Complex || d.ItemSize != 8 {
			return mismatch(Descriptor{LittleEndian, Complex, 8})
		}
		e := d.endian()
		s := make([]complex64, n)
		for i := range s {
			re := math.Float32frombits(e.Uint32(a.Data[8*i:]))
			im := math.Float32frombits(e.Uint32(a.Data[8*i+4:]))
			s[i] = complex(re, im)
		}
		*out = s

	case *[]complex128:
		if d.Kind != Complex || d.ItemSize != 16 {
			return mismatch(Descriptor{LittleEndian, Complex, 16})
		}
		e := d.endian()
		s := make([]complex128, n)
		for i := range s {
			re := math.Float64frombits(e.Uint64(a.Data[16*i:]))
			im := math.Float64frombits(e.Uint64(a.Data[16*i+8:]))
			s[i] = complex(re, im)
		}
		*out = s

	default:
		return fmt.Errorf("npy: unsupported destination type %T", dest)
	}
	return nil
}

// descriptorFor returns the descriptor for a Go element example value with
// the given byte order, or false for unsupported types.
func descriptorFor(data any, order ByteOrder) (Descriptor, bool) {
	var kind Kind
	var size int
	switch data.(type) {
	case []bool:
		kind, size = Bool, 1
	case []int8:
		kind, size = Int, 1
	case []int16:
		kind, size = Int, 2
	case []int32:
		kind, size = Int, 4
	case []int64:
		kind, size = Int, 8
	case []uint8:
		kind, size = Uint, 1
	case []uint16:
		kind, size = Uint, 2
	case []uint32:
		kind, size = Uint, 4
	case []uint64:
		kind, size = Uint, 8
	case []float32:
		kind, size = Float, 4
	case []float64:
		kind, size = Float, 8
	case []complex64:
		kind, size = Complex, 8
	case []complex128:
		kind, size = Complex, 16
	default:
		return Descriptor{}, false
	}
	if size == 1 {
		order = NoOrder
	}
	return Descriptor{Order: order, Kind: kind, ItemSize: size}, true
}

// encodeSlice encodes a supported Go slice into raw element bytes per d.
// The slice is taken in storage order; d's byte order decides the element
// encoding.
func encodeSlice(d Descriptor, data any) []byte {
	e := d.endian()
	switch s := data.(type) {
	case []bool:
		out := make([]byte, len(s))
		for i, v := range s {
			if v {
				out[i] = 1
			}
		}
		return out
	case []int8:
		out := make([]byte, len(s))
		for i, v := range s {
			out[i] = byte(v)
		}
		return out
	case []int16:
		out := make([]byte, 0, 2*len(s))
		for _, v := range s {
			out = e.AppendUint16(out, uint16(v))
		}
		return out
	case []int32:
		out := make([]byte, 0, 4*len(s))
		for _, v := range s {
			out = e.AppendUint32(out, uint32(v))
		}
		return out
	case []int64:
		out := make([]byte, 0, 8*len(s))
		for _, v := range s {
			out = e.AppendUint64(out, uint64(v))
		}
		return out
	case []uint8:
		out := make([]byte, len(s))
		copy(out, s)
		return out
	case []uint16:
		out := make([]byte, 0, 2*len(s))
		for _, v := range s {
			out = e.AppendUint16(out, v)
		}
		return out
	case []uint32:
		out := make([]byte, 0, 4*len(s))
		for _, v := range s {
			out = e.AppendUint32(out, v)
		}
		return out
	case []uint64:
		out := make([]byte, 0, 8*len(s))
		for _, v := range s {
			out = e.AppendUint64(out, v)
		}
		return out
	case []float32:
		out := make([]byte, 0, 4*len(s))
		for _, v := range s {
			out = e.AppendUint32(out, math.Float32bits(v))
		}
		return out
	case []float64:
		out := make([]byte, 0, 8*len(s))
		for _, v := range s {
			out = e.AppendUint64(out, math.Float64bits(v))
		}
		return out
	case []complex64:
		out := make([]byte, 0, 8*len(s))
		for _, v := range s {
			out = e.AppendUint32(out, math.Float32bits(real(v)))
			out = e.AppendUint32(out, math.Float32bits(imag(v)))
		}
		return out
	case []complex128:
		out := make([]byte, 0, 16*len(s))
		for _, v := range s {
			out = e.AppendUint64(out, math.Float64bits(real(v)))
			out = e.AppendUint64(out, math.Float64bits(imag(v)))
		}
		return out
	default:
		return nil
	}
}

func sliceLen(data any) int {
	switch s := data.(type) {
	case []bool:
		return len(s)
	case []int8:
		return len(s)
	case []int16:
		return len(s)
	case []int32:
		return len(s)
	case []int64:
		return len(s)
	case []uint8:
		return len(s)
	case []uint16:
		return len(s)
	case []uint32:
		return len(s)
	case []uint64:
		return len(s)
	case []float32:
		return len(s)
	case []float64:
		return len(s)
	case []complex64:
		return len(s)
	case []complex128:
		return len(s)
	default:
		return -1
	}
}
