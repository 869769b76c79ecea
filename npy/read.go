package npy

import (
	"fmt"
	"io"
	"os"

	"github.com/robert-malhotra/go-npy/internal/binary"
)

// Decode reads a complete npy stream from r: the header preamble followed by
// the raw element bytes. The data is returned exactly as stored. Bytes
// remaining in r after the array data are left unread.
func Decode(r io.Reader) (*Array, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	size, err := h.DataSize()
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	if err := binary.NewReader(r).ReadFull(data); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: header describes %d bytes", ErrTruncatedData, size)
		}
		return nil, fmt.Errorf("reading array data: %w", err)
	}
	return &Array{Header: h, Data: data}, nil
}

// DecodeExact is Decode for streams whose length is known to end with the
// array data, such as archive members. It additionally fails with
// ErrExtraBytes when r holds bytes past the end of the data.
func DecodeExact(r io.Reader) (*Array, error) {
	a, err := Decode(r)
	if err != nil {
		return nil, err
	}
	var probe [1]byte
	if n, _ := r.Read(probe[:]); n != 0 {
		return nil, ErrExtraBytes
	}
	return a, nil
}

// ReadFile decodes the npy file at path.
func ReadFile(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Bools decodes the array as a flat []bool in storage order. Any nonzero
// stored byte reads as true.
func (a *Array) Bools() ([]bool, error) {
	var out []bool
	err := a.Read(&out)
	return out, err
}

// Int8s decodes the array as a flat []int8 in storage order.
func (a *Array) Int8s() ([]int8, error) {
	var out []int8
	err := a.Read(&out)
	return out, err
}

// Int16s decodes the array as a flat []int16 in storage order.
func (a *Array) Int16s() ([]int16, error) {
	var out []int16
	err := a.Read(&out)
	return out, err
}

// Int32s decodes the array as a flat []int32 in storage order.
func (a *Array) Int32s() ([]int32, error) {
	var out []int32
	err := a.Read(&out)
	return out, err
}

// Int64s decodes the array as a flat []int64 in storage order.
func (a *Array) Int64s() ([]int64, error) {
	var out []int64
	err := a.Read(&out)
	return out, err
}

// Uint8s decodes the array as a flat []uint8 in storage order.
func (a *Array) Uint8s() ([]uint8, error) {
	var out []uint8
	err := a.Read(&out)
	return out, err
}

// Uint16s decodes the array as a flat []uint16 in storage order.
func (a *Array) Uint16s() ([]uint16, error) {
	var out []uint16
	err := a.Read(&out)
	return out, err
}

// Uint32s decodes the array as a flat []uint32 in storage order.
func (a *Array) Uint32s() ([]uint32, error) {
	var out []uint32
	err := a.Read(&out)
	return out, err
}

// Uint64s decodes the array as a flat []uint64 in storage order.
func (a *Array) Uint64s() ([]uint64, error) {
	var out []uint64
	err := a.Read(&out)
	return out, err
}

// Float32s decodes the array as a flat []float32 in storage order.
func (a *Array) Float32s() ([]float32, error) {
	var out []float32
	err := a.Read(&out)
	return out, err
}

// Float64s decodes the array as a flat []float64 in storage order.
func (a *Array) Float64s() ([]float64, error) {
	var out []float64
	err := a.Read(&out)
	return out, err
}

// Complex64s decodes the array as a flat []complex64 in storage order.
func (a *Array) Complex64s() ([]complex64, error) {
	var out []complex64
	err := a.Read(&out)
	return out, err
}

// Complex128s decodes the array as a flat []complex128 in storage order.
func (a *Array) Complex128s() ([]complex128, error) {
	var out []complex128
	err := a.Read(&out)
	return out, err
}
