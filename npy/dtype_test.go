package npy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		input string
		want  Descriptor
	}{
		{"<i4", Descriptor{LittleEndian, Int, 4}},
		{">i4", Descriptor{BigEndian, Int, 4}},
		{"<i1", Descriptor{NoOrder, Int, 1}},
		{">i1", Descriptor{NoOrder, Int, 1}},
		{"|i1", Descriptor{NoOrder, Int, 1}},
		{"<u2", Descriptor{LittleEndian, Uint, 2}},
		{">u8", Descriptor{BigEndian, Uint, 8}},
		{"<f4", Descriptor{LittleEndian, Float, 4}},
		{">f8", Descriptor{BigEndian, Float, 8}},
		{"<c8", Descriptor{LittleEndian, Complex, 8}},
		{">c16", Descriptor{BigEndian, Complex, 16}},
		{"|b1", Descriptor{NoOrder, Bool, 1}},
		{"b1", Descriptor{NoOrder, Bool, 1}},
		{"?", Descriptor{NoOrder, Bool, 1}},
		{"|?", Descriptor{NoOrder, Bool, 1}},
		{"b", Descriptor{NoOrder, Int, 1}},
		{"B", Descriptor{NoOrder, Uint, 1}},
		{"|u1", Descriptor{NoOrder, Uint, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDescriptor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDescriptorNativeOrder(t *testing.T) {
	// '=' and a missing order character both resolve to the host order for
	// multi-byte types.
	for _, input := range []string{"=f8", "f8", "i4", "=c16"} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseDescriptor(input)
			require.NoError(t, err)
			assert.Equal(t, hostOrder, got.Order)
		})
	}
}

func TestParseDescriptorErrors(t *testing.T) {
	inputs := []string{
		"",
		"<",
		"<i",
		"<i3",
		"<i16",
		"<f2",
		"<f16",
		"<c4",
		"<c32",
		"<x4",
		"?4",
		"b2",
		"<i4x",
		"<u0",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDescriptor(input)
			assert.ErrorIs(t, err, ErrMalformedType)
		})
	}
}

func TestDescriptorString(t *testing.T) {
	tests := []struct {
		d    Descriptor
		want string
	}{
		{Descriptor{LittleEndian, Int, 4}, "<i4"},
		{Descriptor{BigEndian, Float, 8}, ">f8"},
		{Descriptor{NoOrder, Int, 1}, "|i1"},
		{Descriptor{NoOrder, Uint, 1}, "|u1"},
		{Descriptor{NoOrder, Bool, 1}, "|b1"},
		{Descriptor{LittleEndian, Complex, 16}, "<c16"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.String())
		})
	}
}

func TestDescriptorStringRoundTrip(t *testing.T) {
	// Every valid descriptor serializes to a string that parses back to the
	// identical descriptor, including the ones whose input used a shorthand.
	inputs := []string{"<i2", ">u4", "=f8", "b", "b1", "?", "B", "<c8", ">i8", "|u1"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			d, err := ParseDescriptor(input)
			require.NoError(t, err)
			back, err := ParseDescriptor(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, back)
		})
	}
}

func TestDescriptorValidate(t *testing.T) {
	bad := []Descriptor{
		{LittleEndian, Bool, 1},
		{NoOrder, Bool, 2},
		{LittleEndian, Int, 3},
		{NoOrder, Int, 4},
		{LittleEndian, Float, 2},
		{BigEndian, Complex, 4},
		{NoOrder, Kind(99), 4},
	}
	for _, d := range bad {
		assert.ErrorIs(t, d.Validate(), ErrMalformedType, "%+v", d)
	}
}
