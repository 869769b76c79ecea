// Package npy provides a pure Go codec for the NumPy .npy array format.
package npy

import "errors"

// Common errors
var (
	ErrBadMagic           = errors.New("not an npy file")
	ErrUnsupportedVersion = errors.New("unsupported npy format version")
	ErrMalformedHeader    = errors.New("malformed npy header")
	ErrMalformedType      = errors.New("malformed type string")
	ErrTruncatedData      = errors.New("truncated array data")
	ErrExtraBytes         = errors.New("extra bytes after array data")
	ErrTypeMismatch       = errors.New("value type does not match descriptor")
	ErrOverflow           = errors.New("value does not fit descriptor")
)
