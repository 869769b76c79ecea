// Package npz provides a codec for the NumPy .npz archive format, a zip
// container whose members are individual .npy streams.
package npz

import "errors"

// Common errors
var (
	ErrBadArchive             = errors.New("corrupt npz archive")
	ErrDuplicateName          = errors.New("duplicate array name")
	ErrNotFound               = errors.New("array not found")
	ErrUnsupportedCompression = errors.New("unsupported compression method")
	ErrClosed                 = errors.New("archive writer is closed")
)
