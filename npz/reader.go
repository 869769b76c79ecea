package npz

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/robert-malhotra/go-npy/npy"
)

// Entry is the result of decoding one archive member: the array name and
// either the decoded array or the error that member produced. A corrupt
// member never hides its siblings.
type Entry struct {
	Name  string
	Array *npy.Array
	Err   error
}

// Reader reads arrays out of an npz archive. Members may be stored or
// deflated, and archives with 64-byte-aligned member data (as produced by
// alignment-rewriting tools) read the same as tight ones, since the zip
// layer absorbs the extra-field padding.
type Reader struct {
	zr     *zip.Reader
	closer io.Closer
}

// NewReader opens an npz archive from r. The zip central directory lives at
// the end of the container, so the reader needs random access and the total
// size.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	return &Reader{zr: zr}, nil
}

// OpenFile opens the npz archive at path. The caller must Close the
// returned reader.
func OpenFile(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if err == zip.ErrFormat {
			return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
		}
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	rc.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	return &Reader{zr: &rc.Reader, closer: rc}, nil
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Len returns the number of members in the archive.
func (r *Reader) Len() int {
	return len(r.zr.File)
}

// Names returns the array names in archive order, without the .npy suffix.
func (r *Reader) Names() []string {
	names := make([]string, len(r.zr.File))
	for i, f := range r.zr.File {
		names[i] = strings.TrimSuffix(f.Name, ".npy")
	}
	return names
}

// ByIndex decodes the member at the given archive position.
func (r *Reader) ByIndex(i int) (*npy.Array, error) {
	if i < 0 || i >= len(r.zr.File) {
		return nil, fmt.Errorf("%w: index %d", ErrNotFound, i)
	}
	return r.decodeMember(r.zr.File[i])
}

// ByName decodes the member with the given array name. The name matches
// with or without the .npy suffix.
func (r *Reader) ByName(name string) (*npy.Array, error) {
	for _, f := range r.zr.File {
		if f.Name == name || f.Name == name+".npy" {
			return r.decodeMember(f)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// RawByName returns the member's npy stream bytes without decoding them,
// inflating deflated members. Callers that route or repack members whole
// skip the element decode entirely.
func (r *Reader) RawByName(name string) ([]byte, error) {
	for _, f := range r.zr.File {
		if f.Name == name || f.Name == name+".npy" {
			rc, err := r.openMember(f)
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			raw, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("member %q: %w: %v", f.Name, ErrBadArchive, err)
			}
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Entries decodes every member in archive order, pairing each name with
// either its array or its error. Callers decide whether a partial failure
// is fatal.
func (r *Reader) Entries() []Entry {
	entries := make([]Entry, len(r.zr.File))
	for i, f := range r.zr.File {
		name := strings.TrimSuffix(f.Name, ".npy")
		arr, err := r.decodeMember(f)
		entries[i] = Entry{Name: name, Array: arr, Err: err}
	}
	return entries
}

// openMember validates one zip member and opens its payload stream.
func (r *Reader) openMember(f *zip.File) (io.ReadCloser, error) {
	if !strings.HasSuffix(f.Name, ".npy") {
		return nil, fmt.Errorf("member %q: %w: missing .npy suffix", f.Name, ErrBadArchive)
	}
	if f.Method != zip.Store && f.Method != zip.Deflate {
		return nil, fmt.Errorf("member %q: %w: method %d", f.Name, ErrUnsupportedCompression, f.Method)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("member %q: %w: %v", f.Name, ErrBadArchive, err)
	}
	return rc, nil
}

// decodeMember decompresses one zip member and decodes it as an npy stream.
func (r *Reader) decodeMember(f *zip.File) (*npy.Array, error) {
	rc, err := r.openMember(f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	arr, err := npy.DecodeExact(rc)
	if err != nil {
		return nil, fmt.Errorf("member %q: %w", f.Name, err)
	}
	return arr, nil
}
