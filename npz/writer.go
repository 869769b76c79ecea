package npz

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/robert-malhotra/go-npy/npy"
)

// WriterOption configures archive writing.
type WriterOption func(*writerOptions)

type writerOptions struct {
	compress bool
	align    int
}

// WithCompression deflates member payloads instead of storing them, like
// numpy.savez_compressed.
func WithCompression() WriterOption {
	return func(o *writerOptions) {
		o.compress = true
	}
}

// WithAlignment pads each member's data start to a multiple of align bytes
// using a zip extra field, the same layout alignment-rewriting tools
// produce. 64 is the common convention. Without this option the archive is
// written tight, matching numpy.savez.
func WithAlignment(align int) WriterOption {
	return func(o *writerOptions) {
		if align > 1 {
			o.align = align
		}
	}
}

// Writer builds an npz archive one array at a time. Members appear in the
// archive in insertion order.
//
// Member sizes and checksums are computed before each local header is
// written, so the archive carries no data descriptors and the layout is
// fully deterministic.
type Writer struct {
	zw     *zip.Writer
	cw     *countingWriter
	names  map[string]struct{}
	opts   writerOptions
	closed bool
}

// NewWriter creates an archive writer over w.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	o := writerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	cw := &countingWriter{w: w}
	return &Writer{
		zw:    zip.NewWriter(cw),
		cw:    cw,
		names: make(map[string]struct{}),
		opts:  o,
	}
}

// Add appends one array to the archive under the given name. The zip member
// is named name + ".npy". Names must be unique within an archive.
func (w *Writer) Add(name string, a *npy.Array) error {
	if w.closed {
		return ErrClosed
	}
	key := strings.TrimSuffix(name, ".npy")
	if _, ok := w.names[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, key)
	}
	memberName := key + ".npy"

	preambleAlign := 16
	if w.opts.align > preambleAlign {
		// Keep element data aligned inside the member, not just the member's
		// data start.
		preambleAlign = w.opts.align
	}
	var payload bytes.Buffer
	if err := a.EncodeAligned(&payload, preambleAlign); err != nil {
		return fmt.Errorf("member %q: %w", memberName, err)
	}

	hdr := &zip.FileHeader{
		Name:               memberName,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(payload.Bytes()),
		UncompressedSize64: uint64(payload.Len()),
	}

	stored := payload.Bytes()
	if w.opts.compress {
		var compressed bytes.Buffer
		fw, err := flate.NewWriter(&compressed, flate.DefaultCompression)
		if err != nil {
			return fmt.Errorf("member %q: creating deflate writer: %w", memberName, err)
		}
		if _, err := fw.Write(payload.Bytes()); err != nil {
			return fmt.Errorf("member %q: deflating: %w", memberName, err)
		}
		if err := fw.Close(); err != nil {
			return fmt.Errorf("member %q: deflating: %w", memberName, err)
		}
		hdr.Method = zip.Deflate
		stored = compressed.Bytes()
	}
	hdr.CompressedSize64 = uint64(len(stored))

	if w.opts.align > 1 {
		extra, err := w.alignmentExtra(memberName)
		if err != nil {
			return err
		}
		hdr.Extra = extra
	}

	mw, err := w.zw.CreateRaw(hdr)
	if err != nil {
		return fmt.Errorf("creating archive member %q: %w", memberName, err)
	}
	if _, err := mw.Write(stored); err != nil {
		return fmt.Errorf("writing archive member %q: %w", memberName, err)
	}
	w.names[key] = struct{}{}
	return nil
}

// Close finalizes the zip central directory. The archive is unreadable
// until Close returns.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// localHeaderFixedSize is the size of a zip local file header before the
// variable-length name and extra fields.
const localHeaderFixedSize = 30

// extraBlockHeaderSize is the size of one extra-field block header: a
// 2-byte ID plus a 2-byte length.
const extraBlockHeaderSize = 4

// alignPaddingID tags the padding extra block. Zip readers skip blocks with
// unknown IDs, so the exact value only needs to stay clear of the
// registered ranges.
const alignPaddingID = 0x1ea5

// alignmentExtra builds a padding extra field sized so that the member's
// data, which begins immediately after the local header, starts on a
// multiple of the configured alignment.
func (w *Writer) alignmentExtra(memberName string) ([]byte, error) {
	// The zip writer buffers internally; flush so the byte count reflects
	// where the next local header will land.
	if err := w.zw.Flush(); err != nil {
		return nil, fmt.Errorf("flushing archive: %w", err)
	}
	dataStart := w.cw.n + localHeaderFixedSize + int64(len(memberName))
	pad := w.opts.align - int(dataStart%int64(w.opts.align))
	if pad == w.opts.align {
		return nil, nil
	}
	if pad < extraBlockHeaderSize {
		// An extra block cannot be smaller than its own header; pad a full
		// extra cycle instead.
		pad += w.opts.align
	}
	extra := make([]byte, pad)
	binary.LittleEndian.PutUint16(extra[0:2], alignPaddingID)
	binary.LittleEndian.PutUint16(extra[2:4], uint16(pad-extraBlockHeaderSize))
	return extra, nil
}

// countingWriter tracks how many bytes have reached the underlying writer,
// which is how the archive writer knows the offset of the next local
// header.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
