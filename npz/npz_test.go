package npz

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-npy/npy"
)

func mustArray(t *testing.T, data any, shape []int, opts ...npy.ArrayOption) *npy.Array {
	t.Helper()
	a, err := npy.New(data, shape, opts...)
	require.NoError(t, err)
	return a
}

// writeArchive builds an in-memory archive from name/array pairs.
func writeArchive(t *testing.T, arrays map[string]*npy.Array, order []string, opts ...WriterOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, opts...)
	for _, name := range order {
		require.NoError(t, w.Add(name, arrays[name]))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func openArchive(t *testing.T, raw []byte) *Reader {
	t.Helper()
	r, err := NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	return r
}

func TestArchiveRoundTrip(t *testing.T) {
	arrays := map[string]*npy.Array{
		"b8": mustArray(t, []bool{true, false}, []int{2}),
		"i8": mustArray(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, []int{10}),
		"u8": mustArray(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, []int{10}),
	}
	order := []string{"b8", "i8", "u8"}
	raw := writeArchive(t, arrays, order)

	r := openArchive(t, raw)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, order, r.Names())

	bools, err := r.ByName("b8")
	require.NoError(t, err)
	assert.Equal(t, "|b1", bools.DType().String())
	got, err := bools.Bools()
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, got)

	ints, err := r.ByName("i8.npy")
	require.NoError(t, err)
	assert.Equal(t, "<i8", ints.DType().String())
	vals, err := ints.Int64s()
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, vals)

	byIdx, err := r.ByIndex(2)
	require.NoError(t, err)
	uints, err := byIdx.Uint64s()
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, uints)
}

func TestArchiveEntries(t *testing.T) {
	arrays := map[string]*npy.Array{
		"a": mustArray(t, []int32{1}, []int{1}),
		"b": mustArray(t, []int32{2}, []int{1}),
	}
	r := openArchive(t, writeArchive(t, arrays, []string{"a", "b"}))

	entries := r.Entries()
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NoError(t, e.Err, "entry %s", e.Name)
		require.NotNil(t, e.Array)
	}
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "b", entries[1].Name)
}

func TestArchiveNotFound(t *testing.T) {
	arrays := map[string]*npy.Array{"a": mustArray(t, []int32{1}, []int{1})}
	r := openArchive(t, writeArchive(t, arrays, []string{"a"}))

	_, err := r.ByName("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.ByIndex(-1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.ByIndex(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWriterDuplicateName(t *testing.T) {
	a := mustArray(t, []int32{1}, []int{1})
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Add("x", a))

	err := w.Add("x", a)
	assert.ErrorIs(t, err, ErrDuplicateName)
	// The suffixed and bare spellings name the same member.
	err = w.Add("x.npy", a)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "Close is idempotent")
	assert.ErrorIs(t, w.Add("x", mustArray(t, []int32{1}, []int{1})), ErrClosed)
}

func TestCompressedArchive(t *testing.T) {
	// Highly repetitive data so deflate visibly shrinks the member.
	data := make([]float64, 4096)
	arrays := map[string]*npy.Array{"zeros": mustArray(t, data, []int{4096})}
	raw := writeArchive(t, arrays, []string{"zeros"}, WithCompression())

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, zip.Deflate, zr.File[0].Method)
	assert.Less(t, zr.File[0].CompressedSize64, zr.File[0].UncompressedSize64)

	r := openArchive(t, raw)
	a, err := r.ByName("zeros")
	require.NoError(t, err)
	got, err := a.Float64s()
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestAlignedArchive(t *testing.T) {
	arrays := map[string]*npy.Array{
		"a": mustArray(t, []float64{1, 2, 3}, []int{3}),
		"b": mustArray(t, []int8{1}, []int{1}),
		"c": mustArray(t, []uint32{9, 8, 7, 6}, []int{2, 2}),
	}
	raw := writeArchive(t, arrays, []string{"a", "b", "c"}, WithAlignment(64))

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	for _, f := range zr.File {
		off, err := f.DataOffset()
		require.NoError(t, err)
		assert.Zerof(t, off%64, "member %s data offset %d not 64-aligned", f.Name, off)
	}

	// Alignment is a layout property only; decoding is unchanged.
	r := openArchive(t, raw)
	for _, e := range r.Entries() {
		require.NoError(t, e.Err, "entry %s", e.Name)
	}
	a, err := r.ByName("a")
	require.NoError(t, err)
	got, err := a.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestEntryErrorIsolation(t *testing.T) {
	var good bytes.Buffer
	require.NoError(t, mustArray(t, []int32{1, 2}, []int{2}).Encode(&good))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name string, payload []byte) {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write(payload)
		require.NoError(t, err)
	}
	add("first.npy", good.Bytes())
	add("bad.npy", []byte("not an npy stream"))
	add("last.npy", good.Bytes())
	require.NoError(t, zw.Close())

	r := openArchive(t, buf.Bytes())
	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.NoError(t, entries[0].Err)
	assert.NotNil(t, entries[0].Array)
	assert.ErrorIs(t, entries[1].Err, npy.ErrBadMagic)
	assert.Nil(t, entries[1].Array)
	assert.NoError(t, entries[2].Err)
	assert.NotNil(t, entries[2].Array)

	// ByName still reaches the members around the corrupt one.
	a, err := r.ByName("last")
	require.NoError(t, err)
	vals, err := a.Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, vals)
}

func TestMemberWithTrailingBytes(t *testing.T) {
	var stream bytes.Buffer
	require.NoError(t, mustArray(t, []int32{1, 2}, []int{2}).Encode(&stream))
	stream.WriteByte(0)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "padded.npy", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write(stream.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r := openArchive(t, buf.Bytes())
	_, err = r.ByName("padded")
	assert.ErrorIs(t, err, npy.ErrExtraBytes)
}

func TestUnsupportedCompressionMethod(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "weird.npy",
		Method:             12, // bzip2, never written by numpy
		CRC32:              0,
		CompressedSize64:   4,
		UncompressedSize64: 4,
	})
	require.NoError(t, err)
	_, err = w.Write([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r := openArchive(t, buf.Bytes())
	_, err = r.ByName("weird")
	assert.ErrorIs(t, err, ErrUnsupportedCompression)
}

func TestNonArrayMember(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "README.txt", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r := openArchive(t, buf.Bytes())
	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.ErrorIs(t, entries[0].Err, ErrBadArchive)
}

func TestNewReaderRejectsGarbage(t *testing.T) {
	raw := []byte("definitely not a zip archive")
	_, err := NewReader(bytes.NewReader(raw), int64(len(raw)))
	assert.ErrorIs(t, err, ErrBadArchive)
}

func TestOpenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.npz")

	arrays := map[string]*npy.Array{"v": mustArray(t, []float32{1.5, 2.5}, []int{2})}
	raw := writeArchive(t, arrays, []string{"v"})
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	r, err := OpenFile(path)
	require.NoError(t, err)
	defer r.Close()

	a, err := r.ByName("v")
	require.NoError(t, err)
	got, err := a.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, 2.5}, got)
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "nope.npz"))
	assert.Error(t, err)
}

func TestByteExactMemberPayload(t *testing.T) {
	// A stored member's payload is the npy stream byte for byte; extracting
	// it and re-adding it must reproduce identical member bytes.
	a := mustArray(t, []uint16{1, 2, 3, 4, 5, 6}, []int{3, 2}, npy.WithFortranOrder())
	raw := writeArchive(t, map[string]*npy.Array{"m": a}, []string{"m"})

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	var member bytes.Buffer
	_, err = member.ReadFrom(rc)
	require.NoError(t, err)

	var direct bytes.Buffer
	require.NoError(t, a.Encode(&direct))
	assert.Equal(t, direct.Bytes(), member.Bytes())
}

func TestRawByName(t *testing.T) {
	a := mustArray(t, []float64{1.5, 2.5, 3.5}, []int{3})
	var direct bytes.Buffer
	require.NoError(t, a.Encode(&direct))

	t.Run("stored", func(t *testing.T) {
		raw := writeArchive(t, map[string]*npy.Array{"v": a}, []string{"v"})
		r := openArchive(t, raw)

		member, err := r.RawByName("v")
		require.NoError(t, err)
		assert.Equal(t, direct.Bytes(), member)

		// Raw bytes decode like the member itself.
		back, err := npy.DecodeExact(bytes.NewReader(member))
		require.NoError(t, err)
		assert.Equal(t, a.Data, back.Data)

		_, err = r.RawByName("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deflated", func(t *testing.T) {
		raw := writeArchive(t, map[string]*npy.Array{"v": a}, []string{"v"}, WithCompression())
		r := openArchive(t, raw)

		member, err := r.RawByName("v.npy")
		require.NoError(t, err)
		assert.Equal(t, direct.Bytes(), member)
	})
}
