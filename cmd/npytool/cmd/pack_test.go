package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-npy/npy"
	"github.com/robert-malhotra/go-npy/npz"
)

func writeTestArray(t *testing.T, dir, name string, data []int32) string {
	t.Helper()
	a, err := npy.New(data, []int{len(data)})
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, a.WriteFile(path))
	return path
}

func TestPackCommand(t *testing.T) {
	dir := t.TempDir()
	first := writeTestArray(t, dir, "first.npy", []int32{1, 2, 3})
	second := writeTestArray(t, dir, "second.npy", []int32{4, 5})
	out := filepath.Join(dir, "bundle.npz")

	rootCmd.SetArgs([]string{"pack", out, first, second})
	require.NoError(t, rootCmd.Execute())

	r, err := npz.OpenFile(out)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"first", "second"}, r.Names())
	a, err := r.ByName("second")
	require.NoError(t, err)
	vals, err := a.Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5}, vals)
}

func TestPackCommandMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "bundle.npz")

	rootCmd.SetArgs([]string{"pack", out, filepath.Join(dir, "absent.npy")})
	assert.Error(t, rootCmd.Execute())
}
