package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-npy/npy"
	"github.com/robert-malhotra/go-npy/npz"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print array metadata from a .npy or .npz file",
	Long: `Print the dtype, shape, memory layout, and element count of the
array in a .npy file, or of every member of a .npz archive.

Example:
  npytool inspect weights.npy
  npytool inspect checkpoint.npz`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if strings.HasSuffix(path, ".npz") {
			return inspectArchive(cmd, path)
		}
		a, err := npy.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		printArray(cmd, "", a)
		return nil
	},
}

func inspectArchive(cmd *cobra.Command, path string) error {
	r, err := npz.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	for _, e := range r.Entries() {
		if e.Err != nil {
			cmd.Printf("%s: error: %v\n", e.Name, e.Err)
			continue
		}
		printArray(cmd, e.Name+": ", e.Array)
	}
	return nil
}

func printArray(cmd *cobra.Command, prefix string, a *npy.Array) {
	layout := "C"
	if a.FortranOrder() {
		layout = "Fortran"
	}
	cmd.Printf("%sdtype=%s shape=%s layout=%s elements=%d bytes=%d\n",
		prefix, a.DType(), formatShape(a.Shape()), layout, a.NumElements(), len(a.Data))
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
