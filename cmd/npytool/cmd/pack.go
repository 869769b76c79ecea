package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-npy/npy"
	"github.com/robert-malhotra/go-npy/npz"
)

// packCmd represents the pack command
var packCmd = &cobra.Command{
	Use:   "pack <archive.npz> <file.npy>...",
	Short: "Bundle .npy files into a .npz archive",
	Long: `Bundle one or more .npy files into a .npz archive. Each member is
named after its file's base name.

Example:
  npytool pack checkpoint.npz w1.npy w2.npy --compress`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := args[0]
		compress, _ := cmd.Flags().GetBool("compress")
		align, _ := cmd.Flags().GetInt("align")

		var opts []npz.WriterOption
		if compress {
			opts = append(opts, npz.WithCompression())
		}
		if align > 1 {
			opts = append(opts, npz.WithAlignment(align))
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}

		w := npz.NewWriter(f, opts...)
		for _, path := range args[1:] {
			a, err := npy.ReadFile(path)
			if err != nil {
				f.Close()
				return fmt.Errorf("reading %s: %w", path, err)
			}
			name := strings.TrimSuffix(filepath.Base(path), ".npy")
			if err := w.Add(name, a); err != nil {
				f.Close()
				return err
			}
		}
		if err := w.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

func init() {
	packCmd.Flags().Bool("compress", false, "Deflate member payloads")
	packCmd.Flags().Int("align", 0, "Align each member's data start to N bytes")
	rootCmd.AddCommand(packCmd)
}
