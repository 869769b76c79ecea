package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-npy/npz"
)

// unpackCmd represents the unpack command
var unpackCmd = &cobra.Command{
	Use:   "unpack <archive.npz>",
	Short: "Extract every member of an archive into .npy files",
	Long: `Extract each member of a .npz archive into its own .npy file in
the output directory.

Example:
  npytool unpack checkpoint.npz -d weights/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		outDir, _ := cmd.Flags().GetString("out-dir")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}

		r, err := npz.OpenFile(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer r.Close()

		for _, e := range r.Entries() {
			if e.Err != nil {
				return e.Err
			}
			dest := filepath.Join(outDir, e.Name+".npy")
			if err := e.Array.WriteFile(dest); err != nil {
				return fmt.Errorf("writing %s: %w", dest, err)
			}
			cmd.Printf("%s\n", dest)
		}
		return nil
	},
}

func init() {
	unpackCmd.Flags().StringP("out-dir", "d", ".", "Directory to extract into")
	rootCmd.AddCommand(unpackCmd)
}
