package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "npytool",
	Short: "Inspect and convert npy and npz files",
	Long: `npytool reads and writes NumPy array files (.npy) and archives
of them (.npz). It can print array metadata, extract archive members,
and bundle .npy files into a new archive.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
