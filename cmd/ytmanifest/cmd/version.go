package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version of ytmanifest and of the extraction engine it runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "ytmanifest %s\n", Version)

		engine, err := newExtractor().Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "yt-dlp %s\n", engine)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
