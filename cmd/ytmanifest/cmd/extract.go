package cmd

import (
	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/extractor"
)

var extractOpts extractor.Options

var extractCmd = &cobra.Command{
	Use:   "extract URL",
	Short: "Print the extraction engine's info document for a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(".", "")
		if err != nil {
			return err
		}

		opts := extractOpts
		opts.Cookies = cfg.Extractor.Cookies
		opts.NoPlaylist = cfg.Extractor.NoPlaylist

		doc, err := svc.Extract(cmd.Context(), args[0], opts)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), doc)
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.Format, "format", "f", "", "format selector")
	extractCmd.Flags().StringArrayVar(&extractOpts.ExtractorArgs, "extractor-args", nil, "extractor arguments, repeatable")
	rootCmd.AddCommand(extractCmd)
}
