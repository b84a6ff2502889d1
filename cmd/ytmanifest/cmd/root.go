// Package cmd implements the ytmanifest commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/config"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ytmanifest",
	Short: "Turn media URLs into DASH and HLS manifests",
	Long: `ytmanifest runs yt-dlp against a media URL and turns the reported formats
into a DASH manifest or an HLS master playlist, written to a local directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd)
	},
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
}

// setup loads configuration and builds the logger. Logs go to stderr so
// stdout only carries command output. Flags win over config only when
// given explicitly.
func setup(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	}
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("log-level") || cfgFile == "" {
		logCfg.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") || cfgFile == "" {
		logCfg.Format, _ = flags.GetString("log-format")
	}

	logger, err = logging.NewLogger(logCfg)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
