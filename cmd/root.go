package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/config"
	"github.com/lijinlar/handsfree-windows/internal/observability"
	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/version"
)

// cfg is the loaded application configuration, available to every command
// after the persistent pre-run.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "handsfree",
	Short: "Record and replay Windows UI macros",
	Long:  "A CLI tool that records desktop interactions as resilient selector-based macros and replays them via the accessibility tree.",
}

func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
			cfg.Log.Level = "debug"
		}
		observability.Initialize(cfg.Log)

		format, _ := rootCmd.PersistentFlags().GetString("format")
		parsed, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = parsed
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}
