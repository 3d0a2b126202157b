package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// RunResult is the output of a completed macro run.
type RunResult struct {
	OK    bool   `yaml:"ok"    json:"ok"`
	File  string `yaml:"file"  json:"file"`
	Steps int    `yaml:"steps" json:"steps"`
}

var runCmd = &cobra.Command{
	Use:   "run [macro.yaml]",
	Short: "Replay a recorded macro",
	Long: `Replay a macro file step by step. Steps execute strictly in order and the
run stops at the first step that fails terminally; the failing step's index
and action are reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	steps, err := macro.Load(args[0])
	if err != nil {
		return err
	}

	engine := newEngine(provider)
	if err := engine.Run(cmd.Context(), steps); err != nil {
		return err
	}
	return output.Print(RunResult{OK: true, File: args[0], Steps: len(steps)})
}
