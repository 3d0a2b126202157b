package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/observability"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/recorder"
)

var recordCmd = &cobra.Command{
	Use:   "record [output.yaml]",
	Short: "Record a macro from live input",
	Long: `Record desktop interactions into a macro file.

The passive recorder (default) watches real clicks and keystrokes system-wide
and converts them to selector-based steps; press F9 to stop. With
--interactive, steps are captured one at a time from a terminal prompt
instead, with no global input hooks.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().Bool("interactive", false, "Prompt-driven capture instead of passive recording")
}

func runRecord(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	outPath := args[0]

	interactive, _ := cmd.Flags().GetBool("interactive")
	var steps []macro.Step
	if interactive {
		it := recorder.NewInteractive(provider.Automation, os.Stdin, os.Stderr)
		steps, err = it.Run()
	} else {
		fmt.Fprintln(os.Stderr, "Recording. Interact with the target application; press F9 to stop.")
		rec := recorder.New(provider.Automation, provider.EventSource, cfg.Recorder, observability.Logger())
		steps, err = rec.Run(cmd.Context())
	}
	if err != nil {
		return err
	}

	if len(steps) == 0 {
		return fmt.Errorf("nothing recorded")
	}
	if err := macro.Save(outPath, steps); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Recorded %d step(s) to %s\n", len(steps), outPath)
	return nil
}
