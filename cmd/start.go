package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// StartResult is the output of a successful start.
type StartResult struct {
	OK  bool   `yaml:"ok"  json:"ok"`
	App string `yaml:"app" json:"app"`
}

var startCmd = &cobra.Command{
	Use:   "start [app name]",
	Short: "Launch an application via the Start menu",
	Long:  "Open the Start menu, type the application name, and press Enter — the same launch path a recorded start-app step replays.",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().Int("delay", 250, "Milliseconds to wait for the Start menu before typing")
}

func runStart(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	delayMs, _ := cmd.Flags().GetInt("delay")
	if err := provider.Inputter.StartMenuLaunch(args[0], delayMs); err != nil {
		return err
	}
	return output.Print(StartResult{OK: true, App: args[0]})
}
