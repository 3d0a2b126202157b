package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// FocusResult is the output of a successful focus.
type FocusResult struct {
	OK     bool   `yaml:"ok"     json:"ok"`
	Title  string `yaml:"title"  json:"title"`
	Handle uint64 `yaml:"handle" json:"handle"`
	PID    int    `yaml:"pid"    json:"pid"`
}

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Bring a window to the foreground",
	Long:  "Locate a top-level window by title, regex, or handle and give it input focus.",
	RunE:  runFocus,
}

func init() {
	rootCmd.AddCommand(focusCmd)
	addWindowFlags(focusCmd)
}

func runFocus(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	win, err := locateWindow(provider, cmd)
	if err != nil {
		return err
	}
	return output.Print(FocusResult{
		OK:     true,
		Title:  win.Title(),
		Handle: uint64(win.Handle()),
		PID:    win.PID(),
	})
}
