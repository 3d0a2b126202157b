package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// WindowEntry is one row of list-windows output.
type WindowEntry struct {
	Title  string `yaml:"title"  json:"title"`
	Handle uint64 `yaml:"handle" json:"handle"`
	PID    int    `yaml:"pid"    json:"pid"`
}

var listWindowsCmd = &cobra.Command{
	Use:   "list-windows",
	Short: "List visible top-level windows",
	Long:  "List visible top-level windows in OS iteration order, with the title, native handle, and process ID used for window scoping.",
	RunE:  runListWindows,
}

func init() {
	rootCmd.AddCommand(listWindowsCmd)
	listWindowsCmd.Flags().Int("pid", 0, "Only list windows of this process ID")
}

func runListWindows(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	pid, _ := cmd.Flags().GetInt("pid")

	wins, err := provider.Automation.TopWindows()
	if err != nil {
		return err
	}

	entries := make([]WindowEntry, 0, len(wins))
	for _, w := range wins {
		if pid != 0 && w.PID() != pid {
			continue
		}
		entries = append(entries, WindowEntry{
			Title:  w.Title(),
			Handle: uint64(w.Handle()),
			PID:    w.PID(),
		})
	}
	return output.Print(entries)
}
