package cmd

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
)

// OpenPathResult is the output of a successful open-path.
type OpenPathResult struct {
	OK   bool   `yaml:"ok"   json:"ok"`
	Path string `yaml:"path" json:"path"`
}

var openPathCmd = &cobra.Command{
	Use:   "open-path [file, directory, or URL]",
	Short: "Open a path with its default handler",
	Long:  "Open a file, directory, or URL with the shell's default handler, the same as double-clicking it in Explorer.",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpenPath,
}

func init() {
	rootCmd.AddCommand(openPathCmd)
}

func runOpenPath(cmd *cobra.Command, args []string) error {
	target := args[0]

	// `start` is a cmd.exe builtin; the empty string is the window title
	// argument it otherwise swallows the path into.
	openExec := exec.Command("cmd", "/C", "start", "", target)
	if out, err := openExec.CombinedOutput(); err != nil {
		return fmt.Errorf("open failed: %s (%w)", strings.TrimSpace(string(out)), err)
	}
	return output.Print(OpenPathResult{OK: true, Path: target})
}
