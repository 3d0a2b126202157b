package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/browser"
	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/observability"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// addWindowFlags adds the window-scoping flags shared by commands that
// operate on a top-level window.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("window", "", "Exact window title to match")
	cmd.Flags().String("title-regex", "", "Window title regular expression")
	cmd.Flags().Uint64("handle", 0, "Native window handle (session-scoped)")
	cmd.Flags().Int("pid", 0, "Restrict matching to windows of this process ID")
}

// windowDescriptorFromFlags builds a window descriptor from the shared flags.
func windowDescriptorFromFlags(cmd *cobra.Command) selector.WindowDescriptor {
	title, _ := cmd.Flags().GetString("window")
	regex, _ := cmd.Flags().GetString("title-regex")
	handle, _ := cmd.Flags().GetUint64("handle")
	pid, _ := cmd.Flags().GetInt("pid")
	return selector.WindowDescriptor{
		Title:      title,
		TitleRegex: regex,
		Handle:     uintptr(handle),
		PID:        pid,
	}
}

// requireWindowScope rejects commands invoked without any window flag.
func requireWindowScope(desc selector.WindowDescriptor) error {
	if desc.IsZero() {
		return fmt.Errorf("--window, --title-regex, or --handle is required to scope the window lookup")
	}
	return nil
}

// newEngine wires a replay engine from the provider, the loaded config, and
// the browser driver.
func newEngine(provider *platform.Provider) *macro.Engine {
	drv := browser.New(cfg.Browser, observability.Logger())
	return macro.NewEngine(provider.Automation, provider.Inputter, drv, cfg, observability.Logger())
}

// locateWindow resolves the shared window flags to a focused live window.
func locateWindow(provider *platform.Provider, cmd *cobra.Command) (platform.Window, error) {
	desc := windowDescriptorFromFlags(cmd)
	if err := requireWindowScope(desc); err != nil {
		return nil, err
	}
	return selector.LocateAndFocus(provider.Automation, desc)
}
