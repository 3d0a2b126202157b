package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// ResolveResult reports how a saved selector resolved against the live tree.
type ResolveResult struct {
	OK          bool   `yaml:"ok"                     json:"ok"`
	Attempts    int    `yaml:"attempts"               json:"attempts"`
	Window      string `yaml:"window,omitempty"       json:"window,omitempty"`
	Name        string `yaml:"name,omitempty"         json:"name,omitempty"`
	ControlType string `yaml:"control_type,omitempty" json:"control_type,omitempty"`
	StableID    string `yaml:"stable_id,omitempty"    json:"stable_id,omitempty"`
	X           int    `yaml:"x,omitempty"            json:"x,omitempty"`
	Y           int    `yaml:"y,omitempty"            json:"y,omitempty"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [selector.yaml]",
	Short: "Resolve a saved selector against the live tree",
	Long: `Load a selector from a YAML file and resolve it against the live
accessibility tree. Reports which candidate matched, so brittle recordings can
be diagnosed without replaying the whole macro.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read selector file: %w", err)
	}
	var sel selector.Selector
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return fmt.Errorf("parse selector file: %w", err)
	}
	if err := sel.Validate(); err != nil {
		return err
	}
	if sel.Window.IsZero() {
		return fmt.Errorf("selector has no window descriptor")
	}

	win, err := selector.Locate(provider.Automation, sel.Window)
	if err != nil {
		return err
	}
	el, trace, err := selector.ResolveTrace(win, sel)
	if err != nil {
		return err
	}

	attrs, err := el.Attributes()
	if err != nil {
		return err
	}
	result := ResolveResult{
		OK:          true,
		Attempts:    trace.Attempts,
		Window:      win.Title(),
		Name:        attrs.Name,
		ControlType: attrs.ControlType,
		StableID:    attrs.AutomationID,
	}
	if bounds, err := el.Rect(); err == nil {
		result.X, result.Y = bounds.Center()
	}
	return output.Print(result)
}
