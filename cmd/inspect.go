package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// InspectResult pairs the element's live attributes with the selector that
// would re-find it.
type InspectResult struct {
	Name        string            `yaml:"name,omitempty"         json:"name,omitempty"`
	ControlType string            `yaml:"control_type,omitempty" json:"control_type,omitempty"`
	StableID    string            `yaml:"stable_id,omitempty"    json:"stable_id,omitempty"`
	ClassName   string            `yaml:"class_name,omitempty"   json:"class_name,omitempty"`
	Selector    selector.Selector `yaml:"selector"               json:"selector"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build a selector for the element under the cursor",
	Long: `Inspect the element under the mouse cursor (or at --x/--y) and print the
ranked selector that a recorded macro would use to re-find it.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Int("x", -1, "Inspect at absolute X screen coordinate instead of the cursor")
	inspectCmd.Flags().Int("y", -1, "Inspect at absolute Y screen coordinate instead of the cursor")
}

func runInspect(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	if x < 0 || y < 0 {
		x, y, err = provider.Automation.CursorPos()
		if err != nil {
			return err
		}
	}

	el, err := provider.Automation.ElementFromPoint(x, y)
	if err != nil {
		return err
	}
	sel, err := selector.BuildForElement(provider.Automation, el)
	if err != nil {
		return err
	}
	attrs, err := el.Attributes()
	if err != nil {
		return err
	}
	return output.Print(InspectResult{
		Name:        attrs.Name,
		ControlType: attrs.ControlType,
		StableID:    attrs.AutomationID,
		ClassName:   attrs.ClassName,
		Selector:    sel,
	})
}
