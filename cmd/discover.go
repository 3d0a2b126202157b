package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/tree"
)

// DiscoverResult describes the largest content surface of a window.
type DiscoverResult struct {
	Name        string `yaml:"name,omitempty"    json:"name,omitempty"`
	ControlType string `yaml:"control_type"      json:"control_type"`
	ClassName   string `yaml:"class_name,omitempty" json:"class_name,omitempty"`
	X           int    `yaml:"x"                 json:"x"`
	Y           int    `yaml:"y"                 json:"y"`
	Width       int    `yaml:"width"             json:"width"`
	Height      int    `yaml:"height"            json:"height"`
	CenterX     int    `yaml:"center_x"          json:"center_x"`
	CenterY     int    `yaml:"center_y"          json:"center_y"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find a window's main content pane",
	Long:  "Find the largest content surface (pane, document, or custom control) in a window. Its center is a safe anchor for coordinate gestures like drags.",
	RunE:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	addWindowFlags(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	win, err := locateWindow(provider, cmd)
	if err != nil {
		return err
	}

	pane, bounds, err := tree.LargestContentPane(win)
	if err != nil {
		return err
	}
	attrs, err := pane.Attributes()
	if err != nil {
		return err
	}
	cx, cy := bounds.Center()
	return output.Print(DiscoverResult{
		Name:        attrs.Name,
		ControlType: attrs.ControlType,
		ClassName:   attrs.ClassName,
		X:           bounds.X,
		Y:           bounds.Y,
		Width:       bounds.Width,
		Height:      bounds.Height,
		CenterX:     cx,
		CenterY:     cy,
	})
}
