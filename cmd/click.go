package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// ClickResult is the output of a successful click.
type ClickResult struct {
	OK          bool   `yaml:"ok"                     json:"ok"`
	Action      string `yaml:"action"                 json:"action"`
	Name        string `yaml:"name,omitempty"         json:"name,omitempty"`
	ControlType string `yaml:"control_type,omitempty" json:"control_type,omitempty"`
	X           int    `yaml:"x,omitempty"            json:"x,omitempty"`
	Y           int    `yaml:"y,omitempty"            json:"y,omitempty"`
}

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click a control or a screen position",
	Long: `Click a control matched inside a window, or click raw screen coordinates.

Control matching waits for the control to appear, retrying until --timeout
elapses. Coordinate clicks bypass the accessibility tree entirely.`,
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addWindowFlags(clickCmd)
	clickCmd.Flags().String("stable-id", "", "Match by automation ID")
	clickCmd.Flags().String("name", "", "Match by control name")
	clickCmd.Flags().String("name-regex", "", "Match control name by regular expression")
	clickCmd.Flags().String("control-type", "", "Match by control type (e.g. Button)")
	clickCmd.Flags().Int("timeout", 0, "Max seconds to wait for the control (default from config)")
	clickCmd.Flags().Int("x", -1, "Click at absolute X screen coordinate")
	clickCmd.Flags().Int("y", -1, "Click at absolute Y screen coordinate")
	clickCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
}

func runClick(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}

	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	q := classicQueryFromFlags(cmd)

	// Coordinate mode when no control query is given.
	if q.IsZero() {
		if x < 0 || y < 0 {
			return fmt.Errorf("specify a control query (--stable-id, --name, --name-regex, --control-type) or both --x and --y")
		}
		buttonStr, _ := cmd.Flags().GetString("button")
		button, err := platform.ParsePointerButton(buttonStr)
		if err != nil {
			return err
		}
		if err := provider.Inputter.ClickAt(x, y, button); err != nil {
			return err
		}
		return output.Print(ClickResult{OK: true, Action: "click", X: x, Y: y})
	}

	win, err := locateWindow(provider, cmd)
	if err != nil {
		return err
	}
	ctrl, err := macro.WaitForControl(win, q, cfg.Find.RetryMs, time.Sleep)
	if err != nil {
		return err
	}
	attrs, _ := ctrl.Attributes()
	if err := ctrl.Click(); err != nil {
		return err
	}
	return output.Print(ClickResult{
		OK:          true,
		Action:      "click",
		Name:        attrs.Name,
		ControlType: attrs.ControlType,
	})
}

// classicQueryFromFlags reads the shared control-matching flags.
func classicQueryFromFlags(cmd *cobra.Command) macro.ClassicQuery {
	stableID, _ := cmd.Flags().GetString("stable-id")
	name, _ := cmd.Flags().GetString("name")
	nameRegex, _ := cmd.Flags().GetString("name-regex")
	controlType, _ := cmd.Flags().GetString("control-type")
	timeout, _ := cmd.Flags().GetInt("timeout")
	if timeout <= 0 {
		timeout = cfg.Find.TimeoutSec
	}
	return macro.ClassicQuery{
		StableID:    stableID,
		Name:        name,
		NameRegex:   nameRegex,
		ControlType: controlType,
		TimeoutSec:  timeout,
	}
}
