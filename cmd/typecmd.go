package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/observability"
	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// TypeResult is the output of a successful type.
type TypeResult struct {
	OK     bool   `yaml:"ok"              json:"ok"`
	Action string `yaml:"action"          json:"action"`
	Name   string `yaml:"name,omitempty"  json:"name,omitempty"`
	Text   string `yaml:"text"            json:"text"`
	Enter  bool   `yaml:"enter,omitempty" json:"enter,omitempty"`
}

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text into a control",
	Long: `Set the text of a matched control, or inject keystrokes into the focused
control when no control query is given. Pass --enter to press Enter after.`,
	Args: cobra.ExactArgs(1),
	RunE: runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	addWindowFlags(typeCmd)
	typeCmd.Flags().String("stable-id", "", "Match by automation ID")
	typeCmd.Flags().String("name", "", "Match by control name")
	typeCmd.Flags().String("name-regex", "", "Match control name by regular expression")
	typeCmd.Flags().String("control-type", "", "Match by control type (e.g. Edit)")
	typeCmd.Flags().Int("timeout", 0, "Max seconds to wait for the control (default from config)")
	typeCmd.Flags().Bool("enter", false, "Press Enter after typing")
}

func runType(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	text := args[0]
	enter, _ := cmd.Flags().GetBool("enter")
	q := classicQueryFromFlags(cmd)

	var name string
	if q.IsZero() {
		// No query: keystrokes go to whatever currently has focus.
		if !windowDescriptorFromFlags(cmd).IsZero() {
			if _, err := locateWindow(provider, cmd); err != nil {
				return err
			}
		}
		if err := provider.Inputter.TypeText(text); err != nil {
			return err
		}
	} else {
		win, err := locateWindow(provider, cmd)
		if err != nil {
			return err
		}
		ctrl, err := macro.WaitForControl(win, q, cfg.Find.RetryMs, time.Sleep)
		if err != nil {
			return err
		}
		attrs, _ := ctrl.Attributes()
		name = attrs.Name
		if focusErr := ctrl.Focus(); focusErr != nil {
			observability.Logger().Debug("control focus failed before typing", zap.Error(focusErr))
		}
		if err := ctrl.SetText(text); err != nil {
			if typeErr := provider.Inputter.TypeText(text); typeErr != nil {
				return typeErr
			}
		}
	}

	if enter {
		if err := provider.Inputter.PressEnter(); err != nil {
			return err
		}
	}
	return output.Print(TypeResult{OK: true, Action: "type", Name: name, Text: text, Enter: enter})
}
