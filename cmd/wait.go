package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// WaitResult is the output of a successful wait.
type WaitResult struct {
	OK          bool   `yaml:"ok"                     json:"ok"`
	Name        string `yaml:"name,omitempty"         json:"name,omitempty"`
	ControlType string `yaml:"control_type,omitempty" json:"control_type,omitempty"`
	StableID    string `yaml:"stable_id,omitempty"    json:"stable_id,omitempty"`
	WaitedMs    int64  `yaml:"waited_ms"              json:"waited_ms"`
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a control to appear",
	Long:  "Poll a window's accessibility tree until a control matching the query appears, or the timeout elapses.",
	RunE:  runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	addWindowFlags(waitCmd)
	waitCmd.Flags().String("stable-id", "", "Match by automation ID")
	waitCmd.Flags().String("name", "", "Match by control name")
	waitCmd.Flags().String("name-regex", "", "Match control name by regular expression")
	waitCmd.Flags().String("control-type", "", "Match by control type")
	waitCmd.Flags().Int("timeout", 0, "Max seconds to wait (default from config)")
}

func runWait(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	q := classicQueryFromFlags(cmd)
	if q.IsZero() {
		return fmt.Errorf("specify a control query (--stable-id, --name, --name-regex, --control-type)")
	}
	win, err := locateWindow(provider, cmd)
	if err != nil {
		return err
	}

	started := time.Now()
	ctrl, err := macro.WaitForControl(win, q, cfg.Find.RetryMs, time.Sleep)
	if err != nil {
		return err
	}
	attrs, _ := ctrl.Attributes()
	return output.Print(WaitResult{
		OK:          true,
		Name:        attrs.Name,
		ControlType: attrs.ControlType,
		StableID:    attrs.AutomationID,
		WaitedMs:    time.Since(started).Milliseconds(),
	})
}
