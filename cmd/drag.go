package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// DragResult is the output of a completed drag gesture.
type DragResult struct {
	OK    bool `yaml:"ok"     json:"ok"`
	FromX int  `yaml:"from_x" json:"from_x"`
	FromY int  `yaml:"from_y" json:"from_y"`
	ToX   int  `yaml:"to_x"   json:"to_x"`
	ToY   int  `yaml:"to_y"   json:"to_y"`
}

var dragCmd = &cobra.Command{
	Use:   "drag",
	Short: "Drag within a window",
	Long: `Press, move, and release the left button inside a window. Coordinates are
relative to the window's top-left corner; the window is focused first.`,
	RunE: runDrag,
}

func init() {
	rootCmd.AddCommand(dragCmd)
	addWindowFlags(dragCmd)
	addDragFlags(dragCmd)
}

func addDragFlags(cmd *cobra.Command) {
	cmd.Flags().Int("from-x", 0, "Drag start X")
	cmd.Flags().Int("from-y", 0, "Drag start Y")
	cmd.Flags().Int("to-x", 0, "Drag end X")
	cmd.Flags().Int("to-y", 0, "Drag end Y")
	cmd.Flags().Int("duration", 500, "Gesture duration in milliseconds")
	cmd.Flags().Int("steps", 20, "Number of interpolated move events")
	cmd.MarkFlagRequired("from-x")
	cmd.MarkFlagRequired("from-y")
	cmd.MarkFlagRequired("to-x")
	cmd.MarkFlagRequired("to-y")
}

func dragFlags(cmd *cobra.Command) (fromX, fromY, toX, toY, durationMs, steps int) {
	fromX, _ = cmd.Flags().GetInt("from-x")
	fromY, _ = cmd.Flags().GetInt("from-y")
	toX, _ = cmd.Flags().GetInt("to-x")
	toY, _ = cmd.Flags().GetInt("to-y")
	durationMs, _ = cmd.Flags().GetInt("duration")
	steps, _ = cmd.Flags().GetInt("steps")
	return
}

func runDrag(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	win, err := locateWindow(provider, cmd)
	if err != nil {
		return err
	}
	bounds, err := win.Rect()
	if err != nil {
		return err
	}

	fromX, fromY, toX, toY, durationMs, steps := dragFlags(cmd)
	fromX += bounds.X
	fromY += bounds.Y
	toX += bounds.X
	toY += bounds.Y

	if err := provider.Inputter.Drag(fromX, fromY, toX, toY, durationMs, steps); err != nil {
		return err
	}
	return output.Print(DragResult{OK: true, FromX: fromX, FromY: fromY, ToX: toX, ToY: toY})
}
