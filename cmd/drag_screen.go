package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

var dragScreenCmd = &cobra.Command{
	Use:   "drag-screen",
	Short: "Drag between absolute screen positions",
	Long:  "Press, move, and release the left button between absolute screen coordinates, without any window lookup.",
	RunE:  runDragScreen,
}

func init() {
	rootCmd.AddCommand(dragScreenCmd)
	addDragFlags(dragScreenCmd)
}

func runDragScreen(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	fromX, fromY, toX, toY, durationMs, steps := dragFlags(cmd)
	if err := provider.Inputter.Drag(fromX, fromY, toX, toY, durationMs, steps); err != nil {
		return err
	}
	return output.Print(DragResult{OK: true, FromX: fromX, FromY: fromY, ToX: toX, ToY: toY})
}
