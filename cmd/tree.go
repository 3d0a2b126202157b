package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/output"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Dump a window's accessibility tree",
	Long:  "Dump the accessibility tree of a window, bounded by depth and node count. Useful for discovering stable IDs and control names to target.",
	RunE:  runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	addWindowFlags(treeCmd)
	treeCmd.Flags().Int("depth", tree.DefaultDepth, "Max tree depth to export")
	treeCmd.Flags().Int("max-nodes", tree.DefaultMaxNodes, "Max nodes to export")
}

func runTree(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	win, err := locateWindow(provider, cmd)
	if err != nil {
		return err
	}

	depth, _ := cmd.Flags().GetInt("depth")
	maxNodes, _ := cmd.Flags().GetInt("max-nodes")

	root, err := tree.Build(win, depth, maxNodes)
	if err != nil {
		return err
	}
	return output.Print(root)
}
