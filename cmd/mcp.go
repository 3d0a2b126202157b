package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lijinlar/handsfree-windows/internal/observability"
	"github.com/lijinlar/handsfree-windows/internal/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server",
	Long:  "Expose the macro engine as MCP tools (list_windows, tree, focus, inspect, resolve_selector, run_steps, run_macro) over stdio or HTTP.",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or streamable-http")
	mcpCmd.Flags().Int("port", 8137, "Port for the streamable-http transport")
}

func runMCP(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	s, err := server.New(cfg, observability.Logger())
	if err != nil {
		return err
	}
	return s.Serve(server.Config{Transport: transport, Port: port})
}
