// Package server exposes the macro engine over MCP so agent frontends can
// drive the desktop without shelling out to the CLI per step.
package server

import (
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/lijinlar/handsfree-windows/internal/browser"
	"github.com/lijinlar/handsfree-windows/internal/config"
	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server wraps the MCP server with the platform provider and replay engine.
// UI automation is not reentrant, so tool calls serialize on providerMu.
type Server struct {
	provider   *platform.Provider
	engine     *macro.Engine
	cfg        *config.Config
	log        *zap.Logger
	providerMu sync.Mutex
	mcp        *mcpserver.MCPServer
}

// New creates and configures an MCP server with all handsfree tools.
func New(appCfg *config.Config, log *zap.Logger) (*Server, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}

	drv := browser.New(appCfg.Browser, log)
	s := &Server{
		provider: provider,
		engine:   macro.NewEngine(provider.Automation, provider.Inputter, drv, appCfg, log),
		cfg:      appCfg,
		log:      log,
	}

	s.mcp = mcpserver.NewMCPServer(
		"handsfree",
		"1.0.0",
	)

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	// list_windows
	s.mcp.AddTool(
		mcp.NewTool("list_windows",
			mcp.WithDescription("List visible top-level windows with their title, native handle, and process ID"),
			mcp.WithNumber("pid", mcp.Description("Only list windows of this process ID")),
		),
		s.handleListWindows,
	)

	// tree
	s.mcp.AddTool(
		mcp.NewTool("tree",
			mcp.WithDescription("Dump a window's accessibility tree to discover stable IDs and control names"),
			mcp.WithString("window", mcp.Description("Window title substring")),
			mcp.WithString("title_regex", mcp.Description("Window title regular expression")),
			mcp.WithNumber("depth", mcp.Description("Max tree depth (default 3)")),
			mcp.WithNumber("max_nodes", mcp.Description("Max nodes to export (default 5000)")),
		),
		s.handleTree,
	)

	// focus
	s.mcp.AddTool(
		mcp.NewTool("focus",
			mcp.WithDescription("Bring a window to the foreground"),
			mcp.WithString("window", mcp.Description("Window title substring")),
			mcp.WithString("title_regex", mcp.Description("Window title regular expression")),
		),
		s.handleFocus,
	)

	// inspect
	s.mcp.AddTool(
		mcp.NewTool("inspect",
			mcp.WithDescription("Build a ranked selector for the element at screen coordinates (or under the cursor)"),
			mcp.WithNumber("x", mcp.Description("Absolute X screen coordinate")),
			mcp.WithNumber("y", mcp.Description("Absolute Y screen coordinate")),
		),
		s.handleInspect,
	)

	// resolve_selector
	s.mcp.AddTool(
		mcp.NewTool("resolve_selector",
			mcp.WithDescription("Resolve a selector document against the live accessibility tree and report which candidate matched"),
			mcp.WithString("selector_yaml", mcp.Description("The selector as a YAML document"), mcp.Required()),
		),
		s.handleResolveSelector,
	)

	// run_steps
	s.mcp.AddTool(
		mcp.NewTool("run_steps",
			mcp.WithDescription("Replay macro steps (YAML step list). Steps execute strictly in order; the run stops at the first terminal failure."),
			mcp.WithString("steps_yaml", mcp.Description("The macro steps as a YAML list"), mcp.Required()),
		),
		s.handleRunSteps,
	)

	// run_macro
	s.mcp.AddTool(
		mcp.NewTool("run_macro",
			mcp.WithDescription("Replay a macro file from disk"),
			mcp.WithString("path", mcp.Description("Path to the macro YAML file"), mcp.Required()),
		),
		s.handleRunMacro,
	)
}
