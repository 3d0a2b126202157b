package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/selector"
	"github.com/lijinlar/handsfree-windows/internal/tree"
)

func stringParam(params map[string]interface{}, key, def string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

// yamlResult serializes v to YAML for an MCP text response.
func yamlResult(v interface{}) (*mcp.CallToolResult, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func windowDescriptorFromParams(params map[string]interface{}) selector.WindowDescriptor {
	return selector.WindowDescriptor{
		Title:      stringParam(params, "window", ""),
		TitleRegex: stringParam(params, "title_regex", ""),
		PID:        intParam(params, "pid", 0),
	}
}

func (s *Server) handleListWindows(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	pid := intParam(params, "pid", 0)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	wins, err := s.provider.Automation.TopWindows()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type entry struct {
		Title  string `yaml:"title"`
		Handle uint64 `yaml:"handle"`
		PID    int    `yaml:"pid"`
	}
	var entries []entry
	for _, w := range wins {
		if pid != 0 && w.PID() != pid {
			continue
		}
		entries = append(entries, entry{Title: w.Title(), Handle: uint64(w.Handle()), PID: w.PID()})
	}
	return yamlResult(entries)
}

func (s *Server) handleTree(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	desc := windowDescriptorFromParams(params)
	if desc.IsZero() {
		return mcp.NewToolResultError("window or title_regex is required"), nil
	}
	depth := intParam(params, "depth", tree.DefaultDepth)
	maxNodes := intParam(params, "max_nodes", tree.DefaultMaxNodes)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	win, err := selector.Locate(s.provider.Automation, desc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := tree.Build(win, depth, maxNodes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(root)
}

func (s *Server) handleFocus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	desc := windowDescriptorFromParams(request.GetArguments())
	if desc.IsZero() {
		return mcp.NewToolResultError("window or title_regex is required"), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	win, err := selector.LocateAndFocus(s.provider.Automation, desc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(map[string]interface{}{
		"ok":     true,
		"title":  win.Title(),
		"handle": uint64(win.Handle()),
		"pid":    win.PID(),
	})
}

func (s *Server) handleInspect(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x := intParam(params, "x", -1)
	y := intParam(params, "y", -1)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	var err error
	if x < 0 || y < 0 {
		x, y, err = s.provider.Automation.CursorPos()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	el, err := s.provider.Automation.ElementFromPoint(x, y)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel, err := selector.BuildForElement(s.provider.Automation, el)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(sel)
}

func (s *Server) handleResolveSelector(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := stringParam(request.GetArguments(), "selector_yaml", "")
	if raw == "" {
		return mcp.NewToolResultError("selector_yaml is required"), nil
	}
	var sel selector.Selector
	if err := yaml.Unmarshal([]byte(raw), &sel); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("parse selector: %v", err)), nil
	}
	if err := sel.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if sel.Window.IsZero() {
		return mcp.NewToolResultError("selector has no window descriptor"), nil
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	win, err := selector.Locate(s.provider.Automation, sel.Window)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	el, trace, err := selector.ResolveTrace(win, sel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	attrs, err := el.Attributes()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(map[string]interface{}{
		"ok":           true,
		"attempts":     trace.Attempts,
		"name":         attrs.Name,
		"control_type": attrs.ControlType,
		"stable_id":    attrs.AutomationID,
	})
}

func (s *Server) handleRunSteps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := stringParam(request.GetArguments(), "steps_yaml", "")
	if raw == "" {
		return mcp.NewToolResultError("steps_yaml is required"), nil
	}
	steps, err := macro.Parse([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.runSteps(ctx, steps)
}

func (s *Server) handleRunMacro(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := stringParam(request.GetArguments(), "path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	steps, err := macro.Load(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.runSteps(ctx, steps)
}

func (s *Server) runSteps(ctx context.Context, steps []macro.Step) (*mcp.CallToolResult, error) {
	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if err := s.engine.Run(ctx, steps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return yamlResult(map[string]interface{}{"ok": true, "steps": len(steps)})
}
