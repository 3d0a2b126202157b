// Package macro implements the replayable step list: its persisted YAML
// form, argument decoding, and the replay state machine that executes steps
// against the accessibility and input engines.
package macro

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// Action names form the complete step vocabulary. Anything else is fatal.
const (
	ActionFocus           = "focus"
	ActionClick           = "click"
	ActionType            = "type"
	ActionSleep           = "sleep"
	ActionStartApp        = "start-app"
	ActionBrowserOpen     = "browser-open"
	ActionBrowserNavigate = "browser-navigate"
	ActionBrowserClick    = "browser-click"
	ActionBrowserType     = "browser-type"
	ActionBrowserEval     = "browser-eval"
)

// Step is one replayable action. Args carries either classic find
// parameters (ad hoc name/type/id matching) or recorded selectors, plus
// optional timing and coordinate-fallback fields. Kept as a loose mapping so
// a macro file round-trips load -> run -> save without losing any recorded
// field.
type Step struct {
	Action string                 `yaml:"action" json:"action"`
	Args   map[string]interface{} `yaml:"args,omitempty" json:"args,omitempty"`
}

// Parse decodes a YAML macro document: a list of {action, args} mappings.
// Malformed documents are fatal; a macro with an ill-defined step sequence
// must never be partially executed.
func Parse(data []byte) ([]Step, error) {
	var raw []yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("macro is not a YAML list of steps: %w", err)
	}

	steps := make([]Step, 0, len(raw))
	for i, node := range raw {
		var step Step
		if err := node.Decode(&step); err != nil {
			return nil, fmt.Errorf("invalid step at index %d: expected mapping with 'action': %w", i, err)
		}
		if step.Action == "" {
			return nil, fmt.Errorf("invalid step at index %d: missing 'action'", i)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Load reads and parses a macro file.
func Load(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read macro %s: %w", path, err)
	}
	steps, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse macro %s: %w", path, err)
	}
	return steps, nil
}

// Save writes the step list as YAML, creating parent directories as needed.
func Save(path string, steps []Step) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create macro directory: %w", err)
		}
	}
	data, err := yaml.Marshal(steps)
	if err != nil {
		return fmt.Errorf("encode macro: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write macro %s: %w", path, err)
	}
	return nil
}

// --- args decoding -------------------------------------------------------
//
// YAML decodes step args into map[string]interface{}; these helpers pull
// typed values out without panicking on absent or mistyped fields.

func stringArg(args map[string]interface{}, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func intArg(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		case uint64:
			return int(n)
		}
	}
	return def
}

func floatArg(args map[string]interface{}, key string, def float64) float64 {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return def
}

func boolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func hasArg(args map[string]interface{}, key string) bool {
	_, ok := args[key]
	return ok
}

// decodeSelector converts a nested args value back into a Selector by
// re-encoding through YAML. Step args are loose mappings, so this is the
// lossless way to rehydrate the typed form.
func decodeSelector(v interface{}) (selector.Selector, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return selector.Selector{}, fmt.Errorf("re-encode selector: %w", err)
	}
	var sel selector.Selector
	if err := yaml.Unmarshal(data, &sel); err != nil {
		return selector.Selector{}, fmt.Errorf("decode selector: %w", err)
	}
	if err := sel.Validate(); err != nil {
		return selector.Selector{}, err
	}
	return sel, nil
}

// selectorCandidates extracts the recorded selector list from step args.
// Returns nil when the step carries no selectors.
func selectorCandidates(args map[string]interface{}) ([]selector.Selector, error) {
	if raw, ok := args["selector_candidates"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("selector_candidates must be a list")
		}
		out := make([]selector.Selector, 0, len(list))
		for i, item := range list {
			sel, err := decodeSelector(item)
			if err != nil {
				return nil, fmt.Errorf("selector candidate %d: %w", i, err)
			}
			out = append(out, sel)
		}
		return out, nil
	}
	if raw, ok := args["selector"]; ok {
		sel, err := decodeSelector(raw)
		if err != nil {
			return nil, err
		}
		return []selector.Selector{sel}, nil
	}
	return nil, nil
}

// windowDescriptorFromArgs reads the window-locating fields of a focus step.
func windowDescriptorFromArgs(args map[string]interface{}) selector.WindowDescriptor {
	return selector.WindowDescriptor{
		Title:      stringArg(args, "title", ""),
		TitleRegex: stringArg(args, "title_regex", ""),
		Handle:     uintptr(intArg(args, "handle", 0)),
		PID:        intArg(args, "pid", 0),
	}
}
