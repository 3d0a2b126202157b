package macro

import (
	"path/filepath"
	"testing"

	"github.com/lijinlar/handsfree-windows/internal/selector"
)

func TestParse(t *testing.T) {
	doc := `
- action: focus
  args:
    title: Untitled - Notepad
- action: type
  args:
    text: hello
    enter: true
- action: sleep
  args:
    seconds: 0.5
`
	steps, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(steps))
	}
	if steps[0].Action != ActionFocus || steps[1].Action != ActionType || steps[2].Action != ActionSleep {
		t.Errorf("actions = %s, %s, %s", steps[0].Action, steps[1].Action, steps[2].Action)
	}
	if got := stringArg(steps[1].Args, "text", ""); got != "hello" {
		t.Errorf("text arg = %q", got)
	}
	if !boolArg(steps[1].Args, "enter", false) {
		t.Errorf("enter arg not decoded")
	}
	if got := floatArg(steps[2].Args, "seconds", 0); got != 0.5 {
		t.Errorf("seconds arg = %v", got)
	}
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not a list", `action: click`},
		{"missing action", "- args:\n    x: 1"},
		{"scalar step", `- just-a-string: {}: {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Errorf("Parse accepted malformed document")
			}
		})
	}
}

// A recorded macro must survive save -> load with its nested selectors
// intact and decodable.
func TestSaveLoadRoundTrip(t *testing.T) {
	sel := selector.Selector{
		Window: selector.WindowDescriptor{Title: "Untitled - Notepad", Handle: 0x2042a},
		Targets: []selector.TargetCandidate{
			{StableID: "15", ControlType: "Edit"},
			{Name: "Text editor", ControlType: "Edit"},
		},
	}
	steps := []Step{
		{Action: ActionClick, Args: map[string]interface{}{
			"x": 100, "y": 200, "timeout": 20, "delay_before": 0,
			"selector_candidates": []interface{}{sel},
		}},
		{Action: ActionType, Args: map[string]interface{}{
			"text": "hi", "enter": true,
			"selector_candidates": []interface{}{sel},
		}},
	}

	path := filepath.Join(t.TempDir(), "macros", "demo.yaml")
	if err := Save(path, steps); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d steps, want 2", len(loaded))
	}

	candidates, err := selectorCandidates(loaded[0].Args)
	if err != nil {
		t.Fatalf("selectorCandidates: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	got := candidates[0]
	if got.Window.Title != sel.Window.Title || got.Window.Handle != sel.Window.Handle {
		t.Errorf("window descriptor = %+v, want %+v", got.Window, sel.Window)
	}
	if len(got.Targets) != 2 || got.Targets[0].StableID != "15" || got.Targets[1].Name != "Text editor" {
		t.Errorf("targets = %+v", got.Targets)
	}
}

func TestSelectorCandidates(t *testing.T) {
	sel := selector.Selector{Targets: []selector.TargetCandidate{{Name: "OK", ControlType: "Button"}}}

	t.Run("no selectors", func(t *testing.T) {
		got, err := selectorCandidates(map[string]interface{}{"x": 1})
		if err != nil || got != nil {
			t.Errorf("got %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("single selector key", func(t *testing.T) {
		got, err := selectorCandidates(map[string]interface{}{"selector": sel})
		if err != nil {
			t.Fatalf("selectorCandidates: %v", err)
		}
		if len(got) != 1 || got[0].Targets[0].Name != "OK" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("candidate list", func(t *testing.T) {
		got, err := selectorCandidates(map[string]interface{}{
			"selector_candidates": []interface{}{sel, sel},
		})
		if err != nil {
			t.Fatalf("selectorCandidates: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d candidates, want 2", len(got))
		}
	})

	t.Run("non-list candidates", func(t *testing.T) {
		if _, err := selectorCandidates(map[string]interface{}{"selector_candidates": "nope"}); err == nil {
			t.Errorf("accepted non-list selector_candidates")
		}
	})

	t.Run("invalid selector rejected", func(t *testing.T) {
		if _, err := selectorCandidates(map[string]interface{}{
			"selector": selector.Selector{},
		}); err == nil {
			t.Errorf("accepted selector with no targets")
		}
	})
}

func TestWindowDescriptorFromArgs(t *testing.T) {
	desc := windowDescriptorFromArgs(map[string]interface{}{
		"title": "Calculator", "pid": 42, "handle": 0x300,
	})
	if desc.Title != "Calculator" || desc.PID != 42 || desc.Handle != 0x300 {
		t.Errorf("desc = %+v", desc)
	}
}
