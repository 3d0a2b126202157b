package selector

import (
	"errors"
	"testing"

	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/platform/fake"
)

// notepadWindow builds a small realistic window tree and returns the window
// plus the edit control nested two levels deep.
func notepadWindow() (*fake.Window, *fake.Node) {
	edit := fake.NewNode(platform.Attributes{
		Name: "Text editor", ControlType: "Edit", AutomationID: "15", ClassName: "RichEditD2DPT",
	})
	pane := fake.NewNode(platform.Attributes{ControlType: "Pane", ClassName: "NotepadTextBox"}, edit)
	toolbar := fake.NewNode(platform.Attributes{ControlType: "ToolBar", Name: "Toolbar"})
	root := fake.NewNode(platform.Attributes{ControlType: "Window", Name: "Untitled - Notepad"}, toolbar, pane)
	win := fake.NewWindow("Untitled - Notepad", 0x2042a, 1234, root)
	return win, edit
}

func TestBuildCandidateOrder(t *testing.T) {
	win, edit := notepadWindow()

	sel, err := Build(edit, win)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := len(sel.Targets); got != 3 {
		t.Fatalf("got %d candidates, want 3", got)
	}
	wantKinds := []CandidateKind{KindStableID, KindName, KindPath}
	for i, want := range wantKinds {
		if got := sel.Targets[i].Kind(); got != want {
			t.Errorf("candidate %d kind = %v, want %v", i, got, want)
		}
	}

	if sel.Targets[0].StableID != "15" || sel.Targets[0].ControlType != "Edit" {
		t.Errorf("stable-id candidate = %+v", sel.Targets[0])
	}
	if sel.Targets[1].Name != "Text editor" || sel.Targets[1].ControlType != "Edit" {
		t.Errorf("name candidate = %+v", sel.Targets[1])
	}

	// The path excludes the window root: pane hop, then edit hop.
	path := sel.Targets[2].Path
	if len(path) != 2 {
		t.Fatalf("path has %d hops, want 2", len(path))
	}
	if path[0].ControlType != "Pane" || path[1].ControlType != "Edit" {
		t.Errorf("path hops = %v", path)
	}

	if sel.Window.Title != "Untitled - Notepad" || sel.Window.Handle != 0x2042a || sel.Window.PID != 1234 {
		t.Errorf("window descriptor = %+v", sel.Window)
	}
}

func TestBuildSkipsCandidatesWithoutAttributes(t *testing.T) {
	// Anonymous control: no stable id, no name. Only the path candidate
	// can describe it, and Build must still return a valid selector.
	anon := fake.NewNode(platform.Attributes{ControlType: "Custom"})
	root := fake.NewNode(platform.Attributes{ControlType: "Window"}, anon)
	win := fake.NewWindow("App", 1, 1, root)

	sel, err := Build(anon, win)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(sel.Targets) != 1 {
		t.Fatalf("got %d candidates, want only the path candidate", len(sel.Targets))
	}
	if sel.Targets[0].Kind() != KindPath {
		t.Errorf("candidate kind = %v, want KindPath", sel.Targets[0].Kind())
	}
	if err := sel.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildSiblingIndex(t *testing.T) {
	// Two identical buttons; the selector for the second must carry
	// sibling index 1 on its path hop.
	first := fake.NewNode(platform.Attributes{Name: "OK", ControlType: "Button"})
	second := fake.NewNode(platform.Attributes{Name: "OK", ControlType: "Button"})
	root := fake.NewNode(platform.Attributes{ControlType: "Window"}, first, second)
	win := fake.NewWindow("Dialog", 1, 1, root)

	sel, err := Build(second, win)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	path := sel.Targets[len(sel.Targets)-1].Path
	if len(path) != 1 {
		t.Fatalf("path has %d hops, want 1", len(path))
	}
	if path[0].SiblingIndex == nil || *path[0].SiblingIndex != 1 {
		t.Errorf("sibling index = %v, want 1", path[0].SiblingIndex)
	}
}

func TestBuildDetachedElement(t *testing.T) {
	// A control outside the window subtree never reaches the root.
	win, _ := notepadWindow()
	orphan := fake.NewNode(platform.Attributes{Name: "Ghost", ControlType: "Button"})

	_, err := Build(orphan, win)
	if !errors.Is(err, ErrDetachedElement) {
		t.Errorf("err = %v, want ErrDetachedElement", err)
	}
}

func TestBuildForElement(t *testing.T) {
	win, edit := notepadWindow()
	auto := &fake.Automation{Windows: []*fake.Window{win}}

	sel, err := BuildForElement(auto, edit)
	if err != nil {
		t.Fatalf("BuildForElement: %v", err)
	}
	if sel.Window.Title != "Untitled - Notepad" {
		t.Errorf("window title = %q", sel.Window.Title)
	}
}
