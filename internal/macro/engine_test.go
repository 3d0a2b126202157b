package macro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lijinlar/handsfree-windows/internal/config"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/platform/fake"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// testRig is a replay engine over a one-window fake desktop, with sleeps
// recorded instead of slept.
type testRig struct {
	engine *Engine
	auto   *fake.Automation
	input  *fake.Inputter
	win    *fake.Window
	edit   *fake.Node
	button *fake.Node
	sleeps []time.Duration
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	edit := fake.NewNode(platform.Attributes{
		Name: "Text editor", ControlType: "Edit", AutomationID: "15",
	})
	button := fake.NewNode(platform.Attributes{Name: "Save", ControlType: "Button"})
	root := fake.NewNode(platform.Attributes{ControlType: "Window"}, edit, button)
	win := fake.NewWindow("Untitled - Notepad", 0x2042a, 1234, root)

	rig := &testRig{
		auto:   &fake.Automation{Windows: []*fake.Window{win}},
		input:  &fake.Inputter{},
		win:    win,
		edit:   edit,
		button: button,
	}
	rig.engine = NewEngine(rig.auto, rig.input, nil, config.Default(), nil)
	rig.engine.sleep = func(d time.Duration) { rig.sleeps = append(rig.sleeps, d) }
	return rig
}

func editorSelector() selector.Selector {
	return selector.Selector{
		Window: selector.WindowDescriptor{Title: "Untitled - Notepad"},
		Targets: []selector.TargetCandidate{
			{StableID: "15", ControlType: "Edit"},
			{Name: "Text editor", ControlType: "Edit"},
		},
	}
}

func TestRunFocusThenClick(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionFocus, Args: map[string]interface{}{"title": "Untitled - Notepad"}},
		{Action: ActionClick, Args: map[string]interface{}{"name": "Save", "control_type": "Button", "timeout": 0}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rig.win.FrontCount == 0 {
		t.Errorf("window never brought to front")
	}
	if rig.button.Clicks != 1 {
		t.Errorf("button clicked %d times, want 1", rig.button.Clicks)
	}
}

func TestClickResolvesRecordedSelector(t *testing.T) {
	rig := newTestRig(t)

	// The selector carries its own window descriptor, so no focus step is
	// needed; resolving it focuses the window as a side effect.
	steps := []Step{
		{Action: ActionClick, Args: map[string]interface{}{
			"selector_candidates": []interface{}{editorSelector()},
		}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rig.edit.Clicks != 1 {
		t.Errorf("edit clicked %d times, want 1", rig.edit.Clicks)
	}
	if rig.win.FrontCount != 1 {
		t.Errorf("selector window not focused")
	}
}

func TestClassicStepWithoutFocusFails(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionClick, Args: map[string]interface{}{"name": "Save"}},
	}
	err := rig.engine.Run(context.Background(), steps)
	if !errors.Is(err, ErrNoActiveWindow) {
		t.Errorf("err = %v, want ErrNoActiveWindow", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Index != 0 {
		t.Errorf("err = %v, want StepError at index 0", err)
	}
}

func TestClickCoordinateFallback(t *testing.T) {
	rig := newTestRig(t)

	// The recorded selector no longer resolves (control is gone), but the
	// step carries raw coordinates: replay degrades to a positional click.
	stale := selector.Selector{
		Window:  selector.WindowDescriptor{Title: "Untitled - Notepad"},
		Targets: []selector.TargetCandidate{{StableID: "gone", ControlType: "Button"}},
	}
	steps := []Step{
		{Action: ActionClick, Args: map[string]interface{}{
			"x": 640, "y": 480,
			"selector_candidates": []interface{}{stale},
		}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rig.input.Clicks) != 1 {
		t.Fatalf("got %d injected clicks, want 1", len(rig.input.Clicks))
	}
	click := rig.input.Clicks[0]
	if click.X != 640 || click.Y != 480 || click.Button != platform.ButtonLeft {
		t.Errorf("injected click = %+v", click)
	}
}

func TestClickWithoutCoordinatesPropagatesResolveError(t *testing.T) {
	rig := newTestRig(t)

	stale := selector.Selector{
		Window:  selector.WindowDescriptor{Title: "Untitled - Notepad"},
		Targets: []selector.TargetCandidate{{StableID: "gone", ControlType: "Button"}},
	}
	steps := []Step{
		{Action: ActionClick, Args: map[string]interface{}{
			"selector_candidates": []interface{}{stale},
		}},
	}
	err := rig.engine.Run(context.Background(), steps)
	var unresolvable *selector.UnresolvableError
	if !errors.As(err, &unresolvable) {
		t.Errorf("err = %v, want UnresolvableError", err)
	}
	if len(rig.input.Clicks) != 0 {
		t.Errorf("coordinate fallback fired without recorded coordinates")
	}
}

func TestTypeStep(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionType, Args: map[string]interface{}{
			"text": "hello", "enter": true,
			"selector_candidates": []interface{}{editorSelector()},
		}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rig.edit.Text != "hello" {
		t.Errorf("edit text = %q, want %q", rig.edit.Text, "hello")
	}
	if rig.input.Enters != 1 {
		t.Errorf("enter pressed %d times, want 1", rig.input.Enters)
	}
}

func TestTypeFallsBackToKeystrokes(t *testing.T) {
	rig := newTestRig(t)
	rig.edit.SetTextErr = errors.New("value pattern not supported")

	steps := []Step{
		{Action: ActionType, Args: map[string]interface{}{
			"text": "hello",
			"selector_candidates": []interface{}{editorSelector()},
		}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rig.input.Typed) != 1 || rig.input.Typed[0] != "hello" {
		t.Errorf("typed = %v, want [hello]", rig.input.Typed)
	}
}

func TestTypeHasNoCoordinateFallback(t *testing.T) {
	rig := newTestRig(t)

	stale := selector.Selector{
		Window:  selector.WindowDescriptor{Title: "Untitled - Notepad"},
		Targets: []selector.TargetCandidate{{StableID: "gone", ControlType: "Edit"}},
	}
	steps := []Step{
		{Action: ActionType, Args: map[string]interface{}{
			"text": "hello", "x": 10, "y": 10,
			"selector_candidates": []interface{}{stale},
		}},
	}
	if err := rig.engine.Run(context.Background(), steps); err == nil {
		t.Errorf("type step succeeded without a resolvable target")
	}
	if len(rig.input.Typed) != 0 {
		t.Errorf("text injected into an unknown target")
	}
}

func TestDelayBeforeClamped(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionFocus, Args: map[string]interface{}{
			"title": "Untitled - Notepad", "delay_before": 20000,
		}},
		{Action: ActionFocus, Args: map[string]interface{}{
			"title": "Untitled - Notepad", "delay_before": 300,
		}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []time.Duration{5 * time.Second, 300 * time.Millisecond}
	if len(rig.sleeps) != len(want) {
		t.Fatalf("got %d sleeps, want %d", len(rig.sleeps), len(want))
	}
	for i := range want {
		if rig.sleeps[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, rig.sleeps[i], want[i])
		}
	}
}

func TestExplicitSleepIsNotCapped(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionSleep, Args: map[string]interface{}{"seconds": 30}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rig.sleeps) != 1 || rig.sleeps[0] != 30*time.Second {
		t.Errorf("sleeps = %v, want [30s]", rig.sleeps)
	}
}

func TestStartAppStep(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionStartApp, Args: map[string]interface{}{"app": "notepad"}},
	}
	if err := rig.engine.Run(context.Background(), steps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rig.input.Launched) != 1 || rig.input.Launched[0] != "notepad" {
		t.Errorf("launched = %v", rig.input.Launched)
	}
}

func TestUnknownActionIsFatal(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionFocus, Args: map[string]interface{}{"title": "Untitled - Notepad"}},
		{Action: "zoom", Args: map[string]interface{}{}},
		{Action: ActionClick, Args: map[string]interface{}{"name": "Save", "timeout": 0}},
	}
	err := rig.engine.Run(context.Background(), steps)

	var unknown *UnknownActionError
	if !errors.As(err, &unknown) || unknown.Action != "zoom" {
		t.Fatalf("err = %v, want UnknownActionError(zoom)", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Index != 1 {
		t.Errorf("err = %v, want StepError at index 1", err)
	}
	// Fail-fast: the step after the unknown action never ran.
	if rig.button.Clicks != 0 {
		t.Errorf("steps executed past a fatal error")
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps := []Step{
		{Action: ActionFocus, Args: map[string]interface{}{"title": "Untitled - Notepad"}},
	}
	if err := rig.engine.Run(ctx, steps); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if rig.win.FrontCount != 0 {
		t.Errorf("step ran under a cancelled context")
	}
}

func TestBrowserStepWithoutBackend(t *testing.T) {
	rig := newTestRig(t)

	steps := []Step{
		{Action: ActionBrowserOpen, Args: map[string]interface{}{"url": "https://example.com"}},
	}
	if err := rig.engine.Run(context.Background(), steps); err == nil {
		t.Errorf("browser step succeeded with no browser backend")
	}
}
