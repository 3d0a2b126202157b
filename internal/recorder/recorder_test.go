package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lijinlar/handsfree-windows/internal/config"
	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/platform/fake"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// desktopWithButton builds a one-window desktop where screen point (50, 60)
// resolves to a Save button, so clicks there record a selector.
func desktopWithButton() *fake.Automation {
	save := fake.NewNode(platform.Attributes{Name: "Save", ControlType: "Button", AutomationID: "btnSave"})
	root := fake.NewNode(platform.Attributes{ControlType: "Window"}, save)
	win := fake.NewWindow("Untitled - Notepad", 0x2042a, 1234, root)
	return &fake.Automation{
		Windows:  []*fake.Window{win},
		PointMap: map[[2]int]platform.Element{{50, 60}: save},
	}
}

func newTestRecorder(auto *fake.Automation) *Recorder {
	return New(auto, fake.NewEventSource(), config.Default().Recorder, nil)
}

func press(x, y int) platform.PointerEvent {
	return platform.PointerEvent{X: x, Y: y, Button: platform.ButtonLeft, Pressed: true}
}

func printable(r rune) platform.KeyEvent {
	return platform.KeyEvent{Kind: platform.KeyPrintable, Rune: r}
}

func stepSelectors(t *testing.T, step macro.Step) []selector.Selector {
	t.Helper()
	raw, ok := step.Args["selector_candidates"].([]interface{})
	if !ok {
		t.Fatalf("step has no selector candidates: %+v", step.Args)
	}
	out := make([]selector.Selector, 0, len(raw))
	for _, item := range raw {
		sel, ok := item.(selector.Selector)
		if !ok {
			t.Fatalf("candidate has type %T", item)
		}
		out = append(out, sel)
	}
	return out
}

// Typing followed by Enter followed by a click must come out as exactly two
// steps in event order: one type step carrying the whole run, then the click.
func TestTypingRunThenClick(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	r.onKey(printable('h'))
	r.onKey(printable('i'))
	r.onKey(platform.KeyEvent{Kind: platform.KeyEnter})
	r.onPointer(press(50, 60))

	if len(r.steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(r.steps))
	}

	typeStep := r.steps[0]
	if typeStep.Action != macro.ActionType {
		t.Fatalf("first step action = %s, want type", typeStep.Action)
	}
	if got := typeStep.Args["text"]; got != "hi" {
		t.Errorf("text = %v, want hi", got)
	}
	if got := typeStep.Args["enter"]; got != true {
		t.Errorf("enter = %v, want true", got)
	}

	clickStep := r.steps[1]
	if clickStep.Action != macro.ActionClick {
		t.Fatalf("second step action = %s, want click", clickStep.Action)
	}
	if clickStep.Args["x"] != 50 || clickStep.Args["y"] != 60 {
		t.Errorf("click coordinates = %v,%v", clickStep.Args["x"], clickStep.Args["y"])
	}
	sels := stepSelectors(t, clickStep)
	if len(sels) != 1 {
		t.Fatalf("got %d selectors, want 1", len(sels))
	}
	if sels[0].Window.Title != "Untitled - Notepad" {
		t.Errorf("selector window = %q", sels[0].Window.Title)
	}
	if sels[0].Targets[0].StableID != "btnSave" {
		t.Errorf("selector first candidate = %+v", sels[0].Targets[0])
	}
}

// A click after typing flushes the pending run before the click step, so the
// ordering of the recording matches the ordering of the session.
func TestClickFlushesPendingTypingRun(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	r.onKey(printable('a'))
	r.onPointer(press(50, 60))

	if len(r.steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(r.steps))
	}
	if r.steps[0].Action != macro.ActionType || r.steps[1].Action != macro.ActionClick {
		t.Errorf("order = %s, %s; want type, click", r.steps[0].Action, r.steps[1].Action)
	}
	if got := r.steps[0].Args["enter"]; got != false {
		t.Errorf("flushed run has enter = %v, want false", got)
	}
}

// When the clicked point resolves to nothing, the click records with raw
// coordinates only and the session keeps going.
func TestClickDegradesToCoordinates(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	r.onPointer(press(999, 999))

	if len(r.steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(r.steps))
	}
	step := r.steps[0]
	if step.Args["x"] != 999 || step.Args["y"] != 999 {
		t.Errorf("coordinates = %v,%v", step.Args["x"], step.Args["y"])
	}
	if _, has := step.Args["selector_candidates"]; has {
		t.Errorf("degraded click must not carry selector candidates")
	}
}

func TestIgnoredPointerEvents(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	// Releases and non-left buttons record nothing.
	r.onPointer(platform.PointerEvent{X: 50, Y: 60, Button: platform.ButtonLeft, Pressed: false})
	r.onPointer(platform.PointerEvent{X: 50, Y: 60, Button: platform.ButtonRight, Pressed: true})

	if len(r.steps) != 0 {
		t.Errorf("got %d steps, want 0", len(r.steps))
	}
}

// Navigation keys flush the pending run without recording themselves.
func TestNonPrintableKeyFlushes(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	r.onKey(printable('a'))
	r.onKey(printable('b'))
	r.onKey(platform.KeyEvent{Kind: platform.KeyOther})

	if len(r.steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(r.steps))
	}
	if got := r.steps[0].Args["text"]; got != "ab" {
		t.Errorf("text = %v, want ab", got)
	}
	if got := r.steps[0].Args["enter"]; got != false {
		t.Errorf("enter = %v, want false", got)
	}
}

// An idle typing run is committed once the idle interval passes, and never
// committed twice.
func TestIdleFlush(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	current := base
	r.now = func() time.Time { return current }

	r.onKey(printable('o'))
	r.onKey(printable('k'))

	// Not idle yet.
	current = base.Add(500 * time.Millisecond)
	r.idleFlush()
	if len(r.steps) != 0 {
		t.Fatalf("run flushed before the idle interval elapsed")
	}

	// Past the interval: one flush, enter=false.
	current = base.Add(3 * time.Second)
	r.idleFlush()
	if len(r.steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(r.steps))
	}
	if got := r.steps[0].Args["text"]; got != "ok" {
		t.Errorf("text = %v, want ok", got)
	}
	if got := r.steps[0].Args["enter"]; got != false {
		t.Errorf("enter = %v, want false", got)
	}

	// A later poll with an empty buffer must not re-emit.
	current = base.Add(10 * time.Second)
	r.idleFlush()
	if len(r.steps) != 1 {
		t.Errorf("idle flush duplicated the typing run")
	}
}

// delay_before on each step is the gap since the previous step.
func TestDelayBeforeBetweenSteps(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	current := base
	r.now = func() time.Time { return current }

	r.onPointer(press(50, 60))
	current = base.Add(1200 * time.Millisecond)
	r.onPointer(press(50, 60))

	if len(r.steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(r.steps))
	}
	if got := r.steps[0].Args["delay_before"]; got != 0 {
		t.Errorf("first step delay_before = %v, want 0", got)
	}
	if got := r.steps[1].Args["delay_before"]; got != 1200 {
		t.Errorf("second step delay_before = %v, want 1200", got)
	}
}

// End-to-end through Run: scripted key events, then the stop hotkey. The
// listener goroutines drain, the final flush fires, and Run returns the
// recorded steps.
func TestRunStopsOnHotkey(t *testing.T) {
	auto := desktopWithButton()
	events := fake.NewEventSource()
	r := New(auto, events, config.Default().Recorder, nil)

	events.KeyCh <- printable('g')
	events.KeyCh <- printable('o')
	events.KeyCh <- platform.KeyEvent{Kind: platform.KeyStop}

	steps, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(steps))
	}
	if got := steps[0].Args["text"]; got != "go" {
		t.Errorf("text = %v, want go", got)
	}
	if !events.Closed {
		t.Errorf("event source left open after stop")
	}
}

// Cancelling the context stops the session; steps recorded so far are still
// returned alongside the cancellation error.
func TestRunStopsOnContextCancel(t *testing.T) {
	auto := desktopWithButton()
	events := fake.NewEventSource()
	r := New(auto, events, config.Default().Recorder, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	steps, err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(steps) != 0 {
		t.Errorf("got %d steps, want 0", len(steps))
	}
	if !events.Closed {
		t.Errorf("event source left open after cancellation")
	}
}

// The stop hotkey itself never becomes a step, even mid-typing-run.
func TestStopHotkeyFlushesWithoutRecordingItself(t *testing.T) {
	auto := desktopWithButton()
	r := newTestRecorder(auto)

	r.onKey(printable('x'))
	r.onKey(platform.KeyEvent{Kind: platform.KeyStop})

	if len(r.steps) != 1 {
		t.Fatalf("got %d steps, want 1", len(r.steps))
	}
	if got := r.steps[0].Args["text"]; got != "x" {
		t.Errorf("text = %v, want x", got)
	}
	select {
	case <-r.stop:
	default:
		t.Errorf("stop hotkey did not signal session stop")
	}
}
