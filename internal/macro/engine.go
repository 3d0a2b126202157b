package macro

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lijinlar/handsfree-windows/internal/config"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// BrowserDriver is the subset of browser automation the engine needs for
// browser-* steps. Implemented by internal/browser; nil when the binary runs
// without a browser backend.
type BrowserDriver interface {
	Open(ctx context.Context, url string) error
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, cssSelector, text string, exact bool) error
	Type(ctx context.Context, cssSelector, text string, clear bool) error
	Evaluate(ctx context.Context, js string) (string, error)
}

// Engine replays a step list. Replay is single-threaded and strictly
// sequential: one step completes (success, degraded success, or terminal
// failure) before the next begins, because UI state after a step is a
// precondition for the next.
type Engine struct {
	auto    platform.Automation
	input   platform.Inputter
	browser BrowserDriver
	cfg     *config.Config
	log     *zap.Logger

	// sleep is injectable so tests replay without wall-clock delays.
	sleep func(time.Duration)

	// currentWindow is the replay cursor. It advances on focus steps and
	// whenever a step resolves a window while resolving its target. Live
	// handles are never cached across steps beyond this cursor.
	currentWindow platform.Window
}

// NewEngine wires a replay engine. browser may be nil; browser-* steps then
// fail with a descriptive error.
func NewEngine(auto platform.Automation, input platform.Inputter, browser BrowserDriver, cfg *config.Config, log *zap.Logger) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		auto:    auto,
		input:   input,
		browser: browser,
		cfg:     cfg,
		log:     log,
		sleep:   time.Sleep,
	}
}

// Run executes steps strictly in order, failing fast on the first terminal
// step error. There is no branching or looping in the step language.
func (e *Engine) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.delayBefore(step)
		if err := e.runStep(ctx, i, step); err != nil {
			return &StepError{Index: i, Action: step.Action, Err: err}
		}
	}
	return nil
}

// delayBefore honors the recorded pause preceding a step, clamped so macros
// recorded with long human pauses cannot stall replay indefinitely.
func (e *Engine) delayBefore(step Step) {
	delayMs := intArg(step.Args, "delay_before", 0)
	if delayMs <= 0 {
		return
	}
	if cap := e.cfg.Replay.DelayCapMs; delayMs > cap {
		delayMs = cap
	}
	e.sleep(time.Duration(delayMs) * time.Millisecond)
}

func (e *Engine) runStep(ctx context.Context, index int, step Step) error {
	log := e.log.With(zap.Int("step", index+1), zap.String("action", step.Action))

	switch step.Action {
	case ActionFocus:
		return e.runFocus(step, log)
	case ActionClick:
		return e.runClick(step, log)
	case ActionType:
		return e.runType(step, log)
	case ActionSleep:
		// Explicit sleeps are operator intent; never capped.
		secs := floatArg(step.Args, "seconds", 1)
		e.sleep(time.Duration(secs * float64(time.Second)))
		return nil
	case ActionStartApp:
		app := stringArg(step.Args, "app", stringArg(step.Args, "name", ""))
		if app == "" {
			return fmt.Errorf("start-app requires an 'app' argument")
		}
		delayMs := intArg(step.Args, "delay_ms", 250)
		if err := e.input.StartMenuLaunch(app, delayMs); err != nil {
			return &InjectionError{Op: "start-app", Err: err}
		}
		return nil
	case ActionBrowserOpen, ActionBrowserNavigate, ActionBrowserClick, ActionBrowserType, ActionBrowserEval:
		return e.runBrowser(ctx, step, log)
	default:
		return &UnknownActionError{Action: step.Action}
	}
}

func (e *Engine) runFocus(step Step, log *zap.Logger) error {
	desc := windowDescriptorFromArgs(step.Args)
	win, err := selector.LocateAndFocus(e.auto, desc)
	if err != nil {
		return err
	}
	e.currentWindow = win
	log.Debug("focused window", zap.String("title", win.Title()))
	return nil
}

func (e *Engine) runClick(step Step, log *zap.Logger) error {
	ctrl, resolveErr := e.resolveTarget(step.Args, log)
	if resolveErr == nil {
		if err := ctrl.Click(); err != nil {
			return &InjectionError{Op: "click", Err: err}
		}
		return nil
	}

	// Coordinate-only fallback: some UI surfaces (embedded web-rendered
	// controls) are invisible to the accessibility tree. A recorded click
	// still lands at its raw screen position. Degraded-mode success.
	if hasArg(step.Args, "x") && hasArg(step.Args, "y") {
		x := intArg(step.Args, "x", 0)
		y := intArg(step.Args, "y", 0)
		log.Warn("selector resolution failed; clicking at recorded coordinates",
			zap.Int("x", x), zap.Int("y", y), zap.Error(resolveErr))
		if err := e.input.ClickAt(x, y, platform.ButtonLeft); err != nil {
			return &InjectionError{Op: "click-at", Err: err}
		}
		return nil
	}
	return resolveErr
}

func (e *Engine) runType(step Step, log *zap.Logger) error {
	// Text injection requires a focused editable target, so type steps
	// always resolve a control; there is no coordinate fallback.
	ctrl, err := e.resolveTarget(step.Args, log)
	if err != nil {
		return err
	}

	text := stringArg(step.Args, "text", "")
	if focusErr := ctrl.Focus(); focusErr != nil {
		log.Debug("control focus failed before typing", zap.Error(focusErr))
	}
	if err := ctrl.SetText(text); err != nil {
		// Some controls reject programmatic value setting; fall back to
		// keystroke injection into the focused control.
		log.Debug("setText failed, typing keystrokes instead", zap.Error(err))
		if typeErr := e.input.TypeText(text); typeErr != nil {
			return &InjectionError{Op: "type", Err: typeErr}
		}
	}
	if boolArg(step.Args, "enter", false) {
		if err := e.input.PressEnter(); err != nil {
			return &InjectionError{Op: "enter", Err: err}
		}
	}
	return nil
}

// runBrowser dispatches the browser-* actions to the page driver.
func (e *Engine) runBrowser(ctx context.Context, step Step, log *zap.Logger) error {
	if e.browser == nil {
		return fmt.Errorf("%s: no browser backend configured", step.Action)
	}

	switch step.Action {
	case ActionBrowserOpen, ActionBrowserNavigate:
		url := stringArg(step.Args, "url", "")
		if url == "" {
			return fmt.Errorf("%s requires a 'url' argument", step.Action)
		}
		if step.Action == ActionBrowserOpen {
			return e.browser.Open(ctx, url)
		}
		return e.browser.Navigate(ctx, url)
	case ActionBrowserClick:
		css := stringArg(step.Args, "selector", "")
		text := stringArg(step.Args, "text", "")
		if css == "" && text == "" {
			return fmt.Errorf("browser-click requires 'selector' or 'text'")
		}
		return e.browser.Click(ctx, css, text, boolArg(step.Args, "exact", false))
	case ActionBrowserType:
		css := stringArg(step.Args, "selector", "")
		if css == "" {
			return fmt.Errorf("browser-type requires a 'selector' argument")
		}
		return e.browser.Type(ctx, css, stringArg(step.Args, "text", ""), boolArg(step.Args, "clear", true))
	case ActionBrowserEval:
		js := stringArg(step.Args, "js", "")
		if js == "" {
			return fmt.Errorf("browser-eval requires a 'js' argument")
		}
		result, err := e.browser.Evaluate(ctx, js)
		if err != nil {
			return err
		}
		log.Info("browser-eval result", zap.String("result", result))
		return nil
	default:
		return &UnknownActionError{Action: step.Action}
	}
}

// resolveTarget finds the control a click/type step acts on. Precedence,
// each a fallback for the previous:
//  1. recorded selector candidates (first that resolves wins)
//  2. a single recorded selector
//  3. classic ad hoc matching against the current window
func (e *Engine) resolveTarget(args map[string]interface{}, log *zap.Logger) (platform.Element, error) {
	candidates, err := selectorCandidates(args)
	if err != nil {
		return nil, err
	}

	if len(candidates) > 0 {
		var last error
		for i, sel := range candidates {
			ctrl, err := e.resolveSelector(sel)
			if err == nil {
				if i > 0 {
					log.Debug("selector candidate resolved after fallback", zap.Int("candidate", i+1))
				}
				return ctrl, nil
			}
			last = err
		}
		return nil, last
	}

	return e.classicFind(args)
}

// resolveSelector resolves one recorded selector: locate (and focus) its
// window, then resolve its target candidates. A selector without a window
// descriptor resolves against the current window cursor.
func (e *Engine) resolveSelector(sel selector.Selector) (platform.Element, error) {
	var root platform.Element
	if sel.Window.IsZero() {
		if e.currentWindow == nil {
			return nil, ErrNoActiveWindow
		}
		root = e.currentWindow
	} else {
		win, err := selector.LocateAndFocus(e.auto, sel.Window)
		if err != nil {
			return nil, err
		}
		// Resolving a window is a side effect that advances the cursor.
		e.currentWindow = win
		root = win
	}
	return selector.Resolve(root, sel)
}
