package recorder

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lijinlar/handsfree-windows/internal/macro"
	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/selector"
)

// Interactive is the prompt-driven recorder: the operator hovers a control,
// names the action, and the element under the cursor is captured with its
// selector candidates. No system-wide hooks are involved.
type Interactive struct {
	auto platform.Automation
	in   *bufio.Reader
	out  io.Writer

	// ForceTitleRegex, when set, rewrites every captured selector's window
	// descriptor to a regex match, so the recorded macro survives title
	// suffix churn (unsaved-changes markers, document names).
	ForceTitleRegex string
}

// NewInteractive wires an interactive recorder over stdio-like streams.
func NewInteractive(auto platform.Automation, in io.Reader, out io.Writer) *Interactive {
	return &Interactive{auto: auto, in: bufio.NewReader(in), out: out}
}

// Run prompts until the operator quits, returning the recorded steps.
func (it *Interactive) Run() ([]macro.Step, error) {
	var steps []macro.Step

	fmt.Fprintln(it.out, "Recording. For each step: hover a UI element, then choose an action. Enter 'q' to finish.")

	for {
		action, err := it.prompt("Action [click/type/sleep/q]: ")
		if err != nil {
			return steps, err
		}
		action = strings.ToLower(action)

		switch action {
		case "q", "quit", "exit":
			return steps, nil

		case "sleep":
			raw, err := it.prompt("Seconds: ")
			if err != nil {
				return steps, err
			}
			secs, convErr := strconv.ParseFloat(raw, 64)
			if convErr != nil || raw == "" {
				secs = 1
			}
			steps = append(steps, macro.Step{
				Action: macro.ActionSleep,
				Args:   map[string]interface{}{"seconds": secs},
			})

		case "click", "type":
			step, err := it.captureStep(action)
			if err != nil {
				fmt.Fprintf(it.out, "Capture failed: %v\n", err)
				continue
			}
			steps = append(steps, step)

		default:
			fmt.Fprintln(it.out, "Unknown action. Use click/type/sleep/q.")
		}
	}
}

func (it *Interactive) captureStep(action string) (macro.Step, error) {
	x, y, err := it.auto.CursorPos()
	if err != nil {
		return macro.Step{}, fmt.Errorf("cursor position: %w", err)
	}
	el, err := it.auto.ElementFromPoint(x, y)
	if err != nil {
		return macro.Step{}, fmt.Errorf("element at (%d,%d): %w", x, y, err)
	}
	sel, err := selector.BuildForElement(it.auto, el)
	if err != nil {
		return macro.Step{}, err
	}
	if it.ForceTitleRegex != "" {
		sel.Window = selector.WindowDescriptor{TitleRegex: it.ForceTitleRegex}
	}

	args := map[string]interface{}{
		"selector_candidates": []interface{}{sel},
		"timeout":             recordTimeoutSec,
	}

	if action == "type" {
		text, err := it.prompt("Text: ")
		if err != nil {
			return macro.Step{}, err
		}
		enterRaw, err := it.prompt("Press Enter after? [y/N]: ")
		if err != nil {
			return macro.Step{}, err
		}
		enter := strings.ToLower(enterRaw) == "y" || strings.ToLower(enterRaw) == "yes"
		args["text"] = text
		args["enter"] = enter
		fmt.Fprintf(it.out, "Recorded type at cursor (%d,%d)\n", x, y)
		return macro.Step{Action: macro.ActionType, Args: args}, nil
	}

	fmt.Fprintf(it.out, "Recorded click at cursor (%d,%d)\n", x, y)
	return macro.Step{Action: macro.ActionClick, Args: args}, nil
}

func (it *Interactive) prompt(msg string) (string, error) {
	fmt.Fprint(it.out, msg)
	line, err := it.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return "q", nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
