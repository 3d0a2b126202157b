package macro

import (
	"errors"
	"fmt"
)

// ErrNoActiveWindow is returned when a classic-mode step runs before any
// window has been focused.
var ErrNoActiveWindow = errors.New("no active window: add a 'focus' step first")

// UnknownActionError aborts the whole run: continuing past a step the engine
// does not understand would execute an ill-defined sequence.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action: %q", e.Action)
}

// InjectionError wraps an OS refusal to inject input.
type InjectionError struct {
	Op  string
	Err error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("input injection failed (%s): %v", e.Op, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }

// StepError locates a failure within the run. Replay is fail-fast: the
// first step error terminates the run.
type StepError struct {
	Index  int // zero-based position in the step list
	Action string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Action, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
