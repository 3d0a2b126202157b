package selector

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a window descriptor matches no live window.
var ErrNotFound = errors.New("window not found")

// ErrDetachedElement is returned when the ancestor walk from a control does
// not reach the claimed window root within the hop bound. It indicates a
// broken or reparented tree, never an infinite structure.
var ErrDetachedElement = errors.New("element is not attached to the given window root")

// UnresolvableError is returned when every target candidate of a selector
// failed to resolve. It carries the last underlying error.
type UnresolvableError struct {
	Attempts int
	Last     error
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("selector unresolvable: all %d candidate(s) failed, last: %v", e.Attempts, e.Last)
}

func (e *UnresolvableError) Unwrap() error { return e.Last }
