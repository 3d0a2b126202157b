package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// Attributes are the identifying properties of an accessibility element.
// Empty fields mean the property is not exposed by the element.
type Attributes struct {
	Name         string // Visible label / title
	ControlType  string // e.g. "Button", "Edit", "Pane"
	AutomationID string // Engine-assigned stable identifier
	ClassName    string // Native window class
}

// Bounds is a screen rectangle in absolute pixel coordinates.
type Bounds struct {
	X, Y, Width, Height int
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (x, y int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Area returns the rectangle area, clamped at zero.
func (b Bounds) Area() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// ParseBounds parses a "x,y,w,h" string into a Bounds.
func ParseBounds(s string) (*Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bounds %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		vals[i] = v
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// PointerButton identifies a pointer device button.
type PointerButton int

const (
	ButtonLeft PointerButton = iota
	ButtonRight
	ButtonMiddle
)

// ParsePointerButton converts a string flag value to a PointerButton.
func ParsePointerButton(s string) (PointerButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle":
		return ButtonMiddle, nil
	default:
		return ButtonLeft, fmt.Errorf("unknown pointer button: %q (expected left, right, or middle)", s)
	}
}

// PointerEvent is a raw system-wide pointer button event.
type PointerEvent struct {
	X, Y    int
	Button  PointerButton
	Pressed bool // true on press, false on release
}

// KeyKind classifies a raw keyboard event for the recorder.
type KeyKind int

const (
	// KeyPrintable carries a character in KeyEvent.Rune.
	KeyPrintable KeyKind = iota
	// KeyEnter is the Return/Enter key.
	KeyEnter
	// KeyStop is the designated stop-recording hotkey.
	KeyStop
	// KeyOther is any other non-printable key (arrows, backspace, modifiers).
	KeyOther
)

// KeyEvent is a raw system-wide key press event.
type KeyEvent struct {
	Kind KeyKind
	Rune rune // valid only when Kind == KeyPrintable
}
