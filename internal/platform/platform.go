package platform

// Element is a live handle to one node in the OS accessibility tree.
//
// Handles are only valid for the lifetime of the control they point at; the
// engine may reissue them at any time, so callers must not cache an Element
// across macro steps. Every query returns an explicit error so call sites
// decide what is recoverable.
type Element interface {
	// Attributes reads the element's identifying properties.
	Attributes() (Attributes, error)

	// Children enumerates the element's direct children in tree order.
	Children() ([]Element, error)

	// Parent returns the element's parent, or nil at the tree root.
	Parent() (Element, error)

	// Rect returns the element's screen rectangle.
	Rect() (Bounds, error)

	// SameAs reports whether the other handle refers to the same live
	// control (runtime identity, not attribute equality).
	SameAs(Element) bool

	// Click performs the element's default click/invoke interaction.
	Click() error

	// SetText replaces the element's text content. Fails on elements
	// that are not editable.
	SetText(text string) error

	// Focus gives the element keyboard focus.
	Focus() error
}

// ChildFinder is an optional fast path for attribute-indexed child lookup.
// Engines that index children by automation id or name (e.g. UIA property
// conditions) implement it; the resolver falls back to Children() otherwise.
type ChildFinder interface {
	// ChildByAttrs returns the first descendant matching the set fields
	// of attrs, or an error when none match.
	ChildByAttrs(attrs Attributes) (Element, error)
}

// Window is a live handle to a top-level window.
type Window interface {
	Element

	// Handle returns the opaque OS window handle. Only valid within the
	// current OS session.
	Handle() uintptr

	// Title returns the current window title.
	Title() string

	// PID returns the owning process id.
	PID() int

	// BringToFront focuses the window, changing OS input focus.
	BringToFront() error
}

// Automation is the accessibility-tree query engine.
type Automation interface {
	// TopWindows enumerates top-level windows in OS iteration order.
	TopWindows() ([]Window, error)

	// WindowFromHandle rehydrates a window from an opaque handle.
	WindowFromHandle(handle uintptr) (Window, error)

	// ElementFromPoint returns the deepest element at absolute screen
	// coordinates.
	ElementFromPoint(x, y int) (Element, error)

	// ContainingWindow walks from an element up to its top-level window.
	ContainingWindow(el Element) (Window, error)

	// CursorPos returns the current pointer position.
	CursorPos() (x, y int, err error)
}

// Inputter injects raw mouse and keyboard input at absolute screen
// coordinates, bypassing the accessibility tree.
type Inputter interface {
	MoveMouse(x, y int) error
	ClickAt(x, y int, button PointerButton) error
	Drag(fromX, fromY, toX, toY int, durationMs, steps int) error
	TypeText(text string) error
	PressEnter() error

	// StartMenuLaunch opens the OS launcher, types the app name, and
	// confirms. delayMs is the pause after opening the launcher.
	StartMenuLaunch(app string, delayMs int) error
}

// EventSource delivers raw system-wide input events to the recorder.
// Both channels close after Close is called.
type EventSource interface {
	Pointer() (<-chan PointerEvent, error)
	Keys() (<-chan KeyEvent, error)
	Close() error
}
