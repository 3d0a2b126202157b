// Package fake provides in-memory implementations of the platform
// interfaces for tests. Trees are built from plain structs; element
// identity is pointer identity.
package fake

import (
	"fmt"
	"sync"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// Node is a fake accessibility-tree element.
type Node struct {
	Attrs  platform.Attributes
	Bounds platform.Bounds
	Kids   []*Node

	parent  *Node
	noIndex bool

	// Interaction log, readable by tests.
	Clicks  int
	Text    string
	Focused bool

	// Injected failures.
	AttrsErr    error
	ChildrenErr error
	ClickErr    error
	SetTextErr  error
}

var _ platform.Element = (*Node)(nil)
var _ platform.ChildFinder = (*Node)(nil)

// NewNode builds a node with children and wires parent links.
func NewNode(attrs platform.Attributes, kids ...*Node) *Node {
	n := &Node{Attrs: attrs, Kids: kids}
	for _, k := range kids {
		k.setParent(n)
	}
	return n
}

func (n *Node) setParent(p *Node) {
	n.parent = p
	n.noIndex = p.noIndex
	for _, k := range n.Kids {
		k.setParent(n)
	}
}

// DisableIndex turns off the ChildByAttrs fast path for this subtree, forcing
// the resolver through child enumeration.
func (n *Node) DisableIndex() *Node {
	n.noIndex = true
	for _, k := range n.Kids {
		k.DisableIndex()
	}
	return n
}

func (n *Node) Attributes() (platform.Attributes, error) {
	if n.AttrsErr != nil {
		return platform.Attributes{}, n.AttrsErr
	}
	return n.Attrs, nil
}

func (n *Node) Children() ([]platform.Element, error) {
	if n.ChildrenErr != nil {
		return nil, n.ChildrenErr
	}
	out := make([]platform.Element, len(n.Kids))
	for i, k := range n.Kids {
		out[i] = k
	}
	return out, nil
}

func (n *Node) Parent() (platform.Element, error) {
	if n.parent == nil {
		return nil, nil
	}
	return n.parent, nil
}

func (n *Node) Rect() (platform.Bounds, error) { return n.Bounds, nil }

func (n *Node) SameAs(other platform.Element) bool {
	switch o := other.(type) {
	case *Node:
		return o == n
	case *Window:
		return o.Node == n
	default:
		return false
	}
}

func (n *Node) Click() error {
	if n.ClickErr != nil {
		return n.ClickErr
	}
	n.Clicks++
	return nil
}

func (n *Node) SetText(text string) error {
	if n.SetTextErr != nil {
		return n.SetTextErr
	}
	n.Text = text
	return nil
}

func (n *Node) Focus() error {
	n.Focused = true
	return nil
}

// ChildByAttrs implements the indexed subtree lookup fast path.
func (n *Node) ChildByAttrs(want platform.Attributes) (platform.Element, error) {
	if n.noIndex {
		return nil, fmt.Errorf("index disabled")
	}
	var find func(cur *Node) *Node
	find = func(cur *Node) *Node {
		for _, k := range cur.Kids {
			if attrsMatch(k.Attrs, want) {
				return k
			}
			if hit := find(k); hit != nil {
				return hit
			}
		}
		return nil
	}
	if hit := find(n); hit != nil {
		return hit, nil
	}
	return nil, fmt.Errorf("no indexed match for %+v", want)
}

func attrsMatch(a, want platform.Attributes) bool {
	if want.AutomationID != "" && a.AutomationID != want.AutomationID {
		return false
	}
	if want.Name != "" && a.Name != want.Name {
		return false
	}
	if want.ControlType != "" && a.ControlType != want.ControlType {
		return false
	}
	if want.ClassName != "" && a.ClassName != want.ClassName {
		return false
	}
	return true
}

// Window is a fake top-level window: a Node with window identity.
type Window struct {
	*Node
	WinTitle   string
	WinHandle  uintptr
	ProcID     int
	FrontCount int
	FocusErr   error
}

var _ platform.Window = (*Window)(nil)

// NewWindow wraps a root node as a top-level window.
func NewWindow(title string, handle uintptr, pid int, root *Node) *Window {
	return &Window{Node: root, WinTitle: title, WinHandle: handle, ProcID: pid}
}

func (w *Window) Handle() uintptr { return w.WinHandle }
func (w *Window) Title() string   { return w.WinTitle }
func (w *Window) PID() int        { return w.ProcID }

func (w *Window) BringToFront() error {
	if w.FocusErr != nil {
		return w.FocusErr
	}
	w.FrontCount++
	return nil
}

// Automation is a fake accessibility engine over a fixed set of windows.
type Automation struct {
	Windows []*Window

	// PointMap routes ElementFromPoint lookups; missing points fall back
	// to PointErr.
	PointMap map[[2]int]platform.Element
	PointErr error

	CursorX, CursorY int
}

var _ platform.Automation = (*Automation)(nil)

func (a *Automation) TopWindows() ([]platform.Window, error) {
	out := make([]platform.Window, len(a.Windows))
	for i, w := range a.Windows {
		out[i] = w
	}
	return out, nil
}

func (a *Automation) WindowFromHandle(handle uintptr) (platform.Window, error) {
	for _, w := range a.Windows {
		if w.WinHandle == handle {
			return w, nil
		}
	}
	return nil, fmt.Errorf("no window with handle %#x", handle)
}

func (a *Automation) ElementFromPoint(x, y int) (platform.Element, error) {
	if el, ok := a.PointMap[[2]int{x, y}]; ok {
		return el, nil
	}
	if a.PointErr != nil {
		return nil, a.PointErr
	}
	return nil, fmt.Errorf("no element at (%d,%d)", x, y)
}

func (a *Automation) ContainingWindow(el platform.Element) (platform.Window, error) {
	node, ok := el.(*Node)
	if !ok {
		if w, isWin := el.(*Window); isWin {
			return w, nil
		}
		return nil, fmt.Errorf("unknown element type %T", el)
	}
	root := node
	for root.parent != nil {
		root = root.parent
	}
	for _, w := range a.Windows {
		if w.Node == root {
			return w, nil
		}
	}
	return nil, fmt.Errorf("element is not inside a known window")
}

func (a *Automation) CursorPos() (int, int, error) {
	return a.CursorX, a.CursorY, nil
}

// ClickCall records one injected click.
type ClickCall struct {
	X, Y   int
	Button platform.PointerButton
}

// DragCall records one injected drag.
type DragCall struct {
	FromX, FromY, ToX, ToY int
	DurationMs, Steps      int
}

// Inputter records injected raw input for assertions.
type Inputter struct {
	mu       sync.Mutex
	Clicks   []ClickCall
	Moves    [][2]int
	Typed    []string
	Enters   int
	Drags    []DragCall
	Launched []string
	Err      error
}

var _ platform.Inputter = (*Inputter)(nil)

func (in *Inputter) MoveMouse(x, y int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.Moves = append(in.Moves, [2]int{x, y})
	return nil
}

func (in *Inputter) ClickAt(x, y int, button platform.PointerButton) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.Clicks = append(in.Clicks, ClickCall{X: x, Y: y, Button: button})
	return nil
}

func (in *Inputter) Drag(fromX, fromY, toX, toY int, durationMs, steps int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.Drags = append(in.Drags, DragCall{fromX, fromY, toX, toY, durationMs, steps})
	return nil
}

func (in *Inputter) TypeText(text string) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.Typed = append(in.Typed, text)
	return nil
}

func (in *Inputter) PressEnter() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.Enters++
	return nil
}

func (in *Inputter) StartMenuLaunch(app string, delayMs int) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.Err != nil {
		return in.Err
	}
	in.Launched = append(in.Launched, app)
	return nil
}

// EventSource delivers scripted pointer/key events to the recorder.
type EventSource struct {
	PointerCh chan platform.PointerEvent
	KeyCh     chan platform.KeyEvent

	closeOnce sync.Once
	Closed    bool
}

var _ platform.EventSource = (*EventSource)(nil)

// NewEventSource creates buffered event channels for scripting.
func NewEventSource() *EventSource {
	return &EventSource{
		PointerCh: make(chan platform.PointerEvent, 64),
		KeyCh:     make(chan platform.KeyEvent, 64),
	}
}

func (s *EventSource) Pointer() (<-chan platform.PointerEvent, error) { return s.PointerCh, nil }
func (s *EventSource) Keys() (<-chan platform.KeyEvent, error)       { return s.KeyCh, nil }

func (s *EventSource) Close() error {
	s.closeOnce.Do(func() {
		s.Closed = true
		close(s.PointerCh)
		close(s.KeyCh)
	})
	return nil
}
