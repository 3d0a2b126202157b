// Package tree provides bounded walks over the accessibility tree: JSON
// export for inspection and heuristics for finding content surfaces.
package tree

import (
	"fmt"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// DefaultDepth is the default traversal depth for exports.
const DefaultDepth = 3

// DefaultMaxNodes caps the number of visited nodes per walk. Trees are
// truncated, never walked unbounded.
const DefaultMaxNodes = 5000

// Node is the serializable form of one accessibility-tree element.
type Node struct {
	Name        string `json:"name"                   yaml:"name"`
	ControlType string `json:"control_type"           yaml:"control_type"`
	StableID    string `json:"stable_id,omitempty"    yaml:"stable_id,omitempty"`
	NativeClass string `json:"native_class,omitempty" yaml:"native_class,omitempty"`
	Bounds      [4]int `json:"bounds"                 yaml:"bounds,flow"`
	Children    []Node `json:"children,omitempty"     yaml:"children,omitempty"`
}

// Build exports the subtree under root, visiting at most maxNodes elements
// and descending at most depth levels below root.
func Build(root platform.Element, depth, maxNodes int) (Node, error) {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	count := 0

	var rec func(el platform.Element, d int) (Node, error)
	rec = func(el platform.Element, d int) (Node, error) {
		count++
		attrs, err := el.Attributes()
		if err != nil {
			return Node{}, fmt.Errorf("read attributes: %w", err)
		}
		node := Node{
			Name:        attrs.Name,
			ControlType: attrs.ControlType,
			StableID:    attrs.AutomationID,
			NativeClass: attrs.ClassName,
		}
		if r, err := el.Rect(); err == nil {
			node.Bounds = [4]int{r.X, r.Y, r.Width, r.Height}
		}
		if d <= 0 || count >= maxNodes {
			return node, nil
		}

		kids, err := el.Children()
		if err != nil {
			// Transient or permission-limited subtree; export what we have.
			return node, nil
		}
		for _, k := range kids {
			if count >= maxNodes {
				break
			}
			child, err := rec(k, d-1)
			if err != nil {
				continue
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	}

	return rec(root, depth)
}

// Walk calls fn for every element in a depth-limited, node-bounded DFS,
// including root. fn returning false stops the walk early.
func Walk(root platform.Element, depth, maxNodes int, fn func(platform.Element) bool) {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	count := 0

	var walk func(el platform.Element, d int) bool
	walk = func(el platform.Element, d int) bool {
		if count >= maxNodes {
			return false
		}
		count++
		if !fn(el) {
			return false
		}
		if d <= 0 {
			return true
		}
		kids, err := el.Children()
		if err != nil {
			return true
		}
		for _, k := range kids {
			if !walk(k, d-1) {
				return false
			}
		}
		return true
	}
	walk(root, depth)
}

// contentRoles are control types that typically carry the main content or
// canvas surface of an application window.
var contentRoles = map[string]bool{
	"Pane":     true,
	"Custom":   true,
	"Document": true,
}

// LargestContentPane returns the largest descendant of root whose control
// type is Pane, Custom, or Document. This generic heuristic usually lands on
// the main content/canvas area of the window.
func LargestContentPane(root platform.Element) (platform.Element, platform.Bounds, error) {
	var best platform.Element
	var bestRect platform.Bounds
	bestArea := -1

	Walk(root, 12, 40000, func(el platform.Element) bool {
		attrs, err := el.Attributes()
		if err != nil || !contentRoles[attrs.ControlType] {
			return true
		}
		r, err := el.Rect()
		if err != nil {
			return true
		}
		if area := r.Area(); area > bestArea {
			bestArea = area
			best = el
			bestRect = r
		}
		return true
	})

	if best == nil {
		return nil, platform.Bounds{}, fmt.Errorf("no pane, custom, or document element found under the window")
	}
	return best, bestRect, nil
}
