package selector

import (
	"fmt"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// maxAncestorHops bounds the walk from a control up to its window root.
// A genuine accessibility tree is never this deep; exceeding the bound means
// the tree is broken or the control was reparented mid-walk.
const maxAncestorHops = 256

// Build produces a ranked list of selector candidates describing control,
// rooted at windowRoot. Ordering is a hard contract shared with Resolve:
// stable_id+type first, then name+type, then the structural path. The path
// candidate is always emitted, so the returned selector never has an empty
// target list.
func Build(control, windowRoot platform.Element) (Selector, error) {
	attrs, err := control.Attributes()
	if err != nil {
		return Selector{}, fmt.Errorf("read control attributes: %w", err)
	}

	var targets []TargetCandidate
	if attrs.AutomationID != "" && attrs.ControlType != "" {
		targets = append(targets, TargetCandidate{
			StableID:    attrs.AutomationID,
			ControlType: attrs.ControlType,
			NativeClass: attrs.ClassName,
		})
	}
	if attrs.Name != "" && attrs.ControlType != "" {
		targets = append(targets, TargetCandidate{
			Name:        attrs.Name,
			ControlType: attrs.ControlType,
			NativeClass: attrs.ClassName,
		})
	}

	path, err := buildPath(control, windowRoot)
	if err != nil {
		return Selector{}, err
	}
	targets = append(targets, TargetCandidate{
		Path:        path,
		NativeClass: attrs.ClassName,
	})

	sel := Selector{Targets: targets}
	if win, ok := windowRoot.(platform.Window); ok {
		sel.Window = WindowDescriptor{
			Title:  win.Title(),
			Handle: win.Handle(),
			PID:    win.PID(),
		}
	}
	return sel, nil
}

// BuildForElement builds a selector for an element whose window root is not
// known, e.g. the element under the cursor during recording. It ascends to
// the containing top-level window and builds against that.
func BuildForElement(auto platform.Automation, el platform.Element) (Selector, error) {
	win, err := auto.ContainingWindow(el)
	if err != nil {
		return Selector{}, fmt.Errorf("containing window: %w", err)
	}
	return Build(el, win)
}

// buildPath walks ancestors from control up to windowRoot, then reverses to
// root-first order, recording each hop's attributes and its index among
// same-level siblings. The sibling index is only materially used by the
// resolver when attribute matching alone is ambiguous.
func buildPath(control, windowRoot platform.Element) ([]SelectorStep, error) {
	chain := []platform.Element{control}
	cur := control
	reached := cur.SameAs(windowRoot)

	for hops := 0; !reached && hops < maxAncestorHops; hops++ {
		parent, err := cur.Parent()
		if err != nil || parent == nil {
			return nil, fmt.Errorf("%w: parent walk stopped after %d hop(s)", ErrDetachedElement, hops)
		}
		chain = append(chain, parent)
		cur = parent
		reached = cur.SameAs(windowRoot)
	}
	if !reached {
		return nil, fmt.Errorf("%w: root not reached within %d hops", ErrDetachedElement, maxAncestorHops)
	}

	// Reverse to root -> control.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	path := make([]SelectorStep, 0, len(chain)-1)
	for i := 1; i < len(chain); i++ {
		node := chain[i]
		parent := chain[i-1]

		attrs, err := node.Attributes()
		if err != nil {
			return nil, fmt.Errorf("read attributes at hop %d: %w", i, err)
		}

		step := SelectorStep{
			ControlType: attrs.ControlType,
			Name:        attrs.Name,
			StableID:    attrs.AutomationID,
			NativeClass: attrs.ClassName,
		}

		// Sibling index is best effort: a failed enumeration just leaves
		// the disambiguator unset.
		if siblings, err := parent.Children(); err == nil {
			for j, sib := range siblings {
				if sib.SameAs(node) {
					idx := j
					step.SiblingIndex = &idx
					break
				}
			}
		}

		path = append(path, step)
	}
	return path, nil
}
