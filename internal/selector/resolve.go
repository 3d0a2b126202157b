package selector

import (
	"fmt"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// maxSearchNodes bounds the subtree scan used by the stable-id and name
// candidate strategies when the engine offers no indexed lookup.
const maxSearchNodes = 5000

// Trace records how a resolution attempt went, for logging and tests.
type Trace struct {
	// Attempts is the number of target candidates tried, including the
	// one that succeeded.
	Attempts int
}

// Resolve locates the control described by sel under the given window root.
// Candidates are tried in rank order; the first that resolves wins and the
// remaining candidates are never evaluated. Candidate-level failures are
// swallowed and retried against the next candidate; only exhaustion surfaces
// an *UnresolvableError carrying the last underlying error.
func Resolve(root platform.Element, sel Selector) (platform.Element, error) {
	el, _, err := ResolveTrace(root, sel)
	return el, err
}

// ResolveTrace is Resolve with per-call attempt accounting.
func ResolveTrace(root platform.Element, sel Selector) (platform.Element, Trace, error) {
	if err := sel.Validate(); err != nil {
		return nil, Trace{}, err
	}

	var last error
	for i, target := range sel.Targets {
		el, err := resolveCandidate(root, target)
		if err == nil {
			return el, Trace{Attempts: i + 1}, nil
		}
		last = err
	}
	return nil, Trace{Attempts: len(sel.Targets)}, &UnresolvableError{
		Attempts: len(sel.Targets),
		Last:     last,
	}
}

func resolveCandidate(root platform.Element, target TargetCandidate) (platform.Element, error) {
	switch target.Kind() {
	case KindStableID:
		return findDescendant(root, platform.Attributes{
			AutomationID: target.StableID,
			ControlType:  target.ControlType,
		})
	case KindName:
		return findDescendant(root, platform.Attributes{
			Name:        target.Name,
			ControlType: target.ControlType,
		})
	case KindPath:
		return resolvePath(root, target.Path)
	default:
		return nil, fmt.Errorf("candidate has no usable fields")
	}
}

// findDescendant searches the subtree for the first element whose attributes
// match every set field of want. Engines with indexed lookup take the fast
// path; otherwise a breadth-first scan bounded by maxSearchNodes.
func findDescendant(root platform.Element, want platform.Attributes) (platform.Element, error) {
	if finder, ok := root.(platform.ChildFinder); ok {
		if el, err := finder.ChildByAttrs(want); err == nil {
			return el, nil
		}
		// Indexed lookup missed; fall through to the scan. Some engines
		// only index a subset of properties.
	}

	matches := func(a platform.Attributes) bool {
		if want.AutomationID != "" && a.AutomationID != want.AutomationID {
			return false
		}
		if want.Name != "" && a.Name != want.Name {
			return false
		}
		if want.ControlType != "" && a.ControlType != want.ControlType {
			return false
		}
		return true
	}

	queue := []platform.Element{root}
	visited := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		if visited > maxSearchNodes {
			return nil, fmt.Errorf("no descendant matched %+v within %d nodes", want, maxSearchNodes)
		}

		// The root itself is not a match target; candidates describe
		// controls inside the window.
		if visited > 1 {
			attrs, err := cur.Attributes()
			if err == nil && matches(attrs) {
				return cur, nil
			}
		}

		children, err := cur.Children()
		if err != nil {
			continue
		}
		queue = append(queue, children...)
	}
	return nil, fmt.Errorf("no descendant matched %+v", want)
}

// resolvePath walks a structural path from root downward. At each hop the
// resolver first attempts a direct attribute-indexed lookup, then falls back
// to enumerating the current node's children and filtering on the step's set
// attributes. Multiple matches are disambiguated by the recorded sibling
// index (clamped to the match count), defaulting to the first match. A hop
// with zero matches fails the whole candidate immediately; paths are never
// re-searched across hops.
func resolvePath(root platform.Element, path []SelectorStep) (platform.Element, error) {
	cur := root
	for hop, step := range path {
		next, err := resolveHop(cur, step)
		if err != nil {
			return nil, fmt.Errorf("hop %d: %w", hop, err)
		}
		cur = next
	}
	return cur, nil
}

func resolveHop(cur platform.Element, step SelectorStep) (platform.Element, error) {
	// Fast path: indexed lookup on the strongest attribute pair the step
	// carries. Scoped to direct children by verifying the parent.
	if finder, ok := cur.(platform.ChildFinder); ok {
		var want platform.Attributes
		switch {
		case step.StableID != "" && step.ControlType != "":
			want = platform.Attributes{AutomationID: step.StableID, ControlType: step.ControlType}
		case step.Name != "" && step.ControlType != "":
			want = platform.Attributes{Name: step.Name, ControlType: step.ControlType}
		}
		if want != (platform.Attributes{}) {
			if el, err := finder.ChildByAttrs(want); err == nil {
				return el, nil
			}
		}
	}

	children, err := cur.Children()
	if err != nil {
		return nil, fmt.Errorf("enumerate children: %w", err)
	}

	var matches []platform.Element
	for _, child := range children {
		attrs, err := child.Attributes()
		if err != nil {
			continue
		}
		if step.Matches(attrs) {
			matches = append(matches, child)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no child matched step %s", step)
	}

	if step.SiblingIndex != nil {
		idx := *step.SiblingIndex
		if idx >= len(matches) {
			idx = len(matches) - 1
		}
		if idx < 0 {
			idx = 0
		}
		return matches[idx], nil
	}
	return matches[0], nil
}
