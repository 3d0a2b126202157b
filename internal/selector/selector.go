// Package selector implements the data model and algorithms for describing
// "which control, in which window" in a way that survives process restarts
// and minor UI changes, and for resolving such a description back to a live
// control.
package selector

import (
	"fmt"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// WindowDescriptor re-finds a top-level window across process runs.
// Exactly one of Title, TitleRegex, or Handle should be set; Handle is only
// valid within one OS session. PID is an optional hint, never binding.
type WindowDescriptor struct {
	Title      string  `json:"title,omitempty"       yaml:"title,omitempty"`
	TitleRegex string  `json:"title_regex,omitempty" yaml:"title_regex,omitempty"`
	Handle     uintptr `json:"handle,omitempty"      yaml:"handle,omitempty"`
	PID        int     `json:"pid,omitempty"         yaml:"pid,omitempty"`
}

// IsZero reports whether no locating field is set.
func (w WindowDescriptor) IsZero() bool {
	return w.Title == "" && w.TitleRegex == "" && w.Handle == 0
}

// String describes the descriptor for error messages.
func (w WindowDescriptor) String() string {
	switch {
	case w.Handle != 0:
		return fmt.Sprintf("handle=%#x", w.Handle)
	case w.Title != "":
		return fmt.Sprintf("title=%q", w.Title)
	case w.TitleRegex != "":
		return fmt.Sprintf("title_regex=%q", w.TitleRegex)
	default:
		return "(empty)"
	}
}

// SelectorStep is one hop in a structural path from a window root to a
// descendant control. All attribute fields are optional; absence means
// "don't constrain on this attribute". SiblingIndex disambiguates when
// multiple siblings match the same attributes.
type SelectorStep struct {
	ControlType  string `json:"control_type,omitempty" yaml:"control_type,omitempty"`
	Name         string `json:"name,omitempty"         yaml:"name,omitempty"`
	StableID     string `json:"stable_id,omitempty"    yaml:"stable_id,omitempty"`
	NativeClass  string `json:"native_class,omitempty" yaml:"native_class,omitempty"`
	SiblingIndex *int   `json:"sibling_index,omitempty" yaml:"sibling_index,omitempty"`
}

// Matches reports whether the element attributes satisfy every set field of
// the step. Absent step attributes are wildcards.
func (s SelectorStep) Matches(a platform.Attributes) bool {
	if s.ControlType != "" && a.ControlType != s.ControlType {
		return false
	}
	if s.StableID != "" && a.AutomationID != s.StableID {
		return false
	}
	if s.NativeClass != "" && a.ClassName != s.NativeClass {
		return false
	}
	if s.Name != "" && a.Name != s.Name {
		return false
	}
	return true
}

// String describes the step for error messages.
func (s SelectorStep) String() string {
	out := "{"
	if s.ControlType != "" {
		out += fmt.Sprintf("type=%q ", s.ControlType)
	}
	if s.Name != "" {
		out += fmt.Sprintf("name=%q ", s.Name)
	}
	if s.StableID != "" {
		out += fmt.Sprintf("stable_id=%q ", s.StableID)
	}
	if s.NativeClass != "" {
		out += fmt.Sprintf("class=%q ", s.NativeClass)
	}
	if s.SiblingIndex != nil {
		out += fmt.Sprintf("index=%d ", *s.SiblingIndex)
	}
	if len(out) > 1 {
		out = out[:len(out)-1]
	}
	return out + "}"
}

// CandidateKind identifies the strategy a TargetCandidate uses, ordered from
// most to least stable.
type CandidateKind int

const (
	// KindStableID matches stable_id + control_type. Survives UI relayout.
	KindStableID CandidateKind = iota
	// KindName matches name + control_type. Survives relayout but breaks
	// on re-labeling or localization.
	KindName
	// KindPath walks a root-relative structural path. Least robust, most
	// general.
	KindPath
	// KindInvalid marks a candidate with no usable fields.
	KindInvalid
)

// TargetCandidate is one self-contained strategy for finding a control.
// Exactly one strategy's fields are populated: {StableID, ControlType},
// {Name, ControlType}, or Path. NativeClass is a non-binding hint recorded
// alongside whichever strategy is used.
type TargetCandidate struct {
	StableID    string         `json:"stable_id,omitempty"    yaml:"stable_id,omitempty"`
	Name        string         `json:"name,omitempty"         yaml:"name,omitempty"`
	ControlType string         `json:"control_type,omitempty" yaml:"control_type,omitempty"`
	NativeClass string         `json:"native_class,omitempty" yaml:"native_class,omitempty"`
	Path        []SelectorStep `json:"path,omitempty"         yaml:"path,omitempty"`
}

// Kind classifies the candidate by which strategy fields are set.
func (t TargetCandidate) Kind() CandidateKind {
	switch {
	case len(t.Path) > 0:
		return KindPath
	case t.StableID != "":
		return KindStableID
	case t.Name != "":
		return KindName
	default:
		return KindInvalid
	}
}

// String describes the candidate for error messages.
func (t TargetCandidate) String() string {
	switch t.Kind() {
	case KindStableID:
		return fmt.Sprintf("stable_id=%q type=%q", t.StableID, t.ControlType)
	case KindName:
		return fmt.Sprintf("name=%q type=%q", t.Name, t.ControlType)
	case KindPath:
		return fmt.Sprintf("path(%d hops)", len(t.Path))
	default:
		return "(invalid)"
	}
}

// Selector is a serializable description of a window plus a ranked list of
// strategies for locating one control inside it. Selectors are immutable
// value objects: they carry no live handles and are constructed once, by
// hand, by the Builder, or by the Recorder.
type Selector struct {
	Window  WindowDescriptor  `json:"window"  yaml:"window"`
	Targets []TargetCandidate `json:"targets" yaml:"targets"`
}

// Validate checks structural invariants: a non-empty target list and no
// invalid candidates.
func (s Selector) Validate() error {
	if len(s.Targets) == 0 {
		return fmt.Errorf("selector has no target candidates")
	}
	for i, t := range s.Targets {
		if t.Kind() == KindInvalid {
			return fmt.Errorf("target candidate %d has no usable fields", i)
		}
	}
	return nil
}
