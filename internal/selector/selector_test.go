package selector

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

func intPtr(i int) *int { return &i }

func TestWindowDescriptorIsZero(t *testing.T) {
	tests := []struct {
		name string
		desc WindowDescriptor
		want bool
	}{
		{"empty", WindowDescriptor{}, true},
		{"pid only is not locating", WindowDescriptor{PID: 42}, true},
		{"title", WindowDescriptor{Title: "Notepad"}, false},
		{"regex", WindowDescriptor{TitleRegex: ".*Notepad"}, false},
		{"handle", WindowDescriptor{Handle: 0x1234}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.IsZero(); got != tt.want {
				t.Errorf("IsZero() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCandidateKind(t *testing.T) {
	tests := []struct {
		name      string
		candidate TargetCandidate
		want      CandidateKind
	}{
		{"stable id", TargetCandidate{StableID: "SaveButton", ControlType: "Button"}, KindStableID},
		{"name", TargetCandidate{Name: "Save", ControlType: "Button"}, KindName},
		{"path", TargetCandidate{Path: []SelectorStep{{ControlType: "Pane"}}}, KindPath},
		{"path wins over stable id", TargetCandidate{StableID: "x", Path: []SelectorStep{{}}}, KindPath},
		{"stable id wins over name", TargetCandidate{StableID: "x", Name: "y"}, KindStableID},
		{"empty", TargetCandidate{}, KindInvalid},
		{"class hint alone is invalid", TargetCandidate{NativeClass: "Chrome_WidgetWin_1"}, KindInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candidate.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStepMatches(t *testing.T) {
	attrs := platform.Attributes{
		Name:         "Save",
		ControlType:  "Button",
		AutomationID: "SaveButton",
		ClassName:    "Button",
	}
	tests := []struct {
		name string
		step SelectorStep
		want bool
	}{
		{"empty step is wildcard", SelectorStep{}, true},
		{"full match", SelectorStep{ControlType: "Button", Name: "Save", StableID: "SaveButton"}, true},
		{"partial fields match", SelectorStep{ControlType: "Button"}, true},
		{"wrong type", SelectorStep{ControlType: "Edit"}, false},
		{"wrong name", SelectorStep{Name: "Cancel"}, false},
		{"wrong stable id", SelectorStep{StableID: "CancelButton"}, false},
		{"wrong class", SelectorStep{NativeClass: "Edit"}, false},
		{"sibling index does not affect matching", SelectorStep{Name: "Save", SiblingIndex: intPtr(7)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.step.Matches(attrs); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectorValidate(t *testing.T) {
	tests := []struct {
		name    string
		sel     Selector
		wantErr bool
	}{
		{"no targets", Selector{Window: WindowDescriptor{Title: "x"}}, true},
		{"invalid candidate", Selector{Targets: []TargetCandidate{{}}}, true},
		{"valid", Selector{Targets: []TargetCandidate{{Name: "Save", ControlType: "Button"}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// A selector serialized and re-parsed must be the identical value, including
// the sibling index disambiguators. Recorded macros depend on this.
func TestSelectorYAMLRoundTrip(t *testing.T) {
	sel := Selector{
		Window: WindowDescriptor{Title: "Untitled - Notepad", Handle: 0x2042a, PID: 1234},
		Targets: []TargetCandidate{
			{StableID: "15", ControlType: "Edit", NativeClass: "RichEditD2DPT"},
			{Name: "Text editor", ControlType: "Edit", NativeClass: "RichEditD2DPT"},
			{
				NativeClass: "RichEditD2DPT",
				Path: []SelectorStep{
					{ControlType: "Pane", NativeClass: "NotepadTextBox", SiblingIndex: intPtr(0)},
					{ControlType: "Edit", Name: "Text editor", SiblingIndex: intPtr(1)},
				},
			},
		},
	}

	data, err := yaml.Marshal(sel)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Selector
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(sel, got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, sel)
	}
}
