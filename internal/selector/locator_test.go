package selector

import (
	"errors"
	"testing"

	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/platform/fake"
)

func locatorAutomation() *fake.Automation {
	mk := func(title string, handle uintptr, pid int) *fake.Window {
		return fake.NewWindow(title, handle, pid,
			fake.NewNode(platform.Attributes{ControlType: "Window", Name: title}))
	}
	return &fake.Automation{Windows: []*fake.Window{
		mk("Untitled - Notepad", 0x100, 10),
		mk("report.txt - Notepad", 0x200, 11),
		mk("Calculator", 0x300, 12),
	}}
}

func TestLocate(t *testing.T) {
	auto := locatorAutomation()

	tests := []struct {
		name       string
		desc       WindowDescriptor
		wantHandle uintptr
		wantErr    bool
	}{
		{"exact title", WindowDescriptor{Title: "Calculator"}, 0x300, false},
		{"regex first match wins in OS order", WindowDescriptor{TitleRegex: `Notepad$`}, 0x100, false},
		{"regex with pid filter", WindowDescriptor{TitleRegex: `Notepad$`, PID: 11}, 0x200, false},
		{"live handle", WindowDescriptor{Handle: 0x200}, 0x200, false},
		{"stale handle falls back to title", WindowDescriptor{Handle: 0xdead, Title: "Calculator"}, 0x300, false},
		{"stale handle without title fails", WindowDescriptor{Handle: 0xdead}, 0, true},
		{"no match", WindowDescriptor{Title: "Paint"}, 0, true},
		{"empty descriptor", WindowDescriptor{}, 0, true},
		{"bad regex", WindowDescriptor{TitleRegex: `(`}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win, err := Locate(auto, tt.desc)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Locate() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Locate: %v", err)
			}
			if win.Handle() != tt.wantHandle {
				t.Errorf("handle = %#x, want %#x", win.Handle(), tt.wantHandle)
			}
		})
	}
}

func TestLocateNotFoundError(t *testing.T) {
	auto := locatorAutomation()
	_, err := Locate(auto, WindowDescriptor{Title: "Paint"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLocateAndFocus(t *testing.T) {
	auto := locatorAutomation()

	win, err := LocateAndFocus(auto, WindowDescriptor{Title: "Calculator"})
	if err != nil {
		t.Fatalf("LocateAndFocus: %v", err)
	}
	if got := win.(*fake.Window).FrontCount; got != 1 {
		t.Errorf("BringToFront called %d times, want 1", got)
	}
}

func TestLocateAndFocusPropagatesFocusError(t *testing.T) {
	auto := locatorAutomation()
	auto.Windows[2].FocusErr = errors.New("access denied")

	if _, err := LocateAndFocus(auto, WindowDescriptor{Title: "Calculator"}); err == nil {
		t.Errorf("focus error must propagate")
	}
}
