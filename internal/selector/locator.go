package selector

import (
	"fmt"
	"regexp"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// Locate resolves a window descriptor to a live top-level window.
//
// A handle descriptor is rehydrated directly. Title and title-regex
// descriptors scan the OS window list; the first match in OS iteration
// order wins when several windows match. Zero matches fail with
// ErrNotFound. (Surfacing an explicit ambiguity error when count > 1 was
// considered and deliberately not done; recorded macros routinely target
// apps that keep several sibling windows open.)
func Locate(auto platform.Automation, desc WindowDescriptor) (platform.Window, error) {
	if desc.IsZero() {
		return nil, fmt.Errorf("window descriptor is empty: provide title, title_regex, or handle")
	}

	if desc.Handle != 0 {
		w, err := auto.WindowFromHandle(desc.Handle)
		if err == nil {
			return w, nil
		}
		// Handles are only valid within one OS session. A recorded
		// selector usually carries a title too, so fall through to
		// title matching before giving up.
		if desc.Title == "" && desc.TitleRegex == "" {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, desc, err)
		}
	}

	var pattern *regexp.Regexp
	if desc.TitleRegex != "" {
		var err error
		pattern, err = regexp.Compile(desc.TitleRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid title_regex %q: %w", desc.TitleRegex, err)
		}
	}

	windows, err := auto.TopWindows()
	if err != nil {
		return nil, fmt.Errorf("enumerate windows: %w", err)
	}

	for _, w := range windows {
		if desc.PID != 0 && w.PID() != desc.PID {
			continue
		}
		title := w.Title()
		if pattern != nil {
			if pattern.MatchString(title) {
				return w, nil
			}
			continue
		}
		if title == desc.Title {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, desc)
}

// LocateAndFocus locates the window and brings it to the foreground.
// Focus changes OS input focus, which is required before reliable
// click/type injection.
func LocateAndFocus(auto platform.Automation, desc WindowDescriptor) (platform.Window, error) {
	w, err := Locate(auto, desc)
	if err != nil {
		return nil, err
	}
	if err := w.BringToFront(); err != nil {
		return nil, fmt.Errorf("focus window %s: %w", desc, err)
	}
	return w, nil
}
