package macro

import (
	"fmt"
	"regexp"
	"time"

	"github.com/lijinlar/handsfree-windows/internal/platform"
	"github.com/lijinlar/handsfree-windows/internal/tree"
)

// ClassicQuery is the ad hoc find used by hand-written macro steps and the
// click/type CLI commands: best-effort name/type/id matching with no stored
// path.
type ClassicQuery struct {
	StableID    string
	ControlType string
	Name        string
	NameRegex   string
	TimeoutSec  int
}

// IsZero reports whether no matching field is set.
func (q ClassicQuery) IsZero() bool {
	return q.StableID == "" && q.Name == "" && q.NameRegex == "" && q.ControlType == ""
}

func classicQueryFromArgs(args map[string]interface{}, defaultTimeoutSec int) ClassicQuery {
	return ClassicQuery{
		StableID:    stringArg(args, "stable_id", ""),
		ControlType: stringArg(args, "control_type", ""),
		Name:        stringArg(args, "name", ""),
		NameRegex:   stringArg(args, "name_regex", ""),
		TimeoutSec:  intArg(args, "timeout", defaultTimeoutSec),
	}
}

// classicFind resolves a step's classic find arguments against the current
// window, polling until the control appears or the timeout elapses.
// Controls often materialize a moment after their window gains focus.
func (e *Engine) classicFind(args map[string]interface{}) (platform.Element, error) {
	if e.currentWindow == nil {
		return nil, ErrNoActiveWindow
	}
	q := classicQueryFromArgs(args, e.cfg.Find.TimeoutSec)
	if q.IsZero() {
		return nil, fmt.Errorf("step has no selector and no classic find arguments (stable_id, name, name_regex, control_type)")
	}
	return WaitForControl(e.currentWindow, q, e.cfg.Find.RetryMs, e.sleep)
}

// WaitForControl polls FindControl until it succeeds or the query timeout
// elapses. retryMs is the pause between attempts; sleep is injectable for
// tests.
func WaitForControl(win platform.Element, q ClassicQuery, retryMs int, sleep func(time.Duration)) (platform.Element, error) {
	if sleep == nil {
		sleep = time.Sleep
	}
	timeout := time.Duration(q.TimeoutSec) * time.Second
	deadline := time.Now().Add(timeout)

	var lastErr error
	for attempt := 0; ; attempt++ {
		ctrl, err := FindControl(win, q)
		if err == nil {
			return ctrl, nil
		}
		lastErr = err
		if time.Now().After(deadline) || q.TimeoutSec <= 0 {
			break
		}
		sleep(time.Duration(retryMs) * time.Millisecond)
	}
	return nil, fmt.Errorf("control not found within %ds: %w", q.TimeoutSec, lastErr)
}

// FindControl scans the window subtree once for the first element matching
// the query. Matching fields combine with AND; unset fields are wildcards.
func FindControl(win platform.Element, q ClassicQuery) (platform.Element, error) {
	var pattern *regexp.Regexp
	if q.NameRegex != "" {
		var err error
		pattern, err = regexp.Compile(q.NameRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid name_regex %q: %w", q.NameRegex, err)
		}
	}

	var found platform.Element
	tree.Walk(win, tree.DefaultMaxNodes, tree.DefaultMaxNodes, func(el platform.Element) bool {
		if el == win || el.SameAs(win) {
			return true
		}
		attrs, err := el.Attributes()
		if err != nil {
			return true
		}
		if q.StableID != "" && attrs.AutomationID != q.StableID {
			return true
		}
		if q.ControlType != "" && attrs.ControlType != q.ControlType {
			return true
		}
		if q.Name != "" && attrs.Name != q.Name {
			return true
		}
		if pattern != nil && !pattern.MatchString(attrs.Name) {
			return true
		}
		found = el
		return false
	})

	if found == nil {
		return nil, fmt.Errorf("no control matched %+v", q)
	}
	return found, nil
}
