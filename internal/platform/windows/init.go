//go:build windows

// Package windows implements the platform backends on top of UI Automation,
// EnumWindows, SendInput and low-level input hooks.
package windows

import (
	"sync"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

func init() {
	platform.NewProviderFunc = newProvider
}

func newProvider() (*platform.Provider, error) {
	au, err := newAutomation()
	if err != nil {
		return nil, err
	}
	return &platform.Provider{
		Automation:  au,
		Inputter:    newInputter(),
		EventSource: &lazyEventSource{},
	}, nil
}

// lazyEventSource defers hook installation until the recorder actually asks
// for events. Global input hooks affect the whole desktop, so commands that
// never record must not install them.
type lazyEventSource struct {
	once sync.Once
	src  *eventSource
	err  error
}

var _ platform.EventSource = (*lazyEventSource)(nil)

func (l *lazyEventSource) get() (*eventSource, error) {
	l.once.Do(func() {
		l.src, l.err = newEventSource()
	})
	return l.src, l.err
}

func (l *lazyEventSource) Pointer() (<-chan platform.PointerEvent, error) {
	src, err := l.get()
	if err != nil {
		return nil, err
	}
	return src.Pointer()
}

func (l *lazyEventSource) Keys() (<-chan platform.KeyEvent, error) {
	src, err := l.get()
	if err != nil {
		return nil, err
	}
	return src.Keys()
}

func (l *lazyEventSource) Close() error {
	if l.src == nil {
		return nil
	}
	return l.src.Close()
}
