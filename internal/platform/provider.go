package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	Automation  Automation
	Inputter    Inputter
	EventSource EventSource
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("handsfree is not supported on %s/%s; supported: windows/amd64, windows/arm64", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/windows/init.go for the Windows registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
