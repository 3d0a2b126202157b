//go:build windows

package cmd

// Linking the backend package runs its init(), which registers
// platform.NewProviderFunc for this OS.
import _ "github.com/lijinlar/handsfree-windows/internal/platform/windows"
