//go:build windows

package windows

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// hwndInfo is the raw identity of one top-level window.
type hwndInfo struct {
	hwnd  uintptr
	title string
	class string
	pid   int
}

// enumTopWindows lists visible top-level windows in OS iteration order.
// Transient or permission-limited windows are skipped silently.
func enumTopWindows() ([]hwndInfo, error) {
	var out []hwndInfo

	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			return 1
		}
		title := windowText(hwnd)
		if title == "" {
			return 1
		}
		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		out = append(out, hwndInfo{
			hwnd:  hwnd,
			title: title,
			class: windowClass(hwnd),
			pid:   int(pid),
		})
		return 1
	})

	if ret, _, err := procEnumWindows.Call(cb, 0); ret == 0 {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	return out, nil
}

func windowText(hwnd uintptr) string {
	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf[:n])
}

func windowClass(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf[:n])
}

// window is a live top-level window: a UIA element plus its HWND identity.
type window struct {
	*element
	hwnd uintptr
}

var _ platform.Window = (*window)(nil)

func (w *window) Handle() uintptr { return w.hwnd }

func (w *window) Title() string { return windowText(w.hwnd) }

func (w *window) PID() int {
	var pid uint32
	procGetWindowThreadProcessId.Call(w.hwnd, uintptr(unsafe.Pointer(&pid)))
	return int(pid)
}

// BringToFront restores the window if minimized and gives it input focus.
func (w *window) BringToFront() error {
	if valid, _, _ := procIsWindow.Call(w.hwnd); valid == 0 {
		return fmt.Errorf("window handle %#x is no longer valid", w.hwnd)
	}
	if iconic, _, _ := procIsIconic.Call(w.hwnd); iconic != 0 {
		procShowWindow.Call(w.hwnd, swRestore)
	}
	if ret, _, err := procSetForegroundWindow.Call(w.hwnd); ret == 0 {
		return fmt.Errorf("SetForegroundWindow: %w", err)
	}
	return nil
}

func cursorPos() (int, int, error) {
	var p point
	if ret, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p))); ret == 0 {
		return 0, 0, fmt.Errorf("GetCursorPos: %w", err)
	}
	return int(p.x), int(p.y), nil
}
