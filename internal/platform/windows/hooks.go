//go:build windows

package windows

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unicode"
	"unsafe"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmSysKeyDown  = 0x0104
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208

	mapvkVkToChar = 2

	vkShift   = 0x10
	vkCapital = 0x14
	vkF9      = 0x78
)

type msllHookStruct struct {
	pt          point
	mouseData   uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      point
}

// eventSource taps system-wide input via low-level hooks. Hook procedures
// run on the thread that installed them and must return fast, so events are
// forwarded with non-blocking sends; a slow consumer loses events instead of
// stalling the whole desktop's input.
type eventSource struct {
	pointerCh chan platform.PointerEvent
	keyCh     chan platform.KeyEvent

	ready    chan struct{}
	done     chan struct{}
	threadID uint32
	startErr error

	closeOnce sync.Once
}

var _ platform.EventSource = (*eventSource)(nil)

func newEventSource() (*eventSource, error) {
	src := &eventSource{
		pointerCh: make(chan platform.PointerEvent, 256),
		keyCh:     make(chan platform.KeyEvent, 256),
		ready:     make(chan struct{}),
		done:      make(chan struct{}),
	}
	go src.loop()
	<-src.ready
	if src.startErr != nil {
		return nil, src.startErr
	}
	return src, nil
}

// loop owns the hook lifetime. Low-level hooks are serviced by the message
// loop of the installing thread, so the goroutine is pinned to its OS thread
// for the duration.
func (s *eventSource) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)
	defer close(s.keyCh)
	defer close(s.pointerCh)

	tid, _, _ := procGetCurrentThreadId.Call()
	s.threadID = uint32(tid)

	mouseCB := syscall.NewCallback(s.mouseHook)
	keyCB := syscall.NewCallback(s.keyHook)

	mouseHook, _, err := procSetWindowsHookExW.Call(whMouseLL, mouseCB, 0, 0)
	if mouseHook == 0 {
		s.startErr = fmt.Errorf("install mouse hook: %w", err)
		close(s.ready)
		return
	}
	defer procUnhookWindowsHookEx.Call(mouseHook)

	keyHook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyCB, 0, 0)
	if keyHook == 0 {
		procUnhookWindowsHookEx.Call(mouseHook)
		s.startErr = fmt.Errorf("install keyboard hook: %w", err)
		close(s.ready)
		return
	}
	defer procUnhookWindowsHookEx.Call(keyHook)

	close(s.ready)

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		// 0 is WM_QUIT, ^0 is an error; both end the tap.
		if ret == 0 || int32(ret) == -1 {
			return
		}
	}
}

func (s *eventSource) mouseHook(code uintptr, wParam uintptr, lParam uintptr) uintptr {
	if int32(code) >= 0 {
		info := (*msllHookStruct)(unsafe.Pointer(lParam))
		var ev platform.PointerEvent
		ok := true
		switch wParam {
		case wmLButtonDown:
			ev = platform.PointerEvent{Button: platform.ButtonLeft, Pressed: true}
		case wmLButtonUp:
			ev = platform.PointerEvent{Button: platform.ButtonLeft}
		case wmRButtonDown:
			ev = platform.PointerEvent{Button: platform.ButtonRight, Pressed: true}
		case wmRButtonUp:
			ev = platform.PointerEvent{Button: platform.ButtonRight}
		case wmMButtonDown:
			ev = platform.PointerEvent{Button: platform.ButtonMiddle, Pressed: true}
		case wmMButtonUp:
			ev = platform.PointerEvent{Button: platform.ButtonMiddle}
		default:
			ok = false
		}
		if ok {
			ev.X = int(info.pt.x)
			ev.Y = int(info.pt.y)
			select {
			case s.pointerCh <- ev:
			default:
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, code, wParam, lParam)
	return ret
}

func (s *eventSource) keyHook(code uintptr, wParam uintptr, lParam uintptr) uintptr {
	if int32(code) >= 0 && (wParam == wmKeyDown || wParam == wmSysKeyDown) {
		info := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		ev := classifyKey(info.vkCode)
		select {
		case s.keyCh <- ev:
		default:
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, code, wParam, lParam)
	return ret
}

// classifyKey maps a virtual-key code to a recorder key event. Letter case
// follows live shift and caps lock state; dead keys and IME composition are
// out of scope for the tap.
func classifyKey(vk uint32) platform.KeyEvent {
	switch vk {
	case vkF9:
		return platform.KeyEvent{Kind: platform.KeyStop}
	case vkReturn:
		return platform.KeyEvent{Kind: platform.KeyEnter}
	}

	ch, _, _ := procMapVirtualKeyW.Call(uintptr(vk), mapvkVkToChar)
	// High bit set marks a dead key.
	if ch == 0 || ch&0x80000000 != 0 {
		return platform.KeyEvent{Kind: platform.KeyOther}
	}

	r := rune(uint32(ch))
	if !unicode.IsPrint(r) {
		return platform.KeyEvent{Kind: platform.KeyOther}
	}
	if unicode.IsLetter(r) {
		shift, _, _ := procGetKeyState.Call(vkShift)
		caps, _, _ := procGetKeyState.Call(vkCapital)
		upper := (uint16(shift)&0x8000 != 0) != (uint16(caps)&0x0001 != 0)
		if upper {
			r = unicode.ToUpper(r)
		} else {
			r = unicode.ToLower(r)
		}
	}
	return platform.KeyEvent{Kind: platform.KeyPrintable, Rune: r}
}

func (s *eventSource) Pointer() (<-chan platform.PointerEvent, error) {
	return s.pointerCh, nil
}

func (s *eventSource) Keys() (<-chan platform.KeyEvent, error) {
	return s.keyCh, nil
}

// Close uninstalls the hooks and closes both event channels.
func (s *eventSource) Close() error {
	s.closeOnce.Do(func() {
		procPostThreadMessageW.Call(uintptr(s.threadID), wmQuit, 0, 0)
	})
	<-s.done
	return nil
}
