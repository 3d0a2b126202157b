//go:build windows

package windows

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseEventfMove       = 0x0001
	mouseEventfLeftDown   = 0x0002
	mouseEventfLeftUp     = 0x0004
	mouseEventfRightDown  = 0x0008
	mouseEventfRightUp    = 0x0010
	mouseEventfMiddleDown = 0x0020
	mouseEventfMiddleUp   = 0x0040
	mouseEventfAbsolute   = 0x8000

	keyEventfKeyUp   = 0x0002
	keyEventfUnicode = 0x0004

	vkReturn = 0x0D
	vkLWin   = 0x5B
)

type mouseInput struct {
	dx          int32
	dy          int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
	_           [8]byte // pad to the size of the INPUT union
}

type input struct {
	inputType uint32
	_         [4]byte // alignment before the union
	ki        keybdInput
}

type inputMouseUnion struct {
	inputType uint32
	_         [4]byte
	mi        mouseInput
	_         [8]byte // pad the union to keyboard size
}

// inputter injects raw mouse and keyboard events via SendInput.
// SendInput plays better with canvas-style surfaces than message posting.
type inputter struct{}

var _ platform.Inputter = (*inputter)(nil)

func newInputter() *inputter { return &inputter{} }

func screenSize() (int, int) {
	w, _, _ := procGetSystemMetrics.Call(smCxScreen)
	h, _, _ := procGetSystemMetrics.Call(smCyScreen)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return int(w), int(h)
}

// toAbsolute converts pixel coordinates to the 0..65535 space SendInput
// expects for absolute moves.
func toAbsolute(x, y int) (int32, int32) {
	w, h := screenSize()
	ax := int32(x * 65535 / max(1, w-1))
	ay := int32(y * 65535 / max(1, h-1))
	return ax, ay
}

func sendMouse(flags uint32, x, y int) error {
	ax, ay := toAbsolute(x, y)
	in := inputMouseUnion{
		inputType: inputMouse,
		mi: mouseInput{
			dx:      ax,
			dy:      ay,
			dwFlags: flags | mouseEventfAbsolute,
		},
	}
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n != 1 {
		return fmt.Errorf("SendInput(mouse): %w", err)
	}
	return nil
}

func sendKey(vk uint16, scan uint16, flags uint32) error {
	in := input{
		inputType: inputKeyboard,
		ki: keybdInput{
			wVk:     vk,
			wScan:   scan,
			dwFlags: flags,
		},
	}
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n != 1 {
		return fmt.Errorf("SendInput(key): %w", err)
	}
	return nil
}

func (in *inputter) MoveMouse(x, y int) error {
	return sendMouse(mouseEventfMove, x, y)
}

func (in *inputter) ClickAt(x, y int, button platform.PointerButton) error {
	var down, up uint32
	switch button {
	case platform.ButtonRight:
		down, up = mouseEventfRightDown, mouseEventfRightUp
	case platform.ButtonMiddle:
		down, up = mouseEventfMiddleDown, mouseEventfMiddleUp
	default:
		down, up = mouseEventfLeftDown, mouseEventfLeftUp
	}
	if err := sendMouse(mouseEventfMove|down, x, y); err != nil {
		return err
	}
	return sendMouse(up, x, y)
}

// Drag presses at the start point, moves through interpolated waypoints over
// durationMs, and releases at the end point. Short holds around the press
// and release keep canvas apps from coalescing the gesture into a click.
func (in *inputter) Drag(fromX, fromY, toX, toY int, durationMs, steps int) error {
	if steps < 1 {
		steps = 1
	}
	if durationMs < 0 {
		durationMs = 0
	}
	stepSleep := time.Duration(durationMs) * time.Millisecond / time.Duration(steps)

	if err := in.MoveMouse(fromX, fromY); err != nil {
		return err
	}
	time.Sleep(20 * time.Millisecond)
	if err := sendMouse(mouseEventfMove|mouseEventfLeftDown, fromX, fromY); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)

	for i := 1; i <= steps; i++ {
		x := fromX + (toX-fromX)*i/steps
		y := fromY + (toY-fromY)*i/steps
		if err := in.MoveMouse(x, y); err != nil {
			return err
		}
		time.Sleep(stepSleep)
	}

	time.Sleep(60 * time.Millisecond)
	return sendMouse(mouseEventfLeftUp, toX, toY)
}

// TypeText injects text as KEYEVENTF_UNICODE events, so layout and IME state
// cannot garble it.
func (in *inputter) TypeText(text string) error {
	for _, r := range text {
		scan := uint16(r)
		if err := sendKey(0, scan, keyEventfUnicode); err != nil {
			return err
		}
		if err := sendKey(0, scan, keyEventfUnicode|keyEventfKeyUp); err != nil {
			return err
		}
	}
	return nil
}

func (in *inputter) PressEnter() error {
	if err := sendKey(vkReturn, 0, 0); err != nil {
		return err
	}
	return sendKey(vkReturn, 0, keyEventfKeyUp)
}

// StartMenuLaunch drives the launcher the way a human would: Win key, type
// the app name, Enter.
func (in *inputter) StartMenuLaunch(app string, delayMs int) error {
	if err := sendKey(vkLWin, 0, 0); err != nil {
		return err
	}
	if err := sendKey(vkLWin, 0, keyEventfKeyUp); err != nil {
		return err
	}
	if delayMs > 0 {
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}
	if err := in.TypeText(app); err != nil {
		return err
	}
	time.Sleep(100 * time.Millisecond)
	return in.PressEnter()
}
