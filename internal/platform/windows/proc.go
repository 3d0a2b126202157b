//go:build windows

package windows

import sys "golang.org/x/sys/windows"

var (
	user32   = sys.NewLazySystemDLL("user32.dll")
	kernel32 = sys.NewLazySystemDLL("kernel32.dll")
	ole32    = sys.NewLazySystemDLL("ole32.dll")
	oleaut32 = sys.NewLazySystemDLL("oleaut32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsWindow                 = user32.NewProc("IsWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procIsIconic                 = user32.NewProc("IsIconic")
	procGetCursorPos             = user32.NewProc("GetCursorPos")
	procGetSystemMetrics         = user32.NewProc("GetSystemMetrics")
	procSendInput                = user32.NewProc("SendInput")
	procSetWindowsHookExW        = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx      = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx           = user32.NewProc("CallNextHookEx")
	procGetMessageW              = user32.NewProc("GetMessageW")
	procPostThreadMessageW       = user32.NewProc("PostThreadMessageW")
	procMapVirtualKeyW           = user32.NewProc("MapVirtualKeyW")
	procGetAncestor              = user32.NewProc("GetAncestor")
	procGetKeyState              = user32.NewProc("GetKeyState")
	procGetCurrentThreadId       = kernel32.NewProc("GetCurrentThreadId")

	procCoInitializeEx   = ole32.NewProc("CoInitializeEx")
	procCoCreateInstance = ole32.NewProc("CoCreateInstance")
	procSysAllocString   = oleaut32.NewProc("SysAllocString")
	procSysFreeString    = oleaut32.NewProc("SysFreeString")
	procVariantClear     = oleaut32.NewProc("VariantClear")
)

const (
	swRestore = 9

	smCxScreen = 0
	smCyScreen = 1
)

type point struct {
	x, y int32
}
