//go:build windows

package windows

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/lijinlar/handsfree-windows/internal/platform"
)

// COM plumbing for the UI Automation client. All calls go through raw
// vtables; the interfaces used here are stable since Windows 7.

type guid struct {
	data1 uint32
	data2 uint16
	data3 uint16
	data4 [8]byte
}

var (
	clsidCUIAutomation = guid{0xff48dba4, 0x60ef, 0x4201, [8]byte{0xaa, 0x87, 0x54, 0x10, 0x3e, 0xef, 0x59, 0x4e}}
	iidIUIAutomation   = guid{0x30cbe57d, 0xd9d0, 0x452a, [8]byte{0xab, 0x13, 0x7a, 0xc5, 0xac, 0x48, 0x25, 0xee}}

	iidInvokePattern = guid{0xfb377fbe, 0x8ea6, 0x46d5, [8]byte{0x9c, 0x73, 0x64, 0x99, 0x64, 0x2d, 0x30, 0x59}}
	iidValuePattern  = guid{0xa94cd8b1, 0x0844, 0x4cd6, [8]byte{0x9d, 0x2d, 0x64, 0x05, 0x37, 0xab, 0x39, 0xe9}}
)

const (
	coinitApartmentThreaded = 0x2
	clsctxInprocServer      = 0x1

	// IUIAutomation vtable slots.
	uiaCompareElements         = 3
	uiaElementFromHandle       = 6
	uiaElementFromPoint        = 7
	uiaGetRawViewWalker        = 16
	uiaCreatePropertyCondition = 23
	uiaCreateAndCondition      = 25

	// IUIAutomationElement vtable slots.
	elSetFocus                    = 3
	elFindFirst                   = 5
	elGetCurrentPatternAs         = 14
	elGetCurrentControlType       = 21
	elGetCurrentName              = 23
	elGetCurrentAutomationID      = 29
	elGetCurrentClassName         = 30
	elGetCurrentNativeWindowHwnd  = 36
	elGetCurrentBoundingRectangle = 43

	// IUIAutomationTreeWalker vtable slots.
	walkerGetParent     = 3
	walkerGetFirstChild = 4
	walkerGetNextSib    = 6

	// Pattern vtable slots (both patterns expose their verb at slot 3).
	invokePatternInvoke  = 3
	valuePatternSetValue = 3

	propControlType  = 30003
	propName         = 30005
	propAutomationID = 30011

	patternInvoke = 10000
	patternValue  = 10002

	treeScopeDescendants = 4

	gaRoot = 2
)

// Control type ids are numeric on the wire; selectors carry names.
var controlTypeNames = map[int32]string{
	50000: "Button", 50001: "Calendar", 50002: "CheckBox", 50003: "ComboBox",
	50004: "Edit", 50005: "Hyperlink", 50006: "Image", 50007: "ListItem",
	50008: "List", 50009: "Menu", 50010: "MenuBar", 50011: "MenuItem",
	50012: "ProgressBar", 50013: "RadioButton", 50014: "ScrollBar",
	50015: "Slider", 50016: "Spinner", 50017: "StatusBar", 50018: "Tab",
	50019: "TabItem", 50020: "Text", 50021: "ToolBar", 50022: "ToolTip",
	50023: "Tree", 50024: "TreeItem", 50025: "Custom", 50026: "Group",
	50027: "Thumb", 50028: "DataGrid", 50029: "DataItem", 50030: "Document",
	50031: "SplitButton", 50032: "Window", 50033: "Pane", 50034: "Header",
	50035: "HeaderItem", 50036: "Table", 50037: "TitleBar", 50038: "Separator",
	50039: "SemanticZoom", 50040: "AppBar",
}

var controlTypeIDs = func() map[string]int32 {
	m := make(map[string]int32, len(controlTypeNames))
	for id, name := range controlTypeNames {
		m[name] = id
	}
	return m
}()

// vcall invokes slot on a COM object and converts failed HRESULTs to errors.
func vcall(obj uintptr, slot int, args ...uintptr) error {
	vt := *(*uintptr)(unsafe.Pointer(obj))
	fn := *(*uintptr)(unsafe.Pointer(vt + uintptr(slot)*unsafe.Sizeof(uintptr(0))))
	all := append([]uintptr{obj}, args...)
	hr, _, _ := syscall.SyscallN(fn, all...)
	if int32(hr) < 0 {
		return fmt.Errorf("com call slot %d failed: hresult %#08x", slot, uint32(hr))
	}
	return nil
}

// release drops one COM reference. Release returns a refcount, not an
// HRESULT, so it never reports failure.
func release(obj uintptr) {
	if obj == 0 {
		return
	}
	vt := *(*uintptr)(unsafe.Pointer(obj))
	fn := *(*uintptr)(unsafe.Pointer(vt + 2*unsafe.Sizeof(uintptr(0))))
	syscall.SyscallN(fn, obj)
}

type rect struct {
	left, top, right, bottom int32
}

// variant is the 64-bit VARIANT layout, enough for the VT_I4 and VT_BSTR
// values property conditions need.
type variant struct {
	vt  uint16
	_   [6]byte
	val uintptr
	_   [8]byte
}

const (
	vtI4   = 3
	vtBSTR = 8
)

func bstrFromString(s string) (uintptr, error) {
	u16, err := syscall.UTF16PtrFromString(s)
	if err != nil {
		return 0, err
	}
	b, _, _ := procSysAllocString.Call(uintptr(unsafe.Pointer(u16)))
	if b == 0 {
		return 0, fmt.Errorf("SysAllocString failed")
	}
	return b, nil
}

func stringFromBSTR(b uintptr) string {
	if b == 0 {
		return ""
	}
	defer procSysFreeString.Call(b)
	// A BSTR carries its byte length in the 4 bytes preceding the data.
	n := *(*uint32)(unsafe.Pointer(b - 4)) / 2
	if n == 0 {
		return ""
	}
	u16 := unsafe.Slice((*uint16)(unsafe.Pointer(b)), n)
	return syscall.UTF16ToString(u16)
}

// automation owns the IUIAutomation instance and the raw view walker.
type automation struct {
	uia    uintptr
	walker uintptr
	input  *inputter
}

var _ platform.Automation = (*automation)(nil)

// newAutomation initializes COM on the calling goroutine's thread and
// creates the UIA client.
func newAutomation() (*automation, error) {
	hr, _, _ := procCoInitializeEx.Call(0, coinitApartmentThreaded)
	// S_FALSE and RPC_E_CHANGED_MODE mean COM is already up on this thread.
	if int32(hr) < 0 && uint32(hr) != 0x80010106 {
		return nil, fmt.Errorf("CoInitializeEx: hresult %#08x", uint32(hr))
	}

	var obj uintptr
	hr, _, _ = procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(&clsidCUIAutomation)),
		0,
		clsctxInprocServer,
		uintptr(unsafe.Pointer(&iidIUIAutomation)),
		uintptr(unsafe.Pointer(&obj)),
	)
	if int32(hr) < 0 {
		return nil, fmt.Errorf("CoCreateInstance(CUIAutomation): hresult %#08x", uint32(hr))
	}

	var walker uintptr
	if err := vcall(obj, uiaGetRawViewWalker, uintptr(unsafe.Pointer(&walker))); err != nil {
		release(obj)
		return nil, fmt.Errorf("get raw view walker: %w", err)
	}

	au := &automation{uia: obj, walker: walker, input: newInputter()}
	return au, nil
}

// wrap takes ownership of a raw IUIAutomationElement pointer. The finalizer
// releases the COM reference once the Go handle is unreachable.
func (au *automation) wrap(ptr uintptr) *element {
	el := &element{au: au, ptr: ptr}
	runtime.SetFinalizer(el, func(e *element) { release(e.ptr) })
	return el
}

func (au *automation) elementFromHandle(hwnd uintptr) (*element, error) {
	var out uintptr
	if err := vcall(au.uia, uiaElementFromHandle, hwnd, uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, fmt.Errorf("element from handle %#x: %w", hwnd, err)
	}
	if out == 0 {
		return nil, fmt.Errorf("no element for handle %#x", hwnd)
	}
	return au.wrap(out), nil
}

func (au *automation) TopWindows() ([]platform.Window, error) {
	infos, err := enumTopWindows()
	if err != nil {
		return nil, err
	}
	wins := make([]platform.Window, 0, len(infos))
	for _, info := range infos {
		el, err := au.elementFromHandle(info.hwnd)
		if err != nil {
			// Windows can disappear between enumeration and wrapping.
			continue
		}
		wins = append(wins, &window{element: el, hwnd: info.hwnd})
	}
	return wins, nil
}

func (au *automation) WindowFromHandle(handle uintptr) (platform.Window, error) {
	if valid, _, _ := procIsWindow.Call(handle); valid == 0 {
		return nil, fmt.Errorf("window handle %#x is not valid", handle)
	}
	el, err := au.elementFromHandle(handle)
	if err != nil {
		return nil, err
	}
	return &window{element: el, hwnd: handle}, nil
}

func (au *automation) ElementFromPoint(x, y int) (platform.Element, error) {
	// POINT is 8 bytes, packed into one register by the x64 ABI.
	pt := uintptr(uint32(int32(x))) | uintptr(uint32(int32(y)))<<32
	var out uintptr
	if err := vcall(au.uia, uiaElementFromPoint, pt, uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, fmt.Errorf("element from point (%d,%d): %w", x, y, err)
	}
	if out == 0 {
		return nil, fmt.Errorf("no element at (%d,%d)", x, y)
	}
	return au.wrap(out), nil
}

// ContainingWindow ascends from el to its top-level window. Elements deep in
// a tree often have no native handle, so the walk climbs until one appears,
// then snaps to the root ancestor window.
func (au *automation) ContainingWindow(el platform.Element) (platform.Window, error) {
	cur, ok := el.(*element)
	if !ok {
		return nil, fmt.Errorf("element is not a uia element")
	}

	for hops := 0; hops < 64; hops++ {
		hwnd, err := cur.nativeHandle()
		if err == nil && hwnd != 0 {
			root, _, _ := procGetAncestor.Call(hwnd, gaRoot)
			if root == 0 {
				root = hwnd
			}
			return au.WindowFromHandle(root)
		}
		parent, err := cur.parentElement()
		if err != nil || parent == nil {
			break
		}
		cur = parent
	}
	return nil, fmt.Errorf("no containing window found")
}

func (au *automation) CursorPos() (int, int, error) {
	return cursorPos()
}

// element is one UIA accessibility node.
type element struct {
	au  *automation
	ptr uintptr
}

var (
	_ platform.Element     = (*element)(nil)
	_ platform.ChildFinder = (*element)(nil)
)

func (e *element) getString(slot int) (string, error) {
	var b uintptr
	if err := vcall(e.ptr, slot, uintptr(unsafe.Pointer(&b))); err != nil {
		return "", err
	}
	s := stringFromBSTR(b)
	runtime.KeepAlive(e)
	return s, nil
}

func (e *element) Attributes() (platform.Attributes, error) {
	name, err := e.getString(elGetCurrentName)
	if err != nil {
		return platform.Attributes{}, fmt.Errorf("read name: %w", err)
	}
	autoID, err := e.getString(elGetCurrentAutomationID)
	if err != nil {
		return platform.Attributes{}, fmt.Errorf("read automation id: %w", err)
	}
	class, err := e.getString(elGetCurrentClassName)
	if err != nil {
		return platform.Attributes{}, fmt.Errorf("read class name: %w", err)
	}

	var typeID int32
	if err := vcall(e.ptr, elGetCurrentControlType, uintptr(unsafe.Pointer(&typeID))); err != nil {
		return platform.Attributes{}, fmt.Errorf("read control type: %w", err)
	}
	ctype := controlTypeNames[typeID]
	if ctype == "" {
		ctype = fmt.Sprintf("ControlType%d", typeID)
	}
	runtime.KeepAlive(e)

	return platform.Attributes{
		Name:         name,
		ControlType:  ctype,
		AutomationID: autoID,
		ClassName:    class,
	}, nil
}

func (e *element) parentElement() (*element, error) {
	var out uintptr
	if err := vcall(e.au.walker, walkerGetParent, e.ptr, uintptr(unsafe.Pointer(&out))); err != nil {
		return nil, fmt.Errorf("walk to parent: %w", err)
	}
	runtime.KeepAlive(e)
	if out == 0 {
		return nil, nil
	}
	return e.au.wrap(out), nil
}

func (e *element) Parent() (platform.Element, error) {
	p, err := e.parentElement()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return p, nil
}

func (e *element) Children() ([]platform.Element, error) {
	var out []platform.Element

	var child uintptr
	if err := vcall(e.au.walker, walkerGetFirstChild, e.ptr, uintptr(unsafe.Pointer(&child))); err != nil {
		return nil, fmt.Errorf("walk to first child: %w", err)
	}
	for child != 0 {
		cur := e.au.wrap(child)
		out = append(out, cur)

		var next uintptr
		if err := vcall(e.au.walker, walkerGetNextSib, cur.ptr, uintptr(unsafe.Pointer(&next))); err != nil {
			break
		}
		child = next
	}
	runtime.KeepAlive(e)
	return out, nil
}

func (e *element) Rect() (platform.Bounds, error) {
	var r rect
	if err := vcall(e.ptr, elGetCurrentBoundingRectangle, uintptr(unsafe.Pointer(&r))); err != nil {
		return platform.Bounds{}, fmt.Errorf("read bounding rectangle: %w", err)
	}
	runtime.KeepAlive(e)
	return platform.Bounds{
		X:      int(r.left),
		Y:      int(r.top),
		Width:  int(r.right - r.left),
		Height: int(r.bottom - r.top),
	}, nil
}

func (e *element) SameAs(other platform.Element) bool {
	o, ok := other.(*element)
	if !ok {
		return false
	}
	var same int32
	if err := vcall(e.au.uia, uiaCompareElements, e.ptr, o.ptr, uintptr(unsafe.Pointer(&same))); err != nil {
		return false
	}
	runtime.KeepAlive(e)
	runtime.KeepAlive(o)
	return same != 0
}

func (e *element) nativeHandle() (uintptr, error) {
	var hwnd uintptr
	if err := vcall(e.ptr, elGetCurrentNativeWindowHwnd, uintptr(unsafe.Pointer(&hwnd))); err != nil {
		return 0, err
	}
	runtime.KeepAlive(e)
	return hwnd, nil
}

func (e *element) pattern(patternID int32, iid *guid) (uintptr, error) {
	var out uintptr
	err := vcall(e.ptr, elGetCurrentPatternAs,
		uintptr(patternID),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&out)))
	runtime.KeepAlive(e)
	if err != nil {
		return 0, err
	}
	if out == 0 {
		return 0, fmt.Errorf("pattern %d not supported", patternID)
	}
	return out, nil
}

// Click invokes the element through the Invoke pattern. Elements without the
// pattern (custom-drawn surfaces) get a raw click at their center instead.
func (e *element) Click() error {
	if pat, err := e.pattern(patternInvoke, &iidInvokePattern); err == nil {
		defer release(pat)
		if err := vcall(pat, invokePatternInvoke); err != nil {
			return fmt.Errorf("invoke: %w", err)
		}
		return nil
	}

	bounds, err := e.Rect()
	if err != nil {
		return fmt.Errorf("click fallback: %w", err)
	}
	cx, cy := bounds.Center()
	return e.au.input.ClickAt(cx, cy, platform.ButtonLeft)
}

func (e *element) SetText(text string) error {
	pat, err := e.pattern(patternValue, &iidValuePattern)
	if err != nil {
		return fmt.Errorf("element does not accept text: %w", err)
	}
	defer release(pat)

	b, err := bstrFromString(text)
	if err != nil {
		return err
	}
	defer procSysFreeString.Call(b)

	if err := vcall(pat, valuePatternSetValue, b); err != nil {
		return fmt.Errorf("set value: %w", err)
	}
	return nil
}

func (e *element) Focus() error {
	if err := vcall(e.ptr, elSetFocus); err != nil {
		return fmt.Errorf("set focus: %w", err)
	}
	runtime.KeepAlive(e)
	return nil
}

// ChildByAttrs is the indexed lookup fast path: UIA property conditions
// evaluated engine-side, avoiding a cross-process walk per child.
func (e *element) ChildByAttrs(attrs platform.Attributes) (platform.Element, error) {
	cond, err := e.buildCondition(attrs)
	if err != nil {
		return nil, err
	}
	defer release(cond)

	var found uintptr
	if err := vcall(e.ptr, elFindFirst, treeScopeDescendants, cond, uintptr(unsafe.Pointer(&found))); err != nil {
		return nil, fmt.Errorf("find first: %w", err)
	}
	runtime.KeepAlive(e)
	if found == 0 {
		return nil, fmt.Errorf("no descendant matched %+v", attrs)
	}
	return e.au.wrap(found), nil
}

func (e *element) propertyCondition(prop int32, v *variant) (uintptr, error) {
	var cond uintptr
	err := vcall(e.au.uia, uiaCreatePropertyCondition,
		uintptr(prop),
		uintptr(unsafe.Pointer(v)), // VARIANT passed by reference per x64 ABI
		uintptr(unsafe.Pointer(&cond)))
	if err != nil {
		return 0, fmt.Errorf("create property condition %d: %w", prop, err)
	}
	return cond, nil
}

func (e *element) stringCondition(prop int32, value string) (uintptr, error) {
	b, err := bstrFromString(value)
	if err != nil {
		return 0, err
	}
	v := variant{vt: vtBSTR, val: b}
	cond, err := e.propertyCondition(prop, &v)
	procVariantClear.Call(uintptr(unsafe.Pointer(&v)))
	return cond, err
}

// buildCondition ands together a property condition per set attribute field.
func (e *element) buildCondition(attrs platform.Attributes) (uintptr, error) {
	var conds []uintptr
	fail := func(err error) (uintptr, error) {
		for _, c := range conds {
			release(c)
		}
		return 0, err
	}

	if attrs.AutomationID != "" {
		c, err := e.stringCondition(propAutomationID, attrs.AutomationID)
		if err != nil {
			return fail(err)
		}
		conds = append(conds, c)
	}
	if attrs.Name != "" {
		c, err := e.stringCondition(propName, attrs.Name)
		if err != nil {
			return fail(err)
		}
		conds = append(conds, c)
	}
	if attrs.ControlType != "" {
		id, ok := controlTypeIDs[attrs.ControlType]
		if !ok {
			return fail(fmt.Errorf("unknown control type %q", attrs.ControlType))
		}
		v := variant{vt: vtI4, val: uintptr(uint32(id))}
		c, err := e.propertyCondition(propControlType, &v)
		if err != nil {
			return fail(err)
		}
		conds = append(conds, c)
	}
	if len(conds) == 0 {
		return 0, fmt.Errorf("no attributes to match")
	}

	combined := conds[0]
	for i, c := range conds[1:] {
		var next uintptr
		err := vcall(e.au.uia, uiaCreateAndCondition, combined, c, uintptr(unsafe.Pointer(&next)))
		release(combined)
		release(c)
		if err != nil {
			for _, rest := range conds[i+2:] {
				release(rest)
			}
			return 0, fmt.Errorf("create and condition: %w", err)
		}
		combined = next
	}
	return combined, nil
}
