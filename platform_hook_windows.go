//go:build windows

package main

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"golang.org/x/sys/windows"
)

const (
	gwlpWndProc = -4
	gwlStyle    = -16

	wsMaximizeBox = 0x00010000

	wmNCRButtonUp = 0x00A5
	wmSysCommand  = 0x0112
	wmSizing      = 0x0214
	wmApp         = 0x8000
	wmShowPopup   = wmApp + 1

	scKeyMenu   = 0xF100
	scMouseMenu = 0xF090
	htCaption   = 2

	wmszLeft        = 1
	wmszRight       = 2
	wmszTop         = 3
	wmszTopLeft     = 4
	wmszTopRight    = 5
	wmszBottom      = 6
	wmszBottomLeft  = 7
	wmszBottomRight = 8

	mfString    = 0x0000
	mfChecked   = 0x0008
	mfSeparator = 0x0800

	tpmRightButton = 0x0002
	tpmReturnCmd   = 0x0100

	swpNoSize       = 0x0001
	swpNoMove       = 0x0002
	swpNoZOrder     = 0x0004
	swpNoActivate   = 0x0010
	swpFrameChanged = 0x0020
	swRestore       = 9
)

var (
	procFindWindowW              = user32.NewProc("FindWindowW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetWindowLongPtrW        = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW        = user32.NewProc("SetWindowLongPtrW")
	procCallWindowProcW          = user32.NewProc("CallWindowProcW")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procPostMessageW             = user32.NewProc("PostMessageW")
	procCreatePopupMenu          = user32.NewProc("CreatePopupMenu")
	procAppendMenuW              = user32.NewProc("AppendMenuW")
	procTrackPopupMenu           = user32.NewProc("TrackPopupMenu")
	procDestroyMenu              = user32.NewProc("DestroyMenu")
	procGetCursorPos             = user32.NewProc("GetCursorPos")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop         = user32.NewProc("BringWindowToTop")
	procShowWindow               = user32.NewProc("ShowWindow")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
)

type winRect struct {
	left, top, right, bottom int32
}

type winPoint struct {
	x, y int32
}

// win32Hook subclasses the Wails window procedure.
type win32Hook struct {
	log zerolog.Logger

	mutex        sync.Mutex
	hwnd         uintptr
	oldProc      uintptr
	ratio        AspectRatio
	pending      *menu.Menu
	onSystemMenu func()
}

var (
	// The window procedure callback can only be created a limited number of
	// times per process, so there is one and it routes to activeHook.
	wndProcOnce     sync.Once
	wndProcCallback uintptr
	activeHook      atomic.Pointer[win32Hook]
)

func newPlatformHook(log zerolog.Logger) PlatformHook {
	return &win32Hook{log: componentLogger(log, "hook")}
}

// Attach implements PlatformHook.
func (h *win32Hook) Attach(title string) error {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return fmt.Errorf("invalid window title %q: %w", title, err)
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return fmt.Errorf("%w: no window titled %q", ErrWindowGone, title)
	}
	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if int(pid) != os.Getpid() {
		return fmt.Errorf("window %q belongs to process %d", title, pid)
	}

	wndProcOnce.Do(func() {
		wndProcCallback = windows.NewCallback(wndProc)
	})

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.hwnd != 0 {
		return errors.New("hook already attached")
	}
	h.hwnd = hwnd
	activeHook.Store(h)

	// Frameless windows keep the maximise box, which makes the drag region
	// maximise on double click.
	gwl := gwlStyle
	style, _, _ := procGetWindowLongPtrW.Call(hwnd, uintptr(gwl))
	procSetWindowLongPtrW.Call(hwnd, uintptr(gwl), style&^wsMaximizeBox)
	procSetWindowPos.Call(hwnd, 0, 0, 0, 0, 0, swpNoMove|swpNoSize|swpNoZOrder|swpNoActivate|swpFrameChanged)

	idx := gwlpWndProc
	h.oldProc, _, _ = procSetWindowLongPtrW.Call(hwnd, uintptr(idx), wndProcCallback)
	if h.oldProc == 0 {
		h.hwnd = 0
		activeHook.Store(nil)
		return errors.New("failed to subclass window procedure")
	}
	h.log.Info().Msg("window hook attached")
	return nil
}

// Detach implements PlatformHook.
func (h *win32Hook) Detach() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.hwnd == 0 {
		return
	}
	idx := gwlpWndProc
	procSetWindowLongPtrW.Call(h.hwnd, uintptr(idx), h.oldProc)
	h.hwnd = 0
	activeHook.Store(nil)
	h.log.Debug().Msg("window hook detached")
}

// ForceFocus implements PlatformHook. Foreground changes are refused unless
// the calling thread shares input state with the current foreground window.
func (h *win32Hook) ForceFocus() {
	h.mutex.Lock()
	hwnd := h.hwnd
	h.mutex.Unlock()
	if hwnd == 0 {
		return
	}

	fg, _, _ := procGetForegroundWindow.Call()
	fgThread, _, _ := procGetWindowThreadProcessId.Call(fg, 0)
	ourThread, _, _ := procGetWindowThreadProcessId.Call(hwnd, 0)
	if fgThread != 0 && fgThread != ourThread {
		procAttachThreadInput.Call(fgThread, ourThread, 1)
		defer procAttachThreadInput.Call(fgThread, ourThread, 0)
	}
	procShowWindow.Call(hwnd, swRestore)
	procBringWindowToTop.Call(hwnd)
	procSetForegroundWindow.Call(hwnd)
}

// SetAspectRatio implements PlatformHook.
func (h *win32Hook) SetAspectRatio(r AspectRatio) {
	h.mutex.Lock()
	h.ratio = r
	h.mutex.Unlock()
}

// OnSystemMenu implements PlatformHook.
func (h *win32Hook) OnSystemMenu(fn func()) {
	h.mutex.Lock()
	h.onSystemMenu = fn
	h.mutex.Unlock()
}

// PopupMenu implements PlatformHook. The menu is shown from the window
// procedure because TrackPopupMenu must run on the window's thread.
func (h *win32Hook) PopupMenu(m *menu.Menu) bool {
	h.mutex.Lock()
	hwnd := h.hwnd
	h.pending = m
	h.mutex.Unlock()
	if hwnd == 0 {
		return false
	}
	r, _, _ := procPostMessageW.Call(hwnd, wmShowPopup, 0, 0)
	return r != 0
}

func wndProc(hwnd, msg, wParam, lParam uintptr) uintptr {
	h := activeHook.Load()
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	oldProc := h.oldProc
	ratio := h.ratio
	onSystemMenu := h.onSystemMenu
	h.mutex.Unlock()

	switch msg {
	case wmSizing:
		if ratio.Width > 0 && ratio.Height > 0 {
			constrainSizingRect(wParam, (*winRect)(unsafe.Pointer(lParam)), ratio)
			return 1
		}
	case wmSysCommand:
		if cmd := wParam & 0xFFF0; (cmd == scKeyMenu || cmd == scMouseMenu) && onSystemMenu != nil {
			// Runs off the UI thread: building the menu reads controller
			// state, which may be waiting on this thread.
			go onSystemMenu()
			return 0
		}
	case wmNCRButtonUp:
		if wParam == htCaption && onSystemMenu != nil {
			go onSystemMenu()
			return 0
		}
	case wmShowPopup:
		h.showPending(hwnd)
		return 0
	}
	r, _, _ := procCallWindowProcW.Call(oldProc, hwnd, msg, wParam, lParam)
	return r
}

// constrainSizingRect adjusts the rectangle being dragged so it keeps ratio.
// Dragging a horizontal edge drives the width; any other edge drives height.
func constrainSizingRect(edge uintptr, rc *winRect, ratio AspectRatio) {
	width := rc.right - rc.left
	height := rc.bottom - rc.top
	switch edge {
	case wmszTop, wmszBottom:
		rc.right = rc.left + int32(float64(height)*ratio.Value()+0.5)
	case wmszTopLeft, wmszTopRight:
		rc.top = rc.bottom - int32(ratio.HeightFor(int(width)))
	case wmszLeft, wmszRight, wmszBottomLeft, wmszBottomRight:
		rc.bottom = rc.top + int32(ratio.HeightFor(int(width)))
	}
}

// showPending displays the queued menu and runs the chosen item.
func (h *win32Hook) showPending(hwnd uintptr) {
	h.mutex.Lock()
	m := h.pending
	h.pending = nil
	h.mutex.Unlock()
	if m == nil {
		return
	}

	hmenu, _, _ := procCreatePopupMenu.Call()
	if hmenu == 0 {
		h.log.Error().Msg("CreatePopupMenu failed")
		return
	}
	defer procDestroyMenu.Call(hmenu)

	items := m.Items
	for i, item := range items {
		id := uintptr(i + 1)
		switch item.Type {
		case menu.SeparatorType:
			procAppendMenuW.Call(hmenu, mfSeparator, 0, 0)
		case menu.CheckboxType, menu.TextType:
			flags := uintptr(mfString)
			if item.Type == menu.CheckboxType && item.Checked {
				flags |= mfChecked
			}
			label, err := windows.UTF16PtrFromString(item.Label)
			if err != nil {
				continue
			}
			procAppendMenuW.Call(hmenu, flags, id, uintptr(unsafe.Pointer(label)))
		}
	}

	var pt winPoint
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	procSetForegroundWindow.Call(hwnd)
	cmd, _, _ := procTrackPopupMenu.Call(hmenu, tpmReturnCmd|tpmRightButton,
		uintptr(pt.x), uintptr(pt.y), 0, hwnd, 0)
	if cmd == 0 || int(cmd) > len(items) {
		return
	}
	item := items[cmd-1]
	if item.Click != nil {
		go item.Click(&menu.CallbackData{MenuItem: item})
	}
}
