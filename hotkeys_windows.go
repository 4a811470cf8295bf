//go:build windows

package main

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

const (
	wmHotkey = 0x0312
	wmQuit   = 0x0012
)

var (
	user32                = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey    = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey  = user32.NewProc("UnregisterHotKey")
	procGetMessageW       = user32.NewProc("GetMessageW")
	procPostThreadMessage = user32.NewProc("PostThreadMessageW")
)

type winMsg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       struct{ x, y int32 }
	lPrivate uint32
}

// win32Hotkeys runs each registration on its own locked OS thread, since
// WM_HOTKEY is posted to the thread that registered the key.
type win32Hotkeys struct {
	log     zerolog.Logger
	mutex   sync.Mutex
	nextID  uintptr
	threads []uint32
	wg      sync.WaitGroup
}

func newHotkeyRegistrar(log zerolog.Logger) HotkeyRegistrar {
	return &win32Hotkeys{log: componentLogger(log, "hotkeys"), nextID: 1}
}

// Register implements HotkeyRegistrar.
func (h *win32Hotkeys) Register(seq KeySequence, fn func()) error {
	vk, ok := seq.virtualKey()
	if !ok {
		return fmt.Errorf("key %q has no virtual key code", seq.Key)
	}

	h.mutex.Lock()
	id := h.nextID
	h.nextID++
	h.mutex.Unlock()

	type started struct {
		tid uint32
		err error
	}
	ready := make(chan started, 1)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		tid := windows.GetCurrentThreadId()
		r, _, callErr := procRegisterHotKey.Call(0, id, uintptr(seq.win32Modifiers()), uintptr(vk))
		if r == 0 {
			ready <- started{err: fmt.Errorf("RegisterHotKey %s: %w", seq, callErr)}
			return
		}
		ready <- started{tid: tid}
		defer procUnregisterHotKey.Call(0, id)

		var m winMsg
		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				return
			}
			if m.message == wmHotkey && m.wParam == id {
				h.log.Debug().Stringer("key", seq).Msg("hotkey pressed")
				fn()
			}
		}
	}()

	s := <-ready
	if s.err != nil {
		return s.err
	}
	h.mutex.Lock()
	h.threads = append(h.threads, s.tid)
	h.mutex.Unlock()
	h.log.Info().Stringer("key", seq).Msg("registered global hotkey")
	return nil
}

// Close implements HotkeyRegistrar.
func (h *win32Hotkeys) Close() {
	h.mutex.Lock()
	threads := h.threads
	h.threads = nil
	h.mutex.Unlock()

	for _, tid := range threads {
		procPostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
	}
	h.wg.Wait()
	if len(threads) > 0 {
		h.log.Info().Msg("global hotkeys unregistered")
	}
}
