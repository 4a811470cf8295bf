//go:build linux

package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"
)

// x11Hotkeys grabs keys on the X root window. It needs an X server; under
// Wayland it works through XWayland only.
type x11Hotkeys struct {
	log   zerolog.Logger
	mutex sync.Mutex
	xu    *xgbutil.XUtil
	root  xproto.Window
	done  chan struct{}
}

func newHotkeyRegistrar(log zerolog.Logger) HotkeyRegistrar {
	return &x11Hotkeys{log: componentLogger(log, "hotkeys")}
}

// connectLocked opens the X connection and starts its event loop on first use.
func (h *x11Hotkeys) connectLocked() error {
	if h.xu != nil {
		return nil
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}
	keybind.Initialize(xu)
	configureIgnoreMods(xu)

	h.xu = xu
	h.root = xu.RootWin()
	h.done = make(chan struct{})
	go func() {
		defer close(h.done)
		xevent.Main(xu)
	}()
	return nil
}

// Register implements HotkeyRegistrar.
func (h *x11Hotkeys) Register(seq KeySequence, fn func()) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if err := h.connectLocked(); err != nil {
		return err
	}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.log.Debug().Stringer("key", seq).Msg("hotkey pressed")
		fn()
	}).Connect(h.xu, h.root, seq.String(), true)
	if err != nil {
		return fmt.Errorf("failed to grab %s: %w", seq, err)
	}
	h.log.Info().Stringer("key", seq).Msg("registered global hotkey")
	return nil
}

// Close implements HotkeyRegistrar.
func (h *x11Hotkeys) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.xu == nil {
		return
	}
	keybind.Detach(h.xu, h.root)
	xevent.Quit(h.xu)
	h.xu.Conn().Close()
	select {
	case <-h.done:
	case <-time.After(WatcherStopWait):
		h.log.Warn().Msg("X event loop did not exit in time")
	}
	h.xu = nil
	h.log.Info().Msg("global hotkeys unregistered")
}

// configureIgnoreMods makes grabs fire regardless of lock key state.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	ignore := []uint16{0}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
