//go:build darwin

package main

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.design/x/hotkey"
)

// carbonHotkeys binds keys through RegisterEventHotKey, which needs no
// accessibility permission. The library registers on the main queue, so the
// calls run on their own goroutines to stay clear of the Cocoa run loop.
type carbonHotkeys struct {
	log   zerolog.Logger
	mutex sync.Mutex
	keys  []*hotkey.Hotkey
	done  chan struct{}
	once  sync.Once
}

func newHotkeyRegistrar(log zerolog.Logger) HotkeyRegistrar {
	return &carbonHotkeys{log: componentLogger(log, "hotkeys"), done: make(chan struct{})}
}

func carbonModifiers(seq KeySequence) []hotkey.Modifier {
	var mods []hotkey.Modifier
	for _, m := range seq.Modifiers {
		switch m {
		case ModControl:
			mods = append(mods, hotkey.ModCtrl)
		case ModShift:
			mods = append(mods, hotkey.ModShift)
		case ModAlt:
			mods = append(mods, hotkey.ModOption)
		case ModSuper:
			mods = append(mods, hotkey.ModCmd)
		}
	}
	return mods
}

// Register implements HotkeyRegistrar. Registration completes in the
// background; a failure there is logged.
func (h *carbonHotkeys) Register(seq KeySequence, fn func()) error {
	code, ok := seq.carbonKeyCode()
	if !ok {
		return fmt.Errorf("key %q has no macOS key code", seq.Key)
	}
	hk := hotkey.New(carbonModifiers(seq), hotkey.Key(code))

	go func() {
		if err := hk.Register(); err != nil {
			h.log.Error().Err(err).Stringer("key", seq).Msg("failed to register hotkey")
			return
		}
		h.mutex.Lock()
		h.keys = append(h.keys, hk)
		h.mutex.Unlock()
		h.log.Info().Stringer("key", seq).Msg("hotkey registered")

		for {
			select {
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				h.log.Debug().Stringer("key", seq).Msg("hotkey pressed")
				fn()
			case <-h.done:
				return
			}
		}
	}()
	return nil
}

// Close implements HotkeyRegistrar.
func (h *carbonHotkeys) Close() {
	h.once.Do(func() {
		close(h.done)
		h.mutex.Lock()
		keys := h.keys
		h.keys = nil
		h.mutex.Unlock()
		// Unregister also hops to the main queue, which is busy tearing down.
		go func() {
			for _, hk := range keys {
				if err := hk.Unregister(); err != nil {
					h.log.Debug().Err(err).Msg("hotkey unregister failed")
				}
			}
		}()
	})
}
