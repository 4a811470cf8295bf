package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// wailsWindow drives the application window through the Wails runtime.
type wailsWindow struct {
	ctx  context.Context
	hook PlatformHook
	log  zerolog.Logger

	mutex  sync.RWMutex
	closed bool
}

var _ HostWindow = (*wailsWindow)(nil)

func newWailsWindow(ctx context.Context, hook PlatformHook, log zerolog.Logger) *wailsWindow {
	if hook == nil {
		hook = noopHook{}
	}
	return &wailsWindow{ctx: ctx, hook: hook, log: componentLogger(log, "host")}
}

// markClosed makes every later call a no-op; the runtime context outlives
// the native window during shutdown.
func (w *wailsWindow) markClosed() {
	w.mutex.Lock()
	w.closed = true
	w.mutex.Unlock()
}

// Alive reports whether the window can still be operated on.
func (w *wailsWindow) Alive() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.ctx != nil && !w.closed
}

func (w *wailsWindow) Show() {
	if w.Alive() {
		wailsRuntime.WindowShow(w.ctx)
	}
}

// Focus raises the window, forcing focus where the platform allows it.
func (w *wailsWindow) Focus() {
	if !w.Alive() {
		return
	}
	wailsRuntime.WindowShow(w.ctx)
	w.hook.ForceFocus()
}

func (w *wailsWindow) Bounds() WindowBounds {
	if !w.Alive() {
		return WindowBounds{}
	}
	x, y := wailsRuntime.WindowGetPosition(w.ctx)
	width, height := wailsRuntime.WindowGetSize(w.ctx)
	return WindowBounds{X: intPtr(x), Y: intPtr(y), Width: width, Height: height}
}

func (w *wailsWindow) SetBounds(b WindowBounds) {
	if !w.Alive() {
		return
	}
	wailsRuntime.WindowSetSize(w.ctx, b.Width, b.Height)
	if b.HasPosition() {
		wailsRuntime.WindowSetPosition(w.ctx, *b.X, *b.Y)
	}
}

func (w *wailsWindow) IsFullscreen() bool {
	return w.Alive() && wailsRuntime.WindowIsFullscreen(w.ctx)
}

func (w *wailsWindow) IsMaximised() bool {
	return w.Alive() && wailsRuntime.WindowIsMaximised(w.ctx)
}

func (w *wailsWindow) Unmaximise() {
	if w.Alive() {
		wailsRuntime.WindowUnmaximise(w.ctx)
	}
}

func (w *wailsWindow) SetFullscreen(on bool) {
	if !w.Alive() {
		return
	}
	if on {
		wailsRuntime.WindowFullscreen(w.ctx)
	} else {
		wailsRuntime.WindowUnfullscreen(w.ctx)
	}
}

// SetAspectRatio hands the ratio to the platform hook for live enforcement.
// Elsewhere the controller snaps the height after each resize.
func (w *wailsWindow) SetAspectRatio(r AspectRatio) {
	w.hook.SetAspectRatio(r)
}

func (w *wailsWindow) SetAlwaysOnTop(on bool) {
	if w.Alive() {
		wailsRuntime.WindowSetAlwaysOnTop(w.ctx, on)
	}
}

func (w *wailsWindow) Quit() {
	if w.Alive() {
		wailsRuntime.Quit(w.ctx)
	}
}
