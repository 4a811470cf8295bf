package main

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// App wires the window controller, the bridge and the platform services to
// the Wails lifecycle.
type App struct {
	ctx    context.Context
	config *AppConfig
	store  *FileStore
	log    zerolog.Logger

	window   *WindowController
	bridge   *Bridge
	bounds   WindowBounds
	host     *wailsWindow
	hook     PlatformHook
	menu     MenuPresenter
	hotkeys  HotkeyRegistrar
	geometry *GeometryWatcher
	unlisten func()

	attachOnce sync.Once
}

// NewApp creates the application. store may be nil when the state store could
// not be opened; geometry then lives in memory only. The persisted bounds are
// read here so they are known before the window is created.
func NewApp(cfg *AppConfig, store *FileStore, log zerolog.Logger) *App {
	var s Store
	if store != nil {
		s = store
	}
	ctrl := NewWindowController(ControllerOptionsFromConfig(cfg), s, log)

	a := &App{
		config: cfg,
		store:  store,
		log:    componentLogger(log, "app"),
		window: ctrl,
		hook:   noopHook{},
	}
	a.bridge = NewBridge(ctrl, nil, nil, log)
	a.bounds = ctrl.RestoreBounds()
	return a
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	platform := GetPlatformInfo()
	a.log.Info().Stringer("version", GetVersionInfo()).EmbedObject(platform).Msg("starting")

	a.hook = newPlatformHook(a.log)
	a.host = newWailsWindow(ctx, a.hook, a.log)

	seq, err := ParseKeySequence(a.config.ToggleFullscreenKey)
	if err != nil {
		// Validate already rejected bad keys; fall back rather than fail.
		a.log.Warn().Err(err).Msg("bad toggle key, using default")
		seq, _ = ParseKeySequence(DefaultToggleKey)
	}

	a.menu = newMenuPresenter(ctx, a.hook, seq.Accelerator(), a.log)
	a.bridge.menu = a.menu
	a.unlisten = a.bridge.Listen(ctx)
	a.hook.OnSystemMenu(func() { a.menu.Present(a.window) })

	var sink NotificationSink = a.bridge
	if runtime.GOOS == PlatformDarwin {
		sink = &menuRefreshingSink{next: a.bridge, refresh: func() { a.menu.Present(a.window) }}
	}
	a.window.Attach(a.host, sink)
	a.host.SetBounds(a.bounds)
	if runtime.GOOS == PlatformDarwin {
		a.menu.Present(a.window)
	}

	if a.store != nil {
		a.store.OnExternalChange(func(key string) {
			if key == WindowBoundsKey {
				a.window.ApplyStoredBounds()
			}
		})
		if err := a.store.Watch(); err != nil {
			a.log.Warn().Err(err).Msg("state file watcher unavailable")
		}
	}

	if platform.GlobalHotkeySupported() {
		a.hotkeys = newHotkeyRegistrar(a.log)
		if err := a.hotkeys.Register(seq, a.window.ToggleFullscreen); err != nil {
			a.log.Warn().Err(err).Stringer("key", seq).Msg("failed to register fullscreen hotkey")
		}
	} else {
		a.log.Warn().Str("display", platform.DisplayServer).Msg("global hotkeys unavailable on this display server")
	}

	a.geometry = NewGeometryWatcher(a.host, a.window, a.config.PollInterval(), a.log)
	a.geometry.Start()
}

// domReady is called once the content surface can paint.
func (a *App) domReady(ctx context.Context) {
	a.attachOnce.Do(func() {
		err := a.hook.Attach(AppName)
		switch {
		case errors.Is(err, ErrWindowGone):
			a.log.Warn().Err(err).Msg("window hook unavailable: native window not found")
		case err != nil:
			a.log.Warn().Err(err).Msg("window hook unavailable")
		}
	})
	a.window.OnReady()
}

// beforeClose saves the geometry while the window still exists. Returning
// false lets the close proceed.
func (a *App) beforeClose(ctx context.Context) bool {
	a.window.HandleClose()
	return false
}

// shutdown is called during application shutdown
func (a *App) shutdown(ctx context.Context) {
	a.log.Info().Msg("shutdown initiated")

	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Interface("panic", r).Msg("recovered from panic during shutdown")
		}
	}()

	if a.geometry != nil {
		a.geometry.Stop()
	}
	a.window.Shutdown()
	if a.host != nil {
		a.host.markClosed()
	}
	if a.hotkeys != nil {
		a.hotkeys.Close()
	}
	if a.unlisten != nil {
		a.unlisten()
	}
	a.hook.Detach()
	if a.store != nil {
		a.store.Close()
	}

	a.log.Info().Msg("shutdown completed")
}

// menuRefreshingSink keeps the menu bar labels in step with the fullscreen
// state. The refresh runs on its own goroutine because Send is called with
// the controller busy.
type menuRefreshingSink struct {
	next    NotificationSink
	refresh func()
}

func (s *menuRefreshingSink) Send(n Notification) {
	s.next.Send(n)
	go s.refresh()
}
