package main

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HostWindow is the part of the host windowing API the controller drives.
// Implementations must tolerate calls after the window is gone; the
// controller checks Alive first but a close can race with a timer.
type HostWindow interface {
	Alive() bool
	Show()
	Focus()
	Bounds() WindowBounds
	SetBounds(b WindowBounds)
	IsFullscreen() bool
	IsMaximised() bool
	Unmaximise()
	SetFullscreen(on bool)
	// SetAspectRatio constrains resizing to r; a zero ratio removes the constraint.
	SetAspectRatio(r AspectRatio)
	SetAlwaysOnTop(on bool)
	Quit()
}

// stopper is satisfied by *time.Timer.
type stopper interface {
	Stop() bool
}

// afterFunc schedules f after d. Tests swap it for a manual clock.
type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

// ControllerOptions configures a WindowController.
type ControllerOptions struct {
	AspectRatio  AspectRatio
	DefaultWidth int
	SaveDebounce time.Duration
	AlwaysOnTop  bool
}

// ControllerOptionsFromConfig derives controller options from the app config.
func ControllerOptionsFromConfig(cfg *AppConfig) ControllerOptions {
	return ControllerOptions{
		AspectRatio:  cfg.AspectRatio,
		DefaultWidth: cfg.DefaultWidth,
		SaveDebounce: cfg.SaveDebounce(),
		AlwaysOnTop:  cfg.AlwaysOnTop,
	}
}

// WindowController owns the single application window: its persisted
// geometry, aspect ratio, fullscreen state and always-on-top flag. All
// methods are serialized on one mutex, which stands in for the host's
// event loop.
type WindowController struct {
	opts  ControllerOptions
	store Store
	log   zerolog.Logger

	mutex         sync.Mutex
	window        HostWindow
	sink          NotificationSink
	fullscreen    bool
	aspectEnabled bool
	alwaysOnTop   bool
	shown         bool
	saveTimer     stopper
	saveGen       uint64
	after         afterFunc
}

// NewWindowController creates a controller. store may be nil when the
// persisted-state store could not be opened.
func NewWindowController(opts ControllerOptions, store Store, log zerolog.Logger) *WindowController {
	if opts.SaveDebounce <= 0 {
		opts.SaveDebounce = DefaultSaveDebounce
	}
	if opts.DefaultWidth <= MinRestorableSize {
		opts.DefaultWidth = DefaultWindowWidth
	}
	return &WindowController{
		opts:        opts,
		store:       store,
		log:         componentLogger(log, "window"),
		alwaysOnTop: opts.AlwaysOnTop,
		after:       realAfterFunc,
	}
}

// RestoreBounds reads the persisted geometry, falling back to the default
// bounds on any failure.
func (c *WindowController) RestoreBounds() WindowBounds {
	var stored *WindowBounds
	if c.store == nil {
		c.log.Warn().Msg("no state store, using default bounds")
	} else {
		var b WindowBounds
		ok, err := c.store.Get(WindowBoundsKey, &b)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Msg("failed to read window bounds, using defaults")
		case !ok:
			c.log.Info().Msg("no saved window bounds, using defaults")
		case !b.Restorable():
			c.log.Info().Stringer("bounds", b).Msg("saved window bounds too small, using defaults")
		default:
			stored = &b
		}
	}

	bounds := NormalizeBounds(stored, c.opts.DefaultWidth, c.opts.AspectRatio)
	c.log.Info().Stringer("bounds", bounds).Msg("restored window bounds")
	return bounds
}

// Attach binds the controller to the created window and the channel used to
// notify the hosted content. The aspect ratio is applied immediately.
func (c *WindowController) Attach(window HostWindow, sink NotificationSink) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.window = window
	c.sink = sink
	c.fullscreen = false
	c.shown = false
	if c.liveLocked("attach") {
		c.window.SetAspectRatio(c.opts.AspectRatio)
		c.aspectEnabled = true
	}
}

// liveLocked reports whether the window can be operated on, logging when not.
func (c *WindowController) liveLocked(op string) bool {
	if c.window == nil || !c.window.Alive() {
		c.log.Debug().Str("op", op).Msg("window gone, ignoring")
		return false
	}
	return true
}

// OnReady shows and focuses the window once the content surface can paint,
// then tells the content the current fullscreen state.
func (c *WindowController) OnReady() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.liveLocked("ready") {
		return
	}
	if c.shown {
		// Reloads of the page fire ready again; only resend the state.
		c.notifyLocked()
		return
	}
	c.window.Show()
	c.window.Focus()
	c.shown = true
	c.log.Info().Msg("window shown")
	c.notifyLocked()
}

func (c *WindowController) notifyLocked() {
	if c.sink == nil {
		return
	}
	c.sink.Send(FullscreenStateChanged{Fullscreen: c.fullscreen})
}

// HandleResize reacts to a host resize: snaps to the aspect ratio when it has
// drifted and schedules a debounced save.
func (c *WindowController) HandleResize() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.liveLocked("resize") {
		return
	}
	if c.aspectEnabled && !c.fullscreen && !c.window.IsMaximised() {
		b := c.window.Bounds()
		if want := c.opts.AspectRatio.HeightFor(b.Width); b.Height != want {
			b.Height = want
			c.window.SetBounds(b)
		}
	}
	c.scheduleSaveLocked()
}

// HandleMove schedules a debounced save.
func (c *WindowController) HandleMove() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.liveLocked("move") {
		return
	}
	c.scheduleSaveLocked()
}

// HandleMaximised undoes a maximise; the window is not maximisable.
func (c *WindowController) HandleMaximised() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.liveLocked("maximise") || c.fullscreen {
		return
	}
	c.log.Debug().Msg("window maximised, restoring")
	c.window.Unmaximise()
}

// scheduleSaveLocked replaces any pending save with a new one. A timer that
// already fired while the lock was held finds its generation superseded and
// does nothing.
func (c *WindowController) scheduleSaveLocked() {
	c.cancelSaveLocked()
	gen := c.saveGen
	c.saveTimer = c.after(c.opts.SaveDebounce, func() {
		c.mutex.Lock()
		defer c.mutex.Unlock()
		if gen != c.saveGen {
			return
		}
		c.saveTimer = nil
		c.saveLocked("debounce")
	})
}

func (c *WindowController) cancelSaveLocked() {
	c.saveGen++
	if c.saveTimer != nil {
		c.saveTimer.Stop()
		c.saveTimer = nil
	}
}

// saveLocked writes the current bounds unless the window is gone, fullscreen
// or maximised. Failures are logged and dropped.
func (c *WindowController) saveLocked(reason string) bool {
	log := c.log.With().Str("reason", reason).Logger()

	if c.window == nil || !c.window.Alive() {
		log.Debug().Msg("skip save: window gone")
		return false
	}
	if c.fullscreen || c.window.IsFullscreen() {
		log.Debug().Msg("skip save: fullscreen")
		return false
	}
	if c.window.IsMaximised() {
		log.Debug().Msg("skip save: maximised")
		return false
	}
	if c.store == nil {
		log.Debug().Msg("skip save: no store")
		return false
	}

	b := c.window.Bounds()
	if err := c.store.Set(WindowBoundsKey, b); err != nil {
		log.Error().Err(err).Stringer("bounds", b).Msg("failed to save window bounds")
		return false
	}
	log.Debug().Stringer("bounds", b).Msg("window bounds saved")
	return true
}

// HandleClose saves synchronously before the window goes away; a pending
// debounced save would not fire in time.
func (c *WindowController) HandleClose() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cancelSaveLocked()
	c.saveLocked("close")
}

// Shutdown is the quit-time counterpart of HandleClose. It also detaches the
// window so late callbacks become no-ops.
func (c *WindowController) Shutdown() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cancelSaveLocked()
	c.saveLocked("quit")
	c.window = nil
	c.sink = nil
}

// IsFullscreen returns the controller-owned fullscreen state.
func (c *WindowController) IsFullscreen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.fullscreen
}

// ToggleFullscreen flips between windowed and fullscreen.
func (c *WindowController) ToggleFullscreen() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.fullscreen {
		c.exitFullscreenLocked(true)
	} else {
		c.enterFullscreenLocked()
	}
}

// EnterFullscreen switches to fullscreen; a no-op when already there.
func (c *WindowController) EnterFullscreen() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.enterFullscreenLocked()
}

// ExitFullscreen returns to windowed mode; a no-op when already windowed.
func (c *WindowController) ExitFullscreen() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.exitFullscreenLocked(true)
}

// HostExitedFullscreen records a fullscreen exit the host performed on its
// own, such as a platform gesture.
func (c *WindowController) HostExitedFullscreen() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.exitFullscreenLocked(false)
}

func (c *WindowController) enterFullscreenLocked() {
	if c.fullscreen || !c.liveLocked("enter fullscreen") {
		return
	}
	c.cancelSaveLocked()
	if c.aspectEnabled {
		c.window.SetAspectRatio(AspectRatio{})
		c.aspectEnabled = false
	}
	c.window.SetFullscreen(true)
	c.fullscreen = true
	c.log.Info().Msg("entered fullscreen")
	c.notifyLocked()
}

func (c *WindowController) exitFullscreenLocked(driveHost bool) {
	if !c.fullscreen || !c.liveLocked("exit fullscreen") {
		return
	}
	if driveHost {
		c.window.SetFullscreen(false)
	}
	c.fullscreen = false
	if !c.aspectEnabled {
		c.window.SetAspectRatio(c.opts.AspectRatio)
		c.aspectEnabled = true
	}
	c.saveLocked("leave fullscreen")
	c.log.Info().Bool("host_initiated", !driveHost).Msg("left fullscreen")
	c.notifyLocked()
}

// AlwaysOnTop returns the current always-on-top flag.
func (c *WindowController) AlwaysOnTop() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.alwaysOnTop
}

// SetAlwaysOnTop pins or unpins the window above others.
func (c *WindowController) SetAlwaysOnTop(on bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.liveLocked("always on top") {
		return
	}
	c.window.SetAlwaysOnTop(on)
	c.alwaysOnTop = on
	c.log.Info().Bool("always_on_top", on).Msg("always-on-top changed")
}

// Quit terminates the application.
func (c *WindowController) Quit() {
	c.mutex.Lock()
	window := c.window
	live := c.liveLocked("quit")
	c.mutex.Unlock()

	if !live {
		return
	}
	c.log.Info().Msg("quit requested")
	// Quit re-enters Shutdown through the host, so it runs unlocked.
	window.Quit()
}

// ApplyStoredBounds moves the live window to the persisted geometry. Used when
// the state file is edited while the app runs.
func (c *WindowController) ApplyStoredBounds() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.liveLocked("apply stored bounds") || c.fullscreen || c.store == nil {
		return
	}
	var b WindowBounds
	ok, err := c.store.Get(WindowBoundsKey, &b)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to read edited window bounds")
		return
	}
	if !ok || !b.Restorable() {
		c.log.Info().Msg("edited window bounds not restorable, keeping current geometry")
		return
	}
	normalized := NormalizeBounds(&b, c.opts.DefaultWidth, c.opts.AspectRatio)
	c.window.SetBounds(normalized)
	c.log.Info().Stringer("bounds", normalized).Msg("applied edited window bounds")
}
