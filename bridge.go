package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// BridgeRequestEvent is the single Wails event the shell page uses to send
// requests. Its payload is the request channel name.
const BridgeRequestEvent = "bridge:request"

// ErrUnknownChannel is returned for channel names outside the allow-list.
var ErrUnknownChannel = errors.New("unknown bridge channel")

// Request is a privileged action the hosted content may ask for.
type Request int

const (
	RequestToggleFullscreen Request = iota + 1
	RequestQuitApp
	RequestShowContextMenu
)

// Channel returns the wire name of the request.
func (r Request) Channel() string {
	switch r {
	case RequestToggleFullscreen:
		return "toggle-fullscreen"
	case RequestQuitApp:
		return "quit-app"
	case RequestShowContextMenu:
		return "show-context-menu"
	default:
		return ""
	}
}

func (r Request) String() string {
	if ch := r.Channel(); ch != "" {
		return ch
	}
	return fmt.Sprintf("Request(%d)", int(r))
}

// allRequests is the content-to-host allow-list.
var allRequests = []Request{RequestToggleFullscreen, RequestQuitApp, RequestShowContextMenu}

// ParseRequest maps a wire channel name onto a Request.
func ParseRequest(channel string) (Request, error) {
	for _, r := range allRequests {
		if r.Channel() == channel {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
}

// Notification is a message from the host to the hosted content. The
// unexported method closes the set to the types declared in this file.
type Notification interface {
	Channel() string
	Payload() interface{}
	notification()
}

// FullscreenStateChanged tells the content whether the window is fullscreen.
type FullscreenStateChanged struct {
	Fullscreen bool
}

func (FullscreenStateChanged) Channel() string        { return "fullscreen-state-changed" }
func (n FullscreenStateChanged) Payload() interface{} { return n.Fullscreen }
func (FullscreenStateChanged) notification()          {}

// NotificationSink delivers notifications to the hosted content.
type NotificationSink interface {
	Send(n Notification)
}

// WindowControls is what the bridge and the context menu may do to the window.
type WindowControls interface {
	IsFullscreen() bool
	ToggleFullscreen()
	AlwaysOnTop() bool
	SetAlwaysOnTop(on bool)
	Quit()
}

// MenuPresenter displays the context menu.
type MenuPresenter interface {
	Present(controls WindowControls)
}

// emitFunc matches runtime.EventsEmit with the context already bound.
type emitFunc func(eventName string, data ...interface{})

// Bridge is the only path between the hosted content and the window.
type Bridge struct {
	controls WindowControls
	menu     MenuPresenter
	emit     emitFunc
	log      zerolog.Logger
}

// NewBridge creates a bridge dispatching to controls. emit may be nil until
// the runtime context exists; notifications sent before that are dropped.
func NewBridge(controls WindowControls, menu MenuPresenter, emit emitFunc, log zerolog.Logger) *Bridge {
	return &Bridge{
		controls: controls,
		menu:     menu,
		emit:     emit,
		log:      componentLogger(log, "bridge"),
	}
}

// Listen subscribes to requests from the page. The returned function
// unsubscribes.
func (b *Bridge) Listen(ctx context.Context) func() {
	b.emit = func(eventName string, data ...interface{}) {
		wailsRuntime.EventsEmit(ctx, eventName, data...)
	}
	return wailsRuntime.EventsOn(ctx, BridgeRequestEvent, b.HandleWire)
}

// HandleWire validates a raw event payload and dispatches it.
func (b *Bridge) HandleWire(data ...interface{}) {
	if len(data) != 1 {
		b.log.Warn().Int("args", len(data)).Msg("rejected bridge request: expected a single channel name")
		return
	}
	channel, ok := data[0].(string)
	if !ok {
		b.log.Warn().Str("type", fmt.Sprintf("%T", data[0])).Msg("rejected bridge request: channel is not a string")
		return
	}
	req, err := ParseRequest(channel)
	if err != nil {
		b.log.Warn().Str("channel", channel).Msg("rejected bridge request on unknown channel")
		return
	}
	b.Dispatch(req)
}

// Dispatch performs a parsed request.
func (b *Bridge) Dispatch(r Request) {
	b.log.Debug().Stringer("request", r).Msg("bridge request")
	switch r {
	case RequestToggleFullscreen:
		b.controls.ToggleFullscreen()
	case RequestQuitApp:
		b.controls.Quit()
	case RequestShowContextMenu:
		if b.menu == nil {
			b.log.Warn().Msg("no context menu presenter")
			return
		}
		b.menu.Present(b.controls)
	default:
		b.log.Error().Int("request", int(r)).Msg("unhandled bridge request")
	}
}

// Send implements NotificationSink.
func (b *Bridge) Send(n Notification) {
	if b.emit == nil {
		b.log.Debug().Str("channel", n.Channel()).Msg("notification dropped: runtime not ready")
		return
	}
	b.emit(n.Channel(), n.Payload())
}
