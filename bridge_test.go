package main

import (
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeControls struct {
	fullscreen  bool
	alwaysOnTop bool
	toggles     int
	quits       int
	onTopCalls  []bool
}

func (c *fakeControls) IsFullscreen() bool     { return c.fullscreen }
func (c *fakeControls) ToggleFullscreen()      { c.toggles++; c.fullscreen = !c.fullscreen }
func (c *fakeControls) AlwaysOnTop() bool      { return c.alwaysOnTop }
func (c *fakeControls) SetAlwaysOnTop(on bool) { c.onTopCalls = append(c.onTopCalls, on); c.alwaysOnTop = on }
func (c *fakeControls) Quit()                  { c.quits++ }
func (c *fakeControls) untouched() bool        { return c.toggles == 0 && c.quits == 0 && len(c.onTopCalls) == 0 }

type countingPresenter struct {
	presented int
}

func (p *countingPresenter) Present(WindowControls) { p.presented++ }

type emitted struct {
	event string
	data  []interface{}
}

func newTestBridge(buf io.Writer) (*Bridge, *fakeControls, *countingPresenter, *[]emitted) {
	controls := &fakeControls{}
	menu := &countingPresenter{}
	var sent []emitted
	emit := func(event string, data ...interface{}) {
		sent = append(sent, emitted{event: event, data: data})
	}
	return NewBridge(controls, menu, emit, zerolog.New(buf)), controls, menu, &sent
}

func TestParseRequest(t *testing.T) {
	for _, r := range allRequests {
		got, err := ParseRequest(r.Channel())
		if err != nil || got != r {
			t.Errorf("ParseRequest(%q) = %v, %v", r.Channel(), got, err)
		}
	}

	for _, bad := range []string{"", "evil-channel", "Toggle-Fullscreen", "toggle-fullscreen "} {
		if _, err := ParseRequest(bad); !errors.Is(err, ErrUnknownChannel) {
			t.Errorf("ParseRequest(%q) error = %v, want ErrUnknownChannel", bad, err)
		}
	}
}

func TestBridgeRejectsUnknownChannel(t *testing.T) {
	var buf bytes.Buffer
	b, controls, menu, sent := newTestBridge(&buf)

	b.HandleWire("evil-channel")

	if !controls.untouched() || menu.presented != 0 || len(*sent) != 0 {
		t.Fatal("unknown channel reached the window")
	}
	logged := buf.String()
	if !strings.Contains(logged, "rejected") || !strings.Contains(logged, "evil-channel") {
		t.Fatalf("rejection not logged with channel name: %s", logged)
	}
}

func TestBridgeRejectsMalformedPayloads(t *testing.T) {
	var buf bytes.Buffer
	b, controls, menu, _ := newTestBridge(&buf)

	b.HandleWire()
	b.HandleWire(42)
	b.HandleWire(map[string]interface{}{"channel": "quit-app"})
	b.HandleWire("quit-app", "extra")

	if !controls.untouched() || menu.presented != 0 {
		t.Fatal("malformed payload reached the window")
	}
	if n := strings.Count(buf.String(), "rejected"); n != 4 {
		t.Fatalf("logged %d rejections, want 4: %s", n, buf.String())
	}
}

func TestBridgeDispatchesAllowedRequests(t *testing.T) {
	b, controls, menu, _ := newTestBridge(io.Discard)

	b.HandleWire("toggle-fullscreen")
	b.HandleWire("show-context-menu")
	b.HandleWire("quit-app")

	if controls.toggles != 1 || menu.presented != 1 || controls.quits != 1 {
		t.Fatalf("toggles=%d menus=%d quits=%d", controls.toggles, menu.presented, controls.quits)
	}
}

func TestBridgeWithoutMenuPresenter(t *testing.T) {
	b := NewBridge(&fakeControls{}, nil, nil, zerolog.New(io.Discard))
	b.Dispatch(RequestShowContextMenu)
}

func TestBridgeSendEmitsNotification(t *testing.T) {
	b, _, _, sent := newTestBridge(io.Discard)

	b.Send(FullscreenStateChanged{Fullscreen: true})

	want := []emitted{{event: "fullscreen-state-changed", data: []interface{}{true}}}
	if !reflect.DeepEqual(*sent, want) {
		t.Fatalf("emitted %v, want %v", *sent, want)
	}
}

func TestBridgeSendBeforeRuntimeIsDropped(t *testing.T) {
	b := NewBridge(&fakeControls{}, nil, nil, zerolog.New(io.Discard))
	b.Send(FullscreenStateChanged{Fullscreen: false})
}

func TestBridgeDrivesController(t *testing.T) {
	f := newControllerFixture(t, windowed(0, 0, 800, 450))
	b := NewBridge(f.ctrl, nil, nil, zerolog.New(io.Discard))

	b.HandleWire("toggle-fullscreen")
	if !f.ctrl.IsFullscreen() {
		t.Fatal("toggle-fullscreen did not reach the controller")
	}
	b.HandleWire("evil-channel")
	if !f.ctrl.IsFullscreen() || len(f.window.fullscreenCalls) != 1 {
		t.Fatal("unknown channel changed window state")
	}
}
