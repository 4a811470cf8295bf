package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// geometryEvents receives window changes observed on the host.
type geometryEvents interface {
	IsFullscreen() bool
	HandleResize()
	HandleMove()
	HandleMaximised()
	HostExitedFullscreen()
}

type geometrySample struct {
	bounds     WindowBounds
	fullscreen bool
	maximised  bool
	valid      bool
}

// GeometryWatcher samples the host window and turns differences into
// resize, move, maximise and fullscreen-exit events. The Wails v2 runtime has
// no native callbacks for these.
type GeometryWatcher struct {
	window   HostWindow
	events   geometryEvents
	interval time.Duration
	log      zerolog.Logger

	last     geometrySample
	started  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewGeometryWatcher creates a watcher; call Start to begin sampling.
func NewGeometryWatcher(window HostWindow, events geometryEvents, interval time.Duration, log zerolog.Logger) *GeometryWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &GeometryWatcher{
		window:   window,
		events:   events,
		interval: interval,
		log:      componentLogger(log, "geometry"),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins sampling in the background.
func (g *GeometryWatcher) Start() {
	if !g.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(g.doneChan)
		defer func() {
			if r := recover(); r != nil {
				g.log.Error().Interface("panic", r).Msg("geometry watcher panic recovered")
			}
		}()

		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				g.poll()
			case <-g.stopChan:
				return
			}
		}
	}()
}

// poll takes one sample and reports what changed since the previous one.
func (g *GeometryWatcher) poll() {
	if !g.window.Alive() {
		return
	}
	cur := geometrySample{
		bounds:     g.window.Bounds(),
		fullscreen: g.window.IsFullscreen(),
		maximised:  g.window.IsMaximised(),
		valid:      true,
	}
	prev := g.last
	g.last = cur
	if !prev.valid {
		return
	}

	if prev.fullscreen && !cur.fullscreen && g.events.IsFullscreen() {
		g.log.Debug().Msg("host left fullscreen")
		g.events.HostExitedFullscreen()
	}
	if cur.maximised && !prev.maximised {
		g.events.HandleMaximised()
	}
	if cur.bounds.Width != prev.bounds.Width || cur.bounds.Height != prev.bounds.Height {
		g.events.HandleResize()
	}
	if positionChanged(prev.bounds, cur.bounds) {
		g.events.HandleMove()
	}
}

func positionChanged(a, b WindowBounds) bool {
	if a.HasPosition() != b.HasPosition() {
		return true
	}
	return a.HasPosition() && (*a.X != *b.X || *a.Y != *b.Y)
}

// Stop ends sampling and waits for the goroutine to exit. Safe to call more
// than once, and before Start.
func (g *GeometryWatcher) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopChan)
	})
	if !g.started.Load() {
		return
	}
	select {
	case <-g.doneChan:
	case <-time.After(WatcherStopWait):
		g.log.Warn().Msg("geometry watcher did not exit in time")
	}
}
