package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	wailsLogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// NewLogger returns the process logger writing human readable lines to w.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// componentLogger tags every entry with the owning component.
func componentLogger(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// wailsLevel maps a zerolog level onto the framework's log levels.
func wailsLevel(l zerolog.Level) wailsLogger.LogLevel {
	switch l {
	case zerolog.TraceLevel:
		return wailsLogger.TRACE
	case zerolog.DebugLevel:
		return wailsLogger.DEBUG
	case zerolog.WarnLevel:
		return wailsLogger.WARNING
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return wailsLogger.ERROR
	default:
		return wailsLogger.INFO
	}
}

// WailsLogAdapter routes framework log output into zerolog.
type WailsLogAdapter struct {
	log zerolog.Logger
}

var _ wailsLogger.Logger = (*WailsLogAdapter)(nil)

// NewWailsLogAdapter wraps log for use as options.App.Logger.
func NewWailsLogAdapter(log zerolog.Logger) *WailsLogAdapter {
	return &WailsLogAdapter{log: componentLogger(log, "wails")}
}

func (w *WailsLogAdapter) Print(message string)   { w.log.Log().Msg(message) }
func (w *WailsLogAdapter) Trace(message string)   { w.log.Trace().Msg(message) }
func (w *WailsLogAdapter) Debug(message string)   { w.log.Debug().Msg(message) }
func (w *WailsLogAdapter) Info(message string)    { w.log.Info().Msg(message) }
func (w *WailsLogAdapter) Warning(message string) { w.log.Warn().Msg(message) }
func (w *WailsLogAdapter) Error(message string)   { w.log.Error().Msg(message) }

// Fatal logs at error level; the framework exits on its own after calling it.
func (w *WailsLogAdapter) Fatal(message string) { w.log.Error().Bool("fatal", true).Msg(message) }
