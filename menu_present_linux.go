//go:build linux

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
)

// unsupportedPresenter is used where the runtime cannot pop up native menus.
type unsupportedPresenter struct {
	log zerolog.Logger
}

func newMenuPresenter(_ context.Context, _ PlatformHook, _ *keys.Accelerator, log zerolog.Logger) MenuPresenter {
	return &unsupportedPresenter{log: componentLogger(log, "menu")}
}

// Present implements MenuPresenter.
func (p *unsupportedPresenter) Present(WindowControls) {
	p.log.Info().Msg("native context menus are not available on this platform")
}
