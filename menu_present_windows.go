//go:build windows

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
)

// popupPresenter shows the context menu as a native popup through the hook.
type popupPresenter struct {
	hook PlatformHook
	log  zerolog.Logger
}

func newMenuPresenter(_ context.Context, hook PlatformHook, _ *keys.Accelerator, log zerolog.Logger) MenuPresenter {
	return &popupPresenter{hook: hook, log: componentLogger(log, "menu")}
}

// Present implements MenuPresenter.
func (p *popupPresenter) Present(controls WindowControls) {
	if !p.hook.PopupMenu(BuildContextMenu(controls, nil)) {
		p.log.Warn().Msg("context menu unavailable: window hook not attached")
	}
}
