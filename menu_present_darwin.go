//go:build darwin

package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// appMenuPresenter puts the window menu in the macOS menu bar, which stays
// reachable while the window itself has no frame.
type appMenuPresenter struct {
	ctx   context.Context
	accel *keys.Accelerator
	log   zerolog.Logger
}

func newMenuPresenter(ctx context.Context, _ PlatformHook, accel *keys.Accelerator, log zerolog.Logger) MenuPresenter {
	return &appMenuPresenter{ctx: ctx, accel: accel, log: componentLogger(log, "menu")}
}

// Present implements MenuPresenter.
func (p *appMenuPresenter) Present(controls WindowControls) {
	if p.ctx == nil {
		return
	}
	wailsRuntime.MenuSetApplicationMenu(p.ctx, applicationMenu(controls, p.accel))
	wailsRuntime.MenuUpdateApplicationMenu(p.ctx)
	p.log.Debug().Msg("application menu refreshed")
}

func applicationMenu(controls WindowControls, accel *keys.Accelerator) *menu.Menu {
	m := menu.NewMenu()
	m.Append(menu.AppMenu())
	m.Append(menu.EditMenu())
	m.AddSubmenu(MenuLabelWindowSubmenu).Merge(BuildContextMenu(controls, accel))
	return m
}
