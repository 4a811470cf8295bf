package main

import (
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
)

// Context menu labels
const (
	MenuLabelAlwaysOnTop     = "Always on Top"
	MenuLabelEnterFullscreen = "Enter Fullscreen"
	MenuLabelExitFullscreen  = "Exit Fullscreen"
	MenuLabelClose           = "Close"
	MenuLabelWindowSubmenu   = "Window"
)

// BuildContextMenu returns the window menu reflecting the current state.
// The menu is rebuilt on every request so the labels never go stale.
// toggleAccel may be nil.
func BuildContextMenu(controls WindowControls, toggleAccel *keys.Accelerator) *menu.Menu {
	m := menu.NewMenu()

	onTop := controls.AlwaysOnTop()
	m.AddCheckbox(MenuLabelAlwaysOnTop, onTop, nil, func(*menu.CallbackData) {
		controls.SetAlwaysOnTop(!onTop)
	})

	label := MenuLabelEnterFullscreen
	if controls.IsFullscreen() {
		label = MenuLabelExitFullscreen
	}
	m.AddText(label, toggleAccel, func(*menu.CallbackData) {
		controls.ToggleFullscreen()
	})

	m.AddSeparator()
	m.AddText(MenuLabelClose, nil, func(*menu.CallbackData) {
		controls.Quit()
	})
	return m
}
