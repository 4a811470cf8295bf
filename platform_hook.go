package main

import (
	"errors"

	"github.com/wailsapp/wails/v2/pkg/menu"
)

// ErrWindowGone reports that the native window does not exist (yet or any more).
var ErrWindowGone = errors.New("native window not found")

// PlatformHook is optional low-level access to the native window. Platforms
// without one get noopHook.
type PlatformHook interface {
	// Attach finds the native window with the given title in this process.
	Attach(title string) error
	// ForceFocus brings the window to the foreground even when the OS would
	// rather flash the taskbar.
	ForceFocus()
	// SetAspectRatio enforces r while the user drags a border; zero disables.
	SetAspectRatio(r AspectRatio)
	// PopupMenu shows m at the cursor. It reports false when unsupported.
	PopupMenu(m *menu.Menu) bool
	// OnSystemMenu replaces the native system menu with fn.
	OnSystemMenu(fn func())
	Detach()
}

type noopHook struct{}

func (noopHook) Attach(string) error        { return nil }
func (noopHook) ForceFocus()                {}
func (noopHook) SetAspectRatio(AspectRatio) {}
func (noopHook) PopupMenu(*menu.Menu) bool  { return false }
func (noopHook) OnSystemMenu(func())        {}
func (noopHook) Detach()                    {}
