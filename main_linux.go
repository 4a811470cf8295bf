//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"
)

// platformInit must run before GTK initializes.
func platformInit() {
	// WebKit2GTK has known issues on non-GNOME Wayland compositors
	// (protocol errors on KDE, Sway, Hyprland, etc.). The global hotkey also
	// needs an X server. Force the XWayland fallback when running on Wayland.
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		// Only override if user hasn't explicitly set GDK_BACKEND
		if os.Getenv("GDK_BACKEND") == "" {
			os.Setenv("GDK_BACKEND", "x11")
			fmt.Fprintln(os.Stderr, "Wayland detected: using XWayland (GDK_BACKEND=x11) for WebKit2GTK compatibility")
		}
	}
}
