package main

import (
	"runtime"
	"testing"
)

func TestDetectDisplayServer(t *testing.T) {
	cases := []struct {
		name string
		goos string
		env  map[string]string
		want string
	}{
		{"windows", PlatformWindows, nil, DisplayNative},
		{"darwin", PlatformDarwin, map[string]string{"DISPLAY": ":0"}, DisplayNative},
		{"x11", PlatformLinux, map[string]string{"DISPLAY": ":0"}, DisplayX11},
		{"xwayland fallback", PlatformLinux, map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0", "GDK_BACKEND": "x11"}, DisplayXWayland},
		{"wayland forced", PlatformLinux, map[string]string{"WAYLAND_DISPLAY": "wayland-0", "DISPLAY": ":0", "GDK_BACKEND": "wayland"}, DisplayWayland},
		{"wayland only", PlatformLinux, map[string]string{"WAYLAND_DISPLAY": "wayland-0"}, DisplayWayland},
		{"headless", PlatformLinux, nil, DisplayNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			getenv := func(k string) string { return tc.env[k] }
			if got := detectDisplayServer(tc.goos, getenv); got != tc.want {
				t.Fatalf("detectDisplayServer = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGlobalHotkeySupported(t *testing.T) {
	for display, want := range map[string]bool{
		DisplayNative:   true,
		DisplayX11:      true,
		DisplayXWayland: true,
		DisplayWayland:  false,
		DisplayNone:     false,
	} {
		if got := (PlatformInfo{DisplayServer: display}).GlobalHotkeySupported(); got != want {
			t.Errorf("%s: GlobalHotkeySupported() = %t, want %t", display, got, want)
		}
	}
}

func TestGetPlatformInfo(t *testing.T) {
	info := GetPlatformInfo()
	if info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Fatalf("GetPlatformInfo() = %+v", info)
	}
	if info.DisplayServer == "" {
		t.Fatal("display server not detected")
	}
}
