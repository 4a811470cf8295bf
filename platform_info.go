package main

import (
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"
)

// Platform constants
const (
	PlatformWindows = "windows"
	PlatformDarwin  = "darwin"
	PlatformLinux   = "linux"
)

// Display servers seen on Linux.
const (
	DisplayX11      = "x11"
	DisplayXWayland = "xwayland"
	DisplayWayland  = "wayland"
	DisplayNone     = "none"
	DisplayNative   = "native"
)

// PlatformInfo describes the host the window runs on. It is logged at startup
// and printed by "version --verbose" so bug reports carry it.
type PlatformInfo struct {
	OS              string `json:"os"`
	Arch            string `json:"arch"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platformVersion,omitempty"`
	KernelVersion   string `json:"kernelVersion,omitempty"`
	Virtualization  string `json:"virtualization,omitempty"`
	DisplayServer   string `json:"displayServer"`
}

// GlobalHotkeySupported reports whether a system wide key grab can work here.
// Pure Wayland sessions do not allow clients to grab keys.
func (p PlatformInfo) GlobalHotkeySupported() bool {
	return p.DisplayServer != DisplayWayland && p.DisplayServer != DisplayNone
}

func (p PlatformInfo) MarshalZerologObject(e *zerolog.Event) {
	e.Str("os", p.OS).
		Str("arch", p.Arch).
		Str("platform", p.Platform).
		Str("platform_version", p.PlatformVersion).
		Str("kernel", p.KernelVersion).
		Str("display", p.DisplayServer)
	if p.Virtualization != "" {
		e.Str("virtualization", p.Virtualization)
	}
}

var (
	platformInfoOnce   sync.Once
	platformInfoCached PlatformInfo
)

// GetPlatformInfo returns the host description. Host details do not change
// while the process runs, so they are gathered once.
func GetPlatformInfo() PlatformInfo {
	platformInfoOnce.Do(func() {
		platformInfoCached = generatePlatformInfo(os.Getenv)
	})
	return platformInfoCached
}

func generatePlatformInfo(getenv func(string) string) PlatformInfo {
	info := PlatformInfo{
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
		DisplayServer: detectDisplayServer(runtime.GOOS, getenv),
	}

	// host.Info can fail inside sandboxes; the runtime values are enough then.
	if hostInfo, err := host.Info(); err == nil {
		info.Platform = hostInfo.Platform
		info.PlatformVersion = hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
		if hostInfo.VirtualizationRole == "guest" {
			info.Virtualization = hostInfo.VirtualizationSystem
		}
	}
	return info
}

// detectDisplayServer reports which display server a Linux session would
// render through, accounting for the GDK_BACKEND override applied at startup.
func detectDisplayServer(goos string, getenv func(string) string) string {
	if goos != PlatformLinux {
		return DisplayNative
	}
	wayland := getenv("WAYLAND_DISPLAY") != ""
	x11 := getenv("DISPLAY") != ""
	backend := strings.ToLower(getenv("GDK_BACKEND"))

	switch {
	case wayland && x11 && (backend == "" || strings.HasPrefix(backend, "x11")):
		return DisplayXWayland
	case wayland:
		return DisplayWayland
	case x11:
		return DisplayX11
	default:
		return DisplayNone
	}
}
