package main

import (
	"io/fs"
	"net/http"
	"os"

	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

// linuxGpuPolicy returns the appropriate GPU policy for the current display server.
// On XWayland (Wayland session forced to X11), GPU compositing causes GBM buffer failures,
// so software rendering is used. On native X11, GPU acceleration is allowed.
func linuxGpuPolicy() linux.WebviewGpuPolicy {
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return linux.WebviewGpuPolicyNever
	}
	return linux.WebviewGpuPolicyOnDemand
}

// createAppOptions builds the Wails options for the shell window. The window
// is frameless and starts hidden; it is shown once the content is ready.
// Nothing is bound: the content talks to the host only through the bridge
// event.
func createAppOptions(app *App, assets fs.FS, content http.Handler) *options.App {
	minHeight := app.config.AspectRatio.HeightFor(MinRestorableSize + 1)
	if minHeight <= MinRestorableSize {
		minHeight = MinRestorableSize + 1
	}

	return &options.App{
		Title:       AppName,
		Width:       app.bounds.Width,
		Height:      app.bounds.Height,
		MinWidth:    MinRestorableSize + 1,
		MinHeight:   minHeight,
		Frameless:   true,
		StartHidden: true,
		AlwaysOnTop: app.config.AlwaysOnTop,
		AssetServer: &assetserver.Options{
			Assets:  assets,
			Handler: content,
		},
		BackgroundColour:         &options.RGBA{R: 0, G: 0, B: 0, A: 255},
		EnableDefaultContextMenu: false,
		Logger:                   NewWailsLogAdapter(app.log),
		LogLevel:                 wailsLevel(app.log.GetLevel()),
		OnStartup:                app.startup,
		OnDomReady:               app.domReady,
		OnBeforeClose:            app.beforeClose,
		OnShutdown:               app.shutdown,
		Bind:                     []interface{}{},
		Mac: &mac.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			TitleBar:             mac.TitleBarHidden(),
			About: &mac.AboutInfo{
				Title:   AppName,
				Message: "Pinned, aspect-locked viewer window",
			},
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    true,
		},
		Linux: &linux.Options{
			ProgramName:      AppName,
			WebviewGpuPolicy: linuxGpuPolicy(),
		},
	}
}
