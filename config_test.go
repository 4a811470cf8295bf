package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.SaveDebounce() != 500*time.Millisecond {
		t.Fatalf("SaveDebounce = %v", cfg.SaveDebounce())
	}
	if !cfg.AlwaysOnTop {
		t.Fatal("default should be always on top")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"relative url", func(c *AppConfig) { c.ContentURL = "/f/pc" }},
		{"file url", func(c *AppConfig) { c.ContentURL = "file:///etc/passwd" }},
		{"empty user agent", func(c *AppConfig) { c.UserAgent = "" }},
		{"zero ratio", func(c *AppConfig) { c.AspectRatio = AspectRatio{} }},
		{"tiny width", func(c *AppConfig) { c.DefaultWidth = 90 }},
		{"width too small for ratio", func(c *AppConfig) { c.DefaultWidth = 150 }},
		{"bad key", func(c *AppConfig) { c.ToggleFullscreenKey = "Hyper-F11" }},
		{"debounce too short", func(c *AppConfig) { c.SaveDebounceMs = 1 }},
		{"poll too long", func(c *AppConfig) { c.PollIntervalMs = 60000 }},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", ConfigFileName)

	cfg := LoadConfig(path, NewLogger(io.Discard, "info"))
	if cfg.ContentURL != DefaultContentURL {
		t.Fatalf("ContentURL = %q", cfg.ContentURL)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	data := "content_url: https://example.com/app/\naspect_ratio:\n  width: 4\n  height: 3\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(path, NewLogger(io.Discard, "info"))
	if cfg.ContentURL != "https://example.com/app/" {
		t.Fatalf("ContentURL = %q", cfg.ContentURL)
	}
	if cfg.AspectRatio != (AspectRatio{Width: 4, Height: 3}) {
		t.Fatalf("AspectRatio = %v", cfg.AspectRatio)
	}
	if cfg.ToggleFullscreenKey != DefaultToggleKey || cfg.UserAgent != DefaultUserAgent {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigFallsBackOnBadFile(t *testing.T) {
	for name, data := range map[string]string{
		"unparseable": "aspect_ratio: [1, 2",
		"invalid":     "save_debounce_ms: 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
				t.Fatal(err)
			}
			cfg := LoadConfig(path, NewLogger(io.Discard, "info"))
			if cfg.SaveDebounceMs != DefaultConfig().SaveDebounceMs {
				t.Fatalf("SaveDebounceMs = %d, want default", cfg.SaveDebounceMs)
			}
		})
	}
}
