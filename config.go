package main

import (
	"fmt"
	"net/url"
	"time"
)

const (
	AppName = "Pinview"

	// ConfigDirName is the directory under the xdg config/state homes.
	ConfigDirName  = "pinview"
	ConfigFileName = "config.yaml"
	StateFileName  = "state.yaml"
	ConfigFileMode = 0o600

	DefaultWindowWidth   = 1024
	DefaultAspectWidth   = 16
	DefaultAspectHeight  = 9
	DefaultToggleKey     = "F11"
	DefaultSaveDebounce  = 500 * time.Millisecond
	DefaultPollInterval  = 250 * time.Millisecond
	DefaultLogLevel      = "info"
	DefaultContentURL    = "http://ottp.eu.org/f/pc/"
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	MinRestorableSize    = 100
	MaxWindowWidth       = 10000 // Arbitrary large value for upper bound
	MinSaveDebounceMs    = 50
	MaxSaveDebounceMs    = 10000
	MinPollIntervalMs    = 50
	MaxPollIntervalMs    = 5000
	MaxAspectRatioFactor = 100
)

// AllowedLogLevels lists the valid log level names.
var AllowedLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// AppConfig holds the application configuration
type AppConfig struct {
	ContentURL  string      `yaml:"content_url"`
	UserAgent   string      `yaml:"user_agent"`
	AspectRatio AspectRatio `yaml:"aspect_ratio"`
	// DefaultWidth is used when no valid bounds have been persisted yet.
	DefaultWidth        int    `yaml:"default_width"`
	AlwaysOnTop         bool   `yaml:"always_on_top"`
	ToggleFullscreenKey string `yaml:"toggle_fullscreen_key"`
	SaveDebounceMs      int    `yaml:"save_debounce_ms"`
	PollIntervalMs      int    `yaml:"poll_interval_ms"`
	LogLevel            string `yaml:"log_level"`
}

// DefaultConfig returns a new AppConfig with default values
func DefaultConfig() *AppConfig {
	return &AppConfig{
		ContentURL:          DefaultContentURL,
		UserAgent:           DefaultUserAgent,
		AspectRatio:         AspectRatio{Width: DefaultAspectWidth, Height: DefaultAspectHeight},
		DefaultWidth:        DefaultWindowWidth,
		AlwaysOnTop:         true,
		ToggleFullscreenKey: DefaultToggleKey,
		SaveDebounceMs:      int(DefaultSaveDebounce / time.Millisecond),
		PollIntervalMs:      int(DefaultPollInterval / time.Millisecond),
		LogLevel:            DefaultLogLevel,
	}
}

// Validate checks the configuration for basic validity.
func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.ContentURL)
	if err != nil {
		return fmt.Errorf("invalid content url %q: %w", c.ContentURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("content url %q must be http or https", c.ContentURL)
	}
	if u.Host == "" {
		return fmt.Errorf("content url %q has no host", c.ContentURL)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}
	if err := c.AspectRatio.Validate(); err != nil {
		return err
	}
	if c.DefaultWidth <= MinRestorableSize || c.DefaultWidth > MaxWindowWidth {
		return fmt.Errorf("default width %d is out of range (%d-%d)", c.DefaultWidth, MinRestorableSize+1, MaxWindowWidth)
	}
	if h := c.AspectRatio.HeightFor(c.DefaultWidth); h <= MinRestorableSize {
		return fmt.Errorf("default width %d gives height %d at ratio %s, want more than %d", c.DefaultWidth, h, c.AspectRatio, MinRestorableSize)
	}
	if c.ToggleFullscreenKey == "" {
		return fmt.Errorf("toggle fullscreen key must not be empty")
	}
	if _, err := ParseKeySequence(c.ToggleFullscreenKey); err != nil {
		return fmt.Errorf("toggle fullscreen key: %w", err)
	}
	if c.SaveDebounceMs < MinSaveDebounceMs || c.SaveDebounceMs > MaxSaveDebounceMs {
		return fmt.Errorf("save debounce %dms is out of range (%d-%d)", c.SaveDebounceMs, MinSaveDebounceMs, MaxSaveDebounceMs)
	}
	if c.PollIntervalMs < MinPollIntervalMs || c.PollIntervalMs > MaxPollIntervalMs {
		return fmt.Errorf("poll interval %dms is out of range (%d-%d)", c.PollIntervalMs, MinPollIntervalMs, MaxPollIntervalMs)
	}

	validLevel := false
	for _, l := range AllowedLogLevels {
		if c.LogLevel == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level specified: '%s'. Allowed levels are: %v", c.LogLevel, AllowedLogLevels)
	}

	return nil
}

// SaveDebounce returns the debounce window for geometry saves.
func (c *AppConfig) SaveDebounce() time.Duration {
	return time.Duration(c.SaveDebounceMs) * time.Millisecond
}

// PollInterval returns how often the host window geometry is sampled.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}
