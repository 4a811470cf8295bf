package main

import (
	"fmt"
	"math"
)

// WindowBoundsKey is the store key the window geometry lives under.
const WindowBoundsKey = "windowBounds"

// WindowBounds is the persisted window geometry. X and Y are optional; a nil
// position lets the host place the window.
type WindowBounds struct {
	X      *int `yaml:"x,omitempty" json:"x,omitempty"`
	Y      *int `yaml:"y,omitempty" json:"y,omitempty"`
	Width  int  `yaml:"width" json:"width"`
	Height int  `yaml:"height" json:"height"`
}

// Restorable reports whether the bounds are large enough to reopen a window with.
func (b WindowBounds) Restorable() bool {
	return b.Width > MinRestorableSize && b.Height > MinRestorableSize
}

// HasPosition reports whether both coordinates are set.
func (b WindowBounds) HasPosition() bool {
	return b.X != nil && b.Y != nil
}

func (b WindowBounds) String() string {
	if b.HasPosition() {
		return fmt.Sprintf("%dx%d+%d+%d", b.Width, b.Height, *b.X, *b.Y)
	}
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}

// AspectRatio is a width:height ratio applied to the window while windowed.
type AspectRatio struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Validate checks that both terms are positive and not absurdly skewed.
func (r AspectRatio) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("aspect ratio %d:%d must have positive terms", r.Width, r.Height)
	}
	if r.Width > r.Height*MaxAspectRatioFactor || r.Height > r.Width*MaxAspectRatioFactor {
		return fmt.Errorf("aspect ratio %d:%d is too skewed", r.Width, r.Height)
	}
	return nil
}

// Value returns width/height.
func (r AspectRatio) Value() float64 {
	return float64(r.Width) / float64(r.Height)
}

// HeightFor returns the height that keeps width at this ratio.
func (r AspectRatio) HeightFor(width int) int {
	return int(math.Round(float64(width) / r.Value()))
}

func (r AspectRatio) String() string {
	return fmt.Sprintf("%d:%d", r.Width, r.Height)
}

// DefaultBounds returns unpositioned bounds of the given width at ratio r.
func DefaultBounds(width int, r AspectRatio) WindowBounds {
	return WindowBounds{Width: width, Height: r.HeightFor(width)}
}

// NormalizeBounds turns whatever was persisted into bounds the window can open
// with. Missing or undersized bounds give the default; otherwise the height is
// recomputed from the width so a hand-edited width corrects itself.
func NormalizeBounds(stored *WindowBounds, defaultWidth int, r AspectRatio) WindowBounds {
	if stored == nil || !stored.Restorable() {
		return DefaultBounds(defaultWidth, r)
	}
	b := *stored
	b.Height = r.HeightFor(b.Width)
	return b
}

func intPtr(v int) *int {
	return &v
}
