package main

import "testing"

var ratio16x9 = AspectRatio{Width: 16, Height: 9}

func TestNormalizeBoundsFallsBackToDefault(t *testing.T) {
	want := DefaultBounds(DefaultWindowWidth, ratio16x9)

	cases := []struct {
		name   string
		stored *WindowBounds
	}{
		{"absent", nil},
		{"zero", &WindowBounds{}},
		{"width at limit", &WindowBounds{Width: 100, Height: 600}},
		{"height at limit", &WindowBounds{Width: 800, Height: 100}},
		{"negative", &WindowBounds{Width: -5, Height: 900}},
		{"tiny with position", &WindowBounds{X: intPtr(10), Y: intPtr(10), Width: 50, Height: 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeBounds(tc.stored, DefaultWindowWidth, ratio16x9)
			if got.Width != want.Width || got.Height != want.Height || got.HasPosition() {
				t.Fatalf("NormalizeBounds(%v) = %v, want %v", tc.stored, got, want)
			}
		})
	}
}

func TestNormalizeBoundsRecomputesHeight(t *testing.T) {
	for _, height := range []int{101, 450, 451, 2000} {
		stored := &WindowBounds{X: intPtr(3), Y: intPtr(4), Width: 801, Height: height}
		got := NormalizeBounds(stored, DefaultWindowWidth, ratio16x9)
		if got.Width != 801 {
			t.Fatalf("width = %d, want 801", got.Width)
		}
		if got.Height != 451 { // round(801 / (16/9)) = round(450.56)
			t.Fatalf("stored height %d: got height %d, want 451", height, got.Height)
		}
		if *got.X != 3 || *got.Y != 4 {
			t.Fatalf("position changed: %v", got)
		}
	}
}

func TestNormalizeBoundsDoesNotAliasStored(t *testing.T) {
	stored := &WindowBounds{Width: 800, Height: 999}
	NormalizeBounds(stored, DefaultWindowWidth, ratio16x9)
	if stored.Height != 999 {
		t.Fatalf("stored bounds mutated: %v", stored)
	}
}

func TestDefaultBounds(t *testing.T) {
	b := DefaultBounds(1024, ratio16x9)
	if b.Width != 1024 || b.Height != 576 {
		t.Fatalf("DefaultBounds = %v, want 1024x576", b)
	}
	b = DefaultBounds(1024, AspectRatio{Width: 4, Height: 3})
	if b.Height != 768 {
		t.Fatalf("4:3 height = %d, want 768", b.Height)
	}
}

func TestAspectRatioValidate(t *testing.T) {
	cases := []struct {
		r     AspectRatio
		valid bool
	}{
		{AspectRatio{16, 9}, true},
		{AspectRatio{1, 1}, true},
		{AspectRatio{0, 9}, false},
		{AspectRatio{16, -1}, false},
		{AspectRatio{1000, 1}, false},
	}
	for _, tc := range cases {
		if err := tc.r.Validate(); (err == nil) != tc.valid {
			t.Errorf("%s: Validate() = %v, valid = %t", tc.r, err, tc.valid)
		}
	}
}
