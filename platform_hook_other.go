//go:build !windows

package main

import "github.com/rs/zerolog"

func newPlatformHook(zerolog.Logger) PlatformHook {
	return noopHook{}
}
