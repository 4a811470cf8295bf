package main

// Win32 hotkey modifier flags and virtual key codes. Kept free of build tags
// so the mapping is tested on every platform.
const (
	winModAlt      = 0x0001
	winModControl  = 0x0002
	winModShift    = 0x0004
	winModWin      = 0x0008
	winModNoRepeat = 0x4000

	vkPause  = 0x13
	vkEscape = 0x1B
	vkEnd    = 0x23
	vkHome   = 0x24
	vkInsert = 0x2D
	vkF1     = 0x70
)

// win32Modifiers returns the RegisterHotKey modifier flags for k.
func (k KeySequence) win32Modifiers() uint32 {
	mods := uint32(winModNoRepeat)
	for _, m := range k.Modifiers {
		switch m {
		case ModAlt:
			mods |= winModAlt
		case ModControl:
			mods |= winModControl
		case ModShift:
			mods |= winModShift
		case ModSuper:
			mods |= winModWin
		}
	}
	return mods
}

// virtualKey returns the Win32 virtual key code for k.Key.
func (k KeySequence) virtualKey() (uint32, bool) {
	if len(k.Key) == 1 {
		c := k.Key[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint32(c - 'a' + 'A'), true
		case c >= '0' && c <= '9':
			return uint32(c), true
		}
		return 0, false
	}
	if n, ok := functionKeyNumber(k.Key); ok {
		return uint32(vkF1 + n - 1), true
	}
	switch k.Key {
	case "Escape":
		return vkEscape, true
	case "Pause":
		return vkPause, true
	case "Insert":
		return vkInsert, true
	case "Home":
		return vkHome, true
	case "End":
		return vkEnd, true
	}
	return 0, false
}
