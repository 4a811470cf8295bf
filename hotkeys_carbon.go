package main

// Carbon virtual key codes (kVK_*). They follow the physical ANSI layout, not
// the alphabet. Kept free of build tags so the mapping is tested everywhere.
var carbonLetterKeys = map[byte]uint8{
	'a': 0x00, 's': 0x01, 'd': 0x02, 'f': 0x03, 'h': 0x04, 'g': 0x05,
	'z': 0x06, 'x': 0x07, 'c': 0x08, 'v': 0x09, 'b': 0x0B, 'q': 0x0C,
	'w': 0x0D, 'e': 0x0E, 'r': 0x0F, 'y': 0x10, 't': 0x11, '1': 0x12,
	'2': 0x13, '3': 0x14, '4': 0x15, '6': 0x16, '5': 0x17, '9': 0x19,
	'7': 0x1A, '8': 0x1C, '0': 0x1D, 'o': 0x1F, 'u': 0x20, 'i': 0x22,
	'p': 0x23, 'l': 0x25, 'j': 0x26, 'k': 0x28, 'n': 0x2D, 'm': 0x2E,
}

// carbonFunctionKeys is indexed by n-1 for F<n>. Macs stop at F20.
var carbonFunctionKeys = []uint8{
	0x7A, 0x78, 0x63, 0x76, 0x60, 0x61, 0x62, 0x64, 0x65, 0x6D,
	0x67, 0x6F, 0x69, 0x6B, 0x71, 0x6A, 0x40, 0x4F, 0x50, 0x5A,
}

var carbonNamedKeys = map[string]uint8{
	"Escape": 0x35,
	"Insert": 0x72, // kVK_Help sits where Insert is on PC keyboards
	"Home":   0x73,
	"End":    0x77,
}

// carbonKeyCode returns the macOS virtual key code for k.Key.
func (k KeySequence) carbonKeyCode() (uint8, bool) {
	if len(k.Key) == 1 {
		code, ok := carbonLetterKeys[k.Key[0]]
		return code, ok
	}
	if n, ok := functionKeyNumber(k.Key); ok {
		if n > len(carbonFunctionKeys) {
			return 0, false
		}
		return carbonFunctionKeys[n-1], true
	}
	code, ok := carbonNamedKeys[k.Key]
	return code, ok
}
