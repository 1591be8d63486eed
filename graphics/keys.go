package graphics

import "strconv"

// Key is a keyboard key code. Values follow the PixelGameEngine numbering so
// scripts ported from it keep working.
type Key int

const (
	KeyNone Key = iota
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// KeyNames maps the script-visible names of the key constant table to codes.
func KeyNames() map[string]Key {
	names := make(map[string]Key, int(KeyRight))
	for k := KeyA; k <= KeyZ; k++ {
		names[string(rune('A'+int(k-KeyA)))] = k
	}
	for k := Key0; k <= Key9; k++ {
		names["K"+strconv.Itoa(int(k-Key0))] = k
	}
	for k := KeyF1; k <= KeyF12; k++ {
		names["F"+strconv.Itoa(int(k-KeyF1)+1)] = k
	}
	names["UP"] = KeyUp
	names["DOWN"] = KeyDown
	names["LEFT"] = KeyLeft
	names["RIGHT"] = KeyRight
	return names
}

// PixelModeNames maps the script-visible names of the pixel mode table.
func PixelModeNames() map[string]PixelMode {
	return map[string]PixelMode{
		"NORMAL": PixelNormal,
		"MASK":   PixelMask,
		"ALPHA":  PixelAlpha,
		"CUSTOM": PixelCustom,
	}
}
