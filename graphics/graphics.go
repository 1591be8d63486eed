// Package graphics declares the boundary between the script bridge and the
// platform that owns the window, the drawing surface and the input devices.
//
// Rasterization, window management and asset decoding live behind these
// interfaces. The bridge only calls them; see the headless package for an
// in-memory implementation.
package graphics

import "fmt"

// Pixel is a packed RGBA color.
type Pixel struct {
	R, G, B, A uint8
}

// RGB returns an opaque pixel.
func RGB(r, g, b uint8) Pixel {
	return Pixel{R: r, G: g, B: b, A: 255}
}

// RGBA returns a pixel with an explicit alpha.
func RGBA(r, g, b, a uint8) Pixel {
	return Pixel{R: r, G: g, B: b, A: a}
}

func (p Pixel) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", p.R, p.G, p.B, p.A)
}

// PixelMode selects how drawn pixels combine with the target.
type PixelMode int

const (
	PixelNormal PixelMode = iota
	PixelMask
	PixelAlpha
	PixelCustom
)

func (m PixelMode) String() string {
	switch m {
	case PixelNormal:
		return "normal"
	case PixelMask:
		return "mask"
	case PixelAlpha:
		return "alpha"
	case PixelCustom:
		return "custom"
	default:
		return fmt.Sprintf("PixelMode(%d)", int(m))
	}
}

// Sprite is a platform-owned image that can be drawn or used as a draw target.
type Sprite interface {
	Width() int
	Height() int
}

// Decal is a GPU-side copy of a sprite.
type Decal interface {
	Sprite() Sprite
}

// Graphics is the drawing capability consumed by the graphics module.
// A nil draw target means the screen.
type Graphics interface {
	Clear(p Pixel)
	Draw(x, y int, p Pixel) bool
	DrawLine(x1, y1, x2, y2 int, p Pixel)
	DrawCircle(x, y, radius int, p Pixel)
	FillCircle(x, y, radius int, p Pixel)
	DrawRect(x, y, w, h int, p Pixel)
	FillRect(x, y, w, h int, p Pixel)
	DrawTriangle(x1, y1, x2, y2, x3, y3 int, p Pixel)
	FillTriangle(x1, y1, x2, y2, x3, y3 int, p Pixel)
	DrawString(x, y int, text string, p Pixel, scale int)

	LoadSprite(path string) (Sprite, error)
	UnloadSprite(s Sprite)
	CreateDecal(s Sprite) (Decal, error)
	DestroyDecal(d Decal)
	DrawSprite(x, y int, s Sprite, scale int)
	DrawPartialSprite(x, y int, s Sprite, ox, oy, w, h, scale int)
	DrawDecal(x, y float64, d Decal, scaleX, scaleY float64, tint Pixel)
	DrawRotatedDecal(x, y float64, d Decal, angle, centerX, centerY, scaleX, scaleY float64, tint Pixel)

	SetDrawTarget(s Sprite)
	DrawTargetWidth() int
	DrawTargetHeight() int
	SetPixelBlend(blend float64)
	SetPixelMode(m PixelMode)
	PixelMode() PixelMode
}

// HWButton is the per-frame state of a key or mouse button.
type HWButton struct {
	Pressed  bool
	Held     bool
	Released bool
}

// Input is the polling capability consumed by the input module.
type Input interface {
	Key(k Key) HWButton
	Mouse(button int) HWButton
	MouseX() int
	MouseY() int
	MouseWheel() int
}

// Window reports the state of the host window.
type Window interface {
	ScreenWidth() int
	ScreenHeight() int
	IsFocused() bool
}

// Platform is everything a host window provides to scripts.
type Platform interface {
	Graphics
	Input
	Window
}
