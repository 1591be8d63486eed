// Package headless provides an in-memory graphics.Platform that records draw
// calls instead of rasterizing them. It backs the command line runner and
// the tests; input state is set programmatically.
package headless

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"sync"

	"github.com/caffeineduck/pgelua/graphics"
)

// Image is a headless sprite.
type Image struct {
	Path string
	W, H int
}

func (i *Image) Width() int  { return i.W }
func (i *Image) Height() int { return i.H }

func (i *Image) String() string {
	if i.Path == "" {
		return fmt.Sprintf("sprite(%dx%d)", i.W, i.H)
	}
	return fmt.Sprintf("sprite(%s %dx%d)", i.Path, i.W, i.H)
}

// Decal is a headless decal.
type Decal struct {
	src *Image
}

func (d *Decal) Sprite() graphics.Sprite { return d.src }

func (d *Decal) String() string {
	return "decal(" + d.src.String() + ")"
}

// Surface implements graphics.Platform.
type Surface struct {
	mu sync.Mutex

	width, height int
	focused       bool

	keys     map[graphics.Key]graphics.HWButton
	buttons  map[int]graphics.HWButton
	mouseX   int
	mouseY   int
	wheel    int
	target   graphics.Sprite
	mode     graphics.PixelMode
	blend    float64
	loaded   int
	calls    []string
	maxCalls int
}

// Option configures a Surface.
type Option func(*Surface)

// WithMaxCalls bounds the recorded call log; older calls are discarded.
// Zero keeps every call.
func WithMaxCalls(n int) Option {
	return func(s *Surface) {
		s.maxCalls = n
	}
}

// New returns a focused surface of the given size.
func New(width, height int, opts ...Option) *Surface {
	s := &Surface{
		width:   width,
		height:  height,
		focused: true,
		keys:    make(map[graphics.Key]graphics.HWButton),
		buttons: make(map[int]graphics.HWButton),
		blend:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSprite returns a blank in-memory sprite.
func NewSprite(w, h int) *Image {
	return &Image{W: w, H: h}
}

func (s *Surface) record(name string, args ...any) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	s.calls = append(s.calls, name+"("+strings.Join(parts, ", ")+")")
	if s.maxCalls > 0 && len(s.calls) > s.maxCalls {
		s.calls = s.calls[len(s.calls)-s.maxCalls:]
	}
}

// Calls returns a copy of the recorded calls.
func (s *Surface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// ResetCalls clears the call log.
func (s *Surface) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

// Loaded returns the number of sprites currently loaded.
func (s *Surface) Loaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Surface) Clear(p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("clear", p)
}

func (s *Surface) Draw(x, y int, p graphics.Pixel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw", x, y, p)
	w, h := s.targetSize()
	return x >= 0 && y >= 0 && x < w && y < h
}

func (s *Surface) DrawLine(x1, y1, x2, y2 int, p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_line", x1, y1, x2, y2, p)
}

func (s *Surface) DrawCircle(x, y, radius int, p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_circle", x, y, radius, p)
}

func (s *Surface) FillCircle(x, y, radius int, p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("fill_circle", x, y, radius, p)
}

func (s *Surface) DrawRect(x, y, w, h int, p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_rect", x, y, w, h, p)
}

func (s *Surface) FillRect(x, y, w, h int, p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("fill_rect", x, y, w, h, p)
}

func (s *Surface) DrawTriangle(x1, y1, x2, y2, x3, y3 int, p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_triangle", x1, y1, x2, y2, x3, y3, p)
}

func (s *Surface) FillTriangle(x1, y1, x2, y2, x3, y3 int, p graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("fill_triangle", x1, y1, x2, y2, x3, y3, p)
}

func (s *Surface) DrawString(x, y int, text string, p graphics.Pixel, scale int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_string", x, y, fmt.Sprintf("%q", text), p, scale)
}

// LoadSprite reads only the image header; pixel data stays on disk.
func (s *Surface) LoadSprite(path string) (graphics.Sprite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load sprite: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("load sprite %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	img := &Image{Path: path, W: cfg.Width, H: cfg.Height}
	s.loaded++
	s.record("load_sprite", img)
	return img, nil
}

func (s *Surface) UnloadSprite(sp graphics.Sprite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded > 0 {
		s.loaded--
	}
	s.record("unload_sprite", sp)
}

func (s *Surface) CreateDecal(sp graphics.Sprite) (graphics.Decal, error) {
	img, ok := sp.(*Image)
	if !ok {
		return nil, fmt.Errorf("create decal: unsupported sprite %T", sp)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &Decal{src: img}
	s.record("create_decal", img)
	return d, nil
}

func (s *Surface) DestroyDecal(d graphics.Decal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("destroy_decal", d)
}

func (s *Surface) DrawSprite(x, y int, sp graphics.Sprite, scale int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_sprite", x, y, sp, scale)
}

func (s *Surface) DrawPartialSprite(x, y int, sp graphics.Sprite, ox, oy, w, h, scale int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_partial_sprite", x, y, sp, ox, oy, w, h, scale)
}

func (s *Surface) DrawDecal(x, y float64, d graphics.Decal, scaleX, scaleY float64, tint graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_decal", x, y, d, scaleX, scaleY, tint)
}

func (s *Surface) DrawRotatedDecal(x, y float64, d graphics.Decal, angle, centerX, centerY, scaleX, scaleY float64, tint graphics.Pixel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("draw_rotated_decal", x, y, d, angle, centerX, centerY, scaleX, scaleY, tint)
}

func (s *Surface) SetDrawTarget(sp graphics.Sprite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = sp
	if sp == nil {
		s.record("set_draw_target", "screen")
		return
	}
	s.record("set_draw_target", sp)
}

func (s *Surface) targetSize() (int, int) {
	if s.target == nil {
		return s.width, s.height
	}
	return s.target.Width(), s.target.Height()
}

func (s *Surface) DrawTargetWidth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, _ := s.targetSize()
	return w
}

func (s *Surface) DrawTargetHeight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, h := s.targetSize()
	return h
}

func (s *Surface) SetPixelBlend(blend float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blend = blend
}

// PixelBlend returns the last blend factor set.
func (s *Surface) PixelBlend() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blend
}

func (s *Surface) SetPixelMode(m graphics.PixelMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

func (s *Surface) PixelMode() graphics.PixelMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Surface) Key(k graphics.Key) graphics.HWButton {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[k]
}

func (s *Surface) Mouse(button int) graphics.HWButton {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttons[button]
}

func (s *Surface) MouseX() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mouseX
}

func (s *Surface) MouseY() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mouseY
}

func (s *Surface) MouseWheel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wheel
}

func (s *Surface) ScreenWidth() int  { return s.width }
func (s *Surface) ScreenHeight() int { return s.height }

func (s *Surface) IsFocused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// SetKey sets the state reported for k.
func (s *Surface) SetKey(k graphics.Key, b graphics.HWButton) {
	s.mu.Lock()
	s.keys[k] = b
	s.mu.Unlock()
}

// SetMouse sets the state reported for a mouse button.
func (s *Surface) SetMouse(button int, b graphics.HWButton) {
	s.mu.Lock()
	s.buttons[button] = b
	s.mu.Unlock()
}

// SetMousePos sets the cursor position and wheel delta.
func (s *Surface) SetMousePos(x, y, wheel int) {
	s.mu.Lock()
	s.mouseX, s.mouseY, s.wheel = x, y, wheel
	s.mu.Unlock()
}

// SetFocus sets the window focus flag.
func (s *Surface) SetFocus(focused bool) {
	s.mu.Lock()
	s.focused = focused
	s.mu.Unlock()
}

// EndFrame turns pressed into held and clears released, the way a window
// would between frames.
func (s *Surface) EndFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := func(b graphics.HWButton) graphics.HWButton {
		if b.Pressed {
			b.Held = true
		}
		b.Pressed = false
		b.Released = false
		return b
	}
	for k, b := range s.keys {
		s.keys[k] = step(b)
	}
	for k, b := range s.buttons {
		s.buttons[k] = step(b)
	}
	s.wheel = 0
}

var _ graphics.Platform = (*Surface)(nil)
