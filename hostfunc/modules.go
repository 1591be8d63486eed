package hostfunc

import (
	"github.com/caffeineduck/pgelua/graphics"
	"github.com/caffeineduck/pgelua/handle"
	"github.com/caffeineduck/pgelua/marshal"
)

// Builtin returns a registry with the timer, graphics, input and window
// modules.
func Builtin() *Registry {
	r := NewRegistry()
	for _, m := range []Module{TimerModule(), GraphicsModule(), InputModule(), WindowModule()} {
		if err := r.Register(m); err != nil {
			panic("hostfunc: invalid builtin module: " + err.Error())
		}
	}
	return r
}

// TimerModule exposes the logical frame delta.
func TimerModule() Module {
	return Module{
		Name: "timer",
		Funcs: []Entry{
			{"get_delta_time", timerGetDeltaTime},
			{},
		},
	}
}

func timerGetDeltaTime(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushFloat(s.DeltaTime)
}

// WindowModule exposes the host window.
func WindowModule() Module {
	return Module{
		Name: "window",
		Funcs: []Entry{
			{"screen_width", windowScreenWidth},
			{"screen_height", windowScreenHeight},
			{"is_focus", windowIsFocus},
			{},
		},
	}
}

func windowScreenWidth(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(s.platform(a).ScreenWidth())
}

func windowScreenHeight(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(s.platform(a).ScreenHeight())
}

func windowIsFocus(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushBool(s.platform(a).IsFocused())
}

// InputModule exposes key and mouse polling and the Key constant table.
func InputModule() Module {
	keys := make(map[string]int)
	for name, k := range graphics.KeyNames() {
		keys[name] = int(k)
	}
	return Module{
		Name: "input",
		Funcs: []Entry{
			{"is_key_pressed", keyState(func(b graphics.HWButton) bool { return b.Pressed })},
			{"is_key_held", keyState(func(b graphics.HWButton) bool { return b.Held })},
			{"is_key_released", keyState(func(b graphics.HWButton) bool { return b.Released })},
			{"is_mouse_pressed", mouseState(func(b graphics.HWButton) bool { return b.Pressed })},
			{"is_mouse_held", mouseState(func(b graphics.HWButton) bool { return b.Held })},
			{"is_mouse_released", mouseState(func(b graphics.HWButton) bool { return b.Released })},
			{"mouse_x", inputMouseX},
			{"mouse_y", inputMouseY},
			{"mouse_wheel", inputMouseWheel},
			{},
		},
		Constants: []ConstTable{{Name: "Key", Values: keys}},
	}
}

func keyState(pick func(graphics.HWButton) bool) Func {
	return func(s *State, a *marshal.Args) int {
		a.Arity(1, 1)
		k := graphics.Key(a.Int(1))
		return a.PushBool(pick(s.platform(a).Key(k)))
	}
}

func mouseState(pick func(graphics.HWButton) bool) Func {
	return func(s *State, a *marshal.Args) int {
		a.Arity(1, 1)
		b := a.Int(1)
		return a.PushBool(pick(s.platform(a).Mouse(b)))
	}
}

func inputMouseX(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(s.platform(a).MouseX())
}

func inputMouseY(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(s.platform(a).MouseY())
}

func inputMouseWheel(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(s.platform(a).MouseWheel())
}

// GraphicsModule exposes drawing, sprites, decals, draw targets and the
// PixelMode constant table.
func GraphicsModule() Module {
	modes := make(map[string]int)
	for name, m := range graphics.PixelModeNames() {
		modes[name] = int(m)
	}
	return Module{
		Name: "graphics",
		Funcs: []Entry{
			{"clear", graphicsClear},
			{"draw", graphicsDraw},
			{"draw_line", graphicsDrawLine},
			{"draw_circle", graphicsCircle(false)},
			{"fill_circle", graphicsCircle(true)},
			{"draw_rect", graphicsRect(false)},
			{"fill_rect", graphicsRect(true)},
			{"draw_triangle", graphicsTriangle(false)},
			{"fill_triangle", graphicsTriangle(true)},
			{"draw_string", graphicsDrawString},

			{"load_sprite", graphicsLoadSprite},
			{"unload_sprite", graphicsUnloadSprite},
			{"create_decal", graphicsCreateDecal},
			{"destroy_decal", graphicsDestroyDecal},
			{"draw_sprite", graphicsDrawSprite},
			{"draw_partial_sprite", graphicsDrawPartialSprite},
			{"draw_decal", graphicsDrawDecal},
			{"draw_rotated_decal", graphicsDrawRotatedDecal},

			{"set_draw_target", graphicsSetDrawTarget},
			{"get_draw_target", graphicsGetDrawTarget},
			{"get_draw_target_width", graphicsGetDrawTargetWidth},
			{"get_draw_target_height", graphicsGetDrawTargetHeight},
			{"set_pixel_blend", graphicsSetPixelBlend},
			{"set_pixel_mode", graphicsSetPixelMode},
			{"get_pixel_mode", graphicsGetPixelMode},
			{},
		},
		Constants: []ConstTable{{Name: "PixelMode", Values: modes}},
	}
}

func graphicsClear(s *State, a *marshal.Args) int {
	a.Arity(3, 4)
	s.platform(a).Clear(a.Color(1))
	return 0
}

func graphicsDraw(s *State, a *marshal.Args) int {
	a.Arity(5, 6)
	x, y := a.Int(1), a.Int(2)
	return a.PushBool(s.platform(a).Draw(x, y, a.Color(3)))
}

func graphicsDrawLine(s *State, a *marshal.Args) int {
	a.Arity(7, 8)
	x1, y1 := a.Int(1), a.Int(2)
	x2, y2 := a.Int(3), a.Int(4)
	s.platform(a).DrawLine(x1, y1, x2, y2, a.Color(5))
	return 0
}

func graphicsCircle(fill bool) Func {
	return func(s *State, a *marshal.Args) int {
		a.Arity(6, 7)
		x, y, r := a.Int(1), a.Int(2), a.Int(3)
		p := a.Color(4)
		if fill {
			s.platform(a).FillCircle(x, y, r, p)
		} else {
			s.platform(a).DrawCircle(x, y, r, p)
		}
		return 0
	}
}

func graphicsRect(fill bool) Func {
	return func(s *State, a *marshal.Args) int {
		a.Arity(7, 8)
		x, y := a.Int(1), a.Int(2)
		w, h := a.Int(3), a.Int(4)
		p := a.Color(5)
		if fill {
			s.platform(a).FillRect(x, y, w, h, p)
		} else {
			s.platform(a).DrawRect(x, y, w, h, p)
		}
		return 0
	}
}

func graphicsTriangle(fill bool) Func {
	return func(s *State, a *marshal.Args) int {
		a.Arity(9, 10)
		x1, y1 := a.Int(1), a.Int(2)
		x2, y2 := a.Int(3), a.Int(4)
		x3, y3 := a.Int(5), a.Int(6)
		p := a.Color(7)
		if fill {
			s.platform(a).FillTriangle(x1, y1, x2, y2, x3, y3, p)
		} else {
			s.platform(a).DrawTriangle(x1, y1, x2, y2, x3, y3, p)
		}
		return 0
	}
}

// draw_string(x, y, text, r, g, b [, a [, scale]])
func graphicsDrawString(s *State, a *marshal.Args) int {
	a.Arity(6, 8)
	x, y := a.Int(1), a.Int(2)
	text := a.String(3)
	p := a.Color(4)
	scale := a.OptInt(8, 1)
	s.platform(a).DrawString(x, y, text, p, scale)
	return 0
}

func (s *State) sprite(a *marshal.Args, n int) graphics.Sprite {
	sp, err := s.Sprites.Get(a.Handle(n, handle.Sprite))
	if err != nil {
		a.Fail(err)
	}
	return sp
}

func (s *State) decal(a *marshal.Args, n int) graphics.Decal {
	d, err := s.Decals.Get(a.Handle(n, handle.Decal))
	if err != nil {
		a.Fail(err)
	}
	return d
}

func graphicsLoadSprite(s *State, a *marshal.Args) int {
	a.Arity(1, 1)
	path := a.String(1)
	sp, err := s.platform(a).LoadSprite(path)
	if err != nil {
		return a.Fail(err)
	}
	return a.PushHandle(s.Sprites.Insert(sp))
}

func graphicsUnloadSprite(s *State, a *marshal.Args) int {
	a.Arity(1, 1)
	h := a.Handle(1, handle.Sprite)
	p := s.platform(a)
	sp, err := s.Sprites.Remove(h)
	if err != nil {
		return a.Fail(err)
	}
	if s.Target == h {
		s.Target = 0
		p.SetDrawTarget(nil)
	}
	p.UnloadSprite(sp)
	return 0
}

func graphicsCreateDecal(s *State, a *marshal.Args) int {
	a.Arity(1, 1)
	sp := s.sprite(a, 1)
	d, err := s.platform(a).CreateDecal(sp)
	if err != nil {
		return a.Fail(err)
	}
	return a.PushHandle(s.Decals.Insert(d))
}

func graphicsDestroyDecal(s *State, a *marshal.Args) int {
	a.Arity(1, 1)
	p := s.platform(a)
	d, err := s.Decals.Remove(a.Handle(1, handle.Decal))
	if err != nil {
		return a.Fail(err)
	}
	p.DestroyDecal(d)
	return 0
}

// draw_sprite(x, y, sprite [, scale])
func graphicsDrawSprite(s *State, a *marshal.Args) int {
	a.Arity(3, 4)
	x, y := a.Int(1), a.Int(2)
	sp := s.sprite(a, 3)
	s.platform(a).DrawSprite(x, y, sp, a.OptInt(4, 1))
	return 0
}

// draw_partial_sprite(x, y, sprite, ox, oy, w, h [, scale])
func graphicsDrawPartialSprite(s *State, a *marshal.Args) int {
	a.Arity(7, 8)
	x, y := a.Int(1), a.Int(2)
	sp := s.sprite(a, 3)
	ox, oy := a.Int(4), a.Int(5)
	w, h := a.Int(6), a.Int(7)
	s.platform(a).DrawPartialSprite(x, y, sp, ox, oy, w, h, a.OptInt(8, 1))
	return 0
}

// tintAt reads an optional tint color starting at n, defaulting to white.
func tintAt(a *marshal.Args, n int) graphics.Pixel {
	if a.Len() < n {
		return graphics.RGB(255, 255, 255)
	}
	return a.Color(n)
}

// draw_decal(x, y, decal [, sx, sy [, r, g, b [, a]]])
func graphicsDrawDecal(s *State, a *marshal.Args) int {
	a.Arity(3, 9)
	x, y := a.Float(1), a.Float(2)
	d := s.decal(a, 3)
	sx, sy := a.OptFloat(4, 1), a.OptFloat(5, 1)
	p := tintAt(a, 6)
	s.platform(a).DrawDecal(x, y, d, sx, sy, p)
	return 0
}

// draw_rotated_decal(x, y, decal, angle [, cx, cy [, sx, sy [, r, g, b [, a]]]])
func graphicsDrawRotatedDecal(s *State, a *marshal.Args) int {
	a.Arity(4, 12)
	x, y := a.Float(1), a.Float(2)
	d := s.decal(a, 3)
	angle := a.Float(4)
	cx, cy := a.OptFloat(5, 0), a.OptFloat(6, 0)
	sx, sy := a.OptFloat(7, 1), a.OptFloat(8, 1)
	p := tintAt(a, 9)
	s.platform(a).DrawRotatedDecal(x, y, d, angle, cx, cy, sx, sy, p)
	return 0
}

// set_draw_target(sprite | nil)
func graphicsSetDrawTarget(s *State, a *marshal.Args) int {
	a.Arity(0, 1)
	p := s.platform(a)
	h, ok := a.OptHandle(1, handle.Sprite)
	if !ok {
		s.Target = 0
		p.SetDrawTarget(nil)
		return 0
	}
	p.SetDrawTarget(s.sprite(a, 1))
	s.Target = h
	return 0
}

func graphicsGetDrawTarget(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	if s.Target.IsZero() {
		return a.PushNil()
	}
	return a.PushHandle(s.Target)
}

func graphicsGetDrawTargetWidth(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(s.platform(a).DrawTargetWidth())
}

func graphicsGetDrawTargetHeight(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(s.platform(a).DrawTargetHeight())
}

func graphicsSetPixelBlend(s *State, a *marshal.Args) int {
	a.Arity(1, 1)
	s.platform(a).SetPixelBlend(a.Float(1))
	return 0
}

func graphicsSetPixelMode(s *State, a *marshal.Args) int {
	a.Arity(1, 1)
	m := graphics.PixelMode(a.Int(1))
	if s.Mode == marshal.Strict && (m < graphics.PixelNormal || m > graphics.PixelCustom) {
		a.Raise(1, "pixel mode", m.String())
	}
	s.platform(a).SetPixelMode(m)
	return 0
}

func graphicsGetPixelMode(s *State, a *marshal.Args) int {
	a.Arity(0, 0)
	return a.PushInt(int(s.platform(a).PixelMode()))
}
