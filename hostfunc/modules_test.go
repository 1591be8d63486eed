package hostfunc

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caffeineduck/pgelua/graphics"
	"github.com/caffeineduck/pgelua/handle"
	"github.com/caffeineduck/pgelua/headless"
	"github.com/caffeineduck/pgelua/marshal"
	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"
)

func newPlatformHost(t *testing.T, mode marshal.Mode) (*lua.LState, *State, *headless.Surface) {
	t.Helper()
	L, s := newHost(t, Builtin(), mode)
	surface := headless.New(320, 240)
	s.Platform = surface
	return L, s, surface
}

func run(t *testing.T, L *lua.LState, code string) {
	t.Helper()
	if err := L.DoString(code); err != nil {
		t.Fatalf("script failed: %v", err)
	}
}

func TestBuiltinModules(t *testing.T) {
	r := Builtin()
	want := []string{"graphics", "input", "timer", "window"}
	if diff := cmp.Diff(want, r.List()); diff != "" {
		t.Errorf("builtin modules (-want +got):\n%s", diff)
	}
}

func TestGraphicsPrimitives(t *testing.T) {
	L, _, surface := newPlatformHost(t, marshal.Strict)

	run(t, L, `
		PGE.graphics.clear(10, 20, 30)
		inside = PGE.graphics.draw(1, 1, 255, 0, 0, 128)
		PGE.graphics.draw_line(0, 0, 5, 5, 1, 2, 3)
		PGE.graphics.draw_circle(10, 10, 3, 1, 2, 3)
		PGE.graphics.fill_circle(10, 10, 3, 1, 2, 3, 4)
		PGE.graphics.draw_rect(1, 2, 3, 4, 5, 6, 7)
		PGE.graphics.fill_rect(1.9, 2, 3, 4, 10, 20, 30)
		PGE.graphics.draw_triangle(0, 0, 1, 1, 2, 0, 9, 9, 9)
		PGE.graphics.fill_triangle(0, 0, 1, 1, 2, 0, 9, 9, 9, 0)
		PGE.graphics.draw_string(4, 5, "score", 255, 255, 255)
		PGE.graphics.draw_string(4, 5, 42, 255, 255, 255, 255, 2)
	`)

	want := []string{
		"clear(#0a141eff)",
		"draw(1, 1, #ff000080)",
		"draw_line(0, 0, 5, 5, #010203ff)",
		"draw_circle(10, 10, 3, #010203ff)",
		"fill_circle(10, 10, 3, #01020304)",
		"draw_rect(1, 2, 3, 4, #050607ff)",
		"fill_rect(1, 2, 3, 4, #0a141eff)",
		"draw_triangle(0, 0, 1, 1, 2, 0, #090909ff)",
		"fill_triangle(0, 0, 1, 1, 2, 0, #09090900)",
		`draw_string(4, 5, "score", #ffffffff, 1)`,
		`draw_string(4, 5, "42", #ffffffff, 2)`,
	}
	if diff := cmp.Diff(want, surface.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if L.GetGlobal("inside") != lua.LTrue {
		t.Error("expected draw inside the screen to return true")
	}
}

func TestGraphicsNoPlatform(t *testing.T) {
	L, _ := newHost(t, Builtin(), marshal.Strict)
	err := L.DoString(`PGE.graphics.clear(0, 0, 0)`)
	if err == nil {
		t.Fatal("expected error without platform")
	}
	if !strings.Contains(err.Error(), ErrNoPlatform.Error()) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTimerDeltaTime(t *testing.T) {
	L, s := newHost(t, Builtin(), marshal.Strict)
	s.DeltaTime = 1.0 / 60
	run(t, L, `dt = PGE.timer.get_delta_time()`)
	if got := float64(L.GetGlobal("dt").(lua.LNumber)); got != 1.0/60 {
		t.Errorf("dt = %v, want %v", got, 1.0/60)
	}
}

func TestInputAndWindow(t *testing.T) {
	L, _, surface := newPlatformHost(t, marshal.Strict)
	surface.SetKey(graphics.KeyA, graphics.HWButton{Pressed: true})
	surface.SetKey(graphics.KeyUp, graphics.HWButton{Held: true})
	surface.SetMouse(1, graphics.HWButton{Released: true})
	surface.SetMousePos(7, 8, 1)

	run(t, L, `
		local input, Key = PGE.input, PGE.input.Key
		assert(input.is_key_pressed(Key.A))
		assert(not input.is_key_held(Key.A))
		assert(input.is_key_held(Key.UP))
		assert(not input.is_key_released(Key.F12))
		assert(input.is_mouse_released(1))
		assert(not input.is_mouse_pressed(0))
		assert(not input.is_mouse_held(1))
		assert(input.mouse_x() == 7 and input.mouse_y() == 8 and input.mouse_wheel() == 1)
		assert(Key.K0 and Key.F1 and Key.RIGHT)

		local w = PGE.window
		assert(w.screen_width() == 320 and w.screen_height() == 240)
		assert(w.is_focus())
	`)

	surface.SetFocus(false)
	run(t, L, `assert(not PGE.window.is_focus())`)
}

func TestPixelMode(t *testing.T) {
	L, _, surface := newPlatformHost(t, marshal.Strict)
	run(t, L, `
		local g = PGE.graphics
		assert(g.get_pixel_mode() == g.PixelMode.NORMAL)
		g.set_pixel_mode(g.PixelMode.ALPHA)
		assert(g.get_pixel_mode() == g.PixelMode.ALPHA)
		g.set_pixel_blend(0.5)
	`)
	if surface.PixelMode() != graphics.PixelAlpha {
		t.Errorf("mode = %v", surface.PixelMode())
	}
	if surface.PixelBlend() != 0.5 {
		t.Errorf("blend = %v", surface.PixelBlend())
	}

	err := L.DoString(`PGE.graphics.set_pixel_mode(9)`)
	if !marshal.IsMismatch(err) {
		t.Errorf("expected mismatch for unknown mode, got %v", err)
	}
}

func TestSpriteLifecycle(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	path := filepath.Join(t.TempDir(), "ship.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	png.Encode(f, img)
	f.Close()

	L, s, surface := newPlatformHost(t, marshal.Strict)
	L.SetGlobal("path", lua.LString(path))

	run(t, L, `
		local g = PGE.graphics
		ship = g.load_sprite(path)
		assert(type(ship) == "userdata")
		deco = g.create_decal(ship)
		g.draw_sprite(1, 2, ship)
		g.draw_partial_sprite(1, 2, ship, 0, 0, 4, 4, 2)
		g.draw_decal(1.5, 2.5, deco)
		g.draw_decal(1.5, 2.5, deco, 2, 2, 255, 0, 0)
		g.draw_rotated_decal(0, 0, deco, 3.14, 8, 4)

		assert(g.get_draw_target() == nil)
		g.set_draw_target(ship)
		assert(g.get_draw_target_width() == 16 and g.get_draw_target_height() == 8)
		assert(g.get_draw_target() == ship)
		assert(g.get_draw_target() == g.get_draw_target())
	`)

	if s.Sprites.Len() != 1 || s.Decals.Len() != 1 {
		t.Fatalf("tables = %d sprites, %d decals", s.Sprites.Len(), s.Decals.Len())
	}

	run(t, L, `
		local g = PGE.graphics
		g.destroy_decal(deco)
		g.unload_sprite(ship)
		assert(g.get_draw_target() == nil)
		assert(g.get_draw_target_width() == 320)
	`)
	if s.Sprites.Len() != 0 || s.Decals.Len() != 0 {
		t.Errorf("expected empty tables after release")
	}
	if surface.Loaded() != 0 {
		t.Errorf("platform still holds %d sprites", surface.Loaded())
	}

	calls := surface.Calls()
	wantPrefix := "draw_decal(1.5, 2.5, decal(sprite(" + path + " 16x8)), 1, 1, #ffffffff)"
	found := false
	for _, c := range calls {
		if c == wantPrefix {
			found = true
		}
	}
	if !found {
		t.Errorf("default tint call %q not recorded in %v", wantPrefix, calls)
	}
}

func TestStaleHandle(t *testing.T) {
	L, s, _ := newPlatformHost(t, marshal.Strict)
	h := s.Sprites.Insert(headless.NewSprite(4, 4))
	L.SetGlobal("sp", marshal.NewHandle(L, h))

	run(t, L, `PGE.graphics.unload_sprite(sp)`)

	err := L.DoString(`PGE.graphics.unload_sprite(sp)`)
	if err == nil {
		t.Fatal("expected double unload to fail")
	}
	if !strings.Contains(err.Error(), handle.ErrStale.Error()) {
		t.Errorf("expected stale handle error, got %v", err)
	}

	err = L.DoString(`PGE.graphics.draw_sprite(0, 0, sp)`)
	if err == nil || !strings.Contains(err.Error(), handle.ErrStale.Error()) {
		t.Errorf("expected stale handle on draw, got %v", err)
	}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sprite.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestHandleKindsNotInterchangeable(t *testing.T) {
	for _, mode := range []marshal.Mode{marshal.Strict, marshal.Permissive} {
		t.Run(mode.String(), func(t *testing.T) {
			L, s, surface := newPlatformHost(t, mode)
			L.SetGlobal("path", lua.LString(writePNG(t, 4, 4)))
			run(t, L, `
				spr = PGE.graphics.load_sprite(path)
				dec = PGE.graphics.create_decal(spr)
			`)
			surface.ResetCalls()

			for _, code := range []string{
				`PGE.graphics.unload_sprite(dec)`,
				`PGE.graphics.destroy_decal(spr)`,
				`PGE.graphics.draw_decal(1, 2, spr)`,
				`PGE.graphics.draw_sprite(1, 2, dec)`,
				`PGE.graphics.set_draw_target(dec)`,
			} {
				err := L.DoString(code)
				if err == nil {
					t.Errorf("%s: expected error", code)
					continue
				}
				if mode == marshal.Strict && !marshal.IsMismatch(err) {
					t.Errorf("%s: expected mismatch, got %v", code, err)
				}
			}

			if s.Sprites.Len() != 1 || s.Decals.Len() != 1 {
				t.Errorf("tables changed: %d sprites, %d decals", s.Sprites.Len(), s.Decals.Len())
			}
			if surface.Loaded() != 1 {
				t.Errorf("platform holds %d sprites, want 1", surface.Loaded())
			}
			if n := len(surface.Calls()); n != 0 {
				t.Errorf("misused handles reached the platform: %v", surface.Calls())
			}
		})
	}
}

func TestLoadSpriteMissingFile(t *testing.T) {
	L, s, _ := newPlatformHost(t, marshal.Strict)
	err := L.DoString(`PGE.graphics.load_sprite("/nonexistent/x.png")`)
	if err == nil {
		t.Fatal("expected load failure")
	}
	if !strings.Contains(err.Error(), "graphics.load_sprite") {
		t.Errorf("error should name the function: %v", err)
	}
	if s.Sprites.Len() != 0 {
		t.Errorf("failed load left %d sprites", s.Sprites.Len())
	}
}

func TestPermissiveModules(t *testing.T) {
	L, _, surface := newPlatformHost(t, marshal.Permissive)
	run(t, L, `
		PGE.graphics.fill_rect("x", 2, nil, 4, 300, 20)
		PGE.timer.get_delta_time(1, 2, 3)
		PGE.graphics.set_pixel_mode(9)
	`)
	want := []string{"fill_rect(0, 2, 0, 4, #2c1400ff)"}
	if diff := cmp.Diff(want, surface.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestStrictArity(t *testing.T) {
	L, _, surface := newPlatformHost(t, marshal.Strict)
	for _, code := range []string{
		`PGE.graphics.clear(1, 2)`,
		`PGE.graphics.fill_rect(1, 2, 3, 4, 5, 6, 7, 8, 9)`,
		`PGE.timer.get_delta_time(1)`,
		`PGE.input.is_key_pressed()`,
		`PGE.graphics.clear(1, 2, 256)`,
	} {
		err := L.DoString(code)
		if !marshal.IsMismatch(err) {
			t.Errorf("%s: expected mismatch, got %v", code, err)
		}
	}
	if n := len(surface.Calls()); n != 0 {
		t.Errorf("malformed calls reached the platform %d times", n)
	}
}
