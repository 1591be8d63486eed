// Package app drives a Lua game script from a real-time host loop.
//
// # Overview
//
// An [App] owns one interpreter. [New] boots it: standard libraries, the PGE
// namespace with the native modules, the engine runtime, then the game
// chunk. It then calls PGE.config() once and validates the result into a
// [Config]. Any failure here is a startup error and no window should be
// created.
//
// # Basic Usage
//
//	a, err := app.New(app.WithScriptDir("./game"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//
//	cfg := a.Config()
//	surface := openWindow(cfg.Title, cfg.ScreenWidth, cfg.ScreenHeight)
//	a.Create(surface)
//
//	for frame := range frames {
//	    a.Frame(frame.Elapsed.Seconds())
//	}
//
// # Game Scripts
//
// A game defines its entry points on the PGE table:
//
//	function PGE.config()
//	    return { title = "demo", screen_width = 256, screen_height = 240,
//	             screen_x_scale = 2, screen_y_scale = 2 }
//	end
//
//	function PGE.update()
//	    local dt = PGE.timer.get_delta_time()
//	end
//
// Only config is required. The validated settings are readable as
// PGE.settings.
//
// # Errors
//
// Errors raised by load, update and on_destroy are logged with their
// traceback and passed to PGE.error, then the loop continues. An error
// raised by PGE.error itself is logged and never re-enters the hook.
package app
