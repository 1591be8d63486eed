// Package pgelua embeds a Lua game script in a real-time host loop.
//
// # Overview
//
// A game script defines its entry points on the global PGE table and draws
// through capability modules (PGE.graphics, PGE.input, PGE.window,
// PGE.timer). The host owns the window and the frame loop; pgelua owns the
// interpreter, the fixed-timestep clock and the script boundary.
//
// # Basic Usage
//
//	a, err := app.New(app.WithScriptDir("./mygame"))
//	if err != nil {
//	    return err // *app.StartupError, e.g. an invalid PGE.config()
//	}
//	defer a.Close() // runs PGE.on_destroy
//
//	cfg := a.Config()
//	a.Create(platform) // runs PGE.load
//
//	for running {
//	    a.Frame(elapsed) // runs PGE.update once per 1/target_frame seconds
//	}
//
// A game script:
//
//	function PGE.config()
//	    return { title = "demo", screen_width = 256, screen_height = 240,
//	             screen_x_scale = 2, screen_y_scale = 2 }
//	end
//
//	function PGE.update()
//	    PGE.graphics.clear(0, 0, 0)
//	    PGE.graphics.fill_circle(128, 120, 8, 255, 255, 255)
//	end
//
// Errors raised by PGE.load, PGE.update and PGE.on_destroy are recovered,
// logged with their traceback and passed to PGE.error; the loop continues.
//
// See the [app], [hostfunc], [marshal], [clock] and [headless] packages for
// detailed API documentation, and cmd/pgelua for the command line runner.
package pgelua
