// Package hostfunc provides the native functions scripts call through the
// host namespace.
//
// Native functions are Go functions installed into the interpreter with a
// fixed signature. They reach host state through a process-wide registry
// keyed by the interpreter, so at most one host is active at a time.
//
// # Overview
//
// A [Module] names a group of functions and optional constant tables.
// Modules are collected in a [Registry] and installed under the host
// namespace, one subtable per module:
//
//	registry := hostfunc.Builtin()
//	registry.Register(hostfunc.Module{
//	    Name: "audio",
//	    Funcs: []hostfunc.Entry{
//	        {"play", play},
//	        {},
//	    },
//	})
//	registry.Install(L, ns)
//
// Scripts then call PGE.audio.play(...). Two modules may use the same short
// function name since each lives under its own subtable.
//
// # Host State
//
// [Bind] makes a [State] the active host for an interpreter and [Unbind]
// clears it. Every native function looks the state up per call and raises
// "no active host" when nothing is bound, rather than touching stale state.
//
// # Built-in Capabilities
//
// Timer: get_delta_time.
//
// Graphics: primitives, sprites, decals, draw targets and pixel modes, via
// the [graphics.Platform] attached to the state. Sprites and decals cross
// into scripts as opaque handles; a destroyed handle is detected as stale.
//
// Input: key and mouse polling plus the Key constant table.
//
// Window: screen size and focus.
//
// # Script Mounts
//
// [ScriptFS] resolves require names against read-only mounts. Paths never
// escape their mount.
package hostfunc
