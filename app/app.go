package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/caffeineduck/pgelua/clock"
	"github.com/caffeineduck/pgelua/engine"
	"github.com/caffeineduck/pgelua/graphics"
	"github.com/caffeineduck/pgelua/handle"
	"github.com/caffeineduck/pgelua/hostfunc"
	"github.com/caffeineduck/pgelua/marshal"
	lua "github.com/yuin/gopher-lua"
)

// Namespace is the global table scripts reach the host through.
const Namespace = "PGE"

// Version reported to scripts as PGE.MajorVersion and PGE.MinorVersion.
const (
	MajorVersion = 0
	MinorVersion = 1
)

// Stats counts what the host loop has done so far.
type Stats struct {
	Frames       int
	Updates      int
	Dropped      int
	ScriptErrors int
	HookFailures int
	LiveSprites  int
	LiveDecals   int
}

// App is the interpreter lifecycle for one game. Only one App can be open at
// a time; its methods must be called from the host loop goroutine.
type App struct {
	opts    options
	L       *lua.LState
	state   *hostfunc.State
	ns      *lua.LTable
	clock   *clock.FrameClock
	cfg     Config
	entries map[engine.Entry]*lua.LFunction
	ic      *interceptor
	stats   Stats

	mu      sync.Mutex
	created bool
	closed  bool
}

// New boots the interpreter, loads the engine runtime and the game chunk and
// reads the game config. Errors match ErrStartup.
func New(opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	state := hostfunc.NewState(o.mode)
	if err := hostfunc.Bind(L, state); err != nil {
		L.Close()
		return nil, &StartupError{Phase: "bind", Err: err}
	}

	a := &App{
		opts:  o,
		L:     L,
		state: state,
	}
	if err := a.boot(); err != nil {
		a.release()
		return nil, err
	}

	o.logger.Debug("app booted",
		"title", a.cfg.Title,
		"width", a.cfg.ScreenWidth,
		"height", a.cfg.ScreenHeight,
		"target_frame", a.cfg.TargetFrame,
		"mode", o.mode.String(),
	)
	return a, nil
}

func (a *App) boot() error {
	L := a.L

	if err := openLibs(L, a.opts.sandbox); err != nil {
		return &StartupError{Phase: "libs", Err: err}
	}
	L.SetGlobal("print", L.NewFunction(a.print))

	a.ns = L.NewTable()
	a.ns.RawSetString("MajorVersion", lua.LNumber(MajorVersion))
	a.ns.RawSetString("MinorVersion", lua.LNumber(MinorVersion))
	L.SetGlobal(Namespace, a.ns)

	registry := hostfunc.Builtin()
	for _, r := range a.opts.registries {
		if err := registry.Merge(r); err != nil {
			return &StartupError{Phase: "register", Err: err}
		}
	}
	registry.Install(L, a.ns)

	if err := a.installLoaders(); err != nil {
		return &StartupError{Phase: "loaders", Err: err}
	}

	if err := a.require(engine.Name); err != nil {
		return &StartupError{Phase: "engine", Err: err}
	}
	if err := a.require(a.opts.main); err != nil {
		return &StartupError{Phase: "main", Err: err}
	}

	entries, err := engine.Dispatchers(L)
	if err != nil {
		return &StartupError{Phase: "engine", Err: err}
	}
	a.entries = entries

	cfg, err := a.readConfig()
	if err != nil {
		return &StartupError{Phase: "config", Err: err}
	}
	a.cfg = cfg
	a.ns.RawSetString("settings", cfg.table(L))

	a.clock, err = clock.New(clock.Config{FrameRate: cfg.TargetFrame, MaxSteps: a.opts.maxCatchUp})
	if err != nil {
		return &StartupError{Phase: "clock", Err: err}
	}

	a.ic = &interceptor{
		L:     L,
		log:   a.opts.logger,
		hook:  entries[engine.Error],
		stats: &a.stats,
	}
	return nil
}

func openLibs(L *lua.LState, sandbox bool) error {
	if !sandbox {
		L.OpenLibs()
		return nil
	}

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
		{lua.CoroutineLibName, lua.OpenCoroutine},
	} {
		err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name))
		if err != nil {
			return fmt.Errorf("open %s: %w", lib.name, err)
		}
	}

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	pkg := L.GetGlobal("package")
	L.SetField(pkg, "path", lua.LString(""))
	L.SetField(pkg, "cpath", lua.LString(""))
	return nil
}

// installLoaders registers the engine runtime and in-memory sources in
// package.preload and puts the mount searcher right after the preload
// searcher.
func (a *App) installLoaders() error {
	L := a.L
	if err := engine.Preload(L); err != nil {
		return err
	}

	pkg := L.GetGlobal("package")
	preload, ok := L.GetField(pkg, "preload").(*lua.LTable)
	if !ok {
		return errors.New("package.preload missing")
	}
	for name, src := range a.opts.sources {
		fn, err := L.Load(strings.NewReader(src), name)
		if err != nil {
			return fmt.Errorf("compile %s: %w", name, err)
		}
		preload.RawSetString(name, fn)
	}

	if len(a.opts.mounts) > 0 {
		loaders, ok := L.GetField(pkg, "loaders").(*lua.LTable)
		if !ok {
			return errors.New("package.loaders missing")
		}
		fs := hostfunc.NewScriptFS(a.opts.mounts...)
		loaders.Insert(2, L.NewFunction(fs.Searcher))
	}
	return nil
}

func (a *App) require(name string) error {
	top := a.L.GetTop()
	defer a.L.SetTop(top)
	return a.L.CallByParam(lua.P{Fn: a.L.GetGlobal("require"), NRet: 1, Protect: true}, lua.LString(name))
}

func (a *App) readConfig() (Config, error) {
	L := a.L
	top := L.GetTop()
	defer L.SetTop(top)

	if err := L.CallByParam(lua.P{Fn: a.entries[engine.Config], NRet: 1, Protect: true}); err != nil {
		return Config{}, err
	}
	return parseConfig(L.Get(-1))
}

func (a *App) print(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(a.opts.stdout, strings.Join(parts, "\t"))
	return 0
}

// Config returns the validated game config.
func (a *App) Config() Config {
	return a.cfg
}

// Create attaches the platform once the window exists and runs PGE.load.
// A failing load is reported like any script error and does not fail Create.
func (a *App) Create(p graphics.Platform) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	if a.created {
		return ErrAlreadyCreated
	}
	if p == nil {
		return errors.New("create: nil platform")
	}

	a.state.Platform = p
	a.created = true
	a.ic.call(engine.Load, a.entries[engine.Load])
	return nil
}

// Frame feeds one real frame of elapsed seconds into the clock and runs
// PGE.update once per whole logical step. It returns the number of updates.
func (a *App) Frame(elapsed float64) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return 0, ErrClosed
	}
	if !a.created {
		return 0, ErrNotCreated
	}

	update := a.entries[engine.Update]
	ran, dropped := a.clock.Advance(elapsed, func(dt float64) {
		a.state.DeltaTime = dt
		a.ic.call(engine.Update, update)
	})

	a.stats.Frames++
	if dropped > 0 {
		a.opts.logger.Warn("dropped catch-up steps",
			"dropped", dropped,
			"max_catchup", a.opts.maxCatchUp,
			"elapsed", elapsed,
		)
	}
	return ran, nil
}

// Eval runs code in the game's interpreter and returns its results. Code
// that parses as an expression is evaluated as one. Failures are returned,
// not passed to the error hook.
func (a *App) Eval(code string) ([]any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	L := a.L
	fn, err := L.LoadString("return " + code)
	if err != nil {
		fn, err = L.LoadString(code)
		if err != nil {
			return nil, fmt.Errorf("compile: %w", err)
		}
	}

	top := L.GetTop()
	defer L.SetTop(top)
	if err := L.CallByParam(lua.P{Fn: fn, NRet: lua.MultRet, Protect: true}); err != nil {
		return nil, newScriptError("eval", err)
	}

	n := L.GetTop() - top
	results := make([]any, 0, n)
	for i := top + 1; i <= L.GetTop(); i++ {
		results = append(results, marshal.ToGo(L.Get(i)))
	}
	return results, nil
}

// LastError returns the most recent recovered script error, or nil.
func (a *App) LastError() *ScriptError {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ic == nil {
		return nil
	}
	return a.ic.last
}

// Stats returns a snapshot of the loop counters.
func (a *App) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.stats
	s.Updates = int(a.clock.Steps())
	s.Dropped = int(a.clock.Dropped())
	s.LiveSprites = a.state.Sprites.Len()
	s.LiveDecals = a.state.Decals.Len()
	return s
}

// Close runs PGE.on_destroy if the app was created, then releases the
// interpreter and the host registry. It is safe to call more than once.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if a.created {
		a.ic.call(engine.OnDestroy, a.entries[engine.OnDestroy])
	}
	a.state.Sprites.Each(func(h handle.Handle, sp graphics.Sprite) {
		a.opts.logger.Debug("handle still live at teardown", "handle", h.String(), "value", sp)
	})
	a.state.Decals.Each(func(h handle.Handle, d graphics.Decal) {
		a.opts.logger.Debug("handle still live at teardown", "handle", h.String(), "value", d)
	})
	a.release()
	return nil
}

func (a *App) release() {
	hostfunc.Unbind(a.L)
	a.state.Platform = nil
	a.L.Close()
}
