package hostfunc

import (
	"errors"
	"sync"

	"github.com/caffeineduck/pgelua/graphics"
	"github.com/caffeineduck/pgelua/handle"
	"github.com/caffeineduck/pgelua/marshal"
	lua "github.com/yuin/gopher-lua"
)

var (
	// ErrHostActive is returned by Bind while another host is bound.
	ErrHostActive = errors.New("another host is active")
	// ErrNoActiveHost is raised by natives called without a bound host.
	ErrNoActiveHost = errors.New("no active host")
	// ErrNoPlatform is raised by natives that need a platform before Create.
	ErrNoPlatform = errors.New("no platform attached")
)

// State is the host state native functions reach through the registry.
// It is owned and mutated by the host loop goroutine.
type State struct {
	Mode      marshal.Mode
	DeltaTime float64
	Platform  graphics.Platform

	Sprites *handle.Table[graphics.Sprite]
	Decals  *handle.Table[graphics.Decal]
	Target  handle.Handle // zero = screen
}

// NewState returns an empty state using mode for argument coercion.
func NewState(mode marshal.Mode) *State {
	return &State{
		Mode:    mode,
		Sprites: handle.NewTable[graphics.Sprite](handle.Sprite),
		Decals:  handle.NewTable[graphics.Decal](handle.Decal),
	}
}

func (s *State) platform(a *marshal.Args) graphics.Platform {
	if s.Platform == nil {
		a.Fail(ErrNoPlatform)
	}
	return s.Platform
}

// The registry holds at most one bound host, keyed by its interpreter.
var active struct {
	mu    sync.RWMutex
	L     *lua.LState
	state *State
}

// Bind makes s the active host for L. It fails if another host is bound.
func Bind(L *lua.LState, s *State) error {
	active.mu.Lock()
	defer active.mu.Unlock()
	if active.L != nil {
		return ErrHostActive
	}
	active.L = L
	active.state = s
	return nil
}

// Unbind clears the registry if L is the active host.
func Unbind(L *lua.LState) {
	active.mu.Lock()
	defer active.mu.Unlock()
	if active.L == L {
		active.L = nil
		active.state = nil
	}
}

// StateOf returns the host bound to L. Coroutines of the bound interpreter
// share its globals and resolve to the same host.
func StateOf(L *lua.LState) (*State, error) {
	active.mu.RLock()
	defer active.mu.RUnlock()
	if active.L == nil || (active.L != L && active.L.G != L.G) {
		return nil, ErrNoActiveHost
	}
	return active.state, nil
}
