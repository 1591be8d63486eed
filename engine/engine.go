// Package engine provides the engine runtime chunk loaded before game code.
package engine

import (
	_ "embed"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

//go:embed engine.lua
var source string

// Name is the module name the runtime is required under.
const Name = "_pge"

// Entry names a script entry point.
type Entry string

const (
	Config    Entry = "config"
	Load      Entry = "load"
	Update    Entry = "update"
	OnDestroy Entry = "on_destroy"
	Error     Entry = "error"
)

// Entries lists every entry point in lifecycle order.
func Entries() []Entry {
	return []Entry{Config, Load, Update, OnDestroy, Error}
}

// Global returns the dispatcher the host calls for e.
func (e Entry) Global() string {
	return Name + "_" + string(e)
}

// Preload compiles the runtime and registers it in package.preload, so the
// first require(Name) runs it and later requires reuse the result.
func Preload(L *lua.LState) error {
	fn, err := L.Load(strings.NewReader(source), Name)
	if err != nil {
		return fmt.Errorf("compile %s: %w", Name, err)
	}
	preload, ok := L.GetField(L.GetGlobal("package"), "preload").(*lua.LTable)
	if !ok {
		return fmt.Errorf("package.preload missing")
	}
	preload.RawSetString(Name, fn)
	return nil
}

// Dispatchers returns the dispatcher functions, failing if the runtime has
// not defined one of them.
func Dispatchers(L *lua.LState) (map[Entry]*lua.LFunction, error) {
	out := make(map[Entry]*lua.LFunction, len(Entries()))
	for _, e := range Entries() {
		fn, ok := L.GetGlobal(e.Global()).(*lua.LFunction)
		if !ok {
			return nil, fmt.Errorf("%s: dispatcher %s not defined", Name, e.Global())
		}
		out[e] = fn
	}
	return out, nil
}
