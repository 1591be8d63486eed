package app

import (
	"log/slog"

	"github.com/caffeineduck/pgelua/engine"
	lua "github.com/yuin/gopher-lua"
)

// interceptor runs entry points in protected mode. A failure is logged with
// its traceback and handed to the script error hook; the caller carries on.
type interceptor struct {
	L      *lua.LState
	log    *slog.Logger
	hook   *lua.LFunction
	stats  *Stats
	last   *ScriptError
	inHook bool
}

// call invokes fn for entry. The returned error has already been reported.
func (i *interceptor) call(entry engine.Entry, fn *lua.LFunction, args ...lua.LValue) *ScriptError {
	top := i.L.GetTop()
	err := i.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	i.L.SetTop(top)
	if err == nil {
		return nil
	}

	se := newScriptError(entry, err)
	i.last = se
	i.stats.ScriptErrors++
	i.log.Error("script error",
		"entry", string(entry),
		"error", se.Message,
		"mismatch", se.Mismatch,
		"traceback", se.Traceback,
	)
	i.report(se)
	return se
}

// report passes the traceback to the error hook. The hook runs at most once
// per failure and never for a failure of its own.
func (i *interceptor) report(se *ScriptError) {
	if i.hook == nil || i.inHook {
		return
	}
	i.inHook = true
	defer func() { i.inHook = false }()

	top := i.L.GetTop()
	err := i.L.CallByParam(lua.P{Fn: i.hook, NRet: 0, Protect: true}, lua.LString(se.Traceback))
	i.L.SetTop(top)
	if err != nil {
		i.stats.HookFailures++
		i.log.Error("error hook failed", "entry", string(se.Entry), "error", err.Error())
	}
}
