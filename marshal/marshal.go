// Package marshal converts values at the boundary between native functions
// and the Lua interpreter.
//
// Every native function reads its arguments through an [Args] value, which
// applies one of two coercion policies:
//
//   - [Strict] checks arity and argument types and raises a Lua error whose
//     message starts with "marshal mismatch:" when a call is malformed.
//   - [Permissive] never raises. Missing or mistyped arguments coerce to
//     zero values the way lua_tointeger and lua_tostring do.
//
// Integers truncate toward zero. A color is read from three consecutive
// arguments (R, G, B) with an optional fourth alpha defaulting to 255.
// Strings are copied out of the interpreter. Opaque handles travel as
// userdata whose contents scripts cannot inspect.
package marshal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caffeineduck/pgelua/graphics"
	"github.com/caffeineduck/pgelua/handle"
	lua "github.com/yuin/gopher-lua"
)

// Mode selects the coercion policy.
type Mode int

const (
	// Strict validates arity and argument types.
	Strict Mode = iota
	// Permissive coerces malformed arguments to zero values.
	Permissive
)

func (m Mode) String() string {
	if m == Permissive {
		return "permissive"
	}
	return "strict"
}

// ParseMode parses "strict" or "permissive".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, nil
	case "permissive":
		return Permissive, nil
	default:
		return Strict, fmt.Errorf("unknown marshal mode %q (expected strict or permissive)", s)
	}
}

const mismatchPrefix = "marshal mismatch:"

// ErrMismatch matches every [MismatchError].
var ErrMismatch = errors.New("marshal mismatch")

// MismatchError describes a malformed native call.
type MismatchError struct {
	Func     string
	Arg      int // 0 when the arity is wrong
	Expected string
	Got      string
}

func (e *MismatchError) Error() string {
	if e.Arg == 0 {
		return fmt.Sprintf("%s %s: expected %s arguments, got %s", mismatchPrefix, e.Func, e.Expected, e.Got)
	}
	return fmt.Sprintf("%s %s: argument #%d: expected %s, got %s", mismatchPrefix, e.Func, e.Arg, e.Expected, e.Got)
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }

// IsMismatch reports whether err is, or was raised by the interpreter from,
// a marshal mismatch.
func IsMismatch(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMismatch) {
		return true
	}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return strings.Contains(apiErr.Object.String(), mismatchPrefix)
	}
	return strings.Contains(err.Error(), mismatchPrefix)
}

// Args reads the arguments of one native call.
type Args struct {
	L    *lua.LState
	fn   string
	mode Mode
}

// NewArgs wraps the current call frame of L. fn is the qualified function
// name used in error messages.
func NewArgs(L *lua.LState, fn string, mode Mode) *Args {
	return &Args{L: L, fn: fn, mode: mode}
}

// Func returns the qualified name of the called function.
func (a *Args) Func() string { return a.fn }

// Mode returns the coercion policy of the call.
func (a *Args) Mode() Mode { return a.mode }

// Len returns the number of arguments on the stack.
func (a *Args) Len() int { return a.L.GetTop() }

func (a *Args) raise(err *MismatchError) {
	a.L.RaiseError("%s", err.Error())
}

// Arity checks the argument count in strict mode. max < 0 means unbounded.
func (a *Args) Arity(min, max int) {
	if a.mode != Strict {
		return
	}
	n := a.Len()
	if n >= min && (max < 0 || n <= max) {
		return
	}
	expected := fmt.Sprintf("%d", min)
	switch {
	case max < 0:
		expected = fmt.Sprintf("at least %d", min)
	case max != min:
		expected = fmt.Sprintf("%d to %d", min, max)
	}
	a.raise(&MismatchError{Func: a.fn, Expected: expected, Got: fmt.Sprintf("%d", n)})
}

func (a *Args) number(n int) (lua.LNumber, bool) {
	v := a.L.Get(n)
	if num, ok := v.(lua.LNumber); ok {
		return num, true
	}
	if a.mode == Strict {
		a.raise(&MismatchError{Func: a.fn, Arg: n, Expected: "number", Got: v.Type().String()})
	}
	return lua.LVAsNumber(v), false
}

// Int reads argument n as an integer, truncating toward zero.
func (a *Args) Int(n int) int {
	num, _ := a.number(n)
	return int(num)
}

// Float reads argument n as a number.
func (a *Args) Float(n int) float64 {
	num, _ := a.number(n)
	return float64(num)
}

// OptInt reads argument n, or returns def when it is absent or nil.
func (a *Args) OptInt(n, def int) int {
	if a.L.Get(n) == lua.LNil {
		return def
	}
	return a.Int(n)
}

// OptFloat reads argument n, or returns def when it is absent or nil.
func (a *Args) OptFloat(n int, def float64) float64 {
	if a.L.Get(n) == lua.LNil {
		return def
	}
	return a.Float(n)
}

// String reads argument n as a string copied out of the interpreter.
// Numbers are accepted and formatted the way Lua formats them.
func (a *Args) String(n int) string {
	v := a.L.Get(n)
	switch s := v.(type) {
	case lua.LString:
		return strings.Clone(string(s))
	case lua.LNumber:
		return s.String()
	}
	if a.mode == Strict {
		a.raise(&MismatchError{Func: a.fn, Arg: n, Expected: "string", Got: v.Type().String()})
	}
	return ""
}

// Bool reads argument n using Lua truthiness.
func (a *Args) Bool(n int) bool {
	return lua.LVAsBool(a.L.Get(n))
}

func (a *Args) channel(n int) uint8 {
	v := a.Int(n)
	if a.mode == Strict && (v < 0 || v > 255) {
		a.raise(&MismatchError{Func: a.fn, Arg: n, Expected: "color channel 0-255", Got: fmt.Sprintf("%d", v)})
	}
	return uint8(v)
}

// Color reads R, G, B from arguments n..n+2 and an optional alpha from n+3.
func (a *Args) Color(n int) graphics.Pixel {
	p := graphics.Pixel{
		R: a.channel(n),
		G: a.channel(n + 1),
		B: a.channel(n + 2),
		A: 255,
	}
	if a.L.Get(n+3) != lua.LNil {
		p.A = a.channel(n + 3)
	}
	return p
}

// Handle reads argument n as an opaque handle of the given kind. Strict mode
// raises for anything else; permissive mode yields the zero handle.
func (a *Args) Handle(n int, kind handle.Kind) handle.Handle {
	v := a.L.Get(n)
	got := v.Type().String()
	if h, ok := handleOf(v); ok {
		if kind == handle.Untyped || h.Kind() == kind {
			return h
		}
		got = h.Kind().String()
	}
	if a.mode == Strict {
		a.raise(&MismatchError{Func: a.fn, Arg: n, Expected: kind.String(), Got: got})
	}
	return 0
}

// OptHandle reads argument n as a handle, or reports false when it is nil.
func (a *Args) OptHandle(n int, kind handle.Kind) (handle.Handle, bool) {
	if a.L.Get(n) == lua.LNil {
		return 0, false
	}
	return a.Handle(n, kind), true
}

// Raise raises a mismatch for argument n in strict mode.
func (a *Args) Raise(n int, expected, got string) {
	if a.mode == Strict {
		a.raise(&MismatchError{Func: a.fn, Arg: n, Expected: expected, Got: got})
	}
}

// Fail raises a Lua error attributed to this call.
func (a *Args) Fail(err error) int {
	a.L.RaiseError("%s: %v", a.fn, err)
	return 0
}

// PushInt pushes an integer result and returns the result count.
func (a *Args) PushInt(v int) int {
	a.L.Push(lua.LNumber(v))
	return 1
}

// PushFloat pushes a number result and returns the result count.
func (a *Args) PushFloat(v float64) int {
	a.L.Push(lua.LNumber(v))
	return 1
}

// PushBool pushes a boolean result and returns the result count.
func (a *Args) PushBool(v bool) int {
	a.L.Push(lua.LBool(v))
	return 1
}

// PushString pushes a string result and returns the result count.
func (a *Args) PushString(v string) int {
	a.L.Push(lua.LString(v))
	return 1
}

// PushNil pushes nil and returns the result count.
func (a *Args) PushNil() int {
	a.L.Push(lua.LNil)
	return 1
}

// PushHandle pushes h as opaque userdata.
func (a *Args) PushHandle(h handle.Handle) int {
	a.L.Push(NewHandle(a.L, h))
	return 1
}

// handleTypeName keys the shared handle metatable in the registry.
const handleTypeName = "pgelua.handle"

// NewHandle wraps h in userdata. Two userdata wrapping the same handle
// compare equal in Lua.
func NewHandle(L *lua.LState, h handle.Handle) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = h
	ud.Metatable = handleMetatable(L)
	return ud
}

func handleMetatable(L *lua.LState) *lua.LTable {
	if mt, ok := L.GetTypeMetatable(handleTypeName).(*lua.LTable); ok {
		return mt
	}
	mt := L.NewTypeMetatable(handleTypeName)
	mt.RawSetString("__eq", L.NewFunction(handleEq))
	mt.RawSetString("__tostring", L.NewFunction(handleToString))
	mt.RawSetString("__metatable", lua.LString(handleTypeName))
	return mt
}

func handleOf(v lua.LValue) (handle.Handle, bool) {
	ud, ok := v.(*lua.LUserData)
	if !ok {
		return 0, false
	}
	h, ok := ud.Value.(handle.Handle)
	return h, ok
}

func handleEq(L *lua.LState) int {
	a, okA := handleOf(L.Get(1))
	b, okB := handleOf(L.Get(2))
	L.Push(lua.LBool(okA && okB && a == b))
	return 1
}

func handleToString(L *lua.LState) int {
	h, _ := handleOf(L.Get(1))
	L.Push(lua.LString(h.String()))
	return 1
}
