package marshal

import (
	"fmt"
	"math"
	"sort"

	"github.com/caffeineduck/pgelua/handle"
	lua "github.com/yuin/gopher-lua"
)

// ToGo converts a Lua value into plain Go values: nil, bool, int64 for
// integral numbers, float64, string, []any for sequences, map[string]any
// for other tables and handle.Handle for handle userdata. Functions and
// other userdata become their Lua string form. Cycles are cut.
func ToGo(v lua.LValue) any {
	return toGo(v, map[*lua.LTable]bool{})
}

func toGo(v lua.LValue, seen map[*lua.LTable]bool) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LUserData:
		if h, ok := val.Value.(handle.Handle); ok {
			return h
		}
		return val.String()
	case *lua.LTable:
		if seen[val] {
			return "<cycle>"
		}
		seen[val] = true
		defer delete(seen, val)

		if n := val.Len(); n > 0 && countKeys(val) == n {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, toGo(val.RawGetInt(i), seen))
			}
			return out
		}
		out := make(map[string]any)
		val.ForEach(func(k, item lua.LValue) {
			out[k.String()] = toGo(item, seen)
		})
		return out
	default:
		return v.String()
	}
}

func countKeys(t *lua.LTable) int {
	n := 0
	t.ForEach(func(_, _ lua.LValue) { n++ })
	return n
}

// FromGo converts a Go value into a Lua value owned by L.
func FromGo(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint8:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case error:
		return lua.LString(val.Error())
	case handle.Handle:
		return NewHandle(L, val)
	case []any:
		tbl := L.CreateTable(len(val), 0)
		for _, item := range val {
			tbl.Append(FromGo(L, item))
		}
		return tbl
	case []string:
		tbl := L.CreateTable(len(val), 0)
		for _, item := range val {
			tbl.Append(lua.LString(item))
		}
		return tbl
	case map[string]any:
		tbl := L.CreateTable(0, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tbl.RawSetString(k, FromGo(L, val[k]))
		}
		return tbl
	default:
		return lua.LString(fmt.Sprint(val))
	}
}
