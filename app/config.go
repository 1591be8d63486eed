package app

import (
	"fmt"
	"math"

	"github.com/caffeineduck/pgelua/clock"
	"github.com/caffeineduck/pgelua/marshal"
	lua "github.com/yuin/gopher-lua"
)

// maxConfigInt bounds every integer config field so it fits an int on any
// platform.
const maxConfigInt = math.MaxInt32

// Config is the validated result of PGE.config().
type Config struct {
	Title        string `yaml:"title"`
	ScreenWidth  int    `yaml:"screen_width"`
	ScreenHeight int    `yaml:"screen_height"`
	ScreenXScale int    `yaml:"screen_x_scale"`
	ScreenYScale int    `yaml:"screen_y_scale"`
	TargetFrame  int    `yaml:"target_frame"`
}

// TargetFrameTime returns the logical step in seconds.
func (c Config) TargetFrameTime() float64 {
	return 1 / float64(c.TargetFrame)
}

// parseConfig validates a config table in one pass and reports every
// problem it finds.
func parseConfig(v lua.LValue) (Config, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return Config{}, &ConfigError{Problems: []string{
			fmt.Sprintf("config() must return a table, got %s", v.Type()),
		}}
	}

	var problems []string
	field := func(name string) lua.LValue {
		return tbl.RawGetString(name)
	}
	str := func(name string) string {
		switch s := field(name).(type) {
		case lua.LString:
			return string(s)
		case *lua.LNilType:
			problems = append(problems, name+": missing")
		default:
			problems = append(problems, fmt.Sprintf("%s: expected string, got %s", name, s.Type()))
		}
		return ""
	}
	positive := func(name string, def int) int {
		raw := field(name)
		if raw == lua.LNil && def > 0 {
			return def
		}
		n, ok := raw.(lua.LNumber)
		switch {
		case raw == lua.LNil:
			problems = append(problems, name+": missing")
		case !ok:
			problems = append(problems, fmt.Sprintf("%s: expected integer, got %s", name, raw.Type()))
		case float64(n) != math.Trunc(float64(n)):
			problems = append(problems, fmt.Sprintf("%s: expected integer, got %v", name, n))
		case n <= 0:
			problems = append(problems, fmt.Sprintf("%s: must be positive, got %v", name, n))
		case n > maxConfigInt:
			problems = append(problems, fmt.Sprintf("%s: out of range, got %v", name, n))
		default:
			return int(n)
		}
		return 0
	}

	cfg := Config{
		Title:        str("title"),
		ScreenWidth:  positive("screen_width", 0),
		ScreenHeight: positive("screen_height", 0),
		ScreenXScale: positive("screen_x_scale", 0),
		ScreenYScale: positive("screen_y_scale", 0),
		TargetFrame:  positive("target_frame", clock.DefaultFrameRate),
	}
	if len(problems) > 0 {
		return Config{}, &ConfigError{Problems: problems}
	}
	return cfg, nil
}

// table builds the PGE.settings table.
func (c Config) table(L *lua.LState) *lua.LTable {
	return marshal.FromGo(L, map[string]any{
		"title":          c.Title,
		"screen_width":   c.ScreenWidth,
		"screen_height":  c.ScreenHeight,
		"screen_x_scale": c.ScreenXScale,
		"screen_y_scale": c.ScreenYScale,
		"target_frame":   c.TargetFrame,
	}).(*lua.LTable)
}
