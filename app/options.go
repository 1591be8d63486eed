package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/caffeineduck/pgelua/hostfunc"
	"github.com/caffeineduck/pgelua/marshal"
)

// DefaultMain is the module name of the game chunk.
const DefaultMain = "game"

// Option configures an App.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	stdout     io.Writer
	mounts     []hostfunc.Mount
	sources    map[string]string
	main       string
	registries []*hostfunc.Registry
	mode       marshal.Mode
	maxCatchUp int
	sandbox    bool
}

func defaultOptions() options {
	return options{
		logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
		stdout:  os.Stdout,
		sources: make(map[string]string),
		main:    DefaultMain,
		mode:    marshal.Strict,
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStdout redirects script print output.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.stdout = w
		}
	}
}

// WithScriptDir makes dir the root that require resolves names against.
func WithScriptDir(dir string) Option {
	return WithMount("/", dir)
}

// WithMount adds a read-only script mount. require("lib.x") looks for
// /lib/x.lua and /lib/x/init.lua across the mounts.
//
//	app.WithMount("/lib", "./vendor/lua")
func WithMount(virtualPath, hostPath string) Option {
	return func(o *options) {
		o.mounts = append(o.mounts, hostfunc.Mount{
			VirtualPath: virtualPath,
			HostPath:    hostPath,
		})
	}
}

// WithSource provides an in-memory module. It takes precedence over mounts.
func WithSource(name, src string) Option {
	return func(o *options) {
		o.sources[name] = src
	}
}

// WithMain sets the module name of the game chunk. Default is "game".
func WithMain(name string) Option {
	return func(o *options) {
		if name != "" {
			o.main = name
		}
	}
}

// WithRegistry installs extra native modules next to the builtin ones.
// A module with a builtin name replaces it.
func WithRegistry(r *hostfunc.Registry) Option {
	return func(o *options) {
		o.registries = append(o.registries, r)
	}
}

// WithMarshalMode selects how native functions coerce arguments.
// Default is marshal.Strict.
func WithMarshalMode(m marshal.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithMaxCatchUp caps the updates run per frame. Zero leaves catch-up
// unbounded.
func WithMaxCatchUp(n int) Option {
	return func(o *options) {
		o.maxCatchUp = n
	}
}

// WithSandbox opens only the base, package, table, string, math and
// coroutine libraries. Chunks can only be loaded through require, which
// reaches the engine runtime, preloaded sources and the mounts.
func WithSandbox() Option {
	return func(o *options) {
		o.sandbox = true
	}
}
