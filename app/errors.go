package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caffeineduck/pgelua/engine"
	"github.com/caffeineduck/pgelua/marshal"
	lua "github.com/yuin/gopher-lua"
)

var (
	// ErrStartup matches every StartupError.
	ErrStartup = errors.New("startup failed")
	// ErrClosed is returned by any call after Close.
	ErrClosed = errors.New("app closed")
	// ErrNotCreated is returned by Frame before Create.
	ErrNotCreated = errors.New("app not created")
	// ErrAlreadyCreated is returned by a second Create.
	ErrAlreadyCreated = errors.New("app already created")
)

// StartupError is a fatal boot failure. It matches ErrStartup.
type StartupError struct {
	Phase string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed: %s: %v", e.Phase, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

func (e *StartupError) Is(target error) bool { return target == ErrStartup }

// ConfigError lists every missing or mistyped field of the config table.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// ScriptError is a recovered error raised by a script entry point.
type ScriptError struct {
	Entry     engine.Entry
	Message   string
	Traceback string // message followed by the stack traceback
	Mismatch  bool   // raised by a malformed native call
	Err       error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entry, e.Message)
}

func (e *ScriptError) Unwrap() error { return e.Err }

func newScriptError(entry engine.Entry, err error) *ScriptError {
	se := &ScriptError{
		Entry:     entry,
		Message:   err.Error(),
		Traceback: err.Error(),
		Mismatch:  marshal.IsMismatch(err),
		Err:       err,
	}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		se.Message = apiErr.Object.String()
	}
	return se
}
