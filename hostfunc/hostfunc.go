package hostfunc

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/caffeineduck/pgelua/marshal"
	lua "github.com/yuin/gopher-lua"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Func is a native function callable from scripts. It reads its arguments
// through a, pushes its results and returns how many it pushed.
type Func func(s *State, a *marshal.Args) int

// Entry binds a script-visible name to a Func. The zero Entry is a sentinel:
// binding stops at the first one.
type Entry struct {
	Name string
	Fn   Func
}

func (e Entry) sentinel() bool {
	return e.Name == "" && e.Fn == nil
}

// ConstTable is a named table of integer constants installed once next to a
// module's functions. Scripts must treat it as read-only.
type ConstTable struct {
	Name   string
	Values map[string]int
}

// Module is an immutable descriptor of a script namespace.
type Module struct {
	Name      string
	Funcs     []Entry
	Constants []ConstTable
}

// Validate checks names and rejects duplicates.
func (m Module) Validate() error {
	if m.Name == "" {
		return errors.New("module name required")
	}
	if strings.ContainsAny(m.Name, ". ") {
		return fmt.Errorf("invalid module name %q", m.Name)
	}

	seen := make(map[string]bool)
	for i, e := range m.Funcs {
		if e.sentinel() {
			break
		}
		if e.Name == "" {
			return fmt.Errorf("module %s: entry %d has no name", m.Name, i)
		}
		if e.Fn == nil {
			return fmt.Errorf("module %s: entry %q has no function", m.Name, e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("module %s: duplicate function %q", m.Name, e.Name)
		}
		seen[e.Name] = true
	}
	for _, c := range m.Constants {
		if c.Name == "" {
			return fmt.Errorf("module %s: constant table has no name", m.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("module %s: duplicate name %q", m.Name, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// Registry holds the modules to install into a host namespace.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register validates m and adds it. Registering a name twice replaces the
// earlier descriptor but keeps its install position.
func (r *Registry) Register(m Module) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[m.Name]; !ok {
		r.order = append(r.order, m.Name)
	}
	r.modules[m.Name] = m
	return nil
}

// Get returns the module registered under name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	m, ok := r.modules[name]
	r.mu.RUnlock()
	return m, ok
}

// List returns the registered module names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := maps.Keys(r.modules)
	slices.Sort(names)
	return names
}

// Merge registers every module of other into r.
func (r *Registry) Merge(other *Registry) error {
	if other == nil {
		return nil
	}
	other.mu.RLock()
	mods := make([]Module, 0, len(other.order))
	for _, name := range other.order {
		mods = append(mods, other.modules[name])
	}
	other.mu.RUnlock()

	for _, m := range mods {
		if err := r.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Install binds every module under ns in registration order.
func (r *Registry) Install(L *lua.LState, ns *lua.LTable) {
	r.mu.RLock()
	mods := make([]Module, 0, len(r.order))
	for _, name := range r.order {
		mods = append(mods, r.modules[name])
	}
	r.mu.RUnlock()

	for _, m := range mods {
		Install(L, ns, m)
	}
}

// Install creates or reuses the subtable ns[m.Name], binds m's functions into
// it up to the first sentinel entry, then adds m's constant tables.
func Install(L *lua.LState, ns *lua.LTable, m Module) *lua.LTable {
	sub, ok := ns.RawGetString(m.Name).(*lua.LTable)
	if !ok {
		sub = L.NewTable()
		ns.RawSetString(m.Name, sub)
	}

	for _, e := range m.Funcs {
		if e.sentinel() {
			break
		}
		sub.RawSetString(e.Name, L.NewFunction(bind(m.Name+"."+e.Name, e.Fn)))
	}

	for _, c := range m.Constants {
		tbl := L.CreateTable(0, len(c.Values))
		for name, v := range c.Values {
			tbl.RawSetString(name, lua.LNumber(v))
		}
		sub.RawSetString(c.Name, tbl)
	}
	return sub
}

// bind adapts fn to the interpreter's fixed native signature. The host state
// is looked up per call; a call with no bound host fails immediately.
func bind(name string, fn Func) lua.LGFunction {
	return func(L *lua.LState) int {
		s, err := StateOf(L)
		if err != nil {
			L.RaiseError("%s: %v", name, err)
			return 0
		}
		return fn(s, marshal.NewArgs(L, name, s.Mode))
	}
}
