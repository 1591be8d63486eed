package hostfunc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Mount maps a virtual script path to a host directory. Script mounts are
// always read-only.
type Mount struct {
	VirtualPath string // Path as seen by require (e.g., "/" or "/lib")
	HostPath    string // Actual directory on the host filesystem
}

// ScriptFS resolves require names to files inside mounted directories and
// never lets a name escape its mount.
type ScriptFS struct {
	mounts []Mount
	mu     sync.RWMutex
}

// NewScriptFS creates a resolver for the given mounts.
func NewScriptFS(mounts ...Mount) *ScriptFS {
	normalized := make([]Mount, 0, len(mounts))
	for _, m := range mounts {
		// Ensure virtual path starts with / and has no trailing slash
		vp := "/" + strings.Trim(m.VirtualPath, "/")
		hp, err := filepath.Abs(m.HostPath)
		if err != nil {
			continue
		}
		normalized = append(normalized, Mount{VirtualPath: vp, HostPath: hp})
	}
	return &ScriptFS{mounts: normalized}
}

// resolve maps a virtual path to a host path inside its mount.
func (f *ScriptFS) resolve(virtualPath string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	vp := filepath.ToSlash(filepath.Clean("/" + strings.TrimPrefix(virtualPath, "/")))

	for _, m := range f.mounts {
		prefix := m.VirtualPath
		if prefix != "/" && vp != prefix && !strings.HasPrefix(vp, prefix+"/") {
			continue
		}

		relPath := strings.TrimPrefix(vp, prefix)
		hostPath, err := filepath.Abs(filepath.Join(m.HostPath, relPath))
		if err != nil {
			return "", errors.New("invalid path")
		}
		if hostPath != m.HostPath && !strings.HasPrefix(hostPath, m.HostPath+string(filepath.Separator)) {
			return "", errors.New("permission denied: path escape attempt")
		}
		return hostPath, nil
	}

	return "", errors.New("permission denied: path not in any mount")
}

// candidates lists the virtual files a require name may live in.
func candidates(name string) []string {
	p := "/" + strings.ReplaceAll(name, ".", "/")
	return []string{p + ".lua", p + "/init.lua"}
}

// Find returns the host file that provides the module name.
func (f *ScriptFS) Find(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid module name %q", name)
	}

	var tried []string
	for _, vp := range candidates(name) {
		hostPath, err := f.resolve(vp)
		if err != nil {
			tried = append(tried, vp+": "+err.Error())
			continue
		}
		if info, err := os.Stat(hostPath); err == nil && !info.IsDir() {
			return hostPath, nil
		}
		tried = append(tried, vp)
	}
	return "", fmt.Errorf("module %q not found:\n\t%s", name, strings.Join(tried, "\n\t"))
}

// Read returns the source of the module name and the host path it came from.
func (f *ScriptFS) Read(name string) (string, string, error) {
	hostPath, err := f.Find(name)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), hostPath, nil
}

// Searcher is a package.loaders entry: given a module name it returns a
// loader function, or a message explaining why the name was not found.
func (f *ScriptFS) Searcher(L *lua.LState) int {
	name := L.CheckString(1)
	src, hostPath, err := f.Read(name)
	if err != nil {
		L.Push(lua.LString("\n\t" + err.Error()))
		return 1
	}
	fn, err := L.Load(strings.NewReader(src), hostPath)
	if err != nil {
		L.RaiseError("error loading module %q from %s:\n\t%v", name, hostPath, err)
		return 0
	}
	L.Push(fn)
	return 1
}
