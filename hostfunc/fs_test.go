package hostfunc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func writeScript(t *testing.T, dir, rel, src string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestScriptFSRead(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "game.lua", "return 1")

	fs := NewScriptFS(Mount{VirtualPath: "/", HostPath: dir})

	src, hostPath, err := fs.Read("game")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if src != "return 1" {
		t.Errorf("expected 'return 1', got %q", src)
	}
	if filepath.Base(hostPath) != "game.lua" {
		t.Errorf("unexpected host path %s", hostPath)
	}
}

func TestScriptFSDottedAndInit(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "lib/util.lua", "return 'util'")
	writeScript(t, dir, "lib/vec/init.lua", "return 'vec'")

	fs := NewScriptFS(Mount{VirtualPath: "/", HostPath: dir})

	for name, want := range map[string]string{
		"lib.util": "return 'util'",
		"lib.vec":  "return 'vec'",
	} {
		src, _, err := fs.Read(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if src != want {
			t.Errorf("%s: got %q, want %q", name, src, want)
		}
	}
}

func TestScriptFSPathTraversal(t *testing.T) {
	dir := t.TempDir()
	fs := NewScriptFS(Mount{VirtualPath: "/scripts", HostPath: dir})

	if _, err := fs.Find("..etc.passwd"); err == nil {
		t.Error("expected dotted escape to be blocked")
	}
	if _, err := fs.resolve("/scripts/../../etc/passwd"); err == nil {
		t.Error("expected path traversal to be blocked")
	}
}

func TestScriptFSNotInMount(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "game.lua", "return 1")
	fs := NewScriptFS(Mount{VirtualPath: "/scripts", HostPath: dir})

	_, err := fs.Find("game")
	if err == nil {
		t.Fatal("expected error for name outside any mount")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := fs.Find("scripts.game"); err != nil {
		t.Errorf("expected scripts.game to resolve: %v", err)
	}
}

func TestScriptFSMountPrefix(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "x.lua", "")
	fs := NewScriptFS(Mount{VirtualPath: "/lib", HostPath: dir})

	// "/library" shares a prefix with "/lib" but is a different mount.
	if _, err := fs.resolve("/library/x.lua"); err == nil {
		t.Error("expected /library to be outside /lib")
	}
}

func TestScriptFSSearcher(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "greet.lua", "loaded = (loaded or 0) + 1\nreturn { hello = function() return 'hi' end }")

	fs := NewScriptFS(Mount{VirtualPath: "/", HostPath: dir})

	L := lua.NewState()
	defer L.Close()

	pkg := L.GetGlobal("package").(*lua.LTable)
	list := pkg.RawGetString("loaders").(*lua.LTable)
	list.Append(L.NewFunction(fs.Searcher))

	err := L.DoString(`
		local a = require("greet")
		local b = require("greet")
		assert(a == b)
		result = a.hello()
	`)
	if err != nil {
		t.Fatalf("require failed: %v", err)
	}
	if got := L.GetGlobal("result").String(); got != "hi" {
		t.Errorf("expected hi, got %s", got)
	}
	if got := L.GetGlobal("loaded"); got != lua.LNumber(1) {
		t.Errorf("chunk ran %v times, want 1", got)
	}

	err = L.DoString(`require("missing")`)
	if err == nil {
		t.Fatal("expected error for missing module")
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Errorf("unexpected error: %v", err)
	}
}
