package handle

import (
	"errors"
	"testing"
)

func TestTableInsertGet(t *testing.T) {
	tbl := NewTable[string](Sprite)

	a := tbl.Insert("a")
	b := tbl.Insert("b")
	if a == b {
		t.Fatal("expected distinct handles")
	}
	if a.IsZero() || b.IsZero() {
		t.Fatal("expected non-zero handles")
	}

	got, err := tbl.Get(b)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "b" {
		t.Errorf("expected 'b', got %q", got)
	}
	if tbl.Len() != 2 {
		t.Errorf("expected 2 live handles, got %d", tbl.Len())
	}
}

func TestTableDoubleRemove(t *testing.T) {
	tbl := NewTable[int](Decal)
	h := tbl.Insert(7)

	v, err := tbl.Remove(h)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if v != 7 {
		t.Errorf("expected 7, got %d", v)
	}

	_, err = tbl.Remove(h)
	if !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale on double remove, got %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("expected 0 live handles, got %d", tbl.Len())
	}
}

func TestTableReusedSlotRejectsOldHandle(t *testing.T) {
	tbl := NewTable[string](Sprite)
	old := tbl.Insert("first")
	if _, err := tbl.Remove(old); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	fresh := tbl.Insert("second")
	if fresh.index() != old.index() {
		t.Fatalf("expected slot reuse, got %s and %s", old, fresh)
	}

	if _, err := tbl.Get(old); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale for reused slot, got %v", err)
	}
	got, err := tbl.Get(fresh)
	if err != nil || got != "second" {
		t.Errorf("expected 'second', got %q (%v)", got, err)
	}
}

func TestTableInvalidHandle(t *testing.T) {
	tbl := NewTable[string](Sprite)

	if _, err := tbl.Get(0); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for zero handle, got %v", err)
	}
	if _, err := tbl.Get(newHandle(Sprite, 42, 1)); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for out-of-range handle, got %v", err)
	}
}

func TestTableEach(t *testing.T) {
	tbl := NewTable[string](Sprite)
	tbl.Insert("a")
	h := tbl.Insert("b")
	tbl.Insert("c")
	tbl.Remove(h)

	var seen []string
	tbl.Each(func(_ Handle, v string) {
		seen = append(seen, v)
	})
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "c" {
		t.Errorf("unexpected values %v", seen)
	}
}

func TestTableRejectsOtherKind(t *testing.T) {
	sprites := NewTable[string](Sprite)
	decals := NewTable[string](Decal)
	sp := sprites.Insert("ship")
	dc := decals.Insert("ship decal")

	if sp.index() != dc.index() || sp.gen() != dc.gen() {
		t.Fatalf("expected same slot in both tables, got %s and %s", sp, dc)
	}
	if sp == dc {
		t.Fatal("handles of different kinds must differ")
	}
	if _, err := sprites.Remove(dc); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid removing a decal from sprites, got %v", err)
	}
	if _, err := decals.Get(sp); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid reading a sprite from decals, got %v", err)
	}
	if sprites.Len() != 1 || decals.Len() != 1 {
		t.Errorf("tables changed: %d sprites, %d decals", sprites.Len(), decals.Len())
	}
	if sp.String() != "sprite(0@1)" || dc.String() != "decal(0@1)" {
		t.Errorf("unexpected names %s, %s", sp, dc)
	}
}

func TestGenerationWraps(t *testing.T) {
	tbl := NewTable[int](Sprite)
	h := tbl.Insert(1)
	tbl.slots[h.index()].gen = genMask
	tbl.Remove(newHandle(Sprite, h.index(), genMask))

	next := tbl.Insert(2)
	if next.gen() != 1 || next.Kind() != Sprite {
		t.Errorf("expected wrap to generation 1 keeping the kind, got %s", next)
	}
}
