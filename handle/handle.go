// Package handle implements generation-indexed handle tables.
//
// Scripts hold sprites and decals only as opaque handles. A handle encodes a
// slot index and the generation of the slot at insertion time, so a handle
// that outlives its value (use after destroy, double destroy) is detected
// instead of reaching a released resource.
package handle

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrInvalid is returned for the zero handle, an unknown slot or a handle
	// issued by a table of another kind.
	ErrInvalid = errors.New("invalid handle")
	// ErrStale is returned for a handle whose value was already removed.
	ErrStale = errors.New("stale handle")
)

// Kind tags a handle with the kind of table that issued it.
type Kind uint8

const (
	Untyped Kind = iota
	Sprite
	Decal
)

func (k Kind) String() string {
	switch k {
	case Sprite:
		return "sprite"
	case Decal:
		return "decal"
	default:
		return "handle"
	}
}

// Handle is an opaque token: kind in the top 8 bits, slot generation in the
// next 24, slot index in the low 32. The zero Handle is never issued.
type Handle uint64

const genMask = 1<<24 - 1

func newHandle(kind Kind, index, gen uint32) Handle {
	return Handle(uint64(kind)<<56 | uint64(gen&genMask)<<32 | uint64(index))
}

func (h Handle) index() uint32 { return uint32(h) }
func (h Handle) gen() uint32   { return uint32(h>>32) & genMask }

// Kind returns the kind of table that issued h.
func (h Handle) Kind() Kind { return Kind(h >> 56) }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%s(%d@%d)", h.Kind(), h.index(), h.gen())
}

type slot[T any] struct {
	value T
	gen   uint32
	used  bool
}

// Table stores values behind handles. Slots are reused; each reuse bumps the
// slot generation.
type Table[T any] struct {
	kind  Kind
	mu    sync.Mutex
	slots []slot[T]
	free  []uint32
	live  int
}

// NewTable returns an empty table issuing handles of kind.
func NewTable[T any](kind Kind) *Table[T] {
	return &Table[T]{kind: kind}
}

// Kind returns the kind of handle t issues.
func (t *Table[T]) Kind() Kind { return t.kind }

// Insert stores v and returns its handle.
func (t *Table[T]) Insert(v T) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot[T]{})
	}

	s := &t.slots[idx]
	s.gen = (s.gen + 1) & genMask
	if s.gen == 0 {
		s.gen = 1
	}
	s.value = v
	s.used = true
	t.live++

	return newHandle(t.kind, idx, s.gen)
}

func (t *Table[T]) lookup(h Handle) (*slot[T], error) {
	if h.IsZero() || int(h.index()) >= len(t.slots) {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, h)
	}
	if h.Kind() != t.kind {
		return nil, fmt.Errorf("%w: %s is not a %s", ErrInvalid, h, t.kind)
	}
	s := &t.slots[h.index()]
	if !s.used || s.gen != h.gen() {
		return nil, fmt.Errorf("%w: %s", ErrStale, h)
	}
	return s, nil
}

// Get returns the value behind h.
func (t *Table[T]) Get(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.lookup(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.value, nil
}

// Remove releases h and returns the value it referred to. Removing the same
// handle twice returns ErrStale.
func (t *Table[T]) Remove(h Handle) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	s, err := t.lookup(h)
	if err != nil {
		return zero, err
	}
	v := s.value
	s.value = zero
	s.used = false
	t.free = append(t.free, h.index())
	t.live--
	return v, nil
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// Each calls fn for every live handle in slot order.
func (t *Table[T]) Each(fn func(h Handle, v T)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		s := &t.slots[i]
		if s.used {
			fn(newHandle(t.kind, uint32(i), s.gen), s.value)
		}
	}
}
