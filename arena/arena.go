package arena

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"github.com/wippyai/modcache/errors"
)

const chunkSize = 64

// Handle is the 1-based insertion index of a value. NoHandle is never issued.
type Handle uint32

// NoHandle marks the absence of a value.
const NoHandle Handle = 0

// Arena is a chunked slab allocator. Pointers returned by Alloc stay valid
// and never move for the lifetime of the arena; values are never freed
// individually.
type Arena[T any] struct {
	mu       sync.Mutex
	chunks   [][]T
	n        int
	released bool
}

// New creates an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Alloc stores v and returns its stable address.
func (a *Arena[T]) Alloc(v T) *T {
	_, p := a.AllocHandle(v)
	return p
}

// AllocHandle stores v and returns its handle and stable address.
// It panics if the arena was released.
func (a *Arena[T]) AllocHandle(v T) (Handle, *T) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		panic(errors.ProtocolMisuse("allocation in a released arena"))
	}
	h, err := safecast.Conv[uint32](a.n + 1)
	if err != nil {
		panic(fmt.Errorf("arena handle overflow: %w", err))
	}
	if a.n%chunkSize == 0 {
		a.chunks = append(a.chunks, make([]T, 0, chunkSize))
	}
	last := len(a.chunks) - 1
	a.chunks[last] = append(a.chunks[last], v)
	a.n++
	return Handle(h), &a.chunks[last][len(a.chunks[last])-1]
}

// At returns the value behind h, or nil when h was not issued by this arena.
func (a *Arena[T]) At(h Handle) *T {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.at(h)
}

func (a *Arena[T]) at(h Handle) *T {
	if h == NoHandle || int(h) > a.n {
		return nil
	}
	i := int(h) - 1
	return &a.chunks[i/chunkSize][i%chunkSize]
}

// Len returns the number of allocated values.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.n
}

// All returns every value in allocation order.
func (a *Arena[T]) All() []*T {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*T, 0, a.n)
	for i := range a.chunks {
		for j := range a.chunks[i] {
			out = append(out, &a.chunks[i][j])
		}
	}
	return out
}

// Release drops every chunk. Outstanding pointers stay readable but the
// arena no longer tracks them; later allocations panic.
func (a *Arena[T]) Release() {
	a.mu.Lock()
	a.chunks = nil
	a.n = 0
	a.released = true
	a.mu.Unlock()
}

// Released reports whether Release was called.
func (a *Arena[T]) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}
