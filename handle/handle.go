// Package handle issues the integer identities behind interned tokens and
// tree nodes, and tracks how many owners each one has.
package handle

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
)

// Handle identifies an interned payload. The zero value is never issued.
type Handle uint32

// Invalid is the undefined handle.
const Invalid Handle = 0

var (
	ErrUninitialized      = errors.New("handle allocator uninitialized")
	ErrAlreadyInitialized = errors.New("handle allocator already initialized")
	ErrNotFound           = errors.New("handle not found")
	ErrExhausted          = errors.New("handle space exhausted")
)

type Option func(*Allocator)

// WithLimit caps the largest handle the counter will issue.
func WithLimit(max Handle) Option {
	return func(a *Allocator) {
		a.limit = max
	}
}

// Allocator hands out handles, preferring recycled ones over fresh ones.
// Contract violations panic with one of the package errors wrapped.
type Allocator struct {
	mu          sync.Mutex
	initialized bool
	limit       Handle
	next        Handle
	exhausted   bool
	counts      map[Handle]uint32
	free        []Handle
}

func NewAllocator(opts ...Option) *Allocator {
	a := &Allocator{
		limit: math.MaxUint32,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocator) Initialize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		panic(ErrAlreadyInitialized)
	}
	a.initialized = true
	a.next = Invalid + 1
	a.exhausted = false
	a.counts = make(map[Handle]uint32)
	a.free = nil
}

func (a *Allocator) Uninitialize() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		panic(ErrUninitialized)
	}
	a.initialized = false
	a.counts = nil
	a.free = nil
}

func (a *Allocator) IsInitialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// Generate returns a handle with a reference count of one.
func (a *Allocator) Generate() Handle {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkLocked()

	var h Handle
	switch {
	case len(a.free) > 0:
		h = a.free[0]
		a.free = a.free[1:]
	case !a.exhausted:
		h = a.next
		if a.next >= a.limit {
			a.exhausted = true
		} else {
			a.next++
		}
	default:
		panic(ErrExhausted)
	}

	a.counts[h] = 1
	return h
}

func (a *Allocator) Increment(h Handle) uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkLocked()

	count, ok := a.counts[h]
	if !ok {
		panic(fmt.Errorf("increment %d: %w", h, ErrNotFound))
	}
	count++
	a.counts[h] = count
	return count
}

// Decrement drops one reference. At zero the handle becomes eligible for
// reuse by the next Generate.
func (a *Allocator) Decrement(h Handle) uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkLocked()

	count, ok := a.counts[h]
	if !ok {
		panic(fmt.Errorf("decrement %d: %w", h, ErrNotFound))
	}
	count--
	if count > 0 {
		a.counts[h] = count
		return count
	}

	delete(a.counts, h)
	i, _ := slices.BinarySearch(a.free, h)
	a.free = slices.Insert(a.free, i, h)
	return 0
}

func (a *Allocator) Contains(h Handle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkLocked()

	_, ok := a.counts[h]
	return ok
}

// References returns the count for h, or zero when h is not live.
func (a *Allocator) References(h Handle) uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkLocked()
	return a.counts[h]
}

// Size returns the number of live handles.
func (a *Allocator) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkLocked()
	return len(a.counts)
}

func (a *Allocator) checkLocked() {
	if !a.initialized {
		panic(ErrUninitialized)
	}
}
