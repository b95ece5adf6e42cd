package handle

import (
	"errors"
	"sync"
	"testing"
)

func mustPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %v", want)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Fatalf("panic = %v, want %v", r, want)
		}
	}()
	fn()
}

func newAllocator(t *testing.T, opts ...Option) *Allocator {
	t.Helper()
	a := NewAllocator(opts...)
	a.Initialize()
	t.Cleanup(func() {
		if a.IsInitialized() {
			a.Uninitialize()
		}
	})
	return a
}

func TestGenerateIsMonotonic(t *testing.T) {
	a := newAllocator(t)

	for want := Handle(1); want <= 5; want++ {
		if got := a.Generate(); got != want {
			t.Errorf("Generate() = %d, want %d", got, want)
		}
	}
	if a.Size() != 5 {
		t.Errorf("Size() = %d, want 5", a.Size())
	}
}

func TestRecycledHandlesArePreferred(t *testing.T) {
	a := newAllocator(t)

	for i := 0; i < 5; i++ {
		a.Generate()
	}
	a.Decrement(4)
	a.Decrement(2)

	if a.Contains(2) || a.Contains(4) {
		t.Fatal("released handles still reported live")
	}

	tests := []Handle{2, 4, 6}
	for _, want := range tests {
		if got := a.Generate(); got != want {
			t.Errorf("Generate() = %d, want %d", got, want)
		}
	}
}

func TestReferenceCounting(t *testing.T) {
	a := newAllocator(t)
	h := a.Generate()

	if got := a.Increment(h); got != 2 {
		t.Errorf("Increment() = %d, want 2", got)
	}
	if got := a.References(h); got != 2 {
		t.Errorf("References() = %d, want 2", got)
	}
	if got := a.Decrement(h); got != 1 {
		t.Errorf("Decrement() = %d, want 1", got)
	}
	if !a.Contains(h) {
		t.Error("handle released too early")
	}
	if got := a.Decrement(h); got != 0 {
		t.Errorf("Decrement() = %d, want 0", got)
	}
	if a.Contains(h) {
		t.Error("handle still live after last decrement")
	}
}

func TestExhausted(t *testing.T) {
	a := newAllocator(t, WithLimit(3))

	for i := 0; i < 3; i++ {
		a.Generate()
	}
	mustPanic(t, ErrExhausted, func() { a.Generate() })

	a.Decrement(3)
	if got := a.Generate(); got != 3 {
		t.Errorf("Generate() after release = %d, want 3", got)
	}
}

func TestContractViolations(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		a := NewAllocator()
		mustPanic(t, ErrUninitialized, func() { a.Generate() })
		mustPanic(t, ErrUninitialized, func() { a.Contains(1) })
	})

	t.Run("already initialized", func(t *testing.T) {
		a := newAllocator(t)
		mustPanic(t, ErrAlreadyInitialized, func() { a.Initialize() })
	})

	t.Run("unknown handle", func(t *testing.T) {
		a := newAllocator(t)
		mustPanic(t, ErrNotFound, func() { a.Increment(42) })
		mustPanic(t, ErrNotFound, func() { a.Decrement(42) })
	})

	t.Run("invalid handle", func(t *testing.T) {
		a := newAllocator(t)
		if a.Contains(Invalid) {
			t.Error("Contains(Invalid) = true, want false")
		}
	})
}

func TestConcurrentGenerateAndRelease(t *testing.T) {
	a := newAllocator(t)

	const workers, rounds = 8, 200
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				h := a.Generate()
				a.Increment(h)
				a.Decrement(h)
				if got := a.Decrement(h); got != 0 {
					t.Errorf("Decrement(%d) = %d, want 0", h, got)
				}
			}
		}()
	}
	wg.Wait()

	if a.Size() != 0 {
		t.Errorf("Size() = %d after all releases, want 0", a.Size())
	}
}
