// Package pool provides the free-list backed scratch buffers used by the
// per-tick collision hot path. Nothing in here is synchronized: a pool and
// every buffer drawn from it belong to exactly one goroutine for their whole
// life, which is what lets the tick run allocation-free without locks.
package pool

import "github.com/voxelforge/voxphys/assert"

// FreeList is a shared backing store of reusable elements. Sibling Array
// instances may share one free list as long as each is fully Reset before the
// list is reused elsewhere.
type FreeList[T any] struct {
	free []*T
}

// NewFreeList returns a free list pre-grown to the given capacity.
func NewFreeList[T any](capacity int) *FreeList[T] {
	f := &FreeList[T]{free: make([]*T, 0, capacity)}
	for i := 0; i < capacity; i++ {
		f.free = append(f.free, new(T))
	}
	return f
}

func (f *FreeList[T]) get() *T {
	if n := len(f.free); n > 0 {
		v := f.free[n-1]
		f.free = f.free[:n-1]
		return v
	}
	return new(T)
}

func (f *FreeList[T]) put(v *T) {
	var zero T
	*v = zero
	f.free = append(f.free, v)
}

// Array is a growable buffer of pooled elements with a sliding head window.
// Alloc draws from the free list, ForgetFirst discards the front of the
// window in O(1) without cleanup, and Reset returns every element (forgotten
// ones included) to the free list. Skipping Reset before reuse is a resource
// leak, not a crash.
type Array[T any] struct {
	free  *FreeList[T]
	items []*T
	head  int
}

// NewArray returns an array drawing from the given free list.
func NewArray[T any](free *FreeList[T]) *Array[T] {
	return &Array[T]{free: free}
}

// Alloc draws a zeroed element from the free list and appends it to the
// window.
func (a *Array[T]) Alloc() *T {
	v := a.free.get()
	a.items = append(a.items, v)
	return v
}

// Len returns the number of elements in the active window.
func (a *Array[T]) Len() int {
	return len(a.items) - a.head
}

// At returns the i-th element of the active window.
func (a *Array[T]) At(i int) *T {
	return a.items[a.head+i]
}

// First returns the front of the active window.
func (a *Array[T]) First() *T {
	assert.IsTrue(a.Len() > 0, "First on empty pooled array")
	return a.items[a.head]
}

// ForgetFirst advances the window past the front element. The element stays
// owned by the array and is reclaimed on Reset.
func (a *Array[T]) ForgetFirst() {
	assert.IsTrue(a.Len() > 0, "ForgetFirst on empty pooled array")
	a.head++
}

// Remove swap-removes the i-th element of the active window and returns it to
// the free list. Window order is not preserved.
func (a *Array[T]) Remove(i int) {
	assert.IsTrue(i >= 0 && i < a.Len(), "Remove index %d out of window (len %d)", i, a.Len())
	idx := a.head + i
	last := len(a.items) - 1
	a.free.put(a.items[idx])
	a.items[idx] = a.items[last]
	a.items = a.items[:last]
}

// Swap exchanges two elements of the active window.
func (a *Array[T]) Swap(i, j int) {
	a.items[a.head+i], a.items[a.head+j] = a.items[a.head+j], a.items[a.head+i]
}

// Reset returns every element to the free list and zeroes the window. This is
// mandatory before the array or its free list is reused.
func (a *Array[T]) Reset() {
	for _, v := range a.items {
		a.free.put(v)
	}
	a.items = a.items[:0]
	a.head = 0
}
