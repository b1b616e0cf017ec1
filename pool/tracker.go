package pool

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/voxelforge/voxphys/assert"
)

// MaxTracked bounds the working set of a Tracker. Lookups are linear scans
// traded against a hashed structure for cache locality, which only holds at
// small scale; the bound is enforced rather than assumed.
const MaxTracked = 64

type trackedEntry[T any] struct {
	pos  cube.Pos
	data T
}

// Tracker is a coordinate set carrying ancillary per-block data in parallel,
// built on a pooled Array. It serves the tens-of-blocks working sets an
// entity touches per tick and must not be used beyond MaxTracked entries.
type Tracker[T any] struct {
	entries *Array[trackedEntry[T]]
}

// NewTrackerList returns a free list suitable for backing Tracker instances.
func NewTrackerList[T any](capacity int) *FreeList[trackedEntry[T]] {
	return NewFreeList[trackedEntry[T]](capacity)
}

// NewTracker returns a tracker drawing entries from the given free list.
func NewTracker[T any](free *FreeList[trackedEntry[T]]) *Tracker[T] {
	return &Tracker[T]{entries: NewArray(free)}
}

// Track adds the coordinate if absent and reports whether it was already
// tracked. The data slot of a fresh entry is zeroed.
func (t *Tracker[T]) Track(pos cube.Pos) (already bool) {
	if t.find(pos) >= 0 {
		return true
	}
	t.trackNew(pos)
	return false
}

// TrackNew unconditionally adds an entry for the coordinate with the given
// data, even if the coordinate is already tracked.
func (t *Tracker[T]) TrackNew(pos cube.Pos, data T) {
	e := t.trackNew(pos)
	e.data = data
}

func (t *Tracker[T]) trackNew(pos cube.Pos) *trackedEntry[T] {
	assert.IsTrue(t.entries.Len() < MaxTracked, "block tracker overflow (%d entries)", t.entries.Len())
	e := t.entries.Alloc()
	e.pos = pos
	return e
}

// Untrack removes the coordinate and reports whether it was present.
func (t *Tracker[T]) Untrack(pos cube.Pos) bool {
	i := t.find(pos)
	if i < 0 {
		return false
	}
	t.entries.Remove(i)
	return true
}

// IsTracked reports whether the coordinate is in the set.
func (t *Tracker[T]) IsTracked(pos cube.Pos) bool {
	return t.find(pos) >= 0
}

// Data returns the ancillary data stored for the coordinate.
func (t *Tracker[T]) Data(pos cube.Pos) (T, bool) {
	if i := t.find(pos); i >= 0 {
		return t.entries.At(i).data, true
	}
	var zero T
	return zero, false
}

// SetData overwrites the data for a tracked coordinate, reporting whether the
// coordinate was present.
func (t *Tracker[T]) SetData(pos cube.Pos, data T) bool {
	i := t.find(pos)
	if i < 0 {
		return false
	}
	t.entries.At(i).data = data
	return true
}

// Len returns the number of tracked coordinates.
func (t *Tracker[T]) Len() int {
	return t.entries.Len()
}

// Each calls fn for every tracked coordinate until fn returns false.
func (t *Tracker[T]) Each(fn func(pos cube.Pos, data T) bool) {
	for i := 0; i < t.entries.Len(); i++ {
		e := t.entries.At(i)
		if !fn(e.pos, e.data) {
			return
		}
	}
}

// Reset returns all entries to the free list. Mandatory before reuse.
func (t *Tracker[T]) Reset() {
	t.entries.Reset()
}

func (t *Tracker[T]) find(pos cube.Pos) int {
	for i := 0; i < t.entries.Len(); i++ {
		if t.entries.At(i).pos == pos {
			return i
		}
	}
	return -1
}
