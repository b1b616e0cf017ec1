package pool

import (
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/stretchr/testify/require"
)

type payload struct {
	n int
}

func TestArrayRoundTripReusesStorage(t *testing.T) {
	free := NewFreeList[payload](8)
	a := NewArray(free)

	first := make(map[*payload]bool)
	for i := 0; i < 8; i++ {
		p := a.Alloc()
		p.n = i
		first[p] = true
	}
	require.Equal(t, 8, a.Len())

	a.Reset()
	require.Zero(t, a.Len())

	// A second batch must reuse the same backing elements, zeroed.
	for i := 0; i < 8; i++ {
		p := a.Alloc()
		require.True(t, first[p], "alloc %d did not come from the free list", i)
		require.Zero(t, p.n, "element %d not zeroed on return", i)
	}
}

func TestArrayForgetFirst(t *testing.T) {
	free := NewFreeList[payload](4)
	a := NewArray(free)

	for i := 0; i < 3; i++ {
		a.Alloc().n = i
	}
	require.Equal(t, 0, a.First().n)

	a.ForgetFirst()
	require.Equal(t, 2, a.Len())
	require.Equal(t, 1, a.First().n)
	require.Equal(t, 2, a.At(1).n)

	// Forgotten elements are still reclaimed by Reset.
	a.Reset()
	require.Len(t, free.free, 4)
}

func TestArrayRemove(t *testing.T) {
	free := NewFreeList[payload](4)
	a := NewArray(free)
	for i := 0; i < 3; i++ {
		a.Alloc().n = i
	}

	a.Remove(0)
	require.Equal(t, 2, a.Len())
	seen := map[int]bool{}
	for i := 0; i < a.Len(); i++ {
		seen[a.At(i).n] = true
	}
	require.True(t, seen[1] && seen[2])
}

func TestTrackerTrackUntrack(t *testing.T) {
	free := NewTrackerList[int](16)
	tr := NewTracker(free)

	pos := cube.Pos{1, 2, 3}
	require.False(t, tr.Track(pos))
	require.True(t, tr.IsTracked(pos))

	// Idempotent add: reports already tracked, no duplicate storage.
	require.True(t, tr.Track(pos))
	require.Equal(t, 1, tr.Len())

	require.True(t, tr.Untrack(pos))
	require.False(t, tr.IsTracked(pos))
	require.False(t, tr.Untrack(pos))
}

func TestTrackerData(t *testing.T) {
	free := NewTrackerList[int](16)
	tr := NewTracker(free)

	pos := cube.Pos{4, 5, 6}
	tr.TrackNew(pos, 42)
	v, ok := tr.Data(pos)
	require.True(t, ok)
	require.Equal(t, 42, v)

	require.True(t, tr.SetData(pos, 7))
	v, _ = tr.Data(pos)
	require.Equal(t, 7, v)

	require.False(t, tr.SetData(cube.Pos{9, 9, 9}, 1))

	tr.Reset()
	require.Zero(t, tr.Len())
	_, ok = tr.Data(pos)
	require.False(t, ok)
}

func TestTrackerOverflowPanics(t *testing.T) {
	free := NewTrackerList[int](MaxTracked + 1)
	tr := NewTracker(free)

	for i := 0; i < MaxTracked; i++ {
		tr.Track(cube.Pos{i, 0, 0})
	}
	require.Panics(t, func() {
		tr.Track(cube.Pos{MaxTracked, 0, 0})
	})
}
