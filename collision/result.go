package collision

import (
	"sort"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/assert"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/material"
	"github.com/voxelforge/voxphys/pool"
	"github.com/voxelforge/voxphys/vmath"
)

// Result aggregates the contacts of one movement step into three buckets:
// blocking collisions, tangential slides and trigger overlaps, plus any
// entity hits. Contacts are drawn from pooled arrays sharing one free list.
// A Result is single-use per movement step: Process is mandatory before any
// bucket read, and Reset is mandatory before reuse.
type Result struct {
	collisions *pool.Array[BlockContact]
	slides     *pool.Array[BlockContact]
	triggers   *pool.Array[BlockContact]
	entities   *pool.Array[EntityContact]

	// bias and scale map sweep-local impact fractions into the whole step,
	// letting a sub-stepped movement accumulate into one result.
	bias, scale float32

	processed bool
	sliding   bool
}

// NewResult returns an empty result with its own backing free lists. Prefer
// CheckoutResult on hot paths.
func NewResult() *Result {
	free := pool.NewFreeList[BlockContact](32)
	return &Result{
		collisions: pool.NewArray(free),
		slides:     pool.NewArray(free),
		triggers:   pool.NewArray(free),
		entities:   pool.NewArray(pool.NewFreeList[EntityContact](8)),
		scale:      1,
	}
}

// SetWindow maps contact fractions of the next additions into the sub-window
// [bias, bias+scale] of the whole movement step.
func (r *Result) SetWindow(bias, scale float32) {
	assert.IsTrue(!r.processed, "window change on processed result")
	r.bias, r.scale = bias, scale
}

func (r *Result) window(frac float32) float32 {
	return r.bias + frac*r.scale
}

// AddCollision records a blocking contact.
func (r *Result) AddCollision(pos cube.Pos, bt *blockdef.BlockType, flags material.Flags, frac float32, normal, pen mgl32.Vec3) {
	c := r.collisions.Alloc()
	c.Pos = pos
	c.Block = bt
	c.Flags = flags
	c.TOI = r.window(frac)
	c.Normal = normal
	c.Penetration = pen
	c.Friction = bt.Friction
}

// AddSlide records a tangential contact with a surface the mover moves along.
func (r *Result) AddSlide(pos cube.Pos, bt *blockdef.BlockType, flags material.Flags, normal mgl32.Vec3) {
	c := r.slides.Alloc()
	c.Pos = pos
	c.Block = bt
	c.Flags = flags
	c.TOI = r.window(0)
	c.Normal = normal
	c.Friction = bt.Friction
}

// AddTrigger records an overlap with a non-solid interactive volume.
func (r *Result) AddTrigger(pos cube.Pos, bt *blockdef.BlockType, flags material.Flags, frac float32) {
	for i := 0; i < r.triggers.Len(); i++ {
		if r.triggers.At(i).Pos == pos {
			return
		}
	}
	c := r.triggers.Alloc()
	c.Pos = pos
	c.Block = bt
	c.Flags = flags
	c.TOI = r.window(frac)
}

// AddEntityHit records an entity contact. TOI is already step-relative.
func (r *Result) AddEntityHit(hit EntityContact) {
	*r.entities.Alloc() = hit
}

// HasCollisions reports whether any blocking contact was recorded. Unlike the
// bucket reads, this is valid before Process.
func (r *Result) HasCollisions() bool {
	return r.collisions.Len() > 0
}

// EarliestCollision returns the blocking contact with the smallest time of
// impact. Valid before Process; the buckets are not yet sorted at that point.
func (r *Result) EarliestCollision() (*BlockContact, bool) {
	if r.collisions.Len() == 0 {
		return nil, false
	}
	best := r.collisions.At(0)
	for i := 1; i < r.collisions.Len(); i++ {
		if c := r.collisions.At(i); c.TOI < best.TOI {
			best = c
		}
	}
	return best, true
}

// Process finalizes the step: collisions and entity hits are sorted by
// ascending time of impact and the derived sliding state is computed. When
// prev holds the trigger overlaps of the previous step, enter and leave
// transitions are dispatched to sink and prev is rewritten to the current
// overlaps. Mandatory before any bucket read; one call per step.
func (r *Result) Process(prev *pool.Tracker[material.Flags], sink TriggerSink) {
	assert.IsTrue(!r.processed, "result processed twice")
	r.processed = true

	if first, ok := r.EarliestCollision(); ok {
		r.dropPastClamp(first.TOI)
	}

	sort.Sort(contactsByTOI{r.collisions})
	sort.Sort(entityHitsByTOI{r.entities})
	r.sliding = r.slides.Len() > 0

	if prev == nil {
		return
	}
	if sink != nil {
		for i := 0; i < r.triggers.Len(); i++ {
			c := r.triggers.At(i)
			if !prev.IsTracked(c.Pos) {
				sink.OnTriggerEnter(c.Pos, c.Flags)
			}
		}
		prev.Each(func(pos cube.Pos, flags material.Flags) bool {
			for i := 0; i < r.triggers.Len(); i++ {
				if r.triggers.At(i).Pos == pos {
					return true
				}
			}
			sink.OnTriggerLeave(pos, flags)
			return true
		})
	}
	prev.Reset()
	for i := 0; i < r.triggers.Len(); i++ {
		c := r.triggers.At(i)
		prev.TrackNew(c.Pos, c.Flags)
	}
}

// dropPastClamp removes trigger and entity contacts the mover never reaches:
// movement stops at the earliest blocking contact, so anything with a later
// time of impact lies beyond the final position.
func (r *Result) dropPastClamp(cut float32) {
	for i := r.triggers.Len() - 1; i >= 0; i-- {
		if r.triggers.At(i).TOI > cut+vmath.Epsilon {
			r.triggers.Remove(i)
		}
	}
	for i := r.entities.Len() - 1; i >= 0; i-- {
		if r.entities.At(i).TOI > cut+vmath.Epsilon {
			r.entities.Remove(i)
		}
	}
}

// Processed reports whether Process ran.
func (r *Result) Processed() bool {
	return r.processed
}

// Sliding reports whether the mover is in tangential contact with at least
// one surface.
func (r *Result) Sliding() bool {
	assert.IsTrue(r.processed, "result read before process")
	return r.sliding
}

// SurfaceFriction returns the friction of the surface the mover slides along,
// the smallest when several surfaces are touched at once, or the default when
// the mover is airborne.
func (r *Result) SurfaceFriction() float32 {
	assert.IsTrue(r.processed, "result read before process")
	f := blockdef.DefaultFriction
	for i := 0; i < r.slides.Len(); i++ {
		if c := r.slides.At(i); i == 0 || c.Friction < f {
			f = c.Friction
		}
	}
	return f
}

// Empty reports whether the step produced no contact of any kind.
func (r *Result) Empty() bool {
	return r.collisions.Len() == 0 && r.slides.Len() == 0 &&
		r.triggers.Len() == 0 && r.entities.Len() == 0
}

// First returns the earliest blocking contact of the processed step.
func (r *Result) First() (*BlockContact, bool) {
	assert.IsTrue(r.processed, "result read before process")
	if r.collisions.Len() == 0 {
		return nil, false
	}
	return r.collisions.First(), true
}

// FirstEntity returns the earliest entity hit of the processed step.
func (r *Result) FirstEntity() (*EntityContact, bool) {
	assert.IsTrue(r.processed, "result read before process")
	if r.entities.Len() == 0 {
		return nil, false
	}
	return r.entities.First(), true
}

// EachCollision visits the blocking contacts in ascending impact order.
func (r *Result) EachCollision(fn func(*BlockContact) bool) {
	r.each(r.collisions, fn)
}

// EachSlide visits the tangential contacts.
func (r *Result) EachSlide(fn func(*BlockContact) bool) {
	r.each(r.slides, fn)
}

// EachTrigger visits the trigger overlaps.
func (r *Result) EachTrigger(fn func(*BlockContact) bool) {
	r.each(r.triggers, fn)
}

func (r *Result) each(a *pool.Array[BlockContact], fn func(*BlockContact) bool) {
	assert.IsTrue(r.processed, "result read before process")
	for i := 0; i < a.Len(); i++ {
		if !fn(a.At(i)) {
			return
		}
	}
}

// Reset returns every contact to the free lists and rearms the result for the
// next step. Mandatory before reuse or pool return.
func (r *Result) Reset() {
	r.collisions.Reset()
	r.slides.Reset()
	r.triggers.Reset()
	r.entities.Reset()
	r.bias, r.scale = 0, 1
	r.processed = false
	r.sliding = false
}

type contactsByTOI struct{ a *pool.Array[BlockContact] }

func (s contactsByTOI) Len() int           { return s.a.Len() }
func (s contactsByTOI) Less(i, j int) bool { return s.a.At(i).TOI < s.a.At(j).TOI }
func (s contactsByTOI) Swap(i, j int)      { s.a.Swap(i, j) }

type entityHitsByTOI struct{ a *pool.Array[EntityContact] }

func (s entityHitsByTOI) Len() int           { return s.a.Len() }
func (s entityHitsByTOI) Less(i, j int) bool { return s.a.At(i).TOI < s.a.At(j).TOI }
func (s entityHitsByTOI) Swap(i, j int)      { s.a.Swap(i, j) }
