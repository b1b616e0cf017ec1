package collision

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/assert"
	"github.com/voxelforge/voxphys/entity"
	"github.com/voxelforge/voxphys/vmath"
)

// EntityProvider finds the nearest entity hit along a movement step. The
// broad phase queries the spatial index over the path-expanded box, the
// narrow phase runs the swept test per candidate, subject to the configured
// filters. A provider is single-use-per-query scratch: Clear between
// unrelated queries, or state from the previous query leaks into the next.
type EntityProvider struct {
	idx *entity.Index

	ignore    uint64
	hasIgnore bool
	filter    func(*entity.Entity) bool
	precise   bool

	best  EntityContact
	found bool
}

// Bind attaches the provider to a spatial index.
func (p *EntityProvider) Bind(idx *entity.Index) {
	p.idx = idx
}

// SetIgnore excludes one entity, normally the mover itself.
func (p *EntityProvider) SetIgnore(rid uint64) {
	p.ignore = rid
	p.hasIgnore = true
}

// SetFilter installs a custom candidate predicate. Entities for which fn
// returns false are skipped.
func (p *EntityProvider) SetFilter(fn func(*entity.Entity) bool) {
	p.filter = fn
}

// SetPrecise toggles per-part sub-box testing for entities that carry parts.
func (p *EntityProvider) SetPrecise(precise bool) {
	p.precise = precise
}

// Sweep finds the nearest entity contact along the step, widening the broad
// phase by margin. The second return is false when nothing is hit.
func (p *EntityProvider) Sweep(mover cube.BBox, pos, vel mgl32.Vec3, duration, margin float32) (EntityContact, bool) {
	assert.IsTrue(p.idx != nil, "entity sweep on unbound provider")
	p.best = EntityContact{}
	p.found = false

	path := mover.Translate(pos).
		Extend(vel.Mul(duration)).
		Grow(math32.Max(margin, 0))

	p.idx.EachInBox(path, func(e *entity.Entity) bool {
		if p.hasIgnore && e.RuntimeID() == p.ignore {
			return true
		}
		if p.filter != nil && !p.filter(e) {
			return true
		}
		p.testCandidate(e, mover, pos, vel, duration)
		return true
	})
	return p.best, p.found
}

func (p *EntityProvider) testCandidate(e *entity.Entity, mover cube.BBox, pos, vel mgl32.Vec3, duration float32) {
	boxes := []cube.BBox{e.Box()}
	if p.precise && len(e.Parts()) > 0 {
		boxes = e.Parts()
	}

	for _, box := range boxes {
		hit := vmath.SweptAABB(mover, pos, vel, box, e.Position(), duration)
		if !hit.Hit {
			continue
		}
		if p.found && timeFrac(hit.TOI, duration) >= p.best.TOI {
			continue
		}
		p.best = contactAt(e, mover, pos, vel, duration, hit)
		p.found = true
	}
}

// EachOverlapping visits every tangible entity whose collider statically
// overlaps the mover at pos, honouring the configured filters.
func (p *EntityProvider) EachOverlapping(mover cube.BBox, pos mgl32.Vec3, fn func(*entity.Entity) bool) {
	assert.IsTrue(p.idx != nil, "entity query on unbound provider")
	p.idx.EachInBox(mover.Translate(pos), func(e *entity.Entity) bool {
		if p.hasIgnore && e.RuntimeID() == p.ignore {
			return true
		}
		if p.filter != nil && !p.filter(e) {
			return true
		}
		m := vmath.StaticOverlap(mover, pos, e.Box(), e.Position())
		if !m.Overlapping() {
			return true
		}
		return fn(e)
	})
}

// Clear wipes all query state including the index binding and filters.
func (p *EntityProvider) Clear() {
	*p = EntityProvider{}
}

// contactAt builds the contact detail for a swept entity hit: the contact
// point sits on the mover's leading face at the moment of impact.
func contactAt(e *entity.Entity, mover cube.BBox, pos, vel mgl32.Vec3, duration float32, hit vmath.SweptHit) EntityContact {
	at := mover.Translate(pos.Add(vel.Mul(hit.TOI)))
	point := at.Min().Add(at.Max()).Mul(0.5)
	if hit.Axis >= 0 {
		if hit.Normal[hit.Axis] < 0 {
			point[hit.Axis] = at.Max()[hit.Axis]
		} else {
			point[hit.Axis] = at.Min()[hit.Axis]
		}
	}

	return EntityContact{
		Entity:   e,
		TOI:      timeFrac(hit.TOI, duration),
		Normal:   hit.Normal,
		Point:    point,
		Distance: vel.Len() * hit.TOI,
	}
}
