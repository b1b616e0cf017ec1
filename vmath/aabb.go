package vmath

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// OverlapMask packs the per-axis relation of two static boxes into one integer.
// Each axis is classified as disjoint, touching or overlapping. Membership is
// always tested with AND against the composite masks below, never with
// equality, since multiple bits are set for any pair of boxes.
type OverlapMask uint16

const (
	DisjointX OverlapMask = 1 << iota
	DisjointY
	DisjointZ
	TouchX
	TouchY
	TouchZ
	OverlapX
	OverlapY
	OverlapZ
)

const (
	DisjointAny = DisjointX | DisjointY | DisjointZ
	TouchAny    = TouchX | TouchY | TouchZ
	OverlapAll  = OverlapX | OverlapY | OverlapZ
)

// Disjoint reports whether the boxes are separated on at least one axis.
func (m OverlapMask) Disjoint() bool {
	return m&DisjointAny != 0
}

// Overlapping reports whether the boxes overlap on every axis.
func (m OverlapMask) Overlapping() bool {
	return m&OverlapAll == OverlapAll
}

// Touching reports whether the boxes are in surface contact: no axis separates
// them, and at least one axis is in exact contact rather than overlap.
func (m OverlapMask) Touching() bool {
	return m&DisjointAny == 0 && m&TouchAny != 0
}

// TouchAxis returns the first axis on which the boxes are in exact contact,
// or -1 if there is none.
func (m OverlapMask) TouchAxis() int {
	for i := 0; i < 3; i++ {
		if m&(TouchX<<i) != 0 {
			return i
		}
	}
	return -1
}

// StaticOverlap classifies the relation of two boxes at rest. Zero-extent
// boxes degenerate to points and remain testable: a point on a face counts
// as touching on that axis.
func StaticOverlap(a cube.BBox, posA mgl32.Vec3, b cube.BBox, posB mgl32.Vec3) OverlapMask {
	a = a.Translate(posA)
	b = b.Translate(posB)

	var mask OverlapMask
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		lo := bMin[i] - aMax[i]
		hi := aMin[i] - bMax[i]
		switch {
		case lo > Epsilon || hi > Epsilon:
			mask |= DisjointX << i
		case math32.Abs(lo) <= Epsilon || math32.Abs(hi) <= Epsilon:
			mask |= TouchX << i
		default:
			mask |= OverlapX << i
		}
	}

	return mask
}

// SweptHit is the result of a continuous collision test over one movement step.
type SweptHit struct {
	// Hit is true if contact occurs within the step. When false, TOI is set
	// to the step duration and the remaining fields are zero.
	Hit bool
	// TOI is the time of impact within [0, duration]. On a miss it is set to
	// the full duration; "no collision" is a normal outcome, never an error.
	TOI float32
	// Normal is the surface normal of the contact, assigned to the axis that
	// produced the latest entry time and signed against the velocity on that
	// axis. Zero when the boxes already overlap with no velocity on the axis.
	Normal mgl32.Vec3
	// Axis is the index of the normal axis, or -1 when there is no hit.
	Axis int
	// Overlapping is true if the boxes already intersect at t = 0, in which
	// case TOI is 0 and penetration resolution applies instead of a sweep.
	Overlapping bool
}

// SweptAABB performs a continuous collision test of a moving box against a
// stationary one, using the per-axis interval form of the separating axis
// test. Entry is the max of per-axis entry times, exit the min of per-axis
// exit times; contact occurs iff entry <= exit and entry lies in
// [0, duration]. A duration of 0 degenerates to the static overlap test.
func SweptAABB(moving cube.BBox, pos, vel mgl32.Vec3, static cube.BBox, staticPos mgl32.Vec3, duration float32) SweptHit {
	a := moving.Translate(pos)
	b := static.Translate(staticPos)

	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()

	entry := float32(math32.Inf(-1))
	exit := float32(math32.Inf(1))
	axis := -1

	for i := 0; i < 3; i++ {
		var entryT, exitT float32
		switch {
		case vel[i] > 0:
			entryT = (bMin[i] - aMax[i]) / vel[i]
			exitT = (bMax[i] - aMin[i]) / vel[i]
		case vel[i] < 0:
			entryT = (bMax[i] - aMin[i]) / vel[i]
			exitT = (bMin[i] - aMax[i]) / vel[i]
		default:
			// Axis-parallel: the interval is infinite if the extents strictly
			// overlap and empty otherwise. Exact surface contact on a
			// zero-velocity axis is a slide, not a hit.
			if bMin[i]-aMax[i] >= -Epsilon || aMin[i]-bMax[i] >= -Epsilon {
				return noHit(duration)
			}
			entryT = math32.Inf(-1)
			exitT = math32.Inf(1)
		}

		if entryT > entry {
			entry = entryT
			axis = i
		}
		exit = math32.Min(exit, exitT)
	}

	// Contact exactly at the end of the step still counts as a hit.
	if entry > exit || entry > duration || exit <= 0 {
		return noHit(duration)
	}

	hit := SweptHit{Hit: true, Axis: axis}
	if entry < 0 {
		// Already intersecting at the start of the step.
		hit.Overlapping = true
		hit.TOI = 0
	} else {
		hit.TOI = entry
	}
	if axis >= 0 && vel[axis] != 0 {
		hit.Normal[axis] = -Sign(vel[axis])
	} else {
		hit.Axis = -1
	}

	return hit
}

func noHit(duration float32) SweptHit {
	return SweptHit{TOI: duration, Axis: -1}
}

// IntersectRayAABB runs the slab test of a ray against a box, returning the
// entry and exit distances along the ray. Axis-parallel rays substitute an
// infinite interval on the parallel axis rather than dividing by zero. A
// ray starting inside the box reports entry 0.
func IntersectRayAABB(origin, dir mgl32.Vec3, box cube.BBox) (entry, exit float32, ok bool) {
	bMin, bMax := box.Min(), box.Max()
	entry = math32.Inf(-1)
	exit = math32.Inf(1)

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < bMin[i] || origin[i] > bMax[i] {
				return 0, 0, false
			}
			continue
		}

		inv := 1 / dir[i]
		t1 := (bMin[i] - origin[i]) * inv
		t2 := (bMax[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		entry = math32.Max(entry, t1)
		exit = math32.Min(exit, t2)
		if entry > exit {
			return 0, 0, false
		}
	}

	if exit < 0 {
		return 0, 0, false
	}
	return math32.Max(entry, 0), exit, true
}
