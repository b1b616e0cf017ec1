package collision

import (
	"github.com/voxelforge/voxphys/assert"
)

// CubeEvaluator sweeps the mover against a full-cube block. It is the fast
// path for the overwhelmingly common block shape and for filler cells, whose
// geometry belongs to a neighbouring multi-cell block but which still block
// as a full cube.
type CubeEvaluator struct {
	evalState

	// GroundCeilingOnly discards contacts on the horizontal axes, leaving
	// only landings and head bumps. Used by resting-position checks.
	GroundCeilingOnly bool
	// ResolvePenetration computes a minimum translation vector when the
	// mover already overlaps the block at the start of the step.
	ResolvePenetration bool
}

// ComputeCollisionStart sweeps the mover against the unit cell of the
// configured block and returns the time of impact.
func (e *CubeEvaluator) ComputeCollisionStart() float32 {
	assert.IsTrue(e.configured, "cube evaluator compute before configure")
	e.computed = true

	hit := e.sweepBox(unitBox)
	if hit.Hit && e.GroundCeilingOnly && hit.Axis != 1 {
		hit.Hit = false
		hit.TOI = e.cfg.Duration
		hit.Axis = -1
	}
	if hit.Hit && hit.Overlapping && e.ResolvePenetration {
		e.pen = penetrationVec(e.cfg.Box.Translate(e.cfg.Pos), unitBox.Translate(e.pos.Vec3()))
		e.hasPen = true
	}

	e.hit = hit
	return hit.TOI
}
