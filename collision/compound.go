package collision

import (
	"github.com/voxelforge/voxphys/assert"
)

// CompoundEvaluator sweeps the mover against blocks built from several
// sub-hitboxes (stairs, fences) or a single partial hitbox (slabs, layers),
// taking the earliest valid contact across the sub-boxes of the configured
// rotation.
type CompoundEvaluator struct {
	evalState

	// ResolvePenetration computes a minimum translation vector against the
	// earliest overlapping sub-box.
	ResolvePenetration bool
}

// ComputeCollisionStart sweeps the mover against every sub-box of the
// configured block and returns the earliest time of impact.
func (e *CompoundEvaluator) ComputeCollisionStart() float32 {
	assert.IsTrue(e.configured, "compound evaluator compute before configure")
	e.computed = true

	cfg := e.cfg
	boxes := e.bt.Boxes(e.state.Rotation())

	best := e.hit
	best.TOI = cfg.Duration
	best.Axis = -1
	bestBox := -1
	for i, box := range boxes {
		hit := e.sweepBox(box)
		if !hit.Hit {
			continue
		}
		if !best.Hit || hit.TOI < best.TOI {
			best = hit
			bestBox = i
		}
	}

	if best.Hit && best.Overlapping && e.ResolvePenetration {
		e.pen = penetrationVec(cfg.Box.Translate(cfg.Pos), boxes[bestBox].Translate(e.pos.Vec3()))
		e.hasPen = true
	}

	e.hit = best
	return best.TOI
}
