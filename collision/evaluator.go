package collision

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/assert"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/vmath"
	"github.com/voxelforge/voxphys/world"
)

// BlockEvaluator computes the collision of the configured mover against one
// candidate block. The contract is two-phase: Configure with the candidate,
// then ComputeCollisionStart, then read Hit/Penetration. One instance is
// reused across many candidates in a scan, so an evaluator carries no state
// beyond its most recent Configure and is single-threaded and non-reentrant.
type BlockEvaluator interface {
	// Configure points the evaluator at one candidate block. Results of a
	// prior candidate are discarded.
	Configure(cfg *Config, bt *blockdef.BlockType, pos cube.Pos, state world.BlockState)
	// ComputeCollisionStart runs the sweep and returns the time of impact,
	// equal to the step duration when no contact occurs.
	ComputeCollisionStart() float32
	// Hit returns the result of the last compute.
	Hit() vmath.SweptHit
	// Penetration returns the minimum translation resolving an overlap
	// present at the start of the step, and whether one was computed.
	Penetration() (mgl32.Vec3, bool)
	// Reset clears all candidate state.
	Reset()
}

// unitBox is the hitbox of a full-cube block in block-local space.
var unitBox = cube.Box(0, 0, 0, 1, 1, 1)

// evalState is the candidate bookkeeping shared by the evaluator kinds.
type evalState struct {
	cfg   *Config
	bt    *blockdef.BlockType
	pos   cube.Pos
	state world.BlockState

	configured bool
	computed   bool

	hit    vmath.SweptHit
	pen    mgl32.Vec3
	hasPen bool
}

func (s *evalState) Configure(cfg *Config, bt *blockdef.BlockType, pos cube.Pos, state world.BlockState) {
	s.cfg = cfg
	s.bt = bt
	s.pos = pos
	s.state = state
	s.configured = true
	s.computed = false
	s.hit = vmath.SweptHit{}
	s.pen = mgl32.Vec3{}
	s.hasPen = false
}

func (s *evalState) Hit() vmath.SweptHit {
	assert.IsTrue(s.computed, "evaluator result read before compute")
	return s.hit
}

func (s *evalState) Penetration() (mgl32.Vec3, bool) {
	assert.IsTrue(s.computed, "evaluator result read before compute")
	return s.pen, s.hasPen
}

func (s *evalState) Reset() {
	*s = evalState{}
}

// sweepBox sweeps the configured mover against one block-local hitbox.
func (s *evalState) sweepBox(box cube.BBox) vmath.SweptHit {
	cfg := s.cfg
	return vmath.SweptAABB(cfg.Box, cfg.Pos, cfg.Vel, box, s.pos.Vec3(), cfg.Duration)
}

// penetrationVec returns the minimum translation pushing the mover out of an
// overlapping block hitbox, along the axis of least penetration depth.
func penetrationVec(mover cube.BBox, static cube.BBox) mgl32.Vec3 {
	aMin, aMax := mover.Min(), mover.Max()
	bMin, bMax := static.Min(), static.Max()

	best := float32(math32.Inf(1))
	axis := -1
	dir := float32(0)
	for i := 0; i < 3; i++ {
		lo := aMax[i] - bMin[i]
		hi := bMax[i] - aMin[i]
		if lo <= 0 || hi <= 0 {
			return mgl32.Vec3{}
		}
		if lo < hi {
			// Pushing the mover toward negative i is the shorter way out.
			if lo < best {
				best, axis, dir = lo, i, -1
			}
		} else if hi < best {
			best, axis, dir = hi, i, 1
		}
	}

	var out mgl32.Vec3
	if axis >= 0 {
		out[axis] = dir * best
	}
	return out
}
