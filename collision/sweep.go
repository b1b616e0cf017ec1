package collision

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/assert"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/material"
	"github.com/voxelforge/voxphys/vmath"
	"github.com/voxelforge/voxphys/world"
)

// Sweeper walks every voxel the mover's swept volume could touch, runs the
// applicable evaluator per candidate and routes each non-trivial outcome into
// a Result bucket. It owns the per-query probe and both evaluator kinds, so
// one checkout serves a whole movement step without allocation.
type Sweeper struct {
	// Cfg carries the world binding and the mover state of the current
	// query. Callers fill the mover fields before each Sweep.
	Cfg Config

	cube     CubeEvaluator
	compound CompoundEvaluator
}

// Sweep runs the block phase of one movement step, appending contacts to res.
// An unresolvable block id aborts the sweep with an invalid-world-state
// error; partial results already in res are valid.
func (s *Sweeper) Sweep(res *Result) error {
	cfg := &s.Cfg
	assert.IsTrue(cfg.Bound(), "sweep on unbound config")

	s.cube.ResolvePenetration = true
	s.cube.GroundCeilingOnly = false
	s.compound.ResolvePenetration = true

	path := cfg.Box.Translate(cfg.Pos).
		Extend(cfg.Vel.Mul(cfg.Duration)).
		Grow(math32.Max(cfg.Margin, 0))

	min, max := path.Min(), path.Max()
	for y := int(math32.Floor(min.Y())); y <= int(math32.Floor(max.Y())); y++ {
		for z := int(math32.Floor(min.Z())); z <= int(math32.Floor(max.Z())); z++ {
			for x := int(math32.Floor(min.X())); x <= int(math32.Floor(max.X())); x++ {
				if err := s.sweepCell(res, cube.Pos{x, y, z}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Sweeper) sweepCell(res *Result, pos cube.Pos) error {
	cfg := &s.Cfg
	bt, state, err := cfg.BlockAt(pos)
	if err != nil {
		return err
	}
	if bt.Flags.Has(material.Empty) && state.FluidLevel == 0 {
		return nil
	}

	if bt.Solid() {
		s.sweepSolid(res, bt, pos, state)
	}

	trig := bt.Flags & (material.Fluid | material.Damage | material.Climbable | material.Trigger)
	if state.FluidLevel > 0 {
		trig = trig.With(material.Fluid)
	}
	if trig != material.None && cfg.Reacts(trig) {
		s.sweepTrigger(res, bt, pos, state, trig)
	}
	return nil
}

// sweepSolid runs the blocking phase of one candidate: a swept hit becomes a
// Collision, a tangential start-of-step contact becomes a Slide.
func (s *Sweeper) sweepSolid(res *Result, bt *blockdef.BlockType, pos cube.Pos, state world.BlockState) {
	cfg := &s.Cfg

	// Filler cells block as full cubes; their real geometry lives in the
	// neighbouring master cell.
	var ev BlockEvaluator = &s.compound
	if bt.FullCube() || state.Filler() {
		ev = &s.cube
	}
	ev.Configure(cfg, bt, pos, state)
	ev.ComputeCollisionStart()

	if hit := ev.Hit(); hit.Hit {
		pen, _ := ev.Penetration()
		res.AddCollision(pos, bt, bt.Flags, timeFrac(hit.TOI, cfg.Duration), hit.Normal, pen)
		return
	}

	for _, box := range bt.Boxes(state.Rotation()) {
		m := vmath.StaticOverlap(cfg.Box, cfg.Pos, box, pos.Vec3())
		if !m.Touching() {
			continue
		}
		axis := m.TouchAxis()
		if cfg.Vel[axis] != 0 {
			continue
		}
		res.AddSlide(pos, bt, bt.Flags, slideNormal(cfg.Box.Translate(cfg.Pos), box.Translate(pos.Vec3()), axis))
		return
	}
}

// sweepTrigger records an overlap of the swept path with an interactive
// volume. Fluid cells without a blocking hitbox shrink to their surface
// level.
func (s *Sweeper) sweepTrigger(res *Result, bt *blockdef.BlockType, pos cube.Pos, state world.BlockState, trig material.Flags) {
	cfg := &s.Cfg

	cell := unitBox
	if state.FluidLevel > 0 && !bt.Solid() {
		cell = cube.Box(0, 0, 0, 1, float32(state.FluidLevel)/float32(world.FluidFull), 1)
	}
	hit := vmath.SweptAABB(cfg.Box, cfg.Pos, cfg.Vel, cell, pos.Vec3(), cfg.Duration)
	if hit.Hit {
		res.AddTrigger(pos, bt, trig, timeFrac(hit.TOI, cfg.Duration))
	}
}

// Clear detaches the probe and wipes all evaluator state. Mandatory before
// the sweeper is returned to a pool.
func (s *Sweeper) Clear() {
	s.Cfg.Clear()
	s.cube.Reset()
	s.compound.Reset()
}

// slideNormal points from the touched face toward the mover.
func slideNormal(mover cube.BBox, static cube.BBox, axis int) mgl32.Vec3 {
	var n mgl32.Vec3
	if mover.Min()[axis] >= static.Max()[axis]-vmath.Epsilon {
		n[axis] = 1
	} else {
		n[axis] = -1
	}
	return n
}

// timeFrac converts an impact time into a fraction of the step duration.
func timeFrac(t, duration float32) float32 {
	if duration <= 0 {
		return 0
	}
	return t / duration
}
