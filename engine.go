// Package voxphys is a collision and physics detection engine for voxel
// worlds. The Engine resolves movement steps against block geometry and
// tangible entities: swept tests for blocking contacts, tangential contact
// classification, trigger volume overlaps and static position validation.
//
// The engine follows the single-threaded-per-query model of the whole core:
// an Engine and the scratch objects it checks out are confined to the tick
// goroutine driving a world region. Running engines for separate regions in
// parallel is safe; sharing one across goroutines is not.
package voxphys

import (
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/assert"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/collision"
	"github.com/voxelforge/voxphys/entity"
	"github.com/voxelforge/voxphys/material"
	"github.com/voxelforge/voxphys/pool"
	"github.com/voxelforge/voxphys/vmath"
	"github.com/voxelforge/voxphys/world"
)

// Status is the bitmask returned by ValidatePosition. Membership is tested
// with AND; several bits are normally set at once for a grounded mover.
type Status uint8

const (
	// StatusOK is set when the mover overlaps no blocking geometry.
	StatusOK Status = 1 << iota
	// StatusOnGround is set when the mover rests on a surface below.
	StatusOnGround
	// StatusTouchCeiling is set when the mover touches a surface above.
	StatusTouchCeiling
)

// OK reports whether the position is free of blocking overlap.
func (s Status) OK() bool { return s&StatusOK != 0 }

// OnGround reports whether the mover rests on a surface.
func (s Status) OnGround() bool { return s&StatusOnGround != 0 }

// TouchingCeiling reports whether the mover touches a surface above.
func (s Status) TouchingCeiling() bool { return s&StatusTouchCeiling != 0 }

// fullCell is the hitbox filler cells block with.
var fullCell = cube.Box(0, 0, 0, 1, 1, 1)

// Engine is the movement resolution orchestrator over one world and its
// entity index. It derives two sizing scalars from the block registry, the
// largest hitbox extent and the thinnest hitbox, and re-derives them whenever
// the registry generation changes, so candidate search windows stay correct
// across definition reloads.
type Engine struct {
	w    *world.World
	idx  *entity.Index
	opts Options
	log  *slog.Logger

	sizeGen      uint64
	sized        bool
	maxExtent    float32
	minThickness float32
}

// New creates an engine over the given world. idx may be nil, disabling the
// entity phase of movement queries.
func New(w *world.World, idx *entity.Index, opts Options, log *slog.Logger) *Engine {
	opts.sanitize()
	if log == nil {
		log = slog.Default()
	}
	return &Engine{w: w, idx: idx, opts: opts, log: log}
}

// World returns the world the engine resolves against.
func (e *Engine) World() *world.World { return e.w }

// Index returns the entity index, nil when the entity phase is disabled.
func (e *Engine) Index() *entity.Index { return e.idx }

// FindCollisions resolves one movement step of the mover: what it will hit
// and where it ends up. The final position stops exactly at the earliest
// blocking block contact; entity hits are recorded but do not clamp movement.
// With no blocks in the path the final position is start + vel*duration and
// the result is empty. The returned result is processed; release it with
// collision.ReturnResult when done reading.
func (e *Engine) FindCollisions(mover cube.BBox, start, vel mgl32.Vec3, duration float32) (mgl32.Vec3, *collision.Result, error) {
	return e.FindCollisionsFor(mover, start, vel, duration, nil, nil, nil)
}

// FindCollisionsFor is FindCollisions with the per-mover extras: self is
// excluded from entity hits, and prev/sink drive trigger enter/leave
// transition dispatch across consecutive steps of the same mover.
func (e *Engine) FindCollisionsFor(mover cube.BBox, start, vel mgl32.Vec3, duration float32, self *entity.Entity, prev *pool.Tracker[material.Flags], sink collision.TriggerSink) (mgl32.Vec3, *collision.Result, error) {
	assert.IsTrue(duration >= 0, "negative step duration")
	e.refreshSizing()

	sw := collision.CheckoutSweeper(e.w)
	defer collision.ReturnSweeper(sw)

	res := collision.CheckoutResult()
	final, err := e.sweepMove(sw, res, mover, start, vel, duration, self)
	if err != nil {
		collision.ReturnResult(res)
		return start, nil, err
	}

	if e.opts.StepHeight > 0 {
		if first, ok := res.EarliestCollision(); ok && first.Normal.Y() == 0 {
			if st, verr := e.validateWith(sw, mover, start); verr == nil && st.OnGround() {
				final, res = e.tryStepUp(sw, res, final, mover, start, vel, duration, self)
			}
		}
	}

	res.Process(prev, sink)
	return final, res, nil
}

// sweepMove runs the block and entity phases over the step, sub-stepping long
// movements, and returns the clamped final position.
func (e *Engine) sweepMove(sw *collision.Sweeper, res *collision.Result, mover cube.BBox, start, vel mgl32.Vec3, duration float32, self *entity.Entity) (mgl32.Vec3, error) {
	total := vel.Mul(duration)
	steps := e.subSteps(total.Len())
	margin := e.searchMargin()

	if steps > 1 && !e.pathOccupied(mover, start, total, margin) {
		// Free corridor: no block reaches the swept volume, so only the
		// entity phase runs, over the whole step at once.
		e.sweepEntities(res, mover, start, vel, duration, margin, self, 0, 1)
		return start.Add(total), nil
	}

	subDur := duration / float32(steps)
	stepFrac := 1 / float32(steps)
	pos := start

	for i := 0; i < steps; i++ {
		res.SetWindow(float32(i)*stepFrac, stepFrac)
		sw.Cfg.Box = mover
		sw.Cfg.Pos = pos
		sw.Cfg.Vel = vel
		sw.Cfg.Duration = subDur
		sw.Cfg.Margin = margin
		if err := sw.Sweep(res); err != nil {
			return start, err
		}
		e.sweepEntities(res, mover, pos, vel, subDur, margin, self, float32(i)*stepFrac, stepFrac)

		// A blocking contact ends the movement; later sub-steps would
		// sweep space the mover never reaches.
		if res.HasCollisions() {
			break
		}
		pos = pos.Add(vel.Mul(subDur))
	}

	toi := float32(1)
	if first, ok := res.EarliestCollision(); ok {
		toi = first.TOI
	}
	return start.Add(total.Mul(toi)), nil
}

// subSteps splits a movement distance into sub-steps. The sub-step length is
// bounded by the thinnest registered hitbox, up to the sub-step cap, so one
// candidate window cannot straddle past a thin block between sub-steps.
func (e *Engine) subSteps(dist float32) int {
	if dist <= e.opts.ShortMoveThreshold {
		return 1
	}
	stepLen := e.opts.SubStepLength
	if e.minThickness > 0 && e.minThickness < stepLen {
		stepLen = e.minThickness
	}
	steps := int(math32.Ceil(dist / stepLen))
	if steps > e.opts.MaxSubSteps {
		steps = e.opts.MaxSubSteps
	}
	if steps < 1 {
		steps = 1
	}
	return steps
}

// pathOccupied walks the voxel grid along the mover's centre ray and probes
// every cell the mover body or an oversized hitbox could reach around it. A
// fully empty corridor lets a long sweep skip the block phase entirely.
// Unresolvable block ids count as occupied; the full sweep surfaces the error.
func (e *Engine) pathOccupied(mover cube.BBox, start, total mgl32.Vec3, margin float32) bool {
	c0 := mover.Min().Add(mover.Max()).Mul(0.5).Add(start)
	half := float32(0)
	for i := 0; i < 3; i++ {
		half = math32.Max(half, (mover.Max()[i]-mover.Min()[i])/2)
	}
	reach := int(math32.Floor(half+margin)) + 1

	reg := e.w.Registry()
	for pos := range vmath.VoxelsAlong(c0, c0.Add(total)) {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				for dx := -reach; dx <= reach; dx++ {
					state := e.w.State(cube.Pos{pos[0] + dx, pos[1] + dy, pos[2] + dz})
					if state.FluidLevel > 0 {
						return true
					}
					bt, err := reg.Lookup(state.ID)
					if err != nil || !bt.Flags.Has(material.Empty) {
						return true
					}
				}
			}
		}
	}
	return false
}

// sweepEntities runs the entity phase over one sweep window, remapping the hit
// fraction into the whole step through bias and scale.
func (e *Engine) sweepEntities(res *collision.Result, mover cube.BBox, pos, vel mgl32.Vec3, dur, margin float32, self *entity.Entity, bias, scale float32) {
	if e.idx == nil {
		return
	}
	p := collision.CheckoutProvider(e.idx)
	if self != nil {
		p.SetIgnore(self.RuntimeID())
	}
	if hit, ok := p.Sweep(mover, pos, vel, dur, margin+e.opts.EntitySearchMargin); ok {
		hit.TOI = bias + hit.TOI*scale
		res.AddEntityHit(hit)
	}
	collision.ReturnProvider(p)
}

// tryStepUp retries a horizontally blocked movement from a lifted start,
// bounded by StepHeight, and keeps whichever attempt makes the better
// horizontal progress. Exactly one of the two results survives.
func (e *Engine) tryStepUp(sw *collision.Sweeper, plain *collision.Result, plainFinal mgl32.Vec3, mover cube.BBox, start, vel mgl32.Vec3, duration float32, self *entity.Entity) (mgl32.Vec3, *collision.Result) {
	lift := e.clipMove(sw, mover, start, mgl32.Vec3{0, e.opts.StepHeight, 0})
	if lift.Y() <= vmath.Epsilon {
		return plainFinal, plain
	}

	stepped := collision.CheckoutResult()
	steppedFinal, err := e.sweepMove(sw, stepped, mover, start.Add(lift), vel, duration, self)
	if err != nil {
		collision.ReturnResult(stepped)
		return plainFinal, plain
	}
	// Settle back onto the obstruction's top surface.
	steppedFinal = steppedFinal.Add(e.clipMove(sw, mover, steppedFinal, mgl32.Vec3{0, -lift.Y(), 0}))

	if vmath.Vec3HzDistSqr(steppedFinal.Sub(start)) > vmath.Vec3HzDistSqr(plainFinal.Sub(start)) {
		collision.ReturnResult(plain)
		return steppedFinal, stepped
	}
	collision.ReturnResult(stepped)
	return plainFinal, plain
}

// clipMove sweeps a displacement and returns it clamped to the first blocking
// contact. Errors clamp to zero; step-up is an optimisation, never a reason
// to fail the enclosing query.
func (e *Engine) clipMove(sw *collision.Sweeper, mover cube.BBox, pos, delta mgl32.Vec3) mgl32.Vec3 {
	if delta == (mgl32.Vec3{}) {
		return delta
	}
	scratch := collision.CheckoutResult()
	defer collision.ReturnResult(scratch)

	sw.Cfg.Box = mover
	sw.Cfg.Pos = pos
	sw.Cfg.Vel = delta
	sw.Cfg.Duration = 1
	sw.Cfg.Margin = e.searchMargin()
	if err := sw.Sweep(scratch); err != nil {
		return mgl32.Vec3{}
	}

	toi := float32(1)
	if first, ok := scratch.EarliestCollision(); ok {
		toi = first.TOI
	}
	return delta.Mul(toi)
}

// FindIntersections enumerates everything statically overlapping the mover at
// pos: blocks by material, and tangible entities.
func (e *Engine) FindIntersections(mover cube.BBox, pos mgl32.Vec3) ([]collision.BlockContact, []*entity.Entity, error) {
	e.refreshSizing()

	sw := collision.CheckoutSweeper(e.w)
	defer collision.ReturnSweeper(sw)

	var blocks []collision.BlockContact
	probe := mover.Translate(pos).Grow(e.searchMargin())
	err := eachVoxel(probe, func(p cube.Pos) error {
		bt, state, err := sw.Cfg.BlockAt(p)
		if err != nil {
			return err
		}
		if bt.Flags.Has(material.Empty) && state.FluidLevel == 0 {
			return nil
		}

		var flags material.Flags
		if bt.Solid() || state.Filler() {
			for _, b := range solidBoxes(bt, state) {
				if vmath.StaticOverlap(mover, pos, b, p.Vec3()).Overlapping() {
					flags = flags.With(material.Solid)
					break
				}
			}
		}
		if trig := volumeFlags(bt, state); trig != material.None {
			cell := volumeBox(bt, state)
			if vmath.StaticOverlap(mover, pos, cell, p.Vec3()).Overlapping() {
				flags = flags.With(trig)
			}
		}
		if flags != material.None {
			blocks = append(blocks, collision.BlockContact{Pos: p, Block: bt, Flags: flags})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var ents []*entity.Entity
	if e.idx != nil {
		p := collision.CheckoutProvider(e.idx)
		p.EachOverlapping(mover, pos, func(en *entity.Entity) bool {
			ents = append(ents, en)
			return true
		})
		collision.ReturnProvider(p)
	}
	return blocks, ents, nil
}

// ValidatePosition runs the cheap static check at a resting position: no
// sweep, just overlap and surface contact against nearby blocks.
func (e *Engine) ValidatePosition(mover cube.BBox, pos mgl32.Vec3) (Status, error) {
	e.refreshSizing()

	sw := collision.CheckoutSweeper(e.w)
	defer collision.ReturnSweeper(sw)
	return e.validateWith(sw, mover, pos)
}

func (e *Engine) validateWith(sw *collision.Sweeper, mover cube.BBox, pos mgl32.Vec3) (Status, error) {
	moverWorld := mover.Translate(pos)
	probe := moverWorld.Grow(e.searchMargin())

	overlap := false
	var st Status
	err := eachVoxel(probe, func(p cube.Pos) error {
		bt, state, err := sw.Cfg.BlockAt(p)
		if err != nil {
			return err
		}
		if !bt.Solid() && !state.Filler() {
			return nil
		}

		for _, b := range solidBoxes(bt, state) {
			m := vmath.StaticOverlap(mover, pos, b, p.Vec3())
			if m.Overlapping() {
				overlap = true
				continue
			}
			if !m.Touching() || m&vmath.TouchY == 0 {
				continue
			}
			bw := b.Translate(p.Vec3())
			if math32.Abs(bw.Max().Y()-moverWorld.Min().Y()) <= vmath.Epsilon {
				st |= StatusOnGround
			}
			if math32.Abs(bw.Min().Y()-moverWorld.Max().Y()) <= vmath.Epsilon {
				st |= StatusTouchCeiling
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if !overlap {
		st |= StatusOK
	}
	return st, nil
}

// refreshSizing re-derives the cached sizing scalars when the block registry
// generation changed.
func (e *Engine) refreshSizing() {
	gen := e.w.Registry().Generation()
	if e.sized && gen == e.sizeGen {
		return
	}

	maxExt, minTh := float32(1), float32(1)
	e.w.Registry().Each(func(bt *blockdef.BlockType) {
		for _, box := range bt.Boxes(0) {
			min, max := box.Min(), box.Max()
			for i := 0; i < 3; i++ {
				if ext := math32.Max(max[i], 1-min[i]); ext > maxExt {
					maxExt = ext
				}
				if th := max[i] - min[i]; th > 0 && th < minTh {
					minTh = th
				}
			}
		}
	})

	e.maxExtent, e.minThickness = maxExt, minTh
	e.sizeGen, e.sized = gen, true
	e.log.Debug("derived block sizing", "max_extent", maxExt, "min_thickness", minTh, "generation", gen)
}

// searchMargin is how far beyond the swept path candidate blocks may reach,
// from the largest registered hitbox extent.
func (e *Engine) searchMargin() float32 {
	return math32.Max(e.maxExtent-1, 0) + 0.25
}

func eachVoxel(box cube.BBox, fn func(cube.Pos) error) error {
	min, max := box.Min(), box.Max()
	for y := int(math32.Floor(min.Y())); y <= int(math32.Floor(max.Y())); y++ {
		for z := int(math32.Floor(min.Z())); z <= int(math32.Floor(max.Z())); z++ {
			for x := int(math32.Floor(min.X())); x <= int(math32.Floor(max.X())); x++ {
				if err := fn(cube.Pos{x, y, z}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// solidBoxes returns the blocking hitboxes of a cell, a full cube for filler
// cells whose geometry lives in the neighbouring master cell.
func solidBoxes(bt *blockdef.BlockType, state world.BlockState) []cube.BBox {
	if state.Filler() || bt.FullCube() {
		return []cube.BBox{fullCell}
	}
	return bt.Boxes(state.Rotation())
}

// volumeFlags returns the interactive-volume flags of a cell.
func volumeFlags(bt *blockdef.BlockType, state world.BlockState) material.Flags {
	trig := bt.Flags & (material.Fluid | material.Damage | material.Climbable | material.Trigger)
	if state.FluidLevel > 0 {
		trig = trig.With(material.Fluid)
	}
	return trig
}

// volumeBox returns the cell volume of an interactive material, shrunk to the
// fluid surface for non-blocking fluid cells.
func volumeBox(bt *blockdef.BlockType, state world.BlockState) cube.BBox {
	if state.FluidLevel > 0 && !bt.Solid() {
		return cube.Box(0, 0, 0, 1, float32(state.FluidLevel)/float32(world.FluidFull), 1)
	}
	return fullCell
}
