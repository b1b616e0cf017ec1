package collision

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/material"
	"github.com/voxelforge/voxphys/oerror"
	"github.com/voxelforge/voxphys/pool"
	"github.com/voxelforge/voxphys/vmath"
	"github.com/voxelforge/voxphys/world"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testWorld builds a world with a small block vocabulary and one chunk at the
// origin. The returned map resolves block names to ids.
func testWorld(t *testing.T) (*world.World, *world.Chunk, map[string]uint32) {
	t.Helper()
	log := testLogger()
	reg := blockdef.NewRegistry(log)

	ids := map[string]uint32{"air": blockdef.AirID}
	register := func(name string, flags material.Flags, boxes []cube.BBox) {
		id, err := reg.Register(name, flags, boxes)
		if err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		ids[name] = id
	}
	register("stone", material.Solid, blockdef.FullCube())
	register("slab", material.Solid, blockdef.Slab(false))
	register("lava", material.Damage|material.Fluid, nil)

	w := world.New(reg, log)
	c := world.NewChunk()
	w.AddChunk(world.ChunkPos{0, 0}, c)
	return w, c, ids
}

func unitMover() cube.BBox {
	return cube.Box(0, 0, 0, 1, 1, 1)
}

func TestSweepHeadOn(t *testing.T) {
	w, c, ids := testWorld(t)
	c.Set(8, 0, 8, world.BlockState{ID: ids["stone"]})

	sw := CheckoutSweeper(w)
	defer ReturnSweeper(sw)
	sw.Cfg.Box = unitMover()
	sw.Cfg.Pos = mgl32.Vec3{6, 0, 8}
	sw.Cfg.Vel = mgl32.Vec3{1, 0, 0}
	sw.Cfg.Duration = 1

	res := CheckoutResult()
	defer ReturnResult(res)
	if err := sw.Sweep(res); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	res.Process(nil, nil)

	first, ok := res.First()
	if !ok {
		t.Fatal("no collision recorded")
	}
	if !vmath.Float32ApproxEq(first.TOI, 1) {
		t.Fatalf("TOI = %v, want 1", first.TOI)
	}
	if first.Normal != (mgl32.Vec3{-1, 0, 0}) {
		t.Fatalf("normal = %v, want (-1,0,0)", first.Normal)
	}
	if first.Pos != (cube.Pos{8, 0, 8}) {
		t.Fatalf("contact pos = %v", first.Pos)
	}
}

func TestSweepRestingOnFloorSlides(t *testing.T) {
	w, c, ids := testWorld(t)
	c.Set(8, 0, 8, world.BlockState{ID: ids["stone"]})
	c.Set(9, 0, 8, world.BlockState{ID: ids["stone"]})

	sw := CheckoutSweeper(w)
	defer ReturnSweeper(sw)
	sw.Cfg.Box = unitMover()
	sw.Cfg.Pos = mgl32.Vec3{8, 1, 8}
	sw.Cfg.Vel = mgl32.Vec3{0.5, 0, 0}
	sw.Cfg.Duration = 1

	res := CheckoutResult()
	defer ReturnResult(res)
	if err := sw.Sweep(res); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	res.Process(nil, nil)

	if res.HasCollisions() {
		t.Fatal("tangential floor contact reported as blocking")
	}
	if !res.Sliding() {
		t.Fatal("floor contact not reported as sliding")
	}
	slides := 0
	res.EachSlide(func(s *BlockContact) bool {
		if s.Normal != (mgl32.Vec3{0, 1, 0}) {
			t.Fatalf("slide normal = %v, want (0,1,0)", s.Normal)
		}
		slides++
		return true
	})
	if slides == 0 {
		t.Fatal("no slide contacts")
	}
}

func TestSweepOntoSlab(t *testing.T) {
	w, c, ids := testWorld(t)
	c.Set(8, 0, 8, world.BlockState{ID: ids["slab"]})

	sw := CheckoutSweeper(w)
	defer ReturnSweeper(sw)
	sw.Cfg.Box = unitMover()
	sw.Cfg.Pos = mgl32.Vec3{8, 3, 8}
	sw.Cfg.Vel = mgl32.Vec3{0, -3, 0}
	sw.Cfg.Duration = 1

	res := CheckoutResult()
	defer ReturnResult(res)
	if err := sw.Sweep(res); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	res.Process(nil, nil)

	first, ok := res.First()
	if !ok {
		t.Fatal("no collision with slab")
	}
	// Slab top at y=0.5, mover feet start at y=3: contact after 2.5 of 3.
	if !vmath.Float32ApproxEq(first.TOI, 2.5/3) {
		t.Fatalf("TOI = %v, want %v", first.TOI, 2.5/3)
	}
	if first.Normal != (mgl32.Vec3{0, 1, 0}) {
		t.Fatalf("normal = %v, want (0,1,0)", first.Normal)
	}
}

func TestSweepFluidTrigger(t *testing.T) {
	w, c, _ := testWorld(t)
	c.Set(8, 0, 8, world.BlockState{FluidLevel: world.FluidFull})

	sw := CheckoutSweeper(w)
	defer ReturnSweeper(sw)
	sw.Cfg.Box = unitMover()
	sw.Cfg.Pos = mgl32.Vec3{8, 2, 8}
	sw.Cfg.Vel = mgl32.Vec3{0, -2, 0}
	sw.Cfg.Duration = 1

	res := CheckoutResult()
	defer ReturnResult(res)
	if err := sw.Sweep(res); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	res.Process(nil, nil)

	found := false
	res.EachTrigger(func(c *BlockContact) bool {
		if !c.Flags.Has(material.Fluid) {
			t.Fatalf("trigger flags = %v, want fluid", c.Flags)
		}
		found = true
		return true
	})
	if !found {
		t.Fatal("fluid cell in path produced no trigger")
	}
	if res.HasCollisions() {
		t.Fatal("fluid cell reported as blocking")
	}
}

func TestSweepMaskFiltersTriggers(t *testing.T) {
	w, c, ids := testWorld(t)
	c.Set(8, 0, 8, world.BlockState{ID: ids["lava"], FluidLevel: world.FluidFull})

	sw := CheckoutSweeper(w)
	defer ReturnSweeper(sw)
	sw.Cfg.Box = unitMover()
	sw.Cfg.Pos = mgl32.Vec3{8, 0, 8}
	sw.Cfg.Duration = 1
	sw.Cfg.Mask = material.Climbable

	res := CheckoutResult()
	defer ReturnResult(res)
	if err := sw.Sweep(res); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	res.Process(nil, nil)
	if !res.Empty() {
		t.Fatal("masked-out trigger material still produced contacts")
	}
}

type sinkRecorder struct {
	enters, leaves []cube.Pos
}

func (s *sinkRecorder) OnTriggerEnter(pos cube.Pos, _ material.Flags) {
	s.enters = append(s.enters, pos)
}

func (s *sinkRecorder) OnTriggerLeave(pos cube.Pos, _ material.Flags) {
	s.leaves = append(s.leaves, pos)
}

func TestTriggerEnterLeaveTransitions(t *testing.T) {
	w, c, _ := testWorld(t)
	c.Set(8, 0, 8, world.BlockState{FluidLevel: world.FluidFull})

	prev := pool.NewTracker[material.Flags](pool.NewTrackerList[material.Flags](pool.MaxTracked))
	sink := &sinkRecorder{}

	step := func(pos mgl32.Vec3) {
		sw := CheckoutSweeper(w)
		defer ReturnSweeper(sw)
		sw.Cfg.Box = unitMover()
		sw.Cfg.Pos = pos
		sw.Cfg.Duration = 1

		res := CheckoutResult()
		defer ReturnResult(res)
		if err := sw.Sweep(res); err != nil {
			t.Fatalf("sweep: %v", err)
		}
		res.Process(prev, sink)
	}

	step(mgl32.Vec3{8, 0.2, 8})
	if len(sink.enters) != 1 || sink.enters[0] != (cube.Pos{8, 0, 8}) {
		t.Fatalf("enters = %v, want [{8 0 8}]", sink.enters)
	}
	if len(sink.leaves) != 0 {
		t.Fatalf("premature leaves: %v", sink.leaves)
	}

	// Still overlapping: no new transitions.
	step(mgl32.Vec3{8, 0.3, 8})
	if len(sink.enters) != 1 || len(sink.leaves) != 0 {
		t.Fatalf("re-entry dispatched: enters=%v leaves=%v", sink.enters, sink.leaves)
	}

	// Moved away: the overlap from the previous step ends.
	step(mgl32.Vec3{20, 10, 20})
	if len(sink.leaves) != 1 || sink.leaves[0] != (cube.Pos{8, 0, 8}) {
		t.Fatalf("leaves = %v, want [{8 0 8}]", sink.leaves)
	}
}

func TestProcessDropsContactsPastClamp(t *testing.T) {
	res := NewResult()
	bt := &blockdef.BlockType{}
	prev := pool.NewTracker[material.Flags](pool.NewTrackerList[material.Flags](pool.MaxTracked))
	sink := &sinkRecorder{}

	// Movement clamps at 0.5; the later trigger and entity contacts lie in
	// space the mover never reaches.
	res.AddCollision(cube.Pos{3, 0, 0}, bt, material.Solid, 0.5, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{})
	res.AddTrigger(cube.Pos{2, 0, 0}, bt, material.Fluid, 0.3)
	res.AddTrigger(cube.Pos{5, 0, 0}, bt, material.Fluid, 0.8)
	res.AddEntityHit(EntityContact{TOI: 0.9})
	res.Process(prev, sink)

	if len(sink.enters) != 1 || sink.enters[0] != (cube.Pos{2, 0, 0}) {
		t.Fatalf("enters = %v, want only the reached volume", sink.enters)
	}
	triggers := 0
	res.EachTrigger(func(*BlockContact) bool { triggers++; return true })
	if triggers != 1 {
		t.Fatalf("triggers kept = %d, want 1", triggers)
	}
	if _, ok := res.FirstEntity(); ok {
		t.Fatal("entity hit past the clamp kept")
	}
	if prev.IsTracked(cube.Pos{5, 0, 0}) {
		t.Fatal("unreached volume tracked for the next step")
	}
}

func TestSlideSurfaceFriction(t *testing.T) {
	w, c, _ := testWorld(t)
	id, err := w.Registry().Register("ice", material.Solid, blockdef.FullCube(), blockdef.WithFriction(0.98))
	if err != nil {
		t.Fatalf("register ice: %v", err)
	}
	c.Set(8, 0, 8, world.BlockState{ID: id})

	sw := CheckoutSweeper(w)
	defer ReturnSweeper(sw)
	sw.Cfg.Box = unitMover()
	sw.Cfg.Pos = mgl32.Vec3{8, 1, 8}
	sw.Cfg.Vel = mgl32.Vec3{0.5, 0, 0}
	sw.Cfg.Duration = 1

	res := CheckoutResult()
	defer ReturnResult(res)
	if err := sw.Sweep(res); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	res.Process(nil, nil)

	if !res.Sliding() {
		t.Fatal("resting contact not reported as sliding")
	}
	if f := res.SurfaceFriction(); !vmath.Float32ApproxEq(f, 0.98) {
		t.Fatalf("surface friction = %v, want 0.98", f)
	}
	res.EachSlide(func(s *BlockContact) bool {
		if !vmath.Float32ApproxEq(s.Friction, 0.98) {
			t.Fatalf("slide contact friction = %v, want 0.98", s.Friction)
		}
		return true
	})

	// Airborne: the default applies.
	empty := NewResult()
	empty.Process(nil, nil)
	if f := empty.SurfaceFriction(); f != blockdef.DefaultFriction {
		t.Fatalf("airborne friction = %v, want default", f)
	}
}

func TestSweepUnknownBlockID(t *testing.T) {
	w, c, _ := testWorld(t)
	c.Set(8, 0, 8, world.BlockState{ID: 999})

	sw := CheckoutSweeper(w)
	defer ReturnSweeper(sw)
	sw.Cfg.Box = unitMover()
	sw.Cfg.Pos = mgl32.Vec3{8, 0, 8}
	sw.Cfg.Duration = 1

	res := CheckoutResult()
	defer ReturnResult(res)
	err := sw.Sweep(res)
	if !errors.Is(err, oerror.ErrInvalidWorld) {
		t.Fatalf("err = %v, want invalid world state", err)
	}
}

func TestResultWindowAccumulation(t *testing.T) {
	res := NewResult()
	bt := &blockdef.BlockType{}

	res.SetWindow(0, 0.5)
	res.AddCollision(cube.Pos{1, 0, 0}, bt, material.Solid, 0.5, mgl32.Vec3{}, mgl32.Vec3{})
	res.SetWindow(0.5, 0.5)
	res.AddCollision(cube.Pos{2, 0, 0}, bt, material.Solid, 0.2, mgl32.Vec3{}, mgl32.Vec3{})
	res.Process(nil, nil)

	first, _ := res.First()
	if !vmath.Float32ApproxEq(first.TOI, 0.25) {
		t.Fatalf("first TOI = %v, want 0.25", first.TOI)
	}
	last := false
	res.EachCollision(func(c *BlockContact) bool {
		last = vmath.Float32ApproxEq(c.TOI, 0.6)
		return true
	})
	if !last {
		t.Fatal("second sub-window contact not mapped to 0.6")
	}
}
