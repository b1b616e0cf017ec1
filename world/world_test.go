package world

import (
	"errors"
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/material"
	"github.com/voxelforge/voxphys/oerror"
)

type testBlocks struct {
	stone uint32
	slab  uint32
	lava  uint32
}

func newTestWorld(t *testing.T) (*World, testBlocks) {
	t.Helper()

	reg := blockdef.NewRegistry(nil)
	var ids testBlocks
	var err error
	if ids.stone, err = reg.Register("stone", material.Solid, blockdef.FullCube()); err != nil {
		t.Fatal(err)
	}
	if ids.slab, err = reg.Register("slab", material.Solid, blockdef.Slab(false)); err != nil {
		t.Fatal(err)
	}
	if ids.lava, err = reg.Register("lava", material.Damage, nil); err != nil {
		t.Fatal(err)
	}
	return New(reg, nil), ids
}

func TestStateReadsBackWrites(t *testing.T) {
	w, ids := newTestWorld(t)
	c := NewChunk()
	c.Set(3, 64, 5, BlockState{ID: ids.stone})
	w.AddChunk(ChunkPos{0, 0}, c)

	if got := w.State(cube.Pos{3, 64, 5}); got.ID != ids.stone {
		t.Fatalf("chunk read = %+v", got)
	}

	// Overlay writes shadow the chunk without mutating it.
	w.SetState(cube.Pos{3, 64, 5}, BlockState{})
	if got := w.State(cube.Pos{3, 64, 5}); got.ID != blockdef.AirID {
		t.Fatalf("overlay read = %+v", got)
	}
	if got := c.State(3, 64, 5); got.ID != ids.stone {
		t.Fatalf("chunk mutated by overlay: %+v", got)
	}

	// Out of range and unloaded chunks read as air.
	if got := w.State(cube.Pos{3, MaxY + 5, 5}); got != (BlockState{}) {
		t.Fatalf("above build range = %+v", got)
	}
	if got := w.State(cube.Pos{500, 64, 500}); got != (BlockState{}) {
		t.Fatalf("unloaded chunk = %+v", got)
	}
}

func TestFarthestEmptySpaceBelow(t *testing.T) {
	w, ids := newTestWorld(t)
	c := NewChunk()
	c.Set(0, 64, 0, BlockState{ID: ids.stone})
	w.AddChunk(ChunkPos{0, 0}, c)

	if got := w.FarthestEmptySpaceBelow(cube.Pos{0, 100, 0}); got != 64 {
		t.Fatalf("scan from 100 = %d, want 64", got)
	}

	// A completely empty column bottoms out at MinY.
	if got := w.FarthestEmptySpaceBelow(cube.Pos{5, 100, 5}); got != MinY {
		t.Fatalf("empty column = %d, want %d", got, MinY)
	}

	// Fluid counts as non-empty.
	w.SetState(cube.Pos{1, 80, 0}, BlockState{FluidLevel: FluidFull})
	if got := w.FarthestEmptySpaceBelow(cube.Pos{1, 100, 0}); got != 80 {
		t.Fatalf("fluid column = %d, want 80", got)
	}
}

func TestHighestBlockY(t *testing.T) {
	w, ids := newTestWorld(t)
	c := NewChunk()
	c.Set(0, 64, 0, BlockState{ID: ids.stone})
	c.Set(0, 30, 0, BlockState{ID: ids.stone})
	w.AddChunk(ChunkPos{0, 0}, c)

	y, ok := w.HighestBlockY(0, 0)
	if !ok || y != 64 {
		t.Fatalf("highest = %d/%v, want 64", y, ok)
	}

	if _, ok := w.HighestBlockY(5, 5); ok {
		t.Fatal("empty column should find nothing")
	}
}

func TestNearestSolidAbove(t *testing.T) {
	w, ids := newTestWorld(t)
	c := NewChunk()
	c.Set(0, 128, 0, BlockState{ID: ids.stone})
	w.AddChunk(ChunkPos{0, 0}, c)

	y, ok := w.NearestSolidAbove(cube.Pos{0, 64, 0})
	if !ok || y != 128 {
		t.Fatalf("scan up = %d/%v, want 128", y, ok)
	}

	if _, ok := w.NearestSolidAbove(cube.Pos{5, 64, 5}); ok {
		t.Fatal("open column should find nothing")
	}
}

func TestMaterialAtPartialHitbox(t *testing.T) {
	w, ids := newTestWorld(t)
	c := NewChunk()
	c.Set(0, 64, 0, BlockState{ID: ids.slab})
	w.AddChunk(ChunkPos{0, 0}, c)

	flags, err := w.MaterialAt(mgl32.Vec3{0.5, 64.25, 0.5})
	if err != nil || !flags.Has(material.Solid) {
		t.Fatalf("inside slab: %v %v", flags, err)
	}

	// Above the slab but inside the same cell: not solid.
	flags, err = w.MaterialAt(mgl32.Vec3{0.5, 64.75, 0.5})
	if err != nil || flags.Has(material.Solid) {
		t.Fatalf("above slab: %v %v", flags, err)
	}
}

func TestMaterialAtFluid(t *testing.T) {
	w, ids := newTestWorld(t)
	w.AddChunk(ChunkPos{0, 0}, NewChunk())
	w.SetState(cube.Pos{0, 64, 0}, BlockState{FluidLevel: 8})

	flags, err := w.MaterialAt(mgl32.Vec3{0.5, 64.25, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if !flags.Has(material.Fluid) || !flags.Has(material.Submerged) {
		t.Fatalf("below surface: %v", flags)
	}

	flags, _ = w.MaterialAt(mgl32.Vec3{0.5, 64.9, 0.5})
	if !flags.Has(material.Fluid) || flags.Has(material.Submerged) {
		t.Fatalf("above surface: %v", flags)
	}

	// Damage volumes pass their flag through.
	w.SetState(cube.Pos{1, 64, 0}, BlockState{ID: ids.lava, FluidLevel: FluidFull})
	flags, _ = w.MaterialAt(mgl32.Vec3{1.5, 64.25, 0.5})
	if !flags.Has(material.Damage) || !flags.Has(material.Fluid) {
		t.Fatalf("lava: %v", flags)
	}
}

func TestMaterialAtUnknownBlock(t *testing.T) {
	w, _ := newTestWorld(t)
	w.AddChunk(ChunkPos{0, 0}, NewChunk())
	w.SetState(cube.Pos{0, 64, 0}, BlockState{ID: 9999})

	_, err := w.MaterialAt(mgl32.Vec3{0.5, 64.5, 0.5})
	if !errors.Is(err, oerror.ErrInvalidWorld) {
		t.Fatalf("want invalid world error, got %v", err)
	}
}

func TestFluidSurface(t *testing.T) {
	w, _ := newTestWorld(t)
	w.AddChunk(ChunkPos{0, 0}, NewChunk())
	w.SetState(cube.Pos{0, 62, 0}, BlockState{FluidLevel: FluidFull})
	w.SetState(cube.Pos{0, 63, 0}, BlockState{FluidLevel: 6})

	h, ok := w.FluidSurface(0.5, 0.5, 100)
	if !ok {
		t.Fatal("expected fluid")
	}
	want := float32(63) + 6.0/15.0
	if h != want {
		t.Fatalf("surface = %v, want %v", h, want)
	}

	if _, ok := w.FluidSurface(8.5, 8.5, 100); ok {
		t.Fatal("dry column should report no surface")
	}
}

func TestEncodeDecodeChunk(t *testing.T) {
	c := NewChunk()
	c.Set(1, 64, 2, BlockState{ID: 7, FluidLevel: 3, Sub: 5})
	c.Set(15, -60, 15, BlockState{ID: 9})

	decoded, err := DecodeChunk(EncodeChunk(c))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := decoded.State(1, 64, 2); got != (BlockState{ID: 7, FluidLevel: 3, Sub: 5}) {
		t.Fatalf("round trip = %+v", got)
	}
	if got := decoded.State(15, -60, 15); got.ID != 9 {
		t.Fatalf("round trip = %+v", got)
	}
	// Untouched sections stay empty for scan skipping.
	if !decoded.EmptySection(SectionCount - 1) {
		t.Fatal("top section should be empty")
	}

	if _, err := DecodeChunk([]byte{1, 2, 3}); !errors.Is(err, oerror.ErrInvalidWorld) {
		t.Fatalf("truncated payload: %v", err)
	}
	if _, err := DecodeChunk([]byte{9}); !errors.Is(err, oerror.ErrInvalidWorld) {
		t.Fatalf("bad section flag: %v", err)
	}
}
