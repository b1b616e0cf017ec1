package collision

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/material"
	"github.com/voxelforge/voxphys/world"
)

// Config is the reusable probe a sweep reads the world through, carrying the
// mover state of the current query alongside a cached chunk reference so
// consecutive lookups in the same column skip the world chunk map. The cache
// fields are only valid for the coordinate of the most recent lookup. A
// Config is confined to one goroutine and must be cleared between worlds.
type Config struct {
	w   *world.World
	reg *blockdef.Registry

	chunkPos world.ChunkPos
	chunk    world.ChunkSource
	hasChunk bool
	overlay  bool

	// Box is the mover's collider in mover-local space.
	Box cube.BBox
	// Pos is the mover's position at the start of the step.
	Pos mgl32.Vec3
	// Vel is the mover's velocity over the step.
	Vel mgl32.Vec3
	// Duration is the length of the step. 0 degenerates to a static test.
	Duration float32
	// Margin widens the candidate search window beyond the swept path,
	// sized by the caller from the largest registered block hitbox.
	Margin float32
	// Mask selects the trigger materials the query reacts to. Zero means
	// all of them.
	Mask material.Flags
}

// Bind attaches the probe to a world. Must be called before any lookup.
func (c *Config) Bind(w *world.World) {
	c.w = w
	c.reg = w.Registry()
	c.hasChunk = false
}

// World returns the bound world.
func (c *Config) World() *world.World {
	return c.w
}

// Bound reports whether the probe is attached to a world.
func (c *Config) Bound() bool {
	return c.w != nil
}

// StateAt reads the block state at a world position through the chunk cache.
// Unloaded chunks and out-of-range positions read as air.
func (c *Config) StateAt(pos cube.Pos) world.BlockState {
	if pos.OutOfBounds(cube.Range{world.MinY, world.MaxY - 1}) {
		return world.BlockState{}
	}

	chunkPos := world.ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}
	if !c.hasChunk || chunkPos != c.chunkPos {
		c.chunk = c.w.Chunk(chunkPos)
		c.chunkPos = chunkPos
		c.hasChunk = true
		c.overlay = c.w.PendingUpdates(chunkPos)
	}

	// Overlay updates shadow the raw chunk data, so fall back to the world
	// read path while any are pending for this column.
	if c.chunk == nil {
		return world.BlockState{}
	}
	if c.overlay {
		return c.w.State(pos)
	}
	return c.chunk.State(uint8(pos[0]&15), int16(pos[1]), uint8(pos[2]&15))
}

// BlockAt resolves the block definition and state at a world position. An id
// with no registered definition surfaces as an invalid-world-state error.
func (c *Config) BlockAt(pos cube.Pos) (*blockdef.BlockType, world.BlockState, error) {
	state := c.StateAt(pos)
	bt, err := c.reg.Lookup(state.ID)
	if err != nil {
		return nil, state, err
	}
	return bt, state, nil
}

// Reacts reports whether the query reacts to any of the given trigger flags.
func (c *Config) Reacts(flags material.Flags) bool {
	return c.Mask == material.None || c.Mask.Has(flags)
}

// Clear detaches the probe and zeroes all query state. Mandatory before the
// Config is reused for an unrelated query or returned to a pool.
func (c *Config) Clear() {
	*c = Config{}
}
