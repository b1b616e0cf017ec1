package world

import (
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/sasha-s/go-deadlock"
	"github.com/voxelforge/voxphys/blockdef"
)

// World is a chunked voxel store bound to one block definition registry. The
// chunk map is the only synchronized structure; block state queries are pure
// reads and take no locks beyond the map's RWMutex. Callers are expected to
// defer world writes to end-of-tick command application, so an in-flight
// physics query never observes a mutation.
type World struct {
	chunks       map[ChunkPos]ChunkSource
	blockUpdates map[ChunkPos]map[cube.Pos]BlockState
	reg          *blockdef.Registry
	logger       *slog.Logger
	lastCleanPos ChunkPos

	deadlock.RWMutex
}

// New creates a world backed by the given registry.
func New(reg *blockdef.Registry, logger *slog.Logger) *World {
	return &World{
		chunks:       make(map[ChunkPos]ChunkSource),
		blockUpdates: make(map[ChunkPos]map[cube.Pos]BlockState),
		reg:          reg,
		logger:       logger,
	}
}

// Registry returns the block definition registry the world resolves ids with.
func (w *World) Registry() *blockdef.Registry {
	return w.reg
}

// AddChunk adds a chunk column to the world, replacing any previous column at
// that position and dropping its pending block updates.
func (w *World) AddChunk(pos ChunkPos, c ChunkSource) {
	w.Lock()
	defer w.Unlock()

	if old, ok := w.chunks[pos]; ok {
		if cached, ok := old.(*CachedChunk); ok {
			cached.Unsubscribe()
		}
		delete(w.blockUpdates, pos)
	}
	w.chunks[pos] = c
}

// Chunk returns the chunk column at the position, or nil if not loaded.
func (w *World) Chunk(pos ChunkPos) ChunkSource {
	w.RLock()
	c := w.chunks[pos]
	w.RUnlock()

	return c
}

// State returns the block state at a world position. Unloaded chunks and
// positions outside the build range read as air.
func (w *World) State(pos cube.Pos) BlockState {
	if pos.OutOfBounds(cube.Range{MinY, MaxY - 1}) {
		return BlockState{}
	}

	chunkPos := ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}
	w.RLock()
	updates, found := w.blockUpdates[chunkPos]
	w.RUnlock()
	if found {
		if s, ok := updates[pos]; ok {
			return s
		}
	}

	c := w.Chunk(chunkPos)
	if c == nil {
		return BlockState{}
	}
	return c.State(uint8(pos[0]&15), int16(pos[1]), uint8(pos[2]&15))
}

// SetState records a block write at the position. Writes land in a per-chunk
// overlay so shared cached columns are never mutated.
func (w *World) SetState(pos cube.Pos, state BlockState) {
	if pos.OutOfBounds(cube.Range{MinY, MaxY - 1}) {
		return
	}
	chunkPos := ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}

	w.Lock()
	defer w.Unlock()

	if w.blockUpdates[chunkPos] == nil {
		w.blockUpdates[chunkPos] = make(map[cube.Pos]BlockState)
	}
	w.blockUpdates[chunkPos][pos] = state
}

// CleanChunks drops chunk columns outside the given radius around the center
// position, unsubscribing shared cached columns so the cache can evict them.
func (w *World) CleanChunks(radius int32, center ChunkPos) {
	w.Lock()
	defer w.Unlock()

	if center == w.lastCleanPos {
		return
	}
	w.lastCleanPos = center

	for chunkPos, c := range w.chunks {
		if chunkInRange(radius, chunkPos, center) {
			continue
		}
		if cached, ok := c.(*CachedChunk); ok {
			cached.Unsubscribe()
		}
		delete(w.chunks, chunkPos)
		delete(w.blockUpdates, chunkPos)
		if w.logger != nil {
			w.logger.Debug("removed out-of-range chunk", "chunkPos", chunkPos, "radius", radius, "center", center)
		}
	}
}

// PurgeChunks removes all chunk columns from the world.
func (w *World) PurgeChunks() {
	w.Lock()
	defer w.Unlock()

	for chunkPos, c := range w.chunks {
		if cached, ok := c.(*CachedChunk); ok {
			cached.Unsubscribe()
		}
		delete(w.chunks, chunkPos)
		delete(w.blockUpdates, chunkPos)
	}
}

// chunkInRange returns true if the chunk position is within the given radius
// of the center position.
func chunkInRange(radius int32, chunkPos, center ChunkPos) bool {
	diffX, diffZ := center[0]-chunkPos[0], center[1]-chunkPos[1]
	dist := math32.Sqrt(float32(diffX*diffX) + float32(diffZ*diffZ))

	return int32(dist) <= radius
}
