package world

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/material"
)

// MaterialAt classifies the exact point at vec: which material flags apply to
// an entity whose volume contains that point. Partial hitboxes count as Solid
// only if the point falls inside one of the block's boxes, and fluid cells
// report Submerged only below the fluid surface level of the cell.
func (w *World) MaterialAt(vec mgl32.Vec3) (material.Flags, error) {
	pos := cube.PosFromVec3(vec)
	state := w.State(pos)

	bt, err := w.reg.Lookup(state.ID)
	if err != nil {
		return material.None, err
	}

	var flags material.Flags
	local := vec.Sub(pos.Vec3())

	if bt.Solid() {
		for _, box := range bt.Boxes(state.Rotation()) {
			if box.Vec3Within(local) {
				flags = flags.With(material.Solid)
				break
			}
		}
	}
	if state.FluidLevel > 0 {
		flags = flags.With(material.Fluid)
		surface := float32(state.FluidLevel) / float32(FluidFull)
		if local.Y() < surface {
			flags = flags.With(material.Submerged)
		}
	}

	flags = flags.With(bt.Flags.Without(material.Solid | material.Empty | material.Fluid | material.Submerged))
	if flags == material.None {
		flags = material.Empty
	}
	return flags, nil
}

// FluidSurface returns the world-space height of the fluid surface in the
// column at (x, z), scanning downward from yStart. The second return is false
// if the column holds no fluid within the build range.
func (w *World) FluidSurface(x, z float32, yStart int) (float32, bool) {
	bx, bz := int(math32.Floor(x)), int(math32.Floor(z))
	for y := min(yStart, MaxY-1); y >= MinY; y-- {
		state := w.State(cube.Pos{bx, y, bz})
		if state.FluidLevel == 0 {
			continue
		}
		// Walk up through any stacked fluid to the topmost cell.
		top := y
		for top+1 < MaxY && w.State(cube.Pos{bx, top + 1, bz}).FluidLevel > 0 {
			top++
		}
		lvl := w.State(cube.Pos{bx, top, bz}).FluidLevel
		return float32(top) + float32(lvl)/float32(FluidFull), true
	}
	return 0, false
}

// FarthestEmptySpaceBelow scans downward from pos and returns the Y of the
// first non-empty block it meets, skipping whole empty chunk sections in one
// step. If the column is empty all the way down, MinY is returned.
func (w *World) FarthestEmptySpaceBelow(pos cube.Pos) int {
	chunkPos := ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}
	c := w.Chunk(chunkPos)

	y := min(pos[1], MaxY-1)
	for y >= MinY {
		if c != nil {
			si := int(int16(y)-MinY) >> 4
			if c.EmptySection(si) && !w.PendingUpdates(chunkPos) {
				y = MinY + si*SectionSize - 1
				continue
			}
		}
		if !w.emptyAt(cube.Pos{pos[0], y, pos[2]}) {
			return y
		}
		y--
	}
	return MinY
}

// HighestBlockY returns the Y of the highest non-empty block in the column
// at (x, z). The second return is false if the column is empty all the way
// down the build range.
func (w *World) HighestBlockY(x, z int) (int, bool) {
	y := w.FarthestEmptySpaceBelow(cube.Pos{x, MaxY - 1, z})
	if w.emptyAt(cube.Pos{x, y, z}) {
		return 0, false
	}
	return y, true
}

// NearestSolidAbove scans upward from pos and returns the Y of the first
// solid block above it. The second return is false if nothing solid exists
// overhead within the build range.
func (w *World) NearestSolidAbove(pos cube.Pos) (int, bool) {
	chunkPos := ChunkPos{int32(pos[0]) >> 4, int32(pos[2]) >> 4}
	c := w.Chunk(chunkPos)

	y := max(pos[1], MinY)
	for y < MaxY {
		if c != nil {
			si := int(int16(y)-MinY) >> 4
			if c.EmptySection(si) && !w.PendingUpdates(chunkPos) {
				y = MinY + (si+1)*SectionSize
				continue
			}
		}
		state := w.State(cube.Pos{pos[0], y, pos[2]})
		if bt, err := w.reg.Lookup(state.ID); err == nil && bt.Solid() {
			return y, true
		}
		y++
	}
	return 0, false
}

// emptyAt reports whether the cell holds neither block nor fluid.
func (w *World) emptyAt(pos cube.Pos) bool {
	state := w.State(pos)
	if state.FluidLevel > 0 {
		return false
	}
	bt, err := w.reg.Lookup(state.ID)
	if err != nil {
		// Unknown ids are treated as occupied: upstream data is broken and
		// pretending the cell is free would let entities fall through it.
		return false
	}
	return bt.Flags.Has(material.Empty)
}

// PendingUpdates reports whether the chunk at pos carries overlay block
// updates. Callers holding a direct ChunkSource reference must fall back to
// State reads while this is true, since the overlay shadows the chunk data.
func (w *World) PendingUpdates(pos ChunkPos) bool {
	w.RLock()
	defer w.RUnlock()
	return len(w.blockUpdates[pos]) > 0
}
