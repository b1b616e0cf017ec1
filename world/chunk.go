package world

const (
	// SectionSize is the edge length of one cubic chunk section.
	SectionSize = 16
	// SectionVolume is the block count of one section.
	SectionVolume = SectionSize * SectionSize * SectionSize

	// MinY and MaxY bound the vertical build range. MaxY is exclusive.
	MinY = -64
	MaxY = 320

	// SectionCount is the number of vertical sections in a chunk column.
	SectionCount = (MaxY - MinY) / SectionSize
)

// ChunkPos is the horizontal position of a chunk column, in chunk coordinates.
type ChunkPos [2]int32

// BlockState is the packed per-cell state read out of chunk storage: the
// block id, the fluid level of the cell (0 = dry, FluidFull = source) and the
// rotation/filler sub-state.
type BlockState struct {
	ID         uint32
	FluidLevel uint8
	Sub        uint8
}

// FluidFull is the fluid level of a full source cell.
const FluidFull uint8 = 15

// Rotation returns the quarter-turn rotation of the block about Y.
func (s BlockState) Rotation() uint8 {
	return s.Sub & 3
}

// Filler reports whether the cell is a filler instance: geometry contributed
// by a neighbouring multi-cell block rather than a block of its own.
func (s BlockState) Filler() bool {
	return s.Sub&4 != 0
}

// ChunkSource is a read-only column of block state. Implemented by *Chunk and
// by *CachedChunk for deduplicated shared columns.
type ChunkSource interface {
	State(x uint8, y int16, z uint8) BlockState
	// EmptySection reports whether a whole 16-block vertical section holds
	// nothing, letting vertical scans skip it in one step.
	EmptySection(idx int) bool
}

// Section is a 16x16x16 cube of block state. A nil section is all air.
type Section struct {
	blocks [SectionVolume]uint32
	fluids [SectionVolume]uint8
	subs   [SectionVolume]uint8
}

// Chunk is one 16x16 column of sections spanning the build range.
type Chunk struct {
	sections [SectionCount]*Section
}

// NewChunk returns an empty chunk column.
func NewChunk() *Chunk {
	return &Chunk{}
}

func sectionIdx(y int16) int {
	return int(y-MinY) >> 4
}

func cellIdx(x uint8, y int16, z uint8) int {
	return (int(y-MinY)&15)<<8 | int(z)<<4 | int(x)
}

// State returns the block state at the given column-local coordinates.
// Coordinates outside the build range read as air.
func (c *Chunk) State(x uint8, y int16, z uint8) BlockState {
	if y < MinY || y >= MaxY {
		return BlockState{}
	}
	s := c.sections[sectionIdx(y)]
	if s == nil {
		return BlockState{}
	}
	i := cellIdx(x, y, z)
	return BlockState{ID: s.blocks[i], FluidLevel: s.fluids[i], Sub: s.subs[i]}
}

// EmptySection reports whether the section at idx was never written.
func (c *Chunk) EmptySection(idx int) bool {
	return idx < 0 || idx >= SectionCount || c.sections[idx] == nil
}

// Set writes the block state at the given column-local coordinates. Writes
// outside the build range are dropped.
func (c *Chunk) Set(x uint8, y int16, z uint8, state BlockState) {
	if y < MinY || y >= MaxY {
		return
	}
	si := sectionIdx(y)
	s := c.sections[si]
	if s == nil {
		if state == (BlockState{}) {
			return
		}
		s = &Section{}
		c.sections[si] = s
	}
	i := cellIdx(x, y, z)
	s.blocks[i] = state.ID
	s.fluids[i] = state.FluidLevel
	s.subs[i] = state.Sub
}
