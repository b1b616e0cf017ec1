// Package blockdef holds the data-driven block type registry consumed by the
// collision core: block id -> hitbox geometry, material flags and surface
// properties. Definitions normally come from a YAML asset file and may be
// reloaded at runtime, which bumps the registry generation so dependants can
// re-derive cached sizing constants.
package blockdef

import (
	"log/slog"
	"sync/atomic"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/sasha-s/go-deadlock"
	"github.com/voxelforge/voxphys/material"
	"github.com/voxelforge/voxphys/oerror"
)

// AirID is the block id of the built-in air block. A registry always resolves
// id 0 to air.
const AirID uint32 = 0

// DefaultFriction is the surface friction applied when a definition does not
// override it.
const DefaultFriction float32 = 0.6

// BlockType describes the physical shape of one block id. Hitboxes are in
// block-local space, each contained in the unit cell [0,1]^3.
type BlockType struct {
	ID       uint32
	Name     string
	Flags    material.Flags
	Filler   bool
	Friction float32

	// boxes holds the hitbox set per quarter-turn rotation about Y,
	// precomputed at registration so lookups never allocate.
	boxes [4][]cube.BBox
}

// Boxes returns the hitbox set of the block for the given rotation sub-state
// (0-3 quarter turns). The returned slice must not be mutated.
func (b *BlockType) Boxes(rot uint8) []cube.BBox {
	return b.boxes[rot&3]
}

// Solid reports whether the block carries any blocking hitbox.
func (b *BlockType) Solid() bool {
	return b.Flags.Has(material.Solid) && len(b.boxes[0]) > 0
}

// FullCube reports whether the block's hitbox is exactly the unit cell.
func (b *BlockType) FullCube() bool {
	if len(b.boxes[0]) != 1 {
		return false
	}
	bb := b.boxes[0][0]
	return bb.Min() == [3]float32{} && bb.Max() == [3]float32{1, 1, 1}
}

// Registry maps block ids to their definitions. Reads are lock-free on the
// hot path apart from an RWMutex read lock; reloads swap the definition table
// wholesale and bump the generation counter.
type Registry struct {
	mu     deadlock.RWMutex
	byID   []*BlockType
	byName map[string]uint32
	gen    atomic.Uint64
	log    *slog.Logger
}

// NewRegistry returns a registry pre-populated with the air block at id 0.
func NewRegistry(log *slog.Logger) *Registry {
	r := &Registry{
		byName: make(map[string]uint32),
		log:    log,
	}
	air := &BlockType{ID: AirID, Name: "air", Flags: material.Empty, Friction: DefaultFriction}
	r.byID = append(r.byID, air)
	r.byName["air"] = AirID
	return r
}

// Register adds a block type with the given local hitboxes and returns its
// assigned id.
func (r *Registry) Register(name string, flags material.Flags, boxes []cube.BBox, opts ...Option) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return 0, oerror.New("block %q already registered", name)
	}

	bt := &BlockType{
		ID:       uint32(len(r.byID)),
		Name:     name,
		Flags:    flags,
		Friction: DefaultFriction,
	}
	bt.boxes[0] = boxes
	for rot := 1; rot < 4; rot++ {
		bt.boxes[rot] = rotateBoxes(bt.boxes[rot-1])
	}
	for _, o := range opts {
		o(bt)
	}

	r.byID = append(r.byID, bt)
	r.byName[name] = bt.ID
	r.gen.Add(1)
	return bt.ID, nil
}

// Option customises a block type at registration.
type Option func(*BlockType)

func WithFriction(f float32) Option {
	return func(b *BlockType) { b.Friction = f }
}

func WithFiller() Option {
	return func(b *BlockType) { b.Filler = true }
}

// Lookup resolves a block id. An id with no registered definition surfaces as
// an invalid-world-state error: it means the upstream asset pipeline handed
// the world a block the physics layer has never heard of.
func (r *Registry) Lookup(id uint32) (*BlockType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if int(id) >= len(r.byID) {
		return nil, oerror.InvalidWorld("block id %d has no definition", id)
	}
	return r.byID[id], nil
}

// ByName resolves a block name to its definition.
func (r *Registry) ByName(name string) (*BlockType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.byID[id], true
}

// Each calls fn for every registered block type, air included.
func (r *Registry) Each(fn func(*BlockType)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, bt := range r.byID {
		fn(bt)
	}
}

// Generation returns the reload generation. It changes whenever definitions
// are (re)registered, signalling dependants to drop derived caches.
func (r *Registry) Generation() uint64 {
	return r.gen.Load()
}

// rotateBoxes rotates a hitbox set a quarter turn clockwise about the Y axis
// within the unit cell.
func rotateBoxes(in []cube.BBox) []cube.BBox {
	if len(in) == 0 {
		return nil
	}
	out := make([]cube.BBox, len(in))
	for i, b := range in {
		min, max := b.Min(), b.Max()
		out[i] = cube.Box(min[2], min[1], 1-max[0], max[2], max[1], 1-min[0])
	}
	return out
}
