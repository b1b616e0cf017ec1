// Package entity holds the tangible entity handles and the spatial index the
// collision core queries during the broad phase. Entities and the index are
// owned by the tick scheduler: all mutation happens on the owning tick
// goroutine, so none of these types carry locks.
package entity

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Entity represents one entity in a world with a physical collider.
type Entity struct {
	// rid is the runtime id of the entity, unique within a world.
	rid uint64
	// position is the current position of the entity in the world.
	position mgl32.Vec3
	// lastPosition is the previous position of the entity in the world.
	lastPosition mgl32.Vec3
	// bbox is the collider in entity-local space, feet at the origin.
	bbox cube.BBox
	// parts optionally refines the collider with smaller sub-boxes (head,
	// torso, tail) for precision hits; also entity-local.
	parts []cube.BBox
	// intangible entities have no physical collider and are excluded from
	// the spatial index on rebuild.
	intangible bool
	// onGround reports whether the entity rested on a surface last tick.
	onGround bool
}

// defaultBox is the collider for newly created entities.
var defaultBox = cube.Box(
	-0.3, 0, -0.3,
	0.3, 1.8, 0.3,
)

// New creates an entity with the default collider at the given position.
func New(rid uint64, position mgl32.Vec3) *Entity {
	return &Entity{
		rid:          rid,
		position:     position,
		lastPosition: position,
		bbox:         defaultBox,
	}
}

// BoxFromDimensions returns a feet-origin collider from width and height.
func BoxFromDimensions(width, height float32) cube.BBox {
	h := width / 2
	return cube.Box(
		-h, 0, -h,
		h, height, h,
	)
}

// RuntimeID returns the runtime id of the entity.
func (e *Entity) RuntimeID() uint64 {
	return e.rid
}

// Position returns the position of the entity.
func (e *Entity) Position() mgl32.Vec3 {
	return e.position
}

// LastPosition returns the position of the entity before the last Move.
func (e *Entity) LastPosition() mgl32.Vec3 {
	return e.lastPosition
}

// Move moves the entity to the given position.
func (e *Entity) Move(pos mgl32.Vec3) {
	e.lastPosition = e.position
	e.position = pos
}

// Box returns the entity-local collider.
func (e *Entity) Box() cube.BBox {
	return e.bbox
}

// SetBox replaces the entity-local collider.
func (e *Entity) SetBox(b cube.BBox) {
	e.bbox = b
}

// BoxAt returns the collider translated to the given position.
func (e *Entity) BoxAt(pos mgl32.Vec3) cube.BBox {
	return e.bbox.Translate(pos)
}

// WorldBox returns the collider translated to the current position.
func (e *Entity) WorldBox() cube.BBox {
	return e.bbox.Translate(e.position)
}

// Parts returns the optional sub-box colliders, nil if the entity has none.
func (e *Entity) Parts() []cube.BBox {
	return e.parts
}

// SetParts replaces the sub-box colliders.
func (e *Entity) SetParts(parts []cube.BBox) {
	e.parts = parts
}

// Intangible reports whether the entity lacks a physical collider.
func (e *Entity) Intangible() bool {
	return e.intangible
}

// SetIntangible toggles the physical collider. Takes effect in the spatial
// index on the next Rebuild.
func (e *Entity) SetIntangible(intangible bool) {
	e.intangible = intangible
}

// OnGround reports whether the entity rested on a surface last tick.
func (e *Entity) OnGround() bool {
	return e.onGround
}

// SetOnGround records the resting state of the entity.
func (e *Entity) SetOnGround(onGround bool) {
	e.onGround = onGround
}
