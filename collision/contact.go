// Package collision holds the per-query machinery of the physics core: the
// reusable world probe, the block evaluators, the sweep driver that routes
// candidate blocks into result buckets, and the entity collision providers.
// Everything here is per-query scratch confined to one goroutine; nothing
// takes locks.
package collision

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/voxelforge/voxphys/blockdef"
	"github.com/voxelforge/voxphys/entity"
	"github.com/voxelforge/voxphys/material"
)

// BlockContact is one contact between the mover and a block during a movement
// step. Contacts live in pooled arrays owned by a Result; pointers to them are
// invalid after the Result is reset.
type BlockContact struct {
	// Pos is the cell of the contacted block.
	Pos cube.Pos
	// Block is the definition of the contacted block.
	Block *blockdef.BlockType
	// Flags are the material flags that routed the contact into its bucket.
	Flags material.Flags
	// TOI is the fraction of the whole movement step at which contact
	// occurs, in [0, 1]. 0 for contacts already present at the start.
	TOI float32
	// Normal is the contact surface normal, zero for trigger overlaps.
	Normal mgl32.Vec3
	// Friction is the surface friction of the contacted block, applied by the
	// caller's movement integration while sliding along it.
	Friction float32
	// Penetration is the minimum translation resolving an overlap present at
	// the start of the step, zero when the mover was not intersecting.
	Penetration mgl32.Vec3
}

// EntityContact is the nearest entity hit found by a provider sweep.
type EntityContact struct {
	// Entity is the entity that was hit.
	Entity *entity.Entity
	// TOI is the fraction of the movement step at which contact occurs.
	TOI float32
	// Normal is the contact surface normal.
	Normal mgl32.Vec3
	// Point is the world-space contact point on the mover's face at impact.
	Point mgl32.Vec3
	// Distance is the distance travelled by the mover before contact.
	Distance float32
}

// TriggerSink receives trigger volume transitions computed by Result.Process.
// Implementations belong to the surrounding interaction system.
type TriggerSink interface {
	// OnTriggerEnter fires when the mover newly overlaps a trigger volume.
	OnTriggerEnter(pos cube.Pos, flags material.Flags)
	// OnTriggerLeave fires when an overlap from the previous step ended.
	OnTriggerLeave(pos cube.Pos, flags material.Flags)
}
