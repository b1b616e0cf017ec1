// Package material defines the bit-flag vocabulary describing the physical
// properties of a block. Blocks may carry several flags at once, so membership
// is always tested with AND against zero; comparing a Flags value for equality
// is not part of the API.
package material

import "strings"

// Flags is a combination of material bits.
type Flags uint16

const (
	// Empty marks a block with no physical presence.
	Empty Flags = 1 << iota
	// Fluid marks a block cell containing a fluid volume.
	Fluid
	// Solid marks a block with at least one blocking hitbox.
	Solid
	// Submerged marks a position below the fluid surface of its column.
	Submerged
	// Damage marks a volume that harms entities overlapping it.
	Damage
	// Climbable marks a block an entity can ascend while touching.
	Climbable
	// Trigger marks a non-solid volume that scripts react to on overlap.
	Trigger
)

// None is the zero value; Has on it is always false.
const None Flags = 0

// AnyExceptDamage matches every material except damage volumes.
const AnyExceptDamage = Empty | Fluid | Solid | Submerged | Climbable | Trigger

// Passable matches materials an entity can move through.
const Passable = Empty | Fluid | Damage | Trigger

var names = []struct {
	bit  Flags
	name string
}{
	{Empty, "empty"},
	{Fluid, "fluid"},
	{Solid, "solid"},
	{Submerged, "submerged"},
	{Damage, "damage"},
	{Climbable, "climbable"},
	{Trigger, "trigger"},
}

// Has reports whether any bit of mask is set in f.
func (f Flags) Has(mask Flags) bool {
	return f&mask != 0
}

// With returns f combined with the given bits.
func (f Flags) With(mask Flags) Flags {
	return f | mask
}

// Without returns f with the given bits cleared.
func (f Flags) Without(mask Flags) Flags {
	return f &^ mask
}

func (f Flags) String() string {
	if f == None {
		return "none"
	}

	var parts []string
	for _, n := range names {
		if f.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Parse resolves a material name to its flag bit. Unknown names return None.
func Parse(name string) Flags {
	for _, n := range names {
		if n.name == name {
			return n.bit
		}
	}
	return None
}
