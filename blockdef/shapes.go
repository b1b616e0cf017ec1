package blockdef

import "github.com/ethaniccc/float32-cube/cube"

// Canonical hitbox constructors for the built-in block shapes. All boxes are
// in block-local space; stairs and fences are authored facing north (rotation
// 0) and rely on the registry's rotation variants for the other facings.

// FullCube returns the unit cell hitbox.
func FullCube() []cube.BBox {
	return []cube.BBox{cube.Box(0, 0, 0, 1, 1, 1)}
}

// Slab returns a half-height hitbox, either the bottom or the top half.
func Slab(top bool) []cube.BBox {
	if top {
		return []cube.BBox{cube.Box(0, 0.5, 0, 1, 1, 1)}
	}
	return []cube.BBox{cube.Box(0, 0, 0, 1, 0.5, 1)}
}

// Layer returns a thin full-footprint hitbox of the given height, used for
// snow layers and similar partial blocks.
func Layer(height float32) []cube.BBox {
	return []cube.BBox{cube.Box(0, 0, 0, 1, height, 1)}
}

// Stairs returns the compound two-box stair shape: a half slab plus a
// half-depth riser against the north face. UpsideDown mirrors it vertically.
func Stairs(upsideDown bool) []cube.BBox {
	if upsideDown {
		return []cube.BBox{
			cube.Box(0, 0.5, 0, 1, 1, 1),
			cube.Box(0, 0, 0, 1, 0.5, 0.5),
		}
	}
	return []cube.BBox{
		cube.Box(0, 0, 0, 1, 0.5, 1),
		cube.Box(0, 0.5, 0, 1, 1, 0.5),
	}
}

// Fence connection bits, by horizontal face.
const (
	FenceNorth = 1 << iota
	FenceEast
	FenceSouth
	FenceWest
)

// Fence returns the post hitbox plus an arm for every connected side. Fences
// are taller than a block so entities cannot hop them.
func Fence(connections uint8) []cube.BBox {
	const (
		lo     = 6.0 / 16.0
		hi     = 10.0 / 16.0
		height = 1.5
	)
	boxes := []cube.BBox{cube.Box(lo, 0, lo, hi, height, hi)}
	if connections&FenceNorth != 0 {
		boxes = append(boxes, cube.Box(lo, 0, 0, hi, height, lo))
	}
	if connections&FenceSouth != 0 {
		boxes = append(boxes, cube.Box(lo, 0, hi, hi, height, 1))
	}
	if connections&FenceWest != 0 {
		boxes = append(boxes, cube.Box(0, 0, lo, lo, height, hi))
	}
	if connections&FenceEast != 0 {
		boxes = append(boxes, cube.Box(hi, 0, lo, 1, height, hi))
	}
	return boxes
}
