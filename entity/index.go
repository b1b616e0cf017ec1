package entity

import (
	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/scylladb/go-set/i64set"
	"github.com/voxelforge/voxphys/vmath"
)

// DefaultCellSize is the grid cell edge used when none is configured. Large
// enough that a player-sized collider rarely spans more than eight cells.
const DefaultCellSize float32 = 4

type cellKey [3]int32

// Index is a uniform-grid spatial index over the tangible entities of one
// world. The filtering system rebuilds it once per tick after entity moves
// are applied; queries between rebuilds see that tick's snapshot. The index
// is confined to the tick goroutine and takes no locks.
type Index struct {
	cellSize float32
	entities *orderedmap.OrderedMap[uint64, *Entity]
	cells    map[cellKey][]uint64

	// seen dedups entities spanning several cells during one query.
	seen *i64set.Set
}

// NewIndex returns an empty index with the given grid cell size.
func NewIndex(cellSize float32) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Index{
		cellSize: cellSize,
		entities: orderedmap.NewOrderedMap[uint64, *Entity](),
		cells:    make(map[cellKey][]uint64),
		seen:     i64set.New(),
	}
}

// Add registers an entity. It becomes queryable on the next Rebuild.
func (idx *Index) Add(e *Entity) {
	idx.entities.Set(e.RuntimeID(), e)
}

// Remove unregisters an entity by runtime id.
func (idx *Index) Remove(rid uint64) {
	idx.entities.Delete(rid)
}

// Get returns a registered entity by runtime id.
func (idx *Index) Get(rid uint64) (*Entity, bool) {
	return idx.entities.Get(rid)
}

// Len returns the number of registered entities, intangible ones included.
func (idx *Index) Len() int {
	return idx.entities.Len()
}

// Rebuild refreshes the grid from current entity positions, filtering out
// intangible entities. Called once per tick by the filtering system.
func (idx *Index) Rebuild() {
	for k := range idx.cells {
		delete(idx.cells, k)
	}

	for el := idx.entities.Front(); el != nil; el = el.Next() {
		e := el.Value
		if e.Intangible() {
			continue
		}
		idx.eachCellOf(e.WorldBox(), func(k cellKey) {
			idx.cells[k] = append(idx.cells[k], e.RuntimeID())
		})
	}
}

// EachInBox calls fn for every tangible entity whose collider intersects the
// box, in registration order within each cell, until fn returns false.
func (idx *Index) EachInBox(box cube.BBox, fn func(*Entity) bool) {
	idx.seen.Clear()
	stop := false
	idx.eachCellOf(box, func(k cellKey) {
		if stop {
			return
		}
		for _, rid := range idx.cells[k] {
			if idx.seen.Has(int64(rid)) {
				continue
			}
			idx.seen.Add(int64(rid))

			e, ok := idx.entities.Get(rid)
			if !ok || !e.WorldBox().IntersectsWith(box) {
				continue
			}
			if !fn(e) {
				stop = true
				return
			}
		}
	})
}

// EachInSphere calls fn for every tangible entity whose collider comes within
// radius of center, until fn returns false.
func (idx *Index) EachInSphere(center mgl32.Vec3, radius float32, fn func(*Entity) bool) {
	box := cube.Box(
		center.X()-radius, center.Y()-radius, center.Z()-radius,
		center.X()+radius, center.Y()+radius, center.Z()+radius,
	)
	idx.EachInBox(box, func(e *Entity) bool {
		if vmath.BoxPointDistance(e.WorldBox(), center) > radius {
			return true
		}
		return fn(e)
	})
}

func (idx *Index) eachCellOf(box cube.BBox, fn func(cellKey)) {
	min, max := box.Min(), box.Max()
	minX := int32(math32.Floor(min.X() / idx.cellSize))
	minY := int32(math32.Floor(min.Y() / idx.cellSize))
	minZ := int32(math32.Floor(min.Z() / idx.cellSize))
	maxX := int32(math32.Floor(max.X() / idx.cellSize))
	maxY := int32(math32.Floor(max.Y() / idx.cellSize))
	maxZ := int32(math32.Floor(max.Z() / idx.cellSize))

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				fn(cellKey{x, y, z})
			}
		}
	}
}
