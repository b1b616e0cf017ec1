package vmath

import (
	"iter"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// VoxelsAlong walks the voxel grid from start to end, yielding every block
// position the segment passes through in order. Used by long sweeps to
// enumerate candidate blocks without expanding a whole bounding region.
func VoxelsAlong(start, end mgl32.Vec3) iter.Seq[cube.Pos] {
	return func(yield func(cube.Pos) bool) {
		delta := end.Sub(start)
		if delta.LenSqr() <= 0 {
			yield(cube.PosFromVec3(start))
			return
		}
		dirVec := delta.Normalize()

		radius := delta.Len()
		stepX := Sign(dirVec.X())
		stepY := Sign(dirVec.Y())
		stepZ := Sign(dirVec.Z())

		tMaxX := distanceToBoundary(start.X(), dirVec.X())
		tMaxY := distanceToBoundary(start.Y(), dirVec.Y())
		tMaxZ := distanceToBoundary(start.Z(), dirVec.Z())

		tDeltaX := float32(0)
		if dirVec.X() != 0 {
			tDeltaX = stepX / dirVec.X()
		}

		tDeltaY := float32(0)
		if dirVec.Y() != 0 {
			tDeltaY = stepY / dirVec.Y()
		}

		tDeltaZ := float32(0)
		if dirVec.Z() != 0 {
			tDeltaZ = stepZ / dirVec.Z()
		}

		current := cube.PosFromVec3(start)
		for {
			if !yield(current) {
				return
			}

			if tMaxX < tMaxY && tMaxX < tMaxZ {
				if tMaxX > radius {
					return
				}
				current[0] += int(stepX)
				tMaxX += tDeltaX
			} else if tMaxY < tMaxZ {
				if tMaxY > radius {
					return
				}
				current[1] += int(stepY)
				tMaxY += tDeltaY
			} else {
				if tMaxZ > radius {
					return
				}
				current[2] += int(stepZ)
				tMaxZ += tDeltaZ
			}
		}
	}
}

// distanceToBoundary returns the distance along the ray until the first voxel
// boundary is crossed on the axis.
func distanceToBoundary(s, ds float32) float32 {
	if ds == 0 {
		return math32.MaxFloat32
	}

	if ds < 0 {
		s = -s
		ds = -ds

		if math32.Floor(s) == s {
			return 0
		}
	}

	return (1 - (s - math32.Floor(s))) / ds
}
