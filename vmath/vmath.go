package vmath

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the distance below which two box faces are considered to be in
// exact contact. Sized for float32 at world-scale coordinates, where a single
// ulp already exceeds 1e-7.
const Epsilon = 1e-5

// Sign returns -1 if x < 0, 0 if x == 0, or 1 if x > 0.
func Sign(x float32) float32 {
	if x < 0 {
		return -1
	} else if x == 0 {
		return 0
	}

	return 1
}

// Round32 will round a float32 to a given precision.
func Round32(val float32, precision int) float32 {
	pwr := math32.Pow(10, float32(precision))
	return math32.Round(val*pwr) / pwr
}

// Float32ApproxEq determines whether two floating point numbers are close enough
// to each other by a threshold of 1e-5.
func Float32ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// AbsVec3 will return the given vector, but all the values of it are switched
// to their absolute values.
func AbsVec3(vec mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Abs(vec.X()), math32.Abs(vec.Y()), math32.Abs(vec.Z())}
}

// Vec3HzDistSqr returns the squared horizontal distance in a vector.
func Vec3HzDistSqr(vec3 mgl32.Vec3) float32 {
	return vec3.X()*vec3.X() + vec3.Z()*vec3.Z()
}

// BoxPointDistance calculates the distance between a box and a point, zero if
// the point lies inside the box.
func BoxPointDistance(b cube.BBox, v mgl32.Vec3) float32 {
	x := math32.Max(b.Min().X()-v.X(), math32.Max(0, v.X()-b.Max().X()))
	y := math32.Max(b.Min().Y()-v.Y(), math32.Max(0, v.Y()-b.Max().Y()))
	z := math32.Max(b.Min().Z()-v.Z(), math32.Max(0, v.Z()-b.Max().Z()))

	return math32.Sqrt(x*x + y*y + z*z)
}
