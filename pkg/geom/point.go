package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultEps is the tolerance under which near-zero quantities are
// treated as zero.
const DefaultEps = 1e-5

// Point3 is a position or displacement in 3D space. It is sdfx's
// float64 3-vector, so the usual algebra (Add, Sub, MulScalar, Dot,
// Cross, Length) is available directly on the value.
type Point3 = v3.Vec

// Pt constructs a Point3 from its coordinates.
func Pt(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// PointsEqual reports whether a and b coincide within eps on every
// axis. The comparison is symmetric: |a-b| <= eps per component.
func PointsEqual(a, b Point3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps &&
		math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.Z-b.Z) <= eps
}
