package geom

import (
	"errors"
	"math"
)

// ErrDegenerateSegment is returned when an input segment has
// (near-)zero length. Such a segment has no direction, so the
// intersection is undefined rather than merely absent.
var ErrDegenerateSegment = errors.New("geom: degenerate segment")

// Kind classifies the relative configuration of two segments.
type Kind int

const (
	// KindNone means the segments do not meet: parallel with nonzero
	// separation, collinear without overlap, skew, or crossing lines
	// whose meeting point lies outside at least one segment's bounds.
	KindNone Kind = iota

	// KindPoint means the segments meet in a single point.
	KindPoint

	// KindOverlap means the segments are collinear and share a span.
	// The reported point is the start of the overlap along the first
	// segment's direction.
	KindOverlap
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPoint:
		return "point"
	case KindOverlap:
		return "overlap"
	}
	return "unknown"
}

// Intersection is the result of intersecting two segments. Point, T
// and S are meaningful only when Kind is not KindNone: T and S are
// the parameters of Point along the first and second segment.
type Intersection struct {
	Kind  Kind
	Point Point3
	T     float64
	S     float64
}

// Intersector computes segment intersections under a fixed tolerance.
// The zero value uses DefaultEps. An Intersector is stateless apart
// from its tolerance and safe for concurrent use.
type Intersector struct {
	eps float64
}

// New returns an Intersector with the given tolerance. A
// non-positive eps selects DefaultEps.
func New(eps float64) *Intersector {
	if eps <= 0 {
		eps = DefaultEps
	}
	return &Intersector{eps: eps}
}

// Eps returns the tolerance in use.
func (ix *Intersector) Eps() float64 {
	if ix == nil || ix.eps <= 0 {
		return DefaultEps
	}
	return ix.eps
}

// Intersect computes the intersection of s1 and s2 using the
// closest-point-between-lines method: solve the 2x2 normal equations
// for the parameters of the closest points of the two carrying
// lines, then test whether those points coincide within tolerance
// and fall inside both segments' bounds. Parallel lines are handled
// separately by projecting s2 onto s1's parametrization.
func (ix *Intersector) Intersect(s1, s2 Segment) (Intersection, error) {
	eps := ix.Eps()

	if s1.Degenerate(eps) || s2.Degenerate(eps) {
		return Intersection{}, ErrDegenerateSegment
	}

	u := s1.Dir()
	v := s2.Dir()
	w0 := s1.Start.Sub(s2.Start)

	a := u.Dot(u)
	b := v.Dot(u)
	c := v.Dot(v)
	d := u.Dot(w0)
	e := v.Dot(w0)

	if v.Cross(u).Length() < eps {
		return ix.parallel(s1, s2, u, v, w0, eps), nil
	}

	// Closest-point parameters of the carrying lines. The Gram
	// determinant is nonzero since the lines are not parallel. t is
	// rounded to 6 decimal digits to absorb floating-point noise
	// before the exact [0,1] bound checks.
	denom := a*c - b*b
	t := roundTo((-(d*c)+b*e)/denom, 6)
	s := (e + b*t) / c

	pt := s1.Start.Add(u.MulScalar(t))
	qs := s2.Start.Add(v.MulScalar(s))

	if pt.Sub(qs).Length() > eps {
		// Skew: the closest points of the two lines do not coincide.
		return Intersection{}, nil
	}
	if t < 0 || t > 1 || s < 0 || s > 1 {
		// The lines cross, but outside at least one segment.
		return Intersection{}, nil
	}

	return Intersection{Kind: KindPoint, Point: pt, T: t, S: s}, nil
}

// parallel handles segments whose carrying lines are parallel.
func (ix *Intersector) parallel(s1, s2 Segment, u, v, w0 Point3, eps float64) Intersection {
	// Perpendicular distance between the two lines.
	dist := u.Cross(w0).Length() / u.Length()
	if dist > eps {
		return Intersection{}
	}

	// Collinear: project both endpoints of s2 onto s1's
	// parametrization and clip the projected span against [0,1].
	uu := u.Dot(u)
	t0 := s2.Start.Sub(s1.Start).Dot(u) / uu
	t1 := s2.End.Sub(s1.Start).Dot(u) / uu
	if t0 > t1 {
		t0, t1 = t1, t0
	}

	tStart := math.Max(0, t0)
	tEnd := math.Min(1, t1)
	if tStart > tEnd {
		return Intersection{}
	}

	pt := s1.Start.Add(u.MulScalar(tStart))
	s := pt.Sub(s2.Start).Dot(v) / v.Dot(v)
	return Intersection{Kind: KindOverlap, Point: pt, T: tStart, S: s}
}

// LineSeparation returns the minimum distance between the infinite
// lines carrying s1 and s2. It is zero whenever the lines, not
// necessarily the segments, meet.
func (ix *Intersector) LineSeparation(s1, s2 Segment) (float64, error) {
	eps := ix.Eps()

	if s1.Degenerate(eps) || s2.Degenerate(eps) {
		return 0, ErrDegenerateSegment
	}

	u := s1.Dir()
	v := s2.Dir()
	w0 := s1.Start.Sub(s2.Start)

	if v.Cross(u).Length() < eps {
		return u.Cross(w0).Length() / u.Length(), nil
	}

	a := u.Dot(u)
	b := v.Dot(u)
	c := v.Dot(v)
	d := u.Dot(w0)
	e := v.Dot(w0)

	denom := a*c - b*b
	t := (b*e - c*d) / denom
	s := (a*e - b*d) / denom

	pt := s1.Start.Add(u.MulScalar(t))
	qs := s2.Start.Add(v.MulScalar(s))
	return pt.Sub(qs).Length(), nil
}

// Intersect computes the intersection of s1 and s2 under DefaultEps.
// The boolean is false when the segments do not meet or when either
// segment is degenerate.
func Intersect(s1, s2 Segment) (Point3, bool) {
	res, err := defaultIntersector.Intersect(s1, s2)
	if err != nil || res.Kind == KindNone {
		return Point3{}, false
	}
	return res.Point, true
}

var defaultIntersector = New(DefaultEps)

// roundTo rounds value to n decimal digits.
func roundTo(value float64, n int) float64 {
	factor := math.Pow(10, float64(n))
	return math.Round(value*factor) / factor
}
