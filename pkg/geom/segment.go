package geom

// Segment is a bounded straight path between two points. The
// geometric direction is End - Start; points along the segment are
// Start + Dir()*t for t in [0,1].
type Segment struct {
	Start Point3
	End   Point3
}

// Seg constructs a Segment from its endpoints.
func Seg(start, end Point3) Segment {
	return Segment{Start: start, End: end}
}

// Dir returns the segment's direction vector, End - Start.
func (s Segment) Dir() Point3 {
	return s.End.Sub(s.Start)
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.Dir().Length()
}

// Degenerate reports whether the segment collapses to a point, i.e.
// its length is below eps. Degenerate segments have no direction and
// are rejected by the intersection routines.
func (s Segment) Degenerate(eps float64) bool {
	return s.Length() < eps
}
