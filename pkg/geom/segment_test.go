package geom

import "testing"

func TestSegmentBasics(t *testing.T) {
	s := Seg(Pt(1, 2, 3), Pt(4, 6, 3))

	dir := s.Dir()
	if !pointAlmostEqual(dir, Pt(3, 4, 0)) {
		t.Errorf("Dir = (%g, %g, %g), want (3, 4, 0)", dir.X, dir.Y, dir.Z)
	}
	if !almostEqual(s.Length(), 5) {
		t.Errorf("Length = %g, want 5", s.Length())
	}
	if s.Degenerate(DefaultEps) {
		t.Error("proper segment reported degenerate")
	}
}

func TestSegmentDegenerate(t *testing.T) {
	point := Seg(Pt(1, 1, 1), Pt(1, 1, 1))
	if !point.Degenerate(DefaultEps) {
		t.Error("zero-length segment not reported degenerate")
	}

	tiny := Seg(Pt(0, 0, 0), Pt(1e-6, 0, 0))
	if !tiny.Degenerate(DefaultEps) {
		t.Error("sub-eps segment not reported degenerate")
	}
	if tiny.Degenerate(1e-7) {
		t.Error("segment longer than eps reported degenerate")
	}
}
