package main

import (
	"fmt"

	"github.com/chazu/miter/pkg/geom"
)

// checkScenario is one configuration of the bundled suite. intersects
// false means no intersection is expected and want is ignored.
type checkScenario struct {
	name       string
	s1, s2     geom.Segment
	intersects bool
	want       geom.Point3
}

// checkScenarios covers every configuration class: crossing, offset,
// parallel, collinear overlap and touch, and out-of-bounds meetings.
var checkScenarios = []checkScenario{
	{
		name:       "axes crossing at origin",
		s1:         geom.Seg(geom.Pt(1, 0, 0), geom.Pt(-1, 0, 0)),
		s2:         geom.Seg(geom.Pt(0, 1, 0), geom.Pt(0, -1, 0)),
		intersects: true,
		want:       geom.Pt(0, 0, 0),
	},
	{
		name:       "diagonal crossing axis at origin",
		s1:         geom.Seg(geom.Pt(1, 0, -1), geom.Pt(-1, 0, 1)),
		s2:         geom.Seg(geom.Pt(0, 1, 0), geom.Pt(0, -1, 0)),
		intersects: true,
		want:       geom.Pt(0, 0, 0),
	},
	{
		name:       "two diagonals crossing at origin",
		s1:         geom.Seg(geom.Pt(1, 0, -1), geom.Pt(-1, 0, 1)),
		s2:         geom.Seg(geom.Pt(0, 1, 1), geom.Pt(0, -1, -1)),
		intersects: true,
		want:       geom.Pt(0, 0, 0),
	},
	{
		name: "offset in z",
		s1:   geom.Seg(geom.Pt(1, 0, 2), geom.Pt(-1, 0, 2)),
		s2:   geom.Seg(geom.Pt(0, 1, 0), geom.Pt(0, -1, 0)),
	},
	{
		name: "parallel with offset",
		s1:   geom.Seg(geom.Pt(0, 0, 0), geom.Pt(1, 0, 0)),
		s2:   geom.Seg(geom.Pt(0, 1, 0), geom.Pt(1, 1, 0)),
	},
	{
		name: "lines meet beyond segment bounds",
		s1:   geom.Seg(geom.Pt(0, 0, 0), geom.Pt(1, 1, 1)),
		s2:   geom.Seg(geom.Pt(2, 0, 0), geom.Pt(2, 1, 1)),
	},
	{
		name:       "identical segments",
		s1:         geom.Seg(geom.Pt(0, 0, 0), geom.Pt(1, 1, 1)),
		s2:         geom.Seg(geom.Pt(0, 0, 0), geom.Pt(1, 1, 1)),
		intersects: true,
		want:       geom.Pt(0, 0, 0),
	},
	{
		name: "collinear without overlap",
		s1:   geom.Seg(geom.Pt(0, 0, 0), geom.Pt(1, 1, 1)),
		s2:   geom.Seg(geom.Pt(2, 2, 2), geom.Pt(3, 3, 3)),
	},
	{
		name:       "collinear touching at endpoint",
		s1:         geom.Seg(geom.Pt(0, 0, 0), geom.Pt(1, 1, 1)),
		s2:         geom.Seg(geom.Pt(1, 1, 1), geom.Pt(2, 2, 2)),
		intersects: true,
		want:       geom.Pt(1, 1, 1),
	},
	{
		name:       "diagonals crossing at midpoint",
		s1:         geom.Seg(geom.Pt(-1, -1, 0), geom.Pt(1, 1, 0)),
		s2:         geom.Seg(geom.Pt(-1, 1, 0), geom.Pt(1, -1, 0)),
		intersects: true,
		want:       geom.Pt(0, 0, 0),
	},
}

// runChecks evaluates the bundled scenarios at the given tolerance
// and prints a diagnostic per failure plus the final counts. The
// return value is the process exit code.
func runChecks(eps float64) int {
	ix := geom.New(eps)
	passed, failed := 0, 0

	for i, sc := range checkScenarios {
		res, err := ix.Intersect(sc.s1, sc.s2)
		if err != nil {
			failed++
			fmt.Printf("test %d (%s) failed: %v\n", i, sc.name, err)
			continue
		}

		switch {
		case !sc.intersects:
			if res.Kind != geom.KindNone {
				failed++
				fmt.Printf("test %d (%s) failed: expected no intersection, got (%g, %g, %g)\n",
					i, sc.name, res.Point.X, res.Point.Y, res.Point.Z)
				continue
			}
		case res.Kind == geom.KindNone:
			failed++
			fmt.Printf("test %d (%s) failed: expected (%g, %g, %g), got no intersection\n",
				i, sc.name, sc.want.X, sc.want.Y, sc.want.Z)
			continue
		case !geom.PointsEqual(res.Point, sc.want, eps):
			failed++
			fmt.Printf("test %d (%s) failed: expected (%g, %g, %g), got (%g, %g, %g)\n",
				i, sc.name, sc.want.X, sc.want.Y, sc.want.Z,
				res.Point.X, res.Point.Y, res.Point.Z)
			continue
		}
		passed++
	}

	fmt.Printf("Testing ended. Tests passed: %d, Tests failed: %d\n", passed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}
