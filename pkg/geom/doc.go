// Package geom computes intersections of finite line segments in 3D
// space. It classifies the relative configuration of two segments
// (crossing, collinear overlap, skew, parallel-disjoint) and reports
// the intersection point under a floating-point tolerance.
package geom
