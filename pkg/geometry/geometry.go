// Package geometry provides the pure spatial math used by the navigation
// engine: Euclidean distances, heading synthesis along a route, turn
// classification into discrete bands, and point-to-segment projection for
// deviation checks.
//
// All functions are pure: they never mutate their inputs and two calls with
// identical arguments return identical results.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a live localization sample: a 3D position plus a heading.
//
// Heading is in degrees, normalized to (-180, 180], measured as
// atan2(dy, dx) in the map frame. Poses are produced by an external
// localization source and consumed read-only.
type Pose struct {
	Pos     r3.Vec
	Heading float64
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// PathLength sums the Euclidean distances along consecutive positions.
func PathLength(positions []r3.Vec) float64 {
	var total float64
	for i := 0; i < len(positions)-1; i++ {
		total += Distance(positions[i], positions[i+1])
	}
	return total
}

// NormalizeAngle wraps an angle in degrees into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}

// Heading2D returns the heading in degrees of the horizontal direction
// from a to b. The vertical (z) component is ignored: indoor floors are
// traversed in the XY plane and ramps do not change the announced turn.
func Heading2D(from, to r3.Vec) float64 {
	return NormalizeAngle(math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi)
}

// PointSegmentDistance returns the distance from p to the segment [a, b].
// Used for route-deviation detection: the projection parameter is clamped
// so positions beyond either endpoint measure against that endpoint.
func PointSegmentDistance(p, a, b r3.Vec) float64 {
	ab := r3.Sub(b, a)
	len2 := r3.Norm2(ab)
	if len2 == 0 {
		return Distance(p, a)
	}
	t := r3.Dot(r3.Sub(p, a), ab) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Distance(p, r3.Add(a, r3.Scale(t, ab)))
}
