package geometry

import "gonum.org/v1/gonum/spatial/r3"

// RoutePoint is one node of a planned route as seen by the analyzer.
// EdgeWeight is the traversal cost of the edge arriving at this point from
// the previous one; it equals the Euclidean gap for default-weighted maps
// but may differ when the map supplies explicit weights. The first point of
// a route carries weight 0.
type RoutePoint struct {
	Pos        r3.Vec
	EdgeWeight float64
}

// Assessment is the result of evaluating one pose against a route.
//
// DistanceToNext is the straight-line distance from the pose to the next
// unreached node. DistanceToDestination adds the remaining edge weights
// from that node to the end of the route.
type Assessment struct {
	Arrived               bool
	DistanceToNext        float64
	DistanceToDestination float64
	Turn                  Turn
}

// Evaluate computes the guidance facts for a pose against a route.
//
// next is the index of the next unreached route point. When next is the
// final index the upcoming turn classifies as arrival; when next is past
// the final index (or the route is a single point already reached) the
// assessment reports arrived with zero remaining distances.
//
// Pure function of its inputs; safe to call on every pose tick, O(route).
func Evaluate(route []RoutePoint, next int, pose Pose) Assessment {
	if len(route) == 0 || next >= len(route) {
		return Assessment{Arrived: true, Turn: Turn{Band: BandArrival}}
	}
	if next < 0 {
		next = 0
	}

	a := Assessment{
		DistanceToNext: Distance(pose.Pos, route[next].Pos),
	}

	a.DistanceToDestination = a.DistanceToNext
	for i := next + 1; i < len(route); i++ {
		a.DistanceToDestination += route[i].EdgeWeight
	}

	if next == len(route)-1 {
		a.Turn = Turn{Band: BandArrival}
		return a
	}

	// Heading into the next node: from the previous route point when one
	// exists, otherwise from the pose itself (route just started).
	from := pose.Pos
	if next > 0 {
		from = route[next-1].Pos
	}
	in := Heading2D(from, route[next].Pos)
	out := Heading2D(route[next].Pos, route[next+1].Pos)
	a.Turn = ClassifyTurn(out - in)
	return a
}
