// Package planner computes routes over a keyframe graph.
//
// FindRoute runs A* with a Euclidean heuristic; edge weights are true
// traversal distances and never negative, so the heuristic is admissible
// and the returned route is shortest by total weight. Planning never
// mutates the graph, so concurrent plans (a replan racing a live
// evaluation) share it freely.
package planner

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wayfarer-nav/wayfarer/pkg/geometry"
	"github.com/wayfarer-nav/wayfarer/pkg/keyframe"
)

var (
	// ErrUnknownNode reports a start or goal ID absent from the graph.
	ErrUnknownNode = errors.New("unknown keyframe node")
	// ErrNoPathFound reports that start and goal are not connected.
	ErrNoPathFound = errors.New("no path found")
)

// Route is an ordered walk from a start node to a destination node, each
// consecutive pair joined by a graph edge. Routes are immutable once
// computed; replanning produces a fresh Route rather than editing one.
type Route struct {
	nodes  []*keyframe.Node
	weight float64
}

// Len returns the number of nodes on the route.
func (r *Route) Len() int { return len(r.nodes) }

// Weight returns the total edge weight of the route.
func (r *Route) Weight() float64 { return r.weight }

// At returns the i-th node of the route.
func (r *Route) At(i int) *keyframe.Node { return r.nodes[i] }

// Start returns the first node.
func (r *Route) Start() *keyframe.Node { return r.nodes[0] }

// Destination returns the last node.
func (r *Route) Destination() *keyframe.Node { return r.nodes[len(r.nodes)-1] }

// IDs returns the node identifiers in route order.
func (r *Route) IDs() []string {
	ids := make([]string, len(r.nodes))
	for i, n := range r.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Points renders the route for geometric evaluation. The i-th point
// carries the weight of the edge arriving from point i-1 (0 for the
// start), so remaining-distance sums use true traversal costs.
func (r *Route) Points() []geometry.RoutePoint {
	pts := make([]geometry.RoutePoint, len(r.nodes))
	for i, n := range r.nodes {
		pts[i] = geometry.RoutePoint{Pos: n.Pos}
		if i > 0 {
			pts[i].EdgeWeight = edgeWeight(r.nodes[i-1], n.ID)
		}
	}
	return pts
}

// Positions returns the node positions in route order.
func (r *Route) Positions() []r3.Vec {
	pos := make([]r3.Vec, len(r.nodes))
	for i, n := range r.nodes {
		pos[i] = n.Pos
	}
	return pos
}

func edgeWeight(from *keyframe.Node, to string) float64 {
	for _, e := range from.Edges {
		if e.To == to {
			return e.Weight
		}
	}
	// Routes only chain adjacent nodes of a built graph.
	return 0
}
