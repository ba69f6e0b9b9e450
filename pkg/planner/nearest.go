package planner

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wayfarer-nav/wayfarer/pkg/geometry"
	"github.com/wayfarer-nav/wayfarer/pkg/keyframe"
)

// NearestNode returns the keyframe closest to pos and its distance.
// The scan walks the graph's ordered index, so exact ties resolve to the
// lexicographically smallest ID. Returns nil on an empty graph.
func NearestNode(g *keyframe.Graph, pos r3.Vec) (*keyframe.Node, float64) {
	var (
		best     *keyframe.Node
		bestDist float64
	)
	g.Scan(func(n *keyframe.Node) bool {
		d := geometry.Distance(pos, n.Pos)
		if best == nil || d < bestDist {
			best = n
			bestDist = d
		}
		return true
	})
	return best, bestDist
}
