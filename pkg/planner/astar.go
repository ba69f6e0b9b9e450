package planner

import (
	"container/heap"
	"fmt"

	"github.com/wayfarer-nav/wayfarer/pkg/geometry"
	"github.com/wayfarer-nav/wayfarer/pkg/keyframe"
)

// candidate is an open-set entry. seq is the insertion order, used to
// break f-score ties FIFO so identical inputs always expand in the same
// order and produce the same route.
type candidate struct {
	id  string
	f   float64
	seq int
}

type openSet []candidate

func (h openSet) Len() int { return len(h) }
func (h openSet) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openSet) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *openSet) Push(x any)   { *h = append(*h, x.(candidate)) }
func (h *openSet) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// FindRoute computes the shortest route between two keyframes using A*
// with straight-line distance to the goal as the heuristic.
//
// Returns ErrUnknownNode when either ID is absent from the graph and
// ErrNoPathFound when the open set empties without reaching the goal.
// Deterministic and read-only on the graph; start == goal yields a
// single-node route of weight 0.
func FindRoute(g *keyframe.Graph, startID, goalID string) (*Route, error) {
	start, ok := g.Node(startID)
	if !ok {
		return nil, fmt.Errorf("start %q: %w", startID, ErrUnknownNode)
	}
	goal, ok := g.Node(goalID)
	if !ok {
		return nil, fmt.Errorf("goal %q: %w", goalID, ErrUnknownNode)
	}
	if startID == goalID {
		return &Route{nodes: []*keyframe.Node{start}}, nil
	}

	gScore := map[string]float64{startID: 0}
	cameFrom := map[string]string{}
	closed := map[string]bool{}
	seq := 0

	open := &openSet{{id: startID, f: geometry.Distance(start.Pos, goal.Pos)}}
	heap.Init(open)

	for open.Len() > 0 {
		current := heap.Pop(open).(candidate)
		if current.id == goalID {
			return reconstruct(g, cameFrom, goalID, gScore[goalID]), nil
		}
		// Reinsertion instead of decrease-key leaves stale entries behind;
		// a node already expanded at its best g-score is final.
		if closed[current.id] {
			continue
		}
		closed[current.id] = true

		node := mustNode(g, current.id)
		for _, edge := range node.Edges {
			tentative := gScore[current.id] + edge.Weight
			if best, seen := gScore[edge.To]; seen && tentative >= best {
				continue
			}
			gScore[edge.To] = tentative
			cameFrom[edge.To] = current.id
			neighbor := mustNode(g, edge.To)
			seq++
			heap.Push(open, candidate{
				id:  edge.To,
				f:   tentative + geometry.Distance(neighbor.Pos, goal.Pos),
				seq: seq,
			})
		}
	}

	return nil, fmt.Errorf("%q to %q: %w", startID, goalID, ErrNoPathFound)
}

func reconstruct(g *keyframe.Graph, cameFrom map[string]string, goalID string, weight float64) *Route {
	ids := []string{goalID}
	for {
		prev, ok := cameFrom[ids[len(ids)-1]]
		if !ok {
			break
		}
		ids = append(ids, prev)
	}

	nodes := make([]*keyframe.Node, len(ids))
	for i, id := range ids {
		nodes[len(ids)-1-i] = mustNode(g, id)
	}
	return &Route{nodes: nodes, weight: weight}
}

func mustNode(g *keyframe.Graph, id string) *keyframe.Node {
	n, _ := g.Node(id)
	return n
}
