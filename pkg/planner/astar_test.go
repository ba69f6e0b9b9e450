package planner

import (
	"errors"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wayfarer-nav/wayfarer/pkg/keyframe"
)

func cornerGraph(t *testing.T) *keyframe.Graph {
	t.Helper()
	g, err := keyframe.Build([]keyframe.Record{
		{ID: "A", Pos: r3.Vec{X: 0, Y: 0, Z: 0}, Links: []keyframe.Link{{To: "B"}}},
		{ID: "B", Pos: r3.Vec{X: 3, Y: 0, Z: 0}, Links: []keyframe.Link{{To: "C"}}},
		{ID: "C", Pos: r3.Vec{X: 3, Y: 4, Z: 0}},
		{ID: "D", Pos: r3.Vec{X: 50, Y: 50, Z: 0}}, // isolated
	})
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	return g
}

func TestFindRouteCorner(t *testing.T) {
	g := cornerGraph(t)

	route, err := FindRoute(g, "A", "C")
	if err != nil {
		t.Fatalf("FindRoute failed: %v", err)
	}
	if !slices.Equal(route.IDs(), []string{"A", "B", "C"}) {
		t.Errorf("route = %v, want [A B C]", route.IDs())
	}
	if route.Weight() != 7 {
		t.Errorf("weight = %g, want 7", route.Weight())
	}
}

func TestFindRouteErrors(t *testing.T) {
	g := cornerGraph(t)

	t.Run("unknown start", func(t *testing.T) {
		_, err := FindRoute(g, "nope", "C")
		if !errors.Is(err, ErrUnknownNode) {
			t.Errorf("err = %v, want ErrUnknownNode", err)
		}
	})
	t.Run("unknown goal", func(t *testing.T) {
		_, err := FindRoute(g, "A", "nope")
		if !errors.Is(err, ErrUnknownNode) {
			t.Errorf("err = %v, want ErrUnknownNode", err)
		}
	})
	t.Run("disconnected", func(t *testing.T) {
		_, err := FindRoute(g, "A", "D")
		if !errors.Is(err, ErrNoPathFound) {
			t.Errorf("err = %v, want ErrNoPathFound", err)
		}
	})
}

func TestFindRouteStartEqualsGoal(t *testing.T) {
	g := cornerGraph(t)
	route, err := FindRoute(g, "B", "B")
	if err != nil {
		t.Fatalf("FindRoute failed: %v", err)
	}
	if route.Len() != 1 || route.Weight() != 0 {
		t.Errorf("route = %v weight %g, want single node weight 0", route.IDs(), route.Weight())
	}
}

func TestFindRouteDeterministic(t *testing.T) {
	// A diamond with two equal-cost sides: the tie must resolve the same
	// way on every call.
	g, err := keyframe.Build([]keyframe.Record{
		{ID: "s", Pos: r3.Vec{X: 0, Y: 0}, Links: []keyframe.Link{{To: "up"}, {To: "down"}}},
		{ID: "up", Pos: r3.Vec{X: 2, Y: 1}, Links: []keyframe.Link{{To: "t"}}},
		{ID: "down", Pos: r3.Vec{X: 2, Y: -1}, Links: []keyframe.Link{{To: "t"}}},
		{ID: "t", Pos: r3.Vec{X: 4, Y: 0}},
	})
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}

	first, err := FindRoute(g, "s", "t")
	if err != nil {
		t.Fatalf("FindRoute failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := FindRoute(g, "s", "t")
		if err != nil {
			t.Fatalf("FindRoute failed: %v", err)
		}
		if !slices.Equal(first.IDs(), again.IDs()) {
			t.Fatalf("route changed between calls: %v vs %v", first.IDs(), again.IDs())
		}
	}
}

// A* must match a brute-force Dijkstra on every connected pair of a mesh
// with competing paths.
func TestFindRouteOptimal(t *testing.T) {
	// Two rows of a corridor grid plus a long diagonal shortcut candidate.
	records := []keyframe.Record{
		{ID: "a0", Pos: r3.Vec{X: 0, Y: 0}, Links: []keyframe.Link{{To: "a1"}, {To: "b0"}}},
		{ID: "a1", Pos: r3.Vec{X: 2, Y: 0}, Links: []keyframe.Link{{To: "a2"}, {To: "b1"}}},
		{ID: "a2", Pos: r3.Vec{X: 4, Y: 0}, Links: []keyframe.Link{{To: "b2"}}},
		{ID: "b0", Pos: r3.Vec{X: 0, Y: 2}, Links: []keyframe.Link{{To: "b1"}}},
		{ID: "b1", Pos: r3.Vec{X: 2, Y: 2}, Links: []keyframe.Link{{To: "b2"}, {To: "a2"}}},
		{ID: "b2", Pos: r3.Vec{X: 4, Y: 2}},
	}
	g, err := keyframe.Build(records)
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}

	ids := []string{"a0", "a1", "a2", "b0", "b1", "b2"}
	for _, from := range ids {
		for _, to := range ids {
			route, err := FindRoute(g, from, to)
			if err != nil {
				t.Fatalf("FindRoute(%s, %s) failed: %v", from, to, err)
			}
			want := dijkstraCost(g, from, to)
			if math.Abs(route.Weight()-want) > 1e-9 {
				t.Errorf("FindRoute(%s, %s) weight = %g, Dijkstra says %g", from, to, route.Weight(), want)
			}
			// The reported weight must equal the sum over route edges.
			var sum float64
			for _, p := range route.Points() {
				sum += p.EdgeWeight
			}
			if math.Abs(route.Weight()-sum) > 1e-9 {
				t.Errorf("FindRoute(%s, %s) weight %g != edge sum %g", from, to, route.Weight(), sum)
			}
		}
	}
}

// dijkstraCost is a brute-force oracle: no heuristic, linear extraction.
func dijkstraCost(g *keyframe.Graph, startID, goalID string) float64 {
	dist := map[string]float64{}
	g.Scan(func(n *keyframe.Node) bool {
		dist[n.ID] = math.Inf(1)
		return true
	})
	dist[startID] = 0
	visited := map[string]bool{}

	for {
		current := ""
		best := math.Inf(1)
		for id, d := range dist {
			if !visited[id] && d < best {
				current, best = id, d
			}
		}
		if current == "" {
			return math.Inf(1)
		}
		if current == goalID {
			return best
		}
		visited[current] = true
		node, _ := g.Node(current)
		for _, e := range node.Edges {
			if d := best + e.Weight; d < dist[e.To] {
				dist[e.To] = d
			}
		}
	}
}

func TestNearestNode(t *testing.T) {
	g := cornerGraph(t)

	n, d := NearestNode(g, r3.Vec{X: 2.6, Y: 0.3})
	if n.ID != "B" {
		t.Errorf("nearest = %s, want B", n.ID)
	}
	if math.Abs(d-0.5) > 1e-9 {
		t.Errorf("distance = %g, want 0.5", d)
	}

	// Exact tie resolves to the smaller ID thanks to the ordered scan.
	tieG, err := keyframe.Build([]keyframe.Record{
		{ID: "x", Pos: r3.Vec{X: -1}},
		{ID: "y", Pos: r3.Vec{X: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ = NearestNode(tieG, r3.Vec{})
	if n.ID != "x" {
		t.Errorf("tie resolved to %s, want x", n.ID)
	}
}
