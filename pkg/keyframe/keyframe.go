// Package keyframe builds the navigable map graph from SLAM keyframe
// records.
//
// A Record is one keyframe as exported by the mapping pipeline: a stable
// identifier, a 3D position, and its adjacency. Build validates the record
// set and produces an immutable Graph; after construction no component may
// mutate it, so concurrent route planning and geometry evaluation read it
// without locking.
package keyframe

import (
	"fmt"
	"math"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/wayfarer-nav/wayfarer/pkg/geometry"
)

// Link is a declared adjacency from one record to another.
// Weight 0 means "derive from the endpoint positions". OneWay suppresses
// the symmetric reverse edge that Build otherwise guarantees.
type Link struct {
	To     string
	Weight float64
	OneWay bool
}

// Record is a raw keyframe row prior to validation.
type Record struct {
	ID    string
	Pos   r3.Vec
	Links []Link
}

// Edge is a weighted connection to a neighbor node.
type Edge struct {
	To     string
	Weight float64
}

// Node is a validated keyframe inside a built Graph.
type Node struct {
	ID    string
	Pos   r3.Vec
	Edges []Edge
}

// MalformedRecordError reports a record that cannot enter the graph.
// Line is the 1-based source line for records that came from a file,
// or 0 for in-memory record sets.
type MalformedRecordError struct {
	ID     string
	Line   int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed keyframe record %q (line %d): %s", e.ID, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed keyframe record %q: %s", e.ID, e.Reason)
}

// Graph is the immutable navigable map. Nodes are held in an ordered index
// so every scan (nearest-node search, test comparisons) iterates in a
// stable, ID-sorted order regardless of record order.
type Graph struct {
	index *btree.BTreeG[*Node]
}

func nodeLess(a, b *Node) bool { return a.ID < b.ID }

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	return g.index.Get(&Node{ID: id})
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return g.index.Len()
}

// Scan visits every node in ascending ID order until iter returns false.
func (g *Graph) Scan(iter func(n *Node) bool) {
	g.index.Scan(iter)
}

// Build constructs a Graph from explicit-adjacency records.
//
// It fails with *MalformedRecordError when a record has a non-finite
// position, a duplicate ID, a negative explicit weight, or a link to an ID
// absent from the record set (dangling edge). Every non-OneWay link also
// materializes its reverse edge, keeping the graph undirected by default.
func Build(records []Record) (*Graph, error) {
	byID := make(map[string]*Node, len(records))
	index := btree.NewBTreeG(nodeLess)

	for _, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, err
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, &MalformedRecordError{ID: rec.ID, Reason: "duplicate identifier"}
		}
		n := &Node{ID: rec.ID, Pos: rec.Pos}
		byID[rec.ID] = n
		index.Set(n)
	}

	for _, rec := range records {
		from := byID[rec.ID]
		for _, link := range rec.Links {
			to, ok := byID[link.To]
			if !ok {
				return nil, &MalformedRecordError{
					ID:     rec.ID,
					Reason: fmt.Sprintf("dangling edge to unknown keyframe %q", link.To),
				}
			}
			w := link.Weight
			if w == 0 {
				w = geometry.Distance(from.Pos, to.Pos)
			}
			addEdge(from, to.ID, w)
			if !link.OneWay {
				addEdge(to, from.ID, w)
			}
		}
	}

	return &Graph{index: index}, nil
}

// BuildProximity constructs a Graph by connecting every pair of keyframes
// closer than radius, ignoring declared links. This mirrors maps exported
// without adjacency, where physical closeness implies navigability.
// Quadratic in the record count; keyframe maps are small.
func BuildProximity(records []Record, radius float64) (*Graph, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("proximity radius must be positive, got %g", radius)
	}

	nodes := make([]*Node, 0, len(records))
	byID := make(map[string]struct{}, len(records))
	index := btree.NewBTreeG(nodeLess)

	for _, rec := range records {
		if err := validateRecord(rec); err != nil {
			return nil, err
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, &MalformedRecordError{ID: rec.ID, Reason: "duplicate identifier"}
		}
		n := &Node{ID: rec.ID, Pos: rec.Pos}
		byID[rec.ID] = struct{}{}
		nodes = append(nodes, n)
		index.Set(n)
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			d := geometry.Distance(nodes[i].Pos, nodes[j].Pos)
			if d < radius {
				addEdge(nodes[i], nodes[j].ID, d)
				addEdge(nodes[j], nodes[i].ID, d)
			}
		}
	}

	return &Graph{index: index}, nil
}

func validateRecord(rec Record) error {
	if rec.ID == "" {
		return &MalformedRecordError{ID: rec.ID, Reason: "empty identifier"}
	}
	for _, c := range []float64{rec.Pos.X, rec.Pos.Y, rec.Pos.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return &MalformedRecordError{ID: rec.ID, Reason: "position is not finite"}
		}
	}
	for _, link := range rec.Links {
		if link.Weight < 0 {
			return &MalformedRecordError{
				ID:     rec.ID,
				Reason: fmt.Sprintf("negative edge weight %g to %q", link.Weight, link.To),
			}
		}
	}
	return nil
}

func addEdge(from *Node, to string, weight float64) {
	for _, e := range from.Edges {
		if e.To == to {
			return
		}
	}
	from.Edges = append(from.Edges, Edge{To: to, Weight: weight})
}
