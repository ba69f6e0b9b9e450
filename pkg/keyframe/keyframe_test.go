package keyframe

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestBuild(t *testing.T) {
	records := []Record{
		{ID: "A", Pos: r3.Vec{X: 0, Y: 0, Z: 0}, Links: []Link{{To: "B"}}},
		{ID: "B", Pos: r3.Vec{X: 3, Y: 0, Z: 0}, Links: []Link{{To: "C"}}},
		{ID: "C", Pos: r3.Vec{X: 3, Y: 4, Z: 0}},
	}
	g, err := Build(records)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("graph has %d nodes, want 3", g.Len())
	}

	t.Run("euclidean weights", func(t *testing.T) {
		a, _ := g.Node("A")
		if len(a.Edges) != 1 || a.Edges[0].To != "B" || a.Edges[0].Weight != 3 {
			t.Errorf("A edges = %+v, want one edge to B weight 3", a.Edges)
		}
		b, _ := g.Node("B")
		if len(b.Edges) != 2 {
			t.Fatalf("B edges = %+v, want edges to A and C", b.Edges)
		}
	})

	t.Run("symmetric by default", func(t *testing.T) {
		c, _ := g.Node("C")
		if len(c.Edges) != 1 || c.Edges[0].To != "B" || c.Edges[0].Weight != 4 {
			t.Errorf("C edges = %+v, want reverse edge to B weight 4", c.Edges)
		}
	})

	t.Run("unknown lookup", func(t *testing.T) {
		if _, ok := g.Node("Z"); ok {
			t.Error("lookup of absent node succeeded")
		}
	})
}

func TestBuildExplicitWeightAndOneWay(t *testing.T) {
	records := []Record{
		{ID: "up", Pos: r3.Vec{}, Links: []Link{{To: "down", Weight: 12, OneWay: true}}},
		{ID: "down", Pos: r3.Vec{X: 1}},
	}
	g, err := Build(records)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	up, _ := g.Node("up")
	if len(up.Edges) != 1 || up.Edges[0].Weight != 12 {
		t.Errorf("up edges = %+v, want explicit weight 12", up.Edges)
	}
	down, _ := g.Node("down")
	if len(down.Edges) != 0 {
		t.Errorf("one-way link produced reverse edge: %+v", down.Edges)
	}
}

func TestBuildMalformed(t *testing.T) {
	cases := []struct {
		name    string
		records []Record
	}{
		{"dangling edge", []Record{
			{ID: "A", Pos: r3.Vec{}, Links: []Link{{To: "ghost"}}},
		}},
		{"duplicate id", []Record{
			{ID: "A", Pos: r3.Vec{}},
			{ID: "A", Pos: r3.Vec{X: 1}},
		}},
		{"empty id", []Record{
			{ID: "", Pos: r3.Vec{}},
		}},
		{"non-finite position", []Record{
			{ID: "A", Pos: r3.Vec{X: math.NaN()}},
		}},
		{"negative weight", []Record{
			{ID: "A", Pos: r3.Vec{}, Links: []Link{{To: "B", Weight: -1}}},
			{ID: "B", Pos: r3.Vec{X: 1}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.records)
			var malformed *MalformedRecordError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want *MalformedRecordError", err)
			}
		})
	}
}

func TestBuildProximity(t *testing.T) {
	records := []Record{
		{ID: "A", Pos: r3.Vec{X: 0}},
		{ID: "B", Pos: r3.Vec{X: 1}},
		{ID: "C", Pos: r3.Vec{X: 2.2}},
		{ID: "far", Pos: r3.Vec{X: 100}},
	}
	g, err := BuildProximity(records, 1.5)
	if err != nil {
		t.Fatalf("BuildProximity failed: %v", err)
	}

	a, _ := g.Node("A")
	if len(a.Edges) != 1 || a.Edges[0].To != "B" {
		t.Errorf("A edges = %+v, want only B within radius", a.Edges)
	}
	b, _ := g.Node("B")
	if len(b.Edges) != 2 {
		t.Errorf("B edges = %+v, want A and C", b.Edges)
	}
	far, _ := g.Node("far")
	if len(far.Edges) != 0 {
		t.Errorf("isolated node gained edges: %+v", far.Edges)
	}

	if _, err := BuildProximity(records, 0); err == nil {
		t.Error("zero radius accepted")
	}
}
