package kin

import (
	"math"
	"testing"

	"github.com/scrypster/kinfolk/pkg/types"
)

// family builds a small three-generation graph:
// grandma -> parent (mom) of alice and bob; carol is alice's spouse.
func familyGraph() Graph {
	people := []types.Person{
		person("grandma", types.GenderFemale),
		person("mom", types.GenderFemale),
		person("alice", types.GenderFemale),
		person("bob", types.GenderMale),
		person("carol", types.GenderFemale),
	}
	var rels []types.Relationship
	rels = append(rels, relPair("mom", "grandma", types.RelTypeParent)...)
	rels = append(rels, relPair("alice", "mom", types.RelTypeParent)...)
	rels = append(rels, relPair("bob", "mom", types.RelTypeParent)...)
	rels = append(rels, relPair("alice", "carol", types.RelTypeSpouse)...)
	return BuildGraph(people, rels)
}

func TestFindPaths_Self(t *testing.T) {
	g := familyGraph()
	paths := FindPaths(g, "alice", "alice", DefaultMaxDistance)
	if len(paths) != 1 {
		t.Fatalf("expected exactly one self path, got %d", len(paths))
	}
	p := paths[0]
	if p.Distance != 0 || p.Confidence != 1.0 || len(p.Hops) != 0 {
		t.Errorf("self path = %+v, want zero-length confidence-1.0", p)
	}
}

func TestFindPaths_SelfAbsentFromGraph(t *testing.T) {
	g := BuildGraph(nil, nil)
	if paths := FindPaths(g, "nobody", "nobody", DefaultMaxDistance); len(paths) != 0 {
		t.Errorf("absent id should yield no paths, got %d", len(paths))
	}
}

func TestFindPaths_DirectEdge(t *testing.T) {
	g := familyGraph()
	paths := FindPaths(g, "alice", "mom", DefaultMaxDistance)
	if len(paths) == 0 {
		t.Fatal("expected at least one path")
	}
	best := paths[0]
	if best.Distance != 1 || best.Hops[0].Type != types.RelTypeParent || best.Hops[0].PersonID != "mom" {
		t.Errorf("shortest path = %+v, want single parent hop to mom", best)
	}
	if best.Confidence != 1.0 {
		t.Errorf("length-1 confidence = %v, want 1.0", best.Confidence)
	}
}

// TestFindPaths_Monotonicity verifies distance == len(hops) <= maxDistance
// for every returned path, and the distance-then-confidence ordering.
func TestFindPaths_Monotonicity(t *testing.T) {
	g := familyGraph()
	const bound = 3
	paths := FindPaths(g, "carol", "grandma", bound)
	if len(paths) == 0 {
		t.Fatal("expected paths from carol to grandma")
	}
	for i, p := range paths {
		if p.Distance != len(p.Hops) {
			t.Errorf("path %d: distance %d != len(hops) %d", i, p.Distance, len(p.Hops))
		}
		if p.Distance > bound {
			t.Errorf("path %d: distance %d exceeds bound %d", i, p.Distance, bound)
		}
		if i > 0 && paths[i-1].Distance > p.Distance {
			t.Errorf("paths not sorted by distance at %d", i)
		}
	}
	// carol -> alice (spouse) -> mom (parent) -> grandma (parent)
	if paths[0].Distance != 3 {
		t.Errorf("shortest carol→grandma distance = %d, want 3", paths[0].Distance)
	}
}

func TestFindPaths_MaxDistancePrunes(t *testing.T) {
	g := familyGraph()
	if paths := FindPaths(g, "carol", "grandma", 2); len(paths) != 0 {
		t.Errorf("expected no paths within 2 hops, got %d", len(paths))
	}
}

func TestFindPaths_MultiplePathsCollected(t *testing.T) {
	// Two parallel routes from a to d: a-b-d and a-c-d.
	people := []types.Person{
		person("a", types.GenderOther), person("b", types.GenderOther),
		person("c", types.GenderOther), person("d", types.GenderOther),
	}
	var rels []types.Relationship
	rels = append(rels, relPair("a", "b", types.RelTypeSibling)...)
	rels = append(rels, relPair("a", "c", types.RelTypeSibling)...)
	rels = append(rels, relPair("b", "d", types.RelTypeSibling)...)
	rels = append(rels, relPair("c", "d", types.RelTypeSibling)...)
	g := BuildGraph(people, rels)

	paths := FindPaths(g, "a", "d", DefaultMaxDistance)
	if len(paths) < 2 {
		t.Fatalf("expected both parallel paths to be collected, got %d", len(paths))
	}
	for _, p := range paths[:2] {
		if p.Distance != 2 {
			t.Errorf("parallel path distance = %d, want 2", p.Distance)
		}
	}
}

func TestFindPaths_NoPath(t *testing.T) {
	people := []types.Person{person("a", types.GenderOther), person("b", types.GenderOther)}
	g := BuildGraph(people, nil)
	if paths := FindPaths(g, "a", "b", DefaultMaxDistance); len(paths) != 0 {
		t.Errorf("disconnected people should yield no paths, got %d", len(paths))
	}
}

func TestPathConfidence(t *testing.T) {
	cases := []struct {
		length int
		want   float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 0.9},
		{4, 0.7},
		{6, 0.5},
		{10, 0.5},
	}
	for _, tc := range cases {
		got := PathConfidence(tc.length)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("PathConfidence(%d) = %v, want %v", tc.length, got, tc.want)
		}
	}
}
