package kin

import (
	"testing"

	"github.com/scrypster/kinfolk/pkg/types"
)

func person(id string, gender types.Gender) types.Person {
	return types.Person{ID: id, Name: id, Gender: gender}
}

func rel(personID, relatedID string, t types.RelationshipType) types.Relationship {
	return types.Relationship{
		ID:              personID + ":" + string(t) + ":" + relatedID,
		PersonID:        personID,
		RelatedPersonID: relatedID,
		Type:            t,
		Confidence:      1.0,
	}
}

// relPair returns a declared relationship together with its reciprocal.
func relPair(personID, relatedID string, t types.RelationshipType) []types.Relationship {
	fwd := rel(personID, relatedID, t)
	rec := fwd.Reciprocal(fwd.ID + ":r")
	return []types.Relationship{fwd, *rec}
}

func TestBuildGraph_Empty(t *testing.T) {
	g := BuildGraph(nil, nil)
	if len(g) != 0 {
		t.Errorf("expected empty graph, got %d entries", len(g))
	}
}

func TestBuildGraph_IsolatedPeople(t *testing.T) {
	g := BuildGraph([]types.Person{person("a", types.GenderFemale), person("b", types.GenderMale)}, nil)
	if len(g) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g))
	}
	if len(g["a"]) != 0 || len(g["b"]) != 0 {
		t.Error("isolated people should have empty adjacency rows")
	}
}

// TestBuildGraph_Reciprocity checks that graph[B][A] == reverse(type)
// whenever graph[A][B] == type, for every reversible type.
func TestBuildGraph_Reciprocity(t *testing.T) {
	for _, rt := range types.ValidRelationshipTypes {
		g := BuildGraph(
			[]types.Person{person("a", types.GenderFemale), person("b", types.GenderMale)},
			[]types.Relationship{rel("a", "b", rt)},
		)
		if g["a"]["b"] != rt {
			t.Errorf("forward edge for %q missing", rt)
		}
		rev, _ := types.ReverseType(rt)
		if g["b"]["a"] != rev {
			t.Errorf("reverse edge for %q = %q, want %q", rt, g["b"]["a"], rev)
		}
	}
}

func TestBuildGraph_DanglingReference(t *testing.T) {
	// The relationship points at a person missing from the people list.
	g := BuildGraph(
		[]types.Person{person("a", types.GenderFemale)},
		[]types.Relationship{rel("a", "ghost", types.RelTypeParent)},
	)
	if !g.Contains("ghost") {
		t.Fatal("dangling id should get an adjacency entry")
	}
	if g["a"]["ghost"] != types.RelTypeParent {
		t.Error("forward edge to dangling id missing")
	}
	if g["ghost"]["a"] != types.RelTypeChild {
		t.Error("reverse edge from dangling id missing")
	}
}

func TestBuildGraph_LastWriteWins(t *testing.T) {
	g := BuildGraph(
		[]types.Person{person("a", types.GenderFemale), person("b", types.GenderMale)},
		[]types.Relationship{
			rel("a", "b", types.RelTypeSibling),
			rel("a", "b", types.RelTypeCousin),
		},
	)
	if g["a"]["b"] != types.RelTypeCousin {
		t.Errorf("expected last write to win, got %q", g["a"]["b"])
	}
	if g["b"]["a"] != types.RelTypeCousin {
		t.Errorf("expected reverse edge to follow last write, got %q", g["b"]["a"])
	}
}
