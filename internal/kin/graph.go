// Package kin implements the kinship inference and query engine: graph
// building, path finding, relationship labeling, relative queries,
// rule-based inference, and consistency validation.
//
// Every operation is a pure function over the people/relationship snapshot
// it is given. Derived structures (the graph, paths, validation findings)
// are recomputed fresh on each call and must never be mutated in place.
package kin

import (
	"github.com/scrypster/kinfolk/pkg/types"
)

// Graph is the bidirectional adjacency view of a relationship snapshot:
// person id -> related person id -> relationship type along that edge.
// It is ephemeral and rebuilt whenever the underlying lists change.
type Graph map[string]map[string]types.RelationshipType

// BuildGraph converts a flat people/relationships snapshot into a Graph.
//
// Every person gets an adjacency entry even when isolated. For each
// relationship the forward edge is recorded, and the reciprocal edge is
// derived from the reverse-type table with last-write-wins semantics;
// conflicting declared edges are the validator's concern, not an error
// here. Relationships referencing unknown person ids get a fresh empty
// adjacency entry rather than failing, so partial imports keep working.
func BuildGraph(people []types.Person, relationships []types.Relationship) Graph {
	g := make(Graph, len(people))

	for i := range people {
		g[people[i].ID] = make(map[string]types.RelationshipType)
	}

	for i := range relationships {
		rel := &relationships[i]
		if rel.PersonID == "" || rel.RelatedPersonID == "" {
			continue
		}
		g.ensure(rel.PersonID)
		g.ensure(rel.RelatedPersonID)

		g[rel.PersonID][rel.RelatedPersonID] = rel.Type
		if rev, ok := types.ReverseType(rel.Type); ok {
			g[rel.RelatedPersonID][rel.PersonID] = rev
		}
	}

	return g
}

// ensure creates an empty adjacency entry for id when absent.
func (g Graph) ensure(id string) {
	if _, ok := g[id]; !ok {
		g[id] = make(map[string]types.RelationshipType)
	}
}

// Contains reports whether id has an adjacency entry in the graph.
func (g Graph) Contains(id string) bool {
	_, ok := g[id]
	return ok
}
