package kin

import (
	"sort"

	"github.com/scrypster/kinfolk/pkg/types"
)

// DefaultMaxDistance is the default hop bound for path and relative queries.
const DefaultMaxDistance = 6

// Hop is one step of a relationship path: the edge type traversed and the
// person reached.
type Hop struct {
	Type     types.RelationshipType `json:"type"`
	PersonID string                 `json:"person_id"`
}

// Path is one relationship path between two people. Distance always equals
// len(Hops); Confidence decays with length down to a floor of 0.5.
type Path struct {
	Hops       []Hop   `json:"hops"`
	Distance   int     `json:"distance"`
	Confidence float64 `json:"confidence"`
}

// Types returns the hop-type sequence of the path.
func (p Path) Types() []types.RelationshipType {
	out := make([]types.RelationshipType, len(p.Hops))
	for i, h := range p.Hops {
		out[i] = h.Type
	}
	return out
}

// PathConfidence is the confidence of a path of length length:
// 1.0 for length 0, otherwise max(0.5, 1.0 - 0.1*(length-1)).
func PathConfidence(length int) float64 {
	if length <= 0 {
		return 1.0
	}
	c := 1.0 - float64(length-1)*0.1
	if c < 0.5 {
		return 0.5
	}
	return c
}

// queueItem is one BFS frontier entry.
type queueItem struct {
	personID string
	hops     []Hop
}

// FindPaths enumerates all relationship paths from fromID to toID within
// maxDistance hops, sorted by distance ascending then confidence
// descending. A non-positive maxDistance means DefaultMaxDistance.
//
// fromID == toID short-circuits to a single zero-length path when fromID is
// a node of the graph, and to no paths when it is not. The search is a
// breadth-first drain of the whole frontier: a node is marked visited only
// when it is dequeued as a non-target, so every distinct path that reaches
// the target within the bound is collected, not just the first. No cap is
// put on the number of returned paths; presentation-level truncation is the
// caller's job.
func FindPaths(g Graph, fromID, toID string, maxDistance int) []Path {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}

	if !g.Contains(fromID) {
		return nil
	}

	if fromID == toID {
		return []Path{{Hops: []Hop{}, Distance: 0, Confidence: 1.0}}
	}

	var found []Path
	visited := make(map[string]bool)
	queue := []queueItem{{personID: fromID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.personID == toID {
			hops := append([]Hop(nil), cur.hops...)
			found = append(found, Path{
				Hops:       hops,
				Distance:   len(hops),
				Confidence: PathConfidence(len(hops)),
			})
			continue
		}

		if visited[cur.personID] {
			continue
		}
		visited[cur.personID] = true

		if len(cur.hops) >= maxDistance {
			continue
		}

		for _, neighborID := range sortedNeighbors(g[cur.personID]) {
			if visited[neighborID] {
				continue
			}
			next := make([]Hop, len(cur.hops), len(cur.hops)+1)
			copy(next, cur.hops)
			next = append(next, Hop{Type: g[cur.personID][neighborID], PersonID: neighborID})
			queue = append(queue, queueItem{personID: neighborID, hops: next})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Distance != found[j].Distance {
			return found[i].Distance < found[j].Distance
		}
		return found[i].Confidence > found[j].Confidence
	})

	return found
}

// sortedNeighbors returns the neighbor ids of an adjacency row in a stable
// order so query output is deterministic.
func sortedNeighbors(row map[string]types.RelationshipType) []string {
	ids := make([]string, 0, len(row))
	for id := range row {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
