package kin

import (
	"sort"

	"github.com/scrypster/kinfolk/pkg/types"
)

// Predicate names a path-shape filter for relative queries.
type Predicate string

const (
	PredicateCousins          Predicate = "cousins"
	PredicateAuntsAndUncles   Predicate = "auntsAndUncles"
	PredicateNiecesAndNephews Predicate = "niecesAndNephews"
	PredicateGrandparents     Predicate = "grandparents"
	PredicateGrandchildren    Predicate = "grandchildren"
	PredicateInLaws           Predicate = "inLaws"
)

// ValidPredicates lists the supported relative-query predicates.
var ValidPredicates = []Predicate{
	PredicateCousins,
	PredicateAuntsAndUncles,
	PredicateNiecesAndNephews,
	PredicateGrandparents,
	PredicateGrandchildren,
	PredicateInLaws,
}

// IsValidPredicate checks if the given predicate name is supported.
func IsValidPredicate(p Predicate) bool {
	switch p {
	case PredicateCousins, PredicateAuntsAndUncles, PredicateNiecesAndNephews,
		PredicateGrandparents, PredicateGrandchildren, PredicateInLaws:
		return true
	}
	return false
}

// RelativeMatch pairs a person with the paths that satisfied the predicate.
type RelativeMatch struct {
	PersonID string `json:"person_id"`
	Paths    []Path `json:"paths"`
}

// QueryRelatives finds every other person in the graph whose paths from
// personID match the predicate, with the surviving paths attached. Results
// are sorted by person id for deterministic output; no other ordering is
// guaranteed. An unknown predicate matches nothing.
//
// This runs one bounded path search per person in the graph — fine for
// genealogy-scale data, not for dense social graphs.
func QueryRelatives(g Graph, personID string, predicate Predicate, maxDistance int) []RelativeMatch {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	if !g.Contains(personID) || !IsValidPredicate(predicate) {
		return nil
	}

	var matches []RelativeMatch
	for otherID := range g {
		if otherID == personID {
			continue
		}
		paths := FindPaths(g, personID, otherID, maxDistance)
		var surviving []Path
		for _, p := range paths {
			if MatchPath(predicate, p) {
				surviving = append(surviving, p)
			}
		}
		if len(surviving) > 0 {
			matches = append(matches, RelativeMatch{PersonID: otherID, Paths: surviving})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].PersonID < matches[j].PersonID })
	return matches
}

// MatchPath reports whether a path's full hop-type sequence satisfies the
// predicate. The structural predicates are exact sequence matches; inLaws
// accepts any multi-hop path that crosses a spouse edge anywhere.
func MatchPath(predicate Predicate, p Path) bool {
	ts := p.Types()
	switch predicate {
	case PredicateCousins:
		return typesEqual(ts, types.RelTypeParent, types.RelTypeSibling, types.RelTypeChild)
	case PredicateAuntsAndUncles:
		return typesEqual(ts, types.RelTypeParent, types.RelTypeSibling)
	case PredicateNiecesAndNephews:
		return typesEqual(ts, types.RelTypeSibling, types.RelTypeChild)
	case PredicateGrandparents:
		return typesEqual(ts, types.RelTypeParent, types.RelTypeParent)
	case PredicateGrandchildren:
		return typesEqual(ts, types.RelTypeChild, types.RelTypeChild)
	case PredicateInLaws:
		if len(ts) <= 1 {
			return false
		}
		for _, t := range ts {
			if t == types.RelTypeSpouse {
				return true
			}
		}
		return false
	}
	return false
}
