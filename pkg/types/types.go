// Package types defines the core data structures for the kinfolk kinship
// engine: people, directed relationship facts, and validation findings.
// Relationship types form a closed set so the reverse-type table and the
// inference rules can be checked exhaustively.
package types

// RelationshipType identifies the kind of a directed relationship fact.
// The type describes what the related person is to the holder of the fact:
// a relationship {PersonID: X, RelatedPersonID: Y, Type: RelTypeParent}
// states that Y is X's parent.
type RelationshipType string

const (
	RelTypeParent        RelationshipType = "parent"
	RelTypeChild         RelationshipType = "child"
	RelTypeSpouse        RelationshipType = "spouse"
	RelTypeSibling       RelationshipType = "sibling"
	RelTypeGrandparent   RelationshipType = "grandparent"
	RelTypeGrandchild    RelationshipType = "grandchild"
	RelTypeAunt          RelationshipType = "aunt"
	RelTypeUncle         RelationshipType = "uncle"
	RelTypeNiece         RelationshipType = "niece"
	RelTypeNephew        RelationshipType = "nephew"
	RelTypeCousin        RelationshipType = "cousin"
	RelTypeStepParent    RelationshipType = "step-parent"
	RelTypeStepChild     RelationshipType = "step-child"
	RelTypeAdoptedParent RelationshipType = "adopted-parent"
	RelTypeAdoptedChild  RelationshipType = "adopted-child"
	RelTypeInLaw         RelationshipType = "in-law"
)

// ValidRelationshipTypes is a slice of all valid relationship types for validation.
var ValidRelationshipTypes = []RelationshipType{
	RelTypeParent,
	RelTypeChild,
	RelTypeSpouse,
	RelTypeSibling,
	RelTypeGrandparent,
	RelTypeGrandchild,
	RelTypeAunt,
	RelTypeUncle,
	RelTypeNiece,
	RelTypeNephew,
	RelTypeCousin,
	RelTypeStepParent,
	RelTypeStepChild,
	RelTypeAdoptedParent,
	RelTypeAdoptedChild,
	RelTypeInLaw,
}

// reverseTypes is the algebraic reverse of each relationship type: if
// graph[A][B] == t then the reciprocal edge is graph[B][A] == reverseTypes[t].
// Symmetric types (spouse, sibling, cousin, in-law) reverse to themselves.
var reverseTypes = map[RelationshipType]RelationshipType{
	RelTypeParent:        RelTypeChild,
	RelTypeChild:         RelTypeParent,
	RelTypeSpouse:        RelTypeSpouse,
	RelTypeSibling:       RelTypeSibling,
	RelTypeGrandparent:   RelTypeGrandchild,
	RelTypeGrandchild:    RelTypeGrandparent,
	RelTypeAunt:          RelTypeNiece,
	RelTypeNiece:         RelTypeAunt,
	RelTypeUncle:         RelTypeNephew,
	RelTypeNephew:        RelTypeUncle,
	RelTypeCousin:        RelTypeCousin,
	RelTypeStepParent:    RelTypeStepChild,
	RelTypeStepChild:     RelTypeStepParent,
	RelTypeAdoptedParent: RelTypeAdoptedChild,
	RelTypeAdoptedChild:  RelTypeAdoptedParent,
	RelTypeInLaw:         RelTypeInLaw,
}

// ReverseType returns the reciprocal relationship type for t.
// The second return value is false when t is not a known relationship type.
func ReverseType(t RelationshipType) (RelationshipType, bool) {
	rev, ok := reverseTypes[t]
	return rev, ok
}

// IsValidRelationshipType checks if the given relationship type is valid.
func IsValidRelationshipType(t RelationshipType) bool {
	_, ok := reverseTypes[t]
	return ok
}

// Gender selects gendered kinship terms (mother vs father). It never gates
// structural logic.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// IsValidGender checks if the given gender value is valid.
func IsValidGender(g Gender) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
