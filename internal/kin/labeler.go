package kin

import (
	"strings"

	"github.com/scrypster/kinfolk/pkg/types"
)

// LabelSelf is returned for a zero-length path.
const LabelSelf = "self"

// fallbackSeparator joins raw type tokens in the generic fallback label.
const fallbackSeparator = " → "

// LabelPath maps a hop-type sequence plus the endpoint people to a
// human-readable kinship term.
//
// Length 0 is "self". Length 1 uses the direct lookup table, gendered for
// the target endpoint where a gendered noun exists. Longer paths first try
// the curated compound-pattern table; when none matches, the fallback
// labels the first hop directly and appends the remaining raw type tokens
// joined by an arrow, signalling that no curated term exists.
//
// allPeople is accepted for compound-pattern disambiguation; the current
// rule set does not consult it beyond availability.
func LabelPath(pathTypes []types.RelationshipType, from, to *types.Person, allPeople []types.Person) string {
	_ = allPeople

	if len(pathTypes) == 0 {
		return LabelSelf
	}

	gender := types.GenderOther
	if to != nil {
		gender = to.Gender
	}

	if len(pathTypes) == 1 {
		return directLabel(pathTypes[0], gender)
	}

	if label, ok := compoundLabel(pathTypes, gender); ok {
		return label
	}

	parts := make([]string, 0, len(pathTypes))
	parts = append(parts, directLabel(pathTypes[0], gender))
	for _, t := range pathTypes[1:] {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, fallbackSeparator)
}

// directLabel returns the single-hop kinship noun for a relationship type,
// gendered for the target person where the term has gendered forms.
// Aunt, uncle, niece, nephew, cousin, and in-law pass through unchanged.
func directLabel(t types.RelationshipType, gender types.Gender) string {
	switch t {
	case types.RelTypeParent:
		return pick(gender, "mother", "father", string(t))
	case types.RelTypeChild:
		return pick(gender, "daughter", "son", string(t))
	case types.RelTypeSpouse:
		return pick(gender, "wife", "husband", string(t))
	case types.RelTypeSibling:
		return pick(gender, "sister", "brother", string(t))
	case types.RelTypeGrandparent:
		return pick(gender, "grandmother", "grandfather", string(t))
	case types.RelTypeGrandchild:
		return pick(gender, "granddaughter", "grandson", string(t))
	case types.RelTypeStepParent:
		return pick(gender, "stepmother", "stepfather", string(t))
	case types.RelTypeStepChild:
		return pick(gender, "stepdaughter", "stepson", string(t))
	case types.RelTypeAdoptedParent:
		return pick(gender, "adoptive mother", "adoptive father", string(t))
	case types.RelTypeAdoptedChild:
		return pick(gender, "adopted daughter", "adopted son", string(t))
	default:
		// aunt, uncle, niece, nephew, cousin, in-law carry their own gender
		// or none at all.
		return string(t)
	}
}

// compoundLabel matches the exact hop-type sequence against the curated
// compound patterns. The in-law patterns select the gendered form from the
// target's gender; the historical rule table produced "mother-in-law" for
// both genders through an unreachable second branch, which this table
// deliberately does not reproduce.
func compoundLabel(pathTypes []types.RelationshipType, gender types.Gender) (string, bool) {
	switch {
	case typesEqual(pathTypes, types.RelTypeParent, types.RelTypeSpouse):
		return pick(gender, "mother-in-law", "father-in-law", "parent-in-law"), true
	case typesEqual(pathTypes, types.RelTypeSibling, types.RelTypeSpouse):
		return pick(gender, "sister-in-law", "brother-in-law", "sibling-in-law"), true
	case typesEqual(pathTypes, types.RelTypeChild, types.RelTypeSpouse):
		return pick(gender, "daughter-in-law", "son-in-law", "child-in-law"), true
	case typesEqual(pathTypes, types.RelTypeParent, types.RelTypeSpouse, types.RelTypeChild):
		return "step-sibling", true
	case typesEqual(pathTypes, types.RelTypeParent, types.RelTypeChild):
		return "half-sibling", true
	}
	return "", false
}

// pick selects the gendered form of a kinship term.
func pick(gender types.Gender, female, male, other string) string {
	switch gender {
	case types.GenderFemale:
		return female
	case types.GenderMale:
		return male
	default:
		return other
	}
}

// typesEqual reports whether got is exactly the want sequence.
func typesEqual(got []types.RelationshipType, want ...types.RelationshipType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
