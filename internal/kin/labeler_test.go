package kin

import (
	"testing"

	"github.com/scrypster/kinfolk/pkg/types"
)

func TestLabelPath_Self(t *testing.T) {
	from := person("a", types.GenderFemale)
	if got := LabelPath(nil, &from, &from, nil); got != "self" {
		t.Errorf("zero-length path = %q, want %q", got, "self")
	}
}

func TestLabelPath_DirectGendered(t *testing.T) {
	cases := []struct {
		relType types.RelationshipType
		gender  types.Gender
		want    string
	}{
		{types.RelTypeParent, types.GenderFemale, "mother"},
		{types.RelTypeParent, types.GenderMale, "father"},
		{types.RelTypeParent, types.GenderOther, "parent"},
		{types.RelTypeChild, types.GenderFemale, "daughter"},
		{types.RelTypeChild, types.GenderMale, "son"},
		{types.RelTypeSpouse, types.GenderFemale, "wife"},
		{types.RelTypeSpouse, types.GenderMale, "husband"},
		{types.RelTypeSibling, types.GenderFemale, "sister"},
		{types.RelTypeSibling, types.GenderMale, "brother"},
		{types.RelTypeGrandparent, types.GenderFemale, "grandmother"},
		{types.RelTypeGrandchild, types.GenderMale, "grandson"},
		{types.RelTypeStepParent, types.GenderFemale, "stepmother"},
		{types.RelTypeStepChild, types.GenderMale, "stepson"},
		{types.RelTypeAdoptedParent, types.GenderFemale, "adoptive mother"},
		{types.RelTypeAdoptedChild, types.GenderMale, "adopted son"},
		// Ungendered pass-through labels.
		{types.RelTypeAunt, types.GenderFemale, "aunt"},
		{types.RelTypeUncle, types.GenderMale, "uncle"},
		{types.RelTypeNiece, types.GenderFemale, "niece"},
		{types.RelTypeNephew, types.GenderMale, "nephew"},
		{types.RelTypeCousin, types.GenderMale, "cousin"},
		{types.RelTypeInLaw, types.GenderFemale, "in-law"},
	}

	for _, tc := range cases {
		from := person("from", types.GenderOther)
		to := person("to", tc.gender)
		got := LabelPath([]types.RelationshipType{tc.relType}, &from, &to, nil)
		if got != tc.want {
			t.Errorf("direct label for %q/%q = %q, want %q", tc.relType, tc.gender, got, tc.want)
		}
	}
}

func TestLabelPath_Compounds(t *testing.T) {
	cases := []struct {
		path   []types.RelationshipType
		gender types.Gender
		want   string
	}{
		{[]types.RelationshipType{types.RelTypeParent, types.RelTypeSpouse}, types.GenderFemale, "mother-in-law"},
		{[]types.RelationshipType{types.RelTypeParent, types.RelTypeSpouse}, types.GenderMale, "father-in-law"},
		{[]types.RelationshipType{types.RelTypeSibling, types.RelTypeSpouse}, types.GenderFemale, "sister-in-law"},
		{[]types.RelationshipType{types.RelTypeSibling, types.RelTypeSpouse}, types.GenderMale, "brother-in-law"},
		{[]types.RelationshipType{types.RelTypeChild, types.RelTypeSpouse}, types.GenderFemale, "daughter-in-law"},
		{[]types.RelationshipType{types.RelTypeChild, types.RelTypeSpouse}, types.GenderMale, "son-in-law"},
		{[]types.RelationshipType{types.RelTypeParent, types.RelTypeSpouse, types.RelTypeChild}, types.GenderFemale, "step-sibling"},
		{[]types.RelationshipType{types.RelTypeParent, types.RelTypeChild}, types.GenderMale, "half-sibling"},
	}

	for _, tc := range cases {
		from := person("from", types.GenderOther)
		to := person("to", tc.gender)
		got := LabelPath(tc.path, &from, &to, nil)
		if got != tc.want {
			t.Errorf("compound label for %v/%q = %q, want %q", tc.path, tc.gender, got, tc.want)
		}
	}
}

// TestLabelPath_GenericFallback checks the uncurated multi-hop join: the
// first hop is labeled directly, the rest stay raw type tokens.
func TestLabelPath_GenericFallback(t *testing.T) {
	from := person("from", types.GenderOther)
	to := person("to", types.GenderFemale)

	got := LabelPath([]types.RelationshipType{types.RelTypeParent, types.RelTypeSibling}, &from, &to, nil)
	if got != "mother → sibling" {
		t.Errorf("fallback label = %q, want %q", got, "mother → sibling")
	}

	got = LabelPath([]types.RelationshipType{types.RelTypeParent, types.RelTypeSibling, types.RelTypeChild, types.RelTypeSpouse}, &from, &to, nil)
	if got != "mother → sibling → child → spouse" {
		t.Errorf("long fallback label = %q", got)
	}
}

func TestLabelPath_NilTarget(t *testing.T) {
	from := person("from", types.GenderOther)
	if got := LabelPath([]types.RelationshipType{types.RelTypeParent}, &from, nil, nil); got != "parent" {
		t.Errorf("nil target should use the ungendered form, got %q", got)
	}
}
