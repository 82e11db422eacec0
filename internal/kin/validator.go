package kin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/scrypster/kinfolk/pkg/types"
)

// Validation thresholds. Age gaps are compared on parsed birth dates;
// unparseable dates silently skip the affected check.
const (
	minParentAgeGapYears = 10
	maxSpouseAgeGapYears = 50
)

// Validate scans a people/relationships snapshot for logical consistency
// and returns the findings grouped by check. Findings are reported, never
// auto-corrected, and no check blocks any other.
func Validate(people []types.Person, relationships []types.Relationship) []types.ValidationError {
	v := &validator{
		peopleByID: make(map[string]*types.Person, len(people)),
	}
	for i := range people {
		v.peopleByID[people[i].ID] = &people[i]
	}

	v.checkCircularAncestry(people, relationships)
	v.checkParentChildAges(relationships)
	v.checkDuplicateRelationships(relationships)
	v.checkMissingData(people)
	v.checkSpousalAgeGaps(relationships)

	return v.findings
}

type validator struct {
	peopleByID map[string]*types.Person
	findings   []types.ValidationError
	seq        int
}

func (v *validator) add(errType types.ValidationErrorType, severity types.ValidationSeverity, message string, personIDs []string, suggestion string) {
	v.seq++
	v.findings = append(v.findings, types.ValidationError{
		ID:         fmt.Sprintf("finding-%d", v.seq),
		Type:       errType,
		Severity:   severity,
		Message:    message,
		PersonIDs:  personIDs,
		Suggestion: suggestion,
	})
}

// nameOf returns a display name for a person id, falling back to the id
// itself for dangling references.
func (v *validator) nameOf(id string) string {
	if p, ok := v.peopleByID[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

// checkCircularAncestry walks parent-typed edges upward from every person
// with a path-local visited set. Diamond ancestry (a shared ancestor
// reached along two lines) is legitimate and not flagged; only a true
// upward cycle that revisits an id within one walk is.
func (v *validator) checkCircularAncestry(people []types.Person, relationships []types.Relationship) {
	parentsOf := make(map[string][]string)
	for i := range relationships {
		rel := &relationships[i]
		if rel.Type == types.RelTypeParent {
			parentsOf[rel.PersonID] = appendUnique(parentsOf[rel.PersonID], rel.RelatedPersonID)
		}
	}

	var walk func(id string, onPath map[string]bool) bool
	walk = func(id string, onPath map[string]bool) bool {
		if onPath[id] {
			return true
		}
		onPath[id] = true
		for _, parent := range parentsOf[id] {
			if walk(parent, onPath) {
				return true
			}
		}
		delete(onPath, id)
		return false
	}

	for i := range people {
		id := people[i].ID
		if walk(id, make(map[string]bool)) {
			v.add(types.ValidationCircularReference, types.SeverityError,
				fmt.Sprintf("Circular ancestry detected in the parent line of %s", v.nameOf(id)),
				[]string{id},
				"Remove or correct one of the parent relationships in the cycle")
		}
	}
}

// checkParentChildAges flags parents born after their children (error) and
// parent/child birth gaps under the plausible minimum (warning). The two
// checks are independent, so an inverted pair trips both.
func (v *validator) checkParentChildAges(relationships []types.Relationship) {
	for i := range relationships {
		rel := &relationships[i]
		if rel.Type != types.RelTypeParent {
			continue
		}
		child, okChild := v.peopleByID[rel.PersonID]
		parent, okParent := v.peopleByID[rel.RelatedPersonID]
		if !okChild || !okParent {
			continue
		}
		childBirth, ok1 := types.ParseDate(child.BirthDate)
		parentBirth, ok2 := types.ParseDate(parent.BirthDate)
		if !ok1 || !ok2 {
			continue
		}

		if parentBirth.After(childBirth) {
			v.add(types.ValidationAgeConflict, types.SeverityError,
				fmt.Sprintf("%s is recorded as a parent of %s but was born later", parent.Name, child.Name),
				[]string{parent.ID, child.ID},
				"Check the birth dates or the direction of the relationship")
		}

		if parentBirth.AddDate(minParentAgeGapYears, 0, 0).After(childBirth) {
			v.add(types.ValidationAgeConflict, types.SeverityWarning,
				fmt.Sprintf("%s would have been under %d years old at the birth of %s", parent.Name, minParentAgeGapYears, child.Name),
				[]string{parent.ID, child.ID},
				"Verify the birth dates of both people")
		}
	}
}

// checkDuplicateRelationships flags any (person, type) pair with more than
// one distinct target. This is deliberately coarse-grained and over-flags
// naturally-multiple relations such as two children of the same person;
// the presentation layer is expected to treat these warnings accordingly.
func (v *validator) checkDuplicateRelationships(relationships []types.Relationship) {
	type groupKey struct {
		personID string
		relType  types.RelationshipType
	}
	groups := make(map[groupKey][]string)
	for i := range relationships {
		rel := &relationships[i]
		key := groupKey{rel.PersonID, rel.Type}
		groups[key] = appendUnique(groups[key], rel.RelatedPersonID)
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].personID != keys[j].personID {
			return keys[i].personID < keys[j].personID
		}
		return keys[i].relType < keys[j].relType
	})

	for _, key := range keys {
		targets := groups[key]
		if len(targets) < 2 {
			continue
		}
		sort.Strings(targets)
		names := make([]string, len(targets))
		for i, id := range targets {
			names[i] = v.nameOf(id)
		}
		v.add(types.ValidationDuplicateRelationship, types.SeverityWarning,
			fmt.Sprintf("%s has multiple %q relationships: %s", v.nameOf(key.personID), key.relType, strings.Join(names, ", ")),
			append([]string{key.personID}, targets...),
			"Review whether these entries describe the same relationship twice")
	}
}

// checkMissingData reports people with no usable birth date who are not
// marked deceased, and deceased people without a death date.
func (v *validator) checkMissingData(people []types.Person) {
	for i := range people {
		p := &people[i]
		if _, ok := types.ParseDate(p.BirthDate); !ok && !p.Deceased {
			v.add(types.ValidationMissingData, types.SeverityInfo,
				fmt.Sprintf("%s has no birth date", v.nameOf(p.ID)),
				[]string{p.ID},
				"Add a birth date to enable age-based consistency checks")
		}
		if p.Deceased {
			if _, ok := types.ParseDate(p.DeathDate); !ok {
				v.add(types.ValidationMissingData, types.SeverityInfo,
					fmt.Sprintf("%s is marked deceased but has no death date", v.nameOf(p.ID)),
					[]string{p.ID},
					"Add a death date for the deceased person")
			}
		}
	}
}

// checkSpousalAgeGaps warns on spouse pairs born more than the plausible
// maximum apart. Reciprocal spouse edges describe the same pair, so each
// unordered pair is flagged once.
func (v *validator) checkSpousalAgeGaps(relationships []types.Relationship) {
	seen := make(map[string]bool)
	for i := range relationships {
		rel := &relationships[i]
		if rel.Type != types.RelTypeSpouse {
			continue
		}
		a, b := rel.PersonID, rel.RelatedPersonID
		if b < a {
			a, b = b, a
		}
		pairKey := a + "|" + b
		if seen[pairKey] {
			continue
		}
		seen[pairKey] = true

		pa, okA := v.peopleByID[a]
		pb, okB := v.peopleByID[b]
		if !okA || !okB {
			continue
		}
		birthA, ok1 := types.ParseDate(pa.BirthDate)
		birthB, ok2 := types.ParseDate(pb.BirthDate)
		if !ok1 || !ok2 {
			continue
		}

		older, younger := birthA, birthB
		if older.After(younger) {
			older, younger = younger, older
		}
		if older.AddDate(maxSpouseAgeGapYears, 0, 0).Before(younger) {
			v.add(types.ValidationLogicalError, types.SeverityWarning,
				fmt.Sprintf("%s and %s are spouses with an age gap over %d years", pa.Name, pb.Name, maxSpouseAgeGapYears),
				[]string{pa.ID, pb.ID},
				"Verify the birth dates of both spouses")
		}
	}
}
