package kin

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/kinfolk/pkg/types"
)

// Confidence weights for each inference rule. Declared facts carry 1.0;
// derived facts decay with the indirection of the rule that produced them.
const (
	ConfidenceSibling     = 0.95
	ConfidenceGrandparent = 0.9
	ConfidenceAuntUncle   = 0.85
	ConfidenceCousin      = 0.8
	ConfidenceInLaw       = 0.7
)

// InferRelationships applies the derivation rules over the declared facts
// and returns a fresh, larger relationship list; the input is never mutated,
// so callers can diff or roll back.
//
// Rules run once per call, in fixed order: siblings from shared parents,
// then grandparents, aunts/uncles, cousins, and in-laws. The parent/child
// and spouse groupings are read from the original input list only, while
// sibling facts derived by the first rule are visible to the aunt/uncle and
// cousin rules within the same pass. This is a single documented pass, not
// a transitive closure: grandparents-of-grandparents are never derived.
// Re-running the engine adds nothing, because an edge (plus reciprocal) is
// only added when neither direction already exists for that pair and type.
func InferRelationships(people []types.Person, relationships []types.Relationship) []types.Relationship {
	inf := newInferencePass(people, relationships)

	inf.inferSiblings()
	inf.inferGrandparents()
	inf.inferAuntsAndUncles()
	inf.inferCousins()
	inf.inferInLaws()

	return inf.result
}

// inferencePass carries the working state of one InferRelationships call.
type inferencePass struct {
	result []types.Relationship

	// existing indexes every (person, type, related) triple in result,
	// both declared and derived, for the duplicate-suppression check.
	existing map[edgeKey]bool

	// genderOf is used by the aunt/uncle rule only; gender never gates
	// structural derivation.
	genderOf map[string]types.Gender

	// parentsOf and childrenOf come from the original parent-typed facts
	// and are frozen for the whole pass.
	parentsOf  map[string][]string
	childrenOf map[string][]string

	// spouseOf comes from the original spouse-typed facts.
	spouseOf map[string][]string

	// siblingsOf starts from the original sibling facts and grows when the
	// sibling rule fires, so later rules see first-rule output.
	siblingsOf map[string]map[string]bool

	now time.Time
}

type edgeKey struct {
	personID  string
	relatedID string
	relType   types.RelationshipType
}

func newInferencePass(people []types.Person, relationships []types.Relationship) *inferencePass {
	inf := &inferencePass{
		result:     append([]types.Relationship(nil), relationships...),
		existing:   make(map[edgeKey]bool, len(relationships)),
		genderOf:   make(map[string]types.Gender, len(people)),
		parentsOf:  make(map[string][]string),
		childrenOf: make(map[string][]string),
		spouseOf:   make(map[string][]string),
		siblingsOf: make(map[string]map[string]bool),
		now:        time.Now(),
	}

	for i := range people {
		inf.genderOf[people[i].ID] = people[i].Gender
	}

	for i := range relationships {
		rel := &relationships[i]
		inf.existing[edgeKey{rel.PersonID, rel.RelatedPersonID, rel.Type}] = true

		switch rel.Type {
		case types.RelTypeParent:
			// RelatedPersonID is the parent of PersonID.
			inf.parentsOf[rel.PersonID] = appendUnique(inf.parentsOf[rel.PersonID], rel.RelatedPersonID)
			inf.childrenOf[rel.RelatedPersonID] = appendUnique(inf.childrenOf[rel.RelatedPersonID], rel.PersonID)
		case types.RelTypeChild:
			// RelatedPersonID is the child of PersonID.
			inf.childrenOf[rel.PersonID] = appendUnique(inf.childrenOf[rel.PersonID], rel.RelatedPersonID)
			inf.parentsOf[rel.RelatedPersonID] = appendUnique(inf.parentsOf[rel.RelatedPersonID], rel.PersonID)
		case types.RelTypeSpouse:
			inf.spouseOf[rel.PersonID] = appendUnique(inf.spouseOf[rel.PersonID], rel.RelatedPersonID)
		case types.RelTypeSibling:
			inf.addSiblingIndex(rel.PersonID, rel.RelatedPersonID)
		}
	}

	return inf
}

// inferSiblings derives sibling edges between any two children that share a
// parent.
func (inf *inferencePass) inferSiblings() {
	for _, parent := range sortedKeys(inf.childrenOf) {
		children := inf.childrenOf[parent]
		for i := 0; i < len(children); i++ {
			for j := i + 1; j < len(children); j++ {
				if children[i] == children[j] {
					continue
				}
				if inf.addEdge(children[i], children[j], types.RelTypeSibling, ConfidenceSibling) {
					inf.addSiblingIndex(children[i], children[j])
				}
			}
		}
	}
}

// inferGrandparents derives a grandparent edge for each parent of a parent.
func (inf *inferencePass) inferGrandparents() {
	for _, person := range sortedKeys(inf.parentsOf) {
		for _, parent := range inf.parentsOf[person] {
			for _, grandparent := range inf.parentsOf[parent] {
				if grandparent == person {
					continue
				}
				inf.addEdge(person, grandparent, types.RelTypeGrandparent, ConfidenceGrandparent)
			}
		}
	}
}

// inferAuntsAndUncles marks each sibling of a parent as aunt or uncle of
// the child, picking aunt for female siblings and uncle otherwise. Sibling
// facts derived earlier in this pass are visible here.
func (inf *inferencePass) inferAuntsAndUncles() {
	for _, child := range sortedKeys(inf.parentsOf) {
		for _, parent := range inf.parentsOf[child] {
			for _, sib := range inf.siblingList(parent) {
				if sib == child {
					continue
				}
				relType := types.RelTypeUncle
				if inf.genderOf[sib] == types.GenderFemale {
					relType = types.RelTypeAunt
				}
				inf.addEdge(child, sib, relType, ConfidenceAuntUncle)
			}
		}
	}
}

// inferCousins derives mutual cousin edges between children whose parents
// are siblings.
func (inf *inferencePass) inferCousins() {
	for _, childA := range sortedKeys(inf.parentsOf) {
		for _, parentA := range inf.parentsOf[childA] {
			for _, sib := range inf.siblingList(parentA) {
				for _, childB := range inf.childrenOf[sib] {
					if childB == childA {
						continue
					}
					inf.addEdge(childA, childB, types.RelTypeCousin, ConfidenceCousin)
				}
			}
		}
	}
}

// inferInLaws makes a person's spouse's parents in-laws of that person,
// and symmetrically through the reciprocal edge.
func (inf *inferencePass) inferInLaws() {
	for _, person := range sortedKeys(inf.spouseOf) {
		for _, spouse := range inf.spouseOf[person] {
			for _, parent := range inf.parentsOf[spouse] {
				if parent == person {
					continue
				}
				inf.addEdge(person, parent, types.RelTypeInLaw, ConfidenceInLaw)
			}
		}
	}
}

// addEdge appends a derived edge plus its reciprocal unless either
// direction already exists for that pair and type. Reports whether the
// forward edge was added.
func (inf *inferencePass) addEdge(personID, relatedID string, relType types.RelationshipType, confidence float64) bool {
	rev, ok := types.ReverseType(relType)
	if !ok {
		return false
	}
	if inf.existing[edgeKey{personID, relatedID, relType}] || inf.existing[edgeKey{relatedID, personID, rev}] {
		return false
	}

	fwd := types.Relationship{
		ID:              uuid.New().String(),
		PersonID:        personID,
		RelatedPersonID: relatedID,
		Type:            relType,
		IsInferred:      true,
		Confidence:      confidence,
		CreatedAt:       inf.now,
		UpdatedAt:       inf.now,
	}
	inf.result = append(inf.result, fwd)
	inf.existing[edgeKey{personID, relatedID, relType}] = true

	if rec := fwd.Reciprocal(uuid.New().String()); rec != nil {
		if !inf.existing[edgeKey{rec.PersonID, rec.RelatedPersonID, rec.Type}] {
			inf.result = append(inf.result, *rec)
			inf.existing[edgeKey{rec.PersonID, rec.RelatedPersonID, rec.Type}] = true
		}
	}

	return true
}

func (inf *inferencePass) addSiblingIndex(a, b string) {
	if inf.siblingsOf[a] == nil {
		inf.siblingsOf[a] = make(map[string]bool)
	}
	if inf.siblingsOf[b] == nil {
		inf.siblingsOf[b] = make(map[string]bool)
	}
	inf.siblingsOf[a][b] = true
	inf.siblingsOf[b][a] = true
}

// siblingList returns the known siblings of id in stable order.
func (inf *inferencePass) siblingList(id string) []string {
	set := inf.siblingsOf[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for sib := range set {
		out = append(out, sib)
	}
	sort.Strings(out)
	return out
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
