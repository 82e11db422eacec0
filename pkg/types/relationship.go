package types

import "time"

// Relationship represents a directed kinship fact: RelatedPersonID is
// Type-of PersonID (with Type "parent", the related person is the parent).
// Every stored relationship should have a reciprocal counterpart with the
// reverse type; the system maintains that pairing when it creates
// relationships but tolerates asymmetric imported data.
type Relationship struct {
	ID              string           `json:"id"`
	PersonID        string           `json:"person_id"`
	RelatedPersonID string           `json:"related_person_id"`
	Type            RelationshipType `json:"type"`

	// IsInferred marks edges derived by the inference engine rather than
	// declared by a user or import.
	IsInferred bool `json:"is_inferred"`

	// Confidence is 1.0 for declared facts and lower for inferred ones.
	Confidence float64 `json:"confidence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reciprocal builds the reverse-direction counterpart of r with the given
// id. It returns nil when r.Type has no known reverse.
func (r *Relationship) Reciprocal(id string) *Relationship {
	rev, ok := ReverseType(r.Type)
	if !ok {
		return nil
	}
	return &Relationship{
		ID:              id,
		PersonID:        r.RelatedPersonID,
		RelatedPersonID: r.PersonID,
		Type:            rev,
		IsInferred:      r.IsInferred,
		Confidence:      r.Confidence,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
