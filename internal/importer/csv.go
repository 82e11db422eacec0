package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/kinfolk/pkg/types"
)

// CSV roster column names. person_name is required; everything else is
// optional. A row with no relationship columns just defines the person.
const (
	colPersonName    = "person_name"
	colPersonGender  = "person_gender"
	colPersonBirth   = "person_birth_date"
	colRelType       = "relationship_type"
	colRelatedName   = "related_person_name"
	colRelatedGender = "related_person_gender"
	colRelatedBirth  = "related_person_birth_date"
)

// ImportCSV reads a relationship roster and loads it into the store.
// People are matched by name, case-insensitively; names that do not match
// an existing person get a placeholder record with a generated id. Each
// relationship row also writes the reciprocal edge. Malformed rows are
// recorded in the result and skipped, never fatal; only store errors abort
// the import.
func (imp *Importer) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{JobID: uuid.New().String()}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are reported per row, not fatal
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns[colPersonName]; !ok {
		return nil, fmt.Errorf("CSV is missing the %s column", colPersonName)
	}

	rows := records[1:]
	result.RowsFound = len(rows)

	session, err := imp.newImportSession(ctx)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		line := i + 2 // 1-based, after the header

		imp.report(ImportProgress{
			JobID:     result.JobID,
			Stage:     "running",
			Processed: i,
			Total:     len(rows),
		})

		field := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		personName := field(colPersonName)
		if personName == "" {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s is empty", line, colPersonName))
			continue
		}

		person, err := session.ensurePerson(ctx, personName, field(colPersonGender), field(colPersonBirth), result)
		if err != nil {
			return nil, err
		}

		relType := types.RelationshipType(strings.ToLower(field(colRelType)))
		relatedName := field(colRelatedName)
		if relType == "" && relatedName == "" {
			continue // person-only row
		}
		if relType == "" || relatedName == "" {
			result.RowsSkipped++
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: %s and %s must be set together", line, colRelType, colRelatedName))
			continue
		}
		if !types.IsValidRelationshipType(relType) {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown relationship type %q", line, relType))
			continue
		}

		related, err := session.ensurePerson(ctx, relatedName, field(colRelatedGender), field(colRelatedBirth), result)
		if err != nil {
			return nil, err
		}
		if related.ID == person.ID {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %q relates to themselves", line, personName))
			continue
		}

		if err := session.addDeclaredEdge(ctx, person.ID, related.ID, relType, result); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	imp.report(ImportProgress{
		JobID:     result.JobID,
		Stage:     "complete",
		Processed: len(rows),
		Total:     len(rows),
		Message: fmt.Sprintf("Imported %d relationships, created %d people",
			result.RelationshipsCreated, result.PeopleCreated),
	})
	return result, nil
}

// importSession caches the store's people and edges so name resolution and
// duplicate suppression don't hit the database per row.
type importSession struct {
	imp     *Importer
	byName  map[string]*types.Person
	hasEdge map[string]bool
}

func (imp *Importer) newImportSession(ctx context.Context) (*importSession, error) {
	people, rels, err := imp.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing data: %w", err)
	}

	s := &importSession{
		imp:     imp,
		byName:  make(map[string]*types.Person, len(people)),
		hasEdge: make(map[string]bool, len(rels)),
	}
	for i := range people {
		p := people[i]
		s.byName[normalizeName(p.Name)] = &p
	}
	for i := range rels {
		s.hasEdge[edgeFingerprint(rels[i].PersonID, rels[i].RelatedPersonID, rels[i].Type)] = true
	}
	return s, nil
}

// ensurePerson resolves a name to a person, creating a placeholder record
// when the name is new. Gender and birth date fill in blanks on an existing
// record but never overwrite a value already present.
func (s *importSession) ensurePerson(ctx context.Context, name, gender, birthDate string, result *ImportResult) (*types.Person, error) {
	key := normalizeName(name)

	if p, ok := s.byName[key]; ok {
		updated := false
		if p.Gender == types.GenderOther && gender != "" && types.IsValidGender(types.Gender(gender)) {
			p.Gender = types.Gender(gender)
			updated = true
		}
		if p.BirthDate == "" && birthDate != "" {
			p.BirthDate = birthDate
			updated = true
		}
		if updated {
			if err := s.imp.store.StorePerson(ctx, p); err != nil {
				return nil, fmt.Errorf("failed to update person %q: %w", name, err)
			}
			result.PeopleUpdated++
		}
		return p, nil
	}

	p := &types.Person{
		ID:        uuid.New().String(),
		Name:      name,
		Gender:    types.GenderOther,
		BirthDate: birthDate,
	}
	if gender != "" && types.IsValidGender(types.Gender(gender)) {
		p.Gender = types.Gender(gender)
	}
	if err := s.imp.store.StorePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create person %q: %w", name, err)
	}
	s.byName[key] = p
	result.PeopleCreated++
	return p, nil
}

// addDeclaredEdge stores a declared relationship plus its reciprocal,
// skipping whichever direction already exists.
func (s *importSession) addDeclaredEdge(ctx context.Context, personID, relatedID string, relType types.RelationshipType, result *ImportResult) error {
	fwd := &types.Relationship{
		ID:              uuid.New().String(),
		PersonID:        personID,
		RelatedPersonID: relatedID,
		Type:            relType,
		Confidence:      1.0,
	}

	if !s.hasEdge[edgeFingerprint(personID, relatedID, relType)] {
		if err := s.imp.store.StoreRelationship(ctx, fwd); err != nil {
			return fmt.Errorf("failed to store relationship: %w", err)
		}
		s.hasEdge[edgeFingerprint(personID, relatedID, relType)] = true
		result.RelationshipsCreated++
	}

	rec := fwd.Reciprocal(uuid.New().String())
	if rec == nil {
		return nil
	}
	if !s.hasEdge[edgeFingerprint(rec.PersonID, rec.RelatedPersonID, rec.Type)] {
		if err := s.imp.store.StoreRelationship(ctx, rec); err != nil {
			return fmt.Errorf("failed to store reciprocal relationship: %w", err)
		}
		s.hasEdge[edgeFingerprint(rec.PersonID, rec.RelatedPersonID, rec.Type)] = true
		result.RelationshipsCreated++
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func edgeFingerprint(personID, relatedID string, relType types.RelationshipType) string {
	return personID + "\x00" + relatedID + "\x00" + string(relType)
}

// ExportCSV writes the roster as two CSV documents: people and
// relationships.
func (imp *Importer) ExportCSV(ctx context.Context, peopleW, relsW io.Writer) error {
	people, rels, err := imp.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load data for export: %w", err)
	}

	pw := csv.NewWriter(peopleW)
	if err := pw.Write([]string{
		"id", "name", "first_name", "last_name", "gender",
		"birth_date", "death_date", "deceased", "birth_place", "occupation",
	}); err != nil {
		return fmt.Errorf("failed to write people header: %w", err)
	}
	for i := range people {
		p := &people[i]
		if err := pw.Write([]string{
			p.ID, p.Name, p.FirstName, p.LastName, string(p.Gender),
			p.BirthDate, p.DeathDate, strconv.FormatBool(p.Deceased), p.BirthPlace, p.Occupation,
		}); err != nil {
			return fmt.Errorf("failed to write person row: %w", err)
		}
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return fmt.Errorf("failed to flush people CSV: %w", err)
	}

	rw := csv.NewWriter(relsW)
	if err := rw.Write([]string{
		"id", "person_id", "related_person_id", "type", "is_inferred", "confidence",
	}); err != nil {
		return fmt.Errorf("failed to write relationships header: %w", err)
	}
	for i := range rels {
		rel := &rels[i]
		if err := rw.Write([]string{
			rel.ID, rel.PersonID, rel.RelatedPersonID, string(rel.Type),
			strconv.FormatBool(rel.IsInferred), strconv.FormatFloat(rel.Confidence, 'f', -1, 64),
		}); err != nil {
			return fmt.Errorf("failed to write relationship row: %w", err)
		}
	}
	rw.Flush()
	if err := rw.Error(); err != nil {
		return fmt.Errorf("failed to flush relationships CSV: %w", err)
	}

	return nil
}
