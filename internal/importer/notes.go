package importer

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/scrypster/kinfolk/pkg/types"
)

// PersonNote is one parsed markdown note describing a person.
type PersonNote struct {
	// Path is the path of the note relative to the import root.
	Path string

	// Name is taken from the frontmatter "name" key, falling back to the
	// file name without extension.
	Name string

	Gender     types.Gender
	BirthDate  string
	DeathDate  string
	Deceased   bool
	BirthPlace string
	Occupation string

	// Relations are the declared edges from this person to others, by name.
	Relations []NoteRelation

	// Notes is the markdown body with the frontmatter stripped.
	Notes string
}

// NoteRelation is one relationship declared in a note's frontmatter.
type NoteRelation struct {
	Type types.RelationshipType
	Name string
}

// ImportNotes walks a directory of markdown person notes and loads them
// into the store. Each note upserts one person; names referenced in a
// relations list but not described by any note get placeholder records.
// Unreadable or malformed notes are recorded in the result and skipped.
func (imp *Importer) ImportNotes(ctx context.Context, dirPath string) (*ImportResult, error) {
	start := time.Now()
	result := &ImportResult{JobID: uuid.New().String()}

	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("cannot access directory %q: %w", dirPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", dirPath)
	}

	paths, err := collectNoteFiles(dirPath)
	if err != nil {
		return nil, err
	}
	result.RowsFound = len(paths)

	session, err := imp.newImportSession(ctx)
	if err != nil {
		return nil, err
	}

	var notes []*PersonNote
	for i, path := range paths {
		rel, relErr := filepath.Rel(dirPath, path)
		if relErr != nil {
			rel = path
		}

		imp.report(ImportProgress{
			JobID:       result.JobID,
			Stage:       "running",
			Processed:   i,
			Total:       len(paths),
			CurrentItem: rel,
		})

		content, err := os.ReadFile(path)
		if err != nil {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}

		note, err := ParsePersonNote(content, rel)
		if err != nil {
			result.RowsSkipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rel, err))
			continue
		}

		if err := session.upsertNotePerson(ctx, note, result); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	// Relations are linked after every note's person exists, so forward
	// references between notes resolve.
	for _, note := range notes {
		person := session.byName[normalizeName(note.Name)]
		for _, r := range note.Relations {
			related, err := session.ensurePerson(ctx, r.Name, "", "", result)
			if err != nil {
				return nil, err
			}
			if related.ID == person.ID {
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s: relation %q points at the note's own person", note.Path, r.Name))
				continue
			}
			if err := session.addDeclaredEdge(ctx, person.ID, related.ID, r.Type, result); err != nil {
				return nil, err
			}
		}
	}

	result.Duration = time.Since(start)
	imp.report(ImportProgress{
		JobID:     result.JobID,
		Stage:     "complete",
		Processed: len(paths),
		Total:     len(paths),
		Message: fmt.Sprintf("Imported %d notes, created %d people",
			len(notes), result.PeopleCreated),
	})
	return result, nil
}

// upsertNotePerson applies a note to the roster: matched by name, created
// when new, enriched when the note carries more detail than the record.
func (s *importSession) upsertNotePerson(ctx context.Context, note *PersonNote, result *ImportResult) error {
	key := normalizeName(note.Name)

	p, exists := s.byName[key]
	if !exists {
		p = &types.Person{
			ID:     uuid.New().String(),
			Name:   note.Name,
			Gender: types.GenderOther,
		}
	}

	if note.Gender != "" {
		p.Gender = note.Gender
	}
	if note.BirthDate != "" {
		p.BirthDate = note.BirthDate
	}
	if note.DeathDate != "" {
		p.DeathDate = note.DeathDate
	}
	p.Deceased = p.Deceased || note.Deceased
	if note.BirthPlace != "" {
		p.BirthPlace = note.BirthPlace
	}
	if note.Occupation != "" {
		p.Occupation = note.Occupation
	}
	if note.Notes != "" {
		p.Notes = note.Notes
	}

	if err := s.imp.store.StorePerson(ctx, p); err != nil {
		return fmt.Errorf("failed to store person %q: %w", note.Name, err)
	}
	if exists {
		result.PeopleUpdated++
	} else {
		s.byName[key] = p
		result.PeopleCreated++
	}
	return nil
}

// ParsePersonNote parses one markdown note into a PersonNote.
func ParsePersonNote(content []byte, relativePath string) (*PersonNote, error) {
	fm, body, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, err
	}

	note := &PersonNote{
		Path:  relativePath,
		Name:  extractString(fm, "name", titleFromPath(relativePath)),
		Notes: strings.TrimSpace(body),
	}
	if note.Name == "" {
		return nil, fmt.Errorf("note has no name")
	}

	if g := extractString(fm, "gender", ""); g != "" {
		gender := types.Gender(strings.ToLower(g))
		if !types.IsValidGender(gender) {
			return nil, fmt.Errorf("unknown gender %q", g)
		}
		note.Gender = gender
	}

	note.BirthDate = extractString(fm, "born", "")
	note.DeathDate = extractString(fm, "died", "")
	note.Deceased = note.DeathDate != ""
	if v, ok := fm["deceased"].(bool); ok {
		note.Deceased = note.Deceased || v
	}
	note.BirthPlace = extractString(fm, "birth_place", "")
	note.Occupation = extractString(fm, "occupation", "")

	relations, err := extractRelations(fm)
	if err != nil {
		return nil, err
	}
	note.Relations = relations

	return note, nil
}

// extractRelations reads the frontmatter "relations" list. Each entry is a
// map with "type" and "name" keys:
//
//	relations:
//	  - type: parent
//	    name: Marie Curie
func extractRelations(fm map[string]interface{}) ([]NoteRelation, error) {
	raw, ok := fm["relations"]
	if !ok {
		return nil, nil
	}

	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("relations must be a list")
	}

	var relations []NoteRelation
	for i, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("relations[%d] must be a mapping with type and name", i)
		}
		relType := types.RelationshipType(strings.ToLower(extractString(m, "type", "")))
		name := extractString(m, "name", "")
		if relType == "" || name == "" {
			return nil, fmt.Errorf("relations[%d] needs both type and name", i)
		}
		if !types.IsValidRelationshipType(relType) {
			return nil, fmt.Errorf("relations[%d]: unknown relationship type %q", i, relType)
		}
		relations = append(relations, NoteRelation{Type: relType, Name: name})
	}
	return relations, nil
}

// splitFrontmatter separates YAML frontmatter (between --- delimiters) from
// the markdown body. Returns empty map and full text when no frontmatter found.
func splitFrontmatter(text string) (map[string]interface{}, string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if len(lines) == 0 {
		return map[string]interface{}{}, text, nil
	}

	// Frontmatter must start with "---" on the first line.
	if strings.TrimSpace(lines[0]) != "---" {
		return map[string]interface{}{}, text, nil
	}

	// Find closing "---".
	closeIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closeIdx = i
			break
		}
	}

	if closeIdx == -1 {
		// No closing delimiter - treat entire file as body.
		return map[string]interface{}{}, text, nil
	}

	fmText := strings.Join(lines[1:closeIdx], "\n")
	fm := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
		return map[string]interface{}{}, text, fmt.Errorf("invalid YAML frontmatter: %w", err)
	}

	body := strings.Join(lines[closeIdx+1:], "\n")
	return fm, body, nil
}

// titleFromPath derives a person name from the file name (no extension).
func titleFromPath(rel string) string {
	base := filepath.Base(rel)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

// extractString reads a string value from a frontmatter map with a default.
func extractString(fm map[string]interface{}, key, fallback string) string {
	if v, ok := fm[key]; ok {
		switch s := v.(type) {
		case string:
			return strings.TrimSpace(s)
		case time.Time:
			return s.Format("2006-01-02")
		default:
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
	return fallback
}

// collectNoteFiles returns every .md file under dirPath, sorted, skipping
// hidden directories.
func collectNoteFiles(dirPath string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dirPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", dirPath, err)
	}
	sort.Strings(paths)
	return paths, nil
}
