package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/kinfolk/internal/importer"
	"github.com/scrypster/kinfolk/internal/storage"
	sqlitestore "github.com/scrypster/kinfolk/internal/storage/sqlite"
)

func newTestImport(t *testing.T) (*ImportHandlers, storage.Store) {
	t.Helper()
	store, err := sqlitestore.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewImportHandlers(store, nil, nil), store
}

func TestPostCSVImport(t *testing.T) {
	h, store := newTestImport(t)

	csvData := `person_name,relationship_type,related_person_name
Alice,parent,Mom
Bob,parent,Mom
`
	req := httptest.NewRequest(http.MethodPost, "/api/import/csv", strings.NewReader(csvData))
	rec := httptest.NewRecorder()
	h.PostCSVImport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result importer.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.PeopleCreated)
	assert.Equal(t, 4, result.RelationshipsCreated, "each declared edge gets a reciprocal")

	people, err := store.AllPeople(context.Background())
	require.NoError(t, err)
	assert.Len(t, people, 3)
}

func TestPostCSVImportRejectsGarbage(t *testing.T) {
	h, _ := newTestImport(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/csv", strings.NewReader(""))
	rec := httptest.NewRecorder()
	h.PostCSVImport(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostNotesImport(t *testing.T) {
	h, store := newTestImport(t)

	dir := t.TempDir()
	note := `---
name: Marie Curie
gender: female
relations:
  - type: spouse
    name: Pierre Curie
---
Pioneer of radioactivity research.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marie-curie.md"), []byte(note), 0o644))

	req := httptest.NewRequest(http.MethodPost, "/api/import/notes",
		strings.NewReader(`{"path":"`+dir+`"}`))
	rec := httptest.NewRecorder()
	h.PostNotesImport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result importer.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.PeopleCreated, "note subject plus spouse placeholder")
	assert.Equal(t, 2, result.RelationshipsCreated)

	people, err := store.AllPeople(context.Background())
	require.NoError(t, err)
	require.Len(t, people, 2)
}

func TestPostNotesImportRequiresPath(t *testing.T) {
	h, _ := newTestImport(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/notes", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.PostNotesImport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/import/notes",
		strings.NewReader(`{"path":"/definitely/not/a/real/dir"}`))
	rec = httptest.NewRecorder()
	h.PostNotesImport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCSVExport(t *testing.T) {
	h, store := newTestImport(t)

	csvData := "person_name,relationship_type,related_person_name\nAlice,parent,Mom\n"
	req := httptest.NewRequest(http.MethodPost, "/api/import/csv", strings.NewReader(csvData))
	h.PostCSVImport(httptest.NewRecorder(), req)

	_, err := store.AllPeople(context.Background())
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)
	rec := httptest.NewRecorder()
	h.GetCSVExport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "id,name,first_name")
	assert.Contains(t, body, "id,person_id,related_person_id")
	assert.Contains(t, body, "Alice")

	req = httptest.NewRequest(http.MethodGet, "/api/export/csv?set=people", nil)
	rec = httptest.NewRecorder()
	h.GetCSVExport(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "related_person_id")

	req = httptest.NewRequest(http.MethodGet, "/api/export/csv?set=everything", nil)
	rec = httptest.NewRecorder()
	h.GetCSVExport(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
