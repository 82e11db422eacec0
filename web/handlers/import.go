package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/scrypster/kinfolk/internal/importer"
	"github.com/scrypster/kinfolk/internal/notify"
	"github.com/scrypster/kinfolk/internal/storage"
)

// ImportHandlers contains HTTP handlers for the import and export API.
type ImportHandlers struct {
	store    storage.Store
	hub      *WebSocketHub
	notifier *notify.Notifier
}

// NewImportHandlers creates a new ImportHandlers backed by the given store.
// hub and notifier may be nil; progress and completion events are then dropped.
func NewImportHandlers(store storage.Store, hub *WebSocketHub, notifier *notify.Notifier) *ImportHandlers {
	return &ImportHandlers{
		store:    store,
		hub:      hub,
		notifier: notifier,
	}
}

// newImporter builds an importer whose progress updates are forwarded to
// websocket clients.
func (h *ImportHandlers) newImporter() *importer.Importer {
	var progress importer.ProgressFunc
	if h.hub != nil {
		hub := h.hub
		progress = func(p importer.ImportProgress) {
			hub.Broadcast(map[string]interface{}{
				"event":   "import_progress",
				"payload": p,
			})
		}
	}
	return importer.New(h.store, progress)
}

// importByPathRequest is the JSON body for POST /api/import/notes.
type importByPathRequest struct {
	// Path is a directory path accessible on the server's filesystem.
	Path string `json:"path"`
}

// PostCSVImport handles POST /api/import/csv.
// The request body is the CSV roster itself (one row per relationship, or
// person-only rows with no relationship columns).
func (h *ImportHandlers) PostCSVImport(w http.ResponseWriter, r *http.Request) {
	result, err := h.newImporter().ImportCSV(r.Context(), r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "import failed", err)
		return
	}

	h.notifier.Send(r.Context(), notify.EventImportCompleted, result)
	respondJSON(w, http.StatusOK, result)
}

// PostNotesImport handles POST /api/import/notes.
// Accepts a JSON body with {"path": "/absolute/or/relative/path"} naming a
// directory of person-note markdown files on the server.
func (h *ImportHandlers) PostNotesImport(w http.ResponseWriter, r *http.Request) {
	var req importByPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if strings.TrimSpace(req.Path) == "" {
		respondError(w, http.StatusBadRequest, "path is required", nil)
		return
	}

	// Resolve the path relative to the working directory when not absolute.
	dirPath := req.Path
	if !filepath.IsAbs(dirPath) {
		wd, err := os.Getwd()
		if err != nil {
			respondError(w, http.StatusInternalServerError, "cannot determine working directory", err)
			return
		}
		dirPath = filepath.Join(wd, dirPath)
	}

	if info, err := os.Stat(dirPath); err != nil || !info.IsDir() {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("directory not found: %s", req.Path), nil)
		return
	}

	result, err := h.newImporter().ImportNotes(r.Context(), dirPath)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "import failed", err)
		return
	}

	h.notifier.Send(r.Context(), notify.EventImportCompleted, result)
	respondJSON(w, http.StatusOK, result)
}

// GetCSVExport handles GET /api/export/csv.
// The optional "set" query parameter selects "people" or "relationships";
// by default both documents are returned, separated by a blank line.
func (h *ImportHandlers) GetCSVExport(w http.ResponseWriter, r *http.Request) {
	set := r.URL.Query().Get("set")
	if set != "" && set != "people" && set != "relationships" {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid set: %s (valid: people, relationships)", set), nil)
		return
	}

	var people, rels bytes.Buffer
	if err := h.newImporter().ExportCSV(r.Context(), &people, &rels); err != nil {
		respondError(w, http.StatusInternalServerError, "export failed", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	switch set {
	case "people":
		w.Header().Set("Content-Disposition", `attachment; filename="people.csv"`)
		_, _ = w.Write(people.Bytes())
	case "relationships":
		w.Header().Set("Content-Disposition", `attachment; filename="relationships.csv"`)
		_, _ = w.Write(rels.Bytes())
	default:
		w.Header().Set("Content-Disposition", `attachment; filename="kinfolk-export.csv"`)
		_, _ = w.Write(people.Bytes())
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write(rels.Bytes())
	}
}
