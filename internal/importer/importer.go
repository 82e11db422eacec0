// Package importer loads family rosters into a Kinfolk store and exports
// them back out. Two inputs are supported: relationship CSVs and
// directories of person notes with YAML frontmatter.
package importer

import (
	"time"

	"github.com/scrypster/kinfolk/internal/storage"
)

// ImportResult is the summary produced by a completed import.
type ImportResult struct {
	JobID                string        `json:"job_id"`
	RowsFound            int           `json:"rows_found"`
	PeopleCreated        int           `json:"people_created"`
	PeopleUpdated        int           `json:"people_updated"`
	RelationshipsCreated int           `json:"relationships_created"`
	RowsSkipped          int           `json:"rows_skipped"`
	Errors               []string      `json:"errors,omitempty"`
	Duration             time.Duration `json:"duration_ms"`
}

// ImportProgress carries live progress data for a running import.
type ImportProgress struct {
	JobID       string `json:"job_id"`
	Stage       string `json:"stage"` // "running" | "complete" | "failed"
	Processed   int    `json:"processed"`
	Total       int    `json:"total"`
	CurrentItem string `json:"current_item,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ProgressFunc receives progress updates during an import. The web layer
// forwards these to websocket clients.
type ProgressFunc func(ImportProgress)

// Importer loads people and relationships into a store.
type Importer struct {
	store    storage.Store
	progress ProgressFunc
}

// New creates an importer over the given store. progress may be nil.
func New(store storage.Store, progress ProgressFunc) *Importer {
	return &Importer{store: store, progress: progress}
}

func (imp *Importer) report(p ImportProgress) {
	if imp.progress != nil {
		imp.progress(p)
	}
}
