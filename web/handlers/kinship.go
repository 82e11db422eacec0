package handlers

import (
	"fmt"
	"net/http"

	"github.com/scrypster/kinfolk/internal/config"
	"github.com/scrypster/kinfolk/internal/kin"
	"github.com/scrypster/kinfolk/internal/notify"
	"github.com/scrypster/kinfolk/internal/storage"
	"github.com/scrypster/kinfolk/pkg/types"
)

// KinshipHandlers contains HTTP handlers for path finding, relative queries,
// inference, and validation. Every handler works from a store snapshot so a
// query never observes a half-committed import.
type KinshipHandlers struct {
	store    storage.Store
	config   *config.Config
	hub      *WebSocketHub
	notifier *notify.Notifier
}

// NewKinshipHandlers creates a new KinshipHandlers instance. hub and
// notifier may be nil; events are then dropped.
func NewKinshipHandlers(store storage.Store, cfg *config.Config, hub *WebSocketHub, notifier *notify.Notifier) *KinshipHandlers {
	return &KinshipHandlers{
		store:    store,
		config:   cfg,
		hub:      hub,
		notifier: notifier,
	}
}

func (h *KinshipHandlers) broadcast(event string, payload interface{}) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(map[string]interface{}{
		"event":   event,
		"payload": payload,
	})
}

// maxDistance resolves the "max" query parameter against the configured
// default hop bound.
func (h *KinshipHandlers) maxDistance(r *http.Request) int {
	max := parseInt(r.URL.Query().Get("max"), 0)
	if max <= 0 {
		max = h.config.Inference.MaxPathDistance
	}
	return max
}

// FindPaths handles GET /api/paths?from=&to=&max= - enumerate relationship
// paths between two people, each labeled from the target's perspective.
func (h *KinshipHandlers) FindPaths(w http.ResponseWriter, r *http.Request) {
	fromID := r.URL.Query().Get("from")
	toID := r.URL.Query().Get("to")
	if fromID == "" || toID == "" {
		respondError(w, http.StatusBadRequest, "from and to are required", nil)
		return
	}

	people, rels, err := h.store.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load data", err)
		return
	}

	g := kin.BuildGraph(people, rels)
	if !g.Contains(fromID) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("person not found: %s", fromID), nil)
		return
	}
	if !g.Contains(toID) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("person not found: %s", toID), nil)
		return
	}

	from := findPerson(people, fromID)
	to := findPerson(people, toID)

	paths := kin.FindPaths(g, fromID, toID, h.maxDistance(r))
	labeled := make([]LabeledPath, 0, len(paths))
	for _, p := range paths {
		labeled = append(labeled, LabeledPath{
			Path:  p,
			Label: kin.LabelPath(p.Types(), from, to, people),
		})
	}

	respondJSON(w, http.StatusOK, PathsResponse{
		From:  fromID,
		To:    toID,
		Paths: labeled,
	})
}

// QueryRelatives handles GET /api/relatives?person=&predicate=&max= - find
// every person matching a structural predicate from the given person.
func (h *KinshipHandlers) QueryRelatives(w http.ResponseWriter, r *http.Request) {
	personID := r.URL.Query().Get("person")
	predicate := kin.Predicate(r.URL.Query().Get("predicate"))
	if personID == "" {
		respondError(w, http.StatusBadRequest, "person is required", nil)
		return
	}
	if !kin.IsValidPredicate(predicate) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid predicate: %s (valid: %v)", predicate, kin.ValidPredicates), nil)
		return
	}

	people, rels, err := h.store.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load data", err)
		return
	}

	g := kin.BuildGraph(people, rels)
	if !g.Contains(personID) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("person not found: %s", personID), nil)
		return
	}

	from := findPerson(people, personID)

	matches := kin.QueryRelatives(g, personID, predicate, h.maxDistance(r))
	relatives := make([]LabeledRelative, 0, len(matches))
	for _, m := range matches {
		target := findPerson(people, m.PersonID)
		// Paths are sorted shortest-first; the closest one names the relationship.
		label := kin.LabelPath(m.Paths[0].Types(), from, target, people)
		relatives = append(relatives, LabeledRelative{
			Person: target,
			Label:  label,
			Paths:  m.Paths,
		})
	}

	respondJSON(w, http.StatusOK, RelativesResponse{
		PersonID:  personID,
		Predicate: string(predicate),
		Relatives: relatives,
	})
}

// RunInference handles POST /api/infer - run one inference pass over the
// current data and commit the combined edge set atomically.
func (h *KinshipHandlers) RunInference(w http.ResponseWriter, r *http.Request) {
	people, rels, err := h.store.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load data", err)
		return
	}

	combined := kin.InferRelationships(people, rels)
	if err := h.store.ReplaceAllRelationships(r.Context(), combined); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to commit inferred relationships", err)
		return
	}

	resp := InferResponse{
		TotalRelationships: len(combined),
		InferredAdded:      len(combined) - len(rels),
	}
	if h.config.Inference.AutoValidate {
		resp.Findings = kin.Validate(people, combined)
	}

	h.broadcast("inference_completed", resp)
	h.notifier.Send(r.Context(), notify.EventInferenceCompleted, resp)
	respondJSON(w, http.StatusOK, resp)
}

// RunValidation handles GET /api/validate - run the consistency validator
// over the current data. Findings are reported, never auto-corrected.
func (h *KinshipHandlers) RunValidation(w http.ResponseWriter, r *http.Request) {
	people, rels, err := h.store.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load data", err)
		return
	}

	findings := kin.Validate(people, rels)
	resp := ValidationResponse{Findings: findings}
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityError:
			resp.Errors++
		case types.SeverityWarning:
			resp.Warnings++
		case types.SeverityInfo:
			resp.Infos++
		}
	}

	h.broadcast("validation_report", resp)
	h.notifier.Send(r.Context(), notify.EventValidationReport, resp)
	respondJSON(w, http.StatusOK, resp)
}

// findPerson returns the person with the given id from a snapshot slice,
// or nil when absent (placeholder-only graph nodes).
func findPerson(people []types.Person, id string) *types.Person {
	for i := range people {
		if people[i].ID == id {
			return &people[i]
		}
	}
	return nil
}
