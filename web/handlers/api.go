package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/scrypster/kinfolk/internal/config"
	"github.com/scrypster/kinfolk/internal/storage"
	"github.com/scrypster/kinfolk/pkg/types"
)

// APIHandlers contains HTTP handlers for the people and relationship REST API.
type APIHandlers struct {
	store  storage.Store
	config *config.Config
	db     *sql.DB // Optional database connection for settings persistence
	hub    *WebSocketHub
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(store storage.Store, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		store:  store,
		config: cfg,
	}
}

// NewAPIHandlersWithDB creates a new APIHandlers instance with settings-table support.
func NewAPIHandlersWithDB(store storage.Store, cfg *config.Config, db *sql.DB) *APIHandlers {
	return &APIHandlers{
		store:  store,
		config: cfg,
		db:     db,
	}
}

// SetHub wires the websocket hub so mutations can be broadcast to clients.
func (h *APIHandlers) SetHub(hub *WebSocketHub) {
	h.hub = hub
}

func (h *APIHandlers) broadcast(event string, payload interface{}) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(map[string]interface{}{
		"event":   event,
		"payload": payload,
	})
}

// ListPeople handles GET /api/people - list people with pagination.
func (h *APIHandlers) ListPeople(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Page:      parseInt(r.URL.Query().Get("page"), 1),
		Limit:     parseInt(r.URL.Query().Get("limit"), 50),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	opts.Normalize()

	result, err := h.store.ListPeople(r.Context(), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list people", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetPerson handles GET /api/people/{id} - get a single person by ID.
func (h *APIHandlers) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	person, err := h.store.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}

	respondJSON(w, http.StatusOK, person)
}

// CreatePersonRequest represents the request body for creating a person.
type CreatePersonRequest struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Gender     string `json:"gender,omitempty"`
	BirthDate  string `json:"birth_date,omitempty"`
	DeathDate  string `json:"death_date,omitempty"`
	Deceased   bool   `json:"deceased,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Notes      string `json:"notes,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
}

// CreatePerson handles POST /api/people - create a new person.
// An ID is generated when the request does not carry one.
func (h *APIHandlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	gender := types.Gender(req.Gender)
	if req.Gender == "" {
		gender = types.GenderOther
	}
	if !types.IsValidGender(gender) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid gender: %s", req.Gender), nil)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	person := &types.Person{
		ID:         id,
		Name:       req.Name,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Gender:     gender,
		BirthDate:  req.BirthDate,
		DeathDate:  req.DeathDate,
		Deceased:   req.Deceased,
		BirthPlace: req.BirthPlace,
		Occupation: req.Occupation,
		Notes:      req.Notes,
		PhotoURL:   req.PhotoURL,
	}

	if err := h.store.StorePerson(r.Context(), person); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid person", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create person", err)
		return
	}

	h.broadcast("person_created", person)
	respondJSON(w, http.StatusCreated, person)
}

// UpdatePersonRequest represents the request body for updating a person.
// All fields are optional for partial updates.
type UpdatePersonRequest struct {
	Name       *string `json:"name,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Gender     *string `json:"gender,omitempty"`
	BirthDate  *string `json:"birth_date,omitempty"`
	DeathDate  *string `json:"death_date,omitempty"`
	Deceased   *bool   `json:"deceased,omitempty"`
	BirthPlace *string `json:"birth_place,omitempty"`
	Occupation *string `json:"occupation,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
}

// UpdatePerson handles PATCH /api/people/{id} - update an existing person.
// Supports partial updates (only updates fields that are provided).
func (h *APIHandlers) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	var req UpdatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	person, err := h.store.GetPerson(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get person", err)
		return
	}

	if req.Name != nil {
		person.Name = *req.Name
	}
	if req.FirstName != nil {
		person.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		person.LastName = *req.LastName
	}
	if req.Gender != nil {
		gender := types.Gender(*req.Gender)
		if !types.IsValidGender(gender) {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("invalid gender: %s", *req.Gender), nil)
			return
		}
		person.Gender = gender
	}
	if req.BirthDate != nil {
		person.BirthDate = *req.BirthDate
	}
	if req.DeathDate != nil {
		person.DeathDate = *req.DeathDate
	}
	if req.Deceased != nil {
		person.Deceased = *req.Deceased
	}
	if req.BirthPlace != nil {
		person.BirthPlace = *req.BirthPlace
	}
	if req.Occupation != nil {
		person.Occupation = *req.Occupation
	}
	if req.Notes != nil {
		person.Notes = *req.Notes
	}
	if req.PhotoURL != nil {
		person.PhotoURL = *req.PhotoURL
	}

	person.UpdatedAt = time.Now()

	if err := h.store.StorePerson(r.Context(), person); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update person", err)
		return
	}

	h.broadcast("person_updated", person)
	respondJSON(w, http.StatusOK, person)
}

// DeletePerson handles DELETE /api/people/{id} - delete a person.
// Every relationship referencing the person goes with them.
func (h *APIHandlers) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "person ID is required", nil)
		return
	}

	if err := h.store.DeletePerson(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "person not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete person", err)
		return
	}

	h.broadcast("person_deleted", map[string]string{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// ListRelationships handles GET /api/relationships - list relationships with
// pagination. The optional "person" query parameter scopes the list to edges
// held by that person.
func (h *APIHandlers) ListRelationships(w http.ResponseWriter, r *http.Request) {
	opts := storage.ListOptions{
		Page:      parseInt(r.URL.Query().Get("page"), 1),
		Limit:     parseInt(r.URL.Query().Get("limit"), 50),
		SortBy:    r.URL.Query().Get("sort_by"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}
	opts.Normalize()

	result, err := h.store.ListRelationships(r.Context(), r.URL.Query().Get("person"), opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list relationships", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// CreateRelationshipRequest represents the request body for creating a relationship.
type CreateRelationshipRequest struct {
	PersonID        string  `json:"person_id"`
	RelatedPersonID string  `json:"related_person_id"`
	Type            string  `json:"type"`
	Confidence      float64 `json:"confidence,omitempty"`
}

// CreateRelationship handles POST /api/relationships - declare a relationship.
// The reciprocal edge is written in the same request so the pairing invariant
// holds for user-declared facts.
func (h *APIHandlers) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	if req.PersonID == "" || req.RelatedPersonID == "" {
		respondError(w, http.StatusBadRequest, "person_id and related_person_id are required", nil)
		return
	}
	if req.PersonID == req.RelatedPersonID {
		respondError(w, http.StatusBadRequest, "a person cannot relate to themselves", nil)
		return
	}

	relType := types.RelationshipType(req.Type)
	if !types.IsValidRelationshipType(relType) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid relationship type: %s", req.Type), nil)
		return
	}

	// Both endpoints must exist; relationships never create people.
	for _, id := range []string{req.PersonID, req.RelatedPersonID} {
		if _, err := h.store.GetPerson(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respondError(w, http.StatusNotFound,
					fmt.Sprintf("person not found: %s", id), err)
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to look up person", err)
			return
		}
	}

	confidence := req.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = 1.0
	}

	rel := &types.Relationship{
		ID:              uuid.New().String(),
		PersonID:        req.PersonID,
		RelatedPersonID: req.RelatedPersonID,
		Type:            relType,
		Confidence:      confidence,
	}

	if err := h.store.StoreRelationship(r.Context(), rel); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create relationship", err)
		return
	}

	if recip := rel.Reciprocal(uuid.New().String()); recip != nil {
		if err := h.store.StoreRelationship(r.Context(), recip); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to create reciprocal relationship", err)
			return
		}
	}

	h.broadcast("relationship_created", rel)
	respondJSON(w, http.StatusCreated, rel)
}

// DeleteRelationship handles DELETE /api/relationships/{id}.
// Only the named edge is removed; the caller deletes the reciprocal
// separately if the pairing should go too.
func (h *APIHandlers) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	id := extractID(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "relationship ID is required", nil)
		return
	}

	if err := h.store.DeleteRelationship(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "relationship not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete relationship", err)
		return
	}

	h.broadcast("relationship_deleted", map[string]string{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

// UserConfigRequest represents the request body for user config updates.
type UserConfigRequest struct {
	UserName string `json:"user_name"`
}

// UserConfigResponse represents the response format for GET /api/config/user.
type UserConfigResponse struct {
	UserName string `json:"user_name"`
}

// GetUserConfig handles GET /api/config/user - retrieve user configuration.
func (h *APIHandlers) GetUserConfig(w http.ResponseWriter, r *http.Request) {
	// If we have a database connection, load fresh from DB to ensure latest values
	userName := h.config.User.UserName
	if h.db != nil {
		var dbUserName string
		err := h.db.QueryRow("SELECT value FROM settings WHERE key = ?", "user_name").Scan(&dbUserName)
		if err == nil {
			userName = dbUserName
		}
		// If not found in DB or error, fall back to in-memory value
	}

	respondJSON(w, http.StatusOK, UserConfigResponse{UserName: userName})
}

// PostUserConfig handles POST /api/config/user - update user configuration.
func (h *APIHandlers) PostUserConfig(w http.ResponseWriter, r *http.Request) {
	var req UserConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	h.config.User.UserName = req.UserName

	// Persist to database if database connection is available
	if h.db != nil {
		if err := h.config.SaveConfig(h.db); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to save config", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, UserConfigResponse{UserName: h.config.User.UserName})
}

// Helper functions

// extractID extracts a path parameter from the request.
func extractID(r *http.Request, key string) string {
	return r.PathValue(key)
}

// parseInt parses an integer from a string, returning defaultValue if parsing fails.
func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, log but don't try to write another response
		// (headers already sent)
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
