package handlers

import (
	"github.com/scrypster/kinfolk/internal/kin"
	"github.com/scrypster/kinfolk/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// LabeledPath is a relationship path decorated with its human-readable label.
type LabeledPath struct {
	kin.Path
	Label string `json:"label"`
}

// PathsResponse is the response format for GET /api/paths.
type PathsResponse struct {
	From  string        `json:"from"`
	To    string        `json:"to"`
	Paths []LabeledPath `json:"paths"`
}

// LabeledRelative is a relative match decorated with the person record and
// the label of its closest path.
type LabeledRelative struct {
	Person *types.Person `json:"person"`
	Label  string        `json:"label"`
	Paths  []kin.Path    `json:"paths"`
}

// RelativesResponse is the response format for GET /api/relatives.
type RelativesResponse struct {
	PersonID  string            `json:"person_id"`
	Predicate string            `json:"predicate"`
	Relatives []LabeledRelative `json:"relatives"`
}

// InferResponse is the response format for POST /api/infer.
type InferResponse struct {
	TotalRelationships int `json:"total_relationships"`
	InferredAdded      int `json:"inferred_added"`

	// Findings is populated when auto-validation runs after the pass.
	Findings []types.ValidationError `json:"findings,omitempty"`
}

// ValidationResponse is the response format for GET /api/validate.
type ValidationResponse struct {
	Findings []types.ValidationError `json:"findings"`
	Errors   int                     `json:"errors"`
	Warnings int                     `json:"warnings"`
	Infos    int                     `json:"infos"`
}
