package types

// ValidationErrorType categorizes a consistency finding.
type ValidationErrorType string

const (
	ValidationCircularReference     ValidationErrorType = "circular_reference"
	ValidationAgeConflict           ValidationErrorType = "age_conflict"
	ValidationDuplicateRelationship ValidationErrorType = "duplicate_relationship"
	ValidationMissingData           ValidationErrorType = "missing_data"
	ValidationLogicalError          ValidationErrorType = "logical_error"
)

// ValidationSeverity ranks how serious a finding is.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
	SeverityInfo    ValidationSeverity = "info"
)

// ValidationError is a single consistency finding produced by the
// validator. Findings are reported, never auto-corrected; a human resolves
// them through the presentation layer.
type ValidationError struct {
	ID       string              `json:"id"`
	Type     ValidationErrorType `json:"type"`
	Severity ValidationSeverity  `json:"severity"`
	Message  string              `json:"message"`

	// PersonIDs lists the people involved in this finding.
	PersonIDs []string `json:"person_ids"`

	// Suggestion is optional remediation text for display.
	Suggestion string `json:"suggestion,omitempty"`
}
