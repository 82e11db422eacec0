package types

import (
	"strings"
	"time"
)

// Person represents an individual record with identity and biographical
// attributes. All kinship facts are out-of-band Relationship records; a
// Person never owns another person through its own fields.
type Person struct {
	// ID is an opaque token, unique across the person set and stable for
	// the lifetime of the record.
	ID string `json:"id"`

	// Name is the display name. FirstName and LastName are optional
	// structured forms of it.
	Name      string `json:"name"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	// Gender selects gendered kinship terms ("mother" vs "father").
	Gender Gender `json:"gender"`

	// BirthDate and DeathDate are date strings (typically YYYY-MM-DD).
	// Unparseable or absent dates are treated as unknown by every consumer.
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`
	Deceased  bool   `json:"deceased,omitempty"`

	BirthPlace string `json:"birth_place,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Notes      string `json:"notes,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// dateLayouts are the accepted layouts for person dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006",
}

// ParseDate parses a person date string tolerantly. The second return value
// is false for absent or unparseable dates; callers skip the affected check
// instead of erroring.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
