package domain

import (
	"time"

	id "mandata/pkg/domain"
	"mandata/pkg/platform/slug"
)

// Organization is a party or political group. Identity is anchored the same
// way as Person: external identifiers first, then the name slug.
type Organization struct {
	ID   id.OrganizationID
	Name string
	Slug string
	// Acronym is the short label feeds commonly key on ("LFI", "RN").
	Acronym string
	// Color is a display hex code merged under the same priority policy as
	// person fields.
	Color      string
	Website    string
	Provenance Provenance
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewOrganization builds an organization with a fresh ID and computed slug.
func NewOrganization(name string, now time.Time) *Organization {
	return &Organization{
		ID:         id.NewOrganizationID(),
		Name:       name,
		Slug:       slug.Name(name),
		Provenance: Provenance{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
