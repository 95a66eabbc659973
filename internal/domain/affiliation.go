package domain

import (
	"time"

	"github.com/google/uuid"

	id "mandata/pkg/domain"
)

// Affiliation links a person to an organization over time. Same open/close
// semantics as Mandate. A person has at most one open affiliation, and their
// CurrentOrganizationID must always equal its organization.
type Affiliation struct {
	ID             uuid.UUID
	PersonID       id.PersonID
	OrganizationID id.OrganizationID
	Role           string
	StartDate      time.Time
	EndDate        *time.Time
	IsCurrent      bool
	Source         id.Source
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAffiliation opens an affiliation.
func NewAffiliation(personID id.PersonID, orgID id.OrganizationID, start time.Time, source id.Source, now time.Time) *Affiliation {
	if start.IsZero() {
		start = now
	}
	return &Affiliation{
		ID:             uuid.New(),
		PersonID:       personID,
		OrganizationID: orgID,
		StartDate:      start,
		IsCurrent:      true,
		Source:         source,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Close ends the affiliation.
func (a *Affiliation) Close(at time.Time) {
	end := at
	a.EndDate = &end
	a.IsCurrent = false
	a.UpdatedAt = at
}

// Reopen reactivates a closed affiliation when the membership reappears.
func (a *Affiliation) Reopen(start time.Time, now time.Time) {
	if !start.IsZero() {
		a.StartDate = start
	}
	a.EndDate = nil
	a.IsCurrent = true
	a.UpdatedAt = now
}
