package domain

import (
	"time"

	"github.com/google/uuid"

	id "mandata/pkg/domain"
)

// Declaration is a published interest/asset declaration. It is time-bounded
// like a mandate: open while the declaration is listed in the registry's
// current snapshot, closed when it disappears from one.
type Declaration struct {
	ID       uuid.UUID
	PersonID id.PersonID
	// Kind is the registry's document type ("interets", "patrimoine").
	Kind        string
	ExternalID  string
	PublishedAt time.Time
	EndDate     *time.Time
	IsCurrent   bool
	Source      id.Source
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewDeclaration opens a declaration.
func NewDeclaration(personID id.PersonID, kind, externalID string, publishedAt time.Time, source id.Source, now time.Time) *Declaration {
	if publishedAt.IsZero() {
		publishedAt = now
	}
	return &Declaration{
		ID:          uuid.New(),
		PersonID:    personID,
		Kind:        kind,
		ExternalID:  externalID,
		PublishedAt: publishedAt,
		IsCurrent:   true,
		Source:      source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Close marks the declaration as no longer listed.
func (d *Declaration) Close(at time.Time) {
	end := at
	d.EndDate = &end
	d.IsCurrent = false
	d.UpdatedAt = at
}

// Reopen reactivates a delisted declaration that reappears.
func (d *Declaration) Reopen(now time.Time) {
	d.EndDate = nil
	d.IsCurrent = true
	d.UpdatedAt = now
}
