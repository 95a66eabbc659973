package domain

import (
	"time"

	"github.com/google/uuid"

	id "mandata/pkg/domain"
)

// MandateKind is the type of office a person holds.
type MandateKind string

const (
	MandateDepute   MandateKind = "depute"
	MandateSenateur MandateKind = "senateur"
	MandateMinistre MandateKind = "ministre"
	MandateMaire    MandateKind = "maire"
)

// Mandate is a time-bounded office held by a person. Invariant: IsCurrent is
// true iff EndDate is nil; Close sets both atomically and nothing else
// touches them independently.
type Mandate struct {
	ID          uuid.UUID
	PersonID    id.PersonID
	Kind        MandateKind
	Institution string
	// Department is the constituency/locality code ("75", "2A"); empty for
	// national offices.
	Department string
	Title      string
	StartDate  time.Time
	EndDate    *time.Time
	IsCurrent  bool
	Source     id.Source
	// ExternalID is the feed-local id of the owning person, kept here so
	// stale detection can key on it even when reference data is missing.
	ExternalID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewMandate opens a mandate. StartDate falling back to now keeps the
// invariant even for feeds that omit it.
func NewMandate(personID id.PersonID, kind MandateKind, institution string, start time.Time, source id.Source, now time.Time) *Mandate {
	if start.IsZero() {
		start = now
	}
	return &Mandate{
		ID:          uuid.New(),
		PersonID:    personID,
		Kind:        kind,
		Institution: institution,
		StartDate:   start,
		IsCurrent:   true,
		Source:      source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NaturalKey identifies the at-most-one open mandate a person may hold for a
// given office: (kind, institution, department).
func (m *Mandate) NaturalKey() string {
	return string(m.Kind) + "|" + m.Institution + "|" + m.Department
}

// Close ends the mandate. Both fields move together so the open/close
// invariant cannot be half-applied.
func (m *Mandate) Close(at time.Time) {
	end := at
	m.EndDate = &end
	m.IsCurrent = false
	m.UpdatedAt = at
}

// Reopen reactivates a previously closed mandate for a re-elected holder
// instead of creating a duplicate row.
func (m *Mandate) Reopen(start time.Time, now time.Time) {
	if !start.IsZero() {
		m.StartDate = start
	}
	m.EndDate = nil
	m.IsCurrent = true
	m.UpdatedAt = now
}
