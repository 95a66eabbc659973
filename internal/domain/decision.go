package domain

import (
	"time"

	"github.com/google/uuid"

	id "mandata/pkg/domain"
)

// JudicialDecision is a case-law record linked to a person. The engine stores
// what the search API returned; assigning a legal status/category label is a
// separate moderation concern and writes a different column set.
type JudicialDecision struct {
	ID           uuid.UUID
	PersonID     id.PersonID
	Source       id.Source
	ExternalID   string
	Jurisdiction string
	DecidedAt    time.Time
	Summary      string
	// RawStatus is the label as found in the feed, unclassified.
	RawStatus string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJudicialDecision builds a decision record.
func NewJudicialDecision(personID id.PersonID, source id.Source, externalID string, now time.Time) *JudicialDecision {
	return &JudicialDecision{
		ID:         uuid.New(),
		PersonID:   personID,
		Source:     source,
		ExternalID: externalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
