package domain

import (
	"time"

	id "mandata/pkg/domain"
)

// SyncState is the persisted per-source-partition high-water mark. Read at
// the start of a run, written only at the end of a successful one.
type SyncState struct {
	Source     id.Source
	Partition  string
	LastSyncAt time.Time
	// Cursor is the highest fully processed sequence value, nil before the
	// first run and for snapshot-only sources.
	Cursor    *string
	ItemCount int
}

// Summary is a sync run's result contract. It is always returned, even for
// partial failures, so the trigger layer can report progress honestly.
type Summary struct {
	Source        id.Source `json:"source"`
	Success       bool      `json:"success"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	Closed        int       `json:"closed"`
	Matched       int       `json:"matched"`
	NotFound      int       `json:"notFound"`
	LowConfidence int       `json:"lowConfidence"`
	CursorSkipped int       `json:"cursorSkipped"`
	Total         int       `json:"total"`
	DryRun        bool      `json:"dryRun"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Errors        []string  `json:"errors"`
}

// AddError records a row-level failure without aborting the run.
func (s *Summary) AddError(err error) {
	if err == nil {
		return
	}
	s.Errors = append(s.Errors, err.Error())
}

// Finish stamps the end time and derives Success: true iff no errors.
func (s *Summary) Finish(at time.Time) {
	s.FinishedAt = at
	s.Success = len(s.Errors) == 0
}
