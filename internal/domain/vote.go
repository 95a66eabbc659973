package domain

import (
	"time"

	id "mandata/pkg/domain"
)

// VotePosition is how one member voted in a roll call.
type VotePosition string

const (
	VotePour       VotePosition = "pour"
	VoteContre     VotePosition = "contre"
	VoteAbstention VotePosition = "abstention"
	VoteAbsent     VotePosition = "absent"
)

// RollCall is one numbered public vote. The feed is append-mostly and ordered
// by Number, which is what the incremental cursor tracks.
type RollCall struct {
	Source id.Source
	Number int
	Date   time.Time
	Title  string
	// Tallies extracted from the session page.
	CountFor     int
	CountAgainst int
	CountAbstain int
	// BallotHash fingerprints the full ballot set so unchanged details can
	// skip the delete+reinsert on revisits.
	BallotHash string
	UpdatedAt  time.Time
}

// Ballot is one member's position in one roll call.
type Ballot struct {
	Source   id.Source
	Number   int
	PersonID id.PersonID
	// ExternalID is the voter's feed-local id, retained for ballots whose
	// person could not be resolved yet.
	ExternalID string
	Position   VotePosition
}
