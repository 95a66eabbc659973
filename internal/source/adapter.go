package source

import (
	"context"
	"time"

	"mandata/internal/domain"
	id "mandata/pkg/domain"
)

// Capability declares which open records a full snapshot from this adapter is
// authoritative for. Phase 4 (close stale) only ever acts on what the
// capability names; a feed that is not a full snapshot closes nothing.
type Capability struct {
	// ClosesMandates names the mandate kind this feed fully enumerates,
	// empty if none.
	ClosesMandates domain.MandateKind
	// ClosesDeclarations is set when the feed is the complete list of
	// currently published declarations.
	ClosesDeclarations bool
}

// SnapshotAdapter fetches a complete feed in one pass.
type SnapshotAdapter interface {
	Source() id.Source
	Capability() Capability
	Fetch(ctx context.Context) ([]Record, error)
}

// RollCallMeta is the listing entry for one roll call, parsed from the index
// before any per-item detail is fetched.
type RollCallMeta struct {
	Number       int
	Date         time.Time
	Title        string
	CountFor     int
	CountAgainst int
	CountAbstain int
}

// BallotRecord is one voter's position keyed by feed-local voter id.
type BallotRecord struct {
	VoterExternalID string
	Position        domain.VotePosition
}

// RollCallAdapter serves an ordered, append-mostly feed of roll calls. The
// engine drives it in two stages so the cursor can skip detail fetches.
type RollCallAdapter interface {
	Source() id.Source
	// List returns every roll call currently published, ascending by number.
	List(ctx context.Context) ([]RollCallMeta, error)
	// Ballots fetches the per-voter breakdown of one roll call.
	Ballots(ctx context.Context, number int) ([]BallotRecord, error)
}
