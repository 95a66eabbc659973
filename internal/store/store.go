// Package store defines the persistence ports consumed by the reconciliation
// engine. Implementations live in store/memory (tests) and store/postgres.
package store

import (
	"context"

	"mandata/internal/domain"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
)

// ErrNotFound is what implementations return for missing records.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// PersonStore persists reconciled persons.
type PersonStore interface {
	Get(ctx context.Context, personID id.PersonID) (*domain.Person, error)
	// All streams every person once per run so the resolver can build its
	// in-memory index instead of querying per row.
	All(ctx context.Context) ([]domain.Person, error)
	Create(ctx context.Context, p *domain.Person) error
	Update(ctx context.Context, p *domain.Person) error
}

// OrganizationStore persists parties and groups.
type OrganizationStore interface {
	Get(ctx context.Context, orgID id.OrganizationID) (*domain.Organization, error)
	BySlug(ctx context.Context, slug string) (*domain.Organization, error)
	All(ctx context.Context) ([]domain.Organization, error)
	Create(ctx context.Context, o *domain.Organization) error
	Update(ctx context.Context, o *domain.Organization) error
}

// IdentifierStore persists the (source, external id) identity anchors.
type IdentifierStore interface {
	Find(ctx context.Context, source id.Source, externalID string) (*domain.ExternalIdentifier, error)
	// BySource preloads every anchor for one source, keyed by external id.
	BySource(ctx context.Context, source id.Source) (map[string]domain.ExternalIdentifier, error)
	// Attach binds an anchor to its owner. Returns CodeConflict if the pair
	// already exists bound to a different owner: anchors are never reassigned
	// silently.
	Attach(ctx context.Context, ident domain.ExternalIdentifier) error
}

// MandateStore persists offices.
type MandateStore interface {
	// OpenByKind snapshots every open mandate of one kind before a run
	// mutates anything (phase 1).
	OpenByKind(ctx context.Context, kind domain.MandateKind) ([]domain.Mandate, error)
	// ByPerson returns all mandates of a person, open or closed, so the
	// lifecycle manager can refresh or reopen by natural key.
	ByPerson(ctx context.Context, personID id.PersonID) ([]domain.Mandate, error)
	Create(ctx context.Context, m *domain.Mandate) error
	Update(ctx context.Context, m *domain.Mandate) error
}

// AffiliationStore persists party memberships.
type AffiliationStore interface {
	OpenBySource(ctx context.Context, source id.Source) ([]domain.Affiliation, error)
	ByPerson(ctx context.Context, personID id.PersonID) ([]domain.Affiliation, error)
	Create(ctx context.Context, a *domain.Affiliation) error
	Update(ctx context.Context, a *domain.Affiliation) error
}

// DeclarationStore persists published declarations.
type DeclarationStore interface {
	OpenBySource(ctx context.Context, source id.Source) ([]domain.Declaration, error)
	ByExternalID(ctx context.Context, source id.Source, externalID string) (*domain.Declaration, error)
	Create(ctx context.Context, d *domain.Declaration) error
	Update(ctx context.Context, d *domain.Declaration) error
}

// RollCallStore persists roll calls and their ballots. ReplaceBallots must be
// atomic: readers never observe a half-deleted ballot set.
type RollCallStore interface {
	Get(ctx context.Context, source id.Source, number int) (*domain.RollCall, error)
	Upsert(ctx context.Context, rc *domain.RollCall) error
	ReplaceBallots(ctx context.Context, source id.Source, number int, ballots []domain.Ballot) error
}

// DecisionStore persists judicial decisions keyed by (source, external id).
type DecisionStore interface {
	ByExternalID(ctx context.Context, source id.Source, externalID string) (*domain.JudicialDecision, error)
	Create(ctx context.Context, d *domain.JudicialDecision) error
	Update(ctx context.Context, d *domain.JudicialDecision) error
}

// SyncStateStore persists cursors and run metadata per source partition.
type SyncStateStore interface {
	Get(ctx context.Context, source id.Source, partition string) (*domain.SyncState, error)
	Put(ctx context.Context, state domain.SyncState) error
}

// RunStore keeps run summaries for the status endpoint.
type RunStore interface {
	Append(ctx context.Context, summary domain.Summary) error
	Last(ctx context.Context, source id.Source) (*domain.Summary, error)
}

// Stores bundles every port so the pipeline constructor stays readable.
type Stores struct {
	Persons       PersonStore
	Organizations OrganizationStore
	Identifiers   IdentifierStore
	Mandates      MandateStore
	Affiliations  AffiliationStore
	Declarations  DeclarationStore
	RollCalls     RollCallStore
	Decisions     DecisionStore
	SyncState     SyncStateStore
	Runs          RunStore
}
