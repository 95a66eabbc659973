// Package postgres implements the store ports on PostgreSQL via pgx.
// Uniqueness violations surface as CodeConflict so the pipeline can count
// them as duplicates instead of aborting the batch.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandata/internal/store"
	dErrors "mandata/pkg/domain-errors"
)

// New builds the full set of Postgres-backed stores over one pool.
func New(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Persons:       &PersonStore{pool: pool},
		Organizations: &OrganizationStore{pool: pool},
		Identifiers:   &IdentifierStore{pool: pool},
		Mandates:      &MandateStore{pool: pool},
		Affiliations:  &AffiliationStore{pool: pool},
		Declarations:  &DeclarationStore{pool: pool},
		RollCalls:     &RollCallStore{pool: pool},
		Decisions:     &DecisionStore{pool: pool},
		SyncState:     &SyncStateStore{pool: pool},
		Runs:          &RunStore{pool: pool},
	}
}

const uniqueViolation = "23505"

// wrapWriteErr translates constraint violations into coded conflicts.
func wrapWriteErr(err error, message string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return dErrors.Wrap(err, dErrors.CodeConflict, message)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
