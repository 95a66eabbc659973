package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
)

// RollCallStore implements store.RollCallStore.
type RollCallStore struct {
	pool *pgxpool.Pool
}

func (s *RollCallStore) Get(ctx context.Context, source id.Source, number int) (*domain.RollCall, error) {
	var rc domain.RollCall
	err := s.pool.QueryRow(ctx, `
		SELECT source, number, date, title, count_for, count_against,
			count_abstain, ballot_hash, updated_at
		FROM roll_calls
		WHERE source = $1 AND number = $2`, source, number).
		Scan(&rc.Source, &rc.Number, &rc.Date, &rc.Title, &rc.CountFor,
			&rc.CountAgainst, &rc.CountAbstain, &rc.BallotHash, &rc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get roll call: %w", err)
	}
	return &rc, nil
}

func (s *RollCallStore) Upsert(ctx context.Context, rc *domain.RollCall) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO roll_calls (source, number, date, title, count_for,
			count_against, count_abstain, ballot_hash, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source, number) DO UPDATE SET
			date = EXCLUDED.date,
			title = EXCLUDED.title,
			count_for = EXCLUDED.count_for,
			count_against = EXCLUDED.count_against,
			count_abstain = EXCLUDED.count_abstain,
			ballot_hash = EXCLUDED.ballot_hash,
			updated_at = EXCLUDED.updated_at`,
		rc.Source, rc.Number, rc.Date, rc.Title, rc.CountFor, rc.CountAgainst,
		rc.CountAbstain, rc.BallotHash, rc.UpdatedAt)
	return wrapWriteErr(err, "upsert roll call")
}

// ReplaceBallots swaps the full ballot set in one transaction so readers
// never observe a half-deleted collection.
func (s *RollCallStore) ReplaceBallots(ctx context.Context, source id.Source, number int, ballots []domain.Ballot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace ballots: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM ballots WHERE source = $1 AND number = $2`, source, number)
	if err != nil {
		return wrapWriteErr(err, "delete ballots")
	}

	batch := &pgx.Batch{}
	for _, b := range ballots {
		// Unresolved voters carry a zero person id; store NULL so the
		// foreign key holds until the person materializes.
		var personID any
		if !b.PersonID.IsZero() {
			personID = b.PersonID
		}
		batch.Queue(`
			INSERT INTO ballots (source, number, person_id, external_id, position)
			VALUES ($1, $2, $3, $4, $5)`,
			source, number, personID, b.ExternalID, b.Position)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return wrapWriteErr(err, "insert ballots")
	}
	return tx.Commit(ctx)
}
