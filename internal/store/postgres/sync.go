package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
)

// DecisionStore implements store.DecisionStore.
type DecisionStore struct {
	pool *pgxpool.Pool
}

const decisionColumns = `id, person_id, source, external_id, jurisdiction,
	decided_at, summary, raw_status, created_at, updated_at`

func (s *DecisionStore) ByExternalID(ctx context.Context, source id.Source, externalID string) (*domain.JudicialDecision, error) {
	var d domain.JudicialDecision
	err := s.pool.QueryRow(ctx,
		`SELECT `+decisionColumns+` FROM judicial_decisions
		WHERE source = $1 AND external_id = $2`, source, externalID).
		Scan(&d.ID, &d.PersonID, &d.Source, &d.ExternalID, &d.Jurisdiction,
			&d.DecidedAt, &d.Summary, &d.RawStatus, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return &d, nil
}

func (s *DecisionStore) Create(ctx context.Context, d *domain.JudicialDecision) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO judicial_decisions (id, person_id, source, external_id,
			jurisdiction, decided_at, summary, raw_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.PersonID, d.Source, d.ExternalID, d.Jurisdiction, d.DecidedAt,
		d.Summary, d.RawStatus, d.CreatedAt, d.UpdatedAt)
	return wrapWriteErr(err, "create decision")
}

func (s *DecisionStore) Update(ctx context.Context, d *domain.JudicialDecision) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE judicial_decisions SET jurisdiction = $2, decided_at = $3,
			summary = $4, raw_status = $5, updated_at = $6
		WHERE id = $1`,
		d.ID, d.Jurisdiction, d.DecidedAt, d.Summary, d.RawStatus, d.UpdatedAt)
	if err != nil {
		return wrapWriteErr(err, "update decision")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SyncStateStore implements store.SyncStateStore.
type SyncStateStore struct {
	pool *pgxpool.Pool
}

func (s *SyncStateStore) Get(ctx context.Context, source id.Source, partition string) (*domain.SyncState, error) {
	var state domain.SyncState
	err := s.pool.QueryRow(ctx, `
		SELECT source, partition, last_sync_at, cursor, item_count
		FROM sync_state
		WHERE source = $1 AND partition = $2`, source, partition).
		Scan(&state.Source, &state.Partition, &state.LastSyncAt, &state.Cursor,
			&state.ItemCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	return &state, nil
}

func (s *SyncStateStore) Put(ctx context.Context, state domain.SyncState) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sync_state (source, partition, last_sync_at, cursor, item_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, partition) DO UPDATE SET
			last_sync_at = EXCLUDED.last_sync_at,
			cursor = EXCLUDED.cursor,
			item_count = EXCLUDED.item_count`,
		state.Source, state.Partition, state.LastSyncAt, state.Cursor,
		state.ItemCount)
	return wrapWriteErr(err, "put sync state")
}

// RunStore implements store.RunStore. Summaries are stored whole as JSONB:
// the status endpoint replays them verbatim and never queries inside.
type RunStore struct {
	pool *pgxpool.Pool
}

func (s *RunStore) Append(ctx context.Context, summary domain.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sync_runs (source, summary, finished_at)
		VALUES ($1, $2, $3)`,
		summary.Source, payload, summary.FinishedAt)
	return wrapWriteErr(err, "append run")
}

func (s *RunStore) Last(ctx context.Context, source id.Source) (*domain.Summary, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT summary FROM sync_runs
		WHERE source = $1
		ORDER BY finished_at DESC, id DESC
		LIMIT 1`, source).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get last run: %w", err)
	}
	var summary domain.Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("decode run summary: %w", err)
	}
	return &summary, nil
}
