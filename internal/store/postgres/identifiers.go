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
	dErrors "mandata/pkg/domain-errors"
)

// IdentifierStore implements store.IdentifierStore.
type IdentifierStore struct {
	pool *pgxpool.Pool
}

func (s *IdentifierStore) Find(ctx context.Context, source id.Source, externalID string) (*domain.ExternalIdentifier, error) {
	var ident domain.ExternalIdentifier
	err := s.pool.QueryRow(ctx, `
		SELECT source, external_id, owner_kind, owner_id, created_at
		FROM external_identifiers
		WHERE source = $1 AND external_id = $2`,
		source, externalID).
		Scan(&ident.Source, &ident.ExternalID, &ident.OwnerKind, &ident.OwnerID,
			&ident.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find identifier: %w", err)
	}
	return &ident, nil
}

func (s *IdentifierStore) BySource(ctx context.Context, source id.Source) (map[string]domain.ExternalIdentifier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source, external_id, owner_kind, owner_id, created_at
		FROM external_identifiers
		WHERE source = $1`, source)
	if err != nil {
		return nil, fmt.Errorf("list identifiers: %w", err)
	}
	defer rows.Close()

	idents := make(map[string]domain.ExternalIdentifier)
	for rows.Next() {
		var ident domain.ExternalIdentifier
		err := rows.Scan(&ident.Source, &ident.ExternalID, &ident.OwnerKind,
			&ident.OwnerID, &ident.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan identifier: %w", err)
		}
		idents[ident.ExternalID] = ident
	}
	return idents, rows.Err()
}

// Attach inserts the anchor if the pair is free. A pair already bound to the
// same owner is a no-op so retried rows stay idempotent; bound to a different
// owner it is a conflict, never a reassignment.
func (s *IdentifierStore) Attach(ctx context.Context, ident domain.ExternalIdentifier) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO external_identifiers (source, external_id, owner_kind,
			owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, external_id) DO NOTHING`,
		ident.Source, ident.ExternalID, ident.OwnerKind, ident.OwnerID,
		ident.CreatedAt)
	if err != nil {
		return wrapWriteErr(err, "attach identifier")
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	existing, err := s.Find(ctx, ident.Source, ident.ExternalID)
	if err != nil {
		return fmt.Errorf("attach identifier: %w", err)
	}
	if existing.OwnerKind == ident.OwnerKind && existing.OwnerID == ident.OwnerID {
		return nil
	}
	return dErrors.New(dErrors.CodeConflict,
		fmt.Sprintf("identifier %s/%s already bound to another %s",
			ident.Source, ident.ExternalID, existing.OwnerKind))
}
