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

// OrganizationStore implements store.OrganizationStore.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

const orgColumns = `id, name, slug, acronym, color, website, provenance,
	created_at, updated_at`

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var o domain.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Acronym, &o.Color, &o.Website,
		&o.Provenance, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if o.Provenance == nil {
		o.Provenance = domain.Provenance{}
	}
	return &o, nil
}

func (s *OrganizationStore) Get(ctx context.Context, orgID id.OrganizationID) (*domain.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE id = $1`, orgID)
	o, err := scanOrganization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

func (s *OrganizationStore) BySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orgColumns+` FROM organizations WHERE slug = $1`, slug)
	o, err := scanOrganization(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization by slug: %w", err)
	}
	return o, nil
}

func (s *OrganizationStore) All(ctx context.Context) ([]domain.Organization, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+orgColumns+` FROM organizations ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, *o)
	}
	return orgs, rows.Err()
}

func (s *OrganizationStore) Create(ctx context.Context, o *domain.Organization) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO organizations (id, name, slug, acronym, color, website,
			provenance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.Name, o.Slug, o.Acronym, o.Color, o.Website, o.Provenance,
		o.CreatedAt, o.UpdatedAt)
	return wrapWriteErr(err, "create organization")
}

func (s *OrganizationStore) Update(ctx context.Context, o *domain.Organization) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE organizations SET name = $2, slug = $3, acronym = $4,
			color = $5, website = $6, provenance = $7, updated_at = $8
		WHERE id = $1`,
		o.ID, o.Name, o.Slug, o.Acronym, o.Color, o.Website, o.Provenance,
		o.UpdatedAt)
	if err != nil {
		return wrapWriteErr(err, "update organization")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
