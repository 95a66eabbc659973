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

// AffiliationStore implements store.AffiliationStore.
type AffiliationStore struct {
	pool *pgxpool.Pool
}

const affiliationColumns = `id, person_id, organization_id, role, start_date,
	end_date, is_current, source, created_at, updated_at`

func scanAffiliation(row pgx.Row) (*domain.Affiliation, error) {
	var a domain.Affiliation
	err := row.Scan(&a.ID, &a.PersonID, &a.OrganizationID, &a.Role,
		&a.StartDate, &a.EndDate, &a.IsCurrent, &a.Source, &a.CreatedAt,
		&a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AffiliationStore) queryAffiliations(ctx context.Context, query string, args ...any) ([]domain.Affiliation, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var affs []domain.Affiliation
	for rows.Next() {
		a, err := scanAffiliation(rows)
		if err != nil {
			return nil, err
		}
		affs = append(affs, *a)
	}
	return affs, rows.Err()
}

func (s *AffiliationStore) OpenBySource(ctx context.Context, source id.Source) ([]domain.Affiliation, error) {
	affs, err := s.queryAffiliations(ctx,
		`SELECT `+affiliationColumns+` FROM affiliations
		WHERE source = $1 AND is_current`, source)
	if err != nil {
		return nil, fmt.Errorf("list open affiliations: %w", err)
	}
	return affs, nil
}

func (s *AffiliationStore) ByPerson(ctx context.Context, personID id.PersonID) ([]domain.Affiliation, error) {
	affs, err := s.queryAffiliations(ctx,
		`SELECT `+affiliationColumns+` FROM affiliations
		WHERE person_id = $1 ORDER BY start_date`, personID)
	if err != nil {
		return nil, fmt.Errorf("list affiliations by person: %w", err)
	}
	return affs, nil
}

func (s *AffiliationStore) Create(ctx context.Context, a *domain.Affiliation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO affiliations (id, person_id, organization_id, role,
			start_date, end_date, is_current, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.PersonID, a.OrganizationID, a.Role, a.StartDate, a.EndDate,
		a.IsCurrent, a.Source, a.CreatedAt, a.UpdatedAt)
	return wrapWriteErr(err, "create affiliation")
}

func (s *AffiliationStore) Update(ctx context.Context, a *domain.Affiliation) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE affiliations SET organization_id = $2, role = $3,
			start_date = $4, end_date = $5, is_current = $6, source = $7,
			updated_at = $8
		WHERE id = $1`,
		a.ID, a.OrganizationID, a.Role, a.StartDate, a.EndDate, a.IsCurrent,
		a.Source, a.UpdatedAt)
	if err != nil {
		return wrapWriteErr(err, "update affiliation")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeclarationStore implements store.DeclarationStore.
type DeclarationStore struct {
	pool *pgxpool.Pool
}

const declarationColumns = `id, person_id, kind, external_id, source,
	published_at, end_date, is_current, created_at, updated_at`

func scanDeclaration(row pgx.Row) (*domain.Declaration, error) {
	var d domain.Declaration
	err := row.Scan(&d.ID, &d.PersonID, &d.Kind, &d.ExternalID, &d.Source,
		&d.PublishedAt, &d.EndDate, &d.IsCurrent, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DeclarationStore) OpenBySource(ctx context.Context, source id.Source) ([]domain.Declaration, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+declarationColumns+` FROM declarations
		WHERE source = $1 AND is_current`, source)
	if err != nil {
		return nil, fmt.Errorf("list open declarations: %w", err)
	}
	defer rows.Close()

	var decls []domain.Declaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, err
		}
		decls = append(decls, *d)
	}
	return decls, rows.Err()
}

func (s *DeclarationStore) ByExternalID(ctx context.Context, source id.Source, externalID string) (*domain.Declaration, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+declarationColumns+` FROM declarations
		WHERE source = $1 AND external_id = $2`, source, externalID)
	d, err := scanDeclaration(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get declaration: %w", err)
	}
	return d, nil
}

func (s *DeclarationStore) Create(ctx context.Context, d *domain.Declaration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO declarations (id, person_id, kind, external_id, source,
			published_at, end_date, is_current, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.PersonID, d.Kind, d.ExternalID, d.Source, d.PublishedAt,
		d.EndDate, d.IsCurrent, d.CreatedAt, d.UpdatedAt)
	return wrapWriteErr(err, "create declaration")
}

func (s *DeclarationStore) Update(ctx context.Context, d *domain.Declaration) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE declarations SET kind = $2, published_at = $3, end_date = $4,
			is_current = $5, updated_at = $6
		WHERE id = $1`,
		d.ID, d.Kind, d.PublishedAt, d.EndDate, d.IsCurrent, d.UpdatedAt)
	if err != nil {
		return wrapWriteErr(err, "update declaration")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
