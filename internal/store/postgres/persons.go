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

// PersonStore implements store.PersonStore.
type PersonStore struct {
	pool *pgxpool.Pool
}

const personColumns = `id, first_name, last_name, slug, birth_date, birth_place,
	department, photo_url, email, profession, current_organization_id,
	provenance, created_at, updated_at`

func scanPerson(row pgx.Row) (*domain.Person, error) {
	var p domain.Person
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Slug, &p.BirthDate,
		&p.BirthPlace, &p.Department, &p.PhotoURL, &p.Email, &p.Profession,
		&p.CurrentOrganizationID, &p.Provenance, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Provenance == nil {
		p.Provenance = domain.Provenance{}
	}
	return &p, nil
}

func (s *PersonStore) Get(ctx context.Context, personID id.PersonID) (*domain.Person, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, personID)
	p, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *PersonStore) All(ctx context.Context) ([]domain.Person, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+personColumns+` FROM persons ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	var persons []domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, *p)
	}
	return persons, rows.Err()
}

func (s *PersonStore) Create(ctx context.Context, p *domain.Person) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO persons (id, first_name, last_name, slug, birth_date,
			birth_place, department, photo_url, email, profession,
			current_organization_id, provenance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.FirstName, p.LastName, p.Slug, p.BirthDate, p.BirthPlace,
		p.Department, p.PhotoURL, p.Email, p.Profession,
		p.CurrentOrganizationID, p.Provenance, p.CreatedAt, p.UpdatedAt)
	return wrapWriteErr(err, "create person")
}

func (s *PersonStore) Update(ctx context.Context, p *domain.Person) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE persons SET first_name = $2, last_name = $3, slug = $4,
			birth_date = $5, birth_place = $6, department = $7, photo_url = $8,
			email = $9, profession = $10, current_organization_id = $11,
			provenance = $12, updated_at = $13
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.Slug, p.BirthDate, p.BirthPlace,
		p.Department, p.PhotoURL, p.Email, p.Profession,
		p.CurrentOrganizationID, p.Provenance, p.UpdatedAt)
	if err != nil {
		return wrapWriteErr(err, "update person")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
