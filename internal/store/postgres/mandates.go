package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
)

// MandateStore implements store.MandateStore.
type MandateStore struct {
	pool *pgxpool.Pool
}

const mandateColumns = `id, person_id, kind, institution, department, title,
	start_date, end_date, is_current, source, external_id, created_at,
	updated_at`

func scanMandate(row pgx.Row) (*domain.Mandate, error) {
	var m domain.Mandate
	err := row.Scan(&m.ID, &m.PersonID, &m.Kind, &m.Institution, &m.Department,
		&m.Title, &m.StartDate, &m.EndDate, &m.IsCurrent, &m.Source,
		&m.ExternalID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MandateStore) queryMandates(ctx context.Context, query string, args ...any) ([]domain.Mandate, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mandates []domain.Mandate
	for rows.Next() {
		m, err := scanMandate(rows)
		if err != nil {
			return nil, err
		}
		mandates = append(mandates, *m)
	}
	return mandates, rows.Err()
}

func (s *MandateStore) OpenByKind(ctx context.Context, kind domain.MandateKind) ([]domain.Mandate, error) {
	mandates, err := s.queryMandates(ctx,
		`SELECT `+mandateColumns+` FROM mandates WHERE kind = $1 AND is_current`,
		kind)
	if err != nil {
		return nil, fmt.Errorf("list open mandates: %w", err)
	}
	return mandates, nil
}

func (s *MandateStore) ByPerson(ctx context.Context, personID id.PersonID) ([]domain.Mandate, error) {
	mandates, err := s.queryMandates(ctx,
		`SELECT `+mandateColumns+` FROM mandates
		WHERE person_id = $1 ORDER BY start_date`, personID)
	if err != nil {
		return nil, fmt.Errorf("list mandates by person: %w", err)
	}
	return mandates, nil
}

func (s *MandateStore) Create(ctx context.Context, m *domain.Mandate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mandates (id, person_id, kind, institution, department,
			title, start_date, end_date, is_current, source, external_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.PersonID, m.Kind, m.Institution, m.Department, m.Title,
		m.StartDate, m.EndDate, m.IsCurrent, m.Source, m.ExternalID,
		m.CreatedAt, m.UpdatedAt)
	return wrapWriteErr(err, "create mandate")
}

func (s *MandateStore) Update(ctx context.Context, m *domain.Mandate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE mandates SET kind = $2, institution = $3, department = $4,
			title = $5, start_date = $6, end_date = $7, is_current = $8,
			source = $9, external_id = $10, updated_at = $11
		WHERE id = $1`,
		m.ID, m.Kind, m.Institution, m.Department, m.Title, m.StartDate,
		m.EndDate, m.IsCurrent, m.Source, m.ExternalID, m.UpdatedAt)
	if err != nil {
		return wrapWriteErr(err, "update mandate")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
