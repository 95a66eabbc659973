package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
)

// MandateStore keeps mandates keyed by row id.
type MandateStore struct {
	mu       sync.RWMutex
	mandates map[uuid.UUID]domain.Mandate
}

func NewMandateStore() *MandateStore {
	return &MandateStore{mandates: make(map[uuid.UUID]domain.Mandate)}
}

func (s *MandateStore) OpenByKind(_ context.Context, kind domain.MandateKind) ([]domain.Mandate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Mandate
	for _, m := range s.mandates {
		if m.Kind == kind && m.IsCurrent {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *MandateStore) ByPerson(_ context.Context, personID id.PersonID) ([]domain.Mandate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Mandate
	for _, m := range s.mandates {
		if m.PersonID == personID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *MandateStore) Create(_ context.Context, m *domain.Mandate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mandates[m.ID] = *m
	return nil
}

func (s *MandateStore) Update(_ context.Context, m *domain.Mandate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mandates[m.ID]; !ok {
		return store.ErrNotFound
	}
	s.mandates[m.ID] = *m
	return nil
}

// AffiliationStore keeps affiliations keyed by row id.
type AffiliationStore struct {
	mu           sync.RWMutex
	affiliations map[uuid.UUID]domain.Affiliation
}

func NewAffiliationStore() *AffiliationStore {
	return &AffiliationStore{affiliations: make(map[uuid.UUID]domain.Affiliation)}
}

func (s *AffiliationStore) OpenBySource(_ context.Context, source id.Source) ([]domain.Affiliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Affiliation
	for _, a := range s.affiliations {
		if a.Source == source && a.IsCurrent {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *AffiliationStore) ByPerson(_ context.Context, personID id.PersonID) ([]domain.Affiliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Affiliation
	for _, a := range s.affiliations {
		if a.PersonID == personID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *AffiliationStore) Create(_ context.Context, a *domain.Affiliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.affiliations[a.ID] = *a
	return nil
}

func (s *AffiliationStore) Update(_ context.Context, a *domain.Affiliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.affiliations[a.ID]; !ok {
		return store.ErrNotFound
	}
	s.affiliations[a.ID] = *a
	return nil
}

// DeclarationStore keeps declarations keyed by (source, external id).
type DeclarationStore struct {
	mu           sync.RWMutex
	declarations map[string]domain.Declaration
}

func NewDeclarationStore() *DeclarationStore {
	return &DeclarationStore{declarations: make(map[string]domain.Declaration)}
}

func (s *DeclarationStore) OpenBySource(_ context.Context, source id.Source) ([]domain.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Declaration
	for _, d := range s.declarations {
		if d.Source == source && d.IsCurrent {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

func (s *DeclarationStore) ByExternalID(_ context.Context, source id.Source, externalID string) (*domain.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.declarations[anchorKey(source, externalID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *DeclarationStore) Create(_ context.Context, d *domain.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declarations[anchorKey(d.Source, d.ExternalID)] = *d
	return nil
}

func (s *DeclarationStore) Update(_ context.Context, d *domain.Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := anchorKey(d.Source, d.ExternalID)
	if _, ok := s.declarations[key]; !ok {
		return store.ErrNotFound
	}
	s.declarations[key] = *d
	return nil
}
