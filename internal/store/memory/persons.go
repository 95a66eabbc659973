package memory

import (
	"context"
	"sort"
	"sync"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
)

// PersonStore keeps persons in a map guarded by a RWMutex.
type PersonStore struct {
	mu      sync.RWMutex
	persons map[id.PersonID]domain.Person
}

func NewPersonStore() *PersonStore {
	return &PersonStore{persons: make(map[id.PersonID]domain.Person)}
}

func (s *PersonStore) Get(_ context.Context, personID id.PersonID) (*domain.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[personID]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Provenance = p.Provenance.Clone()
	return &p, nil
}

func (s *PersonStore) All(_ context.Context) ([]domain.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Person, 0, len(s.persons))
	for _, p := range s.persons {
		p.Provenance = p.Provenance.Clone()
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *PersonStore) Create(_ context.Context, p *domain.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[p.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "person %s already exists", p.ID)
	}
	cp := *p
	cp.Provenance = p.Provenance.Clone()
	s.persons[p.ID] = cp
	return nil
}

func (s *PersonStore) Update(_ context.Context, p *domain.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[p.ID]; !exists {
		return store.ErrNotFound
	}
	cp := *p
	cp.Provenance = p.Provenance.Clone()
	s.persons[p.ID] = cp
	return nil
}
