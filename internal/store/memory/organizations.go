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

// OrganizationStore keeps organizations in a map guarded by a RWMutex.
type OrganizationStore struct {
	mu   sync.RWMutex
	orgs map[id.OrganizationID]domain.Organization
}

func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{orgs: make(map[id.OrganizationID]domain.Organization)}
}

func (s *OrganizationStore) Get(_ context.Context, orgID id.OrganizationID) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[orgID]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.Provenance = o.Provenance.Clone()
	return &o, nil
}

func (s *OrganizationStore) BySlug(_ context.Context, slug string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orgs {
		if o.Slug == slug {
			o.Provenance = o.Provenance.Clone()
			return &o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *OrganizationStore) All(_ context.Context) ([]domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		o.Provenance = o.Provenance.Clone()
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *OrganizationStore) Create(_ context.Context, o *domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[o.ID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "organization %s already exists", o.ID)
	}
	cp := *o
	cp.Provenance = o.Provenance.Clone()
	s.orgs[o.ID] = cp
	return nil
}

func (s *OrganizationStore) Update(_ context.Context, o *domain.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orgs[o.ID]; !exists {
		return store.ErrNotFound
	}
	cp := *o
	cp.Provenance = o.Provenance.Clone()
	s.orgs[o.ID] = cp
	return nil
}
