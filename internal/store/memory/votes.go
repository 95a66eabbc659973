package memory

import (
	"context"
	"fmt"
	"sync"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
)

// RollCallStore keeps roll calls and ballots together so ReplaceBallots is
// atomic under one lock, matching the Postgres transaction.
type RollCallStore struct {
	mu        sync.RWMutex
	rollCalls map[string]domain.RollCall
	ballots   map[string][]domain.Ballot
}

func NewRollCallStore() *RollCallStore {
	return &RollCallStore{
		rollCalls: make(map[string]domain.RollCall),
		ballots:   make(map[string][]domain.Ballot),
	}
}

func rollCallKey(source id.Source, number int) string {
	return fmt.Sprintf("%s|%d", source, number)
}

func (s *RollCallStore) Get(_ context.Context, source id.Source, number int) (*domain.RollCall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rc, ok := s.rollCalls[rollCallKey(source, number)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rc, nil
}

func (s *RollCallStore) Upsert(_ context.Context, rc *domain.RollCall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollCalls[rollCallKey(rc.Source, rc.Number)] = *rc
	return nil
}

func (s *RollCallStore) ReplaceBallots(_ context.Context, source id.Source, number int, ballots []domain.Ballot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]domain.Ballot, len(ballots))
	copy(cp, ballots)
	s.ballots[rollCallKey(source, number)] = cp
	return nil
}

// Ballots is a test helper exposing the stored ballot set.
func (s *RollCallStore) Ballots(source id.Source, number int) []domain.Ballot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ballots[rollCallKey(source, number)]
}
