package memory

import (
	"context"
	"sync"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
)

// DecisionStore keeps judicial decisions keyed by (source, external id).
type DecisionStore struct {
	mu        sync.RWMutex
	decisions map[string]domain.JudicialDecision
}

func NewDecisionStore() *DecisionStore {
	return &DecisionStore{decisions: make(map[string]domain.JudicialDecision)}
}

func (s *DecisionStore) ByExternalID(_ context.Context, source id.Source, externalID string) (*domain.JudicialDecision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[anchorKey(source, externalID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *DecisionStore) Create(_ context.Context, d *domain.JudicialDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions[anchorKey(d.Source, d.ExternalID)] = *d
	return nil
}

func (s *DecisionStore) Update(_ context.Context, d *domain.JudicialDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := anchorKey(d.Source, d.ExternalID)
	if _, ok := s.decisions[key]; !ok {
		return store.ErrNotFound
	}
	s.decisions[key] = *d
	return nil
}

// SyncStateStore keeps cursors keyed by (source, partition).
type SyncStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.SyncState
}

func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{states: make(map[string]domain.SyncState)}
}

func (s *SyncStateStore) Get(_ context.Context, source id.Source, partition string) (*domain.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[anchorKey(source, partition)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &st, nil
}

func (s *SyncStateStore) Put(_ context.Context, state domain.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[anchorKey(state.Source, state.Partition)] = state
	return nil
}

// RunStore keeps run summaries in order of completion.
type RunStore struct {
	mu   sync.RWMutex
	runs []domain.Summary
}

func NewRunStore() *RunStore {
	return &RunStore{}
}

func (s *RunStore) Append(_ context.Context, summary domain.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, summary)
	return nil
}

func (s *RunStore) Last(_ context.Context, source id.Source) (*domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].Source == source {
			run := s.runs[i]
			return &run, nil
		}
	}
	return nil, store.ErrNotFound
}
