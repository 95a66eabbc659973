package memory

import (
	"context"
	"sync"

	"mandata/internal/domain"
	"mandata/internal/store"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
)

// IdentifierStore keeps identity anchors keyed by (source, external id).
type IdentifierStore struct {
	mu      sync.RWMutex
	anchors map[string]domain.ExternalIdentifier
}

func NewIdentifierStore() *IdentifierStore {
	return &IdentifierStore{anchors: make(map[string]domain.ExternalIdentifier)}
}

func anchorKey(source id.Source, externalID string) string {
	return string(source) + "|" + externalID
}

func (s *IdentifierStore) Find(_ context.Context, source id.Source, externalID string) (*domain.ExternalIdentifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ident, ok := s.anchors[anchorKey(source, externalID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ident, nil
}

func (s *IdentifierStore) BySource(_ context.Context, source id.Source) (map[string]domain.ExternalIdentifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.ExternalIdentifier)
	for _, ident := range s.anchors {
		if ident.Source == source {
			out[ident.ExternalID] = ident
		}
	}
	return out, nil
}

func (s *IdentifierStore) Attach(_ context.Context, ident domain.ExternalIdentifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := anchorKey(ident.Source, ident.ExternalID)
	if existing, ok := s.anchors[key]; ok {
		if existing.OwnerID == ident.OwnerID {
			return nil // idempotent re-attach
		}
		return dErrors.Newf(dErrors.CodeConflict,
			"identifier %s/%s already bound to another entity", ident.Source, ident.ExternalID)
	}
	s.anchors[key] = ident
	return nil
}
