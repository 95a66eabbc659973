// Package events publishes entity change notifications produced by sync runs
// so downstream consumers (search indexers, the presentation layer's cache)
// can react without polling the store.
package events

import (
	"context"
	"time"

	id "mandata/pkg/domain"
)

// Kind is the change type.
type Kind string

const (
	KindPersonCreated      Kind = "person.created"
	KindPersonUpdated      Kind = "person.updated"
	KindOrganizationChange Kind = "organization.changed"
	KindMandateOpened      Kind = "mandate.opened"
	KindMandateClosed      Kind = "mandate.closed"
	KindRunFinished        Kind = "run.finished"
)

// Event is one change notification.
type Event struct {
	Kind     Kind      `json:"kind"`
	EntityID string    `json:"entityId,omitempty"`
	Source   id.Source `json:"source"`
	At       time.Time `json:"at"`
}

// Publisher emits change events. Emit must never block a sync run on a slow
// broker beyond its buffer; implementations drop to an error on overflow
// rather than stalling.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// Nop discards all events; used when no broker is configured.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }
func (Nop) Close() error                      { return nil }
