package domain

import (
	"time"

	"github.com/google/uuid"

	id "mandata/pkg/domain"
)

// OwnerKind says what an external identifier is bound to.
type OwnerKind string

const (
	OwnerPerson       OwnerKind = "person"
	OwnerOrganization OwnerKind = "organization"
)

// ExternalIdentifier binds a (source, source-local id) pair to exactly one
// internal entity. Invariants: the pair is globally unique, and it is never
// reassigned automatically; moving it to another owner is an administrative
// correction, not something the pipeline does.
type ExternalIdentifier struct {
	Source     id.Source
	ExternalID string
	OwnerKind  OwnerKind
	OwnerID    uuid.UUID
	CreatedAt  time.Time
}

// PersonIdentifier binds an external id to a person.
func PersonIdentifier(source id.Source, externalID string, owner id.PersonID, now time.Time) ExternalIdentifier {
	return ExternalIdentifier{
		Source:     source,
		ExternalID: externalID,
		OwnerKind:  OwnerPerson,
		OwnerID:    uuid.UUID(owner),
		CreatedAt:  now,
	}
}

// OrganizationIdentifier binds an external id to an organization.
func OrganizationIdentifier(source id.Source, externalID string, owner id.OrganizationID, now time.Time) ExternalIdentifier {
	return ExternalIdentifier{
		Source:     source,
		ExternalID: externalID,
		OwnerKind:  OwnerOrganization,
		OwnerID:    uuid.UUID(owner),
		CreatedAt:  now,
	}
}
