// Package domain holds identifier types shared across modules. Keeping them
// here avoids import cycles between stores, services, and transport.
package domain

import (
	"github.com/google/uuid"

	dErrors "mandata/pkg/domain-errors"
)

// PersonID identifies one reconciled human. At most one PersonID exists per
// real individual; duplicates are a correctness bug.
type PersonID uuid.UUID

// OrganizationID identifies a party or political group.
type OrganizationID uuid.UUID

// NewPersonID allocates a fresh person identifier.
func NewPersonID() PersonID {
	return PersonID(uuid.New())
}

// NewOrganizationID allocates a fresh organization identifier.
func NewOrganizationID() OrganizationID {
	return OrganizationID(uuid.New())
}

// ParsePersonID constructs a PersonID from external input.
func ParsePersonID(s string) (PersonID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PersonID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid person id")
	}
	return PersonID(u), nil
}

func (id PersonID) String() string {
	return uuid.UUID(id).String()
}

func (id PersonID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id OrganizationID) String() string {
	return uuid.UUID(id).String()
}

func (id OrganizationID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}
