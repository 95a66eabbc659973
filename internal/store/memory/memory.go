// Package memory implements every store port in memory. It backs unit tests
// and mirrors the Postgres implementation's semantics: values are copied on
// the way in and out, uniqueness violations return CodeConflict.
package memory

import (
	"mandata/internal/store"
)

// New builds a fresh set of empty in-memory stores.
func New() store.Stores {
	return store.Stores{
		Persons:       NewPersonStore(),
		Organizations: NewOrganizationStore(),
		Identifiers:   NewIdentifierStore(),
		Mandates:      NewMandateStore(),
		Affiliations:  NewAffiliationStore(),
		Declarations:  NewDeclarationStore(),
		RollCalls:     NewRollCallStore(),
		Decisions:     NewDecisionStore(),
		SyncState:     NewSyncStateStore(),
		Runs:          NewRunStore(),
	}
}
