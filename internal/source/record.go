// Package source defines the adapter contracts and the normalized record
// shapes every feed is parsed into. Adapters own the source-specific field
// names; everything past this boundary is source-agnostic.
package source

import (
	"time"

	"mandata/internal/domain"
	id "mandata/pkg/domain"
)

// Kind tags the record union.
type Kind string

const (
	KindOfficial     Kind = "official"
	KindOrganization Kind = "organization"
	KindDecision     Kind = "decision"
)

// Record is the tagged union of normalized feed rows. Exactly one variant is
// non-nil, matching Kind.
type Record struct {
	Kind         Kind
	Official     *Official
	Organization *Organization
	Decision     *Decision
}

// MandateInfo describes the office a feed row attests to.
type MandateInfo struct {
	Kind        domain.MandateKind
	Institution string
	Department  string
	Title       string
	StartDate   time.Time
}

// PartyInfo describes the group membership a feed row attests to.
type PartyInfo struct {
	Name      string
	Acronym   string
	StartDate time.Time
}

// DeclarationInfo describes a published declaration attached to the person.
type DeclarationInfo struct {
	Kind        string
	ExternalID  string
	PublishedAt time.Time
}

// Official is the common candidate-entity shape for one person sighting.
// Optional fields are explicit zero values, never absent keys.
type Official struct {
	Source     id.Source
	ExternalID string
	FirstName  string
	LastName   string
	BirthDate  *time.Time
	BirthPlace string
	Department string
	PhotoURL   string
	Email      string
	Profession string
	Mandate     *MandateInfo
	Party       *PartyInfo
	Declaration *DeclarationInfo
}

// Organization is a normalized party/group sighting.
type Organization struct {
	Source     id.Source
	ExternalID string
	Name       string
	Acronym    string
	Color      string
	Website    string
}

// Decision is a normalized case-law search hit.
type Decision struct {
	Source       id.Source
	ExternalID   string
	Jurisdiction string
	DecidedAt    time.Time
	Summary      string
	RawStatus    string
	// Subject name components used to resolve the person.
	FirstName string
	LastName  string
}

// OfficialRecord wraps an Official into the union.
func OfficialRecord(o *Official) Record {
	return Record{Kind: KindOfficial, Official: o}
}

// OrganizationRecord wraps an Organization into the union.
func OrganizationRecord(o *Organization) Record {
	return Record{Kind: KindOrganization, Organization: o}
}

// DecisionRecord wraps a Decision into the union.
func DecisionRecord(d *Decision) Record {
	return Record{Kind: KindDecision, Decision: d}
}
