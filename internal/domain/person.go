// Package domain defines the reconciled entity graph: persons, organizations,
// their time-bounded attachments, and the sync bookkeeping records. Types
// here carry no persistence or transport concerns.
package domain

import (
	"time"

	id "mandata/pkg/domain"
	"mandata/pkg/platform/slug"
)

// Field names an optional, provenance-tracked attribute. Each field remembers
// which source last wrote it so the conflict resolver can compare priorities
// per field, not per entity.
type Field string

const (
	FieldBirthDate  Field = "birth_date"
	FieldBirthPlace Field = "birth_place"
	FieldPhotoURL   Field = "photo_url"
	FieldEmail      Field = "email"
	FieldProfession Field = "profession"
	FieldColor      Field = "color"
	FieldWebsite    Field = "website"
)

// Provenance maps each written optional field to the source that last set it.
type Provenance map[Field]id.Source

// Clone returns a copy safe to mutate.
func (p Provenance) Clone() Provenance {
	out := make(Provenance, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Person is one reconciled human. Invariant: at most one Person per real
// individual; the resolver must match before it creates.
type Person struct {
	ID        id.PersonID
	FirstName string
	LastName  string
	// Slug is the deterministic matching key derived from the name. It is
	// recomputed on every name write, never stored independently.
	Slug       string
	BirthDate  *time.Time
	BirthPlace string
	Department string
	PhotoURL   string
	Email      string
	Profession string
	// CurrentOrganizationID mirrors the organization of the single open
	// Affiliation. It is derived: only the lifecycle manager writes it.
	CurrentOrganizationID *id.OrganizationID
	Provenance            Provenance
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewPerson builds a person with a fresh ID and a computed slug.
func NewPerson(firstName, lastName string, now time.Time) *Person {
	return &Person{
		ID:         id.NewPersonID(),
		FirstName:  firstName,
		LastName:   lastName,
		Slug:       slug.Person(firstName, lastName),
		Provenance: Provenance{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// FullName is for logging and error messages only; matching always goes
// through the slug.
func (p *Person) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}
