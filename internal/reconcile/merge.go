package reconcile

import (
	"time"

	"mandata/internal/domain"
	"mandata/internal/source"
	id "mandata/pkg/domain"
)

// Merger applies candidate field values under the source-priority policy.
type Merger struct {
	priorities Priorities
}

// NewMerger builds a merger over the given priority tables.
func NewMerger(priorities Priorities) *Merger {
	return &Merger{priorities: priorities}
}

// MergeOfficial folds a sighting's optional fields into the person. Returns
// true when anything actually changed, so identical re-runs count zero
// updates.
func (m *Merger) MergeOfficial(p *domain.Person, rec *source.Official) bool {
	if p.Provenance == nil {
		p.Provenance = domain.Provenance{}
	}
	changed := false
	changed = m.mergeString(&p.PhotoURL, p.Provenance, domain.FieldPhotoURL, rec.PhotoURL, rec.Source) || changed
	changed = m.mergeString(&p.Email, p.Provenance, domain.FieldEmail, rec.Email, rec.Source) || changed
	changed = m.mergeString(&p.Profession, p.Provenance, domain.FieldProfession, rec.Profession, rec.Source) || changed
	changed = m.mergeString(&p.BirthPlace, p.Provenance, domain.FieldBirthPlace, rec.BirthPlace, rec.Source) || changed
	changed = m.mergeDate(&p.BirthDate, p.Provenance, domain.FieldBirthDate, rec.BirthDate, rec.Source) || changed

	if rec.Department != "" && p.Department != rec.Department {
		p.Department = rec.Department
		changed = true
	}
	return changed
}

// MergeOrganization folds a group sighting's metadata into the organization.
func (m *Merger) MergeOrganization(o *domain.Organization, rec *source.Organization) bool {
	if o.Provenance == nil {
		o.Provenance = domain.Provenance{}
	}
	changed := false
	changed = m.mergeString(&o.Color, o.Provenance, domain.FieldColor, rec.Color, rec.Source) || changed
	changed = m.mergeString(&o.Website, o.Provenance, domain.FieldWebsite, rec.Website, rec.Source) || changed
	if rec.Acronym != "" && o.Acronym == "" {
		o.Acronym = rec.Acronym
		changed = true
	}
	return changed
}

func (m *Merger) mergeString(current *string, prov domain.Provenance, field domain.Field, candidate string, src id.Source) bool {
	if candidate == "" {
		return false
	}
	if *current != "" && !m.priorities.Outranks(field, src, prov[field]) {
		return false
	}
	if *current == candidate && prov[field] == src {
		return false
	}
	*current = candidate
	prov[field] = src
	return true
}

func (m *Merger) mergeDate(current **time.Time, prov domain.Provenance, field domain.Field, candidate *time.Time, src id.Source) bool {
	if candidate == nil {
		return false
	}
	if *current != nil && !m.priorities.Outranks(field, src, prov[field]) {
		return false
	}
	if *current != nil && (*current).Equal(*candidate) && prov[field] == src {
		return false
	}
	d := *candidate
	*current = &d
	prov[field] = src
	return true
}
