// Package reconcile implements the entity reconciliation engine: identity
// resolution, source-priority field merging, lifecycle management of
// time-bounded attachments, and the idempotent batch pipeline that drives
// them over a full feed.
package reconcile

import (
	"mandata/internal/domain"
	id "mandata/pkg/domain"
)

// Priorities ranks sources per field. Higher wins; a candidate overwrites the
// current value iff its priority is >= the current provenance's priority, or
// the current value is empty. Ties go to the most recent write, which keeps
// re-runs of the same source idempotent.
type Priorities map[domain.Field]map[id.Source]int

// basePriority is the fallback trust ranking: chambers over the executive,
// the executive over disclosure registries, registries over aggregated open
// data, open data over the knowledge graph, and everything over hand entry.
var basePriority = map[id.Source]int{
	id.SourceAssemblee:    10,
	id.SourceSenat:        10,
	id.SourceGouvernement: 8,
	id.SourceHATVP:        6,
	id.SourceRNE:          5,
	id.SourceJudilibre:    4,
	id.SourceWikidata:     3,
	id.SourceManual:       1,
}

// DefaultPriorities returns the static per-field ranking. Most fields follow
// the base ranking; deviations are deliberate: birth data from the civil-ish
// registries (RNE, HATVP) outranks the chambers' member pages, and
// organization colors only ever come from chamber feeds or wikidata.
func DefaultPriorities() Priorities {
	birth := map[id.Source]int{
		id.SourceRNE:          9,
		id.SourceHATVP:        8,
		id.SourceAssemblee:    7,
		id.SourceSenat:        7,
		id.SourceGouvernement: 6,
		id.SourceWikidata:     3,
		id.SourceManual:       1,
	}
	return Priorities{
		domain.FieldPhotoURL:   basePriority,
		domain.FieldEmail:      basePriority,
		domain.FieldWebsite:    basePriority,
		domain.FieldProfession: basePriority,
		domain.FieldBirthDate:  birth,
		domain.FieldBirthPlace: birth,
		domain.FieldColor:      basePriority,
	}
}

// Rank returns the priority of source for field, falling back to the base
// ranking for fields without a dedicated table.
func (p Priorities) Rank(field domain.Field, source id.Source) int {
	if table, ok := p[field]; ok {
		if rank, ok := table[source]; ok {
			return rank
		}
	}
	return basePriority[source]
}

// Outranks reports whether candidate may overwrite a value currently owned by
// current for the given field. Re-evaluated per field: a person's birth date
// and photo may legitimately come from different sources.
func (p Priorities) Outranks(field domain.Field, candidate, current id.Source) bool {
	return p.Rank(field, candidate) >= p.Rank(field, current)
}
