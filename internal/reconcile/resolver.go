package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"mandata/internal/domain"
	"mandata/internal/source"
	"mandata/internal/store"
	id "mandata/pkg/domain"
	"mandata/pkg/platform/slug"
)

// birthDateTolerance absorbs off-by-one dates across feeds (timezone shifts
// in exports).
const birthDateTolerance = 24 * time.Hour

// MatchVia records which tier resolved the record; reported for observability
// of low-confidence tiers.
type MatchVia string

const (
	ViaExternalID MatchVia = "external_id"
	ViaSlug       MatchVia = "slug"
	ViaName       MatchVia = "name"
	ViaCreated    MatchVia = "created"
)

// Match is the resolver's verdict for one record.
type Match struct {
	Person *domain.Person
	Via    MatchVia
	// LowConfidence marks the deterministic first-candidate fallback of an
	// ambiguous name match. Counted, never silent.
	LowConfidence bool
}

// Index is the per-run in-memory resolution index. High-volume feeds resolve
// against it instead of querying the store per row. It is built fresh each
// run and must not be shared between concurrent runs.
type Index struct {
	source       id.Source
	anchors      map[string]id.PersonID
	persons      map[id.PersonID]*domain.Person
	bySlug       map[string][]id.PersonID
	byLastName   map[string][]id.PersonID
	openMandates map[id.PersonID][]domain.Mandate
}

// BuildIndex loads every person, this source's identity anchors, and open
// mandates in three scans.
func BuildIndex(ctx context.Context, stores store.Stores, src id.Source) (*Index, error) {
	idx := &Index{
		source:       src,
		anchors:      make(map[string]id.PersonID),
		persons:      make(map[id.PersonID]*domain.Person),
		bySlug:       make(map[string][]id.PersonID),
		byLastName:   make(map[string][]id.PersonID),
		openMandates: make(map[id.PersonID][]domain.Mandate),
	}

	persons, err := stores.Persons.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load persons: %w", err)
	}
	for i := range persons {
		idx.Add(&persons[i])
	}

	anchors, err := stores.Identifiers.BySource(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load identifiers: %w", err)
	}
	for externalID, ident := range anchors {
		if ident.OwnerKind == domain.OwnerPerson {
			idx.anchors[externalID] = id.PersonID(ident.OwnerID)
		}
	}

	for _, kind := range []domain.MandateKind{domain.MandateDepute, domain.MandateSenateur, domain.MandateMinistre, domain.MandateMaire} {
		open, err := stores.Mandates.OpenByKind(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("load open mandates: %w", err)
		}
		for _, m := range open {
			idx.openMandates[m.PersonID] = append(idx.openMandates[m.PersonID], m)
		}
	}
	return idx, nil
}

// Add registers a person so later rows of the same run can match it.
func (idx *Index) Add(p *domain.Person) {
	idx.persons[p.ID] = p
	idx.bySlug[p.Slug] = append(idx.bySlug[p.Slug], p.ID)
	idx.byLastName[slug.Name(p.LastName)] = append(idx.byLastName[slug.Name(p.LastName)], p.ID)
}

// Anchor registers a freshly attached external identifier.
func (idx *Index) Anchor(externalID string, personID id.PersonID) {
	idx.anchors[externalID] = personID
}

// OpenMandate registers a mandate opened during this run so department
// disambiguation sees it.
func (idx *Index) OpenMandate(m domain.Mandate) {
	idx.openMandates[m.PersonID] = append(idx.openMandates[m.PersonID], m)
}

// Resolver finds the internal person a source record refers to.
type Resolver struct {
	index *Index
}

// NewResolver wraps a per-run index.
func NewResolver(index *Index) *Resolver {
	return &Resolver{index: index}
}

// Resolve walks the tiers in order: external identifier, name slug, folded
// name equality, then disambiguation. A nil Person means "create new".
func (r *Resolver) Resolve(rec *source.Official) Match {
	// Tier 1: the identity anchor is ground truth.
	if rec.ExternalID != "" {
		if personID, ok := r.index.anchors[rec.ExternalID]; ok {
			return Match{Person: r.index.persons[personID], Via: ViaExternalID}
		}
	}

	// Tier 2: deterministic slug.
	if candidates := r.index.bySlug[slug.Person(rec.FirstName, rec.LastName)]; len(candidates) > 0 {
		return r.disambiguate(rec, candidates, ViaSlug)
	}

	// Tier 3: folded name equality. The last name buckets the candidates;
	// first names compare under normalized folding so "Jean Luc" still hits
	// "Jean-Luc". Equality only: anything looser ("jean" inside "jeanne")
	// merges distinct people.
	var candidates []id.PersonID
	foldedFirst := slug.Name(rec.FirstName)
	for _, personID := range r.index.byLastName[slug.Name(rec.LastName)] {
		p := r.index.persons[personID]
		if slug.Name(p.FirstName) == foldedFirst {
			candidates = append(candidates, personID)
		}
	}
	if len(candidates) > 0 {
		return r.disambiguate(rec, candidates, ViaName)
	}

	return Match{Via: ViaCreated}
}

// disambiguate orders the tie-breakers: birth date, then shared department,
// then the deterministic first candidate. The last step is a documented
// known ambiguity for common surnames, so it is flagged low-confidence.
func (r *Resolver) disambiguate(rec *source.Official, candidates []id.PersonID, via MatchVia) Match {
	if len(candidates) == 1 {
		return Match{Person: r.index.persons[candidates[0]], Via: via}
	}

	if rec.BirthDate != nil {
		for _, personID := range candidates {
			p := r.index.persons[personID]
			if p.BirthDate != nil && withinTolerance(*p.BirthDate, *rec.BirthDate) {
				return Match{Person: p, Via: via}
			}
		}
	}

	dept := rec.Department
	if dept == "" && rec.Mandate != nil {
		dept = rec.Mandate.Department
	}
	if dept != "" {
		for _, personID := range candidates {
			for _, m := range r.index.openMandates[personID] {
				if m.Department == dept {
					return Match{Person: r.index.persons[personID], Via: via}
				}
			}
		}
	}

	sorted := make([]id.PersonID, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		return uuid.UUID(sorted[i]).String() < uuid.UUID(sorted[j]).String()
	})
	return Match{Person: r.index.persons[sorted[0]], Via: via, LowConfidence: true}
}

func withinTolerance(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= birthDateTolerance
}
