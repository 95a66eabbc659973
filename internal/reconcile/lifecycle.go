package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mandata/internal/domain"
	"mandata/internal/source"
	"mandata/internal/store"
	id "mandata/pkg/domain"
)

// Lifecycle is the single write path for time-bounded attachments. Mandates,
// affiliations, and declarations move none -> open -> closed -> open again
// only through these methods, which also keep the person's derived
// current-organization pointer consistent. In dry-run mode every method
// computes the same changes but persists nothing.
type Lifecycle struct {
	stores store.Stores
	dry    bool
}

// NewLifecycle builds a lifecycle manager for one run.
func NewLifecycle(stores store.Stores, dryRun bool) *Lifecycle {
	return &Lifecycle{stores: stores, dry: dryRun}
}

// Change reports what a lifecycle operation did.
type Change struct {
	Created bool
	Updated bool
}

// OpenOrRefreshMandate opens a mandate for the sighting, refreshes an already
// open one, or reopens a closed one matching the same natural key (the
// re-election case). Dates are never touched on a plain refresh; only the
// descriptive fields may be upgraded in place.
func (l *Lifecycle) OpenOrRefreshMandate(ctx context.Context, p *domain.Person, rec *source.Official, now time.Time) (*domain.Mandate, Change, error) {
	info := rec.Mandate
	key := (&domain.Mandate{Kind: info.Kind, Institution: info.Institution, Department: info.Department}).NaturalKey()

	existing, err := l.stores.Mandates.ByPerson(ctx, p.ID)
	if err != nil {
		return nil, Change{}, fmt.Errorf("load mandates: %w", err)
	}

	var open, closed *domain.Mandate
	for i := range existing {
		m := &existing[i]
		if m.NaturalKey() != key {
			continue
		}
		if m.IsCurrent {
			open = m
			break
		}
		// Prefer the most recently closed row for reopening.
		if closed == nil || m.UpdatedAt.After(closed.UpdatedAt) {
			closed = m
		}
	}

	switch {
	case open != nil:
		dirty := false
		if info.Title != "" && open.Title != info.Title {
			open.Title = info.Title
			dirty = true
		}
		if rec.ExternalID != "" && open.ExternalID != rec.ExternalID {
			open.ExternalID = rec.ExternalID
			dirty = true
		}
		if !dirty {
			return open, Change{}, nil
		}
		open.UpdatedAt = now
		if err := l.update(ctx, open); err != nil {
			return nil, Change{}, err
		}
		return open, Change{Updated: true}, nil

	case closed != nil:
		closed.Reopen(info.StartDate, now)
		if info.Title != "" {
			closed.Title = info.Title
		}
		if rec.ExternalID != "" {
			closed.ExternalID = rec.ExternalID
		}
		if err := l.update(ctx, closed); err != nil {
			return nil, Change{}, err
		}
		return closed, Change{Updated: true}, nil

	default:
		m := domain.NewMandate(p.ID, info.Kind, info.Institution, info.StartDate, rec.Source, now)
		m.Department = info.Department
		m.Title = info.Title
		m.ExternalID = rec.ExternalID
		if !l.dry {
			if err := l.stores.Mandates.Create(ctx, m); err != nil {
				return nil, Change{}, fmt.Errorf("create mandate: %w", err)
			}
		}
		return m, Change{Created: true}, nil
	}
}

// CloseMandate ends a mandate; both end date and the current flag move in one
// write.
func (l *Lifecycle) CloseMandate(ctx context.Context, m *domain.Mandate, at time.Time) error {
	m.Close(at)
	return l.update(ctx, m)
}

// SetAffiliation asserts "this person currently belongs to this organization"
// from one source. It closes a conflicting open affiliation, reopens or
// creates the asserted one, and recomputes the person's derived
// current-organization pointer. The returned bool reports whether the pointer
// on p changed; the caller owns persisting the person row.
func (l *Lifecycle) SetAffiliation(ctx context.Context, p *domain.Person, org *domain.Organization, start time.Time, src id.Source, now time.Time) (Change, bool, error) {
	existing, err := l.stores.Affiliations.ByPerson(ctx, p.ID)
	if err != nil {
		return Change{}, false, fmt.Errorf("load affiliations: %w", err)
	}

	var change Change
	var sameOrgClosed *domain.Affiliation
	alreadyOpen := false
	for i := range existing {
		a := &existing[i]
		switch {
		case a.IsCurrent && a.OrganizationID == org.ID:
			alreadyOpen = true
		case a.IsCurrent:
			// Membership moved: close the previous affiliation.
			a.Close(now)
			if err := l.updateAffiliation(ctx, a); err != nil {
				return Change{}, false, err
			}
			change.Updated = true
		case a.OrganizationID == org.ID:
			if sameOrgClosed == nil || a.UpdatedAt.After(sameOrgClosed.UpdatedAt) {
				sameOrgClosed = a
			}
		}
	}

	if !alreadyOpen {
		if sameOrgClosed != nil {
			sameOrgClosed.Reopen(start, now)
			if err := l.updateAffiliation(ctx, sameOrgClosed); err != nil {
				return Change{}, false, err
			}
			change.Updated = true
		} else {
			a := domain.NewAffiliation(p.ID, org.ID, start, src, now)
			if !l.dry {
				if err := l.stores.Affiliations.Create(ctx, a); err != nil {
					return Change{}, false, fmt.Errorf("create affiliation: %w", err)
				}
			}
			change.Created = true
		}
	}

	pointerChanged := p.CurrentOrganizationID == nil || *p.CurrentOrganizationID != org.ID
	if pointerChanged {
		orgID := org.ID
		p.CurrentOrganizationID = &orgID
	}
	return change, pointerChanged, nil
}

// CloseAffiliations ends every open affiliation this source asserted for the
// person and clears the derived pointer. Used when the person drops out of a
// full snapshot.
func (l *Lifecycle) CloseAffiliations(ctx context.Context, personID id.PersonID, src id.Source, at time.Time) (int, error) {
	existing, err := l.stores.Affiliations.ByPerson(ctx, personID)
	if err != nil {
		return 0, fmt.Errorf("load affiliations: %w", err)
	}
	closed := 0
	var clearedOrg *id.OrganizationID
	for i := range existing {
		a := &existing[i]
		if !a.IsCurrent || a.Source != src {
			continue
		}
		orgID := a.OrganizationID
		clearedOrg = &orgID
		a.Close(at)
		if err := l.updateAffiliation(ctx, a); err != nil {
			return closed, err
		}
		closed++
	}
	if closed == 0 {
		return 0, nil
	}

	p, err := l.stores.Persons.Get(ctx, personID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return closed, nil
		}
		return closed, fmt.Errorf("load person: %w", err)
	}
	if p.CurrentOrganizationID != nil && clearedOrg != nil && *p.CurrentOrganizationID == *clearedOrg {
		p.CurrentOrganizationID = nil
		p.UpdatedAt = at
		if !l.dry {
			if err := l.stores.Persons.Update(ctx, p); err != nil {
				return closed, fmt.Errorf("clear organization pointer: %w", err)
			}
		}
	}
	return closed, nil
}

// OpenOrRefreshDeclaration tracks one published declaration, reopening it if
// it was previously delisted.
func (l *Lifecycle) OpenOrRefreshDeclaration(ctx context.Context, personID id.PersonID, info *source.DeclarationInfo, src id.Source, now time.Time) (Change, error) {
	existing, err := l.stores.Declarations.ByExternalID(ctx, src, info.ExternalID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Change{}, fmt.Errorf("load declaration: %w", err)
	}

	if existing == nil {
		d := domain.NewDeclaration(personID, info.Kind, info.ExternalID, info.PublishedAt, src, now)
		if !l.dry {
			if err := l.stores.Declarations.Create(ctx, d); err != nil {
				return Change{}, fmt.Errorf("create declaration: %w", err)
			}
		}
		return Change{Created: true}, nil
	}
	if existing.IsCurrent {
		return Change{}, nil
	}
	existing.Reopen(now)
	if !l.dry {
		if err := l.stores.Declarations.Update(ctx, existing); err != nil {
			return Change{}, fmt.Errorf("reopen declaration: %w", err)
		}
	}
	return Change{Updated: true}, nil
}

// CloseDeclaration marks a declaration as delisted.
func (l *Lifecycle) CloseDeclaration(ctx context.Context, d *domain.Declaration, at time.Time) error {
	d.Close(at)
	if l.dry {
		return nil
	}
	if err := l.stores.Declarations.Update(ctx, d); err != nil {
		return fmt.Errorf("close declaration: %w", err)
	}
	return nil
}

func (l *Lifecycle) update(ctx context.Context, m *domain.Mandate) error {
	if l.dry {
		return nil
	}
	if err := l.stores.Mandates.Update(ctx, m); err != nil {
		return fmt.Errorf("update mandate: %w", err)
	}
	return nil
}

func (l *Lifecycle) updateAffiliation(ctx context.Context, a *domain.Affiliation) error {
	if l.dry {
		return nil
	}
	if err := l.stores.Affiliations.Update(ctx, a); err != nil {
		return fmt.Errorf("update affiliation: %w", err)
	}
	return nil
}
