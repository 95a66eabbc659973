package reconcile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/domain"
	"mandata/internal/reconcile"
	"mandata/internal/source"
	"mandata/internal/store"
	"mandata/internal/store/memory"
	id "mandata/pkg/domain"
)

func seedPerson(t *testing.T, stores store.Stores, first, last string, born *time.Time) *domain.Person {
	t.Helper()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := domain.NewPerson(first, last, now)
	p.BirthDate = born
	require.NoError(t, stores.Persons.Create(context.Background(), p))
	return p
}

func buildResolver(t *testing.T, stores store.Stores) *reconcile.Resolver {
	t.Helper()
	idx, err := reconcile.BuildIndex(context.Background(), stores, id.SourceHATVP)
	require.NoError(t, err)
	return reconcile.NewResolver(idx)
}

func TestResolvePrefersBirthDateAmongSameNameCandidates(t *testing.T) {
	stores := memory.New()
	born := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	withDate := seedPerson(t, stores, "Jean", "Dupont", &born)
	seedPerson(t, stores, "Jean", "Dupont", nil)

	r := buildResolver(t, stores)
	match := r.Resolve(&source.Official{
		FirstName: "Jean", LastName: "Dupont",
		Department: "75", BirthDate: &born,
	})
	require.NotNil(t, match.Person)
	assert.Equal(t, withDate.ID, match.Person.ID)
	assert.False(t, match.LowConfidence)
}

func TestResolvePrefersSharedDepartmentWhenBirthDateIsMissing(t *testing.T) {
	stores := memory.New()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inDept := seedPerson(t, stores, "Jean", "Dupont", nil)
	seedPerson(t, stores, "Jean", "Dupont", nil)

	m := domain.NewMandate(inDept.ID, domain.MandateSenateur, "Sénat", now, id.SourceSenat, now)
	m.Department = "33"
	require.NoError(t, stores.Mandates.Create(context.Background(), m))

	r := buildResolver(t, stores)
	match := r.Resolve(&source.Official{
		FirstName: "Jean", LastName: "Dupont", Department: "33",
	})
	require.NotNil(t, match.Person)
	assert.Equal(t, inDept.ID, match.Person.ID)
	assert.False(t, match.LowConfidence)
}

func TestResolveAmbiguousFallbackIsDeterministic(t *testing.T) {
	stores := memory.New()
	a := seedPerson(t, stores, "Jean", "Dupont", nil)
	b := seedPerson(t, stores, "Jean", "Dupont", nil)

	lowest := a
	if b.ID.String() < a.ID.String() {
		lowest = b
	}

	r := buildResolver(t, stores)
	rec := &source.Official{FirstName: "Jean", LastName: "Dupont"}

	first := r.Resolve(rec)
	require.NotNil(t, first.Person)
	assert.True(t, first.LowConfidence, "ambiguous fallback must be flagged")
	assert.Equal(t, lowest.ID, first.Person.ID)

	second := r.Resolve(rec)
	require.NotNil(t, second.Person)
	assert.Equal(t, first.Person.ID, second.Person.ID, "same input, same candidate")
}

func TestResolveRequiresExactFoldedFirstName(t *testing.T) {
	stores := memory.New()
	seedPerson(t, stores, "Jeanne", "Dupont", nil)

	r := buildResolver(t, stores)

	// A first-name prefix is a different person, not a match.
	match := r.Resolve(&source.Official{FirstName: "Jean", LastName: "Dupont"})
	assert.Nil(t, match.Person)
	assert.Equal(t, reconcile.ViaCreated, match.Via)

	// Folding still absorbs case, accents, and hyphen/space variants.
	match = r.Resolve(&source.Official{FirstName: "JEANNE", LastName: "DUPONT"})
	require.NotNil(t, match.Person)

	hyphenated := seedPerson(t, stores, "Jean-Luc", "Mélenchon", nil)
	r = buildResolver(t, stores)
	match = r.Resolve(&source.Official{FirstName: "Jean Luc", LastName: "Melenchon"})
	require.NotNil(t, match.Person)
	assert.Equal(t, hyphenated.ID, match.Person.ID)
}
