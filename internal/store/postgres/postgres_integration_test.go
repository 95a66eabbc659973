//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/domain"
	"mandata/internal/platform/database"
	"mandata/internal/store"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
	"mandata/pkg/testutil/containers"
)

func setupStores(t *testing.T) store.Stores {
	t.Helper()
	ctx := context.Background()

	pool, err := database.Connect(ctx, containers.PostgresURL(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	return New(pool)
}

func TestPersonRoundtrip(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	p := domain.NewPerson("Jeanne", "Martin", now)
	p.Department = "75"
	require.NoError(t, stores.Persons.Create(ctx, p))

	got, err := stores.Persons.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jeanne", got.FirstName)
	assert.Equal(t, "jeanne-martin", got.Slug)
	assert.Equal(t, "75", got.Department)

	got.Email = "jeanne.martin@senat.fr"
	got.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, stores.Persons.Update(ctx, got))

	again, err := stores.Persons.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "jeanne.martin@senat.fr", again.Email)

	all, err := stores.Persons.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = stores.Persons.Get(ctx, id.NewPersonID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPersonProvenanceSurvivesRoundtrip(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC()

	p := domain.NewPerson("Paul", "Durand", now)
	p.PhotoURL = "https://senat.fr/photos/durand.jpg"
	p.Provenance[domain.FieldPhotoURL] = id.SourceSenat
	require.NoError(t, stores.Persons.Create(ctx, p))

	got, err := stores.Persons.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, id.SourceSenat, got.Provenance[domain.FieldPhotoURL])
}

func TestOrganizationBySlugAndConflict(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC()

	o := domain.NewOrganization("Les Indépendants", now)
	require.NoError(t, stores.Organizations.Create(ctx, o))

	got, err := stores.Organizations.BySlug(ctx, o.Slug)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	dup := domain.NewOrganization("Les Indépendants", now)
	err = stores.Organizations.Create(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestIdentifierAttachIsIdempotentButNeverReassigns(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC()

	owner := domain.NewPerson("Anne", "Leroy", now)
	require.NoError(t, stores.Persons.Create(ctx, owner))
	other := domain.NewPerson("Marc", "Petit", now)
	require.NoError(t, stores.Persons.Create(ctx, other))

	ident := domain.PersonIdentifier(id.SourceAssemblee, "PA1234", owner.ID, now)
	require.NoError(t, stores.Identifiers.Attach(ctx, ident))
	require.NoError(t, stores.Identifiers.Attach(ctx, ident))

	err := stores.Identifiers.Attach(ctx,
		domain.PersonIdentifier(id.SourceAssemblee, "PA1234", other.ID, now))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))

	anchors, err := stores.Identifiers.BySource(ctx, id.SourceAssemblee)
	require.NoError(t, err)
	require.Contains(t, anchors, "PA1234")
	assert.Equal(t, owner.ID, id.PersonID(anchors["PA1234"].OwnerID))
}

func TestMandateOpenCloseLifecycle(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	p := domain.NewPerson("Luc", "Bernard", now)
	require.NoError(t, stores.Persons.Create(ctx, p))

	m := domain.NewMandate(p.ID, domain.MandateSenateur, "Sénat", now, id.SourceSenat, now)
	m.ExternalID = "S042"
	require.NoError(t, stores.Mandates.Create(ctx, m))

	open, err := stores.Mandates.OpenByKind(ctx, domain.MandateSenateur)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "S042", open[0].ExternalID)

	m.Close(now.Add(time.Hour))
	require.NoError(t, stores.Mandates.Update(ctx, m))

	open, err = stores.Mandates.OpenByKind(ctx, domain.MandateSenateur)
	require.NoError(t, err)
	assert.Empty(t, open)

	byPerson, err := stores.Mandates.ByPerson(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, byPerson, 1)
	assert.False(t, byPerson[0].IsCurrent)
	require.NotNil(t, byPerson[0].EndDate)
}

func TestDeclarationByExternalID(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	p := domain.NewPerson("Claire", "Moreau", now)
	require.NoError(t, stores.Persons.Create(ctx, p))

	d := domain.NewDeclaration(p.ID, "interets", "DI-77", now, id.SourceHATVP, now)
	require.NoError(t, stores.Declarations.Create(ctx, d))

	got, err := stores.Declarations.ByExternalID(ctx, id.SourceHATVP, "DI-77")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.PersonID)
	assert.True(t, got.IsCurrent)

	got.Close(now.Add(time.Hour))
	require.NoError(t, stores.Declarations.Update(ctx, got))

	open, err := stores.Declarations.OpenBySource(ctx, id.SourceHATVP)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestRollCallUpsertAndReplaceBallots(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	p := domain.NewPerson("Yves", "Roux", now)
	require.NoError(t, stores.Persons.Create(ctx, p))

	rc := &domain.RollCall{
		Source:     id.SourceAssemblee,
		Number:     12,
		Date:       now,
		Title:      "Projet de loi de finances",
		CountFor:   289,
		BallotHash: "h1",
		UpdatedAt:  now,
	}
	require.NoError(t, stores.RollCalls.Upsert(ctx, rc))

	ballots := []domain.Ballot{
		{Source: rc.Source, Number: rc.Number, PersonID: p.ID, ExternalID: "PA100", Position: domain.VotePour},
		// Unresolved voter: zero person id must be stored as NULL.
		{Source: rc.Source, Number: rc.Number, ExternalID: "PA999", Position: domain.VoteContre},
	}
	require.NoError(t, stores.RollCalls.ReplaceBallots(ctx, rc.Source, rc.Number, ballots))

	rc.CountFor = 290
	rc.BallotHash = "h2"
	require.NoError(t, stores.RollCalls.Upsert(ctx, rc))

	got, err := stores.RollCalls.Get(ctx, rc.Source, rc.Number)
	require.NoError(t, err)
	assert.Equal(t, 290, got.CountFor)
	assert.Equal(t, "h2", got.BallotHash)

	// Re-replacing with a smaller set must not leave stragglers.
	require.NoError(t, stores.RollCalls.ReplaceBallots(ctx, rc.Source, rc.Number, ballots[:1]))
}

func TestDecisionUpsertByExternalID(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	p := domain.NewPerson("Sophie", "Garnier", now)
	require.NoError(t, stores.Persons.Create(ctx, p))

	d := domain.NewJudicialDecision(p.ID, id.SourceJudilibre, "JURI-1", now)
	d.Jurisdiction = "Cour de cassation"
	require.NoError(t, stores.Decisions.Create(ctx, d))

	got, err := stores.Decisions.ByExternalID(ctx, id.SourceJudilibre, "JURI-1")
	require.NoError(t, err)
	assert.Equal(t, "Cour de cassation", got.Jurisdiction)

	got.RawStatus = "cassation partielle"
	got.UpdatedAt = now.Add(time.Minute)
	require.NoError(t, stores.Decisions.Update(ctx, got))

	again, err := stores.Decisions.ByExternalID(ctx, id.SourceJudilibre, "JURI-1")
	require.NoError(t, err)
	assert.Equal(t, "cassation partielle", again.RawStatus)
}

func TestSyncStateUpsert(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := stores.SyncState.Get(ctx, id.SourceAssemblee, "scrutins")
	assert.ErrorIs(t, err, store.ErrNotFound)

	cursor := "42"
	state := domain.SyncState{
		Source:     id.SourceAssemblee,
		Partition:  "scrutins",
		LastSyncAt: now,
		Cursor:     &cursor,
		ItemCount:  42,
	}
	require.NoError(t, stores.SyncState.Put(ctx, state))

	cursor2 := "57"
	state.Cursor = &cursor2
	state.ItemCount = 57
	require.NoError(t, stores.SyncState.Put(ctx, state))

	got, err := stores.SyncState.Get(ctx, id.SourceAssemblee, "scrutins")
	require.NoError(t, err)
	require.NotNil(t, got.Cursor)
	assert.Equal(t, "57", *got.Cursor)
	assert.Equal(t, 57, got.ItemCount)
}

func TestRunStoreKeepsLatestSummary(t *testing.T) {
	stores := setupStores(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := stores.Runs.Last(ctx, id.SourceSenat)
	assert.ErrorIs(t, err, store.ErrNotFound)

	first := domain.Summary{Source: id.SourceSenat, Success: true, Created: 3, StartedAt: now, FinishedAt: now.Add(time.Second)}
	require.NoError(t, stores.Runs.Append(ctx, first))

	second := domain.Summary{Source: id.SourceSenat, Success: true, Matched: 3, StartedAt: now.Add(time.Minute), FinishedAt: now.Add(2 * time.Minute)}
	require.NoError(t, stores.Runs.Append(ctx, second))

	got, err := stores.Runs.Last(ctx, id.SourceSenat)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Matched)
	assert.Equal(t, 0, got.Created)
}
