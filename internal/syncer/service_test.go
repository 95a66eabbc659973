package syncer_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mandata/internal/platform/config"
	"mandata/internal/reconcile"
	"mandata/internal/store/memory"
	"mandata/internal/syncer"
	"mandata/internal/synclock"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
)

const senatFeed = "Matricule;Nom usuel;Prénom usuel;Département;Date de début de mandat\n" +
	"08015R;Dupont;Jean;33;2023-10-02\n"

type recordingLocker struct {
	acquired []id.Source
	held     bool
}

func (l *recordingLocker) Acquire(_ context.Context, src id.Source, _ time.Duration) (func(), error) {
	if l.held {
		return nil, synclock.ErrHeld
	}
	l.acquired = append(l.acquired, src)
	return func() {}, nil
}

func newService(t *testing.T, catalog config.Catalog, locker synclock.Locker) *syncer.Service {
	t.Helper()
	engine, err := reconcile.NewEngine(memory.New())
	require.NoError(t, err)
	svc, err := syncer.New(engine, catalog, syncer.WithLocker(locker))
	require.NoError(t, err)
	return svc
}

func TestRunSyncsCataloguedSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, senatFeed)
	}))
	defer srv.Close()

	catalog := config.Catalog{Sources: map[string]config.Feed{
		"senat": {URL: srv.URL},
	}}
	locker := &recordingLocker{}
	svc := newService(t, catalog, locker)

	summaries, err := svc.Run(context.Background(), id.SourceSenat, reconcile.Options{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Success, "errors: %v", summaries[0].Errors)
	assert.Equal(t, 1, summaries[0].Created)
	assert.Equal(t, []id.Source{id.SourceSenat}, locker.acquired)
}

func TestRunRejectsUnsyncableSources(t *testing.T) {
	svc := newService(t, config.Catalog{}, synclock.Nop{})

	_, err := svc.Run(context.Background(), id.SourceManual, reconcile.Options{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.Run(context.Background(), id.Source("nope"), reconcile.Options{})
	require.Error(t, err)
}

func TestRunRefusesWhileLockHeld(t *testing.T) {
	svc := newService(t, config.Catalog{Sources: map[string]config.Feed{
		"senat": {URL: "http://example.invalid"},
	}}, &recordingLocker{held: true})

	_, err := svc.Run(context.Background(), id.SourceSenat, reconcile.Options{})
	require.ErrorIs(t, err, synclock.ErrHeld)
}

func TestRunMissingCatalogEntry(t *testing.T) {
	svc := newService(t, config.Catalog{}, synclock.Nop{})
	_, err := svc.Run(context.Background(), id.SourceSenat, reconcile.Options{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestRunManyReportsFailuresPerSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, senatFeed)
	}))
	defer srv.Close()

	catalog := config.Catalog{Sources: map[string]config.Feed{
		"senat": {URL: srv.URL},
	}}
	svc := newService(t, catalog, synclock.Nop{})

	results := svc.RunMany(context.Background(),
		[]id.Source{id.SourceSenat, id.SourceGouvernement}, reconcile.Options{})
	require.Len(t, results, 2)
	assert.True(t, results[id.SourceSenat][0].Success)
	require.Len(t, results[id.SourceGouvernement], 1)
	assert.False(t, results[id.SourceGouvernement][0].Success, "uncatalogued source fails in its own summary")
}
