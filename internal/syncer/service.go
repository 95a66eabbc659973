// Package syncer wires a source name to its adapter, takes the per-source
// run lock, and drives the reconciliation engine. It is the single entry
// point shared by the CLI and the HTTP trigger.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mandata/internal/domain"
	"mandata/internal/platform/config"
	"mandata/internal/reconcile"
	"mandata/internal/source"
	"mandata/internal/source/assemblee"
	"mandata/internal/source/gouvernement"
	"mandata/internal/source/hatvp"
	"mandata/internal/source/judilibre"
	"mandata/internal/source/rne"
	"mandata/internal/source/senat"
	"mandata/internal/source/wikidata"
	"mandata/internal/synclock"
	id "mandata/pkg/domain"
	dErrors "mandata/pkg/domain-errors"
)

// lockTTL bounds how long a crashed run can keep its source blocked.
const lockTTL = 45 * time.Minute

// Service runs syncs.
type Service struct {
	engine  *reconcile.Engine
	catalog config.Catalog
	locker  synclock.Locker
	logger  *slog.Logger
}

// Option customizes the service.
type Option func(*Service)

// WithLocker installs the per-source run lock (defaults to no locking).
func WithLocker(l synclock.Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New builds the sync service.
func New(engine *reconcile.Engine, catalog config.Catalog, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	s := &Service{
		engine:  engine,
		catalog: catalog,
		locker:  synclock.Nop{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run syncs one source under its run lock. Sources with two feeds (the
// assemblee roster plus its roll calls) produce one summary per feed.
func (s *Service) Run(ctx context.Context, src id.Source, opts reconcile.Options) ([]domain.Summary, error) {
	if !src.IsValid() || src == id.SourceManual {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "no feed for source %q", src)
	}
	release, err := s.locker.Acquire(ctx, src, lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	feed, err := s.catalog.Feed(src.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "resolve feed")
	}
	client := source.NewClient(source.WithMinInterval(feed.MinInterval))

	var summaries []domain.Summary
	switch src {
	case id.SourceAssemblee:
		summaries = append(summaries,
			s.engine.RunSnapshot(ctx, assemblee.NewDeputies(client, feed.URL), opts))
		if feed.BallotURL != "" {
			rollCalls := assemblee.NewRollCalls(client, feed.IndexURL, feed.BallotURL)
			summaries = append(summaries, s.engine.RunRollCalls(ctx, rollCalls, opts))
		}
	case id.SourceSenat:
		summaries = append(summaries,
			s.engine.RunSnapshot(ctx, senat.New(client, feed.URL), opts))
	case id.SourceGouvernement:
		summaries = append(summaries,
			s.engine.RunSnapshot(ctx, gouvernement.New(client, feed.URL), opts))
	case id.SourceRNE:
		summaries = append(summaries,
			s.engine.RunSnapshot(ctx, rne.New(client, feed.URL), opts))
	case id.SourceHATVP:
		summaries = append(summaries,
			s.engine.RunSnapshot(ctx, hatvp.New(client, feed.URL), opts))
	case id.SourceWikidata:
		adapter := wikidata.New(client, feed.URL, feed.PersonQuery, feed.PartyQuery)
		summaries = append(summaries, s.engine.RunSnapshot(ctx, adapter, opts))
	case id.SourceJudilibre:
		summaries = append(summaries,
			s.engine.RunSnapshot(ctx, judilibre.New(client, feed.URL, feed.PageSize), opts))
	default:
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "no adapter for source %q", src)
	}
	return summaries, nil
}

// RunMany syncs several sources concurrently. Each source is an independent
// pipeline with its own index, so parallelism across sources is safe; a
// failed source is reported in its own summary instead of cancelling the
// others.
func (s *Service) RunMany(ctx context.Context, sources []id.Source, opts reconcile.Options) map[id.Source][]domain.Summary {
	var (
		mu      sync.Mutex
		results = make(map[id.Source][]domain.Summary, len(sources))
		g       errgroup.Group
	)
	for _, src := range sources {
		g.Go(func() error {
			summaries, err := s.Run(ctx, src, opts)
			if err != nil {
				s.logger.Error("sync failed", "source", src, "err", err)
				failed := domain.Summary{Source: src, StartedAt: time.Now(), DryRun: opts.DryRun}
				failed.AddError(err)
				failed.Finish(time.Now())
				summaries = []domain.Summary{failed}
			}
			mu.Lock()
			results[src] = summaries
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
