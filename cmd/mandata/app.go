package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"mandata/internal/events"
	"mandata/internal/platform/config"
	"mandata/internal/platform/database"
	"mandata/internal/platform/logger"
	"mandata/internal/platform/metrics"
	"mandata/internal/platform/redis"
	"mandata/internal/reconcile"
	"mandata/internal/store"
	storepg "mandata/internal/store/postgres"
	"mandata/internal/syncer"
	"mandata/internal/synclock"
	pstrings "mandata/pkg/platform/strings"
)

// app bundles the wired dependencies shared by serve and sync.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	pool      *pgxpool.Pool
	redis     *redis.Client
	publisher events.Publisher
	syncs     *syncer.Service
	stores    store.Stores
}

// newApp wires the full stack. Redis and Kafka are optional: without them
// run locking and change events degrade to no-ops.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	stores := storepg.New(pool)

	a := &app{cfg: cfg, logger: log, pool: pool, publisher: events.Nop{}}

	a.redis, err = redis.New(ctx, cfg.RedisURL)
	if err != nil {
		a.Close()
		return nil, err
	}

	if brokers := pstrings.DedupeAndTrim(cfg.KafkaBrokers); len(brokers) > 0 {
		a.publisher, err = events.NewKafka(ctx, brokers, cfg.KafkaTopic, log)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	engine, err := reconcile.NewEngine(stores,
		reconcile.WithLogger(log),
		reconcile.WithMetrics(metrics.New()),
		reconcile.WithPublisher(a.publisher))
	if err != nil {
		a.Close()
		return nil, err
	}

	catalog, err := config.LoadCatalog(cfg.SourcesFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	var locker synclock.Locker = synclock.Nop{}
	if a.redis != nil {
		locker = synclock.NewRedis(a.redis.Client)
	}
	a.syncs, err = syncer.New(engine, catalog,
		syncer.WithLocker(locker), syncer.WithLogger(log))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.stores = stores
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("closing event publisher", "err", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("closing redis", "err", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *app) requireSigningKey() error {
	if a.cfg.JWTSigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required to serve the API")
	}
	return nil
}
