package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aaearon/i4-scout/internal/catalog"
	"github.com/aaearon/i4-scout/internal/config"
	"github.com/aaearon/i4-scout/internal/fetchcache"
	"github.com/aaearon/i4-scout/internal/reconcile"
	"github.com/aaearon/i4-scout/internal/scrape"
	"github.com/aaearon/i4-scout/internal/store"
	"github.com/aaearon/i4-scout/pkg/logger"
)

// app bundles the wired dependencies shared by the CLI commands.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	store   store.Store
	catalog *catalog.Catalog
	close   func()
}

// newApp loads configuration and connects the store. With dryRun set the
// in-memory store is used and nothing touches the database.
func newApp(ctx context.Context, dryRun bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	a := &app{cfg: cfg, log: log, catalog: cat, close: func() {}}

	if dryRun {
		a.store = store.NewMemoryStore()
		return a, nil
	}

	pg, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	a.store = pg
	a.close = pg.Close
	return a, nil
}

func (a *app) reconciler() *reconcile.Reconciler {
	return reconcile.New(a.store, a.catalog,
		reconcile.WithLogger(a.log),
		reconcile.WithWeights(a.cfg.Scoring.Weights()),
		reconcile.WithDelistAfter(a.cfg.Lifecycle.DelistAfterMisses),
	)
}

// cache connects the retrieval cache when enabled, or returns nil for
// uncached operation.
func (a *app) cache(ctx context.Context, bypass bool) (*fetchcache.Cache, error) {
	if !a.cfg.Redis.Enabled {
		return nil, nil
	}
	c, err := fetchcache.New(ctx, a.cfg.Redis.Addr,
		fetchcache.WithLogger(a.log),
		fetchcache.WithSearchTTL(a.cfg.Redis.SearchTTL),
		fetchcache.WithDetailTTL(a.cfg.Redis.DetailTTL),
		fetchcache.WithBypass(bypass),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return c, nil
}

func (a *app) runner(src config.SourceConfig, cache *fetchcache.Cache, rec *reconcile.Reconciler) *scrape.Runner {
	opts := []scrape.RunnerOption{
		scrape.WithLogger(a.log),
		scrape.WithFetchInterval(a.cfg.Scrape.FetchInterval),
	}
	if cache != nil {
		opts = append(opts, scrape.WithCache(cache))
	}
	sc := scrape.NewFeedScraper(src.Source, src.SearchURLs)
	return scrape.NewRunner(sc, rec, a.store, opts...)
}
