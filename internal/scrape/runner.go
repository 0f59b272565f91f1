package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/aaearon/i4-scout/internal/fetchcache"
	"github.com/aaearon/i4-scout/internal/metrics"
	"github.com/aaearon/i4-scout/internal/reconcile"
	"github.com/aaearon/i4-scout/internal/store"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

// defaultFetchRate paces live fetches to one page every two seconds.
const defaultFetchRate = 2 * time.Second

// Runner executes scrape passes for one scraper.
type Runner struct {
	scraper    Scraper
	reconciler *reconcile.Reconciler
	store      store.Store
	cache      *fetchcache.Cache
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewRunner creates a Runner with injected dependencies.
func NewRunner(
	sc Scraper,
	rec *reconcile.Reconciler,
	st store.Store,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		scraper:    sc,
		reconciler: rec,
		store:      st,
		limiter:    rate.NewLimiter(rate.Every(defaultFetchRate), 1),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunnerOption configures the Runner.
type RunnerOption func(*Runner)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = l
	}
}

// WithCache enables the retrieval cache for fetched pages.
func WithCache(c *fetchcache.Cache) RunnerOption {
	return func(r *Runner) {
		r.cache = c
	}
}

// WithFetchInterval sets the minimum spacing between live fetches.
func WithFetchInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// RunPass executes one full scrape pass and returns its summary.
//
// Per-listing failures are counted and logged, never fatal. The
// delisting lifecycle update runs only when every search page of the
// pass was fetched live: a listing parsed out of a cached page was
// not observed now, and a listing absent from a cached page was not
// observed missing either.
func (r *Runner) RunPass(ctx context.Context) (domain.PassSummary, error) {
	source := r.scraper.Source()
	summary := domain.PassSummary{Source: source}
	start := time.Now()
	defer func() {
		metrics.PassDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())
	}()

	passID, err := r.store.InsertScrapePass(ctx, source)
	if err != nil {
		return summary, fmt.Errorf("recording pass start: %w", err)
	}

	seen, allFresh, err := r.runPass(ctx, source, &summary)
	if err != nil {
		_ = r.store.CompleteScrapePass(ctx, passID, "failed", err.Error(), summary)
		return summary, err
	}

	if allFresh {
		delisted, err := r.reconciler.FinishPass(ctx, source, seen)
		if err != nil {
			_ = r.store.CompleteScrapePass(ctx, passID, "failed", err.Error(), summary)
			return summary, fmt.Errorf("finishing pass: %w", err)
		}
		summary.Delisted = delisted
	} else {
		r.log.Info("lifecycle update skipped, pass used cached search pages",
			"source", source,
		)
	}

	if err := r.store.CompleteScrapePass(ctx, passID, "completed", "", summary); err != nil {
		return summary, fmt.Errorf("recording pass completion: %w", err)
	}

	r.log.Info("pass completed",
		"source", source,
		"found", summary.Found,
		"new", summary.New,
		"updated", summary.Updated,
		"skipped_unchanged", summary.SkippedUnchanged,
		"failed", summary.Failed,
		"delisted", summary.Delisted,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return summary, nil
}

func (r *Runner) runPass(
	ctx context.Context,
	source domain.Source,
	summary *domain.PassSummary,
) (seen []string, allFresh bool, err error) {
	allFresh = true

	for _, searchURL := range r.scraper.SearchURLs() {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		page, fresh, err := r.fetchPage(ctx, fetchcache.ClassSearch, searchURL)
		if err != nil {
			return nil, false, fmt.Errorf("fetching search page %s: %w", searchURL, err)
		}
		if !fresh {
			allFresh = false
		}

		summaries, err := r.scraper.ParseSearch(page)
		if err != nil {
			return nil, false, fmt.Errorf("parsing search page %s: %w", searchURL, err)
		}

		for i := range summaries {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}

			id, err := r.processSummary(ctx, &summaries[i], summary)
			if err != nil {
				summary.Failed++
				metrics.PassErrorsTotal.WithLabelValues(string(source)).Inc()
				r.log.Error("listing failed",
					"source", source,
					"url", summaries[i].URL,
					"error", err,
				)
				continue
			}
			if fresh && id != "" {
				seen = append(seen, id)
			}
		}
	}

	metrics.PassListingsFound.WithLabelValues(string(source)).Add(float64(summary.Found))
	return seen, allFresh, nil
}

// processSummary reconciles one search result and returns the listing
// ID it resolved to, or "" when the listing could not be identified.
func (r *Runner) processSummary(
	ctx context.Context,
	s *domain.ListingSummary,
	summary *domain.PassSummary,
) (string, error) {
	summary.Found++

	// A known listing with an unchanged price needs no detail fetch.
	unchanged, err := r.store.ListingPriceUnchanged(ctx, s.URL, s.Price)
	if err != nil {
		return "", fmt.Errorf("checking stored price: %w", err)
	}
	if unchanged {
		summary.SkippedUnchanged++
		known, err := r.store.GetListingByURL(ctx, s.URL)
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("resolving unchanged listing: %w", err)
		}
		return known.ID, nil
	}

	page, _, err := r.fetchPage(ctx, fetchcache.ClassDetail, s.URL)
	if err != nil {
		return "", fmt.Errorf("fetching detail page: %w", err)
	}

	sl, err := r.scraper.ParseDetail(page)
	if err != nil {
		return "", fmt.Errorf("parsing detail page: %w", err)
	}
	if sl.ExternalID == "" {
		sl.ExternalID = s.ExternalID
	}

	l, created, err := r.reconciler.Upsert(ctx, sl)
	if err != nil {
		return "", fmt.Errorf("reconciling listing: %w", err)
	}
	if created {
		summary.New++
	} else {
		summary.Updated++
	}
	return l.ID, nil
}

// fetchPage serves a page from the cache when possible, fetching live
// on a miss. fresh reports whether the page was fetched live.
func (r *Runner) fetchPage(
	ctx context.Context,
	class fetchcache.Class,
	url string,
) (body []byte, fresh bool, err error) {
	if r.cache != nil {
		body, hit, err := r.cache.Get(ctx, class, url)
		if err != nil {
			return nil, false, err
		}
		if hit {
			return body, false, nil
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	body, err = r.scraper.Fetch(ctx, url)
	if err != nil {
		return nil, false, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, class, url, body); err != nil {
			// A broken cache degrades to uncached fetching.
			r.log.Warn("caching page failed", "url", url, "error", err)
		}
	}

	return body, true, nil
}
