// Package reconcile owns the write path of the pipeline: it turns
// scraped listings into persisted records, resolving identity across
// sources, tracking price history, and driving the delisting lifecycle.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaearon/i4-scout/internal/catalog"
	"github.com/aaearon/i4-scout/internal/match"
	"github.com/aaearon/i4-scout/internal/metrics"
	"github.com/aaearon/i4-scout/internal/store"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

const defaultDelistAfter = 2

// ErrInvalidListing is returned when a scraped listing is missing the
// fields reconciliation cannot work without.
var ErrInvalidListing = errors.New("invalid scraped listing")

// Reconciler applies scraped listings to the store.
type Reconciler struct {
	store       store.Store
	catalog     *catalog.Catalog
	weights     match.Weights
	delistAfter int
	log         *slog.Logger

	locks keyedMutex
}

// New creates a Reconciler with injected dependencies.
func New(s store.Store, cat *catalog.Catalog, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:       s,
		catalog:     cat,
		weights:     match.DefaultWeights(),
		delistAfter: defaultDelistAfter,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures the Reconciler.
type Option func(*Reconciler)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.log = l
	}
}

// WithWeights sets custom scoring weights.
func WithWeights(w match.Weights) Option {
	return func(r *Reconciler) {
		r.weights = w
	}
}

// WithDelistAfter sets the consecutive-miss threshold for delisting.
func WithDelistAfter(n int) Option {
	return func(r *Reconciler) {
		r.delistAfter = n
	}
}

// Upsert reconciles one scraped listing into the store and returns the
// persisted record plus whether it was newly created.
//
// Identity is resolved external_id first, then canonical URL, then the
// content hash; when external_id and URL point at different rows the
// external_id row wins. Writes for one identity are serialized, so
// concurrent passes observing the same vehicle cannot interleave
// half-written state. Cancellation is honored only before the first
// write; an upsert that has started always runs to completion.
func (r *Reconciler) Upsert(ctx context.Context, sl *domain.ScrapedListing) (*domain.Listing, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := validate(sl); err != nil {
		return nil, false, err
	}

	// Both identity keys are locked so a concurrent observation
	// carrying only one of them still serializes against this one.
	unlock := r.locks.lockAll(sl.ExternalID, sl.URL)
	defer unlock()

	// Past the boundary check above the write sequence must run to
	// completion; cancellation mid-upsert would leave a listing row
	// without its initial price history or option associations.
	ctx = context.WithoutCancel(ctx)

	existing, err := r.resolve(ctx, sl)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("resolving listing identity: %w", err)
	}

	res := match.Options(sl.RawOptions, sl.FreeText(), r.catalog)

	if existing == nil {
		l, err := r.create(ctx, sl, res)
		if err != nil {
			return nil, false, err
		}
		return l, true, nil
	}

	l, err := r.update(ctx, existing, sl, res)
	if err != nil {
		return nil, false, err
	}
	return l, false, nil
}

func validate(sl *domain.ScrapedListing) error {
	var errs []error
	if sl.Source == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if sl.URL == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if sl.Title == "" {
		errs = append(errs, errors.New("title is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidListing, errors.Join(errs...))
	}
	return nil
}

// resolve finds the stored row this scraped listing refers to, or nil.
func (r *Reconciler) resolve(ctx context.Context, sl *domain.ScrapedListing) (*domain.Listing, error) {
	if sl.ExternalID != "" {
		l, err := r.store.GetListingByExternalID(ctx, sl.ExternalID)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	l, err := r.store.GetListingByURL(ctx, sl.URL)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash := domain.ComputeDedupHash(sl.Source, sl.Title, sl.Price, sl.MileageKM, sl.Year)
	return r.store.GetListingByDedupHash(ctx, hash)
}

func (r *Reconciler) create(
	ctx context.Context,
	sl *domain.ScrapedListing,
	res match.Result,
) (*domain.Listing, error) {
	scored := match.Score(res, r.catalog, r.weights)

	l := &domain.Listing{
		Source:      sl.Source,
		ExternalID:  sl.ExternalID,
		URL:         sl.URL,
		Title:       sl.Title,
		Price:       sl.Price,
		MileageKM:   sl.MileageKM,
		Year:        sl.Year,
		Description: sl.Description,
		RawOptions:  sl.RawOptions,
		DedupHash:   domain.ComputeDedupHash(sl.Source, sl.Title, sl.Price, sl.MileageKM, sl.Year),
		MatchScore:  scored.Score,
		IsQualified: scored.IsQualified,
	}

	if err := r.store.CreateListing(ctx, l); err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	if sl.Price != nil {
		if err := r.store.AppendPriceHistory(ctx, l.ID, *sl.Price); err != nil {
			return nil, fmt.Errorf("recording initial price: %w", err)
		}
	}

	opts := toMatchedOptions(l.ID, res)
	if err := r.store.ReplaceListingOptions(ctx, l.ID, domain.ProvenanceScrape, opts); err != nil {
		return nil, fmt.Errorf("storing matched options: %w", err)
	}

	metrics.ListingsCreatedTotal.Inc()
	metrics.ScoreDistribution.Observe(scored.Score)
	r.log.Info("listing created",
		"id", l.ID,
		"source", l.Source,
		"url", l.URL,
		"score", scored.Score,
		"qualified", scored.IsQualified,
	)

	return l, nil
}

func (r *Reconciler) update(
	ctx context.Context,
	existing *domain.Listing,
	sl *domain.ScrapedListing,
	res match.Result,
) (*domain.Listing, error) {
	// Scoring considers pdf-sourced associations the scrape cannot see.
	stored, err := r.store.GetListingOptions(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("loading stored options: %w", err)
	}
	scored := match.Score(match.MergeKnown(res, r.catalog, pdfNames(stored)), r.catalog, r.weights)

	// Price history is appended before the price column is overwritten.
	if priceChanged(existing.Price, sl.Price) && sl.Price != nil {
		if err := r.store.AppendPriceHistory(ctx, existing.ID, *sl.Price); err != nil {
			return nil, fmt.Errorf("recording price change: %w", err)
		}
		metrics.PriceChangesTotal.Inc()
		r.log.Info("price changed",
			"id", existing.ID,
			"old", intOr(existing.Price, 0),
			"new", *sl.Price,
		)
	}

	l := &domain.Listing{
		ID:          existing.ID,
		Source:      existing.Source,
		ExternalID:  firstNonEmpty(sl.ExternalID, existing.ExternalID),
		URL:         sl.URL,
		Title:       sl.Title,
		Price:       sl.Price,
		MileageKM:   sl.MileageKM,
		Year:        sl.Year,
		Description: sl.Description,
		RawOptions:  sl.RawOptions,
		DedupHash:   domain.ComputeDedupHash(sl.Source, sl.Title, sl.Price, sl.MileageKM, sl.Year),
		MatchScore:  scored.Score,
		IsQualified: scored.IsQualified,
	}

	if err := r.store.UpdateListing(ctx, l); err != nil {
		return nil, fmt.Errorf("updating listing: %w", err)
	}

	// Scrape-sourced associations are replaced wholesale; pdf-sourced
	// ones stay.
	opts := toMatchedOptions(l.ID, res)
	if err := r.store.ReplaceListingOptions(ctx, l.ID, domain.ProvenanceScrape, opts); err != nil {
		return nil, fmt.Errorf("storing matched options: %w", err)
	}

	metrics.ListingsUpdatedTotal.Inc()
	metrics.ScoreDistribution.Observe(scored.Score)

	return l, nil
}

// FinishPass runs the lifecycle update that closes a scrape pass for
// one source. seenIDs are the listing IDs observed in the pass; every
// previously active listing of the source not among them takes a miss,
// and those whose stored miss count has reached the threshold flip to
// delisted. Seen listings get their counter reset and, if delisted,
// reactivate. Returns the number of listings delisted.
func (r *Reconciler) FinishPass(ctx context.Context, source domain.Source, seenIDs []string) (int, error) {
	active, err := r.store.ListActiveIDsBySource(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("listing active listings: %w", err)
	}

	seen := make(map[string]bool, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = true
	}

	var unseen []string
	for _, id := range active {
		if !seen[id] {
			unseen = append(unseen, id)
		}
	}

	// The increment and the flip are separate durable operations; the
	// flip re-reads the counter inside the store, so a concurrently
	// bumped count is honored.
	if err := r.store.IncrementMisses(ctx, unseen); err != nil {
		return 0, fmt.Errorf("incrementing misses: %w", err)
	}

	delisted, err := r.store.DelistAtThreshold(ctx, unseen, r.delistAfter)
	if err != nil {
		return 0, fmt.Errorf("delisting at threshold: %w", err)
	}

	if err := r.store.ResetMisses(ctx, seenIDs); err != nil {
		return 0, fmt.Errorf("resetting misses: %w", err)
	}

	if delisted > 0 {
		metrics.ListingsDelistedTotal.Add(float64(delisted))
		r.log.Info("listings delisted",
			"source", source,
			"count", delisted,
			"threshold", r.delistAfter,
		)
	}

	return delisted, nil
}

func toMatchedOptions(listingID string, res match.Result) []domain.MatchedOption {
	var opts []domain.MatchedOption
	for _, ms := range [][]match.Match{res.Required, res.NiceToHave, res.Dealbreakers} {
		for _, m := range ms {
			opts = append(opts, domain.MatchedOption{
				ListingID:  listingID,
				Name:       m.Name,
				Provenance: domain.ProvenanceScrape,
				MatchedVia: m.Via,
				RawText:    m.RawText,
			})
		}
	}
	return opts
}

func pdfNames(opts []domain.MatchedOption) []string {
	var names []string
	for _, o := range opts {
		if o.Provenance == domain.ProvenancePDF {
			names = append(names, o.Name)
		}
	}
	return names
}

func priceChanged(old, new *int) bool {
	if old == nil || new == nil {
		return (old == nil) != (new == nil)
	}
	return *old != *new
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
