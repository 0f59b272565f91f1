// Package enrich attaches option matches found in vehicle document
// text (spec sheets, order confirmations) to already-stored listings.
// Extracting text from the documents themselves happens upstream; this
// package only consumes the text.
package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aaearon/i4-scout/internal/catalog"
	"github.com/aaearon/i4-scout/internal/match"
	"github.com/aaearon/i4-scout/internal/store"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

// Enricher matches document text against the catalog for one listing.
type Enricher struct {
	store   store.Store
	catalog *catalog.Catalog
	weights match.Weights
	log     *slog.Logger
}

// New creates an Enricher with injected dependencies.
func New(s store.Store, cat *catalog.Catalog, opts ...Option) *Enricher {
	e := &Enricher{
		store:   s,
		catalog: cat,
		weights: match.DefaultWeights(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures the Enricher.
type Option func(*Enricher)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Enricher) {
		e.log = l
	}
}

// WithWeights sets custom scoring weights.
func WithWeights(w match.Weights) Option {
	return func(e *Enricher) {
		e.weights = w
	}
}

// Report describes what one enrichment run changed.
type Report struct {
	ListingID   string
	NewOptions  []string
	Score       float64
	IsQualified bool
}

// Enrich matches docText against the catalog, attaches any options not
// already associated with the listing under pdf provenance, and
// re-scores the listing over the union of all stored associations.
// Scrape-sourced associations are never touched.
func (e *Enricher) Enrich(ctx context.Context, listingID, docText string) (*Report, error) {
	l, err := e.store.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("loading listing: %w", err)
	}

	// The document text serves as both an option line for alias
	// matching and as free text for manufacturer-code matching.
	res := match.Options([]string{docText}, docText, e.catalog)

	stored, err := e.store.GetListingOptions(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("loading stored options: %w", err)
	}
	known := make(map[string]bool, len(stored))
	for _, o := range stored {
		known[o.Name] = true
	}

	var added []domain.MatchedOption
	for _, ms := range [][]match.Match{res.Required, res.NiceToHave, res.Dealbreakers} {
		for _, m := range ms {
			if known[m.Name] {
				continue
			}
			known[m.Name] = true
			added = append(added, domain.MatchedOption{
				ListingID:  l.ID,
				Name:       m.Name,
				Provenance: domain.ProvenancePDF,
				MatchedVia: m.Via,
			})
		}
	}

	if len(added) > 0 {
		if err := e.store.AddListingOptions(ctx, l.ID, added); err != nil {
			return nil, fmt.Errorf("attaching pdf options: %w", err)
		}
	}

	// Score from the stored associations: the union of everything the
	// scrape matched and everything documents have contributed.
	allNames := make([]string, 0, len(known))
	for name := range known {
		allNames = append(allNames, name)
	}
	scored := match.Score(match.MergeKnown(match.Result{}, e.catalog, allNames), e.catalog, e.weights)

	if err := e.store.UpdateScore(ctx, l.ID, scored.Score, scored.IsQualified); err != nil {
		return nil, fmt.Errorf("updating score: %w", err)
	}

	report := &Report{
		ListingID:   l.ID,
		Score:       scored.Score,
		IsQualified: scored.IsQualified,
	}
	for _, o := range added {
		report.NewOptions = append(report.NewOptions, o.Name)
	}

	e.log.Info("listing enriched",
		"id", l.ID,
		"new_options", len(report.NewOptions),
		"score", scored.Score,
		"qualified", scored.IsQualified,
	)

	return report, nil
}
