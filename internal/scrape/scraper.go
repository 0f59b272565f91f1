// Package scrape drives scrape passes: it walks a marketplace through
// a Scraper collaborator, reconciles what it finds, and closes each
// pass with the delisting lifecycle update.
package scrape

import (
	"context"

	domain "github.com/aaearon/i4-scout/pkg/types"
)

// Scraper is the marketplace collaborator. Implementations own HTML
// parsing and request shaping; the runner owns caching, pacing, and
// everything downstream of a parsed listing.
type Scraper interface {
	// Source identifies the marketplace this scraper covers.
	Source() domain.Source

	// SearchURLs returns the search result pages of one full pass, in
	// fetch order.
	SearchURLs() []string

	// Fetch retrieves a page live.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// ParseSearch extracts per-listing summaries from a search page.
	ParseSearch(page []byte) ([]domain.ListingSummary, error)

	// ParseDetail extracts one full listing from a detail page.
	ParseDetail(page []byte) (*domain.ScrapedListing, error)
}
