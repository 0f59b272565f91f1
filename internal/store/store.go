// Package store defines the datastore abstraction for i4-scout.
// The reconciliation pipeline depends on the Store interface, never on
// concrete implementations; this keeps matching and lifecycle logic
// testable against the in-memory implementation.
package store

import (
	"context"
	"errors"

	domain "github.com/aaearon/i4-scout/pkg/types"
)

// ErrNotFound is returned when a lookup resolves no row.
var ErrNotFound = errors.New("not found")

// ListingQuery defines optional filters for listing queries.
type ListingQuery struct {
	Source        *domain.Source
	Status        *domain.ListingStatus
	QualifiedOnly bool
	MinScore      *float64
	PriceMin      *int
	PriceMax      *int
	MileageMax    *int
	YearMin       *int
	Search        string
	Limit         int // default 50
	Offset        int
	OrderBy       string // "score", "price", "mileage", "first_seen", "last_seen"
	Ascending     bool
}

// Store defines all data access operations for the reconciliation core.
//
// Mutating operations are retried internally on the documented class of
// transient write-conflict errors; any error they return is final. The
// lifecycle operations (IncrementMisses, ResetMisses, DelistAtThreshold)
// act on durable state only: DelistAtThreshold must evaluate the stored
// miss counter at flip time, never a previously loaded copy.
type Store interface {
	// Listings
	GetListingByID(ctx context.Context, id string) (*domain.Listing, error)
	GetListingByExternalID(ctx context.Context, externalID string) (*domain.Listing, error)
	GetListingByURL(ctx context.Context, url string) (*domain.Listing, error)
	GetListingByDedupHash(ctx context.Context, hash string) (*domain.Listing, error)
	CreateListing(ctx context.Context, l *domain.Listing) error
	UpdateListing(ctx context.Context, l *domain.Listing) error
	ListListings(ctx context.Context, q *ListingQuery) ([]domain.Listing, int, error)
	UpdateScore(ctx context.Context, id string, score float64, qualified bool) error
	ListingPriceUnchanged(ctx context.Context, url string, price *int) (bool, error)

	// Matched-option associations
	GetListingOptions(ctx context.Context, listingID string) ([]domain.MatchedOption, error)
	ReplaceListingOptions(ctx context.Context, listingID string, provenance domain.Provenance, opts []domain.MatchedOption) error
	AddListingOptions(ctx context.Context, listingID string, opts []domain.MatchedOption) error

	// Price history
	AppendPriceHistory(ctx context.Context, listingID string, price int) error
	GetPriceHistory(ctx context.Context, listingID string) ([]domain.PriceHistoryEntry, error)

	// Lifecycle
	ListActiveIDsBySource(ctx context.Context, source domain.Source) ([]string, error)
	IncrementMisses(ctx context.Context, ids []string) error
	ResetMisses(ctx context.Context, ids []string) error
	DelistAtThreshold(ctx context.Context, ids []string, threshold int) (int, error)

	// Scrape pass bookkeeping
	InsertScrapePass(ctx context.Context, source domain.Source) (id string, err error)
	CompleteScrapePass(ctx context.Context, id, status, errText string, summary domain.PassSummary) error
	ListScrapePasses(ctx context.Context, limit int) ([]domain.ScrapePass, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
