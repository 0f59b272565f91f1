package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/aaearon/i4-scout/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL). Durable writes go through withRetry so transient
// serialization and deadlock failures are absorbed up to the attempt
// ceiling.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// CreateListing inserts a new listing and fills in the generated
// identity, lifecycle, and timestamp fields.
func (s *PostgresStore) CreateListing(ctx context.Context, l *domain.Listing) error {
	args := pgx.NamedArgs{
		"source":       string(l.Source),
		"external_id":  l.ExternalID,
		"url":          l.URL,
		"title":        l.Title,
		"price":        l.Price,
		"mileage_km":   l.MileageKM,
		"year":         l.Year,
		"description":  l.Description,
		"raw_options":  l.RawOptions,
		"dedup_hash":   l.DedupHash,
		"match_score":  l.MatchScore,
		"is_qualified": l.IsQualified,
	}

	return withRetry(ctx, func() error {
		err := s.pool.QueryRow(ctx, queryCreateListing, args).Scan(
			&l.ID, &l.Status, &l.ConsecutiveMisses, &l.FirstSeenAt, &l.LastSeenAt,
		)
		if err != nil {
			return fmt.Errorf("creating listing: %w", err)
		}
		return nil
	})
}

// UpdateListing overwrites the mutable scraped fields of an existing
// listing and refreshes last_seen_at. Lifecycle columns are untouched;
// those move only through the dedicated lifecycle operations.
func (s *PostgresStore) UpdateListing(ctx context.Context, l *domain.Listing) error {
	args := pgx.NamedArgs{
		"id":           l.ID,
		"external_id":  l.ExternalID,
		"url":          l.URL,
		"title":        l.Title,
		"price":        l.Price,
		"mileage_km":   l.MileageKM,
		"year":         l.Year,
		"description":  l.Description,
		"raw_options":  l.RawOptions,
		"dedup_hash":   l.DedupHash,
		"match_score":  l.MatchScore,
		"is_qualified": l.IsQualified,
	}

	return withRetry(ctx, func() error {
		tag, err := s.pool.Exec(ctx, queryUpdateListing, args)
		if err != nil {
			return fmt.Errorf("updating listing: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetListingByID retrieves a listing by its internal UUID.
func (s *PostgresStore) GetListingByID(ctx context.Context, id string) (*domain.Listing, error) {
	return s.getListing(ctx, queryGetListingByID, id)
}

// GetListingByExternalID retrieves a listing by its marketplace ID.
func (s *PostgresStore) GetListingByExternalID(ctx context.Context, externalID string) (*domain.Listing, error) {
	return s.getListing(ctx, queryGetListingByExternalID, externalID)
}

// GetListingByURL retrieves a listing by its canonical URL.
func (s *PostgresStore) GetListingByURL(ctx context.Context, url string) (*domain.Listing, error) {
	return s.getListing(ctx, queryGetListingByURL, url)
}

// GetListingByDedupHash retrieves a listing by its content identity hash.
func (s *PostgresStore) GetListingByDedupHash(ctx context.Context, hash string) (*domain.Listing, error) {
	return s.getListing(ctx, queryGetListingByDedupHash, hash)
}

func (s *PostgresStore) getListing(ctx context.Context, query, arg string) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := scanListing(s.pool.QueryRow(ctx, query, arg), l)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ListListings queries listings with optional filters, returning
// results and total count.
func (s *PostgresStore) ListListings(
	ctx context.Context,
	q *ListingQuery,
) ([]domain.Listing, int, error) {
	dataSQL, countSQL, args := q.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting listings: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := scanListing(rows, &l); err != nil {
			return nil, 0, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating listings: %w", err)
	}

	return listings, total, nil
}

// UpdateScore updates the derived score fields for a listing without
// touching any scraped or lifecycle columns.
func (s *PostgresStore) UpdateScore(ctx context.Context, id string, score float64, qualified bool) error {
	return withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx, queryUpdateScore, id, score, qualified)
		if err != nil {
			return fmt.Errorf("updating score: %w", err)
		}
		return nil
	})
}

// ListingPriceUnchanged reports whether a listing with the given URL
// exists and already carries the given price. Unknown URLs report
// false so the caller proceeds with a full reconciliation.
func (s *PostgresStore) ListingPriceUnchanged(ctx context.Context, url string, price *int) (bool, error) {
	var stored *int
	err := s.pool.QueryRow(ctx, queryListingPrice, url).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking listing price: %w", err)
	}

	if stored == nil || price == nil {
		return stored == nil && price == nil, nil
	}
	return *stored == *price, nil
}

// GetListingOptions returns all matched-option associations for a
// listing, both scrape and pdf provenance.
func (s *PostgresStore) GetListingOptions(ctx context.Context, listingID string) ([]domain.MatchedOption, error) {
	rows, err := s.pool.Query(ctx, queryGetListingOptions, listingID)
	if err != nil {
		return nil, fmt.Errorf("querying listing options: %w", err)
	}
	defer rows.Close()

	var opts []domain.MatchedOption
	for rows.Next() {
		var o domain.MatchedOption
		if err := rows.Scan(&o.ListingID, &o.Name, &o.Provenance, &o.MatchedVia, &o.RawText); err != nil {
			return nil, fmt.Errorf("scanning listing option: %w", err)
		}
		opts = append(opts, o)
	}

	return opts, rows.Err()
}

// ReplaceListingOptions atomically swaps all associations of the given
// provenance for a listing. Associations of other provenances are left
// alone, which is what keeps pdf-sourced options alive across
// re-observations.
func (s *PostgresStore) ReplaceListingOptions(
	ctx context.Context,
	listingID string,
	provenance domain.Provenance,
	opts []domain.MatchedOption,
) error {
	return withRetry(ctx, func() error {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		if _, err := tx.Exec(ctx, queryDeleteOptionsByProvenance, listingID, string(provenance)); err != nil {
			return fmt.Errorf("deleting listing options: %w", err)
		}

		for _, o := range opts {
			if _, err := tx.Exec(ctx, queryInsertListingOption,
				listingID, o.Name, string(provenance), o.MatchedVia, o.RawText,
			); err != nil {
				return fmt.Errorf("inserting listing option %q: %w", o.Name, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("committing listing options: %w", err)
		}
		return nil
	})
}

// AddListingOptions inserts associations without touching existing
// ones. Duplicate (listing, name, provenance) keys update in place.
func (s *PostgresStore) AddListingOptions(
	ctx context.Context,
	listingID string,
	opts []domain.MatchedOption,
) error {
	return withRetry(ctx, func() error {
		for _, o := range opts {
			if _, err := s.pool.Exec(ctx, queryInsertListingOption,
				listingID, o.Name, string(o.Provenance), o.MatchedVia, o.RawText,
			); err != nil {
				return fmt.Errorf("inserting listing option %q: %w", o.Name, err)
			}
		}
		return nil
	})
}

// AppendPriceHistory records a price observation for a listing.
func (s *PostgresStore) AppendPriceHistory(ctx context.Context, listingID string, price int) error {
	return withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx, queryAppendPriceHistory, listingID, price)
		if err != nil {
			return fmt.Errorf("appending price history: %w", err)
		}
		return nil
	})
}

// GetPriceHistory returns the price timeline for a listing, oldest
// first.
func (s *PostgresStore) GetPriceHistory(ctx context.Context, listingID string) ([]domain.PriceHistoryEntry, error) {
	rows, err := s.pool.Query(ctx, queryGetPriceHistory, listingID)
	if err != nil {
		return nil, fmt.Errorf("querying price history: %w", err)
	}
	defer rows.Close()

	var entries []domain.PriceHistoryEntry
	for rows.Next() {
		var e domain.PriceHistoryEntry
		if err := rows.Scan(&e.ListingID, &e.Price, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning price history entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ListActiveIDsBySource returns the IDs of all active listings for a
// source. The scrape pass diffs this against its seen set to find
// misses.
func (s *PostgresStore) ListActiveIDsBySource(ctx context.Context, source domain.Source) ([]string, error) {
	rows, err := s.pool.Query(ctx, queryListActiveIDsBySource, string(source))
	if err != nil {
		return nil, fmt.Errorf("querying active listings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning listing id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// IncrementMisses bumps the durable miss counter for the given active
// listings.
func (s *PostgresStore) IncrementMisses(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx, queryIncrementMisses, ids)
		if err != nil {
			return fmt.Errorf("incrementing misses: %w", err)
		}
		return nil
	})
}

// ResetMisses zeroes the miss counter and reactivates the given
// listings.
func (s *PostgresStore) ResetMisses(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx, queryResetMisses, ids)
		if err != nil {
			return fmt.Errorf("resetting misses: %w", err)
		}
		return nil
	})
}

// DelistAtThreshold flips to delisted every given listing whose stored
// miss counter has reached the threshold. The condition is evaluated
// inside the UPDATE, so a counter bumped by a concurrent pass is
// honored rather than overwritten. Returns the number of listings
// delisted.
func (s *PostgresStore) DelistAtThreshold(ctx context.Context, ids []string, threshold int) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var affected int
	err := withRetry(ctx, func() error {
		tag, err := s.pool.Exec(ctx, queryDelistAtThreshold, ids, threshold)
		if err != nil {
			return fmt.Errorf("delisting at threshold: %w", err)
		}
		affected = int(tag.RowsAffected())
		return nil
	})
	return affected, err
}

// InsertScrapePass records the start of a scrape pass and returns its
// UUID.
func (s *PostgresStore) InsertScrapePass(ctx context.Context, source domain.Source) (string, error) {
	var id string
	err := withRetry(ctx, func() error {
		if err := s.pool.QueryRow(ctx, queryInsertScrapePass, string(source)).Scan(&id); err != nil {
			return fmt.Errorf("inserting scrape pass: %w", err)
		}
		return nil
	})
	return id, err
}

// CompleteScrapePass marks a scrape pass as finished with its outcome
// counters.
func (s *PostgresStore) CompleteScrapePass(
	ctx context.Context,
	id, status, errText string,
	summary domain.PassSummary,
) error {
	return withRetry(ctx, func() error {
		_, err := s.pool.Exec(ctx, queryCompleteScrapePass,
			id, status, errText, summary.Found, summary.New, summary.Updated,
			summary.SkippedUnchanged, summary.Failed, summary.Delisted,
		)
		if err != nil {
			return fmt.Errorf("completing scrape pass: %w", err)
		}
		return nil
	})
}

// ListScrapePasses returns the most recent passes, newest first.
func (s *PostgresStore) ListScrapePasses(ctx context.Context, limit int) ([]domain.ScrapePass, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.pool.Query(ctx, queryListScrapePasses, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scrape passes: %w", err)
	}
	defer rows.Close()

	var passes []domain.ScrapePass
	for rows.Next() {
		var p domain.ScrapePass
		if err := rows.Scan(
			&p.ID, &p.Source, &p.StartedAt, &p.CompletedAt, &p.Status,
			&p.ErrorText, &p.Found, &p.New, &p.Updated,
			&p.SkippedUnchanged, &p.Failed, &p.Delisted,
		); err != nil {
			return nil, fmt.Errorf("scanning scrape pass: %w", err)
		}
		passes = append(passes, p)
	}

	return passes, rows.Err()
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

// scanListing scans a full listing row.
func scanListing(row scannable, l *domain.Listing) error {
	return row.Scan(
		&l.ID, &l.Source, &l.ExternalID, &l.URL, &l.Title,
		&l.Price, &l.MileageKM, &l.Year,
		&l.Description, &l.RawOptions, &l.DedupHash,
		&l.MatchScore, &l.IsQualified,
		&l.Status, &l.ConsecutiveMisses, &l.StatusChangedAt,
		&l.FirstSeenAt, &l.LastSeenAt,
	)
}
