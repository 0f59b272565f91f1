package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// listingColumns is the canonical SELECT column list for listings.
const listingColumns = `id, source, COALESCE(external_id, ''), url, title,
		price, mileage_km, year,
		COALESCE(description, ''), COALESCE(raw_options, '{}'), dedup_hash,
		match_score, is_qualified,
		status, consecutive_misses, status_changed_at,
		first_seen_at, last_seen_at`

// Listing queries.
const (
	queryCreateListing = `
		INSERT INTO listings (
			source, external_id, url, title,
			price, mileage_km, year,
			description, raw_options, dedup_hash,
			match_score, is_qualified,
			first_seen_at, last_seen_at
		) VALUES (
			@source, NULLIF(@external_id, ''), @url, @title,
			@price, @mileage_km, @year,
			@description, @raw_options, @dedup_hash,
			@match_score, @is_qualified,
			now(), now()
		)
		RETURNING id, status, consecutive_misses, first_seen_at, last_seen_at`

	queryUpdateListing = `
		UPDATE listings SET
			external_id  = NULLIF(@external_id, ''),
			url          = @url,
			title        = @title,
			price        = @price,
			mileage_km   = @mileage_km,
			year         = @year,
			description  = @description,
			raw_options  = @raw_options,
			dedup_hash   = @dedup_hash,
			match_score  = @match_score,
			is_qualified = @is_qualified,
			last_seen_at = now()
		WHERE id = @id`

	queryGetListingByID = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE id = $1`

	queryGetListingByExternalID = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE external_id = $1`

	queryGetListingByURL = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE url = $1`

	queryGetListingByDedupHash = `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE dedup_hash = $1`

	queryUpdateScore = `
		UPDATE listings SET
			match_score  = $2,
			is_qualified = $3
		WHERE id = $1`

	queryListingPrice = `
		SELECT price FROM listings WHERE url = $1`
)

// Lifecycle queries. The increment and the threshold flip are separate
// durable statements; the flip's WHERE clause evaluates the counter the
// database holds at flip time, so a concurrent pass cannot be erased by
// a stale in-memory copy.
const (
	queryListActiveIDsBySource = `
		SELECT id FROM listings
		WHERE source = $1 AND status = 'active'`

	queryIncrementMisses = `
		UPDATE listings SET
			consecutive_misses = consecutive_misses + 1
		WHERE id = ANY($1) AND status = 'active'`

	queryResetMisses = `
		UPDATE listings SET
			consecutive_misses = 0,
			status_changed_at  = CASE WHEN status = 'delisted' THEN now() ELSE status_changed_at END,
			status             = 'active',
			last_seen_at       = now()
		WHERE id = ANY($1)`

	queryDelistAtThreshold = `
		UPDATE listings SET
			status            = 'delisted',
			status_changed_at = now()
		WHERE id = ANY($1)
		  AND status = 'active'
		  AND consecutive_misses >= $2`
)

// Matched-option queries.
const (
	queryGetListingOptions = `
		SELECT listing_id, name, provenance, matched_via, COALESCE(raw_text, '')
		FROM listing_options
		WHERE listing_id = $1
		ORDER BY provenance, name`

	queryDeleteOptionsByProvenance = `
		DELETE FROM listing_options
		WHERE listing_id = $1 AND provenance = $2`

	queryInsertListingOption = `
		INSERT INTO listing_options (listing_id, name, provenance, matched_via, raw_text)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (listing_id, name, provenance) DO UPDATE SET
			matched_via = EXCLUDED.matched_via,
			raw_text    = EXCLUDED.raw_text`
)

// Price history queries.
const (
	queryAppendPriceHistory = `
		INSERT INTO price_history (listing_id, price, recorded_at)
		VALUES ($1, $2, now())`

	queryGetPriceHistory = `
		SELECT listing_id, price, recorded_at
		FROM price_history
		WHERE listing_id = $1
		ORDER BY recorded_at ASC`
)

// Scrape pass queries.
const (
	queryInsertScrapePass = `
		INSERT INTO scrape_passes (source)
		VALUES ($1)
		RETURNING id`

	queryCompleteScrapePass = `
		UPDATE scrape_passes SET
			completed_at      = now(),
			status            = $2,
			error_text        = NULLIF($3, ''),
			found             = $4,
			new_listings      = $5,
			updated_listings  = $6,
			skipped_unchanged = $7,
			failed            = $8,
			delisted          = $9
		WHERE id = $1`

	queryListScrapePasses = `
		SELECT id, source, started_at, completed_at, status,
			COALESCE(error_text, ''), found, new_listings, updated_listings,
			skipped_unchanged, failed, delisted
		FROM scrape_passes
		ORDER BY started_at DESC
		LIMIT $1`
)
