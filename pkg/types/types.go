// Package domain defines the core business types for i4-scout.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Source identifies the marketplace a listing was scraped from.
type Source string

// Source constants.
const (
	SourceAutoScout24DE Source = "autoscout24_de"
	SourceAutoScout24NL Source = "autoscout24_nl"
)

// ListingStatus represents the lifecycle state of a listing.
type ListingStatus string

// Listing status constants.
const (
	StatusActive   ListingStatus = "active"
	StatusDelisted ListingStatus = "delisted"
)

// Provenance records where a matched-option association came from.
// Scrape-sourced associations are replaced on every re-observation;
// PDF-sourced associations survive re-observation verbatim.
type Provenance string

// Provenance constants.
const (
	ProvenanceScrape Provenance = "scrape"
	ProvenancePDF    Provenance = "pdf"
)

// ScrapedListing is the raw per-listing input supplied by the scraper
// collaborator. Missing commercial fields are tolerated; they simply
// cannot contribute to matching or deduplication.
type ScrapedListing struct {
	Source      Source   `json:"source"`
	ExternalID  string   `json:"external_id,omitempty"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Price       *int     `json:"price,omitempty"`
	MileageKM   *int     `json:"mileage_km,omitempty"`
	Year        *int     `json:"year,omitempty"`
	RawOptions  []string `json:"raw_options"`
	Description string   `json:"description,omitempty"`
}

// FreeText returns the concatenated title and description used for
// manufacturer-code matching.
func (s *ScrapedListing) FreeText() string {
	if s.Description == "" {
		return s.Title
	}
	return s.Title + " " + s.Description
}

// ListingSummary is the per-listing slice of a search results page:
// just enough to decide whether a detail fetch is needed.
type ListingSummary struct {
	URL        string `json:"url"`
	ExternalID string `json:"external_id,omitempty"`
	Price      *int   `json:"price,omitempty"`
}

// Listing is the persisted, reconciled record for one physical vehicle
// advertisement.
type Listing struct {
	ID         string `json:"id"                    db:"id"`
	Source     Source `json:"source"                db:"source"`
	ExternalID string `json:"external_id,omitempty" db:"external_id"`
	URL        string `json:"url"                   db:"url"`
	Title      string `json:"title"                 db:"title"`

	// Commercial fields
	Price     *int `json:"price,omitempty"      db:"price"`
	MileageKM *int `json:"mileage_km,omitempty" db:"mileage_km"`
	Year      *int `json:"year,omitempty"       db:"year"`

	Description string   `json:"description,omitempty" db:"description"`
	RawOptions  []string `json:"raw_options"           db:"raw_options"`
	DedupHash   string   `json:"dedup_hash"            db:"dedup_hash"`

	// Derived scoring fields
	MatchScore  float64 `json:"match_score"  db:"match_score"`
	IsQualified bool    `json:"is_qualified" db:"is_qualified"`

	// Lifecycle fields
	Status            ListingStatus `json:"status"                      db:"status"`
	ConsecutiveMisses int           `json:"consecutive_misses"          db:"consecutive_misses"`
	StatusChangedAt   *time.Time    `json:"status_changed_at,omitempty" db:"status_changed_at"`

	// Timestamps
	FirstSeenAt time.Time `json:"first_seen_at" db:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"  db:"last_seen_at"`

	// Matched-option associations, when loaded.
	MatchedOptions []MatchedOption `json:"matched_options,omitempty"`
}

// MatchedOption associates a catalog option with a listing, tagged with
// the provenance of the match.
type MatchedOption struct {
	ListingID  string     `json:"listing_id"         db:"listing_id"`
	Name       string     `json:"name"               db:"name"`
	Provenance Provenance `json:"provenance"         db:"provenance"`
	MatchedVia string     `json:"matched_via"        db:"matched_via"`
	RawText    string     `json:"raw_text,omitempty" db:"raw_text"`
}

// PriceHistoryEntry is an append-only record of a listing's price at a
// point in time. The first entry is written at creation; subsequent
// entries only when an upsert observes a changed price.
type PriceHistoryEntry struct {
	ListingID  string    `json:"listing_id"  db:"listing_id"`
	Price      int       `json:"price"       db:"price"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// PassSummary reports the outcome of one completed scrape pass.
// Per-listing failures are counted, never fatal for the pass.
type PassSummary struct {
	Source           Source `json:"source"`
	Found            int    `json:"found"`
	New              int    `json:"new"`
	Updated          int    `json:"updated"`
	SkippedUnchanged int    `json:"skipped_unchanged"`
	Failed           int    `json:"failed"`
	Delisted         int    `json:"delisted"`
}

// ScrapePass records one execution of a scrape pass for a source.
type ScrapePass struct {
	ID          string     `json:"id"                     db:"id"`
	Source      Source     `json:"source"                 db:"source"`
	StartedAt   time.Time  `json:"started_at"             db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Status      string     `json:"status"                 db:"status"`
	ErrorText   string     `json:"error_text,omitempty"   db:"error_text"`
	Found       int        `json:"found"                  db:"found"`
	New         int        `json:"new"                    db:"new_listings"`
	Updated     int        `json:"updated"                db:"updated_listings"`

	SkippedUnchanged int `json:"skipped_unchanged" db:"skipped_unchanged"`
	Failed           int `json:"failed"            db:"failed"`
	Delisted         int `json:"delisted"          db:"delisted"`
}

// ComputeDedupHash derives the stable fallback identity hash over the
// normalized source, title, price, mileage, and year. Used when neither
// external_id nor URL resolves to an existing row.
func ComputeDedupHash(source Source, title string, price, mileageKM, year *int) string {
	parts := []string{
		string(source),
		strings.ToLower(strings.TrimSpace(title)),
		intOrEmpty(price),
		intOrEmpty(mileageKM),
		intOrEmpty(year),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
