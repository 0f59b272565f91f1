package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	domain "github.com/aaearon/i4-scout/pkg/types"
)

// FeedScraper reads listings from JSON feeds. A feed is either an HTTP(S)
// endpoint or a local file, both carrying pre-extracted listing data. This
// keeps page parsing outside the binary while still allowing full passes
// against captured or relayed marketplace data.
type FeedScraper struct {
	source     domain.Source
	searchURLs []string
	client     *http.Client
}

// FeedOption configures the FeedScraper.
type FeedOption func(*FeedScraper)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) FeedOption {
	return func(f *FeedScraper) {
		f.client = hc
	}
}

// NewFeedScraper creates a FeedScraper for one source.
func NewFeedScraper(source domain.Source, searchURLs []string, opts ...FeedOption) *FeedScraper {
	f := &FeedScraper{
		source:     source,
		searchURLs: searchURLs,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ Scraper = (*FeedScraper)(nil)

// Source returns the marketplace identifier.
func (f *FeedScraper) Source() domain.Source { return f.source }

// SearchURLs returns the configured search feed locations.
func (f *FeedScraper) SearchURLs() []string { return f.searchURLs }

// Fetch retrieves one page. Locations with an http or https scheme are
// fetched over the network; everything else is treated as a file path.
func (f *FeedScraper) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchHTTP(ctx, rawURL)
	}
	path := strings.TrimPrefix(rawURL, "file://")
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("reading feed file: %w", err)
	}
	return data, nil
}

func (f *FeedScraper) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}

// searchFeed is the wire shape of a search feed page.
type searchFeed struct {
	Listings []domain.ListingSummary `json:"listings"`
}

// ParseSearch decodes a search feed page into listing summaries.
func (f *FeedScraper) ParseSearch(page []byte) ([]domain.ListingSummary, error) {
	var feed searchFeed
	if err := json.Unmarshal(page, &feed); err != nil {
		return nil, fmt.Errorf("decoding search feed: %w", err)
	}
	return feed.Listings, nil
}

// ParseDetail decodes a detail feed page. The configured source always
// wins over whatever the feed claims.
func (f *FeedScraper) ParseDetail(page []byte) (*domain.ScrapedListing, error) {
	var sl domain.ScrapedListing
	if err := json.Unmarshal(page, &sl); err != nil {
		return nil, fmt.Errorf("decoding detail feed: %w", err)
	}
	sl.Source = f.source
	return &sl, nil
}

func truncateBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
