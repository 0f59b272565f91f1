package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/aaearon/i4-scout/pkg/types"
)

// MemoryStore is an in-memory Store used by unit tests and dry runs.
// All operations are serialized by a single mutex, which gives the
// same atomicity the Postgres implementation gets from single-statement
// conditional updates.
type MemoryStore struct {
	mu sync.Mutex

	listings     map[string]*domain.Listing      // by id
	options      map[string][]domain.MatchedOption
	priceHistory map[string][]domain.PriceHistoryEntry
	passes       []domain.ScrapePass
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings:     make(map[string]*domain.Listing),
		options:      make(map[string][]domain.MatchedOption),
		priceHistory: make(map[string][]domain.PriceHistoryEntry),
	}
}

func (s *MemoryStore) GetListingByID(_ context.Context, id string) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyListing(l), nil
}

func (s *MemoryStore) GetListingByExternalID(_ context.Context, externalID string) (*domain.Listing, error) {
	if externalID == "" {
		return nil, ErrNotFound
	}
	return s.findListing(func(l *domain.Listing) bool { return l.ExternalID == externalID })
}

func (s *MemoryStore) GetListingByURL(_ context.Context, url string) (*domain.Listing, error) {
	return s.findListing(func(l *domain.Listing) bool { return l.URL == url })
}

func (s *MemoryStore) GetListingByDedupHash(_ context.Context, hash string) (*domain.Listing, error) {
	return s.findListing(func(l *domain.Listing) bool { return l.DedupHash == hash })
}

func (s *MemoryStore) findListing(pred func(*domain.Listing) bool) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.listings {
		if pred(l) {
			return copyListing(l), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateListing(_ context.Context, l *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	l.ID = uuid.NewString()
	l.Status = domain.StatusActive
	l.ConsecutiveMisses = 0
	l.FirstSeenAt = now
	l.LastSeenAt = now

	s.listings[l.ID] = copyListing(l)
	return nil
}

func (s *MemoryStore) UpdateListing(_ context.Context, l *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.listings[l.ID]
	if !ok {
		return ErrNotFound
	}

	// Lifecycle columns move only through the lifecycle operations.
	updated := copyListing(l)
	updated.Status = stored.Status
	updated.ConsecutiveMisses = stored.ConsecutiveMisses
	updated.StatusChangedAt = stored.StatusChangedAt
	updated.FirstSeenAt = stored.FirstSeenAt
	updated.LastSeenAt = time.Now()

	s.listings[l.ID] = updated
	l.LastSeenAt = updated.LastSeenAt
	return nil
}

func (s *MemoryStore) ListListings(_ context.Context, q *ListingQuery) ([]domain.Listing, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []domain.Listing
	for _, l := range s.listings {
		if !matchesQuery(l, q) {
			continue
		}
		matched = append(matched, *copyListing(l))
	}

	sortListings(matched, q)
	total := len(matched)

	offset := max(q.Offset, 0)
	if offset > total {
		offset = total
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return matched[offset:end], total, nil
}

func (s *MemoryStore) UpdateScore(_ context.Context, id string, score float64, qualified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return ErrNotFound
	}
	l.MatchScore = score
	l.IsQualified = qualified
	return nil
}

func (s *MemoryStore) ListingPriceUnchanged(_ context.Context, url string, price *int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.listings {
		if l.URL != url {
			continue
		}
		if l.Price == nil || price == nil {
			return l.Price == nil && price == nil, nil
		}
		return *l.Price == *price, nil
	}
	return false, nil
}

func (s *MemoryStore) GetListingOptions(_ context.Context, listingID string) ([]domain.MatchedOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := make([]domain.MatchedOption, len(s.options[listingID]))
	copy(opts, s.options[listingID])
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Provenance != opts[j].Provenance {
			return opts[i].Provenance < opts[j].Provenance
		}
		return opts[i].Name < opts[j].Name
	})
	return opts, nil
}

func (s *MemoryStore) ReplaceListingOptions(
	_ context.Context,
	listingID string,
	provenance domain.Provenance,
	opts []domain.MatchedOption,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []domain.MatchedOption
	for _, o := range s.options[listingID] {
		if o.Provenance != provenance {
			kept = append(kept, o)
		}
	}
	for _, o := range opts {
		o.ListingID = listingID
		o.Provenance = provenance
		kept = append(kept, o)
	}
	s.options[listingID] = kept
	return nil
}

func (s *MemoryStore) AddListingOptions(_ context.Context, listingID string, opts []domain.MatchedOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.options[listingID]
	for _, o := range opts {
		o.ListingID = listingID
		replaced := false
		for i, e := range existing {
			if e.Name == o.Name && e.Provenance == o.Provenance {
				existing[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, o)
		}
	}
	s.options[listingID] = existing
	return nil
}

func (s *MemoryStore) AppendPriceHistory(_ context.Context, listingID string, price int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.priceHistory[listingID] = append(s.priceHistory[listingID], domain.PriceHistoryEntry{
		ListingID:  listingID,
		Price:      price,
		RecordedAt: time.Now(),
	})
	return nil
}

func (s *MemoryStore) GetPriceHistory(_ context.Context, listingID string) ([]domain.PriceHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.PriceHistoryEntry, len(s.priceHistory[listingID]))
	copy(entries, s.priceHistory[listingID])
	return entries, nil
}

func (s *MemoryStore) ListActiveIDsBySource(_ context.Context, source domain.Source) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, l := range s.listings {
		if l.Source == source && l.Status == domain.StatusActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) IncrementMisses(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if l, ok := s.listings[id]; ok && l.Status == domain.StatusActive {
			l.ConsecutiveMisses++
		}
	}
	return nil
}

func (s *MemoryStore) ResetMisses(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, id := range ids {
		l, ok := s.listings[id]
		if !ok {
			continue
		}
		l.ConsecutiveMisses = 0
		if l.Status == domain.StatusDelisted {
			l.Status = domain.StatusActive
			t := now
			l.StatusChangedAt = &t
		}
		l.LastSeenAt = now
	}
	return nil
}

func (s *MemoryStore) DelistAtThreshold(_ context.Context, ids []string, threshold int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var affected int
	for _, id := range ids {
		l, ok := s.listings[id]
		if !ok || l.Status != domain.StatusActive || l.ConsecutiveMisses < threshold {
			continue
		}
		l.Status = domain.StatusDelisted
		t := now
		l.StatusChangedAt = &t
		affected++
	}
	return affected, nil
}

func (s *MemoryStore) InsertScrapePass(_ context.Context, source domain.Source) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := domain.ScrapePass{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now(),
		Status:    "running",
	}
	s.passes = append(s.passes, p)
	return p.ID, nil
}

func (s *MemoryStore) CompleteScrapePass(
	_ context.Context,
	id, status, errText string,
	summary domain.PassSummary,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.passes {
		if s.passes[i].ID != id {
			continue
		}
		now := time.Now()
		s.passes[i].CompletedAt = &now
		s.passes[i].Status = status
		s.passes[i].ErrorText = errText
		s.passes[i].Found = summary.Found
		s.passes[i].New = summary.New
		s.passes[i].Updated = summary.Updated
		s.passes[i].SkippedUnchanged = summary.SkippedUnchanged
		s.passes[i].Failed = summary.Failed
		s.passes[i].Delisted = summary.Delisted
		return nil
	}
	return ErrNotFound
}

func (s *MemoryStore) ListScrapePasses(_ context.Context, limit int) ([]domain.ScrapePass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = defaultLimit
	}

	passes := make([]domain.ScrapePass, len(s.passes))
	copy(passes, s.passes)
	sort.Slice(passes, func(i, j int) bool {
		return passes[i].StartedAt.After(passes[j].StartedAt)
	})
	if len(passes) > limit {
		passes = passes[:limit]
	}
	return passes, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func copyListing(l *domain.Listing) *domain.Listing {
	c := *l
	c.Price = copyInt(l.Price)
	c.MileageKM = copyInt(l.MileageKM)
	c.Year = copyInt(l.Year)
	if l.StatusChangedAt != nil {
		t := *l.StatusChangedAt
		c.StatusChangedAt = &t
	}
	c.RawOptions = append([]string(nil), l.RawOptions...)
	c.MatchedOptions = append([]domain.MatchedOption(nil), l.MatchedOptions...)
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func matchesQuery(l *domain.Listing, q *ListingQuery) bool {
	if q.Source != nil && l.Source != *q.Source {
		return false
	}
	if q.Status != nil && l.Status != *q.Status {
		return false
	}
	if q.QualifiedOnly && !l.IsQualified {
		return false
	}
	if q.MinScore != nil && l.MatchScore < *q.MinScore {
		return false
	}
	if q.PriceMin != nil && (l.Price == nil || *l.Price < *q.PriceMin) {
		return false
	}
	if q.PriceMax != nil && (l.Price == nil || *l.Price > *q.PriceMax) {
		return false
	}
	if q.MileageMax != nil && (l.MileageKM == nil || *l.MileageKM > *q.MileageMax) {
		return false
	}
	if q.YearMin != nil && (l.Year == nil || *l.Year < *q.YearMin) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(l.Title), needle) &&
			!strings.Contains(strings.ToLower(l.Description), needle) {
			return false
		}
	}
	return true
}

func sortListings(listings []domain.Listing, q *ListingQuery) {
	less := func(a, b *domain.Listing) bool {
		switch q.OrderBy {
		case "price":
			return intLess(a.Price, b.Price)
		case "mileage":
			return intLess(a.MileageKM, b.MileageKM)
		case "first_seen":
			return a.FirstSeenAt.Before(b.FirstSeenAt)
		case "last_seen":
			return a.LastSeenAt.Before(b.LastSeenAt)
		default:
			return a.MatchScore < b.MatchScore
		}
	}

	sort.SliceStable(listings, func(i, j int) bool {
		if q.Ascending {
			return less(&listings[i], &listings[j])
		}
		return less(&listings[j], &listings[i])
	})
}

// intLess orders nil prices last regardless of direction by treating
// nil as the smallest value.
func intLess(a, b *int) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return *a < *b
}
