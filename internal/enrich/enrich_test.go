package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaearon/i4-scout/internal/catalog"
	"github.com/aaearon/i4-scout/internal/reconcile"
	"github.com/aaearon/i4-scout/internal/store"
	"github.com/aaearon/i4-scout/pkg/logger"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Required: []catalog.OptionDefinition{
			{Name: "Heated Seats", Aliases: []string{"sitzheizung"}},
			{Name: "Head-Up Display", Aliases: []string{"head-up display"}, Codes: []string{"610"}},
		},
		NiceToHave: []catalog.OptionDefinition{
			{Name: "Laser Headlights", Aliases: []string{"laserlicht"}, Codes: []string{"5AZ"}},
		},
		Dealbreakers: []catalog.OptionDefinition{
			{Name: "Smoker Vehicle", Aliases: []string{"raucherfahrzeug"}},
		},
	}
}

func intp(v int) *int { return &v }

func seedListing(t *testing.T, mem *store.MemoryStore, rawOptions []string) *domain.Listing {
	t.Helper()

	r := reconcile.New(mem, testCatalog(), reconcile.WithLogger(logger.Nop()))
	l, _, err := r.Upsert(context.Background(), &domain.ScrapedListing{
		Source:     domain.SourceAutoScout24DE,
		URL:        "https://example.test/1",
		Title:      "BMW i4 eDrive40",
		Price:      intp(52000),
		RawOptions: rawOptions,
	})
	require.NoError(t, err)
	return l
}

func TestEnrich_AttachesNewOptionsAndRescores(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := store.NewMemoryStore()
	l := seedListing(t, mem, []string{"Sitzheizung"})

	e := New(mem, testCatalog(), WithLogger(logger.Nop()))

	// The spec sheet names the head-up display by its option code and
	// the laser lights by name.
	report, err := e.Enrich(ctx, l.ID, "Sonderausstattung: 610 Head-Up Display, Laserlicht")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Head-Up Display", "Laser Headlights"}, report.NewOptions)
	assert.True(t, report.IsQualified)
	assert.InDelta(t, 100.0, report.Score, 0.001)

	got, err := mem.GetListingByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.IsQualified)
	assert.InDelta(t, 100.0, got.MatchScore, 0.001)

	opts, err := mem.GetListingOptions(ctx, l.ID)
	require.NoError(t, err)
	byProvenance := make(map[domain.Provenance]int)
	for _, o := range opts {
		byProvenance[o.Provenance]++
	}
	assert.Equal(t, 1, byProvenance[domain.ProvenanceScrape])
	assert.Equal(t, 2, byProvenance[domain.ProvenancePDF])
}

func TestEnrich_SkipsAlreadyKnownOptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := store.NewMemoryStore()
	l := seedListing(t, mem, []string{"Sitzheizung"})

	e := New(mem, testCatalog(), WithLogger(logger.Nop()))

	report, err := e.Enrich(ctx, l.ID, "Sitzheizung vorne")
	require.NoError(t, err)
	assert.Empty(t, report.NewOptions)

	opts, err := mem.GetListingOptions(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, domain.ProvenanceScrape, opts[0].Provenance)
}

func TestEnrich_DealbreakerInDocumentDisqualifies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := store.NewMemoryStore()
	l := seedListing(t, mem, []string{"Sitzheizung", "Head-Up Display"})

	e := New(mem, testCatalog(), WithLogger(logger.Nop()))

	report, err := e.Enrich(ctx, l.ID, "Hinweis: Raucherfahrzeug")
	require.NoError(t, err)
	assert.Equal(t, []string{"Smoker Vehicle"}, report.NewOptions)
	assert.False(t, report.IsQualified)
}

func TestEnrich_UnknownListing(t *testing.T) {
	t.Parallel()
	mem := store.NewMemoryStore()
	e := New(mem, testCatalog(), WithLogger(logger.Nop()))

	_, err := e.Enrich(context.Background(), "missing", "Sitzheizung")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
