package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaearon/i4-scout/internal/catalog"
)

func bundleCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Required: []catalog.OptionDefinition{
			{Name: "Heated Seats", Aliases: []string{"Sitzheizung"}},
		},
		NiceToHave: []catalog.OptionDefinition{
			{Name: "Harman Kardon", Aliases: []string{"harman/kardon"}},
			{Name: "Adaptive Suspension", Aliases: []string{"Adaptives Fahrwerk"}},
			{
				Name:           "M Sport Package",
				Aliases:        []string{"M Sportpaket"},
				IsBundle:       true,
				BundleContents: []string{"Harman Kardon", "Adaptive Suspension"},
			},
			{
				Name:           "Comfort Package",
				Aliases:        []string{"Comfort Paket"},
				IsBundle:       true,
				BundleContents: []string{"Heated Seats"},
			},
		},
	}
}

func TestExpandBundles_InjectsConstituents(t *testing.T) {
	t.Parallel()

	got := ExpandBundles([]string{"M Sportpaket", "Sitzheizung"}, bundleCatalog())
	assert.Equal(t, []string{"M Sportpaket", "Harman Kardon", "Adaptive Suspension", "Sitzheizung"}, got)
}

func TestExpandBundles_KeepsBundleName(t *testing.T) {
	t.Parallel()

	got := ExpandBundles([]string{"M Sportpaket"}, bundleCatalog())
	assert.Contains(t, got, "M Sportpaket")
}

func TestExpandBundles_Monotonic(t *testing.T) {
	t.Parallel()

	in := []string{"Sitzheizung", "Comfort Paket", "Panoramadach"}
	got := ExpandBundles(in, bundleCatalog())

	for _, opt := range in {
		assert.Contains(t, got, opt)
	}
}

func TestExpandBundles_MultipleBundlesFireIndependently(t *testing.T) {
	t.Parallel()

	got := ExpandBundles([]string{"M Sportpaket", "Comfort Paket"}, bundleCatalog())
	assert.Contains(t, got, "Harman Kardon")
	assert.Contains(t, got, "Adaptive Suspension")
	assert.Contains(t, got, "Heated Seats")
}

func TestExpandBundles_DeduplicatesConstituents(t *testing.T) {
	t.Parallel()

	// Sitzheizung already present; Comfort Paket would inject Heated Seats,
	// which normalizes differently, so both forms survive. But a literal
	// duplicate of the constituent is collapsed.
	got := ExpandBundles([]string{"Comfort Paket", "Heated Seats"}, bundleCatalog())

	count := 0
	for _, opt := range got {
		if Normalize(opt) == "heated seats" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExpandBundles_MatchesBundleByCanonicalName(t *testing.T) {
	t.Parallel()

	got := ExpandBundles([]string{"M Sport Package"}, bundleCatalog())
	assert.Contains(t, got, "Harman Kardon")
}

func TestExpandBundles_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ExpandBundles(nil, bundleCatalog()))
}

func TestExpandBundles_NoBundlesConfigured(t *testing.T) {
	t.Parallel()

	cat := &catalog.Catalog{
		Required: []catalog.OptionDefinition{{Name: "Heated Seats"}},
	}
	in := []string{"Sitzheizung", "Panoramadach"}
	assert.Equal(t, in, ExpandBundles(in, cat))
}
