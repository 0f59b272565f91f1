package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aaearon/i4-scout/internal/catalog"
)

// scoreCatalog is the two-required, one-nice-to-have fixture used by the
// scenario tests.
func scoreCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Required: []catalog.OptionDefinition{
			{Name: "A"},
			{Name: "B"},
		},
		NiceToHave: []catalog.OptionDefinition{
			{Name: "C"},
		},
		Dealbreakers: []catalog.OptionDefinition{
			{Name: "D"},
		},
	}
}

func resultMatching(required, niceToHave, dealbreakers []string, missing []string) Result {
	toMatches := func(names []string) []Match {
		out := make([]Match, len(names))
		for i, n := range names {
			out[i] = Match{Name: n, Kind: KindExact, Via: n}
		}
		return out
	}
	return Result{
		Required:        toMatches(required),
		NiceToHave:      toMatches(niceToHave),
		Dealbreakers:    toMatches(dealbreakers),
		MissingRequired: missing,
	}
}

func TestScore_AllRequiredMatched(t *testing.T) {
	t.Parallel()

	res := resultMatching([]string{"A", "B"}, nil, nil, nil)
	scored := Score(res, scoreCatalog(), DefaultWeights())

	assert.InDelta(t, 75.0, scored.Score, 0.001)
	assert.True(t, scored.IsQualified)
}

func TestScore_HalfRequiredMatched(t *testing.T) {
	t.Parallel()

	res := resultMatching([]string{"A"}, nil, nil, []string{"B"})
	scored := Score(res, scoreCatalog(), DefaultWeights())

	assert.InDelta(t, 37.5, scored.Score, 0.001)
	assert.False(t, scored.IsQualified)
}

func TestScore_FullMatch(t *testing.T) {
	t.Parallel()

	res := resultMatching([]string{"A", "B"}, []string{"C"}, nil, nil)
	scored := Score(res, scoreCatalog(), DefaultWeights())

	assert.InDelta(t, 100.0, scored.Score, 0.001)
	assert.True(t, scored.IsQualified)
}

func TestScore_DealbreakerDisqualifies(t *testing.T) {
	t.Parallel()

	res := resultMatching([]string{"A", "B"}, []string{"C"}, []string{"D"}, nil)
	scored := Score(res, scoreCatalog(), DefaultWeights())

	assert.False(t, scored.IsQualified)
	// Score is unaffected by dealbreakers; only qualification is.
	assert.InDelta(t, 100.0, scored.Score, 0.001)
}

func TestScore_EmptyRequiredListQualifiesOnDealbreakerCheckAlone(t *testing.T) {
	t.Parallel()

	cat := &catalog.Catalog{
		NiceToHave:   []catalog.OptionDefinition{{Name: "C"}},
		Dealbreakers: []catalog.OptionDefinition{{Name: "D"}},
	}

	scored := Score(resultMatching(nil, nil, nil, nil), cat, DefaultWeights())
	assert.True(t, scored.IsQualified, "no required options and no dealbreakers")

	scored = Score(resultMatching(nil, []string{"C"}, nil, nil), cat, DefaultWeights())
	assert.True(t, scored.IsQualified, "nice-to-have matches never affect qualification")

	scored = Score(resultMatching(nil, nil, []string{"D"}, nil), cat, DefaultWeights())
	assert.False(t, scored.IsQualified, "dealbreaker still disqualifies")
}

func TestScore_EmptyListsContributeZero(t *testing.T) {
	t.Parallel()

	cat := &catalog.Catalog{}
	scored := Score(Result{}, cat, DefaultWeights())

	assert.Zero(t, scored.Score)
	assert.True(t, scored.IsQualified)
}

func TestScore_Bounded(t *testing.T) {
	t.Parallel()

	cats := []*catalog.Catalog{
		scoreCatalog(),
		{},
		{Required: []catalog.OptionDefinition{{Name: "A"}}},
		{NiceToHave: []catalog.OptionDefinition{{Name: "C"}}},
	}
	results := []Result{
		{},
		resultMatching([]string{"A", "B"}, []string{"C"}, nil, nil),
		resultMatching([]string{"A"}, nil, nil, nil),
		resultMatching(nil, []string{"C"}, nil, nil),
	}

	for _, cat := range cats {
		for _, res := range results {
			scored := Score(res, cat, DefaultWeights())
			assert.GreaterOrEqual(t, scored.Score, 0.0)
			assert.LessOrEqual(t, scored.Score, 100.0)
		}
	}
}

func TestScore_ConfigurableWeights(t *testing.T) {
	t.Parallel()

	w := Weights{Required: 50, NiceToHave: 50}
	res := resultMatching([]string{"A", "B"}, nil, nil, nil)
	scored := Score(res, scoreCatalog(), w)

	assert.InDelta(t, 50.0, scored.Score, 0.001)
}
