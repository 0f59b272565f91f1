package match

import (
	"github.com/aaearon/i4-scout/internal/catalog"
)

// Weights defines the total point contribution of each option list,
// distributed evenly across the list's members. The defaults give
// required options three times the weight of nice-to-haves.
type Weights struct {
	Required   float64 `yaml:"required"`
	NiceToHave float64 `yaml:"nice_to_have"`
}

// DefaultWeights returns the default 75/25 split.
func DefaultWeights() Weights {
	return Weights{Required: 75, NiceToHave: 25}
}

// Scored is a match result with its derived score and qualification flag.
type Scored struct {
	Result
	// Score is on a 0-100 scale; weights sum to 100 at full match.
	Score float64
	// IsQualified is true when every required option matched and no
	// dealbreaker matched.
	IsQualified bool
}

// Score converts a match result into a normalized score and
// qualification flag. Each matched entry contributes its list's weight
// divided by the list's size; an empty list contributes zero rather
// than dividing by it. An empty required list makes qualification
// depend only on the dealbreaker check.
func Score(res Result, cat *catalog.Catalog, w Weights) Scored {
	var score float64

	if n := len(cat.Required); n > 0 {
		score += float64(len(res.Required)) * (w.Required / float64(n))
	}
	if n := len(cat.NiceToHave); n > 0 {
		score += float64(len(res.NiceToHave)) * (w.NiceToHave / float64(n))
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Scored{
		Result:      res,
		Score:       score,
		IsQualified: len(res.MissingRequired) == 0 && len(res.Dealbreakers) == 0,
	}
}
