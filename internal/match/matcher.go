package match

import (
	"strings"

	"github.com/aaearon/i4-scout/internal/catalog"
)

// Kind tags which strategy satisfied a match. Strategies are evaluated
// in a fixed order; the first to succeed wins.
type Kind string

// Match kinds, in evaluation order.
const (
	// KindExact is normalized equality between a listing option and an alias.
	KindExact Kind = "exact"
	// KindSubstring is normalized containment of an alias (length >= 3)
	// inside a listing option.
	KindSubstring Kind = "substring"
	// KindCode is a whole-token manufacturer code hit in the free text.
	// Codes are short and prone to accidental substring collisions, hence
	// the stricter word-boundary rule.
	KindCode Kind = "code"
)

// minSubstringAliasLen guards against noise matches from very short aliases.
const minSubstringAliasLen = 3

// Match records one catalog entry matched for a listing.
type Match struct {
	// Name is the canonical name of the matched catalog entry.
	Name string
	// Kind is the strategy that satisfied the match.
	Kind Kind
	// Via is the alias or code that hit, in its raw catalog spelling.
	Via string
	// RawText is the listing option the alias hit against; empty for
	// code matches, which hit the free text instead.
	RawText string
}

// Result is the outcome of matching one listing against the catalog.
// Ephemeral: recomputed on every scoring pass, never persisted directly.
type Result struct {
	Required        []Match
	NiceToHave      []Match
	Dealbreakers    []Match
	MissingRequired []string
}

// RequiredNames returns the canonical names of matched required options.
func (r *Result) RequiredNames() []string { return matchNames(r.Required) }

// NiceToHaveNames returns the canonical names of matched nice-to-have options.
func (r *Result) NiceToHaveNames() []string { return matchNames(r.NiceToHave) }

// DealbreakerNames returns the canonical names of matched dealbreakers.
func (r *Result) DealbreakerNames() []string { return matchNames(r.Dealbreakers) }

func matchNames(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}

// normalizedOption pairs a listing option with its normalized form so
// matches can report the raw text that hit.
type normalizedOption struct {
	raw  string
	norm string
}

// Options matches a listing's raw option strings and free text against
// the catalog. Bundles are expanded first so bundle-derived options
// participate identically to directly listed ones. An entry either
// matches or it does not; there is no partial credit.
func Options(rawOptions []string, freeText string, cat *catalog.Catalog) Result {
	expanded := ExpandBundles(rawOptions, cat)

	opts := make([]normalizedOption, 0, len(expanded))
	for _, raw := range expanded {
		if n := Normalize(raw); n != "" {
			opts = append(opts, normalizedOption{raw: raw, norm: n})
		}
	}

	textTokens := tokenSet(Normalize(freeText))

	res := Result{}
	for _, def := range cat.Required {
		if m, ok := matchDefinition(def, opts, textTokens); ok {
			res.Required = append(res.Required, m)
		} else {
			res.MissingRequired = append(res.MissingRequired, def.Name)
		}
	}
	for _, def := range cat.NiceToHave {
		if m, ok := matchDefinition(def, opts, textTokens); ok {
			res.NiceToHave = append(res.NiceToHave, m)
		}
	}
	for _, def := range cat.Dealbreakers {
		if m, ok := matchDefinition(def, opts, textTokens); ok {
			res.Dealbreakers = append(res.Dealbreakers, m)
		}
	}

	return res
}

// matchDefinition evaluates the three strategies in order against one
// catalog entry. The canonical name participates as an implicit alias.
func matchDefinition(
	def catalog.OptionDefinition,
	opts []normalizedOption,
	textTokens map[string]bool,
) (Match, bool) {
	aliases := make([]string, 0, len(def.Aliases)+1)
	aliases = append(aliases, def.Name)
	aliases = append(aliases, def.Aliases...)

	// Strategy 1: exact equality.
	for _, alias := range aliases {
		na := Normalize(alias)
		if na == "" {
			continue
		}
		for _, opt := range opts {
			if opt.norm == na {
				return Match{Name: def.Name, Kind: KindExact, Via: alias, RawText: opt.raw}, true
			}
		}
	}

	// Strategy 2: substring containment, alias length gated.
	for _, alias := range aliases {
		na := Normalize(alias)
		if len(na) < minSubstringAliasLen {
			continue
		}
		for _, opt := range opts {
			if strings.Contains(opt.norm, na) {
				return Match{Name: def.Name, Kind: KindSubstring, Via: alias, RawText: opt.raw}, true
			}
		}
	}

	// Strategy 3: whole-token code hit in the free text.
	for _, code := range def.Codes {
		nc := Normalize(code)
		if nc == "" {
			continue
		}
		if textTokens[nc] {
			return Match{Name: def.Name, Kind: KindCode, Via: code}, true
		}
	}

	return Match{}, false
}

// tokenSet splits normalized text into its whole-word tokens. Normalized
// text contains only alphanumerics and single spaces, so splitting on
// spaces gives exact word-boundary semantics.
func tokenSet(normalized string) map[string]bool {
	if normalized == "" {
		return nil
	}
	fields := strings.Fields(normalized)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
