package match

import "github.com/aaearon/i4-scout/internal/catalog"

// KindStored tags a match folded in from a persisted association rather
// than produced by a matching strategy in this run.
const KindStored Kind = "stored"

// MergeKnown folds previously persisted canonical option names into a
// result, classifying each against the catalog it belongs to. Names
// already matched in the result or unknown to the catalog are skipped.
// MissingRequired is recomputed. The input result is not mutated.
func MergeKnown(res Result, cat *catalog.Catalog, names []string) Result {
	merged := Result{
		Required:     append([]Match(nil), res.Required...),
		NiceToHave:   append([]Match(nil), res.NiceToHave...),
		Dealbreakers: append([]Match(nil), res.Dealbreakers...),
	}

	for _, name := range names {
		switch {
		case containsDef(cat.Required, name):
			merged.Required = appendUnique(merged.Required, name)
		case containsDef(cat.NiceToHave, name):
			merged.NiceToHave = appendUnique(merged.NiceToHave, name)
		case containsDef(cat.Dealbreakers, name):
			merged.Dealbreakers = appendUnique(merged.Dealbreakers, name)
		}
	}

	matched := make(map[string]bool, len(merged.Required))
	for _, m := range merged.Required {
		matched[m.Name] = true
	}
	for _, def := range cat.Required {
		if !matched[def.Name] {
			merged.MissingRequired = append(merged.MissingRequired, def.Name)
		}
	}

	return merged
}

func containsDef(defs []catalog.OptionDefinition, name string) bool {
	for _, def := range defs {
		if def.Name == name {
			return true
		}
	}
	return false
}

func appendUnique(ms []Match, name string) []Match {
	for _, m := range ms {
		if m.Name == name {
			return ms
		}
	}
	return append(ms, Match{Name: name, Kind: KindStored})
}
