package match

import (
	"github.com/aaearon/i4-scout/internal/catalog"
)

// ExpandBundles expands package options detected in the raw option list
// into their constituent canonical names. The bundle name itself is kept;
// constituents are appended after it. Expansion is monotonic: nothing
// already present is removed, and the output is deduplicated on the
// normalized form while preserving first-seen order.
func ExpandBundles(rawOptions []string, cat *catalog.Catalog) []string {
	if len(rawOptions) == 0 {
		return nil
	}

	// normalized bundle alias -> constituent canonical names
	bundleMap := make(map[string][]string)
	for _, def := range cat.Bundles() {
		bundleMap[Normalize(def.Name)] = def.BundleContents
		for _, alias := range def.Aliases {
			bundleMap[Normalize(alias)] = def.BundleContents
		}
	}

	if len(bundleMap) == 0 {
		return append([]string(nil), rawOptions...)
	}

	expanded := make([]string, 0, len(rawOptions))
	seen := make(map[string]bool)

	for _, opt := range rawOptions {
		normalized := Normalize(opt)
		if !seen[normalized] {
			expanded = append(expanded, opt)
			seen[normalized] = true
		}

		for _, constituent := range bundleMap[normalized] {
			cn := Normalize(constituent)
			if !seen[cn] {
				expanded = append(expanded, constituent)
				seen[cn] = true
			}
		}
	}

	return expanded
}
