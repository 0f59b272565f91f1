// Package catalog defines the options catalog: the configured set of
// required, nice-to-have, and dealbreaker equipment options a listing is
// matched against. The catalog is loaded once at process start, validated,
// and treated as an immutable value from then on.
package catalog

import (
	"errors"
	"fmt"
)

// OptionDefinition describes one catalog entry. The canonical name is the
// authoritative identifier; aliases are alternate spellings and
// translations; codes are short manufacturer option codes matched with
// word-boundary semantics against free text.
type OptionDefinition struct {
	Name           string   `yaml:"name"`
	Aliases        []string `yaml:"aliases"`
	Codes          []string `yaml:"codes"`
	Category       string   `yaml:"category"`
	IsBundle       bool     `yaml:"is_bundle"`
	BundleContents []string `yaml:"bundle_contents"`
}

// Catalog holds the three disjoint option lists. No canonical name may
// appear twice across the lists.
type Catalog struct {
	Required     []OptionDefinition `yaml:"required"`
	NiceToHave   []OptionDefinition `yaml:"nice_to_have"`
	Dealbreakers []OptionDefinition `yaml:"dealbreakers"`
}

// All returns every definition across the three lists, in order:
// required, nice-to-have, dealbreakers.
func (c *Catalog) All() []OptionDefinition {
	out := make([]OptionDefinition, 0, len(c.Required)+len(c.NiceToHave)+len(c.Dealbreakers))
	out = append(out, c.Required...)
	out = append(out, c.NiceToHave...)
	out = append(out, c.Dealbreakers...)
	return out
}

// Bundles returns every definition with is_bundle set.
func (c *Catalog) Bundles() []OptionDefinition {
	var out []OptionDefinition
	for _, def := range c.All() {
		if def.IsBundle {
			out = append(out, def)
		}
	}
	return out
}

// RequiredNames returns the canonical names of the required list.
func (c *Catalog) RequiredNames() []string {
	return names(c.Required)
}

// NiceToHaveNames returns the canonical names of the nice-to-have list.
func (c *Catalog) NiceToHaveNames() []string {
	return names(c.NiceToHave)
}

func names(defs []OptionDefinition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

// Validate checks catalog consistency. A duplicate canonical name across
// the three lists or a bundle constituent that names no catalog entry is
// fatal: the pipeline must refuse to start rather than match against an
// inconsistent catalog.
func (c *Catalog) Validate() error {
	var errs []error

	known := make(map[string]bool)
	for _, def := range c.All() {
		if def.Name == "" {
			errs = append(errs, errors.New("option with empty canonical name"))
			continue
		}
		if known[def.Name] {
			errs = append(errs, fmt.Errorf("duplicate canonical name %q", def.Name))
		}
		known[def.Name] = true
	}

	for _, def := range c.All() {
		if !def.IsBundle && len(def.BundleContents) > 0 {
			errs = append(errs, fmt.Errorf("option %q has bundle_contents but is_bundle is false", def.Name))
		}
		if !def.IsBundle {
			continue
		}
		if len(def.BundleContents) == 0 {
			errs = append(errs, fmt.Errorf("bundle %q has no bundle_contents", def.Name))
		}
		for _, constituent := range def.BundleContents {
			if !known[constituent] {
				errs = append(errs, fmt.Errorf("bundle %q references unknown option %q", def.Name, constituent))
			}
		}
	}

	return errors.Join(errs...)
}
