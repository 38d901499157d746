// Package preference holds the canonical shopping preference state for a
// conversation session and the rules for folding untrusted preference
// extractions into it.
package preference

import (
	"fmt"
	"strings"
)

// Record is the accumulated preference state for one session. It is created
// empty, mutated only through Merge, and cleared on explicit reset.
type Record struct {
	PriceMin   *float64
	PriceMax   *float64
	Brands     []string
	Categories []string
	Colors     []string
	Materials  []string
	Features   []string
}

// Delta is a claimed preference update produced by the language model. It is
// untrusted: values may violate the vocabularies, land in the wrong field, or
// be missing entirely. A Delta must pass through Normalize before it touches
// a Record.
type Delta struct {
	PriceMin   *float64 `json:"price_min"`
	PriceMax   *float64 `json:"price_max"`
	Brands     []string `json:"brands"`
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
	Materials  []string `json:"materials"`
	Features   []string `json:"features"`
}

// HasActive reports whether any preference is currently set.
func (r *Record) HasActive() bool {
	return r.PriceMin != nil || r.PriceMax != nil ||
		len(r.Brands) > 0 || len(r.Categories) > 0 || len(r.Colors) > 0 ||
		len(r.Materials) > 0 || len(r.Features) > 0
}

// Clear resets every field to its empty default.
func (r *Record) Clear() {
	*r = Record{}
}

// Clone returns a deep copy, used for before/after change detection.
func (r *Record) Clone() Record {
	c := Record{
		Brands:     append([]string(nil), r.Brands...),
		Categories: append([]string(nil), r.Categories...),
		Colors:     append([]string(nil), r.Colors...),
		Materials:  append([]string(nil), r.Materials...),
		Features:   append([]string(nil), r.Features...),
	}
	if r.PriceMin != nil {
		v := *r.PriceMin
		c.PriceMin = &v
	}
	if r.PriceMax != nil {
		v := *r.PriceMax
		c.PriceMax = &v
	}
	return c
}

// Equal reports whether two records hold identical preferences.
func (r *Record) Equal(o *Record) bool {
	return eqPtr(r.PriceMin, o.PriceMin) && eqPtr(r.PriceMax, o.PriceMax) &&
		eqSlice(r.Brands, o.Brands) && eqSlice(r.Categories, o.Categories) &&
		eqSlice(r.Colors, o.Colors) && eqSlice(r.Materials, o.Materials) &&
		eqSlice(r.Features, o.Features)
}

// Snapshot returns the record in delta shape, used to echo the current state
// back to the extraction prompt. Slices are never nil so the JSON form always
// carries every field.
func (r *Record) Snapshot() Delta {
	c := r.Clone()
	return Delta{
		PriceMin:   c.PriceMin,
		PriceMax:   c.PriceMax,
		Brands:     orEmpty(c.Brands),
		Categories: orEmpty(c.Categories),
		Colors:     orEmpty(c.Colors),
		Materials:  orEmpty(c.Materials),
		Features:   orEmpty(c.Features),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Summary renders the record for display and for the conversation prompt.
func (r *Record) Summary() string {
	var parts []string

	switch {
	case r.PriceMin != nil && r.PriceMax != nil:
		parts = append(parts, fmt.Sprintf("Price: $%g-$%g", *r.PriceMin, *r.PriceMax))
	case r.PriceMin != nil:
		parts = append(parts, fmt.Sprintf("Price: Above $%g", *r.PriceMin))
	case r.PriceMax != nil:
		parts = append(parts, fmt.Sprintf("Price: Under $%g", *r.PriceMax))
	}

	if len(r.Brands) > 0 {
		parts = append(parts, "Brands: "+strings.Join(r.Brands, ", "))
	}
	if len(r.Categories) > 0 {
		parts = append(parts, "Categories: "+strings.Join(r.Categories, ", "))
	}
	if len(r.Colors) > 0 {
		parts = append(parts, "Colors: "+strings.Join(r.Colors, ", "))
	}
	if len(r.Materials) > 0 {
		parts = append(parts, "Materials: "+strings.Join(r.Materials, ", "))
	}

	if len(parts) == 0 {
		return "No active preferences set"
	}
	return strings.Join(parts, " | ")
}

func eqPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqSlice(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// dedupe removes repeated entries preserving first-seen order.
func dedupe(values []string) []string {
	if len(values) < 2 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
