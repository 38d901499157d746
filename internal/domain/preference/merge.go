package preference

import "strings"

// appendSignals are the lexical markers that switch a merge into append mode.
// This is a deliberate substring heuristic, not semantic parsing; the table
// lives here so it can be unit-tested and swapped on its own.
var appendSignals = []string{"also", "as well", "additionally", "and", "too", "along with"}

// WantsAppend reports whether the utterance asks to add to the existing
// preferences rather than replace them.
func WantsAppend(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, signal := range appendSignals {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return false
}

// Merge folds a normalized delta into the record in place.
//
// Append mode unions delta values after the existing ones, deduplicated
// preserving first-seen order. Replace mode overwrites a field only when the
// delta carries a non-empty value for it; an absent field never erases
// accumulated state. Price bounds ignore the mode entirely: a non-nil bound
// always overwrites, a nil bound never clears. Merging the same delta twice
// leaves the record unchanged.
func Merge(rec *Record, d Delta, utterance string) {
	if WantsAppend(utterance) {
		rec.Brands = dedupe(append(rec.Brands, d.Brands...))
		rec.Categories = dedupe(append(rec.Categories, d.Categories...))
		rec.Colors = dedupe(append(rec.Colors, d.Colors...))
		rec.Materials = dedupe(append(rec.Materials, d.Materials...))
		rec.Features = dedupe(append(rec.Features, d.Features...))
	} else {
		if len(d.Brands) > 0 {
			rec.Brands = d.Brands
		}
		if len(d.Categories) > 0 {
			rec.Categories = d.Categories
		}
		if len(d.Colors) > 0 {
			rec.Colors = d.Colors
		}
		if len(d.Materials) > 0 {
			rec.Materials = d.Materials
		}
		if len(d.Features) > 0 {
			rec.Features = d.Features
		}
	}

	if d.PriceMin != nil {
		v := *d.PriceMin
		rec.PriceMin = &v
	}
	if d.PriceMax != nil {
		v := *d.PriceMax
		rec.PriceMax = &v
	}
}
