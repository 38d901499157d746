package preference

import "strings"

// Normalize validates a claimed delta against the fixed vocabularies and
// returns a cleaned delta plus the brand tokens that were rejected.
//
// Brands must resolve to the canonical vocabulary, directly or via the
// correction table; anything else is rejected. Categories that survive
// neither exact match, correction, nor the "bag" suffix rewrite are moved to
// features rather than dropped — except the bare token "tote", which must
// resolve as a category or not at all. Colors, materials and features pass
// through; the extraction prompt owns their vocabulary mapping. Tokens that
// duplicate an assigned brand or category are removed from the free-form
// fields so no token lives in two fields at once. Price bounds that cannot
// describe a non-empty range are dropped.
func Normalize(d Delta) (Delta, []string) {
	var out Delta
	out.PriceMin, out.PriceMax = normalizeBounds(d.PriceMin, d.PriceMax)

	var rejected []string
	out.Brands, rejected = normalizeBrands(d.Brands)

	var demoted []string
	out.Categories, demoted = normalizeCategories(d.Categories)

	out.Colors = dedupe(trimLower(d.Colors))
	out.Materials = dedupe(trimLower(d.Materials))
	out.Features = dedupe(append(trimLower(d.Features), demoted...))

	claimed := claimedSet(out.Brands, out.Categories)
	out.Colors = dropClaimed(out.Colors, claimed)
	out.Materials = dropClaimed(out.Materials, claimed)
	out.Features = dropClaimed(out.Features, claimed)

	return out, rejected
}

// normalizeBounds drops price bounds that cannot describe a non-empty range:
// negative values, and min/max pairs that cross.
func normalizeBounds(min, max *float64) (*float64, *float64) {
	if min != nil && *min < 0 {
		min = nil
	}
	if max != nil && *max < 0 {
		max = nil
	}
	if min != nil && max != nil && *min > *max {
		return nil, nil
	}
	return min, max
}

// normalizeBrands resolves each claimed brand to its canonical casing.
func normalizeBrands(brands []string) (valid, rejected []string) {
	for _, brand := range brands {
		lower := strings.ToLower(strings.TrimSpace(brand))
		if lower == "" {
			continue
		}
		if canonical, ok := brandsByLower[lower]; ok {
			valid = append(valid, canonical)
			continue
		}
		if canonical, ok := brandCorrections[lower]; ok {
			valid = append(valid, canonical)
			continue
		}
		rejected = append(rejected, brand)
	}
	return dedupe(valid), rejected
}

// normalizeCategories resolves claimed categories against the vocabulary.
// Unresolvable tokens are demoted to features, except "tote".
func normalizeCategories(categories []string) (valid, demoted []string) {
	for _, category := range categories {
		token := strings.ToLower(strings.TrimSpace(category))
		if token == "" {
			continue
		}
		if _, ok := Categories[token]; ok {
			valid = append(valid, token)
			continue
		}
		if corrected, ok := categoryCorrections[token]; ok {
			if _, known := Categories[corrected]; known {
				valid = append(valid, corrected)
				continue
			}
		}
		if _, ok := Categories[token+" bag"]; ok {
			valid = append(valid, token+" bag")
			continue
		}
		// "tote" must never leak into features
		if token != "tote" {
			demoted = append(demoted, token)
		}
	}
	return dedupe(valid), demoted
}

func trimLower(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func claimedSet(groups ...[]string) map[string]struct{} {
	claimed := make(map[string]struct{})
	for _, group := range groups {
		for _, v := range group {
			claimed[strings.ToLower(v)] = struct{}{}
		}
	}
	return claimed
}

func dropClaimed(values []string, claimed map[string]struct{}) []string {
	out := values[:0]
	for _, v := range values {
		if _, ok := claimed[strings.ToLower(v)]; ok {
			continue
		}
		out = append(out, v)
	}
	return out
}
