// Package catalog defines the retrieved product document shape shared by the
// retrieval layer and the filtering pipeline.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Product is one catalog candidate returned by retrieval. The filtering
// pipeline only reads it. Price carries the raw metadata value; whether it
// parses to a number is a filtering concern.
type Product struct {
	URL      string
	Name     string
	Brand    string
	Content  string
	Price    string
	ImageURL string
}

// SearchText returns the lowercased name+content blob used for substring
// matching against color and category preferences.
func (p Product) SearchText() string {
	return strings.ToLower(p.Name + " " + p.Content)
}

// ParsePrice parses a price as stored in catalog metadata, tolerating
// currency formatting like "$1,234.50".
func ParsePrice(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("empty price")
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	return price, nil
}
