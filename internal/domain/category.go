package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the two-letter code of a chai variety.
type Category string

// Known categories.
const (
	CategoryMasala  Category = "ML"
	CategoryGinger  Category = "GR"
	CategoryKiwi    Category = "KL"
	CategoryPlain   Category = "PL"
	CategoryElaichi Category = "EL"
)

var categoryLabels = map[Category]string{
	CategoryMasala:  "Masala",
	CategoryGinger:  "Ginger",
	CategoryKiwi:    "Kiwi",
	CategoryPlain:   "Plain",
	CategoryElaichi: "Elaichi",
}

// Categories returns the known categories in display order.
func Categories() []Category {
	return []Category{CategoryMasala, CategoryGinger, CategoryKiwi, CategoryPlain, CategoryElaichi}
}

// Valid reports whether c is one of the known codes.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable name, or "" for unknown codes.
func (c Category) Label() string { return categoryLabels[c] }

// ParseCategory accepts a code ("ml") or a label ("Masala"), case-insensitively.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if c := Category(strings.ToUpper(s)); c.Valid() {
		return c, true
	}
	for c, label := range categoryLabels {
		if strings.EqualFold(label, s) {
			return c, true
		}
	}
	return "", false
}

// PriceBucket is a named, half-open price range used by the listing filter.
type PriceBucket string

// Known price buckets. Tokens match the public query parameter values.
const (
	PriceAll      PriceBucket = "all"
	PriceUnder50  PriceBucket = "0-50"
	Price50to100  PriceBucket = "50-100"
	Price100to200 PriceBucket = "100-200"
	Price200AndUp PriceBucket = "200+"
)

var bucketAliases = map[string]PriceBucket{
	"all":      PriceAll,
	"0-50":     PriceUnder50,
	"lt50":     PriceUnder50,
	"50-100":   Price50to100,
	"50to100":  Price50to100,
	"100-200":  Price100to200,
	"100to200": Price100to200,
	"200+":     Price200AndUp,
	"gte200":   Price200AndUp,
}

// ParsePriceBucket maps a query token to a bucket. Unknown or empty tokens
// yield (PriceAll, false).
func ParsePriceBucket(s string) (PriceBucket, bool) {
	b, ok := bucketAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return PriceAll, false
	}
	return b, true
}

// Bounds returns the inclusive lower and exclusive upper bound of the bucket.
// A nil bound means unbounded on that side; PriceAll returns (nil, nil).
func (b PriceBucket) Bounds() (min, max *decimal.Decimal) {
	d := func(v int64) *decimal.Decimal { x := decimal.NewFromInt(v); return &x }
	switch b {
	case PriceUnder50:
		return nil, d(50)
	case Price50to100:
		return d(50), d(100)
	case Price100to200:
		return d(100), d(200)
	case Price200AndUp:
		return d(200), nil
	default:
		return nil, nil
	}
}

// Contains reports whether price falls inside the bucket.
func (b PriceBucket) Contains(price decimal.Decimal) bool {
	lo, hi := b.Bounds()
	if lo != nil && price.LessThan(*lo) {
		return false
	}
	if hi != nil && !price.LessThan(*hi) {
		return false
	}
	return true
}
