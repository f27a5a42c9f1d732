// Package rating computes derived statistics over 1–5 star ratings.
//
// Averages are exact decimal means rounded to two places. An empty collection
// has no average: callers get a nil Average rather than a misleading 0.00 and
// decide how to display it. Count and Average always agree on emptiness.
package rating

import (
	"github.com/shopspring/decimal"
)

const (
	// Min is the lowest accepted rating.
	Min = 1
	// Max is the highest accepted rating.
	Max = 5
	// Places is the number of decimal places kept by averages.
	Places = 2
)

// Valid reports whether r is within [Min, Max].
func Valid(r int) bool { return r >= Min && r <= Max }

// Summary is the aggregate view of a set of ratings.
type Summary struct {
	// Average is the mean rounded to Places, or nil when Count == 0.
	Average *decimal.Decimal
	// Count is the number of ratings.
	Count int64
}

// FromSumCount builds a Summary from a pre-aggregated integer sum and row
// count, as returned by SQL SUM/COUNT. A non-positive count yields an empty
// summary regardless of sum.
func FromSumCount(sum, count int64) Summary {
	if count <= 0 {
		return Summary{}
	}
	avg := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), Places)
	return Summary{Average: &avg, Count: count}
}

// Average returns the mean of values rounded to two places, and false when
// values is empty.
func Average(values []int) (decimal.Decimal, bool) {
	s := Summarize(values)
	if s.Average == nil {
		return decimal.Decimal{}, false
	}
	return *s.Average, true
}

// Count returns the number of ratings. Count(v) == 0 exactly when Average(v)
// reports false.
func Count(values []int) int64 { return int64(len(values)) }

// Summarize aggregates values into a Summary.
func Summarize(values []int) Summary {
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	return FromSumCount(sum, int64(len(values)))
}

// Empty reports whether the summary has no ratings.
func (s Summary) Empty() bool { return s.Count == 0 }

// Display returns the average formatted with two decimals, or "0.00" for an
// empty summary. Use it only for rendering; it must not feed back into
// filtering or ranking.
func (s Summary) Display() string {
	if s.Average == nil {
		return decimal.Zero.StringFixed(Places)
	}
	return s.Average.StringFixed(Places)
}

// Float returns the average as float64 and whether one exists.
func (s Summary) Float() (float64, bool) {
	if s.Average == nil {
		return 0, false
	}
	f, _ := s.Average.Float64()
	return f, true
}
