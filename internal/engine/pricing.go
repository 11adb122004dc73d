package engine

import "math"

// OpeningBid returns the base price a player opens at, derived from rating.
func OpeningBid(p Player) float64 {
	switch {
	case p.Rating >= 9:
		return 2.0
	case p.Rating >= 8.5:
		return 1.5
	case p.Rating >= 8:
		return 1.0
	case p.Rating >= 7.5:
		return 0.75
	case p.Rating >= 7:
		return 0.5
	default:
		return 0.3
	}
}

// Increment returns the step added on top of the current bid. The table is
// monotonic in the bid amount.
func Increment(current float64) float64 {
	switch {
	case current < 1:
		return 0.05
	case current < 5:
		return 0.10
	case current < 10:
		return 0.20
	case current < 20:
		return 0.25
	default:
		return 1.0
	}
}

// RoundBid snaps an amount to two decimals so repeated float additions
// never drift.
func RoundBid(amount float64) float64 {
	return math.Round(amount*100) / 100
}
