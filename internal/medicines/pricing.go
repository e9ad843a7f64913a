package medicines

import "math"

// RoundMoney normalizes a monetary amount to two decimals; negative or
// non-finite input collapses to zero.
func RoundMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Round(v*100) / 100
}

// SalePriceFromMargin derives the sale price from the purchase price and a
// margin percentage: price / (1 - margin/100). A margin of 100% or more
// would make the divisor non-positive, so the purchase price is returned
// unchanged in that case.
func SalePriceFromMargin(purchasePrice, marginPct float64) float64 {
	factor := 1 - marginPct/100
	if factor <= 0 {
		return RoundMoney(purchasePrice)
	}
	return RoundMoney(purchasePrice / factor)
}
