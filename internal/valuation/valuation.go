// Package valuation implements the present-value backend: discounting a
// schedule of cash flows at a flat annual rate.
package valuation

import "math"

// CashFlow is one payment at a future time, expressed in years from
// valuation date.
type CashFlow struct {
	TimeYears float64
	Amount    float64
}

// PresentValue discounts every cash flow at the given flat annual rate,
// compounded once per year, and returns the sum.
func PresentValue(flows []CashFlow, rate float64) float64 {
	var pv float64
	for _, cf := range flows {
		pv += cf.Amount / math.Pow(1+rate, cf.TimeYears)
	}
	return pv
}
