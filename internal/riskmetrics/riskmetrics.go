// Package riskmetrics implements the duration/convexity backend behind
// the gateway's "metrics" route.
package riskmetrics

import "math"

// CashFlow is one payment at a future time, expressed in years.
type CashFlow struct {
	TimeYears float64
	Amount    float64
}

// Metrics holds the risk measures computed for a cash flow schedule priced
// at a flat yield.
type Metrics struct {
	MacaulayDuration float64
	ModifiedDuration float64
	Convexity        float64
}

// Compute derives Macaulay duration, modified duration, and convexity for
// flows discounted at the given periodic yield.
func Compute(flows []CashFlow, yieldPerPeriod float64) Metrics {
	var pv, weightedTime, weightedConvexity float64

	for _, cf := range flows {
		discount := math.Pow(1+yieldPerPeriod, cf.TimeYears)
		dcf := cf.Amount / discount
		pv += dcf
		weightedTime += cf.TimeYears * dcf
		weightedConvexity += cf.TimeYears * (cf.TimeYears + 1) * dcf
	}

	if pv == 0 {
		return Metrics{}
	}

	macaulay := weightedTime / pv
	modified := macaulay / (1 + yieldPerPeriod)
	convexity := weightedConvexity / (pv * math.Pow(1+yieldPerPeriod, 2))

	return Metrics{
		MacaulayDuration: macaulay,
		ModifiedDuration: modified,
		Convexity:        convexity,
	}
}
