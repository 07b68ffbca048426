// Package daycount implements the day-count fraction backend: computing
// the number of days and year fraction between date pairs under a fixed
// set of fixed-income calendar conventions.
package daycount

import (
	"time"
)

// Convention is a day-count calendar rule.
type Convention string

const (
	ACT360    Convention = "ACT_360"
	ACT365    Convention = "ACT_365"
	Thirty360 Convention = "30_360"
)

// Basis returns the denominator a convention divides by.
func (c Convention) Basis() int {
	switch c {
	case ACT360, Thirty360:
		return 360
	case ACT365:
		return 365
	default:
		return 0
	}
}

// Valid reports whether c is one of the supported conventions.
func (c Convention) Valid() bool {
	return c.Basis() != 0
}

// Pair is one start/end date to measure.
type Pair struct {
	Start time.Time
	End   time.Time
}

// Result is the computed day count and year fraction for one pair.
type Result struct {
	Days         int     `json:"days"`
	YearFraction float64 `json:"yearFraction"`
	Basis        int     `json:"basis"`
}

// Compute applies convention to every pair, in order.
func Compute(pairs []Pair, convention Convention) []Result {
	basis := convention.Basis()
	results := make([]Result, len(pairs))

	for i, p := range pairs {
		var days int
		switch convention {
		case Thirty360:
			days = thirty360Days(p.Start, p.End)
		default:
			days = int(p.End.Sub(p.Start).Hours() / 24)
		}

		results[i] = Result{
			Days:         days,
			YearFraction: float64(days) / float64(basis),
			Basis:        basis,
		}
	}

	return results
}

// thirty360Days implements the 30/360 US convention: each month is
// treated as having 30 days, with day-31 clamped to 30.
func thirty360Days(start, end time.Time) int {
	d1 := start.Day()
	d2 := end.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && d1 == 30 {
		d2 = 30
	}

	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	return years*360 + months*30 + (d2 - d1)
}
