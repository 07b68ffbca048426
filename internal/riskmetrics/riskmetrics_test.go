package riskmetrics

import "testing"

func TestCompute_SingleZeroCouponFlow(t *testing.T) {
	flows := []CashFlow{{TimeYears: 5, Amount: 100}}
	m := Compute(flows, 0.05)

	if diff := m.MacaulayDuration - 5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("MacaulayDuration = %v, want 5 (single flow duration equals its own time)", m.MacaulayDuration)
	}
}

func TestCompute_ModifiedLessThanMacaulay(t *testing.T) {
	flows := []CashFlow{
		{TimeYears: 1, Amount: 5},
		{TimeYears: 2, Amount: 5},
		{TimeYears: 3, Amount: 105},
	}
	m := Compute(flows, 0.04)

	if m.ModifiedDuration >= m.MacaulayDuration {
		t.Errorf("ModifiedDuration (%v) should be less than MacaulayDuration (%v) for positive yield", m.ModifiedDuration, m.MacaulayDuration)
	}
	if m.Convexity <= 0 {
		t.Errorf("Convexity = %v, want > 0", m.Convexity)
	}
}

func TestCompute_NoFlows(t *testing.T) {
	m := Compute(nil, 0.05)
	if m != (Metrics{}) {
		t.Errorf("Compute(nil) = %+v, want zero value", m)
	}
}
