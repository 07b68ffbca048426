package valuation

import "testing"

func TestPresentValue_ZeroRate(t *testing.T) {
	flows := []CashFlow{{TimeYears: 1, Amount: 100}, {TimeYears: 2, Amount: 100}}
	pv := PresentValue(flows, 0)
	if pv != 200 {
		t.Errorf("PresentValue = %v, want 200", pv)
	}
}

func TestPresentValue_DiscountsFutureFlows(t *testing.T) {
	flows := []CashFlow{{TimeYears: 1, Amount: 100}}
	pv := PresentValue(flows, 0.10)
	want := 100.0 / 1.10
	if diff := pv - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("PresentValue = %v, want %v", pv, want)
	}
}

func TestPresentValue_NoFlows(t *testing.T) {
	if pv := PresentValue(nil, 0.05); pv != 0 {
		t.Errorf("PresentValue(nil) = %v, want 0", pv)
	}
}
