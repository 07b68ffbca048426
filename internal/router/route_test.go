package router

import "testing"

func TestTable_Match_LongestPrefixWins(t *testing.T) {
	table := Table{
		{Name: "daycount", PathPrefix: "/api/daycount"},
		{Name: "daycount-v2", PathPrefix: "/api/daycount/v2"},
	}

	route, ok := table.Match("/api/daycount/v2/count")
	if !ok {
		t.Fatal("expected a match")
	}
	if route.Name != "daycount-v2" {
		t.Errorf("Name = %q, want daycount-v2 (longest prefix)", route.Name)
	}
}

func TestTable_Match_NoMatch(t *testing.T) {
	table := Table{{Name: "daycount", PathPrefix: "/api/daycount"}}
	if _, ok := table.Match("/api/unknown/v1/op"); ok {
		t.Error("expected no match for an unregistered prefix")
	}
}

func TestTable_Match_ExactPrefix(t *testing.T) {
	table := Table{{Name: "pricing", PathPrefix: "/api/pricing"}}
	route, ok := table.Match("/api/pricing/v1/price")
	if !ok || route.Name != "pricing" {
		t.Fatalf("Match() = %+v, %v; want pricing route", route, ok)
	}
}
