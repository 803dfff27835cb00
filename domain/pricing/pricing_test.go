package pricing_test

import (
	"testing"

	"github.com/artpar/paygate/domain/pricing"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTable(t *testing.T) *pricing.Table {
	t.Helper()
	table, err := pricing.NewTable(d("0.01"), []pricing.Endpoint{
		{Path: "/api/v1/predict", Description: "AI prediction endpoint", Price: d("0.01")},
		{Path: "/api/v1/analyze", Description: "Data analysis endpoint", Price: d("0.05")},
		{Path: "/api/v1/search", Price: d("0.001")},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestPriceFor_ExactMatch(t *testing.T) {
	table := newTable(t)

	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/predict", "0.01"},
		{"/api/v1/analyze", "0.05"},
		{"/api/v1/search", "0.001"},
	}
	for _, tt := range tests {
		if got := table.PriceFor(tt.path); !got.Equal(d(tt.want)) {
			t.Errorf("PriceFor(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestPriceFor_FallsBackToDefault(t *testing.T) {
	table := newTable(t)

	for _, p := range []string{"/api/v1/unknown", "/api/v1/predict/", "", "/API/V1/PREDICT"} {
		if got := table.PriceFor(p); !got.Equal(d("0.01")) {
			t.Errorf("PriceFor(%q) = %s, want default 0.01", p, got)
		}
	}
}

func TestPriceFor_StableAcrossCalls(t *testing.T) {
	table := newTable(t)

	first := table.PriceFor("/api/v1/analyze")
	for i := 0; i < 100; i++ {
		if got := table.PriceFor("/api/v1/analyze"); !got.Equal(first) {
			t.Fatalf("call %d: PriceFor = %s, want %s", i, got, first)
		}
	}
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name      string
		def       decimal.Decimal
		endpoints []pricing.Endpoint
	}{
		{"zero default", decimal.Zero, nil},
		{"negative default", d("-1"), nil},
		{"zero price", d("0.01"), []pricing.Endpoint{{Path: "/a", Price: decimal.Zero}}},
		{"empty path", d("0.01"), []pricing.Endpoint{{Path: "", Price: d("1")}}},
		{"duplicate", d("0.01"), []pricing.Endpoint{{Path: "/a", Price: d("1")}, {Path: "/a", Price: d("2")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pricing.NewTable(tt.def, tt.endpoints); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEndpoints_PreservesOrder(t *testing.T) {
	table := newTable(t)

	eps := table.Endpoints()
	if len(eps) != 3 {
		t.Fatalf("len = %d, want 3", len(eps))
	}
	if eps[0].Path != "/api/v1/predict" || eps[2].Path != "/api/v1/search" {
		t.Errorf("order = %v", eps)
	}
	if _, ok := table.Lookup("/api/v1/search"); !ok {
		t.Error("Lookup(/api/v1/search) not found")
	}
	if _, ok := table.Lookup("/nope"); ok {
		t.Error("Lookup(/nope) should not be found")
	}
}
