// Package stats derives revenue and request rollups from ledger data.
// All functions are pure - no side effects.
package stats

import (
	"sort"

	"github.com/artpar/paygate/domain/ledger"
	"github.com/shopspring/decimal"
)

// EndpointStats is the rollup for one endpoint (value type).
type EndpointStats struct {
	Count   int64
	Revenue decimal.Decimal
}

// Global is the gateway-wide rollup (value type).
type Global struct {
	TotalRequests int64
	TotalRevenue  decimal.Decimal
	TotalRefunded decimal.Decimal
	UniqueClients int
	PerEndpoint   map[string]EndpointStats
}

// Aggregate scans entries and profiles into a Global rollup.
// This is a PURE function.
//
// Every entry counts as a request. Only completed entries contribute
// revenue; refunded amounts are reported separately.
func Aggregate(entries []ledger.Entry, profiles []ledger.Profile) Global {
	g := Global{
		TotalRevenue:  decimal.Zero,
		TotalRefunded: decimal.Zero,
		UniqueClients: len(profiles),
		PerEndpoint:   make(map[string]EndpointStats),
	}

	for _, e := range entries {
		g.TotalRequests++

		ep := g.PerEndpoint[e.Endpoint]
		ep.Count++

		switch e.Status {
		case ledger.StatusCompleted:
			g.TotalRevenue = g.TotalRevenue.Add(e.AmountCharged)
			ep.Revenue = ep.Revenue.Add(e.AmountCharged)
		case ledger.StatusRefunded:
			g.TotalRefunded = g.TotalRefunded.Add(e.AmountCharged)
		}

		g.PerEndpoint[e.Endpoint] = ep
	}

	return g
}

// TopClients returns up to n profiles ordered by total spend, highest
// first, ties broken by earliest creation. n <= 0 returns all.
// This is a PURE function; the input slice is not modified.
func TopClients(profiles []ledger.Profile, n int) []ledger.Profile {
	out := make([]ledger.Profile, len(profiles))
	copy(out, profiles)

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalSpent.Cmp(out[j].TotalSpent); c != 0 {
			return c > 0
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
