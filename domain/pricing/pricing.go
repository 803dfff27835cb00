// Package pricing provides the static endpoint price table.
// A Table is immutable after construction; all lookups are pure.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Endpoint is a priced endpoint (value type).
type Endpoint struct {
	Path        string
	Description string
	Price       decimal.Decimal
}

// Table maps endpoint paths to prices with a process-wide default.
type Table struct {
	defaultPrice decimal.Decimal
	byPath       map[string]Endpoint
	order        []string
}

// NewTable builds a price table. Prices must be positive and paths unique.
func NewTable(defaultPrice decimal.Decimal, endpoints []Endpoint) (*Table, error) {
	if !defaultPrice.IsPositive() {
		return nil, fmt.Errorf("default price must be positive, got %s", defaultPrice)
	}

	t := &Table{
		defaultPrice: defaultPrice,
		byPath:       make(map[string]Endpoint, len(endpoints)),
		order:        make([]string, 0, len(endpoints)),
	}
	for _, e := range endpoints {
		if e.Path == "" {
			return nil, fmt.Errorf("endpoint path is required")
		}
		if !e.Price.IsPositive() {
			return nil, fmt.Errorf("endpoint %s: price must be positive, got %s", e.Path, e.Price)
		}
		if _, dup := t.byPath[e.Path]; dup {
			return nil, fmt.Errorf("endpoint %s: duplicate path", e.Path)
		}
		t.byPath[e.Path] = e
		t.order = append(t.order, e.Path)
	}
	return t, nil
}

// PriceFor returns the price for an exact path match, else the default.
func (t *Table) PriceFor(path string) decimal.Decimal {
	if e, ok := t.byPath[path]; ok {
		return e.Price
	}
	return t.defaultPrice
}

// Lookup returns the configured endpoint for path, if listed.
func (t *Table) Lookup(path string) (Endpoint, bool) {
	e, ok := t.byPath[path]
	return e, ok
}

// DefaultPrice returns the fallback price.
func (t *Table) DefaultPrice() decimal.Decimal {
	return t.defaultPrice
}

// Endpoints returns the configured endpoints in configuration order.
func (t *Table) Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.byPath[p])
	}
	return out
}
