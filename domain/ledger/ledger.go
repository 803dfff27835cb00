// Package ledger provides value types for the request ledger and client profiles.
// Entries are immutable once written except for status transitions.
package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Store errors.
var (
	ErrNotFound          = errors.New("request not found")
	ErrDuplicateID       = errors.New("duplicate request id")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// AnonymousClient is the profile key used when a request carries no client address.
const AnonymousClient = "anonymous"

// Status is the lifecycle state of a ledger entry.
type Status string

const (
	StatusPending   Status = "pending"   // Settlement not yet confirmed
	StatusCompleted Status = "completed" // Terminal: charged
	StatusRefunded  Status = "refunded"  // Terminal: charge reversed
)

// IsTerminal reports whether an entry in status s has a completion time.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRefunded
}

// Entry is an admitted request (value type).
type Entry struct {
	ID                  string
	ClientAddress       string
	Endpoint            string
	MaxAmountAuthorized decimal.Decimal
	AmountCharged       decimal.Decimal
	Status              Status
	CreatedAt           time.Time
	CompletedAt         *time.Time
	IPAddress           string
	UserAgent           string
}

// Transition returns e moved to status next at time now.
// This is a PURE function.
//
// Allowed: pending -> completed, pending -> refunded, completed -> refunded.
func Transition(e Entry, next Status, now time.Time) (Entry, error) {
	switch {
	case e.Status == StatusPending && next == StatusCompleted,
		e.Status == StatusPending && next == StatusRefunded,
		e.Status == StatusCompleted && next == StatusRefunded:
	default:
		return e, ErrInvalidTransition
	}

	e.Status = next
	if e.CompletedAt == nil || next == StatusRefunded {
		t := now
		e.CompletedAt = &t
	}
	return e, nil
}

// Profile aggregates spend for one client identity (value type).
type Profile struct {
	Address           string
	TotalSpent        decimal.Decimal
	TotalRequests     int64
	IsWhitelisted     bool
	RateLimitOverride *int
	CreatedAt         time.Time
	Seq               uint64 // creation order, breaks ties between equal CreatedAt
}

// Credit returns p with one more request and amount added to the spend.
// This is a PURE function; totals only ever increase.
func Credit(p Profile, amount decimal.Decimal) Profile {
	if amount.IsPositive() {
		p.TotalSpent = p.TotalSpent.Add(amount)
	}
	p.TotalRequests++
	return p
}

// ProfileKey maps a client address to its profile key.
func ProfileKey(address string) string {
	if address == "" {
		return AnonymousClient
	}
	return address
}
