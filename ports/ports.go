// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/paygate/domain/claim"
	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/domain/payment"
	"github.com/artpar/paygate/domain/ratelimit"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// TokenHasher hashes and checks admin tokens.
type TokenHasher interface {
	Hash(token string) ([]byte, error)
	Compare(hash []byte, token string) bool
}

// -----------------------------------------------------------------------------
// Admission Ports
// -----------------------------------------------------------------------------

// RateLimitStore owns per-client fixed windows.
type RateLimitStore interface {
	// Check runs ratelimit.Check for key and persists the new window.
	// The read-check-write must be atomic per key.
	Check(ctx context.Context, key string, cfg ratelimit.Config, now time.Time) (ratelimit.CheckResult, error)
}

// Verifier decides whether a payment claim covers a price.
// A non-nil error means no verdict could be reached.
type Verifier interface {
	Verify(ctx context.Context, c claim.Claim, price decimal.Decimal) (payment.Verdict, error)
}

// -----------------------------------------------------------------------------
// Ledger Ports
// -----------------------------------------------------------------------------

// LedgerStore holds admitted requests.
type LedgerStore interface {
	// Append stores a new entry. Returns ledger.ErrDuplicateID if the id exists.
	Append(ctx context.Context, e ledger.Entry) error

	// Get returns an entry by id, or ledger.ErrNotFound.
	Get(ctx context.Context, id string) (ledger.Entry, error)

	// List returns all entries in append order.
	List(ctx context.Context) ([]ledger.Entry, error)

	// Transition moves an entry to a new status.
	// Returns ledger.ErrNotFound or ledger.ErrInvalidTransition.
	Transition(ctx context.Context, id string, next ledger.Status, at time.Time) (ledger.Entry, error)
}

// ProfileStore holds per-client aggregates.
type ProfileStore interface {
	// Credit adds one request and amount to the profile for address,
	// creating it at time now if absent.
	Credit(ctx context.Context, address string, amount decimal.Decimal, now time.Time) (ledger.Profile, error)

	// Get returns the profile for address, or ledger.ErrNotFound.
	Get(ctx context.Context, address string) (ledger.Profile, error)

	// List returns all profiles.
	List(ctx context.Context) ([]ledger.Profile, error)
}

// LedgerRecorder mirrors ledger writes to durable storage asynchronously.
type LedgerRecorder interface {
	// Record queues a new entry. This should be non-blocking.
	Record(e ledger.Entry)

	// Transitioned queues a status change of an existing entry.
	Transitioned(e ledger.Entry)

	// Flush forces immediate processing of queued writes.
	Flush(ctx context.Context) error

	// Close stops the recorder and flushes remaining writes.
	Close() error
}

// ArchiveSummary holds archive-level totals.
type ArchiveSummary struct {
	Entries   int64
	Completed decimal.Decimal
	Refunded  decimal.Decimal
	Pending   int64
	Clients   int64
	FirstAt   *time.Time
	LastAt    *time.Time
}

// LedgerArchive persists ledger entries durably.
type LedgerArchive interface {
	// WriteBatch inserts entries, ignoring ids already archived.
	WriteBatch(ctx context.Context, entries []ledger.Entry) error

	// UpdateStatus records a status transition.
	UpdateStatus(ctx context.Context, id string, status ledger.Status, completedAt *time.Time) error

	// Get returns an archived entry, or ledger.ErrNotFound.
	Get(ctx context.Context, id string) (ledger.Entry, error)

	// Summary returns archive-level totals.
	Summary(ctx context.Context) (ArchiveSummary, error)
}
