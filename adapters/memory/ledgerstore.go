package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/ports"
)

// LedgerStore is an in-memory append-only ledger.
type LedgerStore struct {
	mu      sync.RWMutex
	entries []ledger.Entry
	byID    map[string]int
}

// NewLedgerStore creates an empty ledger.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{byID: make(map[string]int)}
}

// Append stores a new entry.
func (s *LedgerStore) Append(ctx context.Context, e ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[e.ID]; exists {
		return fmt.Errorf("append %s: %w", e.ID, ledger.ErrDuplicateID)
	}
	s.byID[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)
	return nil
}

// Get returns an entry by id.
func (s *LedgerStore) Get(ctx context.Context, id string) (ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return ledger.Entry{}, ledger.ErrNotFound
	}
	return s.entries[i], nil
}

// List returns a snapshot of all entries in append order.
func (s *LedgerStore) List(ctx context.Context) ([]ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Transition moves an entry to status next.
func (s *LedgerStore) Transition(ctx context.Context, id string, next ledger.Status, at time.Time) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return ledger.Entry{}, ledger.ErrNotFound
	}
	updated, err := ledger.Transition(s.entries[i], next, at)
	if err != nil {
		return s.entries[i], fmt.Errorf("%s %s -> %s: %w", id, s.entries[i].Status, next, err)
	}
	s.entries[i] = updated
	return updated, nil
}

// Len returns the number of entries.
func (s *LedgerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure interface compliance.
var _ ports.LedgerStore = (*LedgerStore)(nil)
