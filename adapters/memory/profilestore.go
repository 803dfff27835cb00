package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/ports"
	"github.com/shopspring/decimal"
)

// ProfileStore is an in-memory map of client profiles.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]ledger.Profile
	seq      uint64
}

// NewProfileStore creates an empty profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]ledger.Profile)}
}

// Credit adds one request and amount to the profile for address.
// An empty address is credited to the anonymous profile.
func (s *ProfileStore) Credit(ctx context.Context, address string, amount decimal.Decimal, now time.Time) (ledger.Profile, error) {
	key := ledger.ProfileKey(address)

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[key]
	if !ok {
		s.seq++
		p = ledger.Profile{Address: key, CreatedAt: now, Seq: s.seq}
	}
	p = ledger.Credit(p, amount)
	s.profiles[key] = p
	return p, nil
}

// Get returns the profile for address.
func (s *ProfileStore) Get(ctx context.Context, address string) (ledger.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[ledger.ProfileKey(address)]
	if !ok {
		return ledger.Profile{}, ledger.ErrNotFound
	}
	return p, nil
}

// List returns all profiles in creation order.
func (s *ProfileStore) List(ctx context.Context) ([]ledger.Profile, error) {
	s.mu.RLock()
	out := make([]ledger.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Ensure interface compliance.
var _ ports.ProfileStore = (*ProfileStore)(nil)
