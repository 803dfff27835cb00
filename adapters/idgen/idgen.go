// Package idgen provides ID generation implementations.
package idgen

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/artpar/paygate/ports"
	"github.com/google/uuid"
)

// RequestPrefix prefixes every ledger id.
const RequestPrefix = "req_"

// UUID generates request ids from 128-bit random UUIDs.
type UUID struct{}

// New returns "req_" followed by 32 hex characters.
func (UUID) New() string {
	return RequestPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Ensure interface compliance.
var _ ports.IDGenerator = UUID{}

// Sequential generates sequential IDs (for testing).
type Sequential struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential creates a sequential ID generator.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New generates the next sequential ID.
func (s *Sequential) New() string {
	return s.prefix + strconv.FormatUint(s.counter.Add(1), 10)
}

// Reset resets the counter (for testing).
func (s *Sequential) Reset() {
	s.counter.Store(0)
}

// Ensure interface compliance.
var _ ports.IDGenerator = (*Sequential)(nil)
