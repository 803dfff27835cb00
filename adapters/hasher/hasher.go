// Package hasher provides admin token hashing implementations.
package hasher

import (
	"github.com/artpar/paygate/ports"
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt uses bcrypt for hashing.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt hasher with the given cost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash generates a bcrypt hash of token.
func (h *Bcrypt) Hash(token string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(token), h.cost)
}

// Compare reports whether token matches hash. An empty hash never matches.
func (h *Bcrypt) Compare(hash []byte, token string) bool {
	if len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(token)) == nil
}

// Valid reports whether hash is a well-formed bcrypt hash.
func Valid(hash string) bool {
	_, err := bcrypt.Cost([]byte(hash))
	return err == nil
}

// Ensure interface compliance.
var _ ports.TokenHasher = (*Bcrypt)(nil)

// Fake provides a no-op hasher for testing (NOT FOR PRODUCTION).
type Fake struct{}

// Hash returns the token as bytes (no actual hashing).
func (Fake) Hash(token string) ([]byte, error) {
	return []byte(token), nil
}

// Compare does simple equality check.
func (Fake) Compare(hash []byte, token string) bool {
	return len(hash) > 0 && string(hash) == token
}

// Ensure interface compliance.
var _ ports.TokenHasher = Fake{}
