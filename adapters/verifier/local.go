// Package verifier provides payment claim verifiers.
package verifier

import (
	"context"

	"github.com/artpar/paygate/domain/claim"
	"github.com/artpar/paygate/domain/payment"
	"github.com/artpar/paygate/ports"
	"github.com/shopspring/decimal"
)

// Local accepts any claim that names the accepted token and covers the
// price. It contacts no settlement system: the claim is trusted as stated.
type Local struct {
	token string
}

// NewLocal creates a local verifier for the accepted token.
func NewLocal(acceptedToken string) *Local {
	return &Local{token: acceptedToken}
}

// Name returns the verifier mode.
func (l *Local) Name() string {
	return ModeLocal
}

// Verify runs the token and amount checks. Accepted claims are settled.
func (l *Local) Verify(ctx context.Context, c claim.Claim, price decimal.Decimal) (payment.Verdict, error) {
	return payment.CheckLocal(c, price, l.token), nil
}

// Ensure interface compliance.
var _ ports.Verifier = (*Local)(nil)
