// Package payment provides verification verdicts for payment claims.
// All functions are pure - no side effects.
package payment

import (
	"strings"

	"github.com/artpar/paygate/domain/claim"
	"github.com/shopspring/decimal"
)

// Reason explains a rejected verdict.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonTokenMismatch      Reason = "token_mismatch"
	ReasonInsufficientAmount Reason = "insufficient_amount"
	ReasonSettlementFailed   Reason = "settlement_failed"
)

// Verdict is the outcome of verifying a claim (value type).
type Verdict struct {
	Accepted bool
	Pending  bool // accepted, settlement confirmation arrives later
	Reason   Reason
	Detail   string
}

// Accept returns a settled acceptance.
func Accept() Verdict {
	return Verdict{Accepted: true}
}

// AcceptPending returns an acceptance whose settlement is still outstanding.
func AcceptPending() Verdict {
	return Verdict{Accepted: true, Pending: true}
}

// Reject returns a rejection with reason.
func Reject(reason Reason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

// CheckLocal performs the checks that need no settlement system: the claim
// token must equal the accepted token (case-insensitive) and the authorized
// amount must cover the price. A claim equal to the price is sufficient.
// This is a PURE function.
func CheckLocal(c claim.Claim, price decimal.Decimal, acceptedToken string) Verdict {
	if !strings.EqualFold(c.Token, acceptedToken) {
		return Reject(ReasonTokenMismatch, "token "+c.Token+" is not accepted")
	}
	if c.MaxAmount.LessThan(price) {
		return Reject(ReasonInsufficientAmount, "max_amount "+c.MaxAmount.String()+" below price "+price.String())
	}
	return Accept()
}
