// Package admission provides the value types produced by the admission
// pipeline: an admitted charge or a client-facing rejection.
package admission

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Machine-readable rejection codes.
const (
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodePaymentRequired      = "PAYMENT_REQUIRED"
	CodeInvalidPaymentFormat = "INVALID_PAYMENT_FORMAT"
	CodeUnsupportedToken     = "UNSUPPORTED_TOKEN"
	CodeInsufficientPayment  = "INSUFFICIENT_PAYMENT"
	CodeVerificationFailed   = "VERIFICATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
)

// Protocol is the payment protocol advertised in 402 responses.
const Protocol = "x402"

// Meta is request metadata carried into the ledger (value type).
type Meta struct {
	IPAddress string
	UserAgent string
}

// Charge describes an admitted request (value type).
type Charge struct {
	Endpoint            string
	ClientAddress       string
	MaxAmountAuthorized decimal.Decimal
	AmountCharged       decimal.Decimal
	Token               string
	Pending             bool // settlement not yet confirmed by the verifier
	Meta                Meta
}

// RateInfo is the limiter state reported back to the client (value type).
type RateInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Rejection is an error to return to the client (value type).
type Rejection struct {
	Status     int
	Code       string
	Message    string
	Price      *decimal.Decimal // set for payment-related rejections
	RetryAfter int              // seconds, set for rate limiting
}

// Decision is the tagged outcome of admission. Exactly one of Charge and
// Rejection is meaningful, selected by Admitted.
type Decision struct {
	Admitted  bool
	Charge    Charge
	Rejection Rejection
	Rate      RateInfo
}

// Admit builds an admitted decision.
func Admit(c Charge, rate RateInfo) Decision {
	return Decision{Admitted: true, Charge: c, Rate: rate}
}

// Reject builds a rejected decision.
func Reject(r Rejection, rate RateInfo) Decision {
	return Decision{Rejection: r, Rate: rate}
}

// RateLimited is returned when the client exhausted its window.
func RateLimited(retryAfter int) Rejection {
	return Rejection{
		Status:     http.StatusTooManyRequests,
		Code:       CodeRateLimitExceeded,
		Message:    "Rate limit exceeded",
		RetryAfter: retryAfter,
	}
}

// PaymentRequired is returned when no payment header was sent.
func PaymentRequired(price decimal.Decimal) Rejection {
	return Rejection{
		Status:  http.StatusPaymentRequired,
		Code:    CodePaymentRequired,
		Message: "Payment required",
		Price:   &price,
	}
}

// InvalidPaymentFormat is returned when the header could not be parsed.
func InvalidPaymentFormat() Rejection {
	return Rejection{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidPaymentFormat,
		Message: "Invalid X-Payment header format",
	}
}

// UnsupportedToken is returned when the claim names another token.
func UnsupportedToken(accepted string) Rejection {
	return Rejection{
		Status:  http.StatusBadRequest,
		Code:    CodeUnsupportedToken,
		Message: "Only " + accepted + " supported",
	}
}

// InsufficientPayment is returned when the claim does not cover the price.
func InsufficientPayment(price decimal.Decimal, token string) Rejection {
	return Rejection{
		Status:  http.StatusPaymentRequired,
		Code:    CodeInsufficientPayment,
		Message: "Insufficient payment. Required: " + price.String() + " " + token,
		Price:   &price,
	}
}

// VerificationFailed is returned when the verifier could not decide.
func VerificationFailed(reason string) Rejection {
	return Rejection{
		Status:  http.StatusBadGateway,
		Code:    CodeVerificationFailed,
		Message: "Payment verification failed: " + reason,
	}
}

// SettlementRejected is returned when the settlement system declined a
// claim that passed the local checks.
func SettlementRejected(price decimal.Decimal, reason string) Rejection {
	return Rejection{
		Status:  http.StatusPaymentRequired,
		Code:    CodeVerificationFailed,
		Message: "Payment rejected: " + reason,
		Price:   &price,
	}
}
