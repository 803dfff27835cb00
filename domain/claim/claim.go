// Package claim parses x402-style payment claims from the X-Payment header.
// All functions are pure - no side effects.
package claim

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Header keys recognized in a claim.
const (
	KeyMaxAmount = "max_amount"
	KeyToken     = "token"
)

// Status tags the outcome of parsing a claim header.
type Status int

const (
	// Absent means no claim could be read from the header.
	Absent Status = iota
	// Malformed means key=value pairs were present but a value was invalid.
	Malformed
	// Parsed means Result.Claim holds a usable claim.
	Parsed
)

func (s Status) String() string {
	switch s {
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	case Parsed:
		return "parsed"
	default:
		return "unknown"
	}
}

// Claim is a client-asserted payment authorization (value type).
// It has not been verified against any settlement system.
type Claim struct {
	MaxAmount     decimal.Decimal
	Token         string // upper-cased
	ClientAddress string // from X-Client-Address, may be empty
	Fields        map[string]string
}

// Result is the tagged outcome of Parse.
type Result struct {
	Status Status
	Claim  Claim
	Reason string
}

// OK reports whether the header produced a claim.
func (r Result) OK() bool {
	return r.Status == Parsed
}

// Bounds on max_amount. Decimal comparison cost grows with the exponent.
const (
	MaxAmountLength = 64
	MaxAmountScale  = 18
)

// Parse reads a claim of the form "max_amount=0.01, token=USDC".
// This is a PURE function.
//
// Segments without '=' are skipped. A header with no key=value pair at all
// is Absent. A max_amount that is present but not a non-negative decimal
// makes the whole claim Malformed; a missing or empty max_amount counts as 0.
func Parse(header string) Result {
	header = strings.TrimSpace(header)
	if header == "" {
		return Result{Status: Absent, Reason: "empty header"}
	}

	fields := make(map[string]string)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if len(fields) == 0 {
		return Result{Status: Absent, Reason: "no key=value pairs"}
	}

	amount := decimal.Zero
	if raw := fields[KeyMaxAmount]; raw != "" {
		if len(raw) > MaxAmountLength {
			return Result{Status: Malformed, Reason: "max_amount is too long"}
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Result{Status: Malformed, Reason: "max_amount is not a number"}
		}
		if exp := d.Exponent(); exp < -MaxAmountScale || exp > MaxAmountScale {
			return Result{Status: Malformed, Reason: "max_amount is out of range"}
		}
		if d.IsNegative() {
			return Result{Status: Malformed, Reason: "max_amount is negative"}
		}
		amount = d
	}

	return Result{
		Status: Parsed,
		Claim: Claim{
			MaxAmount: amount,
			Token:     strings.ToUpper(fields[KeyToken]),
			Fields:    fields,
		},
	}
}

// WithClient returns a copy of c bound to a client address.
func (c Claim) WithClient(address string) Claim {
	c.ClientAddress = address
	return c
}

// Format renders an amount and token in header form.
func Format(amount decimal.Decimal, token string) string {
	return KeyMaxAmount + "=" + amount.String() + ", " + KeyToken + "=" + token
}
