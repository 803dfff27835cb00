package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/artpar/paygate/domain/claim"
	"github.com/artpar/paygate/domain/payment"
	"github.com/artpar/paygate/ports"
	"github.com/shopspring/decimal"
)

// Facilitator answers.
const (
	StatusAccepted = "accepted"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// VerifyRequest is the body sent to POST /verify.
type VerifyRequest struct {
	Scheme        string          `json:"scheme"`
	Network       string          `json:"network"`
	Token         string          `json:"token"`
	Asset         string          `json:"asset,omitempty"`
	PayTo         string          `json:"pay_to,omitempty"`
	ClientAddress string          `json:"client_address,omitempty"`
	MaxAmount     decimal.Decimal `json:"max_amount"`
	Price         decimal.Decimal `json:"price"`
}

// VerifyResponse is the facilitator's answer.
type VerifyResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// FacilitatorConfig configures a Facilitator verifier.
type FacilitatorConfig struct {
	Client        ClientConfig
	AcceptedToken string
	Network       string
	Asset         string
	PayTo         string
}

// Facilitator verifies claims by delegating settlement to an external
// x402 facilitator. Token and amount are checked locally first so an
// obviously insufficient claim never leaves the process.
type Facilitator struct {
	client *Client
	cfg    FacilitatorConfig
}

// NewFacilitator creates a facilitator-backed verifier.
func NewFacilitator(cfg FacilitatorConfig) (*Facilitator, error) {
	if cfg.Client.BaseURL == "" {
		return nil, fmt.Errorf("facilitator url is required")
	}
	return &Facilitator{client: NewClient(cfg.Client), cfg: cfg}, nil
}

// Verify checks c locally, then asks the facilitator to settle it.
func (f *Facilitator) Verify(ctx context.Context, c claim.Claim, price decimal.Decimal) (payment.Verdict, error) {
	if v := payment.CheckLocal(c, price, f.cfg.AcceptedToken); !v.Accepted {
		return v, nil
	}

	req := VerifyRequest{
		Scheme:        "exact",
		Network:       f.cfg.Network,
		Token:         f.cfg.AcceptedToken,
		Asset:         f.cfg.Asset,
		PayTo:         f.cfg.PayTo,
		ClientAddress: c.ClientAddress,
		MaxAmount:     c.MaxAmount,
		Price:         price,
	}

	var resp VerifyResponse
	if err := f.client.Request(ctx, http.MethodPost, "/verify", req, &resp); err != nil {
		if declined(StatusCode(err)) {
			return payment.Reject(payment.ReasonSettlementFailed, err.Error()), nil
		}
		return payment.Verdict{}, fmt.Errorf("facilitator verify: %w", err)
	}

	switch resp.Status {
	case StatusAccepted:
		return payment.Accept(), nil
	case StatusPending:
		return payment.AcceptPending(), nil
	case StatusRejected:
		reason := resp.Reason
		if reason == "" {
			reason = "rejected by facilitator"
		}
		return payment.Reject(payment.ReasonSettlementFailed, reason), nil
	default:
		return payment.Verdict{}, fmt.Errorf("facilitator verify: unknown status %q", resp.Status)
	}
}

// declined reports whether a facilitator status is a verdict on the claim
// rather than an outage. Timeouts and throttling are outages.
func declined(status int) bool {
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}

// Ensure interface compliance.
var _ ports.Verifier = (*Facilitator)(nil)
