package admission_test

import (
	"net/http"
	"testing"

	"github.com/artpar/paygate/domain/admission"
	"github.com/shopspring/decimal"
)

func TestRejections_StatusAndCode(t *testing.T) {
	price := decimal.RequireFromString("0.01")

	tests := []struct {
		name   string
		r      admission.Rejection
		status int
		code   string
	}{
		{"rate limited", admission.RateLimited(60), http.StatusTooManyRequests, admission.CodeRateLimitExceeded},
		{"payment required", admission.PaymentRequired(price), http.StatusPaymentRequired, admission.CodePaymentRequired},
		{"invalid format", admission.InvalidPaymentFormat(), http.StatusBadRequest, admission.CodeInvalidPaymentFormat},
		{"unsupported token", admission.UnsupportedToken("USDC"), http.StatusBadRequest, admission.CodeUnsupportedToken},
		{"insufficient", admission.InsufficientPayment(price, "USDC"), http.StatusPaymentRequired, admission.CodeInsufficientPayment},
		{"verification", admission.VerificationFailed("timeout"), http.StatusBadGateway, admission.CodeVerificationFailed},
		{"settlement rejected", admission.SettlementRejected(price, "nonce reused"), http.StatusPaymentRequired, admission.CodeVerificationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.r.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.r.Status, tt.status)
			}
			if tt.r.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.r.Code, tt.code)
			}
			if tt.r.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestRateLimited_CarriesRetryAfter(t *testing.T) {
	if got := admission.RateLimited(60).RetryAfter; got != 60 {
		t.Errorf("RetryAfter = %d, want 60", got)
	}
}

func TestPaymentRejections_CarryPrice(t *testing.T) {
	price := decimal.RequireFromString("0.05")

	for _, r := range []admission.Rejection{admission.PaymentRequired(price), admission.InsufficientPayment(price, "USDC")} {
		if r.Price == nil || !r.Price.Equal(price) {
			t.Errorf("%s: Price = %v, want 0.05", r.Code, r.Price)
		}
	}
	if msg := admission.InsufficientPayment(price, "USDC").Message; msg != "Insufficient payment. Required: 0.05 USDC" {
		t.Errorf("Message = %q", msg)
	}
}

func TestDecision_Tags(t *testing.T) {
	ok := admission.Admit(admission.Charge{Endpoint: "/a"}, admission.RateInfo{Limit: 2, Remaining: 1})
	if !ok.Admitted || ok.Charge.Endpoint != "/a" || ok.Rate.Remaining != 1 {
		t.Errorf("Admit = %+v", ok)
	}

	no := admission.Reject(admission.InvalidPaymentFormat(), admission.RateInfo{})
	if no.Admitted || no.Rejection.Code != admission.CodeInvalidPaymentFormat {
		t.Errorf("Reject = %+v", no)
	}
}
