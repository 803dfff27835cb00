// Package http provides HTTP handlers for the payment gateway.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/paygate/adapters/hasher"
	"github.com/artpar/paygate/adapters/metrics"
	"github.com/artpar/paygate/app"
	"github.com/artpar/paygate/domain/admission"
	"github.com/artpar/paygate/domain/claim"
	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/ports"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Request headers read by the gateway.
const (
	HeaderPayment       = "X-Payment"
	HeaderClientAddress = "X-Client-Address"
	HeaderAdminToken    = "X-Admin-Token"
)

// Version is reported by /health.
var Version = "1.0.0"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error        string            `json:"error" example:"Payment required"`
	Code         string            `json:"code,omitempty" example:"PAYMENT_REQUIRED"`
	Price        json.Number       `json:"price,omitempty" swaggertype:"number" example:"0.01"`
	Unit         string            `json:"unit,omitempty" example:"USDC"`
	Protocol     string            `json:"protocol,omitempty" example:"x402"`
	Instructions *PaymentHowTo     `json:"instructions,omitempty"`
	RetryAfter   int               `json:"retry_after,omitempty" example:"60"`
	Details      map[string]string `json:"details,omitempty"`
}

// PaymentHowTo tells a client how to attach a payment claim.
type PaymentHowTo struct {
	Header  string `json:"header" example:"X-Payment"`
	Format  string `json:"format" example:"max_amount=AMOUNT, token=USDC"`
	Example string `json:"example" example:"max_amount=0.01, token=USDC"`
}

// PaidResponse is returned by every admitted request.
type PaidResponse struct {
	RequestID     string      `json:"request_id" example:"req_3f2a9c0e5b7d4e1f8a6b2c9d0e1f2a3b"`
	Status        string      `json:"status" example:"completed"`
	AmountCharged json.Number `json:"amount_charged" swaggertype:"number" example:"0.01"`
	Data          any         `json:"data"`
}

// Handler serves the gateway's HTTP surface.
type Handler struct {
	gateway *app.Gateway
	logger  zerolog.Logger
	metrics *metrics.Collector

	network       string
	webhookSecret string
	adminHash     []byte
	hasher        ports.TokenHasher
}

// HandlerDeps contains dependencies for Handler.
type HandlerDeps struct {
	Gateway *app.Gateway
	Logger  zerolog.Logger
	Metrics *metrics.Collector // optional
	Hasher  ports.TokenHasher  // optional, defaults to bcrypt
}

// HandlerConfig contains static configuration for Handler.
type HandlerConfig struct {
	Network        string
	WebhookSecret  string
	AdminTokenHash string // bcrypt; empty leaves admin routes open
}

// NewHandler creates a new gateway handler.
func NewHandler(deps HandlerDeps, cfg HandlerConfig) *Handler {
	if cfg.Network == "" {
		cfg.Network = "base"
	}
	h := &Handler{
		gateway:       deps.Gateway,
		logger:        deps.Logger,
		metrics:       deps.Metrics,
		network:       cfg.Network,
		webhookSecret: cfg.WebhookSecret,
		hasher:        deps.Hasher,
	}
	if h.hasher == nil {
		h.hasher = hasher.NewBcrypt(0)
	}
	if cfg.AdminTokenHash != "" {
		h.adminHash = []byte(cfg.AdminTokenHash)
	}
	return h
}

type entryKey struct{}

// entryFrom returns the ledger entry stored by Admission.
func entryFrom(ctx context.Context) (ledger.Entry, bool) {
	e, ok := ctx.Value(entryKey{}).(ledger.Entry)
	return e, ok
}

// Admission runs the admission pipeline in front of a priced route and
// records the charge before next runs. The same middleware guards every
// priced route.
func (h *Handler) Admission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		endpoint := r.URL.Path

		address := strings.TrimSpace(r.Header.Get(HeaderClientAddress))
		ip := clientIP(r)
		clientID := address
		if clientID == "" {
			clientID = ip
		}

		res, err := h.gateway.Handle(ctx, app.Request{
			Endpoint:      endpoint,
			ClientID:      clientID,
			ClientAddress: address,
			PaymentHeader: r.Header.Get(HeaderPayment),
			Meta:          admission.Meta{IPAddress: ip, UserAgent: r.UserAgent()},
		})
		if err != nil {
			h.logger.Error().Err(err).Str("endpoint", endpoint).Str("request_id", res.Entry.ID).Msg("admission failed")
			resp := ErrorResponse{
				Error: "Service temporarily unavailable",
				Code:  "SERVICE_UNAVAILABLE",
			}
			if res.Entry.ID != "" {
				resp.Details = map[string]string{"request_id": res.Entry.ID}
			}
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}

		if h.metrics != nil {
			h.metrics.ObserveDecision(endpoint, res.Decision, string(res.Entry.Status))
		}

		writeRateHeaders(w, res.Decision.Rate)
		if !res.Decision.Admitted {
			h.writeRejection(w, res.Decision.Rejection)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, entryKey{}, res.Entry)))
	})
}

// Paid returns a handler that answers an admitted request with the
// payload built by data.
func (h *Handler) Paid(data func(r *http.Request, e ledger.Entry) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := entryFrom(r.Context())
		if !ok {
			// Not mounted behind Admission.
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Request was not admitted"})
			return
		}
		writeJSON(w, http.StatusOK, PaidResponse{
			RequestID:     e.ID,
			Status:        string(e.Status),
			AmountCharged: amount(e.AmountCharged),
			Data:          data(r, e),
		})
	}
}

func (h *Handler) writeRejection(w http.ResponseWriter, rej admission.Rejection) {
	body := ErrorResponse{
		Error: rej.Message,
		Code:  rej.Code,
	}

	switch rej.Code {
	case admission.CodeRateLimitExceeded:
		body.RetryAfter = rej.RetryAfter
		w.Header().Set("Retry-After", strconv.Itoa(rej.RetryAfter))
	case admission.CodePaymentRequired:
		token := h.gateway.AcceptedToken()
		body.Price = amount(*rej.Price)
		body.Unit = token
		body.Protocol = admission.Protocol
		body.Instructions = &PaymentHowTo{
			Header:  HeaderPayment,
			Format:  "max_amount=AMOUNT, token=" + token,
			Example: claim.Format(*rej.Price, token),
		}
	default:
		if rej.Price != nil {
			body.Price = amount(*rej.Price)
			body.Unit = h.gateway.AcceptedToken()
		}
	}

	writeJSON(w, rej.Status, body)
}

func writeRateHeaders(w http.ResponseWriter, rate admission.RateInfo) {
	if rate.Limit == 0 && rate.ResetAt.IsZero() {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rate.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rate.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(rate.ResetAt.Unix(), 10))
}

// amount renders a decimal as a JSON number without float rounding.
func amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
