// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/artpar/paygate/domain/admission"
	"github.com/artpar/paygate/domain/claim"
	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/domain/payment"
	"github.com/artpar/paygate/domain/pricing"
	"github.com/artpar/paygate/domain/stats"
	"github.com/artpar/paygate/domain/webhook"
	"github.com/artpar/paygate/ports"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Gateway owns all admission state: limiter windows, the ledger and client
// profiles. Construct one per process (or per test).
type Gateway struct {
	limiter  *RateLimiter
	prices   *pricing.Table
	verifier ports.Verifier
	ledger   ports.LedgerStore
	profiles ports.ProfileStore
	recorder ports.LedgerRecorder
	clock    ports.Clock
	idGen    ports.IDGenerator
	logger   zerolog.Logger

	token string
}

// GatewayDeps contains dependencies for Gateway.
type GatewayDeps struct {
	RateLimiter *RateLimiter
	Prices      *pricing.Table
	Verifier    ports.Verifier
	Ledger      ports.LedgerStore
	Profiles    ports.ProfileStore
	Recorder    ports.LedgerRecorder // optional
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      zerolog.Logger
}

// GatewayConfig contains static configuration for Gateway.
type GatewayConfig struct {
	AcceptedToken string
}

// NewGateway creates a gateway.
func NewGateway(deps GatewayDeps, cfg GatewayConfig) *Gateway {
	if cfg.AcceptedToken == "" {
		cfg.AcceptedToken = "USDC"
	}
	return &Gateway{
		limiter:  deps.RateLimiter,
		prices:   deps.Prices,
		verifier: deps.Verifier,
		ledger:   deps.Ledger,
		profiles: deps.Profiles,
		recorder: deps.Recorder,
		clock:    deps.Clock,
		idGen:    deps.IDGen,
		logger:   deps.Logger,
		token:    strings.ToUpper(cfg.AcceptedToken),
	}
}

// Request is one inbound call to a priced endpoint.
type Request struct {
	Endpoint      string
	ClientID      string // rate-limit identity
	ClientAddress string // X-Client-Address, may be empty
	PaymentHeader string
	Meta          admission.Meta
}

// Result is the outcome of Handle. Entry is set only when admitted.
type Result struct {
	Decision admission.Decision
	Entry    ledger.Entry
}

// Handle admits or rejects req and, when admitted, records it.
func (g *Gateway) Handle(ctx context.Context, req Request) (Result, error) {
	d, err := g.Admit(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if !d.Admitted {
		return Result{Decision: d}, nil
	}

	// On error Entry is still set when the ledger write succeeded.
	e, err := g.Record(ctx, d.Charge)
	return Result{Decision: d, Entry: e}, err
}

// Admit runs the admission pipeline. Each step short-circuits:
//
//	rate limit -> claim presence -> parse -> price -> verify -> admit
//
// Rejections are returned as decisions; an error means a collaborator
// (rate limit store) failed.
func (g *Gateway) Admit(ctx context.Context, req Request) (admission.Decision, error) {
	now := g.clock.Now()

	// 1. Rate limit (I/O for window state)
	rl, err := g.limiter.Admit(ctx, req.ClientID, now)
	if err != nil {
		return admission.Decision{}, fmt.Errorf("rate limit: %w", err)
	}
	rate := admission.RateInfo{Limit: rl.Limit, Remaining: rl.Remaining, ResetAt: rl.ResetAt}
	if !rl.Allowed {
		return g.reject(req, admission.RateLimited(int(g.limiter.Window().Seconds())), rate), nil
	}

	// 2. Price lookup (PURE)
	price := g.prices.PriceFor(req.Endpoint)

	// 3. Claim presence
	if strings.TrimSpace(req.PaymentHeader) == "" {
		return g.reject(req, admission.PaymentRequired(price), rate), nil
	}

	// 4. Parse claim (PURE)
	parsed := claim.Parse(req.PaymentHeader)
	if !parsed.OK() {
		return g.reject(req, admission.InvalidPaymentFormat(), rate), nil
	}
	c := parsed.Claim.WithClient(req.ClientAddress)

	// 5. Verify (may be I/O)
	verdict, err := g.verifier.Verify(ctx, c, price)
	if err != nil {
		g.logger.Warn().Err(err).Str("endpoint", req.Endpoint).Msg("payment verification failed")
		return g.reject(req, admission.VerificationFailed("settlement unavailable"), rate), nil
	}
	if !verdict.Accepted {
		return g.reject(req, g.rejectionFor(verdict, price), rate), nil
	}

	// 6. Admit
	return admission.Admit(admission.Charge{
		Endpoint:            req.Endpoint,
		ClientAddress:       req.ClientAddress,
		MaxAmountAuthorized: c.MaxAmount,
		AmountCharged:       price,
		Token:               g.token,
		Pending:             verdict.Pending,
		Meta:                req.Meta,
	}, rate), nil
}

func (g *Gateway) rejectionFor(v payment.Verdict, price decimal.Decimal) admission.Rejection {
	switch v.Reason {
	case payment.ReasonTokenMismatch:
		return admission.UnsupportedToken(g.token)
	case payment.ReasonInsufficientAmount:
		return admission.InsufficientPayment(price, g.token)
	default:
		return admission.SettlementRejected(price, v.Detail)
	}
}

func (g *Gateway) reject(req Request, r admission.Rejection, rate admission.RateInfo) admission.Decision {
	g.logger.Debug().
		Str("code", r.Code).
		Str("client", req.ClientID).
		Str("endpoint", req.Endpoint).
		Msg("request rejected")
	return admission.Reject(r, rate)
}

// Record writes an admitted charge to the ledger and credits the client
// profile. The two writes are independent critical sections. If crediting
// fails the returned entry is the one already in the ledger.
func (g *Gateway) Record(ctx context.Context, c admission.Charge) (ledger.Entry, error) {
	now := g.clock.Now()

	e := ledger.Entry{
		ID:                  g.idGen.New(),
		ClientAddress:       c.ClientAddress,
		Endpoint:            c.Endpoint,
		MaxAmountAuthorized: c.MaxAmountAuthorized,
		AmountCharged:       c.AmountCharged,
		Status:              ledger.StatusCompleted,
		CreatedAt:           now,
		IPAddress:           c.Meta.IPAddress,
		UserAgent:           c.Meta.UserAgent,
	}
	if c.Pending {
		e.Status = ledger.StatusPending
	} else {
		e.CompletedAt = &now
	}

	if err := g.ledger.Append(ctx, e); err != nil {
		return ledger.Entry{}, fmt.Errorf("record request: %w", err)
	}
	// The entry exists from here on; it is archived even if crediting fails.
	if g.recorder != nil {
		g.recorder.Record(e)
	}
	if _, err := g.profiles.Credit(ctx, c.ClientAddress, c.AmountCharged, now); err != nil {
		return e, fmt.Errorf("credit profile for %s: %w", e.ID, err)
	}

	g.logger.Info().
		Str("request_id", e.ID).
		Str("endpoint", e.Endpoint).
		Str("client", ledger.ProfileKey(e.ClientAddress)).
		Str("amount", e.AmountCharged.String()).
		Str("status", string(e.Status)).
		Msg("request admitted")
	return e, nil
}

// Get returns a ledger entry by id.
func (g *Gateway) Get(ctx context.Context, id string) (ledger.Entry, error) {
	return g.ledger.Get(ctx, id)
}

// Settle applies a settlement event to its ledger entry.
// Profiles are never decremented by refunds.
func (g *Gateway) Settle(ctx context.Context, ev webhook.Event) (ledger.Entry, error) {
	next, ok := webhook.TargetStatus(ev.Type)
	if !ok {
		return ledger.Entry{}, webhook.ErrUnknownEvent
	}

	e, err := g.ledger.Transition(ctx, ev.RequestID, next, g.clock.Now())
	if err != nil {
		return e, err
	}
	if g.recorder != nil {
		g.recorder.Transitioned(e)
	}

	g.logger.Info().
		Str("request_id", e.ID).
		Str("event", string(ev.Type)).
		Str("status", string(e.Status)).
		Msg("settlement applied")
	return e, nil
}

// GlobalStats scans the ledger and profiles into a rollup.
func (g *Gateway) GlobalStats(ctx context.Context) (stats.Global, error) {
	entries, err := g.ledger.List(ctx)
	if err != nil {
		return stats.Global{}, fmt.Errorf("list ledger: %w", err)
	}
	profiles, err := g.profiles.List(ctx)
	if err != nil {
		return stats.Global{}, fmt.Errorf("list profiles: %w", err)
	}
	return stats.Aggregate(entries, profiles), nil
}

// TopClients returns up to n profiles by spend, with the current
// rate-limit override filled in.
func (g *Gateway) TopClients(ctx context.Context, n int) ([]ledger.Profile, error) {
	profiles, err := g.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	top := stats.TopClients(profiles, n)
	for i := range top {
		if l, ok := g.limiter.Override(top[i].Address); ok {
			top[i].RateLimitOverride = &l
		}
	}
	return top, nil
}

// SetRateLimit sets a per-client rate-limit override.
func (g *Gateway) SetRateLimit(clientID string, limit int) error {
	if err := g.limiter.SetOverride(clientID, limit); err != nil {
		return err
	}
	g.logger.Info().Str("client", clientID).Int("limit", limit).Msg("rate limit override set")
	return nil
}

// RateLimiter returns the gateway's limiter.
func (g *Gateway) RateLimiter() *RateLimiter {
	return g.limiter
}

// Prices returns the price table.
func (g *Gateway) Prices() *pricing.Table {
	return g.prices
}

// AcceptedToken returns the accepted token symbol.
func (g *Gateway) AcceptedToken() string {
	return g.token
}
