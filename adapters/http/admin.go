package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/paygate/domain/admission"
	"github.com/artpar/paygate/domain/claim"
	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/domain/webhook"
	"github.com/go-chi/chi/v5"
)

// DefaultClientsLimit is the number of clients listed when ?limit is absent.
const DefaultClientsLimit = 20

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status         string `json:"status" example:"ok"`
	Timestamp      string `json:"timestamp" example:"2024-01-15T12:00:00Z"`
	GatewayVersion string `json:"gateway_version" example:"1.0.0"`
	Network        string `json:"network" example:"base"`
	Currency       string `json:"currency" example:"USDC"`
}

// EndpointInfo describes one priced endpoint.
type EndpointInfo struct {
	Path        string      `json:"path" example:"/api/v1/predict"`
	Description string      `json:"description" example:"ML prediction endpoint"`
	Price       json.Number `json:"price" swaggertype:"number" example:"0.01"`
	Unit        string      `json:"unit" example:"USDC"`
	RateLimit   string      `json:"rate_limit" example:"60 req/min"`
}

// EndpointsResponse lists priced endpoints.
type EndpointsResponse struct {
	Endpoints    []EndpointInfo `json:"endpoints"`
	DefaultPrice json.Number    `json:"default_price" swaggertype:"number" example:"0.01"`
}

// EndpointStatsResponse is the rollup for one endpoint.
type EndpointStatsResponse struct {
	Count   int64       `json:"count" example:"12"`
	Revenue json.Number `json:"revenue" swaggertype:"number" example:"0.12"`
}

// StatsResponse is the gateway-wide rollup.
type StatsResponse struct {
	TotalRequests    int64                            `json:"total_requests" example:"42"`
	TotalRevenueUSDC json.Number                      `json:"total_revenue_usdc" swaggertype:"number" example:"0.42"`
	TotalRefunded    json.Number                      `json:"total_refunded" swaggertype:"number" example:"0"`
	UniqueClients    int                              `json:"unique_clients" example:"3"`
	ByEndpoint       map[string]EndpointStatsResponse `json:"by_endpoint"`
	Network          string                           `json:"network" example:"base"`
	Currency         string                           `json:"currency" example:"USDC"`
}

// ClientInfo is one client profile.
type ClientInfo struct {
	Address       string      `json:"address" example:"0xA"`
	TotalSpent    json.Number `json:"total_spent" swaggertype:"number" example:"0.02"`
	TotalRequests int64       `json:"total_requests" example:"2"`
	IsWhitelisted bool        `json:"is_whitelisted" example:"false"`
	RateLimit     *int        `json:"rate_limit" example:"60"`
}

// ClientsResponse lists the top clients by spend.
type ClientsResponse struct {
	Clients []ClientInfo `json:"clients"`
}

// RequestResponse is one ledger entry.
type RequestResponse struct {
	ID          string      `json:"id" example:"req_3f2a9c0e5b7d4e1f8a6b2c9d0e1f2a3b"`
	Client      string      `json:"client" example:"0xA"`
	Endpoint    string      `json:"endpoint" example:"/api/v1/predict"`
	AmountPaid  json.Number `json:"amount_paid" swaggertype:"number" example:"0.01"`
	MaxAmount   json.Number `json:"max_amount" swaggertype:"number" example:"0.01"`
	Status      string      `json:"status" example:"completed"`
	CreatedAt   string      `json:"created_at" example:"2024-01-15T12:00:00Z"`
	CompletedAt *string     `json:"completed_at"`
}

// RateLimitRequest sets a per-client override.
type RateLimitRequest struct {
	ClientAddress string `json:"client_address" example:"0xA"`
	Limit         *int   `json:"limit,omitempty" example:"100"`
}

// RateLimitResponse confirms an override.
type RateLimitResponse struct {
	Status string `json:"status" example:"ok"`
	Client string `json:"client" example:"0xA"`
	Limit  int    `json:"limit" example:"100"`
}

// SettlementResponse confirms a settlement event.
type SettlementResponse struct {
	Status    string `json:"status" example:"ok"`
	RequestID string `json:"request_id" example:"req_3f2a9c0e5b7d4e1f8a6b2c9d0e1f2a3b"`
	Ledger    string `json:"ledger_status" example:"completed"`
}

// Health reports liveness.
//
//	@Summary		Health check
//	@Description	Returns OK with the gateway version, network and currency
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		Timestamp:      timestamp(time.Now()),
		GatewayVersion: Version,
		Network:        h.network,
		Currency:       h.gateway.AcceptedToken(),
	})
}

// Endpoints lists priced endpoints.
//
//	@Summary		List priced endpoints
//	@Tags			Pricing
//	@Produce		json
//	@Success		200	{object}	EndpointsResponse
//	@Router			/api/v1/endpoints [get]
func (h *Handler) Endpoints(w http.ResponseWriter, r *http.Request) {
	prices := h.gateway.Prices()
	limiter := h.gateway.RateLimiter()
	rateLimit := strconv.Itoa(limiter.DefaultLimit()) + " req/" + windowUnit(limiter.Window())

	resp := EndpointsResponse{
		Endpoints:    make([]EndpointInfo, 0),
		DefaultPrice: amount(prices.DefaultPrice()),
	}
	for _, e := range prices.Endpoints() {
		desc := e.Description
		if desc == "" {
			desc = "API endpoint"
		}
		resp.Endpoints = append(resp.Endpoints, EndpointInfo{
			Path:        e.Path,
			Description: desc,
			Price:       amount(e.Price),
			Unit:        h.gateway.AcceptedToken(),
			RateLimit:   rateLimit,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func windowUnit(d time.Duration) string {
	switch d {
	case time.Minute:
		return "min"
	case time.Hour:
		return "hour"
	case time.Second:
		return "sec"
	default:
		return d.String()
	}
}

// Stats returns gateway-wide totals.
//
//	@Summary		Gateway statistics
//	@Tags			Ledger
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Router			/api/v1/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	g, err := h.gateway.GlobalStats(r.Context())
	if err != nil {
		h.internalError(w, err, "stats failed")
		return
	}

	byEndpoint := make(map[string]EndpointStatsResponse, len(g.PerEndpoint))
	for path, s := range g.PerEndpoint {
		byEndpoint[path] = EndpointStatsResponse{Count: s.Count, Revenue: amount(s.Revenue)}
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalRequests:    g.TotalRequests,
		TotalRevenueUSDC: amount(g.TotalRevenue),
		TotalRefunded:    amount(g.TotalRefunded),
		UniqueClients:    g.UniqueClients,
		ByEndpoint:       byEndpoint,
		Network:          h.network,
		Currency:         h.gateway.AcceptedToken(),
	})
}

// Clients lists the top clients by spend.
//
//	@Summary		Top clients
//	@Tags			Ledger
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum clients to return"	default(20)
//	@Success		200		{object}	ClientsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/clients [get]
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	n := DefaultClientsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		n = parsed
	}

	top, err := h.gateway.TopClients(r.Context(), n)
	if err != nil {
		h.internalError(w, err, "list clients failed")
		return
	}

	limiter := h.gateway.RateLimiter()
	resp := ClientsResponse{Clients: make([]ClientInfo, 0, len(top))}
	for _, p := range top {
		limit := limiter.LimitFor(p.Address)
		if p.RateLimitOverride != nil {
			limit = *p.RateLimitOverride
		}
		resp.Clients = append(resp.Clients, ClientInfo{
			Address:       p.Address,
			TotalSpent:    amount(p.TotalSpent),
			TotalRequests: p.TotalRequests,
			IsWhitelisted: p.IsWhitelisted,
			RateLimit:     &limit,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Request returns one ledger entry.
//
//	@Summary		Get request
//	@Tags			Ledger
//	@Produce		json
//	@Param			id	path		string	true	"Request ID"
//	@Success		200	{object}	RequestResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/requests/{id} [get]
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	e, err := h.gateway.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ledger.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Request not found", Code: admission.CodeNotFound})
		return
	}
	if err != nil {
		h.internalError(w, err, "get request failed")
		return
	}

	resp := RequestResponse{
		ID:         e.ID,
		Client:     e.ClientAddress,
		Endpoint:   e.Endpoint,
		AmountPaid: amount(e.AmountCharged),
		MaxAmount:  amount(e.MaxAmountAuthorized),
		Status:     string(e.Status),
		CreatedAt:  timestamp(e.CreatedAt),
	}
	if e.CompletedAt != nil {
		s := timestamp(*e.CompletedAt)
		resp.CompletedAt = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetRateLimit sets a per-client rate-limit override.
//
//	@Summary		Set client rate limit
//	@Description	Overrides the per-window limit for one client. A limit of 0 blocks the client.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			X-Admin-Token	header		string				false	"Admin token (required when configured)"
//	@Param			body			body		RateLimitRequest	true	"Override"
//	@Success		200				{object}	RateLimitResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Router			/api/v1/rate-limit [post]
func (h *Handler) SetRateLimit(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid admin token"})
		return
	}

	var req RateLimitRequest
	if r.Body != nil {
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
			return
		}
	}

	client := strings.TrimSpace(req.ClientAddress)
	if client == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "client_address required"})
		return
	}

	limit := h.gateway.RateLimiter().DefaultLimit()
	if req.Limit != nil {
		limit = *req.Limit
	}
	if err := h.gateway.SetRateLimit(client, limit); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, RateLimitResponse{Status: "ok", Client: client, Limit: limit})
}

// Settlement applies a settlement webhook event.
//
//	@Summary		Settlement webhook
//	@Description	Moves a ledger entry to completed or refunded. Signed with HMAC-SHA256 over the raw body when a secret is configured.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			X-Webhook-Signature	header		string	false	"hex HMAC-SHA256 of the body"
//	@Success		200					{object}	SettlementResponse
//	@Failure		400					{object}	ErrorResponse
//	@Failure		401					{object}	ErrorResponse
//	@Failure		404					{object}	ErrorResponse
//	@Failure		409					{object}	ErrorResponse
//	@Router			/api/v1/webhooks/settlement [post]
func (h *Handler) Settlement(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Failed to read request body"})
		return
	}

	if !webhook.Authenticate(body, r.Header.Get(webhook.SignatureHeader), h.webhookSecret) {
		h.observeWebhook("unknown", "unauthorized")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid signature"})
		return
	}

	ev, err := webhook.ParseEvent(body)
	if err != nil {
		h.observeWebhook("unknown", "invalid")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	e, err := h.gateway.Settle(r.Context(), ev)
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrNotFound):
		h.observeWebhook(string(ev.Type), "not_found")
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Request not found", Code: admission.CodeNotFound})
		return
	case errors.Is(err, ledger.ErrInvalidTransition):
		h.observeWebhook(string(ev.Type), "conflict")
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "Invalid status transition",
			Details: map[string]string{"status": string(e.Status), "event": string(ev.Type)},
		})
		return
	case errors.Is(err, webhook.ErrUnknownEvent):
		h.observeWebhook(string(ev.Type), "invalid")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	default:
		h.observeWebhook(string(ev.Type), "error")
		h.internalError(w, err, "settlement failed")
		return
	}

	h.observeWebhook(string(ev.Type), "applied")
	writeJSON(w, http.StatusOK, SettlementResponse{Status: "ok", RequestID: e.ID, Ledger: string(e.Status)})
}

// ExampleClient explains how agents pay.
//
//	@Summary		Client usage example
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/example/client [get]
func (h *Handler) ExampleClient(w http.ResponseWriter, r *http.Request) {
	token := h.gateway.AcceptedToken()
	header := claim.Format(h.gateway.Prices().DefaultPrice(), token)

	paths := make([]string, 0)
	for _, e := range h.gateway.Prices().Endpoints() {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)

	writeJSON(w, http.StatusOK, map[string]any{
		"example": map[string]any{
			"description": "How to make paid requests",
			"headers": map[string]string{
				HeaderPayment:       header,
				HeaderClientAddress: "0xYourWalletAddress",
			},
			"endpoints": paths,
			"curl_example": "curl -X POST https://gateway.example.com/api/v1/predict \\\n" +
				"  -H \"" + HeaderPayment + ": " + header + "\" \\\n" +
				"  -H \"" + HeaderClientAddress + ": 0xYourWallet\" \\\n" +
				"  -H \"Content-Type: application/json\" \\\n" +
				"  -d '{\"input\": \"data\"}'",
			"on_402": "Read price and instructions from the response body, then retry with a covering " + HeaderPayment + " header.",
		},
	})
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.adminHash == nil {
		return true
	}
	token := r.Header.Get(HeaderAdminToken)
	if token == "" {
		return false
	}
	return h.hasher.Compare(h.adminHash, token)
}

func (h *Handler) observeWebhook(eventType, result string) {
	if h.metrics != nil {
		h.metrics.WebhookEvents.WithLabelValues(eventType, result).Inc()
	}
}

func (h *Handler) internalError(w http.ResponseWriter, err error, msg string) {
	h.logger.Error().Err(err).Msg(msg)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
}
