// Package e2e provides end-to-end tests for the complete Paygate flow.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/artpar/paygate/adapters/remote"
	"github.com/artpar/paygate/adapters/sqlite"
	"github.com/artpar/paygate/bootstrap"
	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/domain/webhook"
	"github.com/prometheus/client_golang/prometheus"
)

const webhookSecret = "whsec_e2e"

// TestE2E_PendingSettlementFlow tests the complete deferred settlement flow:
// 1. Start a mock facilitator that answers "pending"
// 2. Start Paygate with the facilitator verifier and a ledger archive
// 3. Make a paid request
// 4. Deliver a signed settlement webhook
// 5. Verify stats, request lookup and the archive
func TestE2E_PendingSettlementFlow(t *testing.T) {
	// 1. Mock facilitator
	var verifyCalls atomic.Int32
	facilitator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" {
			http.NotFound(w, r)
			return
		}
		verifyCalls.Add(1)
		var req remote.VerifyRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(remote.VerifyResponse{Status: remote.StatusPending})
	}))
	defer facilitator.Close()

	// 2. Start Paygate
	app, dbPath := setupTestApp(t, facilitator.URL)
	addr := startServer(t, app)
	base := "http://" + addr

	client := &http.Client{Timeout: 5 * time.Second}

	// 3. Paid request
	req, _ := http.NewRequest(http.MethodPost, base+"/api/v1/analyze", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("X-Payment", "max_amount=0.05, token=USDC")
	req.Header.Set("X-Client-Address", "0xE2E")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("paid request failed: %v", err)
	}
	var paid struct {
		RequestID     string      `json:"request_id"`
		Status        string      `json:"status"`
		AmountCharged json.Number `json:"amount_charged"`
	}
	decode(t, resp, http.StatusOK, &paid)

	if paid.Status != "pending" {
		t.Errorf("status = %s, want pending", paid.Status)
	}
	if paid.AmountCharged.String() != "0.05" {
		t.Errorf("amount_charged = %s, want 0.05", paid.AmountCharged)
	}
	if verifyCalls.Load() != 1 {
		t.Errorf("facilitator calls = %d, want 1", verifyCalls.Load())
	}

	// Pending entries earn no revenue yet.
	var stats struct {
		TotalRequests    int64       `json:"total_requests"`
		TotalRevenueUSDC json.Number `json:"total_revenue_usdc"`
	}
	resp, err = client.Get(base + "/api/v1/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	decode(t, resp, http.StatusOK, &stats)
	if stats.TotalRequests != 1 || stats.TotalRevenueUSDC.String() != "0" {
		t.Errorf("stats before settlement = %+v", stats)
	}

	// 4. Unsigned webhook is refused, signed one is applied.
	body, _ := json.Marshal(webhook.NewEvent(webhook.EventPaymentSettled, paid.RequestID, time.Now()))

	resp, err = client.Post(base+"/api/v1/webhooks/settlement", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("unsigned webhook: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unsigned webhook status = %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodPost, base+"/api/v1/webhooks/settlement", bytes.NewReader(body))
	req.Header.Set(webhook.SignatureHeader, "sha256="+webhook.SignPayload(body, webhookSecret))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("signed webhook: %v", err)
	}
	var settled struct {
		Ledger string `json:"ledger_status"`
	}
	decode(t, resp, http.StatusOK, &settled)
	if settled.Ledger != "completed" {
		t.Errorf("ledger_status = %s, want completed", settled.Ledger)
	}

	// 5. Request lookup and stats reflect the settlement.
	var lookup struct {
		Status      string  `json:"status"`
		Client      string  `json:"client"`
		CompletedAt *string `json:"completed_at"`
	}
	resp, err = client.Get(base + "/api/v1/requests/" + paid.RequestID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	decode(t, resp, http.StatusOK, &lookup)
	if lookup.Status != "completed" || lookup.Client != "0xE2E" || lookup.CompletedAt == nil {
		t.Errorf("lookup = %+v", lookup)
	}

	resp, err = client.Get(base + "/api/v1/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	decode(t, resp, http.StatusOK, &stats)
	if stats.TotalRevenueUSDC.String() != "0.05" {
		t.Errorf("revenue after settlement = %s, want 0.05", stats.TotalRevenueUSDC)
	}

	// Shutdown flushes the archive.
	app.Shutdown()

	db, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer db.Close()

	e, err := sqlite.NewLedgerArchive(db).Get(context.Background(), paid.RequestID)
	if err != nil {
		t.Fatalf("archived entry: %v", err)
	}
	if e.Status != ledger.StatusCompleted || e.CompletedAt == nil {
		t.Errorf("archived entry = %+v", e)
	}
}

// TestE2E_FacilitatorFailures checks how facilitator answers map to responses.
func TestE2E_FacilitatorFailures(t *testing.T) {
	var mode atomic.Value
	mode.Store("rejected")

	facilitator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mode.Load() == "down" {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(remote.VerifyResponse{Status: remote.StatusRejected, Reason: "nonce reused"})
	}))
	defer facilitator.Close()

	app, _ := setupTestApp(t, facilitator.URL)
	defer app.Shutdown()
	base := "http://" + startServer(t, app)

	post := func() (int, map[string]any) {
		req, _ := http.NewRequest(http.MethodPost, base+"/api/v1/predict", nil)
		req.Header.Set("X-Payment", "max_amount=1, token=USDC")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		return resp.StatusCode, body
	}

	status, body := post()
	if status != http.StatusPaymentRequired || body["code"] != "VERIFICATION_FAILED" {
		t.Errorf("rejected: status = %d, body = %v", status, body)
	}

	mode.Store("down")
	status, body = post()
	if status != http.StatusBadGateway || body["code"] != "VERIFICATION_FAILED" {
		t.Errorf("down: status = %d, body = %v", status, body)
	}

	// Rejected claims never reach the ledger.
	resp, err := http.Get(base + "/api/v1/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats struct {
		TotalRequests int64 `json:"total_requests"`
	}
	decode(t, resp, http.StatusOK, &stats)
	if stats.TotalRequests != 0 {
		t.Errorf("total_requests = %d, want 0", stats.TotalRequests)
	}
}

// Helper functions

func setupTestApp(t *testing.T, facilitatorURL string) (*bootstrap.App, string) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")
	cfgPath := filepath.Join(dir, "paygate.yaml")

	cfg := `
server:
  host: 127.0.0.1
payment:
  token: USDC
  network: base-sepolia
  default_price: "0.01"
verifier:
  mode: facilitator
  facilitator:
    url: ` + facilitatorURL + `
    timeout: 2s
webhook:
  secret: ` + webhookSecret + `
database:
  dsn: ` + dbPath + `
logging:
  level: error
metrics:
  enabled: true
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	app, err := bootstrap.NewWithConfig(bootstrap.Config{
		ConfigPath: cfgPath,
		Registry:   prometheus.NewRegistry(),
		LogOutput:  io.Discard,
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return app, dbPath
}

func startServer(t *testing.T, app *bootstrap.App) string {
	t.Helper()

	// Find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	app.HTTPServer.Addr = addr

	go app.HTTPServer.Serve(listener)

	waitForServer(t, addr)
	return addr
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s not ready", addr)
}

func decode(t *testing.T, resp *http.Response, want int, v any) {
	t.Helper()
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d, body: %s", resp.StatusCode, want, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}
