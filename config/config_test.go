package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/paygate/config"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 9000

payment:
  token: "usdc"
  network: "base-sepolia"
  pay_to: "0x742d35cc6634c0532925a3b844bc454e4438f44e"
  default_price: 0.02

endpoints:
  - path: "/api/v1/predict"
    description: "Prediction"
    price: 0.01
  - path: "/api/v1/analyze"
    price: 0.05

rate_limit:
  default_limit: 100
  window_secs: 30

logging:
  level: "debug"
  format: "console"
`
	cfg := writeAndLoad(t, content)

	if cfg.Addr() != "127.0.0.1:9000" {
		t.Errorf("Addr = %s, want 127.0.0.1:9000", cfg.Addr())
	}
	if cfg.Payment.Token != "USDC" {
		t.Errorf("Payment.Token = %s, want USDC", cfg.Payment.Token)
	}
	if cfg.Payment.PayTo != "0x742d35Cc6634C0532925a3b844Bc454e4438f44e" {
		t.Errorf("Payment.PayTo = %s, want checksummed address", cfg.Payment.PayTo)
	}
	if !cfg.Payment.DefaultPrice.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("Payment.DefaultPrice = %s, want 0.02", cfg.Payment.DefaultPrice)
	}
	if len(cfg.Endpoints) != 2 {
		t.Fatalf("len(Endpoints) = %d, want 2", len(cfg.Endpoints))
	}
	if !cfg.Endpoints[1].Price.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("Endpoints[1].Price = %s, want 0.05", cfg.Endpoints[1].Price)
	}
	if cfg.RateLimit.DefaultLimit != 100 {
		t.Errorf("RateLimit.DefaultLimit = %d, want 100", cfg.RateLimit.DefaultLimit)
	}
	if cfg.Window() != 30*time.Second {
		t.Errorf("Window = %v, want 30s", cfg.Window())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "server:\n  port: 0\n")

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %s, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Payment.Token != "USDC" {
		t.Errorf("Payment.Token = %s, want USDC", cfg.Payment.Token)
	}
	if cfg.Payment.Network != "base" {
		t.Errorf("Payment.Network = %s, want base", cfg.Payment.Network)
	}
	if !cfg.Payment.DefaultPrice.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Payment.DefaultPrice = %s, want 0.01", cfg.Payment.DefaultPrice)
	}
	if cfg.RateLimit.DefaultLimit != 60 {
		t.Errorf("RateLimit.DefaultLimit = %d, want 60", cfg.RateLimit.DefaultLimit)
	}
	if cfg.RateLimit.WindowSecs != 60 {
		t.Errorf("RateLimit.WindowSecs = %d, want 60", cfg.RateLimit.WindowSecs)
	}
	if cfg.RateLimit.Store != "memory" {
		t.Errorf("RateLimit.Store = %s, want memory", cfg.RateLimit.Store)
	}
	if cfg.Verifier.Mode != "local" {
		t.Errorf("Verifier.Mode = %s, want local", cfg.Verifier.Mode)
	}
	if cfg.Archive.BatchSize != 100 {
		t.Errorf("Archive.BatchSize = %d, want 100", cfg.Archive.BatchSize)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %s, want /metrics", cfg.Metrics.Path)
	}
	if cfg.Database.DSN != "" {
		t.Errorf("Database.DSN = %s, want empty", cfg.Database.DSN)
	}
}

func TestLoad_DefaultEndpoints(t *testing.T) {
	cfg := writeAndLoad(t, "payment:\n  default_price: 0.03\n")

	prices, err := cfg.PriceTable()
	if err != nil {
		t.Fatalf("PriceTable error: %v", err)
	}

	tests := []struct {
		path  string
		price string
	}{
		{"/api/v1/predict", "0.01"},
		{"/api/v1/analyze", "0.05"},
		{"/api/v1/search", "0.001"},
		{"/api/v1/embed", "0.002"},
		{"/api/v1/complete", "0.01"},
		{"/api/v1/request", "0.03"},
		{"/not/listed", "0.03"},
	}
	for _, tt := range tests {
		if got := prices.PriceFor(tt.path); !got.Equal(decimal.RequireFromString(tt.price)) {
			t.Errorf("PriceFor(%s) = %s, want %s", tt.path, got, tt.price)
		}
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_PAY_TO", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e")

	cfg := writeAndLoad(t, "payment:\n  pay_to: \"${TEST_PAY_TO}\"\n")

	if cfg.Payment.PayTo != "0x742d35Cc6634C0532925a3b844Bc454e4438f44e" {
		t.Errorf("Payment.PayTo = %s, want expanded value", cfg.Payment.PayTo)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative default price", "payment:\n  default_price: -1\n", "pricing"},
		{"zero endpoint price", "endpoints:\n  - path: /a\n    price: 0\n", "pricing"},
		{"duplicate endpoint", "endpoints:\n  - path: /a\n    price: 1\n  - path: /a\n    price: 2\n", "duplicate"},
		{"relative endpoint", "endpoints:\n  - path: a\n    price: 1\n", "must start with"},
		{"bad pay_to", "payment:\n  pay_to: not-an-address\n", "payment.pay_to"},
		{"bad asset", "payment:\n  asset: 0x1234\n", "payment.asset"},
		{"negative limit", "rate_limit:\n  default_limit: -1\n", "default_limit"},
		{"unknown store", "rate_limit:\n  store: etcd\n", "rate_limit.store"},
		{"redis without addr", "rate_limit:\n  store: redis\n", "redis.addr"},
		{"unknown verifier", "verifier:\n  mode: chain\n", "verifier.mode"},
		{"facilitator without url", "verifier:\n  mode: facilitator\n", "facilitator.url"},
		{"bad token hash", "admin:\n  token_hash: plaintext\n", "admin.token_hash"},
		{"bad log level", "logging:\n  level: loud\n", "logging.level"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeAndLoadErr(t, tt.content)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_AdminTokenHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	cfg := writeAndLoad(t, "admin:\n  token_hash: \""+string(hash)+"\"\n")

	if cfg.Admin.TokenHash != string(hash) {
		t.Errorf("Admin.TokenHash = %s, want %s", cfg.Admin.TokenHash, hash)
	}
}

func TestLoad_RedisStore(t *testing.T) {
	content := `
rate_limit:
  store: redis
  redis:
    addr: "localhost:6379"
    db: 2
`
	cfg := writeAndLoad(t, content)

	if cfg.RateLimit.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %s, want localhost:6379", cfg.RateLimit.Redis.Addr)
	}
	if cfg.RateLimit.Redis.DB != 2 {
		t.Errorf("Redis.DB = %d, want 2", cfg.RateLimit.Redis.DB)
	}
}

func TestLoad_FacilitatorVerifier(t *testing.T) {
	content := `
verifier:
  mode: facilitator
  facilitator:
    url: "https://facilitator.example.com"
    api_key: "k"
    timeout: 3s
`
	cfg := writeAndLoad(t, content)

	if cfg.Verifier.Facilitator.URL != "https://facilitator.example.com" {
		t.Errorf("Facilitator.URL = %s", cfg.Verifier.Facilitator.URL)
	}
	if cfg.Verifier.Facilitator.Timeout != 3*time.Second {
		t.Errorf("Facilitator.Timeout = %v, want 3s", cfg.Verifier.Facilitator.Timeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PAYGATE_SERVER_PORT", "9999")
	t.Setenv("PAYGATE_PAYMENT_TOKEN", "dai")
	t.Setenv("PAYGATE_PAYMENT_DEFAULT_PRICE", "0.5")
	t.Setenv("PAYGATE_RATELIMIT_DEFAULT", "10")
	t.Setenv("PAYGATE_RATELIMIT_WINDOW", "5")
	t.Setenv("PAYGATE_WEBHOOK_SECRET", "whsec")
	t.Setenv("PAYGATE_LOG_LEVEL", "warn")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Payment.Token != "DAI" {
		t.Errorf("Payment.Token = %s, want DAI", cfg.Payment.Token)
	}
	if !cfg.Payment.DefaultPrice.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Payment.DefaultPrice = %s, want 0.5", cfg.Payment.DefaultPrice)
	}
	if cfg.RateLimit.DefaultLimit != 10 || cfg.RateLimit.WindowSecs != 5 {
		t.Errorf("RateLimit = %+v, want limit 10 window 5", cfg.RateLimit)
	}
	if cfg.Webhook.Secret != "whsec" {
		t.Errorf("Webhook.Secret = %s, want whsec", cfg.Webhook.Secret)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled || !cfg.OpenAPI.Enabled {
		t.Error("metrics and openapi should default to enabled")
	}
	if len(cfg.Endpoints) != 6 {
		t.Errorf("len(Endpoints) = %d, want 6 defaults", len(cfg.Endpoints))
	}
}

func TestLoadFromEnv_InvalidPrice(t *testing.T) {
	t.Setenv("PAYGATE_PAYMENT_DEFAULT_PRICE", "cheap")

	if _, err := config.LoadFromEnv(); err == nil {
		t.Error("expected error for unparsable default price")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("PAYGATE_SERVER_PORT", "7777")
	t.Setenv("PAYGATE_VERIFIER_MODE", "facilitator")
	t.Setenv("PAYGATE_FACILITATOR_URL", "http://env-facilitator")

	cfg := writeAndLoad(t, "server:\n  port: 8000\nverifier:\n  mode: local\n")

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env override)", cfg.Server.Port)
	}
	if cfg.Verifier.Mode != "facilitator" {
		t.Errorf("Verifier.Mode = %s, want facilitator", cfg.Verifier.Mode)
	}
}

func TestEnvOverrides_InvalidIntegers(t *testing.T) {
	t.Setenv("PAYGATE_SERVER_PORT", "not-a-number")
	t.Setenv("PAYGATE_RATELIMIT_DEFAULT", "many")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.RateLimit.DefaultLimit != 60 {
		t.Errorf("RateLimit.DefaultLimit = %d, want default 60", cfg.RateLimit.DefaultLimit)
	}
}

func TestParseBoolValues(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
		{"invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("PAYGATE_METRICS_ENABLED", tt.value)

			cfg, err := config.LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv error: %v", err)
			}
			if cfg.Metrics.Enabled != tt.expected {
				t.Errorf("value=%q: Metrics.Enabled = %v, want %v", tt.value, cfg.Metrics.Enabled, tt.expected)
			}
		})
	}
}

func TestLoadWithFallback(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8123\n")

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123 from file", cfg.Server.Port)
	}

	cfg, err = config.LoadWithFallback(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback (missing) error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 from defaults", cfg.Server.Port)
	}

	if _, err := config.LoadWithFallback(""); err != nil {
		t.Errorf("LoadWithFallback(\"\") error: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := writeAndLoadErr(t, "server: [unclosed"); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := config.Load("/nonexistent/paygate.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

// Helpers

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := writeAndLoadErr(t, content)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeAndLoadErr(t *testing.T, content string) (*config.Config, error) {
	t.Helper()
	return config.Load(writeConfig(t, content))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
