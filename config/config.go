// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/paygate/domain/pricing"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Payment   PaymentConfig    `yaml:"payment"`
	Endpoints []EndpointConfig `yaml:"endpoints"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Verifier  VerifierConfig   `yaml:"verifier"`
	Webhook   WebhookConfig    `yaml:"webhook"`
	Admin     AdminConfig      `yaml:"admin"`
	Database  DatabaseConfig   `yaml:"database"`
	Archive   ArchiveConfig    `yaml:"archive"`
	Logging   LoggingConfig    `yaml:"logging"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	OpenAPI   OpenAPIConfig    `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PaymentConfig configures the accepted payment.
type PaymentConfig struct {
	Token        string          `yaml:"token"`         // accepted token symbol (default: USDC)
	Network      string          `yaml:"network"`       // settlement network (default: base)
	PayTo        string          `yaml:"pay_to"`        // receiving address, optional
	Asset        string          `yaml:"asset"`         // token contract address, optional
	DefaultPrice decimal.Decimal `yaml:"default_price"` // price of unlisted endpoints (default: 0.01)
}

// EndpointConfig prices one endpoint.
type EndpointConfig struct {
	Path        string          `yaml:"path"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
}

// RateLimitConfig configures rate limiting.
type RateLimitConfig struct {
	DefaultLimit int         `yaml:"default_limit"` // requests per window (default: 60)
	WindowSecs   int         `yaml:"window_secs"`   // window length (default: 60)
	Store        string      `yaml:"store"`         // "memory" or "redis"
	Shards       int         `yaml:"shards"`        // memory store shards (default: 32)
	Redis        RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the shared rate limit store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// VerifierConfig selects how payment claims are verified.
// Use "local" to trust claims as stated or "facilitator" to delegate.
type VerifierConfig struct {
	Mode        string       `yaml:"mode"` // "local" or "facilitator"
	Facilitator RemoteConfig `yaml:"facilitator,omitempty"`
}

// RemoteConfig configures a remote service endpoint.
type RemoteConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// WebhookConfig configures settlement webhooks.
type WebhookConfig struct {
	Secret string `yaml:"secret"` // HMAC secret; empty accepts unsigned payloads
}

// AdminConfig protects mutating admin routes.
type AdminConfig struct {
	TokenHash string `yaml:"token_hash"` // bcrypt hash of the admin token; empty leaves routes open
}

// DatabaseConfig configures the ledger archive database.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // SQLite path; empty disables the archive
}

// ArchiveConfig configures batched archive writes.
type ArchiveConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// OpenAPIConfig configures OpenAPI/Swagger documentation.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"` // Enable /swagger endpoints
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Window returns the rate limit window length.
func (c *Config) Window() time.Duration {
	return time.Duration(c.RateLimit.WindowSecs) * time.Second
}

// PriceTable builds the immutable price table.
func (c *Config) PriceTable() (*pricing.Table, error) {
	endpoints := make([]pricing.Endpoint, 0, len(c.Endpoints))
	for _, e := range c.Endpoints {
		endpoints = append(endpoints, pricing.Endpoint{Path: e.Path, Description: e.Description, Price: e.Price})
	}
	return pricing.NewTable(c.Payment.DefaultPrice, endpoints)
}

// DefaultEndpoints returns the built-in price list used when none is
// configured. The generic request endpoint costs the default price.
func DefaultEndpoints(defaultPrice decimal.Decimal) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/v1/predict", Description: "ML prediction endpoint", Price: decimal.RequireFromString("0.01")},
		{Path: "/api/v1/analyze", Description: "Data analysis endpoint", Price: decimal.RequireFromString("0.05")},
		{Path: "/api/v1/search", Description: "Search endpoint", Price: decimal.RequireFromString("0.001")},
		{Path: "/api/v1/embed", Description: "Text embedding endpoint", Price: decimal.RequireFromString("0.002")},
		{Path: "/api/v1/complete", Description: "Text completion endpoint", Price: decimal.RequireFromString("0.01")},
		{Path: "/api/v1/request", Description: "Generic paid request", Price: defaultPrice},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg)
}

// LoadFromEnv creates configuration entirely from environment variables
// and defaults. Every setting has a default, so this always yields a
// runnable gateway.
//
// Environment variables:
//
//	PAYGATE_SERVER_HOST            - Server host (default: 0.0.0.0)
//	PAYGATE_SERVER_PORT            - Server port (default: 8080)
//	PAYGATE_PAYMENT_TOKEN          - Accepted token (default: USDC)
//	PAYGATE_PAYMENT_NETWORK        - Network (default: base)
//	PAYGATE_PAYMENT_PAY_TO         - Receiving address
//	PAYGATE_PAYMENT_DEFAULT_PRICE  - Default price (default: 0.01)
//	PAYGATE_RATELIMIT_DEFAULT      - Requests per window (default: 60)
//	PAYGATE_RATELIMIT_WINDOW       - Window seconds (default: 60)
//	PAYGATE_RATELIMIT_STORE        - memory or redis (default: memory)
//	PAYGATE_REDIS_ADDR             - Redis address
//	PAYGATE_VERIFIER_MODE          - local or facilitator (default: local)
//	PAYGATE_FACILITATOR_URL        - Facilitator base URL
//	PAYGATE_FACILITATOR_API_KEY    - Facilitator API key
//	PAYGATE_WEBHOOK_SECRET         - Settlement webhook secret
//	PAYGATE_ADMIN_TOKEN_HASH       - bcrypt hash of the admin token
//	PAYGATE_DATABASE_DSN           - Ledger archive path (default: disabled)
//	PAYGATE_LOG_LEVEL              - Log level (default: info)
//	PAYGATE_LOG_FORMAT             - json or console (default: json)
//	PAYGATE_METRICS_ENABLED        - Enable /metrics (default: true)
//	PAYGATE_OPENAPI_ENABLED        - Enable /swagger (default: true)
func LoadFromEnv() (*Config, error) {
	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
		OpenAPI: OpenAPIConfig{Enabled: true},
	}
	return finish(&cfg)
}

// LoadWithFallback loads path when it exists, else falls back to the
// environment.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

func finish(cfg *Config) (*Config, error) {
	// Environment variables always override file-based configuration.
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	normalize(cfg)
	return cfg, nil
}

// applyEnvOverrides applies PAYGATE_* environment variables to the config.
func applyEnvOverrides(cfg *Config) error {
	// Server configuration
	if v := os.Getenv("PAYGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PAYGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PAYGATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("PAYGATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Payment configuration
	if v := os.Getenv("PAYGATE_PAYMENT_TOKEN"); v != "" {
		cfg.Payment.Token = v
	}
	if v := os.Getenv("PAYGATE_PAYMENT_NETWORK"); v != "" {
		cfg.Payment.Network = v
	}
	if v := os.Getenv("PAYGATE_PAYMENT_PAY_TO"); v != "" {
		cfg.Payment.PayTo = v
	}
	if v := os.Getenv("PAYGATE_PAYMENT_ASSET"); v != "" {
		cfg.Payment.Asset = v
	}
	if v := os.Getenv("PAYGATE_PAYMENT_DEFAULT_PRICE"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("PAYGATE_PAYMENT_DEFAULT_PRICE: %w", err)
		}
		cfg.Payment.DefaultPrice = d
	}

	// Rate limit configuration
	if v := os.Getenv("PAYGATE_RATELIMIT_DEFAULT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.DefaultLimit = n
		}
	}
	if v := os.Getenv("PAYGATE_RATELIMIT_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.WindowSecs = n
		}
	}
	if v := os.Getenv("PAYGATE_RATELIMIT_STORE"); v != "" {
		cfg.RateLimit.Store = v
	}
	if v := os.Getenv("PAYGATE_REDIS_ADDR"); v != "" {
		cfg.RateLimit.Redis.Addr = v
	}
	if v := os.Getenv("PAYGATE_REDIS_PASSWORD"); v != "" {
		cfg.RateLimit.Redis.Password = v
	}

	// Verifier configuration
	if v := os.Getenv("PAYGATE_VERIFIER_MODE"); v != "" {
		cfg.Verifier.Mode = v
	}
	if v := os.Getenv("PAYGATE_FACILITATOR_URL"); v != "" {
		cfg.Verifier.Facilitator.URL = v
	}
	if v := os.Getenv("PAYGATE_FACILITATOR_API_KEY"); v != "" {
		cfg.Verifier.Facilitator.APIKey = v
	}

	// Secrets
	if v := os.Getenv("PAYGATE_WEBHOOK_SECRET"); v != "" {
		cfg.Webhook.Secret = v
	}
	if v := os.Getenv("PAYGATE_ADMIN_TOKEN_HASH"); v != "" {
		cfg.Admin.TokenHash = v
	}

	// Database configuration
	if v := os.Getenv("PAYGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Logging configuration
	if v := os.Getenv("PAYGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PAYGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics and OpenAPI
	if v := os.Getenv("PAYGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("PAYGATE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
	if v := os.Getenv("PAYGATE_OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
	return nil
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Payment.Token == "" {
		cfg.Payment.Token = "USDC"
	}
	if cfg.Payment.Network == "" {
		cfg.Payment.Network = "base"
	}
	if cfg.Payment.DefaultPrice.IsZero() {
		cfg.Payment.DefaultPrice = decimal.RequireFromString("0.01")
	}

	if len(cfg.Endpoints) == 0 {
		cfg.Endpoints = DefaultEndpoints(cfg.Payment.DefaultPrice)
	}

	if cfg.RateLimit.DefaultLimit == 0 {
		cfg.RateLimit.DefaultLimit = 60
	}
	if cfg.RateLimit.WindowSecs == 0 {
		cfg.RateLimit.WindowSecs = 60
	}
	if cfg.RateLimit.Store == "" {
		cfg.RateLimit.Store = "memory"
	}
	if cfg.RateLimit.Shards == 0 {
		cfg.RateLimit.Shards = 32
	}

	if cfg.Verifier.Mode == "" {
		cfg.Verifier.Mode = "local"
	}
	if cfg.Verifier.Facilitator.Timeout == 0 {
		cfg.Verifier.Facilitator.Timeout = 10 * time.Second
	}

	if cfg.Archive.BatchSize == 0 {
		cfg.Archive.BatchSize = 100
	}
	if cfg.Archive.FlushInterval == 0 {
		cfg.Archive.FlushInterval = 5 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if _, err := cfg.PriceTable(); err != nil {
		return fmt.Errorf("pricing: %w", err)
	}
	for i, e := range cfg.Endpoints {
		if !strings.HasPrefix(e.Path, "/") {
			return fmt.Errorf("endpoints[%d].path must start with '/', got %q", i, e.Path)
		}
	}

	for name, addr := range map[string]string{"payment.pay_to": cfg.Payment.PayTo, "payment.asset": cfg.Payment.Asset} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("%s is not a valid address: %q", name, addr)
		}
	}

	if cfg.RateLimit.DefaultLimit < 0 {
		return fmt.Errorf("rate_limit.default_limit must not be negative")
	}
	if cfg.RateLimit.WindowSecs < 0 {
		return fmt.Errorf("rate_limit.window_secs must be positive")
	}
	switch cfg.RateLimit.Store {
	case "memory":
	case "redis":
		if cfg.RateLimit.Redis.Addr == "" {
			return fmt.Errorf("rate_limit.redis.addr is required when rate_limit.store is 'redis'")
		}
	default:
		return fmt.Errorf("rate_limit.store must be 'memory' or 'redis', got %q", cfg.RateLimit.Store)
	}

	switch cfg.Verifier.Mode {
	case "local":
	case "facilitator":
		if cfg.Verifier.Facilitator.URL == "" {
			return fmt.Errorf("verifier.facilitator.url is required when verifier.mode is 'facilitator'")
		}
	default:
		return fmt.Errorf("verifier.mode must be 'local' or 'facilitator', got %q", cfg.Verifier.Mode)
	}

	if cfg.Admin.TokenHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.Admin.TokenHash)); err != nil {
			return fmt.Errorf("admin.token_hash is not a bcrypt hash: %w", err)
		}
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}

// normalize rewrites validated values into canonical form.
func normalize(cfg *Config) {
	cfg.Payment.Token = strings.ToUpper(cfg.Payment.Token)
	if cfg.Payment.PayTo != "" {
		cfg.Payment.PayTo = common.HexToAddress(cfg.Payment.PayTo).Hex()
	}
	if cfg.Payment.Asset != "" {
		cfg.Payment.Asset = common.HexToAddress(cfg.Payment.Asset).Hex()
	}
}
