// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file when present, else from
// PAYGATE_* environment variables and defaults.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/artpar/paygate/adapters/clock"
	apihttp "github.com/artpar/paygate/adapters/http"
	"github.com/artpar/paygate/adapters/idgen"
	"github.com/artpar/paygate/adapters/memory"
	"github.com/artpar/paygate/adapters/metrics"
	"github.com/artpar/paygate/adapters/redis"
	"github.com/artpar/paygate/adapters/sqlite"
	"github.com/artpar/paygate/adapters/verifier"
	"github.com/artpar/paygate/app"
	"github.com/artpar/paygate/config"
	"github.com/artpar/paygate/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// EnvConfigPath names the config file; the default is paygate.yaml.
const EnvConfigPath = "PAYGATE_CONFIG"

// DefaultConfigPath is used when neither a path nor EnvConfigPath is given.
const DefaultConfigPath = "paygate.yaml"

// rateLimitStore is a window store that owns resources.
type rateLimitStore interface {
	ports.RateLimitStore
	Close() error
}

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	Holder     *config.Holder // nil when configured from the environment
	DB         *sqlite.DB     // nil when the archive is disabled
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Gateway    *app.Gateway

	// Adapters (for cleanup)
	limits   rateLimitStore
	recorder *LedgerRecorder
}

// Config provides optional configuration for application initialization.
type Config struct {
	// ConfigPath is the YAML file to load. Empty means EnvConfigPath or
	// DefaultConfigPath; a missing file falls back to the environment.
	ConfigPath string

	// Registry receives the gateway's metrics. Defaults to the
	// process-wide Prometheus registry.
	Registry *prometheus.Registry

	// LogOutput defaults to os.Stdout.
	LogOutput io.Writer
}

// New creates and initializes the application.
func New() (*App, error) {
	return NewWithConfig(Config{})
}

// NewWithConfig creates and initializes the application with custom configuration.
func NewWithConfig(cfg Config) (*App, error) {
	path := cfg.ConfigPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultConfigPath
	}

	conf, err := config.LoadWithFallback(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	out := cfg.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logger := NewLogger(conf.Logging, out)
	logger.Info().Str("network", conf.Payment.Network).Str("token", conf.Payment.Token).Msg("initializing paygate")

	a := &App{
		Logger: logger,
		Config: conf,
	}

	if _, err := os.Stat(path); err == nil {
		holder, err := config.NewHolder(path, logger)
		if err != nil {
			return nil, fmt.Errorf("config holder: %w", err)
		}
		a.Holder = holder
		a.Config = holder.Get()
	} else {
		logger.Info().Str("path", path).Msg("config file not found, using environment")
	}

	if conf.Metrics.Enabled {
		if cfg.Registry != nil {
			a.Metrics = metrics.NewWithRegistry(cfg.Registry)
		} else {
			a.Metrics = metrics.New()
		}
		logger.Info().Msg("prometheus metrics enabled")
	}

	if err := a.initGateway(); err != nil {
		a.Shutdown()
		return nil, fmt.Errorf("init gateway: %w", err)
	}

	a.initHTTPServer(cfg.Registry)
	a.initReload()

	return a, nil
}

func (a *App) initGateway() error {
	conf := a.Config

	prices, err := conf.PriceTable()
	if err != nil {
		return fmt.Errorf("price table: %w", err)
	}

	// Rate limit windows
	switch conf.RateLimit.Store {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := redis.New(ctx, redis.Config{
			Addr:     conf.RateLimit.Redis.Addr,
			Password: conf.RateLimit.Redis.Password,
			DB:       conf.RateLimit.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("redis rate limit store: %w", err)
		}
		a.limits = store
		a.Logger.Info().Str("addr", conf.RateLimit.Redis.Addr).Msg("using redis rate limit store")
	default:
		a.limits = memory.NewRateLimitStore(memory.RateLimitConfig{Shards: conf.RateLimit.Shards})
	}

	v, err := verifier.New(verifier.Config{
		Mode:               conf.Verifier.Mode,
		AcceptedToken:      conf.Payment.Token,
		Network:            conf.Payment.Network,
		Asset:              conf.Payment.Asset,
		PayTo:              conf.Payment.PayTo,
		FacilitatorURL:     conf.Verifier.Facilitator.URL,
		FacilitatorAPIKey:  conf.Verifier.Facilitator.APIKey,
		FacilitatorTimeout: conf.Verifier.Facilitator.Timeout,
	})
	if err != nil {
		return fmt.Errorf("verifier: %w", err)
	}
	a.Logger.Info().Str("mode", conf.Verifier.Mode).Msg("payment verifier ready")

	// Optional durable archive
	var recorder ports.LedgerRecorder
	if conf.Database.DSN != "" {
		if err := a.initArchive(); err != nil {
			return err
		}
		recorder = a.recorder
	}

	a.Gateway = app.NewGateway(app.GatewayDeps{
		RateLimiter: app.NewRateLimiter(a.limits, app.RateLimiterConfig{
			DefaultLimit: conf.RateLimit.DefaultLimit,
			Window:       conf.Window(),
		}),
		Prices:   prices,
		Verifier: v,
		Ledger:   memory.NewLedgerStore(),
		Profiles: memory.NewProfileStore(),
		Recorder: recorder,
		Clock:    clock.Real{},
		IDGen:    idgen.UUID{},
		Logger:   a.Logger,
	}, app.GatewayConfig{AcceptedToken: conf.Payment.Token})

	return nil
}

func (a *App) initArchive() error {
	db, err := OpenArchive(a.Config.Database.DSN)
	if err != nil {
		return err
	}
	a.DB = db

	a.recorder = NewLedgerRecorder(sqlite.NewLedgerArchive(db), LedgerRecorderConfig{
		BatchSize:     a.Config.Archive.BatchSize,
		FlushInterval: a.Config.Archive.FlushInterval,
		Logger:        a.Logger,
		Metrics:       a.Metrics,
	})
	a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("ledger archive enabled")
	return nil
}

// OpenArchive opens and migrates the ledger archive database.
func OpenArchive(dsn string) (*sqlite.DB, error) {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return db, nil
}

func (a *App) initHTTPServer(reg *prometheus.Registry) {
	conf := a.Config

	handler := apihttp.NewHandler(apihttp.HandlerDeps{
		Gateway: a.Gateway,
		Logger:  a.Logger,
		Metrics: a.Metrics,
	}, apihttp.HandlerConfig{
		Network:        conf.Payment.Network,
		WebhookSecret:  conf.Webhook.Secret,
		AdminTokenHash: conf.Admin.TokenHash,
	})

	routerCfg := apihttp.RouterConfig{
		Metrics:       a.Metrics,
		MetricsPath:   conf.Metrics.Path,
		EnableOpenAPI: conf.OpenAPI.Enabled,
	}
	if reg != nil {
		routerCfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	a.HTTPServer = &http.Server{
		Addr:         conf.Addr(),
		Handler:      apihttp.NewRouter(handler, a.Logger, routerCfg),
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
	}
}

// initReload applies hot-reloadable settings on config changes.
func (a *App) initReload() {
	if a.Holder == nil {
		return
	}

	a.Holder.OnChange(func(c *config.Config) {
		if level, err := zerolog.ParseLevel(c.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
			a.Metrics.ConfigLastReload.SetToCurrentTime()
		}
	})
	a.Holder.OnError(func(error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	if a.Holder != nil {
		if err := a.Holder.WatchFile(); err != nil {
			a.Logger.Warn().Err(err).Msg("config file watch disabled")
		}
		a.Holder.WatchSignals()
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Int("endpoints", len(a.Gateway.Prices().Endpoints())).
			Str("default_price", a.Gateway.Prices().DefaultPrice().String()).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for interrupt or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Holder != nil {
		a.Holder.Stop()
	}

	// Shutdown HTTP server
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	// Flush ledger archive
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("ledger recorder close error")
		}
	}

	if a.limits != nil {
		if err := a.limits.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("rate limit store close error")
		}
	}

	// Close database
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// NewLogger builds the process logger from logging settings and applies
// the level globally.
func NewLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
