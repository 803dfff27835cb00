package main

import (
	"fmt"

	"github.com/artpar/paygate/bootstrap"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the payment gateway",
	Long: `Start the Paygate HTTP server.

The server will:
  - Load configuration from paygate.yaml (or --config)
  - Or load configuration from PAYGATE_* environment variables
  - Open the ledger archive when database.dsn is set
  - Admit priced requests that carry a sufficient X-Payment claim

Environment variables (for Docker deployments):
  PAYGATE_SERVER_PORT            - Server port (default: 8080)
  PAYGATE_PAYMENT_TOKEN          - Accepted token (default: USDC)
  PAYGATE_PAYMENT_DEFAULT_PRICE  - Price of unlisted endpoints (default: 0.01)
  PAYGATE_RATELIMIT_DEFAULT      - Requests per window (default: 60)
  PAYGATE_VERIFIER_MODE          - local or facilitator
  PAYGATE_DATABASE_DSN           - Ledger archive path (optional)
  PAYGATE_LOG_LEVEL              - Log level: debug, info, warn, error

Examples:
  paygate serve
  paygate serve --config /etc/paygate/config.yaml

  # Docker (env vars only):
  PAYGATE_RATELIMIT_DEFAULT=120 paygate serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap.NewWithConfig(bootstrap.Config{ConfigPath: cfgFile})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
