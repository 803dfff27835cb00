package main

import (
	"fmt"
	"os"

	"github.com/artpar/paygate/bootstrap"
	"github.com/artpar/paygate/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the Paygate configuration file.

Checks:
  - YAML syntax is valid
  - Prices, addresses and modes are valid
  - Ledger archive is writable (optional)

Examples:
  paygate validate
  paygate validate --config /etc/paygate/config.yaml --check-database`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if the ledger archive is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config valid\n", checkMark)

	prices, err := cfg.PriceTable()
	if err != nil {
		return fmt.Errorf("price table: %w", err)
	}

	// Show config summary
	fmt.Fprintf(out, "  %s Token: %s on %s\n", checkMark, cfg.Payment.Token, cfg.Payment.Network)
	fmt.Fprintf(out, "  %s Default price: %s\n", checkMark, prices.DefaultPrice())
	fmt.Fprintf(out, "  %s Priced endpoints: %d\n", checkMark, len(prices.Endpoints()))
	fmt.Fprintf(out, "  %s Rate limit: %d per %s (%s store)\n", checkMark, cfg.RateLimit.DefaultLimit, cfg.Window(), cfg.RateLimit.Store)
	fmt.Fprintf(out, "  %s Verifier: %s\n", checkMark, cfg.Verifier.Mode)

	if cfg.Database.DSN == "" {
		fmt.Fprintf(out, "  %s Ledger archive: disabled\n", checkMark)
	} else {
		fmt.Fprintf(out, "  %s Ledger archive: %s\n", checkMark, cfg.Database.DSN)
	}

	// Optional: check database
	if validateCheckDatabase && cfg.Database.DSN != "" {
		db, err := bootstrap.OpenArchive(cfg.Database.DSN)
		if err != nil {
			fmt.Fprintf(out, "  %s Ledger archive writable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			db.Close()
			fmt.Fprintf(out, "  %s Ledger archive writable\n", checkMark)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
