package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paygate",
	Short: "Pay-per-request API gateway with rate limiting and a request ledger",
	Long: `Paygate charges per API call.

Each priced request carries an X-Payment claim that is verified against the
endpoint price before the request is admitted and recorded in the ledger.

Quick start:
  paygate serve      # Start the gateway
  paygate validate   # Validate configuration

Operations:
  paygate ledger     # Inspect the durable ledger archive
  paygate admin      # Admin token helpers
  paygate webhook    # Sign settlement webhook payloads`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "paygate.yaml", "config file path")
}
