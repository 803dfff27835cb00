package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/artpar/paygate/adapters/sqlite"
	"github.com/artpar/paygate/bootstrap"
	"github.com/artpar/paygate/config"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the ledger archive",
	Long: `Inspect the durable ledger archive configured by database.dsn.

Examples:
  paygate ledger show req_0123456789abcdef0123456789abcdef
  paygate ledger stats
  paygate ledger stats --dsn /var/lib/paygate/ledger.db`,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show an archived request",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerShow,
}

var ledgerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive totals",
	RunE:  runLedgerStats,
}

var ledgerDSN string

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerStatsCmd)

	ledgerCmd.PersistentFlags().StringVar(&ledgerDSN, "dsn", "", "archive path (default: database.dsn from config)")
}

func openLedger() (*sqlite.DB, error) {
	dsn := ledgerDSN
	if dsn == "" {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		dsn = cfg.Database.DSN
	}
	if dsn == "" {
		return nil, fmt.Errorf("no ledger archive configured (set database.dsn or --dsn)")
	}
	return bootstrap.OpenArchive(dsn)
}

func runLedgerShow(cmd *cobra.Command, args []string) error {
	db, err := openLedger()
	if err != nil {
		return err
	}
	defer db.Close()

	e, err := sqlite.NewLedgerArchive(db).Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("request %s: %w", args[0], err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", e.ID)
	fmt.Fprintf(w, "Client:\t%s\n", e.ClientAddress)
	fmt.Fprintf(w, "Endpoint:\t%s\n", e.Endpoint)
	fmt.Fprintf(w, "Authorized:\t%s\n", e.MaxAmountAuthorized)
	fmt.Fprintf(w, "Charged:\t%s\n", e.AmountCharged)
	fmt.Fprintf(w, "Status:\t%s\n", e.Status)
	fmt.Fprintf(w, "Created:\t%s\n", e.CreatedAt.Format(time.RFC3339))
	if e.CompletedAt != nil {
		fmt.Fprintf(w, "Completed:\t%s\n", e.CompletedAt.Format(time.RFC3339))
	}
	if e.IPAddress != "" {
		fmt.Fprintf(w, "IP:\t%s\n", e.IPAddress)
	}
	return w.Flush()
}

func runLedgerStats(cmd *cobra.Command, args []string) error {
	db, err := openLedger()
	if err != nil {
		return err
	}
	defer db.Close()

	sum, err := sqlite.NewLedgerArchive(db).Summary(context.Background())
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Entries:\t%d\n", sum.Entries)
	fmt.Fprintf(w, "Clients:\t%d\n", sum.Clients)
	fmt.Fprintf(w, "Pending:\t%d\n", sum.Pending)
	fmt.Fprintf(w, "Revenue:\t%s\n", sum.Completed)
	fmt.Fprintf(w, "Refunded:\t%s\n", sum.Refunded)
	if sum.FirstAt != nil && sum.LastAt != nil {
		fmt.Fprintf(w, "Period:\t%s - %s\n", sum.FirstAt.Format(time.RFC3339), sum.LastAt.Format(time.RFC3339))
	}
	return w.Flush()
}
