package main

import (
	"fmt"

	"github.com/artpar/paygate/adapters/hasher"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin token helpers",
}

var adminHashTokenCmd = &cobra.Command{
	Use:   "hash-token <token>",
	Short: "Print the bcrypt hash to use as admin.token_hash",
	Long: `Print the bcrypt hash of an admin token.

Put the output in admin.token_hash (or PAYGATE_ADMIN_TOKEN_HASH) and send
the plain token in the X-Admin-Token header of admin requests.

Example:
  paygate admin hash-token "s3cret"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminHashToken,
}

var adminHashCost int

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminHashTokenCmd)

	adminHashTokenCmd.Flags().IntVar(&adminHashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
}

func runAdminHashToken(cmd *cobra.Command, args []string) error {
	hash, err := hasher.NewBcrypt(adminHashCost).Hash(args[0])
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(hash))
	return nil
}
