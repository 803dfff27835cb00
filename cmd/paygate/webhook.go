package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/artpar/paygate/config"
	"github.com/artpar/paygate/domain/webhook"
	"github.com/spf13/cobra"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Settlement webhook helpers",
}

var webhookSignCmd = &cobra.Command{
	Use:   "sign <settled|refunded> <request-id>",
	Short: "Build and sign a settlement event",
	Long: `Build a settlement event and print its body and signature.

The secret defaults to webhook.secret from the config.

Example:
  paygate webhook sign settled req_0123456789abcdef0123456789abcdef
  curl -X POST http://localhost:8080/api/v1/webhooks/settlement \
    -H "X-Webhook-Signature: <signature>" -d '<body>'`,
	Args: cobra.ExactArgs(2),
	RunE: runWebhookSign,
}

var webhookSecret string

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookSignCmd)

	webhookSignCmd.Flags().StringVar(&webhookSecret, "secret", "", "webhook secret (default: webhook.secret from config)")
}

func eventType(kind string) (webhook.EventType, error) {
	switch kind {
	case "settled", string(webhook.EventPaymentSettled):
		return webhook.EventPaymentSettled, nil
	case "refunded", string(webhook.EventPaymentRefunded):
		return webhook.EventPaymentRefunded, nil
	default:
		return "", fmt.Errorf("unknown event %q (want settled or refunded)", kind)
	}
}

func runWebhookSign(cmd *cobra.Command, args []string) error {
	typ, err := eventType(args[0])
	if err != nil {
		return err
	}

	secret := webhookSecret
	if secret == "" {
		cfg, err := config.LoadWithFallback(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		secret = cfg.Webhook.Secret
	}

	body, err := json.Marshal(webhook.NewEvent(typ, args[1], time.Now()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Body:      %s\n", body)
	if secret == "" {
		fmt.Fprintln(out, "Signature: (none, no webhook secret configured)")
		return nil
	}
	fmt.Fprintf(out, "Signature: sha256=%s\n", webhook.SignPayload(body, secret))
	return nil
}
