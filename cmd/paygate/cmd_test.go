package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artpar/paygate/domain/webhook"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "paygate dev") {
		t.Errorf("output = %q", out)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paygate.yaml")
	body := "payment:\n  default_price: \"0.02\"\ndatabase:\n  dsn: " + filepath.Join(dir, "ledger.db") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "validate", "--config", path, "--check-database")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	for _, want := range []string{"Default price: 0.02", "Ledger archive writable", "Configuration is valid."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestValidate_MissingFile(t *testing.T) {
	if _, err := run(t, "validate", "--config", filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestAdminHashToken(t *testing.T) {
	out, err := run(t, "admin", "hash-token", "s3cret", "--cost", "4")
	if err != nil {
		t.Fatal(err)
	}
	hash := strings.TrimSpace(out)
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
		t.Errorf("hash does not match token: %v", err)
	}
}

func TestWebhookSign(t *testing.T) {
	out, err := run(t, "webhook", "sign", "settled", "req_1", "--secret", "whsec")
	if err != nil {
		t.Fatal(err)
	}

	var body, sig string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "Body:"):
			body = strings.TrimSpace(strings.TrimPrefix(line, "Body:"))
		case strings.HasPrefix(line, "Signature:"):
			sig = strings.TrimSpace(strings.TrimPrefix(line, "Signature:"))
		}
	}

	ev, err := webhook.ParseEvent([]byte(body))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Type != webhook.EventPaymentSettled || ev.RequestID != "req_1" {
		t.Errorf("event = %+v", ev)
	}
	if !webhook.VerifySignature([]byte(body), sig, "whsec") {
		t.Errorf("signature %q does not verify", sig)
	}

	var raw map[string]any
	json.Unmarshal([]byte(body), &raw)
	if !strings.HasPrefix(raw["id"].(string), "evt_") {
		t.Errorf("id = %v", raw["id"])
	}
}

func TestWebhookSign_UnknownEvent(t *testing.T) {
	if _, err := run(t, "webhook", "sign", "chargeback", "req_1", "--secret", "x"); err == nil {
		t.Error("expected error for unknown event")
	}
}
