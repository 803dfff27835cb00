// Package webhook provides value types and pure functions for settlement
// webhooks: signed callbacks that move ledger entries to a terminal status.
package webhook

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/paygate/domain/ledger"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Webhook-Signature"

// EventType is the kind of settlement event.
type EventType string

// Supported event types
const (
	EventPaymentSettled  EventType = "payment.settled"  // pending -> completed
	EventPaymentRefunded EventType = "payment.refunded" // pending|completed -> refunded
)

// Parse errors.
var (
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrUnknownEvent     = errors.New("unknown webhook event")
	ErrMissingRequestID = errors.New("webhook payload has no request_id")
)

// Event is a settlement callback (value type).
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TargetStatus returns the ledger status an event moves an entry to.
// This is a PURE function.
func TargetStatus(t EventType) (ledger.Status, bool) {
	switch t {
	case EventPaymentSettled:
		return ledger.StatusCompleted, true
	case EventPaymentRefunded:
		return ledger.StatusRefunded, true
	default:
		return "", false
	}
}

// ParseEvent decodes and validates a webhook body.
// This is a PURE function.
func ParseEvent(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, ok := TargetStatus(e.Type); !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
	if e.RequestID == "" {
		return Event{}, ErrMissingRequestID
	}
	return e, nil
}

// NewEvent builds an event for requestID.
func NewEvent(t EventType, requestID string, now time.Time) Event {
	return Event{
		ID:        GenerateEventID(),
		Type:      t,
		RequestID: requestID,
		Timestamp: now.UTC(),
	}
}

// GenerateEventID generates a unique event ID.
func GenerateEventID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return "evt_" + hex.EncodeToString(b)
}

// SignPayload signs a payload with the webhook secret using HMAC-SHA256.
// This is a PURE function.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies that a signature matches the payload.
// An optional "sha256=" prefix is accepted.
// This is a PURE function.
func VerifySignature(payload []byte, signature, secret string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected))
}

// Authenticate reports whether a payload may be processed. With no secret
// configured every payload is accepted.
// This is a PURE function.
func Authenticate(payload []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}
	return VerifySignature(payload, signature, secret)
}
