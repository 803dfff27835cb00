package verifier

import (
	"fmt"
	"time"

	"github.com/artpar/paygate/adapters/remote"
	"github.com/artpar/paygate/ports"
)

// Verifier modes.
const (
	ModeLocal       = "local"
	ModeFacilitator = "facilitator"
)

// Config selects and configures a verifier.
type Config struct {
	Mode          string
	AcceptedToken string
	Network       string
	Asset         string
	PayTo         string

	FacilitatorURL     string
	FacilitatorAPIKey  string
	FacilitatorTimeout time.Duration
}

// New creates the verifier named by cfg.Mode.
func New(cfg Config) (ports.Verifier, error) {
	switch cfg.Mode {
	case ModeLocal, "":
		return NewLocal(cfg.AcceptedToken), nil

	case ModeFacilitator:
		if cfg.FacilitatorURL == "" {
			return nil, fmt.Errorf("facilitator url is required")
		}
		return remote.NewFacilitator(remote.FacilitatorConfig{
			Client: remote.ClientConfig{
				BaseURL: cfg.FacilitatorURL,
				APIKey:  cfg.FacilitatorAPIKey,
				Timeout: cfg.FacilitatorTimeout,
			},
			AcceptedToken: cfg.AcceptedToken,
			Network:       cfg.Network,
			Asset:         cfg.Asset,
			PayTo:         cfg.PayTo,
		})

	default:
		return nil, fmt.Errorf("unknown verifier mode: %s", cfg.Mode)
	}
}
