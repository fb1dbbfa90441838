package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// Mode is the Stripe environment the workshop SaaS bills in.
type Mode string

const (
	ModeTest Mode = "test"
	ModeLive Mode = "live"
)

var (
	// ErrNotConfigured is returned when no webhook signing secret is set.
	ErrNotConfigured = errors.New("stripe webhook secret is not configured")
	// ErrNoAPIKey marks calls that need the API while running webhook-only.
	ErrNoAPIKey = errors.New("stripe api key is not configured")
)

// Client holds the webhook signing secret and, when an API key is set, the
// API client used to refresh subscriptions.
type Client struct {
	api           *stripe.Client
	mode          Mode
	signingSecret string
}

// NewClient checks the Stripe settings. Only the signing secret is
// mandatory; without an API key the client runs webhook-only.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	mode, err := parseMode(cfg.Environment())
	if err != nil {
		return nil, err
	}
	secret := strings.TrimSpace(cfg.WebhookSecret)
	if secret == "" {
		return nil, ErrNotConfigured
	}

	c := &Client{mode: mode, signingSecret: secret}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		if err := mode.checkKey(key); err != nil {
			return nil, err
		}
		c.api = stripe.NewClient(key)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"stripe_env":          string(mode),
			"stripe_webhook_only": c.api == nil,
		}), "stripe client initialized")
	}
	return c, nil
}

// API returns the Stripe API client, nil in webhook-only mode.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment is "test" or "live", empty on a nil client.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return string(c.mode)
}

// Live reports whether events and objects should carry livemode=true.
func (c *Client) Live() bool {
	return c != nil && c.mode == ModeLive
}

// SigningSecret returns the webhook signing secret, empty when unconfigured.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

// GetSubscription fetches the current subscription object.
func (c *Client) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	if c.API() == nil {
		return nil, ErrNoAPIKey
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("subscription id is required")
	}
	sub, err := c.api.V1Subscriptions.Retrieve(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription %s: %w", id, err)
	}
	return sub, nil
}

func parseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeTest, nil
	case ModeTest, ModeLive:
		return m, nil
	default:
		return "", fmt.Errorf("stripe environment must be %q or %q, got %q", ModeTest, ModeLive, raw)
	}
}

// checkKey refuses a live key in test mode and the reverse. Secret (sk_)
// and restricted (rk_) keys are both accepted.
func (m Mode) checkKey(key string) error {
	for _, kind := range []string{"sk_", "rk_"} {
		if strings.HasPrefix(key, kind+string(m)+"_") {
			return nil
		}
	}
	return fmt.Errorf("stripe %s mode needs an sk_%s_ or rk_%s_ key", m, m, m)
}
