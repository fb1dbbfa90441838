package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thermolaq/atelier-backend/pkg/redis"
)

const claimValue = "claimed"

// EventClaims marks Stripe event ids as taken in Redis. Live and test mode
// events are kept apart so a sandbox replay never masks a live delivery.
type EventClaims struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewEventClaims(store redis.IdempotencyStore, ttl time.Duration, scope string) (*EventClaims, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl <= 0:
		return nil, errors.New("claim ttl must be positive")
	case scope == "":
		return nil, errors.New("scope is required")
	}
	return &EventClaims{store: store, ttl: ttl, scope: scope}, nil
}

// Claim returns true when this call took eventID, false when an earlier
// delivery already holds it.
func (c *EventClaims) Claim(ctx context.Context, eventID string, live bool) (bool, error) {
	key, err := c.key(eventID, live)
	if err != nil {
		return false, err
	}
	taken, err := c.store.SetNX(ctx, key, claimValue, c.ttl)
	if err != nil {
		return false, fmt.Errorf("claim stripe event %s: %w", eventID, err)
	}
	return taken, nil
}

// Release drops a claim after a failed apply so Stripe's retry goes through.
func (c *EventClaims) Release(ctx context.Context, eventID string, live bool) error {
	key, err := c.key(eventID, live)
	if err != nil {
		return err
	}
	if err := c.store.Del(ctx, key); err != nil {
		return fmt.Errorf("release stripe event %s: %w", eventID, err)
	}
	return nil
}

func (c *EventClaims) key(eventID string, live bool) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	mode := "test"
	if live {
		mode = "live"
	}
	return c.store.IdempotencyKey(c.scope+":"+mode, eventID), nil
}
