package subscriptions

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/thermolaq/atelier-backend/pkg/stripe"
)

// StripeSubscriptionClient is the read-only processor surface used to
// refresh a subscription before reconciling an invoice outcome.
type StripeSubscriptionClient interface {
	Get(ctx context.Context, id string) (*stripe.Subscription, error)
}

type stripeClientWrapper struct {
	api *pkgstripe.Client
}

// NewStripeClient returns nil when the client has no API key, which puts the
// service in webhook-only mode.
func NewStripeClient(api *pkgstripe.Client) StripeSubscriptionClient {
	if api == nil || api.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: api}
}

func (w *stripeClientWrapper) Get(ctx context.Context, id string) (*stripe.Subscription, error) {
	return w.api.GetSubscription(ctx, id)
}
