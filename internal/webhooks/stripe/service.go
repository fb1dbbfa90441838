package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/invoices"
	"github.com/thermolaq/atelier-backend/internal/subscriptions"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type invoiceEvents interface {
	ApplyPaymentEvent(ctx context.Context, tx *gorm.DB, event invoices.PaymentEvent) (*models.Invoice, error)
}

type subscriptionEvents interface {
	Fetch(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	ApplyStripeSubscription(ctx context.Context, tx *gorm.DB, sub *stripe.Subscription, eventType stripe.EventType) (*models.Tenant, error)
	ApplyInvoiceOutcome(ctx context.Context, tx *gorm.DB, outcome subscriptions.InvoiceOutcome) (*models.Tenant, error)
}

type eventGuard interface {
	Claim(ctx context.Context, eventID string, live bool) (bool, error)
	Release(ctx context.Context, eventID string, live bool) error
}

type ServiceParams struct {
	Invoices          invoiceEvents
	Subscriptions     subscriptionEvents
	Events            EventRepository
	Guard             eventGuard
	Metrics           *metrics.WebhookMetrics
	Logger            *logger.Logger
	TransactionRunner txRunner
}

// Service applies verified Stripe events to local invoices and tenant
// subscriptions.
type Service struct {
	invoices      invoiceEvents
	subscriptions subscriptionEvents
	events        EventRepository
	guard         eventGuard
	metrics       *metrics.WebhookMetrics
	logg          *logger.Logger
	txRunner      txRunner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice service required")
	}
	if params.Subscriptions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription service required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		invoices:      params.Invoices,
		subscriptions: params.Subscriptions,
		events:        params.Events,
		guard:         params.Guard,
		metrics:       params.Metrics,
		logg:          params.Logger,
		txRunner:      params.TransactionRunner,
	}, nil
}

// result is what one dispatch touched; a nil tenant means nothing matched.
type result struct {
	tenantID *uuid.UUID
}

// HandleEvent dispatches event and returns the outcome label recorded for
// it. Unknown types and events for objects we never issued are ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) (string, error) {
	if event == nil || event.Data == nil {
		return metrics.OutcomeRejected, pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	eventType := string(event.Type)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"stripe_event_id": event.ID, "stripe_event_type": eventType})
	}

	if s.guard != nil {
		claimed, err := s.guard.Claim(ctx, event.ID, event.Livemode)
		if err != nil {
			// Redis down: the event is still applied, duplicates are caught by row state
			s.warn(ctx, "stripe.webhook.guard_unavailable")
		} else if !claimed {
			s.metrics.Observe(eventType, metrics.OutcomeDuplicate)
			s.info(ctx, "stripe.webhook.duplicate")
			return metrics.OutcomeDuplicate, nil
		}
	}

	res, handled, err := s.dispatch(ctx, event)
	switch {
	case err != nil:
		if s.guard != nil {
			if err := s.guard.Release(ctx, event.ID, event.Livemode); err != nil {
				s.warn(ctx, "stripe.webhook.release_failed")
			}
		}
		s.persist(ctx, event, enums.WebhookEventFailed, res, err)
		s.metrics.Observe(eventType, metrics.OutcomeFailed)
		if s.logg != nil {
			s.logg.Error(ctx, "stripe.webhook.failed", err)
		}
		return metrics.OutcomeFailed, err
	case !handled:
		// unknown types are acknowledged without touching any table
		s.metrics.Observe(eventType, metrics.OutcomeIgnored)
		s.info(ctx, "stripe.webhook.unhandled_type")
		return metrics.OutcomeIgnored, nil
	case res.tenantID == nil:
		s.persist(ctx, event, enums.WebhookEventIgnored, res, nil)
		s.metrics.Observe(eventType, metrics.OutcomeIgnored)
		s.info(ctx, "stripe.webhook.ignored")
		return metrics.OutcomeIgnored, nil
	default:
		s.persist(ctx, event, enums.WebhookEventProcessed, res, nil)
		s.metrics.Observe(eventType, metrics.OutcomeProcessed)
		s.info(ctx, "stripe.webhook.processed")
		return metrics.OutcomeProcessed, nil
	}
}

func (s *Service) dispatch(ctx context.Context, event *stripe.Event) (result, bool, error) {
	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return result{}, true, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription event")
		}
		res, err := s.inTx(ctx, func(tx *gorm.DB) (*uuid.UUID, error) {
			tenant, err := s.subscriptions.ApplyStripeSubscription(ctx, tx, &sub, event.Type)
			if err != nil || tenant == nil {
				return nil, err
			}
			return &tenant.ID, nil
		})
		return res, true, err

	case stripe.EventTypeInvoicePaid, stripe.EventTypeInvoicePaymentFailed:
		paid := event.Type == stripe.EventTypeInvoicePaid
		kind := invoices.PaymentEventFailed
		if paid {
			kind = invoices.PaymentEventPaid
		}
		payment := paymentEventFrom(event, kind)
		subscriptionID := invoiceSubscriptionID(event)
		latest, err := s.subscriptions.Fetch(ctx, subscriptionID)
		if err != nil {
			// the status flip does not need the refreshed object
			s.warn(ctx, "stripe.webhook.subscription_refresh_failed")
			latest = nil
		}
		res, err := s.inTx(ctx, func(tx *gorm.DB) (*uuid.UUID, error) {
			var touched *uuid.UUID
			invoice, err := s.invoices.ApplyPaymentEvent(ctx, tx, payment)
			if err != nil {
				return nil, err
			}
			if invoice != nil {
				touched = &invoice.TenantID
			}
			tenant, err := s.subscriptions.ApplyInvoiceOutcome(ctx, tx, subscriptions.InvoiceOutcome{
				SubscriptionID: subscriptionID,
				Paid:           paid,
				Latest:         latest,
			})
			if err != nil {
				return nil, err
			}
			if tenant != nil && touched == nil {
				touched = &tenant.ID
			}
			return touched, nil
		})
		return res, true, err

	case stripe.EventTypeChargeRefunded, stripe.EventTypeChargeDisputeCreated:
		kind := invoices.PaymentEventRefunded
		if event.Type == stripe.EventTypeChargeDisputeCreated {
			kind = invoices.PaymentEventDisputed
		}
		payment := paymentEventFrom(event, kind)
		res, err := s.inTx(ctx, func(tx *gorm.DB) (*uuid.UUID, error) {
			invoice, err := s.invoices.ApplyPaymentEvent(ctx, tx, payment)
			if err != nil || invoice == nil {
				return nil, err
			}
			return &invoice.TenantID, nil
		})
		return res, true, err

	default:
		return result{}, false, nil
	}
}

func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) (*uuid.UUID, error)) (result, error) {
	var res result
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		tenantID, err := fn(tx)
		res.tenantID = tenantID
		return err
	})
	if err != nil {
		return result{}, err
	}
	return res, nil
}

func (s *Service) persist(ctx context.Context, event *stripe.Event, status enums.WebhookEventStatus, res result, cause error) {
	if s.events == nil {
		return
	}
	row := &models.WebhookEvent{
		ID:       event.ID,
		Type:     string(event.Type),
		Status:   status,
		TenantID: res.tenantID,
		Payload:  json.RawMessage(event.Data.Raw),
	}
	if cause != nil {
		msg := cause.Error()
		row.Error = &msg
	}
	if err := s.events.Save(ctx, row); err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "stripe.webhook.persist_failed", err)
		}
	}
}

func (s *Service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *Service) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}
