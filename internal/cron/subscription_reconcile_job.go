package cron

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

const defaultReconcileLimit = 250

type subscriptionSync interface {
	Linked(ctx context.Context, limit int) ([]models.Tenant, error)
	Fetch(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	ApplyStripeSubscription(ctx context.Context, tx *gorm.DB, sub *stripe.Subscription, eventType stripe.EventType) (*models.Tenant, error)
}

// SubscriptionReconcileJobParams configures the subscription sync cron job.
type SubscriptionReconcileJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Subscriptions subscriptionSync
	Limit         int
}

// NewSubscriptionReconcileJob builds a job that replays the current Stripe
// state of every linked tenant, catching webhooks that never arrived.
func NewSubscriptionReconcileJob(params SubscriptionReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	return &subscriptionReconcileJob{
		logg:  params.Logger,
		db:    params.DB,
		subs:  params.Subscriptions,
		limit: limit,
	}, nil
}

type subscriptionReconcileJob struct {
	logg  *logger.Logger
	db    txRunner
	subs  subscriptionSync
	limit int
}

func (j *subscriptionReconcileJob) Name() string { return JobSubscriptionReconcile }

func (j *subscriptionReconcileJob) Run(ctx context.Context) error {
	tenants, err := j.subs.Linked(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("list tenants for reconciliation: %w", err)
	}
	var errs error
	synced := 0
	for i := range tenants {
		done, err := j.reconcile(ctx, &tenants[i])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if done {
			synced++
		}
	}
	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(tenants),
		"synced":     synced,
	})
	j.logg.Info(reportCtx, "subscription reconcile loop complete")
	return errs
}

func (j *subscriptionReconcileJob) reconcile(ctx context.Context, tenant *models.Tenant) (bool, error) {
	if tenant.StripeSubscriptionID == nil || strings.TrimSpace(*tenant.StripeSubscriptionID) == "" {
		return false, nil
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"tenant_id":              tenant.ID.String(),
		"stripe_subscription_id": *tenant.StripeSubscriptionID,
	})
	sub, err := j.subs.Fetch(logCtx, *tenant.StripeSubscriptionID)
	if err != nil {
		return false, fmt.Errorf("fetch subscription for tenant %s: %w", tenant.ID, err)
	}
	if sub == nil {
		j.logg.Info(logCtx, "stripe subscription unavailable; skipping")
		return false, nil
	}
	err = j.db.WithTx(logCtx, func(tx *gorm.DB) error {
		_, err := j.subs.ApplyStripeSubscription(logCtx, tx, sub, stripe.EventTypeCustomerSubscriptionUpdated)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("persist reconciliation for tenant %s: %w", tenant.ID, err)
	}
	return true, nil
}
