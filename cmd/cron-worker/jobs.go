package main

import (
	"context"
	"fmt"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/cron"
	"github.com/thermolaq/atelier-backend/internal/invoices"
	"github.com/thermolaq/atelier-backend/internal/powders"
	"github.com/thermolaq/atelier-backend/internal/quotes"
	"github.com/thermolaq/atelier-backend/internal/settings"
	"github.com/thermolaq/atelier-backend/internal/subscriptions"
	stripewebhook "github.com/thermolaq/atelier-backend/internal/webhooks/stripe"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/stripe"
)

// buildJobs assembles the periodic jobs. Subscription reconciliation is only
// registered when a Stripe API key is configured.
func buildJobs(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, stripeClient *stripe.Client) ([]cron.Job, error) {
	conn := dbClient.DB()
	recorder := audit.NewRecorder(audit.NewRepository(conn), logg)

	alertsRepo := alerts.NewRepository(conn)
	alertSvc, err := alerts.NewService(alertsRepo)
	if err != nil {
		return nil, fmt.Errorf("alerts: %w", err)
	}
	settingsSvc, err := settings.NewService(settings.NewRepository(conn), cfg.Pricing, recorder)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	invoiceSvc, err := invoices.NewService(invoices.ServiceParams{
		Repo:     invoices.NewRepository(conn),
		Tx:       dbClient,
		Settings: settingsSvc,
		Alerts:   alertSvc,
		Audit:    recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("invoices: %w", err)
	}
	powdersRepo := powders.NewRepository(conn)
	powderSvc, err := powders.NewService(powdersRepo, dbClient, recorder)
	if err != nil {
		return nil, fmt.Errorf("powders: %w", err)
	}
	quoteSvc, err := quotes.NewService(quotes.ServiceParams{
		Repo:      quotes.NewRepository(conn),
		Tx:        dbClient,
		Settings:  settingsSvc,
		Powders:   powderSvc,
		Converter: invoiceSvc,
		Audit:     recorder,
	})
	if err != nil {
		return nil, fmt.Errorf("quotes: %w", err)
	}

	var jobs []cron.Job
	add := func(job cron.Job, err error) error {
		if err != nil {
			return err
		}
		jobs = append(jobs, job)
		return nil
	}

	if err := add(cron.NewInvoiceOverdueJob(cron.InvoiceOverdueJobParams{Logger: logg, Invoices: invoiceSvc})); err != nil {
		return nil, fmt.Errorf("invoice overdue job: %w", err)
	}
	if err := add(cron.NewQuoteExpiryJob(cron.QuoteExpiryJobParams{Logger: logg, Quotes: quoteSvc})); err != nil {
		return nil, fmt.Errorf("quote expiry job: %w", err)
	}
	if err := add(cron.NewLowStockJob(cron.LowStockJobParams{Logger: logg, Powders: powdersRepo, Alerts: alertSvc})); err != nil {
		return nil, fmt.Errorf("low stock job: %w", err)
	}
	if err := add(cron.NewAlertRetentionJob(logg, dbClient, alertsRepo.DeleteReadBefore, cfg.Cron.AlertRetentionDays)); err != nil {
		return nil, fmt.Errorf("alert retention job: %w", err)
	}
	webhookEvents := stripewebhook.NewEventRepository(conn)
	if err := add(cron.NewWebhookEventRetentionJob(logg, dbClient, webhookEvents.DeleteBefore, cfg.Cron.WebhookEventRetentionDays)); err != nil {
		return nil, fmt.Errorf("webhook retention job: %w", err)
	}

	if stripeClient.API() == nil {
		logg.Warn(logg.WithField(context.Background(), "job", "subscription_reconcile"), "stripe api key not set: job skipped")
		return jobs, nil
	}
	subscriptionSvc, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:   subscriptions.NewRepository(conn),
		Stripe: subscriptions.NewStripeClient(stripeClient),
		Prices: subscriptions.PlanPrices{Pro: cfg.Stripe.ProPriceID, Enterprise: cfg.Stripe.EnterpriseID},
		Alerts: alertSvc,
		Audit:  recorder,
		Logger: logg,
	})
	if err != nil {
		return nil, fmt.Errorf("subscriptions: %w", err)
	}
	if err := add(cron.NewSubscriptionReconcileJob(cron.SubscriptionReconcileJobParams{
		Logger:        logg,
		DB:            dbClient,
		Subscriptions: subscriptionSvc,
		Limit:         cfg.Cron.ReconcileLimit,
	})); err != nil {
		return nil, fmt.Errorf("subscription reconcile job: %w", err)
	}
	return jobs, nil
}
