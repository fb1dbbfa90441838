package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thermolaq/atelier-backend/api/routes"
	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/analytics"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/clients"
	"github.com/thermolaq/atelier-backend/internal/documents"
	"github.com/thermolaq/atelier-backend/internal/drafts"
	"github.com/thermolaq/atelier-backend/internal/exports"
	"github.com/thermolaq/atelier-backend/internal/invoices"
	"github.com/thermolaq/atelier-backend/internal/ovens"
	"github.com/thermolaq/atelier-backend/internal/pdf"
	"github.com/thermolaq/atelier-backend/internal/powders"
	"github.com/thermolaq/atelier-backend/internal/projects"
	"github.com/thermolaq/atelier-backend/internal/quality"
	"github.com/thermolaq/atelier-backend/internal/quotes"
	"github.com/thermolaq/atelier-backend/internal/settings"
	"github.com/thermolaq/atelier-backend/internal/subscriptions"
	"github.com/thermolaq/atelier-backend/internal/tenants"
	stripewebhook "github.com/thermolaq/atelier-backend/internal/webhooks/stripe"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/metrics"
	"github.com/thermolaq/atelier-backend/pkg/redis"
	"github.com/thermolaq/atelier-backend/pkg/stripe"
)

const webhookGuardScope = "stripe-webhook"

// wire builds every service the router needs. redisClient and stripeClient
// may be nil; the features that depend on them then report NOT_CONFIGURED.
func wire(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, stripeClient *stripe.Client, reg prometheus.Registerer) (routes.Dependencies, error) {
	conn := dbClient.DB()
	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		HTTP:     metrics.NewHTTPMetrics(reg),
		Webhooks: metrics.NewWebhookMetrics(reg),
	}

	recorder := audit.NewRecorder(audit.NewRepository(conn), logg)
	deps.Audit = recorder

	tenantsRepo := tenants.NewRepository(conn)
	tenantSvc, err := tenants.NewService(tenantsRepo, recorder)
	if err != nil {
		return deps, fmt.Errorf("tenants: %w", err)
	}
	deps.Tenants = tenantSvc

	settingsSvc, err := settings.NewService(settings.NewRepository(conn), cfg.Pricing, recorder)
	if err != nil {
		return deps, fmt.Errorf("settings: %w", err)
	}
	deps.Settings = settingsSvc

	alertSvc, err := alerts.NewService(alerts.NewRepository(conn))
	if err != nil {
		return deps, fmt.Errorf("alerts: %w", err)
	}
	deps.Alerts = alertSvc

	if deps.Clients, err = clients.NewService(clients.NewRepository(conn), recorder); err != nil {
		return deps, fmt.Errorf("clients: %w", err)
	}

	powderSvc, err := powders.NewService(powders.NewRepository(conn), dbClient, recorder)
	if err != nil {
		return deps, fmt.Errorf("powders: %w", err)
	}
	deps.Powders = powderSvc

	projectSvc, err := projects.NewService(projects.NewRepository(conn), dbClient, recorder)
	if err != nil {
		return deps, fmt.Errorf("projects: %w", err)
	}
	deps.Projects = projectSvc

	if deps.Ovens, err = ovens.NewService(ovens.NewRepository(conn), dbClient, projectSvc, recorder); err != nil {
		return deps, fmt.Errorf("ovens: %w", err)
	}
	if deps.Quality, err = quality.NewService(quality.NewRepository(conn), dbClient, projectSvc, recorder); err != nil {
		return deps, fmt.Errorf("quality: %w", err)
	}

	invoiceSvc, err := invoices.NewService(invoices.ServiceParams{
		Repo:     invoices.NewRepository(conn),
		Tx:       dbClient,
		Settings: settingsSvc,
		Alerts:   alertSvc,
		Audit:    recorder,
	})
	if err != nil {
		return deps, fmt.Errorf("invoices: %w", err)
	}
	deps.Invoices = invoiceSvc

	if deps.Quotes, err = quotes.NewService(quotes.ServiceParams{
		Repo:      quotes.NewRepository(conn),
		Tx:        dbClient,
		Settings:  settingsSvc,
		Powders:   powderSvc,
		Converter: invoiceSvc,
		Audit:     recorder,
	}); err != nil {
		return deps, fmt.Errorf("quotes: %w", err)
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
		return deps, fmt.Errorf("subscriptions: %w", err)
	}
	deps.Subscriptions = subscriptionSvc

	var cache redis.Cache
	if redisClient != nil {
		cache = redisClient
	}
	if deps.Analytics, err = analytics.NewService(analytics.NewRepository(conn), cache, logg); err != nil {
		return deps, fmt.Errorf("analytics: %w", err)
	}
	if deps.Exports, err = exports.NewService(exports.NewRepository(conn), tenantsRepo, logg); err != nil {
		return deps, fmt.Errorf("exports: %w", err)
	}

	renderer, err := pdf.NewRenderer()
	if err != nil {
		return deps, fmt.Errorf("pdf renderer: %w", err)
	}
	docs, err := documents.NewService(documents.ServiceParams{
		Quotes:   deps.Quotes,
		Invoices: invoiceSvc,
		Clients:  deps.Clients,
		Tenants:  tenantsRepo,
		Settings: settingsSvc,
		Renderer: renderer,
	})
	if err != nil {
		return deps, fmt.Errorf("documents: %w", err)
	}
	deps.Documents = docs

	webhookParams := stripewebhook.ServiceParams{
		Invoices:          invoiceSvc,
		Subscriptions:     subscriptionSvc,
		Events:            stripewebhook.NewEventRepository(conn),
		Metrics:           deps.Webhooks,
		Logger:            logg,
		TransactionRunner: dbClient,
	}
	if redisClient != nil {
		draftSvc, err := drafts.NewService(redisClient, cfg.Drafts.TTL, logg)
		if err != nil {
			return deps, fmt.Errorf("drafts: %w", err)
		}
		deps.Drafts = draftSvc

		claims, err := stripewebhook.NewEventClaims(redisClient, cfg.Stripe.EventTTL, webhookGuardScope)
		if err != nil {
			return deps, fmt.Errorf("webhook claims: %w", err)
		}
		webhookParams.Guard = claims
	}
	webhookSvc, err := stripewebhook.NewService(webhookParams)
	if err != nil {
		return deps, fmt.Errorf("stripe webhooks: %w", err)
	}
	deps.StripeWebhooks = webhookSvc
	if stripeClient != nil {
		deps.StripeSigner = stripeClient
	}

	return deps, nil
}
