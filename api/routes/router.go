package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thermolaq/atelier-backend/api/controllers"
	webhookcontrollers "github.com/thermolaq/atelier-backend/api/controllers/webhooks"
	"github.com/thermolaq/atelier-backend/api/middleware"
	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/analytics"
	"github.com/thermolaq/atelier-backend/internal/clients"
	"github.com/thermolaq/atelier-backend/internal/documents"
	"github.com/thermolaq/atelier-backend/internal/exports"
	"github.com/thermolaq/atelier-backend/internal/invoices"
	"github.com/thermolaq/atelier-backend/internal/ovens"
	"github.com/thermolaq/atelier-backend/internal/powders"
	"github.com/thermolaq/atelier-backend/internal/projects"
	"github.com/thermolaq/atelier-backend/internal/quality"
	"github.com/thermolaq/atelier-backend/internal/quotes"
	"github.com/thermolaq/atelier-backend/internal/tenants"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/metrics"
	"github.com/thermolaq/atelier-backend/pkg/redis"
)

// Public webhook throttling, per source address across replicas.
const (
	webhookIPWindow = time.Minute
	webhookIPLimit  = 300
)

// Dependencies carries everything the router hands to controllers. Optional
// collaborators (Redis, Stripe) are left nil when not configured.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis *redis.Client

	Registry prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics
	Webhooks *metrics.WebhookMetrics

	Quotes        quotes.Service
	Invoices      invoices.Service
	Clients       clients.Service
	Powders       powders.Service
	Projects      projects.Service
	Ovens         ovens.Service
	Quality       quality.Service
	Tenants       tenants.Service
	Settings      controllers.SettingsService
	Subscriptions controllers.SubscriptionReader
	Alerts        alerts.Service
	Analytics     analytics.Service
	Exports       exports.Service
	Audit         controllers.AuditReader
	Documents     controllers.DocumentRenderer
	Drafts        controllers.DraftStore

	StripeWebhooks webhookcontrollers.StripeWebhookService
	StripeSigner   interface{ SigningSecret() string }
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTP),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{"database": deps.DB, "redis": nil}
	if deps.Redis != nil {
		ready["redis"] = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, ready, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/webhooks", func(r chi.Router) {
		if deps.Redis != nil {
			r.Use(middleware.IPRateLimit(middleware.NewIPRateLimitPolicy("webhook", webhookIPWindow, webhookIPLimit), deps.Redis, logg))
		}
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhooks, deps.StripeSigner, deps.Webhooks, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, deps.Tenants, logg))
		r.Use(middleware.TenantContext(logg))
		r.Use(middleware.TenantRateLimit(middleware.NewTenantLimiter(cfg.RateLimit), logg))
		r.Use(middleware.RequireWrite(logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		managers := middleware.RequireRoles(logg, enums.MemberRoleOwner, enums.MemberRoleAdmin)

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", controllers.ListQuotes(deps.Quotes, logg))
			r.Post("/", controllers.CreateQuote(deps.Quotes, logg))
			r.Post("/price", controllers.PriceQuote(deps.Quotes, logg))
			r.Route("/drafts/{key}", func(r chi.Router) {
				r.Get("/", controllers.LoadDraft(deps.Drafts, logg))
				r.Put("/", controllers.SaveDraft(deps.Drafts, logg))
				r.Delete("/", controllers.DiscardDraft(deps.Drafts, logg))
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetQuote(deps.Quotes, logg))
				r.Put("/", controllers.UpdateQuote(deps.Quotes, logg))
				r.Delete("/", controllers.DeleteQuote(deps.Quotes, logg))
				r.Post("/recalculate", controllers.RecalculateQuote(deps.Quotes, logg))
				r.Post("/status", controllers.TransitionQuote(deps.Quotes, logg))
				r.Post("/convert", controllers.ConvertQuote(deps.Quotes, logg))
				r.Get("/html", controllers.QuoteDocument(deps.Documents, documents.FormatHTML, logg))
				r.Get("/pdf", controllers.QuoteDocument(deps.Documents, documents.FormatPDF, logg))
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.ListInvoices(deps.Invoices, logg))
			r.Post("/", controllers.CreateInvoice(deps.Invoices, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetInvoice(deps.Invoices, logg))
				r.Post("/send", controllers.SendInvoice(deps.Invoices, logg))
				r.Post("/cancel", controllers.CancelInvoice(deps.Invoices, logg))
				r.Post("/payments", controllers.RecordInvoicePayment(deps.Invoices, logg))
				r.Post("/stripe", controllers.AttachStripeInvoice(deps.Invoices, logg))
				r.Get("/html", controllers.InvoiceDocument(deps.Documents, documents.FormatHTML, logg))
				r.Get("/pdf", controllers.InvoiceDocument(deps.Documents, documents.FormatPDF, logg))
				r.Get("/delivery-note", controllers.DeliveryNoteDocument(deps.Documents, logg))
			})
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ListClients(deps.Clients, logg))
			r.Post("/", controllers.CreateClient(deps.Clients, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetClient(deps.Clients, logg))
				r.Put("/", controllers.UpdateClient(deps.Clients, logg))
				r.Delete("/", controllers.DeleteClient(deps.Clients, logg))
				r.Get("/summary", controllers.ClientSummary(deps.Clients, logg))
			})
		})

		r.Route("/powders", func(r chi.Router) {
			r.Get("/", controllers.ListPowders(deps.Powders, logg))
			r.Post("/", controllers.CreatePowder(deps.Powders, logg))
			r.Get("/low-stock", controllers.LowStockPowders(deps.Powders, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetPowder(deps.Powders, logg))
				r.Put("/", controllers.UpdatePowder(deps.Powders, logg))
				r.Delete("/", controllers.DeletePowder(deps.Powders, logg))
				r.Get("/movements", controllers.ListStockMovements(deps.Powders, logg))
				r.Post("/movements", controllers.RecordStockMovement(deps.Powders, logg))
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ListProjects(deps.Projects, logg))
			r.Post("/", controllers.CreateProject(deps.Projects, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetProject(deps.Projects, logg))
				r.Put("/", controllers.UpdateProject(deps.Projects, logg))
				r.Delete("/", controllers.DeleteProject(deps.Projects, logg))
				r.Post("/status", controllers.TransitionProject(deps.Projects, logg))
				r.Get("/photos", controllers.ListProjectPhotos(deps.Projects, logg))
				r.Post("/photos", controllers.AddProjectPhoto(deps.Projects, logg))
				r.Get("/quality", controllers.ListProjectQualityChecks(deps.Quality, logg))
			})
		})

		r.Route("/ovens", func(r chi.Router) {
			r.Get("/", controllers.ListOvens(deps.Ovens, logg))
			r.Post("/", controllers.CreateOven(deps.Ovens, logg))
			r.Get("/utilization", controllers.OvenUtilization(deps.Ovens, logg))
			r.Route("/batches", func(r chi.Router) {
				r.Get("/", controllers.ListBatches(deps.Ovens, logg))
				r.Post("/", controllers.PlanBatch(deps.Ovens, logg))
				r.Post("/{id}/start", controllers.StartBatch(deps.Ovens, logg))
				r.Post("/{id}/complete", controllers.CompleteBatch(deps.Ovens, logg))
				r.Post("/{id}/cancel", controllers.CancelBatch(deps.Ovens, logg))
			})
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.GetOven(deps.Ovens, logg))
				r.Put("/", controllers.UpdateOven(deps.Ovens, logg))
				r.Delete("/", controllers.DeleteOven(deps.Ovens, logg))
			})
		})

		r.Route("/quality", func(r chi.Router) {
			r.Get("/template", controllers.QualityTemplate(deps.Quality, logg))
			r.Post("/checks", controllers.RecordQualityCheck(deps.Quality, logg))
			r.Get("/checks/{id}", controllers.GetQualityCheck(deps.Quality, logg))
		})

		r.Get("/settings", controllers.GetSettings(deps.Settings, logg))
		r.With(managers).Put("/settings", controllers.UpdateSettings(deps.Settings, logg))
		r.Get("/tenant", controllers.GetTenant(deps.Tenants, logg))
		r.With(managers).Put("/tenant", controllers.UpdateTenant(deps.Tenants, logg))
		r.Get("/subscription", controllers.GetSubscription(deps.Subscriptions, logg))

		r.Get("/ral", controllers.SearchRAL(logg))
		r.Get("/ral/{code}", controllers.GetRAL(logg))
		r.Get("/i18n/{lang}", controllers.GetDictionary())
		r.Get("/pdf/preview", controllers.PreviewDocument(deps.Documents, logg))

		r.Route("/exports", func(r chi.Router) {
			r.Use(managers)
			r.Get("/invoices.csv", controllers.ExportInvoicesCSV(deps.Exports, logg))
			r.Get("/fec", controllers.ExportFEC(deps.Exports, logg))
			r.Get("/invoices.xlsx", controllers.ExportInvoicesXLSX(deps.Exports, logg))
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/dashboard", controllers.Dashboard(deps.Analytics, logg))
			r.Get("/revenue", controllers.Revenue(deps.Analytics, logg))
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", controllers.ListAlerts(deps.Alerts, logg))
			r.Post("/read-all", controllers.MarkAllAlertsRead(deps.Alerts, logg))
			r.Post("/{id}/read", controllers.MarkAlertRead(deps.Alerts, logg))
		})

		r.Get("/audit/{entity}/{id}", controllers.ListAuditTrail(deps.Audit, logg))
	})

	return r
}
