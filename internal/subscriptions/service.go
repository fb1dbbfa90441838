package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// View is the tenant-facing summary returned by GET /subscription.
type View struct {
	Plan             enums.PlanTier           `json:"plan"`
	Status           enums.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time               `json:"current_period_end,omitempty"`
	HasSubscription  bool                     `json:"has_subscription"`
}

// InvoiceOutcome is a SaaS invoice result reported by the processor. Latest
// is the refreshed subscription when the caller could fetch it.
type InvoiceOutcome struct {
	SubscriptionID string
	Paid           bool
	Latest         *stripe.Subscription
}

type alertEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, input alerts.NewAlert) (bool, error)
}

// Service keeps a tenant's plan and subscription status in step with the
// processor.
type Service interface {
	Current(ctx context.Context, tenantID uuid.UUID) (*View, error)
	Fetch(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	ApplyStripeSubscription(ctx context.Context, tx *gorm.DB, sub *stripe.Subscription, eventType stripe.EventType) (*models.Tenant, error)
	ApplyInvoiceOutcome(ctx context.Context, tx *gorm.DB, outcome InvoiceOutcome) (*models.Tenant, error)
	Linked(ctx context.Context, limit int) ([]models.Tenant, error)
}

type ServiceParams struct {
	Repo   Repository
	Stripe StripeSubscriptionClient
	Prices PlanPrices
	Alerts alertEmitter
	Audit  *audit.Recorder
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	repo   Repository
	stripe StripeSubscriptionClient
	prices PlanPrices
	alerts alertEmitter
	audit  *audit.Recorder
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscriptions repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repo,
		stripe: params.Stripe,
		prices: params.Prices,
		alerts: params.Alerts,
		audit:  params.Audit,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (s *service) Current(ctx context.Context, tenantID uuid.UUID) (*View, error) {
	tenant, err := s.repo.FindByID(ctx, tenantID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	status := tenant.SubscriptionStatus
	if status == "" {
		status = enums.SubscriptionStatusNone
	}
	plan := tenant.Plan
	if plan == "" {
		plan = enums.DefaultPlanTier
	}
	return &View{
		Plan:             plan,
		Status:           status,
		CurrentPeriodEnd: tenant.CurrentPeriodEnd,
		HasSubscription:  tenant.StripeSubscriptionID != nil,
	}, nil
}

// Fetch returns nil, nil in webhook-only mode.
func (s *service) Fetch(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	if s.stripe == nil || strings.TrimSpace(subscriptionID) == "" {
		return nil, nil
	}
	sub, err := s.stripe.Get(ctx, subscriptionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch stripe subscription")
	}
	return sub, nil
}

// Linked lists tenants whose subscription can be refreshed from Stripe.
func (s *service) Linked(ctx context.Context, limit int) ([]models.Tenant, error) {
	rows, err := s.repo.ListLinked(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list linked tenants")
	}
	return rows, nil
}

// ApplyStripeSubscription reconciles a customer.subscription.* event. It
// returns nil, nil when no tenant owns the subscription.
func (s *service) ApplyStripeSubscription(ctx context.Context, tx *gorm.DB, sub *stripe.Subscription, eventType stripe.EventType) (*models.Tenant, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription events require a transaction")
	}
	if sub == nil || strings.TrimSpace(sub.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}
	txRepo := s.repo.WithTx(tx)
	tenant, err := s.resolveTenant(ctx, txRepo, sub)
	if err != nil || tenant == nil {
		return nil, err
	}

	var target enums.SubscriptionStatus
	switch eventType {
	case stripe.EventTypeCustomerSubscriptionCreated:
		target = enums.SubscriptionStatusActive
	case stripe.EventTypeCustomerSubscriptionDeleted:
		target = enums.SubscriptionStatusCancelled
	case stripe.EventTypeCustomerSubscriptionUpdated:
		mapped, ok := MapStripeStatus(sub.Status)
		if !ok {
			s.warn(ctx, tenant.ID, "subscription.status_unmapped", string(sub.Status))
			return tenant, nil
		}
		target = mapped
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported subscription event").
			WithDetails(map[string]any{"type": string(eventType)})
	}

	previous := tenant.SubscriptionStatus
	if !CanTransition(previous, target) {
		// out-of-order deliveries: the processor resends the newer state later
		s.warn(ctx, tenant.ID, "subscription.stale_transition", fmt.Sprintf("%s->%s", previous, target))
		return tenant, nil
	}

	tenant.SubscriptionStatus = target
	if tenant.StripeCustomerID == nil {
		tenant.StripeCustomerID = trimmedPtr(customerID(sub))
	}
	if end := periodEnd(sub); end != nil {
		tenant.CurrentPeriodEnd = end
	}
	switch {
	case target == enums.SubscriptionStatusCancelled:
		tenant.Plan = enums.DefaultPlanTier
		if eventType == stripe.EventTypeCustomerSubscriptionDeleted {
			tenant.StripeSubscriptionID = nil
		} else {
			tenant.StripeSubscriptionID = trimmedPtr(sub.ID)
		}
	default:
		tenant.StripeSubscriptionID = trimmedPtr(sub.ID)
		if plan, ok := planFromSubscription(sub, s.prices); ok {
			tenant.Plan = plan
		}
	}
	if err := s.save(ctx, tx, txRepo, tenant, previous, string(eventType)); err != nil {
		return nil, err
	}
	return tenant, nil
}

// ApplyInvoiceOutcome flips a SaaS subscription between active and past_due.
// It returns nil, nil when the invoice does not belong to a tenant
// subscription.
func (s *service) ApplyInvoiceOutcome(ctx context.Context, tx *gorm.DB, outcome InvoiceOutcome) (*models.Tenant, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription events require a transaction")
	}
	subscriptionID := strings.TrimSpace(outcome.SubscriptionID)
	if subscriptionID == "" {
		return nil, nil
	}
	txRepo := s.repo.WithTx(tx)
	tenant, err := txRepo.FindByStripeSubscriptionID(ctx, subscriptionID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant by subscription")
	}

	previous := tenant.SubscriptionStatus
	target := enums.SubscriptionStatusPastDue
	if outcome.Paid {
		target = enums.SubscriptionStatusActive
	}
	// a cancelled subscription is only revived by a subscription event
	if previous == enums.SubscriptionStatusCancelled || !CanTransition(previous, target) {
		return tenant, nil
	}
	tenant.SubscriptionStatus = target
	if outcome.Latest != nil {
		if end := periodEnd(outcome.Latest); end != nil {
			tenant.CurrentPeriodEnd = end
		}
		if plan, ok := planFromSubscription(outcome.Latest, s.prices); ok {
			tenant.Plan = plan
		}
	}
	action := "invoice.payment_failed"
	if outcome.Paid {
		action = "invoice.paid"
	}
	if err := s.save(ctx, tx, txRepo, tenant, previous, action); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *service) resolveTenant(ctx context.Context, r Repository, sub *stripe.Subscription) (*models.Tenant, error) {
	lookups := make([]func() (*models.Tenant, error), 0, 3)
	if raw := strings.TrimSpace(sub.Metadata["tenant_id"]); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			lookups = append(lookups, func() (*models.Tenant, error) { return r.FindForUpdate(ctx, id) })
		}
	}
	lookups = append(lookups, func() (*models.Tenant, error) { return r.FindByStripeSubscriptionID(ctx, sub.ID) })
	if cust := customerID(sub); cust != "" {
		lookups = append(lookups, func() (*models.Tenant, error) { return r.FindByStripeCustomerID(ctx, cust) })
	}
	for _, lookup := range lookups {
		tenant, err := lookup()
		if err == nil {
			return tenant, nil
		}
		if !repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve subscription tenant")
		}
	}
	return nil, nil
}

func (s *service) save(ctx context.Context, tx *gorm.DB, r Repository, tenant *models.Tenant, previous enums.SubscriptionStatus, cause string) error {
	tenant.UpdatedAt = s.now().UTC()
	if err := r.Save(ctx, tenant); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription state")
	}
	s.audit.Record(ctx, tx, audit.Entry{
		TenantID: tenant.ID,
		Action:   "subscription." + string(tenant.SubscriptionStatus),
		Entity:   audit.EntitySubscription,
		EntityID: tenant.ID,
		Payload: map[string]any{
			"from":  previous,
			"to":    tenant.SubscriptionStatus,
			"plan":  tenant.Plan,
			"cause": cause,
		},
	})
	if previous == tenant.SubscriptionStatus || s.alerts == nil {
		return nil
	}
	title, message := alertCopy(previous, tenant)
	if title == "" {
		return nil
	}
	_, err := s.alerts.Emit(ctx, tx, alerts.NewAlert{
		TenantID:  tenant.ID,
		Type:      enums.AlertTypeSubscription,
		Title:     title,
		Message:   message,
		Link:      "/settings/subscription",
		DedupeKey: fmt.Sprintf("subscription:%s:%s:%s:%d", tenant.ID, previous, tenant.SubscriptionStatus, tenant.UpdatedAt.Unix()),
	})
	return err
}

func alertCopy(previous enums.SubscriptionStatus, tenant *models.Tenant) (string, string) {
	switch tenant.SubscriptionStatus {
	case enums.SubscriptionStatusPastDue:
		return "Paiement de l'abonnement en retard", "Le dernier prélèvement de votre abonnement a échoué. Mettez à jour votre moyen de paiement."
	case enums.SubscriptionStatusCancelled:
		return "Abonnement résilié", fmt.Sprintf("Votre atelier repasse sur l'offre %s.", tenant.Plan)
	case enums.SubscriptionStatusActive:
		if previous == enums.SubscriptionStatusPastDue {
			return "Abonnement rétabli", "Le paiement a été reçu, votre abonnement est de nouveau actif."
		}
		return "Abonnement activé", fmt.Sprintf("Offre %s active.", tenant.Plan)
	}
	return "", ""
}

func (s *service) warn(ctx context.Context, tenantID uuid.UUID, msg, detail string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"tenant_id": tenantID.String(), "detail": detail})
	s.logg.Warn(ctx, msg)
}
