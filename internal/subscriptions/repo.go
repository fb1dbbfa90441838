package subscriptions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
)

// Repository reads and writes the subscription columns of a tenant row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	FindForUpdate(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Tenant, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*models.Tenant, error)
	Save(ctx context.Context, tenant *models.Tenant) error
	ListLinked(ctx context.Context, limit int) ([]models.Tenant, error)
}

type repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Base.WithTx(tx)}
}

func (r *repository) FindByID(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.DB(ctx).Where("id = ?", tenantID).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", tenantID).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) FindByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stripe_subscription_id = ?", subscriptionID).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stripe_customer_id = ?", customerID).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Save writes only the billing columns so a concurrent profile edit is not
// overwritten.
func (r *repository) Save(ctx context.Context, tenant *models.Tenant) error {
	return r.DB(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", tenant.ID).
		Select("plan", "subscription_status", "stripe_customer_id", "stripe_subscription_id", "current_period_end", "updated_at").
		Updates(map[string]any{
			"plan":                   tenant.Plan,
			"subscription_status":    tenant.SubscriptionStatus,
			"stripe_customer_id":     tenant.StripeCustomerID,
			"stripe_subscription_id": tenant.StripeSubscriptionID,
			"current_period_end":     tenant.CurrentPeriodEnd,
			"updated_at":             tenant.UpdatedAt,
		}).Error
}

// ListLinked returns tenants carrying a Stripe subscription, least recently
// touched first.
func (r *repository) ListLinked(ctx context.Context, limit int) ([]models.Tenant, error) {
	var rows []models.Tenant
	query := r.DB(ctx).
		Where("stripe_subscription_id IS NOT NULL AND stripe_subscription_id <> ''").
		Order("updated_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&rows).Error
	return rows, err
}
