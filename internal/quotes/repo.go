package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// Repository handles quote persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) error
	Save(ctx context.Context, quote *models.Quote) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error)
	FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Quote, error)
	ClientExists(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error)
	ExpireSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
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

func (r *repository) Create(ctx context.Context, quote *models.Quote) error {
	return r.DB(ctx).Create(quote).Error
}

func (r *repository) Save(ctx context.Context, quote *models.Quote) error {
	return r.DB(ctx).Save(quote).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.Tenant(ctx, tenantID).Where("id = ?", id).Delete(&models.Quote{}).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.Tenant(ctx, tenantID).Where("id = ?", id).First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.Tenant(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Quote, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.Quote{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	query, err := pagination.Apply(query, "", params)
	if err != nil {
		return nil, err
	}
	var rows []models.Quote
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ClientExists(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.Tenant(ctx, tenantID).Model(&models.Client{}).Where("id = ?", clientID).Count(&count).Error
	return count > 0, err
}

// ExpireSentBefore flips sent quotes whose validity ended before cutoff.
func (r *repository) ExpireSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).Model(&models.Quote{}).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", enums.QuoteStatusSent, cutoff).
		Update("status", enums.QuoteStatusExpired)
	return res.RowsAffected, res.Error
}
