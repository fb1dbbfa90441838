package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// Repository exposes persistence helpers for alerts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, alert *models.Alert) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, unreadOnly bool) ([]models.Alert, error)
	MarkRead(ctx context.Context, tenantID, alertID uuid.UUID, now time.Time) (found bool, err error)
	MarkAllRead(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
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

// Create inserts alert unless another alert already holds its dedupe key.
func (r *repository) Create(ctx context.Context, alert *models.Alert) (bool, error) {
	res := r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(alert)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, unreadOnly bool) ([]models.Alert, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.Alert{})
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	query, err := pagination.Apply(query, "", params)
	if err != nil {
		return nil, err
	}
	var rows []models.Alert
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) MarkRead(ctx context.Context, tenantID, alertID uuid.UUID, now time.Time) (bool, error) {
	res := r.Tenant(ctx, tenantID).
		Model(&models.Alert{}).
		Where("id = ? AND read_at IS NULL", alertID).
		UpdateColumn("read_at", now)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	var count int64
	if err := r.Tenant(ctx, tenantID).Model(&models.Alert{}).Where("id = ?", alertID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) MarkAllRead(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	res := r.Tenant(ctx, tenantID).
		Model(&models.Alert{}).
		Where("read_at IS NULL").
		UpdateColumn("read_at", now)
	return res.RowsAffected, res.Error
}

func (r *repository) CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.Tenant(ctx, tenantID).Model(&models.Alert{}).Where("read_at IS NULL").Count(&count).Error
	return count, err
}

// DeleteReadBefore purges alerts acknowledged before cutoff, across tenants.
func (r *repository) DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	conn := r.DB(ctx)
	if tx != nil {
		conn = tx.WithContext(ctx)
	}
	res := conn.Where("read_at IS NOT NULL AND read_at < ?", cutoff).Delete(&models.Alert{})
	return res.RowsAffected, res.Error
}
