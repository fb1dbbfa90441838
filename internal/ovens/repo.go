package ovens

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// Repository persists ovens and their curing batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOven(ctx context.Context, oven *models.Oven) error
	SaveOven(ctx context.Context, oven *models.Oven) error
	DeleteOven(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	FindOven(ctx context.Context, tenantID, id uuid.UUID) (*models.Oven, error)
	FindOvenForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Oven, error)
	ListOvens(ctx context.Context, tenantID uuid.UUID) ([]models.Oven, error)
	CountBatches(ctx context.Context, tenantID, ovenID uuid.UUID) (int64, error)
	CreateBatch(ctx context.Context, batch *models.CuringBatch) error
	SaveBatch(ctx context.Context, batch *models.CuringBatch) error
	FindBatchForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.CuringBatch, error)
	FindOverlapping(ctx context.Context, tenantID, ovenID uuid.UUID, from, to time.Time) ([]models.CuringBatch, error)
	ListBatches(ctx context.Context, tenantID uuid.UUID, filter BatchFilter) ([]models.CuringBatch, error)
	ListBatchesBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.CuringBatch, error)
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

func (r *repository) CreateOven(ctx context.Context, oven *models.Oven) error {
	return r.DB(ctx).Create(oven).Error
}

func (r *repository) SaveOven(ctx context.Context, oven *models.Oven) error {
	return r.DB(ctx).Save(oven).Error
}

func (r *repository) DeleteOven(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := r.Tenant(ctx, tenantID).Where("id = ?", id).Delete(&models.Oven{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindOven(ctx context.Context, tenantID, id uuid.UUID) (*models.Oven, error) {
	var oven models.Oven
	if err := r.Tenant(ctx, tenantID).Where("id = ?", id).First(&oven).Error; err != nil {
		return nil, err
	}
	return &oven, nil
}

// FindOvenForUpdate serialises planning on one oven so two overlapping batches
// cannot both pass the overlap check.
func (r *repository) FindOvenForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Oven, error) {
	var oven models.Oven
	err := r.Tenant(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&oven).Error
	if err != nil {
		return nil, err
	}
	return &oven, nil
}

func (r *repository) ListOvens(ctx context.Context, tenantID uuid.UUID) ([]models.Oven, error) {
	var rows []models.Oven
	err := r.Tenant(ctx, tenantID).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) CountBatches(ctx context.Context, tenantID, ovenID uuid.UUID) (int64, error) {
	var count int64
	err := r.Tenant(ctx, tenantID).Model(&models.CuringBatch{}).Where("oven_id = ?", ovenID).Count(&count).Error
	return count, err
}

func (r *repository) CreateBatch(ctx context.Context, batch *models.CuringBatch) error {
	return r.DB(ctx).Create(batch).Error
}

func (r *repository) SaveBatch(ctx context.Context, batch *models.CuringBatch) error {
	return r.DB(ctx).Save(batch).Error
}

func (r *repository) FindBatchForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.CuringBatch, error) {
	var batch models.CuringBatch
	err := r.Tenant(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *repository) FindOverlapping(ctx context.Context, tenantID, ovenID uuid.UUID, from, to time.Time) ([]models.CuringBatch, error) {
	var rows []models.CuringBatch
	err := r.Tenant(ctx, tenantID).
		Where("oven_id = ? AND status IN ? AND starts_at < ? AND ends_at > ?",
			ovenID, []enums.BatchStatus{enums.BatchStatusPlanned, enums.BatchStatusRunning}, to, from).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListBatches(ctx context.Context, tenantID uuid.UUID, filter BatchFilter) ([]models.CuringBatch, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.CuringBatch{})
	if filter.OvenID != nil {
		query = query.Where("oven_id = ?", *filter.OvenID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Day != nil {
		start := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(), 0, 0, 0, 0, time.UTC)
		query = query.Where("starts_at < ? AND ends_at > ?", start.Add(24*time.Hour), start)
	}
	var rows []models.CuringBatch
	err := query.Order("starts_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListBatchesBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.CuringBatch, error) {
	var rows []models.CuringBatch
	err := r.Tenant(ctx, tenantID).
		Where("status <> ? AND starts_at < ? AND ends_at > ?", enums.BatchStatusCancelled, to, from).
		Find(&rows).Error
	return rows, err
}
