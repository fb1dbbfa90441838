package powders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// Repository handles powder and stock ledger persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, powder *models.Powder) error
	Update(ctx context.Context, powder *models.Powder) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Powder, error)
	FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Powder, error)
	FindManyByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Powder, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, params pagination.Params) ([]models.Powder, error)
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]models.Powder, error)
	ListLowStockAll(ctx context.Context) ([]models.Powder, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stockKg float64) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, tenantID, powderID uuid.UUID, params pagination.Params) ([]models.StockMovement, error)
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

func (r *repository) Create(ctx context.Context, powder *models.Powder) error {
	return r.DB(ctx).Create(powder).Error
}

func (r *repository) Update(ctx context.Context, powder *models.Powder) error {
	return r.DB(ctx).Save(powder).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := r.Tenant(ctx, tenantID).Where("id = ?", id).Delete(&models.Powder{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Powder, error) {
	var powder models.Powder
	if err := r.Tenant(ctx, tenantID).Where("id = ?", id).First(&powder).Error; err != nil {
		return nil, err
	}
	return &powder, nil
}

// FindForUpdate locks the powder row until the surrounding transaction ends.
func (r *repository) FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Powder, error) {
	var powder models.Powder
	err := r.Tenant(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&powder).Error
	if err != nil {
		return nil, err
	}
	return &powder, nil
}

func (r *repository) FindManyByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Powder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Powder
	err := r.Tenant(ctx, tenantID).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, search string, params pagination.Params) ([]models.Powder, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.Powder{})
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(reference) LIKE ? OR LOWER(COALESCE(ral_code, '')) LIKE ? OR LOWER(COALESCE(manufacturer, '')) LIKE ?", like, like, like)
	}
	query, err := pagination.Apply(query, "", params)
	if err != nil {
		return nil, err
	}
	var rows []models.Powder
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

const lowStockCondition = "min_stock_kg > 0 AND stock_kg <= min_stock_kg"

func (r *repository) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]models.Powder, error) {
	var rows []models.Powder
	err := r.Tenant(ctx, tenantID).Where(lowStockCondition).Order("reference ASC").Find(&rows).Error
	return rows, err
}

// ListLowStockAll scans every tenant; only the cron worker calls it.
func (r *repository) ListLowStockAll(ctx context.Context) ([]models.Powder, error) {
	var rows []models.Powder
	err := r.DB(ctx).Where(lowStockCondition).Order("tenant_id, reference").Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateStock(ctx context.Context, id uuid.UUID, stockKg float64) error {
	return r.DB(ctx).Model(&models.Powder{}).Where("id = ?", id).Update("stock_kg", stockKg).Error
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.DB(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, tenantID, powderID uuid.UUID, params pagination.Params) ([]models.StockMovement, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.StockMovement{}).Where("powder_id = ?", powderID)
	query, err := pagination.Apply(query, "", params)
	if err != nil {
		return nil, err
	}
	var rows []models.StockMovement
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
