package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// Repository persists projects and their photos.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) error
	Save(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
	FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
	FindManyByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Project, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Project, error)
	CreatePhoto(ctx context.Context, photo *models.Photo) error
	ListPhotos(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.Photo, error)
	FindQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error)
	ClientExists(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error)
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

func (r *repository) Create(ctx context.Context, project *models.Project) error {
	return r.DB(ctx).Create(project).Error
}

func (r *repository) Save(ctx context.Context, project *models.Project) error {
	return r.DB(ctx).Save(project).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	res := r.Tenant(ctx, tenantID).Where("id = ?", id).Delete(&models.Project{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.Tenant(ctx, tenantID).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.Tenant(ctx, tenantID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindManyByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Project
	err := r.Tenant(ctx, tenantID).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Project, error) {
	query := r.Tenant(ctx, tenantID).Model(&models.Project{})
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
	var rows []models.Project
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreatePhoto(ctx context.Context, photo *models.Photo) error {
	return r.DB(ctx).Create(photo).Error
}

func (r *repository) ListPhotos(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.Photo, error) {
	var rows []models.Photo
	err := r.Tenant(ctx, tenantID).Where("project_id = ?", projectID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindQuote(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.Tenant(ctx, tenantID).Where("id = ?", quoteID).First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) ClientExists(ctx context.Context, tenantID, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.Tenant(ctx, tenantID).Model(&models.Client{}).Where("id = ?", clientID).Count(&count).Error
	return count > 0, err
}
