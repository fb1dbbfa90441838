// Package quality records end-of-line inspections and routes projects on the result.
package quality

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

type ItemResult struct {
	Key    string   `json:"key" validate:"required,max=60"`
	Label  string   `json:"label" validate:"omitempty,max=200"`
	Passed *bool    `json:"passed"`
	Value  *float64 `json:"value"`
	Unit   string   `json:"unit" validate:"omitempty,max=10"`
	Note   string   `json:"note" validate:"omitempty,max=500"`
}

// CheckInput records an inspection. Items are matched to the default
// checklist by key; extra items need a label.
type CheckInput struct {
	ProjectID        uuid.UUID    `json:"project_id" validate:"required"`
	Items            []ItemResult `json:"items" validate:"dive"`
	ThicknessMicrons []float64    `json:"thickness_microns" validate:"dive,gt=0"`
	MinThickness     *float64     `json:"min_thickness" validate:"omitempty,gt=0"`
	MaxThickness     *float64     `json:"max_thickness" validate:"omitempty,gt=0"`
	Inspector        *string      `json:"inspector" validate:"omitempty,max=120"`
}

// Template is the blank checklist offered to inspectors.
type Template struct {
	Items        types.ChecklistItems `json:"items"`
	MinThickness float64              `json:"min_thickness"`
	MaxThickness float64              `json:"max_thickness"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type projectLine interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
	ApplyStatus(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID, next enums.ProjectStatus, userID *uuid.UUID) (*models.Project, error)
}

// Repository persists quality checks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, check *models.QualityCheck) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.QualityCheck, error)
	ListByProject(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.QualityCheck, error)
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

func (r *repository) Create(ctx context.Context, check *models.QualityCheck) error {
	return r.DB(ctx).Create(check).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.QualityCheck, error) {
	var check models.QualityCheck
	if err := r.Tenant(ctx, tenantID).Where("id = ?", id).First(&check).Error; err != nil {
		return nil, err
	}
	return &check, nil
}

func (r *repository) ListByProject(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.QualityCheck, error) {
	var rows []models.QualityCheck
	err := r.Tenant(ctx, tenantID).Where("project_id = ?", projectID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// Service exposes quality control operations.
type Service interface {
	Template() Template
	Record(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CheckInput) (*models.QualityCheck, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.QualityCheck, error)
	ListForProject(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.QualityCheck, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	projects projectLine
	audit    *audit.Recorder
	now      func() time.Time
}

func NewService(r Repository, tx txRunner, projects projectLine, recorder *audit.Recorder) (Service, error) {
	switch {
	case r == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quality repository required")
	case tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case projects == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects service required")
	}
	return &service{repo: r, tx: tx, projects: projects, audit: recorder, now: time.Now}, nil
}

func (s *service) Template() Template {
	return Template{Items: DefaultChecklist(), MinThickness: DefaultMinThickness, MaxThickness: DefaultMaxThickness}
}

// Record stores an inspection of a project waiting at quality control.
// A pass releases the project as ready; a failure sends it back to coating.
func (s *service) Record(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CheckInput) (*models.QualityCheck, error) {
	items, err := mergeItems(input.Items)
	if err != nil {
		return nil, err
	}
	for _, v := range input.ThicknessMicrons {
		if v <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "thickness readings must be positive")
		}
	}
	minMicrons, maxMicrons := DefaultMinThickness, DefaultMaxThickness
	if input.MinThickness != nil {
		minMicrons = *input.MinThickness
	}
	if input.MaxThickness != nil {
		maxMicrons = *input.MaxThickness
	}
	if minMicrons > maxMicrons {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_thickness must not exceed max_thickness")
	}

	project, err := s.projects.Get(ctx, tenantID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status != enums.ProjectStatusQualityCheck {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "project is not waiting for quality control").
			WithDetails(map[string]any{"status": project.Status})
	}

	attachThickness(items, Mean(input.ThicknessMicrons), len(input.ThicknessMicrons) > 0, minMicrons, maxMicrons)
	status, mean := Evaluate(items, input.ThicknessMicrons, minMicrons, maxMicrons)
	check := &models.QualityCheck{
		TenantID:         tenantID,
		ProjectID:        project.ID,
		Items:            items,
		ThicknessMicrons: input.ThicknessMicrons,
		MinThickness:     minMicrons,
		MaxThickness:     maxMicrons,
		Status:           status,
		Inspector:        input.Inspector,
	}
	if status != enums.QualityStatusPending {
		now := s.now().UTC()
		check.CheckedAt = &now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, check); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quality check")
		}
		switch status {
		case enums.QualityStatusPassed:
			if _, err := s.projects.ApplyStatus(ctx, tx, tenantID, project.ID, enums.ProjectStatusReady, userID); err != nil {
				return err
			}
		case enums.QualityStatusFailed:
			if _, err := s.projects.ApplyStatus(ctx, tx, tenantID, project.ID, enums.ProjectStatusCoating, userID); err != nil {
				return err
			}
		}
		s.audit.Record(ctx, tx, audit.Entry{
			TenantID: tenantID,
			UserID:   userID,
			Action:   "quality_check." + string(status),
			Entity:   audit.EntityQualityCheck,
			EntityID: check.ID,
			Payload:  map[string]any{"project_id": project.ID, "mean_thickness": mean},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.QualityCheck, error) {
	check, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quality check not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quality check")
	}
	return check, nil
}

func (s *service) ListForProject(ctx context.Context, tenantID, projectID uuid.UUID) ([]models.QualityCheck, error) {
	if _, err := s.projects.Get(ctx, tenantID, projectID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByProject(ctx, tenantID, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quality checks")
	}
	return rows, nil
}

func mergeItems(results []ItemResult) (types.ChecklistItems, error) {
	items := DefaultChecklist()
	index := make(map[string]int, len(items))
	for i, item := range items {
		index[item.Key] = i
	}
	for _, r := range results {
		key := strings.TrimSpace(r.Key)
		i, ok := index[key]
		if !ok {
			label := strings.TrimSpace(r.Label)
			if key == "" || label == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom checklist items need a key and a label").
					WithDetails(map[string]any{"key": key})
			}
			items = append(items, types.ChecklistItem{Key: key, Label: label, Unit: r.Unit})
			i = len(items) - 1
			index[key] = i
		}
		items[i].Passed = r.Passed
		items[i].Value = r.Value
		items[i].Note = strings.TrimSpace(r.Note)
		if r.Unit != "" {
			items[i].Unit = r.Unit
		}
	}
	return items, nil
}

// attachThickness fills the thickness line from the readings when the
// inspector did not grade it by hand.
func attachThickness(items types.ChecklistItems, mean float64, measured bool, lo, hi float64) {
	if !measured {
		return
	}
	for i := range items {
		if items[i].Key != "thickness" {
			continue
		}
		if items[i].Value == nil {
			v := mean
			items[i].Value = &v
		}
		if items[i].Passed == nil {
			ok := mean >= lo && mean <= hi
			items[i].Passed = &ok
		}
	}
}
