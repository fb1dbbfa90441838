// Package projects follows jobs along the coating line.
package projects

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/numbering"
	"github.com/thermolaq/atelier-backend/internal/ral"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

const referencePrefix = "CH"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes project operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateProjectInput) (*models.Project, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Project], error)
	Transition(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input TransitionInput) (*models.Project, error)
	ApplyStatus(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID, next enums.ProjectStatus, userID *uuid.UUID) (*models.Project, error)
	FindMany(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Project, error)
	AddPhoto(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input PhotoInput) (*models.Photo, error)
	Photos(ctx context.Context, tenantID, id uuid.UUID) ([]models.Photo, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	audit *audit.Recorder
	now   func() time.Time
}

func NewService(r Repository, tx txRunner, recorder *audit.Recorder) (Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: r, tx: tx, audit: recorder, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.SurfaceM2 < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "surface_m2 cannot be negative")
	}
	exists, err := s.repo.ClientExists(ctx, tenantID, input.ClientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check client")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown client")
	}

	surface := input.SurfaceM2
	if input.QuoteID != nil {
		quote, err := s.repo.FindQuote(ctx, tenantID, *input.QuoteID)
		if err != nil {
			if repo.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
		}
		if quote.ClientID != input.ClientID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote belongs to another client")
		}
		if surface == 0 {
			for _, item := range quote.Items {
				surface += item.AreaM2
			}
		}
	}

	project := &models.Project{
		TenantID:  tenantID,
		ClientID:  input.ClientID,
		QuoteID:   input.QuoteID,
		Name:      name,
		Status:    enums.ProjectStatusReceived,
		SurfaceM2: surface,
		RALCode:   normalizeRAL(input.RALCode),
		DueDate:   input.DueDate,
		Notes:     input.Notes,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ref, err := numbering.Next(ctx, tx, tenantID, numbering.KindProject, referencePrefix, s.now().UTC().Year())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign project reference")
		}
		project.Reference = ref
		if err := s.repo.WithTx(tx).Create(ctx, project); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
		}
		s.record(ctx, tx, project, userID, "project.created", map[string]any{"reference": ref})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if project.Status.Terminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "project is closed").
			WithDetails(map[string]any{"status": project.Status})
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		project.Name = name
	}
	if input.SurfaceM2 != nil {
		if *input.SurfaceM2 < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "surface_m2 cannot be negative")
		}
		project.SurfaceM2 = *input.SurfaceM2
	}
	input.RALCode.Apply(&project.RALCode)
	project.RALCode = normalizeRAL(project.RALCode)
	input.DueDate.Apply(&project.DueDate)
	input.Notes.Apply(&project.Notes)

	if err := s.repo.Save(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
	}
	s.record(ctx, nil, project, userID, "project.updated", nil)
	return project, nil
}

// Delete only removes jobs that never reached the line.
func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error {
	project, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if project.Status != enums.ProjectStatusReceived && project.Status != enums.ProjectStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only received or cancelled projects can be deleted").
			WithDetails(map[string]any{"status": project.Status})
	}
	if _, err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	s.record(ctx, nil, project, userID, "project.deleted", nil)
	return nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Project], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, tenantID, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}
	items, next := pagination.Trim(rows, params.Limit, func(p models.Project) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &types.Page[models.Project]{Items: items, NextCursor: next}, nil
}

func (s *service) Transition(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input TransitionInput) (*models.Project, error) {
	next, err := enums.ParseProjectStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project status")
	}
	var project *models.Project
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		project, err = s.ApplyStatus(ctx, tx, tenantID, id, next, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ApplyStatus moves a project along the line inside tx. Ovens and quality
// checks use it to drive the pipeline; a no-op move returns the project as is.
func (s *service) ApplyStatus(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID, next enums.ProjectStatus, userID *uuid.UUID) (*models.Project, error) {
	r := s.repo
	if tx != nil {
		r = r.WithTx(tx)
	}
	project, err := r.FindForUpdate(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if project.Status == next {
		return project, nil
	}
	if !project.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed").
			WithDetails(map[string]any{"project_id": id, "from": project.Status, "to": next})
	}
	from := project.Status
	project.Status = next
	if err := r.Save(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project status")
	}
	s.record(ctx, tx, project, userID, "project.status_changed", map[string]any{"from": from, "to": next})
	return project, nil
}

// FindMany loads projects by id, inside tx when one is given.
func (s *service) FindMany(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Project, error) {
	r := s.repo
	if tx != nil {
		r = r.WithTx(tx)
	}
	rows, err := r.FindManyByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load projects")
	}
	return rows, nil
}

// AddPhoto stores metadata for an image already uploaded to the storage provider.
func (s *service) AddPhoto(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input PhotoInput) (*models.Photo, error) {
	url := strings.TrimSpace(input.URL)
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "url must be absolute")
	}
	stage := enums.PhotoStageBefore
	if input.Stage != "" {
		parsed, err := enums.ParsePhotoStage(input.Stage)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid photo stage")
		}
		stage = parsed
	}
	project, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	photo := &models.Photo{
		TenantID:  tenantID,
		ProjectID: project.ID,
		URL:       url,
		Caption:   input.Caption,
		Stage:     stage,
	}
	if err := s.repo.CreatePhoto(ctx, photo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create photo")
	}
	s.record(ctx, nil, project, userID, "project.photo_added", map[string]any{"photo_id": photo.ID, "stage": stage})
	return photo, nil
}

func (s *service) Photos(ctx context.Context, tenantID, id uuid.UUID) ([]models.Photo, error) {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPhotos(ctx, tenantID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list photos")
	}
	return rows, nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, project *models.Project, userID *uuid.UUID, action string, payload any) {
	s.audit.Record(ctx, tx, audit.Entry{
		TenantID: project.TenantID,
		UserID:   userID,
		Action:   action,
		Entity:   audit.EntityProject,
		EntityID: project.ID,
		Payload:  payload,
	})
}

func normalizeRAL(code *string) *string {
	return ral.NormalizePtr(code)
}
