package alerts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// NewAlert is the input for Emit.
type NewAlert struct {
	TenantID  uuid.UUID
	Type      enums.AlertType
	Title     string
	Message   string
	Link      string
	DedupeKey string
}

// Service lists and acknowledges alerts, and lets other modules raise them.
type Service interface {
	Emit(ctx context.Context, tx *gorm.DB, input NewAlert) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, unreadOnly bool) (*types.Page[models.Alert], error)
	MarkRead(ctx context.Context, tenantID, alertID uuid.UUID) error
	MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerts repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Emit stores an alert, inside tx when provided. It reports false when the
// dedupe key was already used.
func (s *service) Emit(ctx context.Context, tx *gorm.DB, input NewAlert) (bool, error) {
	if input.TenantID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if !input.Type.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "invalid alert type")
	}
	alert := &models.Alert{
		TenantID: input.TenantID,
		Type:     input.Type,
		Title:    strings.TrimSpace(input.Title),
		Message:  strings.TrimSpace(input.Message),
	}
	if input.Link != "" {
		link := input.Link
		alert.Link = &link
	}
	if input.DedupeKey != "" {
		key := input.DedupeKey
		alert.DedupeKey = &key
	}
	repo := s.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	created, err := repo.Create(ctx, alert)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create alert")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, unreadOnly bool) (*types.Page[models.Alert], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, tenantID, params, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	items, next := pagination.Trim(rows, params.Limit, func(a models.Alert) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})
	return &types.Page[models.Alert]{Items: items, NextCursor: next}, nil
}

func (s *service) MarkRead(ctx context.Context, tenantID, alertID uuid.UUID) error {
	if alertID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	found, err := s.repo.MarkRead(ctx, tenantID, alertID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark alert read")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, tenantID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark alerts read")
	}
	return count, nil
}

func (s *service) CountUnread(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, tenantID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count alerts")
	}
	return count, nil
}
