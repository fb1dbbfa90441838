// Package audit keeps the append-only trail of workshop mutations.
package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// Entity names used in audit rows.
const (
	EntityQuote        = "quote"
	EntityInvoice      = "invoice"
	EntityClient       = "client"
	EntityPowder       = "powder"
	EntityProject      = "project"
	EntityCuringBatch  = "curing_batch"
	EntityQualityCheck = "quality_check"
	EntitySettings     = "settings"
	EntityTenant       = "tenant"
	EntityOven         = "oven"
	EntitySubscription = "subscription"
)

const maxListed = 200

// Entry describes one mutation. Payload is marshalled to JSON as-is.
type Entry struct {
	TenantID uuid.UUID
	UserID   *uuid.UUID
	Action   string
	Entity   string
	EntityID uuid.UUID
	Payload  any
}

// Repository persists audit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, row *models.AuditLog) error
	ListByEntity(ctx context.Context, tenantID uuid.UUID, entity string, entityID uuid.UUID, limit int) ([]models.AuditLog, error)
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

func (r *repository) Create(ctx context.Context, row *models.AuditLog) error {
	return r.DB(ctx).Create(row).Error
}

func (r *repository) ListByEntity(ctx context.Context, tenantID uuid.UUID, entity string, entityID uuid.UUID, limit int) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := r.Tenant(ctx, tenantID).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Recorder writes audit entries. Failures are logged and never abort the
// business operation that produced them.
type Recorder struct {
	repo Repository
	logg *logger.Logger
}

func NewRecorder(r Repository, logg *logger.Logger) *Recorder {
	return &Recorder{repo: r, logg: logg}
}

// Record stores e, inside tx when one is given.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, e Entry) {
	if r == nil || r.repo == nil {
		return
	}
	row := &models.AuditLog{
		TenantID: e.TenantID,
		UserID:   e.UserID,
		Action:   e.Action,
		Entity:   e.Entity,
		EntityID: e.EntityID,
	}
	if e.Payload != nil {
		raw, err := json.Marshal(e.Payload)
		if err == nil {
			row.Payload = raw
		}
	}
	target := r.repo
	if tx != nil {
		target = target.WithTx(tx)
	}
	if err := target.Create(ctx, row); err != nil && r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{"entity": e.Entity, "entity_id": e.EntityID.String(), "action": e.Action})
		r.logg.Error(ctx, "audit.write_failed", err)
	}
}

// List returns the most recent entries for one entity.
func (r *Recorder) List(ctx context.Context, tenantID uuid.UUID, entity string, entityID uuid.UUID) ([]models.AuditLog, error) {
	if entity == "" || entityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity and id are required")
	}
	rows, err := r.repo.ListByEntity(ctx, tenantID, entity, entityID, maxListed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit log")
	}
	return rows, nil
}
