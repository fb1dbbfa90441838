// Package powders manages the powder catalogue and its stock ledger.
package powders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/ral"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes powder operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreatePowderInput) (*models.Powder, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Powder, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdatePowderInput) (*models.Powder, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, search string, params pagination.Params) (*types.Page[models.Powder], error)
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]models.Powder, error)
	RecordMovement(ctx context.Context, tenantID, powderID uuid.UUID, userID *uuid.UUID, input MovementInput) (*models.StockMovement, error)
	Movements(ctx context.Context, tenantID, powderID uuid.UUID, params pagination.Params) (*types.Page[models.StockMovement], error)
	Snapshots(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]types.PowderSnapshot, error)
}

type service struct {
	repo  Repository
	tx    txRunner
	audit *audit.Recorder
}

func NewService(r Repository, tx txRunner, recorder *audit.Recorder) (Service, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "powders repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: r, tx: tx, audit: recorder}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreatePowderInput) (*models.Powder, error) {
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	}
	finish := enums.PowderFinishGloss
	if input.Finish != "" {
		parsed, err := enums.ParsePowderFinish(input.Finish)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid finish")
		}
		finish = parsed
	}
	if input.StockKg < 0 || input.MinStockKg < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	powder := &models.Powder{
		TenantID:           tenantID,
		Reference:          reference,
		Manufacturer:       input.Manufacturer,
		RALCode:            normalizeRAL(input.RALCode),
		Finish:             finish,
		PricePerKg:         input.PricePerKg,
		YieldM2PerKg:       input.YieldM2PerKg,
		ConsumptionKgPerM2: input.ConsumptionKgPerM2,
		StockKg:            input.StockKg,
		MinStockKg:         input.MinStockKg,
	}
	if err := s.repo.Create(ctx, powder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create powder")
	}
	s.audit.Record(ctx, nil, audit.Entry{TenantID: tenantID, UserID: userID, Action: "powder.created", Entity: audit.EntityPowder, EntityID: powder.ID, Payload: map[string]any{"reference": reference}})
	return powder, nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Powder, error) {
	powder, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "powder not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load powder")
	}
	return powder, nil
}

func (s *service) Update(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdatePowderInput) (*models.Powder, error) {
	powder, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if input.Reference != nil {
		reference := strings.TrimSpace(*input.Reference)
		if reference == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference cannot be blank")
		}
		powder.Reference = reference
	}
	if input.Finish != nil {
		finish, err := enums.ParsePowderFinish(*input.Finish)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid finish")
		}
		powder.Finish = finish
	}
	input.Manufacturer.Apply(&powder.Manufacturer)
	input.RALCode.Apply(&powder.RALCode)
	powder.RALCode = normalizeRAL(powder.RALCode)
	input.PricePerKg.Apply(&powder.PricePerKg)
	input.YieldM2PerKg.Apply(&powder.YieldM2PerKg)
	input.ConsumptionKgPerM2.Apply(&powder.ConsumptionKgPerM2)
	if input.MinStockKg != nil {
		if *input.MinStockKg < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min stock cannot be negative")
		}
		powder.MinStockKg = *input.MinStockKg
	}
	if err := s.repo.Update(ctx, powder); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update powder")
	}
	s.audit.Record(ctx, nil, audit.Entry{TenantID: tenantID, UserID: userID, Action: "powder.updated", Entity: audit.EntityPowder, EntityID: powder.ID})
	return powder, nil
}

func (s *service) Delete(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, tenantID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete powder")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "powder not found")
	}
	s.audit.Record(ctx, nil, audit.Entry{TenantID: tenantID, UserID: userID, Action: "powder.deleted", Entity: audit.EntityPowder, EntityID: id})
	return nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, search string, params pagination.Params) (*types.Page[models.Powder], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, tenantID, strings.ToLower(strings.TrimSpace(search)), params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list powders")
	}
	items, next := pagination.Trim(rows, params.Limit, func(p models.Powder) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &types.Page[models.Powder]{Items: items, NextCursor: next}, nil
}

func (s *service) LowStock(ctx context.Context, tenantID uuid.UUID) ([]models.Powder, error) {
	rows, err := s.repo.ListLowStock(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return rows, nil
}

// RecordMovement appends to the ledger and moves StockKg in one transaction.
// An outgoing movement larger than the stock on hand is refused.
func (s *service) RecordMovement(ctx context.Context, tenantID, powderID uuid.UUID, userID *uuid.UUID, input MovementInput) (*models.StockMovement, error) {
	kind, err := enums.ParseStockMovementKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement kind")
	}
	if kind != enums.StockMovementAdjustment && input.QuantityKg <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if kind == enums.StockMovementAdjustment && input.QuantityKg == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment cannot be zero")
	}

	var movement *models.StockMovement
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		powder, err := txRepo.FindForUpdate(ctx, tenantID, powderID)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "powder not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock powder")
		}

		next, err := applyMovement(powder.StockKg, kind, input.QuantityKg)
		if err != nil {
			return err
		}
		movement = &models.StockMovement{
			TenantID:   tenantID,
			PowderID:   powder.ID,
			Kind:       kind,
			QuantityKg: input.QuantityKg,
			StockAfter: next,
			Reason:     input.Reason,
			ProjectID:  input.ProjectID,
			CreatedBy:  userID,
		}
		if err := txRepo.CreateMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create movement")
		}
		if err := txRepo.UpdateStock(ctx, powder.ID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
		}
		s.audit.Record(ctx, tx, audit.Entry{
			TenantID: tenantID,
			UserID:   userID,
			Action:   "powder.stock_" + string(kind),
			Entity:   audit.EntityPowder,
			EntityID: powder.ID,
			Payload:  map[string]any{"quantity_kg": input.QuantityKg, "stock_after": next},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func applyMovement(current float64, kind enums.StockMovementKind, qty float64) (float64, error) {
	var next float64
	switch kind {
	case enums.StockMovementIn:
		next = current + qty
	case enums.StockMovementOut:
		if qty > current {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
				WithDetails(map[string]any{"stock_kg": current, "requested_kg": qty})
		}
		next = current - qty
	default:
		next = current + qty
		if next < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "adjustment would make stock negative").
				WithDetails(map[string]any{"stock_kg": current, "delta_kg": qty})
		}
	}
	return next, nil
}

func (s *service) Movements(ctx context.Context, tenantID, powderID uuid.UUID, params pagination.Params) (*types.Page[models.StockMovement], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListMovements(ctx, tenantID, powderID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}
	items, next := pagination.Trim(rows, params.Limit, func(m models.StockMovement) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	return &types.Page[models.StockMovement]{Items: items, NextCursor: next}, nil
}

// Snapshots loads the pricing figures of the given powders. Unknown ids are
// reported as a validation error so a quote never silently prices a missing powder.
func (s *service) Snapshots(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]types.PowderSnapshot, error) {
	unique := dedupe(ids)
	rows, err := s.repo.FindManyByIDs(ctx, tenantID, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load powders")
	}
	out := make(map[uuid.UUID]types.PowderSnapshot, len(rows))
	for _, row := range rows {
		out[row.ID] = Snapshot(row)
	}
	var missing []string
	for _, id := range unique {
		if _, ok := out[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown powder").WithDetails(map[string]any{"powder_ids": missing})
	}
	return out, nil
}

// Snapshot freezes the pricing-relevant figures of a powder.
func Snapshot(p models.Powder) types.PowderSnapshot {
	snap := types.PowderSnapshot{
		Reference:          p.Reference,
		PricePerKg:         p.PricePerKg,
		YieldM2PerKg:       p.YieldM2PerKg,
		ConsumptionKgPerM2: p.ConsumptionKgPerM2,
	}
	if p.RALCode != nil {
		snap.RALCode = *p.RALCode
	}
	return snap
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeRAL(code *string) *string {
	return ral.NormalizePtr(code)
}
