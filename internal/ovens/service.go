// Package ovens plans curing batches on the workshop's ovens.
package ovens

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	dbtypes "github.com/thermolaq/atelier-backend/pkg/db/types"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
)

const defaultMaxTempC = 220

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// projectLine is the part of the projects service batches drive.
type projectLine interface {
	FindMany(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, ids []uuid.UUID) ([]models.Project, error)
	ApplyStatus(ctx context.Context, tx *gorm.DB, tenantID, id uuid.UUID, next enums.ProjectStatus, userID *uuid.UUID) (*models.Project, error)
}

// Service exposes oven and batch operations.
type Service interface {
	CreateOven(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input OvenInput) (*models.Oven, error)
	GetOven(ctx context.Context, tenantID, id uuid.UUID) (*models.Oven, error)
	UpdateOven(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdateOvenInput) (*models.Oven, error)
	DeleteOven(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error
	ListOvens(ctx context.Context, tenantID uuid.UUID) ([]models.Oven, error)
	PlanBatch(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input BatchInput) (*models.CuringBatch, error)
	ListBatches(ctx context.Context, tenantID uuid.UUID, filter BatchFilter) ([]models.CuringBatch, error)
	StartBatch(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.CuringBatch, error)
	CompleteBatch(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.CuringBatch, error)
	CancelBatch(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.CuringBatch, error)
	Utilization(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Utilization, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	projects projectLine
	audit    *audit.Recorder
}

func NewService(r Repository, tx txRunner, projects projectLine, recorder *audit.Recorder) (Service, error) {
	switch {
	case r == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ovens repository required")
	case tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case projects == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects service required")
	}
	return &service{repo: r, tx: tx, projects: projects, audit: recorder}, nil
}

func (s *service) CreateOven(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input OvenInput) (*models.Oven, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.CapacityM2 <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity_m2 must be positive")
	}
	maxTemp := input.MaxTempC
	if maxTemp == 0 {
		maxTemp = defaultMaxTempC
	}
	oven := &models.Oven{TenantID: tenantID, Name: name, CapacityM2: input.CapacityM2, MaxTempC: maxTemp, Active: true}
	if err := s.repo.CreateOven(ctx, oven); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create oven")
	}
	s.audit.Record(ctx, nil, audit.Entry{TenantID: tenantID, UserID: userID, Action: "oven.created", Entity: audit.EntityOven, EntityID: oven.ID})
	return oven, nil
}

func (s *service) GetOven(ctx context.Context, tenantID, id uuid.UUID) (*models.Oven, error) {
	oven, err := s.repo.FindOven(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "oven not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load oven")
	}
	return oven, nil
}

func (s *service) UpdateOven(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input UpdateOvenInput) (*models.Oven, error) {
	oven, err := s.GetOven(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		oven.Name = name
	}
	if input.CapacityM2 != nil {
		if *input.CapacityM2 <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity_m2 must be positive")
		}
		oven.CapacityM2 = *input.CapacityM2
	}
	if input.MaxTempC != nil {
		oven.MaxTempC = *input.MaxTempC
	}
	if input.Active != nil {
		oven.Active = *input.Active
	}
	if err := s.repo.SaveOven(ctx, oven); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update oven")
	}
	s.audit.Record(ctx, nil, audit.Entry{TenantID: tenantID, UserID: userID, Action: "oven.updated", Entity: audit.EntityOven, EntityID: oven.ID})
	return oven, nil
}

// DeleteOven refuses ovens with batch history; deactivate those instead.
func (s *service) DeleteOven(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) error {
	if _, err := s.GetOven(ctx, tenantID, id); err != nil {
		return err
	}
	count, err := s.repo.CountBatches(ctx, tenantID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count batches")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "oven has batches; deactivate it instead").
			WithDetails(map[string]any{"batches": count})
	}
	if _, err := s.repo.DeleteOven(ctx, tenantID, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete oven")
	}
	s.audit.Record(ctx, nil, audit.Entry{TenantID: tenantID, UserID: userID, Action: "oven.deleted", Entity: audit.EntityOven, EntityID: id})
	return nil
}

func (s *service) ListOvens(ctx context.Context, tenantID uuid.UUID) ([]models.Oven, error) {
	rows, err := s.repo.ListOvens(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ovens")
	}
	return rows, nil
}

// PlanBatch books an oven slot. The load is the summed surface of the
// projects; it must fit the oven and the slot must not overlap another
// planned or running batch on the same oven.
func (s *service) PlanBatch(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input BatchInput) (*models.CuringBatch, error) {
	if input.DurationMin <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration_min must be positive")
	}
	if input.TemperatureC <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "temperature_c must be positive")
	}
	if input.StartsAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "starts_at is required")
	}
	ids := dedupe(input.ProjectIDs)
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one project is required")
	}
	projects, err := s.projects.FindMany(ctx, nil, tenantID, ids)
	if err != nil {
		return nil, err
	}
	if len(projects) != len(ids) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown project in batch").
			WithDetails(map[string]any{"project_ids": missing(ids, projects)})
	}
	load := 0.0
	for _, p := range projects {
		if p.Status.Terminal() {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "project is closed").
				WithDetails(map[string]any{"project_id": p.ID, "status": p.Status})
		}
		load += p.SurfaceM2
	}

	startsAt := input.StartsAt.UTC()
	endsAt := startsAt.Add(time.Duration(input.DurationMin) * time.Minute)
	batch := &models.CuringBatch{
		TenantID:     tenantID,
		OvenID:       input.OvenID,
		ProjectIDs:   dbtypes.UUIDArray(ids),
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		TemperatureC: input.TemperatureC,
		DurationMin:  input.DurationMin,
		LoadM2:       round2(load),
		Status:       enums.BatchStatusPlanned,
		Notes:        input.Notes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		oven, err := txRepo.FindOvenForUpdate(ctx, tenantID, input.OvenID)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown oven")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load oven")
		}
		if !oven.Active {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "oven is inactive")
		}
		if input.TemperatureC > oven.MaxTempC {
			return pkgerrors.New(pkgerrors.CodeValidation, "temperature exceeds oven maximum").
				WithDetails(map[string]any{"max_temp_c": oven.MaxTempC})
		}
		if load > oven.CapacityM2 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "batch load exceeds oven capacity").
				WithDetails(map[string]any{"load_m2": batch.LoadM2, "capacity_m2": oven.CapacityM2})
		}
		overlapping, err := txRepo.FindOverlapping(ctx, tenantID, oven.ID, startsAt, endsAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check oven schedule")
		}
		if len(overlapping) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "oven already booked for that slot").
				WithDetails(map[string]any{"batch_id": overlapping[0].ID, "starts_at": overlapping[0].StartsAt, "ends_at": overlapping[0].EndsAt})
		}
		if err := txRepo.CreateBatch(ctx, batch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create batch")
		}
		s.record(ctx, tx, batch, userID, "batch.planned", map[string]any{"oven_id": oven.ID, "load_m2": batch.LoadM2})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *service) ListBatches(ctx context.Context, tenantID uuid.UUID, filter BatchFilter) ([]models.CuringBatch, error) {
	rows, err := s.repo.ListBatches(ctx, tenantID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list batches")
	}
	return rows, nil
}

// StartBatch puts a planned batch in the oven; coated projects move to curing.
func (s *service) StartBatch(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.CuringBatch, error) {
	return s.move(ctx, tenantID, id, userID, enums.BatchStatusRunning, enums.ProjectStatusCoating, enums.ProjectStatusCuring)
}

// CompleteBatch closes a running batch; cured projects wait for quality control.
func (s *service) CompleteBatch(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.CuringBatch, error) {
	return s.move(ctx, tenantID, id, userID, enums.BatchStatusDone, enums.ProjectStatusCuring, enums.ProjectStatusQualityCheck)
}

func (s *service) CancelBatch(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.CuringBatch, error) {
	return s.move(ctx, tenantID, id, userID, enums.BatchStatusCancelled, "", "")
}

var batchTransitions = map[enums.BatchStatus][]enums.BatchStatus{
	enums.BatchStatusPlanned: {enums.BatchStatusRunning, enums.BatchStatusCancelled},
	enums.BatchStatusRunning: {enums.BatchStatusDone, enums.BatchStatusCancelled},
}

func (s *service) move(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, next enums.BatchStatus, projectFrom, projectTo enums.ProjectStatus) (*models.CuringBatch, error) {
	var batch *models.CuringBatch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var err error
		batch, err = txRepo.FindBatchForUpdate(ctx, tenantID, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "batch not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load batch")
		}
		if !allowed(batch.Status, next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "batch transition not allowed").
				WithDetails(map[string]any{"from": batch.Status, "to": next})
		}
		from := batch.Status
		batch.Status = next
		if err := txRepo.SaveBatch(ctx, batch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update batch")
		}
		if projectTo != "" {
			if err := s.advanceProjects(ctx, tx, batch, userID, projectFrom, projectTo); err != nil {
				return err
			}
		}
		s.record(ctx, tx, batch, userID, "batch."+string(next), map[string]any{"from": from})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// advanceProjects moves the batch's projects that sit at from; projects
// elsewhere on the line are left alone.
func (s *service) advanceProjects(ctx context.Context, tx *gorm.DB, batch *models.CuringBatch, userID *uuid.UUID, from, to enums.ProjectStatus) error {
	projects, err := s.projects.FindMany(ctx, tx, batch.TenantID, batch.ProjectIDs)
	if err != nil {
		return err
	}
	for _, p := range projects {
		if p.Status != from || !batch.ProjectIDs.Contains(p.ID) {
			continue
		}
		if _, err := s.projects.ApplyStatus(ctx, tx, batch.TenantID, p.ID, to, userID); err != nil {
			return err
		}
	}
	return nil
}

// Utilization reports booked time and average load per oven over [from, to).
// Batches crossing the window edges count only for their overlap.
func (s *service) Utilization(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Utilization, error) {
	if !from.Before(to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	from, to = from.UTC(), to.UTC()
	ovens, err := s.ListOvens(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	batches, err := s.repo.ListBatchesBetween(ctx, tenantID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list batches")
	}
	window := int(to.Sub(from).Minutes())
	out := make([]Utilization, 0, len(ovens))
	for _, oven := range ovens {
		u := Utilization{OvenID: oven.ID, Name: oven.Name, WindowMinutes: window}
		loadSum := 0.0
		for _, b := range batches {
			if b.OvenID != oven.ID {
				continue
			}
			start, end := b.StartsAt.UTC(), b.EndsAt.UTC()
			if start.Before(from) {
				start = from
			}
			if end.After(to) {
				end = to
			}
			u.Batches++
			u.BookedMinutes += int(end.Sub(start).Minutes())
			if oven.CapacityM2 > 0 {
				loadSum += b.LoadM2 / oven.CapacityM2 * 100
			}
		}
		if window > 0 {
			u.TimePct = round2(float64(u.BookedMinutes) / float64(window) * 100)
		}
		if u.Batches > 0 {
			u.AvgLoadPct = round2(loadSum / float64(u.Batches))
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, batch *models.CuringBatch, userID *uuid.UUID, action string, payload any) {
	s.audit.Record(ctx, tx, audit.Entry{
		TenantID: batch.TenantID,
		UserID:   userID,
		Action:   action,
		Entity:   audit.EntityCuringBatch,
		EntityID: batch.ID,
		Payload:  payload,
	})
}

func allowed(from, to enums.BatchStatus) bool {
	for _, next := range batchTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
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

func missing(ids []uuid.UUID, found []models.Project) []uuid.UUID {
	have := make(map[uuid.UUID]struct{}, len(found))
	for _, p := range found {
		have[p.ID] = struct{}{}
	}
	var out []uuid.UUID
	for _, id := range ids {
		if _, ok := have[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
