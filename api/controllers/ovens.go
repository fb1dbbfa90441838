package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/api/validators"
	"github.com/thermolaq/atelier-backend/internal/ovens"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

func ListOvens(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		rows, err := svc.ListOvens(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func CreateOven(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		var input ovens.OvenInput
		if !decode(w, r, logg, &input) {
			return
		}
		oven, err := svc.CreateOven(r.Context(), tenantID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, oven)
	}
}

func GetOven(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		oven, err := svc.GetOven(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, oven)
	}
}

func UpdateOven(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var input ovens.UpdateOvenInput
		if !decode(w, r, logg, &input) {
			return
		}
		oven, err := svc.UpdateOven(r.Context(), tenantID, id, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, oven)
	}
}

func DeleteOven(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		if err := svc.DeleteOven(r.Context(), tenantID, id, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListBatches filters by ?oven_id=, ?day=YYYY-MM-DD and ?status=.
func ListBatches(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		var filter ovens.BatchFilter
		var err error
		if filter.OvenID, err = validators.ParseQueryUUID(r, "oven_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.Day, err = validators.ParseQueryDate(r, "day"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseBatchStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}
		rows, err := svc.ListBatches(r.Context(), tenantID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// PlanBatch books an oven for a set of projects; overlapping or overloaded
// plans are rejected with a conflict.
func PlanBatch(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		var input ovens.BatchInput
		if !decode(w, r, logg, &input) {
			return
		}
		batch, err := svc.PlanBatch(r.Context(), tenantID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, batch)
	}
}

type batchAction func(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.CuringBatch, error)

func StartBatch(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return runBatch(nil, logg)
	}
	return runBatch(svc.StartBatch, logg)
}

func CompleteBatch(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return runBatch(nil, logg)
	}
	return runBatch(svc.CompleteBatch, logg)
}

func CancelBatch(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return runBatch(nil, logg)
	}
	return runBatch(svc.CancelBatch, logg)
}

func runBatch(action batchAction, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if action == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		batch, err := action(r.Context(), tenantID, id, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, batch)
	}
}

// OvenUtilization reports booked time and load per oven over ?from=&to=
// (inclusive days); the default window is the last 30 days.
func OvenUtilization(svc ovens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "oven service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		today := time.Now().UTC().Truncate(24 * time.Hour)
		end := today.AddDate(0, 0, 1)
		if to != nil {
			end = to.AddDate(0, 0, 1)
		}
		start := end.AddDate(0, 0, -30)
		if from != nil {
			start = *from
		}
		rows, err := svc.Utilization(r.Context(), tenantID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
