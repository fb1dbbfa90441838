package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// AuditReader lists the history of one entity.
type AuditReader interface {
	List(ctx context.Context, tenantID uuid.UUID, entity string, entityID uuid.UUID) ([]models.AuditLog, error)
}

var auditedEntities = map[string]bool{
	audit.EntityQuote:        true,
	audit.EntityInvoice:      true,
	audit.EntityClient:       true,
	audit.EntityPowder:       true,
	audit.EntityProject:      true,
	audit.EntityCuringBatch:  true,
	audit.EntityQualityCheck: true,
	audit.EntitySettings:     true,
	audit.EntityTenant:       true,
	audit.EntityOven:         true,
	audit.EntitySubscription: true,
}

func ListAuditTrail(reader AuditReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reader == nil {
			unavailable(w, r, logg, "audit log")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		entity := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "entity")))
		if !auditedEntities[entity] {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown entity").
				WithDetails(map[string]any{"field": "entity"}))
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		rows, err := reader.List(r.Context(), tenantID, entity, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
