package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/internal/exports"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

type exportFunc func(ctx context.Context, tenantID uuid.UUID, period exports.Period) (*exports.File, error)

func ExportInvoicesCSV(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serveExport(nil, logg)
	}
	return serveExport(svc.InvoicesCSV, logg)
}

// ExportFEC produces the Fichier des Écritures Comptables for the period.
func ExportFEC(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serveExport(nil, logg)
	}
	return serveExport(svc.FEC, logg)
}

func ExportInvoicesXLSX(svc exports.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return serveExport(nil, logg)
	}
	return serveExport(svc.InvoicesXLSX, logg)
}

func serveExport(export exportFunc, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if export == nil {
			unavailable(w, r, logg, "export service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		period, err := exports.ParsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"), time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, err := export(r.Context(), tenantID, period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteBytes(w, file.ContentType, file.Name, file.Body)
	}
}
