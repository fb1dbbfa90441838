package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/internal/settings"
	"github.com/thermolaq/atelier-backend/internal/subscriptions"
	"github.com/thermolaq/atelier-backend/internal/tenants"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// SettingsService reads and updates the pricing rates and PDF theme.
type SettingsService interface {
	Get(ctx context.Context, tenantID uuid.UUID) (models.ShopSettings, error)
	Update(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input settings.UpdateInput) (models.ShopSettings, error)
}

// SubscriptionReader exposes the workshop's SaaS plan.
type SubscriptionReader interface {
	Current(ctx context.Context, tenantID uuid.UUID) (*subscriptions.View, error)
}

func GetSettings(svc SettingsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "settings service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		row, err := svc.Get(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func UpdateSettings(svc SettingsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "settings service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		var input settings.UpdateInput
		if !decode(w, r, logg, &input) {
			return
		}
		row, err := svc.Update(r.Context(), tenantID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

func GetTenant(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "tenant service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		dto, err := svc.Get(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UpdateTenant edits the letterhead identity printed on documents.
func UpdateTenant(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "tenant service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		var input tenants.UpdateTenantInput
		if !decode(w, r, logg, &input) {
			return
		}
		dto, err := svc.Update(r.Context(), tenantID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func GetSubscription(svc SubscriptionReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "subscription service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		view, err := svc.Current(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
