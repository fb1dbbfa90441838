package controllers

import (
	"net/http"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/api/validators"
	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

type alertList struct {
	Page   any   `json:"page"`
	Unread int64 `json:"unread"`
}

// ListAlerts pages through alerts, newest first; ?unread=true hides read ones.
func ListAlerts(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "alert service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unread", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), tenantID, pagination.FromQuery(r.URL.Query()), unreadOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unread, err := svc.CountUnread(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, alertList{Page: page, Unread: unread})
	}
}

func MarkAlertRead(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "alert service")
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
		if err := svc.MarkRead(r.Context(), tenantID, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func MarkAllAlertsRead(svc alerts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "alert service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		updated, err := svc.MarkAllRead(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}
