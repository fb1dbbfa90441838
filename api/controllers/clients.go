package controllers

import (
	"net/http"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/api/validators"
	"github.com/thermolaq/atelier-backend/internal/clients"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// ListClients searches by ?q= (name, email) and filters by ?tag=.
func ListClients(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "client service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		filter := clients.ListFilter{
			Search: validators.SanitizeString(r.URL.Query().Get("q"), 120),
			Tag:    validators.SanitizeString(r.URL.Query().Get("tag"), 40),
		}
		page, err := svc.List(r.Context(), tenantID, filter, pagination.FromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func CreateClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "client service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		var input clients.CreateClientInput
		if !decode(w, r, logg, &input) {
			return
		}
		client, err := svc.Create(r.Context(), tenantID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, client)
	}
}

func GetClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "client service")
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
		client, err := svc.Get(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func UpdateClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "client service")
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
		var input clients.UpdateClientInput
		if !decode(w, r, logg, &input) {
			return
		}
		client, err := svc.Update(r.Context(), tenantID, id, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, client)
	}
}

func DeleteClient(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "client service")
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
		if err := svc.Delete(r.Context(), tenantID, id, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClientSummary(svc clients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "client service")
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
		summary, err := svc.Summary(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
