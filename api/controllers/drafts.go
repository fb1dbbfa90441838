package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/internal/drafts"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// DraftStore is the autosave backend of the quote form.
type DraftStore interface {
	Save(ctx context.Context, tenantID, userID uuid.UUID, key string, payload json.RawMessage) drafts.Result
	Load(ctx context.Context, tenantID, userID uuid.UUID, key string) (*drafts.Draft, error)
	Discard(ctx context.Context, tenantID, userID uuid.UUID, key string) error
}

// SaveDraft stores the raw form body. The result always carries the autosave
// status; a failed save answers 422 for bad input and 503 otherwise.
func SaveDraft(store DraftStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotConfigured, "drafts are not configured"))
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, drafts.MaxPayloadBytes+1))
		if err != nil || len(payload) > drafts.MaxPayloadBytes {
			responses.WriteSuccessStatus(w, http.StatusRequestEntityTooLarge, drafts.Result{Status: drafts.StatusError, Error: "draft too large"})
			return
		}

		result := store.Save(r.Context(), tenantID, *userID, chi.URLParam(r, "key"), payload)
		switch {
		case result.Status == drafts.StatusSaved:
			responses.WriteSuccess(w, result)
		case result.Retryable():
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, result)
		default:
			responses.WriteSuccessStatus(w, http.StatusUnprocessableEntity, result)
		}
	}
}

func LoadDraft(store DraftStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotConfigured, "drafts are not configured"))
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		draft, err := store.Load(r.Context(), tenantID, *userID, chi.URLParam(r, "key"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if draft == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found"))
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func DiscardDraft(store DraftStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotConfigured, "drafts are not configured"))
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		if err := store.Discard(r.Context(), tenantID, *userID, chi.URLParam(r, "key")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
