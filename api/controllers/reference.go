package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/api/validators"
	"github.com/thermolaq/atelier-backend/internal/i18n"
	"github.com/thermolaq/atelier-backend/internal/ral"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// SearchRAL matches ?q= against codes and colour names; ?limit= caps the list.
func SearchRAL(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 250)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("q"), 60)
		responses.WriteSuccess(w, ral.Search(query, limit))
	}
}

func GetRAL(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		color, ok := ral.Lookup(chi.URLParam(r, "code"))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown RAL code"))
			return
		}
		responses.WriteSuccess(w, color)
	}
}

type dictionaryResponse struct {
	Lang     string            `json:"lang"`
	Messages map[string]string `json:"messages"`
}

// GetDictionary serves the UI strings; unsupported languages get French.
func GetDictionary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Normalize(chi.URLParam(r, "lang"))
		responses.WriteSuccess(w, dictionaryResponse{Lang: lang, Messages: i18n.Dictionary(lang)})
	}
}
