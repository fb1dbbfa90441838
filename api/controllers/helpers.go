package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/middleware"
	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/api/validators"
	"github.com/thermolaq/atelier-backend/internal/i18n"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// scope reads the caller's workshop and user. It writes the error response
// itself, so callers only return when ok is false.
func scope(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, *uuid.UUID, bool) {
	tenantID, userID, ok := middleware.Scope(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing"))
		return uuid.Nil, nil, false
	}
	return tenantID, &userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, key string) (uuid.UUID, bool) {
	id, err := validators.ParseURLUUID(r, key)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, logg *logger.Logger, dest any) bool {
	if err := validators.DecodeJSONBody(r, dest); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return false
	}
	return true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, what string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, what+" unavailable"))
}

// requestLanguage prefers ?lang= then Accept-Language. An empty result lets
// the document fall back to the workshop locale.
func requestLanguage(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return i18n.Normalize(lang)
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		return i18n.DetectLanguage(header)
	}
	return ""
}
