package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

func badParam(field, msg string, extra map[string]any) error {
	details := map[string]any{"field": field}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// optional parses the query value under key. Absent or blank values return
// (nil, nil) so callers can apply their own default.
func optional[T any](r *http.Request, key, want string, parse func(string) (T, error)) (*T, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil, badParam(key, "query parameter must be "+want, nil)
	}
	return &v, nil
}

// ParseQueryInt returns def when key is absent and rejects values outside [lo, hi].
func ParseQueryInt(r *http.Request, key string, def, lo, hi int) (int, error) {
	v, err := optional(r, key, "numeric", strconv.Atoi)
	if err != nil || v == nil {
		return def, err
	}
	if *v < lo || *v > hi {
		return 0, badParam(key, "query parameter out of range", map[string]any{"min": lo, "max": hi})
	}
	return *v, nil
}

func ParseQueryBool(r *http.Request, key string, def bool) (bool, error) {
	v, err := optional(r, key, "a boolean", strconv.ParseBool)
	if err != nil || v == nil {
		return def, err
	}
	return *v, nil
}

func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	return optional(r, key, "a uuid", uuid.Parse)
}

// ParseQueryDate reads YYYY-MM-DD as UTC midnight.
func ParseQueryDate(r *http.Request, key string) (*time.Time, error) {
	return optional(r, key, "a date (YYYY-MM-DD)", func(s string) (time.Time, error) {
		return time.Parse(dateLayout, s)
	})
}

// ParseURLUUID reads a chi path parameter. Unlike query values it is required.
func ParseURLUUID(r *http.Request, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return uuid.Nil, badParam(key, "invalid path parameter", nil)
	}
	return id, nil
}
