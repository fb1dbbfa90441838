package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thermolaq/atelier-backend/api/responses"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	pkgredis "github.com/thermolaq/atelier-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
	pendingMarker        = "pending"
	pendingTTL           = time.Minute

	createTTL   = 24 * time.Hour
	documentTTL = 7 * 24 * time.Hour
)

// replayable lists the POST routes whose outcome is remembered per key.
// Routes that allocate a document number or record money keep theirs for
// a week; plain creates for a day.
var replayable = map[string]time.Duration{
	"/api/v1/quotes":                createTTL,
	"/api/v1/clients":               createTTL,
	"/api/v1/powders":               createTTL,
	"/api/v1/powders/*/movements":   createTTL,
	"/api/v1/projects":              createTTL,
	"/api/v1/projects/*/photos":     createTTL,
	"/api/v1/ovens":                 createTTL,
	"/api/v1/ovens/batches":         createTTL,
	"/api/v1/quality/checks":        createTTL,
	"/api/v1/invoices":              documentTTL,
	"/api/v1/quotes/*/convert":      documentTTL,
	"/api/v1/invoices/*/payments":   documentTTL,
	"/api/v1/invoices/*/cancel":     documentTTL,
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	BodyHash    string `json:"body_hash"`
}

// Idempotency replays the first response for a repeated Idempotency-Key on
// the routes above. Requests without the header pass straight through, as
// do 5xx outcomes, which are never stored so the client may retry.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			ttl, ok := replayTTL(r.Method, r.URL.Path)
			if !ok || key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(key) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			sum := sha256.Sum256(body)
			bodyHash := hex.EncodeToString(sum[:])

			storeKey := store.IdempotencyKey(idempotencyScope(r), key)
			claimed, err := store.SetNX(ctx, storeKey, pendingMarker, pendingTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replay(ctx, w, r, logg, store, storeKey, bodyHash)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			// the pending marker goes in every case; a stored outcome replaces it
			if err := store.Del(ctx, storeKey); err != nil && logg != nil {
				logg.Error(ctx, "idempotency.release_failed", err)
			}
			status := capture.code()
			if status >= http.StatusInternalServerError {
				return
			}
			payload, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				BodyHash:    bodyHash,
			})
			if err == nil {
				_, err = store.SetNX(ctx, storeKey, string(payload), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

func replay(ctx context.Context, w http.ResponseWriter, r *http.Request, logg *logger.Logger, store pkgredis.IdempotencyStore, storeKey, bodyHash string) {
	raw, err := store.Get(ctx, storeKey)
	switch {
	case errors.Is(err, redis.Nil), err == nil && raw == "":
		// released between SetNX and Get; the first attempt failed
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request with this Idempotency-Key is being retried, try again"))
		return
	case err != nil:
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency record"))
		return
	case raw == pendingMarker:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this Idempotency-Key is still in progress"))
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if stored.BodyHash != bodyHash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key reused with a different request body"))
		return
	}
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

// idempotencyScope keeps keys per workshop and user so two callers can
// never read each other's stored response.
func idempotencyScope(r *http.Request) string {
	return strings.Join([]string{
		TenantIDFromContext(r.Context()),
		UserIDFromContext(r.Context()),
		r.Method,
		strings.TrimSuffix(r.URL.Path, "/"),
	}, "|")
}

// replayTTL matches path segment by segment against the table; "*" stands
// for one id segment.
func replayTTL(method, path string) (time.Duration, bool) {
	if method != http.MethodPost {
		return 0, false
	}
	path = strings.TrimSuffix(path, "/")
	if ttl, ok := replayable[path]; ok {
		return ttl, true
	}
	segments := strings.Split(path, "/")
	for pattern, ttl := range replayable {
		if segmentsMatch(strings.Split(pattern, "/"), segments) {
			return ttl, true
		}
	}
	return 0, false
}

func segmentsMatch(pattern, path []string) bool {
	if len(pattern) != len(path) {
		return false
	}
	for i := range pattern {
		if pattern[i] != "*" && pattern[i] != path[i] {
			return false
		}
	}
	return true
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) code() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
