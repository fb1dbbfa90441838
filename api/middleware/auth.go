package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/internal/tenants"
	pkgAuth "github.com/thermolaq/atelier-backend/pkg/auth"
	"github.com/thermolaq/atelier-backend/pkg/config"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// MembershipResolver maps an authenticated user onto their workshop.
type MembershipResolver interface {
	Membership(ctx context.Context, userID uuid.UUID) (*tenants.Membership, error)
}

// Auth validates the provider bearer token, resolves the caller's workshop
// membership and seeds the request context with user, tenant and role.
func Auth(cfg config.AuthConfig, members MembershipResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token subject"))
				return
			}

			if members == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "membership resolver unavailable"))
				return
			}
			member, err := members.Membership(r.Context(), userID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithActor(r.Context(), Actor{UserID: userID, TenantID: member.TenantID, Role: member.Role})

			if logg != nil {
				ctx = logg.WithScope(ctx, logger.Scope{
					UserID:   userID.String(),
					TenantID: member.TenantID.String(),
					Role:     string(member.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
