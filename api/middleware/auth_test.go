package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/internal/tenants"
	"github.com/thermolaq/atelier-backend/pkg/auth"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "secret", Issuer: "issuer", Audience: "authenticated", DevTokenTTL: time.Hour}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testAuthConfig(), stubMembers{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testAuthConfig(), stubMembers{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsTenantScope(t *testing.T) {
	cfg := testAuthConfig()
	userID := uuid.New()
	tenantID := uuid.New()
	token := mintTestToken(t, cfg, userID)

	var captured struct {
		user   string
		role   enums.MemberRole
		tenant string
	}
	members := stubMembers{membership: &tenants.Membership{UserID: userID, TenantID: tenantID, Role: enums.MemberRoleOperator}}
	handler := Auth(cfg, members, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.tenant = TenantIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, captured.user)
	}
	if captured.role != enums.MemberRoleOperator {
		t.Fatalf("expected role operator got %s", captured.role)
	}
	if captured.tenant != tenantID.String() {
		t.Fatalf("expected tenant %s got %s", tenantID, captured.tenant)
	}
}

func TestAuthRejectsNonMember(t *testing.T) {
	cfg := testAuthConfig()
	token := mintTestToken(t, cfg, uuid.New())
	members := stubMembers{err: pkgerrors.New(pkgerrors.CodeForbidden, "user is not a member of any workshop")}
	handler := Auth(cfg, members, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestTenantContextRequiresScope(t *testing.T) {
	handler := TenantContext(nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	ctx := WithTenantID(WithUserID(context.Background(), uuid.New()), uuid.New())
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequireWriteBlocksViewers(t *testing.T) {
	handler := RequireWrite(nil)(okHandler())
	viewer := WithRole(context.Background(), enums.MemberRoleViewer)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(viewer))
	if resp.Code != http.StatusOK {
		t.Fatalf("viewer reads should pass, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil).WithContext(viewer))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("viewer writes should be forbidden, got %d", resp.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles(nil, enums.MemberRoleOwner, enums.MemberRoleAdmin)(okHandler())

	resp := httptest.NewRecorder()
	ctx := WithRole(context.Background(), enums.MemberRoleOperator)
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	ctx = WithRole(context.Background(), enums.MemberRoleAdmin)
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, cfg config.AuthConfig, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{UserID: userID, Email: "atelier@example.test"})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubMembers struct {
	membership *tenants.Membership
	err        error
}

func (s stubMembers) Membership(context.Context, uuid.UUID) (*tenants.Membership, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.membership == nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no membership")
	}
	return s.membership, nil
}
