package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/thermolaq/atelier-backend/api/middleware"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

var (
	testTenantID = uuid.MustParse("6a3f1c2e-0000-4000-8000-000000000001")
	testUserID   = uuid.MustParse("6a3f1c2e-0000-4000-8000-000000000002")
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

type call struct {
	method string
	target string
	body   string
	params map[string]string
	header map[string]string
	anon   bool
}

// serve runs h with the caller scope seeded the way Auth does it.
func serve(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.target, body)
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	ctx := req.Context()
	if !c.anon {
		ctx = middleware.WithTenantID(ctx, testTenantID)
		ctx = middleware.WithUserID(ctx, testUserID)
	}
	routeCtx := chi.NewRouteContext()
	for k, v := range c.params {
		routeCtx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return payload.Error.Code
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
}
