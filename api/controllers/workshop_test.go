package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/exports"
	"github.com/thermolaq/atelier-backend/internal/ovens"
	"github.com/thermolaq/atelier-backend/internal/settings"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

type stubExports struct {
	period exports.Period
}

func (s *stubExports) InvoicesCSV(_ context.Context, _ uuid.UUID, period exports.Period) (*exports.File, error) {
	s.period = period
	return &exports.File{Name: "factures.csv", ContentType: exports.ContentTypeCSV, Body: []byte("numero;date\n")}, nil
}

func (s *stubExports) FEC(_ context.Context, _ uuid.UUID, period exports.Period) (*exports.File, error) {
	s.period = period
	return &exports.File{Name: "123456789FEC20261231.txt", ContentType: exports.ContentTypeFEC, Body: []byte("JournalCode|")}, nil
}

func (s *stubExports) InvoicesXLSX(_ context.Context, _ uuid.UUID, period exports.Period) (*exports.File, error) {
	s.period = period
	return &exports.File{Name: "factures.xlsx", ContentType: exports.ContentTypeXLSX, Body: []byte("PK")}, nil
}

func TestExports(t *testing.T) {
	stub := &stubExports{}
	rec := serve(t, ExportFEC(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/exports/fec?from=2026-01-01&to=2026-12-31"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, exports.ContentTypeFEC, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "FEC20261231.txt")
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), stub.period.To)

	rec = serve(t, ExportInvoicesXLSX(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/exports/invoices.xlsx"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, exports.ContentTypeXLSX, rec.Header().Get("Content-Type"))

	rec = serve(t, ExportInvoicesCSV(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/exports/invoices.csv?from=2026-03-01&to=2026-02-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, ExportInvoicesCSV(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/exports/invoices.csv", anon: true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type stubAlerts struct {
	alerts.Service

	unreadOnly bool
	marked     uuid.UUID
}

func (s *stubAlerts) List(_ context.Context, _ uuid.UUID, _ pagination.Params, unreadOnly bool) (*types.Page[models.Alert], error) {
	s.unreadOnly = unreadOnly
	return &types.Page[models.Alert]{Items: []models.Alert{{Title: "Stock bas"}}}, nil
}

func (s *stubAlerts) CountUnread(context.Context, uuid.UUID) (int64, error) {
	return 3, nil
}

func (s *stubAlerts) MarkRead(_ context.Context, _, id uuid.UUID) error {
	s.marked = id
	return nil
}

func (s *stubAlerts) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 3, nil
}

func TestAlerts(t *testing.T) {
	stub := &stubAlerts{}
	rec := serve(t, ListAlerts(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/alerts?unread=true"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, stub.unreadOnly)
	assert.Contains(t, rec.Body.String(), `"unread":3`)

	rec = serve(t, ListAlerts(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/alerts?unread=maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	id := uuid.New()
	rec = serve(t, MarkAlertRead(stub, testLogger()), call{method: http.MethodPost, target: "/read", params: map[string]string{"id": id.String()}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, id, stub.marked)

	rec = serve(t, MarkAllAlertsRead(stub, testLogger()), call{method: http.MethodPost, target: "/read-all"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"updated":3`)
}

type stubAudit struct {
	entity string
}

func (s *stubAudit) List(_ context.Context, _ uuid.UUID, entity string, id uuid.UUID) ([]models.AuditLog, error) {
	s.entity = entity
	return []models.AuditLog{{Entity: entity, EntityID: id, Action: "create"}}, nil
}

func TestListAuditTrail(t *testing.T) {
	stub := &stubAudit{}
	id := uuid.New().String()

	rec := serve(t, ListAuditTrail(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/audit/invoice/" + id, params: map[string]string{"entity": "invoice", "id": id}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "invoice", stub.entity)

	rec = serve(t, ListAuditTrail(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/audit/users/" + id, params: map[string]string{"entity": "users", "id": id}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"

	rec := serve(t, HealthLive(cfg), call{method: http.MethodGet, target: "/health/live", anon: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Atelier-Env"))

	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec = serve(t, HealthReady(cfg, map[string]Pinger{"db": ok, "redis": nil}, testLogger()), call{method: http.MethodGet, target: "/health/ready", anon: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"skipped"`)

	rec = serve(t, HealthReady(cfg, map[string]Pinger{"db": ok, "redis": down}, testLogger()), call{method: http.MethodGet, target: "/health/ready", anon: true})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"down"`)
}

func TestReference(t *testing.T) {
	rec := serve(t, GetRAL(testLogger()), call{method: http.MethodGet, target: "/api/v1/ral/RAL9010", params: map[string]string{"code": "RAL9010"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"9010"`)

	rec = serve(t, GetRAL(testLogger()), call{method: http.MethodGet, target: "/api/v1/ral/0000", params: map[string]string{"code": "0000"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, SearchRAL(testLogger()), call{method: http.MethodGet, target: "/api/v1/ral?q=7016"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"7016"`)

	rec = serve(t, SearchRAL(testLogger()), call{method: http.MethodGet, target: "/api/v1/ral?limit=0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, GetDictionary(), call{method: http.MethodGet, target: "/api/v1/i18n/de", params: map[string]string{"lang": "de"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lang":"fr"`)
}

type stubSettings struct {
	input *settings.UpdateInput
}

func (s *stubSettings) Get(_ context.Context, tenantID uuid.UUID) (models.ShopSettings, error) {
	return models.ShopSettings{TenantID: tenantID, VATRatePct: 20}, nil
}

func (s *stubSettings) Update(_ context.Context, tenantID uuid.UUID, _ *uuid.UUID, input settings.UpdateInput) (models.ShopSettings, error) {
	s.input = &input
	return models.ShopSettings{TenantID: tenantID, VATRatePct: *input.VATRatePct}, nil
}

func TestSettings(t *testing.T) {
	stub := &stubSettings{}
	rec := serve(t, GetSettings(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/settings"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, UpdateSettings(stub, testLogger()), call{method: http.MethodPut, target: "/api/v1/settings", body: `{"vat_rate_pct":10}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 10.0, *stub.input.VATRatePct)

	rec = serve(t, UpdateSettings(stub, testLogger()), call{method: http.MethodPut, target: "/api/v1/settings", body: `{"pdf_template":"baroque"}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubOvens struct {
	ovens.Service

	from, to time.Time
	filter   ovens.BatchFilter
}

func (s *stubOvens) Utilization(_ context.Context, _ uuid.UUID, from, to time.Time) ([]ovens.Utilization, error) {
	s.from, s.to = from, to
	return []ovens.Utilization{}, nil
}

func (s *stubOvens) ListBatches(_ context.Context, _ uuid.UUID, filter ovens.BatchFilter) ([]models.CuringBatch, error) {
	s.filter = filter
	return nil, nil
}

func TestOvenUtilizationWindow(t *testing.T) {
	stub := &stubOvens{}
	rec := serve(t, OvenUtilization(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/ovens/utilization?from=2026-03-01&to=2026-03-31"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), stub.from)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), stub.to)

	rec = serve(t, OvenUtilization(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/ovens/utilization"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30*24*time.Hour, stub.to.Sub(stub.from))
}

func TestListBatchesFilter(t *testing.T) {
	stub := &stubOvens{}
	ovenID := uuid.New()
	rec := serve(t, ListBatches(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/ovens/batches?oven_id=" + ovenID.String() + "&day=2026-03-02&status=planned"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ovenID, *stub.filter.OvenID)
	assert.Equal(t, enums.BatchStatusPlanned, *stub.filter.Status)
	assert.Equal(t, 2, stub.filter.Day.Day())

	rec = serve(t, ListBatches(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/ovens/batches?status=burnt"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
