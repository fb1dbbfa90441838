package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/powders"
	"github.com/thermolaq/atelier-backend/internal/settings"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

var rates = config.PricingDefaults{
	LaborRatePerHour:     40,
	LaborHoursPerM2:      0.5,
	ConsumablesCostPerM2: 2,
	PowderMarginPct:      50,
	LaborMarginPct:       25,
	VATRatePct:           20,
	QuoteValidityDays:    30,
}

type fakeConverter struct {
	calls int
}

func (f *fakeConverter) CreateFromQuote(_ context.Context, tenantID, quoteID uuid.UUID, _ *uuid.UUID) (*models.Invoice, error) {
	f.calls++
	return &models.Invoice{TenantID: tenantID, QuoteID: &quoteID, Number: "FAC-2026-0001"}, nil
}

type fixture struct {
	svc       Service
	conn      *gorm.DB
	powders   powders.Service
	auditRepo audit.Repository
	converter *fakeConverter
	tenantID  uuid.UUID
	userID    uuid.UUID
	clientID  uuid.UUID
}

func setup(t *testing.T) fixture {
	t.Helper()
	dbClient, conn := dbtest.Client(t)
	tenant, owner := dbtest.SeedTenant(t, conn, "Atelier Ocre")
	client := dbtest.SeedClient(t, conn, tenant.ID, "Ferronnerie Dupont")

	auditRepo := audit.NewRepository(conn)
	recorder := audit.NewRecorder(auditRepo, logger.Nop())
	settingsSvc, err := settings.NewService(settings.NewRepository(conn), rates, recorder)
	require.NoError(t, err)
	powderSvc, err := powders.NewService(powders.NewRepository(conn), dbClient, recorder)
	require.NoError(t, err)

	converter := &fakeConverter{}
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Tx:        dbClient,
		Settings:  settingsSvc,
		Powders:   powderSvc,
		Converter: converter,
		Audit:     recorder,
		Now:       func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, powders: powderSvc, auditRepo: auditRepo, converter: converter, tenantID: tenant.ID, userID: owner.ID, clientID: client.ID}
}

func (f fixture) powder(t *testing.T, price, consumption float64) uuid.UUID {
	t.Helper()
	p, err := f.powders.Create(context.Background(), f.tenantID, nil, powders.CreatePowderInput{
		Reference:          "RAL 9010",
		PricePerKg:         &price,
		ConsumptionKgPerM2: &consumption,
	})
	require.NoError(t, err)
	return p.ID
}

func flatPanel(powderID uuid.UUID) ItemInput {
	return ItemInput{
		Designation: "Panneau",
		LengthMM:    1000,
		WidthMM:     500,
		Quantity:    2,
		Layers:      []LayerInput{{Type: "base", PowderID: &powderID}},
	}
}

func TestCreatePricesAndNumbers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	powderID := f.powder(t, 20, 0.2)

	quote, err := f.svc.Create(ctx, f.tenantID, &f.userID, QuoteInput{
		ClientID: f.clientID,
		Items:    []ItemInput{flatPanel(powderID)},
	})
	require.NoError(t, err)
	assert.Equal(t, "DEV-2026-0001", quote.Number)
	assert.Equal(t, enums.QuoteStatusDraft, quote.Status)
	require.NotNil(t, quote.ValidUntil)
	assert.Equal(t, 2026, quote.ValidUntil.Year())
	assert.Equal(t, time.April, quote.ValidUntil.Month())

	// 2 panels x 2 faces x 0.5 m² = 2 m²
	item := quote.Items[0]
	assert.InDelta(t, 2.0, item.AreaM2, 1e-9)
	require.NotNil(t, item.Layers[0].Powder)
	assert.Equal(t, "RAL 9010", item.Layers[0].Powder.Reference)
	// powder: 2 m² x 0.2 kg x 20 €/kg = 8, sale 12
	assert.InDelta(t, 8.0, item.PowderCost, 1e-9)
	assert.InDelta(t, 12.0, item.PowderSalePrice, 1e-9)
	// labour: 2 x 0.5 h = 1 h x 40 = 40, sale 50; consumables 4
	assert.InDelta(t, 40.0, item.LaborCost, 1e-9)
	assert.InDelta(t, 66.0, item.SalePriceHT, 1e-9)
	assert.InDelta(t, 66.0, quote.TotalSaleHT, 1e-9)
	assert.InDelta(t, 79.2, quote.TotalTTC, 1e-9)

	second, err := f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID})
	require.NoError(t, err)
	assert.Equal(t, "DEV-2026-0002", second.Number)

	entries, err := f.auditRepo.ListByEntity(ctx, f.tenantID, audit.EntityQuote, quote.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "quote.created", entries[0].Action)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "unknown client")

	missing := uuid.New()
	_, err = f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID, Items: []ItemInput{flatPanel(missing)}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "unknown powder")

	_, err = f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID, Items: []ItemInput{{Designation: "x", LengthMM: -1, Quantity: 1}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID, Items: []ItemInput{{Designation: "Portail", LengthMM: 2000, WidthMM: 1000}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "missing quantity")

	_, err = f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID, Discount: &DiscountInput{Kind: "bogof", Value: 1}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var count int64
	require.NoError(t, f.conn.Model(&models.Quote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDiscountClampsToZero(t *testing.T) {
	f := setup(t)
	powderID := f.powder(t, 20, 0.2)
	quote, err := f.svc.Create(context.Background(), f.tenantID, nil, QuoteInput{
		ClientID: f.clientID,
		Items:    []ItemInput{flatPanel(powderID)},
		Discount: &DiscountInput{Kind: "fixed_amount", Value: 1000},
	})
	require.NoError(t, err)
	assert.Zero(t, quote.TotalSaleHT)
	assert.Zero(t, quote.TotalTTC)
	assert.True(t, quote.NegativeMargin)
	require.NotNil(t, quote.DiscountKind)
	assert.Equal(t, enums.DiscountKindFixedAmount, *quote.DiscountKind)
}

func TestRecalculatePicksUpNewPrices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	powderID := f.powder(t, 20, 0.2)
	quote, err := f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID, Items: []ItemInput{flatPanel(powderID)}})
	require.NoError(t, err)

	same, err := f.svc.Recalculate(ctx, f.tenantID, quote.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, quote.TotalSaleHT, same.TotalSaleHT, 1e-9, "recalculation without changes is idempotent")

	newPrice := 30.0
	_, err = f.powders.Update(ctx, f.tenantID, powderID, nil, powders.UpdatePowderInput{PricePerKg: nullableF(newPrice)})
	require.NoError(t, err)

	repriced, err := f.svc.Recalculate(ctx, f.tenantID, quote.ID, nil)
	require.NoError(t, err)
	// powder sale goes 12 -> 18
	assert.InDelta(t, 72.0, repriced.TotalSaleHT, 1e-9)

	stored, err := f.svc.Get(ctx, f.tenantID, quote.ID)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, *stored.Items[0].Layers[0].Powder.PricePerKg, 1e-9)
}

func TestTransitionsAndDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	quote, err := f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, f.tenantID, quote.ID, nil, "refused")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "draft cannot be refused")

	_, err = f.svc.Transition(ctx, f.tenantID, quote.ID, nil, "converted")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	sent, err := f.svc.Transition(ctx, f.tenantID, quote.ID, nil, "sent")
	require.NoError(t, err)
	assert.NotNil(t, sent.SentAt)

	assert.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, f.tenantID, quote.ID, nil), pkgerrors.CodeStateConflict))

	accepted, err := f.svc.Transition(ctx, f.tenantID, quote.ID, nil, "accepted")
	require.NoError(t, err)
	assert.NotNil(t, accepted.AcceptedAt)

	_, err = f.svc.Update(ctx, f.tenantID, quote.ID, nil, QuoteInput{ClientID: f.clientID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "accepted quotes are frozen")

	invoice, err := f.svc.ConvertToInvoice(ctx, f.tenantID, quote.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, quote.ID, *invoice.QuoteID)
	assert.Equal(t, 1, f.converter.calls)

	draft, err := f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, f.tenantID, draft.ID, nil))
	_, err = f.svc.Get(ctx, f.tenantID, draft.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListFiltersAndPrice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other := dbtest.SeedClient(t, f.conn, f.tenantID, "Garage Martin")
	_, err := f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: other.ID})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, f.tenantID, ListFilter{ClientID: &other.ID}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, other.ID, page.Items[0].ClientID)

	sent := enums.QuoteStatusSent
	page, err = f.svc.List(ctx, f.tenantID, ListFilter{Status: &sent}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	height := 0.0
	result, err := f.svc.Price(ctx, f.tenantID, PriceInput{Items: []ItemInput{{
		Designation: "Tôle",
		LengthMM:    1000,
		WidthMM:     800,
		HeightMM:    &height,
		Quantity:    1,
		Layers:      []LayerInput{{Type: "primer"}},
	}}})
	require.NoError(t, err)
	assert.InDelta(t, 1.6, result.Items[0].AreaM2, 1e-9, "zero height is a flat sheet")
	assert.Zero(t, result.Items[0].PowderCost, "a layer without powder costs nothing")

	var count int64
	require.NoError(t, f.conn.Model(&models.Quote{}).Count(&count).Error)
	assert.Equal(t, int64(2), count, "price preview persists nothing")
}

func TestExpireOverdue(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	quote, err := f.svc.Create(ctx, f.tenantID, nil, QuoteInput{ClientID: f.clientID, ValidUntil: &past})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, f.tenantID, quote.ID, nil, "sent")
	require.NoError(t, err)

	count, err := f.svc.ExpireOverdue(ctx, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := f.svc.Get(ctx, f.tenantID, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.QuoteStatusExpired, got.Status)
}

func nullableF(v float64) types.Nullable[float64] {
	return types.Nullable[float64]{Set: true, Value: &v}
}
