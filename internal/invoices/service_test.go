package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/settings"
	"github.com/thermolaq/atelier-backend/pkg/config"
	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/db/dbtest"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

var (
	defaults = config.PricingDefaults{VATRatePct: 20, QuoteValidityDays: 30, PaymentTermsDays: 30}
	today    = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc       Service
	conn      *gorm.DB
	dbClient  *db.Client
	auditRepo audit.Repository
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
	settingsSvc, err := settings.NewService(settings.NewRepository(conn), defaults, recorder)
	require.NoError(t, err)
	alertSvc, err := alerts.NewService(alerts.NewRepository(conn))
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       dbClient,
		Settings: settingsSvc,
		Alerts:   alertSvc,
		Audit:    recorder,
		Now:      func() time.Time { return today },
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, dbClient: dbClient, auditRepo: auditRepo, tenantID: tenant.ID, userID: owner.ID, clientID: client.ID}
}

func (f fixture) manual(t *testing.T) *models.Invoice {
	t.Helper()
	invoice, err := f.svc.Create(context.Background(), f.tenantID, &f.userID, CreateInput{
		ClientID: f.clientID,
		Lines: []LineInput{
			{Designation: "Portail thermolaqué", Quantity: 2, Unit: "pc", UnitPriceHT: 50},
			{Designation: "Sablage", Quantity: 1, UnitPriceHT: 20.5},
		},
		DiscountAmount: 10,
	})
	require.NoError(t, err)
	return invoice
}

func (f fixture) sent(t *testing.T) *models.Invoice {
	t.Helper()
	invoice, err := f.svc.Send(context.Background(), f.tenantID, f.manual(t).ID, &f.userID)
	require.NoError(t, err)
	return invoice
}

func (f fixture) acceptedQuote(t *testing.T, status enums.QuoteStatus) models.Quote {
	t.Helper()
	quote := models.Quote{
		TenantID: f.tenantID,
		ClientID: f.clientID,
		Number:   "DEV-2026-0001",
		Status:   status,
		Items: types.QuoteItems{
			{Designation: "Garde-corps", Quantity: 4, AreaM2: 6, SalePriceHT: 240},
			{Designation: "Platine", Quantity: 10, AreaM2: 0.5, SalePriceHT: 35},
		},
		QuoteTotals: types.QuoteTotals{
			TotalSaleHTGross: 275,
			DiscountAmount:   25,
			TotalSaleHT:      250,
			VATRatePct:       20,
			TotalVAT:         50,
			TotalTTC:         300,
		},
	}
	require.NoError(t, f.conn.Create(&quote).Error)
	return quote
}

func TestCreateComputesTotals(t *testing.T) {
	f := setup(t)
	invoice := f.manual(t)

	assert.Equal(t, "FAC-2026-0001", invoice.Number)
	assert.Equal(t, enums.InvoiceKindInvoice, invoice.Kind)
	assert.Equal(t, enums.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, enums.PaymentStatusUnpaid, invoice.PaymentStatus)
	require.Len(t, invoice.Lines, 2)
	assert.InDelta(t, 100, invoice.Lines[0].TotalHT, 1e-9)
	assert.InDelta(t, 10, invoice.DiscountAmount, 1e-9)
	assert.InDelta(t, 110.5, invoice.TotalHT, 1e-9)
	assert.InDelta(t, 22.1, invoice.TotalVAT, 1e-9)
	assert.InDelta(t, 132.6, invoice.TotalTTC, 1e-9)

	second := f.manual(t)
	assert.Equal(t, "FAC-2026-0002", second.Number)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.tenantID, nil, CreateInput{ClientID: f.clientID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Create(ctx, f.tenantID, nil, CreateInput{
		ClientID: uuid.New(),
		Lines:    []LineInput{{Designation: "x", Quantity: 1, UnitPriceHT: 1}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "unknown client")

	_, err = f.svc.Create(ctx, f.tenantID, nil, CreateInput{
		ClientID: f.clientID,
		Lines:    []LineInput{{Designation: " ", Quantity: 1, UnitPriceHT: 1}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestComputeTotalsClampsDiscount(t *testing.T) {
	totals := ComputeTotals(types.InvoiceLines{{TotalHT: 40}}, 100, 20)
	assert.InDelta(t, 40, totals.DiscountAmount, 1e-9)
	assert.Zero(t, totals.TotalHT)
	assert.Zero(t, totals.TotalTTC)

	totals = ComputeTotals(types.InvoiceLines{{TotalHT: 0.1}, {TotalHT: 0.2}}, 0, 5.5)
	assert.InDelta(t, 0.3, totals.TotalHT, 1e-9)
	assert.InDelta(t, 0.02, totals.TotalVAT, 1e-9)
	assert.InDelta(t, 0.32, totals.TotalTTC, 1e-9)
}

func TestSendSetsDueDate(t *testing.T) {
	f := setup(t)
	invoice := f.sent(t)

	assert.Equal(t, enums.InvoiceStatusSent, invoice.Status)
	require.NotNil(t, invoice.IssuedAt)
	require.NotNil(t, invoice.DueAt)
	assert.Equal(t, today.AddDate(0, 0, 30), *invoice.DueAt)

	_, err := f.svc.Send(context.Background(), f.tenantID, invoice.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestRecordPaymentPartialThenPaid(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.sent(t)

	_, err := f.svc.RecordPayment(ctx, f.tenantID, invoice.ID, nil, PaymentInput{Amount: 200, Method: "transfer"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "overpayment is refused")

	_, err = f.svc.RecordPayment(ctx, f.tenantID, invoice.ID, nil, PaymentInput{Amount: 10, Method: "bitcoin"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	updated, err := f.svc.RecordPayment(ctx, f.tenantID, invoice.ID, &f.userID, PaymentInput{Amount: 100, Method: "transfer"})
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusSent, updated.Status)
	assert.Equal(t, enums.PaymentStatusPartial, updated.PaymentStatus)
	assert.InDelta(t, 32.6, updated.Balance(), 1e-9)

	updated, err = f.svc.RecordPayment(ctx, f.tenantID, invoice.ID, &f.userID, PaymentInput{Amount: 32.6, Method: "check"})
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusPaid, updated.Status)
	assert.Equal(t, enums.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.PaidAt)

	payments, err := f.svc.Payments(ctx, f.tenantID, invoice.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	_, err = f.svc.RecordPayment(ctx, f.tenantID, invoice.ID, nil, PaymentInput{Amount: 1, Method: "cash"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestRecordPaymentOnDraftRefused(t *testing.T) {
	f := setup(t)
	invoice := f.manual(t)
	_, err := f.svc.RecordPayment(context.Background(), f.tenantID, invoice.ID, nil, PaymentInput{Amount: 10, Method: "cash"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCancel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	draft := f.manual(t)
	res, err := f.svc.Cancel(ctx, f.tenantID, draft.ID, &f.userID)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusCancelled, res.Invoice.Status)
	assert.Nil(t, res.CreditNote)

	issued := f.sent(t)
	res, err = f.svc.Cancel(ctx, f.tenantID, issued.ID, &f.userID)
	require.NoError(t, err)
	require.NotNil(t, res.CreditNote)
	assert.Equal(t, "AV-2026-0001", res.CreditNote.Number)
	assert.Equal(t, enums.InvoiceKindCreditNote, res.CreditNote.Kind)
	require.NotNil(t, res.CreditNote.CreditedInvoiceID)
	assert.Equal(t, issued.ID, *res.CreditNote.CreditedInvoiceID)
	assert.InDelta(t, issued.TotalTTC, res.CreditNote.TotalTTC, 1e-9)

	_, err = f.svc.Cancel(ctx, f.tenantID, issued.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "already cancelled")

	_, err = f.svc.Cancel(ctx, f.tenantID, res.CreditNote.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelPaidRefused(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.sent(t)
	_, err := f.svc.RecordPayment(ctx, f.tenantID, invoice.ID, nil, PaymentInput{Amount: invoice.TotalTTC, Method: "card"})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.tenantID, invoice.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
}

func TestCreateFromQuote(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	quote := f.acceptedQuote(t, enums.QuoteStatusAccepted)

	invoice, err := f.svc.CreateFromQuote(ctx, f.tenantID, quote.ID, &f.userID)
	require.NoError(t, err)
	require.Len(t, invoice.Lines, 2)
	assert.Equal(t, "Garde-corps", invoice.Lines[0].Designation)
	assert.InDelta(t, 60, invoice.Lines[0].UnitPriceHT, 1e-9)
	assert.InDelta(t, 3.5, invoice.Lines[1].UnitPriceHT, 1e-9)
	assert.InDelta(t, 250, invoice.TotalHT, 1e-9)
	assert.InDelta(t, 300, invoice.TotalTTC, 1e-9)
	require.NotNil(t, invoice.QuoteID)
	assert.Equal(t, quote.ID, *invoice.QuoteID)

	var stored models.Quote
	require.NoError(t, f.conn.First(&stored, "id = ?", quote.ID).Error)
	assert.Equal(t, enums.QuoteStatusConverted, stored.Status)
	require.NotNil(t, stored.ConvertedInvoiceID)
	assert.Equal(t, invoice.ID, *stored.ConvertedInvoiceID)

	_, err = f.svc.CreateFromQuote(ctx, f.tenantID, quote.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	entries, err := f.auditRepo.ListByEntity(ctx, f.tenantID, audit.EntityQuote, quote.ID, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateFromQuoteRequiresAccepted(t *testing.T) {
	f := setup(t)
	quote := f.acceptedQuote(t, enums.QuoteStatusSent)

	_, err := f.svc.CreateFromQuote(context.Background(), f.tenantID, quote.ID, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.CreateFromQuote(context.Background(), f.tenantID, uuid.New(), nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMarkOverdueAlertsOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.sent(t)
	f.manual(t)

	n, err := f.svc.MarkOverdue(ctx, today.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Zero(t, n, "not due yet")

	n, err = f.svc.MarkOverdue(ctx, today.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.Get(ctx, f.tenantID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusOverdue, got.Status)

	n, err = f.svc.MarkOverdue(ctx, today.AddDate(0, 3, 0))
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	require.NoError(t, f.conn.Model(&models.Alert{}).Where("tenant_id = ? AND type = ?", f.tenantID, enums.AlertTypeInvoiceOverdue).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = f.svc.RecordPayment(ctx, f.tenantID, invoice.ID, nil, PaymentInput{Amount: 5, Method: "cash"})
	assert.NoError(t, err, "overdue invoices still accept payments")
}

func TestAttachAndApplyPaymentEvent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	invoice := f.sent(t)
	pi := "pi_123"

	_, err := f.svc.AttachStripeInvoice(ctx, f.tenantID, invoice.ID, nil, AttachStripeInput{StripeInvoiceID: "ch_bad"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.AttachStripeInvoice(ctx, f.tenantID, invoice.ID, &f.userID, AttachStripeInput{StripeInvoiceID: "in_123", StripePaymentIntentID: &pi})
	require.NoError(t, err)

	other := f.sent(t)
	_, err = f.svc.AttachStripeInvoice(ctx, f.tenantID, other.ID, nil, AttachStripeInput{StripeInvoiceID: "in_123"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var applied *models.Invoice
	require.NoError(t, f.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		applied, err = f.svc.ApplyPaymentEvent(ctx, tx, PaymentEvent{
			Kind:            PaymentEventPaid,
			StripeInvoiceID: "in_123",
			AmountPaid:      invoice.TotalTTC,
			At:              today.Add(time.Hour),
		})
		return err
	}))
	require.NotNil(t, applied)
	assert.Equal(t, enums.InvoiceStatusPaid, applied.Status)
	assert.Zero(t, applied.Balance())

	payments, err := f.svc.Payments(ctx, f.tenantID, invoice.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, enums.PaymentMethodStripe, payments[0].Method)

	require.NoError(t, f.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		applied, err = f.svc.ApplyPaymentEvent(ctx, tx, PaymentEvent{Kind: PaymentEventRefunded, PaymentIntentID: "pi_123"})
		return err
	}))
	assert.Equal(t, enums.InvoiceStatusRefunded, applied.Status)
	assert.Equal(t, enums.PaymentStatusRefunded, applied.PaymentStatus)

	var count int64
	require.NoError(t, f.conn.Model(&models.Alert{}).Where("tenant_id = ?", f.tenantID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestApplyPaymentEventUnknownInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		got, err := f.svc.ApplyPaymentEvent(ctx, tx, PaymentEvent{Kind: PaymentEventPaid, StripeInvoiceID: "in_nope"})
		assert.Nil(t, got)
		return err
	}))

	_, err := f.svc.ApplyPaymentEvent(ctx, nil, PaymentEvent{Kind: PaymentEventPaid})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestListAndExport(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.manual(t)
	issued := f.sent(t)

	status := enums.InvoiceStatusSent
	page, err := f.svc.List(ctx, f.tenantID, ListFilter{Status: &status}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, issued.ID, page.Items[0].ID)

	_, err = f.svc.List(ctx, f.tenantID, ListFilter{}, pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	rows, err := f.svc.ListForExport(ctx, f.tenantID, today.AddDate(0, -1, 0), today.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Len(t, rows, 1, "drafts are not exported")

	_, err = f.svc.ListForExport(ctx, f.tenantID, today, today)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
