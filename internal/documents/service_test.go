package documents

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/pdf"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

type fixture struct {
	svc      *Service
	tenantID uuid.UUID
	quote    models.Quote
	invoice  models.Invoice
	credit   models.Invoice
}

func setup(t *testing.T) fixture {
	t.Helper()
	tenantID := uuid.New()
	client := models.Client{ID: uuid.New(), TenantID: tenantID, Name: "Ferronnerie Martin"}
	legal := "Atelier Ocre SARL"
	tenant := models.Tenant{ID: tenantID, Name: "Atelier Ocre", LegalName: &legal, Locale: "fr"}

	quote := models.Quote{
		ID:       uuid.New(),
		TenantID: tenantID,
		ClientID: client.ID,
		Number:   "DEV-2026-0007",
		Items: types.QuoteItems{{
			Designation: "Portail",
			Quantity:    2,
			Layers: []types.Layer{
				{Type: enums.LayerTypePrimer, Powder: &types.PowderSnapshot{Reference: "Primaire zinc", RALCode: "7035"}},
				{Type: enums.LayerTypeBase, Powder: &types.PowderSnapshot{Reference: "Anthracite", RALCode: "7016"}},
			},
			SalePriceHT: 300,
		}},
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	quote.TotalSaleHT = 300
	quote.TotalTTC = 360

	issued := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	invoice := models.Invoice{
		ID:       uuid.New(),
		TenantID: tenantID,
		ClientID: client.ID,
		QuoteID:  &quote.ID,
		Number:   "FAC-2026-0003",
		Kind:     enums.InvoiceKindInvoice,
		Status:   enums.InvoiceStatusSent,
		Lines:    types.InvoiceLines{{Designation: "Portail", Quantity: 2, UnitPriceHT: 150, TotalHT: 300}},
		TotalHT:  300,
		TotalTTC: 360,
		IssuedAt: &issued,
	}
	credit := invoice
	credit.ID = uuid.New()
	credit.Kind = enums.InvoiceKindCreditNote
	credit.Number = "AV-2026-0001"

	renderer, err := pdf.NewRenderer()
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Quotes:   stubQuotes{quote.ID: quote},
		Invoices: stubInvoices{invoice.ID: invoice, credit.ID: credit},
		Clients:  stubClients{client.ID: client},
		Tenants:  stubTenants{tenantID: tenant},
		Settings: stubSettings{},
		Renderer: renderer,
		Now:      func() time.Time { return time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return fixture{svc: svc, tenantID: tenantID, quote: quote, invoice: invoice, credit: credit}
}

func TestQuoteHTML(t *testing.T) {
	f := setup(t)
	file, err := f.svc.Quote(context.Background(), f.tenantID, f.quote.ID, "", FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeHTML, file.ContentType)
	assert.Empty(t, file.Name)
	html := string(file.Body)
	assert.Contains(t, html, "DEV-2026-0007")
	assert.Contains(t, html, "Atelier Ocre SARL")
	assert.Contains(t, html, "7016", "base coat colour is shown")
}

func TestQuotePDF(t *testing.T) {
	f := setup(t)
	file, err := f.svc.Quote(context.Background(), f.tenantID, f.quote.ID, "en", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, ContentTypePDF, file.ContentType)
	assert.Equal(t, "DEV-2026-0007.pdf", file.Name)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestInvoiceForeignTenantNotFound(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Invoice(context.Background(), uuid.New(), f.invoice.ID, "", FormatHTML)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeliveryNote(t *testing.T) {
	f := setup(t)
	file, err := f.svc.DeliveryNote(context.Background(), f.tenantID, f.invoice.ID, "fr", FormatHTML)
	require.NoError(t, err)
	html := string(file.Body)
	assert.Contains(t, html, "BL-FAC-2026-0003")
	assert.Contains(t, html, "7016")
	assert.NotContains(t, html, "360,00")

	pdfFile, err := f.svc.DeliveryNote(context.Background(), f.tenantID, f.invoice.ID, "fr", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "BL-FAC-2026-0003.pdf", pdfFile.Name)

	_, err = f.svc.DeliveryNote(context.Background(), f.tenantID, f.credit.ID, "fr", FormatHTML)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPreviewDefaultsToQuote(t *testing.T) {
	f := setup(t)
	file, err := f.svc.Preview("", "modern", "#123456", "#abcdef", "fr")
	require.NoError(t, err)
	assert.Contains(t, string(file.Body), "#123456")

	_, err = f.svc.Preview("receipt", "modern", "", "", "fr")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseFormat(t *testing.T) {
	got, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, got)
	got, err = ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, got)
	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestMainRALFallsBackToAnyCoat(t *testing.T) {
	items := types.QuoteItems{{Layers: []types.Layer{
		{Type: enums.LayerTypeVarnish, Powder: &types.PowderSnapshot{RALCode: "9010"}},
	}}}
	assert.Equal(t, "9010", mainRAL(items))
	assert.Equal(t, "", mainRAL(nil))
}

type stubQuotes map[uuid.UUID]models.Quote

func (s stubQuotes) Get(_ context.Context, tenantID, id uuid.UUID) (*models.Quote, error) {
	q, ok := s[id]
	if !ok || q.TenantID != tenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return &q, nil
}

type stubInvoices map[uuid.UUID]models.Invoice

func (s stubInvoices) Get(_ context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	inv, ok := s[id]
	if !ok || inv.TenantID != tenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	return &inv, nil
}

type stubClients map[uuid.UUID]models.Client

func (s stubClients) Get(_ context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	c, ok := s[id]
	if !ok || c.TenantID != tenantID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return &c, nil
}

type stubTenants map[uuid.UUID]models.Tenant

func (s stubTenants) FindByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	t, ok := s[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

type stubSettings struct{}

func (stubSettings) Get(_ context.Context, tenantID uuid.UUID) (models.ShopSettings, error) {
	return models.ShopSettings{
		TenantID:     tenantID,
		VATRatePct:   20,
		PDFTemplate:  enums.PDFTemplateClassic,
		PrimaryColor: "#1f2937",
		AccentColor:  "#f97316",
	}, nil
}
