package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

func TestResolveTheme(t *testing.T) {
	theme := ResolveTheme("modern", "#ABCDEF", "#123456")
	assert.Equal(t, Theme{Template: enums.PDFTemplateModern, Primary: "#abcdef", Accent: "#123456"}, theme)

	theme = ResolveTheme("baroque", "red", "#12345")
	assert.Equal(t, themeDefaults[enums.PDFTemplateClassic], theme)

	theme = ResolveTheme(" Minimal ", "", "#00ff00")
	assert.Equal(t, enums.PDFTemplateMinimal, theme.Template)
	assert.Equal(t, "#111827", theme.Primary)
	assert.Equal(t, "#00ff00", theme.Accent)
}

func TestRGB(t *testing.T) {
	r, g, b := rgb("#f97316")
	assert.Equal(t, []int{249, 115, 22}, []int{r, g, b})

	r, g, b = rgb("nope")
	assert.Equal(t, []int{0, 0, 0}, []int{r, g, b})
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1 234,50 €", Money(1234.5, "fr"))
	assert.Equal(t, "€1,234.50", Money(1234.5, "en"))
	assert.Equal(t, "0,00 €", Money(0, "fr"))
	assert.Equal(t, "-12,35 €", Money(-12.345, "fr"))
	assert.Equal(t, "1 000 000,00 €", Money(1e6, "fr"))
	assert.Equal(t, "999,99 €", Money(999.99, ""))
}

func TestNumberAndDate(t *testing.T) {
	assert.Equal(t, "1,6", Number(1.6, 2, "fr"))
	assert.Equal(t, "13.68", Number(13.68, 3, "en"))
	assert.Equal(t, "4000", Number(4000, 0, "fr"))

	d := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "03/03/2025", Date(&d, "fr"))
	assert.Equal(t, "2025-03-03", Date(&d, "en"))
	assert.Empty(t, Date(nil, "fr"))
}

func TestRenderQuoteHTML(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	quote, _, company, client := sampleDocuments()
	out, err := r.RenderQuote(QuoteDoc{Company: company, Client: client, Quote: quote, RALCode: "RAL 7016", Lang: "fr"},
		ResolveTheme("classic", "#112233", ""))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Devis")
	assert.Contains(t, html, "DEV-2025-0042")
	assert.Contains(t, html, "Métallerie Dupont")
	assert.Contains(t, html, "Portail coulissant")
	assert.Contains(t, html, "1 260,00 €")
	assert.Contains(t, html, "RAL 7016")
	assert.Contains(t, html, "#112233")
	assert.Contains(t, html, "theme-classic")
	assert.Contains(t, html, "Valable jusqu&#39;au")
}

func TestRenderInvoiceHTML_EnglishWithBalance(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, invoice, company, client := sampleDocuments()
	out, err := r.RenderInvoice(InvoiceDoc{Company: company, Client: client, Invoice: invoice, Lang: "en"},
		ResolveTheme("modern", "", ""))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Invoice")
	assert.Contains(t, html, "FAC-2025-0017")
	assert.Contains(t, html, "Already paid")
	assert.Contains(t, html, "Balance due")
	assert.Contains(t, html, "€860.00")
	assert.Contains(t, html, "Late payment penalties")
	assert.Contains(t, html, "theme-modern")
}

func TestRenderInvoiceHTML_CreditNote(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	credit := models.Invoice{
		Number:   "FAC-2025-0018",
		Kind:     enums.InvoiceKindCreditNote,
		Lines:    types.InvoiceLines{{Designation: "Annulation", Quantity: 1, UnitPriceHT: 100, TotalHT: 100}},
		TotalHT:  100,
		TotalTTC: 120,
	}
	out, err := r.RenderInvoice(InvoiceDoc{Client: models.Client{Name: "Client"}, Invoice: credit, Lang: "fr"}, ResolveTheme("", "", ""))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Avoir")
	assert.NotContains(t, string(out), "Pénalités")
}

func TestRenderDeliveryNote_HidesPrices(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, invoice, company, client := sampleDocuments()
	out, err := r.RenderDeliveryNote(DeliveryNoteDoc{
		Company: company,
		Client:  client,
		Invoice: invoice,
		RALCode: "9005",
		Date:    time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Lang:    "fr",
	}, ResolveTheme("minimal", "", ""))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "Bon de livraison")
	assert.Contains(t, html, "Garde-corps")
	assert.Contains(t, html, "RAL 9005")
	assert.Contains(t, html, "7 pièces")
	assert.NotContains(t, html, "PU HT")
	assert.NotContains(t, html, "612,00 €")
	assert.NotContains(t, html, "IBAN")
}

func TestPreview(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, kind := range []DocKind{DocQuote, DocInvoice, DocDeliveryNote, ""} {
		out, err := r.Preview(kind, "modern", "#ff0000", "javascript:alert(1)", "fr")
		require.NoError(t, err, kind)
		assert.Contains(t, string(out), "#ff0000")
		assert.Contains(t, string(out), "#f59e0b", "invalid accent falls back to the template default")
		assert.NotContains(t, string(out), "javascript")
	}

	_, err = r.Preview("receipt", "", "", "", "fr")
	require.Error(t, err)
}

func TestPDFOutputs(t *testing.T) {
	quote, invoice, company, client := sampleDocuments()
	theme := ResolveTheme("classic", "", "")

	out, err := QuotePDF(QuoteDoc{Company: company, Client: client, Quote: quote, Lang: "fr"}, theme)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	out, err = InvoicePDF(InvoiceDoc{Company: company, Client: client, Invoice: invoice, Lang: "en"}, ResolveTheme("modern", "", ""))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	out, err = DeliveryNotePDF(DeliveryNoteDoc{Company: company, Client: client, Invoice: invoice, Lang: "fr"}, ResolveTheme("minimal", "", ""))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestCompanyFrom(t *testing.T) {
	legal := "Thermo SAS"
	iban := "FR76 0000"
	c := CompanyFrom(models.Tenant{Name: "Thermo", LegalName: &legal}, models.ShopSettings{IBAN: &iban})
	assert.Equal(t, "Thermo SAS", c.Name)
	assert.Equal(t, "FR76 0000", c.IBAN)

	c = CompanyFrom(models.Tenant{Name: "Thermo"}, models.ShopSettings{})
	assert.Equal(t, "Thermo", c.Name)
}
