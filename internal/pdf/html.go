package pdf

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// DocKind selects which document a preview renders.
type DocKind string

const (
	DocQuote        DocKind = "quote"
	DocInvoice      DocKind = "invoice"
	DocDeliveryNote DocKind = "delivery_note"
)

// Renderer turns documents into printable HTML.
type Renderer struct {
	tpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tpl, err := template.New("document.html").
		Funcs(template.FuncMap{
			// theme colours are validated by ResolveTheme before they get here
			"css": func(s string) template.CSS { return template.CSS(s) },
		}).
		ParseFS(templateFS, "templates/document.html")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse document template")
	}
	return &Renderer{tpl: tpl}, nil
}

func (r *Renderer) RenderQuote(doc QuoteDoc, theme Theme) ([]byte, error) {
	return r.render(quoteView(doc, theme))
}

func (r *Renderer) RenderInvoice(doc InvoiceDoc, theme Theme) ([]byte, error) {
	return r.render(invoiceView(doc, theme))
}

func (r *Renderer) RenderDeliveryNote(doc DeliveryNoteDoc, theme Theme) ([]byte, error) {
	return r.render(deliveryNoteView(doc, theme))
}

// Preview renders kind with fictitious data so a workshop can judge a theme
// before saving it.
func (r *Renderer) Preview(kind DocKind, templateName, primary, accent, lang string) ([]byte, error) {
	theme := ResolveTheme(templateName, primary, accent)
	quote, invoice, company, client := sampleDocuments()
	switch kind {
	case DocInvoice:
		return r.RenderInvoice(InvoiceDoc{Company: company, Client: client, Invoice: invoice, Lang: lang}, theme)
	case DocDeliveryNote:
		return r.RenderDeliveryNote(DeliveryNoteDoc{
			Company:   company,
			Client:    client,
			Invoice:   invoice,
			Reference: "BL-2025-0001",
			RALCode:   "7016",
			Date:      *invoice.IssuedAt,
			Lang:      lang,
		}, theme)
	case DocQuote, "":
		return r.RenderQuote(QuoteDoc{Company: company, Client: client, Quote: quote, RALCode: "7016", Lang: lang}, theme)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown document kind").
			WithDetails(map[string]any{"doc": kind, "allowed": []DocKind{DocQuote, DocInvoice, DocDeliveryNote}})
	}
}

func (r *Renderer) render(v view) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, v); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render document")
	}
	return buf.Bytes(), nil
}

func sampleDocuments() (models.Quote, models.Invoice, Company, models.Client) {
	issued := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	valid := issued.AddDate(0, 0, 30)
	due := issued.AddDate(0, 0, 30)
	str := func(s string) *string { return &s }
	height := 40.0

	company := Company{
		Name:          "Atelier Thermolaquage Démo",
		Address:       "12 rue des Forges, 69007 Lyon",
		Email:         "contact@atelier-demo.fr",
		Phone:         "04 78 00 00 00",
		SIRET:         "123 456 789 00012",
		VATNumber:     "FR12123456789",
		IBAN:          "FR76 3000 6000 0112 3456 7890 189",
		LegalMentions: "SAS au capital de 10 000 €",
	}
	client := models.Client{
		Name:        "Métallerie Dupont",
		ContactName: str("Claire Dupont"),
		Address:     str("4 avenue de l'Industrie"),
		PostalCode:  str("69100"),
		City:        str("Villeurbanne"),
		Email:       str("claire@dupont-metal.fr"),
	}
	primer := types.Layer{Type: enums.LayerTypePrimer}
	base := types.Layer{Type: enums.LayerTypeBase, Powder: &types.PowderSnapshot{Reference: "RAL 7016 Sablé"}}
	items := types.QuoteItems{
		{
			Designation: "Portail coulissant",
			LengthMM:    4000,
			WidthMM:     1800,
			Quantity:    1,
			Layers:      []types.Layer{primer, base},
			AreaM2:      14.4,
			SalePriceHT: 612.00,
		},
		{
			Designation: "Garde-corps",
			LengthMM:    1200,
			WidthMM:     900,
			HeightMM:    &height,
			Quantity:    6,
			Layers:      []types.Layer{base},
			AreaM2:      13.68,
			SalePriceHT: 438.00,
		},
	}
	quote := models.Quote{
		Number:     "DEV-2025-0042",
		Title:      str("Thermolaquage portail et garde-corps"),
		Items:      items,
		ValidUntil: &valid,
		Notes:      str("Dégraissage et sablage inclus."),
		CreatedAt:  issued,
	}
	quote.TotalSaleHTGross = 1050
	quote.TotalSaleHT = 1050
	quote.VATRatePct = 20
	quote.TotalVAT = 210
	quote.TotalTTC = 1260

	invoice := models.Invoice{
		Number: "FAC-2025-0017",
		Kind:   enums.InvoiceKindInvoice,
		Lines: types.InvoiceLines{
			{Designation: "Portail coulissant", Quantity: 1, Unit: "u", UnitPriceHT: 612, TotalHT: 612, AreaM2: 14.4},
			{Designation: "Garde-corps", Quantity: 6, Unit: "u", UnitPriceHT: 73, TotalHT: 438, AreaM2: 13.68},
		},
		TotalHT:    1050,
		VATRatePct: 20,
		TotalVAT:   210,
		TotalTTC:   1260,
		AmountPaid: 400,
		IssuedAt:   &issued,
		DueAt:      &due,
		CreatedAt:  issued,
	}
	return quote, invoice, company, client
}
