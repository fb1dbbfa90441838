package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/thermolaq/atelier-backend/internal/i18n"
	"github.com/thermolaq/atelier-backend/internal/ral"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Company is the issuing workshop as printed in the letterhead.
type Company struct {
	Name          string
	Address       string
	Email         string
	Phone         string
	SIRET         string
	VATNumber     string
	IBAN          string
	LegalMentions string
}

// CompanyFrom assembles the letterhead from the tenant profile and settings.
func CompanyFrom(tenant models.Tenant, settings models.ShopSettings) Company {
	name := tenant.Name
	if tenant.LegalName != nil && *tenant.LegalName != "" {
		name = *tenant.LegalName
	}
	return Company{
		Name:          name,
		Address:       deref(tenant.Address),
		Email:         deref(tenant.Email),
		Phone:         deref(tenant.Phone),
		SIRET:         deref(tenant.SIRET),
		VATNumber:     deref(tenant.VATNumber),
		IBAN:          deref(settings.IBAN),
		LegalMentions: deref(settings.LegalMentions),
	}
}

// Party is the addressee block.
type Party struct {
	Name      string
	Contact   string
	Lines     []string
	VATNumber string
}

func partyFrom(c models.Client) Party {
	p := Party{Name: c.Name, Contact: deref(c.ContactName), VATNumber: deref(c.VATNumber)}
	if a := deref(c.Address); a != "" {
		p.Lines = append(p.Lines, a)
	}
	if city := strings.TrimSpace(deref(c.PostalCode) + " " + deref(c.City)); city != "" {
		p.Lines = append(p.Lines, city)
	}
	if e := deref(c.Email); e != "" {
		p.Lines = append(p.Lines, e)
	}
	return p
}

// QuoteDoc is everything needed to print a quote.
type QuoteDoc struct {
	Company Company
	Client  models.Client
	Quote   models.Quote
	RALCode string
	Lang    string
}

// InvoiceDoc prints an invoice or a credit note.
type InvoiceDoc struct {
	Company Company
	Client  models.Client
	Invoice models.Invoice
	Lang    string
}

// DeliveryNoteDoc lists what leaves the workshop, without prices.
type DeliveryNoteDoc struct {
	Company   Company
	Client    models.Client
	Invoice   models.Invoice
	Reference string
	RALCode   string
	Date      time.Time
	Lang      string
}

// view is the locale-formatted document shared by the HTML and PDF outputs.
type view struct {
	Lang       string
	L          map[string]string
	Theme      Theme
	Kind       string
	Title      string
	Number     string
	Subtitle   string
	Dates      []labelled
	Company    Company
	Client     Party
	RAL        string
	ShowPrices bool
	Lines      []viewLine
	Totals     []labelled
	GrandTotal labelled
	Notes      string
	Footer     []string
	Signature  string
}

type labelled struct {
	Label string
	Value string
}

type viewLine struct {
	Designation string
	Detail      string
	Quantity    string
	Area        string
	UnitPrice   string
	Amount      string
}

func newView(lang string, theme Theme, kind string) view {
	lang = i18n.Normalize(lang)
	return view{Lang: lang, L: i18n.Dictionary(lang), Theme: theme, Kind: kind, ShowPrices: true}
}

func (v view) t(key string) string {
	if s, ok := v.L[key]; ok {
		return s
	}
	return key
}

func quoteView(doc QuoteDoc, theme Theme) view {
	v := newView(doc.Lang, theme, "quote")
	q := doc.Quote
	v.Title = v.t("doc.quote")
	v.Number = q.Number
	v.Subtitle = deref(q.Title)
	created := q.CreatedAt
	v.Dates = []labelled{{v.t("doc.date"), Date(&created, v.Lang)}}
	if q.ValidUntil != nil {
		v.Dates = append(v.Dates, labelled{v.t("doc.valid_until"), Date(q.ValidUntil, v.Lang)})
	}
	v.Company = doc.Company
	v.Client = partyFrom(doc.Client)
	v.RAL = ralLabel(doc.RALCode, v.Lang)
	for _, item := range q.Items {
		v.Lines = append(v.Lines, quoteLine(item, v.Lang))
	}
	v.Totals = append(v.Totals, labelled{v.t("doc.subtotal"), Money(q.TotalSaleHTGross, v.Lang)})
	if q.DiscountAmount > 0 {
		v.Totals = append(v.Totals, labelled{v.t("doc.discount"), "-" + Money(q.DiscountAmount, v.Lang)})
	}
	v.Totals = append(v.Totals,
		labelled{v.t("doc.total_ht"), Money(q.TotalSaleHT, v.Lang)},
		labelled{fmt.Sprintf("%s %s %%", v.t("doc.vat"), Number(q.VATRatePct, 2, v.Lang)), Money(q.TotalVAT, v.Lang)},
	)
	v.GrandTotal = labelled{v.t("doc.total_ttc"), Money(q.TotalTTC, v.Lang)}
	v.Notes = deref(q.Notes)
	v.Signature = v.t("doc.signature")
	v.Footer = footer(doc.Company, v)
	return v
}

func quoteLine(item types.QuoteItem, lang string) viewLine {
	dims := Number(item.LengthMM, 0, lang) + " × " + Number(item.WidthMM, 0, lang)
	if item.HeightMM != nil && *item.HeightMM > 0 {
		dims += " × " + Number(*item.HeightMM, 0, lang)
	}
	layers := make([]string, 0, len(item.Layers))
	for _, l := range item.Layers {
		label := string(l.Type)
		if l.Powder != nil && l.Powder.Reference != "" {
			label += " " + l.Powder.Reference
		}
		layers = append(layers, label)
	}
	detail := dims + " mm"
	if len(layers) > 0 {
		detail += " · " + strings.Join(layers, ", ")
	}
	unit := 0.0
	if item.Quantity > 0 {
		unit = item.SalePriceHT / float64(item.Quantity)
	}
	return viewLine{
		Designation: item.Designation,
		Detail:      detail,
		Quantity:    fmt.Sprintf("%d", item.Quantity),
		Area:        Number(item.AreaM2, 3, lang),
		UnitPrice:   Money(unit, lang),
		Amount:      Money(item.SalePriceHT, lang),
	}
}

func invoiceView(doc InvoiceDoc, theme Theme) view {
	inv := doc.Invoice
	kind := "invoice"
	if inv.Kind == enums.InvoiceKindCreditNote {
		kind = "credit_note"
	}
	v := newView(doc.Lang, theme, kind)
	v.Title = v.t("doc." + kind)
	v.Number = inv.Number
	issued := inv.IssuedAt
	if issued == nil {
		created := inv.CreatedAt
		issued = &created
	}
	v.Dates = []labelled{{v.t("doc.date"), Date(issued, v.Lang)}}
	if inv.DueAt != nil && kind == "invoice" {
		v.Dates = append(v.Dates, labelled{v.t("doc.due_date"), Date(inv.DueAt, v.Lang)})
	}
	v.Company = doc.Company
	v.Client = partyFrom(doc.Client)
	for _, line := range inv.Lines {
		v.Lines = append(v.Lines, invoiceLine(line, v.Lang))
	}
	if inv.DiscountAmount > 0 {
		v.Totals = append(v.Totals,
			labelled{v.t("doc.subtotal"), Money(inv.Lines.SumHT(), v.Lang)},
			labelled{v.t("doc.discount"), "-" + Money(inv.DiscountAmount, v.Lang)},
		)
	}
	v.Totals = append(v.Totals,
		labelled{v.t("doc.total_ht"), Money(inv.TotalHT, v.Lang)},
		labelled{fmt.Sprintf("%s %s %%", v.t("doc.vat"), Number(inv.VATRatePct, 2, v.Lang)), Money(inv.TotalVAT, v.Lang)},
	)
	v.GrandTotal = labelled{v.t("doc.total_ttc"), Money(inv.TotalTTC, v.Lang)}
	if kind == "invoice" && inv.AmountPaid > 0 {
		v.Totals = append(v.Totals, labelled{v.t("doc.amount_paid"), Money(inv.AmountPaid, v.Lang)})
		v.GrandTotal = labelled{v.t("doc.balance"), Money(inv.Balance(), v.Lang)}
	}
	v.Notes = deref(inv.Notes)
	v.Footer = footer(doc.Company, v)
	if kind == "invoice" {
		v.Footer = append(v.Footer, v.t("doc.late_penalties"))
	}
	return v
}

func invoiceLine(line types.InvoiceLine, lang string) viewLine {
	out := viewLine{
		Designation: line.Designation,
		Quantity:    Number(line.Quantity, 2, lang),
		UnitPrice:   Money(line.UnitPriceHT, lang),
		Amount:      Money(line.TotalHT, lang),
	}
	if line.AreaM2 > 0 {
		out.Area = Number(line.AreaM2, 3, lang)
	}
	if line.Unit != "" {
		out.Quantity += " " + line.Unit
	}
	return out
}

func deliveryNoteView(doc DeliveryNoteDoc, theme Theme) view {
	v := newView(doc.Lang, theme, "delivery_note")
	v.ShowPrices = false
	v.Title = v.t("doc.delivery_note")
	v.Number = doc.Reference
	if v.Number == "" {
		v.Number = doc.Invoice.Number
	}
	date := doc.Date
	if date.IsZero() {
		date = time.Now()
	}
	v.Dates = []labelled{{v.t("doc.date"), Date(&date, v.Lang)}}
	if doc.Invoice.Number != "" && doc.Invoice.Number != v.Number {
		v.Dates = append(v.Dates, labelled{v.t("doc.invoice"), doc.Invoice.Number})
	}
	v.Company = doc.Company
	v.Client = partyFrom(doc.Client)
	v.RAL = ralLabel(doc.RALCode, v.Lang)
	var pieces float64
	for _, line := range doc.Invoice.Lines {
		l := invoiceLine(line, v.Lang)
		l.UnitPrice, l.Amount = "", ""
		v.Lines = append(v.Lines, l)
		pieces += line.Quantity
	}
	v.GrandTotal = labelled{v.t("doc.quantity"), Number(pieces, 2, v.Lang) + " " + v.t("doc.pieces")}
	v.Signature = v.t("doc.received_by")
	v.Footer = footer(doc.Company, v)
	return v
}

func ralLabel(code, lang string) string {
	code = ral.Normalize(code)
	if code == "" {
		return ""
	}
	if c, ok := ral.Lookup(code); ok {
		return "RAL " + c.Code + " · " + c.Name(lang)
	}
	return "RAL " + code
}

func footer(c Company, v view) []string {
	var ids []string
	if c.SIRET != "" {
		ids = append(ids, v.t("doc.siret")+" "+c.SIRET)
	}
	if c.VATNumber != "" {
		ids = append(ids, v.t("doc.vat_number")+" "+c.VATNumber)
	}
	if c.IBAN != "" && v.ShowPrices {
		ids = append(ids, "IBAN "+c.IBAN)
	}
	var out []string
	if len(ids) > 0 {
		out = append(out, strings.Join(ids, " · "))
	}
	if c.LegalMentions != "" {
		out = append(out, c.LegalMentions)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
