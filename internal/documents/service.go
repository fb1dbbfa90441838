// Package documents assembles printable quotes, invoices and delivery notes
// from stored rows and hands them to the renderer.
package documents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/internal/pdf"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Format is the requested output.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

// File is a rendered document. Name is empty for inline HTML.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type quoteReader interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Quote, error)
}

type invoiceReader interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
}

type clientReader interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
}

type tenantReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type settingsReader interface {
	Get(ctx context.Context, tenantID uuid.UUID) (models.ShopSettings, error)
}

type ServiceParams struct {
	Quotes   quoteReader
	Invoices invoiceReader
	Clients  clientReader
	Tenants  tenantReader
	Settings settingsReader
	Renderer *pdf.Renderer
	Now      func() time.Time
}

type Service struct {
	quotes   quoteReader
	invoices invoiceReader
	clients  clientReader
	tenants  tenantReader
	settings settingsReader
	renderer *pdf.Renderer
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Quotes == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quote service required")
	case params.Invoices == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice service required")
	case params.Clients == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "client service required")
	case params.Tenants == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "tenant repository required")
	case params.Settings == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings service required")
	case params.Renderer == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "renderer required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		quotes:   params.Quotes,
		invoices: params.Invoices,
		clients:  params.Clients,
		tenants:  params.Tenants,
		settings: params.Settings,
		renderer: params.Renderer,
		now:      now,
	}, nil
}

// ParseFormat defaults to HTML.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "format must be html or pdf")
}

type letterhead struct {
	company pdf.Company
	theme   pdf.Theme
	client  models.Client
	lang    string
}

func (s *Service) letterhead(ctx context.Context, tenantID, clientID uuid.UUID, lang string) (*letterhead, error) {
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	settings, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.Get(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = tenant.Locale
	}
	return &letterhead{
		company: pdf.CompanyFrom(*tenant, settings),
		theme:   pdf.ResolveTheme(string(settings.PDFTemplate), settings.PrimaryColor, settings.AccentColor),
		client:  *client,
		lang:    lang,
	}, nil
}

// Quote renders a stored quote.
func (s *Service) Quote(ctx context.Context, tenantID, id uuid.UUID, lang string, format Format) (*File, error) {
	quote, err := s.quotes.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	lh, err := s.letterhead(ctx, tenantID, quote.ClientID, lang)
	if err != nil {
		return nil, err
	}
	doc := pdf.QuoteDoc{
		Company: lh.company,
		Client:  lh.client,
		Quote:   *quote,
		RALCode: mainRAL(quote.Items),
		Lang:    lh.lang,
	}
	if format == FormatPDF {
		body, err := pdf.QuotePDF(doc, lh.theme)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote pdf")
		}
		return &File{Name: fileName(quote.Number, "pdf"), ContentType: ContentTypePDF, Body: body}, nil
	}
	body, err := s.renderer.RenderQuote(doc, lh.theme)
	if err != nil {
		return nil, err
	}
	return &File{ContentType: ContentTypeHTML, Body: body}, nil
}

// Invoice renders an invoice or credit note.
func (s *Service) Invoice(ctx context.Context, tenantID, id uuid.UUID, lang string, format Format) (*File, error) {
	invoice, err := s.invoices.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	lh, err := s.letterhead(ctx, tenantID, invoice.ClientID, lang)
	if err != nil {
		return nil, err
	}
	doc := pdf.InvoiceDoc{Company: lh.company, Client: lh.client, Invoice: *invoice, Lang: lh.lang}
	if format == FormatPDF {
		body, err := pdf.InvoicePDF(doc, lh.theme)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice pdf")
		}
		return &File{Name: fileName(invoice.Number, "pdf"), ContentType: ContentTypePDF, Body: body}, nil
	}
	body, err := s.renderer.RenderInvoice(doc, lh.theme)
	if err != nil {
		return nil, err
	}
	return &File{ContentType: ContentTypeHTML, Body: body}, nil
}

// DeliveryNote renders the price-less note handed over with the parts. The
// RAL shown is the one of the quote the invoice came from, when known.
func (s *Service) DeliveryNote(ctx context.Context, tenantID, invoiceID uuid.UUID, lang string, format Format) (*File, error) {
	invoice, err := s.invoices.Get(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Kind == enums.InvoiceKindCreditNote {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit notes have no delivery note")
	}
	lh, err := s.letterhead(ctx, tenantID, invoice.ClientID, lang)
	if err != nil {
		return nil, err
	}
	var ral string
	if invoice.QuoteID != nil {
		if quote, err := s.quotes.Get(ctx, tenantID, *invoice.QuoteID); err == nil {
			ral = mainRAL(quote.Items)
		}
	}
	doc := pdf.DeliveryNoteDoc{
		Company:   lh.company,
		Client:    lh.client,
		Invoice:   *invoice,
		Reference: "BL-" + invoice.Number,
		RALCode:   ral,
		Date:      s.now(),
		Lang:      lh.lang,
	}
	if format == FormatPDF {
		body, err := pdf.DeliveryNotePDF(doc, lh.theme)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render delivery note pdf")
		}
		return &File{Name: fileName(doc.Reference, "pdf"), ContentType: ContentTypePDF, Body: body}, nil
	}
	body, err := s.renderer.RenderDeliveryNote(doc, lh.theme)
	if err != nil {
		return nil, err
	}
	return &File{ContentType: ContentTypeHTML, Body: body}, nil
}

// Preview renders sample data with an unsaved theme.
func (s *Service) Preview(kind, templateName, primary, accent, lang string) (*File, error) {
	if kind == "" {
		kind = string(pdf.DocQuote)
	}
	body, err := s.renderer.Preview(pdf.DocKind(kind), templateName, primary, accent, lang)
	if err != nil {
		return nil, err
	}
	return &File{ContentType: ContentTypeHTML, Body: body}, nil
}

// mainRAL is the colour of the first base coat, falling back to any coat
// that names one.
func mainRAL(items types.QuoteItems) string {
	var fallback string
	for _, item := range items {
		for _, layer := range item.Layers {
			if layer.Powder == nil || layer.Powder.RALCode == "" {
				continue
			}
			if layer.Type == enums.LayerTypeBase {
				return layer.Powder.RALCode
			}
			if fallback == "" {
				fallback = layer.Powder.RALCode
			}
		}
	}
	return fallback
}

func fileName(number, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, number)
	if name == "" {
		name = "document"
	}
	return name + "." + ext
}
