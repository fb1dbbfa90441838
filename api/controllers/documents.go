package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/internal/documents"
	"github.com/thermolaq/atelier-backend/pkg/logger"
)

// DocumentRenderer produces printable quotes, invoices and delivery notes.
type DocumentRenderer interface {
	Quote(ctx context.Context, tenantID, id uuid.UUID, lang string, format documents.Format) (*documents.File, error)
	Invoice(ctx context.Context, tenantID, id uuid.UUID, lang string, format documents.Format) (*documents.File, error)
	DeliveryNote(ctx context.Context, tenantID, invoiceID uuid.UUID, lang string, format documents.Format) (*documents.File, error)
	Preview(kind, templateName, primary, accent, lang string) (*documents.File, error)
}

type renderFunc func(ctx context.Context, tenantID, id uuid.UUID, lang string, format documents.Format) (*documents.File, error)

func QuoteDocument(docs DocumentRenderer, format documents.Format, logg *logger.Logger) http.HandlerFunc {
	if docs == nil {
		return serveDocument(nil, format, logg)
	}
	return serveDocument(docs.Quote, format, logg)
}

func InvoiceDocument(docs DocumentRenderer, format documents.Format, logg *logger.Logger) http.HandlerFunc {
	if docs == nil {
		return serveDocument(nil, format, logg)
	}
	return serveDocument(docs.Invoice, format, logg)
}

// DeliveryNoteDocument renders the bon de livraison of an invoice. Defaults
// to HTML; ?format=pdf downloads it.
func DeliveryNoteDocument(docs DocumentRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if docs == nil {
			unavailable(w, r, logg, "document service")
			return
		}
		format, err := documents.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		serveDocument(docs.DeliveryNote, format, logg)(w, r)
	}
}

func serveDocument(render renderFunc, format documents.Format, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if render == nil {
			unavailable(w, r, logg, "document service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		file, err := render(r.Context(), tenantID, id, requestLanguage(r), format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeDocument(w, file)
	}
}

// PreviewDocument renders sample data with the requested theme so the
// settings screen can show it before saving.
func PreviewDocument(docs DocumentRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if docs == nil {
			unavailable(w, r, logg, "document service")
			return
		}
		if _, _, ok := scope(w, r, logg); !ok {
			return
		}
		q := r.URL.Query()
		file, err := docs.Preview(q.Get("doc"), q.Get("template"), q.Get("primary"), q.Get("accent"), requestLanguage(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeDocument(w, file)
	}
}

// writeDocument shows HTML inline and downloads everything else.
func writeDocument(w http.ResponseWriter, file *documents.File) {
	if file.ContentType == documents.ContentTypeHTML {
		responses.WriteBytes(w, file.ContentType, "", file.Body)
		return
	}
	responses.WriteBytes(w, file.ContentType, file.Name, file.Body)
}
