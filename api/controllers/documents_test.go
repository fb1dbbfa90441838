package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermolaq/atelier-backend/internal/documents"
	"github.com/thermolaq/atelier-backend/internal/drafts"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
)

type stubDocuments struct {
	lang    string
	format  documents.Format
	kind    string
	tenant  uuid.UUID
	invoice uuid.UUID
}

func (s *stubDocuments) file(format documents.Format, name string) *documents.File {
	s.format = format
	if format == documents.FormatPDF {
		return &documents.File{Name: name + ".pdf", ContentType: documents.ContentTypePDF, Body: []byte("%PDF-1.7")}
	}
	return &documents.File{Name: name + ".html", ContentType: documents.ContentTypeHTML, Body: []byte("<html></html>")}
}

func (s *stubDocuments) Quote(_ context.Context, tenantID, _ uuid.UUID, lang string, format documents.Format) (*documents.File, error) {
	s.tenant, s.lang = tenantID, lang
	return s.file(format, "devis-DEV-2026-0001"), nil
}

func (s *stubDocuments) Invoice(_ context.Context, tenantID, _ uuid.UUID, lang string, format documents.Format) (*documents.File, error) {
	s.tenant, s.lang = tenantID, lang
	return s.file(format, "facture-FAC-2026-0001"), nil
}

func (s *stubDocuments) DeliveryNote(_ context.Context, _, invoiceID uuid.UUID, lang string, format documents.Format) (*documents.File, error) {
	s.invoice, s.lang = invoiceID, lang
	return s.file(format, "bl-FAC-2026-0001"), nil
}

func (s *stubDocuments) Preview(kind, _, _, _, lang string) (*documents.File, error) {
	if kind == "receipt" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown document kind")
	}
	s.kind, s.lang = kind, lang
	return s.file(documents.FormatHTML, "preview"), nil
}

func TestQuoteDocument(t *testing.T) {
	id := uuid.New().String()
	params := map[string]string{"id": id}

	t.Run("html is inline", func(t *testing.T) {
		docs := &stubDocuments{}
		rec := serve(t, QuoteDocument(docs, documents.FormatHTML, testLogger()), call{method: http.MethodGet, target: "/api/v1/quotes/" + id + "/html?lang=en", params: params})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, documents.ContentTypeHTML, rec.Header().Get("Content-Type"))
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "en", docs.lang)
		assert.Equal(t, testTenantID, docs.tenant)
	})

	t.Run("pdf is an attachment", func(t *testing.T) {
		docs := &stubDocuments{}
		rec := serve(t, QuoteDocument(docs, documents.FormatPDF, testLogger()), call{method: http.MethodGet, target: "/api/v1/quotes/" + id + "/pdf", params: params})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, documents.ContentTypePDF, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "devis-DEV-2026-0001.pdf")
		assert.Empty(t, docs.lang, "no language hint falls back to the workshop locale")
	})

	t.Run("accept-language", func(t *testing.T) {
		docs := &stubDocuments{}
		rec := serve(t, InvoiceDocument(docs, documents.FormatHTML, testLogger()), call{
			method: http.MethodGet,
			target: "/api/v1/invoices/" + id + "/html",
			params: params,
			header: map[string]string{"Accept-Language": "en-GB,en;q=0.8"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "en", docs.lang)
	})
}

func TestDeliveryNoteDocument(t *testing.T) {
	id := uuid.New()
	params := map[string]string{"id": id.String()}
	docs := &stubDocuments{}

	rec := serve(t, DeliveryNoteDocument(docs, testLogger()), call{method: http.MethodGet, target: "/delivery-note", params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, documents.FormatHTML, docs.format)
	assert.Equal(t, id, docs.invoice)

	rec = serve(t, DeliveryNoteDocument(docs, testLogger()), call{method: http.MethodGet, target: "/delivery-note?format=pdf", params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, documents.FormatPDF, docs.format)

	rec = serve(t, DeliveryNoteDocument(docs, testLogger()), call{method: http.MethodGet, target: "/delivery-note?format=docx", params: params})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreviewDocument(t *testing.T) {
	docs := &stubDocuments{}
	rec := serve(t, PreviewDocument(docs, testLogger()), call{method: http.MethodGet, target: "/api/v1/pdf/preview?doc=invoice&template=modern&primary=%23123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "invoice", docs.kind)

	rec = serve(t, PreviewDocument(docs, testLogger()), call{method: http.MethodGet, target: "/api/v1/pdf/preview?doc=receipt"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubDrafts struct {
	saved  map[string]json.RawMessage
	result *drafts.Result
	err    error
}

func (s *stubDrafts) Save(_ context.Context, _, _ uuid.UUID, key string, payload json.RawMessage) drafts.Result {
	if s.result != nil {
		return *s.result
	}
	if s.saved == nil {
		s.saved = map[string]json.RawMessage{}
	}
	s.saved[key] = payload
	return drafts.Result{Status: drafts.StatusSaved}
}

func (s *stubDrafts) Load(_ context.Context, _, _ uuid.UUID, key string) (*drafts.Draft, error) {
	if s.err != nil {
		return nil, s.err
	}
	payload, ok := s.saved[key]
	if !ok {
		return nil, nil
	}
	return &drafts.Draft{Payload: payload}, nil
}

func (s *stubDrafts) Discard(_ context.Context, _, _ uuid.UUID, key string) error {
	delete(s.saved, key)
	return s.err
}

func TestDrafts(t *testing.T) {
	store := &stubDrafts{}
	params := map[string]string{"key": "new-quote"}

	rec := serve(t, LoadDraft(store, testLogger()), call{method: http.MethodGet, target: "/api/v1/quotes/drafts/new-quote", params: params})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, SaveDraft(store, testLogger()), call{method: http.MethodPut, target: "/api/v1/quotes/drafts/new-quote", body: `{"title":"Portail"}`, params: params})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"saved"`)

	rec = serve(t, LoadDraft(store, testLogger()), call{method: http.MethodGet, target: "/api/v1/quotes/drafts/new-quote", params: params})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Portail"`)

	rec = serve(t, DiscardDraft(store, testLogger()), call{method: http.MethodDelete, target: "/api/v1/quotes/drafts/new-quote", params: params})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.saved)
}

func TestSaveDraftFailures(t *testing.T) {
	params := map[string]string{"key": "new-quote"}

	rejected := &stubDrafts{result: &drafts.Result{Status: drafts.StatusError, Error: "draft must be valid JSON"}}
	rec := serve(t, SaveDraft(rejected, testLogger()), call{method: http.MethodPut, target: "/d", body: `{`, params: params})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)

	rec = serve(t, SaveDraft(nil, testLogger()), call{method: http.MethodPut, target: "/d", body: `{}`, params: params})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeNotConfigured), errorCode(t, rec))

	broken := &stubDrafts{err: errors.New("redis down")}
	broken.err = pkgerrors.Wrap(pkgerrors.CodeDependency, broken.err, "load draft")
	rec = serve(t, LoadDraft(broken, testLogger()), call{method: http.MethodGet, target: "/d", params: params})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
