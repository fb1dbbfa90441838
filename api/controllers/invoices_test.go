package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermolaq/atelier-backend/internal/invoices"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

type stubInvoices struct {
	invoices.Service

	filter  *invoices.ListFilter
	payment *invoices.PaymentInput
	err     error
}

func (s *stubInvoices) List(_ context.Context, _ uuid.UUID, filter invoices.ListFilter, _ pagination.Params) (*types.Page[models.Invoice], error) {
	s.filter = &filter
	return &types.Page[models.Invoice]{Items: []models.Invoice{}}, nil
}

func (s *stubInvoices) Get(_ context.Context, _, id uuid.UUID) (*models.Invoice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Invoice{ID: id, Number: "FAC-2026-0007"}, nil
}

func (s *stubInvoices) Payments(_ context.Context, _, _ uuid.UUID) ([]models.Payment, error) {
	return []models.Payment{{Amount: 50}}, nil
}

func (s *stubInvoices) RecordPayment(_ context.Context, _, id uuid.UUID, _ *uuid.UUID, input invoices.PaymentInput) (*models.Invoice, error) {
	s.payment = &input
	if s.err != nil {
		return nil, s.err
	}
	return &models.Invoice{ID: id}, nil
}

func (s *stubInvoices) Cancel(_ context.Context, _, id uuid.UUID, _ *uuid.UUID) (*invoices.CancelResult, error) {
	return &invoices.CancelResult{
		Invoice:    &models.Invoice{ID: id, Status: enums.InvoiceStatusCancelled},
		CreditNote: &models.Invoice{ID: uuid.New(), Kind: enums.InvoiceKindCreditNote},
	}, nil
}

func TestListInvoicesFilter(t *testing.T) {
	stub := &stubInvoices{}
	rec := serve(t, ListInvoices(stub, testLogger()), call{method: http.MethodGet, target: "/api/v1/invoices?status=overdue&kind=credit_note&from=2026-02-01&to=2026-02-28"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, enums.InvoiceStatusOverdue, *stub.filter.Status)
	assert.Equal(t, enums.InvoiceKindCreditNote, *stub.filter.Kind)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *stub.filter.From)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *stub.filter.To, "to is an inclusive day")

	for _, target := range []string{
		"/api/v1/invoices?kind=receipt",
		"/api/v1/invoices?status=lost",
		"/api/v1/invoices?from=01/02/2026",
	} {
		rec = serve(t, ListInvoices(stub, testLogger()), call{method: http.MethodGet, target: target})
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetInvoiceIncludesPayments(t *testing.T) {
	id := uuid.New().String()
	rec := serve(t, GetInvoice(&stubInvoices{}, testLogger()), call{method: http.MethodGet, target: "/api/v1/invoices/" + id, params: map[string]string{"id": id}})
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Invoice  models.Invoice   `json:"invoice"`
		Payments []models.Payment `json:"payments"`
	}
	decodeData(t, rec, &detail)
	assert.Equal(t, "FAC-2026-0007", detail.Invoice.Number)
	assert.Len(t, detail.Payments, 1)
}

func TestRecordInvoicePayment(t *testing.T) {
	id := uuid.New().String()
	params := map[string]string{"id": id}

	stub := &stubInvoices{}
	rec := serve(t, RecordInvoicePayment(stub, testLogger()), call{method: http.MethodPost, target: "/payments", body: `{"amount":120.5,"method":"transfer"}`, params: params})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 120.5, stub.payment.Amount)

	rec = serve(t, RecordInvoicePayment(stub, testLogger()), call{method: http.MethodPost, target: "/payments", body: `{"amount":0,"method":"transfer"}`, params: params})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, RecordInvoicePayment(stub, testLogger()), call{method: http.MethodPost, target: "/payments", body: `{"amount":10,"method":"bitcoin"}`, params: params})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stub = &stubInvoices{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invoice is already paid")}
	rec = serve(t, RecordInvoicePayment(stub, testLogger()), call{method: http.MethodPost, target: "/payments", body: `{"amount":10,"method":"cash"}`, params: params})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCancelInvoiceReturnsCreditNote(t *testing.T) {
	id := uuid.New().String()
	rec := serve(t, CancelInvoice(&stubInvoices{}, testLogger()), call{method: http.MethodPost, target: "/cancel", params: map[string]string{"id": id}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"credit_note"`)
	assert.Contains(t, rec.Body.String(), `"kind":"credit_note"`)
}
