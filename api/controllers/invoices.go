package controllers

import (
	"net/http"

	"github.com/thermolaq/atelier-backend/api/responses"
	"github.com/thermolaq/atelier-backend/api/validators"
	"github.com/thermolaq/atelier-backend/internal/invoices"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/logger"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
)

// ListInvoices filters by ?status=, ?client_id=, ?kind= and the issue date
// range ?from=&to= (inclusive days).
func ListInvoices(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "invoice service")
			return
		}
		tenantID, _, ok := scope(w, r, logg)
		if !ok {
			return
		}
		filter, err := invoiceFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), tenantID, filter, pagination.FromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func invoiceFilter(r *http.Request) (invoices.ListFilter, error) {
	var filter invoices.ListFilter
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status, err := enums.ParseInvoiceStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filter.Status = &status
	}
	switch kind := enums.InvoiceKind(q.Get("kind")); kind {
	case "":
	case enums.InvoiceKindInvoice, enums.InvoiceKindCreditNote:
		filter.Kind = &kind
	default:
		return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind")
	}
	clientID, err := validators.ParseQueryUUID(r, "client_id")
	if err != nil {
		return filter, err
	}
	filter.ClientID = clientID
	if filter.From, err = validators.ParseQueryDate(r, "from"); err != nil {
		return filter, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return filter, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	return filter, nil
}

// CreateInvoice issues a manual invoice, numbered at creation.
func CreateInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "invoice service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		var input invoices.CreateInput
		if !decode(w, r, logg, &input) {
			return
		}
		invoice, err := svc.Create(r.Context(), tenantID, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// invoiceDetail is an invoice with its recorded payments.
type invoiceDetail struct {
	Invoice  any `json:"invoice"`
	Payments any `json:"payments"`
}

func GetInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "invoice service")
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
		invoice, err := svc.Get(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payments, err := svc.Payments(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoiceDetail{Invoice: invoice, Payments: payments})
	}
}

func SendInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "invoice service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		invoice, err := svc.Send(r.Context(), tenantID, id, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// CancelInvoice cancels a draft outright; a sent invoice gets a credit note.
func CancelInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "invoice service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		result, err := svc.Cancel(r.Context(), tenantID, id, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func RecordInvoicePayment(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "invoice service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var input invoices.PaymentInput
		if !decode(w, r, logg, &input) {
			return
		}
		invoice, err := svc.RecordPayment(r.Context(), tenantID, id, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// AttachStripeInvoice links a local invoice to the processor invoice that
// collects it, so later webhook events can find it.
func AttachStripeInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "invoice service")
			return
		}
		tenantID, userID, ok := scope(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var input invoices.AttachStripeInput
		if !decode(w, r, logg, &input) {
			return
		}
		invoice, err := svc.AttachStripeInvoice(r.Context(), tenantID, id, userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}
