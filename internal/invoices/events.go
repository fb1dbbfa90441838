package invoices

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
)

// ApplyPaymentEvent reconciles a processor event with the invoice it refers
// to, inside the caller's transaction. It returns nil, nil when no invoice
// matches: events for objects we never issued are ignored.
func (s *service) ApplyPaymentEvent(ctx context.Context, tx *gorm.DB, event PaymentEvent) (*models.Invoice, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment events require a transaction")
	}
	txRepo := s.repo.WithTx(tx)
	invoice, err := s.matchEvent(ctx, txRepo, event)
	if err != nil || invoice == nil {
		return nil, err
	}

	at := event.At.UTC()
	if event.At.IsZero() {
		at = s.now().UTC()
	}
	var alert *alerts.NewAlert
	switch event.Kind {
	case PaymentEventPaid:
		if invoice.Status == enums.InvoiceStatusPaid {
			return invoice, nil
		}
		amount := event.AmountPaid
		if amount <= 0 || exceedsBalance(invoice.AmountPaid, amount, invoice.TotalTTC) {
			amount = invoice.Balance()
		}
		ref := event.PaymentIntentID
		if ref == "" {
			ref = event.StripeInvoiceID
		}
		payment := &models.Payment{
			TenantID:    invoice.TenantID,
			InvoiceID:   invoice.ID,
			Amount:      cents(amount).InexactFloat64(),
			Method:      enums.PaymentMethodStripe,
			Status:      enums.PaymentStatusPaid,
			ExternalRef: &ref,
			PaidAt:      at,
		}
		if err := txRepo.CreatePayment(ctx, payment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe payment")
		}
		// a processor confirmation settles the invoice even if amounts drift by rounding
		invoice.AmountPaid = invoice.TotalTTC
		invoice.Status = enums.InvoiceStatusPaid
		invoice.PaymentStatus = enums.PaymentStatusPaid
		invoice.PaidAt = &at
		alert = &alerts.NewAlert{
			Type:    enums.AlertTypePaymentReceived,
			Title:   fmt.Sprintf("Paiement reçu pour %s", invoice.Number),
			Message: fmt.Sprintf("%.2f € encaissés via Stripe", payment.Amount),
		}
	case PaymentEventFailed:
		invoice.PaymentStatus = enums.PaymentStatusFailed
		alert = &alerts.NewAlert{
			Type:    enums.AlertTypePaymentFailed,
			Title:   fmt.Sprintf("Échec de paiement pour %s", invoice.Number),
			Message: "Le prélèvement Stripe a échoué.",
		}
	case PaymentEventRefunded:
		invoice.Status = enums.InvoiceStatusRefunded
		invoice.PaymentStatus = enums.PaymentStatusRefunded
		alert = &alerts.NewAlert{
			Type:    enums.AlertTypePaymentRefunded,
			Title:   fmt.Sprintf("Remboursement de %s", invoice.Number),
			Message: "Le paiement a été remboursé.",
		}
	case PaymentEventDisputed:
		invoice.Status = enums.InvoiceStatusDisputed
		alert = &alerts.NewAlert{
			Type:    enums.AlertTypePaymentDisputed,
			Title:   fmt.Sprintf("Litige ouvert sur %s", invoice.Number),
			Message: "Le client conteste le paiement auprès de sa banque.",
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment event").
			WithDetails(map[string]any{"kind": event.Kind})
	}

	if err := txRepo.Save(ctx, invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice from payment event")
	}
	s.audit.Record(ctx, tx, audit.Entry{
		TenantID: invoice.TenantID,
		Action:   "invoice.payment_" + string(event.Kind),
		Entity:   audit.EntityInvoice,
		EntityID: invoice.ID,
		Payload:  map[string]any{"stripe_invoice_id": event.StripeInvoiceID, "payment_intent_id": event.PaymentIntentID},
	})
	if s.alerts != nil && alert != nil {
		alert.TenantID = invoice.TenantID
		alert.Link = "/invoices/" + invoice.ID.String()
		alert.DedupeKey = fmt.Sprintf("%s:%s:%d", alert.Type, invoice.ID, at.Unix())
		if _, err := s.alerts.Emit(ctx, tx, *alert); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit payment alert")
		}
	}
	return invoice, nil
}

func (s *service) matchEvent(ctx context.Context, r Repository, event PaymentEvent) (*models.Invoice, error) {
	if event.StripeInvoiceID != "" {
		invoice, err := r.FindByStripeInvoiceID(ctx, event.StripeInvoiceID)
		if err == nil {
			return invoice, nil
		}
		if !repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find invoice by stripe id")
		}
	}
	if event.PaymentIntentID != "" {
		invoice, err := r.FindByStripePaymentIntentID(ctx, event.PaymentIntentID)
		if err == nil {
			return invoice, nil
		}
		if !repo.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find invoice by payment intent")
		}
	}
	return nil, nil
}
