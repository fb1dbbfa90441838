// Package invoices issues factures and credit notes and tracks their payment.
package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/internal/alerts"
	"github.com/thermolaq/atelier-backend/internal/audit"
	"github.com/thermolaq/atelier-backend/internal/numbering"
	"github.com/thermolaq/atelier-backend/internal/repo"
	"github.com/thermolaq/atelier-backend/pkg/db"
	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
	pkgerrors "github.com/thermolaq/atelier-backend/pkg/errors"
	"github.com/thermolaq/atelier-backend/pkg/pagination"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

const creditNotePrefix = "AV"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type settingsProvider interface {
	Get(ctx context.Context, tenantID uuid.UUID) (models.ShopSettings, error)
}

type alertEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, input alerts.NewAlert) (bool, error)
}

// Service exposes invoice operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateInput) (*models.Invoice, error)
	CreateFromQuote(ctx context.Context, tenantID, quoteID uuid.UUID, userID *uuid.UUID) (*models.Invoice, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Invoice], error)
	Payments(ctx context.Context, tenantID, id uuid.UUID) ([]models.Payment, error)
	Send(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.Invoice, error)
	RecordPayment(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input PaymentInput) (*models.Invoice, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*CancelResult, error)
	AttachStripeInvoice(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input AttachStripeInput) (*models.Invoice, error)
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
	ApplyPaymentEvent(ctx context.Context, tx *gorm.DB, event PaymentEvent) (*models.Invoice, error)
	ListForExport(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.Invoice, error)
}

type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Settings settingsProvider
	Alerts   alertEmitter
	Audit    *audit.Recorder
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	settings settingsProvider
	alerts   alertEmitter
	audit    *audit.Recorder
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoices repository required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case params.Settings == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settings provider required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		settings: params.Settings,
		alerts:   params.Alerts,
		audit:    params.Audit,
		now:      now,
	}, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, userID *uuid.UUID, input CreateInput) (*models.Invoice, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client_id is required")
	}
	exists, err := s.repo.ClientExists(ctx, tenantID, input.ClientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check client")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown client")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	lines := make(types.InvoiceLines, 0, len(input.Lines))
	for i, in := range input.Lines {
		designation := strings.TrimSpace(in.Designation)
		if designation == "" || in.Quantity <= 0 || in.UnitPriceHT < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d is invalid", i+1)).
				WithDetails(map[string]any{"line": i})
		}
		lines = append(lines, types.InvoiceLine{
			Designation: designation,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			UnitPriceHT: in.UnitPriceHT,
			TotalHT:     cents(in.Quantity * in.UnitPriceHT).InexactFloat64(),
			AreaM2:      in.AreaM2,
		})
	}
	shop, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	vat := shop.VATRatePct
	if input.VATRatePct != nil {
		vat = *input.VATRatePct
	}
	invoice := &models.Invoice{
		TenantID:      tenantID,
		ClientID:      input.ClientID,
		Kind:          enums.InvoiceKindInvoice,
		Status:        enums.InvoiceStatusDraft,
		PaymentStatus: enums.PaymentStatusUnpaid,
		Lines:         lines,
		VATRatePct:    vat,
		Notes:         input.Notes,
	}
	applyTotals(invoice, ComputeTotals(lines, input.DiscountAmount, vat))

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.insert(ctx, tx, invoice, numbering.KindInvoice, shop.InvoicePrefix, userID, "invoice.created")
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// CreateFromQuote bills an accepted quote: one line per priced item, the
// quote's discount and VAT rate carried over. The quote becomes converted.
func (s *service) CreateFromQuote(ctx context.Context, tenantID, quoteID uuid.UUID, userID *uuid.UUID) (*models.Invoice, error) {
	shop, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var invoice *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		quote, err := txRepo.FindQuoteForUpdate(ctx, tenantID, quoteID)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
		}
		if quote.Status == enums.QuoteStatusConverted {
			return pkgerrors.New(pkgerrors.CodeConflict, "quote already converted").
				WithDetails(map[string]any{"invoice_id": quote.ConvertedInvoiceID})
		}
		if !quote.Status.CanTransitionTo(enums.QuoteStatusConverted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only accepted quotes can be invoiced").
				WithDetails(map[string]any{"status": quote.Status})
		}

		lines := LinesFromQuote(quote.Items)
		invoice = &models.Invoice{
			TenantID:      tenantID,
			ClientID:      quote.ClientID,
			QuoteID:       &quote.ID,
			Kind:          enums.InvoiceKindInvoice,
			Status:        enums.InvoiceStatusDraft,
			PaymentStatus: enums.PaymentStatusUnpaid,
			Lines:         lines,
			VATRatePct:    quote.VATRatePct,
			Notes:         quote.Notes,
		}
		applyTotals(invoice, ComputeTotals(lines, quote.DiscountAmount, quote.VATRatePct))
		if err := s.insert(ctx, tx, invoice, numbering.KindInvoice, shop.InvoicePrefix, userID, "invoice.created_from_quote"); err != nil {
			return err
		}

		quote.Status = enums.QuoteStatusConverted
		quote.ConvertedInvoiceID = &invoice.ID
		if err := txRepo.SaveQuote(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark quote converted")
		}
		s.audit.Record(ctx, tx, audit.Entry{
			TenantID: tenantID,
			UserID:   userID,
			Action:   "quote.converted",
			Entity:   audit.EntityQuote,
			EntityID: quote.ID,
			Payload:  map[string]any{"invoice_id": invoice.ID, "invoice_number": invoice.Number},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// LinesFromQuote bills each priced item at its sale price HT.
func LinesFromQuote(items types.QuoteItems) types.InvoiceLines {
	lines := make(types.InvoiceLines, 0, len(items))
	for _, item := range items {
		qty := float64(item.Quantity)
		unit := 0.0
		if qty > 0 {
			unit = item.SalePriceHT / qty
		}
		lines = append(lines, types.InvoiceLine{
			Designation: item.Designation,
			Quantity:    qty,
			Unit:        "pc",
			UnitPriceHT: cents(unit).InexactFloat64(),
			TotalHT:     cents(item.SalePriceHT).InexactFloat64(),
			AreaM2:      item.AreaM2,
		})
	}
	return lines
}

func (s *service) insert(ctx context.Context, tx *gorm.DB, invoice *models.Invoice, kind, prefix string, userID *uuid.UUID, action string) error {
	number, err := numbering.Next(ctx, tx, invoice.TenantID, kind, prefix, s.now().UTC().Year())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign invoice number")
	}
	invoice.Number = number
	if err := s.repo.WithTx(tx).Create(ctx, invoice); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "invoice number already taken")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	s.record(ctx, tx, invoice, userID, action, map[string]any{"number": invoice.Number, "total_ttc": invoice.TotalTTC})
	return nil
}

func (s *service) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return invoice, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, params pagination.Params) (*types.Page[models.Invoice], error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	rows, err := s.repo.List(ctx, tenantID, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	items, next := pagination.Trim(rows, params.Limit, func(i models.Invoice) pagination.Cursor {
		return pagination.Cursor{CreatedAt: i.CreatedAt, ID: i.ID}
	})
	return &types.Page[models.Invoice]{Items: items, NextCursor: next}, nil
}

func (s *service) Payments(ctx context.Context, tenantID, id uuid.UUID) ([]models.Payment, error) {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPayments(ctx, tenantID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}

// Send issues a draft: it gets its issue date and a due date from the payment terms.
func (s *service) Send(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != enums.InvoiceStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft invoices can be sent").
			WithDetails(map[string]any{"status": invoice.Status})
	}
	shop, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	invoice.Status = enums.InvoiceStatusSent
	invoice.IssuedAt = &now
	if invoice.DueAt == nil {
		due := now.AddDate(0, 0, shop.PaymentTermsDays)
		invoice.DueAt = &due
	}
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send invoice")
	}
	s.record(ctx, nil, invoice, userID, "invoice.sent", nil)
	return invoice, nil
}

// RecordPayment books a manual settlement. Partial payments accumulate; the
// invoice turns paid once the total is covered. Overpayment is refused.
func (s *service) RecordPayment(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input PaymentInput) (*models.Invoice, error) {
	method, err := enums.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	paidAt := s.now().UTC()
	if input.PaidAt != nil {
		paidAt = input.PaidAt.UTC()
	}

	var invoice *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		var err error
		invoice, err = txRepo.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if invoice.Kind != enums.InvoiceKindInvoice || !invoice.Status.Outstanding() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice is not awaiting payment").
				WithDetails(map[string]any{"status": invoice.Status})
		}
		if exceedsBalance(invoice.AmountPaid, input.Amount, invoice.TotalTTC) {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment exceeds balance").
				WithDetails(map[string]any{"balance": invoice.Balance()})
		}

		payment := &models.Payment{
			TenantID:    tenantID,
			InvoiceID:   invoice.ID,
			Amount:      cents(input.Amount).InexactFloat64(),
			Method:      method,
			Status:      enums.PaymentStatusPaid,
			ExternalRef: input.ExternalRef,
			PaidAt:      paidAt,
		}
		if err := txRepo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		settle(invoice, input.Amount, paidAt)
		if err := txRepo.Save(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice")
		}
		s.record(ctx, tx, invoice, userID, "invoice.payment_recorded", map[string]any{"amount": payment.Amount, "method": method})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func settle(invoice *models.Invoice, amount float64, at time.Time) {
	paid, settled := addPayment(invoice.AmountPaid, amount, invoice.TotalTTC)
	invoice.AmountPaid = paid
	if settled {
		invoice.Status = enums.InvoiceStatusPaid
		invoice.PaymentStatus = enums.PaymentStatusPaid
		invoice.PaidAt = &at
		return
	}
	invoice.PaymentStatus = enums.PaymentStatusPartial
}

// Cancel voids an invoice. A draft is simply cancelled; an issued invoice is
// cancelled by a credit note for its full amount. Paid invoices are refunded, not cancelled.
func (s *service) Cancel(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID) (*CancelResult, error) {
	result := &CancelResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		invoice, err := txRepo.FindForUpdate(ctx, tenantID, id)
		if err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		if invoice.Kind == enums.InvoiceKindCreditNote {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "credit notes cannot be cancelled")
		}
		switch invoice.Status {
		case enums.InvoiceStatusDraft:
		case enums.InvoiceStatusSent, enums.InvoiceStatusOverdue:
			if invoice.AmountPaid > 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice has payments; refund them first")
			}
			credit := creditNoteFor(invoice, s.now().UTC())
			if err := s.insert(ctx, tx, credit, numbering.KindCreditNote, creditNotePrefix, userID, "credit_note.created"); err != nil {
				return err
			}
			result.CreditNote = credit
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice cannot be cancelled").
				WithDetails(map[string]any{"status": invoice.Status})
		}
		invoice.Status = enums.InvoiceStatusCancelled
		if err := txRepo.Save(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel invoice")
		}
		s.record(ctx, tx, invoice, userID, "invoice.cancelled", nil)
		result.Invoice = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func creditNoteFor(invoice *models.Invoice, now time.Time) *models.Invoice {
	lines := make(types.InvoiceLines, len(invoice.Lines))
	copy(lines, invoice.Lines)
	return &models.Invoice{
		TenantID:          invoice.TenantID,
		ClientID:          invoice.ClientID,
		QuoteID:           invoice.QuoteID,
		CreditedInvoiceID: &invoice.ID,
		Kind:              enums.InvoiceKindCreditNote,
		Status:            enums.InvoiceStatusSent,
		PaymentStatus:     enums.PaymentStatusUnpaid,
		Lines:             lines,
		DiscountAmount:    invoice.DiscountAmount,
		TotalHT:           invoice.TotalHT,
		VATRatePct:        invoice.VATRatePct,
		TotalVAT:          invoice.TotalVAT,
		TotalTTC:          invoice.TotalTTC,
		IssuedAt:          &now,
	}
}

func (s *service) AttachStripeInvoice(ctx context.Context, tenantID, id uuid.UUID, userID *uuid.UUID, input AttachStripeInput) (*models.Invoice, error) {
	stripeID := strings.TrimSpace(input.StripeInvoiceID)
	if !strings.HasPrefix(stripeID, "in_") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe invoice id must start with in_")
	}
	invoice, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.FindByStripeInvoiceID(ctx, stripeID); err == nil && existing.ID != invoice.ID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "stripe invoice already attached to another invoice")
	} else if err != nil && !repo.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check stripe reference")
	}
	invoice.StripeInvoiceID = &stripeID
	if input.StripePaymentIntentID != nil {
		pi := strings.TrimSpace(*input.StripePaymentIntentID)
		invoice.StripePaymentIntentID = &pi
	}
	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach stripe invoice")
	}
	s.record(ctx, nil, invoice, userID, "invoice.stripe_attached", map[string]any{"stripe_invoice_id": stripeID})
	return invoice, nil
}

// MarkOverdue flags sent invoices whose due date passed and raises one alert
// per invoice. It returns how many invoices changed.
func (s *service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	rows, err := s.repo.ListOverdue(ctx, now.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue invoices")
	}
	changed := 0
	for i := range rows {
		invoice := rows[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			invoice.Status = enums.InvoiceStatusOverdue
			if err := s.repo.WithTx(tx).Save(ctx, &invoice); err != nil {
				return err
			}
			s.record(ctx, tx, &invoice, nil, "invoice.overdue", nil)
			if s.alerts == nil {
				return nil
			}
			_, err := s.alerts.Emit(ctx, tx, alerts.NewAlert{
				TenantID:  invoice.TenantID,
				Type:      enums.AlertTypeInvoiceOverdue,
				Title:     fmt.Sprintf("Facture %s en retard", invoice.Number),
				Message:   fmt.Sprintf("Solde restant : %.2f €", invoice.Balance()),
				Link:      "/invoices/" + invoice.ID.String(),
				DedupeKey: "invoice_overdue:" + invoice.ID.String(),
			})
			return err
		})
		if err != nil {
			return changed, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark invoice overdue")
		}
		changed++
	}
	return changed, nil
}

func (s *service) ListForExport(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.Invoice, error) {
	if !from.Before(to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	rows, err := s.repo.ListForExport(ctx, tenantID, from.UTC(), to.UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices for export")
	}
	return rows, nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, invoice *models.Invoice, userID *uuid.UUID, action string, payload any) {
	s.audit.Record(ctx, tx, audit.Entry{
		TenantID: invoice.TenantID,
		UserID:   userID,
		Action:   action,
		Entity:   audit.EntityInvoice,
		EntityID: invoice.ID,
		Payload:  payload,
	})
}

func applyTotals(invoice *models.Invoice, totals Totals) {
	invoice.DiscountAmount = totals.DiscountAmount
	invoice.TotalHT = totals.TotalHT
	invoice.TotalVAT = totals.TotalVAT
	invoice.TotalTTC = totals.TotalTTC
}
