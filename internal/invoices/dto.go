package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/db/models"
	"github.com/thermolaq/atelier-backend/pkg/enums"
)

type LineInput struct {
	Designation string  `json:"designation" validate:"required,max=300"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Unit        string  `json:"unit" validate:"omitempty,max=20"`
	UnitPriceHT float64 `json:"unit_price_ht" validate:"gte=0"`
	AreaM2      float64 `json:"area_m2" validate:"gte=0"`
}

// CreateInput is a manual invoice. VATRatePct defaults to the shop rate.
type CreateInput struct {
	ClientID       uuid.UUID   `json:"client_id" validate:"required"`
	Lines          []LineInput `json:"lines" validate:"required,min=1,dive"`
	DiscountAmount float64     `json:"discount_amount" validate:"gte=0"`
	VATRatePct     *float64    `json:"vat_rate_pct" validate:"omitempty,gte=0,lte=100"`
	Notes          *string     `json:"notes"`
}

type PaymentInput struct {
	Amount      float64    `json:"amount" validate:"gt=0"`
	Method      string     `json:"method" validate:"required,oneof=card transfer cash check stripe"`
	ExternalRef *string    `json:"external_ref" validate:"omitempty,max=120"`
	PaidAt      *time.Time `json:"paid_at"`
}

type AttachStripeInput struct {
	StripeInvoiceID       string  `json:"stripe_invoice_id" validate:"required,startswith=in_"`
	StripePaymentIntentID *string `json:"stripe_payment_intent_id" validate:"omitempty,startswith=pi_"`
}

// ListFilter narrows an invoice listing. From/To bound the issue date.
type ListFilter struct {
	Status   *enums.InvoiceStatus
	ClientID *uuid.UUID
	Kind     *enums.InvoiceKind
	From     *time.Time
	To       *time.Time
}

// PaymentEventKind is a processor-side change applied to a local invoice.
type PaymentEventKind string

const (
	PaymentEventPaid     PaymentEventKind = "paid"
	PaymentEventFailed   PaymentEventKind = "failed"
	PaymentEventRefunded PaymentEventKind = "refunded"
	PaymentEventDisputed PaymentEventKind = "disputed"
)

// PaymentEvent identifies an invoice by its processor references.
type PaymentEvent struct {
	Kind            PaymentEventKind
	StripeInvoiceID string
	PaymentIntentID string
	AmountPaid      float64
	At              time.Time
}

// CancelResult carries the credit note issued when a sent invoice is cancelled.
type CancelResult struct {
	Invoice    *models.Invoice `json:"invoice"`
	CreditNote *models.Invoice `json:"credit_note,omitempty"`
}
