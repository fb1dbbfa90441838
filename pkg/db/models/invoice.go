package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Invoice is a facture or, when Kind is credit_note, an avoir cancelling one.
type Invoice struct {
	ID                    uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID              uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:idx_invoices_tenant_number" json:"tenant_id"`
	ClientID              uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index" json:"client_id"`
	QuoteID               *uuid.UUID          `gorm:"column:quote_id;type:uuid" json:"quote_id,omitempty"`
	CreditedInvoiceID     *uuid.UUID          `gorm:"column:credited_invoice_id;type:uuid" json:"credited_invoice_id,omitempty"`
	Number                string              `gorm:"column:number;not null;uniqueIndex:idx_invoices_tenant_number" json:"number"`
	Kind                  enums.InvoiceKind   `gorm:"column:kind;type:text;not null;default:'invoice'" json:"kind"`
	Status                enums.InvoiceStatus `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'" json:"payment_status"`
	Lines                 types.InvoiceLines  `gorm:"column:lines;type:jsonb;not null" json:"lines"`
	DiscountAmount        float64             `gorm:"column:discount_amount;not null;default:0" json:"discount_amount"`
	TotalHT               float64             `gorm:"column:total_ht;not null;default:0" json:"total_ht"`
	VATRatePct            float64             `gorm:"column:vat_rate_pct;not null;default:0" json:"vat_rate_pct"`
	TotalVAT              float64             `gorm:"column:total_vat;not null;default:0" json:"total_vat"`
	TotalTTC              float64             `gorm:"column:total_ttc;not null;default:0" json:"total_ttc"`
	AmountPaid            float64             `gorm:"column:amount_paid;not null;default:0" json:"amount_paid"`
	IssuedAt              *time.Time          `gorm:"column:issued_at" json:"issued_at,omitempty"`
	DueAt                 *time.Time          `gorm:"column:due_at" json:"due_at,omitempty"`
	PaidAt                *time.Time          `gorm:"column:paid_at" json:"paid_at,omitempty"`
	StripeInvoiceID       *string             `gorm:"column:stripe_invoice_id;uniqueIndex" json:"stripe_invoice_id,omitempty"`
	StripePaymentIntentID *string             `gorm:"column:stripe_payment_intent_id;index" json:"stripe_payment_intent_id,omitempty"`
	Notes                 *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}

// Balance is what remains to be collected, never negative.
func (i Invoice) Balance() float64 {
	if remaining := i.TotalTTC - i.AmountPaid; remaining > 0 {
		return remaining
	}
	return 0
}

// Payment is a settlement recorded against an invoice.
type Payment struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	InvoiceID   uuid.UUID           `gorm:"column:invoice_id;type:uuid;not null;index" json:"invoice_id"`
	Amount      float64             `gorm:"column:amount;not null" json:"amount"`
	Method      enums.PaymentMethod `gorm:"column:method;type:text;not null" json:"method"`
	Status      enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'paid'" json:"status"`
	ExternalRef *string             `gorm:"column:external_ref;index" json:"external_ref,omitempty"`
	PaidAt      time.Time           `gorm:"column:paid_at;not null" json:"paid_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
