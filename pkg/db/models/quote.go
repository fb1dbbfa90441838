package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Quote is a devis. Items and their derived figures live in a single JSONB
// column; totals are denormalized into columns for listing and analytics.
type Quote struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID           uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index;uniqueIndex:idx_quotes_tenant_number" json:"tenant_id"`
	ClientID           uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index" json:"client_id"`
	Number             string              `gorm:"column:number;not null;uniqueIndex:idx_quotes_tenant_number" json:"number"`
	Status             enums.QuoteStatus   `gorm:"column:status;type:text;not null;default:'draft'" json:"status"`
	Title              *string             `gorm:"column:title" json:"title,omitempty"`
	Items              types.QuoteItems    `gorm:"column:items;type:jsonb;not null" json:"items"`
	DiscountKind       *enums.DiscountKind `gorm:"column:discount_kind;type:text" json:"discount_kind,omitempty"`
	DiscountValue      float64             `gorm:"column:discount_value;not null;default:0" json:"discount_value"`
	types.QuoteTotals  `gorm:"embedded"`
	ValidUntil         *time.Time          `gorm:"column:valid_until" json:"valid_until,omitempty"`
	Notes              *string             `gorm:"column:notes" json:"notes,omitempty"`
	SentAt             *time.Time          `gorm:"column:sent_at" json:"sent_at,omitempty"`
	AcceptedAt         *time.Time          `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	ConvertedInvoiceID *uuid.UUID          `gorm:"column:converted_invoice_id;type:uuid" json:"converted_invoice_id,omitempty"`
	CreatedBy          *uuid.UUID          `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}
