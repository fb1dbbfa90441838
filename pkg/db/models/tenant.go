package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// Tenant is a coating workshop (atelier) and the unit of data isolation.
type Tenant struct {
	ID                   uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	Name                 string                   `gorm:"column:name;not null" json:"name"`
	LegalName            *string                  `gorm:"column:legal_name" json:"legal_name,omitempty"`
	SIRET                *string                  `gorm:"column:siret" json:"siret,omitempty"`
	VATNumber            *string                  `gorm:"column:vat_number" json:"vat_number,omitempty"`
	Address              *string                  `gorm:"column:address" json:"address,omitempty"`
	Email                *string                  `gorm:"column:email" json:"email,omitempty"`
	Phone                *string                  `gorm:"column:phone" json:"phone,omitempty"`
	Locale               string                   `gorm:"column:locale;not null;default:'fr'" json:"locale"`
	Plan                 enums.PlanTier           `gorm:"column:plan;type:text;not null;default:'free'" json:"plan"`
	SubscriptionStatus   enums.SubscriptionStatus `gorm:"column:subscription_status;type:text;not null;default:'none'" json:"subscription_status"`
	StripeCustomerID     *string                  `gorm:"column:stripe_customer_id;uniqueIndex" json:"-"`
	StripeSubscriptionID *string                  `gorm:"column:stripe_subscription_id;uniqueIndex" json:"-"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (t *Tenant) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// User mirrors an auth-provider identity and its role inside one workshop.
type User struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	Email     string           `gorm:"column:email;not null" json:"email"`
	FullName  *string          `gorm:"column:full_name" json:"full_name,omitempty"`
	Role      enums.MemberRole `gorm:"column:role;type:text;not null;default:'operator'" json:"role"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ShopSettings holds the tenant-wide rate card and document branding.
type ShopSettings struct {
	TenantID             uuid.UUID         `gorm:"column:tenant_id;type:uuid;primaryKey" json:"tenant_id"`
	LaborRatePerHour     float64           `gorm:"column:labor_rate_per_hour;not null" json:"labor_rate_per_hour"`
	LaborHoursPerM2      float64           `gorm:"column:labor_hours_per_m2;not null" json:"labor_hours_per_m2"`
	ConsumablesCostPerM2 float64           `gorm:"column:consumables_cost_per_m2;not null" json:"consumables_cost_per_m2"`
	PowderMarginPct      float64           `gorm:"column:powder_margin_pct;not null" json:"powder_margin_pct"`
	LaborMarginPct       float64           `gorm:"column:labor_margin_pct;not null" json:"labor_margin_pct"`
	VATRatePct           float64           `gorm:"column:vat_rate_pct;not null" json:"vat_rate_pct"`
	PDFTemplate          enums.PDFTemplate `gorm:"column:pdf_template;type:text;not null;default:'classic'" json:"pdf_template"`
	PrimaryColor         string            `gorm:"column:primary_color;not null;default:'#1f2937'" json:"primary_color"`
	AccentColor          string            `gorm:"column:accent_color;not null;default:'#f97316'" json:"accent_color"`
	QuotePrefix          string            `gorm:"column:quote_prefix;not null;default:'DEV'" json:"quote_prefix"`
	InvoicePrefix        string            `gorm:"column:invoice_prefix;not null;default:'FAC'" json:"invoice_prefix"`
	QuoteValidityDays    int               `gorm:"column:quote_validity_days;not null;default:30" json:"quote_validity_days"`
	PaymentTermsDays     int               `gorm:"column:payment_terms_days;not null;default:30" json:"payment_terms_days"`
	LegalMentions        *string           `gorm:"column:legal_mentions" json:"legal_mentions,omitempty"`
	IBAN                 *string           `gorm:"column:iban" json:"iban,omitempty"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// DocumentCounter hands out sequential document numbers per tenant, kind and year.
type DocumentCounter struct {
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;primaryKey"`
	Kind      string    `gorm:"column:kind;primaryKey"`
	Year      int       `gorm:"column:year;primaryKey"`
	LastValue int       `gorm:"column:last_value;not null;default:0"`
}
