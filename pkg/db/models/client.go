package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// Client is a customer of the workshop.
type Client struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	Kind        enums.ClientKind `gorm:"column:kind;type:text;not null;default:'company'" json:"kind"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	ContactName *string          `gorm:"column:contact_name" json:"contact_name,omitempty"`
	Email       *string          `gorm:"column:email" json:"email,omitempty"`
	Phone       *string          `gorm:"column:phone" json:"phone,omitempty"`
	Address     *string          `gorm:"column:address" json:"address,omitempty"`
	PostalCode  *string          `gorm:"column:postal_code" json:"postal_code,omitempty"`
	City        *string          `gorm:"column:city" json:"city,omitempty"`
	SIRET       *string          `gorm:"column:siret" json:"siret,omitempty"`
	VATNumber   *string          `gorm:"column:vat_number" json:"vat_number,omitempty"`
	Notes       *string          `gorm:"column:notes" json:"notes,omitempty"`
	Tags        pq.StringArray   `gorm:"column:tags;type:text[]" json:"tags"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
