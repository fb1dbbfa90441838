package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// Powder is a coating powder reference held in stock.
type Powder struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID           uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	Reference          string             `gorm:"column:reference;not null" json:"reference"`
	Manufacturer       *string            `gorm:"column:manufacturer" json:"manufacturer,omitempty"`
	RALCode            *string            `gorm:"column:ral_code" json:"ral_code,omitempty"`
	Finish             enums.PowderFinish `gorm:"column:finish;type:text;not null;default:'gloss'" json:"finish"`
	PricePerKg         *float64           `gorm:"column:price_per_kg" json:"price_per_kg,omitempty"`
	YieldM2PerKg       *float64           `gorm:"column:yield_m2_per_kg" json:"yield_m2_per_kg,omitempty"`
	ConsumptionKgPerM2 *float64           `gorm:"column:consumption_kg_per_m2" json:"consumption_kg_per_m2,omitempty"`
	StockKg            float64            `gorm:"column:stock_kg;not null;default:0" json:"stock_kg"`
	MinStockKg         float64            `gorm:"column:min_stock_kg;not null;default:0" json:"min_stock_kg"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Powder) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// LowStock reports whether the powder is at or below its reorder threshold.
func (p Powder) LowStock() bool {
	return p.MinStockKg > 0 && p.StockKg <= p.MinStockKg
}

// StockMovement is an append-only entry in a powder's stock ledger.
type StockMovement struct {
	ID         uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;index" json:"tenant_id"`
	PowderID   uuid.UUID               `gorm:"column:powder_id;type:uuid;not null;index" json:"powder_id"`
	Kind       enums.StockMovementKind `gorm:"column:kind;type:text;not null" json:"kind"`
	QuantityKg float64                 `gorm:"column:quantity_kg;not null" json:"quantity_kg"`
	StockAfter float64                 `gorm:"column:stock_after;not null" json:"stock_after"`
	Reason     *string                 `gorm:"column:reason" json:"reason,omitempty"`
	ProjectID  *uuid.UUID              `gorm:"column:project_id;type:uuid" json:"project_id,omitempty"`
	CreatedBy  *uuid.UUID              `gorm:"column:created_by;type:uuid" json:"created_by,omitempty"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (s *StockMovement) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
