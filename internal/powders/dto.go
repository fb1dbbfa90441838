package powders

import (
	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/types"
)

type CreatePowderInput struct {
	Reference          string   `json:"reference" validate:"required,max=120"`
	Manufacturer       *string  `json:"manufacturer" validate:"omitempty,max=120"`
	RALCode            *string  `json:"ral_code" validate:"omitempty,max=20"`
	Finish             string   `json:"finish" validate:"omitempty,oneof=matt satin gloss textured metallic"`
	PricePerKg         *float64 `json:"price_per_kg" validate:"omitempty,gte=0"`
	YieldM2PerKg       *float64 `json:"yield_m2_per_kg" validate:"omitempty,gt=0"`
	ConsumptionKgPerM2 *float64 `json:"consumption_kg_per_m2" validate:"omitempty,gt=0"`
	StockKg            float64  `json:"stock_kg" validate:"gte=0"`
	MinStockKg         float64  `json:"min_stock_kg" validate:"gte=0"`
}

// UpdatePowderInput edits catalogue fields. Stock only moves through movements.
type UpdatePowderInput struct {
	Reference          *string                 `json:"reference" validate:"omitempty,max=120"`
	Manufacturer       types.Nullable[string]  `json:"manufacturer"`
	RALCode            types.Nullable[string]  `json:"ral_code"`
	Finish             *string                 `json:"finish" validate:"omitempty,oneof=matt satin gloss textured metallic"`
	PricePerKg         types.Nullable[float64] `json:"price_per_kg"`
	YieldM2PerKg       types.Nullable[float64] `json:"yield_m2_per_kg"`
	ConsumptionKgPerM2 types.Nullable[float64] `json:"consumption_kg_per_m2"`
	MinStockKg         *float64                `json:"min_stock_kg" validate:"omitempty,gte=0"`
}

// MovementInput records stock entering, leaving or being corrected.
// For adjustments QuantityKg is a signed delta.
type MovementInput struct {
	Kind       string     `json:"kind" validate:"required,oneof=in out adjustment"`
	QuantityKg float64    `json:"quantity_kg"`
	Reason     *string    `json:"reason" validate:"omitempty,max=500"`
	ProjectID  *uuid.UUID `json:"project_id"`
}
