package types

import (
	"database/sql/driver"

	"github.com/google/uuid"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

// PowderSnapshot freezes the powder figures a layer was priced with, so a
// stored quote reprices identically even after the powder catalogue changes.
type PowderSnapshot struct {
	Reference          string   `json:"reference"`
	RALCode            string   `json:"ral_code,omitempty"`
	PricePerKg         *float64 `json:"price_per_kg,omitempty"`
	YieldM2PerKg       *float64 `json:"yield_m2_per_kg,omitempty"`
	ConsumptionKgPerM2 *float64 `json:"consumption_kg_per_m2,omitempty"`
}

// Layer is one coat applied to a quote item.
type Layer struct {
	Type     enums.LayerType `json:"layer_type"`
	PowderID *uuid.UUID      `json:"powder_id,omitempty"`
	Powder   *PowderSnapshot `json:"powder,omitempty"`

	PowderKg        float64 `json:"powder_kg"`
	PowderCost      float64 `json:"powder_cost"`
	PowderSalePrice float64 `json:"powder_sale_price"`
}

// QuoteItem is a coated part. Dimensions are in millimetres; everything
// below the Layers field is derived by the pricing calculator.
type QuoteItem struct {
	Designation string   `json:"designation"`
	LengthMM    float64  `json:"length_mm"`
	WidthMM     float64  `json:"width_mm"`
	HeightMM    *float64 `json:"height_mm,omitempty"`
	Quantity    int      `json:"quantity"`
	Layers      []Layer  `json:"layers"`

	AreaM2          float64 `json:"area_m2"`
	PowderCost      float64 `json:"powder_cost"`
	PowderSalePrice float64 `json:"powder_sale_price"`
	LaborHours      float64 `json:"labor_hours"`
	LaborCost       float64 `json:"labor_cost"`
	LaborSalePrice  float64 `json:"labor_sale_price"`
	ConsumablesCost float64 `json:"consumables_cost"`
	CostOfGoods     float64 `json:"cost_of_goods_total"`
	SalePriceHT     float64 `json:"sale_price_ht"`
}

// QuoteItems is persisted as a single JSONB blob on the quote row.
type QuoteItems []QuoteItem

// Value serializes the items to JSON.
func (q QuoteItems) Value() (driver.Value, error) {
	return encodeArray(q)
}

// Scan decodes JSONB into the item slice.
func (q *QuoteItems) Scan(value any) error {
	return decodeArray(value, (*[]QuoteItem)(q))
}

// QuoteTotals are the quote-level sums; they are stored as plain columns.
type QuoteTotals struct {
	TotalCostOfGoods float64 `gorm:"column:total_cost_of_goods;not null;default:0" json:"total_cost_of_goods"`
	TotalSaleHTGross float64 `gorm:"column:total_sale_ht_gross;not null;default:0" json:"total_sale_price_ht_gross"`
	DiscountAmount   float64 `gorm:"column:discount_amount;not null;default:0" json:"discount_amount"`
	TotalSaleHT      float64 `gorm:"column:total_sale_ht;not null;default:0" json:"total_sale_price_ht"`
	VATRatePct       float64 `gorm:"column:vat_rate_pct;not null;default:0" json:"vat_rate_pct"`
	TotalVAT         float64 `gorm:"column:total_vat;not null;default:0" json:"total_vat"`
	TotalTTC         float64 `gorm:"column:total_ttc;not null;default:0" json:"total_ttc"`
	GrossMargin      float64 `gorm:"column:gross_margin;not null;default:0" json:"gross_margin"`
	MarginPct        float64 `gorm:"column:margin_pct;not null;default:0" json:"margin_pct"`
	NegativeMargin   bool    `gorm:"column:negative_margin;not null;default:false" json:"negative_margin"`
}
