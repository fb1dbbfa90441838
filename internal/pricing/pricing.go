// Package pricing turns item geometry, powder references and a workshop's
// rate card into cost-of-goods and sale-price breakdowns.
//
// All arithmetic is float64 and unrounded; rounding belongs to presentation.
package pricing

import (
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

const (
	// DefaultConsumptionKgPerM2 applies when a powder has neither yield nor consumption.
	DefaultConsumptionKgPerM2 = 0.15
	// DefaultPricePerKg applies when a powder has no purchase price.
	DefaultPricePerKg = 25.0

	mm2PerM2 = 1_000_000
)

// Rates is the tenant-wide rate card, read-only while a quote is priced.
type Rates struct {
	LaborRatePerHour     float64 `json:"labor_rate_per_hour"`
	LaborHoursPerM2      float64 `json:"labor_hours_per_m2"`
	ConsumablesCostPerM2 float64 `json:"consumables_cost_per_m2"`
	PowderMarginPct      float64 `json:"powder_margin_pct"`
	LaborMarginPct       float64 `json:"labor_margin_pct"`
	VATRatePct           float64 `json:"vat_rate_pct"`
}

// Discount is a quote-level reduction applied to the gross HT total.
type Discount struct {
	Kind  enums.DiscountKind `json:"kind"`
	Value float64            `json:"value"`
}

// LaborBreakdown is the labour and consumables share of an item.
type LaborBreakdown struct {
	Hours           float64
	Cost            float64
	SalePrice       float64
	ConsumablesCost float64
}

// Result is a fully priced quote.
type Result struct {
	Items  types.QuoteItems  `json:"items"`
	Totals types.QuoteTotals `json:"totals"`
}

// SurfaceArea returns the coated surface in m². With a height the piece is a
// box and all six faces count; without one it is a flat sheet coated on both
// sides. A zero or negative length or width yields zero.
func SurfaceArea(lengthMM, widthMM float64, heightMM *float64, quantity int) float64 {
	if lengthMM <= 0 || widthMM <= 0 || quantity <= 0 {
		return 0
	}
	qty := float64(quantity)
	if heightMM != nil && *heightMM > 0 {
		h := *heightMM
		return qty * 2 * (lengthMM*widthMM + lengthMM*h + widthMM*h) / mm2PerM2
	}
	return qty * 2 * (lengthMM * widthMM) / mm2PerM2
}

// ConsumptionPerM2 returns kg of powder per m². Yield wins over an explicit
// consumption figure when both are set.
func ConsumptionPerM2(p *types.PowderSnapshot) float64 {
	if p == nil {
		return DefaultConsumptionKgPerM2
	}
	if p.YieldM2PerKg != nil && *p.YieldM2PerKg > 0 {
		return 1 / *p.YieldM2PerKg
	}
	if p.ConsumptionKgPerM2 != nil {
		return *p.ConsumptionKgPerM2
	}
	return DefaultConsumptionKgPerM2
}

func pricePerKg(p *types.PowderSnapshot) float64 {
	if p == nil || p.PricePerKg == nil {
		return DefaultPricePerKg
	}
	return *p.PricePerKg
}

// LayerPowderCost prices one coat. A layer without a powder costs nothing.
func LayerPowderCost(areaM2 float64, p *types.PowderSnapshot, rates Rates) (kg, cost, sale float64) {
	if p == nil {
		return 0, 0, 0
	}
	kg = areaM2 * ConsumptionPerM2(p)
	cost = kg * pricePerKg(p)
	sale = cost * (1 + rates.PowderMarginPct/100)
	return kg, cost, sale
}

// LaborAndConsumables prices handling time and consumables. Every coat is a
// pass through the line, so both scale with the layer count (at least one).
func LaborAndConsumables(areaM2 float64, layerCount int, rates Rates) LaborBreakdown {
	if layerCount < 1 {
		layerCount = 1
	}
	layers := float64(layerCount)
	hours := areaM2 * rates.LaborHoursPerM2 * layers
	cost := hours * rates.LaborRatePerHour
	return LaborBreakdown{
		Hours:           hours,
		Cost:            cost,
		SalePrice:       cost * (1 + rates.LaborMarginPct/100),
		ConsumablesCost: areaM2 * rates.ConsumablesCostPerM2 * layers,
	}
}

// ComputeItem fills every derived field of item from its raw inputs.
// Derived fields already present are ignored and overwritten.
func ComputeItem(item types.QuoteItem, rates Rates) types.QuoteItem {
	out := item
	out.Layers = make([]types.Layer, len(item.Layers))
	out.AreaM2 = SurfaceArea(item.LengthMM, item.WidthMM, item.HeightMM, item.Quantity)

	out.PowderCost, out.PowderSalePrice = 0, 0
	for i, layer := range item.Layers {
		kg, cost, sale := LayerPowderCost(out.AreaM2, layer.Powder, rates)
		layer.PowderKg, layer.PowderCost, layer.PowderSalePrice = kg, cost, sale
		out.Layers[i] = layer
		out.PowderCost += cost
		out.PowderSalePrice += sale
	}

	labor := LaborAndConsumables(out.AreaM2, len(item.Layers), rates)
	out.LaborHours = labor.Hours
	out.LaborCost = labor.Cost
	out.LaborSalePrice = labor.SalePrice
	out.ConsumablesCost = labor.ConsumablesCost

	out.CostOfGoods = out.PowderCost + out.LaborCost + out.ConsumablesCost
	out.SalePriceHT = out.PowderSalePrice + out.LaborSalePrice + out.ConsumablesCost
	return out
}

// DiscountAmount returns the raw reduction for a gross HT total.
func DiscountAmount(grossHT float64, d *Discount) float64 {
	if d == nil || d.Value <= 0 {
		return 0
	}
	switch d.Kind {
	case enums.DiscountKindPercentage:
		return grossHT * d.Value / 100
	case enums.DiscountKindFixedAmount:
		return d.Value
	default:
		return 0
	}
}

// Totalize sums already-computed items and applies discount and VAT.
func Totalize(items []types.QuoteItem, discount *Discount, vatRatePct float64) types.QuoteTotals {
	var t types.QuoteTotals
	for _, item := range items {
		t.TotalCostOfGoods += item.CostOfGoods
		t.TotalSaleHTGross += item.SalePriceHT
	}

	t.DiscountAmount = DiscountAmount(t.TotalSaleHTGross, discount)
	t.TotalSaleHT = t.TotalSaleHTGross - t.DiscountAmount
	if t.TotalSaleHT < 0 {
		t.TotalSaleHT = 0
	}

	t.VATRatePct = vatRatePct
	t.TotalTTC = t.TotalSaleHT * (1 + vatRatePct/100)
	t.TotalVAT = t.TotalTTC - t.TotalSaleHT

	t.GrossMargin = t.TotalSaleHT - t.TotalCostOfGoods
	if t.TotalCostOfGoods > 0 {
		t.MarginPct = t.GrossMargin / t.TotalCostOfGoods * 100
	}
	t.NegativeMargin = t.GrossMargin < 0
	return t
}

// ComputeQuote prices every item and the quote totals in one pass.
func ComputeQuote(items []types.QuoteItem, discount *Discount, rates Rates) Result {
	computed := make(types.QuoteItems, len(items))
	for i, item := range items {
		computed[i] = ComputeItem(item, rates)
	}
	return Result{
		Items:  computed,
		Totals: Totalize(computed, discount, rates.VATRatePct),
	}
}
