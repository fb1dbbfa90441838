package invoices

import (
	"github.com/shopspring/decimal"

	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Totals are the stored amounts of an invoice, rounded to the cent.
type Totals struct {
	DiscountAmount float64
	TotalHT        float64
	TotalVAT       float64
	TotalTTC       float64
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// ComputeTotals applies the discount to the line sum (never below zero) and
// VAT to what remains. Amounts are rounded once, at the invoice level.
func ComputeTotals(lines types.InvoiceLines, discount, vatRatePct float64) Totals {
	gross := decimal.Zero
	for _, line := range lines {
		gross = gross.Add(decimal.NewFromFloat(line.TotalHT))
	}
	disc := decimal.NewFromFloat(discount)
	if disc.IsNegative() {
		disc = decimal.Zero
	}
	if disc.GreaterThan(gross) {
		disc = gross
	}
	ht := gross.Sub(disc).Round(2)
	vat := ht.Mul(decimal.NewFromFloat(vatRatePct)).Div(decimal.NewFromInt(100)).Round(2)
	return Totals{
		DiscountAmount: disc.Round(2).InexactFloat64(),
		TotalHT:        ht.InexactFloat64(),
		TotalVAT:       vat.InexactFloat64(),
		TotalTTC:       ht.Add(vat).InexactFloat64(),
	}
}

// addPayment returns the new paid amount and whether it settles total.
func addPayment(paid, amount, total float64) (float64, bool) {
	next := cents(paid).Add(cents(amount))
	return next.InexactFloat64(), next.GreaterThanOrEqual(cents(total))
}

// exceedsBalance reports whether amount is more than what is still due.
func exceedsBalance(paid, amount, total float64) bool {
	return cents(paid).Add(cents(amount)).GreaterThan(cents(total))
}
