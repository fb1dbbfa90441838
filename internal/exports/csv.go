package exports

import (
	"bytes"
	"encoding/csv"

	"github.com/shopspring/decimal"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

var csvHeader = []string{
	"numero", "type", "date_emission", "date_echeance", "client", "siret_client",
	"statut", "statut_paiement", "total_ht", "tva", "total_ttc", "regle", "reste_du",
}

// writeCSV emits one line per document. Semicolons and decimal commas match
// what French spreadsheet software expects; the BOM makes Excel read UTF-8.
func writeCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		inv := row.Invoice
		sign := 1.0
		if inv.Kind == enums.InvoiceKindCreditNote {
			sign = -1
		}
		record := []string{
			inv.Number,
			string(inv.Kind),
			dateOnly(inv.IssuedAt),
			dateOnly(inv.DueAt),
			row.ClientName,
			row.ClientSIRET,
			string(inv.Status),
			string(inv.PaymentStatus),
			amount(sign * inv.TotalHT),
			amount(sign * inv.TotalVAT),
			amount(sign * inv.TotalTTC),
			amount(inv.AmountPaid),
			amount(sign * inv.Balance()),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// amount renders v with two decimals and a decimal comma.
func amount(v float64) string {
	s := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	if s == "-0.00" {
		s = "0.00"
	}
	return swapDot(s)
}

func swapDot(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == '.' {
			b[i] = ','
		}
	}
	return string(b)
}
