package exports

import (
	"bytes"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

const ledgerSheet = "Factures"

var xlsxHeader = []any{
	"Numéro", "Type", "Émission", "Échéance", "Client", "SIRET client",
	"Statut", "Paiement", "Total HT", "TVA", "Total TTC", "Réglé", "Reste dû",
}

// writeXLSX builds the invoice ledger workbook with a totals row. Amounts
// stay numeric so the accountant can pivot on them.
func writeXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F2937"}},
	})
	if err != nil {
		return nil, err
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, err
	}
	dateFmt := "dd/mm/yyyy"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(ledgerSheet, "A1", &xlsxHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ledgerSheet, "A1", "M1", headerStyle); err != nil {
		return nil, err
	}

	for i, row := range rows {
		inv := row.Invoice
		sign := 1.0
		if inv.Kind == enums.InvoiceKindCreditNote {
			sign = -1
		}
		values := []any{
			inv.Number,
			string(inv.Kind),
			cellTime(inv.IssuedAt),
			cellTime(inv.DueAt),
			row.ClientName,
			row.ClientSIRET,
			string(inv.Status),
			string(inv.PaymentStatus),
			round2(sign * inv.TotalHT),
			round2(sign * inv.TotalVAT),
			round2(sign * inv.TotalTTC),
			round2(inv.AmountPaid),
			round2(sign * inv.Balance()),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	last := len(rows) + 1
	if len(rows) > 0 {
		if err := styleRange(f, "C2", "D", last, dateStyle); err != nil {
			return nil, err
		}
		if err := styleRange(f, "I2", "M", last, moneyStyle); err != nil {
			return nil, err
		}
		total := last + 1
		if err := f.SetCellValue(ledgerSheet, cellName(1, total), "Total"); err != nil {
			return nil, err
		}
		for col := 9; col <= 13; col++ {
			letter, _ := excelize.ColumnNumberToName(col)
			formula := "SUM(" + letter + "2:" + letter + strconv.Itoa(last) + ")"
			if err := f.SetCellFormula(ledgerSheet, cellName(col, total), formula); err != nil {
				return nil, err
			}
		}
		if err := f.SetCellStyle(ledgerSheet, cellName(9, total), cellName(13, total), moneyStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(ledgerSheet, "A", "A", 16); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(ledgerSheet, "E", "E", 32); err != nil {
		return nil, err
	}
	if err := f.SetPanes(ledgerSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func styleRange(f *excelize.File, start, endCol string, lastRow, style int) error {
	return f.SetCellStyle(ledgerSheet, start, endCol+strconv.Itoa(lastRow), style)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func cellTime(t *time.Time) any {
	if t == nil {
		return ""
	}
	return t.UTC()
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
