package exports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

const (
	fecJournalCode = "VT"
	fecJournalLib  = "Ventes"

	AccountCustomers = "411000"
	AccountSales     = "706000"
	AccountVAT       = "445710"
)

var fecHeader = []string{
	"JournalCode", "JournalLib", "EcritureNum", "EcritureDate", "CompteNum", "CompteLib",
	"CompAuxNum", "CompAuxLib", "PieceRef", "PieceDate", "EcritureLib", "Debit", "Credit",
	"EcritureLet", "DateLet", "ValidDate", "Montantdevise", "Idevise",
}

type fecLine struct {
	account, accountLabel string
	auxNum, auxLabel      string
	debit, credit         decimal.Decimal
}

// writeFEC produces the sales journal: each invoice debits the customer for
// the TTC and credits sales and collected VAT; credit notes mirror it. The
// file is pipe separated, one balanced entry per document.
func writeFEC(rows []Row) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(fecHeader, "|"))
	buf.WriteString("\r\n")

	for i, row := range rows {
		inv := row.Invoice
		date := fecDate(inv.IssuedAt)
		entry := fmt.Sprintf("%s%06d", fecJournalCode, i+1)
		label := sanitize(fmt.Sprintf("%s %s", documentLabel(inv.Kind), row.ClientName))
		aux := auxAccount(inv.ClientID.String())

		ht := decimal.NewFromFloat(inv.TotalHT).Round(2)
		vat := decimal.NewFromFloat(inv.TotalVAT).Round(2)
		ttc := ht.Add(vat)

		lines := []fecLine{
			{account: AccountCustomers, accountLabel: "Clients", auxNum: aux, auxLabel: sanitize(row.ClientName), debit: ttc},
			{account: AccountSales, accountLabel: "Prestations de services", credit: ht},
		}
		if !vat.IsZero() {
			lines = append(lines, fecLine{account: AccountVAT, accountLabel: "TVA collectée", credit: vat})
		}
		for _, l := range lines {
			if inv.Kind == enums.InvoiceKindCreditNote {
				l.debit, l.credit = l.credit, l.debit
			}
			fields := []string{
				fecJournalCode, fecJournalLib, entry, date,
				l.account, l.accountLabel, l.auxNum, l.auxLabel,
				sanitize(inv.Number), date, label,
				fecAmount(l.debit), fecAmount(l.credit),
				"", "", date, "", "",
			}
			buf.WriteString(strings.Join(fields, "|"))
			buf.WriteString("\r\n")
		}
	}
	return buf.Bytes()
}

func documentLabel(kind enums.InvoiceKind) string {
	if kind == enums.InvoiceKindCreditNote {
		return "Avoir"
	}
	return "Facture"
}

// auxAccount derives a stable customer sub-ledger code from the client id.
func auxAccount(clientID string) string {
	code := strings.ToUpper(strings.ReplaceAll(clientID, "-", ""))
	if len(code) > 8 {
		code = code[:8]
	}
	return "C" + code
}

func fecDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("20060102")
}

func fecAmount(d decimal.Decimal) string {
	return swapDot(d.StringFixed(2))
}

// sanitize strips the separator and line breaks from free text.
func sanitize(s string) string {
	return strings.TrimSpace(strings.NewReplacer("|", " ", "\r", " ", "\n", " ", "\t", " ").Replace(s))
}

func dateOnly(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
