package pdf

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thermolaq/atelier-backend/internal/i18n"
)

// Money formats an amount the way each locale writes it on paper:
// "1 234,50 €" in French, "€1,234.50" in English.
func Money(v float64, lang string) string {
	fixed := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	sep, dec := " ", ","
	if lang == i18n.English {
		sep, dec = ",", "."
	}
	grouped := group(intPart, sep)
	sign := ""
	if negative {
		sign = "-"
	}
	if lang == i18n.English {
		return sign + "€" + grouped + dec + frac
	}
	return sign + grouped + dec + frac + " €"
}

// Number formats a quantity with up to places decimals, trimming zeros.
func Number(v float64, places int32, lang string) string {
	s := decimal.NewFromFloat(v).Round(places).String()
	if lang != i18n.English {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// Date formats t as dd/mm/yyyy in French and yyyy-mm-dd otherwise.
func Date(t *time.Time, lang string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if lang == i18n.English {
		return t.Format("2006-01-02")
	}
	return t.Format("02/01/2006")
}

func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
