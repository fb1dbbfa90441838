package types

import "database/sql/driver"

// InvoiceLine is a billed line. Amounts are HT unless stated otherwise.
type InvoiceLine struct {
	Designation string  `json:"designation"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	UnitPriceHT float64 `json:"unit_price_ht"`
	TotalHT     float64 `json:"total_ht"`
	AreaM2      float64 `json:"area_m2,omitempty"`
}

// InvoiceLines is persisted as JSONB on the invoice row.
type InvoiceLines []InvoiceLine

// Value serializes the lines to JSON.
func (l InvoiceLines) Value() (driver.Value, error) {
	return encodeArray(l)
}

// Scan decodes JSONB into the line slice.
func (l *InvoiceLines) Scan(value any) error {
	return decodeArray(value, (*[]InvoiceLine)(l))
}

// SumHT adds up line totals.
func (l InvoiceLines) SumHT() float64 {
	var total float64
	for _, line := range l {
		total += line.TotalHT
	}
	return total
}
