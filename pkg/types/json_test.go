package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteItemsScanAcceptsStringAndBytes(t *testing.T) {
	height := 200.0
	items := QuoteItems{{Designation: "Portail", LengthMM: 1000, WidthMM: 500, HeightMM: &height, Quantity: 2}}

	raw, err := items.Value()
	require.NoError(t, err)

	var fromBytes QuoteItems
	require.NoError(t, fromBytes.Scan(raw))
	assert.Equal(t, items, fromBytes)

	var fromString QuoteItems
	require.NoError(t, fromString.Scan(string(raw.([]byte))))
	assert.Equal(t, items, fromString)
}

func TestNilSlicesPersistAsEmptyArray(t *testing.T) {
	var lines InvoiceLines
	raw, err := lines.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), raw)
}

func TestScanRejectsUnsupportedType(t *testing.T) {
	var checks ChecklistItems
	assert.Error(t, checks.Scan(42))
}

func TestScanNullAndEmpty(t *testing.T) {
	lines := InvoiceLines{{Designation: "x"}}
	require.NoError(t, lines.Scan(nil))
	assert.Nil(t, lines)

	items := QuoteItems{{Designation: "x"}}
	require.NoError(t, items.Scan([]byte{}))
	assert.Nil(t, items)
}

func TestScanReportsMalformedJSON(t *testing.T) {
	var lines InvoiceLines
	err := lines.Scan(`{"not":"an array"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json column")
}
