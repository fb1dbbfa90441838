package ral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "9010", Normalize("ral 9010"))
	assert.Equal(t, "9010", Normalize("RAL9010"))
	assert.Equal(t, "7016", Normalize(" 7016 "))
	assert.Equal(t, "", Normalize("RAL"))
	assert.Nil(t, NormalizePtr(nil))
	blank := "  "
	assert.Nil(t, NormalizePtr(&blank))
	code := "ral 3020"
	assert.Equal(t, "3020", *NormalizePtr(&code))
}

func TestLookup(t *testing.T) {
	c, ok := Lookup("RAL 7016")
	require.True(t, ok)
	assert.Equal(t, "Gris anthracite", c.NameFR)
	assert.Equal(t, "Anthracite grey", c.Name("en"))
	assert.Equal(t, "#383E42", c.Hex)
	assert.Equal(t, "7", c.Family())

	_, ok = Lookup("0000")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	got := Search("securite", 0)
	require.NotEmpty(t, got, "accents are ignored")
	for _, c := range got {
		assert.Contains(t, c.NameFR, "sécurité")
	}

	byCode := Search("RAL 90", 0)
	require.NotEmpty(t, byCode)
	for _, c := range byCode {
		assert.Equal(t, "90", c.Code[:2])
	}

	assert.Len(t, Search("", 5), 5)
	assert.Empty(t, Search("zzz-unknown", 10))

	english := Search("traffic", 100)
	assert.GreaterOrEqual(t, len(english), 8)
}

func TestCodesUniqueAndHexWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range classic {
		assert.False(t, seen[c.Code], c.Code)
		seen[c.Code] = true
		assert.Regexp(t, `^#[0-9A-F]{6}$`, c.Hex, c.Code)
		assert.Len(t, c.Code, 4)
	}
}
