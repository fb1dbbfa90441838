package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "en", DetectLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "en", DetectLanguage("EN-gb"))
	assert.Equal(t, "fr", DetectLanguage("fr-FR,fr;q=0.8"))
	assert.Equal(t, "fr", DetectLanguage(""))
	assert.Equal(t, "fr", DetectLanguage("de-DE"))
	assert.Equal(t, "en", DetectLanguage("de-DE;q=0.9,en;q=0.8"))
	assert.Equal(t, "fr", DetectLanguage(";;;garbage"))
}

func TestTranslations(t *testing.T) {
	assert.Equal(t, "Required", T("en", "required"))
	assert.Equal(t, "Requis", T("fr", "required"))
	assert.Equal(t, "__nope__", T("en", "__nope__"), "unknown key falls back to the key")
	assert.Equal(t, "Requis", T("es", "required"), "unknown language falls back to fr")
	assert.Equal(t, "Facture", Translator("fr-FR")("doc.invoice"))
	assert.Equal(t, "Invoice", Translator("en")("doc.invoice"))
}

func TestDictionariesCoverSameKeys(t *testing.T) {
	for key := range fr {
		_, ok := en[key]
		assert.True(t, ok, "missing en translation for %s", key)
	}
	for key := range en {
		_, ok := fr[key]
		assert.True(t, ok, "missing fr translation for %s", key)
	}
}

func TestDictionaryIsCopy(t *testing.T) {
	d := Dictionary("en")
	d["required"] = "changed"
	assert.Equal(t, "Required", T("en", "required"))
	assert.Equal(t, fr["required"], Dictionary("xx")["required"])
}
