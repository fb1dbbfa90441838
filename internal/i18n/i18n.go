// Package i18n holds the static fr/en dictionaries used by documents and the UI.
package i18n

import (
	"golang.org/x/text/language"
)

const (
	French  = "fr"
	English = "en"

	// Default is the language of the workshops the product is sold to.
	Default = French
)

var (
	supported = []language.Tag{language.French, language.English}
	matcher   = language.NewMatcher(supported)

	dictionaries = map[string]map[string]string{
		French:  fr,
		English: en,
	}
)

// DetectLanguage picks fr or en from an Accept-Language header, defaulting
// to fr when nothing matches.
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Normalize maps any tag ("en-GB", "FR") to a supported language.
func Normalize(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return Default
	}
	base, _ := tag.Base()
	if _, ok := dictionaries[base.String()]; ok {
		return base.String()
	}
	return Default
}

// T translates key, falling back to French then to the key itself.
func T(lang, key string) string {
	if dict, ok := dictionaries[lang]; ok {
		if v, ok := dict[key]; ok {
			return v
		}
	}
	if v, ok := fr[key]; ok {
		return v
	}
	return key
}

// Dictionary returns a copy of the table for lang, French for unknown languages.
func Dictionary(lang string) map[string]string {
	src := dictionaries[Normalize(lang)]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Translator binds T to one language, for templates.
func Translator(lang string) func(string) string {
	lang = Normalize(lang)
	return func(key string) string { return T(lang, key) }
}
