package pdf

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/thermolaq/atelier-backend/pkg/enums"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Theme is the visual identity applied to a document.
type Theme struct {
	Template enums.PDFTemplate `json:"template"`
	Primary  string            `json:"primary"`
	Accent   string            `json:"accent"`
}

var themeDefaults = map[enums.PDFTemplate]Theme{
	enums.PDFTemplateClassic: {Template: enums.PDFTemplateClassic, Primary: "#1f2937", Accent: "#f97316"},
	enums.PDFTemplateModern:  {Template: enums.PDFTemplateModern, Primary: "#0f766e", Accent: "#f59e0b"},
	enums.PDFTemplateMinimal: {Template: enums.PDFTemplateMinimal, Primary: "#111827", Accent: "#6b7280"},
}

// ResolveTheme falls back to classic for an unknown template and to the
// template's own colours for anything that is not #RRGGBB.
func ResolveTheme(template, primary, accent string) Theme {
	tpl, err := enums.ParsePDFTemplate(strings.ToLower(strings.TrimSpace(template)))
	if err != nil {
		tpl = enums.PDFTemplateClassic
	}
	theme := themeDefaults[tpl]
	if p := strings.TrimSpace(primary); hexColor.MatchString(p) {
		theme.Primary = strings.ToLower(p)
	}
	if a := strings.TrimSpace(accent); hexColor.MatchString(a) {
		theme.Accent = strings.ToLower(a)
	}
	return theme
}

// rgb splits a validated #RRGGBB colour.
func rgb(hex string) (int, int, int) {
	if !hexColor.MatchString(hex) {
		return 0, 0, 0
	}
	v, _ := strconv.ParseUint(hex[1:], 16, 32)
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
