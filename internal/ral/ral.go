// Package ral is the RAL Classic colour reference used by powders and jobs.
package ral

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Color is one RAL Classic entry.
type Color struct {
	Code   string `json:"code"`
	NameFR string `json:"name_fr"`
	NameEN string `json:"name_en"`
	Hex    string `json:"hex"`
}

// Family returns the colour group ("1" yellows through "9" whites and blacks).
func (c Color) Family() string {
	if c.Code == "" {
		return ""
	}
	return c.Code[:1]
}

// Name returns the label for lang, French unless lang is "en".
func (c Color) Name(lang string) string {
	if lang == "en" {
		return c.NameEN
	}
	return c.NameFR
}

const defaultSearchLimit = 50

var byCode = func() map[string]Color {
	m := make(map[string]Color, len(classic))
	for _, c := range classic {
		m[c.Code] = c
	}
	return m
}()

// Normalize turns "ral 9010", "RAL9010" or " 9010 " into "9010". Unknown
// codes are returned normalized but are not rejected: workshops also use
// manufacturer references.
func Normalize(code string) string {
	v := strings.ToUpper(strings.TrimSpace(code))
	v = strings.TrimPrefix(v, "RAL")
	return strings.TrimSpace(v)
}

// NormalizePtr applies Normalize to an optional column, mapping blanks to nil.
func NormalizePtr(code *string) *string {
	if code == nil {
		return nil
	}
	v := Normalize(*code)
	if v == "" {
		return nil
	}
	return &v
}

// All returns every colour ordered by code.
func All() []Color {
	out := make([]Color, len(classic))
	copy(out, classic)
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup finds a colour by code.
func Lookup(code string) (Color, bool) {
	c, ok := byCode[Normalize(code)]
	return c, ok
}

// Search matches a code prefix or a substring of either name, ignoring case
// and accents. An empty query returns the first limit colours.
func Search(query string, limit int) []Color {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	q := fold(query)
	code := Normalize(query)
	out := make([]Color, 0, limit)
	for _, c := range All() {
		if len(out) == limit {
			break
		}
		switch {
		case q == "":
		case code != "" && strings.HasPrefix(c.Code, code):
		case strings.Contains(fold(c.NameFR), q), strings.Contains(fold(c.NameEN), q):
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
