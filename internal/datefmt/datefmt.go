// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package datefmt formats publication dates as "dd MMM yyyy" with
// localized month abbreviations (e.g. "15 mar 2023").
package datefmt

import (
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Layout is the display layout, in Go reference-time notation.
const Layout = "02 Jan 2006"

// supported is ordered by preference; the first entry is the fallback.
var supported = []language.Tag{
	language.BrazilianPortuguese,
	language.English,
}

// locales maps each supported tag to its month names.
var locales = map[language.Tag]monday.Locale{
	language.BrazilianPortuguese: monday.LocalePtBR,
	language.English:             monday.LocaleEnUS,
}

var matcher = language.NewMatcher(supported)

// Formatter renders dates for a single locale and time zone.
type Formatter struct {
	tag    language.Tag
	locale monday.Locale
	loc    *time.Location
}

// New returns a Formatter for the given BCP 47 locale (e.g. "pt-BR").
// Unsupported locales fall back to Brazilian Portuguese. A nil location
// means UTC.
func New(locale string, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	tag := supported[0]
	if parsed, err := language.Parse(locale); err == nil {
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Formatter{tag: tag, locale: locales[tag], loc: loc}
}

// Locale returns the matched locale tag.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// Format renders t as "dd MMM yyyy" in the formatter's zone.
func (f *Formatter) Format(t time.Time) string {
	return monday.Format(t.In(f.loc), Layout, f.locale)
}
