// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug checks URL slugs taken from request paths before they are
// used as repository UIDs.
package slug

import (
	"unicode"
	"unicode/utf8"
)

// MaxLength bounds accepted slugs, in bytes.
const MaxLength = 255

// Valid reports whether s has the shape of a document UID: non-empty,
// at most MaxLength bytes, made of lowercase letters, digits, hyphens and
// underscores. Hyphens may appear anywhere, including at either end.
// Example: "como-utilizar-hooks" is valid, "Hello World" is not.
func Valid(s string) bool {
	if s == "" || len(s) > MaxLength || !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == '-' || r == '_':
		case unicode.IsDigit(r):
		case unicode.IsLetter(r) && !unicode.IsUpper(r):
		default:
			return false
		}
	}
	return true
}
