package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"golang.org/x/text/unicode/norm"
)

// symbolNames spells out symbols before transliteration.
var symbolNames = strings.NewReplacer(
	"$", "dollar",
	"%", "percent",
	"&", "and",
	"<", "less",
	">", "greater",
	"|", "or",
	"¢", "cent",
	"£", "pound",
	"¥", "yen",
	"€", "euro",
	"₹", "indian rupee",
	"©", "c",
	"®", "r",
	"™", "tm",
	"∞", "infinity",
	"♥", "love",
)

// Slugify turns a display name into a lowercase ASCII slug.
// Letters are transliterated ("Łódź" → "lodz", "Straße" → "strasse"),
// common symbols are spelled out ("&" → "and", "%" → "percent"), runs of
// whitespace and hyphens become a single hyphen and every other
// non-alphanumeric character is dropped.
//
//	"Action & Adventure" → "action-and-adventure"
//	"Half-Life: Alyx"    → "half-life-alyx"
func Slugify(name string) string {
	return slug.Make(strings.Map(dropPunct, symbolNames.Replace(norm.NFC.String(name))))
}

// dropPunct removes ASCII punctuation so "S.A." becomes "sa" rather than
// "s-a". Non-ASCII runes are left for transliteration.
func dropPunct(r rune) rune {
	switch {
	case r >= utf8.RuneSelf,
		r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
		r == '-', unicode.IsSpace(r):
		return r
	}
	return -1
}

// NormalizeWhitespace collapses newlines and whitespace runs to single
// spaces and trims the result.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateRunes returns the first n runes of s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
