package record

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenNumber  = regexp.MustCompile(`\s*\(\d+\)\s*$`)
	nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)
)

// asciiFold strips diacritics so "Motörhead" slugs to "motorhead".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CleanName removes the numeric disambiguator the cataloging source appends
// to duplicate artist names ("Nirvana (2)" -> "Nirvana").
func CleanName(name string) string {
	return strings.TrimSpace(parenNumber.ReplaceAllString(name, ""))
}

// Slugify derives a URL-safe slug: disambiguator suffix dropped, diacritics
// folded to ASCII, lower-cased, non-alphanumeric runs collapsed to one hyphen.
func Slugify(text string) string {
	text = CleanName(text)
	if folded, _, err := transform.String(asciiFold, text); err == nil {
		text = folded
	}
	slug := strings.ToLower(text)
	slug = nonSlugRunes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ReleaseSlug derives the canonical slug for a release from artist and title.
func ReleaseSlug(artist, title string) string {
	return Slugify(artist + " " + title)
}
