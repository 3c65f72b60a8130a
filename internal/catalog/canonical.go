package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks ("é" -> "e").
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacritics, s)
	if err != nil {
		return s
	}
	return out
}

// Canonical turns free text into a catalog lookup key: uppercase,
// diacritics stripped, punctuation collapsed to single spaces.
func Canonical(s string) string {
	s = strings.ToUpper(StripDiacritics(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var dosageInName = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(mg|g|ml|µg|mcg|ui|%)`)

// ExtractDosageFromName pulls a "number unit" dosage out of a
// medication label, e.g. "DOLIPRANE 1000 mg" -> "1000 mg". Empty when
// the label carries none.
func ExtractDosageFromName(name string) string {
	m := dosageInName.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", ".") + " " + strings.ToLower(m[2])
}
