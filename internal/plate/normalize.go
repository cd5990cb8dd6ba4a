// Package plate holds the licence plate field filters, the form validity
// rules and the canonical string assembly.
//
// Field filter pipeline
// 1 drop invalid UTF-8
// 2 Unicode NFC so decomposed umlauts compose to a single rune
// 3 upper-case (region code and letters only)
// 4 remove every rune outside the field's character class
package plate

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func isCityCodeRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || r == 'Ä' || r == 'Ö' || r == 'Ü'
}

func isLetterRune(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}

func keepOnly(allowed func(rune) bool) transform.Transformer {
	return runes.Remove(runes.Predicate(func(r rune) bool { return !allowed(r) }))
}

// transformer chains are stateful, one pool per field
var chainPools = map[Field]*sync.Pool{
	FieldCityCode: {New: func() any {
		return transform.Chain(norm.NFC, cases.Upper(language.Und), keepOnly(isCityCodeRune))
	}},
	FieldLetters: {New: func() any {
		return transform.Chain(norm.NFC, cases.Upper(language.Und), keepOnly(isLetterRune))
	}},
	FieldNumbers: {New: func() any {
		return transform.Chain(norm.NFC, keepOnly(isDigitRune))
	}},
}

// Normalize filters raw down to the character class of field f. It never
// truncates: length caps are enforced on the keystroke path and by the form
// validity rules. Unknown fields yield the empty string.
func Normalize(f Field, raw string) string {
	pool, ok := chainPools[f]
	if !ok || raw == "" {
		return ""
	}

	raw = strings.ToValidUTF8(raw, "")

	tr := pool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, raw)
	tr.Reset()
	pool.Put(tr)
	if err != nil {
		return ""
	}
	return out
}

// Type applies one keystroke r to the current value of f. A keystroke into a
// field already holding Cap runes is dropped, like an input with maxlength,
// and so is one whose upper-case form would overflow the cap (ß -> SS).
func Type(f Field, current string, r rune) string {
	if utf8.RuneCountInString(current) >= f.Cap() {
		return current
	}
	next := Normalize(f, current+string(r))
	if utf8.RuneCountInString(next) > f.Cap() {
		return current
	}
	return next
}

// Len counts runes, which is what the caps are measured in.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Compact reduces a plate to a comparison key: no whitespace or dashes,
// upper-cased.
func Compact(raw string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)
}
