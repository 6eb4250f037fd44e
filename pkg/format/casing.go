package format

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casing follows Turkish rules: i <-> İ and ı <-> I are distinct letters, so
// an ASCII case mapping would corrupt names.
var casingLocale = language.Turkish

func upper(raw string, _ int) Result {
	text := cases.Upper(casingLocale).String(raw)
	return Result{Text: text, Digits: text}
}

func lower(raw string, _ int) Result {
	text := cases.Lower(casingLocale).String(raw)
	return Result{Text: text, Digits: text}
}

// capitalize upper-cases the first letter of every word and leaves the rest
// of the word as typed. Opening quotes and brackets do not start a word.
func capitalize(raw string, _ int) Result {
	caser := cases.Upper(casingLocale)

	var b strings.Builder
	b.Grow(len(raw))
	atWordStart := true
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRuneInString(raw[i:])
		chunk := raw[i : i+size]
		i += size

		switch {
		case unicode.IsSpace(r) || strings.ContainsRune(`"'([{`, r):
			b.WriteString(chunk)
			atWordStart = true
		case atWordStart:
			b.WriteString(caser.String(chunk))
			atWordStart = false
		default:
			b.WriteString(chunk)
		}
	}
	text := b.String()
	return Result{Text: text, Digits: text}
}
