package format

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-formguard/pkg/numfmt"
)

var machineDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// phone renders a national mobile number as (AAA) BBB CC DD after
// PhoneDigits has dropped the prefixes.
func phone(raw string, _ int) Result {
	digits := PhoneDigits(raw)

	var b strings.Builder
	if len(digits) > 0 {
		b.WriteByte('(')
		b.WriteString(digits[:min(3, len(digits))])
	}
	if len(digits) > 3 {
		b.WriteString(") ")
		b.WriteString(digits[3:min(6, len(digits))])
	}
	if len(digits) > 6 {
		b.WriteByte(' ')
		b.WriteString(digits[6:min(8, len(digits))])
	}
	if len(digits) > 8 {
		b.WriteByte(' ')
		b.WriteString(digits[8:])
	}
	return Result{Text: b.String(), Digits: digits}
}

// PhoneDigits strips a phone number down to its national significant digits,
// truncated to ten. The 90 country code is only dropped from numbers longer
// than ten digits.
func PhoneDigits(raw string) string {
	digits := digitsOnly(raw)
	if len(digits) > 10 {
		digits = strings.TrimPrefix(digits, "90")
	}
	digits = strings.TrimPrefix(digits, "0")
	return truncate(digits, 10)
}

func creditCard(raw string, _ int) Result {
	digits := truncate(digitsOnly(raw), 16)
	return Result{Text: chunk(digits, 4, " "), Digits: digits}
}

func iban(raw string, _ int) Result {
	cleaned := truncate(alnumUpper(raw), 26)
	return Result{Text: chunk(cleaned, 4, " "), Digits: cleaned}
}

func digitsMax(max int) Func {
	return func(raw string, _ int) Result {
		digits := truncate(digitsOnly(raw), max)
		return Result{Text: digits, Digits: digits}
	}
}

// date masks free text into DD.MM.YYYY. Values already in machine form
// (YYYY-MM-DD, typically from a native date control) pass through untouched.
func date(raw string, _ int) Result {
	if machineDate.MatchString(raw) {
		return Result{Text: raw, Digits: strings.ReplaceAll(raw, "-", "")}
	}
	digits := truncate(digitsOnly(raw), 8)

	var b strings.Builder
	b.WriteString(digits[:min(2, len(digits))])
	if len(digits) > 2 {
		b.WriteByte('.')
		b.WriteString(digits[2:min(4, len(digits))])
	}
	if len(digits) > 4 {
		b.WriteByte('.')
		b.WriteString(digits[4:])
	}
	return Result{Text: b.String(), Digits: digits}
}

func clock(raw string, _ int) Result {
	digits := truncate(digitsOnly(raw), 4)
	var b strings.Builder
	b.WriteString(digits[:min(2, len(digits))])
	if len(digits) > 2 {
		b.WriteByte(':')
		b.WriteString(digits[2:])
	}
	return Result{Text: b.String(), Digits: digits}
}

// currency groups the integer part and keeps at most opts.Decimals fraction
// digits. While typing only ',' starts the fraction and every '.' is treated
// as grouping; the canonical form also accepts a machine decimal point and
// pads the fraction.
func currency(opts Options) Func {
	decimals := opts.Decimals
	return func(raw string, _ int) Result {
		raw = strings.TrimSpace(raw)
		decimalIdx := strings.IndexByte(raw, numfmt.DecimalSeparator)
		if opts.Canonical {
			decimalIdx = numfmt.DecimalIndex(raw)
		}

		intRaw, fracRaw := raw, ""
		if decimalIdx >= 0 {
			intRaw, fracRaw = raw[:decimalIdx], raw[decimalIdx+1:]
		}
		intDigits := digitsOnly(intRaw)
		fracDigits := truncate(digitsOnly(fracRaw), decimals)

		if intDigits == "" && decimalIdx < 0 {
			return Result{}
		}
		intDigits = strings.TrimLeft(intDigits, "0")
		if intDigits == "" {
			intDigits = "0"
		}
		if opts.Canonical && decimalIdx >= 0 {
			fracDigits += strings.Repeat("0", decimals-len(fracDigits))
		}

		text := numfmt.Group(intDigits)
		machine := intDigits
		if decimalIdx >= 0 && decimals > 0 {
			text += string(numfmt.DecimalSeparator) + fracDigits
			if fracDigits != "" {
				machine += "." + fracDigits
			}
		}
		return Result{Text: text, Digits: machine}
	}
}

var plateGroups = regexp.MustCompile(`^(\d{1,2})([A-Z]{1,3})(\d{2,4})$`)

// plate separates province code, letters and number with spaces once the
// value has that structure; partial input only gets the province split.
func plate(raw string, _ int) Result {
	cleaned := truncate(alnumUpper(raw), 8)
	text := cleaned
	if m := plateGroups.FindStringSubmatch(cleaned); m != nil {
		text = m[1] + " " + m[2] + " " + m[3]
	} else if len(cleaned) > 2 {
		text = cleaned[:2] + " " + cleaned[2:]
	}
	return Result{Text: text, Digits: cleaned}
}

func integer(raw string, _ int) Result {
	digits := digitsOnly(raw)
	return Result{Text: digits, Digits: digits}
}

// number keeps digits, separators and a single leading minus sign.
func number(raw string, _ int) Result {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case isDigit(c), c == '.', c == ',':
			b.WriteByte(c)
		case c == '-' && b.Len() == 0:
			b.WriteByte(c)
		}
	}
	text := b.String()
	return Result{Text: text, Digits: numfmt.Normalize(text)}
}
