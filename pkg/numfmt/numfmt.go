// Package numfmt converts between locale formatted numbers ("1.250,50") and
// their machine representation. Grouping uses '.' and the decimal separator is
// ',' which matches the catalogue locale the formatters target.
package numfmt

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	// GroupSeparator separates thousands in the display form.
	GroupSeparator = '.'
	// DecimalSeparator separates the fractional part in the display form.
	DecimalSeparator = ','
)

// ErrEmpty is returned by Parse when the input holds no digits.
var ErrEmpty = errors.New("numfmt: empty number")

// Normalize rewrites a locale or machine formatted number into the machine
// form accepted by strconv.ParseFloat. Characters other than digits, a leading
// minus sign and separators are dropped.
//
// When a comma is present it is the decimal separator and every dot is
// grouping. Without a comma a single dot followed by anything other than
// exactly three digits is read as a decimal point; any other dot is grouping.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	negative := strings.HasPrefix(s, "-")
	intPart, fracPart, hasFraction := Split(s)

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(intPart)
	if hasFraction {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// Split separates s into integer and fractional digit runs using the rules
// documented on Normalize. The returned parts contain digits only.
func Split(s string) (intPart, fracPart string, hasFraction bool) {
	decimalIdx := DecimalIndex(s)
	if decimalIdx < 0 {
		return digitsOnly(s), "", false
	}
	return digitsOnly(s[:decimalIdx]), digitsOnly(s[decimalIdx+1:]), true
}

// DecimalIndex reports the byte index of the decimal separator in s, or -1
// when s has no fractional part.
func DecimalIndex(s string) int {
	if idx := strings.IndexByte(s, DecimalSeparator); idx >= 0 {
		return idx
	}
	if strings.Count(s, ".") != 1 {
		return -1
	}
	idx := strings.IndexByte(s, '.')
	tail := digitsOnly(s[idx+1:])
	if len(tail) == 3 && len(s[idx+1:]) == 3 {
		return -1
	}
	return idx
}

// Parse converts a locale formatted number into a float64.
func Parse(s string) (float64, error) {
	normalized := Normalize(s)
	if normalized == "" || normalized == "-" || normalized == "." || normalized == "-." {
		return 0, ErrEmpty
	}
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, strconv.ErrRange
	}
	return value, nil
}

// ParseOr0 parses s and falls back to zero on any failure, matching the
// forgiving behaviour totals need while a row is being typed.
func ParseOr0(s string) float64 {
	value, err := Parse(s)
	if err != nil {
		return 0
	}
	return value
}

// Group inserts the grouping separator every three digits from the right.
func Group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(GroupSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Format renders v with the requested number of decimals using the display
// separators, e.g. Format(1250.5, 2) == "1.250,50".
func Format(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		v = 0
	}
	raw := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(raw, ".")

	var b strings.Builder
	if v < 0 && strings.Trim(raw, "0.") != "" {
		b.WriteByte('-')
	}
	b.WriteString(Group(intPart))
	if decimals > 0 {
		b.WriteByte(DecimalSeparator)
		b.WriteString(fracPart)
	}
	return b.String()
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
