// Package format implements the input masks applied while a user types. Every
// formatter is a pure function from raw text to its display form; characters
// that do not fit a mask are dropped rather than reported.
package format

import (
	"strings"
	"unicode/utf8"
)

// ID names a formatter in the catalogue.
type ID string

// Built-in formatter identifiers.
const (
	Phone      ID = "phone"
	CreditCard ID = "credit_card"
	IBAN       ID = "iban"
	NationalID ID = "national_id"
	TaxID      ID = "tax_id"
	Date       ID = "date"
	Currency   ID = "currency"
	Plate      ID = "plate"
	Uppercase  ID = "uppercase"
	Lowercase  ID = "lowercase"
	Capitalize ID = "capitalize"
	Integer    ID = "integer"
	Number     ID = "number"
	Time       ID = "time"
)

// DefaultDecimals is the number of fractional digits kept by the currency
// formatter when no override is configured.
const DefaultDecimals = 2

// Result is the outcome of a formatting pass. Text is written back into the
// input; Digits carries the normalised payload (digits, cleaned alphanumerics
// or a machine readable number depending on the mask).
type Result struct {
	Text   string `json:"text"`
	Digits string `json:"digits"`
}

// Func formats raw input. The cursor position is supplied for masks that want
// it; none of the built-ins depend on it.
type Func func(raw string, cursor int) Result

// Options tune formatter construction.
type Options struct {
	// Decimals caps the fractional digits kept by the currency mask.
	Decimals int
	// Canonical switches masks with an as-you-type and a final form (currency)
	// to the final form: machine decimal points are accepted and the fraction
	// is padded to Decimals.
	Canonical bool
}

// Option mutates Options.
type Option func(*Options)

// WithDecimals overrides the currency fraction length. Negative values are
// ignored.
func WithDecimals(decimals int) Option {
	return func(o *Options) {
		if decimals >= 0 {
			o.Decimals = decimals
		}
	}
}

// WithCanonical selects the final (non-interactive) form of a mask.
func WithCanonical(canonical bool) Option {
	return func(o *Options) {
		o.Canonical = canonical
	}
}

// Lookup returns the formatter registered for id.
func Lookup(id ID, options ...Option) (Func, bool) {
	opts := Options{Decimals: DefaultDecimals}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	switch id {
	case Phone:
		return phone, true
	case CreditCard:
		return creditCard, true
	case IBAN:
		return iban, true
	case NationalID:
		return digitsMax(11), true
	case TaxID:
		return digitsMax(10), true
	case Date:
		return date, true
	case Currency:
		return currency(opts), true
	case Plate:
		return plate, true
	case Uppercase:
		return upper, true
	case Lowercase:
		return lower, true
	case Capitalize:
		return capitalize, true
	case Integer:
		return integer, true
	case Number:
		return number, true
	case Time:
		return clock, true
	default:
		return nil, false
	}
}

// IDs lists the built-in formatter identifiers.
func IDs() []ID {
	return []ID{Phone, CreditCard, IBAN, NationalID, TaxID, Date, Currency, Plate, Uppercase, Lowercase, Capitalize, Integer, Number, Time}
}

// Cursor re-derives a caret position after formatting by shifting the
// original position by the length delta and clamping it to the new text.
// Positions are counted in characters, not bytes.
func Cursor(raw, formatted string, cursor int) int {
	newLen := utf8.RuneCountInString(formatted)
	pos := cursor + (newLen - utf8.RuneCountInString(raw))
	if pos < 0 {
		return 0
	}
	if pos > newLen {
		return newLen
	}
	return pos
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func alnumUpper(s string) string {
	upper := strings.ToUpper(s)
	var b strings.Builder
	b.Grow(len(upper))
	for i := 0; i < len(upper); i++ {
		c := upper[i]
		if isDigit(c) || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func chunk(s string, size int, sep string) string {
	if len(s) <= size {
		return s
	}
	parts := make([]string, 0, len(s)/size+1)
	for i := 0; i < len(s); i += size {
		end := i + size
		if end > len(s) {
			end = len(s)
		}
		parts = append(parts, s[i:end])
	}
	return strings.Join(parts, sep)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
