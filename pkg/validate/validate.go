// Package validate holds the per-type validators and the generic field rules.
//
// A validator never fails: it returns an Outcome. Empty values are always
// valid because required-ness is a separate rule (see Rules).
package validate

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formguard/pkg/messages"
)

// ID names a validator.
type ID string

const (
	NationalID      ID = "national_id"
	TaxID           ID = "tax_id"
	TaxOrNationalID ID = "tax_or_national_id"
	IBAN            ID = "iban"
	CreditCard      ID = "credit_card"
	Phone           ID = "phone"
	Plate           ID = "plate"
	Date            ID = "date"
	Time            ID = "time"
	Email           ID = "email"
	URL             ID = "url"
	IP              ID = "ip"
	Number          ID = "number"
)

// Outcome is the result of a validation pass. Key and Params identify the
// catalogue message; Message is filled by Describe.
type Outcome struct {
	Valid   bool            `json:"valid"`
	Key     messages.Key    `json:"key,omitempty"`
	Params  messages.Params `json:"params,omitempty"`
	Message string          `json:"message,omitempty"`
}

// OK is the valid outcome.
func OK() Outcome {
	return Outcome{Valid: true}
}

// Fail builds an invalid outcome.
func Fail(key messages.Key, params messages.Params) Outcome {
	return Outcome{Key: key, Params: params}
}

// Describe renders the message for an invalid outcome. A message that is
// already set (a field-level pattern message, a server error) is kept.
func (o Outcome) Describe(cat *messages.Catalogue) Outcome {
	if o.Valid || o.Message != "" {
		return o
	}
	if cat == nil {
		cat = messages.Default()
	}
	o.Message = cat.Render(o.Key, o.Params)
	return o
}

// Func validates a single value.
type Func func(value string) Outcome

var validators = map[ID]Func{
	NationalID:      nationalID,
	TaxID:           taxID,
	TaxOrNationalID: taxOrNationalID,
	IBAN:            iban,
	CreditCard:      creditCard,
	Phone:           phone,
	Plate:           plate,
	Date:            date,
	Time:            clock,
	Email:           email,
	URL:             url,
	IP:              ip,
	Number:          number,
}

// Lookup returns the validator registered under id.
func Lookup(id ID) (Func, bool) {
	fn, ok := validators[id]
	return fn, ok
}

// IDs lists every validator, sorted.
func IDs() []ID {
	ids := make([]ID, 0, len(validators))
	for id := range validators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

func mod10(x int) int {
	return ((x % 10) + 10) % 10
}
