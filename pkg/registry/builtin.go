package registry

import (
	"strings"
	"sync"

	"github.com/goliatone/go-formguard/pkg/format"
	"github.com/goliatone/go-formguard/pkg/validate"
)

// Built-in type keys.
const (
	Phone           = "phone"
	NationalID      = "national_id"
	TaxID           = "tax_id"
	TaxOrNationalID = "tckn_vkn"
	IBAN            = "iban"
	Plate           = "plate"
	CreditCard      = "credit_card"
	Date            = "date"
	Time            = "time"
	Currency        = "currency"
	Email           = "email"
	URL             = "url"
	IP              = "ip"
	Integer         = "integer"
	Number          = "number"
	Uppercase       = "uppercase"
	Lowercase       = "lowercase"
	Capitalize      = "capitalize"
	AutoNumber      = "auto_number"
)

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the shared built-in registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Builtins().Build()
		if err != nil {
			panic(err)
		}
		defaultReg = reg
	})
	return defaultReg
}

// Builtins returns a builder pre-loaded with the built-in types, aliases and
// inference rules so callers can add their own before building.
func Builtins() *Builder {
	b := NewBuilder().
		Register(TextKey, "", "").
		Register(Phone, format.Phone, validate.Phone).
		Register(NationalID, format.NationalID, validate.NationalID).
		Register(TaxID, format.TaxID, validate.TaxID).
		Register(TaxOrNationalID, format.Number, validate.TaxOrNationalID).
		Register(IBAN, format.IBAN, validate.IBAN).
		Register(Plate, format.Plate, validate.Plate).
		Register(CreditCard, format.CreditCard, validate.CreditCard).
		Register(Date, format.Date, validate.Date).
		Register(Time, format.Time, validate.Time).
		Register(Currency, format.Currency, validate.Number).
		Register(Email, "", validate.Email).
		Register(URL, "", validate.URL).
		Register(IP, "", validate.IP).
		Register(Integer, format.Integer, validate.Number).
		Register(Number, format.Number, validate.Number).
		Register(Uppercase, format.Uppercase, "").
		Register(Lowercase, format.Lowercase, "").
		Register(Capitalize, format.Capitalize, "").
		Register(AutoNumber, format.Uppercase, "")

	aliases := map[string]string{
		"tel":         Phone,
		"telefon":     Phone,
		"tc":          NationalID,
		"tckn":        NationalID,
		"vkn":         TaxID,
		"vergi":       TaxID,
		"plaka":       Plate,
		"creditcard":  CreditCard,
		"kredi_karti": CreditCard,
		"tarih":       Date,
		"para":        Currency,
		"money":       Currency,
		"textarea":    TextKey,
		"password":    TextKey,
	}
	for alias, target := range aliases {
		b.Alias(alias, target)
	}

	b.Infer(Email, 100, formatIs("email"))
	b.Infer(URL, 100, formatIs("uri", "url"))
	b.Infer(IP, 100, formatIs("ipv4"))
	b.Infer(Date, 100, formatIs("date"))
	b.Infer(Time, 100, formatIs("time"))
	b.Infer(IBAN, 90, nameHas("iban"))
	b.Infer(NationalID, 90, nameHas("tckn", "tc_kimlik", "national_id"))
	b.Infer(TaxID, 90, nameHas("vkn", "vergi_no", "tax_id"))
	b.Infer(Phone, 80, nameHas("phone", "telefon", "gsm"))
	b.Infer(Plate, 80, nameHas("plaka", "plate"))
	b.Infer(Currency, 70, nameHas("price", "amount", "tutar", "fiyat"))
	b.Infer(Integer, 10, func(h Hint) bool { return strings.EqualFold(h.Type, "integer") })
	b.Infer(Number, 10, func(h Hint) bool { return strings.EqualFold(h.Type, "number") })
	return b
}

func formatIs(formats ...string) Matcher {
	return func(h Hint) bool {
		f := normalize(h.Format)
		for _, candidate := range formats {
			if f == candidate {
				return true
			}
		}
		return false
	}
}

func nameHas(fragments ...string) Matcher {
	return func(h Hint) bool {
		name := normalize(h.Name)
		if name == "" {
			return false
		}
		for _, fragment := range fragments {
			if strings.Contains(name, fragment) {
				return true
			}
		}
		return false
	}
}
