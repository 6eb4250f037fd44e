// Package messages maps validation error keys to parameterised, human
// readable templates. Templates use {param} placeholders.
package messages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
)

// Key identifies an error category.
type Key string

// Error keys shared by validators and the form orchestrator.
const (
	Required              Key = "required"
	MinLength             Key = "min_length"
	MaxLength             Key = "max_length"
	Min                   Key = "min_val"
	Max                   Key = "max_val"
	Email                 Key = "email_error"
	URL                   Key = "url_error"
	IP                    Key = "ip_error"
	Pattern               Key = "pattern"
	Number                Key = "number_error"
	Phone                 Key = "phone_error"
	PhoneLength           Key = "phone_length"
	PhonePrefix           Key = "phone_prefix"
	NationalID            Key = "national_id_error"
	NationalIDLength      Key = "national_id_length"
	NationalIDFirstZero   Key = "national_id_first_zero"
	NationalIDChecksum    Key = "national_id_checksum"
	TaxID                 Key = "tax_id_error"
	TaxIDLength           Key = "tax_id_length"
	TaxIDChecksum         Key = "tax_id_checksum"
	TaxOrNationalIDLength Key = "tax_or_national_id_length"
	IBAN                  Key = "iban_error"
	IBANLength            Key = "iban_length"
	IBANPrefix            Key = "iban_prefix"
	IBANChecksum          Key = "iban_checksum"
	Plate                 Key = "plate_error"
	PlateProvince         Key = "plate_province"
	CreditCard            Key = "cc_error"
	CreditCardLength      Key = "cc_length"
	CreditCardChecksum    Key = "cc_checksum"
	Date                  Key = "date_error"
	DateInvalid           Key = "date_invalid"
	DateRange             Key = "date_range_error"
	Match                 Key = "match_error"
	PasswordPolicy        Key = "password_policy"
	Time                  Key = "time_error"
	MinRows               Key = "min_rows"
	Remote                Key = "remote_error"
	FormInvalid           Key = "form_invalid"
	Invalid               Key = "invalid"
)

// Params carries placeholder values for a template.
type Params map[string]any

// Translator resolves a key for a locale. It lets callers plug in their own
// i18n backend; a miss falls back to the catalogue templates.
type Translator interface {
	Translate(locale, key string) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string) (string, error) {
	return fn(locale, key)
}

// Catalogue is an immutable set of templates for one locale. It is safe for
// concurrent use.
type Catalogue struct {
	locale     language.Tag
	templates  map[Key]string
	translator Translator
	policy     *bluemonday.Policy
}

// Option configures a Catalogue.
type Option func(*Catalogue)

// WithOverrides replaces individual templates. Empty templates are ignored.
func WithOverrides(overrides map[Key]string) Option {
	return func(c *Catalogue) {
		for key, tmpl := range overrides {
			if strings.TrimSpace(tmpl) == "" {
				continue
			}
			c.templates[key] = tmpl
		}
	}
}

// WithTranslator consults t before the built-in templates.
func WithTranslator(t Translator) Option {
	return func(c *Catalogue) {
		c.translator = t
	}
}

var supported = []language.Tag{language.Turkish, language.English}

var matcher = language.NewMatcher(supported)

// New builds a catalogue for the closest supported locale. Unknown or empty
// locales resolve to Turkish, the locale the identifier rules target.
func New(locale string, options ...Option) *Catalogue {
	tag := MatchLocale(locale)
	base := turkish
	if tag == language.English {
		base = english
	}

	c := &Catalogue{
		locale:    tag,
		templates: make(map[Key]string, len(base)),
		policy:    bluemonday.StrictPolicy(),
	}
	for key, tmpl := range base {
		c.templates[key] = tmpl
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Default returns the Turkish catalogue without overrides.
func Default() *Catalogue {
	return New("tr")
}

// MatchLocale resolves an arbitrary BCP 47 string to a supported tag.
func MatchLocale(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return language.Turkish
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Turkish
	}
	_, idx, confidence := matcher.Match(tag)
	if confidence == language.No {
		return language.Turkish
	}
	return supported[idx]
}

// Locale reports the catalogue language.
func (c *Catalogue) Locale() string {
	if c == nil {
		return language.Turkish.String()
	}
	return c.locale.String()
}

// Template returns the raw template for key.
func (c *Catalogue) Template(key Key) (string, bool) {
	if c == nil {
		return "", false
	}
	if c.translator != nil {
		if tmpl, err := c.translator.Translate(c.locale.String(), string(key)); err == nil && strings.TrimSpace(tmpl) != "" {
			return tmpl, true
		}
	}
	tmpl, ok := c.templates[key]
	return tmpl, ok
}

// Render resolves key and substitutes params. Unknown keys render the generic
// invalid message so callers always have something to show.
func (c *Catalogue) Render(key Key, params Params) string {
	tmpl, ok := c.Template(key)
	if !ok {
		tmpl, ok = c.Template(Invalid)
		if !ok {
			return string(key)
		}
	}
	return Interpolate(tmpl, params)
}

// HTML renders key like Render but sanitises every parameter first, so user
// input echoed in a message (lengths, bounds, field labels) cannot inject
// markup when the UI layer inserts the message as HTML.
func (c *Catalogue) HTML(key Key, params Params) string {
	if c == nil {
		return Interpolate(string(key), nil)
	}
	safe := make(Params, len(params))
	for name, value := range params {
		safe[name] = c.policy.Sanitize(fmt.Sprint(value))
	}
	return c.Render(key, safe)
}

// Keys lists the keys that have a template, sorted.
func (c *Catalogue) Keys() []Key {
	if c == nil {
		return nil
	}
	keys := make([]Key, 0, len(c.templates))
	for key := range c.templates {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Interpolate replaces every {name} placeholder with its parameter value.
// Placeholders without a parameter are left untouched.
func Interpolate(tmpl string, params Params) string {
	if len(params) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(params)*2)
	for name, value := range params {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
