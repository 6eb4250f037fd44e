// Package formguard formats and validates Turkish identifiers and common form
// inputs. The top-level helpers are pure entry points mirroring what a form
// does as the user types, usable for server-side pre-validation; NewForm
// builds the full reactive engine for a form definition.
package formguard

import (
	"github.com/goliatone/go-formguard/pkg/form"
	"github.com/goliatone/go-formguard/pkg/format"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/registry"
	"github.com/goliatone/go-formguard/pkg/validate"
)

// Engine binds a registry, a message catalogue and number formatting
// options. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	registry  *registry.Registry
	catalogue *messages.Catalogue
	decimals  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry swaps the type registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.registry = reg
		}
	}
}

// WithCatalogue swaps the message catalogue.
func WithCatalogue(cat *messages.Catalogue) Option {
	return func(e *Engine) {
		if cat != nil {
			e.catalogue = cat
		}
	}
}

// WithDecimals sets the fraction digits of the currency mask.
func WithDecimals(decimals int) Option {
	return func(e *Engine) {
		if decimals >= 0 {
			e.decimals = decimals
		}
	}
}

// NewEngine returns an engine with the built-in registry and the default
// catalogue unless configured otherwise.
func NewEngine(options ...Option) *Engine {
	e := &Engine{
		registry:  registry.Default(),
		catalogue: messages.Default(),
		decimals:  model.DefaultOptions().CurrencyDecimals,
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *registry.Registry { return e.registry }

// Catalogue returns the engine's catalogue.
func (e *Engine) Catalogue() *messages.Catalogue { return e.catalogue }

// Format returns the final form of value for typeKey, the text a field holds
// once the user leaves it. Unknown keys return value unchanged.
func (e *Engine) Format(value, typeKey string) format.Result {
	fn, ok := e.registry.Formatter(typeKey, format.WithDecimals(e.decimals), format.WithCanonical(true))
	if !ok {
		return format.Result{Text: value, Digits: value}
	}
	return fn(value, len(value))
}

// FormatAt applies the as-you-type mask and re-derives the caret position.
func (e *Engine) FormatAt(value, typeKey string, cursor int) (format.Result, int) {
	fn, ok := e.registry.Formatter(typeKey, format.WithDecimals(e.decimals))
	if !ok {
		return format.Result{Text: value, Digits: value}, cursor
	}
	res := fn(value, cursor)
	return res, format.Cursor(value, res.Text, cursor)
}

// Validate runs the type validator of typeKey on value and renders the
// message. Empty values and keys without a validator are valid.
func (e *Engine) Validate(value, typeKey string) validate.Outcome {
	if value == "" {
		return validate.OK()
	}
	fn, ok := e.registry.Validator(typeKey)
	if !ok {
		return validate.OK()
	}
	return fn(value).Describe(e.catalogue)
}

// Types lists the registered entries, sorted by key.
func (e *Engine) Types() []registry.Entry {
	keys := e.registry.Keys()
	entries := make([]registry.Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, e.registry.Resolve(key))
	}
	return entries
}

// NewForm builds a form that shares the engine's registry and catalogue.
// Options passed by the caller take precedence.
func (e *Engine) NewForm(def model.FormDef, options ...form.Option) (*form.Form, error) {
	base := []form.Option{form.WithRegistry(e.registry), form.WithCatalogue(e.catalogue)}
	return form.New(def, append(base, options...)...)
}

var defaultEngine = NewEngine()

// Format returns the final form of value for typeKey using the built-in
// registry.
func Format(value, typeKey string) format.Result {
	return defaultEngine.Format(value, typeKey)
}

// Validate checks value against the validator of typeKey using the built-in
// registry and the default catalogue.
func Validate(value, typeKey string) validate.Outcome {
	return defaultEngine.Validate(value, typeKey)
}

// NewForm builds a form with the built-in registry.
func NewForm(def model.FormDef, options ...form.Option) (*form.Form, error) {
	return form.New(def, options...)
}
