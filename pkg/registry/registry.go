// Package registry maps field type keys to a formatter and a validator. A
// Registry is built once and is read-only afterwards, so it can be shared by
// every form without locking.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formguard/pkg/format"
	"github.com/goliatone/go-formguard/pkg/validate"
)

// TextKey is the type key of free-text fields.
const TextKey = "text"

var (
	// ErrEmptyKey is returned when registering a blank type key.
	ErrEmptyKey = errors.New("registry: type key is empty")
	// ErrUnknownFormatter is returned for an entry naming a missing formatter.
	ErrUnknownFormatter = errors.New("registry: unknown formatter")
	// ErrUnknownValidator is returned for an entry naming a missing validator.
	ErrUnknownValidator = errors.New("registry: unknown validator")
	// ErrUnknownTarget is returned for an alias whose target is not registered.
	ErrUnknownTarget = errors.New("registry: alias target not registered")
)

// Entry is the dispatch pair for one type key. Empty identifiers mean "no
// formatter" and "no type validator".
type Entry struct {
	Key       string      `json:"key"`
	Formatter format.ID   `json:"formatter,omitempty"`
	Validator validate.ID `json:"validator,omitempty"`
}

// Hint describes a field whose type key is not declared. It feeds inference
// when definitions come from schemas (OpenAPI formats, property names).
type Hint struct {
	Name   string
	Type   string
	Format string
}

// Matcher decides whether a type key applies to a hinted field.
type Matcher func(hint Hint) bool

type rule struct {
	key      string
	priority int
	match    Matcher
	order    int
}

// Registry resolves type keys. The zero value is not usable; build one with a
// Builder or Default.
type Registry struct {
	entries map[string]Entry
	aliases map[string]string
	rules   []rule
}

// Builder accumulates entries before producing an immutable Registry.
type Builder struct {
	entries map[string]Entry
	aliases map[string]string
	rules   []rule
	errs    []error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[string]Entry),
		aliases: make(map[string]string),
	}
}

// Register adds or replaces a type key.
func (b *Builder) Register(key string, formatter format.ID, validator validate.ID) *Builder {
	key = normalize(key)
	if key == "" {
		b.errs = append(b.errs, ErrEmptyKey)
		return b
	}
	if formatter != "" {
		if _, ok := format.Lookup(formatter); !ok {
			b.errs = append(b.errs, fmt.Errorf("%w: %q for %q", ErrUnknownFormatter, formatter, key))
			return b
		}
	}
	if validator != "" {
		if _, ok := validate.Lookup(validator); !ok {
			b.errs = append(b.errs, fmt.Errorf("%w: %q for %q", ErrUnknownValidator, validator, key))
			return b
		}
	}
	b.entries[key] = Entry{Key: key, Formatter: formatter, Validator: validator}
	return b
}

// Alias makes alias resolve to target. Targets are checked at Build.
func (b *Builder) Alias(alias, target string) *Builder {
	alias, target = normalize(alias), normalize(target)
	if alias == "" || target == "" {
		b.errs = append(b.errs, ErrEmptyKey)
		return b
	}
	b.aliases[alias] = target
	return b
}

// Infer registers a matcher used by Registry.Infer. Higher priority wins;
// ties fall back to registration order.
func (b *Builder) Infer(key string, priority int, matcher Matcher) *Builder {
	key = normalize(key)
	if key == "" || matcher == nil {
		b.errs = append(b.errs, ErrEmptyKey)
		return b
	}
	b.rules = append(b.rules, rule{key: key, priority: priority, match: matcher, order: len(b.rules)})
	return b
}

// Extend copies the entries, aliases and matchers of r into the builder.
func (b *Builder) Extend(r *Registry) *Builder {
	if r == nil {
		return b
	}
	for key, entry := range r.entries {
		b.entries[key] = entry
	}
	for alias, target := range r.aliases {
		b.aliases[alias] = target
	}
	for _, rl := range r.rules {
		rl.order = len(b.rules)
		b.rules = append(b.rules, rl)
	}
	return b
}

// Build validates the accumulated configuration and returns the registry.
func (b *Builder) Build() (*Registry, error) {
	errs := append([]error(nil), b.errs...)
	for alias, target := range b.aliases {
		if _, ok := b.entries[target]; !ok {
			errs = append(errs, fmt.Errorf("%w: %q -> %q", ErrUnknownTarget, alias, target))
		}
	}
	for _, rl := range b.rules {
		if _, ok := b.entries[rl.key]; !ok {
			errs = append(errs, fmt.Errorf("%w: inference rule %q", ErrUnknownTarget, rl.key))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	reg := &Registry{
		entries: make(map[string]Entry, len(b.entries)),
		aliases: make(map[string]string, len(b.aliases)),
		rules:   append([]rule(nil), b.rules...),
	}
	for key, entry := range b.entries {
		reg.entries[key] = entry
	}
	for alias, target := range b.aliases {
		reg.aliases[alias] = target
	}
	sort.SliceStable(reg.rules, func(i, j int) bool {
		if reg.rules[i].priority == reg.rules[j].priority {
			return reg.rules[i].order < reg.rules[j].order
		}
		return reg.rules[i].priority > reg.rules[j].priority
	})
	return reg, nil
}

// Lookup returns the entry for key, following aliases. Keys are case
// insensitive.
func (r *Registry) Lookup(key string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	key = normalize(key)
	if target, ok := r.aliases[key]; ok {
		key = target
	}
	entry, ok := r.entries[key]
	return entry, ok
}

// Resolve is Lookup with the free-text fallback: unknown keys get no
// formatter and no type validator.
func (r *Registry) Resolve(key string) Entry {
	if entry, ok := r.Lookup(key); ok {
		return entry
	}
	return Entry{Key: TextKey}
}

// Formatter returns the formatter bound to key.
func (r *Registry) Formatter(key string, options ...format.Option) (format.Func, bool) {
	entry := r.Resolve(key)
	if entry.Formatter == "" {
		return nil, false
	}
	return format.Lookup(entry.Formatter, options...)
}

// Validator returns the validator bound to key.
func (r *Registry) Validator(key string) (validate.Func, bool) {
	entry := r.Resolve(key)
	if entry.Validator == "" {
		return nil, false
	}
	return validate.Lookup(entry.Validator)
}

// Infer picks a type key for a field without one. ok is false when no
// matcher applies.
func (r *Registry) Infer(hint Hint) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, rl := range r.rules {
		if rl.match(hint) {
			return rl.key, true
		}
	}
	return "", false
}

// Keys lists the canonical type keys, sorted.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	out := make(map[string]string, len(r.aliases))
	for alias, target := range r.aliases {
		out[alias] = target
	}
	return out
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
