// Package reactor implements the per-field state machine: input events are
// formatted synchronously, validation is debounced, blur and change validate
// immediately and keystrokes are filtered by the mask's character class.
//
// A Reactor is not safe for concurrent use. Its owner (the form) serialises
// calls and provides Host.Run so that debounce callbacks, which fire on timer
// goroutines, re-enter through the same lock.
package reactor

import (
	"time"

	"github.com/goliatone/go-formguard/pkg/debounce"
	"github.com/goliatone/go-formguard/pkg/format"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/registry"
	"github.com/goliatone/go-formguard/pkg/validate"
)

// Host is the environment a reactor lives in.
type Host interface {
	// Value returns the display value of another field, for cross-field
	// rules. Unknown fields yield "".
	Value(name string) string
	// Run executes fn serialised with every other state change.
	Run(fn func())
	// Validated is called after every validation pass.
	Validated(r *Reactor, reason Reason)
}

// InputResult is written back into the input element.
type InputResult struct {
	Text   string `json:"text"`
	Digits string `json:"digits"`
	Cursor int    `json:"cursor"`
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithRegistry selects the type registry. Defaults to registry.Default().
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Reactor) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// WithOptions sets the form behaviour.
func WithOptions(opts model.Options) Option {
	return func(r *Reactor) {
		r.opts = opts
	}
}

// WithCatalogue sets the message catalogue.
func WithCatalogue(cat *messages.Catalogue) Option {
	return func(r *Reactor) {
		if cat != nil {
			r.catalogue = cat
		}
	}
}

// WithScheduler sets the scheduler backing the debounce timer.
func WithScheduler(s debounce.Scheduler) Option {
	return func(r *Reactor) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// WithClock overrides time.Now for LastEdit stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reactor) {
		if now != nil {
			r.now = now
		}
	}
}

// Reactor drives one field.
type Reactor struct {
	field     model.Field
	host      Host
	registry  *registry.Registry
	opts      model.Options
	catalogue *messages.Catalogue
	scheduler debounce.Scheduler
	now       func() time.Time

	entry     registry.Entry
	formatter format.Func
	canonical format.Func
	validator validate.Func
	class     format.CharClass
	debouncer *debounce.Debouncer

	state   State
	outcome validate.Outcome
	// edits increments on every value change. Debounced and remote results
	// carry the generation they were started with and are dropped when it
	// moved on.
	edits uint64
	// seq increments whenever a scheduled validation is superseded, so a
	// timer that already fired and waits in Host.Run can tell.
	seq uint64
	// remoteOut is the remote verdict for generation remoteGen.
	remoteGen uint64
	remoteOut *validate.Outcome
}

// New builds a reactor for field.
func New(field model.Field, host Host, options ...Option) *Reactor {
	r := &Reactor{
		field:     field,
		host:      host,
		registry:  registry.Default(),
		opts:      model.DefaultOptions(),
		catalogue: messages.Default(),
		scheduler: debounce.RealScheduler{},
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}

	r.entry = r.registry.Resolve(field.Type)
	decimals := format.WithDecimals(r.opts.CurrencyDecimals)
	if r.entry.Formatter != "" {
		r.formatter, _ = format.Lookup(r.entry.Formatter, decimals)
		if r.entry.Formatter == format.Currency {
			r.canonical, _ = format.Lookup(format.Currency, decimals, format.WithCanonical(true))
		}
	}
	if r.entry.Validator != "" {
		r.validator, _ = validate.Lookup(r.entry.Validator)
	}
	r.class = format.ClassOf(r.entry.Formatter)
	r.debouncer = debounce.New(r.scheduler, r.opts.DebounceDelay)

	r.state = State{Name: field.Name, Type: r.entry.Key}
	if field.Default != "" {
		r.setValue(field.Default)
		r.state.Validity = Untouched
	}
	return r
}

// Name returns the field name.
func (r *Reactor) Name() string { return r.field.Name }

// Field returns the field definition.
func (r *Reactor) Field() model.Field { return r.field }

// Entry returns the resolved registry entry.
func (r *Reactor) Entry() registry.Entry { return r.entry }

// State returns a snapshot.
func (r *Reactor) State() State { return r.state }

// Outcome returns the last validation outcome.
func (r *Reactor) Outcome() validate.Outcome { return r.outcome }

// Skipped reports whether the field is excluded from formatting and
// validation.
func (r *Reactor) Skipped() bool { return r.field.Skipped() }

// Pending reports whether a debounced validation is scheduled.
func (r *Reactor) Pending() bool { return r.debouncer.Pending() }

// Input handles a typed edit. The mask runs synchronously; validation is
// (re)scheduled after the quiet period.
func (r *Reactor) Input(raw string, cursor int) InputResult {
	if r.Skipped() {
		return InputResult{Text: raw, Digits: raw, Cursor: cursor}
	}

	r.edits++
	r.state.Raw = raw
	r.state.LastEdit = r.now()
	r.state.Validity = Formatting
	r.state.Success = false

	text, digits := raw, raw
	if r.opts.FormatOnInput && r.formatter != nil {
		res := r.formatter(raw, cursor)
		text, digits = res.Text, res.Digits
	}
	r.state.Formatted = text
	r.state.Digits = digits
	out := InputResult{Text: text, Digits: digits, Cursor: format.Cursor(raw, text, cursor)}
	if !r.opts.ValidateOnInput {
		return out
	}

	r.state.Validity = Pending
	r.seq++
	gen, seq := r.edits, r.seq
	r.debouncer.Trigger(func() {
		r.host.Run(func() {
			if gen != r.edits || seq != r.seq {
				return
			}
			r.Validate(ReasonInput)
		})
	})
	return out
}

// Blur validates at once, cancelling the pending debounce. Masks with a final
// form (currency) are completed first.
func (r *Reactor) Blur() State {
	if r.Skipped() {
		return r.state
	}
	if r.opts.FormatOnInput && r.canonical != nil && r.state.Formatted != "" {
		res := r.canonical(r.state.Formatted, 0)
		r.state.Formatted, r.state.Digits = res.Text, res.Digits
	}
	if !r.opts.ValidateOnBlur {
		return r.state
	}
	r.Cancel()
	r.Validate(ReasonBlur)
	return r.state
}

// Change commits a value from a select, radio group or programmatic source
// and validates without debounce.
func (r *Reactor) Change(value string) State {
	if r.Skipped() {
		return r.state
	}
	r.edits++
	r.state.Raw = value
	r.state.Formatted = value
	r.state.Digits = value
	r.state.LastEdit = r.now()
	r.Cancel()
	r.Validate(ReasonChange)
	return r.state
}

// Toggle commits a checkbox. A checked box submits its value ("on" when it
// has none); an unchecked box submits nothing.
func (r *Reactor) Toggle(checked bool) State {
	value := ""
	if checked {
		value = r.field.Value
		if value == "" {
			value = "on"
		}
	}
	return r.Change(value)
}

// KeyDown reports whether a keystroke may reach the field.
func (r *Reactor) KeyDown(key format.Key) bool {
	if r.Skipped() {
		return true
	}
	return r.class.Allow(key)
}

// SetValue replaces the value without user interaction (derived values,
// prefill). The value goes through the final form of the mask.
func (r *Reactor) SetValue(value string) {
	r.edits++
	r.Cancel()
	r.setValue(value)
	r.state.LastEdit = r.now()
}

func (r *Reactor) setValue(value string) {
	r.state.Raw = value
	text, digits := value, value
	switch {
	case r.canonical != nil:
		res := r.canonical(value, 0)
		text, digits = res.Text, res.Digits
	case r.formatter != nil:
		res := r.formatter(value, len(value))
		text, digits = res.Text, res.Digits
	}
	r.state.Formatted = text
	r.state.Digits = digits
	r.state.Validity = Pending
}

// Validate runs the rules now and records the outcome.
func (r *Reactor) Validate(reason Reason) validate.Outcome {
	out := r.Check()
	r.apply(out)
	if r.host != nil {
		r.host.Validated(r, reason)
	}
	return out
}

// Check evaluates the current value without touching the state. Generic
// rules run first, then the type validator, then cross-field rules.
func (r *Reactor) Check() validate.Outcome {
	if r.Skipped() {
		return validate.OK()
	}
	value := r.state.Formatted
	out := r.field.Rules().Check(value)
	if out.Valid && value != "" && r.validator != nil {
		out = r.validator(value)
	}
	if out.Valid && r.field.Match != "" {
		out = validate.Match(value, r.peer(r.field.Match))
	}
	if out.Valid && r.field.DateRangeStart != "" {
		out = validate.DateRange(value, r.peer(r.field.DateRangeStart))
	}
	if out.Valid && r.field.Password != nil && value != "" {
		if !r.field.Password.Check(value).Passed() {
			out = validate.Fail(messages.PasswordPolicy, nil)
		}
	}
	// A remote rejection holds until the value changes.
	if out.Valid && r.remoteOut != nil && r.remoteGen == r.edits && !r.remoteOut.Valid {
		return *r.remoteOut
	}
	return out.Describe(r.catalogue)
}

func (r *Reactor) peer(name string) string {
	if r.host == nil {
		return ""
	}
	return r.host.Value(name)
}

func (r *Reactor) apply(out validate.Outcome) {
	r.outcome = out
	r.state.Key = out.Key
	r.state.Message = out.Message
	if out.Valid {
		r.state.Validity = Valid
		r.state.Success = r.opts.ShowSuccessState && r.state.Formatted != ""
		return
	}
	r.state.Validity = Invalid
	r.state.Success = false
}

// Cancel drops any pending debounced validation, including one whose timer
// already fired and is waiting to run.
func (r *Reactor) Cancel() {
	r.seq++
	r.debouncer.Cancel()
}

// BeginRemote marks a locally valid field as pending a remote check and
// returns the generation and value to check.
func (r *Reactor) BeginRemote() (gen uint64, value string, ok bool) {
	if !r.field.Remote || r.state.Validity != Valid || r.state.Formatted == "" {
		return 0, "", false
	}
	r.state.Validity = Pending
	r.state.Success = false
	return r.edits, r.state.Formatted, true
}

// CompleteRemote applies a remote result. It returns false, leaving the state
// alone, when the value changed after the check was issued.
func (r *Reactor) CompleteRemote(gen uint64, out validate.Outcome) bool {
	if gen != r.edits {
		return false
	}
	out = out.Describe(r.catalogue)
	r.remoteGen, r.remoteOut = gen, &out
	r.apply(out)
	if r.host != nil {
		r.host.Validated(r, ReasonRemote)
	}
	return true
}

// RemoteSkipped restores the local verdict when a remote check could not run.
func (r *Reactor) RemoteSkipped(gen uint64) {
	if gen == r.edits && r.state.Validity == Pending {
		r.apply(r.outcome)
	}
}

// Fail marks the field invalid with an externally produced message (server
// side validation).
func (r *Reactor) Fail(message string) {
	r.Cancel()
	out := validate.Fail(messages.Invalid, nil)
	out.Message = message
	r.apply(out.Describe(r.catalogue))
	if r.host != nil {
		r.host.Validated(r, ReasonServer)
	}
}

// Reset returns the field to Untouched with an empty value.
func (r *Reactor) Reset() {
	r.edits++
	r.Cancel()
	r.remoteOut = nil
	r.outcome = validate.Outcome{}
	r.state = State{Name: r.field.Name, Type: r.entry.Key}
}
