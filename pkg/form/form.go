// Package form orchestrates the field reactors of one form: it routes UI
// events, re-runs cross-field rules when either participant changes, derives
// values (age from a birth date), keeps line-item totals in sync, runs remote
// checks with a stale-response guard and gates submission on the validity of
// every visible field.
//
// A Form is safe for concurrent use. Debounce timers and remote checks fire on
// their own goroutines and re-enter through the form lock, so the engine keeps
// the single-threaded semantics of an event loop.
package form

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formguard/pkg/debounce"
	"github.com/goliatone/go-formguard/pkg/format"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/reactor"
	"github.com/goliatone/go-formguard/pkg/registry"
	"github.com/goliatone/go-formguard/pkg/remote"
	"github.com/goliatone/go-formguard/pkg/rows"
	"github.com/goliatone/go-formguard/pkg/validate"
	"github.com/goliatone/go-formguard/pkg/visibility"
	"github.com/goliatone/go-formguard/pkg/visibility/expr"
)

// birthDateLength is the length of a complete DD.MM.YYYY date.
const birthDateLength = 10

// SubmitResult reports the outcome of a submit attempt.
type SubmitResult struct {
	Valid bool `json:"valid"`
	// Errors maps field names to their inline message.
	Errors       map[string]string `json:"errors,omitempty"`
	FormErrors   []string          `json:"formErrors,omitempty"`
	FirstInvalid string            `json:"firstInvalid,omitempty"`
	// Summary is the form-wide warning shown when the submission fails.
	Summary string `json:"summary,omitempty"`
}

// Form is a running form.
type Form struct {
	mu sync.Mutex

	def           model.FormDef
	opts          model.Options
	optsSet       bool
	registry      *registry.Registry
	catalogue     *messages.Catalogue
	scheduler     debounce.Scheduler
	logger        zerolog.Logger
	observer      Observer
	view          View
	checker       remote.Checker
	remoteTimeout time.Duration
	visibility    visibility.Evaluator
	extras        map[string]any
	submitter     Submitter
	now           func() time.Time

	host       *host
	reactors   map[string]*reactor.Reactor
	order      []string
	inflight   map[string]uint64
	rows       *rows.Aggregator
	rowFields  map[string][]string
	formErrors []string

	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a form from its definition and registers every field.
func New(def model.FormDef, options ...Option) (*Form, error) {
	def = model.Normalize(def)
	if err := model.Check(def); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &Form{
		def:           def,
		registry:      registry.Default(),
		scheduler:     debounce.RealScheduler{},
		logger:        zerolog.Nop(),
		observer:      NopObserver{},
		view:          NopView{},
		remoteTimeout: DefaultRemoteTimeout,
		visibility:    expr.New(),
		now:           time.Now,
		reactors:      make(map[string]*reactor.Reactor, len(def.Fields)),
		inflight:      make(map[string]uint64),
		rowFields:     make(map[string][]string),
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if !f.optsSet {
		f.opts = def.Options.Apply(model.DefaultOptions())
	}
	if f.catalogue == nil {
		f.catalogue = messages.New(f.opts.Locale)
	}
	f.logger = f.logger.With().Str("form", def.ID).Logger()
	f.host = &host{form: f}
	if def.Rows != nil {
		f.rows = rows.New(rows.OnChange(func(s rows.Summary) {
			f.view.Totals(s)
		}))
	}

	for _, field := range def.Fields {
		if err := f.registerLocked(field); err != nil {
			cancel()
			return nil, err
		}
	}
	return f, nil
}

// ID returns the form id.
func (f *Form) ID() string { return f.def.ID }

// Definition returns the normalised definition.
func (f *Form) Definition() model.FormDef { return f.def }

// Options returns the effective behaviour options.
func (f *Form) Options() model.Options { return f.opts }

// Catalogue returns the message catalogue.
func (f *Form) Catalogue() *messages.Catalogue { return f.catalogue }

// Register adds a field, typically one inserted dynamically.
func (f *Form) Register(field model.Field) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFormClosed
	}
	return f.registerLocked(field)
}

func (f *Form) registerLocked(field model.Field) error {
	field.Name = strings.TrimSpace(field.Name)
	if field.Name == "" {
		return fmt.Errorf("form: %w", model.ErrEmptyFieldName)
	}
	if _, exists := f.reactors[field.Name]; exists {
		return fmt.Errorf("%w %q", ErrDuplicateField, field.Name)
	}
	r := reactor.New(field, f.host,
		reactor.WithRegistry(f.registry),
		reactor.WithOptions(f.opts),
		reactor.WithCatalogue(f.catalogue),
		reactor.WithScheduler(f.scheduler),
		reactor.WithClock(f.now),
	)
	f.reactors[field.Name] = r
	f.order = append(f.order, field.Name)
	return nil
}

// Unregister removes a field and cancels its pending work.
func (f *Form) Unregister(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFormClosed
	}
	return f.unregisterLocked(name)
}

func (f *Form) unregisterLocked(name string) error {
	r, ok := f.reactors[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	r.Cancel()
	delete(f.reactors, name)
	delete(f.inflight, name)
	if idx := slices.Index(f.order, name); idx >= 0 {
		f.order = slices.Delete(f.order, idx, idx+1)
	}
	return nil
}

func (f *Form) lookupLocked(name string) (*reactor.Reactor, error) {
	if f.closed {
		return nil, ErrFormClosed
	}
	r, ok := f.reactors[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return r, nil
}

// Input handles a keystroke-level edit and returns the masked text and the
// cursor position to write back.
func (f *Form) Input(name, raw string, cursor int) (reactor.InputResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.lookupLocked(name)
	if err != nil {
		return reactor.InputResult{}, err
	}
	res := r.Input(raw, cursor)
	f.syncRowLocked(r)
	f.view.Render(r.State())
	return res, nil
}

// Blur handles focus leaving a field.
func (f *Form) Blur(name string) (reactor.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.lookupLocked(name)
	if err != nil {
		return reactor.State{}, err
	}
	r.Blur()
	f.syncRowLocked(r)
	if !f.opts.ValidateOnBlur {
		f.view.Render(r.State())
	}
	f.deriveAgesLocked(name)
	return r.State(), nil
}

// Change commits the value of a select, radio group or other immediate
// control.
func (f *Form) Change(name, value string) (reactor.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.lookupLocked(name)
	if err != nil {
		return reactor.State{}, err
	}
	if choices := r.Field().Choices; value != "" && len(choices) > 0 && !slices.Contains(choices, value) {
		return r.State(), fmt.Errorf("%w: %q for %q", ErrUnknownChoice, value, name)
	}
	r.Change(value)
	f.syncRowLocked(r)
	return r.State(), nil
}

// Toggle checks or unchecks a checkbox.
func (f *Form) Toggle(name string, checked bool) (reactor.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.lookupLocked(name)
	if err != nil {
		return reactor.State{}, err
	}
	return r.Toggle(checked), nil
}

// KeyDown reports whether a keystroke may reach the field.
func (f *Form) KeyDown(name string, key format.Key) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.lookupLocked(name)
	if err != nil {
		return false, err
	}
	return r.KeyDown(key), nil
}

// SetValue assigns a value programmatically (prefill, derived values) and
// validates it.
func (f *Form) SetValue(name, value string) (reactor.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.lookupLocked(name)
	if err != nil {
		return reactor.State{}, err
	}
	r.SetValue(value)
	f.syncRowLocked(r)
	if !r.Skipped() {
		r.Validate(reactor.ReasonChange)
	}
	return r.State(), nil
}

// State returns the state of a field.
func (f *Form) State(name string) (reactor.State, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reactors[name]
	if !ok {
		return reactor.State{}, false
	}
	return r.State(), true
}

// States returns every field state in registration order.
func (f *Form) States() []reactor.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]reactor.State, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.reactors[name].State())
	}
	return out
}

// Names returns the registered field names in order.
func (f *Form) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.order)
}

// Values returns the display value of every registered field.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valuesLocked()
}

func (f *Form) valuesLocked() map[string]string {
	out := make(map[string]string, len(f.order))
	for _, name := range f.order {
		out[name] = f.reactors[name].State().Formatted
	}
	return out
}

// Visible reports whether a field is currently displayed.
func (f *Form) Visible(name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.lookupLocked(name)
	if err != nil {
		return false, err
	}
	return f.visibleLocked(r), nil
}

func (f *Form) visibleLocked(r *reactor.Reactor) bool {
	rule := strings.TrimSpace(r.Field().VisibleWhen)
	if rule == "" {
		return true
	}
	ok, err := f.visibility.Eval(r.Name(), rule, visibility.Context{Values: f.valuesLocked(), Extras: f.extras})
	if err != nil {
		f.logger.Warn().Err(err).Str("field", r.Name()).Str("rule", rule).Msg("visibility rule failed, field kept visible")
		return true
	}
	return ok
}

// countableLocked reports whether a field takes part in form validity.
func (f *Form) countableLocked(r *reactor.Reactor) bool {
	return !r.Skipped() && f.visibleLocked(r)
}

// Valid derives the validity of the whole form from the current field states.
// Fields that were never validated are checked on the spot without changing
// their state.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	for _, name := range f.order {
		r := f.reactors[name]
		if !f.countableLocked(r) {
			continue
		}
		switch r.State().Validity {
		case reactor.Valid:
			continue
		case reactor.Invalid:
			return false
		default:
			if !r.Check().Valid {
				return false
			}
		}
	}
	return !f.missingRowsLocked()
}

func (f *Form) missingRowsLocked() bool {
	return f.rows != nil && f.def.Rows.MinRows > 0 && f.rows.Len() < f.def.Rows.MinRows
}

// FormErrors returns messages that belong to no field.
func (f *Form) FormErrors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.formErrors)
}

// Reset clears every field and form-level message.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range f.order {
		r := f.reactors[name]
		r.Reset()
		f.view.Render(r.State())
	}
	clear(f.inflight)
	f.formErrors = nil
	f.view.FormErrors(nil)
}

// Close cancels pending debounces and remote checks and waits for in-flight
// checks to return. Further events fail with ErrFormClosed.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	for _, r := range f.reactors {
		r.Cancel()
	}
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
}

// deriveAgesLocked fills fields declaring ageFrom: source once the birth date
// is complete.
func (f *Form) deriveAgesLocked(source string) {
	birth := f.reactors[source].State().Formatted
	if len(birth) != birthDateLength {
		return
	}
	age, ok := validate.Age(birth, f.now().Year())
	if !ok {
		return
	}
	for _, name := range f.order {
		r := f.reactors[name]
		if r.Field().AgeFrom != source {
			continue
		}
		r.SetValue(strconv.Itoa(age))
		r.Validate(reactor.ReasonDependency)
	}
}

// revalidateDependentsLocked re-runs cross-field rules on fields that compare
// against name. Untouched fields stay quiet.
func (f *Form) revalidateDependentsLocked(name string) {
	for _, other := range f.order {
		r := f.reactors[other]
		field := r.Field()
		if field.Match != name && field.DateRangeStart != name {
			continue
		}
		if r.State().Validity == reactor.Untouched {
			continue
		}
		r.Validate(reactor.ReasonDependency)
	}
}
