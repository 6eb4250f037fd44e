package form

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formguard/pkg/debounce"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/registry"
	"github.com/goliatone/go-formguard/pkg/remote"
	"github.com/goliatone/go-formguard/pkg/visibility"
)

// DefaultRemoteTimeout bounds a single remote check.
const DefaultRemoteTimeout = 5 * time.Second

// Option configures a Form.
type Option func(*Form)

// WithRegistry selects the type registry.
func WithRegistry(reg *registry.Registry) Option {
	return func(f *Form) {
		if reg != nil {
			f.registry = reg
		}
	}
}

// WithOptions replaces the behaviour options. Without it the definition's
// options are applied over model.DefaultOptions.
func WithOptions(opts model.Options) Option {
	return func(f *Form) {
		f.opts = opts
		f.optsSet = true
	}
}

// WithCatalogue sets the message catalogue. Defaults to the catalogue of the
// configured locale.
func WithCatalogue(cat *messages.Catalogue) Option {
	return func(f *Form) {
		if cat != nil {
			f.catalogue = cat
		}
	}
}

// WithScheduler sets the scheduler used by every debounce timer.
func WithScheduler(s debounce.Scheduler) Option {
	return func(f *Form) {
		if s != nil {
			f.scheduler = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(f *Form) {
		if o != nil {
			f.observer = o
		}
	}
}

// WithView sets the presentation layer.
func WithView(v View) Option {
	return func(f *Form) {
		if v != nil {
			f.view = v
		}
	}
}

// WithChecker enables remote checks for fields flagged remote.
func WithChecker(c remote.Checker) Option {
	return func(f *Form) {
		f.checker = c
	}
}

// WithRemoteTimeout bounds each remote check.
func WithRemoteTimeout(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.remoteTimeout = d
		}
	}
}

// WithVisibility sets the evaluator of visibleWhen rules. Defaults to the
// expr language.
func WithVisibility(e visibility.Evaluator) Option {
	return func(f *Form) {
		if e != nil {
			f.visibility = e
		}
	}
}

// WithExtras injects values readable by visibility rules as extras.<key>.
func WithExtras(extras map[string]any) Option {
	return func(f *Form) {
		f.extras = extras
	}
}

// WithSubmitter delegates valid submissions.
func WithSubmitter(s Submitter) Option {
	return func(f *Form) {
		f.submitter = s
	}
}

// WithClock overrides time.Now (edit stamps, derived ages).
func WithClock(now func() time.Time) Option {
	return func(f *Form) {
		if now != nil {
			f.now = now
		}
	}
}
