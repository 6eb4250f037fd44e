package form

import (
	"context"
	"time"

	"github.com/goliatone/go-formguard/pkg/reactor"
)

// host is the reactor.Host of a form. Value and Validated are only called
// from reactor methods, which already run under the form lock.
type host struct {
	form *Form
}

func (h *host) Value(name string) string {
	r, ok := h.form.reactors[name]
	if !ok {
		return ""
	}
	return r.State().Formatted
}

func (h *host) Run(fn func()) {
	f := h.form
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	fn()
}

func (h *host) Validated(r *reactor.Reactor, reason reactor.Reason) {
	f := h.form
	// A timer that fired while the field was being unregistered.
	if f.reactors[r.Name()] != r {
		return
	}
	st := r.State()
	f.observer.FieldValidated(f.def.ID, st, reason)
	f.view.Render(st)

	switch reason {
	case reactor.ReasonInput, reactor.ReasonBlur, reactor.ReasonChange:
		f.revalidateDependentsLocked(r.Name())
		f.startRemoteLocked(r)
	}
}

// startRemoteLocked issues a remote check for a locally valid field. A check
// already running for the same generation is reused.
func (f *Form) startRemoteLocked(r *reactor.Reactor) {
	if f.checker == nil || !r.Field().Remote {
		return
	}
	gen, value, ok := r.BeginRemote()
	if !ok {
		return
	}
	f.view.Render(r.State())

	name := r.Name()
	if running, ok := f.inflight[name]; ok && running == gen {
		return
	}
	f.inflight[name] = gen

	f.wg.Add(1)
	go f.runRemote(r, gen, value)
}

func (f *Form) runRemote(r *reactor.Reactor, gen uint64, value string) {
	defer f.wg.Done()

	name := r.Name()
	start := time.Now()
	ctx, cancel := context.WithTimeout(f.ctx, f.remoteTimeout)
	out, err := f.checker.Check(ctx, name, value)
	cancel()
	elapsed := time.Since(start)

	f.mu.Lock()
	defer f.mu.Unlock()

	if running, ok := f.inflight[name]; ok && running == gen {
		delete(f.inflight, name)
	}
	if f.closed {
		return
	}
	if f.reactors[name] != r {
		f.observer.RemoteChecked(f.def.ID, name, RemoteStale, elapsed)
		return
	}
	if err != nil {
		f.logger.Warn().Err(err).Str("field", name).Str("type", r.Entry().Key).Msg("remote check skipped")
		r.RemoteSkipped(gen)
		f.view.Render(r.State())
		f.observer.RemoteChecked(f.def.ID, name, RemoteError, elapsed)
		return
	}
	if !r.CompleteRemote(gen, out) {
		f.logger.Debug().Str("field", name).Msg("stale remote response dropped")
		f.observer.RemoteChecked(f.def.ID, name, RemoteStale, elapsed)
		return
	}
	result := RemoteValid
	if !out.Valid {
		result = RemoteInvalid
	}
	f.observer.RemoteChecked(f.def.ID, name, result, elapsed)
}
