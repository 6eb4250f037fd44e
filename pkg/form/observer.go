package form

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-formguard/pkg/reactor"
	"github.com/goliatone/go-formguard/pkg/rows"
)

// RemoteResult classifies the end of a remote check.
type RemoteResult string

const (
	RemoteValid   RemoteResult = "valid"
	RemoteInvalid RemoteResult = "invalid"
	// RemoteStale responses arrived after the value changed and were dropped.
	RemoteStale RemoteResult = "stale"
	// RemoteError checks could not run; the local verdict stands.
	RemoteError RemoteResult = "error"
)

// Observer receives engine events. Methods are called with the form lock
// held and must not call back into the form.
type Observer interface {
	FieldValidated(form string, state reactor.State, reason reactor.Reason)
	RemoteChecked(form, field string, result RemoteResult, elapsed time.Duration)
	Submitted(form string, result SubmitResult)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) FieldValidated(string, reactor.State, reactor.Reason) {}
func (NopObserver) RemoteChecked(string, string, RemoteResult, time.Duration) {}
func (NopObserver) Submitted(string, SubmitResult) {}

// View is the presentation layer. Like Observer it runs under the form lock.
type View interface {
	// Render shows the state of one field: value, inline message and
	// success marker.
	Render(state reactor.State)
	// Focus moves focus to a field and scrolls it into view.
	Focus(name string)
	// FormErrors shows messages that belong to no field.
	FormErrors(messages []string)
	// Totals shows the row aggregate.
	Totals(summary rows.Summary)
}

// NopView renders nothing.
type NopView struct{}

func (NopView) Render(reactor.State) {}
func (NopView) Focus(string) {}
func (NopView) FormErrors([]string) {}
func (NopView) Totals(rows.Summary) {}

// Submission is handed to the Submitter once every visible field is valid.
type Submission struct {
	Form     string            `json:"form"`
	Endpoint string            `json:"endpoint,omitempty"`
	Method   string            `json:"method,omitempty"`
	Values   map[string]string `json:"values"`
	Rows     json.RawMessage   `json:"rows,omitempty"`
}

// Submitter delivers a valid form. Field errors returned by the server are
// keyed by path (dotted, bracketed or JSON pointer) and mapped back onto
// fields; an error means the submission itself failed.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (map[string][]string, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, sub Submission) (map[string][]string, error)

// Submit implements Submitter.
func (fn SubmitterFunc) Submit(ctx context.Context, sub Submission) (map[string][]string, error) {
	return fn(ctx, sub)
}
