package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/reactor"
)

// Submit validates every visible, non-skipped field at once. When any fails
// the submission is blocked, every inline message is shown and the first
// invalid field receives focus. Otherwise the submitter, if any, receives the
// values; field errors it returns are mapped back onto the form.
func (f *Form) Submit(ctx context.Context) (SubmitResult, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return SubmitResult{}, ErrFormClosed
	}

	f.formErrors = nil
	res := f.validateAllLocked()
	if !res.Valid {
		f.formErrors = res.FormErrors
		f.view.FormErrors(res.FormErrors)
		if res.FirstInvalid != "" {
			f.view.Focus(res.FirstInvalid)
		}
		f.observer.Submitted(f.def.ID, res)
		f.logger.Debug().Int("errors", len(res.Errors)).Str("first", res.FirstInvalid).Msg("submit blocked")
		f.mu.Unlock()
		return res, ErrSubmitBlocked
	}

	submitter := f.submitter
	if submitter == nil {
		f.observer.Submitted(f.def.ID, res)
		f.mu.Unlock()
		return res, nil
	}
	sub, err := f.submissionLocked()
	f.mu.Unlock()
	if err != nil {
		return res, err
	}

	fieldErrors, submitErr := submitter.Submit(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(fieldErrors) > 0 && !f.closed {
		mapping := f.applyServerErrorsLocked(fieldErrors)
		res.Valid = false
		res.Summary = f.catalogue.Render(messages.FormInvalid, nil)
		res.FormErrors = mapping.Form
		res.Errors = make(map[string]string, len(mapping.Fields))
		for _, name := range f.order {
			if _, ok := mapping.Fields[name]; !ok {
				continue
			}
			res.Errors[name] = f.reactors[name].State().Message
			if res.FirstInvalid == "" {
				res.FirstInvalid = name
			}
		}
		if res.FirstInvalid != "" {
			f.view.Focus(res.FirstInvalid)
		}
		f.observer.Submitted(f.def.ID, res)
		return res, errors.Join(ErrSubmitRejected, submitErr)
	}
	if submitErr != nil {
		f.logger.Warn().Err(submitErr).Msg("submission failed")
		return res, fmt.Errorf("form: submit %q: %w", f.def.ID, submitErr)
	}
	f.observer.Submitted(f.def.ID, res)
	return res, nil
}

func (f *Form) validateAllLocked() SubmitResult {
	res := SubmitResult{}
	for _, name := range f.order {
		r := f.reactors[name]
		if !f.countableLocked(r) {
			continue
		}
		r.Cancel()
		out := r.Validate(reactor.ReasonSubmit)
		if out.Valid {
			continue
		}
		if res.Errors == nil {
			res.Errors = make(map[string]string)
		}
		res.Errors[name] = out.Message
		if res.FirstInvalid == "" {
			res.FirstInvalid = name
		}
	}
	if f.missingRowsLocked() {
		res.FormErrors = append(res.FormErrors,
			f.catalogue.Render(messages.MinRows, messages.Params{"min": f.def.Rows.MinRows}))
	}
	res.Valid = len(res.Errors) == 0 && len(res.FormErrors) == 0
	if !res.Valid {
		res.Summary = f.catalogue.Render(messages.FormInvalid, nil)
	}
	return res
}

// submissionLocked collects the values a native submit would send: data
// controls that are enabled and visible, unchecked boxes omitted. Row fields
// travel in Rows.
func (f *Form) submissionLocked() (Submission, error) {
	sub := Submission{
		Form:     f.def.ID,
		Endpoint: f.def.Endpoint,
		Method:   f.def.Method,
		Values:   make(map[string]string, len(f.order)),
	}
	for _, name := range f.order {
		r := f.reactors[name]
		field := r.Field()
		if field.Disabled || !field.ControlKind().Data() || !f.visibleLocked(r) {
			continue
		}
		if _, _, _, isRow := model.ParseRowFieldName(name); isRow && f.rows != nil {
			continue
		}
		value := r.State().Formatted
		if field.ControlKind() == model.ControlCheckbox && value == "" {
			continue
		}
		sub.Values[name] = value
	}
	if f.rows != nil {
		payload, err := f.rows.Payload()
		if err != nil {
			return Submission{}, fmt.Errorf("form: encode rows: %w", err)
		}
		sub.Rows = payload
	}
	return sub, nil
}
