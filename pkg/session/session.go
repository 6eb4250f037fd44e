// Package session fills a form interactively in a terminal. Every answer goes
// through the same reactor pipeline a browser form uses: typed values are
// masked and validated on blur, selects and checkboxes commit at once, and
// the user is asked again until the field is valid.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formguard/pkg/form"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/reactor"
)

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("session: aborted")
	// ErrTooManyAttempts is returned when a field stays invalid after the
	// configured number of answers.
	ErrTooManyAttempts = errors.New("session: too many invalid answers")
)

// DefaultMaxAttempts bounds the answers accepted for one field.
const DefaultMaxAttempts = 5

// Theme holds the prefixes of printed messages.
type Theme struct {
	ErrorPrefix string
	InfoPrefix  string
}

// Session drives a form through a PromptDriver.
type Session struct {
	form        *form.Form
	driver      PromptDriver
	maxAttempts int
	theme       Theme
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the terminal driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithMaxAttempts bounds the answers accepted for one field.
func WithMaxAttempts(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithTheme sets message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// New returns a session for f. The survey driver is used unless another one
// is supplied.
func New(f *form.Form, options ...Option) *Session {
	s := &Session{
		form:        f,
		maxAttempts: DefaultMaxAttempts,
		theme:       Theme{ErrorPrefix: "✗ ", InfoPrefix: "» "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(nil)
	}
	return s
}

// Run asks for every visible field, then for line items when the form has a
// row section, and submits. Fields blocking the submission are asked again
// until the form passes or a field runs out of attempts.
func (s *Session) Run(ctx context.Context) (form.SubmitResult, error) {
	def := s.form.Definition()
	for _, field := range def.Fields {
		if err := s.ask(ctx, field); err != nil {
			return form.SubmitResult{}, err
		}
	}
	if def.Rows != nil {
		if err := s.askRows(ctx, *def.Rows); err != nil {
			return form.SubmitResult{}, err
		}
	}

	for round := 0; ; round++ {
		res, err := s.form.Submit(ctx)
		if !errors.Is(err, form.ErrSubmitBlocked) {
			return res, err
		}
		for _, msg := range res.FormErrors {
			_ = s.driver.Info(ctx, s.theme.ErrorPrefix+msg)
		}
		if round+1 >= s.maxAttempts {
			return res, err
		}
		retried := false
		for _, name := range s.form.Names() {
			if _, invalid := res.Errors[name]; !invalid {
				continue
			}
			st, _ := s.form.State(name)
			_ = s.driver.Info(ctx, s.theme.ErrorPrefix+st.Message)
			if err := s.ask(ctx, s.fieldOf(name)); err != nil {
				return res, err
			}
			retried = true
		}
		if !retried && len(res.FormErrors) > 0 && def.Rows != nil {
			if err := s.addRow(ctx, *def.Rows); err != nil {
				return res, err
			}
			continue
		}
		if !retried {
			return res, err
		}
	}
}

// fieldOf returns the definition behind a registered name, instantiating row
// columns.
func (s *Session) fieldOf(name string) model.Field {
	def := s.form.Definition()
	if field, ok := def.Field(name); ok {
		return field
	}
	if section, _, column, ok := model.ParseRowFieldName(name); ok && def.Rows != nil && section == def.Rows.Name {
		for _, col := range def.Rows.Columns {
			if col.Name == column {
				col.Name = name
				return col
			}
		}
	}
	return model.Field{Name: name}
}

func (s *Session) ask(ctx context.Context, field model.Field) error {
	if field.Skipped() {
		return nil
	}
	visible, err := s.form.Visible(field.Name)
	if err != nil {
		return err
	}
	if !visible {
		return nil
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		st, err := s.answer(ctx, field)
		if err != nil {
			return err
		}
		if st.Validity != reactor.Invalid {
			return nil
		}
		if err := s.driver.Info(ctx, s.theme.ErrorPrefix+st.Message); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name)
}

// answer prompts once and commits the response the way the matching control
// would.
func (s *Session) answer(ctx context.Context, field model.Field) (reactor.State, error) {
	current, _ := s.form.State(field.Name)
	label := field.DisplayName()
	if field.Required {
		label += " *"
	}

	switch field.ControlKind() {
	case model.ControlSelect, model.ControlRadio:
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      field.Choices,
			DefaultIndex: indexOf(field.Choices, current.Formatted),
		})
		if err != nil {
			return reactor.State{}, err
		}
		value := ""
		if idx >= 0 && idx < len(field.Choices) {
			value = field.Choices[idx]
		}
		return s.form.Change(field.Name, value)
	case model.ControlCheckbox:
		checked, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current.Formatted != ""})
		if err != nil {
			return reactor.State{}, err
		}
		return s.form.Toggle(field.Name, checked)
	}

	var (
		raw string
		err error
	)
	switch field.ControlKind() {
	case model.ControlPassword:
		raw, err = s.driver.Password(ctx, InputConfig{Message: label})
	case model.ControlTextarea:
		raw, err = s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current.Formatted})
	default:
		raw, err = s.driver.Input(ctx, InputConfig{Message: label, Default: current.Formatted, Help: field.Type})
	}
	if err != nil {
		return reactor.State{}, err
	}
	raw = strings.TrimRight(raw, "\r\n")
	if _, err := s.form.Input(field.Name, raw, len([]rune(raw))); err != nil {
		return reactor.State{}, err
	}
	return s.form.Blur(field.Name)
}

func (s *Session) askRows(ctx context.Context, rows model.RowsDef) error {
	for {
		count := len(s.form.RowIDs())
		more, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add a line to %s? (%d so far)", rows.Name, count),
			Default: count < rows.MinRows,
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if err := s.addRow(ctx, rows); err != nil {
			return err
		}
	}
	if len(s.form.RowIDs()) > 0 {
		totals := s.form.Totals().Display()
		return s.driver.Info(ctx, fmt.Sprintf("%sNet %s, tax %s, total %s", s.theme.InfoPrefix, totals.Net, totals.Tax, totals.Grand))
	}
	return nil
}

func (s *Session) addRow(ctx context.Context, rows model.RowsDef) error {
	id, err := s.form.AddRow("", nil)
	if err != nil {
		return err
	}
	for _, column := range rows.Columns {
		field := column
		field.Name = model.RowFieldName(rows.Name, id, column.Name)
		if err := s.ask(ctx, field); err != nil {
			return err
		}
	}
	row, ok := s.form.Row(id)
	if !ok {
		return nil
	}
	return s.driver.Info(ctx, s.theme.InfoPrefix+"Line total "+row.Totals.LineDisplay())
}
