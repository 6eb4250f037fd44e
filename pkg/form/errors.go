package form

import "errors"

var (
	// ErrUnknownField is returned for events addressed to a field that is not
	// registered.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrDuplicateField is returned when registering a name twice.
	ErrDuplicateField = errors.New("form: duplicate field")
	// ErrUnknownRow is returned when removing a row that does not exist.
	ErrUnknownRow = errors.New("form: unknown row")
	// ErrNoRows is returned for row operations on a form without a rows
	// section.
	ErrNoRows = errors.New("form: form has no rows section")
	// ErrUnknownChoice is returned when a select or radio receives a value
	// outside its choices.
	ErrUnknownChoice = errors.New("form: value is not one of the choices")
	// ErrFormClosed is returned after Close.
	ErrFormClosed = errors.New("form: closed")
	// ErrSubmitBlocked is returned by Submit when local validation fails.
	ErrSubmitBlocked = errors.New("form: submission blocked by invalid fields")
	// ErrSubmitRejected is returned by Submit when the submitter reported
	// field errors.
	ErrSubmitRejected = errors.New("form: submission rejected by server")
)
