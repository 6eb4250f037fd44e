package reactor

import (
	"fmt"
	"time"

	"github.com/goliatone/go-formguard/pkg/messages"
)

// Validity is the validation status of a field.
type Validity int

const (
	// Untouched fields have not been edited or validated.
	Untouched Validity = iota
	// Formatting is set while the mask runs. It stays after input when
	// validation on input is off, until blur or change validates.
	Formatting
	// Pending fields wait for the debounce timer or a remote check.
	Pending
	Valid
	Invalid
)

var validityNames = [...]string{"untouched", "formatting", "pending", "valid", "invalid"}

func (v Validity) String() string {
	if int(v) < len(validityNames) {
		return validityNames[v]
	}
	return fmt.Sprintf("validity(%d)", int(v))
}

// MarshalText renders the lower-case name.
func (v Validity) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Reason explains why a validation pass ran.
type Reason string

const (
	ReasonInput      Reason = "input"
	ReasonBlur       Reason = "blur"
	ReasonChange     Reason = "change"
	ReasonSubmit     Reason = "submit"
	ReasonDependency Reason = "dependency"
	ReasonRemote     Reason = "remote"
	ReasonServer     Reason = "server"
)

// State is a snapshot of one field.
type State struct {
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	Raw       string       `json:"raw"`
	Formatted string       `json:"formatted"`
	Digits    string       `json:"digits,omitempty"`
	Validity  Validity     `json:"validity"`
	Key       messages.Key `json:"key,omitempty"`
	Message   string       `json:"message,omitempty"`
	// Success is set when the UI should show a success marker.
	Success  bool      `json:"success,omitempty"`
	LastEdit time.Time `json:"lastEdit,omitempty"`
}

// Value is the display value the validators see.
func (s State) Value() string {
	return s.Formatted
}
