package model

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formguard/pkg/validate"
)

// Control is the kind of input element behind a field.
type Control string

const (
	ControlText     Control = "text"
	ControlTextarea Control = "textarea"
	ControlPassword Control = "password"
	ControlSelect   Control = "select"
	ControlCheckbox Control = "checkbox"
	ControlRadio    Control = "radio"
	ControlHidden   Control = "hidden"
	ControlSubmit   Control = "submit"
	ControlButton   Control = "button"
	ControlReset    Control = "reset"
)

// Data reports whether the control carries a value.
func (c Control) Data() bool {
	switch c {
	case ControlSubmit, ControlButton, ControlReset:
		return false
	default:
		return true
	}
}

// Field is a single input of a form.
type Field struct {
	Name    string  `json:"name" yaml:"name"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
	Type    string  `json:"type,omitempty" yaml:"type,omitempty"`
	Control Control `json:"control,omitempty" yaml:"control,omitempty"`

	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	// Validate opts hidden inputs into formatting and validation.
	Validate bool `json:"validate,omitempty" yaml:"validate,omitempty"`

	MinLength      int      `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength      int      `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min            *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max            *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern        string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternMessage string   `json:"patternMessage,omitempty" yaml:"patternMessage,omitempty"`

	// Match names the field this one must equal (password confirmation).
	Match string `json:"match,omitempty" yaml:"match,omitempty"`
	// DateRangeStart names the start date when this field is a range end.
	DateRangeStart string `json:"dateRangeStart,omitempty" yaml:"dateRangeStart,omitempty"`
	// AgeFrom names a birth date field; this field receives the derived age.
	AgeFrom string `json:"ageFrom,omitempty" yaml:"ageFrom,omitempty"`
	// VisibleWhen is a visibility expression; hidden fields do not count
	// towards form validity.
	VisibleWhen string `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	// Remote enables the asynchronous remote check after local validation.
	Remote bool `json:"remote,omitempty" yaml:"remote,omitempty"`

	// Value is the submitted value of a checkbox or radio option.
	Value   string   `json:"value,omitempty" yaml:"value,omitempty"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`

	Password *validate.PasswordPolicy `json:"password,omitempty" yaml:"password,omitempty"`
}

// ControlKind returns Control with the text default applied.
func (f Field) ControlKind() Control {
	if f.Control == "" {
		return ControlText
	}
	return f.Control
}

// Skipped reports whether the engine ignores the field entirely: disabled
// fields, non-data controls and hidden inputs without an explicit opt-in.
func (f Field) Skipped() bool {
	control := f.ControlKind()
	if !control.Data() || f.Disabled {
		return true
	}
	return control == ControlHidden && !f.Validate
}

// Rules returns the generic constraints of the field.
func (f Field) Rules() validate.Rules {
	return validate.Rules{
		Required:       f.Required,
		MinLength:      f.MinLength,
		MaxLength:      f.MaxLength,
		Min:            f.Min,
		Max:            f.Max,
		Pattern:        f.Pattern,
		PatternMessage: f.PatternMessage,
	}
}

// DisplayName is the label, or the name when no label is set.
func (f Field) DisplayName() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

// Row column roles.
const (
	ColumnQuantity     = "quantity"
	ColumnUnitPrice    = "unit_price"
	ColumnDiscountRate = "discount_rate"
	ColumnTaxRate      = "tax_rate"
)

// RowsDef describes a line-item table. Columns are templates instantiated for
// every row; the four numeric roles name the columns feeding the totals.
type RowsDef struct {
	Name    string  `json:"name" yaml:"name"`
	MinRows int     `json:"minRows,omitempty" yaml:"minRows,omitempty"`
	Columns []Field `json:"columns,omitempty" yaml:"columns,omitempty"`

	Quantity     string `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	UnitPrice    string `json:"unitPrice,omitempty" yaml:"unitPrice,omitempty"`
	DiscountRate string `json:"discountRate,omitempty" yaml:"discountRate,omitempty"`
	TaxRate      string `json:"taxRate,omitempty" yaml:"taxRate,omitempty"`
}

// Role returns the column name that plays role, with defaults equal to the
// role name.
func (r RowsDef) Role(role string) string {
	var configured string
	switch role {
	case ColumnQuantity:
		configured = r.Quantity
	case ColumnUnitPrice:
		configured = r.UnitPrice
	case ColumnDiscountRate:
		configured = r.DiscountRate
	case ColumnTaxRate:
		configured = r.TaxRate
	}
	if configured != "" {
		return configured
	}
	return role
}

// RoleOf reports the totals role a column plays, if any.
func (r RowsDef) RoleOf(column string) (string, bool) {
	for _, role := range []string{ColumnQuantity, ColumnUnitPrice, ColumnDiscountRate, ColumnTaxRate} {
		if r.Role(role) == column {
			return role, true
		}
	}
	return "", false
}

// RowFieldName is the registered name of a column in a row:
// items[<row>].quantity.
func RowFieldName(section, rowID, column string) string {
	return fmt.Sprintf("%s[%s].%s", section, rowID, column)
}

// ParseRowFieldName splits a name built by RowFieldName.
func ParseRowFieldName(name string) (section, rowID, column string, ok bool) {
	open := strings.IndexByte(name, '[')
	closing := strings.Index(name, "].")
	if open <= 0 || closing < open {
		return "", "", "", false
	}
	return name[:open], name[open+1 : closing], name[closing+2:], true
}

// FormDef is a complete form definition.
type FormDef struct {
	ID       string        `json:"id" yaml:"id"`
	Title    string        `json:"title,omitempty" yaml:"title,omitempty"`
	Endpoint string        `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Method   string        `json:"method,omitempty" yaml:"method,omitempty"`
	Options  OptionsConfig `json:"options,omitempty" yaml:"options,omitempty"`
	Fields   []Field       `json:"fields" yaml:"fields"`
	Rows     *RowsDef      `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// Field returns the field called name.
func (d FormDef) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}
