// Package rows computes line-item totals for dynamically sized tables.
//
// Every row has four numeric inputs (quantity, unit price, discount rate and
// tax rate, rates in percent). Inputs arrive as locale formatted strings and
// are normalised before any arithmetic. The line total is derived and only
// cached for display; the grand total is recomputed whenever a row changes
// or is removed.
package rows

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/numfmt"
)

var (
	// ErrUnknownRow is returned for operations on a row that does not exist.
	ErrUnknownRow = errors.New("rows: unknown row")
	// ErrDuplicateRow is returned when adding a row id twice.
	ErrDuplicateRow = errors.New("rows: duplicate row")
	// ErrUnknownRole is returned when setting an input that is not one of
	// the four numeric roles.
	ErrUnknownRole = errors.New("rows: unknown input role")
)

// DisplayDecimals is the number of decimals of display strings.
const DisplayDecimals = 2

// Inputs are the raw, locale formatted values of a row.
type Inputs struct {
	Quantity     string `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	DiscountRate string `json:"discount_rate"`
	TaxRate      string `json:"tax_rate"`
}

// Totals are the derived amounts of a row.
type Totals struct {
	Gross    float64 `json:"gross"`
	Discount float64 `json:"discount"`
	Net      float64 `json:"net"`
	Tax      float64 `json:"tax"`
	Line     float64 `json:"line_total"`
}

// Compute derives the totals of a row.
func Compute(quantity, unitPrice, discountRate, taxRate float64) Totals {
	gross := quantity * unitPrice
	discount := gross * discountRate / 100
	net := gross - discount
	tax := net * taxRate / 100
	return Totals{Gross: gross, Discount: discount, Net: net, Tax: tax, Line: net + tax}
}

// ComputeInputs parses locale strings and derives the totals. Blank or
// unparsable inputs count as zero while the row is being typed.
func ComputeInputs(in Inputs) Totals {
	return Compute(
		numfmt.ParseOr0(in.Quantity),
		numfmt.ParseOr0(in.UnitPrice),
		numfmt.ParseOr0(in.DiscountRate),
		numfmt.ParseOr0(in.TaxRate),
	)
}

// Row is one line item.
type Row struct {
	ID     string `json:"id"`
	Inputs Inputs `json:"inputs"`
	Totals Totals `json:"totals"`
}

// Summary aggregates every row.
type Summary struct {
	Rows     int     `json:"rows"`
	Gross    float64 `json:"gross"`
	Discount float64 `json:"discount"`
	Net      float64 `json:"net"`
	Tax      float64 `json:"tax"`
	Grand    float64 `json:"grand_total"`
}

// Display renders a summary with locale separators.
type Display struct {
	Gross    string `json:"gross"`
	Discount string `json:"discount"`
	Net      string `json:"net"`
	Tax      string `json:"tax"`
	Grand    string `json:"grand_total"`
}

// Display formats the summary amounts.
func (s Summary) Display() Display {
	return Display{
		Gross:    numfmt.Format(s.Gross, DisplayDecimals),
		Discount: numfmt.Format(s.Discount, DisplayDecimals),
		Net:      numfmt.Format(s.Net, DisplayDecimals),
		Tax:      numfmt.Format(s.Tax, DisplayDecimals),
		Grand:    numfmt.Format(s.Grand, DisplayDecimals),
	}
}

// LineDisplay formats a row total.
func (t Totals) LineDisplay() string {
	return numfmt.Format(t.Line, DisplayDecimals)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithIDGenerator replaces the uuid based row id generator.
func WithIDGenerator(fn func() string) Option {
	return func(a *Aggregator) {
		if fn != nil {
			a.newID = fn
		}
	}
}

// OnChange registers a callback invoked with the new summary after the grand
// total is recomputed.
func OnChange(fn func(Summary)) Option {
	return func(a *Aggregator) {
		a.onChange = fn
	}
}

// Aggregator tracks the rows of one table. It is not safe for concurrent use;
// the form serialises access.
type Aggregator struct {
	rows     map[string]*Row
	order    []string
	summary  Summary
	newID    func() string
	onChange func(Summary)
}

// New returns an empty aggregator.
func New(options ...Option) *Aggregator {
	a := &Aggregator{
		rows:  make(map[string]*Row),
		newID: uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Add inserts a row. An empty id is generated. The grand total is unchanged
// until inputs arrive, but it is recomputed so observers see the row count.
func (a *Aggregator) Add(id string, in Inputs) (string, error) {
	if id == "" {
		id = a.newID()
	}
	if _, exists := a.rows[id]; exists {
		return "", fmt.Errorf("%w %q", ErrDuplicateRow, id)
	}
	a.rows[id] = &Row{ID: id, Inputs: in, Totals: ComputeInputs(in)}
	a.order = append(a.order, id)
	a.RecomputeGrandTotal()
	return id, nil
}

// Set updates one input of a row by role and recomputes the row and the grand
// total.
func (a *Aggregator) Set(id, role, value string) (Totals, error) {
	row, ok := a.rows[id]
	if !ok {
		return Totals{}, fmt.Errorf("%w %q", ErrUnknownRow, id)
	}
	switch role {
	case model.ColumnQuantity:
		row.Inputs.Quantity = value
	case model.ColumnUnitPrice:
		row.Inputs.UnitPrice = value
	case model.ColumnDiscountRate:
		row.Inputs.DiscountRate = value
	case model.ColumnTaxRate:
		row.Inputs.TaxRate = value
	default:
		return Totals{}, fmt.Errorf("%w %q", ErrUnknownRole, role)
	}
	totals, err := a.RecomputeRow(id)
	if err != nil {
		return Totals{}, err
	}
	a.RecomputeGrandTotal()
	return totals, nil
}

// RecomputeRow refreshes the cached totals of a row from its inputs.
func (a *Aggregator) RecomputeRow(id string) (Totals, error) {
	row, ok := a.rows[id]
	if !ok {
		return Totals{}, fmt.Errorf("%w %q", ErrUnknownRow, id)
	}
	row.Totals = ComputeInputs(row.Inputs)
	return row.Totals, nil
}

// RecomputeGrandTotal sums the current line totals of every row.
func (a *Aggregator) RecomputeGrandTotal() Summary {
	s := Summary{Rows: len(a.order)}
	for _, id := range a.order {
		t := a.rows[id].Totals
		s.Gross += t.Gross
		s.Discount += t.Discount
		s.Net += t.Net
		s.Tax += t.Tax
		s.Grand += t.Line
	}
	a.summary = s
	if a.onChange != nil {
		a.onChange(s)
	}
	return s
}

// Remove deletes a row and recomputes the grand total.
func (a *Aggregator) Remove(id string) error {
	if _, ok := a.rows[id]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownRow, id)
	}
	delete(a.rows, id)
	for i, existing := range a.order {
		if existing == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	a.RecomputeGrandTotal()
	return nil
}

// Row returns a copy of a row.
func (a *Aggregator) Row(id string) (Row, bool) {
	row, ok := a.rows[id]
	if !ok {
		return Row{}, false
	}
	return *row, true
}

// Rows returns the rows in insertion order.
func (a *Aggregator) Rows() []Row {
	out := make([]Row, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.rows[id])
	}
	return out
}

// IDs returns the row ids in insertion order.
func (a *Aggregator) IDs() []string {
	return append([]string(nil), a.order...)
}

// Len reports the number of rows.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Summary returns the last computed summary.
func (a *Aggregator) Summary() Summary {
	return a.summary
}

type payloadRow struct {
	ID           string  `json:"id"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	DiscountRate float64 `json:"discount_rate"`
	TaxRate      float64 `json:"tax_rate"`
	LineTotal    float64 `json:"line_total"`
}

// Payload serialises the rows with machine numbers for submission. Amounts
// are rounded to the display precision.
func (a *Aggregator) Payload() ([]byte, error) {
	out := make([]payloadRow, 0, len(a.order))
	for _, row := range a.Rows() {
		out = append(out, payloadRow{
			ID:           row.ID,
			Quantity:     numfmt.ParseOr0(row.Inputs.Quantity),
			UnitPrice:    numfmt.ParseOr0(row.Inputs.UnitPrice),
			DiscountRate: numfmt.ParseOr0(row.Inputs.DiscountRate),
			TaxRate:      numfmt.ParseOr0(row.Inputs.TaxRate),
			LineTotal:    numfmt.Round(row.Totals.Line, DisplayDecimals),
		})
	}
	return json.Marshal(out)
}
