package form

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/reactor"
	"github.com/goliatone/go-formguard/pkg/rows"
)

// AddRow inserts a line item, registering one field per column named
// <section>[<id>].<column>. An empty id is generated. values prefill columns
// by column name.
func (f *Form) AddRow(id string, values map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", ErrFormClosed
	}
	if f.rows == nil {
		return "", ErrNoRows
	}

	id, err := f.rows.Add(id, rows.Inputs{})
	if err != nil {
		return "", fmt.Errorf("form: %w", err)
	}

	section := f.def.Rows
	names := make([]string, 0, len(section.Columns))
	for _, column := range section.Columns {
		field := column
		field.Name = model.RowFieldName(section.Name, id, column.Name)
		if err := f.registerLocked(field); err != nil {
			for _, name := range names {
				_ = f.unregisterLocked(name)
			}
			_ = f.rows.Remove(id)
			return "", err
		}
		names = append(names, field.Name)
	}
	f.rowFields[id] = names

	for i, column := range section.Columns {
		r := f.reactors[names[i]]
		value, ok := values[column.Name]
		if ok {
			r.SetValue(value)
		}
		f.syncRowLocked(r)
		if ok && !r.Skipped() {
			r.Validate(reactor.ReasonChange)
			continue
		}
		f.view.Render(r.State())
	}
	return id, nil
}

// RemoveRow deletes a line item and its fields, then recomputes the grand
// total.
func (f *Form) RemoveRow(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFormClosed
	}
	if f.rows == nil {
		return ErrNoRows
	}
	names, ok := f.rowFields[id]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownRow, id)
	}
	var errs []error
	for _, name := range names {
		if err := f.unregisterLocked(name); err != nil {
			errs = append(errs, err)
		}
	}
	delete(f.rowFields, id)
	if err := f.rows.Remove(id); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RowIDs returns the line item ids in insertion order.
func (f *Form) RowIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		return nil
	}
	return f.rows.IDs()
}

// Row returns a line item with its totals.
func (f *Form) Row(id string) (rows.Row, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		return rows.Row{}, false
	}
	return f.rows.Row(id)
}

// Totals returns the aggregate of every line item.
func (f *Form) Totals() rows.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		return rows.Summary{}
	}
	return f.rows.Summary()
}

// syncRowLocked feeds the value of a totals column into the aggregator.
func (f *Form) syncRowLocked(r *reactor.Reactor) {
	if f.rows == nil {
		return
	}
	section, rowID, column, ok := model.ParseRowFieldName(r.Name())
	if !ok || section != f.def.Rows.Name {
		return
	}
	role, ok := f.def.Rows.RoleOf(column)
	if !ok {
		return
	}
	if _, err := f.rows.Set(rowID, role, r.State().Formatted); err != nil {
		f.logger.Debug().Err(err).Str("field", r.Name()).Msg("row input ignored")
	}
}
