package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingID is returned for a definition without an id.
	ErrMissingID = errors.New("model: form id is required")
	// ErrEmptyFieldName is returned for a field without a name.
	ErrEmptyFieldName = errors.New("model: field name is required")
	// ErrDuplicateField is returned when two fields share a name.
	ErrDuplicateField = errors.New("model: duplicate field")
	// ErrUnknownReference is returned when a cross-field rule names a field
	// that does not exist.
	ErrUnknownReference = errors.New("model: unknown field reference")
)

const (
	rangeEndSuffix   = "_end"
	rangeStartSuffix = "_start"
)

// Normalize trims names, fills the start of date ranges that follow the
// <name>_start / <name>_end convention and returns the definition.
func Normalize(def FormDef) FormDef {
	def.ID = strings.TrimSpace(def.ID)
	fields := make([]Field, len(def.Fields))
	names := make(map[string]struct{}, len(def.Fields))
	for i, field := range def.Fields {
		field.Name = strings.TrimSpace(field.Name)
		field.Type = strings.ToLower(strings.TrimSpace(field.Type))
		fields[i] = field
		names[field.Name] = struct{}{}
	}
	for i, field := range fields {
		if field.DateRangeStart != "" || !strings.HasSuffix(field.Name, rangeEndSuffix) {
			continue
		}
		start := strings.TrimSuffix(field.Name, rangeEndSuffix) + rangeStartSuffix
		if _, ok := names[start]; ok {
			fields[i].DateRangeStart = start
		}
	}
	def.Fields = fields
	return def
}

// Check validates the structure of a definition.
func Check(def FormDef) error {
	if def.ID == "" {
		return ErrMissingID
	}
	seen := make(map[string]struct{}, len(def.Fields))
	for _, field := range def.Fields {
		if field.Name == "" {
			return fmt.Errorf("%w (form %q)", ErrEmptyFieldName, def.ID)
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("%w %q (form %q)", ErrDuplicateField, field.Name, def.ID)
		}
		seen[field.Name] = struct{}{}
	}
	for _, field := range def.Fields {
		for _, ref := range []string{field.Match, field.DateRangeStart, field.AgeFrom} {
			if ref == "" {
				continue
			}
			if _, ok := seen[ref]; !ok {
				return fmt.Errorf("%w: %q references %q (form %q)", ErrUnknownReference, field.Name, ref, def.ID)
			}
		}
	}
	if def.Rows != nil {
		if strings.TrimSpace(def.Rows.Name) == "" {
			return fmt.Errorf("model: rows section of form %q has no name", def.ID)
		}
		cols := make(map[string]struct{}, len(def.Rows.Columns))
		for _, col := range def.Rows.Columns {
			if col.Name == "" {
				return fmt.Errorf("%w (rows %q)", ErrEmptyFieldName, def.Rows.Name)
			}
			if _, dup := cols[col.Name]; dup {
				return fmt.Errorf("%w %q (rows %q)", ErrDuplicateField, col.Name, def.Rows.Name)
			}
			cols[col.Name] = struct{}{}
		}
	}
	return nil
}
