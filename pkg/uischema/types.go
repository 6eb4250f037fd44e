package uischema

import (
	"strings"

	"github.com/goliatone/go-formguard/pkg/model"
)

// Store keeps the parsed overlays keyed by form id. It is safe for concurrent
// readers when treated as immutable after construction.
type Store struct {
	forms map[string]Overlay
}

// Overlay describes the overrides for one form.
type Overlay struct {
	ID      string
	Source  string
	Title   string
	Order   []string
	Options model.OptionsConfig
	Fields  map[string]FieldConfig
}

// FieldConfig overrides a single field or row column. Unset values leave the
// definition untouched.
type FieldConfig struct {
	Order          *int          `json:"order,omitempty" yaml:"order,omitempty"`
	Label          string        `json:"label,omitempty" yaml:"label,omitempty"`
	Type           string        `json:"type,omitempty" yaml:"type,omitempty"`
	Control        model.Control `json:"control,omitempty" yaml:"control,omitempty"`
	Required       *bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Remote         *bool         `json:"remote,omitempty" yaml:"remote,omitempty"`
	PatternMessage string        `json:"patternMessage,omitempty" yaml:"patternMessage,omitempty"`
	VisibleWhen    string        `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	Default        string        `json:"default,omitempty" yaml:"default,omitempty"`
	Choices        []string      `json:"choices,omitempty" yaml:"choices,omitempty"`
	OriginalPath   string        `json:"-" yaml:"-"`
}

// NormalizeFieldPath converts overlay keys into the lookup form: top level
// fields keep their dotted names, row columns use "<rows>[].<column>".
// "items.items.qty", "items[*].qty" and "items[].qty" all name the same
// column.
func NormalizeFieldPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"[*]", "[]",
		".items.", "[].",
	)
	normalised := replacer.Replace(trimmed)
	for strings.Contains(normalised, "..") {
		normalised = strings.ReplaceAll(normalised, "..", ".")
	}
	return strings.Trim(normalised, ".")
}

func columnPath(section, column string) string {
	return section + "[]." + column
}
