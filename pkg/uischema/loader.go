package uischema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formguard/pkg/model"
)

// LoadDir walks dir and parses every JSON or YAML overlay file. Form ids must
// be unique across files.
func LoadDir(fsys afero.Fs, dir string) (*Store, error) {
	store := &Store{forms: make(map[string]Overlay)}
	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || !isSchemaFile(path) {
			return nil
		}
		return store.loadFile(fsys, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// LoadFile parses a single overlay file.
func LoadFile(fsys afero.Fs, path string) (*Store, error) {
	store := &Store{forms: make(map[string]Overlay)}
	if err := store.loadFile(fsys, path); err != nil {
		return nil, err
	}
	return store, nil
}

// Overlay returns the overrides for the supplied form id.
func (s *Store) Overlay(id string) (Overlay, bool) {
	if s == nil {
		return Overlay{}, false
	}
	ov, ok := s.forms[id]
	return ov, ok
}

// Empty reports whether the store holds any overlay.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

type documentFile struct {
	FieldOrderPresets map[string][]string `json:"fieldOrderPresets" yaml:"fieldOrderPresets"`
	Forms             map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Title       string                 `json:"title" yaml:"title"`
	Order       []string               `json:"order" yaml:"order"`
	OrderPreset string                 `json:"orderPreset" yaml:"orderPreset"`
	Options     model.OptionsConfig    `json:"options" yaml:"options"`
	Fields      map[string]FieldConfig `json:"fields" yaml:"fields"`
}

func (s *Store) loadFile(fsys afero.Fs, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("uischema: read %s: %w", path, err)
	}
	doc, err := parseDocument(data, path)
	if err != nil {
		return err
	}
	presets, err := normalisePresets(doc.FieldOrderPresets, path)
	if err != nil {
		return err
	}
	for formID, raw := range doc.Forms {
		id := strings.TrimSpace(formID)
		if id == "" {
			return fmt.Errorf("uischema: file %s defines an empty form id", path)
		}
		if _, exists := s.forms[id]; exists {
			return fmt.Errorf("uischema: duplicate form %q (file %s)", id, path)
		}
		ov, err := normaliseForm(raw, id, path, presets)
		if err != nil {
			return err
		}
		s.forms[id] = ov
	}
	return nil
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	return documentFile{}, fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

func normaliseForm(raw formFile, id, source string, presets map[string][]string) (Overlay, error) {
	ov := Overlay{
		ID:      id,
		Source:  source,
		Title:   raw.Title,
		Options: raw.Options,
		Fields:  make(map[string]FieldConfig, len(raw.Fields)),
	}

	switch {
	case len(raw.Order) > 0:
		ov.Order = normaliseOrder(raw.Order)
	case raw.OrderPreset != "":
		pattern, ok := presets[strings.TrimSpace(raw.OrderPreset)]
		if !ok {
			return Overlay{}, fmt.Errorf("uischema: form %q (file %s) references unknown preset %q", id, source, raw.OrderPreset)
		}
		ov.Order = normaliseOrder(pattern)
	}

	for key, cfg := range raw.Fields {
		normalised := NormalizeFieldPath(key)
		if normalised == "" {
			return Overlay{}, fmt.Errorf("uischema: form %q (file %s) field key %q normalises to empty path", id, source, key)
		}
		if _, exists := ov.Fields[normalised]; exists {
			return Overlay{}, fmt.Errorf("uischema: form %q (file %s) defines duplicate field path %q", id, source, normalised)
		}
		cfg.OriginalPath = key
		cfg.Choices = append([]string(nil), cfg.Choices...)
		ov.Fields[normalised] = cfg
	}
	return ov, nil
}

func normaliseOrder(order []string) []string {
	out := make([]string, 0, len(order))
	for _, entry := range order {
		if path := NormalizeFieldPath(entry); path != "" {
			out = append(out, path)
		}
	}
	return out
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func normalisePresets(raw map[string][]string, source string) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(raw))
	for name, pattern := range raw {
		trimmedName := strings.TrimSpace(name)
		if trimmedName == "" {
			return nil, fmt.Errorf("uischema: file %s defines a fieldOrderPresets entry with an empty name", source)
		}
		if len(pattern) == 0 {
			return nil, fmt.Errorf("uischema: file %s preset %q is empty", source, trimmedName)
		}
		cloned := make([]string, len(pattern))
		for idx, entry := range pattern {
			value := strings.TrimSpace(entry)
			if value == "" {
				return nil, fmt.Errorf("uischema: file %s preset %q contains an empty entry at index %d", source, trimmedName, idx)
			}
			cloned[idx] = value
		}
		out[trimmedName] = cloned
	}
	return out, nil
}
