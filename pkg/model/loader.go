package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Store holds the definitions found in a directory, keyed by form id.
type Store struct {
	forms map[string]FormDef
}

// Form returns the definition with the supplied id.
func (s *Store) Form(id string) (FormDef, bool) {
	if s == nil {
		return FormDef{}, false
	}
	def, ok := s.forms[id]
	return def, ok
}

// IDs lists the loaded form ids, sorted.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any form.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// LoadFile reads a single JSON or YAML form definition. Decorators run
// before the definition is normalised and checked.
func LoadFile(fsys afero.Fs, path string, decorators ...Decorator) (FormDef, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return FormDef{}, fmt.Errorf("model: read %s: %w", path, err)
	}
	return Parse(data, path, decorators...)
}

// LoadDir walks dir and loads every definition file. Form ids must be unique
// across files.
func LoadDir(fsys afero.Fs, dir string, decorators ...Decorator) (*Store, error) {
	store := &Store{forms: make(map[string]FormDef)}
	err := afero.Walk(fsys, dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		def, err := LoadFile(fsys, path, decorators...)
		if err != nil {
			return err
		}
		if _, exists := store.forms[def.ID]; exists {
			return fmt.Errorf("model: duplicate form %q (file %s)", def.ID, path)
		}
		store.forms[def.ID] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a definition, trying JSON first and YAML second, then
// normalises and checks it. A missing id defaults to the file base name.
func Parse(data []byte, source string, decorators ...Decorator) (FormDef, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return FormDef{}, fmt.Errorf("model: file %s is empty", source)
	}

	var def FormDef
	if err := json.Unmarshal(data, &def); err != nil {
		def = FormDef{}
		if err := yaml.Unmarshal(data, &def); err != nil {
			return FormDef{}, fmt.Errorf("model: parse %s: invalid JSON or YAML", source)
		}
	}

	if strings.TrimSpace(def.ID) == "" && source != "" {
		base := filepath.Base(source)
		def.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := Decorate(&def, decorators...); err != nil {
		return FormDef{}, fmt.Errorf("model: decorate %s: %w", source, err)
	}
	def = Normalize(def)
	if err := Check(def); err != nil {
		return FormDef{}, fmt.Errorf("model: %s: %w", source, err)
	}
	return def, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
