package messages

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrEmptyPath indicates LoadOverrides was called without a file.
var ErrEmptyPath = errors.New("messages: override path is empty")

// LoadOverrides reads a YAML (or JSON) document mapping error keys to
// templates. Keys are trimmed; blank templates are dropped.
//
//	required: "Zorunlu alan"
//	min_length: "En az {min} karakter"
func LoadOverrides(fs afero.Fs, path string) (map[Key]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("messages: read overrides %q: %w", path, err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes an override document. YAML is a superset of JSON so
// both formats are accepted.
func ParseOverrides(data []byte) (map[Key]string, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("messages: parse overrides: %w", err)
	}
	out := make(map[Key]string, len(raw))
	for key, tmpl := range raw {
		key = strings.TrimSpace(key)
		if key == "" || strings.TrimSpace(tmpl) == "" {
			continue
		}
		out[Key(key)] = tmpl
	}
	return out, nil
}
