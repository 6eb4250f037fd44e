package form

import (
	"strconv"
	"strings"
)

// ErrorMapping splits a server error payload into field-level messages keyed
// by registered field name and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload maps payload paths onto fields. paths holds the dotted path
// of every addressable field ("email", "items.r1.quantity",
// "items.0.quantity") and the field name it resolves to. Payload keys may be
// dotted, bracketed or JSON pointers and may carry wrapper segments such as
// body or data. Unknown paths become form-level messages so nothing is lost.
func MapErrorPayload(paths map[string]string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		matched := mapErrorPath(rawPath, paths)
		if matched == "" {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		name := paths[matched]
		mapping.Fields[name] = normalizeMessages(append(mapping.Fields[name], normalized...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// ApplyServerErrors marks the fields named by a server payload invalid with
// the server's messages and records the remaining messages at form level.
func (f *Form) ApplyServerErrors(payload map[string][]string) ErrorMapping {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyServerErrorsLocked(payload)
}

func (f *Form) applyServerErrorsLocked(payload map[string][]string) ErrorMapping {
	mapping := MapErrorPayload(f.fieldPathsLocked(), payload)
	for name, msgs := range mapping.Fields {
		f.reactors[name].Fail(strings.Join(msgs, " "))
	}
	if len(mapping.Form) > 0 {
		f.formErrors = MergeFormErrors(f.formErrors, mapping.Form...)
		f.view.FormErrors(f.formErrors)
	}
	return mapping
}

// fieldPathsLocked returns the dotted path of every field. Row fields are
// addressable by row id and by row position.
func (f *Form) fieldPathsLocked() map[string]string {
	paths := make(map[string]string, len(f.order))
	for _, name := range f.order {
		paths[dottedPath(name)] = name
	}
	if f.rows == nil {
		return paths
	}
	section := f.def.Rows.Name
	for idx, id := range f.rows.IDs() {
		for i, name := range f.rowFields[id] {
			column := f.def.Rows.Columns[i].Name
			paths[section+"."+strconv.Itoa(idx)+"."+column] = name
		}
	}
	return paths
}

var bracketReplacer = strings.NewReplacer("[", ".", "]", "")

func dottedPath(name string) string {
	return bracketReplacer.Replace(name)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// mapErrorPath returns the longest known path matching raw, or "" for
// form-level keys and unknown paths.
func mapErrorPath(raw string, paths map[string]string) string {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return ""
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return ""
	}

	best := ""
	for _, variant := range buildSegmentVariants(segments) {
		if path := longestMatchingPath(variant, paths); path != "" {
			if strings.Count(path, ".") > strings.Count(best, ".") || best == "" {
				best = path
			}
		}
	}
	return best
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}

	clean = strings.NewReplacer("[", ".", "]", "", "//", "/").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func buildSegmentVariants(segments []string) [][]string {
	var variants [][]string
	seen := make(map[string]struct{}, 4)
	add := func(candidate []string) {
		if len(candidate) == 0 {
			return
		}
		key := strings.Join(candidate, ".")
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, append([]string(nil), candidate...))
	}

	noWrappers := dropWrapperSegments(segments)
	add(segments)
	add(noWrappers)
	add(stripNumericSegments(segments))
	add(stripNumericSegments(noWrappers))
	return variants
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
	"fields":     {},
	"errors":     {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, paths map[string]string) string {
	if len(paths) == 0 {
		return ""
	}
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := paths[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
