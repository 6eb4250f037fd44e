package uischema

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formguard/pkg/model"
)

// Decorator applies overlays to form definitions. It implements
// model.Decorator.
type Decorator struct {
	store *Store
}

var _ model.Decorator = (*Decorator)(nil)

// NewDecorator builds a Decorator backed by the provided store. When store is
// nil or empty, the decorator becomes a no-op.
func NewDecorator(store *Store) *Decorator {
	return &Decorator{store: store}
}

// Decorate applies the overlay registered for def.ID. When no overlay matches
// the definition is left untouched.
func (d *Decorator) Decorate(def *model.FormDef) error {
	if d == nil || d.store.Empty() || def == nil {
		return nil
	}
	ov, ok := d.store.Overlay(def.ID)
	if !ok {
		return nil
	}

	if ov.Title != "" {
		def.Title = ov.Title
	}
	def.Options = def.Options.Merge(ov.Options)
	return applyFieldConfig(def, ov)
}

// Apply decorates def and checks the result, for definitions loaded outside a
// pipeline that already normalises.
func (d *Decorator) Apply(def model.FormDef) (model.FormDef, error) {
	if err := d.Decorate(&def); err != nil {
		return model.FormDef{}, err
	}
	def = model.Normalize(def)
	if err := model.Check(def); err != nil {
		return model.FormDef{}, err
	}
	return def, nil
}

func applyFieldConfig(def *model.FormDef, ov Overlay) error {
	refs, originals := collectFieldRefs(def)

	paths := make([]string, 0, len(ov.Fields))
	for path := range ov.Fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	explicitOrders := make(map[string]int, len(ov.Fields))
	for _, path := range paths {
		cfg := ov.Fields[path]
		field, ok := refs[path]
		if !ok {
			return fmt.Errorf("uischema: form %q (file %s) references unknown field %q", ov.ID, ov.Source, cfg.OriginalPath)
		}
		if cfg.Order != nil {
			explicitOrders[path] = *cfg.Order
		}
		applyFieldCopy(field, cfg)
	}

	presetOrders := make(map[string]int, len(ov.Order))
	for idx, path := range ov.Order {
		if _, ok := refs[path]; !ok {
			return fmt.Errorf("uischema: form %q (file %s) orders unknown field %q", ov.ID, ov.Source, path)
		}
		if _, exists := presetOrders[path]; !exists {
			presetOrders[path] = idx
		}
	}

	reorderFields(def.Fields, "", explicitOrders, presetOrders, originals)
	if def.Rows != nil {
		reorderFields(def.Rows.Columns, def.Rows.Name, explicitOrders, presetOrders, originals)
	}
	return nil
}

func applyFieldCopy(field *model.Field, cfg FieldConfig) {
	if cfg.Label != "" {
		field.Label = cfg.Label
	}
	if cfg.Type != "" {
		field.Type = cfg.Type
	}
	if cfg.Control != "" {
		field.Control = cfg.Control
	}
	if cfg.Required != nil {
		field.Required = *cfg.Required
	}
	if cfg.Remote != nil {
		field.Remote = *cfg.Remote
	}
	if cfg.PatternMessage != "" {
		field.PatternMessage = cfg.PatternMessage
	}
	if cfg.VisibleWhen != "" {
		field.VisibleWhen = cfg.VisibleWhen
	}
	if cfg.Default != "" {
		field.Default = cfg.Default
	}
	if len(cfg.Choices) > 0 {
		field.Choices = append([]string(nil), cfg.Choices...)
	}
}

func reorderFields(fields []model.Field, section string, explicitOrders, presetOrders, originals map[string]int) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fieldOrderLess(fieldPath(section, fields[i].Name), fieldPath(section, fields[j].Name), explicitOrders, presetOrders, originals)
	})
}

// fieldOrderLess puts explicit orders first, then preset positions, then the
// original definition order.
func fieldOrderLess(pathI, pathJ string, explicitOrders, presetOrders, originals map[string]int) bool {
	orderI, hasExplicitI := explicitOrders[pathI]
	orderJ, hasExplicitJ := explicitOrders[pathJ]

	switch {
	case hasExplicitI && hasExplicitJ:
		if orderI != orderJ {
			return orderI < orderJ
		}
		return originals[pathI] < originals[pathJ]
	case hasExplicitI:
		return true
	case hasExplicitJ:
		return false
	}

	presetI, hasPresetI := presetOrders[pathI]
	presetJ, hasPresetJ := presetOrders[pathJ]

	switch {
	case hasPresetI && hasPresetJ:
		if presetI != presetJ {
			return presetI < presetJ
		}
		return originals[pathI] < originals[pathJ]
	case hasPresetI:
		return true
	case hasPresetJ:
		return false
	}

	return originals[pathI] < originals[pathJ]
}

func collectFieldRefs(def *model.FormDef) (map[string]*model.Field, map[string]int) {
	refs := make(map[string]*model.Field, len(def.Fields))
	originals := make(map[string]int, len(def.Fields))
	for idx := range def.Fields {
		refs[def.Fields[idx].Name] = &def.Fields[idx]
		originals[def.Fields[idx].Name] = idx
	}
	if def.Rows != nil {
		for idx := range def.Rows.Columns {
			path := columnPath(def.Rows.Name, def.Rows.Columns[idx].Name)
			refs[path] = &def.Rows.Columns[idx]
			originals[path] = idx
		}
	}
	return refs, originals
}

func fieldPath(section, name string) string {
	if section == "" {
		return name
	}
	return columnPath(section, name)
}
