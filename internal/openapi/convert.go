// Package openapi derives form definitions from the request body of an
// OpenAPI 3 operation. Property schemas become fields: formats and names
// feed type inference, and required lists, length, pattern and range
// constraints become field rules. An array of objects becomes the row
// section of the form.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/registry"
)

// Vendor extensions read from property schemas.
const (
	ExtType        = "x-formguard-type"
	ExtVisibleWhen = "x-formguard-visible-when"
	ExtRemote      = "x-formguard-remote"
	ExtMatch       = "x-formguard-match"
	ExtRole        = "x-formguard-role"
	ExtOrder       = "x-formguard-order"
)

var (
	// ErrEmptyDocument is returned for an empty payload.
	ErrEmptyDocument = errors.New("openapi: document payload is empty")
	// ErrUnknownOperation is returned when no operation has the requested id.
	ErrUnknownOperation = errors.New("openapi: unknown operation")
	// ErrNoRequestBody is returned for operations without an object body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

var mediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Converter turns OpenAPI operations into form definitions.
type Converter struct {
	registry   *registry.Registry
	decorators []model.Decorator
	validate   bool
	external   bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithRegistry sets the registry used to infer type keys.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Converter) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithDecorators appends decorators applied to every derived definition.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(c *Converter) {
		c.decorators = append(c.decorators, decorators...)
	}
}

// WithValidation validates the document before converting it.
func WithValidation(enabled bool) Option {
	return func(c *Converter) {
		c.validate = enabled
	}
}

// WithExternalRefs allows references to other documents.
func WithExternalRefs(allowed bool) Option {
	return func(c *Converter) {
		c.external = allowed
	}
}

// New returns a Converter using the built-in registry unless configured
// otherwise.
func New(options ...Option) *Converter {
	c := &Converter{registry: registry.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Load parses and resolves an OpenAPI document.
func (c *Converter) Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyDocument
	}
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: c.external}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if c.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

// LoadFile reads a document from fsys and loads it.
func (c *Converter) LoadFile(ctx context.Context, fsys afero.Fs, path string) (*openapi3.T, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", path, err)
	}
	return c.Load(ctx, data)
}

// Operations lists the ids of every operation with an object request body,
// sorted. Operations without an id are named "<method>:<path>".
func (c *Converter) Operations(doc *openapi3.T) []string {
	var ids []string
	walkOperations(doc, func(id, _, _ string, op *openapi3.Operation) bool {
		if requestSchema(op) != nil {
			ids = append(ids, id)
		}
		return true
	})
	sort.Strings(ids)
	return ids
}

// Form derives the definition of operationID.
func (c *Converter) Form(doc *openapi3.T, operationID string) (model.FormDef, error) {
	var (
		found        *openapi3.Operation
		method, path string
	)
	walkOperations(doc, func(id, m, p string, op *openapi3.Operation) bool {
		if id != operationID {
			return true
		}
		found, method, path = op, m, p
		return false
	})
	if found == nil {
		return model.FormDef{}, fmt.Errorf("%w %q", ErrUnknownOperation, operationID)
	}
	schema := requestSchema(found)
	if schema == nil {
		return model.FormDef{}, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	def := model.FormDef{
		ID:       operationID,
		Title:    strings.TrimSpace(found.Summary),
		Endpoint: path,
		Method:   method,
	}
	w := &walker{converter: c, def: &def, seen: make(map[*openapi3.Schema]struct{})}
	w.object("", schema)

	if err := model.Decorate(&def, c.decorators...); err != nil {
		return model.FormDef{}, fmt.Errorf("openapi: decorate %q: %w", operationID, err)
	}
	def = model.Normalize(def)
	if err := model.Check(def); err != nil {
		return model.FormDef{}, fmt.Errorf("openapi: %w", err)
	}
	return def, nil
}

// FormFromData loads data and derives the definition of operationID.
func (c *Converter) FormFromData(ctx context.Context, data []byte, operationID string) (model.FormDef, error) {
	doc, err := c.Load(ctx, data)
	if err != nil {
		return model.FormDef{}, err
	}
	return c.Form(doc, operationID)
}

func walkOperations(doc *openapi3.T, visit func(id, method, path string, op *openapi3.Operation) bool) {
	if doc == nil || doc.Paths == nil {
		return
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			op := ops[method]
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if !visit(id, method, path, op) {
				return
			}
		}
	}
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	var ref *openapi3.SchemaRef
	for _, mediaType := range mediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil {
			ref = mt.Schema
			break
		}
	}
	if ref == nil {
		for _, mt := range content {
			if mt != nil && mt.Schema != nil {
				ref = mt.Schema
				break
			}
		}
	}
	if ref == nil || ref.Value == nil || (!isType(ref.Value, openapi3.TypeObject) && len(ref.Value.Properties) == 0) {
		return nil
	}
	return ref.Value
}

type walker struct {
	converter *Converter
	def       *model.FormDef
	seen      map[*openapi3.Schema]struct{}
}

// object appends the properties of schema under prefix. Nested objects are
// flattened into dotted names; a cycle stops the descent.
func (w *walker) object(prefix string, schema *openapi3.Schema) {
	if _, ok := w.seen[schema]; ok {
		return
	}
	w.seen[schema] = struct{}{}
	defer delete(w.seen, schema)

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}
	for _, name := range orderedProperties(schema.Properties) {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		prop := mergeAllOf(ref.Value)
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}
		_, isRequired := required[name]

		switch {
		case isType(prop, openapi3.TypeObject) || len(prop.Properties) > 0:
			w.object(full, prop)
		case isType(prop, openapi3.TypeArray) && prop.Items != nil && prop.Items.Value != nil &&
			(isType(prop.Items.Value, openapi3.TypeObject) || len(prop.Items.Value.Properties) > 0):
			if w.def.Rows == nil && prefix == "" {
				w.def.Rows = w.rows(name, prop)
			}
		default:
			w.def.Fields = append(w.def.Fields, w.field(full, name, prop, isRequired))
		}
	}
}

func (w *walker) rows(name string, schema *openapi3.Schema) *model.RowsDef {
	item := mergeAllOf(schema.Items.Value)
	rows := &model.RowsDef{Name: name, MinRows: int(schema.MinItems)}
	required := make(map[string]struct{}, len(item.Required))
	for _, column := range item.Required {
		required[column] = struct{}{}
	}
	for _, column := range orderedProperties(item.Properties) {
		ref := item.Properties[column]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		prop := mergeAllOf(ref.Value)
		if isType(prop, openapi3.TypeObject) || isType(prop, openapi3.TypeArray) {
			continue
		}
		_, isRequired := required[column]
		rows.Columns = append(rows.Columns, w.field(column, column, prop, isRequired))
		switch stringExt(prop, ExtRole) {
		case model.ColumnQuantity:
			rows.Quantity = column
		case model.ColumnUnitPrice:
			rows.UnitPrice = column
		case model.ColumnDiscountRate:
			rows.DiscountRate = column
		case model.ColumnTaxRate:
			rows.TaxRate = column
		}
	}
	return rows
}

func (w *walker) field(name, leaf string, schema *openapi3.Schema, required bool) model.Field {
	field := model.Field{
		Name:        name,
		Label:       strings.TrimSpace(schema.Title),
		Required:    required,
		MinLength:   int(schema.MinLength),
		Pattern:     schema.Pattern,
		Min:         schema.Min,
		Max:         schema.Max,
		VisibleWhen: stringExt(schema, ExtVisibleWhen),
		Match:       stringExt(schema, ExtMatch),
		Remote:      boolExt(schema, ExtRemote),
		Default:     scalarString(schema.Default),
	}
	if schema.MaxLength != nil {
		field.MaxLength = int(*schema.MaxLength)
	}

	schemaType := primaryType(schema)
	switch {
	case len(schema.Enum) > 0:
		field.Control = model.ControlSelect
		for _, value := range schema.Enum {
			field.Choices = append(field.Choices, scalarString(value))
		}
	case schemaType == openapi3.TypeBoolean:
		field.Control = model.ControlCheckbox
		field.Value = "true"
	case strings.EqualFold(schema.Format, "password"):
		field.Control = model.ControlPassword
	}

	if key := stringExt(schema, ExtType); key != "" {
		field.Type = key
	} else if key, ok := w.converter.registry.Infer(registry.Hint{Name: leaf, Type: schemaType, Format: schema.Format}); ok {
		field.Type = key
	}
	return field
}

// orderedProperties sorts property names by x-formguard-order, then by
// name.
func orderedProperties(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	order := func(name string) int {
		ref := props[name]
		if ref == nil || ref.Value == nil {
			return 0
		}
		if n, ok := intExt(ref.Value, ExtOrder); ok {
			return n
		}
		return 0
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := order(names[i]), order(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

// mergeAllOf folds allOf members into a copy of schema so composed
// properties, required lists and extensions are visible to the walker.
func mergeAllOf(schema *openapi3.Schema) *openapi3.Schema {
	if len(schema.AllOf) == 0 {
		return schema
	}
	merged := *schema
	merged.Properties = make(openapi3.Schemas, len(schema.Properties))
	for name, prop := range schema.Properties {
		merged.Properties[name] = prop
	}
	merged.Extensions = make(map[string]any, len(schema.Extensions))
	for key, value := range schema.Extensions {
		merged.Extensions[key] = value
	}
	merged.Required = append([]string(nil), schema.Required...)
	for _, ref := range schema.AllOf {
		if ref == nil || ref.Value == nil {
			continue
		}
		member := mergeAllOf(ref.Value)
		for name, prop := range member.Properties {
			if _, ok := merged.Properties[name]; !ok {
				merged.Properties[name] = prop
			}
		}
		for key, value := range member.Extensions {
			if _, ok := merged.Extensions[key]; !ok {
				merged.Extensions[key] = value
			}
		}
		merged.Required = append(merged.Required, member.Required...)
		if merged.Type == nil {
			merged.Type = member.Type
		}
		if merged.Format == "" {
			merged.Format = member.Format
		}
	}
	merged.AllOf = nil
	return &merged
}

func isType(schema *openapi3.Schema, typ string) bool {
	return schema.Type != nil && schema.Type.Is(typ)
}

func primaryType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		return ""
	}
	for _, typ := range schema.Type.Slice() {
		if typ != openapi3.TypeNull {
			return typ
		}
	}
	return ""
}

func stringExt(schema *openapi3.Schema, key string) string {
	value, ok := schema.Extensions[key]
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

func boolExt(schema *openapi3.Schema, key string) bool {
	value, ok := schema.Extensions[key]
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func intExt(schema *openapi3.Schema, key string) (int, bool) {
	switch v := schema.Extensions[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
