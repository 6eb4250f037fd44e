// Package model defines the form definitions the engine consumes: fields with
// their type key and generic rules, an optional line-item (rows) section and
// the per-form options. Definitions are plain data and load from JSON or YAML
// documents; internal/openapi derives them from request body schemas.
package model
