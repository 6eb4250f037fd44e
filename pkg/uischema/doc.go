// Package uischema loads UI overlays for form definitions. An overlay renames
// labels, swaps type keys and controls, merges per-form options and reorders
// fields without touching the definition or the OpenAPI document it came from.
// The Decorator applies overlays to a model.FormDef by form id.
package uischema
