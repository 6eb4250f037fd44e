package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMapErrorPayloadPaths(t *testing.T) {
	t.Parallel()

	paths := map[string]string{
		"email":           "email",
		"phone":           "phone",
		"tags":            "tags",
		"items.r1.qty":    "items[r1].qty",
		"items.0.qty":     "items[r1].qty",
		"items.r2.price":  "items[r2].price",
		"items.1.price":   "items[r2].price",
		"billing.address": "billing.address",
	}
	payload := map[string][]string{
		"/body/email":            {"Email taken", " Email taken "},
		"data.attributes.phone":  {"Phone malformed"},
		"$.body.tags[0]":         {"Tags must be unique"},
		"items[r1].qty":          {"Out of stock"},
		"#/items/1/price":        {"Price too low"},
		"billing/address/street": {"Street missing"},
		"non_field_errors":       {"Form level error"},
		"request/body/unknown":   {"Falls back to form"},
		"":                       {"Unscoped"},
		"phone ":                 {"  "},
	}

	mapped := MapErrorPayload(paths, payload)

	wantFields := map[string][]string{
		"email":           {"Email taken"},
		"phone":           {"Phone malformed"},
		"tags":            {"Tags must be unique"},
		"items[r1].qty":   {"Out of stock"},
		"items[r2].price": {"Price too low"},
		"billing.address": {"Street missing"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Form level error", "Falls back to form", "Unscoped"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayloadEmpty(t *testing.T) {
	t.Parallel()

	mapped := MapErrorPayload(map[string]string{"a": "a"}, nil)
	if mapped.Fields != nil || mapped.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", mapped)
	}
}

func TestMergeFormErrors(t *testing.T) {
	t.Parallel()

	merged := MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestDottedPath(t *testing.T) {
	t.Parallel()

	if got := dottedPath("items[3f2a].unit_price"); got != "items.3f2a.unit_price" {
		t.Fatalf("dottedPath: %q", got)
	}
}
