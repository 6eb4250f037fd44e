package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const invoiceYAML = `
id: invoice
title: Fatura
options:
  debounceDelayMs: 400
  showSuccessState: false
fields:
  - name: customer_tax_id
    type: VKN
    required: true
  - name: period_start
    type: date
  - name: period_end
    type: date
  - name: password
    control: password
    minLength: 8
  - name: password_confirm
    control: password
    match: password
  - name: token
    control: hidden
  - name: save
    control: submit
rows:
  name: items
  minRows: 1
  columns:
    - name: qty
      type: integer
    - name: price
      type: currency
  quantity: qty
  unitPrice: price
`

func TestParseYAML(t *testing.T) {
	t.Parallel()

	def, err := Parse([]byte(invoiceYAML), "forms/invoice.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.ID != "invoice" || len(def.Fields) != 7 {
		t.Fatalf("unexpected definition: %+v", def)
	}

	taxID, _ := def.Field("customer_tax_id")
	if taxID.Type != "vkn" {
		t.Fatalf("type keys are normalised, got %q", taxID.Type)
	}
	end, _ := def.Field("period_end")
	if end.DateRangeStart != "period_start" {
		t.Fatalf("date range start not inferred: %+v", end)
	}

	opts := def.Options.Apply(DefaultOptions())
	if opts.DebounceDelay != 400*time.Millisecond || opts.ShowSuccessState || !opts.ValidateOnBlur {
		t.Fatalf("options not applied: %+v", opts)
	}

	if def.Rows == nil || def.Rows.Role(ColumnQuantity) != "qty" || def.Rows.Role(ColumnTaxRate) != ColumnTaxRate {
		t.Fatalf("rows roles mismatch: %+v", def.Rows)
	}
	if role, ok := def.Rows.RoleOf("price"); !ok || role != ColumnUnitPrice {
		t.Fatalf("RoleOf(price) = %q, %v", role, ok)
	}
}

func TestParseJSONDefaultsID(t *testing.T) {
	t.Parallel()

	def, err := Parse([]byte(`{"fields":[{"name":"iban","type":"iban"}]}`), "payee.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.ID != "payee" {
		t.Fatalf("expected id from file name, got %q", def.ID)
	}
}

func TestCheckErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		def  FormDef
		want error
	}{
		{name: "missing id", def: FormDef{}, want: ErrMissingID},
		{name: "empty name", def: FormDef{ID: "f", Fields: []Field{{}}}, want: ErrEmptyFieldName},
		{name: "duplicate", def: FormDef{ID: "f", Fields: []Field{{Name: "a"}, {Name: "a"}}}, want: ErrDuplicateField},
		{name: "match target", def: FormDef{ID: "f", Fields: []Field{{Name: "a", Match: "b"}}}, want: ErrUnknownReference},
		{name: "duplicate column", def: FormDef{ID: "f", Rows: &RowsDef{Name: "items", Columns: []Field{{Name: "qty"}, {Name: "qty"}}}}, want: ErrDuplicateField},
	}
	for _, tc := range cases {
		if err := Check(tc.def); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestSkipped(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		field Field
		want  bool
	}{
		"text":             {field: Field{Name: "a"}, want: false},
		"disabled":         {field: Field{Name: "a", Disabled: true}, want: true},
		"submit":           {field: Field{Name: "a", Control: ControlSubmit}, want: true},
		"hidden":           {field: Field{Name: "a", Control: ControlHidden}, want: true},
		"hidden opted in":  {field: Field{Name: "a", Control: ControlHidden, Validate: true}, want: false},
		"checkbox is data": {field: Field{Name: "a", Control: ControlCheckbox}, want: false},
	}
	for name, tc := range cases {
		if got := tc.field.Skipped(); got != tc.want {
			t.Fatalf("%s: want %v, got %v", name, tc.want, got)
		}
	}
}

func TestRowFieldName(t *testing.T) {
	t.Parallel()

	name := RowFieldName("items", "r1", "qty")
	section, row, column, ok := ParseRowFieldName(name)
	if !ok {
		t.Fatalf("parse failed for %q", name)
	}
	if diff := cmp.Diff([]string{"items", "r1", "qty"}, []string{section, row, column}); diff != "" {
		t.Fatalf("row field name mismatch (-want +got):\n%s", diff)
	}
	if _, _, _, ok := ParseRowFieldName("plain"); ok {
		t.Fatalf("plain names are not row fields")
	}
}

func TestLoadDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/forms/invoice.yaml": invoiceYAML,
		"/forms/payee.json":   `{"id":"payee","fields":[{"name":"iban","type":"iban"}]}`,
		"/forms/README.md":    "ignored",
	}
	for path, body := range files {
		if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	store, err := LoadDir(fs, "/forms")
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if diff := cmp.Diff([]string{"invoice", "payee"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if err := afero.WriteFile(fs, "/forms/copy.yml", []byte("id: payee\nfields: []\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadDir(fs, "/forms"); err == nil {
		t.Fatalf("expected duplicate form error")
	}
}
