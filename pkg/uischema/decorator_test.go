package uischema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formguard/pkg/model"
)

const contactOverlay = `
fieldOrderPresets:
  identity: [tckn, full_name]
forms:
  contact:
    title: İletişim
    orderPreset: identity
    options:
      debounceDelayMs: 100
    fields:
      full_name:
        label: Ad Soyad
      phone:
        type: phone
        order: 0
        required: true
      items.items.unit_price:
        label: Birim Fiyat
        order: 0
`

func contactDef() model.FormDef {
	return model.FormDef{
		ID: "contact",
		Fields: []model.Field{
			{Name: "full_name"},
			{Name: "email", Type: "email"},
			{Name: "tckn", Type: "national_id"},
			{Name: "phone"},
		},
		Rows: &model.RowsDef{
			Name: "items",
			Columns: []model.Field{
				{Name: "quantity", Type: "number"},
				{Name: "unit_price", Type: "currency"},
			},
		},
	}
}

func loadStore(t *testing.T, files map[string]string) *Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range files {
		if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	store, err := LoadDir(fs, "/overlays")
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	return store
}

func TestDecoratorAppliesOverlay(t *testing.T) {
	t.Parallel()

	store := loadStore(t, map[string]string{"/overlays/contact.yaml": contactOverlay})
	def := contactDef()
	if err := NewDecorator(store).Decorate(&def); err != nil {
		t.Fatalf("Decorate: %v", err)
	}

	wantFields := []model.Field{
		{Name: "phone", Type: "phone", Required: true},
		{Name: "tckn", Type: "national_id"},
		{Name: "full_name", Label: "Ad Soyad"},
		{Name: "email", Type: "email"},
	}
	if diff := cmp.Diff(wantFields, def.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	wantColumns := []model.Field{
		{Name: "unit_price", Label: "Birim Fiyat", Type: "currency"},
		{Name: "quantity", Type: "number"},
	}
	if diff := cmp.Diff(wantColumns, def.Rows.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if def.Title != "İletişim" {
		t.Fatalf("title = %q", def.Title)
	}
	if def.Options.DebounceDelayMs == nil || *def.Options.DebounceDelayMs != 100 {
		t.Fatalf("options not merged: %+v", def.Options)
	}
}

func TestDecoratorIgnoresOtherForms(t *testing.T) {
	t.Parallel()

	store := loadStore(t, map[string]string{"/overlays/contact.yaml": contactOverlay})
	def := contactDef()
	def.ID = "invoice"
	if err := NewDecorator(store).Decorate(&def); err != nil {
		t.Fatalf("Decorate: %v", err)
	}
	if diff := cmp.Diff(contactDef().Fields, def.Fields); diff != "" {
		t.Fatalf("unrelated form changed (-want +got):\n%s", diff)
	}

	var nilDecorator *Decorator
	if err := nilDecorator.Decorate(&def); err != nil {
		t.Fatalf("nil decorator: %v", err)
	}
}

func TestDecoratorRejectsUnknownPaths(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"field": `{"forms": {"contact": {"fields": {"fax": {"label": "Fax"}}}}}`,
		"order": `{"forms": {"contact": {"order": ["tckn", "fax"]}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store := loadStore(t, map[string]string{"/overlays/contact.json": body})
			def := contactDef()
			err := NewDecorator(store).Decorate(&def)
			if err == nil || !strings.Contains(err.Error(), `"fax"`) {
				t.Fatalf("expected an unknown field error, got %v", err)
			}
		})
	}
}

func TestApplyNormalisesAndChecks(t *testing.T) {
	t.Parallel()

	store := loadStore(t, map[string]string{
		"/overlays/contact.json": `{"forms": {"contact": {"fields": {"phone": {"type": " Phone "}}}}}`,
	})
	def, err := NewDecorator(store).Apply(contactDef())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if field, _ := def.Field("phone"); field.Type != "phone" {
		t.Fatalf("type not normalised: %q", field.Type)
	}
}

func TestLoadDirErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]string{
		"duplicate form": {
			"/overlays/a.yaml": "forms:\n  contact:\n    title: A\n",
			"/overlays/b.yaml": "forms:\n  contact:\n    title: B\n",
		},
		"unknown preset": {"/overlays/a.yaml": "forms:\n  contact:\n    orderPreset: nope\n"},
		"empty file":     {"/overlays/a.yaml": "  \n"},
		"invalid":        {"/overlays/a.yaml": "forms: [\n"},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fs := afero.NewMemMapFs()
			for path, body := range files {
				if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
					t.Fatalf("write: %v", err)
				}
			}
			if _, err := LoadDir(fs, "/overlays"); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestModelLoaderRunsOverlay(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/forms/contact.yaml":   "id: contact\nfields:\n  - name: phone\n",
		"/overlays/contact.yml": "forms:\n  contact:\n    fields:\n      phone:\n        type: phone\n",
	}
	for path, body := range files {
		if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	store, err := LoadFile(fs, "/overlays/contact.yml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	forms, err := model.LoadDir(fs, "/forms", NewDecorator(store))
	if err != nil {
		t.Fatalf("model.LoadDir: %v", err)
	}
	def, _ := forms.Form("contact")
	if field, _ := def.Field("phone"); field.Type != "phone" {
		t.Fatalf("overlay not applied: %+v", def.Fields)
	}
}

func TestNormalizeFieldPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"items.items.qty": "items[].qty",
		"items[*].qty":    "items[].qty",
		" items[].qty ":   "items[].qty",
		"address.city":    "address.city",
		".":               "",
	}
	for in, want := range cases {
		if got := NormalizeFieldPath(in); got != want {
			t.Fatalf("NormalizeFieldPath(%q) = %q, want %q", in, got, want)
		}
	}
}
