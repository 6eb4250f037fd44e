package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/format"
	"github.com/goliatone/go-formguard/pkg/validate"
)

func TestDefaultResolvesAliases(t *testing.T) {
	t.Parallel()

	reg := Default()
	cases := map[string]Entry{
		"phone":       {Key: Phone, Formatter: format.Phone, Validator: validate.Phone},
		"TELEFON":     {Key: Phone, Formatter: format.Phone, Validator: validate.Phone},
		" tckn ":      {Key: NationalID, Formatter: format.NationalID, Validator: validate.NationalID},
		"vkn":         {Key: TaxID, Formatter: format.TaxID, Validator: validate.TaxID},
		"plaka":       {Key: Plate, Formatter: format.Plate, Validator: validate.Plate},
		"kredi_karti": {Key: CreditCard, Formatter: format.CreditCard, Validator: validate.CreditCard},
		"para":        {Key: Currency, Formatter: format.Currency, Validator: validate.Number},
		"email":       {Key: Email, Validator: validate.Email},
		"auto_number": {Key: AutoNumber, Formatter: format.Uppercase},
	}
	for key, want := range cases {
		got, ok := reg.Lookup(key)
		if !ok {
			t.Fatalf("lookup %q failed", key)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("entry %q mismatch (-want +got):\n%s", key, diff)
		}
	}
}

func TestUnknownKeyIsFreeText(t *testing.T) {
	t.Parallel()

	reg := Default()
	if _, ok := reg.Lookup("signature"); ok {
		t.Fatalf("unexpected entry for unknown key")
	}
	if got := reg.Resolve("signature"); got != (Entry{Key: TextKey}) {
		t.Fatalf("unknown key should resolve to free text, got %+v", got)
	}
	if _, ok := reg.Formatter("signature"); ok {
		t.Fatalf("free text must not format")
	}
	if _, ok := reg.Validator("signature"); ok {
		t.Fatalf("free text must not validate")
	}
}

func TestFormatterAndValidatorDispatch(t *testing.T) {
	t.Parallel()

	reg := Default()
	fmtFn, ok := reg.Formatter("tel")
	if !ok {
		t.Fatalf("phone formatter missing")
	}
	formatted := fmtFn("5321234567", 10)
	valFn, ok := reg.Validator("tel")
	if !ok {
		t.Fatalf("phone validator missing")
	}
	if !valFn(formatted.Text).Valid {
		t.Fatalf("formatted phone %q should validate", formatted.Text)
	}
}

func TestBuilderErrors(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder().
		Register("", "", "").
		Register("x", format.ID("nope"), "").
		Register("y", "", validate.ID("nope")).
		Alias("z", "missing").
		Build()
	for _, want := range []error{ErrEmptyKey, ErrUnknownFormatter, ErrUnknownValidator, ErrUnknownTarget} {
		if !errors.Is(err, want) {
			t.Fatalf("expected %v in %v", want, err)
		}
	}
}

func TestBuilderExtendKeepsDefaults(t *testing.T) {
	t.Parallel()

	reg, err := NewBuilder().
		Extend(Default()).
		Register("sicil_no", format.Integer, validate.Number).
		Alias("sicil", "sicil_no").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := reg.Resolve("sicil"); got.Formatter != format.Integer {
		t.Fatalf("custom alias not resolved: %+v", got)
	}
	if _, ok := reg.Lookup("iban"); !ok {
		t.Fatalf("extended registry lost built-ins")
	}
	if _, ok := Default().Lookup("sicil_no"); ok {
		t.Fatalf("default registry must not be mutated")
	}
}

func TestInfer(t *testing.T) {
	t.Parallel()

	reg := Default()
	cases := []struct {
		hint Hint
		want string
		ok   bool
	}{
		{hint: Hint{Name: "contact", Format: "email"}, want: Email, ok: true},
		{hint: Hint{Name: "customer_iban"}, want: IBAN, ok: true},
		{hint: Hint{Name: "tckn", Type: "string"}, want: NationalID, ok: true},
		{hint: Hint{Name: "birth", Format: "date"}, want: Date, ok: true},
		{hint: Hint{Name: "quantity", Type: "integer"}, want: Integer, ok: true},
		{hint: Hint{Name: "notes", Type: "string"}, ok: false},
	}
	for _, tc := range cases {
		got, ok := reg.Infer(tc.hint)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Infer(%+v): want %q/%v, got %q/%v", tc.hint, tc.want, tc.ok, got, ok)
		}
	}
}
