package formguard_test

import (
	"testing"

	"github.com/goliatone/go-formguard"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/registry"
)

func TestFormatReturnsFinalForm(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value, key, want string
	}{
		{"1250.5", registry.Currency, "1.250,50"},
		{"5321234567", registry.Phone, "(532) 123 45 67"},
		{"tr330006100519786457841326", registry.IBAN, "TR33 0006 1005 1978 6457 8413 26"},
		{"anything", "no_such_type", "anything"},
	}
	for _, tc := range cases {
		if got := formguard.Format(tc.value, tc.key); got.Text != tc.want {
			t.Fatalf("Format(%q, %q) = %q, want %q", tc.value, tc.key, got.Text, tc.want)
		}
	}
}

func TestFormatThenValidatePhone(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"5321234567", "5051112233", "5999999999"} {
		formatted := formguard.Format(raw, registry.Phone)
		if out := formguard.Validate(formatted.Text, registry.Phone); !out.Valid {
			t.Fatalf("phone %q -> %q should be valid: %+v", raw, formatted.Text, out)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if out := formguard.Validate("TR330006100519786457841326", registry.IBAN); !out.Valid {
		t.Fatalf("expected valid IBAN, got %+v", out)
	}
	if out := formguard.Validate("4539 1488 0343 6467", registry.CreditCard); !out.Valid {
		t.Fatalf("expected valid card, got %+v", out)
	}
	out := formguard.Validate("4539 1488 0343 6468", registry.CreditCard)
	if out.Valid || out.Key != messages.CreditCardChecksum || out.Message != "Kredi kartı numarası geçersiz" {
		t.Fatalf("unexpected card outcome: %+v", out)
	}
	if out := formguard.Validate("", registry.NationalID); !out.Valid {
		t.Fatalf("empty values are valid, got %+v", out)
	}
	if out := formguard.Validate("free text", "no_such_type"); !out.Valid {
		t.Fatalf("unknown types are valid, got %+v", out)
	}
}

func TestEngineUsesCatalogue(t *testing.T) {
	t.Parallel()

	engine := formguard.NewEngine(formguard.WithCatalogue(messages.New("en")))
	out := engine.Validate("1234567", registry.NationalID)
	if out.Message != "National ID must have 11 digits (7/11)" {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestEngineFormatAt(t *testing.T) {
	t.Parallel()

	engine := formguard.NewEngine()
	res, cursor := engine.FormatAt("5321", registry.Phone, 4)
	if res.Text != "(532) 1" || cursor != 7 {
		t.Fatalf("FormatAt = %q/%d", res.Text, cursor)
	}
	res, cursor = engine.FormatAt("abc", "no_such_type", 2)
	if res.Text != "abc" || cursor != 2 {
		t.Fatalf("FormatAt passthrough = %q/%d", res.Text, cursor)
	}

	noFraction := formguard.NewEngine(formguard.WithDecimals(0))
	if got := noFraction.Format("1250,75", registry.Currency); got.Text != "1.250" {
		t.Fatalf("currency without decimals: %q", got.Text)
	}
}

func TestEngineTypes(t *testing.T) {
	t.Parallel()

	types := formguard.NewEngine().Types()
	found := false
	for i, entry := range types {
		if i > 0 && types[i-1].Key >= entry.Key {
			t.Fatalf("types not sorted: %q before %q", types[i-1].Key, entry.Key)
		}
		if entry.Key == registry.TaxOrNationalID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q among %+v", registry.TaxOrNationalID, types)
	}
}

func TestEngineNewForm(t *testing.T) {
	t.Parallel()

	engine := formguard.NewEngine(formguard.WithCatalogue(messages.New("en")))
	f, err := engine.NewForm(model.FormDef{
		ID:     "signup",
		Fields: []model.Field{{Name: "tckn", Type: registry.NationalID, Required: true}},
	})
	if err != nil {
		t.Fatalf("NewForm: %v", err)
	}
	defer f.Close()
	if f.Catalogue().Locale() != "en" {
		t.Fatalf("expected engine catalogue, got %q", f.Catalogue().Locale())
	}
	if f.Valid() {
		t.Fatalf("empty required field must make the form invalid")
	}

	if _, err := formguard.NewForm(model.FormDef{}); err == nil {
		t.Fatalf("expected error for a definition without id")
	}
}
