package messages

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func TestRenderSubstitutesParams(t *testing.T) {
	t.Parallel()

	cat := Default()
	if got := cat.Render(NationalIDLength, Params{"current": 9}); got != "TC Kimlik No 11 haneli olmalıdır (9/11)" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := cat.Render(MinLength, Params{"min": 3}); got != "En az 3 karakter girilmelidir" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRenderUnknownKeyFallsBack(t *testing.T) {
	t.Parallel()

	if got := Default().Render(Key("nope"), nil); got != "Geçersiz değer" {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestMatchLocale(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":      "tr",
		"tr-TR": "tr",
		"en-GB": "en",
		"en":    "en",
		"de":    "tr",
		"???":   "tr",
	}
	for in, want := range cases {
		if got := MatchLocale(in).String(); got != want {
			t.Fatalf("MatchLocale(%q): want %q, got %q", in, want, got)
		}
	}
	if got := New("en-US").Render(Required, nil); got != "This field is required" {
		t.Fatalf("english catalogue: got %q", got)
	}
}

func TestOverridesAndTranslator(t *testing.T) {
	t.Parallel()

	cat := New("tr",
		WithOverrides(map[Key]string{Required: "Boş bırakmayın", Pattern: "  "}),
		WithTranslator(TranslatorFunc(func(locale, key string) (string, error) {
			if key == string(Match) {
				return "[" + locale + "] eşleşmedi", nil
			}
			return "", errors.New("missing")
		})),
	)

	if got := cat.Render(Required, nil); got != "Boş bırakmayın" {
		t.Fatalf("override ignored: %q", got)
	}
	if got := cat.Render(Pattern, nil); got != "Geçersiz format" {
		t.Fatalf("blank override must be ignored: %q", got)
	}
	if got := cat.Render(Match, nil); got != "[tr] eşleşmedi" {
		t.Fatalf("translator not consulted: %q", got)
	}
}

func TestHTMLSanitisesParams(t *testing.T) {
	t.Parallel()

	cat := New("en", WithOverrides(map[Key]string{Max: "At most {max}"}))
	got := cat.HTML(Max, Params{"max": `<script>alert(1)</script>10`})
	if got != "At most 10" {
		t.Fatalf("expected sanitised param, got %q", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	doc := []byte("required: Zorunlu\nmin_length: \"En az {min}\"\nempty: \"\"\n")
	if err := afero.WriteFile(fs, "/messages.yaml", doc, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadOverrides(fs, "/messages.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[Key]string{Required: "Zorunlu", MinLength: "En az {min}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("overrides mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadOverrides(fs, ""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
	if _, err := LoadOverrides(fs, "/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
