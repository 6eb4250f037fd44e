package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formguard/internal/openapi"
	"github.com/goliatone/go-formguard/pkg/session"
)

const contactForm = `
id: contact
fields:
  - name: full_name
    required: true
  - name: tckn
    type: national_id
    required: true
`

const contactAPI = `
openapi: 3.0.3
info: {title: contact, version: "1"}
paths:
  /contacts:
    post:
      operationId: createContact
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [phone]
              properties:
                phone:
                  type: string
                  x-formguard-type: phone
      responses:
        "201": {description: created}
`

type scriptedDriver struct {
	inputs []string
	info   []string
}

func (d *scriptedDriver) Input(context.Context, session.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := d.inputs[0]
	d.inputs = d.inputs[1:]
	return val, nil
}

func (d *scriptedDriver) Password(ctx context.Context, cfg session.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptedDriver) Confirm(context.Context, session.ConfirmConfig) (bool, error) {
	return false, nil
}

func (d *scriptedDriver) Select(context.Context, session.SelectConfig) (int, error) {
	return 0, nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg session.TextAreaConfig) (string, error) {
	return d.Input(ctx, session.InputConfig{Message: cfg.Message})
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.info = append(d.info, msg)
	return nil
}

func newTestApp(t *testing.T, files map[string]string) *app {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range files {
		if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return &app{fs: fs, getenv: func(string) string { return "" }}
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRoot(a)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFormatCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, newTestApp(t, nil), "format", "currency", "1250.5")
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if out != "1.250,50\n" {
		t.Fatalf("format output = %q", out)
	}

	out, err = execute(t, newTestApp(t, nil), "format", "phone", "5321", "--cursor", "4", "--json")
	if err != nil {
		t.Fatalf("format --cursor: %v", err)
	}
	var got struct {
		Text   string `json:"text"`
		Cursor int    `json:"cursor"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Text != "(532) 1" || got.Cursor != 7 {
		t.Fatalf("unexpected typing result %+v", got)
	}
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, newTestApp(t, nil), "validate", "national_id", "1234567")
	if !errors.Is(err, errInvalidValue) {
		t.Fatalf("expected errInvalidValue, got %v", err)
	}
	if out != "TC Kimlik No 11 haneli olmalıdır (7/11)\n" {
		t.Fatalf("validate output = %q", out)
	}

	out, err = execute(t, newTestApp(t, nil), "validate", "national_id", "10000000146")
	if err != nil || out != "valid\n" {
		t.Fatalf("valid id: out=%q err=%v", out, err)
	}
}

func TestValidateUsesConfiguredLocale(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, map[string]string{"/etc/formguard.yaml": "locale: en\n"})
	out, err := execute(t, a, "--config", "/etc/formguard.yaml", "validate", "national_id", "1234567")
	if !errors.Is(err, errInvalidValue) {
		t.Fatalf("expected errInvalidValue, got %v", err)
	}
	if out != "National ID must have 11 digits (7/11)\n" {
		t.Fatalf("validate output = %q", out)
	}
}

func TestConfigErrorsSurface(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, newTestApp(t, nil), "--config", "/missing.yaml", "types"); err == nil {
		t.Fatalf("expected a missing config error")
	}
}

func TestTypesCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, newTestApp(t, nil), "types")
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if !strings.HasPrefix(lines[0], "TYPE") {
		t.Fatalf("missing header: %q", lines[0])
	}
	found := false
	for _, line := range lines[1:] {
		if strings.Fields(line)[0] == "tckn_vkn" {
			found = true
		}
	}
	if !found {
		t.Fatalf("tckn_vkn not listed:\n%s", out)
	}
}

func TestCheckCommandWithFormFile(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, map[string]string{
		"/forms/contact.yaml": contactForm,
		"/etc/formguard.yaml": "locale: en\n",
	})
	driver := &scriptedDriver{inputs: []string{"Ada", "1234567", "10000000146"}}
	a.driver = driver

	out, err := execute(t, a, "--config", "/etc/formguard.yaml", "check", "--form", "/forms/contact.yaml")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var got struct {
		Valid  bool              `json:"valid"`
		Values map[string]string `json:"values"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := map[string]string{"full_name": "Ada", "tckn": "10000000146"}
	if !got.Valid {
		t.Fatalf("expected a valid submission: %s", out)
	}
	if diff := cmp.Diff(want, got.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"✗ National ID must have 11 digits (7/11)"}, driver.info); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckCommandAppliesOverlay(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, map[string]string{
		"/forms/contact.yaml":    contactForm,
		"/overlays/contact.yaml": "forms:\n  contact:\n    order: [tckn, full_name]\n",
		"/etc/formguard.yaml":    "forms:\n  overlays: /overlays\n",
	})
	a.driver = &scriptedDriver{inputs: []string{"10000000146", "Ada"}}

	out, err := execute(t, a, "--config", "/etc/formguard.yaml", "check", "--form", "/forms/contact.yaml")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, `"tckn": "10000000146"`) || !strings.Contains(out, `"full_name": "Ada"`) {
		t.Fatalf("overlay order not applied: %s", out)
	}
}

func TestCheckCommandWithOpenAPI(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, map[string]string{"/api.yaml": contactAPI})
	a.driver = &scriptedDriver{inputs: []string{"5321234567"}}

	out, err := execute(t, a, "check", "--openapi", "/api.yaml", "--operation", "createContact")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, `"phone": "(532) 123 45 67"`) {
		t.Fatalf("formatted phone missing from %s", out)
	}

	_, err = execute(t, a, "check", "--openapi", "/api.yaml", "--operation", "nope")
	if !errors.Is(err, openapi.ErrUnknownOperation) || !strings.Contains(err.Error(), "createContact") {
		t.Fatalf("expected unknown operation listing createContact, got %v", err)
	}
}

func TestCheckCommandNeedsASource(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, newTestApp(t, nil), "check"); err == nil {
		t.Fatalf("expected a flag error")
	}
}
