package openapi

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formguard/pkg/model"
)

const invoiceDocument = `
openapi: 3.0.3
info:
  title: Invoices
  version: 1.0.0
paths:
  /invoices:
    get:
      operationId: listInvoices
      responses:
        "200":
          description: ok
    post:
      operationId: createInvoice
      summary: Create invoice
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [customer_name, tax_id, items]
              properties:
                id:
                  type: string
                  readOnly: true
                customer_name:
                  type: string
                  title: Customer
                  maxLength: 100
                  x-formguard-order: -1
                email:
                  type: string
                  format: email
                tax_id:
                  type: string
                  x-formguard-type: tckn_vkn
                  x-formguard-remote: true
                phone:
                  type: string
                kind:
                  type: string
                  enum: [person, company]
                  default: person
                company_name:
                  type: string
                  x-formguard-visible-when: kind == "company"
                newsletter:
                  type: boolean
                password:
                  type: string
                  format: password
                  minLength: 8
                password_confirm:
                  type: string
                  format: password
                  x-formguard-match: password
                address:
                  type: object
                  properties:
                    city:
                      type: string
                    plate:
                      type: string
                items:
                  type: array
                  minItems: 1
                  items:
                    type: object
                    required: [qty]
                    properties:
                      qty:
                        type: integer
                        x-formguard-role: quantity
                      unit_price:
                        type: number
                      discount_rate:
                        type: number
                        minimum: 0
                        maximum: 100
                      tax_rate:
                        type: number
                      note:
                        type: string
      responses:
        "201":
          description: created
  /invoices/{id}:
    put:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Note"
      responses:
        "200":
          description: ok
  /nodes:
    post:
      operationId: createNode
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Node"
      responses:
        "201":
          description: created
components:
  schemas:
    Note:
      type: object
      properties:
        note:
          type: string
    Node:
      type: object
      properties:
        name:
          type: string
        parent:
          $ref: "#/components/schemas/Node"
`

func ptr(v float64) *float64 { return &v }

func TestConverterFormFromInvoiceOperation(t *testing.T) {
	t.Parallel()

	def, err := New().FormFromData(context.Background(), []byte(invoiceDocument), "createInvoice")
	if err != nil {
		t.Fatalf("FormFromData: %v", err)
	}

	want := model.FormDef{
		ID:       "createInvoice",
		Title:    "Create invoice",
		Endpoint: "/invoices",
		Method:   "POST",
		Fields: []model.Field{
			{Name: "customer_name", Label: "Customer", Required: true, MaxLength: 100},
			{Name: "address.city"},
			{Name: "address.plate", Type: "plate"},
			{Name: "company_name", VisibleWhen: `kind == "company"`},
			{Name: "email", Type: "email"},
			{Name: "kind", Control: model.ControlSelect, Choices: []string{"person", "company"}, Default: "person"},
			{Name: "newsletter", Control: model.ControlCheckbox, Value: "true"},
			{Name: "password", Control: model.ControlPassword, MinLength: 8},
			{Name: "password_confirm", Control: model.ControlPassword, Match: "password"},
			{Name: "phone", Type: "phone"},
			{Name: "tax_id", Type: "tckn_vkn", Required: true, Remote: true},
		},
		Rows: &model.RowsDef{
			Name:     "items",
			MinRows:  1,
			Quantity: "qty",
			Columns: []model.Field{
				{Name: "discount_rate", Type: "number", Min: ptr(0), Max: ptr(100)},
				{Name: "note"},
				{Name: "qty", Type: "integer", Required: true},
				{Name: "tax_rate", Type: "number"},
				{Name: "unit_price", Type: "currency"},
			},
		},
	}
	if diff := cmp.Diff(want, def); diff != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", diff)
	}
	if role, ok := def.Rows.RoleOf("qty"); !ok || role != model.ColumnQuantity {
		t.Fatalf("qty role = %q, %v", role, ok)
	}
}

func TestConverterOperations(t *testing.T) {
	t.Parallel()

	c := New()
	doc, err := c.Load(context.Background(), []byte(invoiceDocument))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := c.Operations(doc)
	want := []string{"createInvoice", "createNode", "put:/invoices/{id}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}

	def, err := c.Form(doc, "put:/invoices/{id}")
	if err != nil {
		t.Fatalf("Form: %v", err)
	}
	if def.Method != "PUT" || len(def.Fields) != 1 || def.Fields[0].Name != "note" {
		t.Fatalf("unexpected definition: %+v", def)
	}
}

func TestConverterStopsAtCycles(t *testing.T) {
	t.Parallel()

	def, err := New().FormFromData(context.Background(), []byte(invoiceDocument), "createNode")
	if err != nil {
		t.Fatalf("FormFromData: %v", err)
	}
	if diff := cmp.Diff([]model.Field{{Name: "name"}}, def.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestConverterErrors(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	if _, err := c.Load(ctx, []byte("  ")); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := c.Load(ctx, []byte("openapi: [")); err == nil {
		t.Fatalf("expected load error for malformed document")
	}
	if _, err := c.FormFromData(ctx, []byte(invoiceDocument), "missing"); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if _, err := c.FormFromData(ctx, []byte(invoiceDocument), "listInvoices"); !errors.Is(err, ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.Load(cancelled, []byte(invoiceDocument)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConverterDecorators(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := New(WithDecorators(model.DecoratorFunc(func(def *model.FormDef) error {
		def.Options.Locale = "en"
		return nil
	})))
	def, err := c.FormFromData(context.Background(), []byte(invoiceDocument), "createNode")
	if err != nil {
		t.Fatalf("FormFromData: %v", err)
	}
	if def.Options.Locale != "en" {
		t.Fatalf("decorator not applied: %+v", def.Options)
	}

	failing := New(WithDecorators(model.DecoratorFunc(func(*model.FormDef) error { return boom })))
	if _, err := failing.FormFromData(context.Background(), []byte(invoiceDocument), "createNode"); !errors.Is(err, boom) {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestConverterLoadFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/specs/invoices.yaml", []byte(invoiceDocument), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := New()
	doc, err := c.LoadFile(context.Background(), fs, "/specs/invoices.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(c.Operations(doc)) != 3 {
		t.Fatalf("expected three operations")
	}
	if _, err := c.LoadFile(context.Background(), fs, "/specs/missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
