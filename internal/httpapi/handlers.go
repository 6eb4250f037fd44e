package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formguard/pkg/debounce"
	"github.com/goliatone/go-formguard/pkg/form"
	"github.com/goliatone/go-formguard/pkg/format"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/registry"
	"github.com/goliatone/go-formguard/pkg/validate"
)

// FormatRequest asks for the formatted value of one input. Without a cursor
// the final form is returned; with one, the as-you-type mask and the new
// caret position.
type FormatRequest struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Cursor *int   `json:"cursor,omitempty"`
}

// FormatResponse carries the formatted text.
type FormatResponse struct {
	Text   string `json:"text"`
	Digits string `json:"digits"`
	Cursor int    `json:"cursor"`
}

// ValidateRequest asks for the verdict on one value.
type ValidateRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ValidateResponse is the verdict on one value.
type ValidateResponse struct {
	Valid   bool         `json:"valid"`
	Key     messages.Key `json:"key,omitempty"`
	Message string       `json:"message,omitempty"`
}

// BatchRequest validates several values at once.
type BatchRequest struct {
	Items []ValidateRequest `json:"items"`
}

// BatchResponse holds one result per item, in request order.
type BatchResponse struct {
	Results []ValidateResponse `json:"results"`
}

// TypesResponse lists the registered type keys and the formatters and
// validators available to custom types.
type TypesResponse struct {
	Types      []registry.Entry  `json:"types"`
	Aliases    map[string]string `json:"aliases,omitempty"`
	Formatters []format.ID       `json:"formatters"`
	Validators []validate.ID     `json:"validators"`
}

// FormRow is one line item of a form validation request.
type FormRow struct {
	ID     string            `json:"id,omitempty"`
	Values map[string]string `json:"values"`
}

// FormValidateRequest holds the values of a whole form.
type FormValidateRequest struct {
	Values map[string]string `json:"values"`
	Rows   []FormRow         `json:"rows,omitempty"`
}

// FormValidateResponse is the submit verdict for a form.
type FormValidateResponse struct {
	Valid        bool              `json:"valid"`
	Errors       map[string]string `json:"errors,omitempty"`
	FormErrors   []string          `json:"formErrors,omitempty"`
	FirstInvalid string            `json:"firstInvalid,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	Values       map[string]string `json:"values,omitempty"`
	Total        string            `json:"total,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !decode(w, r, &req) {
		return
	}
	var (
		res    format.Result
		cursor int
	)
	if req.Cursor == nil {
		res = s.engine.Format(req.Value, req.Type)
		cursor = len([]rune(res.Text))
	} else {
		res, cursor = s.engine.FormatAt(req.Value, req.Type, *req.Cursor)
	}
	writeJSON(w, http.StatusOK, FormatResponse{Text: res.Text, Digits: res.Digits, Cursor: cursor})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, response(s.engine.Validate(req.Value, req.Type)))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Items) > s.maxBatch {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("batch of %d items exceeds the limit of %d", len(req.Items), s.maxBatch))
		return
	}

	results := make([]ValidateResponse, len(req.Items))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(s.workers)
	for i, item := range req.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = response(s.engine.Validate(item.Value, item.Type))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, BatchResponse{Results: results})
}

func (s *Server) handleTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TypesResponse{
		Types:      s.engine.Types(),
		Aliases:    s.engine.Registry().Aliases(),
		Formatters: format.IDs(),
		Validators: validate.IDs(),
	})
}

func (s *Server) handleForms(w http.ResponseWriter, _ *http.Request) {
	ids := s.forms.IDs()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"forms": ids})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	def, ok := s.forms.Form(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("form %q not found", chi.URLParam(r, "id")))
		return
	}
	writeJSON(w, http.StatusOK, def)
}

// handleFormValidate fills a fresh form with the posted values and runs the
// submit checks, answering 422 when the form would be blocked.
func (s *Server) handleFormValidate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := s.forms.Form(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("form %q not found", id))
		return
	}
	var req FormValidateRequest
	if !decode(w, r, &req) {
		return
	}

	options := []form.Option{
		form.WithScheduler(debounce.NewManualScheduler()),
		form.WithLogger(s.logger),
	}
	if s.metrics != nil {
		options = append(options, form.WithObserver(s.metrics))
	}
	f, err := s.engine.NewForm(def, options...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	for name, value := range req.Values {
		if _, err := f.SetValue(name, value); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	for _, row := range req.Rows {
		if _, err := f.AddRow(row.ID, row.Values); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	res, err := f.Submit(r.Context())
	if err != nil && !errors.Is(err, form.ErrSubmitBlocked) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := FormValidateResponse{
		Valid:        res.Valid,
		Errors:       res.Errors,
		FormErrors:   res.FormErrors,
		FirstInvalid: res.FirstInvalid,
		Summary:      res.Summary,
	}
	if res.Valid {
		out.Values = f.Values()
		if len(f.RowIDs()) > 0 {
			out.Total = f.Totals().Display().Grand
		}
	}
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

func response(out validate.Outcome) ValidateResponse {
	return ValidateResponse{Valid: out.Valid, Key: out.Key, Message: out.Message}
}

func decode(w http.ResponseWriter, r *http.Request, target any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: strings.TrimSpace(err.Error())})
}
