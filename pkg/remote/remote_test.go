package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/validate"
)

func TestHTTPCheckerPostsFieldAndValue(t *testing.T) {
	t.Parallel()

	var got Request
	var requestID, token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(RequestIDHeader)
		token = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Response{Valid: false, Message: "taken"})
	}))
	defer srv.Close()

	checker, err := NewHTTPChecker(srv.URL,
		WithClient(srv.Client()),
		WithHeader("Authorization", "Bearer x"),
		WithRequestID(func() string { return "req-1" }),
	)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}
	out, err := checker.Check(context.Background(), "email", "a@b.co")
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	if diff := cmp.Diff(Request{Field: "email", Value: "a@b.co"}, got); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}
	if requestID != "req-1" || token != "Bearer x" {
		t.Fatalf("headers not forwarded: id=%q auth=%q", requestID, token)
	}
	if out.Valid || out.Key != messages.Remote || out.Message != "taken" {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestHTTPCheckerDefaultRequestID(t *testing.T) {
	t.Parallel()

	var requestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get(RequestIDHeader)
		_, _ = w.Write([]byte(`{"valid":true}`))
	}))
	defer srv.Close()

	checker, _ := NewHTTPChecker(srv.URL)
	out, err := checker.Check(context.Background(), "vkn", "1234567890")
	if err != nil || !out.Valid {
		t.Fatalf("expected valid outcome, got %+v err=%v", out, err)
	}
	if len(requestID) != 26 {
		t.Fatalf("expected a ulid request id, got %q", requestID)
	}
}

func TestHTTPCheckerStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	checker, _ := NewHTTPChecker(srv.URL)
	if _, err := checker.Check(context.Background(), "email", "a@b.co"); !errors.Is(err, ErrStatus) {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewHTTPCheckerRequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewHTTPChecker("  "); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("expected ErrNoEndpoint, got %v", err)
	}
}

func TestResponseOutcomeKeys(t *testing.T) {
	t.Parallel()

	out := Response{Key: string(messages.TaxID)}.Outcome()
	if out.Key != messages.TaxID || out.Message != "" {
		t.Fatalf("custom key lost: %+v", out)
	}
	if !(Response{Valid: true}).Outcome().Valid {
		t.Fatalf("valid response must map to OK")
	}

	fn := CheckerFunc(func(context.Context, string, string) (validate.Outcome, error) {
		return validate.OK(), nil
	})
	if out, _ := fn.Check(context.Background(), "a", "b"); !out.Valid {
		t.Fatalf("checker func not invoked")
	}
}
