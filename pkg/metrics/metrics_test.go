package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-formguard/pkg/form"
	"github.com/goliatone/go-formguard/pkg/metrics"
	"github.com/goliatone/go-formguard/pkg/model"
	"github.com/goliatone/go-formguard/pkg/reactor"
)

func newCollector(t *testing.T) (*metrics.Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return metrics.NewWithRegistry(reg, reg), reg
}

func TestCollectorObservesForm(t *testing.T) {
	t.Parallel()

	c, _ := newCollector(t)
	f, err := form.New(model.FormDef{ID: "signup", Fields: []model.Field{
		{Name: "name", Required: true},
		{Name: "phone", Type: "phone"},
	}}, form.WithObserver(c))
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	defer f.Close()

	if _, err := f.Blur("name"); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if _, err := f.Change("phone", "5321234567"); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := f.Submit(t.Context()); err == nil {
		t.Fatalf("submit should be blocked")
	}

	if got := testutil.ToFloat64(c.Validations.WithLabelValues("signup", "text", "blur", "invalid")); got != 1 {
		t.Fatalf("blur validations: %v", got)
	}
	if got := testutil.ToFloat64(c.Validations.WithLabelValues("signup", "phone", "change", "valid")); got != 1 {
		t.Fatalf("change validations: %v", got)
	}
	if got := testutil.ToFloat64(c.Submits.WithLabelValues("signup", "blocked")); got != 1 {
		t.Fatalf("blocked submits: %v", got)
	}
}

func TestCollectorRemoteAndRequests(t *testing.T) {
	t.Parallel()

	c, reg := newCollector(t)
	c.RemoteChecked("signup", "email", form.RemoteStale, 30*time.Millisecond)
	c.RemoteChecked("signup", "email", form.RemoteValid, 10*time.Millisecond)
	c.ObserveRequest("/v1/validate", 200, time.Millisecond)
	c.FieldValidated("x", reactor.State{Type: "iban", Validity: reactor.Valid}, reactor.ReasonInput)

	if got := testutil.ToFloat64(c.RemoteChecks.WithLabelValues("signup", "stale")); got != 1 {
		t.Fatalf("stale checks: %v", got)
	}
	if got := testutil.CollectAndCount(c.RemoteDuration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
	if got := testutil.ToFloat64(c.Requests.WithLabelValues("/v1/validate", "200")); got != 1 {
		t.Fatalf("requests: %v", got)
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "formguard_validations_total") {
		t.Fatalf("exposition misses validations:\n%s", rec.Body.String())
	}
	if n, err := testutil.GatherAndCount(reg, "formguard_submits_total"); err != nil || n != 0 {
		t.Fatalf("no submit series expected, got %d err=%v", n, err)
	}
}
