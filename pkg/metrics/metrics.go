// Package metrics exports engine activity to Prometheus. Collector implements
// form.Observer so a form reports validations, remote checks and submissions
// without knowing about Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formguard/pkg/form"
	"github.com/goliatone/go-formguard/pkg/reactor"
)

const namespace = "formguard"

// Collector holds the engine metrics.
type Collector struct {
	// Field metrics
	Validations *prometheus.CounterVec

	// Remote check metrics
	RemoteChecks   *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec

	// Submit metrics
	Submits *prometheus.CounterVec

	// Pre-validation API metrics
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

var _ form.Observer = (*Collector)(nil)

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewWithRegistry creates a collector registered on reg. gatherer backs
// Handler; pass the same *prometheus.Registry for both.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Validation passes by field type, trigger and verdict",
			},
			[]string{"form", "type", "reason", "result"},
		),
		RemoteChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_checks_total",
				Help:      "Remote checks by result (valid, invalid, stale, error)",
			},
			[]string{"form", "result"},
		),
		RemoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_check_duration_seconds",
				Help:      "Remote check round trip in seconds",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"form"},
		),
		Submits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submits_total",
				Help:      "Submit attempts by outcome",
			},
			[]string{"form", "result"},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Pre-validation API requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Pre-validation API latency in seconds",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"route"},
		),
		gatherer: gatherer,
	}
}

// FieldValidated implements form.Observer.
func (c *Collector) FieldValidated(formID string, st reactor.State, reason reactor.Reason) {
	c.Validations.WithLabelValues(formID, st.Type, string(reason), st.Validity.String()).Inc()
}

// RemoteChecked implements form.Observer.
func (c *Collector) RemoteChecked(formID, _ string, result form.RemoteResult, elapsed time.Duration) {
	c.RemoteChecks.WithLabelValues(formID, string(result)).Inc()
	c.RemoteDuration.WithLabelValues(formID).Observe(elapsed.Seconds())
}

// Submitted implements form.Observer.
func (c *Collector) Submitted(formID string, res form.SubmitResult) {
	result := "accepted"
	if !res.Valid {
		result = "blocked"
	}
	c.Submits.WithLabelValues(formID, result).Inc()
}

// ObserveRequest records one API request.
func (c *Collector) ObserveRequest(route string, status int, elapsed time.Duration) {
	c.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
