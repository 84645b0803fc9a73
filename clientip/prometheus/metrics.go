package prometheus

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/telarpress/contact-relay/clientip"
)

const (
	resolutionTotalName = "client_ip_resolution_total"
	securityEventsName  = "client_ip_resolution_security_events_total"
)

// Values of the result label on client_ip_resolution_total.
const (
	ResultSuccess = "success"
	ResultInvalid = "invalid"
)

// PrometheusMetrics is a Prometheus-backed implementation of clientip.Metrics.
//
// The source label carries clientip source names (clientip.SourceXForwardedFor,
// clientip.SourceRemoteAddr, or the normalized name of a custom header).
type PrometheusMetrics struct {
	resolutions *prom.CounterVec
	events      *prom.CounterVec
}

// WithMetrics installs Prometheus-backed metrics on prom.DefaultRegisterer.
func WithMetrics() clientip.Option {
	return WithRegisterer(nil)
}

// WithRegisterer installs Prometheus-backed metrics on registerer, or on
// prom.DefaultRegisterer when it is nil. Registration happens only once the
// rest of the resolver configuration is valid.
func WithRegisterer(registerer prom.Registerer) clientip.Option {
	return clientip.WithMetricsFactory(func() (clientip.Metrics, error) {
		return NewWithRegisterer(registerer)
	})
}

// New registers the collectors on prom.DefaultRegisterer.
func New() (*PrometheusMetrics, error) {
	return NewWithRegisterer(nil)
}

// NewWithRegisterer registers the collectors on registerer, or on
// prom.DefaultRegisterer when it is nil. Compatible collectors that are
// already registered are shared.
func NewWithRegisterer(registerer prom.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}

	resolutions, err := Register(registerer, prom.NewCounterVec(prom.CounterOpts{
		Name: resolutionTotalName,
		Help: "Client IP resolution attempts by header source and result (success, invalid).",
	}, []string{"source", "result"}))
	if err != nil {
		return nil, err
	}

	events, err := Register(registerer, prom.NewCounterVec(prom.CounterOpts{
		Name: securityEventsName,
		Help: "Suspicious header conditions seen during client IP resolution, labeled by event.",
	}, []string{"event"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusMetrics{resolutions: resolutions, events: events}, nil
}

// Register registers collector on registerer. When an equal collector is
// already registered, the existing one is returned if it has the same type
// as collector.
func Register[C prom.Collector](registerer prom.Registerer, collector C) (C, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}

	var zero C
	var already prom.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return zero, fmt.Errorf("register metric: %w", err)
	}
	existing, ok := already.ExistingCollector.(C)
	if !ok {
		return zero, fmt.Errorf("metric already registered with incompatible collector type %T", already.ExistingCollector)
	}
	return existing, nil
}

func (m *PrometheusMetrics) RecordResolutionSuccess(source string) {
	m.resolutions.WithLabelValues(source, ResultSuccess).Inc()
}

func (m *PrometheusMetrics) RecordResolutionFailure(source string) {
	m.resolutions.WithLabelValues(source, ResultInvalid).Inc()
}

func (m *PrometheusMetrics) RecordSecurityEvent(event string) {
	m.events.WithLabelValues(event).Inc()
}
