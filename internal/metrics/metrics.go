// Package metrics holds the Prometheus collectors for the contact relay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	clientipprom "github.com/telarpress/contact-relay/clientip/prometheus"
)

const metricPrefix = "contact_relay_"

// Outcome labels for submissions.
const (
	OutcomeSent               = "sent"
	OutcomeMissingCaptcha     = "missing_captcha"
	OutcomeCaptchaRejected    = "captcha_rejected"
	OutcomeMailFailed         = "mail_failed"
	OutcomeInvalidRequestBody = "invalid_body"
)

// Upstream labels.
const (
	UpstreamCaptcha = "captcha"
	UpstreamMail    = "mail"
)

// Recorder records submission outcomes and upstream call latencies.
type Recorder interface {
	ObserveSubmission(outcome string)
	ObserveUpstream(upstream string, err error, elapsed time.Duration)
}

// Nop is a Recorder that records nothing.
type Nop struct{}

func (Nop) ObserveSubmission(string) {}

func (Nop) ObserveUpstream(string, error, time.Duration) {}

// Prometheus is a Prometheus-backed Recorder.
type Prometheus struct {
	submissions *prometheus.CounterVec
	upstream    *prometheus.HistogramVec
}

// New registers the collectors on registerer, reusing compatible collectors
// that are already registered. A nil registerer means
// prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer) (*Prometheus, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	submissions, err := clientipprom.Register(registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "submissions_total",
			Help: "Contact form submissions by outcome.",
		},
		[]string{"outcome"},
	))
	if err != nil {
		return nil, err
	}

	upstream, err := clientipprom.Register(registerer, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "upstream_duration_seconds",
			Help:    "Latency of CAPTCHA verification and mail delivery calls.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"upstream", "result"},
	))
	if err != nil {
		return nil, err
	}

	return &Prometheus{submissions: submissions, upstream: upstream}, nil
}

func (p *Prometheus) ObserveSubmission(outcome string) {
	p.submissions.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) ObserveUpstream(upstream string, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.upstream.WithLabelValues(upstream, result).Observe(elapsed.Seconds())
}
