package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tokengate"

// Metrics holds the Prometheus collectors for token issuance and
// verification. A nil *Metrics records nothing.
type Metrics struct {
	tokensIssued     *prometheus.CounterVec
	grantFailures    *prometheus.CounterVec
	verifications    *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued, by grant type.",
		}, []string{"grant_type"}),
		grantFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grant_failures_total",
			Help:      "Rejected token requests, by grant type and error kind.",
		}, []string{"grant_type", "kind"}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authentications_total",
			Help:      "Authorization header checks, by scheme and result.",
		}, []string{"scheme", "result"}),
		exchangeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_exchange_duration_seconds",
			Help:      "Latency of identity provider exchanges.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
	}
}

func (m *Metrics) RecordIssued(grantType string) {
	if m == nil {
		return
	}
	m.tokensIssued.WithLabelValues(grantType).Inc()
}

func (m *Metrics) RecordGrantFailure(grantType, kind string) {
	if m == nil {
		return
	}
	m.grantFailures.WithLabelValues(grantType, kind).Inc()
}

func (m *Metrics) RecordAuthentication(scheme, result string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(scheme, result).Inc()
}

func (m *Metrics) ObserveExchange(provider string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.exchangeDuration.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}
