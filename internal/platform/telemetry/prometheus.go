package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "quotes"

// Auth gate outcomes.
const (
	AuthAdmitted = "admitted"
	AuthMissing  = "missing"
	AuthUnknown  = "unknown"
	AuthError    = "error"
	AuthCached   = "cached"
)

// DomainMetrics holds Prometheus counters for business events.
// Methods are safe to call on a nil receiver so that tests can skip metrics.
type DomainMetrics struct {
	authDecisions  *prometheus.CounterVec
	quoteMutations *prometheus.CounterVec
	tokensIssued   prometheus.Counter
	tokensRevoked  prometheus.Counter
}

// NewDomainMetrics creates the counters and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on /-/metrics.
func NewDomainMetrics(reg prometheus.Registerer) (*DomainMetrics, error) {
	m := &DomainMetrics{
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "auth_decisions_total",
			Help:      "Bearer token gate decisions by outcome.",
		}, []string{"outcome"}),
		quoteMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "quote_mutations_total",
			Help:      "Quote writes by operation and result.",
		}, []string{"operation", "result"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tokens_issued_total",
			Help:      "Bearer tokens issued.",
		}),
		tokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tokens_revoked_total",
			Help:      "Bearer tokens revoked.",
		}),
	}

	for _, c := range []prometheus.Collector{m.authDecisions, m.quoteMutations, m.tokensIssued, m.tokensRevoked} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// AuthDecision counts one token gate outcome.
func (m *DomainMetrics) AuthDecision(outcome string) {
	if m == nil {
		return
	}

	m.authDecisions.WithLabelValues(outcome).Inc()
}

// QuoteMutation counts one create, update or delete attempt.
func (m *DomainMetrics) QuoteMutation(operation string, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}

	m.quoteMutations.WithLabelValues(operation, result).Inc()
}

// TokenIssued counts one issued token.
func (m *DomainMetrics) TokenIssued() {
	if m == nil {
		return
	}

	m.tokensIssued.Inc()
}

// TokenRevoked counts one revoked token.
func (m *DomainMetrics) TokenRevoked() {
	if m == nil {
		return
	}

	m.tokensRevoked.Inc()
}
