package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the governance layer.
type Metrics struct {
	admissionChecks *prometheus.CounterVec
	rateLimitHits   *prometheus.CounterVec
	budgetHits      *prometheus.CounterVec
	requestCost     *prometheus.CounterVec
	budgetUsage     *prometheus.GaugeVec
	admitDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with Prometheus collectors.
// Collectors register against the default registry, so create at most
// one instance per process.
func NewMetrics() *Metrics {
	return &Metrics{
		admissionChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callisto_governance_admission_checks_total",
				Help: "Total number of admission checks performed",
			},
			[]string{"account_id", "result"},
		),

		rateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callisto_governance_rate_limit_hits_total",
				Help: "Total number of rate limit rejections",
			},
			[]string{"account_id"},
		),

		budgetHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callisto_governance_budget_hits_total",
				Help: "Total number of budget rejections",
			},
			[]string{"account_id"},
		),

		requestCost: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "callisto_governance_request_cost_usd_total",
				Help: "Cumulative committed request cost in USD",
			},
			[]string{"account_id", "provider", "model"},
		),

		budgetUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "callisto_governance_budget_usage_percentage",
				Help: "Current budget usage as percentage (0-100)",
			},
			[]string{"account_id", "window"},
		),

		admitDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "callisto_governance_admit_duration_seconds",
				Help:    "Duration of admission checks in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"operation"},
		),
	}
}

// RecordAdmission records an admission decision.
func (m *Metrics) RecordAdmission(accountID string, allowed bool) {
	result := "allowed"
	if !allowed {
		result = "blocked"
	}
	m.admissionChecks.WithLabelValues(accountID, result).Inc()
}

// RecordRateLimitHit records a rate limit rejection.
func (m *Metrics) RecordRateLimitHit(accountID string) {
	m.rateLimitHits.WithLabelValues(accountID).Inc()
}

// RecordBudgetHit records a budget rejection.
func (m *Metrics) RecordBudgetHit(accountID string) {
	m.budgetHits.WithLabelValues(accountID).Inc()
}

// RecordCost records a committed charge.
func (m *Metrics) RecordCost(accountID, provider, model string, cost float64) {
	m.requestCost.WithLabelValues(accountID, provider, model).Add(cost)
}

// UpdateBudgetUsage updates the budget usage gauge for a window.
func (m *Metrics) UpdateBudgetUsage(accountID, window string, percentage float64) {
	m.budgetUsage.WithLabelValues(accountID, window).Set(percentage)
}

// ObserveAdmitDuration records the latency of an operation.
func (m *Metrics) ObserveAdmitDuration(operation string, seconds float64) {
	m.admitDuration.WithLabelValues(operation).Observe(seconds)
}
