package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Decision metrics
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingrisk_decisions_total",
			Help: "Total number of trade decisions by outcome",
		},
		[]string{"symbol", "direction", "reason"},
	)

	decisionLots = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swingrisk_decision_lots",
			Help:    "Distribution of accepted lot sizes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	// Risk metrics
	portfolioVaR = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingrisk_portfolio_var",
			Help: "Current portfolio parametric VaR in account currency",
		},
	)

	portfolioNominal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingrisk_portfolio_nominal_value",
			Help: "Sum of absolute nominal position values",
		},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swingrisk_open_positions",
			Help: "Number of open positions in the book",
		},
	)

	// Cycle metrics
	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swingrisk_cycle_duration_seconds",
			Help:    "Duration of one full decision cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	symbolsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swingrisk_symbols_skipped_total",
			Help: "Symbols skipped for a cycle due to data failures",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swingrisk_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(decisionLots)
	prometheus.MustRegister(portfolioVaR)
	prometheus.MustRegister(portfolioNominal)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(cycleDuration)
	prometheus.MustRegister(symbolsSkipped)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordDecision records one decision outcome.
func RecordDecision(symbol, direction, reason string, accepted bool, lots float64) {
	decisionsTotal.WithLabelValues(symbol, direction, reason).Inc()
	if accepted {
		decisionLots.WithLabelValues(symbol).Observe(lots)
	}
}

// UpdatePortfolio updates the portfolio-level risk gauges.
func UpdatePortfolio(varValue, nominal float64, positions int) {
	portfolioVaR.Set(varValue)
	portfolioNominal.Set(nominal)
	openPositions.Set(float64(positions))
}

// RecordCycle records the duration of one decision cycle and the number of
// symbols skipped in it.
func RecordCycle(seconds float64, skipped int) {
	cycleDuration.Observe(seconds)
	symbolsSkipped.Add(float64(skipped))
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
