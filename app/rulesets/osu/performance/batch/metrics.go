package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "danser_pp"

// Metrics holds the Prometheus metrics of a Runner
type Metrics struct {
	Calculations       *prometheus.CounterVec
	CalculationErrors  prometheus.Counter
	CalculationLatency prometheus.Histogram
	ActiveWorkers      prometheus.Gauge
}

// NewMetrics registers the batch metrics with reg. A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		Calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "calculations_total",
			Help:      "Total number of finished difficulty calculations by source",
		}, []string{"source"}),
		CalculationErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "calculation_errors_total",
			Help:      "Total number of failed difficulty calculations",
		}),
		CalculationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "calculation_duration_seconds",
			Help:      "Duration of a single difficulty calculation in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ActiveWorkers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "active_workers",
			Help:      "Number of calculations currently running",
		}),
	}
}
