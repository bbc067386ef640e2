package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the reconciliation counters exposed on /metrics.
type Metrics struct {
	runs           *prometheus.CounterVec
	mismatchedDays prometheus.Counter
	ordersFetched  prometheus.Counter
	runDuration    *prometheus.HistogramVec
}

// NewMetrics creates the reconciliation metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciliation_runs_total",
				Help: "Reconciliation runs by mode and final status.",
			},
			[]string{"mode", "status"},
		),
		mismatchedDays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciliation_mismatched_days_total",
			Help: "Days whose Shopify Payments receipts did not match the payout amount.",
		}),
		ordersFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciliation_orders_fetched_total",
			Help: "Orders loaded from Shopify or the order cache.",
		}),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reconciliation_run_duration_seconds",
				Help:    "Wall time of successful reconciliation runs.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"mode"},
		),
	}
	for _, c := range []prometheus.Collector{m.runs, m.mismatchedDays, m.ordersFetched, m.runDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) runFinished(mode, status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(mode, status).Inc()
}

func (m *Metrics) observe(mode string, seconds float64, orders, mismatches int) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(mode).Observe(seconds)
	m.ordersFetched.Add(float64(orders))
	m.mismatchedDays.Add(float64(mismatches))
}

func (m *Metrics) fetched(orders int) {
	if m == nil {
		return
	}
	m.ordersFetched.Add(float64(orders))
}
