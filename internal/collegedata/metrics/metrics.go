package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the college-data module. A nil
// *Metrics is valid and records nothing, so tests can skip registration.
type Metrics struct {
	FetchesTotal    *prometheus.CounterVec
	WritesTotal     *prometheus.CounterVec
	StoreOpDuration *prometheus.HistogramVec
}

// New creates and registers the module metrics.
func New() *Metrics {
	return &Metrics{
		FetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collegedesk_collegedata_fetches_total",
			Help: "Total fetches of user college data, by result",
		}, []string{"result"}),
		WritesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collegedesk_collegedata_writes_total",
			Help: "Total write operations on user college data, by operation and result",
		}, []string{"operation", "result"}),
		StoreOpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collegedesk_collegedata_store_op_duration_seconds",
			Help:    "Latency of document store round trips, by operation",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
	}
}

// RecordFetch counts a fetch outcome ("ok", "empty", "error").
func (m *Metrics) RecordFetch(result string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(result).Inc()
}

// RecordWrite counts a write outcome for save/update_order/append_fact.
func (m *Metrics) RecordWrite(operation, result string) {
	if m == nil {
		return
	}
	m.WritesTotal.WithLabelValues(operation, result).Inc()
}

// ObserveStoreOp records the latency of one store round trip.
func (m *Metrics) ObserveStoreOp(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.StoreOpDuration.WithLabelValues(operation).Observe(d.Seconds())
}
