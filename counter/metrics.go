package counter

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics of the store, a nil *Metrics records nothing
type Metrics struct {
	persistWrites   *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	counters        prometheus.Gauge
}

// NewMetrics create and register the store metrics
func NewMetrics(r prometheus.Registerer) *Metrics {
	m := &Metrics{
		persistWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hitcounter",
			Name:      "persist_writes_total",
			Help:      "Snapshot writes by triggering operation.",
		}, []string{"op"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hitcounter",
			Name:      "persist_failures_total",
			Help:      "Failed snapshot loads and writes by operation.",
		}, []string{"op"}),
		counters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hitcounter",
			Name:      "counters",
			Help:      "Number of counters in the store.",
		}),
	}
	r.MustRegister(m.persistWrites, m.persistFailures, m.counters)
	return m
}

func (m *Metrics) persisted(op string, err error) {
	if m == nil {
		return
	}
	m.persistWrites.WithLabelValues(op).Inc()
	if err != nil {
		m.persistFailures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) loadFailed() {
	if m == nil {
		return
	}
	m.persistFailures.WithLabelValues("load").Inc()
}

func (m *Metrics) setCounters(n int) {
	if m == nil {
		return
	}
	m.counters.Set(float64(n))
}
