package server

import (
	"net/http"
	"strconv"
	"time"

	c "github.com/d0ngw/hitcounter/common"
	chttp "github.com/d0ngw/hitcounter/http"
	"github.com/prometheus/client_golang/prometheus"
)

const unmatched = "unmatched"

type requestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newRequestMetrics(r prometheus.Registerer) *requestMetrics {
	m := &requestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hitcounter",
			Name:      "http_requests_total",
			Help:      "HTTP requests by handler and status code.",
		}, []string{"handler", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hitcounter",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by handler.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"handler"}),
	}
	r.MustRegister(m.requests, m.duration)
	return m
}

// Handle implements http.Middleware, 统计请求并记录访问日志
func (m *requestMetrics) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := chttp.NewStatusRecorder(w)
		next(rec, r)
		elapsed := time.Since(start)

		handler := chttp.HandlerName(r)
		if handler == "" {
			handler = unmatched
		}
		m.requests.WithLabelValues(handler, strconv.Itoa(rec.StatusCode())).Inc()
		m.duration.WithLabelValues(handler).Observe(elapsed.Seconds())
		if c.DebugEnabled() {
			c.Debugf("%s %s %d %dB %s handler:%s", r.Method, r.URL.RequestURI(), rec.StatusCode(), rec.Bytes, elapsed, handler)
		}
	}
}
