package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "freightcost"

// Quote outcomes recorded by QuoteMetrics.
const (
	OutcomeCalculated = "calculated"
	OutcomeInvalid    = "invalid"
	OutcomeRejected   = "rejected"
)

// QuoteMetrics counts shipment quotes and observes their totals.
type QuoteMetrics struct {
	Quotes    *prometheus.CounterVec
	TotalCost prometheus.Histogram
}

// NewQuoteMetrics registers and returns quote collectors.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	m := &QuoteMetrics{
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Shipment quotes by outcome, truck type and export flag.",
		}, []string{"outcome", "truck_type", "export"}),
		TotalCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_total_cost",
			Help:      "Grand total of calculated quotes.",
			Buckets:   prometheus.ExponentialBuckets(1000, 2.5, 10),
		}),
	}
	reg.MustRegister(m.Quotes, m.TotalCost)
	return m
}

// Observe records one quote. A nil receiver records nothing.
func (m *QuoteMetrics) Observe(outcome, truckType string, export bool, total float64) {
	if m == nil {
		return
	}
	m.Quotes.WithLabelValues(outcome, truckType, strconv.FormatBool(export)).Inc()
	if outcome == OutcomeCalculated {
		m.TotalCost.Observe(total)
	}
}

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.ReqTotal, m.ReqDur)
	return m
}

// Middleware records request counts and latency by route pattern.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.ReqTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.ReqDur.WithLabelValues(r.Method, route).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	})
}
