package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer receives one call per finished backend request. status is the HTTP
// status code, or 0 when no response arrived.
type Observer interface {
	ObserveRequest(operation string, status int, elapsed time.Duration)
}

// Collector records client requests in prometheus
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	alerts   *prometheus.CounterVec
}

// New registers the client metrics on reg. A nil reg uses the default registerer
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simradar_client_requests_total",
				Help: "Total backend requests by operation and status code",
			},
			[]string{"operation", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simradar_client_request_duration_seconds",
				Help:    "Duration of backend requests",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"operation"},
		),
		alerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simradar_client_rejections_total",
				Help: "Actions rejected client side, by reason",
			},
			[]string{"reason"},
		),
	}
}

// ObserveRequest implements Observer
func (c *Collector) ObserveRequest(operation string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	c.requests.WithLabelValues(operation, code).Inc()
	c.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Rejected counts an action stopped before reaching the backend
func (c *Collector) Rejected(reason string) {
	c.alerts.WithLabelValues(reason).Inc()
}

// WriteTextfile dumps the metrics of g in the text exposition format, for the
// node exporter textfile collector
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
