package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"taxi-booking-service/internal/model"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	BookingsCreated    prometheus.Counter
	BookingTransitions *prometheus.CounterVec
	SideEffectFailures *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of created bookings",
		}),
		BookingTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_transitions_total",
			Help:      "Booking status changes by target status",
		}, []string{"status"}),
		SideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_side_effect_failures_total",
			Help:      "Best-effort workflow steps that failed",
		}, []string{"step"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
}

func (m *Metrics) BookingCreated() {
	m.BookingsCreated.Inc()
}

func (m *Metrics) BookingTransition(status model.BookingStatus) {
	m.BookingTransitions.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) SideEffectFailed(step string) {
	m.SideEffectFailures.WithLabelValues(step).Inc()
}

// Middleware observes request latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
