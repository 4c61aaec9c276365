package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// Middleware labels requests by route template, not raw URL, to keep cardinality bounded.
func (m *ServerMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}
			handler := c.Path()
			if handler == "" {
				handler = "unmatched"
			}
			m.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
			return err
		}
	}
}

// Shop counts business outcomes. A nil *Shop is a valid no-op.
type Shop struct {
	Checkouts *prometheus.CounterVec
	Webhooks  *prometheus.CounterVec
	Outbox    *prometheus.CounterVec
}

func NewShop(reg prometheus.Registerer) *Shop {
	s := &Shop{
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		Webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_webhooks_total",
			Help:      "Payment webhook deliveries by outcome.",
		}, []string{"outcome"}),
		Outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox relay publish results.",
		}, []string{"result"}),
	}
	reg.MustRegister(s.Checkouts, s.Webhooks, s.Outbox)
	return s
}

func (s *Shop) Checkout(outcome string) {
	if s != nil {
		s.Checkouts.WithLabelValues(outcome).Inc()
	}
}

func (s *Shop) Webhook(outcome string) {
	if s != nil {
		s.Webhooks.WithLabelValues(outcome).Inc()
	}
}

func (s *Shop) OutboxResult(result string, n int) {
	if s != nil && n > 0 {
		s.Outbox.WithLabelValues(result).Add(float64(n))
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
