package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SlowRequestThreshold - запросы дольше этого порога пишутся в лог
var SlowRequestThreshold = time.Second

var (
	// RequestsTotal - общее количество запросов по роли пользователя
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status", "role"},
	)

	// RequestDuration - длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Длительность HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight - количество запросов в обработке
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Текущее количество запросов в обработке",
		},
	)
)

// PrometheusMiddleware собирает метрики для HTTP запросов
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		role := c.GetString("role")
		if role == "" {
			role = "anonymous"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status, role).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(elapsed.Seconds())

		if elapsed > SlowRequestThreshold {
			slog.Warn("медленный запрос",
				"method", c.Request.Method,
				"endpoint", endpoint,
				"status", status,
				"duration", elapsed,
				"request_id", c.GetString("request_id"),
			)
		}
	}
}
