// metrics.go — Prometheus HTTP метрики для Dashboard Module.
// Регистрирует метрики: dm_http_requests_total, dm_http_request_duration_seconds.
// Бизнес-метрики (dm_thumbnail_*, dm_image_* и др.) регистрируются
// в соответствующих пакетах и обновляются из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dm_http_requests_total",
			Help: "Общее количество HTTP-запросов к Dashboard Module",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dm_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Dashboard Module в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет идентификаторы в сегментах пути на {id}
// для предотвращения взрывного роста кардинальности метрик.
// /api/v1/images/a1b2.../thumb → /api/v1/images/{id}/thumb
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/alerts", "/api/v1/images", "/api/v1/stats",
		"/api/v1/stats/over-time", "/api/v1/people", "/api/v1/cameras":
		return path
	}

	switch {
	case strings.HasPrefix(path, "/api/v1/alerts/"):
		return "/api/v1/alerts/{id}"
	case strings.HasPrefix(path, "/api/v1/images/by-image-id/"):
		return "/api/v1/images/by-image-id/{id}"
	case strings.HasPrefix(path, "/api/v1/images/"):
		if strings.HasSuffix(path, "/bytes") {
			return "/api/v1/images/{id}/bytes"
		}
		if strings.HasSuffix(path, "/thumb") {
			return "/api/v1/images/{id}/thumb"
		}
		return "/api/v1/images/{id}"
	case strings.HasPrefix(path, "/api/v1/people/"):
		if strings.HasSuffix(path, "/images") {
			return "/api/v1/people/{id}/images"
		}
		return "/api/v1/people/{id}"
	case strings.HasPrefix(path, "/api/v1/cameras/"):
		if strings.HasSuffix(path, "/people") {
			return "/api/v1/cameras/{id}/people"
		}
		return "/api/v1/cameras/{id}"
	}
	return path
}
