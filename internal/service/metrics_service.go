package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
)

// Alert results recorded by the sweep counters.
const (
	AlertResultSent   = "sent"
	AlertResultFailed = "failed"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	measures        *prometheus.CounterVec
	alerts          *prometheus.CounterVec
	reminders       *prometheus.CounterVec
	sweepDuration   *prometheus.HistogramVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	measures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discipline_measures_total",
		Help: "Disciplinary measures recorded, split by kind and origin",
	}, []string{"kind", "auto"})

	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_alerts_total",
		Help: "Absence alert dispatch attempts by tier and result",
	}, []string{"tier", "result"})

	reminders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_reminders_total",
		Help: "Session reminder dispatch attempts by result",
	}, []string{"result"})

	sweepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alert_sweep_duration_seconds",
		Help:    "Duration of notification sweeps",
		Buckets: []float64{.1, .5, 1, 5, 15, 60, 300},
	}, []string{"sweep"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHitRatio, cacheHits, cacheMisses,
		measures, alerts, reminders, sweepDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		measures:        measures,
		alerts:          alerts,
		reminders:       reminders,
		sweepDuration:   sweepDuration,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordMeasure counts a disciplinary measure written to the ledger.
func (m *MetricsService) RecordMeasure(kind models.MeasureKind, auto bool) {
	if m == nil {
		return
	}
	m.measures.WithLabelValues(string(kind), strconv.FormatBool(auto)).Inc()
}

// RecordAlert counts one absence alert dispatch attempt.
func (m *MetricsService) RecordAlert(tier models.AlertTier, result string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(strconv.Itoa(int(tier)), result).Inc()
}

// RecordReminder counts one session reminder dispatch attempt.
func (m *MetricsService) RecordReminder(result string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(result).Inc()
}

// ObserveSweep records how long a sweep took.
func (m *MetricsService) ObserveSweep(name string, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.WithLabelValues(name).Observe(duration.Seconds())
}
