package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hallplan/exam-scheduler-api/internal/scheduler"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationsTotal   prometheus.Counter
	generationDuration prometheus.Histogram
	coursesScheduled   prometheus.Histogram
	overflowSlots      prometheus.Counter
	seatingConflicts   prometheus.Histogram
}

// NewMetricsService registers the collectors.
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

	generationsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_generations_total",
		Help: "Total number of schedule generation runs",
	})

	generationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Wall-clock duration of schedule generation runs",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	coursesScheduled := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_courses_per_run",
		Help:    "Number of courses placed per generation run",
		Buckets: []float64{1, 5, 10, 20, 40, 80, 160},
	})

	overflowSlots := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_overflow_slots_total",
		Help: "Overflow slots appended across all generation runs",
	})

	seatingConflicts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seating_adjacency_conflicts_per_run",
		Help:    "Residual same-course adjacency conflicts per generation run",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationsTotal,
		generationDuration, coursesScheduled, overflowSlots, seatingConflicts, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationsTotal:   generationsTotal,
		generationDuration: generationDuration,
		coursesScheduled:   coursesScheduled,
		overflowSlots:      overflowSlots,
		seatingConflicts:   seatingConflicts,
	}
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

// ObserveGeneration records one engine run's counters.
func (m *MetricsService) ObserveGeneration(result *scheduler.Result) {
	if m == nil || result == nil {
		return
	}
	m.generationsTotal.Inc()
	m.generationDuration.Observe(result.Stats.Elapsed.Seconds())
	m.coursesScheduled.Observe(float64(result.Stats.CoursesScheduled))
	m.overflowSlots.Add(float64(result.Stats.OverflowSlots))
	m.seatingConflicts.Observe(float64(result.Stats.SeatingConflicts))
}
