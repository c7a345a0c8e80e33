package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the filesystem service.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// State machine metrics
	OpsTotal    *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec
	FileObjects prometheus.Gauge
	DirObjects  prometheus.Gauge
	Epoch       prometheus.Gauge

	// Event metrics
	EventsTotal   *prometheus.CounterVec
	WSConnections prometheus.Gauge

	startTime time.Time
	Uptime    prometheus.Gauge
}

// New creates a metrics collector registered on the default registry.
func New() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walavie_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walavie_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		OpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walavie_fs_operations_total",
				Help: "Total number of state machine operations",
			},
			[]string{"op", "status"},
		),
		OpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walavie_fs_operation_duration_seconds",
				Help:    "State machine operation duration in seconds",
				Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"op"},
		),
		FileObjects: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "walavie_fs_file_objects",
				Help: "Number of live file objects in the arena",
			},
		),
		DirObjects: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "walavie_fs_dir_objects",
				Help: "Number of live directory objects in the arena",
			},
		),
		Epoch: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "walavie_fs_current_epoch",
				Help: "Current epoch of the root",
			},
		),

		EventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walavie_events_total",
				Help: "Total number of emitted state machine events",
			},
			[]string{"type"},
		),
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "walavie_ws_connections",
				Help: "Number of active WebSocket subscribers",
			},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "walavie_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}

	go m.updateUptime()
	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOp records one state machine operation with its outcome tag.
func (m *Metrics) RecordOp(op, status string, duration time.Duration) {
	m.OpsTotal.WithLabelValues(op, status).Inc()
	m.OpDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// SetObjectCounts updates the arena size gauges.
func (m *Metrics) SetObjectCounts(files, dirs int) {
	m.FileObjects.Set(float64(files))
	m.DirObjects.Set(float64(dirs))
}

// SetEpoch updates the epoch gauge.
func (m *Metrics) SetEpoch(epoch uint64) {
	m.Epoch.Set(float64(epoch))
}

// RecordEvent records one emitted event.
func (m *Metrics) RecordEvent(eventType string) {
	m.EventsTotal.WithLabelValues(eventType).Inc()
}

// IncWSConnections increments the subscriber gauge.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements the subscriber gauge.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
