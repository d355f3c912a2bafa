package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the dashboard's Prometheus instruments behind a
// private registry so tests can run several servers side by side.
type Metrics struct {
	registry *prometheus.Registry

	TasksStarted   prometheus.Counter
	TasksCompleted *prometheus.CounterVec
	Logins         *prometheus.CounterVec
	DeniedRequests prometheus.Counter
	TaskRunning    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.TasksStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clawdash_tasks_started_total",
		Help: "Task launches accepted by the supervisor.",
	})
	m.TasksCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clawdash_tasks_completed_total",
		Help: "Tasks reaching a terminal status.",
	}, []string{"status"})
	m.Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clawdash_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})
	m.DeniedRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clawdash_denied_requests_total",
		Help: "Requests rejected by the access guard.",
	})
	m.TaskRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clawdash_task_running",
		Help: "Whether a task is currently running (0 or 1).",
	})

	m.registry.MustRegister(
		m.TasksStarted,
		m.TasksCompleted,
		m.Logins,
		m.DeniedRequests,
		m.TaskRunning,
	)
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
