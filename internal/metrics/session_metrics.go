package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics описывает очистку просроченных сессий.
type SessionMetrics struct {
	runs        *prometheus.CounterVec
	deleted     prometheus.Counter
	lastDeleted prometheus.Gauge
}

func NewSessionMetrics(registerer prometheus.Registerer) *SessionMetrics {
	return &SessionMetrics{
		runs: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ordersync_auth_session_cleanup_runs_total",
			Help: "Total number of session cleanup runs grouped by result.",
		}, []string{"result"}),
		deleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ordersync_auth_session_cleanup_deleted_total",
			Help: "Total number of deleted expired sessions.",
		}),
		lastDeleted: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "ordersync_auth_session_cleanup_last_deleted",
			Help: "Number of sessions deleted during the last cleanup run.",
		}),
	}
}

// RecordRun учитывает завершённый прогон (ok или error).
func (m *SessionMetrics) RecordRun(result string, deleted int) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	if result == "ok" {
		m.lastDeleted.Set(float64(deleted))
	}
}

// AddDeleted увеличивает счётчик удалённых сессий.
func (m *SessionMetrics) AddDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.deleted.Add(float64(n))
}
