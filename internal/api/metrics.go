package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// #region metrics
// Metrics holds the service-level Prometheus instruments.
type Metrics struct {
	Registry *prometheus.Registry

	SessionsStarted   prometheus.Counter
	SessionsFinalized prometheus.Counter
	ActiveSessions    prometheus.Gauge
	ViolationsTotal   *prometheus.CounterVec
	EventsTotal       *prometheus.CounterVec
}

// NewMetrics creates a registry with all service instruments registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_sessions_started_total",
			Help: "Number of monitoring sessions started.",
		}),
		SessionsFinalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "vigil_sessions_finalized_total",
			Help: "Number of monitoring sessions finalized.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_sessions_active",
			Help: "Sessions started but not yet finalized.",
		}),
		ViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_violations_total",
			Help: "Violations recorded, by category.",
		}, []string{"category"}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_events_total",
			Help: "Events recorded, by severity.",
		}, []string{"severity"}),
	}
}

// #endregion metrics
