package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pomodoro/desktop/internal/engine"
	"pomodoro/desktop/internal/model"
)

var phases = []model.Phase{model.PhaseIdle, model.PhaseWork, model.PhaseShortBreak, model.PhaseLongBreak}

// Metrics collects Prometheus counters and gauges for the pomodoro engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	transitionsTotal   *prometheus.CounterVec
	completedTotal     prometheus.Counter
	skippedTotal       *prometheus.CounterVec
	remainingSeconds   prometheus.Gauge
	phase              *prometheus.GaugeVec
	snapshotRestores   *prometheus.CounterVec
	checkpointFailures prometheus.Counter
}

// New constructs a metrics registry and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	transitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pomodoro",
			Subsystem: "engine",
			Name:      "transitions_total",
			Help:      "Total number of engine state changes.",
		},
		[]string{"from", "to", "reason"},
	)
	completedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pomodoro",
			Subsystem: "engine",
			Name:      "completed_total",
			Help:      "Work phases that ran to completion.",
		},
	)
	skippedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pomodoro",
			Subsystem: "engine",
			Name:      "skipped_total",
			Help:      "Phases ended early by skip.",
		},
		[]string{"phase"},
	)
	remainingSeconds := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pomodoro",
			Subsystem: "engine",
			Name:      "remaining_seconds",
			Help:      "Time left in the current phase.",
		},
	)
	phase := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pomodoro",
			Subsystem: "engine",
			Name:      "phase",
			Help:      "1 for the current phase, 0 otherwise.",
		},
		[]string{"phase"},
	)
	snapshotRestores := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pomodoro",
			Subsystem: "snapshot",
			Name:      "restores_total",
			Help:      "Snapshot restore attempts at startup.",
		},
		[]string{"result"},
	)
	checkpointFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pomodoro",
			Subsystem: "snapshot",
			Name:      "checkpoint_failures_total",
			Help:      "Snapshot writes that failed.",
		},
	)

	registry.MustRegister(
		transitionsTotal,
		completedTotal,
		skippedTotal,
		remainingSeconds,
		phase,
		snapshotRestores,
		checkpointFailures,
	)
	phase.WithLabelValues(string(model.PhaseIdle)).Set(1)

	return &Metrics{
		registry:           registry,
		transitionsTotal:   transitionsTotal,
		completedTotal:     completedTotal,
		skippedTotal:       skippedTotal,
		remainingSeconds:   remainingSeconds,
		phase:              phase,
		snapshotRestores:   snapshotRestores,
		checkpointFailures: checkpointFailures,
	}
}

// Handler returns an HTTP handler that serves the metrics registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnEvent implements engine.Listener.
func (m *Metrics) OnEvent(event engine.Event) {
	if m == nil {
		return
	}
	m.remainingSeconds.Set(event.Remaining.Seconds())
	if event.Type != engine.EventStateChange {
		return
	}

	m.transitionsTotal.WithLabelValues(string(event.From), string(event.To), string(event.Reason)).Inc()
	switch event.Reason {
	case engine.ReasonComplete:
		if event.From == model.PhaseWork {
			m.completedTotal.Inc()
		}
	case engine.ReasonSkip:
		m.skippedTotal.WithLabelValues(string(event.From)).Inc()
	}
	for _, p := range phases {
		value := 0.0
		if p == event.To {
			value = 1
		}
		m.phase.WithLabelValues(string(p)).Set(value)
	}
}

func (m *Metrics) IncSnapshotRestore(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.snapshotRestores.WithLabelValues(result).Inc()
}

func (m *Metrics) IncCheckpointFailure() {
	if m == nil {
		return
	}
	m.checkpointFailures.Inc()
}
