package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodoro/desktop/internal/engine"
	"pomodoro/desktop/internal/model"
)

func TestOnEventCountsTransitions(t *testing.T) {
	m := New()

	m.OnEvent(engine.Event{Type: engine.EventStateChange, Reason: engine.ReasonStart, From: model.PhaseIdle, To: model.PhaseWork, Remaining: 25 * time.Minute})
	m.OnEvent(engine.Event{Type: engine.EventTick, From: model.PhaseWork, To: model.PhaseWork, Remaining: 90 * time.Second})
	m.OnEvent(engine.Event{Type: engine.EventStateChange, Reason: engine.ReasonComplete, From: model.PhaseWork, To: model.PhaseShortBreak, Remaining: 5 * time.Minute})
	m.OnEvent(engine.Event{Type: engine.EventStateChange, Reason: engine.ReasonSkip, From: model.PhaseShortBreak, To: model.PhaseWork, Remaining: 25 * time.Minute})
	m.OnEvent(engine.Event{Type: engine.EventStateChange, Reason: engine.ReasonComplete, From: model.PhaseShortBreak, To: model.PhaseWork, Remaining: 25 * time.Minute})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitionsTotal.WithLabelValues("idle", "work", "start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedTotal.WithLabelValues("short_break")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(m.remainingSeconds))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.phase.WithLabelValues("work")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.phase.WithLabelValues("idle")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.OnEvent(engine.Event{Type: engine.EventStateChange})
	m.IncSnapshotRestore("loaded")
	m.IncCheckpointFailure()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.IncSnapshotRestore("")
	m.IncSnapshotRestore("invalid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `pomodoro_snapshot_restores_total{result="unknown"} 1`), body)
	assert.True(t, strings.Contains(body, `pomodoro_snapshot_restores_total{result="invalid"} 1`), body)
	assert.True(t, strings.Contains(body, `pomodoro_engine_phase{phase="idle"} 1`), body)
}
