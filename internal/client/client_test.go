package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pomodoro/desktop/internal/errors"
)

func TestCommandSendsVersionAndToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pomodoro/pause", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"applied":true,"state":{"phase":"work","status":"paused","version":4}}`))
	}))
	defer server.Close()

	result, err := New(server.URL+"/", "tok").Command(context.Background(), "pause", 3)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, map[string]int{"baseVersion": 3}, gotBody)
	assert.True(t, result.Applied)
	assert.Equal(t, "paused", result.State.Status)
	assert.Equal(t, 4, result.State.Version)
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"engine_busy","message":"profile can only change while idle"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "").UpdateProfile(context.Background(), ProfileUpdate{WorkDurationSeconds: 60})

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "engine_busy", apiErr.Code)
}

func TestNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "").State(context.Background())

	var apiErr *apperrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestHistoryAndStatsQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/pomodoro/history":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"pomodoros":[{"id":"a","profileName":"default","count":1,"durationMinutes":25,"completedAt":"2024-05-06T09:25:00Z"}]}`))
		case "/api/pomodoro/stats":
			assert.Equal(t, "3", r.URL.Query().Get("days"))
			_, _ = w.Write([]byte(`{"stats":{"days":[{"date":"2024-05-06","pomodoros":1,"totalMinutes":25}],"totalPomodoros":1,"totalMinutes":25,"today":1}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()
	c := New(server.URL, "")

	records, err := c.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 25, records[0].DurationMinutes)

	stats, err := c.Stats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Today)
}
