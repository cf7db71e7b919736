package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalTickerStops(t *testing.T) {
	ticker := NewIntervalTicker(2 * time.Millisecond)
	var count atomic.Int64

	ticker.Start(func() { count.Add(1) })
	ticker.Start(func() { t.Error("second start must not spawn another loop") })
	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)

	ticker.Stop()
	stoppedAt := count.Load()
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, count.Load(), stoppedAt+1)

	ticker.Stop()
}

func TestIntervalTickerRestarts(t *testing.T) {
	ticker := NewIntervalTicker(2 * time.Millisecond)
	var first, second atomic.Int64

	ticker.Start(func() { first.Add(1) })
	require.Eventually(t, func() bool { return first.Load() > 0 }, time.Second, time.Millisecond)
	ticker.Stop()

	ticker.Start(func() { second.Add(1) })
	defer ticker.Stop()
	require.Eventually(t, func() bool { return second.Load() > 0 }, time.Second, time.Millisecond)
}

func TestNewIntervalTickerDefaultsInterval(t *testing.T) {
	assert.Equal(t, time.Second, NewIntervalTicker(0).interval)
}
