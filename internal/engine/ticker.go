package engine

import (
	"sync"
	"time"
)

// TickSource drives Engine.Tick. Stop must not block on an in-flight
// callback because the engine calls it while holding its own lock.
type TickSource interface {
	Start(tick func())
	Stop()
}

// IntervalTicker calls the tick function on a fixed interval from its own
// goroutine.
type IntervalTicker struct {
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
}

func NewIntervalTicker(interval time.Duration) *IntervalTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &IntervalTicker{interval: interval}
}

func (ticker *IntervalTicker) Start(tick func()) {
	ticker.mu.Lock()
	if ticker.stopCh != nil {
		ticker.mu.Unlock()
		return
	}
	stopCh := make(chan struct{})
	ticker.stopCh = stopCh
	ticker.mu.Unlock()

	go ticker.run(stopCh, tick)
}

func (ticker *IntervalTicker) Stop() {
	ticker.mu.Lock()
	defer ticker.mu.Unlock()
	if ticker.stopCh == nil {
		return
	}
	close(ticker.stopCh)
	ticker.stopCh = nil
}

func (ticker *IntervalTicker) run(stopCh <-chan struct{}, tick func()) {
	timeTicker := time.NewTicker(ticker.interval)
	defer timeTicker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-timeTicker.C:
			select {
			case <-stopCh:
				return
			default:
			}
			tick()
		}
	}
}
