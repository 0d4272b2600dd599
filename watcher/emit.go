package watcher

import (
	"context"
	"sync"
)

// emitter holds the state every watcher implementation shares: the results
// channel, the stop signal, and change detection against the last observed
// data. Watchers embed one and drive it through start/changed/emit/halt.
type emitter struct {
	mu       sync.Mutex
	running  bool
	results  chan WatchResult
	stopCh   chan struct{}
	compare  CompareFunc
	lastData []byte

	// sendMu serializes in-flight emits against closing the results
	// channel: emitters hold it shared, shutdown takes it exclusively.
	sendMu sync.RWMutex
	closed bool
}

// start transitions the emitter to running and allocates its channels,
// defaulting the compare function from cfg. Returns false if already running.
func (e *emitter) start(cfg WatchConfig) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return false
	}
	e.running = true
	e.results = make(chan WatchResult)
	e.stopCh = make(chan struct{})
	e.compare = cfg.CompareFunc
	if e.compare == nil {
		e.compare = DefaultCompareFunc
	}
	return true
}

// halt signals stop, unblocking any emit in flight.
// Returns false if the emitter was not running.
func (e *emitter) halt() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return false
	}
	e.running = false
	close(e.stopCh)
	return true
}

// changed records data as the latest observation and reports whether it
// differs from the previous one. The first observation always counts as a
// change.
func (e *emitter) changed(data []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lastData != nil && !e.compare(e.lastData, data) {
		return false
	}
	e.lastData = data
	return true
}

// emit delivers r on the results channel. It returns without sending when
// the context is canceled or the emitter is stopping, so a late notification
// never blocks and never reaches a closed channel.
func (e *emitter) emit(ctx context.Context, r WatchResult) {
	e.sendMu.RLock()
	defer e.sendMu.RUnlock()

	if e.closed {
		return
	}
	select {
	case e.results <- r:
	case <-ctx.Done():
	case <-e.stopCh:
	}
}

// shutdown closes the results channel after all in-flight emits have
// drained. Callers must halt first so a blocked emit can unwind.
func (e *emitter) shutdown() {
	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	close(e.results)
}
