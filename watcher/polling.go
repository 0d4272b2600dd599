package watcher

import (
	"context"
	"time"
)

// PollHandler fetches the current raw data from a source.
// The watcher decides with its CompareFunc whether the data changed.
type PollHandler interface {
	Poll(ctx context.Context) (data []byte, err error)
}

// PollHandlerFunc is a function that implements PollHandler.
type PollHandlerFunc func(ctx context.Context) (data []byte, err error)

// Poll implements PollHandler.
func (f PollHandlerFunc) Poll(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// pollingWatcher re-reads the source at a fixed interval and emits a result
// whenever the comparison reports a difference.
type pollingWatcher struct {
	handler PollHandler
	em      emitter
}

// NewPolling creates a polling-based Watcher around the given handler.
// Use it for sources that cannot push change notifications.
func NewPolling(handler PollHandler) Watcher {
	return &pollingWatcher{handler: handler}
}

// Type returns the watcher type identifier.
func (w *pollingWatcher) Type() WatcherType {
	return TypePolling
}

// Start polls once immediately, emitting that first result unconditionally,
// then keeps polling at cfg.PollInterval until the context is canceled or
// Stop is called.
func (w *pollingWatcher) Start(ctx context.Context, cfg WatchConfig) error {
	if !w.em.start(cfg) {
		return nil
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	go w.loop(ctx, interval)
	return nil
}

func (w *pollingWatcher) loop(ctx context.Context, interval time.Duration) {
	defer w.em.shutdown()

	// Ticker keeps the cadence steady even when a poll itself is slow.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		w.poll(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		case <-w.em.stopCh:
			return
		}
	}
}

func (w *pollingWatcher) poll(ctx context.Context) {
	data, err := w.handler.Poll(ctx)
	switch {
	case err != nil:
		w.em.emit(ctx, WatchResult{Error: err})
	case w.em.changed(data):
		w.em.emit(ctx, WatchResult{Data: data})
	}
}

// Stop stops polling and closes the results channel.
func (w *pollingWatcher) Stop(ctx context.Context) error {
	w.em.halt()
	return nil
}

// Results returns the channel receiving poll results.
func (w *pollingWatcher) Results() <-chan WatchResult {
	return w.em.results
}
