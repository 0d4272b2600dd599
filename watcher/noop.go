package watcher

import "context"

// noopWatcher satisfies the Watcher interface for sources that never
// change, such as in-memory byte sources. It emits nothing.
type noopWatcher struct {
	em emitter
}

// NewNoop creates a Watcher that never reports changes. Immutable sources
// return one so that watching them is explicit rather than an error.
func NewNoop() Watcher {
	return &noopWatcher{}
}

// Type returns the watcher type identifier.
func (w *noopWatcher) Type() WatcherType {
	return TypeNoop
}

// Start parks a goroutine until the context is canceled or Stop is called.
func (w *noopWatcher) Start(ctx context.Context, cfg WatchConfig) error {
	if !w.em.start(cfg) {
		return nil
	}

	go func() {
		defer w.em.shutdown()
		select {
		case <-ctx.Done():
		case <-w.em.stopCh:
		}
	}()

	return nil
}

// Stop stops the watcher and closes the results channel.
func (w *noopWatcher) Stop(ctx context.Context) error {
	w.em.halt()
	return nil
}

// Results returns the results channel. It never receives a value.
func (w *noopWatcher) Results() <-chan WatchResult {
	return w.em.results
}
