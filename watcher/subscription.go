package watcher

import (
	"context"
	"sync"
)

// SubscriptionHandler registers for change notifications from a source.
// Implementations call notify when the underlying data changes or an error
// occurs, and return a StopFunc that tears the subscription down.
type SubscriptionHandler interface {
	Subscribe(ctx context.Context, notify NotifyFunc) (StopFunc, error)
}

// SubscriptionHandlerFunc is a function that implements SubscriptionHandler.
type SubscriptionHandlerFunc func(ctx context.Context, notify NotifyFunc) (StopFunc, error)

// Subscribe implements SubscriptionHandler.
func (f SubscriptionHandlerFunc) Subscribe(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
	return f(ctx, notify)
}

// subscriptionWatcher implements Watcher for event-driven sources.
type subscriptionWatcher struct {
	handler SubscriptionHandler
	fetcher PollHandler
	em      emitter

	mu     sync.Mutex
	stopFn StopFunc
}

// NewSubscription creates an event-driven Watcher.
// The handler's Subscribe method sets up the notifications.
//
// The fetcher covers the event-only pattern: when the handler notifies with
// (nil, nil), the watcher pulls the data through fetcher.Poll and compares it
// against the previous observation before emitting (fsnotify sources work
// this way). A handler that always pushes data may pass a nil fetcher.
func NewSubscription(handler SubscriptionHandler, fetcher PollHandler) Watcher {
	return &subscriptionWatcher{
		handler: handler,
		fetcher: fetcher,
	}
}

// Type returns the watcher type identifier.
func (w *subscriptionWatcher) Type() WatcherType {
	return TypeSubscription
}

// Start subscribes to the handler and begins delivering results.
func (w *subscriptionWatcher) Start(ctx context.Context, cfg WatchConfig) error {
	if !w.em.start(cfg) {
		return nil
	}

	stop, err := w.handler.Subscribe(ctx, w.notify(ctx))
	if err != nil {
		w.em.halt()
		w.em.shutdown()
		return err
	}

	w.mu.Lock()
	w.stopFn = stop
	w.mu.Unlock()

	return nil
}

// notify builds the NotifyFunc handed to the handler. Three call shapes are
// accepted: (data, nil) pushes data, (nil, err) reports an error, and
// (nil, nil) signals a change whose data must be fetched.
func (w *subscriptionWatcher) notify(ctx context.Context) NotifyFunc {
	return func(data []byte, err error) {
		if err != nil {
			w.em.emit(ctx, WatchResult{Error: err})
			return
		}

		if data == nil {
			if w.fetcher == nil {
				// Event-only notification without a fetcher; there is
				// nothing to deliver.
				return
			}
			data, err = w.fetcher.Poll(ctx)
			if err != nil {
				w.em.emit(ctx, WatchResult{Error: err})
				return
			}
		}

		if !w.em.changed(data) {
			return
		}
		w.em.emit(ctx, WatchResult{Data: data})
	}
}

// Stop unsubscribes from the handler and closes the results channel.
// Handlers are not required to quiesce before their StopFunc returns; a
// straggling notification after Stop is dropped rather than delivered.
func (w *subscriptionWatcher) Stop(ctx context.Context) error {
	if !w.em.halt() {
		return nil
	}

	w.mu.Lock()
	stop := w.stopFn
	w.stopFn = nil
	w.mu.Unlock()

	var err error
	if stop != nil {
		err = stop(ctx)
	}

	w.em.shutdown()
	return err
}

// Results returns the channel receiving subscription results.
func (w *subscriptionWatcher) Results() <-chan WatchResult {
	return w.em.results
}
