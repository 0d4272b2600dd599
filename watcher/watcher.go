package watcher

import "context"

// Watcher is the change-detection half of a watched source. A watcher is
// created idle; Start applies the WatchConfig and begins delivering results,
// and Stop tears it down.
type Watcher interface {
	// Type identifies the change-detection strategy.
	Type() WatcherType

	// Start begins watching. Results are delivered on the channel from
	// Results until the context is canceled or Stop is called. Starting
	// a running watcher is a no-op.
	Start(ctx context.Context, cfg WatchConfig) error

	// Stop ends watching and closes the results channel. A notification
	// arriving after Stop is dropped, never delivered.
	Stop(ctx context.Context) error

	// Results returns the delivery channel. It is nil before Start.
	Results() <-chan WatchResult
}
