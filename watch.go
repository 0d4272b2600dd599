package multitext

import (
	"context"
	"fmt"
	"time"

	"github.com/yacchi/multitext/source"
	"github.com/yacchi/multitext/watcher"
)

// Event is delivered on the channel returned by Watch whenever the source
// changes. Either Document or Err is set: a parse failure on changed data
// surfaces as Err and watching continues.
type Event struct {
	Document *Document
	Err      error
}

// WatchConfig configures the Watch behavior.
type WatchConfig struct {
	// DebounceDelay is the delay to wait for additional changes before
	// re-parsing. This batches rapid successive changes (e.g., editors
	// that write a file several times) into a single event.
	// Default: 100ms
	DebounceDelay time.Duration

	// WatcherOpts are options applied to the underlying watcher's config.
	WatcherOpts []watcher.WatchConfigOption

	// ParseOpts are options applied to every re-parse.
	ParseOpts []ParseOption
}

// DefaultWatchConfig returns the default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		DebounceDelay: 100 * time.Millisecond,
		WatcherOpts: []watcher.WatchConfigOption{
			watcher.WithPollInterval(30 * time.Second),
		},
	}
}

// Watch watches src for changes and re-parses on every change.
//
// Watchable sources (e.g., fs.Source, which uses fsnotify) provide their
// own watcher; other sources fall back to polling Load at the configured
// interval. Parsed documents and errors are delivered as Events; the
// channel is closed when watching stops.
//
// Example:
//
//	events, stop, err := multitext.Watch(ctx, fs.New("shaders.mt"), multitext.DefaultWatchConfig())
//	if err != nil {
//	  return err
//	}
//	defer stop(context.Background())
//	for ev := range events {
//	  ...
//	}
func Watch(ctx context.Context, src source.Source, cfg WatchConfig) (<-chan Event, watcher.StopFunc, error) {
	var w watcher.Watcher
	if ws, ok := src.(source.Watchable); ok {
		var err error
		w, err = ws.Watch()
		if err != nil {
			return nil, nil, fmt.Errorf("multitext: failed to create watcher: %w", err)
		}
	} else {
		w = watcher.NewPolling(watcher.PollHandlerFunc(src.Load))
	}

	parseOpts := cfg.ParseOpts
	if p, ok := src.(source.Pathed); ok {
		parseOpts = append([]ParseOption{WithFilename(p.Path())}, parseOpts...)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	if err := w.Start(watchCtx, watcher.NewWatchConfig(cfg.WatcherOpts...)); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("multitext: failed to start watcher: %w", err)
	}

	events := make(chan Event)
	go watchLoop(watchCtx, w.Results(), events, cfg.DebounceDelay, parseOpts)

	stop := func(stopCtx context.Context) error {
		cancel()
		return w.Stop(stopCtx)
	}

	return events, stop, nil
}

// watchLoop forwards watch results as parsed events, with debouncing.
func watchLoop(ctx context.Context, results <-chan watcher.WatchResult, events chan<- Event, debounce time.Duration, parseOpts []ParseOption) {
	defer close(events)

	var debounceTimer *time.Timer
	var pending []byte
	havePending := false

	resetDebounce := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.NewTimer(debounce)
	}

	// timerC returns the debounce timer's channel, or nil (which never
	// fires) when no debounce is in flight.
	timerC := func() <-chan time.Time {
		if debounceTimer == nil {
			return nil
		}
		return debounceTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case result, ok := <-results:
			if !ok {
				return
			}

			// Watch errors bypass debouncing
			if result.Error != nil {
				select {
				case events <- Event{Err: result.Error}:
				case <-ctx.Done():
					return
				}
				continue
			}

			// Keep only the latest data
			pending = result.Data
			havePending = true
			resetDebounce()

		case <-timerC():
			debounceTimer = nil
			if !havePending {
				continue
			}
			doc, err := Parse(pending, parseOpts...)
			pending = nil
			havePending = false

			select {
			case events <- Event{Document: doc, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}
