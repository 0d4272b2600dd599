package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewWatchConfig_Defaults(t *testing.T) {
	cfg := NewWatchConfig()
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.CompareFunc == nil {
		t.Error("CompareFunc = nil, want DefaultCompareFunc")
	}
}

func TestNewWatchConfig_Options(t *testing.T) {
	var customCalled bool
	custom := func(old, new []byte) bool {
		customCalled = true
		return true
	}

	cfg := NewWatchConfig(WithPollInterval(time.Second), WithCompareFunc(custom))
	if cfg.PollInterval != time.Second {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, time.Second)
	}
	cfg.CompareFunc(nil, nil)
	if !customCalled {
		t.Error("custom CompareFunc was not installed")
	}
}

func TestCompareFuncs(t *testing.T) {
	a := []byte("@@@multitext header\none\n")
	b := []byte("@@@multitext header\ntwo\n")

	tests := []struct {
		name    string
		compare CompareFunc
	}{
		{"default", DefaultCompareFunc},
		{"hash", HashCompareFunc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.compare(a, a) {
				t.Error("compare(a, a) = true, want false")
			}
			if !tt.compare(a, b) {
				t.Error("compare(a, b) = false, want true")
			}
		})
	}
}

func TestNoopWatcher(t *testing.T) {
	w := NewNoop()
	if w.Type() != TypeNoop {
		t.Errorf("Type() = %q, want %q", w.Type(), TypeNoop)
	}

	ctx := context.Background()
	if err := w.Start(ctx, NewWatchConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case r := <-w.Results():
		t.Fatalf("noop watcher emitted %+v", r)
	case <-time.After(50 * time.Millisecond):
	}

	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// Results closes after Stop.
	select {
	case _, ok := <-w.Results():
		if ok {
			t.Fatal("noop watcher emitted a result after Stop")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Results() not closed after Stop")
	}
}

// pollSource is a mutable data cell used as a PollHandler in tests.
type pollSource struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func (p *pollSource) Poll(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	out := make([]byte, len(p.data))
	copy(out, p.data)
	return out, nil
}

func (p *pollSource) set(data []byte, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
	p.err = err
}

func waitResult(t *testing.T, w Watcher) WatchResult {
	t.Helper()
	select {
	case r, ok := <-w.Results():
		if !ok {
			t.Fatal("Results() closed unexpectedly")
		}
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch result")
	}
	return WatchResult{}
}

func TestPollingWatcher(t *testing.T) {
	src := &pollSource{data: []byte("one")}
	w := NewPolling(src)
	if w.Type() != TypePolling {
		t.Errorf("Type() = %q, want %q", w.Type(), TypePolling)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := NewWatchConfig(WithPollInterval(10 * time.Millisecond))
	if err := w.Start(ctx, cfg); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop(ctx)

	// First poll is always emitted.
	r := waitResult(t, w)
	if r.Error != nil || string(r.Data) != "one" {
		t.Fatalf("first result = (%q, %v), want (%q, nil)", r.Data, r.Error, "one")
	}

	// Unchanged data is not emitted; changed data is.
	src.set([]byte("two"), nil)
	r = waitResult(t, w)
	if r.Error != nil || string(r.Data) != "two" {
		t.Fatalf("changed result = (%q, %v), want (%q, nil)", r.Data, r.Error, "two")
	}

	// Poll errors are forwarded.
	pollErr := errors.New("poll failed")
	src.set(nil, pollErr)
	r = waitResult(t, w)
	if !errors.Is(r.Error, pollErr) {
		t.Fatalf("error result = %v, want %v", r.Error, pollErr)
	}
}

func TestSubscriptionWatcher_PushStyle(t *testing.T) {
	var notifyFn NotifyFunc
	handler := SubscriptionHandlerFunc(func(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
		notifyFn = notify
		return func(ctx context.Context) error { return nil }, nil
	})

	w := NewSubscription(handler, nil)
	if w.Type() != TypeSubscription {
		t.Errorf("Type() = %q, want %q", w.Type(), TypeSubscription)
	}

	ctx := context.Background()
	if err := w.Start(ctx, NewWatchConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop(ctx)

	go notifyFn([]byte("pushed"), nil)
	r := waitResult(t, w)
	if string(r.Data) != "pushed" {
		t.Fatalf("result = %q, want %q", r.Data, "pushed")
	}

	// Pushing identical data again is suppressed; different data is emitted.
	go func() {
		notifyFn([]byte("pushed"), nil)
		notifyFn([]byte("changed"), nil)
	}()
	r = waitResult(t, w)
	if string(r.Data) != "changed" {
		t.Fatalf("result = %q, want %q", r.Data, "changed")
	}
}

func TestSubscriptionWatcher_EventOnlyFetches(t *testing.T) {
	src := &pollSource{data: []byte("fetched")}

	var notifyFn NotifyFunc
	handler := SubscriptionHandlerFunc(func(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
		notifyFn = notify
		return func(ctx context.Context) error { return nil }, nil
	})

	w := NewSubscription(handler, src)
	ctx := context.Background()
	if err := w.Start(ctx, NewWatchConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop(ctx)

	go notifyFn(nil, nil)
	r := waitResult(t, w)
	if string(r.Data) != "fetched" {
		t.Fatalf("result = %q, want %q", r.Data, "fetched")
	}

	// An event for unchanged data is suppressed, then a real change lands.
	go func() {
		notifyFn(nil, nil)
		src.set([]byte("fetched again"), nil)
		notifyFn(nil, nil)
	}()
	r = waitResult(t, w)
	if string(r.Data) != "fetched again" {
		t.Fatalf("result = %q, want %q", r.Data, "fetched again")
	}
}

func TestSubscriptionWatcher_ErrorsForwarded(t *testing.T) {
	var notifyFn NotifyFunc
	handler := SubscriptionHandlerFunc(func(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
		notifyFn = notify
		return func(ctx context.Context) error { return nil }, nil
	})

	w := NewSubscription(handler, nil)
	ctx := context.Background()
	if err := w.Start(ctx, NewWatchConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop(ctx)

	watchErr := errors.New("watch failed")
	go notifyFn(nil, watchErr)
	r := waitResult(t, w)
	if !errors.Is(r.Error, watchErr) {
		t.Fatalf("result error = %v, want %v", r.Error, watchErr)
	}
}

func TestSubscriptionWatcher_NotifyAfterStop(t *testing.T) {
	var notifyFn NotifyFunc
	handler := SubscriptionHandlerFunc(func(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
		notifyFn = notify
		// Returns before the notifying side has quiesced, like an
		// fsnotify handler whose goroutine is still draining events.
		return func(ctx context.Context) error { return nil }, nil
	})

	w := NewSubscription(handler, nil)
	ctx := context.Background()
	if err := w.Start(ctx, NewWatchConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	// A straggling notification must be dropped, not sent on the closed
	// results channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		notifyFn([]byte("late"), nil)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("late notify did not return")
	}

	if r, ok := <-w.Results(); ok {
		t.Fatalf("received %+v after Stop", r)
	}
}

func TestSubscriptionWatcher_SubscribeFailure(t *testing.T) {
	subErr := errors.New("subscribe failed")
	handler := SubscriptionHandlerFunc(func(ctx context.Context, notify NotifyFunc) (StopFunc, error) {
		return nil, subErr
	})

	w := NewSubscription(handler, nil)
	if err := w.Start(context.Background(), NewWatchConfig()); !errors.Is(err, subErr) {
		t.Fatalf("Start() error = %v, want %v", err, subErr)
	}
}
