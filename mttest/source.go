package mttest

import (
	"context"
	"errors"
	"testing"

	"github.com/yacchi/multitext/source"
	"github.com/yacchi/multitext/watcher"
)

// SourceFactory creates a Source initialized with the given test data.
// The factory is called for each test case to ensure test isolation.
type SourceFactory func(data []byte) source.Source

// SourceTester provides a compliance suite for source.Source implementations.
type SourceTester struct {
	t       *testing.T
	factory SourceFactory
}

// NewSourceTester creates a SourceTester for the given SourceFactory.
// The factory will be used to create new Source instances for each test.
func NewSourceTester(t *testing.T, factory SourceFactory) *SourceTester {
	return &SourceTester{
		t:       t,
		factory: factory,
	}
}

// TestAll runs all standard compliance tests for Source implementations.
func (st *SourceTester) TestAll() {
	st.t.Run("Load", st.testLoad)
	st.t.Run("LoadCanceled", st.testLoadCanceled)
	st.t.Run("Save", st.testSave)
	st.t.Run("Watch", st.testWatch)
}

// testLoad verifies that Load returns the data the source was created with,
// and that mutating the returned slice does not corrupt later loads.
func (st *SourceTester) testLoad(t *testing.T) {
	data := []byte("@@@multitext header\nbody line\n")
	src := st.factory(data)

	got, err := src.Load(context.Background())
	requireNoError(t, err, "Load() error = %v", err)
	require(t, string(got) == string(data), "Load() = %q, want %q", got, data)

	if len(got) > 0 {
		got[0] = '!'
	}

	again, err := src.Load(context.Background())
	requireNoError(t, err, "second Load() error = %v", err)
	check(t, string(again) == string(data), "Load() after mutation = %q, want %q", again, data)
}

// testLoadCanceled verifies that Load honors context cancellation.
func (st *SourceTester) testLoadCanceled(t *testing.T) {
	src := st.factory([]byte("@@@multitext header\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Load(ctx)
	check(t, err != nil, "Load() with canceled context: expected error, got nil")
}

// testSave verifies Save behavior consistent with CanSave: a round-trip for
// saving sources, ErrSaveNotSupported for read-only ones.
func (st *SourceTester) testSave(t *testing.T) {
	data := []byte("@@@multitext header\noriginal\n")
	src := st.factory(data)

	if !src.CanSave() {
		err := src.Save(context.Background(), func(current []byte) ([]byte, error) {
			return current, nil
		})
		check(t, errors.Is(err, source.ErrSaveNotSupported),
			"Save() on non-saving source: error = %v, want ErrSaveNotSupported", err)
		return
	}

	updated := []byte("@@@multitext header\nupdated\n")
	err := src.Save(context.Background(), func(current []byte) ([]byte, error) {
		check(t, string(current) == string(data), "Save() current = %q, want %q", current, data)
		return updated, nil
	})
	requireNoError(t, err, "Save() error = %v", err)

	got, err := src.Load(context.Background())
	requireNoError(t, err, "Load() after Save error = %v", err)
	check(t, string(got) == string(updated), "Load() after Save = %q, want %q", got, updated)
}

// testWatch verifies that watchable sources create startable watchers.
func (st *SourceTester) testWatch(t *testing.T) {
	src := st.factory([]byte("@@@multitext header\n"))

	ws, ok := src.(source.Watchable)
	if !ok {
		t.Skip("source is not watchable")
	}

	w, err := ws.Watch()
	requireNoError(t, err, "Watch() error = %v", err)
	require(t, w != nil, "Watch() returned nil watcher")

	ctx := context.Background()
	if err := w.Start(ctx, watcher.NewWatchConfig()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	check(t, w.Results() != nil, "Results() = nil after Start")
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
