// Package source provides interfaces and implementations for multitext sources.
// A source represents where raw document text comes from and optionally where it
// can be saved. Sources are responsible only for I/O operations; parsing is
// handled by the multitext package.
package source

import (
	"context"
	"errors"

	"github.com/yacchi/multitext/watcher"
)

// ErrSaveNotSupported is returned when Save is called on a source that doesn't support saving.
var ErrSaveNotSupported = errors.New("save not supported for this source")

// ErrSourceModified is returned by Save when the source changed between the
// checkpoint read and the write. The data passed to the UpdateFunc was stale;
// callers should retry, letting Save take a fresh checkpoint.
var ErrSourceModified = errors.New("source has been modified since last load")

// SourceType identifies the type of a source.
type SourceType string

// Standard source types.
const (
	// TypeBytes is an in-memory byte slice source.
	TypeBytes SourceType = "bytes"

	// TypeFS is a file system source.
	TypeFS SourceType = "fs"
)

// UpdateFunc is a function that generates new data to save.
// It receives the current bytes from the source (captured at a safe point)
// and returns the new bytes to write.
//
// The current bytes are provided so that callers can rewrite a document
// based on what is actually on disk rather than a stale copy.
type UpdateFunc func(current []byte) ([]byte, error)

// Source loads and optionally saves raw multitext data.
// Sources are format-agnostic; they only handle raw bytes.
type Source interface {
	// Type returns the source type identifier.
	Type() SourceType

	// Load reads the raw document data from the source.
	// The context can be used for cancellation and timeouts.
	Load(ctx context.Context) ([]byte, error)

	// Save writes data back to the source.
	//
	// The updateFunc receives the current bytes captured at a safe checkpoint,
	// enabling read-modify-write updates without clobbering external changes.
	//
	// Returns ErrSaveNotSupported if the source doesn't support saving.
	// Returns ErrSourceModified if the source was modified externally
	// after the checkpoint, leaving the source untouched.
	// The context can be used for cancellation and timeouts.
	//
	// Example:
	//   err := src.Save(ctx, func(current []byte) ([]byte, error) {
	//     doc, err := multitext.Parse(current)
	//     if err != nil {
	//       return nil, err
	//     }
	//     return doc.Marshal()
	//   })
	Save(ctx context.Context, updateFunc UpdateFunc) error

	// CanSave returns true if the source supports saving.
	CanSave() bool
}

// Watchable is implemented by sources that support change watching.
type Watchable interface {
	// Watch returns a Watcher for the source.
	// The watcher is not started; callers start it with their own config.
	Watch() (watcher.Watcher, error)
}

// Pathed is implemented by sources backed by a named location (e.g., a file).
// The path is used by the multitext package to annotate parse errors.
type Pathed interface {
	// Path returns the location of the source as given by the caller.
	Path() string
}
