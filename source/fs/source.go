// Package fs provides a file system based multitext source.
//
// Files with a ".zst" extension are transparently decompressed on Load and
// compressed on Save using zstd, so large multitext containers (shader packs,
// corpora) can be stored compressed without the caller noticing.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/zstd"
	"github.com/yacchi/multitext/source"
	"github.com/yacchi/multitext/watcher"
)

// Default permission modes.
const (
	DefaultFileMode = 0644
	DefaultDirMode  = 0755
)

// Shared encoder/decoder - both are documented as safe for concurrent use.
// Allocated once because zstd encoder/decoder construction is expensive;
// creating one per Load/Save would dominate the cost for typical documents.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Source loads and saves raw multitext data from/to a file.
type Source struct {
	path        string
	searchPaths []string
	fileMode    os.FileMode
	dirMode     os.FileMode

	// mu serializes Load and Save within the process. A started watcher
	// calls Load from its own goroutine, so callers may Save concurrently.
	mu           sync.Mutex
	resolvedPath string // cached path after resolution, guarded by mu
}

// Ensure Source implements the source.Source interface.
var _ source.Source = (*Source)(nil)

// Ensure Source implements the source.Watchable interface.
var _ source.Watchable = (*Source)(nil)

// Ensure Source implements the source.Pathed interface.
var _ source.Pathed = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithFileMode sets the file permission mode used when saving.
// Default is 0644.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Source) {
		s.fileMode = mode
	}
}

// WithDirMode sets the directory permission mode used when creating parent directories.
// Default is 0755.
func WithDirMode(mode os.FileMode) Option {
	return func(s *Source) {
		s.dirMode = mode
	}
}

// WithSearchPaths adds additional paths to search for the document file.
// During Load, files are searched in order: primary path first, then search paths.
// The first existing file is used. If no file exists, the primary path is used.
// During Save, the resolved path (found file or primary path) is used.
func WithSearchPaths(paths ...string) Option {
	return func(s *Source) {
		s.searchPaths = append(s.searchPaths, paths...)
	}
}

// New creates a source that reads from and writes to a file.
// The path can be absolute or relative. Tilde (~) expansion is supported.
//
// Example:
//
//	src := fs.New("shaders.mt")
//	src := fs.New("~/assets/shaders.mt")
//	src := fs.New("corpus.mt.zst") // transparently zstd-compressed
//	src := fs.New("shaders.mt", fs.WithSearchPaths("/usr/share/app/shaders.mt"))
func New(path string, opts ...Option) *Source {
	s := &Source{
		path:     path,
		fileMode: DefaultFileMode,
		dirMode:  DefaultDirMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Type returns the source type identifier.
func (s *Source) Type() source.SourceType {
	return source.TypeFS
}

// Path implements the source.Pathed interface.
// It returns the primary path as given by the caller.
func (s *Source) Path() string {
	return s.path
}

// Load implements the source.Source interface.
// If search paths are configured, files are searched in order:
// primary path first, then search paths. The first existing file is loaded.
// If no file exists, an error is returned for the primary path.
func (s *Source) Load(ctx context.Context) ([]byte, error) {
	// Check for cancellation
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resolvedPath, originalPath, err := s.resolvePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", originalPath, err)
	}

	// Cache the resolved path for subsequent operations
	s.resolvedPath = resolvedPath

	if isCompressed(resolvedPath) {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress file %q: %w", originalPath, err)
		}
	}

	return data, nil
}

// Save implements the source.Source interface with file locking.
// The updateFunc receives current file contents and returns the new contents to write.
// For compressed paths, updateFunc works on the decompressed form on both ends.
//
// File locking (flock) is used to prevent concurrent modifications by
// cooperating processes. If the filesystem doesn't support locking, the
// operation proceeds without it since there's no safe alternative anyway.
//
// flock is advisory, so a writer that doesn't take the lock can still touch
// the file after the checkpoint read. Save re-reads the file before the final
// rename and returns source.ErrSourceModified instead of overwriting such a
// write; callers should reload and retry.
//
// The write is performed atomically by writing to a temporary file first,
// then renaming it to the target path. Parent directories are created if
// they do not exist.
func (s *Source) Save(ctx context.Context, updateFunc source.UpdateFunc) error {
	// Check for cancellation
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Use cached resolved path if available, otherwise resolve
	targetPath := s.resolvedPath
	if targetPath == "" {
		var err error
		targetPath, _, err = s.resolvePath()
		if err != nil {
			return err
		}
	}

	// Ensure parent directory exists
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	// Open or create file for locking.
	// O_RDWR|O_CREATE handles both existing and new files.
	lockFile, err := os.OpenFile(targetPath, os.O_RDWR|os.O_CREATE, s.fileMode)
	if err != nil {
		return fmt.Errorf("failed to open file %q for locking: %w", targetPath, err)
	}
	defer lockFile.Close()

	unlock, err := fileLock(lockFile)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %q: %w", targetPath, err)
	}
	defer unlock()

	// Checkpoint read through the locked file handle. rawData keeps the
	// on-disk form for the pre-rename verification below.
	var rawData []byte
	stat, err := lockFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file %q: %w", targetPath, err)
	}
	if stat.Size() > 0 {
		rawData = make([]byte, stat.Size())
		if _, err := lockFile.ReadAt(rawData, 0); err != nil {
			return fmt.Errorf("failed to read current file %q: %w", targetPath, err)
		}
	}

	currentData := rawData
	if isCompressed(targetPath) && len(rawData) > 0 {
		currentData, err = decompress(rawData)
		if err != nil {
			return fmt.Errorf("failed to decompress current file %q: %w", targetPath, err)
		}
	}

	newData, err := updateFunc(currentData)
	if err != nil {
		return err
	}

	if isCompressed(targetPath) {
		newData = compress(newData)
	}

	// Atomic write via temp file + rename
	tmpFile, err := os.CreateTemp(dir, ".multitext-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temporary file on error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(newData); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}

	// Sync to ensure data is flushed to disk
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tmpPath, s.fileMode); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	// Verify the checkpoint is still intact. The advisory lock doesn't
	// stop non-cooperating writers, so check before replacing the file.
	onDisk, err := os.ReadFile(targetPath)
	if err != nil {
		return fmt.Errorf("failed to re-read file %q: %w", targetPath, err)
	}
	if !bytes.Equal(onDisk, rawData) {
		return fmt.Errorf("file %q: %w", targetPath, source.ErrSourceModified)
	}

	// Atomic rename (lock is still held for cooperating writers)
	if err := os.Rename(tmpPath, targetPath); err != nil {
		return fmt.Errorf("failed to rename temporary file to %q: %w", targetPath, err)
	}

	success = true
	return nil
}

// CanSave returns true because file system sources support saving.
func (s *Source) CanSave() bool {
	return true
}

// ResolvedPath returns the actual file path being used after resolution.
// This may differ from Path() if a search path was used.
// Returns the primary path if no file has been loaded yet.
func (s *Source) ResolvedPath() string {
	s.mu.Lock()
	resolved := s.resolvedPath
	s.mu.Unlock()

	if resolved != "" {
		return resolved
	}
	expanded, err := expandTilde(s.path)
	if err != nil {
		return s.path
	}
	return expanded
}

// resolvePath finds the first existing file from the search paths.
// Returns (expandedPath, originalPath, error).
// If no file exists, returns the expanded primary path.
func (s *Source) resolvePath() (expanded string, original string, err error) {
	allPaths := make([]string, 0, 1+len(s.searchPaths))
	allPaths = append(allPaths, s.path)
	allPaths = append(allPaths, s.searchPaths...)

	for _, p := range allPaths {
		expanded, err := expandTilde(p)
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(expanded); statErr == nil {
			return expanded, p, nil
		}
	}

	// No file found, return primary path (will likely cause an error on read)
	expanded, err = expandTilde(s.path)
	if err != nil {
		return "", s.path, fmt.Errorf("failed to expand path %q: %w", s.path, err)
	}
	return expanded, s.path, nil
}

// expandTilde expands tilde (~) in the path.
// Handles both "~" (home directory) and "~/path" (path under home).
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand home directory: %w", err)
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// "~something" - not a valid home expansion, return as-is
	return path, nil
}

// isCompressed reports whether the path names a zstd-compressed document.
func isCompressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// compress encodes data with zstd.
func compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

// decompress decodes zstd-compressed data.
func decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return zstdDecoder.DecodeAll(data, nil)
}

// Subscribe implements the watcher.SubscriptionHandler interface.
// It sets up fsnotify-based file watching and calls notify when the file changes.
//
// This uses the event-only notification pattern: notify(nil, nil) is called
// when a change is detected, and the watcher fetches data separately.
func (s *Source) Subscribe(ctx context.Context, notify watcher.NotifyFunc) (watcher.StopFunc, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	path := s.ResolvedPath()

	// Watch the directory containing the file rather than the file itself.
	// This handles atomic writes (temp file + rename) and file recreation.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch directory %q: %w", dir, err)
	}

	filename := filepath.Base(path)

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				// Only process events for our specific file
				if filepath.Base(event.Name) != filename {
					continue
				}
				// Notify with (nil, nil) so the watcher fetches (and
				// decompresses) the data through Load.
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					notify(nil, nil)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				notify(nil, err)
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func(ctx context.Context) error {
		return w.Close()
	}

	return stop, nil
}

// Watch implements the source.Watchable interface.
// Returns a subscription watcher that uses fsnotify for change detection
// and Load for fetching changed data.
func (s *Source) Watch() (watcher.Watcher, error) {
	return watcher.NewSubscription(
		watcher.SubscriptionHandlerFunc(s.Subscribe),
		watcher.PollHandlerFunc(s.Load),
	), nil
}
