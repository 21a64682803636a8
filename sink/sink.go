// Package sink provides output destinations for generated headers.
package sink

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrFileExists is returned by FilesystemSink when Overwrite is false and
// the target already exists.
var ErrFileExists = errors.New("file already exists")

// OutputSink receives generated file content.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to the slash-separated relative path.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes below a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// Overwrite controls behavior for existing files.
	// If false, WriteFile fails with ErrFileExists.
	Overwrite bool
}

// NewFilesystemSink returns a sink rooted at root that overwrites files.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root:      root,
		Mode:      0644,
		Overwrite: true,
	}
}

// WriteFile writes content to path within Root, creating parent
// directories. Writes go through a temp file and a rename so readers never
// observe a partial header.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return errors.Wrap(err, "resolve root directory")
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return errors.Wrap(err, "resolve path")
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return errors.Newf("path escapes root directory: %q", path)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "create directories")
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(dir, ".bindgen-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()

	// Leftovers keep the .bindgen-*.tmp prefix; removal errors are dropped
	// in favour of the error being returned.
	cleanup := func() { _ = os.Remove(tmpPath) }

	if writeErr != nil {
		cleanup()
		return errors.Wrap(writeErr, "write temp file")
	}
	if closeErr != nil {
		cleanup()
		return errors.Wrap(closeErr, "close temp file")
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return errors.Wrap(err, "set file mode")
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}

	if s.Overwrite {
		if err := os.Rename(tmpPath, fullPath); err != nil {
			cleanup()
			return errors.Wrap(err, "rename temp file")
		}
		return nil
	}

	// Link fails if the target exists, without a stat/rename race.
	if err := os.Link(tmpPath, fullPath); err != nil {
		cleanup()
		if errors.Is(err, os.ErrExist) {
			return errors.Wrapf(ErrFileExists, "%q", path)
		}
		return errors.Wrap(err, "create file")
	}
	_ = os.Remove(tmpPath)
	return nil
}

// MemorySink stores generated files in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = append([]byte(nil), content...)
	return nil
}

// Files returns a copy of all written files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		out[path] = append([]byte(nil), content...)
	}
	return out
}

// Paths returns the written paths in sorted order.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.files))
	for path := range s.files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Get returns the content of one file, or nil if it was never written.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Reset clears all stored files.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}

// DiscardSink validates paths and drops content. Check mode uses it to run
// the whole pipeline without touching disk.
type DiscardSink struct {
	mu    sync.Mutex
	count int
	bytes int64
}

// WriteFile counts the write.
func (s *DiscardSink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.count++
	s.bytes += int64(len(content))
	s.mu.Unlock()
	return nil
}

// Stats returns the number of files and bytes written so far.
func (s *DiscardSink) Stats() (files int, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count, s.bytes
}

// ValidatePath reports whether path is usable as an output path: relative,
// slash-separated, clean, and free of ".." components.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	if len(path) >= 2 && path[1] == ':' && isDriveLetter(path[0]) {
		return errors.New("absolute paths not allowed")
	}
	if strings.Contains(path, "\\") {
		return errors.New("backslash separators not allowed")
	}
	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return errors.Newf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}

func isDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
