// Package fileio is the byte I/O layer shared by every codec: descriptor
// style handles, partial-transfer-safe read/write loops, and the small set
// of filesystem queries the walker and pipeline need.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	filePerm os.FileMode = 0o644
	dirPerm  os.FileMode = 0o755
)

// Handle wraps an open file. All codec I/O goes through it so that
// open/close discipline stays in one place.
type Handle struct {
	f    *os.File
	path string
}

// Open opens path read-only.
func Open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Handle{f: f, path: path}, nil
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Handle, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &Handle{f: f, path: path}, nil
}

// Path returns the path the handle was opened with.
func (h *Handle) Path() string { return h.path }

// Read reads up to len(buf) bytes. Returns 0, nil at EOF.
func (h *Handle) Read(buf []byte) (int, error) {
	n, err := h.f.Read(buf)
	if err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("read %s: %w", h.path, err)
	}
	return n, nil
}

// ReadFull reads exactly len(buf) bytes unless EOF intervenes. Returns the
// number of bytes read; n < len(buf) with a nil error means EOF.
func (h *Handle) ReadFull(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := h.f.Read(buf[total:])
		total += n
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read %s: %w", h.path, err)
		}
	}
	return total, nil
}

// WriteAll writes the whole buffer, looping over partial writes.
func (h *Handle) WriteAll(buf []byte) error {
	written := 0
	for written < len(buf) {
		n, err := h.f.Write(buf[written:])
		written += n
		if err != nil {
			return fmt.Errorf("write %s: %w", h.path, err)
		}
	}
	return nil
}

// Close releases the handle.
func (h *Handle) Close() error {
	if err := h.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", h.path, err)
	}
	return nil
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListFiles returns the entry names of a directory, sorted, without the
// "." and ".." pseudo-entries.
func ListFiles(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// EnsureDirectoryExists creates path and any missing ancestors with mode
// 0755. It succeeds when path already exists as a directory and fails when
// a non-directory occupies it.
func EnsureDirectoryExists(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("ensure dir %s: path exists and is not a directory", path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("ensure dir %s: %w", path, err)
	}
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return fmt.Errorf("ensure dir %s: %w", path, err)
	}
	return nil
}

// FileSize returns the size of path in bytes, or -1 and an error.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return -1, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
