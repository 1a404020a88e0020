// Package adapter contains the infrastructure adapters used by the livesort domain.
package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	m "livesort.dev/pkg/livesort/internal/model"
)

// renameFunc is swapped in tests to simulate EXDEV and other rename failures.
var renameFunc = os.Rename

// CaptureFSAdapter abstracts the filesystem operations the domain layer relies
// on when scanning, repairing and relocating captures. It hides direct `os`
// access so the matching and moving logic can be tested against failures.
type CaptureFSAdapter interface {
	// ListFiles returns the regular files directly inside dir (no recursion),
	// sorted by name. Symlinks are followed; dangling links are skipped.
	ListFiles(dir m.Path) ([]FileEntry, error)

	// FileInfo returns metadata for a path, following symlinks.
	FileInfo(path m.Path) (os.FileInfo, error)

	// Exists reports whether anything occupies path. Symlinks are not followed.
	Exists(path m.Path) (bool, error)

	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir m.Path) error

	// Rename moves src to dst. Cross-device moves fail with *CrossDeviceError.
	Rename(src, dst m.Path) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FileEntry is a regular file found by ListFiles.
type FileEntry struct {
	Path    m.Path
	Name    string
	ModTime time.Time
	Size    int64
}

// LocalCaptureFSAdapter is the os-backed CaptureFSAdapter.
type LocalCaptureFSAdapter struct{}

// NewLocalCaptureFSAdapter constructs a LocalCaptureFSAdapter ready to be
// wired into the workflow.
func NewLocalCaptureFSAdapter() *LocalCaptureFSAdapter {
	return &LocalCaptureFSAdapter{}
}

// ListFiles lists regular files in dir in name order.
func (a *LocalCaptureFSAdapter) ListFiles(dir m.Path) ([]FileEntry, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	files := make([]FileEntry, 0, len(entries))

	for _, entry := range entries {
		path := filepath.Join(string(dir), entry.Name())

		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// dangling symlink
				continue
			}

			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, FileEntry{
			Path:    m.Path(path),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	return files, nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalCaptureFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// Exists reports whether path is occupied.
func (a *LocalCaptureFSAdapter) Exists(path m.Path) (bool, error) {
	_, err := os.Lstat(string(path))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, err
}

// MkdirAll creates a directory with all parents.
func (a *LocalCaptureFSAdapter) MkdirAll(dir m.Path) error {
	return os.MkdirAll(string(dir), 0o755)
}

// Rename wraps os.Rename and marks EXDEV failures as CrossDeviceError.
func (a *LocalCaptureFSAdapter) Rename(src, dst m.Path) error {
	if err := renameFunc(string(src), string(dst)); err != nil {
		if isEXDEV(err) {
			return &CrossDeviceError{Src: src, Dst: dst, Err: err}
		}

		return err
	}

	return nil
}

// JoinPath joins path elements into a single path.
func (a *LocalCaptureFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
