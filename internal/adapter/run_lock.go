package adapter

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	m "livesort.dev/pkg/livesort/internal/model"
)

// ErrRunInProgress is returned when another process is organizing the same directory.
var ErrRunInProgress = errors.New("another livesort run is using this directory")

// RunLocker grants exclusive access to a source directory for one run.
type RunLocker interface {
	Acquire(source m.Path) (release func() error, err error)
}

// FlockRunLocker keeps advisory lock files outside the source directory so the
// lock never shows up in a scan.
type FlockRunLocker struct {
	dir string
}

// NewFlockRunLocker returns a locker storing its lock files in dir
// (the OS temp directory when dir is empty).
func NewFlockRunLocker(dir string) *FlockRunLocker {
	if dir == "" {
		dir = os.TempDir()
	}

	return &FlockRunLocker{dir: dir}
}

// LockPath returns the lock file used for source.
func (l *FlockRunLocker) LockPath(source m.Path) (string, error) {
	abs, err := filepath.Abs(string(source))
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(filepath.Clean(abs)))

	return filepath.Join(l.dir, fmt.Sprintf("livesort-%x.lock", sum[:8])), nil
}

// Acquire takes the lock for source without blocking.
func (l *FlockRunLocker) Acquire(source m.Path) (func() error, error) {
	path, err := l.LockPath(source)
	if err != nil {
		return nil, fmt.Errorf("resolve lock path: %w", err)
	}

	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, source)
	}

	return lock.Unlock, nil
}
