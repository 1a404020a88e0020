package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"

	"livesort.dev/pkg/livesort/internal/adapter"
	m "livesort.dev/pkg/livesort/internal/model"
)

var (
	// ErrNoFreeSibling is returned when no numbered sibling directory is left.
	ErrNoFreeSibling = errors.New("no free sibling directory left")
	// ErrDestinationOccupied is returned by Place when the target path is taken.
	ErrDestinationOccupied = errors.New("destination already occupied")
)

// SafeMover relocates files without ever overwriting an existing file.
type SafeMover interface {
	// Move puts src into base, or into the first sibling base1, base2, ... with
	// a free slot for its file name. A missing src is a no-op (moved=false).
	Move(src, base m.Path) (dst m.Path, moved bool, err error)

	// Place moves src to exactly dst, failing with ErrDestinationOccupied if
	// dst is taken. Missing parent directories are created.
	Place(src, dst m.Path) error
}

type safeMover struct {
	adapter.CaptureFSAdapter
}

// NewSafeMover creates a SafeMover on top of the filesystem adapter.
func NewSafeMover(fsAdapter adapter.CaptureFSAdapter) SafeMover {
	return &safeMover{CaptureFSAdapter: fsAdapter}
}

func (sm *safeMover) Move(src, base m.Path) (m.Path, bool, error) {
	exists, err := sm.Exists(src)
	if err != nil {
		return "", false, fmt.Errorf("check %s: %w", src, err)
	}

	if !exists {
		slog.Debug("source already gone, nothing to move", "src", src)
		return "", false, nil
	}

	name := src.Base()

	for version := 0; ; version++ {
		dir := SiblingDir(base, version)

		free, err := sm.slotFree(dir, name)
		if err != nil {
			return "", false, err
		}

		if free {
			dst := sm.JoinPath(string(dir), name)

			if err := sm.MkdirAll(dir); err != nil {
				return "", false, fmt.Errorf("create %s: %w", dir, err)
			}

			if err := sm.Rename(src, dst); err != nil {
				return "", false, fmt.Errorf("move %s: %w", src, err)
			}

			return dst, true, nil
		}

		if version == math.MaxInt {
			return "", false, fmt.Errorf("%w for %s next to %s", ErrNoFreeSibling, name, base)
		}
	}
}

// slotFree reports whether name can be placed in dir. A missing dir is free;
// a non-directory squatting on the name is skipped.
func (sm *safeMover) slotFree(dir m.Path, name string) (bool, error) {
	info, err := sm.FileInfo(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}

		return false, fmt.Errorf("stat %s: %w", dir, err)
	}

	if !info.IsDir() {
		return false, nil
	}

	taken, err := sm.Exists(sm.JoinPath(string(dir), name))
	if err != nil {
		return false, fmt.Errorf("check %s: %w", dir, err)
	}

	return !taken, nil
}

func (sm *safeMover) Place(src, dst m.Path) error {
	taken, err := sm.Exists(dst)
	if err != nil {
		return fmt.Errorf("check %s: %w", dst, err)
	}

	if taken {
		return fmt.Errorf("%w: %s", ErrDestinationOccupied, dst)
	}

	if err := sm.MkdirAll(m.Path(filepath.Dir(string(dst)))); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(string(dst)), err)
	}

	return sm.Rename(src, dst)
}

// SiblingDir returns base for version 0 and <base-name><version> next to base
// otherwise, e.g. Other, Other1, Other2.
func SiblingDir(base m.Path, version int) m.Path {
	if version == 0 {
		return base
	}

	clean := filepath.Clean(string(base))

	return m.Path(filepath.Join(filepath.Dir(clean), filepath.Base(clean)+strconv.Itoa(version)))
}
