package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"livesort.dev/pkg/livesort/internal/adapter"
	m "livesort.dev/pkg/livesort/internal/model"
)

var captureTime = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

// writeCapture creates dir/name with the given modification time.
func writeCapture(t *testing.T, dir, name string, modTime time.Time) m.Path {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))

	return m.Path(path)
}

func requireExists(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.NoError(t, err, "expected %s to exist", path)
}

func requireMissing(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "expected %s to be gone", path)
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

func indexDir(t *testing.T, dir string) m.Snapshot {
	t.Helper()

	snap, err := NewFileIndexer(adapter.NewLocalCaptureFSAdapter()).Index(m.Path(dir))
	require.NoError(t, err)

	return snap
}
