package domain

import (
	"errors"
	"io/fs"
	"log/slog"
	"math"

	"livesort.dev/pkg/livesort/internal/adapter"
	m "livesort.dev/pkg/livesort/internal/model"
)

// TallyArgs names the trees to count.
type TallyArgs struct {
	Destination  m.Path
	StartVersion int
	Quarantine   m.Path
}

// Tally counts the files that ended up in the destination and quarantine trees.
type Tally interface {
	Tally(args TallyArgs) (m.Totals, error)
}

type tally struct {
	adapter.CaptureFSAdapter
}

// NewTally creates a Tally.
func NewTally(fsAdapter adapter.CaptureFSAdapter) Tally {
	return &tally{CaptureFSAdapter: fsAdapter}
}

// Tally walks <N>APPLE from the start version and Other, Other1, ... until
// the first missing directory in each series. Unreadable directories count as
// empty; a directory that cannot be stat'ed ends its series.
func (t *tally) Tally(args TallyArgs) (m.Totals, error) {
	if args.StartVersion <= 0 {
		args.StartVersion = DefaultStartVersion
	}

	dest := t.countSeries(args.StartVersion, func(v int) m.Path {
		return VersionedDir(t, args.Destination, v)
	})

	quarantined := t.countSeries(0, func(v int) m.Path {
		return SiblingDir(args.Quarantine, v)
	})

	return m.Totals{DestinationFiles: dest, QuarantineFiles: quarantined}, nil
}

func (t *tally) countSeries(start int, dirFor func(int) m.Path) int {
	total := 0

	for version := start; ; version++ {
		dir := dirFor(version)

		if _, err := t.FileInfo(dir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("cannot stat directory, stopping count", "dir", dir, "error", err)
			}

			return total
		}

		files, err := t.ListFiles(dir)
		if err != nil {
			slog.Warn("cannot count directory", "dir", dir, "error", err)
		}

		total += len(files)

		if version == math.MaxInt {
			return total
		}
	}
}
