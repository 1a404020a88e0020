package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"livesort.dev/pkg/livesort/internal/adapter"
	m "livesort.dev/pkg/livesort/internal/model"
)

const (
	// DefaultStartVersion is the first versioned destination, 100APPLE.
	DefaultStartVersion = 100
	// VersionedDirSuffix follows the version number in destination names.
	VersionedDirSuffix = "APPLE"

	motionExt = "mov"
)

// DistributeArgs configures one distribution pass.
type DistributeArgs struct {
	Source       m.Path
	Destination  m.Path
	StartVersion int
	// IncludeExact also distributes motion files whose stem is exactly the
	// canonical 8 characters; by default only repaired, longer stems move.
	IncludeExact bool
}

// DistributionResult lists what was moved and what was left behind.
type DistributionResult struct {
	Distributed []m.DistributedPair
	Skipped     []m.SkippedPair
}

// Distributor relocates canonical pairs into versioned directories.
type Distributor interface {
	Distribute(args DistributeArgs) (DistributionResult, error)
}

type distributor struct {
	fs    adapter.CaptureFSAdapter
	mover SafeMover
}

// NewDistributor creates a Distributor.
func NewDistributor(fsAdapter adapter.CaptureFSAdapter, mover SafeMover) Distributor {
	return &distributor{fs: fsAdapter, mover: mover}
}

// Distribute rescans the source directory and moves each motion file and its
// same-stem still to <prefix>.mov and <prefix>.<ext> in the first versioned
// directory holding neither name. The two moves are not atomic: a failed
// still move after a successful motion move aborts with the pair split.
func (d *distributor) Distribute(args DistributeArgs) (DistributionResult, error) {
	var result DistributionResult

	if args.StartVersion <= 0 {
		args.StartVersion = DefaultStartVersion
	}

	entries, err := d.fs.ListFiles(args.Source)
	if err != nil {
		return result, fmt.Errorf("rescan %s: %w", args.Source, err)
	}

	files := make([]m.CaptureFile, 0, len(entries))
	stills := make(map[string][]m.CaptureFile)

	for _, entry := range entries {
		file := NewCaptureFile(entry)
		files = append(files, file)

		if file.Kind.IsStill() {
			stills[file.Stem] = append(stills[file.Stem], file)
		}
	}

	used := make(map[m.Path]struct{})

	for _, motion := range files {
		if !distributable(motion, args.IncludeExact) {
			continue
		}

		still, ok := siblingStill(stills[motion.Stem], used)
		if !ok {
			slog.Debug("no sibling still, leaving motion in place", "motion", motion.Path)
			result.Skipped = append(result.Skipped, m.SkippedPair{Motion: motion.Path, Reason: m.SkipNoSibling})

			continue
		}

		pair, err := d.place(args, motion, still)
		if errors.Is(err, errMotionNotMoved) {
			slog.Warn("could not move motion file, skipping pair", "motion", motion.Path, "error", err)
			result.Skipped = append(result.Skipped, m.SkippedPair{
				Motion: motion.Path,
				Reason: m.SkipMoveFailed,
				Error:  err.Error(),
			})

			continue
		}

		if err != nil {
			return result, err
		}

		used[still.Path] = struct{}{}
		result.Distributed = append(result.Distributed, pair)

		slog.Info("distributed pair", "prefix", pair.Prefix, "dir", pair.Directory)
	}

	return result, nil
}

var errMotionNotMoved = errors.New("motion file not moved")

func (d *distributor) place(args DistributeArgs, motion, still m.CaptureFile) (m.DistributedPair, error) {
	prefix := motion.Stem[:PrefixLength]
	motionName := prefix + "." + motionExt
	stillName := prefix + "." + strings.ToLower(still.Ext)

	dir, err := d.claimSlot(args, motionName, stillName)
	if err != nil {
		return m.DistributedPair{}, err
	}

	pair := m.DistributedPair{
		Prefix:    prefix,
		Directory: dir,
		Motion:    m.MoveRecord{From: motion.Path, To: d.fs.JoinPath(string(dir), motionName)},
		Still:     m.MoveRecord{From: still.Path, To: d.fs.JoinPath(string(dir), stillName)},
	}

	if err := d.mover.Place(pair.Motion.From, pair.Motion.To); err != nil {
		return m.DistributedPair{}, fmt.Errorf("%w: %w", errMotionNotMoved, err)
	}

	if err := d.mover.Place(pair.Still.From, pair.Still.To); err != nil {
		return m.DistributedPair{}, fmt.Errorf("split pair %s: motion moved to %s but still %s was not: %w",
			prefix, pair.Motion.To, pair.Still.From, err)
	}

	return pair, nil
}

// claimSlot scans <destination>/<N>APPLE upward from the start version and
// returns the first directory free of both names, creating it if needed.
func (d *distributor) claimSlot(args DistributeArgs, names ...string) (m.Path, error) {
	for version := args.StartVersion; ; version++ {
		dir := VersionedDir(d.fs, args.Destination, version)

		info, err := d.fs.FileInfo(dir)

		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := d.fs.MkdirAll(dir); err != nil {
				return "", fmt.Errorf("create %s: %w", dir, err)
			}

			return dir, nil
		case err != nil:
			return "", fmt.Errorf("stat %s: %w", dir, err)
		case info.IsDir():
			taken, err := d.occupied(dir, names)
			if err != nil {
				return "", err
			}

			if !taken {
				return dir, nil
			}
		}

		if version == math.MaxInt {
			return "", fmt.Errorf("%w under %s", ErrNoFreeSibling, args.Destination)
		}
	}
}

// occupied compares names case-insensitively so the result does not depend on
// the filesystem's case sensitivity. Unlike a motion-only check, an orphan
// <prefix>.<ext> still also makes the directory unusable for the pair.
func (d *distributor) occupied(dir m.Path, names []string) (bool, error) {
	entries, err := d.fs.ListFiles(dir)
	if err != nil {
		return false, fmt.Errorf("list %s: %w", dir, err)
	}

	for _, name := range names {
		for _, entry := range entries {
			if strings.EqualFold(entry.Name, name) {
				return true, nil
			}
		}

		taken, err := d.fs.Exists(d.fs.JoinPath(string(dir), name))
		if err != nil {
			return false, fmt.Errorf("check %s: %w", dir, err)
		}

		if taken {
			return true, nil
		}
	}

	return false, nil
}

// VersionedDir returns <destination>/<version>APPLE.
func VersionedDir(fsAdapter adapter.CaptureFSAdapter, destination m.Path, version int) m.Path {
	return fsAdapter.JoinPath(string(destination), strconv.Itoa(version)+VersionedDirSuffix)
}

func distributable(file m.CaptureFile, includeExact bool) bool {
	if file.Kind != m.KindMotionMOV || file.Sidecar || !strings.HasPrefix(file.Stem, CapturePrefix) {
		return false
	}

	if len(file.Stem) < PrefixLength || !utf8.ValidString(file.Stem[:PrefixLength]) {
		return false
	}

	return includeExact || len(file.Stem) > PrefixLength
}

// siblingStill prefers HEIC over JPEG; within a kind the first in name order wins.
func siblingStill(candidates []m.CaptureFile, used map[m.Path]struct{}) (m.CaptureFile, bool) {
	for _, kind := range []m.Kind{m.KindStillHEIC, m.KindStillJPEG} {
		for _, still := range candidates {
			if _, taken := used[still.Path]; taken || still.Kind != kind {
				continue
			}

			return still, true
		}
	}

	return m.CaptureFile{}, false
}
