package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	m "livesort.dev/pkg/livesort/internal/model"
)

// ErrRepairTargetExists is returned when a repair would overwrite another file.
var ErrRepairTargetExists = errors.New("repair target already exists")

// Renamer is the slice of the filesystem the matcher needs to repair names.
type Renamer interface {
	Exists(path m.Path) (bool, error)
	Rename(src, dst m.Path) error
}

// PairMatcher pairs motion files with their stills and repairs fuzzy matches.
type PairMatcher interface {
	Match(snap m.Snapshot) m.MatchPlan
}

type pairMatcher struct {
	renamer Renamer
}

// NewPairMatcher creates a PairMatcher that repairs names through renamer.
func NewPairMatcher(renamer Renamer) PairMatcher {
	return &pairMatcher{renamer: renamer}
}

// Match walks motion files in stem order. Each motion file tries ExactHEIC,
// then ExactJPEG, then Fuzzy, stopping at the first hit. A still is consumed
// by at most one pair.
func (pm *pairMatcher) Match(snap m.Snapshot) m.MatchPlan {
	plan := m.MatchPlan{
		Kept:      m.NewKeptSet(),
		Processed: m.NewProcessedStills(),
	}
	renamed := make(map[m.Path]struct{})

	for _, stem := range snap.MotionStems() {
		motion := snap.MOV[stem]

		pair, ok := pm.find(snap, motion, plan.Processed)
		if !ok {
			slog.Debug("no still for motion file", "motion", motion.Path)
			continue
		}

		consumed := pair.Still.Path

		if pair.Match == m.MatchFuzzy {
			repaired, record, err := pm.repair(pair)
			if err != nil {
				slog.Warn("fuzzy repair failed, leaving pair unmatched",
					"motion", pair.Motion.Path,
					"still", pair.Still.Path,
					"error", err,
				)

				continue
			}

			if record.OriginalMotion != record.RepairedMotion {
				renamed[record.OriginalMotion] = struct{}{}
			}

			if record.OriginalStill != record.RepairedStill {
				renamed[record.OriginalStill] = struct{}{}
			}

			plan.Repairs = append(plan.Repairs, record)
			pair = repaired

			slog.Info("repaired fuzzy pair",
				"motion", record.RepairedMotion,
				"still", record.RepairedStill,
			)
		}

		if !plan.Processed.Consume(consumed) {
			slog.Error("still already consumed by another pair, skipping", "still", consumed, "motion", pair.Motion.Path)
			continue
		}

		plan.Kept.Add(pair.Motion.Path, pair.Still.Path)
		plan.Pairs = append(plan.Pairs, pair)
	}

	for _, file := range snap.All {
		if plan.Kept.Has(file.Path) {
			continue
		}

		if _, gone := renamed[file.Path]; gone {
			continue
		}

		plan.Unmatched = append(plan.Unmatched, file)
	}

	return plan
}

func (pm *pairMatcher) find(snap m.Snapshot, motion m.CaptureFile, processed m.ProcessedStills) (m.PairCandidate, bool) {
	if still, ok := exactStill(snap.HEIC, motion, processed); ok {
		return m.PairCandidate{Motion: motion, Still: still, Match: m.MatchExactHEIC}, true
	}

	if still, ok := exactStill(snap.JPEG, motion, processed); ok {
		return m.PairCandidate{Motion: motion, Still: still, Match: m.MatchExactJPEG}, true
	}

	candidates := fuzzyCandidates(snap, motion, processed)

	switch len(candidates) {
	case 0:
		return m.PairCandidate{}, false
	case 1:
		return m.PairCandidate{Motion: motion, Still: candidates[0], Match: m.MatchFuzzy}, true
	default:
		slog.Info("ambiguous fuzzy match, not guessing",
			"motion", motion.Path,
			"candidates", len(candidates),
		)

		return m.PairCandidate{}, false
	}
}

func exactStill(table map[string]m.CaptureFile, motion m.CaptureFile, processed m.ProcessedStills) (m.CaptureFile, bool) {
	still, ok := table[motion.Stem]
	if !ok || !still.SameTime(motion) || processed.Has(still.Path) {
		return m.CaptureFile{}, false
	}

	return still, true
}

// fuzzyCandidates returns the unconsumed stills sharing the motion's time and
// 8-character prefix. Only motion stems of the form IMG_xxxx... qualify.
func fuzzyCandidates(snap m.Snapshot, motion m.CaptureFile, processed m.ProcessedStills) []m.CaptureFile {
	if !strings.HasPrefix(motion.Stem, CapturePrefix) || len(motion.Stem) < PrefixLength {
		return nil
	}

	prefix := motion.Stem[:PrefixLength]
	if !utf8.ValidString(prefix) {
		return nil
	}

	var candidates []m.CaptureFile

	for _, table := range []map[string]m.CaptureFile{snap.HEIC, snap.JPEG} {
		for _, still := range table {
			if processed.Has(still.Path) || !still.SameTime(motion) || !strings.HasPrefix(still.Stem, prefix) {
				continue
			}

			candidates = append(candidates, still)
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })

	return candidates
}

// repair renames the member with the shorter stem so it adopts the longer
// stem. On equal lengths the motion file takes the still's stem.
func (pm *pairMatcher) repair(pair m.PairCandidate) (m.PairCandidate, m.RepairRecord, error) {
	record := m.RepairRecord{
		OriginalMotion: pair.Motion.Path,
		OriginalStill:  pair.Still.Path,
	}

	target, stem := &pair.Motion, pair.Still.Stem
	if len(pair.Motion.Stem) > len(pair.Still.Stem) {
		target, stem = &pair.Still, pair.Motion.Stem
	}

	dst := m.Path(filepath.Join(filepath.Dir(string(target.Path)), stem+"."+target.Ext))

	exists, err := pm.renamer.Exists(dst)
	if err != nil {
		return m.PairCandidate{}, m.RepairRecord{}, fmt.Errorf("check %s: %w", dst, err)
	}

	if exists {
		return m.PairCandidate{}, m.RepairRecord{}, fmt.Errorf("%w: %s", ErrRepairTargetExists, dst)
	}

	if err := pm.renamer.Rename(target.Path, dst); err != nil {
		return m.PairCandidate{}, m.RepairRecord{}, fmt.Errorf("rename %s: %w", target.Path, err)
	}

	*target = target.WithPath(dst)

	record.RepairedMotion = pair.Motion.Path
	record.RepairedStill = pair.Still.Path

	return pair, record, nil
}
