package model

import "sort"

// MatchKind describes how a motion file was paired with its still.
type MatchKind string

const (
	// MatchExactHEIC pairs a motion file with a HEIC still of identical stem and time.
	MatchExactHEIC MatchKind = "exact-heic"
	// MatchExactJPEG pairs a motion file with a JPEG still of identical stem and time.
	MatchExactJPEG MatchKind = "exact-jpeg"
	// MatchFuzzy pairs files that share the 8-character prefix and the time.
	MatchFuzzy MatchKind = "fuzzy"
)

// PairCandidate is a motion file together with the still it was matched to.
type PairCandidate struct {
	Motion CaptureFile
	Still  CaptureFile
	Match  MatchKind
}

// RepairRecord logs one fuzzy repair: the paths of both members before and after.
type RepairRecord struct {
	OriginalMotion Path `yaml:"original_motion"`
	OriginalStill  Path `yaml:"original_still"`
	RepairedMotion Path `yaml:"repaired_motion"`
	RepairedStill  Path `yaml:"repaired_still"`
}

// KeptSet holds the exact final paths that must survive quarantine.
type KeptSet map[Path]struct{}

// NewKeptSet returns an empty KeptSet.
func NewKeptSet() KeptSet {
	return make(KeptSet)
}

// Add inserts the paths into the set.
func (k KeptSet) Add(paths ...Path) {
	for _, p := range paths {
		k[p] = struct{}{}
	}
}

// Has reports exact-path membership.
func (k KeptSet) Has(p Path) bool {
	_, ok := k[p]
	return ok
}

// Sorted returns the members in lexical order.
func (k KeptSet) Sorted() []Path {
	out := make([]Path, 0, len(k))
	for p := range k {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// ProcessedStills holds the still paths already consumed by a pair.
type ProcessedStills map[Path]struct{}

// NewProcessedStills returns an empty ProcessedStills set.
func NewProcessedStills() ProcessedStills {
	return make(ProcessedStills)
}

// Consume marks the still as used. It returns false if it was already consumed.
func (p ProcessedStills) Consume(still Path) bool {
	if _, ok := p[still]; ok {
		return false
	}

	p[still] = struct{}{}

	return true
}

// Has reports whether the still has been consumed.
func (p ProcessedStills) Has(still Path) bool {
	_, ok := p[still]
	return ok
}

// Snapshot is the result of scanning one directory.
type Snapshot struct {
	Dir  Path
	HEIC map[string]CaptureFile
	JPEG map[string]CaptureFile
	MOV  map[string]CaptureFile
	All  []CaptureFile // every regular file in name order, sidecars included
}

// NewSnapshot returns an empty snapshot for dir.
func NewSnapshot(dir Path) Snapshot {
	return Snapshot{
		Dir:  dir,
		HEIC: make(map[string]CaptureFile),
		JPEG: make(map[string]CaptureFile),
		MOV:  make(map[string]CaptureFile),
	}
}

// MotionStems returns the stems of all motion files in ascending order.
func (s Snapshot) MotionStems() []string {
	stems := make([]string, 0, len(s.MOV))
	for stem := range s.MOV {
		stems = append(stems, stem)
	}

	sort.Strings(stems)

	return stems
}

// MatchPlan is the outcome of a matching pass.
type MatchPlan struct {
	Pairs     []PairCandidate
	Repairs   []RepairRecord
	Kept      KeptSet
	Processed ProcessedStills
	Unmatched []CaptureFile // files of the snapshot that will be quarantined
}

// CountByKind returns how many pairs were formed with the given match kind.
func (p MatchPlan) CountByKind(kind MatchKind) int {
	n := 0

	for _, pair := range p.Pairs {
		if pair.Match == kind {
			n++
		}
	}

	return n
}

// Table returns the stem mapping holding files of kind, or nil for Unclassified.
func (s Snapshot) Table(kind Kind) map[string]CaptureFile {
	switch kind {
	case KindStillHEIC:
		return s.HEIC
	case KindStillJPEG:
		return s.JPEG
	case KindMotionMOV:
		return s.MOV
	default:
		return nil
	}
}
