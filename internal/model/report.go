package model

import "time"

// MoveRecord describes one file relocation.
type MoveRecord struct {
	From Path `yaml:"from"`
	To   Path `yaml:"to"`
}

// DistributedPair is a motion/still pair relocated into a versioned directory.
type DistributedPair struct {
	Prefix    string     `yaml:"prefix"`
	Directory Path       `yaml:"directory"`
	Motion    MoveRecord `yaml:"motion"`
	Still     MoveRecord `yaml:"still"`
}

// SkipReason explains why a motion file was left in the source directory.
type SkipReason string

const (
	// SkipNoSibling means no still with the same stem was found.
	SkipNoSibling SkipReason = "no_sibling_still"
	// SkipMoveFailed means the motion file could not be moved.
	SkipMoveFailed SkipReason = "move_failed"
)

// SkippedPair records a motion file the distributor did not relocate.
type SkippedPair struct {
	Motion Path       `yaml:"motion"`
	Reason SkipReason `yaml:"reason"`
	Error  string     `yaml:"error,omitempty"`
}

// Totals are the final file counts of the destination and quarantine trees.
type Totals struct {
	DestinationFiles int `yaml:"destination_files"`
	QuarantineFiles  int `yaml:"quarantine_files"`
}

// ReportSummary is derived from the report items by Finalize.
type ReportSummary struct {
	Scanned     int `yaml:"scanned"`
	ExactPairs  int `yaml:"exact_pairs"`
	FuzzyPairs  int `yaml:"fuzzy_pairs"`
	Repairs     int `yaml:"repairs"`
	Quarantined int `yaml:"quarantined"`
	Distributed int `yaml:"distributed"`
	Skipped     int `yaml:"skipped"`
}

// RunReport is the persisted and displayed outcome of one run.
type RunReport struct {
	Source      Path `yaml:"source"`
	Quarantine  Path `yaml:"quarantine"`
	Destination Path `yaml:"destination"`

	StartVersion int `yaml:"start_version"`

	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	Scanned    int `yaml:"scanned"`
	ExactPairs int `yaml:"exact_pairs"`
	FuzzyPairs int `yaml:"fuzzy_pairs"`

	Summary     ReportSummary     `yaml:"summary"`
	Totals      Totals            `yaml:"totals"`
	Repairs     []RepairRecord    `yaml:"repairs"`
	Quarantined []MoveRecord      `yaml:"quarantined"`
	Distributed []DistributedPair `yaml:"distributed"`
	Skipped     []SkippedPair     `yaml:"skipped"`
}

// Finalize normalizes times to UTC and recomputes the summary.
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	r.Summary = ReportSummary{
		Scanned:     r.Scanned,
		ExactPairs:  r.ExactPairs,
		FuzzyPairs:  r.FuzzyPairs,
		Repairs:     len(r.Repairs),
		Quarantined: len(r.Quarantined),
		Distributed: len(r.Distributed),
		Skipped:     len(r.Skipped),
	}
}

// Duration returns how long the run took.
func (r RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
