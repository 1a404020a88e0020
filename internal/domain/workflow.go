package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"livesort.dev/pkg/livesort/internal/adapter"
	"livesort.dev/pkg/livesort/internal/controller"
	m "livesort.dev/pkg/livesort/internal/model"
)

// RunArgs contains the arguments for a full organize run.
type RunArgs struct {
	Source       m.Path
	Quarantine   m.Path
	Destination  m.Path
	StartVersion int
	IncludeExact bool
	// Reports is the directory the run report is saved to; empty disables saving.
	Reports m.Path
	// Exclude lists files the tool itself keeps (config, log) that a scan of
	// the source directory must never see.
	Exclude []m.Path
}

// PreviewArgs contains the arguments for a dry matching pass.
type PreviewArgs struct {
	Source  m.Path
	Exclude []m.Path
}

// ViewArgs contains the arguments for showing a saved report.
type ViewArgs struct {
	Reports m.Path
}

// Workflow defines the organize, preview and view use cases.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) error
	Preview(ctx context.Context, args PreviewArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.CaptureFSAdapter
	adapter.ReportStore
	adapter.RunLocker
	controller.UI

	now func() time.Time
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.CaptureFSAdapter,
	reportStore adapter.ReportStore,
	runLocker adapter.RunLocker,
	ui controller.UI,
) Workflow {
	return &workflow{
		CaptureFSAdapter: fsAdapter,
		ReportStore:      reportStore,
		RunLocker:        runLocker,
		UI:               ui,
		now:              time.Now,
	}
}

// Run executes index, match, quarantine, distribute and tally in order.
// Any fatal error aborts the run without a summary.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	if err := validateRunArgs(args); err != nil {
		return err
	}

	release, err := w.Acquire(args.Source)
	if err != nil {
		return fmt.Errorf("lock %s: %w", args.Source, err)
	}

	defer func() {
		if releaseErr := release(); releaseErr != nil {
			slog.Warn("failed to release run lock", "source", args.Source, "error", releaseErr)
		}
	}()

	if err := w.Start(ctx, controller.WithRunMode()); err != nil {
		return fmt.Errorf("start UI: %w", err)
	}
	defer w.Close(ctx)

	report, err := w.organize(ctx, args)
	if err != nil {
		return err
	}

	if args.Reports != "" {
		path, err := w.SaveReport(args.Reports, report)
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}

		slog.Info("saved run report", "path", path)
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display report: %w", err)
	}

	w.Wait(ctx)

	return nil
}

func (w *workflow) organize(ctx context.Context, args RunArgs) (m.RunReport, error) {
	report := m.RunReport{
		Source:       args.Source,
		Quarantine:   args.Quarantine,
		Destination:  args.Destination,
		StartVersion: args.StartVersion,
		StartedAt:    w.now(),
	}

	if report.StartVersion <= 0 {
		report.StartVersion = DefaultStartVersion
	}

	slog.Info("starting run", "source", args.Source, "quarantine", args.Quarantine, "destination", args.Destination)

	w.DisplayPhase(ctx, controller.PhaseIndex, args.Source)

	snap, err := NewFileIndexer(w).Index(args.Source)
	if err != nil {
		return report, fmt.Errorf("index: %w", err)
	}

	snap = withoutExcluded(snap, args.Exclude)
	report.Scanned = len(snap.All)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	w.DisplayPhase(ctx, controller.PhaseMatch, args.Source)

	plan := NewPairMatcher(w).Match(snap)
	report.ExactPairs = plan.CountByKind(m.MatchExactHEIC) + plan.CountByKind(m.MatchExactJPEG)
	report.FuzzyPairs = plan.CountByKind(m.MatchFuzzy)
	report.Repairs = plan.Repairs

	if err := ctx.Err(); err != nil {
		return report, err
	}

	mover := NewSafeMover(w)

	w.DisplayPhase(ctx, controller.PhaseQuarantine, args.Quarantine)

	report.Quarantined, err = NewQuarantine(mover).Quarantine(snap.All, plan.Kept, args.Quarantine)
	if err != nil {
		return report, fmt.Errorf("quarantine: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	w.DisplayPhase(ctx, controller.PhaseDistribute, args.Destination)

	result, err := NewDistributor(w, mover).Distribute(DistributeArgs{
		Source:       args.Source,
		Destination:  args.Destination,
		StartVersion: report.StartVersion,
		IncludeExact: args.IncludeExact,
	})
	if err != nil {
		return report, fmt.Errorf("distribute: %w", err)
	}

	report.Distributed = result.Distributed
	report.Skipped = result.Skipped

	w.DisplayPhase(ctx, controller.PhaseTally, args.Destination)

	report.Totals, err = NewTally(w).Tally(TallyArgs{
		Destination:  args.Destination,
		StartVersion: report.StartVersion,
		Quarantine:   args.Quarantine,
	})
	if err != nil {
		return report, fmt.Errorf("tally: %w", err)
	}

	report.FinishedAt = w.now()
	report.Finalize()

	slog.Info("run finished",
		"scanned", report.Summary.Scanned,
		"repairs", report.Summary.Repairs,
		"quarantined", report.Summary.Quarantined,
		"distributed", report.Summary.Distributed,
		"skipped", report.Summary.Skipped,
		"duration", report.Duration(),
	)

	return report, nil
}

// Preview indexes and matches the source directory without touching it.
func (w *workflow) Preview(ctx context.Context, args PreviewArgs) error {
	if args.Source == "" {
		return errors.New("source directory is required")
	}

	if err := w.Start(ctx, controller.WithPreviewMode()); err != nil {
		return fmt.Errorf("start UI: %w", err)
	}
	defer w.Close(ctx)

	w.DisplayPhase(ctx, controller.PhaseIndex, args.Source)

	snap, err := NewFileIndexer(w).Index(args.Source)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	snap = withoutExcluded(snap, args.Exclude)

	w.DisplayPhase(ctx, controller.PhaseMatch, args.Source)

	plan := NewPairMatcher(NewDryRenamer(w)).Match(snap)

	if err := w.DisplayPlan(ctx, plan); err != nil {
		return fmt.Errorf("display plan: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// View shows the most recent report saved in the reports directory.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadLatestReport(args.Reports)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return fmt.Errorf("start UI: %w", err)
	}
	defer w.Close(ctx)

	if err := w.DisplayReport(ctx, report); err != nil {
		return fmt.Errorf("display report: %w", err)
	}

	w.Wait(ctx)

	return nil
}

// withoutExcluded drops the excluded files from the snapshot. Paths are
// compared in absolute form so "./livesort.yaml" matches "livesort.yaml".
func withoutExcluded(snap m.Snapshot, exclude []m.Path) m.Snapshot {
	if len(exclude) == 0 {
		return snap
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, path := range exclude {
		skip[absPath(path)] = struct{}{}
	}

	out := m.NewSnapshot(snap.Dir)

	for _, file := range snap.All {
		if _, ok := skip[absPath(file.Path)]; ok {
			slog.Debug("leaving own file out of the scan", "path", file.Path)
			continue
		}

		out.All = append(out.All, file)

		if table := out.Table(file.Kind); table != nil && !file.Sidecar {
			if kept, ok := snap.Table(file.Kind)[file.Stem]; ok && kept.Path == file.Path {
				table[file.Stem] = file
			}
		}
	}

	return out
}

func absPath(path m.Path) string {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return filepath.Clean(string(path))
	}

	return abs
}

func validateRunArgs(args RunArgs) error {
	switch {
	case args.Source == "":
		return errors.New("source directory is required")
	case args.Quarantine == "":
		return errors.New("quarantine directory is required")
	case args.Destination == "":
		return errors.New("destination directory is required")
	}

	return nil
}
