package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "livesort.dev/pkg/livesort/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd  *cobra.Command
	mode StartMode
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mode = applyStartOptions(options).mode

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayPhase prints the phase about to start.
func (s *SimpleUI) DisplayPhase(ctx context.Context, phase Phase, target m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("==> %s %s\n", phase.Title(), target)
}

// DisplayPlan prints the pairs, repairs and quarantine candidates of a preview.
func (s *SimpleUI) DisplayPlan(ctx context.Context, plan m.MatchPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(plan.Pairs) == 0 {
		s.printf("\nNo Live Photo pairs found.\n")
	} else {
		s.printf("\n%s", renderPairsTable(plan.Pairs))
	}

	s.printRepairs("Planned repairs", plan.Repairs)

	if len(plan.Unmatched) > 0 {
		s.printf("\nWould quarantine %d file(s):\n", len(plan.Unmatched))

		for _, file := range plan.Unmatched {
			s.printf("  %s\n", file.Name)
		}
	}

	return nil
}

// DisplayReport prints the final summary of a run.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(report))
	s.printRepairs("Repaired fuzzy pairs", report.Repairs)

	if len(report.Distributed) > 0 {
		s.printf("\n%s", renderDistributedTable(report.Distributed))
	}

	for _, skipped := range report.Skipped {
		s.printf("skipped %s: %s\n", skipped.Motion.Base(), skipped.Reason)
	}

	s.printf("\nFiles in %dAPPLE and later: %d\n", versionOf(report), report.Totals.DestinationFiles)
	s.printf("Files in %s and siblings: %d\n", report.Quarantine.Base(), report.Totals.QuarantineFiles)

	return nil
}

func (s *SimpleUI) printRepairs(title string, repairs []m.RepairRecord) {
	if len(repairs) == 0 {
		s.printf("\nNo fuzzy repairs.\n")
		return
	}

	s.printf("\n%s: %d\n", title, len(repairs))

	for i, repair := range repairs {
		s.printf("\nRepair %d:\n%s", i+1, renderRepairDiff(repair))
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func renderPairsTable(pairs []m.PairCandidate) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Motion", "Still", "Match"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, pair := range pairs {
		table.Append([]string{pair.Motion.Name, pair.Still.Name, string(pair.Match)})
	}

	table.SetFooter([]string{"", fmt.Sprintf("Pairs %d", len(pairs)), ""})
	table.Render()

	return tableBuffer.String()
}

func renderSummaryTable(report m.RunReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Result", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	rows := [][]string{
		{"scanned", strconv.Itoa(report.Summary.Scanned)},
		{"exact pairs", strconv.Itoa(report.Summary.ExactPairs)},
		{"fuzzy pairs", strconv.Itoa(report.Summary.FuzzyPairs)},
		{"repairs", strconv.Itoa(report.Summary.Repairs)},
		{"quarantined", strconv.Itoa(report.Summary.Quarantined)},
		{"distributed", strconv.Itoa(report.Summary.Distributed)},
		{"skipped", strconv.Itoa(report.Summary.Skipped)},
	}
	table.AppendBulk(rows)
	table.Render()

	return tableBuffer.String()
}

func renderDistributedTable(pairs []m.DistributedPair) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Directory", "Motion", "Still"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, pair := range pairs {
		table.Append([]string{pair.Directory.Base(), pair.Motion.To.Base(), pair.Still.To.Base()})
	}

	table.Render()

	return tableBuffer.String()
}

// renderRepairDiff shows a repair as a unified diff of the two file names.
func renderRepairDiff(repair m.RepairRecord) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(repair.OriginalMotion.Base() + "\n" + repair.OriginalStill.Base()),
		B:        difflib.SplitLines(repair.RepairedMotion.Base() + "\n" + repair.RepairedStill.Base()),
		FromFile: "original",
		ToFile:   "repaired",
		Context:  1,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("  %s, %s -> %s, %s\n",
			repair.OriginalMotion.Base(), repair.OriginalStill.Base(),
			repair.RepairedMotion.Base(), repair.RepairedStill.Base())
	}

	return text
}

// versionOf returns the number of the first versioned directory the report
// counted from.
func versionOf(report m.RunReport) int {
	if report.StartVersion > 0 {
		return report.StartVersion
	}

	return 100
}
