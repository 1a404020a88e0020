package domain

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livesort.dev/pkg/livesort/internal/adapter"
	"livesort.dev/pkg/livesort/internal/controller"
	m "livesort.dev/pkg/livesort/internal/model"
)

type workflowFixture struct {
	root        string
	source      string
	quarantine  string
	destination string
	reports     string
	locker      *adapter.FlockRunLocker
	out         *bytes.Buffer
	workflow    Workflow
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	root := t.TempDir()
	f := &workflowFixture{
		root:        root,
		source:      filepath.Join(root, "DCIM", "Import"),
		quarantine:  filepath.Join(root, "Other"),
		destination: filepath.Join(root, "DCIM"),
		reports:     filepath.Join(root, "reports"),
		locker:      adapter.NewFlockRunLocker(t.TempDir()),
		out:         &bytes.Buffer{},
	}

	cmd := &cobra.Command{}
	cmd.SetOut(f.out)

	wf := NewWorkflow(
		adapter.NewLocalCaptureFSAdapter(),
		adapter.NewReportStore(),
		f.locker,
		controller.NewSimpleUI(cmd),
	)
	wf.(*workflow).now = func() time.Time { return captureTime }
	f.workflow = wf

	return f
}

func (f *workflowFixture) runArgs() RunArgs {
	return RunArgs{
		Source:      m.Path(f.source),
		Quarantine:  m.Path(f.quarantine),
		Destination: m.Path(f.destination),
		Reports:     m.Path(f.reports),
	}
}

func TestWorkflow_Run(t *testing.T) {
	f := newWorkflowFixture(t)

	writeCapture(t, f.source, "IMG_0001.MOV", captureTime)
	writeCapture(t, f.source, "IMG_0001.HEIC", captureTime)
	writeCapture(t, f.source, "IMG_0002.MOV", captureTime)
	writeCapture(t, f.source, "IMG_00025.JPG", captureTime)
	writeCapture(t, f.source, "IMG_9999.MOV", captureTime)
	writeCapture(t, f.source, "._IMG_0001.HEIC", captureTime)
	writeCapture(t, f.quarantine, "IMG_9999.MOV", captureTime)

	err := f.workflow.Run(context.Background(), f.runArgs())
	require.NoError(t, err)

	// Exact 8-character pair stays, repaired pair moves, leftovers are quarantined.
	assert.ElementsMatch(t, []string{"IMG_0001.HEIC", "IMG_0001.MOV"}, dirNames(t, f.source))
	assert.ElementsMatch(t, []string{"IMG_0002.jpg", "IMG_0002.mov"}, dirNames(t, filepath.Join(f.destination, "100APPLE")))
	assert.ElementsMatch(t, []string{"._IMG_0001.HEIC", "IMG_9999.MOV"}, dirNames(t, f.quarantine))
	assert.Equal(t, []string{"IMG_9999.MOV"}, dirNames(t, filepath.Join(f.root, "Other1")))

	report, err := adapter.NewReportStore().LoadLatestReport(m.Path(f.reports))
	require.NoError(t, err)

	assert.Equal(t, m.ReportSummary{
		Scanned:     6,
		ExactPairs:  1,
		FuzzyPairs:  1,
		Repairs:     1,
		Quarantined: 2,
		Distributed: 1,
	}, report.Summary)
	assert.Equal(t, m.Totals{DestinationFiles: 2, QuarantineFiles: 3}, report.Totals)
	assert.Equal(t, DefaultStartVersion, report.StartVersion)
	assert.True(t, report.StartedAt.Equal(captureTime))

	out := f.out.String()
	assert.Contains(t, out, "==> Scanning")
	assert.Contains(t, out, "==> Counting")
	assert.Contains(t, out, "-IMG_0002.MOV")
	assert.Contains(t, out, "+IMG_00025.MOV")
	assert.Contains(t, out, "Files in 100APPLE and later: 2")
}

func TestWorkflow_RunIncludeExact(t *testing.T) {
	f := newWorkflowFixture(t)

	writeCapture(t, f.source, "IMG_0001.MOV", captureTime)
	writeCapture(t, f.source, "IMG_0001.HEIC", captureTime)

	args := f.runArgs()
	args.IncludeExact = true
	args.Reports = ""

	require.NoError(t, f.workflow.Run(context.Background(), args))

	assert.Empty(t, dirNames(t, f.source))
	assert.ElementsMatch(t, []string{"IMG_0001.heic", "IMG_0001.mov"}, dirNames(t, filepath.Join(f.destination, "100APPLE")))
	requireMissing(t, f.reports)
}

func TestWorkflow_RunRefusesConcurrentRun(t *testing.T) {
	f := newWorkflowFixture(t)
	writeCapture(t, f.source, "IMG_9999.MOV", captureTime)

	release, err := f.locker.Acquire(m.Path(f.source))
	require.NoError(t, err)

	defer func() { _ = release() }()

	err = f.workflow.Run(context.Background(), f.runArgs())

	require.ErrorIs(t, err, adapter.ErrRunInProgress)
	assert.Equal(t, []string{"IMG_9999.MOV"}, dirNames(t, f.source))
	assert.Empty(t, f.out.String())
}

func TestWorkflow_RunValidatesArgs(t *testing.T) {
	f := newWorkflowFixture(t)

	args := f.runArgs()
	args.Quarantine = ""

	err := f.workflow.Run(context.Background(), args)
	require.EqualError(t, err, "quarantine directory is required")
}

func TestWorkflow_RunMissingSourceShowsNoSummary(t *testing.T) {
	f := newWorkflowFixture(t)

	err := f.workflow.Run(context.Background(), f.runArgs())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "index:")
	assert.NotContains(t, f.out.String(), "Files in")
	requireMissing(t, f.reports)
}

func TestWorkflow_Preview(t *testing.T) {
	f := newWorkflowFixture(t)

	writeCapture(t, f.source, "IMG_0002.MOV", captureTime)
	writeCapture(t, f.source, "IMG_00025.JPG", captureTime)
	writeCapture(t, f.source, "IMG_9999.MOV", captureTime)

	err := f.workflow.Preview(context.Background(), PreviewArgs{Source: m.Path(f.source)})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"IMG_0002.MOV", "IMG_00025.JPG", "IMG_9999.MOV"}, dirNames(t, f.source))

	out := f.out.String()
	assert.Contains(t, out, "+IMG_00025.MOV")
	assert.Contains(t, out, "Would quarantine 1 file(s):")
	assert.Contains(t, out, "IMG_9999.MOV")
}

func TestWorkflow_View(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := adapter.NewReportStore().SaveReport(m.Path(f.reports), m.RunReport{
		Quarantine:   m.Path(f.quarantine),
		StartVersion: 100,
		Totals:       m.Totals{DestinationFiles: 42, QuarantineFiles: 7},
	})
	require.NoError(t, err)

	require.NoError(t, f.workflow.View(context.Background(), ViewArgs{Reports: m.Path(f.reports)}))

	assert.Contains(t, f.out.String(), "Files in 100APPLE and later: 42")
	assert.Contains(t, f.out.String(), "Files in Other and siblings: 7")
}

func TestWorkflow_ViewWithoutReports(t *testing.T) {
	f := newWorkflowFixture(t)

	err := f.workflow.View(context.Background(), ViewArgs{Reports: m.Path(f.reports)})

	require.ErrorIs(t, err, adapter.ErrNoReports)
}

func TestWorkflow_RunLeavesExcludedFilesInPlace(t *testing.T) {
	f := newWorkflowFixture(t)

	writeCapture(t, f.source, "IMG_9999.MOV", captureTime)
	writeCapture(t, f.source, "livesort.yaml", captureTime)
	writeCapture(t, f.source, ".livesort.log", captureTime)

	args := f.runArgs()
	args.Exclude = []m.Path{
		m.Path(f.source + "/./livesort.yaml"),
		m.Path(filepath.Join(f.source, ".livesort.log")),
	}

	require.NoError(t, f.workflow.Run(context.Background(), args))

	assert.ElementsMatch(t, []string{".livesort.log", "livesort.yaml"}, dirNames(t, f.source))
	assert.Equal(t, []string{"IMG_9999.MOV"}, dirNames(t, f.quarantine))

	report, err := adapter.NewReportStore().LoadLatestReport(m.Path(f.reports))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Scanned)
	assert.Equal(t, 1, report.Summary.Quarantined)
}

func TestWorkflow_PreviewHidesExcludedFiles(t *testing.T) {
	f := newWorkflowFixture(t)

	writeCapture(t, f.source, "IMG_9999.MOV", captureTime)
	config := writeCapture(t, f.source, "livesort.yaml", captureTime)

	err := f.workflow.Preview(context.Background(), PreviewArgs{
		Source:  m.Path(f.source),
		Exclude: []m.Path{config},
	})
	require.NoError(t, err)

	assert.Contains(t, f.out.String(), "Would quarantine 1 file(s):")
	assert.NotContains(t, f.out.String(), "livesort.yaml")
}
