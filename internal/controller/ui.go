// Package controller provides output adapters for displaying livesort runs.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "livesort.dev/pkg/livesort/internal/model"
)

// Phase identifies a step of a run.
type Phase string

// Phases in execution order.
const (
	PhaseIndex      Phase = "index"
	PhaseMatch      Phase = "match"
	PhaseQuarantine Phase = "quarantine"
	PhaseDistribute Phase = "distribute"
	PhaseTally      Phase = "tally"
)

// Title returns a human readable label for the phase.
func (p Phase) Title() string {
	switch p {
	case PhaseIndex:
		return "Scanning"
	case PhaseMatch:
		return "Matching and repairing"
	case PhaseQuarantine:
		return "Quarantining"
	case PhaseDistribute:
		return "Distributing"
	case PhaseTally:
		return "Counting"
	default:
		return string(p)
	}
}

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRun StartMode = iota
	ModePreview
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRunMode sets the UI to full run mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithPreviewMode sets the UI to preview mode.
func WithPreviewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModePreview
	}
}

// WithViewMode sets the UI to report viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

func applyStartOptions(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeRun}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines how run progress, previews and reports are shown.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayPhase(ctx context.Context, phase Phase, target m.Path)
	DisplayPlan(ctx context.Context, plan m.MatchPlan) error
	DisplayReport(ctx context.Context, report m.RunReport) error
}

// NewUI picks the TUI for interactive terminals and SimpleUI otherwise.
func NewUI(cmd *cobra.Command, useTTY bool) UI {
	if useTTY {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
