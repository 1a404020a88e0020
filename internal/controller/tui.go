package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "livesort.dev/pkg/livesort/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	phaseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// headerLines and footerLines are the rows the viewer reserves around the viewport.
const (
	headerLines = 2
	footerLines = 2
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
	mode   StartMode
	height int
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start records the mode and the terminal height.
func (p *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mode = applyStartOptions(options).mode

	if f, ok := p.output.(*os.File); ok {
		if _, height, err := term.GetSize(int(f.Fd())); err == nil {
			p.height = height
		}
	}

	return nil
}

// Close finalizes the UI.
func (p *TUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait is a no-op; the report viewer blocks inside DisplayReport.
func (p *TUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayPhase prints a styled progress line.
func (p *TUI) DisplayPhase(ctx context.Context, phase Phase, target m.Path) {
	if err := ctx.Err(); err != nil {
		return
	}

	_, _ = fmt.Fprintf(p.output, "%s %s\n", phaseStyle.Render("▶ "+phase.Title()), dimStyle.Render(string(target)))
}

// DisplayPlan shows a preview, paging it when it does not fit the terminal.
func (p *TUI) DisplayPlan(ctx context.Context, plan m.MatchPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return p.show("livesort - preview", renderPlanText(plan))
}

// DisplayReport shows the run summary, paging it when it does not fit the terminal.
func (p *TUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := "livesort - run summary"
	if p.mode == ModeView {
		title = "livesort - saved report"
	}

	return p.show(title, renderReportText(report))
}

func (p *TUI) show(title, content string) error {
	model := newReportViewer(title, content)

	// If content is small, just print and exit
	if !model.needsPaging(p.height) {
		_, err := fmt.Fprint(p.output, model.static())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func renderPlanText(plan m.MatchPlan) string {
	var b strings.Builder

	if len(plan.Pairs) == 0 {
		b.WriteString("  📭 No Live Photo pairs found\n")
	}

	for _, pair := range plan.Pairs {
		fmt.Fprintf(&b, "  %s + %s %s\n", pair.Motion.Name, pair.Still.Name, dimStyle.Render(string(pair.Match)))
	}

	writeRepairs(&b, plan.Repairs)

	if len(plan.Unmatched) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", warnStyle.Render(fmt.Sprintf("Would quarantine %d file(s):", len(plan.Unmatched))))

		for _, file := range plan.Unmatched {
			fmt.Fprintf(&b, "    %s\n", file.Name)
		}
	}

	return b.String()
}

func renderReportText(report m.RunReport) string {
	var b strings.Builder

	s := report.Summary
	fmt.Fprintf(&b, "  📊 Scanned %d file(s): %s exact, %s fuzzy\n",
		s.Scanned, okStyle.Render(fmt.Sprint(s.ExactPairs)), warnStyle.Render(fmt.Sprint(s.FuzzyPairs)))
	fmt.Fprintf(&b, "  📦 Distributed %d pair(s), quarantined %d file(s), skipped %d\n",
		s.Distributed, s.Quarantined, s.Skipped)

	writeRepairs(&b, report.Repairs)

	if len(report.Distributed) > 0 {
		b.WriteString("\n  Distributed:\n")

		for _, pair := range report.Distributed {
			fmt.Fprintf(&b, "    %s/%s + %s\n", pair.Directory.Base(), pair.Motion.To.Base(), pair.Still.To.Base())
		}
	}

	if len(report.Quarantined) > 0 {
		b.WriteString("\n  Quarantined:\n")

		for _, move := range report.Quarantined {
			fmt.Fprintf(&b, "    %s → %s\n", move.From.Base(), dimStyle.Render(string(move.To)))
		}
	}

	for _, skipped := range report.Skipped {
		fmt.Fprintf(&b, "  %s %s (%s)\n", warnStyle.Render("skipped"), skipped.Motion.Base(), skipped.Reason)
	}

	fmt.Fprintf(&b, "\n  Files in %dAPPLE and later: %d\n", versionOf(report), report.Totals.DestinationFiles)
	fmt.Fprintf(&b, "  Files in %s and siblings: %d\n", report.Quarantine.Base(), report.Totals.QuarantineFiles)

	return b.String()
}

func writeRepairs(b *strings.Builder, repairs []m.RepairRecord) {
	if len(repairs) == 0 {
		b.WriteString("\n  No fuzzy repairs\n")
		return
	}

	fmt.Fprintf(b, "\n  🔧 %d fuzzy repair(s):\n", len(repairs))

	for i, r := range repairs {
		fmt.Fprintf(b, "    %d. %s, %s\n", i+1, r.OriginalMotion.Base(), r.OriginalStill.Base())
		fmt.Fprintf(b, "       %s %s, %s\n", okStyle.Render("→"), r.RepairedMotion.Base(), r.RepairedStill.Base())
	}
}

// reportViewer is the Bubble Tea model paging long output.
type reportViewer struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	quitting bool
}

func newReportViewer(title, content string) reportViewer {
	return reportViewer{title: title, content: content}
}

func (rv reportViewer) Init() tea.Cmd {
	return nil
}

func (rv reportViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - headerLines - footerLines
		if height < 1 {
			height = 1
		}

		if !rv.ready {
			rv.viewport = viewport.New(msg.Width, height)
			rv.viewport.SetContent(rv.content)
			rv.ready = true
		} else {
			rv.viewport.Width = msg.Width
			rv.viewport.Height = height
		}

		return rv, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			rv.quitting = true
			return rv, tea.Quit
		}
	}

	var cmd tea.Cmd
	rv.viewport, cmd = rv.viewport.Update(msg)

	return rv, cmd
}

func (rv reportViewer) View() string {
	if !rv.ready {
		return "\n  Loading..."
	}

	header := titleStyle.Render(rv.title) + "\n"
	footer := dimStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll • q quit", rv.viewport.ScrollPercent()*100))

	return header + "\n" + rv.viewport.View() + "\n" + footer
}

// needsPaging returns true if the content is too long for a terminal of the given height.
func (rv reportViewer) needsPaging(height int) bool {
	if height <= 0 {
		return false
	}

	lines := strings.Count(rv.content, "\n") + headerLines + footerLines

	return lines > height
}

func (rv reportViewer) static() string {
	return titleStyle.Render(rv.title) + "\n\n" + rv.content
}
