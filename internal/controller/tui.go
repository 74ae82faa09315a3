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
	"github.com/charmbracelet/x/term"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	classStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start initializes the UI.
func (p *TUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (p *TUI) Close(_ context.Context) {}

// Wait returns immediately; DisplayReport blocks while the pager is open.
func (p *TUI) Wait(_ context.Context) {}

// DisplayReport renders the report. Reports taller than the terminal are shown
// in a scrollable pager.
func (p *TUI) DisplayReport(ctx context.Context, report *m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if report == nil {
		return nil
	}

	content := renderReport(report)
	model := newReportModel(content)

	if f, ok := p.output.(*os.File); ok && term.IsTerminal(f.Fd()) {
		width, height, err := term.GetSize(f.Fd())
		if err == nil {
			model.width = width
			model.height = height
		}
	}

	// If the report is small, just print and exit
	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, content)
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run report viewer: %w", err)
	}

	return nil
}

func renderReport(report *m.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("refdiff %s -> %s", report.Before, report.After)))
	b.WriteString("\n")

	if report.Fingerprint != "" {
		b.WriteString(faintStyle.Render("fingerprint " + report.Fingerprint))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	for _, c := range report.Classes {
		if len(c.Refactorings) == 0 && len(c.AttributeChanges) == 0 {
			continue
		}

		b.WriteString(classStyle.Render(c.Class))
		b.WriteString(" ")
		b.WriteString(faintStyle.Render(string(c.File)))
		b.WriteString("\n")

		for _, r := range c.Refactorings {
			fmt.Fprintf(&b, "  %s %s\n", kindStyle.Render(string(r.Kind)), r.Description)
		}

		for _, change := range c.AttributeChanges {
			fmt.Fprintf(&b, "  %s\n", faintStyle.Render(change))
		}

		b.WriteString("\n")
	}

	for _, row := range summarize(report) {
		count := fmt.Sprintf("%d", row.count)
		if row.count == 0 {
			count = faintStyle.Render(count)
		}

		fmt.Fprintf(&b, "%-26s %s\n", row.kind, count)
	}

	return b.String()
}

// reportModel is the Bubble Tea pager over a rendered report.
type reportModel struct {
	content  string
	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

func newReportModel(content string) reportModel {
	return reportModel{content: content}
}

func (rm reportModel) needsPagination() bool {
	if rm.height == 0 {
		return false
	}

	return strings.Count(rm.content, "\n") > rm.height
}

func (rm reportModel) Init() tea.Cmd {
	return nil
}

func (rm reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return rm, tea.Quit
		}

	case tea.WindowSizeMsg:
		footer := lipgloss.Height(rm.footerView())
		if !rm.ready {
			rm.viewport = viewport.New(msg.Width, msg.Height-footer)
			rm.viewport.SetContent(rm.content)
			rm.ready = true
		} else {
			rm.viewport.Width = msg.Width
			rm.viewport.Height = msg.Height - footer
		}

		rm.width = msg.Width
		rm.height = msg.Height
	}

	var cmd tea.Cmd

	rm.viewport, cmd = rm.viewport.Update(msg)

	return rm, cmd
}

func (rm reportModel) View() string {
	if !rm.ready {
		return "loading..."
	}

	return rm.viewport.View() + "\n" + rm.footerView()
}

func (rm reportModel) footerView() string {
	percent := 0.0
	if rm.ready {
		percent = rm.viewport.ScrollPercent() * 100
	}

	return faintStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll  q quit", percent))
}
