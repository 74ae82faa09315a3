// Package controller provides output adapters for displaying refactoring reports.
package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

// Output formats accepted by NewUI.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTUI   = "tui"
)

// UI defines the interface for displaying refactoring reports.
// Implementations can use different output methods (simple text, TUI, encoded).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayReport(ctx context.Context, report *m.Report) error
}

// NewUI returns the UI for format, writing to the command's output.
// An empty format selects the table.
func NewUI(cmd *cobra.Command, format string) (UI, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTable:
		return NewSimpleUI(cmd), nil
	case FormatJSON, FormatYAML:
		return NewEncodedUI(cmd, format), nil
	case FormatTUI:
		return NewTUI(cmd.OutOrStdout()), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// summaryRow is one line of the per-kind summary shown by every UI.
type summaryRow struct {
	kind  m.RefactoringKind
	count int
}

var reportKinds = []m.RefactoringKind{
	m.RefactoringRename,
	m.RefactoringExtract,
	m.RefactoringInline,
	m.RefactoringSignatureChange,
}

func summarize(report *m.Report) []summaryRow {
	rows := make([]summaryRow, 0, len(reportKinds))
	for _, kind := range reportKinds {
		rows = append(rows, summaryRow{kind: kind, count: report.Count(kind)})
	}

	return rows
}

func totalRefactorings(report *m.Report) int {
	total := 0
	for _, c := range report.Classes {
		total += len(c.Refactorings)
	}

	return total
}
