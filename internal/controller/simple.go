package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"refdiff.dev/pkg/refdiff/internal/adapter"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

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

// DisplayReport prints one table row per refactoring followed by a summary.
func (s *SimpleUI) DisplayReport(ctx context.Context, report *m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if report == nil {
		return nil
	}

	s.printf("Comparing %s -> %s\n", report.Before, report.After)

	if totalRefactorings(report) == 0 {
		s.printf("No refactorings detected.\n")
		return nil
	}

	s.printf("\n%s", renderRefactoringTable(report))
	s.printf("\n%s", renderSummaryTable(report))

	return nil
}

func renderRefactoringTable(report *m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"File", "Class", "Kind", "Before", "After", "Mapped"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
	})

	for _, c := range report.Classes {
		for _, r := range c.Refactorings {
			table.Append([]string{
				string(c.File),
				c.Class,
				string(r.Kind),
				r.Before,
				r.After,
				fmt.Sprintf("%d/%d", r.Exact, r.Mappings),
			})
		}
	}

	table.Render()

	return tableBuffer.String()
}

func renderSummaryTable(report *m.Report) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Refactoring", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, row := range summarize(report) {
		table.Append([]string{string(row.kind), fmt.Sprintf("%d", row.count)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Classes %d", len(report.Classes)),
		fmt.Sprintf("%d", totalRefactorings(report)),
	})

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...any) {
	out := s.cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, format, args...)
}

// EncodedUI writes the report in a machine-readable format.
type EncodedUI struct {
	cmd    *cobra.Command
	format string
}

// NewEncodedUI creates an EncodedUI writing json or yaml.
func NewEncodedUI(cmd *cobra.Command, format string) *EncodedUI {
	return &EncodedUI{cmd: cmd, format: strings.ToLower(format)}
}

// Start initializes the UI.
func (e *EncodedUI) Start(ctx context.Context) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (e *EncodedUI) Close(_ context.Context) {}

// Wait is a no-op for EncodedUI.
func (e *EncodedUI) Wait(_ context.Context) {}

// DisplayReport writes the encoded report.
func (e *EncodedUI) DisplayReport(ctx context.Context, report *m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := adapter.EncodeReport(report, e.format)
	if err != nil {
		return err
	}

	_, err = e.cmd.OutOrStdout().Write(out)

	return err
}
