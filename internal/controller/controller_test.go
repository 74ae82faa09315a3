package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "refdiff.dev/pkg/refdiff/internal/model"
)

func sampleReport() *m.Report {
	return &m.Report{
		Before:      "v1",
		After:       "v2",
		Fingerprint: "abc123",
		Classes: []m.ClassReport{
			{
				Class: "Order",
				File:  "shop/order.go",
				Refactorings: []m.RefactoringEntry{
					{Kind: m.RefactoringSignatureChange, Description: "total() matched", Before: "total()", After: "sum()", Mappings: 3, Exact: 3},
					{Kind: m.RefactoringRename, Description: "total() renamed to sum()", Before: "total()", After: "sum()", Mappings: 3, Exact: 3},
				},
				AttributeChanges: []string{"added rate float64"},
			},
			{
				Class: "Cart",
				File:  "shop/cart.go",
				Refactorings: []m.RefactoringEntry{
					{Kind: m.RefactoringExtract, Description: "validate() extracted from add()", Before: "add()", After: "validate()", Mappings: 2, Exact: 1},
				},
			},
		},
	}
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(&out)

	return cmd, &out
}

func TestSimpleUI_DisplayReport(t *testing.T) {
	cmd, out := newTestCommand()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	require.NoError(t, ui.Start(ctx))
	require.NoError(t, ui.DisplayReport(ctx, sampleReport()))
	ui.Wait(ctx)
	ui.Close(ctx)

	text := out.String()
	assert.Contains(t, text, "Comparing v1 -> v2")
	assert.Contains(t, text, "shop/order.go")
	assert.Contains(t, text, "validate()")
	assert.Contains(t, text, "3/3")
	assert.Contains(t, text, "1/2")
	// tablewriter upper-cases footers
	assert.Contains(t, strings.ToUpper(text), "TOTAL CLASSES 2")
}

func TestSimpleUI_DisplayReport_Empty(t *testing.T) {
	cmd, out := newTestCommand()
	ui := NewSimpleUI(cmd)

	require.NoError(t, ui.DisplayReport(context.Background(), &m.Report{Before: "a", After: "b"}))
	assert.Contains(t, out.String(), "No refactorings detected.")
}

func TestSimpleUI_CanceledContext(t *testing.T) {
	cmd, out := newTestCommand()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, ui.Start(ctx), context.Canceled)
	assert.ErrorIs(t, ui.DisplayReport(ctx, sampleReport()), context.Canceled)
	assert.Empty(t, out.String())
}

func TestEncodedUI_DisplayReport(t *testing.T) {
	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, out []byte)
	}{
		{
			name:   "json",
			format: "JSON",
			check: func(t *testing.T, out []byte) {
				var decoded m.Report
				require.NoError(t, json.Unmarshal(out, &decoded))
				assert.Len(t, decoded.Classes, 2)
				assert.Equal(t, 1, decoded.Count(m.RefactoringRename))
			},
		},
		{
			name:   "yaml",
			format: "yaml",
			check: func(t *testing.T, out []byte) {
				assert.Contains(t, string(out), "before: v1")
				assert.Contains(t, string(out), "class: Cart")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out := newTestCommand()
			ui := NewEncodedUI(cmd, tt.format)

			require.NoError(t, ui.DisplayReport(context.Background(), sampleReport()))
			tt.check(t, out.Bytes())
		})
	}
}

func TestEncodedUI_UnknownFormat(t *testing.T) {
	cmd, _ := newTestCommand()
	ui := NewEncodedUI(cmd, "xml")

	assert.Error(t, ui.DisplayReport(context.Background(), sampleReport()))
}

func TestNewUI(t *testing.T) {
	cmd, _ := newTestCommand()

	tests := []struct {
		format string
		want   UI
	}{
		{"", &SimpleUI{}},
		{"table", &SimpleUI{}},
		{"JSON", &EncodedUI{}},
		{"yaml", &EncodedUI{}},
		{"tui", &TUI{}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			ui, err := NewUI(cmd, tt.format)
			require.NoError(t, err)
			assert.IsType(t, tt.want, ui)
		})
	}

	_, err := NewUI(cmd, "xml")
	assert.Error(t, err)
}

func TestTUI_DisplayReport_PrintsWhenNotTerminal(t *testing.T) {
	var out bytes.Buffer

	ui := NewTUI(&out)
	require.NoError(t, ui.DisplayReport(context.Background(), sampleReport()))

	text := out.String()
	assert.Contains(t, text, "Order")
	assert.Contains(t, text, "validate() extracted from add()")
	assert.Contains(t, text, "added rate float64")
}

func TestReportModel_Pagination(t *testing.T) {
	model := newReportModel("a\nb\nc\nd\n")
	assert.False(t, model.needsPagination())

	model.height = 2
	assert.True(t, model.needsPagination())

	model.height = 10
	assert.False(t, model.needsPagination())
}

func TestReportModel_Update(t *testing.T) {
	model := newReportModel("line\n")
	assert.Equal(t, "loading...", model.View())

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	rm := updated.(reportModel)
	assert.True(t, rm.ready)
	assert.Contains(t, rm.View(), "line")

	_, cmd := rm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestSummarize(t *testing.T) {
	rows := summarize(sampleReport())
	require.Len(t, rows, 4)
	assert.Equal(t, summaryRow{kind: m.RefactoringRename, count: 1}, rows[0])
	assert.Equal(t, summaryRow{kind: m.RefactoringExtract, count: 1}, rows[1])
	assert.Equal(t, summaryRow{kind: m.RefactoringInline, count: 0}, rows[2])
	assert.Equal(t, 3, totalRefactorings(sampleReport()))
}
