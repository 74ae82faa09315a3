package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/mock"

	"refdiff.dev/pkg/refdiff/internal/domain"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

type mockWorkflow struct {
	mock.Mock
}

func (w *mockWorkflow) Diff(ctx context.Context, args domain.DiffArgs) (*m.Report, error) {
	ret := w.Called(ctx, args)
	report, _ := ret.Get(0).(*m.Report)

	return report, ret.Error(1)
}

func (w *mockWorkflow) Commit(ctx context.Context, args domain.CommitArgs) (*m.Report, error) {
	ret := w.Called(ctx, args)
	report, _ := ret.Get(0).(*m.Report)

	return report, ret.Error(1)
}

func (w *mockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return w.Called(ctx, args).Error(0)
}

// useWorkflow swaps the workflow factory for the duration of the test.
func useWorkflow(t *testing.T, workflow domain.Workflow) {
	t.Helper()

	original := newWorkflow
	newWorkflow = func(*cobra.Command) (domain.Workflow, error) {
		return workflow, nil
	}

	t.Cleanup(func() { newWorkflow = original })
}

// execute runs sub under a fresh root command, logging into a temp file.
func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.AddCommand(sub)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--" + logFileFlagName, filepath.Join(t.TempDir(), "refdiff.log")}, args...))

	err := cmd.Execute()

	return out.String(), err
}
