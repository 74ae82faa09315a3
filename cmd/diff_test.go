package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"refdiff.dev/pkg/refdiff/internal/domain"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

func TestDiffCmd_DefaultArgs(t *testing.T) {
	workflow := new(mockWorkflow)
	useWorkflow(t, workflow)

	workflow.On("Diff", mock.Anything, mock.MatchedBy(func(args domain.DiffArgs) bool {
		return args.Before == m.Path("./v1") &&
			args.After == m.Path("./v2") &&
			args.Reports == m.Path(defaultReportsDir) &&
			args.Threads == 1 &&
			len(args.Exclude) == 0
	})).Return(&m.Report{}, nil)

	_, err := execute(t, newDiffCmd(), "diff", "./v1", "./v2")
	require.NoError(t, err)

	workflow.AssertExpectations(t)
}

func TestDiffCmd_FlagsArePassedThrough(t *testing.T) {
	workflow := new(mockWorkflow)
	useWorkflow(t, workflow)

	workflow.On("Diff", mock.Anything, mock.MatchedBy(func(args domain.DiffArgs) bool {
		return args.Reports == m.Path("./reports-dir") &&
			args.Threads == 4 &&
			len(args.Exclude) == 2 &&
			args.Exclude[0] == "vendor" &&
			args.Exclude[1] == "**/*_test.go"
	})).Return(&m.Report{}, nil)

	_, err := execute(t, newDiffCmd(),
		"--output", "./reports-dir", "-p", "4", "-x", "vendor", "-x", "**/*_test.go",
		"diff", "./v1", "./v2")
	require.NoError(t, err)

	workflow.AssertExpectations(t)
}

func TestDiffCmd_NonPositiveParallelism(t *testing.T) {
	workflow := new(mockWorkflow)
	useWorkflow(t, workflow)

	workflow.On("Diff", mock.Anything, mock.MatchedBy(func(args domain.DiffArgs) bool {
		return args.Threads == 1
	})).Return(&m.Report{}, nil)

	_, err := execute(t, newDiffCmd(), "--parallel", "0", "diff", "a", "b")
	require.NoError(t, err)

	workflow.AssertExpectations(t)
}

func TestDiffCmd_Errors(t *testing.T) {
	t.Run("requires two arguments", func(t *testing.T) {
		workflow := new(mockWorkflow)
		useWorkflow(t, workflow)

		_, err := execute(t, newDiffCmd(), "diff", "./v1")
		require.Error(t, err)
		workflow.AssertNotCalled(t, "Diff", mock.Anything, mock.Anything)
	})

	t.Run("workflow error is returned", func(t *testing.T) {
		workflow := new(mockWorkflow)
		useWorkflow(t, workflow)

		failure := errors.New("boom")
		workflow.On("Diff", mock.Anything, mock.Anything).Return(nil, failure)

		_, err := execute(t, newDiffCmd(), "diff", "a", "b")
		assert.ErrorIs(t, err, failure)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, newDiffCmd(), "--format", "xml", "diff", t.TempDir(), t.TempDir())
		assert.ErrorContains(t, err, "xml")
	})
}

func TestDiffCmd_EndToEndJSON(t *testing.T) {
	before, after := t.TempDir(), t.TempDir()

	write := func(dir, body string) {
		src := "package shop\n\ntype Cart struct{ n int }\n\n" + body
		require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.go"), []byte(src), 0o644))
	}

	write(before, "func (c *Cart) Count() int {\n\tc.n++\n\treturn c.n\n}\n")
	write(after, "func (c *Cart) Size() int {\n\tc.n++\n\treturn c.n\n}\n")

	out, err := execute(t, newDiffCmd(), "--format", "json", "--output=", "diff", before, after)
	require.NoError(t, err)

	var report m.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	require.Len(t, report.Classes, 1)
	assert.Equal(t, "Cart", report.Classes[0].Class)
	assert.Equal(t, 1, report.Count(m.RefactoringRename))
}
