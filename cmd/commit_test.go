package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"refdiff.dev/pkg/refdiff/internal/domain"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

func TestCommitCmd_DefaultsToHead(t *testing.T) {
	workflow := new(mockWorkflow)
	useWorkflow(t, workflow)

	workflow.On("Commit", mock.Anything, mock.MatchedBy(func(args domain.CommitArgs) bool {
		return args.Revision == defaultRevision &&
			args.Repository == defaultGitRepository &&
			args.Reports == m.Path(defaultReportsDir)
	})).Return(&m.Report{}, nil)

	_, err := execute(t, newCommitCmd(), "commit")
	require.NoError(t, err)

	workflow.AssertExpectations(t)
}

func TestCommitCmd_RevisionAndRepository(t *testing.T) {
	workflow := new(mockWorkflow)
	useWorkflow(t, workflow)

	workflow.On("Commit", mock.Anything, mock.MatchedBy(func(args domain.CommitArgs) bool {
		return args.Revision == "abc123" && args.Repository == "/src/project"
	})).Return(&m.Report{}, nil)

	_, err := execute(t, newCommitCmd(), "commit", "abc123", "--repo", "/src/project")
	require.NoError(t, err)

	workflow.AssertExpectations(t)
}

func TestCommitCmd_TooManyArgs(t *testing.T) {
	workflow := new(mockWorkflow)
	useWorkflow(t, workflow)

	_, err := execute(t, newCommitCmd(), "commit", "a", "b")
	require.Error(t, err)
	workflow.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
}

func TestNewCommitCmd(t *testing.T) {
	cmd := newCommitCmd()

	assert.Equal(t, "commit [revision]", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.Flags().Lookup(repoFlagName))
}
