package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"refdiff.dev/pkg/refdiff/internal/domain"
)

const defaultRevision = "HEAD"

var repoFlag string

// commitCmd represents the commit command.
var commitCmd = newCommitCmd()

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit [revision]",
		Short: "Detect refactorings introduced by a git commit",
		Long: `Compare a commit (default HEAD) with its first parent and report the
refactorings in the classes of the files it changed.

` + excludeHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			revision := defaultRevision
			if len(args) == 1 {
				revision = args[0]
			}

			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			_, err = workflow.Commit(context.Background(), domain.CommitArgs{
				Repository: viper.GetString(gitRepositoryKey),
				Revision:   revision,
				Exclude:    viper.GetStringSlice(excludeConfigKey),
				Reports:    reportsPath(),
				Threads:    threads(),
			})

			return err
		},
	}

	cmd.Flags().StringVarP(&repoFlag, repoFlagName, "r", defaultGitRepository, "path to the git repository")
	bindFlagToConfig(cmd.Flags().Lookup(repoFlagName), gitRepositoryKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(commitCmd)
}
