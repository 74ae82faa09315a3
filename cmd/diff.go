package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"refdiff.dev/pkg/refdiff/internal/domain"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

const diffLongDescription = `Compare two versions of a source tree, or two single files, and report the
refactorings found in each class present in both.

` + excludeHelp

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Detect refactorings between two source trees",
		Long:  diffLongDescription,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			_, err = workflow.Diff(context.Background(), domain.DiffArgs{
				Before:  m.Path(args[0]),
				After:   m.Path(args[1]),
				Exclude: viper.GetStringSlice(excludeConfigKey),
				Reports: reportsPath(),
				Threads: threads(),
			})

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
