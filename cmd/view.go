package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"refdiff.dev/pkg/refdiff/internal/domain"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report>",
		Short: "View a previously saved refactoring report",
		Long:  "Display a report written by diff or commit, in the selected output format.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := newWorkflow(cmd)
			if err != nil {
				return err
			}

			return workflow.View(context.Background(), domain.ViewArgs{Report: m.Path(args[0])})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
