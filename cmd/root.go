// Package cmd provides the root command and CLI setup for refdiff.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"refdiff.dev/pkg/refdiff/internal/adapter"
	"refdiff.dev/pkg/refdiff/internal/controller"
	"refdiff.dev/pkg/refdiff/internal/domain"
	m "refdiff.dev/pkg/refdiff/internal/model"
)

// newWorkflow builds the workflow for a command invocation. The UI depends on
// the selected output format, so it is resolved per run.
var newWorkflow = buildWorkflow

// reportsOutputDirFlag is a root-level flag shared by commands that write reports.
var reportsOutputDirFlag string

// formatFlag selects the UI used to display reports.
var formatFlag string

// excludePatterns is a root-level flag that filters source files.
var excludePatterns []string

var runParallelFlag int

var verboseFlag bool

var logFileFlag string

const rootLongDescription = `Refdiff detects refactorings between two versions of a code base.

It pairs the operations removed from and added to each class, classifies the
pairs as renames or signature changes, and recognizes operations that were
extracted from or inlined into the ones that remained.

Inputs may be Go or Java sources, YAML/JSON structural snapshots, or a git
commit compared with its parent.`

const excludeHelp = `Exclude patterns are doublestar globs matched against paths relative to the
compared roots (e.g. "vendor", "**/*_test.go").`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func init() {
	configureRootFlags(rootCmd)
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refdiff",
		Short: "Refactoring detection tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for refactoring reports (empty disables saving)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVarP(&formatFlag, formatFlagName, "f", viper.GetString(formatConfigKey), "output format: table, json, yaml or tui")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(formatFlagName), formatConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", viper.GetStringSlice(excludeConfigKey), "exclude paths matching glob (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().IntVarP(&runParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of classes compared in parallel")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default from "+logFilenameKey+")")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// buildWorkflow wires the adapters, the class differ and the UI selected by
// the format key.
func buildWorkflow(cmd *cobra.Command) (domain.Workflow, error) {
	ui, err := controller.NewUI(cmd, viper.GetString(formatConfigKey))
	if err != nil {
		return nil, err
	}

	fsAdapter := adapter.NewLocalSourceFSAdapter()
	aligner := adapter.NewStatementAligner(viper.GetFloat64(similarityThresholdKey))

	return domain.NewWorkflow(
		fsAdapter,
		adapter.NewFileReportStore(fsAdapter),
		adapter.NewLocalGitAdapter(),
		ui,
		adapter.NewClassSources(),
		domain.NewClassDiffer(aligner, matchConfig()),
	), nil
}

// threads returns the configured worker count; zero or less means one.
func threads() uint {
	n := viper.GetInt(runParallelConfigKey)
	if n <= 0 {
		return 1
	}

	return uint(n)
}

func reportsPath() m.Path {
	return m.Path(viper.GetString(outputFlagName))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
