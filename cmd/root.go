package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/readmesync/pkg/buildinfo"
	"github.com/fulmenhq/readmesync/pkg/exitcode"
	"github.com/fulmenhq/readmesync/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readmesync",
		Short: "Keep documentation in sync with snapshot test output",
		Long: `Readmesync manages documentation sections that mirror snapshot test
output or live command help. Marked regions are replaced with normalized
snapshot content, or checked for drift without modifying anything.

Marker format (add manually to the documentation file):

  <!-- README:snapshot:path/to/snapshot.snap -->
  ` + "```" + `bash
  $ command
  ... content replaced from the snapshot ...
  ` + "```" + `
  <!-- README:end -->

  <!-- README:help:tool --help -->
  ` + "```" + `
  ... content replaced with captured help output ...
  ` + "```" + `
  <!-- README:end -->`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("readmesync {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(syncCmd)
	cmd.AddCommand(checkCmd)
	cmd.AddCommand(versionCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitcode.GeneralError)
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	logger.Initialize(logger.Config{
		Level:    logger.ParseLevel(logLevelStr),
		UseColor: !noColor && os.Getenv("NO_COLOR") == "",
		JSON:     jsonLogs,
		DryRun:   dryRun,
	})
}
