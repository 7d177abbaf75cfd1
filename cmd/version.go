package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/readmesync/pkg/buildinfo"
)

var versionExtended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "readmesync %s\n", buildinfo.BinaryVersion)
		if versionExtended {
			if mv := buildinfo.ModuleVersion(); mv != "" {
				fmt.Fprintf(out, "module: %s\n", mv)
			}
			fmt.Fprintf(out, "go: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionExtended, "extended", false, "Show build details")
}
