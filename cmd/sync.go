package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/fulmenhq/readmesync/internal/docsync"
	"github.com/fulmenhq/readmesync/internal/projroot"
	"github.com/fulmenhq/readmesync/pkg/config"
	"github.com/fulmenhq/readmesync/pkg/exitcode"
	"github.com/fulmenhq/readmesync/pkg/logger"
)

var (
	syncCheck  bool
	syncDryRun bool
	syncReadme string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update marked documentation sections from their sources",
	Long: `Sync replaces every marked region in the documentation file with fresh
content extracted from its snapshot artifact or captured from its help
command. The file is written back only when content actually changed, so
running sync twice is a no-op the second time.`,
	RunE: runSync,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report stale documentation sections without modifying anything",
	Long: `Check compares every snapshot-backed region against freshly extracted
snapshot content and reports drift. Nothing is written. The exit status
is non-zero when any section is stale or references a missing snapshot,
which makes check suitable for CI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		syncCheck = true
		return runSync(cmd, args)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncCheck, "check", false, "Check staleness without updating")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report what would change without writing")
	syncCmd.Flags().StringVar(&syncReadme, "readme", "README.md", "Path to the documentation file")
	checkCmd.Flags().StringVar(&syncReadme, "readme", "README.md", "Path to the documentation file")
}

func runSync(cmd *cobra.Command, _ []string) error {
	root, err := projroot.Find(".")
	if err != nil {
		return fmt.Errorf("locate project root: %w", err)
	}

	cfg, err := config.Load(root, cmd.Flags())
	if err != nil {
		logger.Error("Configuration error", logger.Err(err))
		os.Exit(exitcode.ConfigError)
	}

	docs, err := resolveDocPaths(root, cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		os.Exit(exitcode.FileSystemError)
	}

	mode := docsync.ModeUpdate
	if syncCheck {
		mode = docsync.ModeCheck
	}

	anyStale := false
	for _, doc := range docs {
		rep, err := docsync.Run(docsync.Options{
			Root:    root,
			DocPath: doc,
			Mode:    mode,
			DryRun:  syncDryRun,
			Hash:    cfg.Normalize.Hash,
			Repo:    cfg.Normalize.Repo,
		})
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			os.Exit(exitcode.FileSystemError)
		}

		if len(docs) > 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "== %s ==\n", rep.DocPath)
		}
		if syncCheck {
			docsync.PrintCheckReport(cmd.OutOrStdout(), rep)
		} else {
			docsync.PrintUpdateReport(cmd.OutOrStdout(), rep, syncDryRun)
		}
		if rep.Stale {
			anyStale = true
		}
	}

	if syncCheck && anyStale {
		os.Exit(exitcode.StaleContent)
	}
	return nil
}

// resolveDocPaths expands the configured doc globs relative to the
// project root, falling back to the single configured path. Every
// returned path exists.
func resolveDocPaths(root string, cfg *config.Config) ([]string, error) {
	if len(cfg.Doc.Globs) == 0 {
		path := cfg.Doc.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s not found", path)
		}
		return []string{path}, nil
	}

	seen := make(map[string]bool)
	var docs []string
	for _, pattern := range cfg.Doc.Globs {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, fmt.Errorf("bad doc glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			full := filepath.Join(root, m)
			if !seen[full] {
				seen[full] = true
				docs = append(docs, full)
			}
		}
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documentation files matched %v", cfg.Doc.Globs)
	}
	sort.Strings(docs)
	return docs, nil
}
