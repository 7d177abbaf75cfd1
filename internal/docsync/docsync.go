// Package docsync orchestrates one update or check pass over a
// documentation file and renders the per-marker report.
package docsync

import (
	"fmt"
	"os"

	"github.com/fulmenhq/readmesync/pkg/logger"
	"github.com/fulmenhq/readmesync/pkg/markers"
	"github.com/fulmenhq/readmesync/pkg/normalize"
	"github.com/fulmenhq/readmesync/pkg/safeio"
)

// Mode selects what a pass does with matched regions.
type Mode int

const (
	// ModeUpdate replaces region payloads and writes the file back when
	// its content changed.
	ModeUpdate Mode = iota
	// ModeCheck compares region payloads against their sources without
	// touching the file.
	ModeCheck
)

// Options configures a pass over one documentation file.
type Options struct {
	Root    string // project root; snapshot paths and commands resolve here
	DocPath string // documentation file, absolute or relative to Root
	Mode    Mode
	DryRun  bool // report outcomes but never write
	Hash    string
	Repo    string
}

// Report is the aggregated outcome of one pass.
type Report struct {
	DocPath string
	Results []markers.Result
	Changed bool // file content differed and (unless dry-run) was written
	Stale   bool // at least one region signaled a problem
}

// Run reads the documentation file once, applies the marker engine in the
// selected mode, and writes back only if the content changed. A missing
// or unreadable documentation file is the only fatal condition; every
// per-region failure is carried in the results instead.
func Run(opts Options) (*Report, error) {
	raw, err := os.ReadFile(opts.DocPath)
	if err != nil {
		return nil, fmt.Errorf("read documentation file: %w", err)
	}
	original := string(raw)

	hash, repo := opts.Hash, opts.Repo
	if hash == "" {
		hash = normalize.DefaultHash
	}
	if repo == "" {
		repo = normalize.DefaultRepoPath
	}
	engine := markers.NewEngine(opts.Root, normalize.NewWithValues(hash, repo))

	rep := &Report{DocPath: opts.DocPath}

	switch opts.Mode {
	case ModeCheck:
		rep.Results = engine.Check(original)
	default:
		updated, results := engine.Update(original)
		rep.Results = results
		rep.Changed = updated != original
		if rep.Changed && !opts.DryRun {
			if err := safeio.WriteFilePreservePerms(opts.DocPath, []byte(updated)); err != nil {
				return nil, fmt.Errorf("write documentation file: %w", err)
			}
			logger.Info("documentation updated", logger.String("path", opts.DocPath))
		}
	}

	for _, r := range rep.Results {
		if r.Stale {
			rep.Stale = true
			break
		}
	}
	return rep, nil
}
