// Package helpcmd captures the help output of a live command invocation
// for embedding in documentation.
package helpcmd

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"unicode"

	"github.com/fulmenhq/readmesync/pkg/normalize"
)

const longHelpFlag = "--help"

// Runner executes commands from a fixed working directory and extracts
// their usage text.
type Runner struct {
	dir  string
	norm *normalize.Normalizer
}

// NewRunner returns a Runner executing commands with dir as the working
// directory (normally the project root).
func NewRunner(dir string, norm *normalize.Normalizer) *Runner {
	return &Runner{dir: dir, norm: norm}
}

// Capture runs commandLine and returns its normalized help output. The
// command line is split on whitespace; there is no quoting support.
// Stdout is preferred when non-empty, else stderr. Long-form help
// (--help) is truncated to the usage synopsis, dropping trailing
// documentation sections. A command that cannot run, or that produces
// no output on either stream, is an error.
func (r *Runner) Capture(commandLine string) (string, error) {
	args := strings.Fields(commandLine)
	if len(args) == 0 {
		return "", errors.New("empty command line")
	}

	cmd := exec.Command(args[0], args[1:]...) // #nosec G204 -- command lines come from markers the doc author wrote
	cmd.Dir = r.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Help invocations commonly exit non-zero; only a failure to
		// run the process at all is fatal here.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("run %q: %w", commandLine, err)
		}
	}

	output := stdout.String()
	if output == "" {
		output = stderr.String()
	}
	output = strings.TrimSpace(r.norm.StripControlSequences(output))
	if output == "" {
		return "", fmt.Errorf("%q produced no output", commandLine)
	}

	if slices.Contains(args, longHelpFlag) {
		output = truncateToUsage(output)
	}
	return output, nil
}

// truncateToUsage keeps only the usage synopsis of long-form help text.
// After the Usage: line, the first non-indented, non-option line that
// begins with an uppercase letter and contains no colon is taken as the
// start of a trailing documentation section (Operation, Hooks, Examples,
// ...); it and everything after it are dropped.
func truncateToUsage(output string) string {
	lines := strings.Split(output, "\n")
	kept := make([]string, 0, len(lines))
	inHeader := true

	for _, line := range lines {
		if !inHeader && line != "" && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "-") {
			first := []rune(line)[0]
			if unicode.IsUpper(first) && !strings.Contains(line, ":") {
				break
			}
		}
		kept = append(kept, line)
		if strings.Contains(line, "Usage:") {
			inHeader = false
		}
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
