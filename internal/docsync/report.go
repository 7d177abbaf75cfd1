package docsync

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/fulmenhq/readmesync/pkg/logger"
	"github.com/fulmenhq/readmesync/pkg/markers"
)

// PrintUpdateReport writes one line per processed marker, plus the
// dry-run notice when no write occurred.
func PrintUpdateReport(w io.Writer, rep *Report, dryRun bool) {
	if len(rep.Results) == 0 {
		fmt.Fprintf(w, "No markers found in %s\n", rep.DocPath)
		return
	}

	idWidth := identifierWidth(rep.Results)
	for _, r := range rep.Results {
		fmt.Fprintf(w, "%s %s  %s\n",
			runewidth.FillRight("["+string(r.Dialect)+"]", len("[snapshot]")),
			runewidth.FillRight(r.Identifier, idWidth),
			outcomeLine(r))
	}

	if dryRun {
		fmt.Fprintln(w, "\nDry run - no changes made")
	}
}

// PrintCheckReport writes one line per marker with a status glyph and a
// summary distinguishing "all up to date" from "needs manual review".
// Unified diffs for drifted regions go to the debug log.
func PrintCheckReport(w io.Writer, rep *Report) {
	if len(rep.Results) == 0 {
		fmt.Fprintf(w, "No markers found in %s\n", rep.DocPath)
		return
	}

	idWidth := identifierWidth(rep.Results)
	for _, r := range rep.Results {
		glyph := "✅"
		if r.Stale {
			glyph = "⚠️ "
		}
		fmt.Fprintf(w, "%s %s  %s\n", glyph, runewidth.FillRight(r.Identifier, idWidth), outcomeLine(r))

		if r.Outcome == markers.OutcomeNeedsReview {
			logDrift(r)
		}
	}

	if rep.Stale {
		fmt.Fprintln(w, "\nSome sections may need manual review")
	} else {
		fmt.Fprintln(w, "\nAll sections are up to date")
	}
}

func outcomeLine(r markers.Result) string {
	if r.Detail != "" {
		return fmt.Sprintf("%s: %s", r.Outcome, r.Detail)
	}
	return string(r.Outcome)
}

func identifierWidth(results []markers.Result) int {
	max := 0
	for _, r := range results {
		if w := runewidth.StringWidth(r.Identifier); w > max {
			max = w
		}
	}
	return max
}

func logDrift(r markers.Result) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(r.Current),
		B:        difflib.SplitLines(r.Fresh),
		FromFile: "documentation",
		ToFile:   r.Identifier,
		Context:  3,
	})
	if err != nil {
		logger.Debug("diff failed", logger.Err(err))
		return
	}
	logger.Debug("section drift", logger.String("snapshot", r.Identifier), logger.String("diff", diff))
}
